package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/rs/zerolog"

	"school-backend/model"
	"school-backend/util"
)

type FeeItemStore interface {
	Collection[model.FeeItem]
	Count(ctx context.Context) (int64, error)
	InsertMany(ctx context.Context, items []model.FeeItem) error
}

type FeeItemController struct {
	feeItems FeeItemStore
	now      clock
}

func NewFeeItemController(feeItems FeeItemStore) *FeeItemController {
	return &FeeItemController{feeItems: feeItems, now: time.Now}
}

func (fc *FeeItemController) HandleListFeeItems(w http.ResponseWriter, r *http.Request) {
	handleList[model.FeeItem](w, r, fc.feeItems)
}

func (fc *FeeItemController) HandleGetFeeItem(w http.ResponseWriter, r *http.Request) {
	handleGet[model.FeeItem](w, r, fc.feeItems)
}

func (fc *FeeItemController) HandleCreateFeeItem(w http.ResponseWriter, r *http.Request) {
	var item model.FeeItem
	if err := util.DecodeJSON(r, &item); err != nil {
		util.WriteError(w, r, err)
		return
	}
	item.Stamp(storeTime(fc.now()))
	if err := fc.feeItems.Insert(r.Context(), &item); err != nil {
		util.WriteError(w, r, err)
		return
	}
	util.WriteSuccessResponse(w, r, http.StatusCreated, item)
}

func (fc *FeeItemController) HandleUpdateFeeItem(w http.ResponseWriter, r *http.Request) {
	handleUpdate[model.FeeItem](w, r, fc.feeItems, &model.FeeItemPatch{}, fc.now)
}

func (fc *FeeItemController) HandleDeleteFeeItem(w http.ResponseWriter, r *http.Request) {
	handleDelete[model.FeeItem](w, r, fc.feeItems, "Fee item deleted successfully")
}

func (fc *FeeItemController) HandleInitialize(w http.ResponseWriter, r *http.Request) {
	if _, err := fc.Initialize(r.Context()); err != nil {
		util.WriteError(w, r, err)
		return
	}
	util.WriteMessage(w, r, "Data initialized successfully")
}

// Initialize seeds the default fee items when the collection is empty and
// reports whether it did.
func (fc *FeeItemController) Initialize(ctx context.Context) (bool, error) {
	count, err := fc.feeItems.Count(ctx)
	if err != nil {
		return false, err
	}
	if count > 0 {
		zerolog.Ctx(ctx).Debug().Int64("count", count).Msg("Initialize: fee items already present")
		return false, nil
	}
	if err := fc.feeItems.InsertMany(ctx, model.DefaultFeeItems(storeTime(fc.now()))); err != nil {
		return false, err
	}
	zerolog.Ctx(ctx).Info().Msg("Initialize: default fee items inserted")
	return true, nil
}
