package controller

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"school-backend/model"
	"school-backend/util"
)

// Collection is the store surface every record kind offers.
type Collection[T any] interface {
	List(ctx context.Context) ([]T, error)
	Get(ctx context.Context, id primitive.ObjectID) (*T, error)
	Insert(ctx context.Context, doc *T) error
	Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error)
	Delete(ctx context.Context, id primitive.ObjectID) error
}

// Patch is an update body that knows its $set document.
type Patch interface {
	SetDoc(now time.Time) (bson.M, error)
}

// clock reads the current wall time. Calendar values such as the roll
// number year come from it in the school's location.
type clock func() time.Time

// storeTime is t in UTC at the precision the store keeps.
func storeTime(t time.Time) time.Time {
	return t.UTC().Truncate(time.Millisecond)
}

// orLocal defaults a nil location to the process's local zone.
func orLocal(loc *time.Location) *time.Location {
	if loc == nil {
		return time.Local
	}
	return loc
}

func pathID(r *http.Request) (primitive.ObjectID, error) {
	return model.ParseID(chi.URLParam(r, "id"))
}

func handleList[T any](w http.ResponseWriter, r *http.Request, coll Collection[T]) {
	docs, err := coll.List(r.Context())
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	util.WriteSuccessResponse(w, r, http.StatusOK, docs)
}

func handleGet[T any](w http.ResponseWriter, r *http.Request, coll Collection[T]) {
	id, err := pathID(r)
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	doc, err := coll.Get(r.Context(), id)
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	util.WriteSuccessResponse(w, r, http.StatusOK, doc)
}

// handleUpdate decodes the body into patch, merges it and answers with the
// stored document.
func handleUpdate[T any](w http.ResponseWriter, r *http.Request, coll Collection[T], patch Patch, now clock) {
	doc, err := updateDoc(r, coll, patch, now)
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	util.WriteSuccessResponse(w, r, http.StatusOK, doc)
}

func updateDoc[T any](r *http.Request, coll Collection[T], patch Patch, now clock) (*T, error) {
	id, err := pathID(r)
	if err != nil {
		return nil, err
	}
	if err := util.DecodeJSON(r, patch); err != nil {
		return nil, err
	}
	set, err := patch.SetDoc(storeTime(now()))
	if err != nil {
		return nil, err
	}
	doc, err := coll.Update(r.Context(), id, set)
	if err != nil {
		return nil, err
	}
	zerolog.Ctx(r.Context()).Debug().Str("id", id.Hex()).Interface("fields", set).Msg("document updated")
	return doc, nil
}

func handleDelete[T any](w http.ResponseWriter, r *http.Request, coll Collection[T], message string) {
	id, err := pathID(r)
	if err != nil {
		util.WriteError(w, r, err)
		return
	}
	if err := coll.Delete(r.Context(), id); err != nil {
		util.WriteError(w, r, err)
		return
	}
	util.WriteMessage(w, r, message)
}
