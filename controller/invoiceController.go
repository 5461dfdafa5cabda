package controller

import (
	"net/http"
	"time"

	"school-backend/model"
	"school-backend/util"
)

type InvoiceController struct {
	invoices InvoiceStore
	now      clock
}

func NewInvoiceController(invoices InvoiceStore) *InvoiceController {
	return &InvoiceController{invoices: invoices, now: time.Now}
}

func (ic *InvoiceController) HandleListInvoices(w http.ResponseWriter, r *http.Request) {
	handleList[model.Invoice](w, r, ic.invoices)
}

func (ic *InvoiceController) HandleGetInvoice(w http.ResponseWriter, r *http.Request) {
	handleGet[model.Invoice](w, r, ic.invoices)
}

// HandleCreateInvoice stores the body as given. Only the id and the
// timestamps are assigned here.
func (ic *InvoiceController) HandleCreateInvoice(w http.ResponseWriter, r *http.Request) {
	var invoice model.Invoice
	if err := util.DecodeJSON(r, &invoice); err != nil {
		util.WriteError(w, r, err)
		return
	}
	invoice.Stamp(storeTime(ic.now()))
	if err := ic.invoices.Insert(r.Context(), &invoice); err != nil {
		util.WriteError(w, r, err)
		return
	}
	util.WriteSuccessResponse(w, r, http.StatusCreated, invoice)
}

func (ic *InvoiceController) HandleUpdateInvoice(w http.ResponseWriter, r *http.Request) {
	handleUpdate[model.Invoice](w, r, ic.invoices, &model.InvoicePatch{}, ic.now)
}

func (ic *InvoiceController) HandleDeleteInvoice(w http.ResponseWriter, r *http.Request) {
	handleDelete[model.Invoice](w, r, ic.invoices, "Invoice deleted successfully")
}
