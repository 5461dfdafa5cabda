package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const InvoiceCollection = "invoices"

// idKeys are never taken from extras when a record is written out.
var idKeys = map[string]bool{"id": true, "_id": true}

// InvoiceItem is one line of an invoice. Only the keys the caller sent are
// written back.
type InvoiceItem struct {
	Id       *string  `json:"id,omitempty" bson:"id,omitempty"`
	Name     *string  `json:"name,omitempty" bson:"name,omitempty"`
	Amount   *float64 `json:"amount,omitempty" bson:"amount,omitempty"`
	Quantity *float64 `json:"quantity,omitempty" bson:"quantity,omitempty"`
	Total    *float64 `json:"total,omitempty" bson:"total,omitempty"`

	Extra map[string]interface{} `json:"-" bson:"-"`
}

func (it InvoiceItem) MarshalJSON() ([]byte, error) {
	type item InvoiceItem
	return encodeWithExtra(item(it), it.Extra, nil)
}

func (it *InvoiceItem) UnmarshalJSON(data []byte) error {
	type item InvoiceItem
	var in item
	extra, err := decodeWithExtra(data, &in, nil)
	if err != nil {
		return err
	}
	*it = InvoiceItem(in)
	it.Extra = extra
	return nil
}

func (it InvoiceItem) MarshalBSON() ([]byte, error) {
	type item InvoiceItem
	return marshalBSONWithExtra(item(it), it.Extra, nil)
}

func (it *InvoiceItem) UnmarshalBSON(data []byte) error {
	type item InvoiceItem
	var in item
	extra, err := unmarshalBSONWithExtra(data, &in)
	if err != nil {
		return err
	}
	*it = InvoiceItem(in)
	it.Extra = extra
	return nil
}

// Invoice references a student through StudentID only; nothing enforces that
// the student exists.
type Invoice struct {
	Id            primitive.ObjectID `json:"id" bson:"_id"`
	StudentID     *string            `json:"studentId,omitempty" bson:"studentId,omitempty"`
	InvoiceNumber *string            `json:"invoiceNumber,omitempty" bson:"invoiceNumber,omitempty"`
	Items         *[]InvoiceItem     `json:"items,omitempty" bson:"items,omitempty"`
	Subtotal      *float64           `json:"subtotal,omitempty" bson:"subtotal,omitempty"`
	Tax           *float64           `json:"tax,omitempty" bson:"tax,omitempty"`
	Total         *float64           `json:"total,omitempty" bson:"total,omitempty"`
	IssueDate     *string            `json:"issueDate,omitempty" bson:"issueDate,omitempty"`
	DueDate       *string            `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Status        *string            `json:"status,omitempty" bson:"status,omitempty"`
	CreatedAt     time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt     time.Time          `json:"updatedAt" bson:"updatedAt"`

	Extra map[string]interface{} `json:"-" bson:"-"`
}

func (i Invoice) MarshalJSON() ([]byte, error) {
	type invoice Invoice
	return encodeWithExtra(invoice(i), i.Extra, idKeys)
}

func (i *Invoice) UnmarshalJSON(data []byte) error {
	type invoice Invoice
	var in invoice
	extra, err := decodeWithExtra(data, &in, reserved)
	if err != nil {
		return err
	}
	*i = Invoice(in)
	i.Extra = extra
	return nil
}

func (i Invoice) MarshalBSON() ([]byte, error) {
	type invoice Invoice
	return marshalBSONWithExtra(invoice(i), i.Extra, idKeys)
}

func (i *Invoice) UnmarshalBSON(data []byte) error {
	type invoice Invoice
	var in invoice
	extra, err := unmarshalBSONWithExtra(data, &in)
	if err != nil {
		return err
	}
	*i = Invoice(in)
	i.Extra = extra
	return nil
}

// Stamp assigns a fresh id and both timestamps before insertion.
func (i *Invoice) Stamp(now time.Time) {
	i.Id = primitive.NewObjectID()
	i.CreatedAt = now
	i.UpdatedAt = now
}

type InvoicePatch struct {
	StudentID     *string        `json:"studentId,omitempty" bson:"studentId,omitempty"`
	InvoiceNumber *string        `json:"invoiceNumber,omitempty" bson:"invoiceNumber,omitempty"`
	Items         *[]InvoiceItem `json:"items,omitempty" bson:"items,omitempty"`
	Subtotal      *float64       `json:"subtotal,omitempty" bson:"subtotal,omitempty"`
	Tax           *float64       `json:"tax,omitempty" bson:"tax,omitempty"`
	Total         *float64       `json:"total,omitempty" bson:"total,omitempty"`
	IssueDate     *string        `json:"issueDate,omitempty" bson:"issueDate,omitempty"`
	DueDate       *string        `json:"dueDate,omitempty" bson:"dueDate,omitempty"`
	Status        *string        `json:"status,omitempty" bson:"status,omitempty"`

	Extra map[string]interface{} `json:"-" bson:"-"`
}

func (p *InvoicePatch) UnmarshalJSON(data []byte) error {
	type patch InvoicePatch
	var in patch
	extra, err := decodeWithExtra(data, &in, reserved)
	if err != nil {
		return err
	}
	*p = InvoicePatch(in)
	p.Extra = extra
	return nil
}

func (p InvoicePatch) SetDoc(now time.Time) (bson.M, error) {
	return setDoc(p, p.Extra, now)
}
