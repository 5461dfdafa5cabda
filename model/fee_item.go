package model

import (
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

const FeeItemCollection = "fee_items"

// Fee types used by convention; Type is not restricted to these.
const (
	FeeMonthly = "monthly"
	FeeOneTime = "one-time"
)

type FeeItem struct {
	Id        primitive.ObjectID `json:"id" bson:"_id"`
	Name      *string            `json:"name,omitempty" bson:"name,omitempty"`
	Amount    *float64           `json:"amount,omitempty" bson:"amount,omitempty"`
	Type      *string            `json:"type,omitempty" bson:"type,omitempty"`
	Grade     *string            `json:"grade,omitempty" bson:"grade,omitempty"`
	CreatedAt time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt time.Time          `json:"updatedAt" bson:"updatedAt"`

	Extra map[string]interface{} `json:"-" bson:"-"`
}

func (f FeeItem) MarshalJSON() ([]byte, error) {
	type feeItem FeeItem
	return encodeWithExtra(feeItem(f), f.Extra, idKeys)
}

func (f *FeeItem) UnmarshalJSON(data []byte) error {
	type feeItem FeeItem
	var in feeItem
	extra, err := decodeWithExtra(data, &in, reserved)
	if err != nil {
		return err
	}
	*f = FeeItem(in)
	f.Extra = extra
	return nil
}

func (f FeeItem) MarshalBSON() ([]byte, error) {
	type feeItem FeeItem
	return marshalBSONWithExtra(feeItem(f), f.Extra, idKeys)
}

func (f *FeeItem) UnmarshalBSON(data []byte) error {
	type feeItem FeeItem
	var in feeItem
	extra, err := unmarshalBSONWithExtra(data, &in)
	if err != nil {
		return err
	}
	*f = FeeItem(in)
	f.Extra = extra
	return nil
}

func (f *FeeItem) Stamp(now time.Time) {
	f.Id = primitive.NewObjectID()
	f.CreatedAt = now
	f.UpdatedAt = now
}

// DefaultFeeItems is the catalog seeded into an empty fee_items collection.
func DefaultFeeItems(now time.Time) []FeeItem {
	defaults := []struct {
		name    string
		amount  float64
		feeType string
	}{
		{"Tuition Fee", 500, FeeMonthly},
		{"Transportation", 150, FeeMonthly},
		{"Activity Fee", 100, FeeMonthly},
		{"Admission Fee", 1000, FeeOneTime},
	}
	items := make([]FeeItem, 0, len(defaults))
	for _, d := range defaults {
		d := d
		item := FeeItem{Name: &d.name, Amount: &d.amount, Type: &d.feeType}
		item.Stamp(now)
		items = append(items, item)
	}
	return items
}

type FeeItemPatch struct {
	Name   *string  `json:"name,omitempty" bson:"name,omitempty"`
	Amount *float64 `json:"amount,omitempty" bson:"amount,omitempty"`
	Type   *string  `json:"type,omitempty" bson:"type,omitempty"`
	Grade  *string  `json:"grade,omitempty" bson:"grade,omitempty"`

	Extra map[string]interface{} `json:"-" bson:"-"`
}

func (p *FeeItemPatch) UnmarshalJSON(data []byte) error {
	type patch FeeItemPatch
	var in patch
	extra, err := decodeWithExtra(data, &in, reserved)
	if err != nil {
		return err
	}
	*p = FeeItemPatch(in)
	p.Extra = extra
	return nil
}

func (p FeeItemPatch) SetDoc(now time.Time) (bson.M, error) {
	return setDoc(p, p.Extra, now)
}
