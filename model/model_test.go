package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"school-backend/errs"
)

var now = time.Date(2024, time.March, 4, 10, 0, 0, 0, time.UTC)

func decodeMap(t *testing.T, v interface{}) map[string]interface{} {
	t.Helper()
	raw, err := json.Marshal(v)
	require.NoError(t, err)
	var out map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &out))
	return out
}

func TestStudentSerializesStringID(t *testing.T) {
	student := NewStudent{
		Name: "Asha", Grade: "2", ParentEmail: "p@example.com",
		ParentPhone: "555", Address: "1 Road", AdmissionDate: "2024-03-01",
	}.Student("2024001", now)

	out := decodeMap(t, student)
	require.Equal(t, student.Id.Hex(), out["id"])
	require.NotContains(t, out, "_id")
	require.Equal(t, "2024001", out["rollNumber"])
	require.Nil(t, out["fatherName"])
	require.Contains(t, out, "motherName")
}

func TestStudentKeepsStoredExtras(t *testing.T) {
	student := Student{
		Id:    primitive.NewObjectID(),
		Name:  "Ravi",
		Extra: map[string]interface{}{"dateOfBirth": "2018-01-01", "card": primitive.D{{Key: "type", Value: "pan"}}},
	}
	out := decodeMap(t, student)
	require.Equal(t, "2018-01-01", out["dateOfBirth"])
	require.Equal(t, map[string]interface{}{"type": "pan"}, out["card"])
}

func TestNewStudentValidate(t *testing.T) {
	err := NewStudent{Name: "Asha", Grade: "2"}.Validate()
	require.Error(t, err)
	require.True(t, errs.IsInvalid(err))
	require.Contains(t, err.Error(), "parentEmail is required")
	require.Contains(t, err.Error(), "admissionDate is required")

	ok := NewStudent{
		Name: "Asha", Grade: "2", ParentEmail: "p@example.com",
		ParentPhone: "555", Address: "1 Road", AdmissionDate: "2024-03-01",
	}
	require.NoError(t, ok.Validate())
}

func TestInvoicePassesThroughUnknownFields(t *testing.T) {
	body := `{"studentId":"abc","total":120,"notes":"paid in cash","student":{"name":"Asha"},"id":"ignored","createdAt":"x"}`
	var invoice Invoice
	require.NoError(t, json.Unmarshal([]byte(body), &invoice))
	require.Equal(t, "abc", *invoice.StudentID)
	require.Equal(t, 120.0, *invoice.Total)
	require.Equal(t, "paid in cash", invoice.Extra["notes"])
	require.NotContains(t, invoice.Extra, "id")
	require.NotContains(t, invoice.Extra, "createdAt")

	invoice.Stamp(now)
	out := decodeMap(t, invoice)
	require.Equal(t, invoice.Id.Hex(), out["id"])
	require.Equal(t, "paid in cash", out["notes"])
	require.Equal(t, map[string]interface{}{"name": "Asha"}, out["student"])
}

func TestInvoiceRoundTripsThroughBSON(t *testing.T) {
	var invoice Invoice
	require.NoError(t, json.Unmarshal([]byte(`{"studentId":"s1","memo":{"lines":[1,2]}}`), &invoice))
	invoice.Stamp(now)

	raw, err := bson.Marshal(invoice)
	require.NoError(t, err)
	var stored Invoice
	require.NoError(t, bson.Unmarshal(raw, &stored))

	out := decodeMap(t, stored)
	require.Equal(t, "s1", out["studentId"])
	require.Equal(t, map[string]interface{}{"lines": []interface{}{1.0, 2.0}}, out["memo"])
}

func TestPatchSetsOnlySuppliedFields(t *testing.T) {
	var patch FeeItemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"amount":650,"discount":"sibling"}`), &patch))

	set, err := patch.SetDoc(now)
	require.NoError(t, err)
	require.Equal(t, bson.M{"amount": 650.0, "discount": "sibling", "updatedAt": now}, set)

	name := "Asha K"
	set, err = StudentPatch{Name: &name}.SetDoc(now)
	require.NoError(t, err)
	require.Equal(t, bson.M{"name": "Asha K", "updatedAt": now}, set)
}

func TestPatchKeepsMistypedValues(t *testing.T) {
	var patch FeeItemPatch
	require.NoError(t, json.Unmarshal([]byte(`{"amount":"lots","name":"Bus"}`), &patch))
	require.Nil(t, patch.Amount)

	set, err := patch.SetDoc(now)
	require.NoError(t, err)
	require.Equal(t, bson.M{"amount": "lots", "name": "Bus", "updatedAt": now}, set)
}

func TestStudentPatchPassesThroughAndClears(t *testing.T) {
	var patch StudentPatch
	body := `{"dateOfBirth":"2019-01-01","fatherName":null,"grade":"3","id":"x","createdAt":"y"}`
	require.NoError(t, json.Unmarshal([]byte(body), &patch))

	set, err := patch.SetDoc(now)
	require.NoError(t, err)
	require.Equal(t, bson.M{
		"dateOfBirth": "2019-01-01",
		"fatherName":  nil,
		"grade":       "3",
		"updatedAt":   now,
	}, set)
}

func TestInvoiceKeepsNestedAndMistypedFields(t *testing.T) {
	body := `{
		"studentId": 42,
		"total": "1,200.00",
		"items": [{"name":"Tuition","amount":500,"feeItemId":"f1","note":"March"}]
	}`
	var invoice Invoice
	require.NoError(t, json.Unmarshal([]byte(body), &invoice))
	require.Nil(t, invoice.StudentID)
	require.Nil(t, invoice.Total)
	require.Len(t, *invoice.Items, 1)
	require.Equal(t, "f1", (*invoice.Items)[0].Extra["feeItemId"])
	invoice.Stamp(now)

	raw, err := bson.Marshal(invoice)
	require.NoError(t, err)
	var stored Invoice
	require.NoError(t, bson.Unmarshal(raw, &stored))

	out := decodeMap(t, stored)
	require.Equal(t, 42.0, out["studentId"])
	require.Equal(t, "1,200.00", out["total"])
	require.Equal(t, []interface{}{map[string]interface{}{
		"name": "Tuition", "amount": 500.0, "feeItemId": "f1", "note": "March",
	}}, out["items"])
	require.NotContains(t, out, "tax")
}

func TestInvoiceItemsNotAListPassThrough(t *testing.T) {
	var invoice Invoice
	require.NoError(t, json.Unmarshal([]byte(`{"items":"none","tax":null}`), &invoice))
	require.Nil(t, invoice.Items)

	out := decodeMap(t, invoice)
	require.Equal(t, "none", out["items"])
	require.Contains(t, out, "tax")
	require.Nil(t, out["tax"])
}

func TestFeeItemWritesOnlySuppliedFields(t *testing.T) {
	var item FeeItem
	require.NoError(t, json.Unmarshal([]byte(`{"label":"Bus"}`), &item))
	item.Stamp(now)

	raw, err := bson.Marshal(item)
	require.NoError(t, err)
	var doc bson.M
	require.NoError(t, bson.Unmarshal(raw, &doc))
	require.NotContains(t, doc, "name")
	require.NotContains(t, doc, "amount")
	require.NotContains(t, doc, "type")
	require.Equal(t, "Bus", doc["label"])

	out := decodeMap(t, item)
	require.NotContains(t, out, "name")
	require.NotContains(t, out, "amount")
	require.Equal(t, "Bus", out["label"])
}

func TestStudentReadsMistypedStoredFields(t *testing.T) {
	raw, err := bson.Marshal(bson.D{
		{Key: "_id", Value: primitive.NewObjectID()},
		{Key: "name", Value: "Ravi"},
		{Key: "grade", Value: int32(3)},
		{Key: "fatherName", Value: nil},
		{Key: "dateOfBirth", Value: "2019-01-01"},
	})
	require.NoError(t, err)

	var student Student
	require.NoError(t, bson.Unmarshal(raw, &student))
	require.Equal(t, "Ravi", student.Name)
	require.Equal(t, "", student.Grade)

	out := decodeMap(t, student)
	require.Equal(t, 3.0, out["grade"])
	require.Equal(t, "2019-01-01", out["dateOfBirth"])
	require.Nil(t, out["fatherName"])
}

func TestDefaultFeeItems(t *testing.T) {
	items := DefaultFeeItems(now)
	require.Len(t, items, 4)
	require.Equal(t, "Tuition Fee", *items[0].Name)
	require.Equal(t, "Transportation", *items[1].Name)
	require.Equal(t, 1000.0, *items[3].Amount)
	require.Equal(t, FeeOneTime, *items[3].Type)
	for _, item := range items {
		require.False(t, item.Id.IsZero())
		require.Equal(t, now, item.CreatedAt)
	}
}

func TestParseID(t *testing.T) {
	id := primitive.NewObjectID()
	parsed, err := ParseID(id.Hex())
	require.NoError(t, err)
	require.Equal(t, id, parsed)

	_, err = ParseID("not-an-id")
	require.True(t, errs.IsInvalid(err))
}
