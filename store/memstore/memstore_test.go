package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"school-backend/errs"
	"school-backend/model"
)

func TestUpdateMergesFields(t *testing.T) {
	ctx := context.Background()
	s := New()

	name, amount := "Tuition Fee", 500.0
	item := model.FeeItem{Name: &name, Amount: &amount}
	item.Stamp(time.Now())
	require.NoError(t, s.FeeItems.Insert(ctx, &item))

	later := time.Now().Add(time.Hour).UTC().Truncate(time.Millisecond)
	updated, err := s.FeeItems.Update(ctx, item.Id, bson.M{"amount": 650.0, "note": "raised", "updatedAt": later})
	require.NoError(t, err)
	require.Equal(t, 650.0, *updated.Amount)
	require.Equal(t, "Tuition Fee", *updated.Name)
	require.Equal(t, "raised", updated.Extra["note"])
	require.True(t, later.Equal(updated.UpdatedAt))

	_, err = s.FeeItems.Update(ctx, primitive.NewObjectID(), bson.M{"amount": 1.0})
	require.True(t, errs.IsNotFound(err))
}

func TestDeleteByStudentKeepsOthers(t *testing.T) {
	ctx := context.Background()
	s := New()
	studentID := primitive.NewObjectID().Hex()

	for _, ref := range []string{studentID, "someone-else", studentID} {
		ref := ref
		invoice := model.Invoice{StudentID: &ref}
		invoice.Stamp(time.Now())
		require.NoError(t, s.Invoices.Insert(ctx, &invoice))
	}

	n, err := s.Invoices.DeleteByStudent(ctx, studentID)
	require.NoError(t, err)
	require.EqualValues(t, 2, n)

	left, err := s.Invoices.List(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	require.Equal(t, "someone-else", *left[0].StudentID)
}

func TestLastRollNumberIsLexicalMax(t *testing.T) {
	ctx := context.Background()
	s := New()
	for _, roll := range []string{"2023014", "2024002", "2024010", "2024009"} {
		student := model.Student{Id: primitive.NewObjectID(), RollNumber: roll}
		require.NoError(t, s.Students.Insert(ctx, &student))
	}

	last, err := s.Students.LastRollNumber(ctx, "2024")
	require.NoError(t, err)
	require.Equal(t, "2024010", last)

	last, err = s.Students.LastRollNumber(ctx, "2025")
	require.NoError(t, err)
	require.Empty(t, last)
}

func TestInsertRejectsDuplicateID(t *testing.T) {
	ctx := context.Background()
	s := New()
	student := model.Student{Id: primitive.NewObjectID()}
	require.NoError(t, s.Students.Insert(ctx, &student))
	require.Error(t, s.Students.Insert(ctx, &student))
}

func TestAttendanceQueries(t *testing.T) {
	ctx := context.Background()
	s := New()
	asha, ravi := primitive.NewObjectID(), primitive.NewObjectID()

	for _, rec := range []struct {
		teacher primitive.ObjectID
		day     string
	}{
		{asha, "2024-05-01"},
		{ravi, "2024-05-01"},
		{asha, "2024-05-03"},
		{asha, "2024-05-02"},
	} {
		record := model.CheckIn(rec.teacher, rec.day, "08:50:00", "09:00:00", nil, "School Campus")
		record.Stamp(time.Now())
		require.NoError(t, s.Attendance.Insert(ctx, record))
	}

	mine, err := s.Attendance.ListByTeacher(ctx, asha)
	require.NoError(t, err)
	require.Len(t, mine, 3)
	require.Equal(t, "2024-05-03", *mine[0].Date)
	require.Equal(t, "2024-05-01", *mine[2].Date)

	day, err := s.Attendance.ListByDate(ctx, "2024-05-01")
	require.NoError(t, err)
	require.Len(t, day, 2)

	found, err := s.Attendance.FindForDay(ctx, ravi, "2024-05-01")
	require.NoError(t, err)
	require.Equal(t, ravi, found.TeacherID)
	_, err = s.Attendance.FindForDay(ctx, ravi, "2024-05-02")
	require.True(t, errs.IsNotFound(err))

	n, err := s.Attendance.DeleteByTeacher(ctx, asha)
	require.NoError(t, err)
	require.EqualValues(t, 3, n)
	left, err := s.Attendance.List(ctx)
	require.NoError(t, err)
	require.Len(t, left, 1)
	require.Equal(t, ravi, left[0].TeacherID)
}
