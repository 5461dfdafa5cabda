package store

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"school-backend/errs"
	"school-backend/model"
)

const ns = "kids_zone_academy.students"

func newMock(t *testing.T) *mtest.T {
	return mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
}

func TestListStudents(t *testing.T) {
	mt := newMock(t)

	mt.Run("decodes every document", func(mt *mtest.T) {
		first := primitive.NewObjectID()
		second := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateCursorResponse(1, ns, mtest.FirstBatch,
				bson.D{{Key: "_id", Value: first}, {Key: "name", Value: "Asha"}, {Key: "rollNumber", Value: "2024001"}}),
			mtest.CreateCursorResponse(0, ns, mtest.NextBatch,
				bson.D{{Key: "_id", Value: second}, {Key: "name", Value: "Ravi"}, {Key: "rollNumber", Value: "2024002"}}),
		)

		students, err := NewStudents(mt.DB).List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, students, 2)
		require.Equal(mt, first, students[0].Id)
		require.Equal(mt, "Ravi", students[1].Name)
	})

	mt.Run("empty collection is an empty slice", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		students, err := NewStudents(mt.DB).List(context.Background())
		require.NoError(mt, err)
		require.NotNil(mt, students)
		require.Empty(mt, students)
	})

	mt.Run("store failure", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Message: "boom", Name: "BadValue"}))

		_, err := NewStudents(mt.DB).List(context.Background())
		require.Error(mt, err)
		require.Equal(mt, 500, errs.Status(err))
	})
}

func TestGetStudentNotFound(t *testing.T) {
	mt := newMock(t)
	mt.Run("no document", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := NewStudents(mt.DB).Get(context.Background(), primitive.NewObjectID())
		require.True(mt, errs.IsNotFound(err))
		require.EqualError(mt, err, "Student not found")
	})
}

func TestLastRollNumber(t *testing.T) {
	mt := newMock(t)

	mt.Run("highest of the year", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{{Key: "_id", Value: primitive.NewObjectID()}, {Key: "rollNumber", Value: "2024012"}}))

		last, err := NewStudents(mt.DB).LastRollNumber(context.Background(), "2024")
		require.NoError(mt, err)
		require.Equal(mt, "2024012", last)
	})

	mt.Run("none this year", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		last, err := NewStudents(mt.DB).LastRollNumber(context.Background(), "2024")
		require.NoError(mt, err)
		require.Empty(mt, last)
	})
}

func TestUpdate(t *testing.T) {
	mt := newMock(t)

	mt.Run("unmatched id", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 0},
			bson.E{Key: "nModified", Value: 0},
		))

		_, err := NewFeeItems(mt.DB).Update(context.Background(), primitive.NewObjectID(), bson.M{"amount": 10})
		require.True(mt, errs.IsNotFound(err))
		require.EqualError(mt, err, "Fee item not found")
	})

	mt.Run("returns refetched document", func(mt *mtest.T) {
		id := primitive.NewObjectID()
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateCursorResponse(0, "kids_zone_academy.fee_items", mtest.FirstBatch,
				bson.D{{Key: "_id", Value: id}, {Key: "name", Value: "Tuition Fee"}, {Key: "amount", Value: 650.0}, {Key: "type", Value: "monthly"}}),
		)

		item, err := NewFeeItems(mt.DB).Update(context.Background(), id, bson.M{"amount": 650.0})
		require.NoError(mt, err)
		require.Equal(mt, 650.0, *item.Amount)
		require.Equal(mt, "Tuition Fee", *item.Name)
	})
}

func TestDelete(t *testing.T) {
	mt := newMock(t)

	mt.Run("missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))
		err := NewInvoices(mt.DB).Delete(context.Background(), primitive.NewObjectID())
		require.EqualError(mt, err, "Invoice not found")
	})

	mt.Run("existing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))
		require.NoError(mt, NewInvoices(mt.DB).Delete(context.Background(), primitive.NewObjectID()))
	})

	mt.Run("by student", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))
		n, err := NewInvoices(mt.DB).DeleteByStudent(context.Background(), primitive.NewObjectID().Hex())
		require.NoError(mt, err)
		require.EqualValues(mt, 3, n)
	})
}

func TestInsertFeeItems(t *testing.T) {
	mt := newMock(t)
	mt.Run("insert many", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse())
		err := NewFeeItems(mt.DB).InsertMany(context.Background(), model.DefaultFeeItems(time.Now()))
		require.NoError(mt, err)
	})
}

func TestCounterIncrement(t *testing.T) {
	mt := newMock(t)

	mt.Run("returns the incremented value", func(mt *mtest.T) {
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "value", Value: bson.D{
				{Key: "_id", Value: "rollNumber:2024"},
				{Key: "seq", Value: 13},
			}}),
		)

		n, err := NewCounters(mt.DB).Increment(context.Background(), "rollNumber:2024", 12)
		require.NoError(mt, err)
		require.Equal(mt, 13, n)
	})

	mt.Run("unset counter reads as zero", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, "kids_zone_academy.counters", mtest.FirstBatch))

		n, err := NewCounters(mt.DB).Current(context.Background(), "rollNumber:2024")
		require.NoError(mt, err)
		require.Zero(mt, n)
	})
}

func TestAttendanceByTeacher(t *testing.T) {
	mt := newMock(t)
	const attendanceNS = "kids_zone_academy.attendance"

	mt.Run("decodes records with null check-out", func(mt *mtest.T) {
		teacherID := primitive.NewObjectID()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, attendanceNS, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: primitive.NewObjectID()},
				{Key: "teacherId", Value: teacherID},
				{Key: "date", Value: "2024-05-02"},
				{Key: "checkInTime", Value: "08:55:00"},
				{Key: "checkOutTime", Value: nil},
				{Key: "status", Value: "present"},
			}))

		records, err := NewAttendance(mt.DB).ListByTeacher(context.Background(), teacherID)
		require.NoError(mt, err)
		require.Len(mt, records, 1)
		require.Equal(mt, teacherID, records[0].TeacherID)
		require.Equal(mt, "2024-05-02", *records[0].Date)
		require.Nil(mt, records[0].CheckOutTime)
	})

	mt.Run("no record for the day", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateCursorResponse(0, attendanceNS, mtest.FirstBatch))

		_, err := NewAttendance(mt.DB).FindForDay(context.Background(), primitive.NewObjectID(), "2024-05-02")
		require.True(mt, errs.IsNotFound(err))
		require.EqualError(mt, err, "Attendance record not found")
	})

	mt.Run("cascade delete reports the count", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 3}))

		n, err := NewAttendance(mt.DB).DeleteByTeacher(context.Background(), primitive.NewObjectID())
		require.NoError(mt, err)
		require.EqualValues(mt, 3, n)
	})
}
