// Package store keeps students, invoices, fee items, teachers and
// attendance records in MongoDB.
package store

import (
	"context"
	"regexp"
	"time"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"school-backend/errs"
	"school-backend/model"
)

const counterCollection = "counters"

type Store struct {
	Students   *Students
	Invoices   *Invoices
	FeeItems   *FeeItems
	Teachers   *Teachers
	Attendance *Attendance
	Counters   *Counters

	db *mongo.Database
}

func New(db *mongo.Database) *Store {
	return &Store{
		Students:   NewStudents(db),
		Invoices:   NewInvoices(db),
		FeeItems:   NewFeeItems(db),
		Teachers:   NewTeachers(db),
		Attendance: NewAttendance(db),
		Counters:   NewCounters(db),
		db:         db,
	}
}

// Connect opens a client for uri and checks the server answers a ping
// within timeout.
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, errors.Wrap(err, "connect to mongo")
	}
	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, errors.Wrap(err, "ping mongo")
	}
	return client, nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.db.Client().Ping(ctx, nil)
}

type Students struct {
	*Collection[model.Student]
}

func NewStudents(db *mongo.Database) *Students {
	return &Students{newCollection[model.Student](db.Collection(model.StudentCollection), "Student")}
}

// LastRollNumber returns the highest roll number starting with year.
func (s *Students) LastRollNumber(ctx context.Context, year string) (string, error) {
	filter := bson.M{"rollNumber": bson.M{"$regex": "^" + regexp.QuoteMeta(year)}}
	opts := options.FindOne().
		SetProjection(bson.M{"rollNumber": 1}).
		SetSort(bson.D{{Key: "rollNumber", Value: -1}})

	var doc struct {
		RollNumber string `bson:"rollNumber"`
	}
	err := s.coll.FindOne(ctx, filter, opts).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return "", nil
	}
	if err != nil {
		return "", errs.Store(s.op("find last roll number in"), err)
	}
	return doc.RollNumber, nil
}

type Invoices struct {
	*Collection[model.Invoice]
}

func NewInvoices(db *mongo.Database) *Invoices {
	return &Invoices{newCollection[model.Invoice](db.Collection(model.InvoiceCollection), "Invoice")}
}

// DeleteByStudent removes every invoice whose studentId is studentID.
func (i *Invoices) DeleteByStudent(ctx context.Context, studentID string) (int64, error) {
	res, err := i.coll.DeleteMany(ctx, bson.M{"studentId": studentID})
	if err != nil {
		return 0, errs.Store(i.op("delete"), err)
	}
	return res.DeletedCount, nil
}

type FeeItems struct {
	*Collection[model.FeeItem]
}

func NewFeeItems(db *mongo.Database) *FeeItems {
	return &FeeItems{newCollection[model.FeeItem](db.Collection(model.FeeItemCollection), "Fee item")}
}

func (f *FeeItems) InsertMany(ctx context.Context, items []model.FeeItem) error {
	docs := make([]interface{}, len(items))
	for i := range items {
		docs[i] = items[i]
	}
	_, err := f.coll.InsertMany(ctx, docs)
	return errs.Store(f.op("insert"), err)
}

type Teachers struct {
	*Collection[model.Teacher]
}

func NewTeachers(db *mongo.Database) *Teachers {
	return &Teachers{newCollection[model.Teacher](db.Collection(model.TeacherCollection), "Teacher")}
}

type Attendance struct {
	*Collection[model.Attendance]
}

func NewAttendance(db *mongo.Database) *Attendance {
	return &Attendance{newCollection[model.Attendance](db.Collection(model.AttendanceCollection), "Attendance record")}
}

// ListByTeacher returns the teacher's records, latest day first.
func (a *Attendance) ListByTeacher(ctx context.Context, teacherID primitive.ObjectID) ([]model.Attendance, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	return a.find(ctx, bson.M{"teacherId": teacherID}, opts)
}

func (a *Attendance) ListByDate(ctx context.Context, date string) ([]model.Attendance, error) {
	return a.find(ctx, bson.M{"date": date})
}

// FindForDay returns the teacher's record for date.
func (a *Attendance) FindForDay(ctx context.Context, teacherID primitive.ObjectID, date string) (*model.Attendance, error) {
	var doc model.Attendance
	err := a.coll.FindOne(ctx, bson.M{"teacherId": teacherID, "date": date}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errs.NotFound(a.resource)
	}
	if err != nil {
		return nil, errs.Store(a.op("find"), err)
	}
	return &doc, nil
}

// DeleteByTeacher removes every record of the teacher.
func (a *Attendance) DeleteByTeacher(ctx context.Context, teacherID primitive.ObjectID) (int64, error) {
	res, err := a.coll.DeleteMany(ctx, bson.M{"teacherId": teacherID})
	if err != nil {
		return 0, errs.Store(a.op("delete"), err)
	}
	return res.DeletedCount, nil
}
