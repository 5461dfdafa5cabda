// Package memstore keeps records in process memory with the same semantics
// as the MongoDB store: documents are copied in and out as BSON and updates
// are field-level $set merges.
package memstore

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/pkg/errors"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"school-backend/errs"
	"school-backend/model"
)

type Collection[T any] struct {
	resource string

	mu    sync.RWMutex
	order []primitive.ObjectID
	docs  map[primitive.ObjectID]bson.Raw
}

func newCollection[T any](resource string) *Collection[T] {
	return &Collection[T]{
		resource: resource,
		docs:     make(map[primitive.ObjectID]bson.Raw),
	}
}

func decode[T any](raw bson.Raw) (T, error) {
	var doc T
	err := bson.Unmarshal(raw, &doc)
	return doc, errs.Store("decode", err)
}

func (c *Collection[T]) List(_ context.Context) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	docs := make([]T, 0, len(c.order))
	for _, id := range c.order {
		doc, err := decode[T](c.docs[id])
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

// filter returns the documents match accepts, in insertion order.
func (c *Collection[T]) filter(match func(bson.Raw) bool) ([]T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	docs := []T{}
	for _, id := range c.order {
		raw := c.docs[id]
		if !match(raw) {
			continue
		}
		doc, err := decode[T](raw)
		if err != nil {
			return nil, err
		}
		docs = append(docs, doc)
	}
	return docs, nil
}

func (c *Collection[T]) Get(_ context.Context, id primitive.ObjectID) (*T, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.get(id)
}

func (c *Collection[T]) get(id primitive.ObjectID) (*T, error) {
	raw, ok := c.docs[id]
	if !ok {
		return nil, errs.NotFound(c.resource)
	}
	doc, err := decode[T](raw)
	if err != nil {
		return nil, err
	}
	return &doc, nil
}

func (c *Collection[T]) Insert(_ context.Context, doc *T) error {
	raw, err := bson.Marshal(doc)
	if err != nil {
		return errs.Store("insert", err)
	}
	id, ok := bson.Raw(raw).Lookup("_id").ObjectIDOK()
	if !ok {
		return errs.Store("insert", errors.New("document has no ObjectID _id"))
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.docs[id]; exists {
		return errs.Store("insert", errors.Errorf("duplicate key %s", id.Hex()))
	}
	c.order = append(c.order, id)
	c.docs[id] = raw
	return nil
}

func (c *Collection[T]) Update(_ context.Context, id primitive.ObjectID, set bson.M) (*T, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	raw, ok := c.docs[id]
	if !ok {
		return nil, errs.NotFound(c.resource)
	}
	var fields bson.D
	if err := bson.Unmarshal(raw, &fields); err != nil {
		return nil, errs.Store("update", err)
	}
	for key, value := range set {
		replaced := false
		for i := range fields {
			if fields[i].Key == key {
				fields[i].Value = value
				replaced = true
				break
			}
		}
		if !replaced {
			fields = append(fields, bson.E{Key: key, Value: value})
		}
	}
	merged, err := bson.Marshal(fields)
	if err != nil {
		return nil, errs.Store("update", err)
	}
	c.docs[id] = merged
	return c.get(id)
}

func (c *Collection[T]) Delete(_ context.Context, id primitive.ObjectID) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if _, ok := c.docs[id]; !ok {
		return errs.NotFound(c.resource)
	}
	c.remove(id)
	return nil
}

func (c *Collection[T]) remove(id primitive.ObjectID) {
	delete(c.docs, id)
	for i, oid := range c.order {
		if oid == id {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

func (c *Collection[T]) Count(_ context.Context) (int64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return int64(len(c.docs)), nil
}

type Students struct {
	*Collection[model.Student]
}

func (s *Students) LastRollNumber(_ context.Context, year string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	last := ""
	for _, raw := range s.docs {
		roll, ok := raw.Lookup("rollNumber").StringValueOK()
		if ok && strings.HasPrefix(roll, year) && roll > last {
			last = roll
		}
	}
	return last, nil
}

type Invoices struct {
	*Collection[model.Invoice]
}

func (i *Invoices) DeleteByStudent(_ context.Context, studentID string) (int64, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var matched []primitive.ObjectID
	for _, id := range i.order {
		ref, ok := i.docs[id].Lookup("studentId").StringValueOK()
		if ok && ref == studentID {
			matched = append(matched, id)
		}
	}
	for _, id := range matched {
		i.remove(id)
	}
	return int64(len(matched)), nil
}

type FeeItems struct {
	*Collection[model.FeeItem]
}

func (f *FeeItems) InsertMany(ctx context.Context, items []model.FeeItem) error {
	for i := range items {
		if err := f.Insert(ctx, &items[i]); err != nil {
			return err
		}
	}
	return nil
}

type Teachers struct {
	*Collection[model.Teacher]
}

type Attendance struct {
	*Collection[model.Attendance]
}

func teacherIs(teacherID primitive.ObjectID) func(bson.Raw) bool {
	return func(raw bson.Raw) bool {
		ref, ok := raw.Lookup("teacherId").ObjectIDOK()
		return ok && ref == teacherID
	}
}

func dateIs(date string) func(bson.Raw) bool {
	return func(raw bson.Raw) bool {
		day, ok := raw.Lookup("date").StringValueOK()
		return ok && day == date
	}
}

func (a *Attendance) ListByTeacher(_ context.Context, teacherID primitive.ObjectID) ([]model.Attendance, error) {
	records, err := a.filter(teacherIs(teacherID))
	if err != nil {
		return nil, err
	}
	sort.SliceStable(records, func(i, j int) bool {
		return dateOf(records[i]) > dateOf(records[j])
	})
	return records, nil
}

func dateOf(a model.Attendance) string {
	if a.Date == nil {
		return ""
	}
	return *a.Date
}

func (a *Attendance) ListByDate(_ context.Context, date string) ([]model.Attendance, error) {
	return a.filter(dateIs(date))
}

func (a *Attendance) FindForDay(_ context.Context, teacherID primitive.ObjectID, date string) (*model.Attendance, error) {
	byTeacher, onDay := teacherIs(teacherID), dateIs(date)
	records, err := a.filter(func(raw bson.Raw) bool {
		return byTeacher(raw) && onDay(raw)
	})
	if err != nil {
		return nil, err
	}
	if len(records) == 0 {
		return nil, errs.NotFound(a.resource)
	}
	return &records[0], nil
}

func (a *Attendance) DeleteByTeacher(_ context.Context, teacherID primitive.ObjectID) (int64, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	match := teacherIs(teacherID)
	var matched []primitive.ObjectID
	for _, id := range a.order {
		if match(a.docs[id]) {
			matched = append(matched, id)
		}
	}
	for _, id := range matched {
		a.remove(id)
	}
	return int64(len(matched)), nil
}

// Counters is an in-process atomic sequence per key.
type Counters struct {
	mu     sync.Mutex
	values map[string]int
}

func (c *Counters) Increment(_ context.Context, key string, floor int) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.values[key] < floor {
		c.values[key] = floor
	}
	c.values[key]++
	return c.values[key], nil
}

func (c *Counters) Current(_ context.Context, key string) (int, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.values[key], nil
}

type Store struct {
	Students   *Students
	Invoices   *Invoices
	FeeItems   *FeeItems
	Teachers   *Teachers
	Attendance *Attendance
	Counters   *Counters
}

func New() *Store {
	return &Store{
		Students:   &Students{newCollection[model.Student]("Student")},
		Invoices:   &Invoices{newCollection[model.Invoice]("Invoice")},
		FeeItems:   &FeeItems{newCollection[model.FeeItem]("Fee item")},
		Teachers:   &Teachers{newCollection[model.Teacher]("Teacher")},
		Attendance: &Attendance{newCollection[model.Attendance]("Attendance record")},
		Counters:   &Counters{values: make(map[string]int)},
	}
}

func (s *Store) Ping(context.Context) error {
	return nil
}
