package store

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"school-backend/errs"
)

// Collection is the CRUD surface shared by every record kind. resource
// names the record in not-found errors.
type Collection[T any] struct {
	coll     *mongo.Collection
	resource string
}

func newCollection[T any](coll *mongo.Collection, resource string) *Collection[T] {
	return &Collection[T]{coll: coll, resource: resource}
}

func (c *Collection[T]) op(name string) string {
	return name + " " + c.coll.Name()
}

// List returns every document in natural order.
func (c *Collection[T]) List(ctx context.Context) ([]T, error) {
	return c.find(ctx, bson.D{})
}

func (c *Collection[T]) find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]T, error) {
	cursor, err := c.coll.Find(ctx, filter, opts...)
	if err != nil {
		return nil, errs.Store(c.op("find"), err)
	}
	defer cursor.Close(ctx)

	docs := []T{}
	for cursor.Next(ctx) {
		var doc T
		if err := cursor.Decode(&doc); err != nil {
			return nil, errs.Store(c.op("decode"), err)
		}
		docs = append(docs, doc)
	}
	if err := cursor.Err(); err != nil {
		return nil, errs.Store(c.op("find"), err)
	}
	return docs, nil
}

func (c *Collection[T]) Get(ctx context.Context, id primitive.ObjectID) (*T, error) {
	var doc T
	err := c.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, errs.NotFound(c.resource)
	}
	if err != nil {
		return nil, errs.Store(c.op("find"), err)
	}
	return &doc, nil
}

func (c *Collection[T]) Insert(ctx context.Context, doc *T) error {
	_, err := c.coll.InsertOne(ctx, doc)
	return errs.Store(c.op("insert"), err)
}

// Update applies set with $set and returns the stored document afterwards.
func (c *Collection[T]) Update(ctx context.Context, id primitive.ObjectID, set bson.M) (*T, error) {
	res, err := c.coll.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": set})
	if err != nil {
		return nil, errs.Store(c.op("update"), err)
	}
	if res.MatchedCount == 0 {
		return nil, errs.NotFound(c.resource)
	}
	return c.Get(ctx, id)
}

func (c *Collection[T]) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := c.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return errs.Store(c.op("delete"), err)
	}
	if res.DeletedCount == 0 {
		return errs.NotFound(c.resource)
	}
	return nil
}

func (c *Collection[T]) Count(ctx context.Context) (int64, error) {
	n, err := c.coll.CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, errs.Store(c.op("count"), err)
	}
	return n, nil
}
