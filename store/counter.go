package store

import (
	"context"

	"github.com/pkg/errors"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"school-backend/errs"
)

// Counters keeps atomic sequences as {_id: key, seq: n} documents.
type Counters struct {
	coll *mongo.Collection
}

func NewCounters(db *mongo.Database) *Counters {
	return &Counters{coll: db.Collection(counterCollection)}
}

type counterDoc struct {
	Key string `bson:"_id"`
	Seq int    `bson:"seq"`
}

// Increment raises key to at least floor and then adds one. The $max and
// the $inc are separate updates but each is atomic, and $max never lowers a
// counter, so concurrent callers still receive distinct values.
func (c *Counters) Increment(ctx context.Context, key string, floor int) (int, error) {
	_, err := c.coll.UpdateOne(ctx,
		bson.M{"_id": key},
		bson.M{"$max": bson.M{"seq": floor}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return 0, errs.Store("seed counter "+key, err)
	}

	opts := options.FindOneAndUpdate().
		SetUpsert(true).
		SetReturnDocument(options.After)
	var doc counterDoc
	err = c.coll.FindOneAndUpdate(ctx, bson.M{"_id": key}, bson.M{"$inc": bson.M{"seq": 1}}, opts).Decode(&doc)
	if err != nil {
		return 0, errs.Store("increment counter "+key, err)
	}
	return doc.Seq, nil
}

func (c *Counters) Current(ctx context.Context, key string) (int, error) {
	var doc counterDoc
	err := c.coll.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return 0, nil
	}
	if err != nil {
		return 0, errs.Store("read counter "+key, err)
	}
	return doc.Seq, nil
}

// raise-and-increment in one server-side step
var incrementScript = redis.NewScript(`
local current = tonumber(redis.call("GET", KEYS[1]) or "0")
local floor = tonumber(ARGV[1])
if current < floor then
	current = floor
end
current = current + 1
redis.call("SET", KEYS[1], current)
return current
`)

// RedisCounter keeps sequences as plain integer keys.
type RedisCounter struct {
	client *redis.Client
	prefix string
}

func NewRedisCounter(client *redis.Client, prefix string) *RedisCounter {
	return &RedisCounter{client: client, prefix: prefix}
}

func (r *RedisCounter) key(key string) string {
	return r.prefix + key
}

func (r *RedisCounter) Increment(ctx context.Context, key string, floor int) (int, error) {
	n, err := incrementScript.Run(ctx, r.client, []string{r.key(key)}, floor).Int()
	if err != nil {
		return 0, errs.Store("increment counter "+key, errors.Wrap(err, "redis"))
	}
	return n, nil
}

func (r *RedisCounter) Current(ctx context.Context, key string) (int, error) {
	n, err := r.client.Get(ctx, r.key(key)).Int()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, errs.Store("read counter "+key, errors.Wrap(err, "redis"))
	}
	return n, nil
}

// NewRedisClient builds a client for addr and pings it.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, errors.Wrapf(err, "ping redis %s", addr)
	}
	return client, nil
}
