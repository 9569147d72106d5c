package kv

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"resume-review/internal/shared/util"
)

const mongoCollection = "kv_records"

type mongoRecord struct {
	Owner     string    `bson:"owner"`
	Key       string    `bson:"key"`
	Value     string    `bson:"value"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

// MongoStore persists entries as documents keyed by (owner, key).
type MongoStore struct {
	client     *mongo.Client
	collection *mongo.Collection
}

// NewMongoStore connects to uri and uses the kv_records collection of database.
func NewMongoStore(ctx context.Context, uri, database string) (*MongoStore, error) {
	clientOptions := options.Client().ApplyURI(uri).SetServerAPIOptions(options.ServerAPI(options.ServerAPIVersion1))
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("mongo connect: %w", err)
	}
	return &MongoStore{
		client:     client,
		collection: client.Database(database).Collection(mongoCollection),
	}, nil
}

// Ping checks connectivity and ensures the unique (owner, key) index.
func (s *MongoStore) Ping(ctx context.Context) error {
	if err := s.client.Ping(ctx, nil); err != nil {
		return fmt.Errorf("mongo ping: %w", err)
	}
	_, err := s.collection.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "owner", Value: 1}, {Key: "key", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("mongo ensure index: %w", err)
	}
	return nil
}

// Close disconnects the client.
func (s *MongoStore) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}

func (s *MongoStore) Get(ctx context.Context, owner, key string) (string, bool, error) {
	var rec mongoRecord
	err := s.collection.FindOne(ctx, bson.M{"owner": util.OwnerKey(owner), "key": key}).Decode(&rec)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("kv get %s: %w", key, err)
	}
	return rec.Value, true, nil
}

func (s *MongoStore) Set(ctx context.Context, owner, key, value string) error {
	if err := validateKey(key); err != nil {
		return err
	}
	ownerKey := util.OwnerKey(owner)
	filter := bson.M{"owner": ownerKey, "key": key}
	update := bson.M{"$set": bson.M{
		"owner":     ownerKey,
		"key":       key,
		"value":     value,
		"updatedAt": time.Now().UTC(),
	}}
	if _, err := s.collection.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("kv set %s: %w", key, err)
	}
	return nil
}

func (s *MongoStore) List(ctx context.Context, owner, pattern string, includeValues bool) ([]Item, error) {
	filter := bson.M{
		"owner": util.OwnerKey(owner),
		"key":   bson.M{"$regex": globToRegex(pattern)},
	}
	findOpts := options.Find().SetSort(bson.D{{Key: "key", Value: 1}})
	if !includeValues {
		findOpts.SetProjection(bson.M{"key": 1})
	}
	cursor, err := s.collection.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, fmt.Errorf("kv list %s: %w", pattern, err)
	}
	defer cursor.Close(ctx)

	out := []Item{}
	for cursor.Next(ctx) {
		var rec mongoRecord
		if err := cursor.Decode(&rec); err != nil {
			return nil, fmt.Errorf("kv list decode: %w", err)
		}
		item := Item{Key: rec.Key}
		if includeValues {
			item.Value = rec.Value
		}
		out = append(out, item)
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("kv list cursor: %w", err)
	}
	return out, nil
}

func (s *MongoStore) Flush(ctx context.Context, owner string) error {
	if _, err := s.collection.DeleteMany(ctx, bson.M{"owner": util.OwnerKey(owner)}); err != nil {
		return fmt.Errorf("kv flush: %w", err)
	}
	return nil
}

// globToRegex anchors the pattern and turns '*' into '.*'.
func globToRegex(pattern string) string {
	parts := strings.Split(pattern, "*")
	for i, p := range parts {
		parts[i] = regexp.QuoteMeta(p)
	}
	return "^" + strings.Join(parts, ".*") + "$"
}

var _ Store = (*MongoStore)(nil)
