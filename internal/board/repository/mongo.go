package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/jobhuntboard/jobhuntboard/internal/board"
)

// MongoRemote implements Remote on a MongoDB collection with one record per
// subject: {sub, board, updatedAt}.
type MongoRemote struct {
	col *mongo.Collection
}

// NewMongoRemote creates the remote store and ensures the unique sub index.
func NewMongoRemote(col *mongo.Collection) *MongoRemote {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "sub", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRemote{col: col}
}

type boardRecord struct {
	Sub       string    `bson:"sub"`
	Board     bson.M    `bson:"board"`
	UpdatedAt time.Time `bson:"updatedAt"`
}

func (m *MongoRemote) Load(ctx context.Context, sub string) (map[string]any, error) {
	var rec boardRecord
	if err := m.col.FindOne(ctx, bson.M{"sub": sub}).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("load board record: %w", err)
	}
	return normalizeRaw(rec.Board), nil
}

func (m *MongoRemote) Save(ctx context.Context, sub string, b board.Board) error {
	doc, err := toBSON(b)
	if err != nil {
		return err
	}
	rec := bson.M{"$set": bson.M{"board": doc, "updatedAt": time.Now().UTC()}}
	opts := options.Update().SetUpsert(true)
	if _, err := m.col.UpdateOne(ctx, bson.M{"sub": sub}, rec, opts); err != nil {
		return fmt.Errorf("save board record: %w", err)
	}
	return nil
}

func toBSON(b board.Board) (bson.M, error) {
	data, err := bson.Marshal(b)
	if err != nil {
		return nil, fmt.Errorf("marshal board: %w", err)
	}
	var doc bson.M
	if err := bson.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("unmarshal board: %w", err)
	}
	return doc, nil
}

// normalizeRaw flattens bson decoding artifacts (bson.M, bson.A, primitive
// ints) into the plain map/slice shapes migration expects. A document that
// cannot round-trip comes back nil, which migration treats as absent.
func normalizeRaw(doc bson.M) map[string]any {
	if doc == nil {
		return nil
	}
	data, err := json.Marshal(doc)
	if err != nil {
		return nil
	}
	var out map[string]any
	if err := json.Unmarshal(data, &out); err != nil {
		return nil
	}
	return out
}
