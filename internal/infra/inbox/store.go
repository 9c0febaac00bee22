// Package inbox deduplicates broker deliveries in Mongo.
package inbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	collection = "app_inbox"
	retention  = 7 * 24 * time.Hour
)

// Store tracks handled event ids per consumer group. Entries expire after a
// week, well past any broker redelivery window.
type Store struct {
	col      *mongo.Collection
	consumer string
}

func NewStore(ctx context.Context, db *mongo.Database, consumer string) (*Store, error) {
	col := db.Collection(collection)
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "event_id", Value: 1}, {Key: "consumer", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
		{
			Keys:    bson.D{{Key: "handled_at", Value: 1}},
			Options: options.Index().SetExpireAfterSeconds(int32(retention.Seconds())),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("inbox: indexes: %w", err)
	}
	return &Store{col: col, consumer: consumer}, nil
}

func (s *Store) filter(eventID string) bson.M {
	return bson.M{"event_id": eventID, "consumer": s.consumer}
}

func (s *Store) Seen(ctx context.Context, eventID string) (bool, error) {
	err := s.col.FindOne(ctx, s.filter(eventID), options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, mongo.ErrNoDocuments):
		return false, nil
	default:
		return false, err
	}
}

// Mark records eventID as handled. Marking twice is harmless.
func (s *Store) Mark(ctx context.Context, eventID string) error {
	_, err := s.col.UpdateOne(ctx, s.filter(eventID),
		bson.M{"$setOnInsert": bson.M{"handled_at": time.Now().UTC()}},
		options.Update().SetUpsert(true))
	if mongo.IsDuplicateKeyError(err) {
		return nil
	}
	return err
}
