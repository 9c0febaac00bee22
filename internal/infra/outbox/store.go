package outbox

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	appoutbox "hotelfront/internal/app/outbox"
)

const (
	StateNew     = "NEW"
	StateClaimed = "CLAIMED"
	StateSent    = "SENT"
	StateFailed  = "FAILED"
	// StateDead records are kept for inspection and never relayed again.
	StateDead = "DEAD"
)

// ClaimLease is how long a claim holds. Records claimed by a worker that died
// before marking them become due again once the lease runs out.
const ClaimLease = 2 * time.Minute

// sentRetention bounds how long delivered records stay in Mongo.
const sentRetention = 72 * time.Hour

// Claimable reports whether rec can be handed to a worker at now.
func Claimable(rec Record, now time.Time) bool {
	switch rec.State {
	case StateNew, StateFailed:
		return !rec.NextAttempt.After(now)
	case StateClaimed:
		return !rec.ClaimedAt.Add(ClaimLease).After(now)
	}
	return false
}

// Record is an outbox entry together with its delivery state.
type Record struct {
	ID          string            `bson:"_id"`
	Name        string            `bson:"name"`
	Payload     []byte            `bson:"payload"`
	OccurredAt  time.Time         `bson:"occurred_at"`
	Aggregate   string            `bson:"aggregate"`
	Headers     map[string]string `bson:"headers"`
	State       string            `bson:"state"`
	Attempts    int               `bson:"attempts"`
	NextAttempt time.Time         `bson:"next_attempt_at"`
	ClaimedBy   string            `bson:"claimed_by,omitempty"`
	ClaimedAt   time.Time         `bson:"claimed_at,omitempty"`
	SentAt      time.Time         `bson:"sent_at,omitempty"`
	LastError   string            `bson:"last_error,omitempty"`
	CreatedAt   time.Time         `bson:"created_at"`
}

// NewRecord wraps an encoded event as a fresh, immediately due entry.
func NewRecord(ev appoutbox.EventRecord, now time.Time) Record {
	return Record{
		ID:          ev.ID,
		Name:        ev.Name,
		Payload:     ev.Payload,
		OccurredAt:  ev.OccurredAt,
		Aggregate:   ev.Aggregate,
		Headers:     ev.Headers,
		State:       StateNew,
		NextAttempt: now,
		CreatedAt:   now,
	}
}

// Store is the relay side of the outbox. Claim returns nil when nothing is due.
type Store interface {
	Claim(ctx context.Context, workerID string) (*Record, error)
	MarkSent(ctx context.Context, id string) error
	MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error
	MarkDead(ctx context.Context, id string, errMsg string) error
}

// MongoStore keeps the outbox in a collection. Add joins the caller's session
// when the context carries one.
type MongoStore struct {
	col *mongo.Collection
}

var (
	_ Store            = (*MongoStore)(nil)
	_ appoutbox.Outbox = (*MongoStore)(nil)
)

func NewMongoStore(ctx context.Context, db *mongo.Database) (*MongoStore, error) {
	col := db.Collection("app_outbox")
	_, err := col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "state", Value: 1}, {Key: "next_attempt_at", Value: 1}}},
		{Keys: bson.D{{Key: "state", Value: 1}, {Key: "claimed_at", Value: 1}}},
		{
			Keys: bson.D{{Key: "sent_at", Value: 1}},
			Options: options.Index().
				SetExpireAfterSeconds(int32(sentRetention.Seconds())).
				SetPartialFilterExpression(bson.M{"state": StateSent}),
		},
	})
	if err != nil {
		return nil, fmt.Errorf("outbox: indexes: %w", err)
	}
	return &MongoStore{col: col}, nil
}

func (s *MongoStore) Add(ctx context.Context, ev appoutbox.EventRecord) error {
	_, err := s.col.InsertOne(ctx, NewRecord(ev, time.Now().UTC()))
	return err
}

func (s *MongoStore) Claim(ctx context.Context, workerID string) (*Record, error) {
	now := time.Now().UTC()
	filter := bson.M{"$or": bson.A{
		bson.M{"state": bson.M{"$in": bson.A{StateNew, StateFailed}}, "next_attempt_at": bson.M{"$lte": now}},
		bson.M{"state": StateClaimed, "claimed_at": bson.M{"$lte": now.Add(-ClaimLease)}},
	}}
	update := bson.M{"$set": bson.M{"state": StateClaimed, "claimed_by": workerID, "claimed_at": now}}
	opts := options.FindOneAndUpdate().
		SetReturnDocument(options.After).
		SetSort(bson.D{{Key: "next_attempt_at", Value: 1}})
	var rec Record
	if err := s.col.FindOneAndUpdate(ctx, filter, update, opts).Decode(&rec); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	return &rec, nil
}

func (s *MongoStore) MarkSent(ctx context.Context, id string) error {
	_, err := s.col.UpdateByID(ctx, id, bson.M{"$set": bson.M{"state": StateSent, "sent_at": time.Now().UTC()}})
	return err
}

func (s *MongoStore) MarkFailed(ctx context.Context, id string, next time.Time, errMsg string) error {
	update := bson.M{
		"$set": bson.M{
			"state":           StateFailed,
			"next_attempt_at": next,
			"last_error":      errMsg,
		},
		"$inc": bson.M{"attempts": 1},
	}
	_, err := s.col.UpdateByID(ctx, id, update)
	return err
}

func (s *MongoStore) MarkDead(ctx context.Context, id string, errMsg string) error {
	update := bson.M{
		"$set": bson.M{"state": StateDead, "last_error": errMsg},
		"$inc": bson.M{"attempts": 1},
	}
	_, err := s.col.UpdateByID(ctx, id, update)
	return err
}
