package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	appoutbox "hotelfront/internal/app/outbox"
	infraoutbox "hotelfront/internal/infra/outbox"
)

// Outbox keeps outbox records in process so the relay worker can run without Mongo.
type Outbox struct {
	mu      sync.Mutex
	records map[string]*infraoutbox.Record
	now     func() time.Time
}

func NewOutbox() *Outbox {
	return &Outbox{records: make(map[string]*infraoutbox.Record), now: time.Now}
}

var (
	_ appoutbox.Outbox  = (*Outbox)(nil)
	_ infraoutbox.Store = (*Outbox)(nil)
)

func (o *Outbox) Add(_ context.Context, ev appoutbox.EventRecord) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	rec := infraoutbox.NewRecord(ev, o.now().UTC())
	o.records[rec.ID] = &rec
	return nil
}

// Claim hands out the oldest due record, including claims whose lease lapsed.
func (o *Outbox) Claim(_ context.Context, workerID string) (*infraoutbox.Record, error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	now := o.now().UTC()
	var due []*infraoutbox.Record
	for _, rec := range o.records {
		if infraoutbox.Claimable(*rec, now) {
			due = append(due, rec)
		}
	}
	if len(due) == 0 {
		return nil, nil
	}
	sort.Slice(due, func(i, j int) bool {
		if due[i].NextAttempt.Equal(due[j].NextAttempt) {
			return due[i].CreatedAt.Before(due[j].CreatedAt)
		}
		return due[i].NextAttempt.Before(due[j].NextAttempt)
	})
	rec := due[0]
	rec.State = infraoutbox.StateClaimed
	rec.ClaimedBy = workerID
	rec.ClaimedAt = now
	out := *rec
	return &out, nil
}

func (o *Outbox) MarkSent(_ context.Context, id string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if rec, ok := o.records[id]; ok {
		rec.State = infraoutbox.StateSent
		rec.SentAt = o.now().UTC()
	}
	return nil
}

func (o *Outbox) MarkFailed(_ context.Context, id string, next time.Time, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if rec, ok := o.records[id]; ok {
		rec.State = infraoutbox.StateFailed
		rec.NextAttempt = next
		rec.LastError = errMsg
		rec.Attempts++
	}
	return nil
}

func (o *Outbox) MarkDead(_ context.Context, id string, errMsg string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	if rec, ok := o.records[id]; ok {
		rec.State = infraoutbox.StateDead
		rec.LastError = errMsg
		rec.Attempts++
	}
	return nil
}

// Records returns a copy of every record, oldest first.
func (o *Outbox) Records() []infraoutbox.Record {
	o.mu.Lock()
	defer o.mu.Unlock()
	out := make([]infraoutbox.Record, 0, len(o.records))
	for _, rec := range o.records {
		out = append(out, *rec)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out
}
