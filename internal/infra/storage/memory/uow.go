package memory

import (
	"context"
	"errors"
	"sync"

	appoutbox "hotelfront/internal/app/outbox"
	"hotelfront/internal/app/uow"
)

var ErrFactoryMisconfigured = errors.New("memory: unit of work factory misconfigured")

// Factory opens units whose outbox writes land in Outbox only on commit.
type Factory struct {
	Outbox appoutbox.Outbox
}

func (f Factory) Begin(_ context.Context, _ uow.TxOptions) (uow.UnitOfWork, error) {
	if f.Outbox == nil {
		return nil, ErrFactoryMisconfigured
	}
	return &Unit{target: f.Outbox}, nil
}

type Unit struct {
	target appoutbox.Outbox

	mu      sync.Mutex
	pending []appoutbox.EventRecord
	done    bool
}

func (u *Unit) Outbox() appoutbox.Outbox {
	return bufferedOutbox{u}
}

func (u *Unit) Commit(ctx context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	if u.done {
		return nil
	}
	u.done = true
	for _, rec := range u.pending {
		if err := u.target.Add(ctx, rec); err != nil {
			return err
		}
	}
	u.pending = nil
	return nil
}

func (u *Unit) Rollback(context.Context) error {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.done = true
	u.pending = nil
	return nil
}

type bufferedOutbox struct{ u *Unit }

func (b bufferedOutbox) Add(_ context.Context, rec appoutbox.EventRecord) error {
	b.u.mu.Lock()
	defer b.u.mu.Unlock()
	b.u.pending = append(b.u.pending, rec)
	return nil
}
