package memory

import (
	"context"
	"sync"
)

// Inbox remembers processed event ids for the lifetime of the process.
type Inbox struct {
	mu   sync.RWMutex
	seen map[string]struct{}
}

func NewInbox() *Inbox {
	return &Inbox{seen: make(map[string]struct{})}
}

func (i *Inbox) Seen(_ context.Context, eventID string) (bool, error) {
	i.mu.RLock()
	defer i.mu.RUnlock()
	_, ok := i.seen[eventID]
	return ok, nil
}

func (i *Inbox) Mark(_ context.Context, eventID string) error {
	i.mu.Lock()
	i.seen[eventID] = struct{}{}
	i.mu.Unlock()
	return nil
}
