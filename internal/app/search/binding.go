package search

import (
	"fmt"
	"sync"
	"sync/atomic"
)

var bindingSeq atomic.Uint64

// Binding syncs an editable search input with a Store in both directions.
//
// Local edits update the displayed text at once and reach the store through
// an ordered, fire-and-forget queue. A store change written by someone else
// replaces the displayed text only when no local write is still queued: the
// last local edit wins over the next external update.
type Binding struct {
	store  *Store
	origin Origin

	mu       sync.Mutex
	display  string
	inflight int
	seq      uint64
	cutoff   uint64
	closed   bool

	// held while a queued edit or an escape reaches the store
	applyMu sync.Mutex

	writes      chan edit
	done        chan struct{}
	closeOnce   sync.Once
	unsubscribe func()
	wg          sync.WaitGroup
}

// Bind attaches a new input to store, starting from its current value.
func Bind(store *Store) *Binding {
	b := &Binding{
		store:   store,
		origin:  Origin(fmt.Sprintf("input-%d", bindingSeq.Add(1))),
		display: store.Value(),
		writes:  make(chan edit, 64),
		done:    make(chan struct{}),
	}
	b.unsubscribe = store.Subscribe(b.onChange)
	b.wg.Add(1)
	go b.pump()
	return b
}

// Edit records a keystroke-level change of the input.
func (b *Binding) Edit(value string) {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return
	}
	b.display = value
	b.inflight++
	b.seq++
	w := edit{seq: b.seq, value: value}
	b.mu.Unlock()

	select {
	case b.writes <- w:
	case <-b.done:
	}
}

// Escape clears a non-empty query and reports whether focus goes back to the input.
// The store is reset before Escape returns and edits still queued are dropped.
func (b *Binding) Escape() bool {
	b.applyMu.Lock()
	defer b.applyMu.Unlock()

	b.mu.Lock()
	if b.closed || (b.inflight == 0 && b.store.Value() == "") {
		b.mu.Unlock()
		return false
	}
	b.display = ""
	b.cutoff = b.seq
	b.mu.Unlock()

	if b.store.Value() != "" {
		b.store.Reset()
	}
	return true
}

// Display is the text currently shown in the input.
func (b *Binding) Display() string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.display
}

// Pending counts local writes not yet applied to the store.
func (b *Binding) Pending() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.inflight
}

func (b *Binding) Close() {
	b.closeOnce.Do(func() {
		b.mu.Lock()
		b.closed = true
		b.mu.Unlock()
		close(b.done)
		b.unsubscribe()
		b.wg.Wait()
	})
}

func (b *Binding) pump() {
	defer b.wg.Done()
	for {
		select {
		case w := <-b.writes:
			b.apply(w)
		case <-b.done:
			return
		}
	}
}

func (b *Binding) apply(w edit) {
	b.applyMu.Lock()
	defer b.applyMu.Unlock()

	b.mu.Lock()
	if w.seq <= b.cutoff {
		if b.inflight > 0 {
			b.inflight--
		}
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()
	b.store.SetFrom(b.origin, w.value)
}

type edit struct {
	seq   uint64
	value string
}

func (b *Binding) onChange(ch Change) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if ch.Origin == b.origin {
		if b.inflight > 0 {
			b.inflight--
		}
		return
	}
	if b.inflight > 0 {
		return
	}
	b.display = ch.Value
}
