// Package debounce delays actions until input settles.
package debounce

import (
	"sync"
	"time"
)

type entry struct {
	timer *time.Timer
	seq   uint64
}

// Debouncer runs the last action scheduled under a key once no newer action
// arrived for the configured delay. Keys are independent.
type Debouncer struct {
	delay time.Duration

	mu      sync.Mutex
	pending map[string]entry
	seq     uint64
	stopped bool
}

func New(delay time.Duration) *Debouncer {
	return &Debouncer{delay: delay, pending: make(map[string]entry)}
}

// Schedule replaces any pending action under key with fn.
func (d *Debouncer) Schedule(key string, fn func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.stopped {
		return
	}
	if prev, ok := d.pending[key]; ok {
		prev.timer.Stop()
	}
	d.seq++
	seq := d.seq
	d.pending[key] = entry{
		seq:   seq,
		timer: time.AfterFunc(d.delay, func() { d.fire(key, seq, fn) }),
	}
}

// Cancel drops the pending action under key and reports whether there was one.
func (d *Debouncer) Cancel(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	e, ok := d.pending[key]
	if !ok {
		return false
	}
	e.timer.Stop()
	delete(d.pending, key)
	return true
}

func (d *Debouncer) Pending(key string) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	_, ok := d.pending[key]
	return ok
}

// Stop cancels everything. Later Schedule calls are ignored.
func (d *Debouncer) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.stopped = true
	for key, e := range d.pending {
		e.timer.Stop()
		delete(d.pending, key)
	}
}

func (d *Debouncer) fire(key string, seq uint64, fn func()) {
	d.mu.Lock()
	e, ok := d.pending[key]
	// a timer that already fired may lose the race against a newer Schedule
	if !ok || e.seq != seq || d.stopped {
		d.mu.Unlock()
		return
	}
	delete(d.pending, key)
	d.mu.Unlock()
	fn()
}
