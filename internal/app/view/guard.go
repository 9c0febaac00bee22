// Package view tracks which asynchronous results may still be shown.
package view

import "sync"

// Ticket stamps a load with the generation it was started in.
type Ticket struct {
	gen uint64
}

// Guard drops results of superseded loads and of views that are gone.
// The zero value is a mounted guard.
type Guard struct {
	mu        sync.Mutex
	gen       uint64
	unmounted bool
}

// Begin starts a load and supersedes every earlier ticket.
func (g *Guard) Begin() Ticket {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.gen++
	return Ticket{gen: g.gen}
}

// Valid reports whether a result for t may be applied now.
func (g *Guard) Valid(t Ticket) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.unmounted && t.gen == g.gen
}

// Apply runs fn when t is still valid. fn runs under the guard lock and must
// not call back into the guard.
func (g *Guard) Apply(t Ticket, fn func()) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.unmounted || t.gen != g.gen {
		return false
	}
	fn()
	return true
}

func (g *Guard) Unmount() {
	g.mu.Lock()
	g.unmounted = true
	g.mu.Unlock()
}

func (g *Guard) Mounted() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return !g.unmounted
}
