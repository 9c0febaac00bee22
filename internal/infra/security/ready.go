package security

import (
	"context"
	"log/slog"
	"net/http"
	"sync/atomic"
	"time"
)

// ReadyGate blocks outbound calls until the auth provider answers its
// readiness probe. Once ready it stays open.
type ReadyGate struct {
	URL      string
	Interval time.Duration
	Client   *http.Client
	Logger   *slog.Logger

	ready atomic.Bool
}

// Wait polls the probe at Interval (500ms by default) until it returns 2xx
// or ctx ends. An empty URL means the provider is always available.
func (g *ReadyGate) Wait(ctx context.Context) error {
	if g == nil || g.URL == "" || g.ready.Load() {
		return nil
	}
	interval := g.Interval
	if interval <= 0 {
		interval = 500 * time.Millisecond
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for attempt := 1; ; attempt++ {
		if g.probe(ctx) {
			g.ready.Store(true)
			if g.Logger != nil {
				g.Logger.Info("auth provider ready", "attempts", attempt)
			}
			return nil
		}
		if g.Logger != nil && attempt == 1 {
			g.Logger.Info("waiting for auth provider", "url", g.URL)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (g *ReadyGate) Ready() bool {
	return g == nil || g.URL == "" || g.ready.Load()
}

func (g *ReadyGate) probe(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, g.URL, nil)
	if err != nil {
		return false
	}
	client := g.Client
	if client == nil {
		client = &http.Client{Timeout: 2 * time.Second}
	}
	resp, err := client.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode >= 200 && resp.StatusCode < 300
}
