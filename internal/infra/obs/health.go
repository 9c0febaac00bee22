package obs

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/sync/errgroup"
)

// Check probes one dependency.
type Check func(ctx context.Context) error

// HealthHandlers serves /livez and /readyz. Readiness probes every check in
// parallel under a shared deadline.
type HealthHandlers struct {
	Checks  map[string]Check
	Timeout time.Duration
}

const checkOK = "ok"

func (h HealthHandlers) Livez(c *gin.Context) {
	c.Status(http.StatusOK)
}

func (h HealthHandlers) Readyz(c *gin.Context) {
	report, ready := h.probe(c.Request.Context())
	if !ready {
		c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not ready", "checks": report})
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ready", "checks": report})
}

func (h HealthHandlers) probe(ctx context.Context) (map[string]string, bool) {
	timeout := h.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	var (
		mu     sync.Mutex
		report = make(map[string]string, len(h.Checks))
		ready  = true
	)
	g, gctx := errgroup.WithContext(ctx)
	for name, check := range h.Checks {
		g.Go(func() error {
			status := checkOK
			if err := check(gctx); err != nil {
				status = err.Error()
			}
			mu.Lock()
			report[name] = status
			ready = ready && status == checkOK
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()
	return report, ready
}
