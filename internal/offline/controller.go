package offline

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Controller tracks the worker currently in control of a host's requests.
type Controller struct {
	mu      sync.RWMutex
	current *Worker
	log     *zap.Logger
}

// NewController returns a Controller with no worker claimed.
func NewController(log *zap.Logger) *Controller {
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{log: log}
}

// Claim makes w the controlling worker. In-flight requests finish on the
// previous worker.
func (c *Controller) Claim(_ context.Context, w *Worker) error {
	c.mu.Lock()
	prev := c.current
	c.current = w
	c.mu.Unlock()

	fields := []zap.Field{zap.String("cache", w.Version())}
	if prev != nil {
		fields = append(fields, zap.String("previous", prev.Version()))
	}
	c.log.Info("worker claimed clients", fields...)
	return nil
}

// Current returns the controlling worker, or nil.
func (c *Controller) Current() *Worker {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.current
}
