package offline

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"go.uber.org/zap"
)

// Registration drives workers through their lifecycle for one host and
// remembers which version was last activated.
type Registration struct {
	mu     sync.Mutex
	store  RegistrationStore
	active *Worker
	log    *zap.Logger
}

// NewRegistration returns a Registration persisting into store.
func NewRegistration(store RegistrationStore, log *zap.Logger) *Registration {
	if log == nil {
		log = zap.NewNop()
	}
	return &Registration{store: store, log: log}
}

// Active returns the worker that won the last Register call.
func (r *Registration) Active() *Worker {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.active
}

// Register installs and activates w. When the store says w's version is
// already active, the install is skipped and the existing cache is reused.
// The previous worker becomes redundant once w is activated. A worker left
// Installed by a failed activation can be registered again.
func (r *Registration) Register(ctx context.Context, w *Worker) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, err := r.store.ActiveVersion(ctx)
	if err != nil && !errors.Is(err, ErrNoRegistration) {
		return fmt.Errorf("read registration: %w", err)
	}

	switch {
	case w.State() == Installed:
		// Retrying an activation that failed earlier.
	case current == w.Version():
		r.log.Info("cache version unchanged, skipping install", zap.String("cache", current))
		if err := w.restore(); err != nil {
			return err
		}
	default:
		if err := w.Install(ctx); err != nil {
			return err
		}
	}

	prev := r.active
	if prev == w {
		prev = nil
	}
	if prev != nil {
		prev.retire()
	}
	if err := w.Activate(ctx); err != nil {
		if prev != nil {
			prev.resume()
		}
		return err
	}
	if err := r.store.SetActiveVersion(ctx, w.Version()); err != nil {
		return fmt.Errorf("save registration: %w", err)
	}

	if prev != nil {
		prev.supersede()
	}
	r.active = w
	return nil
}

// Fallback brings back the last activated version after Register failed,
// typically when a bumped version cannot install while the origin is
// unreachable. build makes a fresh worker for the persisted version. It
// returns ErrNoRegistration when nothing was ever activated.
func (r *Registration) Fallback(ctx context.Context, build func(version string) (*Worker, error)) (*Worker, error) {
	version, err := r.store.ActiveVersion(ctx)
	if err != nil {
		return nil, err
	}
	if a := r.Active(); a != nil && a.Version() == version && a.State() == Activated {
		return a, nil
	}
	w, err := build(version)
	if err != nil {
		return nil, fmt.Errorf("rebuild worker %s: %w", version, err)
	}
	r.log.Info("falling back to last activated cache", zap.String("cache", version))
	if err := r.Register(ctx, w); err != nil {
		return nil, err
	}
	return w, nil
}
