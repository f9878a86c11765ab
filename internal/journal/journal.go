// Package journal persists parking movements published on the bus.
package journal

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/matheus3301/chinopark/internal/bus"
	"github.com/matheus3301/chinopark/internal/parking"
	"github.com/matheus3301/chinopark/internal/store"
)

// Journal subscribes to "parking." events and writes them to the activity table.
type Journal struct {
	db     *store.DB
	bus    *bus.Bus
	logger *zap.Logger
	cancel context.CancelFunc
	done   chan struct{}
}

// New creates a journal.
func New(db *store.DB, b *bus.Bus, logger *zap.Logger) *Journal {
	return &Journal{
		db:     db,
		bus:    b,
		logger: logger,
	}
}

// Start subscribes to parking events on the bus.
func (j *Journal) Start(ctx context.Context) {
	ctx, j.cancel = context.WithCancel(ctx)
	j.done = make(chan struct{})
	ch, unsub := j.bus.Subscribe("parking.", 256)

	go func() {
		defer close(j.done)
		defer unsub()
		for {
			select {
			case evt := <-ch:
				if err := j.Record(evt); err != nil {
					j.logger.Error("failed to record activity", zap.Error(err), zap.String("kind", evt.Kind))
				}
			case <-ctx.Done():
				return
			}
		}
	}()
}

// Stop stops the journal and waits for its goroutine to exit.
func (j *Journal) Stop() {
	if j.cancel != nil {
		j.cancel()
		<-j.done
	}
}

// Record writes one movement event. Events of other kinds are ignored.
func (j *Journal) Record(evt bus.Event) error {
	m, ok := evt.Payload.(parking.Movement)
	if !ok {
		return nil
	}
	if err := j.db.InsertActivity(store.Activity{
		Kind:   evt.Kind,
		Ticket: m.Ticket,
		Plate:  m.Plate,
		Type:   m.Type,
		At:     m.At.UnixMilli(),
	}); err != nil {
		return fmt.Errorf("insert activity: %w", err)
	}
	return nil
}
