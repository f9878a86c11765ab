package bus

import "time"

// Event kinds published inside parkd and parktui.
const (
	KindCheckedIn          = "parking.checked_in"
	KindCheckedOut         = "parking.checked_out"
	KindWorkerStateChanged = "worker.state_changed"
	KindWorkerCacheWrite   = "worker.cache_write"
)

// Event represents a domain event published on the bus.
type Event struct {
	Kind      string
	Timestamp time.Time
	Payload   any
}
