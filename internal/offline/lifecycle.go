package offline

import (
	"fmt"
	"slices"
	"sync"

	"github.com/matheus3301/chinopark/internal/bus"
)

// State is a worker lifecycle state.
type State string

const (
	Parsed     State = "parsed"
	Installing State = "installing"
	Installed  State = "installed"
	Activating State = "activating"
	Activated  State = "activated"
	Redundant  State = "redundant"
)

// validTransitions defines allowed state transitions. Parsed goes straight to
// Installed when the registration already holds this version's cache, and
// Activating falls back to Installed when stale caches could not be deleted.
var validTransitions = map[State][]State{
	Parsed:     {Installing, Installed},
	Installing: {Installed, Redundant},
	Installed:  {Activating, Redundant},
	Activating: {Activated, Installed},
	Activated:  {Redundant},
}

// StateChange is the payload of bus.KindWorkerStateChanged events.
type StateChange struct {
	Version string
	From    State
	To      State
}

// machine tracks and enforces worker lifecycle transitions.
type machine struct {
	mu      sync.RWMutex
	current State
	version string
	bus     *bus.Bus
}

func newMachine(version string, b *bus.Bus) *machine {
	return &machine{current: Parsed, version: version, bus: b}
}

func (m *machine) Current() State {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

func (m *machine) Transition(to State) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !slices.Contains(validTransitions[m.current], to) {
		return fmt.Errorf("invalid worker transition from %s to %s", m.current, to)
	}
	from := m.current
	m.current = to
	m.bus.Emit(bus.KindWorkerStateChanged, StateChange{Version: m.version, From: from, To: to})
	return nil
}
