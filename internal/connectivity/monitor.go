// Package connectivity tracks the host's network state. The host
// platform (browser online events, mobile reachability callbacks)
// pushes transitions in; subscribers hear each offline-to-online edge
// exactly once.
package connectivity

import (
	"sync"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/logging"
)

// Monitor is the connectivity signal fed by the host platform.
type Monitor struct {
	mu        sync.Mutex
	online    bool
	callbacks []func()
}

// NewMonitor creates a Monitor with the given initial state.
func NewMonitor(online bool) *Monitor {
	return &Monitor{online: online}
}

// IsOnline reports the current network state.
func (m *Monitor) IsOnline() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.online
}

// OnOnline subscribes to offline-to-online transitions.
func (m *Monitor) OnOnline(cb func()) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, cb)
}

// SetOnline records a state change pushed by the host. Subscribers fire
// only on the offline-to-online edge; repeated online reports are
// absorbed so a chatty host cannot cause duplicate runs.
func (m *Monitor) SetOnline(online bool) {
	m.mu.Lock()
	wasOnline := m.online
	m.online = online
	var cbs []func()
	if online && !wasOnline {
		cbs = append(cbs, m.callbacks...)
	}
	m.mu.Unlock()

	if wasOnline != online {
		logging.Info("connectivity changed", map[string]interface{}{
			"was_online": wasOnline,
			"is_online":  online,
		})
	}

	for _, cb := range cbs {
		cb()
	}
}
