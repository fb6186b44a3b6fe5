// Package trigger invokes the queue processor when conditions
// plausibly changed in its favor: process start and network-restored
// transitions.
package trigger

import (
	"context"
	"sync"
	"time"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/logging"
)

// Signal exposes the host's connectivity state: a point-in-time check
// plus a subscribe-to-transition capability. OnOnline callbacks fire
// once per offline-to-online edge.
type Signal interface {
	IsOnline() bool
	OnOnline(func())
}

// DefaultSettleDelay is how long the startup run waits so the rest of
// the process can finish initializing first.
const DefaultSettleDelay = 3 * time.Second

// Trigger wires a connectivity signal to a processing run.
type Trigger struct {
	signal Signal
	run    func(context.Context)
	settle time.Duration
	once   sync.Once
}

// Option configures a Trigger.
type Option func(*Trigger)

// WithSettleDelay overrides the startup settle delay.
func WithSettleDelay(d time.Duration) Option {
	return func(t *Trigger) { t.settle = d }
}

// New creates a Trigger that invokes run on connectivity events.
func New(signal Signal, run func(context.Context), opts ...Option) *Trigger {
	t := &Trigger{
		signal: signal,
		run:    run,
		settle: DefaultSettleDelay,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Initialize registers the transition listener and, when the device is
// already online, schedules a settle-delayed startup run. Setup is
// idempotent: later calls are no-ops, so no duplicate listeners can
// cause duplicate concurrent runs.
func (t *Trigger) Initialize(ctx context.Context) {
	t.once.Do(func() {
		t.signal.OnOnline(func() {
			logging.Info("network restored, triggering processing run")
			t.run(ctx)
		})

		if t.signal.IsOnline() {
			logging.Debug("online at startup, scheduling settle-delayed run",
				map[string]interface{}{"settle": t.settle.String()})

			timer := time.AfterFunc(t.settle, func() {
				if ctx.Err() != nil {
					return
				}
				t.run(ctx)
			})

			// Drop the startup run if the process shuts down first.
			if ctx.Done() != nil {
				go func() {
					<-ctx.Done()
					timer.Stop()
				}()
			}
		}
	})
}
