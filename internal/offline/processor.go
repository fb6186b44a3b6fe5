// Package offline implements the offline queue and synchronization
// subsystem: durable intents, the guarded processing pass that replays
// them, and the connectivity wiring that triggers it.
package offline

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/errors"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/logging"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/offline/dispatch"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/offline/queue"
)

// AuthSignal gates whether a processing run may start.
type AuthSignal interface {
	IsAuthenticated() bool
}

const (
	// DefaultMaxAttempts is the retry ceiling: an item that has failed
	// this many times becomes terminally failed.
	DefaultMaxAttempts = 3

	// DefaultRetention is how long completed items are kept before the
	// expiry sweep drops them.
	DefaultRetention = 24 * time.Hour
)

// Result reports the outcome of one processing run.
type Result struct {
	Processed int   `json:"processed"`
	Failed    int   `json:"failed"`
	Remaining int   `json:"remaining"`
	Skipped   bool  `json:"skipped,omitempty"`
	Err       error `json:"-"`
}

// Processor drains the queue by resolving each pending intent through
// the dispatch table. At most one run is in flight per instance; the
// flag does not guard against a second process on the same store.
type Processor struct {
	queue       *queue.Queue
	table       *dispatch.Table
	auth        AuthSignal
	maxAttempts int
	retention   time.Duration
	running     atomic.Bool
	now         func() time.Time
}

// ProcessorOption configures a Processor.
type ProcessorOption func(*Processor)

// WithMaxAttempts overrides the retry ceiling.
func WithMaxAttempts(n int) ProcessorOption {
	return func(p *Processor) { p.maxAttempts = n }
}

// WithRetention overrides the completed-item retention window.
func WithRetention(d time.Duration) ProcessorOption {
	return func(p *Processor) { p.retention = d }
}

// WithProcessorClock overrides the time source, for tests.
func WithProcessorClock(now func() time.Time) ProcessorOption {
	return func(p *Processor) { p.now = now }
}

// NewProcessor creates a Processor over the given queue and table.
func NewProcessor(q *queue.Queue, table *dispatch.Table, auth AuthSignal, opts ...ProcessorOption) *Processor {
	p := &Processor{
		queue:       q,
		table:       table,
		auth:        auth,
		maxAttempts: DefaultMaxAttempts,
		retention:   DefaultRetention,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// IsRunning reports whether a processing run is in flight.
func (p *Processor) IsRunning() bool {
	return p.running.Load()
}

// Run executes one processing pass. It is a no-op reporting Skipped
// when the caller is unauthenticated or a run is already in flight.
// A single item's failure never aborts the pass. The pass works on a
// snapshot and merges its outcome back through the queue, so items
// enqueued while executors are in flight survive; a failure to
// persist the merged collection aborts the run as a whole, leaving
// the stored state untouched.
func (p *Processor) Run(ctx context.Context) Result {
	if !p.auth.IsAuthenticated() {
		logging.Debug("skipping processing pass, not authenticated")
		return Result{Skipped: true}
	}

	if !p.running.CompareAndSwap(false, true) {
		logging.Debug("skipping processing pass, already running")
		return Result{Skipped: true}
	}
	// Cleared unconditionally so a failed run cannot wedge the
	// processor into always-skipped.
	defer p.running.Store(false)

	items := p.queue.List()
	if len(items) == 0 {
		return Result{}
	}

	var result Result
	for _, item := range items {
		if item.Status != queue.StatusPending {
			continue
		}

		if err := p.processItem(ctx, item); err != nil {
			result.Failed++
		} else {
			result.Processed++
		}
	}

	kept, removed := p.sweep(items)

	merged, err := p.queue.Reconcile(kept, removed)
	if err != nil {
		logging.Error("failed to persist queue after processing pass", err)
		return Result{Err: err}
	}

	for _, item := range merged {
		if item.Status == queue.StatusPending {
			result.Remaining++
		}
	}

	logging.Info("processing pass finished", map[string]interface{}{
		"processed": result.Processed,
		"failed":    result.Failed,
		"remaining": result.Remaining,
	})

	return result
}

// processItem resolves and executes one pending item, mutating its
// status in place. Returns nil on success.
func (p *Processor) processItem(ctx context.Context, item *queue.Item) error {
	exec, err := p.table.Resolve(item.Resource, item.Operation)
	if err != nil {
		// An unregistered pair can never succeed; fail it outright.
		p.recordFailure(item, err, true)
		return err
	}

	if err := exec(ctx, item.ID, item.Data); err != nil {
		p.recordFailure(item, err, dispatch.IsPermanent(err))
		return err
	}

	item.Status = queue.StatusCompleted
	return nil
}

// recordFailure increments the attempt count and applies the retry
// policy: permanent failures and exhausted ceilings are terminal.
func (p *Processor) recordFailure(item *queue.Item, err error, permanent bool) {
	item.Attempts++
	item.LastError = err.Error()

	if permanent || item.Attempts >= p.maxAttempts {
		item.Status = queue.StatusFailed
		logging.Warn("offline operation terminally failed", map[string]interface{}{
			"id":        item.ID,
			"resource":  string(item.Resource),
			"operation": string(item.Operation),
			"attempts":  item.Attempts,
			"error":     err.Error(),
			"code":      string(errors.CodeOf(err)),
		})
		return
	}

	logging.Debug("offline operation failed, will retry", map[string]interface{}{
		"id":       item.ID,
		"attempts": item.Attempts,
		"error":    err.Error(),
	})
}

// sweep splits the snapshot into retained items and the ids of
// completed items older than the retention window. Pending and failed
// items are always retained.
func (p *Processor) sweep(items []*queue.Item) (kept []*queue.Item, removed []string) {
	cutoff := p.now().Add(-p.retention).Unix()

	kept = items[:0]
	for _, item := range items {
		if item.Status == queue.StatusCompleted && item.Timestamp < cutoff {
			removed = append(removed, item.ID)
			continue
		}
		kept = append(kept, item)
	}
	return kept, removed
}
