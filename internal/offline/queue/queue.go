package queue

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/errors"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/logging"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/store"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/uuid"
)

// DefaultStorageKey is the durable store key holding the serialized queue.
const DefaultStorageKey = "offline_queue"

// Queue is the ordered collection of deferred operations. It owns the
// persisted collection exclusively; the durable store is only its
// serialization backend.
type Queue struct {
	store store.DurableStore
	key   string
	mu    sync.Mutex
	now   func() time.Time
}

// Option configures a Queue.
type Option func(*Queue)

// WithStorageKey overrides the durable store key.
func WithStorageKey(key string) Option {
	return func(q *Queue) { q.key = key }
}

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(q *Queue) { q.now = now }
}

// New creates a Queue backed by the given store.
func New(s store.DurableStore, opts ...Option) *Queue {
	q := &Queue{
		store: s,
		key:   DefaultStorageKey,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(q)
	}
	return q
}

// Enqueue creates a pending item with a fresh id and current timestamp,
// appends it to the persisted collection, and returns it. The payload
// is stored opaquely. A persistence failure propagates to the caller:
// the intent is lost and the caller must retry.
func (q *Queue) Enqueue(resource Resource, operation Operation, data interface{}) (*Item, error) {
	payload, err := marshalPayload(data)
	if err != nil {
		return nil, errors.Wrap(errors.ErrSerialization, "failed to encode payload", err)
	}

	q.mu.Lock()
	defer q.mu.Unlock()

	item := &Item{
		ID:        uuid.New(),
		Resource:  resource,
		Operation: operation,
		Data:      payload,
		Timestamp: q.now().Unix(),
		Attempts:  0,
		Status:    StatusPending,
	}

	items := append(q.load(), item)
	if err := q.save(items); err != nil {
		return nil, err
	}

	logging.Debug("enqueued offline operation", map[string]interface{}{
		"id":        item.ID,
		"resource":  string(resource),
		"operation": string(operation),
	})

	return item.Clone(), nil
}

// List returns the persisted collection in insertion order. Absent or
// corrupt storage reads as an empty queue, never an error.
func (q *Queue) List() []*Item {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.load()
}

// Save overwrites the persisted collection.
func (q *Queue) Save(items []*Item) error {
	q.mu.Lock()
	defer q.mu.Unlock()
	return q.save(items)
}

// Reconcile merges the outcome of a processing run back into the
// persisted collection. The run works on a snapshot, so the stored
// collection may have grown in the meantime; the stored order is
// authoritative. Updates are applied per id, ids in removed are
// dropped, and items absent from the snapshot are retained untouched.
// The merged collection is persisted and returned; a persistence
// failure leaves the stored state as it was.
func (q *Queue) Reconcile(updates []*Item, removed []string) ([]*Item, error) {
	q.mu.Lock()
	defer q.mu.Unlock()

	updated := make(map[string]*Item, len(updates))
	for _, item := range updates {
		updated[item.ID] = item
	}
	dropped := make(map[string]struct{}, len(removed))
	for _, id := range removed {
		dropped[id] = struct{}{}
	}

	stored := q.load()
	merged := stored[:0]
	for _, item := range stored {
		if _, ok := dropped[item.ID]; ok {
			continue
		}
		if u, ok := updated[item.ID]; ok {
			item = u
		}
		merged = append(merged, item)
	}

	if err := q.save(merged); err != nil {
		return nil, err
	}
	return merged, nil
}

// Summary is a point-in-time snapshot of queue composition.
type Summary struct {
	Total        int  `json:"total"`
	Pending      int  `json:"pending"`
	Completed    int  `json:"completed"`
	Failed       int  `json:"failed"`
	IsProcessing bool `json:"is_processing"`
}

// Status summarizes the persisted collection. The processing flag is
// supplied by the caller, since the processor owns it.
func (q *Queue) Status(processing bool) Summary {
	items := q.List()

	s := Summary{Total: len(items), IsProcessing: processing}
	for _, item := range items {
		switch item.Status {
		case StatusPending:
			s.Pending++
		case StatusCompleted:
			s.Completed++
		case StatusFailed:
			s.Failed++
		}
	}
	return s
}

// load reads and decodes the collection. Must be called with q.mu held.
func (q *Queue) load() []*Item {
	raw, ok, err := q.store.Read(q.key)
	if err != nil {
		logging.Warn("queue storage unreadable, treating as empty",
			map[string]interface{}{"key": q.key, "error": err.Error()})
		return []*Item{}
	}
	if !ok || raw == "" {
		return []*Item{}
	}

	var items []*Item
	if err := json.Unmarshal([]byte(raw), &items); err != nil {
		logging.Warn("queue storage corrupt, treating as empty",
			map[string]interface{}{"key": q.key, "error": err.Error()})
		return []*Item{}
	}
	return items
}

// save encodes and writes the collection. Must be called with q.mu held.
func (q *Queue) save(items []*Item) error {
	if items == nil {
		items = []*Item{}
	}
	data, err := json.Marshal(items)
	if err != nil {
		return errors.Wrap(errors.ErrSerialization, "failed to encode queue", err)
	}
	if err := q.store.Write(q.key, string(data)); err != nil {
		return errors.Wrap(errors.ErrPersistence, "failed to persist queue", err)
	}
	return nil
}

// marshalPayload passes raw JSON through untouched and encodes
// anything else.
func marshalPayload(data interface{}) (json.RawMessage, error) {
	switch v := data.(type) {
	case nil:
		return json.RawMessage("null"), nil
	case json.RawMessage:
		return v, nil
	case []byte:
		return json.RawMessage(v), nil
	default:
		return json.Marshal(v)
	}
}
