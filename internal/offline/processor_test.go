package offline

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"sync"
	"testing"
	"time"

	apperrors "github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/errors"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/offline/dispatch"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/offline/queue"
)

// memStore is an in-memory durable store for processor tests.
type memStore struct {
	mu       sync.Mutex
	kv       map[string]string
	failNext bool
}

func newMemStore() *memStore {
	return &memStore{kv: map[string]string{}}
}

func (m *memStore) Read(key string) (string, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.kv[key]
	return v, ok, nil
}

func (m *memStore) Write(key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failNext {
		m.failNext = false
		return apperrors.New(apperrors.ErrPersistence, "write failed")
	}
	m.kv[key] = value
	return nil
}

func (m *memStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.kv, key)
	return nil
}

func (m *memStore) Close() error { return nil }

// stubAuth is a togglable auth signal.
type stubAuth struct{ authenticated bool }

func (a *stubAuth) IsAuthenticated() bool { return a.authenticated }

// recordingExecutor counts invocations and replays scripted errors.
type recordingExecutor struct {
	mu    sync.Mutex
	calls []string
	err   error
}

func (r *recordingExecutor) exec(ctx context.Context, itemID string, payload json.RawMessage) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.calls = append(r.calls, itemID)
	return r.err
}

func (r *recordingExecutor) callIDs() []string {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]string{}, r.calls...)
}

func newTestTable(t *testing.T, execs map[string]*recordingExecutor) *dispatch.Table {
	t.Helper()

	var regs []dispatch.Registration
	add := func(key string, res queue.Resource, op queue.Operation) {
		if e, ok := execs[key]; ok {
			regs = append(regs, dispatch.Registration{Resource: res, Operation: op, Execute: e.exec})
		}
	}
	add("reports/create", queue.ResourceReports, queue.OperationCreate)
	add("reports/update", queue.ResourceReports, queue.OperationUpdate)
	add("events/register", queue.ResourceEvents, queue.OperationRegister)

	table, err := dispatch.NewTable(regs...)
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}
	return table
}

func TestFIFOPreservation(t *testing.T) {
	q := queue.New(newMemStore())
	exec := &recordingExecutor{}
	table := newTestTable(t, map[string]*recordingExecutor{"reports/create": exec})

	a, _ := q.Enqueue(queue.ResourceReports, queue.OperationCreate, map[string]string{"seq": "a"})
	b, _ := q.Enqueue(queue.ResourceReports, queue.OperationCreate, map[string]string{"seq": "b"})
	c, _ := q.Enqueue(queue.ResourceReports, queue.OperationCreate, map[string]string{"seq": "c"})

	p := NewProcessor(q, table, &stubAuth{authenticated: true})
	result := p.Run(context.Background())

	if result.Processed != 3 {
		t.Errorf("Processed = %d, want 3", result.Processed)
	}

	got := exec.callIDs()
	want := []string{a.ID, b.ID, c.ID}
	if len(got) != 3 {
		t.Fatalf("executor called %d times, want 3", len(got))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("call order[%d] = %s, want %s", i, got[i], want[i])
		}
	}

	for _, item := range q.List() {
		if item.Status != queue.StatusCompleted {
			t.Errorf("item %s status = %s, want completed", item.ID, item.Status)
		}
	}
}

func TestRetryCeiling(t *testing.T) {
	q := queue.New(newMemStore())
	exec := &recordingExecutor{err: stderrors.New("network unreachable")}
	table := newTestTable(t, map[string]*recordingExecutor{"reports/create": exec})

	q.Enqueue(queue.ResourceReports, queue.OperationCreate, nil)

	p := NewProcessor(q, table, &stubAuth{authenticated: true})

	for pass := 1; pass <= 3; pass++ {
		result := p.Run(context.Background())
		if result.Failed != 1 {
			t.Errorf("pass %d: Failed = %d, want 1", pass, result.Failed)
		}

		item := q.List()[0]
		if item.Attempts != pass {
			t.Errorf("pass %d: Attempts = %d, want %d", pass, item.Attempts, pass)
		}
		if item.LastError == "" {
			t.Errorf("pass %d: expected LastError", pass)
		}
	}

	item := q.List()[0]
	if item.Status != queue.StatusFailed {
		t.Errorf("Status after 3 passes = %s, want failed", item.Status)
	}

	// A 4th pass must never attempt the item again.
	p.Run(context.Background())
	if got := len(exec.callIDs()); got != 3 {
		t.Errorf("executor called %d times, want exactly 3", got)
	}
	if q.List()[0].Attempts != 3 {
		t.Errorf("Attempts = %d after extra pass, want 3", q.List()[0].Attempts)
	}
}

func TestSkipWhenUnauthenticated(t *testing.T) {
	q := queue.New(newMemStore())
	exec := &recordingExecutor{}
	table := newTestTable(t, map[string]*recordingExecutor{"reports/create": exec})

	q.Enqueue(queue.ResourceReports, queue.OperationCreate, nil)
	before := q.List()

	p := NewProcessor(q, table, &stubAuth{authenticated: false})
	result := p.Run(context.Background())

	if !result.Skipped {
		t.Error("expected Skipped")
	}
	if result.Processed != 0 {
		t.Errorf("Processed = %d, want 0", result.Processed)
	}
	if len(exec.callIDs()) != 0 {
		t.Error("executor must not run when unauthenticated")
	}

	after := q.List()
	if after[0].Attempts != before[0].Attempts || after[0].Timestamp != before[0].Timestamp {
		t.Error("queue mutated by a skipped run")
	}
}

func TestReentrancyGuard(t *testing.T) {
	q := queue.New(newMemStore())

	started := make(chan struct{})
	release := make(chan struct{})
	blocking := &recordingExecutor{}

	table, err := dispatch.NewTable(dispatch.Registration{
		Resource:  queue.ResourceReports,
		Operation: queue.OperationCreate,
		Execute: func(ctx context.Context, itemID string, payload json.RawMessage) error {
			blocking.exec(ctx, itemID, payload)
			close(started)
			<-release
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	q.Enqueue(queue.ResourceReports, queue.OperationCreate, nil)

	p := NewProcessor(q, table, &stubAuth{authenticated: true})

	first := make(chan Result)
	go func() { first <- p.Run(context.Background()) }()

	<-started
	if !p.IsRunning() {
		t.Error("IsRunning should be true mid-pass")
	}

	second := p.Run(context.Background())
	if !second.Skipped {
		t.Error("concurrent run should be skipped")
	}

	close(release)
	firstResult := <-first
	if firstResult.Processed != 1 {
		t.Errorf("first run Processed = %d, want 1", firstResult.Processed)
	}

	if got := len(blocking.callIDs()); got != 1 {
		t.Errorf("item processed %d times, want 1", got)
	}
	if p.IsRunning() {
		t.Error("IsRunning should clear after the pass")
	}
}

func TestEnqueueDuringRunIsRetained(t *testing.T) {
	q := queue.New(newMemStore())

	started := make(chan struct{})
	release := make(chan struct{})

	table, err := dispatch.NewTable(dispatch.Registration{
		Resource:  queue.ResourceReports,
		Operation: queue.OperationCreate,
		Execute: func(ctx context.Context, itemID string, payload json.RawMessage) error {
			close(started)
			<-release
			return nil
		},
	})
	if err != nil {
		t.Fatalf("NewTable failed: %v", err)
	}

	q.Enqueue(queue.ResourceReports, queue.OperationCreate, nil)

	p := NewProcessor(q, table, &stubAuth{authenticated: true})

	done := make(chan Result)
	go func() { done <- p.Run(context.Background()) }()

	// While the pass is blocked inside its executor, a caller records
	// a new intent against the same store.
	<-started
	late, err := q.Enqueue(queue.ResourceReports, queue.OperationUpdate, nil)
	if err != nil {
		t.Fatalf("Enqueue failed: %v", err)
	}

	close(release)
	result := <-done

	if result.Processed != 1 {
		t.Errorf("Processed = %d, want 1", result.Processed)
	}
	if result.Remaining != 1 {
		t.Errorf("Remaining = %d, want 1 (the item enqueued mid-run)", result.Remaining)
	}

	var found *queue.Item
	for _, item := range q.List() {
		if item.ID == late.ID {
			found = item
		}
	}
	if found == nil {
		t.Fatal("item enqueued mid-run was erased by the run's persist")
	}
	if found.Status != queue.StatusPending {
		t.Errorf("Status = %s, want pending", found.Status)
	}
	if found.Attempts != 0 {
		t.Errorf("Attempts = %d, want 0 (never processed this run)", found.Attempts)
	}
}

func TestExpirySweep(t *testing.T) {
	q := queue.New(newMemStore())
	exec := &recordingExecutor{}
	table := newTestTable(t, map[string]*recordingExecutor{"reports/create": exec})

	now := time.Now()

	old, _ := q.Enqueue(queue.ResourceReports, queue.OperationCreate, nil)
	recent, _ := q.Enqueue(queue.ResourceReports, queue.OperationCreate, nil)

	items := q.List()
	for _, item := range items {
		item.Status = queue.StatusCompleted
		switch item.ID {
		case old.ID:
			item.Timestamp = now.Add(-25 * time.Hour).Unix()
		case recent.ID:
			item.Timestamp = now.Add(-1 * time.Hour).Unix()
		}
	}
	if err := q.Save(items); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	p := NewProcessor(q, table, &stubAuth{authenticated: true},
		WithProcessorClock(func() time.Time { return now }))
	p.Run(context.Background())

	remaining := q.List()
	if len(remaining) != 1 {
		t.Fatalf("expected 1 item after sweep, got %d", len(remaining))
	}
	if remaining[0].ID != recent.ID {
		t.Errorf("kept item = %s, want the recent one %s", remaining[0].ID, recent.ID)
	}
}

func TestSweepRetainsPendingAndFailed(t *testing.T) {
	q := queue.New(newMemStore())
	failing := &recordingExecutor{err: stderrors.New("still down")}
	table := newTestTable(t, map[string]*recordingExecutor{"reports/create": failing})

	now := time.Now()
	q.Enqueue(queue.ResourceReports, queue.OperationCreate, nil)

	// Age the pending item far past the retention window.
	items := q.List()
	items[0].Timestamp = now.Add(-48 * time.Hour).Unix()
	q.Save(items)

	p := NewProcessor(q, table, &stubAuth{authenticated: true},
		WithProcessorClock(func() time.Time { return now }))

	// Drive it to terminal failure; it must survive every sweep.
	for i := 0; i < 3; i++ {
		p.Run(context.Background())
	}

	remaining := q.List()
	if len(remaining) != 1 {
		t.Fatalf("expected failed item retained, got %d items", len(remaining))
	}
	if remaining[0].Status != queue.StatusFailed {
		t.Errorf("Status = %s, want failed", remaining[0].Status)
	}
}

func TestUnknownOperationFailsTerminally(t *testing.T) {
	q := queue.New(newMemStore())
	table := newTestTable(t, map[string]*recordingExecutor{"reports/create": {}})

	q.Enqueue("widgets", queue.OperationCreate, nil)

	p := NewProcessor(q, table, &stubAuth{authenticated: true})
	result := p.Run(context.Background())

	if result.Failed != 1 {
		t.Errorf("Failed = %d, want 1", result.Failed)
	}

	item := q.List()[0]
	if item.Status != queue.StatusFailed {
		t.Errorf("Status = %s, want failed (unknown operations cannot succeed)", item.Status)
	}
	if item.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", item.Attempts)
	}
	if item.LastError == "" {
		t.Error("expected LastError to record the unknown operation")
	}
}

func TestPermanentFailureSkipsRemainingAttempts(t *testing.T) {
	q := queue.New(newMemStore())
	rejected := &recordingExecutor{err: dispatch.Permanent(stderrors.New("validation rejected"))}
	table := newTestTable(t, map[string]*recordingExecutor{"reports/create": rejected})

	q.Enqueue(queue.ResourceReports, queue.OperationCreate, nil)

	p := NewProcessor(q, table, &stubAuth{authenticated: true})
	p.Run(context.Background())

	item := q.List()[0]
	if item.Status != queue.StatusFailed {
		t.Errorf("Status = %s, want failed after first permanent failure", item.Status)
	}
	if item.Attempts != 1 {
		t.Errorf("Attempts = %d, want 1", item.Attempts)
	}

	// No further attempts on later passes.
	p.Run(context.Background())
	if got := len(rejected.callIDs()); got != 1 {
		t.Errorf("executor called %d times, want 1", got)
	}
}

func TestFailureDoesNotAbortBatch(t *testing.T) {
	q := queue.New(newMemStore())
	failing := &recordingExecutor{err: stderrors.New("boom")}
	succeeding := &recordingExecutor{}
	table := newTestTable(t, map[string]*recordingExecutor{
		"reports/create":  failing,
		"events/register": succeeding,
	})

	q.Enqueue(queue.ResourceReports, queue.OperationCreate, nil)
	q.Enqueue(queue.ResourceEvents, queue.OperationRegister, nil)

	p := NewProcessor(q, table, &stubAuth{authenticated: true})
	result := p.Run(context.Background())

	if result.Processed != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want 1 processed and 1 failed", result)
	}
	if len(succeeding.callIDs()) != 1 {
		t.Error("later item should still run after an earlier failure")
	}
	if result.Remaining != 1 {
		t.Errorf("Remaining = %d, want 1 (the failed item is still pending)", result.Remaining)
	}
}

func TestSaveFailureReportsRunError(t *testing.T) {
	s := newMemStore()
	q := queue.New(s)
	exec := &recordingExecutor{}
	table := newTestTable(t, map[string]*recordingExecutor{"reports/create": exec})

	q.Enqueue(queue.ResourceReports, queue.OperationCreate, nil)
	before := s.kv[queue.DefaultStorageKey]

	p := NewProcessor(q, table, &stubAuth{authenticated: true})

	s.failNext = true
	result := p.Run(context.Background())

	if result.Err == nil {
		t.Fatal("expected run error when persist fails")
	}
	if !apperrors.Is(result.Err, apperrors.ErrPersistence) {
		t.Errorf("expected ErrPersistence, got %v", result.Err)
	}

	// Stored state is untouched by the failed save.
	if s.kv[queue.DefaultStorageKey] != before {
		t.Error("failed save must leave the stored queue as it was")
	}

	// The guard must clear so the next run can proceed.
	next := p.Run(context.Background())
	if next.Skipped {
		t.Error("processor wedged after a failed run")
	}
}

func TestEmptyQueueRun(t *testing.T) {
	q := queue.New(newMemStore())
	table := newTestTable(t, map[string]*recordingExecutor{"reports/create": {}})

	p := NewProcessor(q, table, &stubAuth{authenticated: true})
	result := p.Run(context.Background())

	if result.Processed != 0 || result.Failed != 0 || result.Remaining != 0 || result.Skipped {
		t.Errorf("result = %+v, want all-zero", result)
	}
}
