// Package dispatch maps a queued intent back onto the remote operation
// that performs it.
package dispatch

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"

	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/errors"
	"github.com/salaheddineelazouti/GreenSentinel-Citoyen/internal/offline/queue"
)

// Executor performs the real remote effect for one (resource, operation)
// pair. The item id doubles as the idempotency key forwarded to the
// remote collaborator: the processor may invoke an executor more than
// once for the same item, so exactly-once is a server-side concern.
type Executor func(ctx context.Context, itemID string, payload json.RawMessage) error

// Registration binds an executor to its (resource, operation) key.
type Registration struct {
	Resource  queue.Resource
	Operation queue.Operation
	Execute   Executor
}

type key struct {
	resource  queue.Resource
	operation queue.Operation
}

// Table is the fixed mapping from (resource, operation) to executor.
// It is built once at initialization; invalid registrations are
// rejected there rather than at dispatch time.
type Table struct {
	executors map[key]Executor
}

// NewTable builds a Table from the given registrations.
func NewTable(regs ...Registration) (*Table, error) {
	t := &Table{executors: make(map[key]Executor, len(regs))}

	for _, reg := range regs {
		if reg.Resource == "" || reg.Operation == "" {
			return nil, errors.New(errors.ErrInvalid, "registration with empty resource or operation")
		}
		if reg.Execute == nil {
			return nil, errors.New(errors.ErrInvalid,
				fmt.Sprintf("nil executor for %s/%s", reg.Resource, reg.Operation))
		}

		k := key{reg.Resource, reg.Operation}
		if _, dup := t.executors[k]; dup {
			return nil, errors.New(errors.ErrInvalid,
				fmt.Sprintf("duplicate registration for %s/%s", reg.Resource, reg.Operation))
		}
		t.executors[k] = reg.Execute
	}

	return t, nil
}

// Resolve returns the executor for the given pair, or a coded
// ErrUnknownOperation when no executor is registered.
func (t *Table) Resolve(resource queue.Resource, operation queue.Operation) (Executor, error) {
	exec, ok := t.executors[key{resource, operation}]
	if !ok {
		return nil, errors.New(errors.ErrUnknownOperation,
			fmt.Sprintf("no executor for %s/%s", resource, operation))
	}
	return exec, nil
}

// Len returns the number of registered executors.
func (t *Table) Len() int {
	return len(t.executors)
}

// permanentError marks a failure that can never succeed on retry.
type permanentError struct {
	err error
}

func (e *permanentError) Error() string {
	return e.err.Error()
}

func (e *permanentError) Unwrap() error {
	return e.err
}

// Permanent wraps an executor failure that retrying cannot fix (server
// rejected the payload, resource gone). The processor fails such items
// immediately instead of burning the remaining attempts.
func Permanent(err error) error {
	if err == nil {
		return nil
	}
	return &permanentError{err: err}
}

// IsPermanent reports whether err is marked permanent.
func IsPermanent(err error) bool {
	var p *permanentError
	return stderrors.As(err, &p)
}
