// Package queue provides the durable operation queue backing offline
// writes: intents the client could not complete synchronously, kept in
// insertion order until a processing pass resolves them.
package queue

import "encoding/json"

// Resource names the target domain object of a deferred operation.
type Resource string

const (
	ResourceReports Resource = "reports"
	ResourceEvents  Resource = "events"
	ResourceUsers   Resource = "users"
)

// Operation names the deferred action on a resource.
type Operation string

const (
	OperationCreate   Operation = "create"
	OperationUpdate   Operation = "update"
	OperationRegister Operation = "register"
)

// Status represents the lifecycle state of a queued item.
type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusFailed    Status = "failed"
)

// Item is a durable record of an action that could not be completed
// synchronously. The payload is opaque: the queue never interprets it.
//
// Status transitions are monotone: pending -> completed on success,
// pending -> failed once the attempt ceiling is reached. Attempts only
// ever increase.
type Item struct {
	ID        string          `json:"id"`
	Resource  Resource        `json:"resource"`
	Operation Operation       `json:"operation"`
	Data      json.RawMessage `json:"data"`
	Timestamp int64           `json:"timestamp"`
	Attempts  int             `json:"attempts"`
	Status    Status          `json:"status"`
	LastError string          `json:"last_error,omitempty"`
}

// Clone returns a copy of the item so callers cannot mutate queue state.
func (i *Item) Clone() *Item {
	c := *i
	if i.Data != nil {
		c.Data = make(json.RawMessage, len(i.Data))
		copy(c.Data, i.Data)
	}
	return &c
}
