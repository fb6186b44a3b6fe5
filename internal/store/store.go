// Package store provides the durable key-value persistence surface
// backing the offline queue and session state.
package store

// DurableStore is a key-value persistence surface that survives process
// restart. It is a serialization backend only: callers own the data
// shape and the single-writer discipline. Implementations treat absent
// keys as (value="", ok=false) rather than errors.
type DurableStore interface {
	// Read returns the value stored under key, and whether it exists.
	Read(key string) (string, bool, error)

	// Write stores value under key, replacing any previous value. The
	// write is atomic from the reader's point of view: a later Read
	// sees either the old or the new value, never a torn one.
	Write(key, value string) error

	// Delete removes key. Deleting an absent key is not an error.
	Delete(key string) error

	// Close releases the underlying resources.
	Close() error
}
