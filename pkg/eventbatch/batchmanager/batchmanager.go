// Package batchmanager implements open-batch buffering and closed-batch
// enumeration. One BatchManager instance owns exactly one write-key's
// batches; at most one open batch exists at a time, guarded by a single
// mutex.
package batchmanager

import "github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/model"

const (
	batchPrefix = `{"batch":[`
	batchSuffix = `],"sentAt":"`
	batchTail   = `"}`
	// sentAtPlaceholder is rewritten to the real timestamp immediately
	// before each upload attempt.
	sentAtPlaceholder = "1970-01-01T00:00:00.000Z"
)

// BatchManager maintains one open batch per write-key and finalises it
// on demand. Implementations: file.go (durable, directory-per-write-key)
// and memory.go (in-process map, no durability).
type BatchManager interface {
	// StoreEvent appends a single event payload to the open batch,
	// creating it or rolling it over first as needed.
	StoreEvent(payload string) error

	// Read returns the ids of closed batches. Ordering is
	// deployment-type dependent: Server sorts numerically,
	// Mobile returns backend-native order.
	Read() []int64

	// ReadContent returns the raw bytes of a closed batch, or false if
	// it does not exist.
	ReadContent(id int64) ([]byte, bool)

	// Remove deletes a closed batch, reporting whether anything was
	// removed.
	Remove(id int64) bool

	// Rollover finalises the open batch (appends the sentAt tail,
	// strips the tmp suffix, advances the index counter) and is a
	// no-op when there is no open batch.
	Rollover() error

	// CloseAndReset drops the open batch without finalising it. The
	// discarded content is never flushed anywhere.
	CloseAndReset()

	// Delete removes every closed batch and drops the open batch.
	Delete() error
}
