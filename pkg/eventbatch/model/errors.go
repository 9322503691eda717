package model

import "errors"

// ErrPayloadTooLarge is returned by Storage.Write when a single event
// payload is at or above MaxPayloadSize. The open batch is left untouched.
var ErrPayloadTooLarge = errors.New("eventbatch: payload too large")

// ErrBatchNotFound names the condition of a closed batch that Storage no
// longer has (already removed, or never existed). No Storage operation
// returns it: ReadBatchContent and Remove report a missing batch with a
// false result instead.
var ErrBatchNotFound = errors.New("eventbatch: batch not found")

// ErrTypeMismatch names the condition of a stored value whose type
// differs from the requested type. No KeyValueStore read returns it:
// the typed reads return the caller's default in that case.
var ErrTypeMismatch = errors.New("eventbatch: stored value type mismatch")
