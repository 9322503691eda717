// Package retryheaders implements RetryHeadersProvider: it
// derives and persists the three Rsa-Retry-* headers across attempts and
// process restarts.
package retryheaders

import (
	"strconv"
	"sync"

	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/model"
)

// Wire-exact header names.
const (
	HeaderRetryAttempt    = "Rsa-Retry-Attempt"
	HeaderSinceLastAttempt = "Rsa-Since-Last-Attempt"
	HeaderRetryReason      = "Rsa-Retry-Reason"
)

// Store is the narrow persistence seam RetryHeadersProvider needs: a
// single string-valued slot. Storage.Storage satisfies this directly.
type Store interface {
	ReadString(key string, def string) string
	WriteString(key string, value string) error
	RemoveString(key string) error
}

// Provider is RetryHeadersProvider. It is safe for concurrent use; the
// underlying Store is expected to serialise its own reads/writes.
type Provider struct {
	store Store

	// mu serialises RecordFailure's read-then-write of the record.
	mu sync.Mutex
}

// New builds a Provider over the given Store.
func New(store Store) *Provider {
	return &Provider{store: store}
}

// GetHeaders returns the current retry headers: absent or malformed
// metadata, or metadata for a different batch, yields an empty map
// without mutating anything (stale reads are ignored, not deleted).
func (p *Provider) GetHeaders(batchID int64, nowMs int64) map[string]string {
	raw := p.store.ReadString(model.RetryMetadataKey, "")
	if raw == "" {
		return map[string]string{}
	}

	rec, ok := FromJSON(raw)
	if !ok {
		return map[string]string{}
	}

	if rec.BatchID != batchID {
		return map[string]string{}
	}

	elapsed := nowMs - rec.LastAttemptTimestampMs
	if elapsed < 0 {
		elapsed = 0
	}

	return map[string]string{
		HeaderRetryAttempt:     strconv.Itoa(rec.Attempt),
		HeaderSinceLastAttempt: strconv.FormatInt(elapsed, 10),
		HeaderRetryReason:      rec.Reason,
	}
}

// RecordFailure records an upload attempt's failure: the attempt
// counter increments when the failure is for the same batch currently
// on record, and resets to 1 otherwise (new batch, or no record yet).
func (p *Provider) RecordFailure(batchID int64, nowMs int64, reason string) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	attempt := 1

	if raw := p.store.ReadString(model.RetryMetadataKey, ""); raw != "" {
		if rec, ok := FromJSON(raw); ok && rec.BatchID == batchID {
			attempt = rec.Attempt + 1
		}
	}

	rec := Metadata{
		BatchID:                batchID,
		Attempt:                attempt,
		LastAttemptTimestampMs: nowMs,
		Reason:                 reason,
	}

	return p.store.WriteString(model.RetryMetadataKey, rec.ToJSON())
}

// Clear removes the retry-metadata record entirely.
func (p *Provider) Clear() error {
	return p.store.RemoveString(model.RetryMetadataKey)
}

// Peek returns the current retry-metadata record without mutating
// anything, for diagnostics/status surfaces that want to report the
// last recorded failure reason.
func (p *Provider) Peek() (Metadata, bool) {
	raw := p.store.ReadString(model.RetryMetadataKey, "")
	if raw == "" {
		return Metadata{}, false
	}

	return FromJSON(raw)
}

// ReasonForRetryable maps a retryable upload error to the wire-exact
// Rsa-Retry-Reason token.
func ReasonForRetryable(err *model.RetryAbleError) string {
	return model.ReasonFor(err)
}
