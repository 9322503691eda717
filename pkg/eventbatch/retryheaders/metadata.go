package retryheaders

import "encoding/json"

// Metadata is the persisted RetryMetadata record: a
// compact JSON object with exactly four fields. At most one instance
// exists at any time, stored under model.RetryMetadataKey.
type Metadata struct {
	BatchID                int64  `json:"batchId"`
	Attempt                int    `json:"attempt"`
	LastAttemptTimestampMs int64  `json:"lastAttemptTimestampMs"`
	Reason                 string `json:"reason"`
}

// wireMetadata mirrors Metadata but with pointer fields so FromJSON can
// tell "field present with zero value" apart from "field missing": a
// batch ID of zero with the other three fields absent must round-trip
// as missing, while a fully-populated record with BatchID == 0 must
// round-trip intact.
type wireMetadata struct {
	BatchID                *int64  `json:"batchId"`
	Attempt                *int    `json:"attempt"`
	LastAttemptTimestampMs *int64  `json:"lastAttemptTimestampMs"`
	Reason                 *string `json:"reason"`
}

// ToJSON serialises the record to its compact four-field wire form.
func (m Metadata) ToJSON() string {
	raw, err := json.Marshal(m)
	if err != nil {
		// The struct is a fixed set of JSON-safe scalars; Marshal
		// cannot fail on it.
		return ""
	}

	return string(raw)
}

// FromJSON parses the wire form. Any parse error, or any of the four
// required fields missing, is treated as absent: empty input,
// malformed JSON, and a partial object all return (Metadata{}, false).
// Unknown extra fields are tolerated.
func FromJSON(raw string) (Metadata, bool) {
	var w wireMetadata

	if err := json.Unmarshal([]byte(raw), &w); err != nil {
		return Metadata{}, false
	}

	if w.BatchID == nil || w.Attempt == nil || w.LastAttemptTimestampMs == nil || w.Reason == nil {
		return Metadata{}, false
	}

	return Metadata{
		BatchID:                *w.BatchID,
		Attempt:                *w.Attempt,
		LastAttemptTimestampMs: *w.LastAttemptTimestampMs,
		Reason:                 *w.Reason,
	}, true
}
