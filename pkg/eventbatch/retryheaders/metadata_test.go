package retryheaders

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMetadataRoundTrip(t *testing.T) {
	rec := Metadata{BatchID: 7, Attempt: 3, LastAttemptTimestampMs: 1234, Reason: "server-503"}

	raw := rec.ToJSON()

	got, ok := FromJSON(raw)
	assert.True(t, ok)
	assert.Equal(t, rec, got)
}

func TestMetadataRoundTripZeroBatchID(t *testing.T) {
	rec := Metadata{BatchID: 0, Attempt: 1, LastAttemptTimestampMs: 0, Reason: "client-timeout"}

	got, ok := FromJSON(rec.ToJSON())
	assert.True(t, ok)
	assert.Equal(t, rec, got)
}

func TestFromJSONRejectsPartialOrMalformed(t *testing.T) {
	testCases := []struct {
		name string
		raw  string
	}{
		{"empty", ""},
		{"malformed json", "{not json"},
		{"missing reason", `{"batchId":1,"attempt":1,"lastAttemptTimestampMs":1}`},
		{"missing batchId", `{"attempt":1,"lastAttemptTimestampMs":1,"reason":"x"}`},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			_, ok := FromJSON(tc.raw)
			assert.False(t, ok)
		})
	}
}

func TestFromJSONToleratesUnknownFields(t *testing.T) {
	raw := `{"batchId":1,"attempt":1,"lastAttemptTimestampMs":1,"reason":"x","extra":"ignored"}`

	got, ok := FromJSON(raw)
	assert.True(t, ok)
	assert.Equal(t, Metadata{BatchID: 1, Attempt: 1, LastAttemptTimestampMs: 1, Reason: "x"}, got)
}
