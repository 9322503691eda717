package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUploadResultVariants(t *testing.T) {
	t.Run("Success", func(t *testing.T) {
		r := Success("ok-body")

		assert.True(t, r.IsSuccess())
		assert.Equal(t, "ok-body", r.Body())

		_, ok := r.AsRetryable()
		assert.False(t, ok)

		_, ok = r.AsNonRetryable()
		assert.False(t, ok)
	})

	t.Run("Retryable", func(t *testing.T) {
		status := 503
		r := Retryable(&RetryAbleError{Kind: ErrorRetry, StatusCode: &status})

		assert.False(t, r.IsSuccess())

		retryErr, ok := r.AsRetryable()
		assert.True(t, ok)
		assert.Equal(t, ErrorRetry, retryErr.Kind)
		assert.Equal(t, "retryable http status 503", retryErr.Error())

		_, ok = r.AsNonRetryable()
		assert.False(t, ok)
	})

	t.Run("NonRetryable", func(t *testing.T) {
		r := NonRetryable(&NonRetryAbleError{Kind: Error401})

		assert.False(t, r.IsSuccess())

		nonRetryErr, ok := r.AsNonRetryable()
		assert.True(t, ok)
		assert.Equal(t, Error401, nonRetryErr.Kind)
		assert.Equal(t, "unauthorized (401)", nonRetryErr.Error())

		_, ok = r.AsRetryable()
		assert.False(t, ok)
	})
}

func TestNonRetryAbleErrorMessages(t *testing.T) {
	testCases := []struct {
		kind     NonRetryAbleKind
		expected string
	}{
		{Error400, "bad request (400)"},
		{Error401, "unauthorized (401)"},
		{Error404, "not found (404)"},
		{Error413, "payload too large (413)"},
	}

	for _, tc := range testCases {
		err := &NonRetryAbleError{Kind: tc.kind}
		assert.Equal(t, tc.expected, err.Error())
	}
}

func TestRetryAbleErrorMessages(t *testing.T) {
	status := 500

	testCases := []struct {
		name     string
		err      *RetryAbleError
		expected string
	}{
		{"status known", &RetryAbleError{Kind: ErrorRetry, StatusCode: &status}, "retryable http status 500"},
		{"status unknown", &RetryAbleError{Kind: ErrorRetry}, "retryable error"},
		{"network unavailable", &RetryAbleError{Kind: ErrorNetworkUnavailable}, "network unavailable"},
		{"timeout", &RetryAbleError{Kind: ErrorTimeout}, "request timeout"},
		{"unknown", &RetryAbleError{Kind: ErrorUnknown}, "unknown transport error"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, tc.err.Error())
		})
	}
}

func TestReasonFor(t *testing.T) {
	status := 502

	testCases := []struct {
		name     string
		err      *RetryAbleError
		expected string
	}{
		{"nil error", nil, "client-unknown"},
		{"server status", &RetryAbleError{Kind: ErrorRetry, StatusCode: &status}, "server-502"},
		{"retry without status", &RetryAbleError{Kind: ErrorRetry}, "client-network"},
		{"network unavailable", &RetryAbleError{Kind: ErrorNetworkUnavailable}, "client-network"},
		{"timeout", &RetryAbleError{Kind: ErrorTimeout}, "client-timeout"},
		{"unknown", &RetryAbleError{Kind: ErrorUnknown}, "client-unknown"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.expected, ReasonFor(tc.err))
		})
	}
}

func TestPlatformTypeString(t *testing.T) {
	assert.Equal(t, "server", Server.String())
	assert.Equal(t, "mobile", Mobile.String())
}
