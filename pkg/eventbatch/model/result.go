// Package model holds the data types shared across the batching and
// upload engine: the event-upload result taxonomy and the sentinel errors
// raised at the Storage boundary.
package model

import "fmt"

// RetryAbleKind enumerates the retryable failure classes of an upload
// attempt. The caller should back off and try the same batch again.
type RetryAbleKind int8

const (
	// ErrorRetry is a non-terminal HTTP status (any 4xx/5xx other than
	// the NonRetryAble set) or, when StatusCode is nil, an unclassified
	// retryable condition.
	ErrorRetry RetryAbleKind = iota
	// ErrorNetworkUnavailable covers DNS failures and refused/unreachable
	// connections.
	ErrorNetworkUnavailable
	// ErrorTimeout covers socket and read timeouts.
	ErrorTimeout
	// ErrorUnknown covers any other transport fault.
	ErrorUnknown
)

// NonRetryAbleKind enumerates the terminal failure classes of an upload
// attempt. The Uploader never retries these; depending on the kind it
// either removes the batch or cancels itself (keeping the batch).
type NonRetryAbleKind int8

const (
	// Error400 — malformed batch. Poison: drop and continue.
	Error400 NonRetryAbleKind = iota
	// Error401 — invalid write key. Fatal-for-stream: cancel, notify host.
	Error401
	// Error404 — source disabled. Fatal-for-stream: cancel, notify host.
	Error404
	// Error413 — payload too large for the endpoint. Poison: drop and continue.
	Error413
)

// RetryAbleError is the retryable half of the EventUploadResult taxonomy.
// StatusCode is non-nil only for Kind == ErrorRetry and an HTTP response
// was actually received.
type RetryAbleError struct {
	Kind       RetryAbleKind
	StatusCode *int
}

func (e *RetryAbleError) Error() string {
	if e.Kind == ErrorRetry && e.StatusCode != nil {
		return fmt.Sprintf("retryable http status %d", *e.StatusCode)
	}

	switch e.Kind {
	case ErrorNetworkUnavailable:
		return "network unavailable"
	case ErrorTimeout:
		return "request timeout"
	case ErrorUnknown:
		return "unknown transport error"
	default:
		return "retryable error"
	}
}

// NonRetryAbleError is the terminal half of the EventUploadResult taxonomy.
type NonRetryAbleError struct {
	Kind NonRetryAbleKind
}

func (e *NonRetryAbleError) Error() string {
	switch e.Kind {
	case Error400:
		return "bad request (400)"
	case Error401:
		return "unauthorized (401)"
	case Error404:
		return "not found (404)"
	case Error413:
		return "payload too large (413)"
	default:
		return "non-retryable error"
	}
}

// UploadResult is the tagged sum of outcomes from a single HTTP send
// attempt. Exactly one of Body, Retryable, NonRetryable is meaningful at
// a time; callers should switch on the accessor methods rather than
// inspect fields directly.
type UploadResult struct {
	body        string
	retryable   *RetryAbleError
	nonRetrySet *NonRetryAbleError
}

// Success builds a successful UploadResult carrying the response body.
func Success(body string) UploadResult {
	return UploadResult{body: body}
}

// Retryable builds a retryable-failure UploadResult.
func Retryable(err *RetryAbleError) UploadResult {
	return UploadResult{retryable: err}
}

// NonRetryable builds a terminal-failure UploadResult.
func NonRetryable(err *NonRetryAbleError) UploadResult {
	return UploadResult{nonRetrySet: err}
}

// IsSuccess reports whether the result is the Success variant.
func (r UploadResult) IsSuccess() bool { return r.retryable == nil && r.nonRetrySet == nil }

// Body returns the response body; only meaningful when IsSuccess.
func (r UploadResult) Body() string { return r.body }

// AsRetryable returns the retryable error and true, or (nil, false).
func (r UploadResult) AsRetryable() (*RetryAbleError, bool) {
	return r.retryable, r.retryable != nil
}

// AsNonRetryable returns the terminal error and true, or (nil, false).
func (r UploadResult) AsNonRetryable() (*NonRetryAbleError, bool) {
	return r.nonRetrySet, r.nonRetrySet != nil
}

// ReasonFor maps an upload failure to the wire-exact Rsa-Retry-Reason
// token. Only retryable errors have a reason; terminal errors never
// reach RetryHeadersProvider.RecordFailure, but the mapping is total for
// safety.
func ReasonFor(err *RetryAbleError) string {
	if err == nil {
		return "client-unknown"
	}

	switch err.Kind {
	case ErrorRetry:
		if err.StatusCode != nil {
			return fmt.Sprintf("server-%d", *err.StatusCode)
		}

		return "client-network"
	case ErrorNetworkUnavailable:
		return "client-network"
	case ErrorTimeout:
		return "client-timeout"
	default:
		return "client-unknown"
	}
}
