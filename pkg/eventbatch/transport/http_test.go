package transport

import (
	"bytes"
	"encoding/base64"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/model"
)

func newTestServer(t *testing.T, status int, body string, check func(r *http.Request, rawBody []byte)) *httptest.Server {
	t.Helper()

	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw, err := io.ReadAll(r.Body)
		require.NoError(t, err)

		if check != nil {
			check(r, raw)
		}

		w.WriteHeader(status)
		_, _ = w.Write([]byte(body))
	}))
}

func TestHTTPClientSendSuccess(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, "ok", func(r *http.Request, raw []byte) {
		assert.Equal(t, "/v1/batch", r.URL.Path)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, `{"batch":[]}`, string(raw))

		user, pass, ok := r.BasicAuth()
		assert.True(t, ok)
		assert.Equal(t, "write-key", user)
		assert.Equal(t, "", pass)
	})
	defer srv.Close()

	c := NewHTTPClient(srv.Client(), srv.URL, "write-key", false, "test-agent/1.0")

	res := c.Send(t.Context(), `{"batch":[]}`, nil)
	assert.True(t, res.IsSuccess())
	assert.Equal(t, "ok", res.Body())
}

func TestHTTPClientSendGzipsBody(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, "ok", func(r *http.Request, raw []byte) {
		assert.Equal(t, "gzip", r.Header.Get("Content-Encoding"))

		gr, err := gzip.NewReader(bytes.NewReader(raw))
		require.NoError(t, err)

		decoded, err := io.ReadAll(gr)
		require.NoError(t, err)
		assert.Equal(t, `{"batch":[]}`, string(decoded))
	})
	defer srv.Close()

	c := NewHTTPClient(srv.Client(), srv.URL, "write-key", true, "test-agent/1.0")

	res := c.Send(t.Context(), `{"batch":[]}`, nil)
	assert.True(t, res.IsSuccess())
}

func TestHTTPClientSendsRetryHeaders(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, "ok", func(r *http.Request, _ []byte) {
		assert.Equal(t, "3", r.Header.Get("Rsa-Retry-Attempt"))
		assert.Equal(t, "server-500", r.Header.Get("Rsa-Retry-Reason"))
	})
	defer srv.Close()

	c := NewHTTPClient(srv.Client(), srv.URL, "write-key", false, "")

	res := c.Send(t.Context(), `{}`, map[string]string{
		"Rsa-Retry-Attempt": "3",
		"Rsa-Retry-Reason":  "server-500",
	})
	assert.True(t, res.IsSuccess())
}

func TestHTTPClientSendsAnonymousIDHeaderBase64(t *testing.T) {
	srv := newTestServer(t, http.StatusOK, "ok", func(r *http.Request, _ []byte) {
		decoded, err := base64.StdEncoding.DecodeString(r.Header.Get("AnonymousId"))
		require.NoError(t, err)
		assert.Equal(t, "anon-123", string(decoded))
	})
	defer srv.Close()

	c := NewHTTPClient(srv.Client(), srv.URL, "write-key", false, "")
	c.SetAnonymousID("anon-123")

	res := c.Send(t.Context(), `{}`, nil)
	assert.True(t, res.IsSuccess())
}

func TestHTTPClientClassifiesTerminalStatuses(t *testing.T) {
	testCases := []struct {
		status   int
		wantKind model.NonRetryAbleKind
	}{
		{http.StatusBadRequest, model.Error400},
		{http.StatusUnauthorized, model.Error401},
		{http.StatusNotFound, model.Error404},
		{http.StatusRequestEntityTooLarge, model.Error413},
	}

	for _, tc := range testCases {
		srv := newTestServer(t, tc.status, "", nil)

		c := NewHTTPClient(srv.Client(), srv.URL, "write-key", false, "")
		res := c.Send(t.Context(), `{}`, nil)

		nonRetryErr, ok := res.AsNonRetryable()
		require.True(t, ok)
		assert.Equal(t, tc.wantKind, nonRetryErr.Kind)

		srv.Close()
	}
}

func TestHTTPClientClassifiesOtherStatusesAsRetryable(t *testing.T) {
	srv := newTestServer(t, http.StatusInternalServerError, "", nil)
	defer srv.Close()

	c := NewHTTPClient(srv.Client(), srv.URL, "write-key", false, "")
	res := c.Send(t.Context(), `{}`, nil)

	retryErr, ok := res.AsRetryable()
	require.True(t, ok)
	assert.Equal(t, model.ErrorRetry, retryErr.Kind)
	require.NotNil(t, retryErr.StatusCode)
	assert.Equal(t, http.StatusInternalServerError, *retryErr.StatusCode)
}

func TestHTTPClientConnectionRefusedIsRetryable(t *testing.T) {
	c := NewHTTPClient(http.DefaultClient, "http://127.0.0.1:1", "write-key", false, "")

	res := c.Send(t.Context(), `{}`, nil)

	retryErr, ok := res.AsRetryable()
	require.True(t, ok)
	assert.NotEqual(t, model.ErrorTimeout, retryErr.Kind)
}
