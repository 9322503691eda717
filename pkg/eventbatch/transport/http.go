package transport

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"io"
	"net"
	"net/http"

	"github.com/klauspost/compress/gzip"

	"github.com/rudderlabs/rudder-go-batch-engine/pkg/eventbatch/model"
)

const batchPath = "/v1/batch"

// HTTPClient is the production HTTPSender: it POSTs the prepared batch
// to <dataPlaneURL>/v1/batch with the wire-exact Rsa-Retry-* headers,
// optionally gzip-compressing the body, and classifies the response by
// status code into the EventUploadResult taxonomy.
type HTTPClient struct {
	client      *http.Client
	dataPlaneURL string
	writeKey     string
	gzipEnabled  bool
	userAgent    string

	anonymousID string
}

// NewHTTPClient builds an HTTPClient. client may be http.DefaultClient
// or a caller-tuned client (timeouts, proxies, transport-level
// instrumentation).
func NewHTTPClient(client *http.Client, dataPlaneURL, writeKey string, gzipEnabled bool, userAgent string) *HTTPClient {
	return &HTTPClient{
		client:       client,
		dataPlaneURL: dataPlaneURL,
		writeKey:     writeKey,
		gzipEnabled:  gzipEnabled,
		userAgent:    userAgent,
	}
}

// SetAnonymousID updates the AnonymousId header value sent on every
// subsequent Send call, until changed again.
func (c *HTTPClient) SetAnonymousID(id string) {
	c.anonymousID = id
}

// Send implements HTTPSender.
func (c *HTTPClient) Send(ctx context.Context, payload string, retryHeaders map[string]string) model.UploadResult {
	body, encoding, err := c.encodeBody(payload)
	if err != nil {
		return model.Retryable(&model.RetryAbleError{Kind: model.ErrorUnknown})
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.dataPlaneURL+batchPath, bytes.NewReader(body))
	if err != nil {
		return model.Retryable(&model.RetryAbleError{Kind: model.ErrorUnknown})
	}

	c.setHeaders(req, encoding, retryHeaders)

	resp, err := c.client.Do(req)
	if err != nil {
		return classifyTransportError(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return model.Retryable(&model.RetryAbleError{Kind: model.ErrorUnknown})
	}

	return classifyStatus(resp.StatusCode, string(respBody))
}

func (c *HTTPClient) encodeBody(payload string) ([]byte, string, error) {
	if !c.gzipEnabled {
		return []byte(payload), "", nil
	}

	var buf bytes.Buffer

	gw := gzip.NewWriter(&buf)
	if _, err := gw.Write([]byte(payload)); err != nil {
		return nil, "", err
	}

	if err := gw.Close(); err != nil {
		return nil, "", err
	}

	return buf.Bytes(), "gzip", nil
}

func (c *HTTPClient) setHeaders(req *http.Request, encoding string, retryHeaders map[string]string) {
	basicAuth := base64.StdEncoding.EncodeToString([]byte(c.writeKey + ":"))
	req.Header.Set("Authorization", "Basic "+basicAuth)
	req.Header.Set("Content-Type", "application/json")

	if encoding != "" {
		req.Header.Set("Content-Encoding", encoding)
	}

	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	req.Header.Set("AnonymousId", base64.StdEncoding.EncodeToString([]byte(c.anonymousID)))

	for k, v := range retryHeaders {
		req.Header.Set(k, v)
	}
}

func classifyTransportError(ctx context.Context, err error) model.UploadResult {
	if errors.Is(ctx.Err(), context.Canceled) {
		return model.Retryable(&model.RetryAbleError{Kind: model.ErrorUnknown})
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return model.Retryable(&model.RetryAbleError{Kind: model.ErrorTimeout})
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return model.Retryable(&model.RetryAbleError{Kind: model.ErrorNetworkUnavailable})
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		return model.Retryable(&model.RetryAbleError{Kind: model.ErrorNetworkUnavailable})
	}

	return model.Retryable(&model.RetryAbleError{Kind: model.ErrorUnknown})
}

func classifyStatus(status int, body string) model.UploadResult {
	switch {
	case status >= 200 && status < 300:
		return model.Success(body)
	case status == http.StatusBadRequest:
		return model.NonRetryable(&model.NonRetryAbleError{Kind: model.Error400})
	case status == http.StatusUnauthorized:
		return model.NonRetryable(&model.NonRetryAbleError{Kind: model.Error401})
	case status == http.StatusNotFound:
		return model.NonRetryable(&model.NonRetryAbleError{Kind: model.Error404})
	case status == http.StatusRequestEntityTooLarge:
		return model.NonRetryable(&model.NonRetryAbleError{Kind: model.Error413})
	default:
		s := status
		return model.Retryable(&model.RetryAbleError{Kind: model.ErrorRetry, StatusCode: &s})
	}
}
