/*
Package api is the HTTP client of the remote complaint service.

Every request carries a JSON content type, a fresh X-Request-ID and, when the credential source
has one, an "Authorization: Bearer" header. Each call is a single request: there is no retry,
and the only deadline is the caller's context.
*/
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/time/rate"

	"complaintportal/internal/metrics"
	"complaintportal/internal/pkg/logx"
)

// maxResponseSize bounds how much of a response body is read.
const maxResponseSize = 4 << 20

// CredentialSource supplies the bearer credential for outgoing requests.
type CredentialSource interface {
	Credential() string
}

// Client talks to the remote complaint service.
type Client struct {
	baseURL    string
	httpClient *http.Client
	limiter    *rate.Limiter

	mu    sync.RWMutex
	creds CredentialSource
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the default http.Client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		c.httpClient = hc
	}
}

// WithRateLimit paces outgoing requests. A zero limit leaves requests unpaced.
func WithRateLimit(r rate.Limit, burst int) Option {
	return func(c *Client) {
		if r > 0 {
			c.limiter = rate.NewLimiter(r, burst)
		}
	}
}

// New creates a client for the service rooted at baseURL (e.g. http://localhost:3000/api).
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// UseCredentials sets the credential source. The session store is created after the client,
// so it is attached here.
func (c *Client) UseCredentials(src CredentialSource) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.creds = src
}

func (c *Client) credential() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	if c.creds == nil {
		return ""
	}
	return c.creds.Credential()
}

type errorPayload struct {
	Message string `json:"message"`
}

// do performs one request. body and out may be nil.
func (c *Client) do(ctx context.Context, op, method, path string, query url.Values, body, out any) (err error) {
	start := time.Now()
	defer func() {
		metrics.RemoteRequestsTotal.WithLabelValues(op, metrics.Outcome(err)).Inc()
		metrics.RemoteRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	}()

	target := c.baseURL + path
	if len(query) > 0 {
		target += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("api: %s: encode request: %w", op, err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return fmt.Errorf("api: %s: build request: %w", op, err)
	}

	requestID := uuid.NewString()
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", requestID)
	if token := c.credential(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return &RemoteError{Op: op, Kind: KindTransport, Err: err}
		}
	}

	res, err := c.httpClient.Do(req)
	if err != nil {
		logx.Warn("Remote request failed", "op", op, "request_id", requestID, "error", err.Error())
		return &RemoteError{Op: op, Kind: KindTransport, Err: err}
	}
	defer res.Body.Close()

	data, err := io.ReadAll(io.LimitReader(res.Body, maxResponseSize))
	if err != nil {
		return &RemoteError{Op: op, Kind: KindTransport, Status: res.StatusCode, Err: err}
	}

	logx.Debug("Remote request completed",
		"op", op,
		"request_id", requestID,
		"method", method,
		"path", path,
		"status", res.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	if res.StatusCode < 200 || res.StatusCode > 299 {
		kind := KindFailure
		if res.StatusCode >= 400 && res.StatusCode < 500 {
			kind = KindRejected
		}
		var payload errorPayload
		_ = json.Unmarshal(data, &payload)
		return &RemoteError{Op: op, Kind: kind, Status: res.StatusCode, Message: strings.TrimSpace(payload.Message)}
	}

	if out == nil {
		return nil
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return &RemoteError{Op: op, Kind: KindMalformed, Status: res.StatusCode, Err: errors.New("empty body")}
	}
	if err := json.Unmarshal(data, out); err != nil {
		return &RemoteError{Op: op, Kind: KindMalformed, Status: res.StatusCode, Err: err}
	}
	return nil
}
