package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"
)

// Method is an HTTP verb accepted by the client.
type Method string

const (
	MethodGet    Method = http.MethodGet
	MethodPost   Method = http.MethodPost
	MethodPut    Method = http.MethodPut
	MethodDelete Method = http.MethodDelete
	MethodPatch  Method = http.MethodPatch
)

const (
	// DefaultTimeout bounds each phase of a request when the caller sets none.
	DefaultTimeout   = 10 * time.Second
	defaultUserAgent = "folio/0.1"

	headerContentType   = "Content-Type"
	headerAuthorization = "Authorization"
)

// Request describes a single call. It is not retained after the call returns.
type Request struct {
	Method  Method
	Headers map[string]string
	Body    any
	Timeout time.Duration
}

// Client issues JSON requests against a fixed base URL. The default header
// set, including any auth token, is shared by every call on the instance.
type Client struct {
	baseURL   string
	http      *http.Client
	timeout   time.Duration
	userAgent string
	logger    *slog.Logger

	mu       sync.RWMutex
	defaults map[string]string
}

// Option customizes a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying transport client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-phase timeout used when a Request leaves it zero.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithLogger routes request failure logs to logger.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// New builds a Client. Paths passed to Do are appended verbatim to baseURL.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL:   strings.TrimSpace(baseURL),
		http:      &http.Client{},
		timeout:   DefaultTimeout,
		userAgent: defaultUserAgent,
		logger:    slog.Default(),
		defaults: map[string]string{
			headerContentType: "application/json",
		},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the prefix applied to every request path.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetAuthToken attaches a bearer token to all subsequent calls.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.defaults[headerAuthorization] = "Bearer " + token
}

// RemoveAuthToken stops sending the bearer token.
func (c *Client) RemoveAuthToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.defaults, headerAuthorization)
}

func (c *Client) headerSet(extra map[string]string) map[string]string {
	c.mu.RLock()
	defer c.mu.RUnlock()

	merged := make(map[string]string, len(c.defaults)+len(extra))
	for k, v := range c.defaults {
		merged[k] = v
	}
	for k, v := range extra {
		merged[k] = v
	}
	return merged
}

// Do performs r against the client's base URL joined with path and decodes
// the JSON response into T.
func Do[T any](ctx context.Context, c *Client, path string, r Request) (T, error) {
	var out T
	if c == nil {
		return out, fmt.Errorf("client is nil")
	}
	data, err := c.roundTrip(ctx, path, r)
	if err != nil {
		return out, err
	}
	if err := json.Unmarshal(data, &out); err != nil {
		err = &DecodeError{Err: err}
		c.logFailure(r.Method, path, err)
		return out, err
	}
	return out, nil
}

// Get issues a GET request.
func Get[T any](ctx context.Context, c *Client, path string, headers map[string]string) (T, error) {
	return Do[T](ctx, c, path, Request{Method: MethodGet, Headers: headers})
}

// Post issues a POST request with a JSON body.
func Post[T any](ctx context.Context, c *Client, path string, body any, headers map[string]string) (T, error) {
	return Do[T](ctx, c, path, Request{Method: MethodPost, Body: body, Headers: headers})
}

// Put issues a PUT request with a JSON body.
func Put[T any](ctx context.Context, c *Client, path string, body any, headers map[string]string) (T, error) {
	return Do[T](ctx, c, path, Request{Method: MethodPut, Body: body, Headers: headers})
}

// Patch issues a PATCH request with a JSON body.
func Patch[T any](ctx context.Context, c *Client, path string, body any, headers map[string]string) (T, error) {
	return Do[T](ctx, c, path, Request{Method: MethodPatch, Body: body, Headers: headers})
}

// Delete issues a DELETE request.
func Delete[T any](ctx context.Context, c *Client, path string, headers map[string]string) (T, error) {
	return Do[T](ctx, c, path, Request{Method: MethodDelete, Headers: headers})
}

// roundTrip sends the request and returns the raw body. The timeout is armed
// once while waiting for response headers and again while reading the body.
func (c *Client) roundTrip(ctx context.Context, path string, r Request) ([]byte, error) {
	method := r.Method
	if method == "" {
		method = MethodGet
	}
	switch method {
	case MethodGet, MethodPost, MethodPut, MethodDelete, MethodPatch:
	default:
		return nil, fmt.Errorf("unsupported method %q", method)
	}
	timeout := r.Timeout
	if timeout <= 0 {
		timeout = c.timeout
	}

	var body io.Reader
	if r.Body != nil {
		encoded, err := json.Marshal(r.Body)
		if err != nil {
			return nil, fmt.Errorf("encode body: %w", err)
		}
		body = bytes.NewReader(encoded)
	}

	reqCtx, cancel := context.WithCancelCause(ctx)
	defer cancel(nil)

	req, err := http.NewRequestWithContext(reqCtx, string(method), c.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	for k, v := range c.headerSet(r.Headers) {
		req.Header.Set(k, v)
	}
	if req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	headerTimer := time.AfterFunc(timeout, func() { cancel(ErrTimeout) })
	resp, err := c.http.Do(req)
	headerTimer.Stop()
	if err != nil {
		err = transportError(reqCtx, "execute request", err)
		c.logFailure(method, path, err)
		return nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == 0 || resp.StatusCode >= 400 {
		err := &ProtocolError{StatusCode: resp.StatusCode}
		c.logFailure(method, path, err)
		return nil, err
	}

	bodyTimer := time.AfterFunc(timeout, func() { cancel(ErrTimeout) })
	data, err := io.ReadAll(resp.Body)
	bodyTimer.Stop()
	if err != nil {
		err = transportError(reqCtx, "read body", err)
		c.logFailure(method, path, err)
		return nil, err
	}
	return data, nil
}

func transportError(ctx context.Context, op string, err error) *TransportError {
	if errors.Is(context.Cause(ctx), ErrTimeout) {
		return &TransportError{Op: op, Err: fmt.Errorf("%w: %v", ErrTimeout, err)}
	}
	return &TransportError{Op: op, Err: err}
}

func (c *Client) logFailure(method Method, path string, err error) {
	if method == "" {
		method = MethodGet
	}
	c.logger.Debug("http request failed",
		"method", string(method),
		"url", c.baseURL+path,
		"kind", Kind(err).String(),
		"err", err,
	)
}
