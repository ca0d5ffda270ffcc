// Package httpclient provides a small JSON HTTP client shared by every
// outbound collaborator call: it injects a bearer Authorization header,
// applies a fixed timeout and a fixed retry budget, and extracts
// human-readable messages from JSON error bodies.
package httpclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

const (
	defaultTimeout  = 30 * time.Second
	defaultAttempts = 3
	defaultBackoff  = 500 * time.Millisecond
)

// StatusError is returned for any non-2xx response. Message is taken from
// the JSON error body when one can be found, otherwise the HTTP status text.
type StatusError struct {
	StatusCode int
	Message    string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("http %d: %s", e.StatusCode, e.Message)
}

// IsRetryable reports whether the error warrants another attempt: server
// failures are retried, client errors are not.
func (e *StatusError) IsRetryable() bool {
	return e.StatusCode >= 500
}

// Client is the shared outbound HTTP client.
type Client struct {
	baseURL  string
	hc       *http.Client
	token    func() string
	attempts int
	backoff  time.Duration
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets a static bearer token injected on every request unless the
// request opts out.
func WithToken(token string) Option {
	return func(c *Client) { c.token = func() string { return token } }
}

// WithTokenSource sets a dynamic bearer token source, e.g. the current
// session token.
func WithTokenSource(source func() string) Option {
	return func(c *Client) { c.token = source }
}

// WithTimeout overrides the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.hc.Timeout = d }
}

// WithRetry overrides the retry budget. attempts is the total number of
// tries and is clamped to at least one; backoff grows linearly per attempt.
func WithRetry(attempts int, backoff time.Duration) Option {
	return func(c *Client) {
		if attempts < 1 {
			attempts = 1
		}
		c.attempts = attempts
		c.backoff = backoff
	}
}

// New creates a Client for the given base URL. The transport is instrumented
// with OpenTelemetry.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		hc: &http.Client{
			Timeout:   defaultTimeout,
			Transport: otelhttp.NewTransport(http.DefaultTransport),
		},
		attempts: defaultAttempts,
		backoff:  defaultBackoff,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// requestOptions holds per-request overrides.
type requestOptions struct {
	noAuth  bool
	headers map[string]string
}

// RequestOption configures a single request.
type RequestOption func(*requestOptions)

// WithoutAuth skips the Authorization header for this request, e.g. for
// third-party endpoints that use their own key header.
func WithoutAuth() RequestOption {
	return func(o *requestOptions) { o.noAuth = true }
}

// WithHeader adds a header to this request.
func WithHeader(key, value string) RequestOption {
	return func(o *requestOptions) {
		if o.headers == nil {
			o.headers = make(map[string]string)
		}
		o.headers[key] = value
	}
}

// Get issues a GET request and decodes the JSON response into out when out
// is non-nil.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post issues a POST request with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put issues a PUT request with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPut, path, body, out, opts...)
}

// Patch issues a PATCH request with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodPatch, path, body, out, opts...)
}

// Delete issues a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...RequestOption) error {
	return c.do(ctx, http.MethodDelete, path, nil, out, opts...)
}

// Upload issues a multipart POST with a single file field. Uploads are not
// retried; the reader is consumed on the first attempt.
func (c *Client) Upload(ctx context.Context, path, field, filename string, r io.Reader, out any, opts ...RequestOption) error {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile(field, filename)
	if err != nil {
		return errors.Wrap(err, "create form file")
	}
	if _, err := io.Copy(fw, r); err != nil {
		return errors.Wrap(err, "copy file")
	}
	if err := mw.Close(); err != nil {
		return errors.Wrap(err, "close multipart writer")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, &buf)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", mw.FormDataContentType())
	c.applyOptions(req, opts)

	resp, err := c.hc.Do(req)
	if err != nil {
		return errors.Wrap(err, "upload")
	}
	defer resp.Body.Close()

	return c.handleResponse(resp, out)
}

// do runs one logical request with the retry policy: transport errors and
// 5xx responses are retried up to the attempt budget with linear backoff;
// 4xx responses surface immediately.
func (c *Client) do(ctx context.Context, method, path string, body, out any, opts ...RequestOption) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return errors.Wrap(err, "marshal request body")
		}
	}

	var lastErr error
	for attempt := 1; attempt <= c.attempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(time.Duration(attempt-1) * c.backoff):
			}
		}

		var rd io.Reader
		if payload != nil {
			rd = bytes.NewReader(payload)
		}
		req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, rd)
		if err != nil {
			return errors.Wrap(err, "create request")
		}
		if payload != nil {
			req.Header.Set("Content-Type", "application/json")
		}
		c.applyOptions(req, opts)

		resp, err := c.hc.Do(req)
		if err != nil {
			lastErr = errors.Wrap(err, "do request")
			continue
		}

		err = c.handleResponse(resp, out)
		resp.Body.Close()
		if err == nil {
			return nil
		}

		var se *StatusError
		if errors.As(err, &se) && !se.IsRetryable() {
			return err
		}
		lastErr = err
	}

	return lastErr
}

func (c *Client) applyOptions(req *http.Request, opts []RequestOption) {
	var ro requestOptions
	for _, opt := range opts {
		opt(&ro)
	}
	if !ro.noAuth && c.token != nil {
		if t := c.token(); t != "" {
			req.Header.Set("Authorization", "Bearer "+t)
		}
	}
	for k, v := range ro.headers {
		req.Header.Set(k, v)
	}
}

func (c *Client) handleResponse(resp *http.Response, out any) error {
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return errors.Wrap(err, "read response body")
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return &StatusError{
			StatusCode: resp.StatusCode,
			Message:    errorMessage(raw, resp.StatusCode),
		}
	}

	if out == nil || len(raw) == 0 {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return errors.Wrap(err, "decode response body")
	}
	return nil
}

// errorMessage digs a human-readable message out of a JSON error body,
// tolerating whatever shape the backend produced. It falls back to the HTTP
// status text.
func errorMessage(raw []byte, statusCode int) string {
	d := jx.DecodeBytes(raw)
	var msg string
	_ = d.Obj(func(d *jx.Decoder, key string) error {
		switch key {
		case "message", "error", "detail":
			if msg == "" && d.Next() == jx.String {
				s, err := d.Str()
				if err != nil {
					return err
				}
				msg = s
				return nil
			}
		}
		return d.Skip()
	})
	if msg != "" {
		return msg
	}
	return http.StatusText(statusCode)
}
