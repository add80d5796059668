// Copyright (c) 2025 The UFood Authors
// SPDX-License-Identifier: AGPL-3.0-or-later

package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// =============================================================================
// CONSTANTS
// =============================================================================

const (
	// DefaultTimeout bounds every request unless the config overrides it.
	DefaultTimeout = 30 * time.Second

	// maxResponseSize caps how much of a response body is read into memory.
	maxResponseSize = 10 * 1024 * 1024

	contentTypeJSON = "application/json"
)

// Statuses synthesized by the client for transport-level failures. Callers
// branch on these, so they are part of the package contract.
const (
	// StatusNetworkError marks a request that never produced a response.
	StatusNetworkError = 0

	// StatusTimeout marks a request cancelled by its deadline.
	StatusTimeout = http.StatusRequestTimeout
)

// =============================================================================
// ERRORS
// =============================================================================

// Error is the structured failure every client method returns. Status holds
// either the HTTP status from the server or one of the synthesized transport
// statuses above. Data carries the raw response body when one was received.
type Error struct {
	Status  int
	Message string
	Data    json.RawMessage
}

func (e *Error) Error() string {
	if e.Status == StatusNetworkError {
		return fmt.Sprintf("api: network error: %s", e.Message)
	}
	return fmt.Sprintf("api: status %d: %s", e.Status, e.Message)
}

// AsError unwraps err into *Error when possible.
func AsError(err error) (*Error, bool) {
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr, true
	}
	return nil, false
}

// IsNetworkError reports whether err represents a request that never reached
// the server.
func IsNetworkError(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Status == StatusNetworkError
}

// IsTimeout reports whether err represents a timed-out or aborted request.
func IsTimeout(err error) bool {
	apiErr, ok := AsError(err)
	return ok && apiErr.Status == StatusTimeout
}

// =============================================================================
// REQUEST / RESPONSE
// =============================================================================

// RequestConfig is the merged per-request configuration handed to each
// request interceptor before dispatch. Interceptors may mutate it.
type RequestConfig struct {
	Method      string
	Path        string
	Header      http.Header
	ContentType string
	Timeout     time.Duration

	// Body is JSON-encoded when non-nil and RawBody is nil.
	Body any

	// RawBody bypasses JSON encoding (multipart uploads).
	RawBody io.Reader
}

// Response is the decoded outcome of a dispatched request.
type Response struct {
	Status int
	Header http.Header
	Body   []byte
}

// Decode unmarshals the response body into out.
func (r *Response) Decode(out any) error {
	if len(r.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("api: decode response: %w", err)
	}
	return nil
}

// RequestInterceptor runs before dispatch and may mutate cfg. Returning an
// error aborts the request.
type RequestInterceptor func(ctx context.Context, cfg *RequestConfig) error

// ResponseInterceptor runs after the body is read, for success and failure
// statuses alike. Interceptor errors are logged by callers, never surfaced
// as request failures.
type ResponseInterceptor func(ctx context.Context, resp *Response)

// =============================================================================
// CLIENT
// =============================================================================

// Client issues requests against a single service base URL.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	limiter    *rate.Limiter

	mu               sync.RWMutex
	reqInterceptors  []RequestInterceptor
	respInterceptors []ResponseInterceptor
}

// New creates a client for baseURL with the default timeout.
func New(baseURL string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
	}
}

// WithTimeout overrides the default per-request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.timeout = d
	}
	return c
}

// WithHTTPClient substitutes the underlying transport, primarily for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// WithRateLimit throttles dispatch to rps requests per second.
func (c *Client) WithRateLimit(rps float64) *Client {
	if rps > 0 {
		c.limiter = rate.NewLimiter(rate.Limit(rps), int(rps)+1)
	}
	return c
}

// UseRequest appends a request interceptor. Interceptors run in registration
// order.
func (c *Client) UseRequest(ri RequestInterceptor) *Client {
	c.mu.Lock()
	c.reqInterceptors = append(c.reqInterceptors, ri)
	c.mu.Unlock()
	return c
}

// UseResponse appends a response interceptor.
func (c *Client) UseResponse(ri ResponseInterceptor) *Client {
	c.mu.Lock()
	c.respInterceptors = append(c.respInterceptors, ri)
	c.mu.Unlock()
	return c
}

// BaseURL returns the configured service root.
func (c *Client) BaseURL() string { return c.baseURL }

// =============================================================================
// DISPATCH
// =============================================================================

// Do merges defaults into cfg, runs the interceptor chains, and dispatches
// the request. Every failure path returns *Error.
func (c *Client) Do(ctx context.Context, cfg RequestConfig) (*Response, error) {
	if cfg.Header == nil {
		cfg.Header = make(http.Header)
	}
	if cfg.ContentType == "" && cfg.RawBody == nil {
		cfg.ContentType = contentTypeJSON
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = c.timeout
	}

	c.mu.RLock()
	reqChain := make([]RequestInterceptor, len(c.reqInterceptors))
	copy(reqChain, c.reqInterceptors)
	respChain := make([]ResponseInterceptor, len(c.respInterceptors))
	copy(respChain, c.respInterceptors)
	c.mu.RUnlock()

	for _, ri := range reqChain {
		if err := ri(ctx, &cfg); err != nil {
			return nil, &Error{Status: StatusNetworkError, Message: err.Error()}
		}
	}

	if c.limiter != nil {
		if err := c.limiter.Wait(ctx); err != nil {
			return nil, classifyTransport(ctx, err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()

	body, err := c.encodeBody(cfg)
	if err != nil {
		return nil, &Error{Status: StatusNetworkError, Message: err.Error()}
	}

	req, err := http.NewRequestWithContext(ctx, cfg.Method, c.baseURL+cfg.Path, body)
	if err != nil {
		return nil, &Error{Status: StatusNetworkError, Message: err.Error()}
	}
	for key, values := range cfg.Header {
		for _, v := range values {
			req.Header.Add(key, v)
		}
	}
	if cfg.ContentType != "" {
		req.Header.Set("Content-Type", cfg.ContentType)
	}
	req.Header.Set("Accept", contentTypeJSON)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(httpResp.Body, maxResponseSize))
	if err != nil {
		return nil, classifyTransport(ctx, err)
	}

	resp := &Response{
		Status: httpResp.StatusCode,
		Header: httpResp.Header,
		Body:   data,
	}

	for _, ri := range respChain {
		ri(ctx, resp)
	}

	if resp.Status < 200 || resp.Status > 299 {
		return resp, &Error{
			Status:  resp.Status,
			Message: extractMessage(data, httpResp.Status),
			Data:    json.RawMessage(data),
		}
	}
	return resp, nil
}

func (c *Client) encodeBody(cfg RequestConfig) (io.Reader, error) {
	if cfg.RawBody != nil {
		return cfg.RawBody, nil
	}
	if cfg.Body == nil {
		return nil, nil
	}
	data, err := json.Marshal(cfg.Body)
	if err != nil {
		return nil, fmt.Errorf("encode request body: %w", err)
	}
	return bytes.NewReader(data), nil
}

// classifyTransport maps a transport-level failure onto the synthetic
// statuses: deadline or cancellation becomes 408, everything else 0.
func classifyTransport(ctx context.Context, err error) *Error {
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return &Error{Status: StatusTimeout, Message: "request timed out"}
	}
	if errors.Is(err, context.Canceled) || errors.Is(ctx.Err(), context.Canceled) {
		return &Error{Status: StatusTimeout, Message: "request aborted"}
	}
	return &Error{Status: StatusNetworkError, Message: err.Error()}
}

// extractMessage pulls the server's message field from an error body, falling
// back to the HTTP status text.
func extractMessage(body []byte, fallback string) string {
	var envelope struct {
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &envelope); err == nil && envelope.Message != "" {
		return envelope.Message
	}
	return fallback
}

// =============================================================================
// VERB HELPERS
// =============================================================================

// Get dispatches a GET for path and decodes the body into out when non-nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.roundTrip(ctx, RequestConfig{Method: http.MethodGet, Path: path}, out)
}

// Post dispatches a POST with a JSON body.
func (c *Client) Post(ctx context.Context, path string, body, out any) error {
	return c.roundTrip(ctx, RequestConfig{Method: http.MethodPost, Path: path, Body: body}, out)
}

// Put dispatches a PUT with a JSON body.
func (c *Client) Put(ctx context.Context, path string, body, out any) error {
	return c.roundTrip(ctx, RequestConfig{Method: http.MethodPut, Path: path, Body: body}, out)
}

// Patch dispatches a PATCH with a JSON body.
func (c *Client) Patch(ctx context.Context, path string, body, out any) error {
	return c.roundTrip(ctx, RequestConfig{Method: http.MethodPatch, Path: path, Body: body}, out)
}

// Delete dispatches a DELETE for path.
func (c *Client) Delete(ctx context.Context, path string, out any) error {
	return c.roundTrip(ctx, RequestConfig{Method: http.MethodDelete, Path: path}, out)
}

func (c *Client) roundTrip(ctx context.Context, cfg RequestConfig, out any) error {
	resp, err := c.Do(ctx, cfg)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	return resp.Decode(out)
}

// FilePart describes one file in a multipart upload.
type FilePart struct {
	Field    string
	Filename string
	Content  io.Reader
}

// PostMultipart dispatches a multipart/form-data POST carrying fields and
// files, decoding the response into out when non-nil.
func (c *Client) PostMultipart(ctx context.Context, path string, fields map[string]string, files []FilePart, out any) error {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	for field, value := range fields {
		if err := writer.WriteField(field, value); err != nil {
			return &Error{Status: StatusNetworkError, Message: err.Error()}
		}
	}
	for _, fp := range files {
		part, err := writer.CreateFormFile(fp.Field, fp.Filename)
		if err != nil {
			return &Error{Status: StatusNetworkError, Message: err.Error()}
		}
		if _, err := io.Copy(part, fp.Content); err != nil {
			return &Error{Status: StatusNetworkError, Message: err.Error()}
		}
	}
	if err := writer.Close(); err != nil {
		return &Error{Status: StatusNetworkError, Message: err.Error()}
	}

	cfg := RequestConfig{
		Method:      http.MethodPost,
		Path:        path,
		RawBody:     &buf,
		ContentType: writer.FormDataContentType(),
	}
	return c.roundTrip(ctx, cfg, out)
}
