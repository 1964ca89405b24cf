// Package apiclient is the single configured HTTP client for the remote
// Mi Bolsillo API.
//
// One Client is built in main and shared. Per browser request the session
// bridge derives a copy with WithAuthToken, so the shared instance is never
// mutated on behalf of a user.
package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	applog "mibolsillo/internal/log"
	"mibolsillo/internal/metrics"
)

const (
	defaultTimeout  = 10 * time.Second
	maxResponseSize = 4 << 20
)

// RequestInterceptor runs before a request is sent. Returning an error aborts
// the call. The built-in header injection always runs first.
type RequestInterceptor func(*http.Request) error

// Response is what response interceptors see. The body is already read.
type Response struct {
	Request    *http.Request
	Path       string // API path as passed to Do
	StatusCode int
	Header     http.Header
	Body       []byte
	Elapsed    time.Duration
}

// ResponseInterceptor runs after a response arrives. The built-in chain is
// metrics and logging, then the configured interceptors, then the status
// check. Returning an error stops the chain and replaces the result.
type ResponseInterceptor func(*Response) error

// Client talks JSON to the API.
type Client struct {
	baseURL    *url.URL
	httpClient *http.Client
	timeout    time.Duration
	headers    http.Header
	logger     *applog.Logger
	metrics    *metrics.Metrics

	requestInterceptors  []RequestInterceptor
	responseInterceptors []ResponseInterceptor

	mu    sync.RWMutex
	token string
}

// Option configures a Client.
type Option func(*Client)

func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithTimeout bounds every call. Zero disables the per-call deadline.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.timeout = d }
}

func WithLogger(l *applog.Logger) Option {
	return func(c *Client) { c.logger = l.WithComponent(applog.ComponentAPI) }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithHeader adds a default header sent on every request.
func WithHeader(key, value string) Option {
	return func(c *Client) { c.headers.Set(key, value) }
}

func WithRequestInterceptor(i RequestInterceptor) Option {
	return func(c *Client) { c.requestInterceptors = append(c.requestInterceptors, i) }
}

func WithResponseInterceptor(i ResponseInterceptor) Option {
	return func(c *Client) { c.responseInterceptors = append(c.responseInterceptors, i) }
}

// New builds a client for baseURL, for example "http://localhost:8080".
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(strings.TrimRight(baseURL, "/"))
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("base url %q: scheme must be http or https", baseURL)
	}
	c := &Client{
		baseURL:    u,
		httpClient: &http.Client{},
		timeout:    defaultTimeout,
		headers:    http.Header{},
		logger:     applog.Discard(),
	}
	c.headers.Set("Content-Type", "application/json")
	c.headers.Set("Accept", "application/json")
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// SetAuthToken sets the default bearer token. An empty token clears it.
func (c *Client) SetAuthToken(token string) {
	c.mu.Lock()
	c.token = token
	c.mu.Unlock()
}

// AuthToken returns the current bearer token.
func (c *Client) AuthToken() string {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.token
}

// WithAuthToken returns a copy of c that sends token. Configuration is shared,
// the token is not.
func (c *Client) WithAuthToken(token string) *Client {
	return &Client{
		baseURL:              c.baseURL,
		httpClient:           c.httpClient,
		timeout:              c.timeout,
		headers:              c.headers,
		logger:               c.logger,
		metrics:              c.metrics,
		requestInterceptors:  c.requestInterceptors,
		responseInterceptors: c.responseInterceptors,
		token:                token,
	}
}

// BaseURL returns the configured API root.
func (c *Client) BaseURL() string { return c.baseURL.String() }

func (c *Client) Get(ctx context.Context, path string, query url.Values, out any) error {
	return c.Do(ctx, http.MethodGet, path, query, nil, out)
}

func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPost, path, nil, in, out)
}

func (c *Client) Put(ctx context.Context, path string, in, out any) error {
	return c.Do(ctx, http.MethodPut, path, nil, in, out)
}

func (c *Client) Delete(ctx context.Context, path string) error {
	return c.Do(ctx, http.MethodDelete, path, nil, nil, nil)
}

// Do sends one request. in is encoded as JSON when non-nil; out is decoded
// from a non-empty 2xx body when non-nil. Non-2xx answers come back as
// *APIError.
func (c *Client) Do(ctx context.Context, method, path string, query url.Values, in, out any) error {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	var body io.Reader
	if in != nil {
		buf, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("encode %s %s: %w", method, path, err)
		}
		body = bytes.NewReader(buf)
	}

	// path is already escaped by the caller
	u := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		u.RawQuery = query.Encode()
	}
	req, err := http.NewRequestWithContext(ctx, method, u.String(), body)
	if err != nil {
		return fmt.Errorf("build %s %s: %w", method, path, err)
	}
	for _, intercept := range c.requestChain() {
		if err := intercept(req); err != nil {
			return fmt.Errorf("request interceptor %s %s: %w", method, path, err)
		}
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		c.record(&Response{Request: req, Path: path, Elapsed: time.Since(start)}, err)
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseSize))
	r := &Response{
		Request:    req,
		Path:       path,
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       raw,
		Elapsed:    time.Since(start),
	}
	if err != nil {
		c.record(r, err)
		return fmt.Errorf("read %s %s: %w", method, path, err)
	}
	for _, intercept := range c.responseChain() {
		if err := intercept(r); err != nil {
			return err
		}
	}

	if out == nil || len(bytes.TrimSpace(r.Body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(r.Body, out); err != nil {
		return fmt.Errorf("%w: %s %s: %v", ErrDecode, method, path, err)
	}
	return nil
}

func (c *Client) requestChain() []RequestInterceptor {
	chain := make([]RequestInterceptor, 0, len(c.requestInterceptors)+1)
	chain = append(chain, c.applyHeaders)
	return append(chain, c.requestInterceptors...)
}

func (c *Client) responseChain() []ResponseInterceptor {
	chain := make([]ResponseInterceptor, 0, len(c.responseInterceptors)+2)
	chain = append(chain, c.observe)
	chain = append(chain, c.responseInterceptors...)
	return append(chain, checkStatus)
}

// observe records every answered call in metrics and the log.
func (c *Client) observe(r *Response) error {
	c.record(r, nil)
	return nil
}

// record reports one call. StatusCode is zero when the API never answered.
func (c *Client) record(r *Response, err error) {
	endpoint := endpointLabel(r.Path)
	c.metrics.ObserveAPI(r.Request.Method, endpoint, r.StatusCode, r.Elapsed)
	applog.NewStructuredLogger(c.logger).LogAPICall(r.Request.Context(), r.Request.Method, endpoint,
		r.StatusCode, r.Elapsed.Milliseconds(), err)
}

// checkStatus turns non-2xx answers into *APIError.
func checkStatus(r *Response) error {
	if r.StatusCode < 200 || r.StatusCode > 299 {
		return newAPIError(r.Request.Method, r.Path, r.StatusCode, r.Body)
	}
	return nil
}

func (c *Client) applyHeaders(req *http.Request) error {
	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	if req.Body == nil {
		req.Header.Del("Content-Type")
	}
	if token := c.AuthToken(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	return nil
}

// endpointLabel collapses ids so metric labels stay bounded.
func endpointLabel(path string) string {
	if i := strings.IndexByte(path, '?'); i >= 0 {
		path = path[:i]
	}
	parts := strings.Split(strings.Trim(path, "/"), "/")
	if len(parts) == 2 && parts[0] == "bills" {
		return "/bills/{id}"
	}
	return "/" + strings.Join(parts, "/")
}
