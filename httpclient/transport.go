package httpclient

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	retry "github.com/appleboy/go-httpretry"
)

const (
	// DefaultTimeout is the request timeout used when none is configured.
	DefaultTimeout = 10 * time.Second

	// DefaultMaxRetries and DefaultRetryDelay are the retry budget applied by
	// WithRetry callers that take the backend's recommended settings.
	DefaultMaxRetries = 3
	DefaultRetryDelay = time.Second

	// HeaderRequestID carries the id of a logical request; replays keep it.
	HeaderRequestID = "X-Request-ID"
)

// Request is an outbound API request. Path is relative to the transport's base URL.
type Request struct {
	Method string
	Path   string
	Header http.Header
	Body   []byte

	// Timeout overrides the transport's default timeout when positive. It
	// bounds the whole call, retries and their delays included.
	Timeout time.Duration
}

// Response is a fully read API response.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Transport issues API requests. Implementations must not modify req and
// must return a *TransportError (or another error) only when no response was received.
type Transport interface {
	Do(ctx context.Context, req *Request) (*Response, error)
}

// TransportFunc adapts a function to Transport.
type TransportFunc func(ctx context.Context, req *Request) (*Response, error)

// Do calls f.
func (f TransportFunc) Do(ctx context.Context, req *Request) (*Response, error) {
	return f(ctx, req)
}

// HTTPTransport is the Transport used against the GymView backend. It joins
// paths to a base URL, applies default JSON headers and a timeout, and can
// retry network failures and 5xx responses below the authentication layer.
type HTTPTransport struct {
	baseURL string
	client  *http.Client
	retry   *retry.Client
	headers http.Header
	timeout time.Duration

	maxRetries int
	retryDelay time.Duration
}

// TransportOption configures an HTTPTransport.
type TransportOption func(*HTTPTransport)

// WithDefaultHeader adds a header sent with every request.
func WithDefaultHeader(key, value string) TransportOption {
	return func(t *HTTPTransport) {
		t.headers.Set(key, value)
	}
}

// WithDefaultTimeout sets the timeout applied to requests without their own.
// One deadline covers every retry attempt of a call. Zero disables the timeout.
func WithDefaultTimeout(d time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		t.timeout = d
	}
}

// WithRetry enables retries for network errors and retryable statuses.
// maxRetries <= 0 disables retries (the default).
func WithRetry(maxRetries int, delay time.Duration) TransportOption {
	return func(t *HTTPTransport) {
		t.maxRetries = maxRetries
		t.retryDelay = delay
	}
}

// NewHTTPTransport creates a transport for baseURL (e.g. "http://localhost:8080/api").
// If client is nil a client with default settings is used.
func NewHTTPTransport(baseURL string, client *http.Client, opts ...TransportOption) (*HTTPTransport, error) {
	if err := validateBaseURL(baseURL); err != nil {
		return nil, fmt.Errorf("httpclient: invalid base URL: %w", err)
	}
	if client == nil {
		client = &http.Client{}
	}

	t := &HTTPTransport{
		baseURL: strings.TrimRight(baseURL, "/"),
		client:  client,
		headers: http.Header{
			"Content-Type": []string{"application/json"},
			"Accept":       []string{"application/json"},
		},
		timeout: DefaultTimeout,
	}

	for _, opt := range opts {
		opt(t)
	}

	if t.maxRetries > 0 {
		rc, err := retry.NewBackgroundClient(
			retry.WithHTTPClient(client),
			retry.WithMaxRetries(t.maxRetries),
			retry.WithInitialRetryDelay(t.retryDelay),
		)
		if err != nil {
			return nil, fmt.Errorf("httpclient: create retry client: %w", err)
		}
		t.retry = rc
	}

	return t, nil
}

// BaseURL returns the base URL requests are resolved against.
func (t *HTTPTransport) BaseURL() string {
	return t.baseURL
}

// Do implements Transport.
func (t *HTTPTransport) Do(ctx context.Context, req *Request) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	timeout := t.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}

	var body io.Reader
	if len(req.Body) > 0 {
		body = bytes.NewReader(req.Body)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, t.baseURL+req.Path, body)
	if err != nil {
		return nil, fmt.Errorf("httpclient: build request: %w", err)
	}
	for k, v := range t.headers {
		httpReq.Header[k] = append([]string(nil), v...)
	}
	for k, v := range req.Header {
		httpReq.Header[k] = append([]string(nil), v...)
	}

	var resp *http.Response
	if t.retry != nil {
		resp, err = t.retry.DoWithContext(ctx, httpReq)
	} else {
		resp, err = t.client.Do(httpReq)
	}
	if err != nil {
		return nil, &TransportError{Method: req.Method, Path: req.Path, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Method: req.Method, Path: req.Path, Err: fmt.Errorf("read response: %w", err)}
	}

	return &Response{
		StatusCode: resp.StatusCode,
		Header:     resp.Header,
		Body:       data,
	}, nil
}

// validateBaseURL checks that rawURL is an absolute http(s) URL with a host.
func validateBaseURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("base URL cannot be empty")
	}

	u, err := url.Parse(rawURL)
	if err != nil {
		return fmt.Errorf("invalid URL format: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("URL scheme must be http or https, got: %s", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("URL must include a host")
	}
	return nil
}
