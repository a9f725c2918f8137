package httpclient

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/ironfitness/go-gymview/oauth2client"
)

// Logger is the logging interface used by Client.
type Logger = oauth2client.Logger

// Client is the authenticated GymView API client.
//
// Every request carries the current access token. A 401 answer hands the
// request to the Refresher, which refreshes the token once for all concurrent
// callers and replays each of them with the new token. A 401 on the replay is
// returned to the caller as a *StatusError matching ErrAuthorizationExpired.
//
// Client is safe for concurrent use.
type Client struct {
	transport Transport
	refresher *oauth2client.Refresher
	logger    Logger
}

// ClientOption configures a Client.
type ClientOption func(*Client)

// WithLogger sets a custom logger for the client.
func WithLogger(logger Logger) ClientOption {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithLoggingEnabled enables logging using the standard log package.
func WithLoggingEnabled() ClientOption {
	return func(c *Client) {
		c.logger = log.Default()
	}
}

// NewClient creates a Client. A nil refresher yields an unauthenticated client
// that never attaches a bearer token.
func NewClient(transport Transport, refresher *oauth2client.Refresher, opts ...ClientOption) *Client {
	c := &Client{
		transport: transport,
		refresher: refresher,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Refresher returns the refresher used by the client, or nil.
func (c *Client) Refresher() *oauth2client.Refresher {
	return c.refresher
}

// CallOption configures a single call.
type CallOption func(*callConfig)

type callConfig struct {
	header      http.Header
	timeout     time.Duration
	skipRefresh bool
}

// WithHeader sets a header on one call.
func WithHeader(key, value string) CallOption {
	return func(cfg *callConfig) {
		if cfg.header == nil {
			cfg.header = make(http.Header)
		}
		cfg.header.Set(key, value)
	}
}

// WithTimeout overrides the transport timeout for one call.
func WithTimeout(d time.Duration) CallOption {
	return func(cfg *callConfig) {
		cfg.timeout = d
	}
}

// WithoutRefresh returns a 401 answer to the caller without attempting a
// token refresh. Used for endpoints where 401 means bad credentials.
func WithoutRefresh() CallOption {
	return func(cfg *callConfig) {
		cfg.skipRefresh = true
	}
}

// Get sends a GET request and decodes the response into out.
func (c *Client) Get(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodGet, path, nil, out, opts...)
}

// Post sends a POST request with body encoded as JSON.
func (c *Client) Post(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodPost, path, body, out, opts...)
}

// Put sends a PUT request with body encoded as JSON.
func (c *Client) Put(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodPut, path, body, out, opts...)
}

// Patch sends a PATCH request with body encoded as JSON.
func (c *Client) Patch(ctx context.Context, path string, body, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodPatch, path, body, out, opts...)
}

// Delete sends a DELETE request.
func (c *Client) Delete(ctx context.Context, path string, out any, opts ...CallOption) error {
	return c.Do(ctx, http.MethodDelete, path, nil, out, opts...)
}

// Upload POSTs a non-JSON body, such as a multipart form with a profile photo,
// and decodes the response into out. body is read fully before the first
// attempt so the same bytes can be replayed after a token refresh.
// contentType replaces the default JSON Content-Type, including one set with
// WithHeader.
func (c *Client) Upload(ctx context.Context, path string, body io.Reader, contentType string, out any, opts ...CallOption) error {
	if contentType == "" {
		return fmt.Errorf("httpclient: upload %s: content type is required", path)
	}

	var data []byte
	if body != nil {
		var err error
		if data, err = io.ReadAll(body); err != nil {
			return fmt.Errorf("httpclient: upload %s: read body: %w", path, err)
		}
	}

	opts = append(opts, WithHeader("Content-Type", contentType))
	return c.Do(ctx, http.MethodPost, path, data, out, opts...)
}

// Do sends a request and decodes a 2xx response body into out. body may be
// nil, a []byte or json.RawMessage sent as is, or any value encoded as JSON.
// out may be nil to discard the body, or *[]byte to receive it raw.
func (c *Client) Do(ctx context.Context, method, path string, body, out any, opts ...CallOption) error {
	resp, err := c.Send(ctx, method, path, body, opts...)
	if err != nil {
		return err
	}
	return decode(method, path, resp, out)
}

// Send is like Do but returns the raw 2xx response instead of decoding it.
func (c *Client) Send(ctx context.Context, method, path string, body any, opts ...CallOption) (*Response, error) {
	if ctx == nil {
		ctx = context.Background()
	}

	var cfg callConfig
	for _, opt := range opts {
		opt(&cfg)
	}

	req, err := newRequest(method, path, body, cfg)
	if err != nil {
		return nil, err
	}

	token, err := c.accessToken(ctx)
	if err != nil {
		return nil, err
	}

	resp, err := c.send(ctx, req, token)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode == http.StatusUnauthorized && !cfg.skipRefresh && c.refresher != nil {
		c.logf("httpclient: %s %s unauthorized, waiting for token refresh", method, path)

		var replayed *Response
		err = c.refresher.Do(ctx, token, func(ctx context.Context, accessToken string) error {
			r, err := c.send(ctx, req, accessToken)
			replayed = r
			return err
		})
		if err != nil {
			return nil, err
		}
		resp = replayed
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, newStatusError(method, path, resp)
	}
	return resp, nil
}

// send issues req with token attached. req itself is never modified so it can
// be replayed.
func (c *Client) send(ctx context.Context, req *Request, token string) (*Response, error) {
	out := *req
	out.Header = req.Header.Clone()
	if token != "" {
		out.Header.Set("Authorization", "Bearer "+token)
	}
	return c.transport.Do(ctx, &out)
}

func (c *Client) accessToken(ctx context.Context) (string, error) {
	if c.refresher == nil {
		return "", nil
	}
	token, err := c.refresher.AccessToken(ctx)
	if err != nil {
		return "", fmt.Errorf("httpclient: %w", err)
	}
	return token, nil
}

func (c *Client) logf(format string, args ...any) {
	if c.logger != nil {
		c.logger.Printf(format, args...)
	}
}

func newRequest(method, path string, body any, cfg callConfig) (*Request, error) {
	req := &Request{
		Method:  method,
		Path:    path,
		Header:  make(http.Header),
		Timeout: cfg.timeout,
	}
	for k, v := range cfg.header {
		req.Header[k] = append([]string(nil), v...)
	}
	if req.Header.Get(HeaderRequestID) == "" {
		req.Header.Set(HeaderRequestID, uuid.NewString())
	}

	switch b := body.(type) {
	case nil:
	case []byte:
		req.Body = b
	case json.RawMessage:
		req.Body = b
	default:
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("httpclient: marshal request body: %w", err)
		}
		req.Body = data
	}
	return req, nil
}

func decode(method, path string, resp *Response, out any) error {
	if out == nil {
		return nil
	}
	if raw, ok := out.(*[]byte); ok {
		*raw = append((*raw)[:0], resp.Body...)
		return nil
	}
	if len(resp.Body) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return &DecodeError{Method: method, Path: path, Body: resp.Body, Err: err}
	}
	return nil
}
