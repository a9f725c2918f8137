package httpclient

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"strings"

	"github.com/ironfitness/go-gymview/oauth2client"
)

// Errors shared with oauth2client so callers only need this package.
var (
	ErrAuthorizationExpired = oauth2client.ErrAuthorizationExpired
	ErrRefreshFailed        = oauth2client.ErrRefreshFailed
	ErrQueueFull            = oauth2client.ErrQueueFull
)

// TransportError reports a request that produced no HTTP response
// (connection failure, timeout, cancellation).
type TransportError struct {
	Method string
	Path   string
	Err    error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("httpclient: %s %s: %v", e.Method, e.Path, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// Timeout reports whether the request failed because a deadline expired.
func (e *TransportError) Timeout() bool {
	if errors.Is(e.Err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(e.Err, &netErr) && netErr.Timeout()
}

// StatusError is returned for responses outside the 2xx range.
//
// A 401 StatusError matches ErrAuthorizationExpired with errors.Is: it is only
// returned once the refresh path has been exhausted or was disabled for the call.
type StatusError struct {
	Method     string
	Path       string
	StatusCode int
	Message    string
	Body       []byte
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("httpclient: %s %s: HTTP %d: %s", e.Method, e.Path, e.StatusCode, e.Message)
}

// Is makes a 401 StatusError match ErrAuthorizationExpired.
func (e *StatusError) Is(target error) bool {
	return target == ErrAuthorizationExpired && e.StatusCode == http.StatusUnauthorized
}

// DecodeError reports a response body that does not match the expected shape.
type DecodeError struct {
	Method string
	Path   string
	Body   []byte
	Err    error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("httpclient: %s %s: decode response: %v", e.Method, e.Path, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// newStatusError builds a StatusError, taking the message from a JSON
// "message" or "error" field when the body has one.
func newStatusError(method, path string, resp *Response) *StatusError {
	e := &StatusError{
		Method:     method,
		Path:       path,
		StatusCode: resp.StatusCode,
		Body:       resp.Body,
	}

	var body struct {
		Message string `json:"message"`
		Error   string `json:"error"`
	}
	if err := json.Unmarshal(resp.Body, &body); err == nil && (body.Message != "" || body.Error != "") {
		e.Message = body.Message
		if e.Message == "" {
			e.Message = body.Error
		}
	} else if text := strings.TrimSpace(string(resp.Body)); text != "" && len(text) <= 200 && !strings.HasPrefix(text, "{") {
		e.Message = text
	} else {
		e.Message = http.StatusText(resp.StatusCode)
	}
	return e
}
