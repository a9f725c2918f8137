package oauth2client

import "errors"

var (
	// ErrRefreshFailed is returned to every request that was waiting on a
	// refresh that did not produce a new access token. Stored credentials have
	// been cleared by the time a caller observes it; the session must be
	// re-established by signing in again.
	ErrRefreshFailed = errors.New("oauth2client: token refresh failed")

	// ErrAuthorizationExpired reports a request that was rejected as
	// unauthorized and can no longer be retried.
	ErrAuthorizationExpired = errors.New("oauth2client: authorization expired")

	// ErrNoRefreshToken is the refresh failure cause when no refresh token is stored.
	ErrNoRefreshToken = errors.New("oauth2client: no refresh token available")

	// ErrQueueFull is returned when too many requests are already waiting on a refresh.
	ErrQueueFull = errors.New("oauth2client: too many requests waiting for token refresh")
)
