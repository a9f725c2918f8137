package oauth2client

import (
	"context"
	"errors"
	"fmt"
	"log"
	"sync"
	"time"

	"github.com/ironfitness/go-gymview/tokenstore"
)

const (
	// DefaultMaxPending caps how many requests may wait on one refresh.
	DefaultMaxPending = 256

	// DefaultRefreshTimeout bounds a single call to the RefreshEndpoint.
	DefaultRefreshTimeout = 30 * time.Second
)

// Logger is an interface for optional logging in Refresher.
// Implementations can log token refresh events if desired.
type Logger interface {
	Printf(format string, args ...any)
}

// RefreshState is the state of the refresh coordinator.
type RefreshState int

const (
	// StateIdle means no refresh is in flight.
	StateIdle RefreshState = iota
	// StateRefreshing means a refresh call is in flight or its waiters are being replayed.
	StateRefreshing
)

func (s RefreshState) String() string {
	switch s {
	case StateIdle:
		return "idle"
	case StateRefreshing:
		return "refreshing"
	default:
		return fmt.Sprintf("RefreshState(%d)", int(s))
	}
}

// ReplayFunc re-issues a request that was rejected as unauthorized, using the
// given access token. It runs at most once per pending request.
type ReplayFunc func(ctx context.Context, accessToken string) error

// pendingRequest is a rejected request waiting for the outcome of a refresh.
type pendingRequest struct {
	ctx    context.Context
	replay ReplayFunc
	done   chan error // buffered, receives exactly one value
}

// Refresher coordinates access token refreshes for every client sharing a
// token store.
//
// When a request is rejected as unauthorized the caller hands it to Do. The
// first such request moves the Refresher from StateIdle to StateRefreshing and
// starts one refresh call; requests rejected while the refresh is in flight are
// queued behind it instead of starting their own. Once the refresh resolves,
// queued requests are replayed once each with the new token, started in the
// order they were queued and running concurrently, or all of them fail with
// ErrRefreshFailed.
//
// Refresher is safe for concurrent use.
type Refresher struct {
	store    tokenstore.Store
	endpoint RefreshEndpoint

	mu    sync.Mutex
	state RefreshState
	queue []*pendingRequest
	fresh string // token of a successful refresh while its waiters replay

	maxPending     int
	refreshTimeout time.Duration
	logger         Logger     // optional logger
	onExpired      func(error) // optional session-expired hook
}

// Option is a functional option for configuring Refresher.
type Option func(*Refresher)

// WithLogger sets a custom logger for token refresh events.
// If not set, no logging will occur.
func WithLogger(logger Logger) Option {
	return func(r *Refresher) {
		r.logger = logger
	}
}

// WithLoggingEnabled enables logging using the default Go log package.
// This is a convenience option that sets the logger to log.Default().
func WithLoggingEnabled() Option {
	return func(r *Refresher) {
		r.logger = log.Default()
	}
}

// WithMaxPending caps the number of requests that may wait on a single refresh.
// Values below 1 keep the default.
func WithMaxPending(n int) Option {
	return func(r *Refresher) {
		if n > 0 {
			r.maxPending = n
		}
	}
}

// WithRefreshTimeout bounds each refresh call. Zero disables the bound.
func WithRefreshTimeout(d time.Duration) Option {
	return func(r *Refresher) {
		r.refreshTimeout = d
	}
}

// WithSessionExpiredHandler registers fn to be called after a failed refresh
// has cleared the stored credentials. Applications use it to force sign-in.
// fn runs on the refresh goroutine and must not block for long.
func WithSessionExpiredHandler(fn func(error)) Option {
	return func(r *Refresher) {
		r.onExpired = fn
	}
}

// NewRefresher creates a Refresher that reads and writes credentials in store
// and exchanges refresh tokens through endpoint.
func NewRefresher(store tokenstore.Store, endpoint RefreshEndpoint, opts ...Option) *Refresher {
	r := &Refresher{
		store:          store,
		endpoint:       endpoint,
		maxPending:     DefaultMaxPending,
		refreshTimeout: DefaultRefreshTimeout,
	}

	for _, opt := range opts {
		opt(r)
	}

	return r
}

// State reports the current refresh state.
func (r *Refresher) State() RefreshState {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.state
}

// Pending reports how many requests are waiting on the current refresh.
func (r *Refresher) Pending() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.queue)
}

// AccessToken returns the stored access token, or "" when none is stored.
func (r *Refresher) AccessToken(ctx context.Context) (string, error) {
	if r.store == nil {
		return "", errors.New("oauth2client: token store is nil")
	}
	token, ok, err := r.store.Get(ctx, tokenstore.KeyAccessToken)
	if err != nil {
		return "", fmt.Errorf("oauth2client: read access token: %w", err)
	}
	if !ok {
		return "", nil
	}
	return token, nil
}

// Do recovers a request that was rejected as unauthorized.
//
// staleToken is the access token the rejected request carried ("" if none).
// If the store already holds a different token, a refresh has completed since
// the request was sent and replay runs immediately with the stored token.
// Otherwise the request waits for the single in-flight refresh (starting one
// if needed) and is replayed with its result.
//
// Do returns the error from replay, an error wrapping ErrRefreshFailed, or
// ctx.Err() if ctx ends while the request is still queued. Do never replays a
// request more than once; callers must not call Do again for the same logical
// request.
func (r *Refresher) Do(ctx context.Context, staleToken string, replay ReplayFunc) error {
	if ctx == nil {
		ctx = context.Background()
	}
	if replay == nil {
		return errors.New("oauth2client: replay func is nil")
	}
	if r.store == nil || r.endpoint == nil {
		return fmt.Errorf("%w: refresher is not configured", ErrAuthorizationExpired)
	}

	p := &pendingRequest{ctx: ctx, replay: replay, done: make(chan error, 1)}

	r.mu.Lock()
	switch r.state {
	case StateIdle:
		// Double-check: another request may have refreshed since this one was sent.
		current, err := r.AccessToken(ctx)
		if err != nil {
			r.mu.Unlock()
			return err
		}
		if current != "" && current != staleToken {
			r.mu.Unlock()
			return replay(ctx, current)
		}

		// A missing refresh token fails inside refresh, so the session is
		// cleared and the expired hook runs like any other failed refresh.
		r.state = StateRefreshing
		r.queue = append(r.queue, p)
		r.mu.Unlock()

		// Keep the refresh independent from the originator's cancellation while preserving values.
		go r.refresh(context.WithoutCancel(ctx))

	default:
		// The refresh already succeeded and its waiters are being replayed.
		if fresh := r.fresh; fresh != "" {
			r.mu.Unlock()
			return replay(ctx, fresh)
		}
		if len(r.queue) >= r.maxPending {
			r.mu.Unlock()
			return ErrQueueFull
		}
		r.queue = append(r.queue, p)
		r.mu.Unlock()
	}

	select {
	case err := <-p.done:
		return err
	case <-ctx.Done():
		if r.remove(p) {
			return ctx.Err()
		}
		// Already dequeued for replay; its replay observes the same ctx.
		return <-p.done
	}
}

// remove drops p from the queue and reports whether it was still queued.
func (r *Refresher) remove(p *pendingRequest) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	for i, q := range r.queue {
		if q == p {
			r.queue = append(r.queue[:i], r.queue[i+1:]...)
			return true
		}
	}
	return false
}

// refresh runs on its own goroutine for every Idle -> Refreshing transition.
func (r *Refresher) refresh(ctx context.Context) {
	r.logf("oauth2client: access token rejected, refreshing")

	accessToken, err := r.fetch(ctx)
	if err != nil {
		r.fail(ctx, err)
		return
	}

	r.logf("oauth2client: access token refreshed, replaying queued requests")
	r.drain(accessToken)
}

// fetch exchanges the stored refresh token for a new access token and persists it.
func (r *Refresher) fetch(ctx context.Context) (string, error) {
	if r.refreshTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.refreshTimeout)
		defer cancel()
	}

	refreshToken, ok, err := r.store.Get(ctx, tokenstore.KeyRefreshToken)
	if err != nil {
		return "", fmt.Errorf("read refresh token: %w", err)
	}
	if !ok || refreshToken == "" {
		return "", ErrNoRefreshToken
	}

	token, err := r.endpoint.Refresh(ctx, refreshToken)
	if err != nil {
		return "", err
	}
	if token == nil || token.AccessToken == "" {
		return "", errors.New("refresh response has no access token")
	}

	entries := map[string]string{tokenstore.KeyAccessToken: token.AccessToken}
	// Servers that rotate refresh tokens return a new one; otherwise keep the old one.
	if token.RefreshToken != "" && token.RefreshToken != refreshToken {
		entries[tokenstore.KeyRefreshToken] = token.RefreshToken
	}
	if err := r.store.SetMany(ctx, entries); err != nil {
		return "", fmt.Errorf("persist access token: %w", err)
	}

	return token.AccessToken, nil
}

// drain hands the new token to every queued request. Replays start in FIFO
// order, each on its own goroutine, so a slow replay never delays the ones
// behind it. The state returns to StateIdle once all of them have finished.
func (r *Refresher) drain(accessToken string) {
	r.mu.Lock()
	batch := r.queue
	r.queue = nil
	r.fresh = accessToken
	r.mu.Unlock()

	var wg sync.WaitGroup
	for _, p := range batch {
		started := make(chan struct{})
		wg.Add(1)
		go func(p *pendingRequest) {
			defer wg.Done()
			close(started)
			if err := p.ctx.Err(); err != nil {
				p.done <- err
				return
			}
			p.done <- p.replay(p.ctx, accessToken)
		}(p)
		<-started
	}
	wg.Wait()

	r.mu.Lock()
	r.state = StateIdle
	r.fresh = ""
	r.mu.Unlock()
}

// fail clears the credentials and rejects every queued request.
func (r *Refresher) fail(ctx context.Context, cause error) {
	err := fmt.Errorf("%w: %w", ErrRefreshFailed, cause)
	r.logf("oauth2client: %v", err)

	if rmErr := r.store.RemoveMany(ctx, tokenstore.CredentialKeys...); rmErr != nil {
		r.logf("oauth2client: failed to clear credentials: %v", rmErr)
	}

	r.mu.Lock()
	pending := r.queue
	r.queue = nil
	r.state = StateIdle
	r.mu.Unlock()

	if r.onExpired != nil {
		r.onExpired(err)
	}

	for _, p := range pending {
		p.done <- err
	}
}

func (r *Refresher) logf(format string, args ...any) {
	// Log only if logger is configured
	if r.logger != nil {
		r.logger.Printf(format, args...)
	}
}
