package tokenstore

import (
	"context"
	"sync"
)

// Keys under which session credentials are persisted.
const (
	KeyAccessToken  = "access_token"
	KeyRefreshToken = "refresh_token"
	KeyUser         = "user"
)

// CredentialKeys lists every key that belongs to a signed-in session.
// They are removed together when a session ends.
var CredentialKeys = []string{KeyAccessToken, KeyRefreshToken, KeyUser}

// Store persists session credentials as string key/value pairs.
//
// Single-key operations are atomic. SetMany and RemoveMany apply all of their
// entries in one step, so readers never observe half of a login.
// Implementations must be safe for concurrent use.
type Store interface {
	// Get returns the value stored under key. The boolean is false if the key is absent.
	Get(ctx context.Context, key string) (string, bool, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// SetMany stores all entries in one operation.
	SetMany(ctx context.Context, entries map[string]string) error

	// RemoveMany deletes the given keys. Missing keys are not an error.
	RemoveMany(ctx context.Context, keys ...string) error
}

// MemoryStore is an in-process Store. Values do not survive a restart.
type MemoryStore struct {
	mu     sync.RWMutex
	values map[string]string
}

// NewMemoryStore creates an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{values: make(map[string]string)}
}

// Get implements Store.
func (s *MemoryStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctxErr(ctx); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements Store.
func (s *MemoryStore) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany implements Store.
func (s *MemoryStore) SetMany(ctx context.Context, entries map[string]string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for k, v := range entries {
		s.values[k] = v
	}
	return nil
}

// RemoveMany implements Store.
func (s *MemoryStore) RemoveMany(ctx context.Context, keys ...string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, k := range keys {
		delete(s.values, k)
	}
	return nil
}

func ctxErr(ctx context.Context) error {
	if ctx == nil {
		return nil
	}
	return ctx.Err()
}
