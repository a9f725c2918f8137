package tokenstore

import (
	"context"
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"
	"crypto/sha256"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/crypto/hkdf"
)

const keyDerivationInfo = "gymview-token-store-v1"

// FileStore is a Store backed by a single JSON file so credentials survive
// process restarts. When an encryption secret is configured the file holds
// AES-256-GCM ciphertext framed as [nonce | ciphertext+tag].
//
// Values are cached in memory; every mutation rewrites the file atomically
// (temp file + rename) with 0600 permissions.
type FileStore struct {
	path   string
	key    []byte // nil when the file is stored in plaintext
	mu     sync.RWMutex
	values map[string]string
}

// FileOption configures a FileStore.
type FileOption func(*FileStore)

// WithEncryptionSecret enables at-rest encryption. The AES key is derived from
// secret with HKDF-SHA256, so any non-empty secret length is accepted.
func WithEncryptionSecret(secret []byte) FileOption {
	return func(s *FileStore) {
		if len(secret) == 0 {
			return
		}
		key := make([]byte, 32)
		// HKDF-SHA256 can emit up to 255*32 bytes, so a 32 byte read cannot fail.
		_, _ = io.ReadFull(hkdf.New(sha256.New, secret, nil, []byte(keyDerivationInfo)), key)
		s.key = key
	}
}

// NewFileStore opens (or lazily creates) the credential file at path and loads
// any existing values.
func NewFileStore(path string, opts ...FileOption) (*FileStore, error) {
	if path == "" {
		return nil, errors.New("tokenstore: file path is required")
	}

	s := &FileStore{
		path:   path,
		values: make(map[string]string),
	}
	for _, opt := range opts {
		opt(s)
	}

	if err := s.load(); err != nil {
		return nil, err
	}
	return s, nil
}

// Path returns the backing file path.
func (s *FileStore) Path() string {
	return s.path
}

// Get implements Store.
func (s *FileStore) Get(ctx context.Context, key string) (string, bool, error) {
	if err := ctxErr(ctx); err != nil {
		return "", false, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.values[key]
	return v, ok, nil
}

// Set implements Store.
func (s *FileStore) Set(ctx context.Context, key, value string) error {
	return s.SetMany(ctx, map[string]string{key: value})
}

// SetMany implements Store.
func (s *FileStore) SetMany(ctx context.Context, entries map[string]string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot()
	for k, v := range entries {
		next[k] = v
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// RemoveMany implements Store.
func (s *FileStore) RemoveMany(ctx context.Context, keys ...string) error {
	if err := ctxErr(ctx); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	next := s.snapshot()
	for _, k := range keys {
		delete(next, k)
	}
	if err := s.persist(next); err != nil {
		return err
	}
	s.values = next
	return nil
}

// snapshot copies the current values. Callers must hold s.mu.
func (s *FileStore) snapshot() map[string]string {
	out := make(map[string]string, len(s.values))
	for k, v := range s.values {
		out[k] = v
	}
	return out
}

func (s *FileStore) load() error {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("tokenstore: read %s: %w", s.path, err)
	}
	if len(data) == 0 {
		return nil
	}

	if s.key != nil {
		data, err = decrypt(s.key, data)
		if err != nil {
			return fmt.Errorf("tokenstore: decrypt %s: %w", s.path, err)
		}
	}

	if err := json.Unmarshal(data, &s.values); err != nil {
		return fmt.Errorf("tokenstore: parse %s: %w", s.path, err)
	}
	if s.values == nil {
		s.values = make(map[string]string)
	}
	return nil
}

func (s *FileStore) persist(values map[string]string) error {
	data, err := json.Marshal(values)
	if err != nil {
		return fmt.Errorf("tokenstore: encode: %w", err)
	}
	if s.key != nil {
		data, err = encrypt(s.key, data)
		if err != nil {
			return fmt.Errorf("tokenstore: encrypt: %w", err)
		}
	}

	dir := filepath.Dir(s.path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("tokenstore: create dir: %w", err)
	}

	tmp, err := os.CreateTemp(dir, filepath.Base(s.path)+".*.tmp")
	if err != nil {
		return fmt.Errorf("tokenstore: create temp file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName) // no-op after a successful rename

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenstore: write temp file: %w", err)
	}
	if err := tmp.Chmod(0o600); err != nil {
		tmp.Close()
		return fmt.Errorf("tokenstore: chmod temp file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("tokenstore: close temp file: %w", err)
	}
	if err := os.Rename(tmpName, s.path); err != nil {
		return fmt.Errorf("tokenstore: replace %s: %w", s.path, err)
	}
	return nil
}

// encrypt performs AES-256-GCM encryption. Output format: [nonce | ciphertext+tag].
func encrypt(key, plaintext []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonce := make([]byte, gcm.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return nil, err
	}
	return gcm.Seal(nonce, nonce, plaintext, nil), nil
}

// decrypt reverses encrypt.
func decrypt(key, data []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	nonceSize := gcm.NonceSize()
	if len(data) < nonceSize {
		return nil, errors.New("ciphertext too short")
	}
	nonce, ciphertext := data[:nonceSize], data[nonceSize:]
	return gcm.Open(nil, nonce, ciphertext, nil)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
