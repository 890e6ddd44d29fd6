// Package store is the process-local persistent state layer. State lives as
// JSON text under named keys, one users table, one session record, and one
// history list per user. Writes replace the whole value; concurrent writers
// race and the last writer wins.
package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// KV is the minimal key-value surface the repositories are built on.
type KV interface {
	// Get returns the stored bytes and whether the key exists.
	Get(key string) ([]byte, bool, error)
	// Put replaces the value under key.
	Put(key string, value []byte) error
	// Delete removes the key. Deleting a missing key is not an error.
	Delete(key string) error
}

// FileKV persists each key as a JSON file under a directory. This is the
// production store, the Go counterpart of a per-profile browser store.
type FileKV struct {
	dir string
}

// NewFileKV creates the backing directory if needed.
func NewFileKV(dir string) (*FileKV, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("store.NewFileKV: %w", err)
	}
	return &FileKV{dir: dir}, nil
}

func (s *FileKV) path(key string) string {
	return filepath.Join(s.dir, key+".json")
}

// Get implements KV.
func (s *FileKV) Get(key string) ([]byte, bool, error) {
	b, err := os.ReadFile(s.path(key))
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("store.Get %q: %w", key, err)
	}
	return b, true, nil
}

// Put implements KV.
func (s *FileKV) Put(key string, value []byte) error {
	if err := os.WriteFile(s.path(key), value, 0o644); err != nil {
		return fmt.Errorf("store.Put %q: %w", key, err)
	}
	return nil
}

// Delete implements KV.
func (s *FileKV) Delete(key string) error {
	err := os.Remove(s.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("store.Delete %q: %w", key, err)
	}
	return nil
}

// MemKV is an in-memory KV for tests. Safe for concurrent use; values are
// copied on the way in and out.
type MemKV struct {
	mu   sync.RWMutex
	data map[string][]byte
}

// NewMemKV creates an empty in-memory store.
func NewMemKV() *MemKV {
	return &MemKV{data: make(map[string][]byte)}
}

// Get implements KV.
func (s *MemKV) Get(key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	v, ok := s.data[key]
	if !ok {
		return nil, false, nil
	}
	out := make([]byte, len(v))
	copy(out, v)
	return out, true, nil
}

// Put implements KV.
func (s *MemKV) Put(key string, value []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	v := make([]byte, len(value))
	copy(v, value)
	s.data[key] = v
	return nil
}

// Delete implements KV.
func (s *MemKV) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.data, key)
	return nil
}

var (
	_ KV = (*FileKV)(nil)
	_ KV = (*MemKV)(nil)
)
