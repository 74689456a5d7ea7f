// Package kv provides the small string key/value stores used to persist client
// state between runs, the terminal equivalent of a browser's localStorage.
package kv

import (
	"errors"
	"fmt"
	"path/filepath"
)

// Sentinel errors
var (
	// ErrUnknownBackend is returned by Open for an unsupported backend name.
	ErrUnknownBackend = errors.New("unknown state backend")

	// ErrEmptyKey is returned when a write uses an empty key.
	ErrEmptyKey = errors.New("empty key")
)

// Backend names accepted by Open.
const (
	BackendFile   = "file"
	BackendSQLite = "sqlite"
	BackendMemory = "memory"
)

// Store is a synchronous, write-through string key/value store.
//
// SetMany must apply all values or none of them, so callers can persist
// related keys together.
type Store interface {
	Get(key string) (value string, ok bool, err error)
	SetMany(values map[string]string) error
	Delete(keys ...string) error
	Close() error
}

// Set stores a single key.
func Set(s Store, key, value string) error {
	return s.SetMany(map[string]string{key: value})
}

// Open returns the store for backend rooted at dir.
func Open(backend, dir string) (Store, error) {
	switch backend {
	case BackendFile, "":
		return NewFileStore(dir)
	case BackendSQLite:
		if dir == "" {
			d, err := defaultDir()
			if err != nil {
				return nil, err
			}
			dir = d
		}
		return NewSQLiteStore(filepath.Join(dir, "state.db"))
	case BackendMemory:
		return NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}

func validateKeys(values map[string]string) error {
	for k := range values {
		if k == "" {
			return ErrEmptyKey
		}
	}
	return nil
}
