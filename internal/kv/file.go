package kv

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog/log"
)

const stateFileName = "session.json"

// document is the on-disk layout of a FileStore.
type document struct {
	Version int               `json:"version"`
	Values  map[string]string `json:"values"`
}

// FileStore keeps all keys in a single JSON document on the local filesystem.
type FileStore struct {
	mu      sync.Mutex
	baseDir string
}

// NewFileStore creates a file backed store.
// If baseDir is empty, uses ~/.admetrics/
func NewFileStore(baseDir string) (*FileStore, error) {
	if baseDir == "" {
		d, err := defaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = d
	}

	// Create directory with 0700 permissions
	if err := os.MkdirAll(baseDir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create state directory: %w", err)
	}

	store := &FileStore{baseDir: baseDir}

	if err := store.ensureDocument(); err != nil {
		return nil, err
	}

	log.Debug().Str("baseDir", baseDir).Msg("file state store initialized")

	return store, nil
}

// Path returns the location of the state document.
func (s *FileStore) Path() string {
	return filepath.Join(s.baseDir, stateFileName)
}

// Get returns the value stored under key.
func (s *FileStore) Get(key string) (string, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return "", false, err
	}

	v, ok := doc.Values[key]
	return v, ok, nil
}

// SetMany writes all values in one atomic document replacement.
func (s *FileStore) SetMany(values map[string]string) error {
	if err := validateKeys(values); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	for k, v := range values {
		doc.Values[k] = v
	}

	return s.save(doc)
}

// Delete removes keys. Missing keys are ignored.
func (s *FileStore) Delete(keys ...string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	doc, err := s.load()
	if err != nil {
		return err
	}

	for _, k := range keys {
		delete(doc.Values, k)
	}

	return s.save(doc)
}

// Close is a no-op for the file store.
func (s *FileStore) Close() error { return nil }

// ensureDocument creates an empty document if it doesn't exist.
func (s *FileStore) ensureDocument() error {
	if _, err := os.Stat(s.Path()); err == nil {
		return nil
	}

	return s.save(&document{
		Version: 1,
		Values:  make(map[string]string),
	})
}

func (s *FileStore) load() (*document, error) {
	data, err := os.ReadFile(s.Path())
	if err != nil {
		if os.IsNotExist(err) {
			return &document{Version: 1, Values: make(map[string]string)}, nil
		}
		return nil, fmt.Errorf("failed to read state: %w", err)
	}

	var doc document
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("failed to parse state: %w", err)
	}

	if doc.Values == nil {
		doc.Values = make(map[string]string)
	}

	return &doc, nil
}

// save writes the document atomically.
func (s *FileStore) save(doc *document) error {
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal state: %w", err)
	}

	tempPath := s.Path() + ".tmp"

	if err := os.WriteFile(tempPath, data, 0600); err != nil {
		return fmt.Errorf("failed to write state: %w", err)
	}

	if err := os.Rename(tempPath, s.Path()); err != nil {
		os.Remove(tempPath)
		return fmt.Errorf("failed to save state: %w", err)
	}

	return nil
}

func defaultDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}
	return filepath.Join(home, ".admetrics"), nil
}
