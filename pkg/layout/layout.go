// Package layout persists per-view column layouts in a small key-value file.
package layout

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/ritzau/finance-assistant/pkg/logging"
)

// ErrInvalidKey is returned for a blank layout key
var ErrInvalidKey = errors.New("layout key is required")

// Config is the column layout of a view
type Config struct {
	ColumnVisibility map[string]bool `json:"columnVisibility"`
	Version          int             `json:"version"`
}

// Store reads and writes layouts by key. Get returns nil for unknown keys.
type Store interface {
	Get(key string) (*Config, error)
	Put(key string, cfg Config) error
}

// FileStore keeps every layout in one JSON document
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a layout store backed by path
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Path returns the backing file
func (s *FileStore) Path() string {
	return s.path
}

// Get returns the layout stored under key
func (s *FileStore) Get(key string) (*Config, error) {
	if err := validKey(key); err != nil {
		return nil, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return nil, err
	}

	cfg, ok := all[key]
	if !ok {
		return nil, nil
	}
	return &cfg, nil
}

// Put stores the layout under key
func (s *FileStore) Put(key string, cfg Config) error {
	if err := validKey(key); err != nil {
		return err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	all, err := s.load()
	if err != nil {
		return err
	}
	all[key] = cfg

	data, err := json.MarshalIndent(all, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode layouts: %w", err)
	}

	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("failed to create state directory: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("failed to write layouts: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("failed to replace layouts: %w", err)
	}
	return nil
}

// load reads the whole document. A missing or corrupt file reads as empty.
func (s *FileStore) load() (map[string]Config, error) {
	all := make(map[string]Config)

	data, err := os.ReadFile(s.path)
	if errors.Is(err, os.ErrNotExist) {
		return all, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read layouts: %w", err)
	}

	if err := json.Unmarshal(data, &all); err != nil {
		logging.Warn("ignoring corrupt layout file", "path", s.path, "error", err)
		return make(map[string]Config), nil
	}
	return all, nil
}

func validKey(key string) error {
	if strings.TrimSpace(key) == "" {
		return ErrInvalidKey
	}
	return nil
}
