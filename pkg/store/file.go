package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/matzehuels/easel/pkg/errors"
)

// FileStore keeps each key in its own JSON file.
type FileStore struct {
	mu  sync.RWMutex
	dir string
}

// NewFileStore creates a file store rooted at dir, creating it if needed.
// An empty dir means DefaultDir.
func NewFileStore(dir string) (*FileStore, error) {
	if dir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		dir = d
	}
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create state dir")
	}
	return &FileStore{dir: dir}, nil
}

// envelope wraps stored data with metadata.
type envelope struct {
	Key     string    `json:"key"`
	Data    []byte    `json:"data"`
	SavedAt time.Time `json:"saved_at"`
}

// Load reads key. A corrupt file is removed and reported as missing.
func (s *FileStore) Load(ctx context.Context, key string) ([]byte, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	path := s.path(key)
	raw, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, errors.Wrap(errors.ErrCodeStorage, err, "read %s", key)
	}

	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil || env.Key != key {
		_ = os.Remove(path)
		return nil, false, nil
	}
	return env.Data, true, nil
}

// Save writes key atomically through a temp file and rename.
func (s *FileStore) Save(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	raw, err := json.MarshalIndent(envelope{Key: key, Data: data, SavedAt: time.Now().UTC()}, "", "  ")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "marshal %s", key)
	}

	tmp, err := os.CreateTemp(s.dir, ".tmp-*")
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	defer os.Remove(tmp.Name())

	if _, err := tmp.Write(raw); err != nil {
		tmp.Close()
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	if err := tmp.Close(); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	if err := os.Rename(tmp.Name(), s.path(key)); err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "write %s", key)
	}
	return nil
}

// Delete removes key.
func (s *FileStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(key)); err != nil && !os.IsNotExist(err) {
		return errors.Wrap(errors.ErrCodeStorage, err, "remove %s", key)
	}
	return nil
}

// Close does nothing for file store.
func (s *FileStore) Close() error { return nil }

// Dir returns the directory holding the state files.
func (s *FileStore) Dir() string { return s.dir }

// Path returns the file key is stored in.
func (s *FileStore) Path(key string) string { return s.path(key) }

// path hashes key so arbitrary keys map to safe file names.
func (s *FileStore) path(key string) string {
	return filepath.Join(s.dir, fmt.Sprintf("%s.json", Hash([]byte(key))[:32]))
}

var _ Store = (*FileStore)(nil)
