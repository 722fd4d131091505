package preset

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"

	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/settings"
	"github.com/matzehuels/easel/pkg/store"
)

// FileCollection keeps each preset in its own JSON file.
type FileCollection struct {
	mu      sync.RWMutex
	baseDir string
	logger  *log.Logger
}

// NewFileCollection creates a collection in baseDir; empty means DefaultDir.
func NewFileCollection(baseDir string) (*FileCollection, error) {
	if baseDir == "" {
		d, err := DefaultDir()
		if err != nil {
			return nil, err
		}
		baseDir = d
	}
	if err := os.MkdirAll(baseDir, 0o700); err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "create preset dir")
	}
	return &FileCollection{baseDir: baseDir, logger: log.Default()}, nil
}

// record is the on-disk form; settings keep their versioned encoding.
type record struct {
	ID        uuid.UUID       `json:"id"`
	Name      string          `json:"name"`
	CreatedAt time.Time       `json:"created_at"`
	Settings  json.RawMessage `json:"settings"`
}

// presetPath is case-insensitive on the name so "Portra" and "portra" are
// the same preset.
func (c *FileCollection) presetPath(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	return filepath.Join(c.baseDir, store.Hash([]byte(key))[:24]+".json")
}

func (c *FileCollection) read(path string) (settings.SharedPreset, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return settings.SharedPreset{}, err
	}
	var rec record
	if err := json.Unmarshal(data, &rec); err != nil {
		return settings.SharedPreset{}, errors.Wrap(errors.ErrCodeInvalidPreset, err, "parse %s", filepath.Base(path))
	}
	p, err := settings.Decode(rec.Settings)
	if err != nil {
		return settings.SharedPreset{}, errors.Wrap(errors.ErrCodeInvalidPreset, err, "parse %s", filepath.Base(path))
	}
	return settings.SharedPreset{ID: rec.ID, Name: rec.Name, CreatedAt: rec.CreatedAt, Settings: p}, nil
}

func (c *FileCollection) Save(ctx context.Context, sp settings.SharedPreset) (settings.SharedPreset, error) {
	sp = stamp(sp)
	if err := validate(sp); err != nil {
		return settings.SharedPreset{}, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	path := c.presetPath(sp.Name)
	if existing, err := c.read(path); err == nil {
		sp.ID = existing.ID
	}

	encoded, err := settings.Encode(sp.Settings)
	if err != nil {
		return settings.SharedPreset{}, err
	}
	data, err := json.MarshalIndent(record{ID: sp.ID, Name: sp.Name, CreatedAt: sp.CreatedAt, Settings: encoded}, "", "  ")
	if err != nil {
		return settings.SharedPreset{}, errors.Wrap(errors.ErrCodeInternal, err, "marshal preset")
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return settings.SharedPreset{}, errors.Wrap(errors.ErrCodeStorage, err, "write preset %q", sp.Name)
	}
	return sp, nil
}

func (c *FileCollection) Get(ctx context.Context, name string) (settings.SharedPreset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	sp, err := c.read(c.presetPath(name))
	if os.IsNotExist(err) {
		return settings.SharedPreset{}, notFound(name)
	}
	if err != nil {
		return settings.SharedPreset{}, err
	}
	return sp, nil
}

// List skips unreadable files with a warning rather than failing.
func (c *FileCollection) List(ctx context.Context) ([]settings.SharedPreset, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	entries, err := os.ReadDir(c.baseDir)
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeStorage, err, "read preset dir")
	}

	var out []settings.SharedPreset
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}
		sp, err := c.read(filepath.Join(c.baseDir, entry.Name()))
		if err != nil {
			c.logger.Warn("skipping unreadable preset", "file", entry.Name(), "err", err)
			continue
		}
		out = append(out, sp)
	}
	sortByName(out)
	return out, nil
}

func (c *FileCollection) Delete(ctx context.Context, name string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	err := os.Remove(c.presetPath(name))
	if os.IsNotExist(err) {
		return notFound(name)
	}
	if err != nil {
		return errors.Wrap(errors.ErrCodeStorage, err, "remove preset %q", name)
	}
	return nil
}

func (c *FileCollection) Close() error { return nil }

// Path returns the directory holding preset files.
func (c *FileCollection) Path() string { return c.baseDir }

var _ Collection = (*FileCollection)(nil)
