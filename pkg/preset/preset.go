package preset

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/settings"
)

// Collection is a named set of presets.
type Collection interface {
	// Save stores sp under its name and returns what was stored.
	Save(ctx context.Context, sp settings.SharedPreset) (settings.SharedPreset, error)

	// Get returns the preset called name, or a NOT_FOUND error.
	Get(ctx context.Context, name string) (settings.SharedPreset, error)

	// List returns every preset sorted by name.
	List(ctx context.Context) ([]settings.SharedPreset, error)

	// Delete removes the preset called name, or returns NOT_FOUND.
	Delete(ctx context.Context, name string) error

	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendMongo = "mongo"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	Dir     string
	Mongo   MongoConfig
}

// Open creates the collection named by cfg.Backend. An empty backend means
// file.
func Open(ctx context.Context, cfg Config) (Collection, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		return NewFileCollection(cfg.Dir)
	case BackendMongo, "mongodb":
		return NewMongoCollection(ctx, cfg.Mongo)
	}
	return nil, errors.New(errors.ErrCodeInvalidConfig, "unknown preset backend %q (want %s or %s)", cfg.Backend, BackendFile, BackendMongo)
}

// DefaultDir returns ~/.config/easel/presets, honouring XDG_CONFIG_HOME.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "easel", "presets"), nil
}

func notFound(name string) error {
	return errors.New(errors.ErrCodeNotFound, "preset %q not found", name)
}

func sortByName(ps []settings.SharedPreset) {
	slices.SortFunc(ps, func(a, b settings.SharedPreset) int {
		return strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
	})
}

func validate(sp settings.SharedPreset) error {
	if err := errors.ValidatePresetName(sp.Name); err != nil {
		return err
	}
	if err := settings.Validate(sp.Settings); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidPreset, err, "preset %q", sp.Name)
	}
	return nil
}

// stamp trims the name and fills a missing ID or creation time.
func stamp(sp settings.SharedPreset) settings.SharedPreset {
	sp.Name = strings.TrimSpace(sp.Name)
	if sp.ID == uuid.Nil {
		sp.ID = uuid.New()
	}
	if sp.CreatedAt.IsZero() {
		sp.CreatedAt = time.Now().UTC().Truncate(time.Second)
	}
	return sp
}
