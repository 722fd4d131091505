package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// StateKey is the key the calculator state is saved under.
const StateKey = "state"

// Store persists opaque payloads by key.
type Store interface {
	// Load returns the payload for key. A missing key is (nil, false, nil).
	Load(ctx context.Context, key string) ([]byte, bool, error)

	// Save replaces the payload for key.
	Save(ctx context.Context, key string, data []byte) error

	// Delete removes key. Deleting a missing key is not an error.
	Delete(ctx context.Context, key string) error

	// Close releases any connections.
	Close() error
}

// Backend names accepted by Open.
const (
	BackendFile  = "file"
	BackendRedis = "redis"
	BackendNone  = "none"
)

// Config selects and configures a backend.
type Config struct {
	Backend string
	Dir     string
	Redis   RedisConfig
}

// Open creates the backend named by cfg.Backend. An empty backend means file.
func Open(ctx context.Context, cfg Config) (Store, error) {
	switch strings.ToLower(cfg.Backend) {
	case "", BackendFile:
		return NewFileStore(cfg.Dir)
	case BackendRedis:
		return NewRedisStore(ctx, cfg.Redis)
	case BackendNone, "null":
		return NewNullStore(), nil
	}
	return nil, fmt.Errorf("unknown storage backend %q (want %s, %s or %s)", cfg.Backend, BackendFile, BackendRedis, BackendNone)
}

// DefaultDir returns ~/.config/easel/state, honouring XDG_CONFIG_HOME.
func DefaultDir() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "easel", "state"), nil
}
