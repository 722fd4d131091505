// Package config loads easel's settings file and environment overrides.
//
// The file is TOML, read from $XDG_CONFIG_HOME/easel/config.toml unless a
// path is given. Environment variables (EASEL_*) override the file; a .env
// file in the working directory is loaded into the environment by the CLI
// before Load runs.
package config

import (
	"bytes"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/matzehuels/easel/pkg/calculator"
	"github.com/matzehuels/easel/pkg/errors"
	"github.com/matzehuels/easel/pkg/geometry"
	"github.com/matzehuels/easel/pkg/paper"
	"github.com/matzehuels/easel/pkg/preset"
	"github.com/matzehuels/easel/pkg/settings"
	"github.com/matzehuels/easel/pkg/store"
)

type Config struct {
	Solver   geometry.Options `toml:"solver"`
	Defaults DefaultsConfig   `toml:"defaults"`
	Storage  StorageConfig    `toml:"storage"`
	Presets  PresetsConfig    `toml:"presets"`
	Server   ServerConfig     `toml:"server"`

	// Extra table entries, appended to the built-in tables.
	Papers []paper.PaperSize   `toml:"papers"`
	Ratios []paper.AspectRatio `toml:"ratios"`
	Easels []paper.Easel       `toml:"easels"`
}

type DefaultsConfig struct {
	PaperSize   string  `toml:"paper_size"`
	AspectRatio string  `toml:"aspect_ratio"`
	MinBorder   float64 `toml:"min_border"`
	Landscape   bool    `toml:"landscape"`
}

type StorageConfig struct {
	Backend       string        `toml:"backend"` // file, redis or none
	Dir           string        `toml:"dir"`
	RedisAddr     string        `toml:"redis_addr"`
	RedisPassword string        `toml:"redis_password"`
	RedisDB       int           `toml:"redis_db"`
	RedisTTL      time.Duration `toml:"redis_ttl"`
	Debounce      time.Duration `toml:"debounce"`
}

type PresetsConfig struct {
	Backend         string `toml:"backend"` // file or mongo
	Dir             string `toml:"dir"`
	MongoURI        string `toml:"mongo_uri"`
	MongoDatabase   string `toml:"mongo_database"`
	MongoCollection string `toml:"mongo_collection"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Solver: geometry.DefaultOptions(),
		Defaults: DefaultsConfig{
			PaperSize:   paper.DefaultPaperValue,
			AspectRatio: paper.DefaultRatioValue,
			MinBorder:   0.5,
		},
		Storage: StorageConfig{
			Backend:   store.BackendFile,
			RedisAddr: "localhost:6379",
			Debounce:  settings.DefaultDelay,
		},
		Presets: PresetsConfig{
			Backend:         preset.BackendFile,
			MongoURI:        preset.DefaultMongoURI,
			MongoDatabase:   preset.DefaultMongoDatabase,
			MongoCollection: preset.DefaultMongoCollection,
		},
		Server: ServerConfig{Addr: ":8080"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/easel/config.toml.
func DefaultPath() (string, error) {
	base := os.Getenv("XDG_CONFIG_HOME")
	if base == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("get home dir: %w", err)
		}
		base = filepath.Join(home, ".config")
	}
	return filepath.Join(base, "easel", "config.toml"), nil
}

// Load reads the config file at path and applies environment overrides.
// With an empty path the default location is used and a missing file is
// not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	explicit := path != ""
	if !explicit {
		p, err := DefaultPath()
		if err != nil {
			return cfg, err
		}
		path = p
	}

	if _, err := os.Stat(path); err == nil {
		md, err := toml.DecodeFile(path, &cfg)
		if err != nil {
			return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse %s", path)
		}
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return cfg, errors.New(errors.ErrCodeInvalidConfig, "%s: unknown keys %s", path, strings.Join(keys, ", "))
		}
	} else if explicit || !os.IsNotExist(err) {
		return cfg, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}

	if err := cfg.applyEnv(); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

// applyEnv overrides file values from EASEL_* variables.
func (c *Config) applyEnv() error {
	envString("EASEL_STORE", &c.Storage.Backend)
	envString("EASEL_STATE_DIR", &c.Storage.Dir)
	envString("EASEL_REDIS_ADDR", &c.Storage.RedisAddr)
	envString("EASEL_REDIS_PASSWORD", &c.Storage.RedisPassword)
	envString("EASEL_PRESETS", &c.Presets.Backend)
	envString("EASEL_PRESET_DIR", &c.Presets.Dir)
	envString("EASEL_MONGO_URI", &c.Presets.MongoURI)
	envString("EASEL_MONGO_DATABASE", &c.Presets.MongoDatabase)
	envString("EASEL_SERVER_ADDR", &c.Server.Addr)

	if err := envInt("EASEL_REDIS_DB", &c.Storage.RedisDB); err != nil {
		return err
	}
	return envFloat("EASEL_BLADE_THICKNESS", &c.Solver.BladeThickness)
}

func envString(key string, dst *string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func envInt(key string, dst *int) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "%s must be a non-negative integer, got %q", key, s)
	}
	*dst = n
	return nil
}

func envFloat(key string, dst *float64) error {
	s := os.Getenv(key)
	if s == "" {
		return nil
	}
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return errors.New(errors.ErrCodeInvalidConfig, "%s must be a number, got %q", key, s)
	}
	*dst = v
	return nil
}

// Validate checks value ranges and that the extra table entries combine
// with the built-in tables.
func (c Config) Validate() error {
	if c.Solver.BladeThickness < 0 || c.Solver.SearchStep <= 0 || c.Solver.SearchCap < 0 {
		return errors.New(errors.ErrCodeInvalidConfig,
			"solver: blade_thickness and search_cap must be >= 0 and search_step > 0")
	}
	if c.Defaults.MinBorder < 0 || math.IsNaN(c.Defaults.MinBorder) {
		return errors.New(errors.ErrCodeInvalidConfig, "defaults.min_border must be >= 0")
	}
	switch strings.ToLower(c.Storage.Backend) {
	case store.BackendFile, store.BackendRedis, store.BackendNone:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "storage.backend %q is not one of file, redis, none", c.Storage.Backend)
	}
	switch strings.ToLower(c.Presets.Backend) {
	case preset.BackendFile, preset.BackendMongo:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "presets.backend %q is not one of file, mongo", c.Presets.Backend)
	}
	if c.Storage.Debounce < 0 || c.Storage.RedisTTL < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "storage durations cannot be negative")
	}
	if _, err := c.Tables(); err != nil {
		return err
	}
	return nil
}

// Tables holds the lookup tables after merging config entries.
type Tables struct {
	Papers paper.PaperTable
	Ratios paper.RatioTable
	Easels paper.EaselTable
}

// Tables merges the extra entries into the built-in tables.
func (c Config) Tables() (Tables, error) {
	papers, err := paper.DefaultPapers().With(c.Papers...)
	if err != nil {
		return Tables{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "papers")
	}
	ratios, err := paper.DefaultRatios().With(c.Ratios...)
	if err != nil {
		return Tables{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "ratios")
	}
	easels, err := paper.DefaultEasels().With(c.Easels...)
	if err != nil {
		return Tables{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "easels")
	}
	return Tables{Papers: papers, Ratios: ratios, Easels: easels}, nil
}

// DefaultState returns the calculator defaults with the [defaults] section
// applied.
func (c Config) DefaultState() calculator.State {
	s := calculator.DefaultState()
	if c.Defaults.PaperSize != "" {
		s.PaperSize = c.Defaults.PaperSize
	}
	if c.Defaults.AspectRatio != "" {
		s.AspectRatio = c.Defaults.AspectRatio
	}
	s.MinBorder = c.Defaults.MinBorder
	s.LastValidMinBorder = c.Defaults.MinBorder
	s.IsLandscape = c.Defaults.Landscape
	return s
}

// MachineOptions returns the calculator options the config implies.
func (c Config) MachineOptions(logger *log.Logger) ([]calculator.Option, error) {
	t, err := c.Tables()
	if err != nil {
		return nil, err
	}
	return []calculator.Option{
		calculator.WithLogger(logger),
		calculator.WithResolver(paper.NewResolver(t.Papers, t.Ratios, logger)),
		calculator.WithEasels(t.Easels),
		calculator.WithSolverOptions(c.Solver),
		calculator.WithDefaults(c.DefaultState()),
	}, nil
}

// StoreConfig returns the state store settings.
func (c Config) StoreConfig() store.Config {
	return store.Config{
		Backend: c.Storage.Backend,
		Dir:     c.Storage.Dir,
		Redis: store.RedisConfig{
			Addr:     c.Storage.RedisAddr,
			Password: c.Storage.RedisPassword,
			DB:       c.Storage.RedisDB,
			TTL:      c.Storage.RedisTTL,
		},
	}
}

// PresetConfig returns the preset collection settings.
func (c Config) PresetConfig() preset.Config {
	return preset.Config{
		Backend: c.Presets.Backend,
		Dir:     c.Presets.Dir,
		Mongo: preset.MongoConfig{
			URI:        c.Presets.MongoURI,
			Database:   c.Presets.MongoDatabase,
			Collection: c.Presets.MongoCollection,
		},
	}
}

// Encode renders the config as TOML, with secrets masked.
func (c Config) Encode() ([]byte, error) {
	if c.Storage.RedisPassword != "" {
		c.Storage.RedisPassword = "********"
	}
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(c); err != nil {
		return nil, errors.Wrap(errors.ErrCodeInternal, err, "encode config")
	}
	return buf.Bytes(), nil
}
