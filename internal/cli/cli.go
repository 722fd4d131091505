// Package cli implements the easel command-line interface.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/matzehuels/easel/internal/config"
	"github.com/matzehuels/easel/pkg/buildinfo"
	"github.com/matzehuels/easel/pkg/calculator"
	"github.com/matzehuels/easel/pkg/preset"
	"github.com/matzehuels/easel/pkg/settings"
	"github.com/matzehuels/easel/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "easel"

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	// status receives connection spinners; it is the logger's writer.
	status io.Writer

	configPath string
	config     *config.Config
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level), status: w}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	cobra.OnInitialize(loadDotEnv)

	root := &cobra.Command{
		Use:          appName,
		Short:        "Easel computes darkroom easel blade positions",
		Long:         `Easel is a darkroom calculator: pick a paper size, an aspect ratio and a minimum border, and it tells you where to set the four blades of your enlarging easel.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/easel/config.toml)")

	// Register all subcommands
	root.AddCommand(c.calcCommand())
	root.AddCommand(c.tuiCommand())
	root.AddCommand(c.shareCommand())
	root.AddCommand(c.presetCommand())
	root.AddCommand(c.stateCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadDotEnv reads an optional .env file into the environment.
func loadDotEnv() {
	_ = godotenv.Load()
}

// =============================================================================
// Factories
// =============================================================================

// loadConfig reads the config file once per process.
func (c *CLI) loadConfig() (config.Config, error) {
	if c.config != nil {
		return *c.config, nil
	}
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return cfg, err
	}
	c.config = &cfg
	c.Logger.Debug("loaded config", "path", c.configPath, "store", cfg.Storage.Backend, "presets", cfg.Presets.Backend)
	return cfg, nil
}

// newMachine creates a calculator configured from cfg and seeded with
// initial.
func (c *CLI) newMachine(cfg config.Config, initial calculator.State) (*calculator.Machine, error) {
	opts, err := cfg.MachineOptions(c.Logger)
	if err != nil {
		return nil, err
	}
	return calculator.New(append(opts, calculator.WithInitialState(initial))...), nil
}

// openStore opens the persisted-state backend, behind a spinner when it is
// Redis.
func (c *CLI) openStore(ctx context.Context, cfg config.Config) (store.Store, error) {
	sc := cfg.StoreConfig()
	if !strings.EqualFold(sc.Backend, store.BackendRedis) {
		return store.Open(ctx, sc)
	}
	s, err := connect(ctx, c.status, "Redis at "+sc.Redis.Addr, func(ctx context.Context) (store.Store, error) {
		return store.Open(ctx, sc)
	})
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("connected to state store", "backend", sc.Backend, "addr", sc.Redis.Addr)
	return s, nil
}

// newPersister wraps s with the configured debounce delay.
func (c *CLI) newPersister(s store.Store, cfg config.Config) *settings.Persister {
	return settings.NewPersister(s,
		settings.WithDelay(cfg.Storage.Debounce),
		settings.WithLogger(c.Logger),
	)
}

// loadMachine creates a calculator on the config defaults and loads p into
// it with a single batch update.
func (c *CLI) loadMachine(cfg config.Config, p settings.Persistable) (*calculator.Machine, error) {
	m, err := c.newMachine(cfg, cfg.DefaultState())
	if err != nil {
		return nil, err
	}
	if err := m.Dispatch(p.Action()); err != nil {
		return nil, err
	}
	return m, nil
}

// restoreSettings loads the saved settings. ok is false when nothing usable
// is stored.
func (c *CLI) restoreSettings(ctx context.Context, cfg config.Config) (settings.Persistable, bool, error) {
	s, err := c.openStore(ctx, cfg)
	if err != nil {
		return settings.Persistable{}, false, err
	}
	defer s.Close()

	p, ok := c.newPersister(s, cfg).Restore(ctx)
	return p, ok, nil
}

// openPresets opens the named-preset collection, behind a spinner when it is
// MongoDB.
func (c *CLI) openPresets(ctx context.Context, cfg config.Config) (preset.Collection, error) {
	pc := cfg.PresetConfig()
	if !strings.EqualFold(pc.Backend, preset.BackendMongo) {
		return preset.Open(ctx, pc)
	}
	// the URI may carry credentials, so only the database is named
	coll, err := connect(ctx, c.status, "MongoDB presets in "+pc.Mongo.Database, func(ctx context.Context) (preset.Collection, error) {
		return preset.Open(ctx, pc)
	})
	if err != nil {
		return nil, err
	}
	c.Logger.Debug("connected to preset store", "backend", pc.Backend, "database", pc.Mongo.Database)
	return coll, nil
}
