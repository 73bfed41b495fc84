package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/blokdust/pkg/buildinfo"
	"github.com/matzehuels/blokdust/pkg/codec"
	"github.com/matzehuels/blokdust/pkg/config"
	"github.com/matzehuels/blokdust/pkg/engine"
	"github.com/matzehuels/blokdust/pkg/storage"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = "blokdust"

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

	// configPath overrides the default config file location.
	configPath string
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{Logger: newLogger(w, level)}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "blokdust edits and stores block-based audio patches",
		Long:         `blokdust runs command scripts against a patch graph of sound sources and effects, and saves, loads, inspects and exports the resulting compositions.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default $XDG_CONFIG_HOME/blokdust/config.toml)")

	root.AddCommand(c.runCommand())
	root.AddCommand(c.inspectCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.loadCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Engine Factory
// =============================================================================

// loadConfig reads the config file, applies BLOKDUST_* overrides and
// validates the result.
func (c *CLI) loadConfig() (config.Config, error) {
	path := c.configPath
	if path == "" {
		p, err := config.DefaultPath()
		if err != nil {
			c.Logger.Debug("no default config path", "err", err)
		}
		path = p
	}
	cfg, err := config.Load(path)
	if err != nil {
		return config.Config{}, err
	}
	if err := cfg.ApplyEnv(); err != nil {
		return config.Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return config.Config{}, err
	}
	c.Logger.Debug("loaded config", "path", path, "storage", cfg.Storage.Driver)
	return cfg, nil
}

// newEngine opens the configured store and starts an engine on it. Extra
// options are applied after the config-derived ones.
func (c *CLI) newEngine(ctx context.Context, cfg config.Config, opts ...engine.Option) (*engine.Engine, error) {
	store, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		return nil, fmt.Errorf("open %s store: %w", cfg.Storage.Driver, err)
	}
	z, err := codec.NewZstd(cfg.Codec.Level)
	if err != nil {
		store.Close()
		return nil, err
	}
	base := []engine.Option{
		engine.WithLogger(c.Logger),
		engine.WithStore(store),
		engine.WithCodec(z),
	}
	e, err := engine.New(engineConfig(cfg), append(base, opts...)...)
	if err != nil {
		store.Close()
		return nil, err
	}
	return e, nil
}

// engineConfig maps the file config onto the engine's bounds.
func engineConfig(cfg config.Config) engine.Config {
	return engine.Config{
		MaxOperations:  cfg.History.MaxOperations,
		ParticlesMin:   cfg.Particles.Min,
		ParticlesMax:   cfg.Particles.Max,
		ParticlePolicy: cfg.ParticlePolicy(),
	}
}
