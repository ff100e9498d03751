// Package cli implements the kintree command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/kintree/internal/config"
	"github.com/matzehuels/kintree/pkg/buildinfo"
	"github.com/matzehuels/kintree/pkg/cache"
	"github.com/matzehuels/kintree/pkg/observability"
	"github.com/matzehuels/kintree/pkg/pipeline"
	"github.com/matzehuels/kintree/pkg/store"
	"github.com/matzehuels/kintree/pkg/store/mongo"
	"github.com/matzehuels/kintree/pkg/store/sqlite"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for display.
const appName = config.AppName

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
	Config config.Config

	verbose    bool
	configPath string
	hooks      []observability.Hooks
}

// New creates a new CLI instance with a default logger and default config.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: config.Default(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   appName,
		Short: "Kintree lays out and renders family charts",
		Long: `Kintree turns a family snapshot (people, parents and spouses) into a
generation-layered chart: one row per generation, couples side by side and
children grouped under their parents.`,
		Version:           buildinfo.Version,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: c.setup,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable verbose logging")
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $"+config.EnvPath+" or $XDG_CONFIG_HOME/kintree/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.storeCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// setup applies --verbose and loads the config file before any command runs.
func (c *CLI) setup(cmd *cobra.Command, args []string) error {
	if c.verbose {
		c.SetLogLevel(LogDebug)
		c.addHooks(observability.NewLogHooks(c.Logger))
	}

	var (
		cfg config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.LoadFile(c.configPath)
	} else {
		cfg, err = config.Load()
	}
	if err != nil {
		return err
	}
	c.Config = cfg
	if cfg.Path != "" {
		c.Logger.Debug("loaded config", "path", cfg.Path)
	}
	return nil
}

// addHooks installs h alongside any hooks already installed.
func (c *CLI) addHooks(h observability.Hooks) {
	c.hooks = append(c.hooks, h)
	observability.Install(c.hooks...)
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use. The chart store is only
// opened when input refers to it, and its cache keys are then scoped to the
// store backend.
func (c *CLI) newRunner(ctx context.Context, input string, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	runner := pipeline.NewRunner(cc, nil, c.Logger)

	if pipeline.ClassifyInput(input) == pipeline.InputStore {
		st, err := c.openStore(ctx)
		if err != nil {
			cc.Close()
			return nil, err
		}
		runner.Store = st
		runner.Keyer = cache.NewScopedKeyer(runner.Keyer, "store:"+c.Config.Store.Backend+":")
	}
	return runner, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == config.CacheRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisConfig{
			Addr:     cfg.RedisAddr,
			Password: cfg.RedisPassword,
			DB:       cfg.RedisDB,
			Prefix:   cfg.RedisPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("open cache: %w", err)
		}
		return rc, nil
	}
	if cfg.Dir == "" {
		c.Logger.Warn("no cache directory, caching disabled")
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(cfg.Dir)
}

// openStore opens the configured chart store.
func (c *CLI) openStore(ctx context.Context) (store.Store, error) {
	cfg := c.Config.Store
	switch cfg.Backend {
	case config.StoreMongo:
		st, err := mongo.Open(ctx, mongo.Config{URI: cfg.MongoURI, Database: cfg.MongoDatabase})
		if err != nil {
			return nil, fmt.Errorf("open chart store: %w", err)
		}
		return st, nil
	default:
		st, err := sqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("open chart store: %w", err)
		}
		c.Logger.Debug("opened chart store", "path", cfg.SQLitePath)
		return st, nil
	}
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags holds spacing overrides. Zero means "use the config file".
type layoutFlags struct {
	verticalSpacing float64
	cardWidth       float64
	spouseOffset    float64
	minGap          float64
	groupGap        float64
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().Float64Var(&f.verticalSpacing, "vertical-spacing", 0, "distance between generations (default from config)")
	cmd.Flags().Float64Var(&f.cardWidth, "card-width", 0, "person card width (default from config)")
	cmd.Flags().Float64Var(&f.spouseOffset, "spouse-offset", 0, "distance between partners (default from config)")
	cmd.Flags().Float64Var(&f.minGap, "pair-gap", 0, "gap between sibling pairs (default from config)")
	cmd.Flags().Float64Var(&f.groupGap, "group-gap", 0, "gap between sibling groups (default from config)")
}

// pipelineOptions merges the config file with command-line overrides.
func (c *CLI) pipelineOptions(input string, lf layoutFlags) pipeline.Options {
	cfg := c.Config.Layout
	if lf.verticalSpacing != 0 {
		cfg.VerticalSpacing = lf.verticalSpacing
	}
	if lf.cardWidth != 0 {
		cfg.CardWidth = lf.cardWidth
	}
	if lf.spouseOffset != 0 {
		cfg.SpouseOffset = lf.spouseOffset
	}
	if lf.minGap != 0 {
		cfg.MinGapBetweenPairs = lf.minGap
	}
	if lf.groupGap != 0 {
		cfg.GroupGap = lf.groupGap
	}
	return pipeline.Options{
		Input:  input,
		Layout: cfg,
		Logger: c.Logger,
	}
}
