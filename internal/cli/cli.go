package cli

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/matzehuels/depdistill/pkg/buildinfo"
	"github.com/matzehuels/depdistill/pkg/cache"
	"github.com/matzehuels/depdistill/pkg/config"
	"github.com/matzehuels/depdistill/pkg/errors"
	"github.com/matzehuels/depdistill/pkg/nuget/restore"
	"github.com/matzehuels/depdistill/pkg/observability"
	"github.com/matzehuels/depdistill/pkg/pipeline"
	"github.com/matzehuels/depdistill/pkg/store"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "depdistill"

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

	v          *viper.Viper
	cfg        *config.Config
	configFile string
	noColor    bool
}

// New creates a new CLI instance with a default logger.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		v:      config.New(),
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
		Short: "depdistill distills .NET dependency graphs into readable trees",
		Long: `depdistill restores a .NET solution or project, reads its restore graph and
prints a pruned, deduplicated dependency tree, optionally filtered to the
packages matching a search term.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: ./depdistill.toml)")
	root.PersistentFlags().BoolVar(&c.noColor, "no-color", false, "disable colored output")

	root.AddCommand(c.analyzeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.browseCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.historyCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// flagKeys maps command-line flags to the config keys they override.
var flagKeys = map[string]string{
	"format":      "output.format",
	"libraries":   "analysis.libraries",
	"concurrency": "analysis.concurrency",
	"dotnet":      "restore.dotnet",
	"temp":        "restore.temp_dir",
	"addr":        "server.addr",
	"root":        "server.root",
}

// loadConfig binds the flags of cmd and resolves the configuration. Flags
// are bound per command because several commands share a key.
func (c *CLI) loadConfig(cmd *cobra.Command) error {
	for name, key := range flagKeys {
		if f := cmd.Flags().Lookup(name); f != nil {
			if err := c.v.BindPFlag(key, f); err != nil {
				return fmt.Errorf("bind --%s: %w", name, err)
			}
		}
	}
	cfg, err := config.Load(c.v, c.configFile)
	if err != nil {
		return err
	}
	if c.noColor {
		cfg.Output.Color = false
	}
	if f := config.Used(c.v); f != "" {
		c.Logger.Debug("loaded config", "file", f)
	}
	c.cfg = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner from the configuration. The caller
// closes it.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	hooks := observability.NewLogHooks(c.Logger)
	observability.SetAnalyzerHooks(hooks)
	observability.SetCacheHooks(hooks)
	observability.SetRestoreHooks(hooks)

	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}

	r := pipeline.NewRunner(backend, nil, c.Logger)
	r.Restorer = &restore.Runner{
		Dotnet:  c.cfg.Restore.Dotnet,
		Timeout: c.cfg.Restore.Timeout,
		Logger:  c.Logger,
	}
	r.TTL = c.cfg.Cache.TTL
	return r, nil
}

func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch c.cfg.Cache.Backend {
	case config.CacheRedis:
		return cache.NewRedisCache(ctx, cache.RedisConfig{Addr: c.cfg.Cache.RedisAddr})
	case config.CacheFile:
		return cache.NewFileCache(c.cfg.Cache.Dir)
	default:
		return cache.NewNullCache(), nil
	}
}

// openHistory opens the persistent Mongo history.
func (c *CLI) openHistory(ctx context.Context) (store.Store, error) {
	if c.cfg.Store.MongoURI == "" {
		return nil, errors.New(errors.ErrCodeInvalidInput,
			"no history store configured (set store.mongo_uri or DEPDISTILL_STORE_MONGO_URI)")
	}
	return store.OpenMongo(ctx, store.MongoConfig{
		URI:      c.cfg.Store.MongoURI,
		Database: c.cfg.Store.Database,
	})
}

// newStore opens the Mongo history when configured and falls back to an
// in-process store otherwise.
func (c *CLI) newStore(ctx context.Context) (store.Store, error) {
	if c.cfg.Store.MongoURI == "" {
		c.Logger.Warn("store.mongo_uri not set, analyses are kept in memory")
		return store.NewMemoryStore(), nil
	}
	return c.openHistory(ctx)
}

// =============================================================================
// Output Helpers
// =============================================================================

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return nil
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.TrimSpace(f); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// formatExt returns the file extension used for a format.
func formatExt(format string) string {
	if format == pipeline.FormatText {
		return "txt"
	}
	return format
}

func outputPath(base, format string, multiple bool) string {
	if !multiple {
		return base
	}
	return fmt.Sprintf("%s.%s", strings.TrimSuffix(base, "."+formatExt(format)), formatExt(format))
}
