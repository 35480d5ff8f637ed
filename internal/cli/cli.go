package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/occupancy/pkg/buildinfo"
	"github.com/matzehuels/occupancy/pkg/cache"
	"github.com/matzehuels/occupancy/pkg/errors"
	"github.com/matzehuels/occupancy/pkg/observability"
	"github.com/matzehuels/occupancy/pkg/pipeline"
	"github.com/matzehuels/occupancy/pkg/source"
	"github.com/matzehuels/occupancy/pkg/source/api"
	"github.com/matzehuels/occupancy/pkg/source/file"
	"github.com/matzehuels/occupancy/pkg/source/mongo"
)

// =============================================================================
// Constants
// =============================================================================

// appName is the application name used for directories and display.
const appName = "occupancy"

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
	Config Config

	configFile string
}

// New creates a new CLI instance with a default logger and configuration.
func New(w io.Writer, level log.Level) *CLI {
	return &CLI{
		Logger: newLogger(w, level),
		Config: defaultConfig(),
	}
}

// SetLogLevel updates the logger's level.
func (c *CLI) SetLogLevel(level log.Level) {
	c.Logger.SetLevel(level)
}

// RootCommand creates the root cobra command with all subcommands registered.
func (c *CLI) RootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:          appName,
		Short:        "Occupancy lays out a year of advertising support bookings",
		Long:         `Occupancy reads bookings of advertising supports and lays them out month by month for one calendar year. Overlapping bookings of one support go on separate rows, others share a row.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			if ctx == nil {
				ctx = context.Background()
			}
			cmd.SetContext(withLogger(ctx, c.Logger))
			if c.Logger.GetLevel() <= log.DebugLevel {
				observability.SetAll(observability.NewLogHooks(c.Logger))
			}
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configFile, "config", "", "config file (default: $XDG_CONFIG_HOME/occupancy/config.toml)")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.overlapsCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())

	return root
}

func (c *CLI) loadConfig() error {
	path, explicit := c.configFile, c.configFile != ""
	if !explicit {
		var err error
		if path, err = configPath(); err != nil {
			return nil
		}
	}
	cfg, err := loadConfig(path, explicit)
	if err != nil {
		return err
	}
	c.Config = cfg
	c.Logger.Debug("config", "path", path, "source", cfg.Source.Kind, "cache", cfg.Cache.Kind)
	return nil
}

// =============================================================================
// Source Flags
// =============================================================================

// sourceFlags selects the booking source and cache for one command.
type sourceFlags struct {
	kind       string
	supports   string
	mongoURI   string
	database   string
	collection string
	apiURL     string
	pageSize   int
	noCache    bool
	refresh    bool
}

func (f *sourceFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.kind, "source", "", "booking source: file (default), mongo, api")
	cmd.Flags().StringVar(&f.supports, "supports", "", "support records file (file source)")
	cmd.Flags().StringVar(&f.mongoURI, "mongo-uri", "", "MongoDB connection URI")
	cmd.Flags().StringVar(&f.database, "database", "", "MongoDB database")
	cmd.Flags().StringVar(&f.collection, "collection", "", "MongoDB bookings collection")
	cmd.Flags().StringVar(&f.apiURL, "api-url", "", "booking service base URL")
	cmd.Flags().IntVar(&f.pageSize, "page-size", 0, "bookings per source page")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable the page cache")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "refetch pages, bypassing cached ones")
}

// resolve merges the flags over the configured source. A positional
// bookings file always selects the file source.
func (f *sourceFlags) resolve(cfg SourceConfig, args []string) SourceConfig {
	set := func(dst *string, v string) {
		if v != "" {
			*dst = v
		}
	}
	set(&cfg.Kind, f.kind)
	set(&cfg.Supports, f.supports)
	set(&cfg.MongoURI, f.mongoURI)
	set(&cfg.Database, f.database)
	set(&cfg.Collection, f.collection)
	set(&cfg.APIURL, f.apiURL)
	if f.pageSize > 0 {
		cfg.PageSize = f.pageSize
	}
	if len(args) > 0 {
		cfg.Kind = sourceFile
		cfg.Path = args[0]
	}
	if cfg.Kind == "" {
		cfg.Kind = sourceFile
	}
	return cfg
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner opens the configured source and cache.
func (c *CLI) newRunner(ctx context.Context, f *sourceFlags, args []string) (*pipeline.Runner, error) {
	sc := f.resolve(c.Config.Source, args)
	src, err := openSource(ctx, sc)
	if err != nil {
		return nil, err
	}
	cc := c.Config.Cache
	if f.noCache {
		cc.Kind = cacheNone
	}
	store, err := openCache(ctx, cc)
	if err != nil {
		_ = src.Close()
		return nil, err
	}
	c.Logger.Debug("runner", "source", src.Name(), "cache", cc.Kind)

	runner := pipeline.NewRunner(src, store, c.Logger)
	runner.PageTTL = cc.TTL.Duration
	if cc.Namespace != "" {
		runner.Keyer = cache.NewScopedKeyer(nil, cc.Namespace)
	}
	return runner, nil
}

func openSource(ctx context.Context, sc SourceConfig) (source.Source, error) {
	switch sc.Kind {
	case sourceFile:
		if sc.Path == "" {
			return nil, errors.New(errors.ErrCodeInvalidInput, "no bookings file given (pass a path or set source.path)")
		}
		src, err := file.Open(sc.Path, sc.Supports)
		if err != nil {
			return nil, err
		}
		return src, nil
	case sourceMongo:
		src, err := mongo.Open(ctx, mongo.Options{
			URI:        sc.MongoURI,
			Database:   sc.Database,
			Collection: sc.Collection,
		})
		if err != nil {
			return nil, err
		}
		return src, nil
	case sourceAPI:
		token := sc.APIToken
		if env := os.Getenv("OCCUPANCY_API_TOKEN"); env != "" {
			token = env
		}
		src, err := api.New(api.Options{BaseURL: sc.APIURL, Token: token})
		if err != nil {
			return nil, err
		}
		return src, nil
	default:
		return nil, errors.New(errors.ErrCodeInvalidInput, "unknown source %q (must be one of: file, mongo, api)", sc.Kind)
	}
}

func openCache(ctx context.Context, cc CacheConfig) (cache.Cache, error) {
	switch cc.Kind {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheRedis:
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{Addr: cc.RedisAddr, DB: cc.RedisDB})
		if err != nil {
			return nil, err
		}
		return rc, nil
	default:
		dir := cc.Dir
		if dir == "" {
			var err error
			if dir, err = cacheDir(); err != nil {
				return cache.NewNullCache(), nil
			}
		}
		fc, err := cache.NewFileCache(dir)
		if err != nil {
			return nil, err
		}
		return fc, nil
	}
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the cache directory using XDG standard (~/.cache/occupancy/).
func cacheDir() (string, error) {
	if cacheHome := os.Getenv("XDG_CACHE_HOME"); cacheHome != "" {
		return filepath.Join(cacheHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".cache", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags holds the year, grouping and filter flags.
type layoutFlags struct {
	year    int
	groupBy string
	filter  pipeline.Filter
}

func (f *layoutFlags) register(cmd *cobra.Command) {
	cmd.Flags().IntVarP(&f.year, "year", "y", 0, "calendar year (default: current year)")
	cmd.Flags().StringVarP(&f.groupBy, "group-by", "g", "", "group supports by: city, vendor, client, status")
	cmd.Flags().StringVar(&f.filter.Vendor, "vendor", "", "only bookings of this vendor")
	cmd.Flags().StringVar(&f.filter.Client, "client", "", "only bookings of this client")
	cmd.Flags().StringVar(&f.filter.Status, "status", "", "only bookings with this status")
	cmd.Flags().StringVar(&f.filter.Support, "support", "", "only this support id")
}

// options builds pipeline options from the config and flags.
func (c *CLI) options(lf layoutFlags, sf *sourceFlags) pipeline.Options {
	opts := pipeline.Options{
		Year:      lf.year,
		GroupBy:   lf.groupBy,
		Filter:    lf.filter,
		Style:     c.Config.Render.Style,
		Lang:      c.Config.Render.Lang,
		ThemePath: c.Config.Render.Theme,
		PageSize:  c.Config.Source.PageSize,
		Logger:    c.Logger,
	}
	if sf != nil {
		if sf.pageSize > 0 {
			opts.PageSize = sf.pageSize
		}
		opts.Refresh = sf.refresh
	}
	return opts
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	var out []string
	for _, f := range strings.Split(s, ",") {
		if f = strings.ToLower(strings.TrimSpace(f)); f != "" {
			out = append(out, f)
		}
	}
	return out
}

// basePath derives the output base path. An output with a known format
// extension has it stripped; no output yields occupancy-<year>.
func basePath(output string, year int) string {
	if output == "" {
		return fmt.Sprintf("%s-%d", appName, year)
	}
	ext := filepath.Ext(output)
	if pipeline.ValidFormats[strings.TrimPrefix(ext, ".")] {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
