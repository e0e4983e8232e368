// Package cli implements the squaremap command-line interface.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/squaremap/pkg/buildinfo"
	"github.com/matzehuels/squaremap/pkg/cache"
	"github.com/matzehuels/squaremap/pkg/config"
	"github.com/matzehuels/squaremap/pkg/core/content"
	"github.com/matzehuels/squaremap/pkg/holdings"
	"github.com/matzehuels/squaremap/pkg/httputil"
	"github.com/matzehuels/squaremap/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = config.AppName

	// iconTTL is how long downloaded icons stay cached.
	iconTTL = 7 * 24 * time.Hour
)

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

	// Config is loaded before every command runs. Flags override it.
	Config     config.Config
	configPath string
	logFormat  string
}

// New creates a new CLI instance with a default logger.
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
		Use:          appName,
		Short:        "Squaremap draws weighted holdings as squarified treemaps",
		Long:         `Squaremap lays out a list of named, weighted holdings as a squarified treemap and renders it to SVG, PNG, PDF, JSON or the terminal. It can also serve layouts over HTTP with hover hit-testing.`,
		Version:      buildinfo.Get().Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := setLogFormat(c.Logger, c.logFormat); err != nil {
				return err
			}
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: $XDG_CONFIG_HOME/squaremap/config.toml)")
	root.PersistentFlags().StringVar(&c.logFormat, "log-format", logFormatText, "log output: text, json")

	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.watchCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.rowsCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.configCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// loadConfig reads the config file named by --config, or the default path.
func (c *CLI) loadConfig() error {
	var (
		cfg config.Config
		err error
	)
	if c.configPath != "" {
		cfg, err = config.Load(c.configPath)
	} else {
		cfg, err = config.LoadDefault()
	}
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	c.Config = cfg
	return nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	backend, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	keyer := cache.NewScopedKeyer(nil, buildinfo.Get().Version+":")
	return pipeline.NewRunner(backend, keyer, c.Logger), nil
}

// newCache opens the configured cache backend. An unreachable Redis falls
// back to no caching so that a missing server never blocks rendering.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.Config.Cache
	if noCache || cfg.Backend == config.CacheNone {
		return cache.NewNullCache(), nil
	}
	if cfg.Backend == config.CacheRedis {
		rc, err := cache.NewRedisCache(ctx, cache.RedisOptions{
			Addr:     cfg.Addr,
			Password: cfg.Password,
			DB:       cfg.DB,
			Prefix:   cfg.Prefix,
		})
		if err != nil {
			c.Logger.Warn("redis cache unavailable, caching disabled", "addr", cfg.Addr, "err", err)
			return cache.NewNullCache(), nil
		}
		return rc, nil
	}
	dir, err := c.cacheDir()
	if err != nil {
		return cache.NewNullCache(), nil
	}
	return cache.NewFileCache(dir)
}

// =============================================================================
// Paths
// =============================================================================

// cacheDir returns the configured cache directory, or the XDG default.
func (c *CLI) cacheDir() (string, error) {
	if c.Config.Cache.Dir != "" {
		return c.Config.Cache.Dir, nil
	}
	return cacheDir()
}

// cacheDir returns the cache directory using XDG standard (~/.cache/squaremap/).
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

// dataDir returns the directory for stored layouts using XDG standard
// (~/.local/share/squaremap/). It is kept apart from the cache so that
// `cache clear` never deletes saved layouts.
func dataDir() (string, error) {
	if dataHome := os.Getenv("XDG_DATA_HOME"); dataHome != "" {
		return filepath.Join(dataHome, appName), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".local", "share", appName), nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// layoutFlags are the layout options shared by every command that reads a
// holdings file. Zero values mean "use the config".
type layoutFlags struct {
	format      string
	width       float64
	height      float64
	padding     float64
	palette     []string
	valueMode   string
	currency    string
	decimals    int32
	iconDir     string
	inlineIcons bool
}

func addLayoutFlags(cmd *cobra.Command, lf *layoutFlags) {
	cmd.Flags().StringVar(&lf.format, "input-format", "", "holdings format: toml, json (default: by extension)")
	cmd.Flags().Float64Var(&lf.width, "width", 0, "canvas width")
	cmd.Flags().Float64Var(&lf.height, "height", 0, "canvas height")
	cmd.Flags().Float64Var(&lf.padding, "padding", 0, "gap between cells")
	cmd.Flags().StringSliceVar(&lf.palette, "palette", nil, "fill colors as hex (comma-separated)")
	cmd.Flags().StringVar(&lf.valueMode, "values", "", "value text: percent, amount")
	cmd.Flags().StringVar(&lf.currency, "currency", "", "ISO 4217 currency for amount values")
	cmd.Flags().Int32Var(&lf.decimals, "decimals", 0, "decimal places in value text")
	cmd.Flags().StringVar(&lf.iconDir, "icon-dir", "", "directory for relative icon references (default: holdings file directory)")
	cmd.Flags().BoolVar(&lf.inlineIcons, "inline-icons", false, "download http(s) icons and embed them")
}

// layoutOptions merges the config and any flags the user set into pipeline
// options for input.
func (c *CLI) layoutOptions(cmd *cobra.Command, input string, lf layoutFlags) (pipeline.Options, error) {
	cfg := c.Config
	opts := pipeline.Options{
		Input:   input,
		Width:   cfg.Canvas.Width,
		Height:  cfg.Canvas.Height,
		Padding: cfg.Canvas.Padding,
		Palette: cfg.Palette.Fills,
		Content: cfg.Content,
		Logger:  c.Logger,
	}

	flags := cmd.Flags()
	if flags.Changed("input-format") {
		f, err := holdings.ParseFormat(lf.format)
		if err != nil {
			return opts, err
		}
		opts.Format = f
	}
	if flags.Changed("width") {
		opts.Width = lf.width
	}
	if flags.Changed("height") {
		opts.Height = lf.height
	}
	if flags.Changed("padding") {
		opts.Padding = lf.padding
	}
	if flags.Changed("palette") {
		opts.Palette = lf.palette
	}
	if flags.Changed("values") {
		opts.Content.ValueMode = content.ValueMode(lf.valueMode)
	}
	if flags.Changed("currency") {
		opts.Content.Currency = lf.currency
	}
	if flags.Changed("decimals") {
		opts.Content.Decimals = lf.decimals
	}

	opts.IconDir = lf.iconDir
	if opts.IconDir == "" && input != "" {
		opts.IconDir = filepath.Dir(input)
	}
	if lf.inlineIcons {
		r, err := c.inlineResolver(opts.IconDir)
		if err != nil {
			return opts, err
		}
		opts.Resolver = r
	}

	if err := opts.ValidateForLayout(); err != nil {
		return opts, err
	}
	probe := cfg
	probe.Content = opts.Content
	probe.Palette.Fills = opts.Palette
	if err := probe.Validate(); err != nil {
		return opts, err
	}
	return opts, nil
}

// inlineResolver downloads remote icons into the icon cache and falls back
// to files under iconDir.
func (c *CLI) inlineResolver(iconDir string) (content.IconResolver, error) {
	dir, err := c.cacheDir()
	if err != nil {
		return nil, fmt.Errorf("get cache dir: %w", err)
	}
	hc, err := httputil.NewCache(filepath.Join(dir, "icons"), iconTTL)
	if err != nil {
		return nil, fmt.Errorf("open icon cache: %w", err)
	}
	fetcher := httputil.NewIconFetcher(hc)
	if iconDir == "" {
		return fetcher, nil
	}
	return content.ChainResolver{fetcher, content.NewFileResolver(iconDir)}, nil
}

// setCLIDefaults applies CLI-specific defaults on top of pipeline defaults.
func setCLIDefaults(opts *pipeline.Options) {
	opts.SetLayoutDefaults()
	opts.SetRenderDefaults()
	opts.Tooltips = true
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if formats := pipeline.ParseFormats(s); len(formats) > 0 {
		return formats
	}
	return []string{pipeline.FormatSVG}
}

// basePath derives the output path without extension. A known format
// extension on output is stripped; otherwise the input name is used.
func basePath(output, input string) string {
	if output == "" {
		base := strings.TrimSuffix(input, filepath.Ext(input))
		return strings.TrimSuffix(base, ".layout")
	}
	ext := filepath.Ext(output)
	if pipeline.IsFormat(strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}
