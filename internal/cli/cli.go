// Package cli implements the mindtree command-line interface.
//
// The commands load mind maps in any supported format, lay them out and
// render them, browse them interactively, and serve them over HTTP. The CLI
// is built with cobra and logs through charmbracelet/log.
//
// # Commands
//
//   - convert: Re-encode a map as node_tree, node_array or freemind
//   - print: Print a map as an outline tree
//   - info: Show a map's metadata and shape
//   - layout: Compute the geometry of a map as JSON
//   - render: Generate SVG, PDF, PNG, DOT and other artifacts
//   - visualize: Render a previously computed layout
//   - view: Browse and edit a map in the terminal
//   - serve: Serve stored maps over HTTP
//   - cache: Manage the artifact cache
//
// # Configuration
//
// Settings come from the TOML file named by --config, else ./mindtree.toml,
// else $XDG_CONFIG_HOME/mindtree/config.toml. Flags override the file.
package cli

import (
	"context"
	"io"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/matzehuels/mindtree/pkg/buildinfo"
	"github.com/matzehuels/mindtree/pkg/cache"
	"github.com/matzehuels/mindtree/pkg/config"
	"github.com/matzehuels/mindtree/pkg/editor"
	"github.com/matzehuels/mindtree/pkg/pipeline"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "mindtree"

	// defaultMemoryEntries bounds the in-process cache backend.
	defaultMemoryEntries = 1024
)

// Log levels exported for use in main.go.
const (
	LogDebug = log.DebugLevel
	LogInfo  = log.InfoLevel
)

// Cache backend names accepted in the [cache] table.
const (
	cacheFile   = "file"
	cacheMemory = "memory"
	cacheRedis  = "redis"
	cacheNone   = "none"
)

// =============================================================================
// CLI - Central CLI State
// =============================================================================

// CLI holds shared state for all commands.
type CLI struct {
	Logger *log.Logger

	configPath string
	cfg        *config.Config
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
		Short:        "Mindtree lays out and renders mind maps",
		Long:         `Mindtree is a CLI tool for editing, laying out and rendering mind maps stored as node_tree, node_array or FreeMind documents.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return c.loadConfig()
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVar(&c.configPath, "config", "", "config file (default: ./mindtree.toml or $XDG_CONFIG_HOME/mindtree/config.toml)")

	// Register all subcommands
	root.AddCommand(c.convertCommand())
	root.AddCommand(c.printCommand())
	root.AddCommand(c.infoCommand())
	root.AddCommand(c.layoutCommand())
	root.AddCommand(c.renderCommand())
	root.AddCommand(c.visualizeCommand())
	root.AddCommand(c.viewCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.cacheCommand())
	root.AddCommand(c.completionCommand())
	registerCompletions(root)

	return root
}

// =============================================================================
// Configuration
// =============================================================================

func (c *CLI) loadConfig() error {
	cfg, err := config.Load(c.configPath)
	if err != nil {
		return err
	}
	if cfg.Path != "" {
		c.Logger.Debug("Loaded config", "path", cfg.Path)
	}
	c.cfg = &cfg
	return nil
}

// settings returns the loaded configuration, or the defaults when no
// command has loaded one yet.
func (c *CLI) settings() config.Config {
	if c.cfg == nil {
		return config.Default()
	}
	return *c.cfg
}

// editorOptions builds the editing policy from the configuration.
func (c *CLI) editorOptions() (editor.Options, error) {
	cfg := c.settings()
	rules, err := cfg.HierarchyRules()
	if err != nil {
		return editor.Options{}, err
	}
	return editor.Options{
		Editable:     cfg.Editor.Editable,
		RootEditable: cfg.Editor.RootEditable,
		MaxDepth:     cfg.Editor.MaxDepth,
		Rules:        rules,
		Layout:       cfg.Layout,
	}, nil
}

// =============================================================================
// Runner Factory
// =============================================================================

// newRunner creates a pipeline runner for CLI use.
func (c *CLI) newRunner(ctx context.Context, noCache bool) (*pipeline.Runner, error) {
	cc, err := c.newCache(ctx, noCache)
	if err != nil {
		return nil, err
	}
	return pipeline.NewRunner(cc, nil, c.Logger), nil
}

// newCache opens the configured cache backend. A file cache that cannot be
// created degrades to no caching.
func (c *CLI) newCache(ctx context.Context, noCache bool) (cache.Cache, error) {
	cfg := c.settings()
	if noCache {
		return cache.NewNullCache(), nil
	}
	switch cfg.Cache.Backend {
	case cacheNone:
		return cache.NewNullCache(), nil
	case cacheMemory:
		return cache.NewMemoryCache(defaultMemoryEntries, cfg.Cache.TTL), nil
	case cacheRedis:
		return cache.NewRedisCache(ctx, cfg.Cache.URL, cache.RedisOptions{})
	}
	fc, err := cache.NewFileCache(cfg.CacheDir())
	if err != nil {
		c.Logger.Warn("Cache disabled", "dir", cfg.CacheDir(), "err", err)
		return cache.NewNullCache(), nil
	}
	return fc, nil
}

// =============================================================================
// Options Helpers
// =============================================================================

// pipelineOptions returns pipeline options seeded from the configuration.
func (c *CLI) pipelineOptions() pipeline.Options {
	cfg := c.settings()
	return pipeline.Options{
		Layout: cfg.Layout,
		TTL:    cfg.Cache.TTL,
		Logger: c.Logger,
	}
}

// parseFormats parses a comma-separated format string into a slice.
func parseFormats(s string) []string {
	if s == "" {
		return []string{pipeline.FormatSVG}
	}
	parts := strings.Split(s, ",")
	formats := parts[:0]
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			formats = append(formats, p)
		}
	}
	return formats
}
