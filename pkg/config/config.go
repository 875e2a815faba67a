// Package config loads mindtree.toml.
//
// A configuration file has one table per concern:
//
//	[layout]
//	mode = "full"
//	hspace = 30
//
//	[editor]
//	editable = true
//	max_depth = 0
//
//	[rules.ROOT]
//	children = ["MGR"]
//
//	[rules.MGR]
//	display_name = "Manager"
//	background_color = "#ffe"
//
//	[storage]
//	backend = "file"
//	dir = "maps"
//
//	[cache]
//	backend = "file"
//	ttl = "24h"
//
//	[server]
//	addr = ":8080"
//
// Missing tables and fields take the values of [Default].
package config

import (
	"bytes"
	"errors"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/adrg/xdg"

	mterrors "github.com/matzehuels/mindtree/pkg/errors"
	"github.com/matzehuels/mindtree/pkg/hierarchy"
	"github.com/matzehuels/mindtree/pkg/layout"
	"github.com/matzehuels/mindtree/pkg/storage"
)

// FileName is the project-local configuration file.
const FileName = "mindtree.toml"

// xdgConfigFile is the user configuration file relative to the XDG config
// directories.
const xdgConfigFile = "mindtree/config.toml"

// Config is the decoded configuration.
type Config struct {
	Layout  layout.Options            `toml:"layout"`
	Editor  Editor                    `toml:"editor"`
	Rules   map[string]hierarchy.Rule `toml:"rules"`
	Storage Storage                   `toml:"storage"`
	Cache   Cache                     `toml:"cache"`
	Server  Server                    `toml:"server"`

	// Path is the file the configuration was read from, if any.
	Path string `toml:"-"`
}

// Editor holds editing policy.
type Editor struct {
	Editable     bool `toml:"editable"`
	RootEditable bool `toml:"root_editable"`
	MaxDepth     int  `toml:"max_depth"`
}

// Storage selects the map store.
type Storage struct {
	Backend    string `toml:"backend"`
	Dir        string `toml:"dir"`
	URL        string `toml:"url"`
	Database   string `toml:"database"`
	Collection string `toml:"collection"`
}

// Cache selects the artifact cache.
type Cache struct {
	Backend string        `toml:"backend"` // file, memory, redis, none
	Dir     string        `toml:"dir"`
	URL     string        `toml:"url"`
	TTL     time.Duration `toml:"ttl"`
}

// Server configures mindtree serve.
type Server struct {
	Addr string `toml:"addr"`
	// OpenMaps bounds how many maps the server keeps loaded.
	OpenMaps int `toml:"open_maps"`
	// IdleTTL evicts loaded maps not touched for this long.
	IdleTTL time.Duration `toml:"idle_ttl"`
}

// Defaults.
const (
	DefaultCacheTTL = 24 * time.Hour
	DefaultAddr     = ":8080"
	DefaultOpenMaps = 128
	DefaultIdleTTL  = 30 * time.Minute
)

// Default returns the configuration used when no file is found.
func Default() Config {
	return Config{
		Layout:  layout.DefaultOptions(),
		Editor:  Editor{Editable: true},
		Storage: Storage{Backend: storage.BackendFile},
		Cache:   Cache{Backend: "file", TTL: DefaultCacheTTL},
		Server:  Server{Addr: DefaultAddr, OpenMaps: DefaultOpenMaps, IdleTTL: DefaultIdleTTL},
	}
}

// Decode reads TOML from r on top of [Default] and validates the result.
func Decode(r io.Reader) (Config, error) {
	cfg := Default()
	md, err := toml.NewDecoder(r).Decode(&cfg)
	if err != nil {
		return Config{}, mterrors.Wrap(mterrors.ErrCodeInvalidConfig, err, "decode config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Config{}, mterrors.New(mterrors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	cfg.Layout = cfg.Layout.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if c.Editor.MaxDepth < 0 {
		return mterrors.New(mterrors.ErrCodeInvalidConfig, "editor.max_depth cannot be negative")
	}
	switch c.Storage.Backend {
	case "", storage.BackendFile, storage.BackendMemory:
	case storage.BackendRedis, storage.BackendMongo:
		if c.Storage.URL == "" {
			return mterrors.New(mterrors.ErrCodeInvalidConfig, "storage.url is required for backend %q", c.Storage.Backend)
		}
	default:
		return mterrors.New(mterrors.ErrCodeInvalidConfig, "unknown storage backend %q", c.Storage.Backend)
	}
	switch c.Cache.Backend {
	case "", "file", "memory", "none":
	case "redis":
		if c.Cache.URL == "" {
			return mterrors.New(mterrors.ErrCodeInvalidConfig, "cache.url is required for backend redis")
		}
	default:
		return mterrors.New(mterrors.ErrCodeInvalidConfig, "unknown cache backend %q", c.Cache.Backend)
	}
	if c.Cache.TTL < 0 || c.Server.IdleTTL < 0 {
		return mterrors.New(mterrors.ErrCodeInvalidConfig, "durations cannot be negative")
	}
	if len(c.Rules) > 0 {
		if _, err := hierarchy.New(c.Rules); err != nil {
			return err
		}
	}
	return nil
}

// HierarchyRules builds the rule set. It returns nil when no rules are
// configured.
func (c Config) HierarchyRules() (*hierarchy.Rules, error) {
	if len(c.Rules) == 0 {
		return nil, nil
	}
	return hierarchy.New(c.Rules)
}

// StorageOptions converts the storage table for [storage.Open]. A relative
// dir is resolved against the config file's directory.
func (c Config) StorageOptions() storage.Options {
	return storage.Options{
		Backend:    c.Storage.Backend,
		Dir:        c.resolve(c.Storage.Dir),
		URL:        c.Storage.URL,
		Database:   c.Storage.Database,
		Collection: c.Storage.Collection,
	}
}

// CacheDir returns the file cache directory, defaulting to
// $XDG_CACHE_HOME/mindtree.
func (c Config) CacheDir() string {
	if c.Cache.Dir != "" {
		return c.resolve(c.Cache.Dir)
	}
	return filepath.Join(xdg.CacheHome, "mindtree")
}

func (c Config) resolve(p string) string {
	if p == "" || filepath.IsAbs(p) || c.Path == "" {
		return p
	}
	return filepath.Join(filepath.Dir(c.Path), p)
}

// Find returns the configuration file to use. explicit wins when set; then
// ./mindtree.toml; then mindtree/config.toml in the XDG config directories.
// It returns "" when none exists.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			return "", mterrors.Wrap(mterrors.ErrCodeNotFound, err, "config file %s", explicit)
		}
		return explicit, nil
	}
	if _, err := os.Stat(FileName); err == nil {
		return FileName, nil
	}
	if p, err := xdg.SearchConfigFile(xdgConfigFile); err == nil {
		return p, nil
	}
	return "", nil
}

// Load finds and decodes the configuration. Without a file it returns
// [Default].
func Load(explicit string) (Config, error) {
	path, err := Find(explicit)
	if err != nil {
		return Config{}, err
	}
	if path == "" {
		return Default(), nil
	}
	return LoadFile(path)
}

// LoadFile decodes the file at path.
func LoadFile(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return Config{}, mterrors.Wrap(mterrors.ErrCodeNotFound, err, "config file %s", path)
	}
	if err != nil {
		return Config{}, mterrors.Wrap(mterrors.ErrCodeInvalidConfig, err, "read config %s", path)
	}
	cfg, err := Decode(bytes.NewReader(data))
	if err != nil {
		return Config{}, err
	}
	cfg.Path = path
	return cfg, nil
}
