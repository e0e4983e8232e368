// Package config loads squaremap's user configuration.
//
// Configuration lives in a TOML file at $XDG_CONFIG_HOME/squaremap/config.toml
// (or ~/.config/squaremap/config.toml). Every key is optional; missing keys
// keep the values from [Default]. Command-line flags override the file.
//
//	[canvas]
//	width   = 1200
//	height  = 800
//	padding = 2
//
//	[palette]
//	fills = ["#4e79a7", "#f28e2b"]
//
//	[content]
//	value_mode = "amount"
//	currency   = "EUR"
//
//	[cache]
//	backend = "redis"
//	addr    = "localhost:6379"
//
//	[storage]
//	backend  = "mongo"
//	uri      = "mongodb://localhost:27017"
//	database = "squaremap"
//
//	[server]
//	addr = ":8080"
package config

import (
	"bytes"
	"os"
	"path/filepath"

	"github.com/BurntSushi/toml"

	"github.com/matzehuels/squaremap/pkg/cache"
	"github.com/matzehuels/squaremap/pkg/core/content"
	"github.com/matzehuels/squaremap/pkg/core/palette"
	"github.com/matzehuels/squaremap/pkg/errors"
)

// AppName names the configuration and cache directories.
const AppName = "squaremap"

// Backend names.
const (
	CacheFile  = "file"
	CacheRedis = "redis"
	CacheNone  = "none"

	StorageMemory = "memory"
	StorageFile   = "file"
	StorageMongo  = "mongo"
)

// Defaults for values that have no home in another package.
const (
	DefaultWidth    = 800.0
	DefaultHeight   = 600.0
	DefaultPadding  = 1.0
	DefaultAddr     = ":8080"
	DefaultDatabase = "squaremap"
)

// Config is the full user configuration.
type Config struct {
	Canvas  Canvas         `toml:"canvas"`
	Palette Palette        `toml:"palette"`
	Content content.Config `toml:"content"`
	Cache   Cache          `toml:"cache"`
	Storage Storage        `toml:"storage"`
	Server  Server         `toml:"server"`
}

// Canvas holds the default drawing area in pixels.
type Canvas struct {
	Width   float64 `toml:"width"`
	Height  float64 `toml:"height"`
	Padding float64 `toml:"padding"`
}

// Palette lists hex fill colors. Empty selects the built-in palette.
type Palette struct {
	Fills []string `toml:"fills"`
}

// Cache selects where layouts and artifacts are cached.
type Cache struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"` // file backend; empty selects the XDG cache dir
	Addr     string `toml:"addr"`
	Password string `toml:"password"`
	DB       int    `toml:"db"`
	Prefix   string `toml:"prefix"`
}

// Storage selects where the API server keeps saved layouts.
type Storage struct {
	Backend  string `toml:"backend"`
	Dir      string `toml:"dir"` // file backend
	URI      string `toml:"uri"`
	Database string `toml:"database"`
}

// Server configures the HTTP API.
type Server struct {
	Addr string `toml:"addr"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Canvas:  Canvas{Width: DefaultWidth, Height: DefaultHeight, Padding: DefaultPadding},
		Content: content.DefaultConfig(),
		Cache: Cache{
			Backend: CacheFile,
			Addr:    "localhost:6379",
			Prefix:  cache.DefaultRedisPrefix,
		},
		Storage: Storage{Backend: StorageMemory, Database: DefaultDatabase},
		Server:  Server{Addr: DefaultAddr},
	}
}

// Path returns the configuration file location.
func Path() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, AppName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(home, ".config", AppName, "config.toml"), nil
}

// Load reads the file at path over [Default]. A missing file is not an
// error and yields the defaults. The result is validated.
func Load(path string) (Config, error) {
	cfg := Default()
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return cfg, nil
	}
	if err != nil {
		return Config{}, errors.Wrap(errors.ErrCodeInvalidConfig, err, "read %s", path)
	}
	if err := Decode(data, &cfg); err != nil {
		return Config{}, err
	}
	return cfg, cfg.Validate()
}

// LoadDefault loads the file at [Path].
func LoadDefault() (Config, error) {
	path, err := Path()
	if err != nil {
		return Default(), nil
	}
	return Load(path)
}

// Decode parses TOML data over the values already in cfg. Unknown keys
// are rejected.
func Decode(data []byte, cfg *Config) error {
	md, err := toml.Decode(string(data), cfg)
	if err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "parse config")
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	return nil
}

// Encode renders cfg as TOML.
func Encode(cfg Config) ([]byte, error) {
	var buf bytes.Buffer
	if err := toml.NewEncoder(&buf).Encode(cfg); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Validate checks value ranges and backend names.
func (c Config) Validate() error {
	if err := errors.ValidateCanvas(c.Canvas.Width, c.Canvas.Height, c.Canvas.Padding); err != nil {
		return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[canvas]")
	}
	if len(c.Palette.Fills) > 0 {
		if _, err := palette.New(c.Palette.Fills...); err != nil {
			return errors.Wrap(errors.ErrCodeInvalidConfig, err, "[palette]")
		}
	}
	switch c.Content.ValueMode {
	case "", content.ValuePercent, content.ValueAmount:
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "[content] unknown value_mode %q", c.Content.ValueMode)
	}
	if c.Content.Padding < 0 || c.Content.Decimals < 0 {
		return errors.New(errors.ErrCodeInvalidConfig, "[content] padding and decimals cannot be negative")
	}
	switch c.Cache.Backend {
	case CacheFile, CacheNone:
	case CacheRedis:
		if c.Cache.Addr == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "[cache] redis backend needs addr")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "[cache] unknown backend %q", c.Cache.Backend)
	}
	switch c.Storage.Backend {
	case StorageMemory:
	case StorageFile:
		if c.Storage.Dir == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "[storage] file backend needs dir")
		}
	case StorageMongo:
		if c.Storage.URI == "" || c.Storage.Database == "" {
			return errors.New(errors.ErrCodeInvalidConfig, "[storage] mongo backend needs uri and database")
		}
	default:
		return errors.New(errors.ErrCodeInvalidConfig, "[storage] unknown backend %q", c.Storage.Backend)
	}
	if c.Server.Addr == "" {
		return errors.New(errors.ErrCodeInvalidConfig, "[server] addr cannot be empty")
	}
	return nil
}
