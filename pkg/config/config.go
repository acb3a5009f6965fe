// Package config loads the dashgrid TOML configuration.
//
// A missing file is not an error: every setting has a default that matches
// the dashboard canvas. Example:
//
//	[grid]
//	row_height = 80
//	margin = [16, 16]
//	padding = [16, 16]
//	container_width = 1200
//
//	[[breakpoints]]
//	name = "lg"
//	min_width = 1200
//	columns = 12
//
//	[storage]
//	backend = "badger"
//	path = "/var/lib/dashgrid"
//
//	[server]
//	addr = ":8080"
//
//	[log]
//	level = "debug"
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/charmbracelet/log"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/breakpoint"
	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/grid"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/storage"
)

// appName is the directory name used under the XDG base directories.
const appName = "dashgrid"

// Config is the complete configuration.
type Config struct {
	Grid        Grid                    `toml:"grid"`
	Breakpoints []breakpoint.Breakpoint `toml:"breakpoints" validate:"min=1,unique=Name,dive"`
	Storage     storage.Config          `toml:"storage"`
	Server      Server                  `toml:"server"`
	Log         Log                     `toml:"log"`
}

// Grid is the pixel geometry shared by all breakpoints. The column count
// comes from the active breakpoint.
type Grid struct {
	RowHeight      float64    `toml:"row_height" validate:"gt=0"`
	Margin         [2]float64 `toml:"margin"`
	Padding        [2]float64 `toml:"padding"`
	ContainerWidth float64    `toml:"container_width" validate:"gt=0"`
}

// Spec returns the grid geometry for a breakpoint with the given columns.
func (g Grid) Spec(columns int) grid.Spec {
	return grid.Spec{
		Columns:        columns,
		RowHeight:      g.RowHeight,
		Margin:         g.Margin,
		Padding:        g.Padding,
		ContainerWidth: g.ContainerWidth,
	}
}

// Server configures the HTTP API.
type Server struct {
	Addr            string        `toml:"addr" validate:"required"`
	ReadTimeout     time.Duration `toml:"read_timeout" validate:"gte=0"`
	WriteTimeout    time.Duration `toml:"write_timeout" validate:"gte=0"`
	ShutdownTimeout time.Duration `toml:"shutdown_timeout" validate:"gte=0"`
	// AutoSave persists the layout after every successful mutation.
	AutoSave bool `toml:"auto_save"`
}

// Log configures logging.
type Log struct {
	Level string `toml:"level" validate:"oneof=debug info warn error"`
}

// ParseLevel returns the charm log level for l.Level.
func (l Log) ParseLevel() log.Level {
	lvl, err := log.ParseLevel(l.Level)
	if err != nil {
		return log.InfoLevel
	}
	return lvl
}

// Default returns the built-in configuration.
func Default() Config {
	spec := grid.DefaultSpec(0)
	return Config{
		Grid: Grid{
			RowHeight:      spec.RowHeight,
			Margin:         spec.Margin,
			Padding:        spec.Padding,
			ContainerWidth: spec.ContainerWidth,
		},
		Breakpoints: breakpoint.Defaults(),
		Storage:     storage.DefaultConfig(),
		Server: Server{
			Addr:            "127.0.0.1:8080",
			ReadTimeout:     10 * time.Second,
			WriteTimeout:    10 * time.Second,
			ShutdownTimeout: 5 * time.Second,
		},
		Log: Log{Level: "info"},
	}
}

// DefaultPath returns $XDG_CONFIG_HOME/dashgrid/config.toml, falling back
// to ~/.config/dashgrid/config.toml.
func DefaultPath() (string, error) {
	if dir := os.Getenv("XDG_CONFIG_HOME"); dir != "" {
		return filepath.Join(dir, appName, "config.toml"), nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".config", appName, "config.toml"), nil
}

// Load reads the file at path over the defaults. An empty path uses
// [DefaultPath]; a missing file yields the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		p, err := DefaultPath()
		if err != nil {
			return cfg, nil
		}
		path = p
	}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return cfg, nil
	}
	if err != nil {
		return cfg, apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "read %s", path)
	}
	return Parse(data)
}

// Parse decodes TOML over the defaults and validates the result. A file
// that lists breakpoints replaces the default breakpoints entirely.
func Parse(data []byte) (Config, error) {
	cfg := Default()
	cfg.Breakpoints = nil

	md, err := toml.Decode(string(data), &cfg)
	if err != nil {
		return Default(), apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "parse config")
	}
	if len(cfg.Breakpoints) == 0 {
		cfg.Breakpoints = breakpoint.Defaults()
	}
	if undecoded := md.Undecoded(); len(undecoded) > 0 {
		return Default(), apperr.New(apperr.ErrCodeInvalidConfig, "unknown config key %q", undecoded[0].String())
	}
	if err := cfg.Validate(); err != nil {
		return Default(), err
	}
	return cfg, nil
}

// Validate checks every section.
func (c Config) Validate() error {
	if err := apperr.ValidateStruct(apperr.ErrCodeInvalidConfig, c); err != nil {
		return err
	}
	for _, bp := range c.Breakpoints {
		if err := apperr.ValidateBreakpointName(bp.Name); err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "breakpoints")
		}
	}
	if err := apperr.ValidateStorageKey(c.Storage.Key); err != nil {
		return apperr.Wrap(apperr.ErrCodeInvalidConfig, err, "storage.key")
	}
	switch c.Storage.Backend {
	case storage.BackendRedis:
		if c.Storage.Redis.Addr == "" {
			return apperr.New(apperr.ErrCodeInvalidConfig, "storage.redis.addr is required for the redis backend")
		}
	case storage.BackendMongo:
		if c.Storage.Mongo.URI == "" || c.Storage.Mongo.Database == "" || c.Storage.Mongo.Collection == "" {
			return apperr.New(apperr.ErrCodeInvalidConfig, "storage.mongo needs uri, database and collection")
		}
	}
	return nil
}

// BreakpointSet returns an empty set over the configured breakpoints.
func (c Config) BreakpointSet() breakpoint.Set {
	return breakpoint.NewSet(c.Breakpoints)
}
