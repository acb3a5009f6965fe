package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/go-cmp/cmp"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/breakpoint"
	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/grid"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/storage"
)

func TestDefaultIsValid(t *testing.T) {
	if err := Default().Validate(); err != nil {
		t.Errorf("Default().Validate() error = %v", err)
	}
}

func TestLoadMissingFile(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "absent.toml"))
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if diff := cmp.Diff(Default(), cfg); diff != "" {
		t.Errorf("Load() mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	data := `
[grid]
row_height = 60
margin = [8, 8]

[[breakpoints]]
name = "wide"
min_width = 1000
columns = 12

[[breakpoints]]
name = "narrow"
min_width = 0
columns = 4

[storage]
backend = "redis"
key = "plant-7"

[storage.redis]
addr = "cache:6379"
timeout = "2s"

[server]
addr = ":9090"
auto_save = true

[log]
level = "debug"
`
	if err := os.WriteFile(path, []byte(data), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	want := []breakpoint.Breakpoint{
		{Name: "wide", MinWidth: 1000, Columns: 12},
		{Name: "narrow", MinWidth: 0, Columns: 4},
	}
	if diff := cmp.Diff(want, cfg.Breakpoints); diff != "" {
		t.Errorf("Breakpoints mismatch (-want +got):\n%s", diff)
	}
	if cfg.Grid.RowHeight != 60 || cfg.Grid.Margin != [2]float64{8, 8} {
		t.Errorf("Grid = %+v", cfg.Grid)
	}
	if cfg.Grid.ContainerWidth != grid.DefaultContainerWidth {
		t.Errorf("ContainerWidth = %v, want default kept", cfg.Grid.ContainerWidth)
	}
	if cfg.Storage.Backend != storage.BackendRedis || cfg.Storage.Key != "plant-7" {
		t.Errorf("Storage = %+v", cfg.Storage)
	}
	if cfg.Storage.Redis.Addr != "cache:6379" || cfg.Storage.Redis.Timeout != 2*time.Second {
		t.Errorf("Storage.Redis = %+v", cfg.Storage.Redis)
	}
	if cfg.Storage.Redis.Prefix != "dashgrid:" {
		t.Errorf("Storage.Redis.Prefix = %q, want default kept", cfg.Storage.Redis.Prefix)
	}
	if !cfg.Server.AutoSave || cfg.Server.Addr != ":9090" {
		t.Errorf("Server = %+v", cfg.Server)
	}
	if cfg.Log.ParseLevel() != log.DebugLevel {
		t.Errorf("ParseLevel() = %v", cfg.Log.ParseLevel())
	}
	if diff := cmp.Diff([]string{"wide", "narrow"}, cfg.BreakpointSet().Names()); diff != "" {
		t.Errorf("BreakpointSet() names mismatch (-want +got):\n%s", diff)
	}
}

func TestParseInvalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"bad toml", `[grid`},
		{"unknown key", "[grid]\nrow_hieght = 60"},
		{"zero columns", "[[breakpoints]]\nname = \"lg\"\ncolumns = 0"},
		{"duplicate breakpoint", "[[breakpoints]]\nname = \"lg\"\ncolumns = 12\n[[breakpoints]]\nname = \"lg\"\ncolumns = 6"},
		{"bad breakpoint name", "[[breakpoints]]\nname = \"Large Screen\"\ncolumns = 12"},
		{"unknown backend", "[storage]\nbackend = \"floppy\""},
		{"bad key", "[storage]\nkey = \"../etc\""},
		{"redis without addr", "[storage]\nbackend = \"redis\"\n[storage.redis]\naddr = \"\""},
		{"bad level", "[log]\nlevel = \"loud\""},
		{"negative row height", "[grid]\nrow_height = -1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg, err := Parse([]byte(tt.data))
			if !apperr.Is(err, apperr.ErrCodeInvalidConfig) {
				t.Errorf("Parse() error = %v, want INVALID_CONFIG", err)
			}
			if diff := cmp.Diff(Default(), cfg); diff != "" {
				t.Errorf("Parse() should return defaults on error (-want +got):\n%s", diff)
			}
		})
	}
}

func TestGridSpec(t *testing.T) {
	spec := Default().Grid.Spec(12)
	if spec != grid.DefaultSpec(12) {
		t.Errorf("Spec(12) = %+v, want %+v", spec, grid.DefaultSpec(12))
	}
}

func TestDefaultPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/tmp/cfg")
	path, err := DefaultPath()
	if err != nil {
		t.Fatal(err)
	}
	if path != "/tmp/cfg/dashgrid/config.toml" {
		t.Errorf("DefaultPath() = %s", path)
	}
}
