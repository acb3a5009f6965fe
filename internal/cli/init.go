package cli

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/config"
	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
)

// initCommand creates the init command.
func (c *CLI) initCommand() *cobra.Command {
	var force bool

	cmd := &cobra.Command{
		Use:   "init",
		Short: "Write a config file and an empty layout",
		Long: `Write a commented config file with the default settings, then store an
empty layout over the configured breakpoints unless one is already stored.

An existing config file is kept unless --force is given. With --force an
existing layout is also replaced by an empty one.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			path, err := resolveConfigPath(c.configPath)
			if err != nil {
				return err
			}
			wrote, err := writeConfigTemplate(path, force)
			if err != nil {
				return err
			}
			if wrote {
				printSuccess("Wrote config")
				printFile(path)
			} else {
				printInfo("Config exists, keeping %s", path)
			}

			cfg, err := c.config()
			if err != nil {
				return err
			}
			gw, err := c.gateway(cfg)
			if err != nil {
				return err
			}
			ctx := cmd.Context()
			_, _, err = gw.Load(ctx)
			switch {
			case err == nil && !force:
				printInfo("A layout is already stored under %q", cfg.Storage.Key)
			case err == nil || apperr.Is(err, apperr.ErrCodeNotFound) || apperr.Is(err, apperr.ErrCodeLoad):
				if _, err := gw.Save(ctx, cfg.BreakpointSet()); err != nil {
					return err
				}
				printSuccess("Stored an empty layout under %q", cfg.Storage.Key)
			default:
				return err
			}

			printNextStep("Add a widget", appName+" add chart")
			return nil
		},
	}

	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing config and layout")
	return cmd
}

// writeConfigTemplate writes the default config to path. It reports false
// without writing when the file exists and force is unset.
func writeConfigTemplate(path string, force bool) (bool, error) {
	if _, err := os.Stat(path); err == nil && !force {
		return false, nil
	} else if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return false, err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return false, fmt.Errorf("create config dir: %w", err)
	}
	if err := os.WriteFile(path, []byte(configTemplate(config.Default())), 0o644); err != nil {
		return false, fmt.Errorf("write config: %w", err)
	}
	return true, nil
}

// configTemplate renders cfg as a commented TOML file.
func configTemplate(cfg config.Config) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s configuration\n\n", appName)

	b.WriteString("# Pixel geometry of the canvas. Column counts come from the breakpoints.\n")
	b.WriteString("[grid]\n")
	fmt.Fprintf(&b, "row_height = %g\n", cfg.Grid.RowHeight)
	fmt.Fprintf(&b, "margin = [%g, %g]\n", cfg.Grid.Margin[0], cfg.Grid.Margin[1])
	fmt.Fprintf(&b, "padding = [%g, %g]\n", cfg.Grid.Padding[0], cfg.Grid.Padding[1])
	fmt.Fprintf(&b, "container_width = %g\n\n", cfg.Grid.ContainerWidth)

	b.WriteString("# Breakpoints, widest first. A container uses the first breakpoint whose\n")
	b.WriteString("# min_width it reaches.\n")
	for _, bp := range cfg.Breakpoints {
		b.WriteString("[[breakpoints]]\n")
		fmt.Fprintf(&b, "name = %q\n", bp.Name)
		fmt.Fprintf(&b, "min_width = %d\n", bp.MinWidth)
		fmt.Fprintf(&b, "columns = %d\n\n", bp.Columns)
	}

	b.WriteString("# Where the layout document is kept: file, memory, badger, redis or mongo.\n")
	b.WriteString("[storage]\n")
	fmt.Fprintf(&b, "backend = %q\n", cfg.Storage.Backend)
	fmt.Fprintf(&b, "key = %q\n", cfg.Storage.Key)
	b.WriteString("# path = \"/var/lib/dashgrid\"\n\n")

	b.WriteString("[storage.redis]\n")
	fmt.Fprintf(&b, "addr = %q\n", cfg.Storage.Redis.Addr)
	fmt.Fprintf(&b, "db = %d\n", cfg.Storage.Redis.DB)
	fmt.Fprintf(&b, "prefix = %q\n", cfg.Storage.Redis.Prefix)
	fmt.Fprintf(&b, "timeout = %q\n\n", cfg.Storage.Redis.Timeout.String())

	b.WriteString("[storage.mongo]\n")
	fmt.Fprintf(&b, "uri = %q\n", cfg.Storage.Mongo.URI)
	fmt.Fprintf(&b, "database = %q\n", cfg.Storage.Mongo.Database)
	fmt.Fprintf(&b, "collection = %q\n", cfg.Storage.Mongo.Collection)
	fmt.Fprintf(&b, "timeout = %q\n\n", cfg.Storage.Mongo.Timeout.String())

	b.WriteString("[server]\n")
	fmt.Fprintf(&b, "addr = %q\n", cfg.Server.Addr)
	fmt.Fprintf(&b, "read_timeout = %q\n", cfg.Server.ReadTimeout.String())
	fmt.Fprintf(&b, "write_timeout = %q\n", cfg.Server.WriteTimeout.String())
	fmt.Fprintf(&b, "shutdown_timeout = %q\n", cfg.Server.ShutdownTimeout.String())
	fmt.Fprintf(&b, "auto_save = %t\n\n", cfg.Server.AutoSave)

	b.WriteString("[log]\n")
	fmt.Fprintf(&b, "level = %q\n", cfg.Log.Level)
	return b.String()
}
