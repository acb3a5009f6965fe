package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/storage"
)

// storageCommand creates the storage management command.
func (c *CLI) storageCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "storage",
		Short: "Inspect and clear the stored layout",
	}

	cmd.AddCommand(c.storagePathCommand())
	cmd.AddCommand(c.storageInfoCommand())
	cmd.AddCommand(c.storageClearCommand())

	return cmd
}

// storagePathCommand creates the "storage path" subcommand.
func (c *CLI) storagePathCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "path",
		Short: "Print where the layout document is stored",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			loc, err := storageLocation(cfg.Storage)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), loc)
			return nil
		},
	}
}

// storageInfoCommand creates the "storage info" subcommand.
func (c *CLI) storageInfoCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Show the configured backend and key",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := c.config()
			if err != nil {
				return err
			}
			loc, err := storageLocation(cfg.Storage)
			if err != nil {
				return err
			}
			printKeyValue("Backend", cfg.Storage.Backend)
			printKeyValue("Key", cfg.Storage.Key)
			printKeyValue("Location", loc)
			return nil
		},
	}
}

// storageClearCommand creates the "storage clear" subcommand.
func (c *CLI) storageClearCommand() *cobra.Command {
	var yes bool

	cmd := &cobra.Command{
		Use:   "clear",
		Short: "Delete the stored layout document",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !yes {
				return usageError("this deletes the stored layout; rerun with --yes")
			}
			cfg, err := c.config()
			if err != nil {
				return err
			}
			gw, err := c.gateway(cfg)
			if err != nil {
				return err
			}
			if err := gw.Clear(cmd.Context()); err != nil {
				return err
			}
			printSuccess("Cleared stored layout %q", cfg.Storage.Key)
			return nil
		},
	}

	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "confirm deletion")
	return cmd
}

// storageLocation describes where a backend keeps the document.
func storageLocation(cfg storage.Config) (string, error) {
	switch cfg.Backend {
	case storage.BackendFile, "":
		dir := cfg.Path
		if dir == "" {
			d, err := storage.DefaultDir()
			if err != nil {
				return "", err
			}
			dir = d
		}
		return storage.FilePath(dir, cfg.Key), nil
	case storage.BackendBadger:
		if cfg.Path == "" {
			return "badger (in memory)", nil
		}
		return "badger " + cfg.Path, nil
	case storage.BackendRedis:
		return fmt.Sprintf("redis://%s/%d %s%s", cfg.Redis.Addr, cfg.Redis.DB, cfg.Redis.Prefix, cfg.Key), nil
	case storage.BackendMongo:
		return fmt.Sprintf("%s %s.%s _id=%s", cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Collection, cfg.Key), nil
	case storage.BackendMemory:
		return "memory", nil
	default:
		return "", fmt.Errorf("unknown storage backend %q", cfg.Backend)
	}
}
