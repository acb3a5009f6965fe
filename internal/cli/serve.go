package cli

import (
	"github.com/spf13/cobra"

	"github.com/shaikhimroz/new-nfm-sub000/internal/server"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/widget"
)

// serveCommand creates the serve command running the HTTP API.
func (c *CLI) serveCommand() *cobra.Command {
	var (
		addr     string
		autoSave bool
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the layout API for the dashboard renderer",
		Long: `Serve the layout API for the dashboard renderer.

The stored layout is loaded once at start-up and edited in memory. Changes are
persisted by POST /api/save, or after every change with --auto-save. The
server stops gracefully on interrupt.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := c.config()
			if err != nil {
				return err
			}
			if cmd.Flags().Changed("addr") {
				cfg.Server.Addr = addr
			}
			if cmd.Flags().Changed("auto-save") {
				cfg.Server.AutoSave = autoSave
			}

			ed, err := c.session(ctx)
			if err != nil {
				return err
			}
			srv := server.New(ed, server.Options{
				Catalog:  widget.DefaultCatalog(),
				Logger:   c.Logger,
				AutoSave: cfg.Server.AutoSave,
			})

			printInfo("Serving %s on %s", cfg.Storage.Key, StyleHighlight.Render("http://"+cfg.Server.Addr))
			if err := server.ListenAndServe(ctx, cfg.Server, srv.Handler(), c.Logger); err != nil {
				return err
			}
			if ed.Dirty() {
				printWarning("Stopped with unsaved changes")
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&addr, "addr", "", "listen address (default from config)")
	cmd.Flags().BoolVar(&autoSave, "auto-save", false, "save after every change")
	return cmd
}
