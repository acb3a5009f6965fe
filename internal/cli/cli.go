package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/log"
	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/buildinfo"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/config"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/document"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/editor"
	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/storage"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/widget"
)

// =============================================================================
// Constants
// =============================================================================

const (
	// appName is the application name used for directories and display.
	appName = "dashgrid"

	// configEnv overrides the config file location when --config is unset.
	configEnv = "DASHGRID_CONFIG"
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

	// Opener replaces the storage backend from the config file.
	Opener storage.Opener
	// IDGenerator replaces the uuid-based widget id source.
	IDGenerator func() string

	configPath string
	breakpoint string
	verbose    bool
	cfg        config.Config
	loaded     bool
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
		Use:   appName,
		Short: "dashgrid arranges dashboard widgets on a responsive grid",
		Long: `dashgrid edits the widget layout of the plant dashboard. Widgets are
placed on a column grid per breakpoint without overlapping, moved and resized
cell by cell, and saved as one layout document.`,
		Version:      buildinfo.Version,
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			level := LogInfo
			if c.verbose {
				level = LogDebug
			}
			c.SetLogLevel(level)
			cmd.SetContext(withLogger(cmd.Context(), c.Logger))
			return nil
		},
	}

	root.SetVersionTemplate(buildinfo.Template())
	root.PersistentFlags().StringVarP(&c.configPath, "config", "c", "", "config file (default $"+configEnv+" or the XDG config dir)")
	root.PersistentFlags().StringVarP(&c.breakpoint, "breakpoint", "b", "", "breakpoint to edit (default the widest)")
	root.PersistentFlags().BoolVarP(&c.verbose, "verbose", "v", false, "enable debug logging")

	root.AddCommand(c.initCommand())
	root.AddCommand(c.addCommand())
	root.AddCommand(c.moveCommand())
	root.AddCommand(c.resizeCommand())
	root.AddCommand(c.updateCommand())
	root.AddCommand(c.deleteCommand())
	root.AddCommand(c.reorderCommand())
	root.AddCommand(c.reflowCommand())
	root.AddCommand(c.showCommand())
	root.AddCommand(c.exportCommand())
	root.AddCommand(c.importCommand())
	root.AddCommand(c.widgetsCommand())
	root.AddCommand(c.serveCommand())
	root.AddCommand(c.editCommand())
	root.AddCommand(c.storageCommand())
	root.AddCommand(c.versionCommand())
	root.AddCommand(c.completionCommand())

	return root
}

// =============================================================================
// Config & Session
// =============================================================================

// config loads the config file once per invocation.
func (c *CLI) config() (config.Config, error) {
	if c.loaded {
		return c.cfg, nil
	}
	path, err := resolveConfigPath(c.configPath)
	if err != nil {
		return config.Default(), err
	}
	cfg, err := config.Load(path)
	if err != nil {
		return cfg, err
	}
	c.Logger.Debug("config loaded", "path", path, "backend", cfg.Storage.Backend)
	c.cfg, c.loaded = cfg, true
	return cfg, nil
}

// resolveConfigPath picks the flag value, then $DASHGRID_CONFIG, then the
// XDG default.
func resolveConfigPath(flag string) (string, error) {
	if flag != "" {
		return flag, nil
	}
	if env := os.Getenv(configEnv); env != "" {
		return env, nil
	}
	return config.DefaultPath()
}

// gateway builds the storage gateway for the configured backend.
func (c *CLI) gateway(cfg config.Config) (*storage.Gateway, error) {
	open := c.Opener
	if open == nil {
		var err error
		if open, err = storage.NewOpener(cfg.Storage); err != nil {
			return nil, err
		}
	}
	gw := storage.NewGateway(open, c.Logger)
	gw.Key = cfg.Storage.Key
	gw.Loader = document.Loader{Registry: widget.DefaultCatalog(), Fallback: cfg.Breakpoints}
	return gw, nil
}

// openEditor opens an editor over the stored layout without printing
// anything. A rejected document yields an empty editor and the load error.
func (c *CLI) openEditor(ctx context.Context) (*editor.Editor, *document.Report, error) {
	cfg, err := c.config()
	if err != nil {
		return nil, nil, err
	}
	gw, err := c.gateway(cfg)
	if err != nil {
		return nil, nil, err
	}

	newID := c.IDGenerator
	if newID == nil {
		newID = uuid.NewString
	}
	var spin *Spinner
	if remoteBackend(cfg.Storage.Backend) && c.Opener == nil {
		spin = newSpinnerWithContext(ctx, os.Stderr, "Loading layout from "+cfg.Storage.Backend+"...")
		spin.Start()
	}
	ed, report, err := editor.Open(ctx, editor.Options{
		Registry:    widget.DefaultCatalog(),
		Spec:        cfg.Grid.Spec(0),
		Gateway:     gw,
		Logger:      c.Logger,
		IDGenerator: newID,
	})
	if spin != nil {
		spin.Stop()
	}
	return ed, report, err
}

// session opens an editor over the stored layout and selects the
// --breakpoint one. A rejected document is reported and the session starts
// from an empty set.
func (c *CLI) session(ctx context.Context) (*editor.Editor, error) {
	ed, report, err := c.openEditor(ctx)
	switch {
	case ed != nil && apperr.Is(err, apperr.ErrCodeLoad):
		printWarning("Stored layout was rejected, starting empty")
		printLoadProblems(err)
	case err != nil:
		return nil, err
	}
	printReport(report)

	if c.breakpoint != "" {
		if err := ed.SetActive(c.breakpoint); err != nil {
			return nil, err
		}
	}
	return ed, nil
}

// remoteBackend reports whether loading goes over the network.
func remoteBackend(backend string) bool {
	return backend == storage.BackendRedis || backend == storage.BackendMongo
}

// commit saves the session after a mutating command.
func (c *CLI) commit(ctx context.Context, ed *editor.Editor) error {
	if !ed.Dirty() {
		return nil
	}
	sw := startStopwatch(loggerFromContext(ctx))
	savedAt, err := ed.Save(ctx)
	if err != nil {
		return err
	}
	sw.done("Saved layout", "at", savedAt.Format(time.RFC3339))
	return nil
}

// printReport lists the widgets dropped or repaired while loading.
func printReport(report *document.Report) {
	if report == nil {
		return
	}
	for _, w := range report.Warnings {
		printWarning("%s: %s", w.Breakpoint, w.Message)
	}
}

// printLoadProblems lists what made a document unloadable.
func printLoadProblems(err error) {
	var le *document.LoadError
	if !errors.As(err, &le) {
		return
	}
	for _, p := range le.Problems {
		printDetail("%s", p)
	}
}

// usageError marks a bad command line.
func usageError(format string, args ...any) error {
	return apperr.New(apperr.ErrCodeInvalidInput, format, args...)
}
