// Package cli implements the dashgrid command-line interface.
//
// Every command works on the layout document named by the config file. A
// mutating command loads the document through the storage gateway, applies
// one operation and saves it again. The CLI is built using cobra and
// supports verbose logging via the charmbracelet/log library.
//
// # Commands
//
// The main commands are:
//   - add, move, resize, update, delete, reorder, reflow: edit one breakpoint
//   - show, widgets: print the layout and the widget library
//   - export, import: exchange layout documents as files
//   - serve: run the HTTP API for the dashboard renderer
//   - edit: interactive terminal editor
//
// # Logging
//
// Every command accepts --verbose (-v) for debug-level logging. The logger
// travels in the command's context; saves report their elapsed time.
//
// # Example
//
//	import "github.com/shaikhimroz/new-nfm-sub000/internal/cli"
//
//	func main() {
//	    if err := cli.Execute(ctx, os.Stderr, os.Args[1:]); err != nil {
//	        os.Exit(1)
//	    }
//	}
package cli

import (
	"context"
	"io"
	"time"

	"github.com/charmbracelet/log"
)

// newLogger returns the CLI logger. Records carry a wall-clock timestamp
// and the app name as prefix.
func newLogger(w io.Writer, level log.Level) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.TimeOnly,
		Prefix:          appName,
		Level:           level,
	})
}

// stopwatch times one storage round trip.
type stopwatch struct {
	logger *log.Logger
	start  time.Time
}

func startStopwatch(l *log.Logger) stopwatch {
	return stopwatch{logger: l, start: time.Now()}
}

// done logs msg at info level with the elapsed time appended to keyvals.
func (s stopwatch) done(msg string, keyvals ...any) {
	elapsed := time.Since(s.start).Round(time.Millisecond)
	s.logger.Info(msg, append(keyvals, "elapsed", elapsed)...)
}

type loggerKey struct{}

func withLogger(ctx context.Context, l *log.Logger) context.Context {
	return context.WithValue(ctx, loggerKey{}, l)
}

// loggerFromContext returns the logger attached by the root command, or
// log.Default outside a command.
func loggerFromContext(ctx context.Context) *log.Logger {
	if l, ok := ctx.Value(loggerKey{}).(*log.Logger); ok {
		return l
	}
	return log.Default()
}
