package storage

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/breakpoint"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/document"
	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/observability"
)

// Gateway saves and loads a breakpoint set under one key.
type Gateway struct {
	// Open opens the store for each operation. Required.
	Open Opener
	// Key defaults to [DefaultKey].
	Key string
	// Loader restores documents. Its registry is also used to validate sets
	// before saving.
	Loader document.Loader
	// Logger defaults to a discarding logger.
	Logger *log.Logger
	// Now defaults to time.Now.
	Now func() time.Time
}

// NewGateway returns a gateway over open using the default key.
func NewGateway(open Opener, logger *log.Logger) *Gateway {
	return &Gateway{Open: open, Logger: logger}
}

func (g *Gateway) key() string {
	if g.Key == "" {
		return DefaultKey
	}
	return g.Key
}

func (g *Gateway) logger() *log.Logger {
	if g.Logger == nil {
		return log.New(io.Discard)
	}
	return g.Logger
}

func (g *Gateway) now() time.Time {
	if g.Now == nil {
		return time.Now()
	}
	return g.Now()
}

// Save validates s, encodes it stamped with the current time and writes it.
// It returns the savedAt stamp.
func (g *Gateway) Save(ctx context.Context, s breakpoint.Set) (savedAt time.Time, err error) {
	if err := breakpoint.Validate(s, g.Loader.Registry); err != nil {
		return time.Time{}, err
	}
	savedAt = g.now().UTC().Truncate(time.Second)
	data, err := document.Marshal(s, savedAt)
	if err != nil {
		return time.Time{}, apperr.Wrap(apperr.ErrCodeInternal, err, "encoding layout")
	}

	store, err := g.open(ctx)
	if err != nil {
		return time.Time{}, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = apperr.Wrap(apperr.ErrCodeStorage, cerr, "closing %s store", store.Backend())
		}
	}()

	start := time.Now()
	err = store.Put(ctx, g.key(), data)
	observability.Storage().OnWrite(ctx, store.Backend(), len(data), time.Since(start), err)
	if err != nil {
		return time.Time{}, apperr.Wrap(apperr.ErrCodeStorage, err, "writing layout to %s", store.Backend())
	}
	g.logger().Debug("saved layout", "backend", store.Backend(), "key", g.key(), "bytes", len(data))
	return savedAt, nil
}

// Load reads and restores the stored set. When nothing is stored it returns
// the loader's fallback set and an error wrapping [ErrNotFound]. A rejected
// document also yields the fallback set, with an error wrapping a
// [*document.LoadError]. Dropped and repaired widgets are logged and counted
// but are not errors.
func (g *Gateway) Load(ctx context.Context) (set breakpoint.Set, report *document.Report, err error) {
	store, err := g.open(ctx)
	if err != nil {
		return g.Loader.Default(), &document.Report{}, err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = apperr.Wrap(apperr.ErrCodeStorage, cerr, "closing %s store", store.Backend())
		}
	}()

	start := time.Now()
	data, err := store.Get(ctx, g.key())
	found := !errors.Is(err, ErrNotFound)
	readErr := err
	if !found {
		readErr = nil
	}
	observability.Storage().OnRead(ctx, store.Backend(), len(data), found, time.Since(start), readErr)
	switch {
	case !found:
		return g.Loader.Default(), &document.Report{}, apperr.Wrap(apperr.ErrCodeNotFound, err, "no layout saved under %q", g.key())
	case err != nil:
		return g.Loader.Default(), &document.Report{}, apperr.Wrap(apperr.ErrCodeStorage, err, "reading layout from %s", store.Backend())
	}

	set, report, err = g.Loader.Load(data)
	if err != nil {
		g.logger().Error("stored layout rejected, starting empty", "key", g.key(), "err", err)
		return set, report, err
	}
	for _, w := range report.Warnings {
		observability.Storage().OnLoadWarning(ctx, w.Kind)
		g.logger().Warn(w.Message, "breakpoint", w.Breakpoint, "widget", w.WidgetID, "reason", w.Kind)
	}
	g.logger().Debug("loaded layout", "backend", store.Backend(), "key", g.key(),
		"saved_at", report.SavedAt, "warnings", len(report.Warnings))
	return set, report, nil
}

// Clear deletes the stored set.
func (g *Gateway) Clear(ctx context.Context) (err error) {
	store, err := g.open(ctx)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := store.Close(); cerr != nil && err == nil {
			err = apperr.Wrap(apperr.ErrCodeStorage, cerr, "closing %s store", store.Backend())
		}
	}()
	if err := store.Delete(ctx, g.key()); err != nil {
		return apperr.Wrap(apperr.ErrCodeStorage, err, "deleting layout from %s", store.Backend())
	}
	return nil
}

func (g *Gateway) open(ctx context.Context) (Store, error) {
	if g.Open == nil {
		return nil, apperr.New(apperr.ErrCodeInvalidConfig, "storage gateway has no opener")
	}
	if err := apperr.ValidateStorageKey(g.key()); err != nil {
		return nil, err
	}
	store, err := g.Open(ctx)
	if err != nil {
		return nil, apperr.Wrap(apperr.ErrCodeStorage, err, "opening store")
	}
	return store, nil
}
