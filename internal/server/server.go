// Package server exposes an editing session over HTTP for the dashboard
// renderer.
//
// All requests share one [editor.Editor]. Engine access is serialised by a
// single mutex, so the layout is only ever changed by one request at a
// time. Rejected moves and resizes are answered with 200 and outcome
// "rejected"; the renderer snaps the widget back to its previous rect.
package server

import (
	"context"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/config"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/editor"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/observability"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/widget"
)

const maxBodySize = 8 << 20

// Options configures a Server.
type Options struct {
	// Catalog lists the widget types offered to the renderer. Defaults to
	// [widget.DefaultCatalog].
	Catalog *widget.Catalog
	// Logger defaults to a discarding logger.
	Logger *log.Logger
	// AutoSave persists the set after every successful mutation.
	AutoSave bool
}

// Server serves one editing session.
type Server struct {
	mu       sync.Mutex
	ed       *editor.Editor
	catalog  *widget.Catalog
	logger   *log.Logger
	autoSave bool
}

// New returns a server over ed.
func New(ed *editor.Editor, opts Options) *Server {
	s := &Server{
		ed:       ed,
		catalog:  opts.Catalog,
		logger:   opts.Logger,
		autoSave: opts.AutoSave,
	}
	if s.catalog == nil {
		s.catalog = widget.DefaultCatalog()
	}
	if s.logger == nil {
		s.logger = log.New(io.Discard)
	}
	return s
}

// Handler returns the routed API.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(s.observe)

	r.Get("/healthz", s.health)
	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Get("/widget-types", s.widgetTypes)
		r.Get("/resolve", s.resolve)
		r.Post("/save", s.save)
		r.Post("/load", s.load)
		r.Get("/export", s.export)
		r.Post("/import", s.importDocument)

		r.Get("/layouts", s.listLayouts)
		r.Get("/layouts/{bp}", s.getLayout)
		r.Post("/layouts/{bp}/reflow", s.reflow)
		r.Post("/layouts/{bp}/widgets", s.addWidget)
		r.Put("/layouts/{bp}/widgets/reorder", s.reorder) // must be before /{id}
		r.Put("/layouts/{bp}/widgets/{id}", s.updateWidget)
		r.Delete("/layouts/{bp}/widgets/{id}", s.deleteWidget)
		r.Post("/layouts/{bp}/widgets/{id}/move", s.moveWidget)
		r.Post("/layouts/{bp}/widgets/{id}/resize", s.resizeWidget)
	})
	return r
}

// observe logs each request and reports it to the HTTP hooks under its
// route pattern.
func (s *Server) observe(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
		next.ServeHTTP(ww, r)

		route := r.URL.Path
		if rctx := chi.RouteContext(r.Context()); rctx != nil {
			if p := rctx.RoutePattern(); p != "" {
				route = p
			}
		}
		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		elapsed := time.Since(start)
		observability.HTTP().OnRequest(r.Context(), r.Method, route, status, elapsed)
		s.logger.Debug("request",
			"method", r.Method,
			"route", route,
			"status", status,
			"duration", elapsed,
			"request_id", middleware.GetReqID(r.Context()))
	})
}

// ListenAndServe serves h on cfg.Addr until ctx is cancelled, then shuts
// down gracefully within cfg.ShutdownTimeout.
func ListenAndServe(ctx context.Context, cfg config.Server, h http.Handler, logger *log.Logger) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      h,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", "addr", cfg.Addr)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	timeout := cfg.ShutdownTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	shutdownCtx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()
	logger.Info("shutting down")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}
