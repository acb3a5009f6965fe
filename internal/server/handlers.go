package server

import (
	"bytes"
	"context"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/breakpoint"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/document"
	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/grid"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/layout"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/widget"
)

// LayoutResponse is one breakpoint and its widgets in list order.
type LayoutResponse struct {
	Breakpoint breakpoint.Breakpoint `json:"breakpoint"`
	Rows       int                   `json:"rows"`
	Widgets    []widget.Widget       `json:"widgets"`
}

// SessionResponse is the whole set plus session state.
type SessionResponse struct {
	Active      string           `json:"active"`
	Dirty       bool             `json:"dirty"`
	SavedAt     *time.Time       `json:"savedAt,omitempty"`
	Breakpoints []LayoutResponse `json:"breakpoints"`
}

// MutationResponse reports the result of a move or resize. A rejected
// outcome carries the widget at its unchanged rect.
type MutationResponse struct {
	Widget  widget.Widget `json:"widget"`
	Outcome string        `json:"outcome"`
}

type addRequest struct {
	Kind   string        `json:"kind" validate:"required"`
	Title  string        `json:"title" validate:"max=120"`
	Size   *grid.Size    `json:"size"`
	Config widget.Config `json:"config"`
}

// Row bounds below mirror grid.MaxRows.
type moveRequest struct {
	DX *float64 `json:"dx"`
	DY *float64 `json:"dy"`
	X  *int     `json:"x" validate:"omitempty,gte=0"`
	Y  *int     `json:"y" validate:"omitempty,gte=0,lt=10000"`
}

type resizeRequest struct {
	DX *float64 `json:"dx"`
	DY *float64 `json:"dy"`
	W  *int     `json:"w" validate:"omitempty,gte=1"`
	H  *int     `json:"h" validate:"omitempty,gte=1,lte=10000"`
}

type updateRequest struct {
	Title  *string       `json:"title" validate:"omitempty,max=120"`
	Config widget.Config `json:"config"`
}

type reorderRequest struct {
	ActiveID string `json:"activeId" validate:"required"`
	OverID   string `json:"overId" validate:"required"`
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *Server) widgetTypes(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, s.logger, http.StatusOK, s.catalog.Templates())
}

func (s *Server) resolve(w http.ResponseWriter, r *http.Request) {
	width, err := strconv.ParseFloat(r.URL.Query().Get("width"), 64)
	if err != nil || width < 0 {
		s.writeError(w, r, apperr.New(apperr.ErrCodeInvalidInput, "width must be a non-negative number"))
		return
	}
	s.mu.Lock()
	bp := s.ed.ResolveWidth(width)
	s.mu.Unlock()
	writeJSON(w, s.logger, http.StatusOK, bp)
}

func (s *Server) listLayouts(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp := s.session()
	s.mu.Unlock()
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) getLayout(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	resp, err := s.layout(chi.URLParam(r, "bp"))
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) addWidget(w http.ResponseWriter, r *http.Request) {
	var req addRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	d := layout.Draft{Kind: widget.Kind(req.Kind), Title: req.Title, Config: req.Config}
	if req.Size != nil {
		d.Size = *req.Size
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	added, err := s.ed.Add(chi.URLParam(r, "bp"), d)
	if err == nil {
		err = s.autoSaveLocked(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusCreated, added)
}

func (s *Server) moveWidget(w http.ResponseWriter, r *http.Request) {
	id, ok := s.widgetID(w, r)
	if !ok {
		return
	}
	var req moveRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	pixel := req.DX != nil || req.DY != nil
	cell := req.X != nil && req.Y != nil
	if pixel == cell || (!cell && (req.X != nil || req.Y != nil)) {
		s.writeError(w, r, apperr.New(apperr.ErrCodeInvalidInput, "give either dx/dy or both x and y"))
		return
	}

	bp := chi.URLParam(r, "bp")
	s.relocate(w, r, func() (widget.Widget, layout.Outcome, error) {
		if cell {
			return s.ed.MoveTo(bp, id, grid.Point{X: *req.X, Y: *req.Y})
		}
		return s.ed.Move(bp, id, grid.PixelDelta{DX: deref(req.DX), DY: deref(req.DY)})
	})
}

func (s *Server) resizeWidget(w http.ResponseWriter, r *http.Request) {
	id, ok := s.widgetID(w, r)
	if !ok {
		return
	}
	var req resizeRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	pixel := req.DX != nil || req.DY != nil
	cell := req.W != nil && req.H != nil
	if pixel == cell || (!cell && (req.W != nil || req.H != nil)) {
		s.writeError(w, r, apperr.New(apperr.ErrCodeInvalidInput, "give either dx/dy or both w and h"))
		return
	}

	bp := chi.URLParam(r, "bp")
	s.relocate(w, r, func() (widget.Widget, layout.Outcome, error) {
		if cell {
			return s.ed.ResizeTo(bp, id, grid.Size{W: *req.W, H: *req.H})
		}
		return s.ed.Resize(bp, id, grid.PixelDelta{DX: deref(req.DX), DY: deref(req.DY)})
	})
}

// relocate runs a move or resize under the lock. Only an applied outcome
// triggers an auto-save.
func (s *Server) relocate(w http.ResponseWriter, r *http.Request, fn func() (widget.Widget, layout.Outcome, error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	moved, outcome, err := fn()
	if err == nil && outcome == layout.Applied {
		err = s.autoSaveLocked(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, MutationResponse{Widget: moved, Outcome: outcome.String()})
}

func (s *Server) updateWidget(w http.ResponseWriter, r *http.Request) {
	id, ok := s.widgetID(w, r)
	if !ok {
		return
	}
	var req updateRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	if req.Title == nil && req.Config == nil {
		s.writeError(w, r, apperr.New(apperr.ErrCodeInvalidInput, "nothing to update"))
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	updated, err := s.ed.Update(chi.URLParam(r, "bp"), id, req.Title, req.Config)
	if err == nil {
		err = s.autoSaveLocked(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, updated)
}

func (s *Server) deleteWidget(w http.ResponseWriter, r *http.Request) {
	id, ok := s.widgetID(w, r)
	if !ok {
		return
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.ed.Delete(chi.URLParam(r, "bp"), id)
	if err == nil {
		err = s.autoSaveLocked(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) reorder(w http.ResponseWriter, r *http.Request) {
	var req reorderRequest
	if err := decode(r, &req); err != nil {
		s.writeError(w, r, err)
		return
	}
	bp := chi.URLParam(r, "bp")

	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.ed.Reorder(bp, req.ActiveID, req.OverID)
	if err == nil {
		err = s.autoSaveLocked(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	resp, err := s.layout(bp)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, resp)
}

func (s *Server) reflow(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	err := s.ed.Reflow(chi.URLParam(r, "bp"))
	if err == nil {
		err = s.autoSaveLocked(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, s.session())
}

func (s *Server) save(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	savedAt, err := s.ed.Save(r.Context())
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, map[string]time.Time{"savedAt": savedAt})
}

func (s *Server) load(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	report, err := s.ed.Reload(r.Context())
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, report)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request) {
	var buf bytes.Buffer
	s.mu.Lock()
	err := s.ed.Export(&buf)
	s.mu.Unlock()
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Header().Set("Content-Disposition", `attachment; filename="`+document.ExportFileName(time.Now())+`"`)
	if _, err := w.Write(buf.Bytes()); err != nil {
		s.logger.Error("failed to write export", "error", err)
	}
}

func (s *Server) importDocument(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	defer s.mu.Unlock()
	report, err := s.ed.Import(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err == nil {
		err = s.autoSaveLocked(r.Context())
	}
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, s.logger, http.StatusOK, report)
}

// autoSaveLocked persists the set when auto-save is on. The mutation is
// kept in the session when the save fails. Callers hold s.mu.
func (s *Server) autoSaveLocked(ctx context.Context) error {
	if !s.autoSave {
		return nil
	}
	_, err := s.ed.Save(ctx)
	return err
}

func (s *Server) widgetID(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := chi.URLParam(r, "id")
	if err := apperr.ValidateWidgetID(id); err != nil {
		s.writeError(w, r, err)
		return "", false
	}
	return id, true
}

// session snapshots the set. Callers hold s.mu.
func (s *Server) session() SessionResponse {
	set := s.ed.Set()
	resp := SessionResponse{
		Active:      s.ed.Active().Name,
		Dirty:       s.ed.Dirty(),
		Breakpoints: make([]LayoutResponse, 0, len(set.Breakpoints)),
	}
	if at := s.ed.SavedAt(); !at.IsZero() {
		resp.SavedAt = &at
	}
	for _, bp := range set.Breakpoints {
		l, err := set.Layout(bp.Name)
		if err != nil {
			continue
		}
		resp.Breakpoints = append(resp.Breakpoints, layoutResponse(bp, l))
	}
	return resp
}

// layout snapshots one breakpoint. Callers hold s.mu.
func (s *Server) layout(name string) (LayoutResponse, error) {
	set := s.ed.Set()
	bp, ok := set.Lookup(name)
	if !ok {
		return LayoutResponse{}, apperr.Wrap(apperr.ErrCodeNotFound, breakpoint.ErrUnknownBreakpoint, "breakpoint %q", name)
	}
	l, err := set.Layout(name)
	if err != nil {
		return LayoutResponse{}, err
	}
	return layoutResponse(bp, l), nil
}

func layoutResponse(bp breakpoint.Breakpoint, l layout.Layout) LayoutResponse {
	widgets := l.Widgets
	if widgets == nil {
		widgets = []widget.Widget{}
	}
	return LayoutResponse{Breakpoint: bp, Rows: l.Rows(), Widgets: widgets}
}

func deref(f *float64) float64 {
	if f == nil {
		return 0
	}
	return *f
}
