// Package editor runs a single-user editing session over a breakpoint set.
//
// An [Editor] owns the set, remembers the active breakpoint and applies
// layout operations to one breakpoint at a time:
//
//   - Moves, resizes and reorders touch only the named breakpoint.
//   - Adds, deletes, retitles and reconfigures are propagated to every other
//     breakpoint so that all breakpoints keep the same widgets.
//
// Nothing is persisted until [Editor.Save] is called.
//
// An Editor is not safe for concurrent use. The HTTP server serialises
// access with its own mutex.
package editor

import (
	"context"
	"errors"
	"io"
	"time"

	"github.com/charmbracelet/log"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/breakpoint"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/document"
	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/grid"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/layout"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/storage"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/widget"
)

// Options configures an Editor. Zero values fall back to defaults.
type Options struct {
	// Registry supplies widget sizes, titles and configs.
	Registry widget.Registry
	// Spec is the pixel geometry of the canvas. Its column count is
	// replaced by the breakpoint's.
	Spec grid.Spec
	// Gateway persists the set. Save and Reload fail without one.
	Gateway *storage.Gateway
	// Logger defaults to a discarding logger.
	Logger *log.Logger
	// IDGenerator replaces the uuid-based widget id source.
	IDGenerator func() string
	// Now defaults to time.Now.
	Now func() time.Time
}

// Editor is an editing session.
type Editor struct {
	set     breakpoint.Set
	active  string
	reg     widget.Registry
	spec    grid.Spec
	gateway *storage.Gateway
	logger  *log.Logger
	newID   func() string
	now     func() time.Time
	dirty   bool
	savedAt time.Time
}

// New starts a session over a copy of set with the widest breakpoint
// active.
func New(set breakpoint.Set, opts Options) *Editor {
	e := &Editor{
		set:     set.Clone(),
		reg:     opts.Registry,
		spec:    opts.Spec,
		gateway: opts.Gateway,
		logger:  opts.Logger,
		newID:   opts.IDGenerator,
		now:     opts.Now,
	}
	if e.reg == nil {
		e.reg = widget.DefaultCatalog()
	}
	if e.spec.RowHeight == 0 && e.spec.ContainerWidth == 0 {
		e.spec = grid.DefaultSpec(0)
	}
	if e.logger == nil {
		e.logger = log.New(io.Discard)
	}
	if e.now == nil {
		e.now = time.Now
	}
	e.active = e.set.Widest().Name
	return e
}

// Open starts a session from the gateway's stored set. When nothing is
// stored the session starts from the gateway loader's empty set and no
// error is returned. A rejected document also starts an empty session, and
// the load error is returned alongside it.
func Open(ctx context.Context, opts Options) (*Editor, *document.Report, error) {
	if opts.Gateway == nil {
		return nil, nil, apperr.New(apperr.ErrCodeInvalidConfig, "editor has no storage gateway")
	}
	set, report, err := opts.Gateway.Load(ctx)
	e := New(set, opts)
	switch {
	case errors.Is(err, storage.ErrNotFound):
		e.logger.Info("no saved layout, starting empty")
		return e, report, nil
	case err != nil:
		return e, report, err
	}
	e.savedAt = report.SavedAt
	return e, report, nil
}

// Set returns a copy of the whole breakpoint set.
func (e *Editor) Set() breakpoint.Set { return e.set.Clone() }

// Active returns the active breakpoint.
func (e *Editor) Active() breakpoint.Breakpoint {
	bp, _ := e.set.Lookup(e.active)
	return bp
}

// SetActive makes name the active breakpoint.
func (e *Editor) SetActive(name string) error {
	if _, ok := e.set.Lookup(name); !ok {
		return apperr.Wrap(apperr.ErrCodeNotFound, breakpoint.ErrUnknownBreakpoint, "breakpoint %q", name)
	}
	e.active = name
	return nil
}

// ResolveWidth activates the breakpoint for a container of the given pixel
// width and returns it. The canvas width used for drag conversion follows.
func (e *Editor) ResolveWidth(width float64) breakpoint.Breakpoint {
	bp := e.set.Resolve(width)
	if bp.Name != "" {
		e.active = bp.Name
	}
	if width > 0 {
		e.spec.ContainerWidth = width
	}
	return bp
}

// Spec returns the pixel geometry of the named breakpoint. An empty name
// means the active breakpoint.
func (e *Editor) Spec(name string) grid.Spec {
	bp, _ := e.set.Lookup(e.resolve(name))
	return e.spec.WithColumns(bp.Columns)
}

// Layout returns a copy of the named breakpoint's layout. An empty name
// means the active breakpoint.
func (e *Editor) Layout(name string) (layout.Layout, error) {
	return e.set.Layout(e.resolve(name))
}

// Registry returns the widget registry in use.
func (e *Editor) Registry() widget.Registry { return e.reg }

// Dirty reports whether the set changed since it was last saved or loaded.
func (e *Editor) Dirty() bool { return e.dirty }

// SavedAt returns the stamp of the last save or load. It is zero for a
// session that was never persisted.
func (e *Editor) SavedAt() time.Time { return e.savedAt }

func (e *Editor) resolve(name string) string {
	if name == "" {
		return e.active
	}
	return name
}

// mutate runs fn against a mutator over the named layout and stores the
// result. With propagate set the change is synced to every other
// breakpoint. Nothing is stored when fn fails.
func (e *Editor) mutate(name string, propagate bool, fn func(m *layout.Mutator) error) error {
	name = e.resolve(name)
	l, err := e.set.Layout(name)
	if err != nil {
		return err
	}
	m := layout.NewMutator(l, e.reg,
		layout.WithSpec(e.spec.WithColumns(l.Columns)),
		layout.WithIDGenerator(e.newID))
	if err := fn(m); err != nil {
		return err
	}

	next := e.set.Clone()
	if err := next.Put(name, m.Snapshot()); err != nil {
		return err
	}
	if propagate {
		next, err = breakpoint.Sync(next, name, e.reg)
		if err != nil {
			return err
		}
	}
	e.set = next
	e.dirty = true
	return nil
}

// Add places a new widget of kind on the named breakpoint and on every
// other breakpoint.
func (e *Editor) Add(bp string, d layout.Draft) (widget.Widget, error) {
	if d.Title != "" {
		if err := apperr.ValidateTitle(d.Title); err != nil {
			return widget.Widget{}, err
		}
	}
	var added widget.Widget
	err := e.mutate(bp, true, func(m *layout.Mutator) error {
		var err error
		added, err = m.AddDraft(d)
		return err
	})
	if err != nil {
		return widget.Widget{}, err
	}
	e.logger.Debug("added widget", "breakpoint", e.resolve(bp), "id", added.ID, "kind", added.Kind, "rect", added.Rect)
	return added, nil
}

// Move applies a drag displacement to a widget on the named breakpoint.
func (e *Editor) Move(bp, id string, delta grid.PixelDelta) (widget.Widget, layout.Outcome, error) {
	return e.relocate(bp, "move", id, func(m *layout.Mutator) (widget.Widget, layout.Outcome, error) {
		return m.Move(id, delta)
	})
}

// MoveBy moves a widget by whole cells.
func (e *Editor) MoveBy(bp, id string, dCols, dRows int) (widget.Widget, layout.Outcome, error) {
	return e.relocate(bp, "move", id, func(m *layout.Mutator) (widget.Widget, layout.Outcome, error) {
		return m.MoveBy(id, dCols, dRows)
	})
}

// MoveTo moves a widget so its top-left cell is p.
func (e *Editor) MoveTo(bp, id string, p grid.Point) (widget.Widget, layout.Outcome, error) {
	return e.relocate(bp, "move", id, func(m *layout.Mutator) (widget.Widget, layout.Outcome, error) {
		return m.MoveTo(id, p)
	})
}

// Resize applies a drag displacement of the resize handle.
func (e *Editor) Resize(bp, id string, delta grid.PixelDelta) (widget.Widget, layout.Outcome, error) {
	return e.relocate(bp, "resize", id, func(m *layout.Mutator) (widget.Widget, layout.Outcome, error) {
		return m.Resize(id, delta)
	})
}

// ResizeTo sets a widget's span.
func (e *Editor) ResizeTo(bp, id string, size grid.Size) (widget.Widget, layout.Outcome, error) {
	return e.relocate(bp, "resize", id, func(m *layout.Mutator) (widget.Widget, layout.Outcome, error) {
		return m.ResizeTo(id, size)
	})
}

func (e *Editor) relocate(bp, op, id string, fn func(m *layout.Mutator) (widget.Widget, layout.Outcome, error)) (widget.Widget, layout.Outcome, error) {
	var (
		w       widget.Widget
		outcome layout.Outcome
	)
	err := e.mutate(bp, false, func(m *layout.Mutator) error {
		var err error
		w, outcome, err = fn(m)
		if err == nil && outcome != layout.Applied {
			return errUnchanged
		}
		return err
	})
	if errors.Is(err, errUnchanged) {
		err = nil
	}
	if err != nil {
		return widget.Widget{}, layout.Unchanged, err
	}
	e.logger.Debug(op, "breakpoint", e.resolve(bp), "id", id, "outcome", outcome, "rect", w.Rect)
	return w, outcome, nil
}

// errUnchanged aborts a mutation that did not change the layout, so the
// session is not marked dirty.
var errUnchanged = errors.New("unchanged")

// Delete removes a widget from every breakpoint. The remaining widgets keep
// their positions.
func (e *Editor) Delete(bp, id string) error {
	if err := e.mutate(bp, true, func(m *layout.Mutator) error { return m.Delete(id) }); err != nil {
		return err
	}
	e.logger.Debug("deleted widget", "id", id)
	return nil
}

// Reorder moves the active widget to the list position of the over widget
// on the named breakpoint. Rects are unchanged.
func (e *Editor) Reorder(bp, activeID, overID string) (layout.Layout, error) {
	var out layout.Layout
	err := e.mutate(bp, false, func(m *layout.Mutator) error {
		var err error
		out, err = m.ReorderForDrag(activeID, overID)
		return err
	})
	return out, err
}

// Update changes a widget's title and, when cfg is non-nil, replaces its
// config. The change reaches every breakpoint.
func (e *Editor) Update(bp, id string, title *string, cfg widget.Config) (widget.Widget, error) {
	if title != nil {
		if err := apperr.ValidateTitle(*title); err != nil {
			return widget.Widget{}, err
		}
	}
	var w widget.Widget
	err := e.mutate(bp, true, func(m *layout.Mutator) error {
		var err error
		if w, err = m.Get(id); err != nil {
			return err
		}
		if title != nil {
			if w, err = m.Retitle(id, *title); err != nil {
				return err
			}
		}
		if cfg != nil {
			if w, err = m.Configure(id, cfg); err != nil {
				return err
			}
		}
		return nil
	})
	return w, err
}

// Reflow resets every other breakpoint to a layout derived from the named
// one, discarding their individual positions.
func (e *Editor) Reflow(bp string) error {
	next, err := breakpoint.Rederive(e.set, e.resolve(bp), e.reg)
	if err != nil {
		return err
	}
	e.set = next
	e.dirty = true
	e.logger.Debug("reflowed breakpoints", "source", e.resolve(bp))
	return nil
}

// Replace swaps in a whole new set, keeping the active breakpoint when the
// new set has it.
func (e *Editor) Replace(set breakpoint.Set) error {
	if err := breakpoint.Validate(set, e.reg); err != nil {
		return err
	}
	e.set = set.Clone()
	if _, ok := e.set.Lookup(e.active); !ok {
		e.active = e.set.Widest().Name
	}
	e.dirty = true
	return nil
}

// Save persists the set through the gateway.
func (e *Editor) Save(ctx context.Context) (time.Time, error) {
	if e.gateway == nil {
		return time.Time{}, apperr.New(apperr.ErrCodeInvalidConfig, "editor has no storage gateway")
	}
	savedAt, err := e.gateway.Save(ctx, e.set)
	if err != nil {
		return time.Time{}, err
	}
	e.savedAt = savedAt
	e.dirty = false
	e.logger.Info("layout saved", "saved_at", savedAt.Format(time.RFC3339))
	return savedAt, nil
}

// Reload discards unsaved changes and restores the stored set. The current
// set is kept when the stored document is missing or rejected.
func (e *Editor) Reload(ctx context.Context) (*document.Report, error) {
	if e.gateway == nil {
		return nil, apperr.New(apperr.ErrCodeInvalidConfig, "editor has no storage gateway")
	}
	set, report, err := e.gateway.Load(ctx)
	if err != nil {
		return report, err
	}
	e.set = set
	if _, ok := e.set.Lookup(e.active); !ok {
		e.active = e.set.Widest().Name
	}
	e.savedAt = report.SavedAt
	e.dirty = false
	return report, nil
}

// Export writes the set as an indented document.
func (e *Editor) Export(w io.Writer) error {
	return document.Export(w, e.set, e.now())
}

// Import replaces the set with the document read from r. The current set
// is kept when the document is rejected.
func (e *Editor) Import(r io.Reader) (*document.Report, error) {
	set, report, err := e.loader().Import(r)
	if err != nil {
		return report, err
	}
	if err := e.Replace(set); err != nil {
		return report, err
	}
	return report, nil
}

func (e *Editor) loader() document.Loader {
	var l document.Loader
	if e.gateway != nil {
		l = e.gateway.Loader
	}
	if l.Registry == nil {
		l.Registry = e.reg
	}
	return l
}
