// Package layout holds the widget collection of one breakpoint and the
// Mutator, the only component that changes it.
//
// # Invariants
//
// A valid [Layout] satisfies, for every widget:
//
//	0 <= x, x+w <= Columns, 0 <= y, w >= minW, h >= minH
//
// and no two widget rectangles overlap. The minimum size comes from the
// widget registry and is capped at the column count, so a wide kind still
// fits a narrow breakpoint.
//
// # Ordering
//
// Widgets are kept in insertion order. Renderers draw them in that order,
// so later widgets paint above earlier ones. Grid moves never change the
// order; only [Mutator.ReorderForDrag] does.
package layout

import (
	"errors"
	"slices"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/collision"
	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/grid"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/widget"
)

// ErrWidgetNotFound is wrapped by errors for operations on unknown ids.
var ErrWidgetNotFound = errors.New("widget not found")

// Layout is the ordered widget collection of one breakpoint.
type Layout struct {
	Columns int             `json:"columns"`
	Widgets []widget.Widget `json:"widgets"`
}

// New returns an empty layout for a grid of the given column count.
func New(columns int) Layout {
	return Layout{Columns: columns, Widgets: []widget.Widget{}}
}

// Clone returns a deep copy of l.
func (l Layout) Clone() Layout {
	out := Layout{Columns: l.Columns, Widgets: make([]widget.Widget, len(l.Widgets))}
	for i, w := range l.Widgets {
		out.Widgets[i] = w.Clone()
	}
	return out
}

// Len returns the number of widgets.
func (l Layout) Len() int { return len(l.Widgets) }

// Index returns the position of the widget with the given id, or -1.
func (l Layout) Index(id string) int {
	return slices.IndexFunc(l.Widgets, func(w widget.Widget) bool { return w.ID == id })
}

// Get returns the widget with the given id.
func (l Layout) Get(id string) (widget.Widget, bool) {
	if i := l.Index(id); i >= 0 {
		return l.Widgets[i].Clone(), true
	}
	return widget.Widget{}, false
}

// Rects returns the widget rectangles in layout order.
func (l Layout) Rects() []grid.Rect {
	out := make([]grid.Rect, len(l.Widgets))
	for i, w := range l.Widgets {
		out[i] = w.Rect
	}
	return out
}

// IDs returns the widget ids in layout order.
func (l Layout) IDs() []string {
	out := make([]string, len(l.Widgets))
	for i, w := range l.Widgets {
		out[i] = w.ID
	}
	return out
}

// Rows returns the first row below every widget.
func (l Layout) Rows() int {
	return collision.MaxRow(l.Rects(), 0)
}

// MinSize returns the minimum span of kind on a grid of the given width.
// The registry minimum is capped at the column count.
func MinSize(reg widget.Registry, kind widget.Kind, columns int) grid.Size {
	m := reg.MinSize(kind)
	m.W = min(max(m.W, 1), max(columns, 1))
	m.H = max(m.H, 1)
	return m
}

// Validate checks every layout invariant. reg may be nil to skip the
// minimum size check.
func Validate(l Layout, reg widget.Registry) error {
	if l.Columns < 1 {
		return apperr.New(apperr.ErrCodeInvalidLayout, "layout has %d columns", l.Columns)
	}
	seen := make(map[string]struct{}, len(l.Widgets))
	rects := l.Rects()
	for i, w := range l.Widgets {
		if w.ID == "" {
			return apperr.New(apperr.ErrCodeInvalidLayout, "widget %d has no id", i)
		}
		if _, dup := seen[w.ID]; dup {
			return apperr.New(apperr.ErrCodeInvalidLayout, "duplicate widget id %q", w.ID)
		}
		seen[w.ID] = struct{}{}
		if !w.Kind.Valid() {
			return apperr.New(apperr.ErrCodeInvalidLayout, "widget %q has unknown kind %q", w.ID, w.Kind)
		}
		if !w.Rect.InBounds(l.Columns) {
			return apperr.New(apperr.ErrCodeInvalidLayout, "widget %q at %s is outside a %d-column grid", w.ID, w.Rect, l.Columns)
		}
		if !w.Rect.WithinRows() {
			return apperr.New(apperr.ErrCodeInvalidLayout, "widget %q at %s reaches past row %d", w.ID, w.Rect, grid.MaxRows)
		}
		if reg != nil {
			if m := MinSize(reg, w.Kind, l.Columns); w.Rect.W < m.W || w.Rect.H < m.H {
				return apperr.New(apperr.ErrCodeInvalidLayout, "widget %q at %s is smaller than %dx%d", w.ID, w.Rect, m.W, m.H)
			}
		}
		if j := collision.FirstOverlap(rects[:i], w.Rect, -1); j >= 0 {
			return apperr.New(apperr.ErrCodeInvalidLayout, "widget %q at %s overlaps %q at %s",
				w.ID, w.Rect, l.Widgets[j].ID, l.Widgets[j].Rect)
		}
	}
	return nil
}

func notFound(id string) error {
	return apperr.Wrap(apperr.ErrCodeInvalidOperation, ErrWidgetNotFound, "widget %q", id)
}
