package layout

import (
	"time"

	"github.com/google/uuid"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/collision"
	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/grid"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/observability"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/placement"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/widget"
)

// Outcome reports what a move or resize did to the layout.
type Outcome int

const (
	// Unchanged means the request resolved to the widget's current rect.
	Unchanged Outcome = iota
	// Applied means the widget now occupies the requested rect.
	Applied
	// Rejected means the requested rect collided with another widget. The
	// layout was left untouched.
	Rejected
)

func (o Outcome) String() string {
	switch o {
	case Unchanged:
		return "unchanged"
	case Applied:
		return "applied"
	case Rejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// Draft describes a widget to be added. Zero fields fall back to the
// registry defaults.
type Draft struct {
	Kind   widget.Kind
	Title  string
	Size   grid.Size
	Config widget.Config
}

// Defaults is implemented by registries that also supply the title and
// config given to new widgets. [widget.Catalog] implements it.
type Defaults interface {
	DefaultTitle(kind widget.Kind) string
	DefaultConfig(kind widget.Kind) widget.Config
}

// Option configures a Mutator.
type Option func(*Mutator)

// WithIDGenerator replaces the uuid-based id source.
func WithIDGenerator(fn func() string) Option {
	return func(m *Mutator) {
		if fn != nil {
			m.newID = fn
		}
	}
}

// WithSpec sets the pixel geometry used to convert drag deltas. The column
// count is always taken from the layout.
func WithSpec(spec grid.Spec) Option {
	return func(m *Mutator) { m.spec = spec }
}

// Mutator applies add, move, resize, delete and reorder operations to one
// Layout. Every operation either commits completely or leaves the layout
// exactly as it was. A Mutator is not safe for concurrent use.
type Mutator struct {
	layout Layout
	reg    widget.Registry
	spec   grid.Spec
	newID  func() string
}

// NewMutator takes ownership of a copy of l. A nil registry means
// [widget.DefaultCatalog].
func NewMutator(l Layout, reg widget.Registry, opts ...Option) *Mutator {
	if reg == nil {
		reg = widget.DefaultCatalog()
	}
	m := &Mutator{
		layout: l.Clone(),
		reg:    reg,
		spec:   grid.DefaultSpec(l.Columns),
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	m.spec = m.spec.WithColumns(l.Columns)
	return m
}

// Snapshot returns a copy of the current layout.
func (m *Mutator) Snapshot() Layout { return m.layout.Clone() }

// Columns returns the grid width of the layout.
func (m *Mutator) Columns() int { return m.layout.Columns }

// Spec returns the pixel geometry used for delta conversion.
func (m *Mutator) Spec() grid.Spec { return m.spec }

// Get returns a copy of the widget with the given id.
func (m *Mutator) Get(id string) (widget.Widget, error) {
	w, ok := m.layout.Get(id)
	if !ok {
		return widget.Widget{}, notFound(id)
	}
	return w, nil
}

// Add places a new widget of kind. A zero hint uses the registry's default
// size. Add only fails for an unknown kind or a grid without columns.
func (m *Mutator) Add(kind widget.Kind, hint grid.Size) (widget.Widget, error) {
	return m.AddDraft(Draft{Kind: kind, Size: hint})
}

// AddDraft is Add with an explicit title and config.
func (m *Mutator) AddDraft(d Draft) (widget.Widget, error) {
	if !d.Kind.Valid() {
		observability.Engine().OnMutation("add", "error")
		return widget.Widget{}, apperr.New(apperr.ErrCodeInvalidInput, "unknown widget kind %q", d.Kind)
	}
	size := d.Size
	if size.IsZero() {
		size = m.reg.DefaultSize(d.Kind)
	}
	size = placement.Normalize(size.AtLeast(MinSize(m.reg, d.Kind, m.layout.Columns)), m.layout.Columns)

	res, err := m.find(m.layout.Rects(), size, placement.Find)
	if err != nil {
		observability.Engine().OnMutation("add", "error")
		return widget.Widget{}, err
	}

	w := widget.Widget{
		ID:     m.newID(),
		Kind:   d.Kind,
		Title:  d.Title,
		Rect:   res.Rect(size),
		Config: d.Config.Clone(),
	}
	if defs, ok := m.reg.(Defaults); ok {
		if w.Title == "" {
			w.Title = defs.DefaultTitle(d.Kind)
		}
		if w.Config == nil {
			w.Config = defs.DefaultConfig(d.Kind)
		}
	}
	m.layout.Widgets = append(m.layout.Widgets, w)
	observability.Engine().OnMutation("add", Applied.String())
	return w.Clone(), nil
}

// Place inserts an existing widget, keeping its id, title and config. The
// widget keeps its rect when that rect is valid and free; otherwise it is
// re-placed by the scan and new-row tiers at its clamped size.
func (m *Mutator) Place(w widget.Widget) (widget.Widget, error) {
	if w.ID == "" || !w.Kind.Valid() {
		return widget.Widget{}, apperr.New(apperr.ErrCodeInvalidInput, "cannot place widget %v", w)
	}
	if m.layout.Index(w.ID) >= 0 {
		return widget.Widget{}, apperr.New(apperr.ErrCodeInvalidOperation, "widget %q already placed", w.ID)
	}
	w = w.Clone()
	w.Rect = m.fit(w.Kind, w.Rect)

	rects := m.layout.Rects()
	if collision.FirstOverlap(rects, w.Rect, -1) >= 0 {
		res, err := m.find(rects, w.Rect.Size(), placement.Scan)
		if err != nil {
			return widget.Widget{}, err
		}
		w.Rect = res.Rect(w.Rect.Size())
	}
	m.layout.Widgets = append(m.layout.Widgets, w)
	observability.Engine().OnMutation("place", Applied.String())
	return w.Clone(), nil
}

// Move translates a drag displacement into whole cells and moves the
// widget by that much.
func (m *Mutator) Move(id string, delta grid.PixelDelta) (widget.Widget, Outcome, error) {
	dCols, dRows := m.spec.CellDelta(delta)
	return m.MoveBy(id, dCols, dRows)
}

// MoveBy moves the widget by whole cells. The target is clamped into the
// grid's columns and accepted only if it ends above [grid.MaxRows] and no
// other widget occupies it.
func (m *Mutator) MoveBy(id string, dCols, dRows int) (widget.Widget, Outcome, error) {
	i := m.layout.Index(id)
	if i < 0 {
		observability.Engine().OnMutation("move", "error")
		return widget.Widget{}, Unchanged, notFound(id)
	}
	cur := m.layout.Widgets[i].Rect
	return m.relocate("move", i, grid.ClampRect(cur.Translate(dCols, dRows), m.layout.Columns))
}

// MoveTo moves the widget so that its top-left cell is p, under the same
// rules as MoveBy.
func (m *Mutator) MoveTo(id string, p grid.Point) (widget.Widget, Outcome, error) {
	i := m.layout.Index(id)
	if i < 0 {
		observability.Engine().OnMutation("move", "error")
		return widget.Widget{}, Unchanged, notFound(id)
	}
	cur := m.layout.Widgets[i].Rect
	return m.relocate("move", i, grid.ClampRect(cur.At(p), m.layout.Columns))
}

// Resize translates a drag displacement of the bottom-right handle into
// whole cells and resizes the widget by that much.
func (m *Mutator) Resize(id string, delta grid.PixelDelta) (widget.Widget, Outcome, error) {
	dCols, dRows := m.spec.CellDelta(delta)
	i := m.layout.Index(id)
	if i < 0 {
		observability.Engine().OnMutation("resize", "error")
		return widget.Widget{}, Unchanged, notFound(id)
	}
	cur := m.layout.Widgets[i].Rect
	return m.ResizeTo(id, grid.Size{W: cur.W + dCols, H: cur.H + dRows})
}

// ResizeTo sets the widget's span. The top-left corner stays put: the width
// is capped at the columns remaining to the right, and neither side may
// drop below the kind's minimum.
func (m *Mutator) ResizeTo(id string, size grid.Size) (widget.Widget, Outcome, error) {
	i := m.layout.Index(id)
	if i < 0 {
		observability.Engine().OnMutation("resize", "error")
		return widget.Widget{}, Unchanged, notFound(id)
	}
	w := m.layout.Widgets[i]
	floor := MinSize(m.reg, w.Kind, m.layout.Columns)
	size = size.AtLeast(floor)
	size.W = min(size.W, m.layout.Columns-w.Rect.X)

	cand := grid.ClampRect(grid.Rect{X: w.Rect.X, Y: w.Rect.Y, W: size.W, H: size.H}, m.layout.Columns)
	return m.relocate("resize", i, cand)
}

// Delete removes the widget. Remaining widgets keep their positions.
func (m *Mutator) Delete(id string) error {
	i := m.layout.Index(id)
	if i < 0 {
		observability.Engine().OnMutation("delete", "error")
		return notFound(id)
	}
	widgets := make([]widget.Widget, 0, len(m.layout.Widgets)-1)
	widgets = append(widgets, m.layout.Widgets[:i]...)
	widgets = append(widgets, m.layout.Widgets[i+1:]...)
	m.layout.Widgets = widgets
	observability.Engine().OnMutation("delete", Applied.String())
	return nil
}

// ReorderForDrag moves the active widget to the sequence position of the
// over widget, shifting the widgets in between by one. Rects are not
// touched. This serves list-style editors; grid moves never reorder.
func (m *Mutator) ReorderForDrag(activeID, overID string) (Layout, error) {
	from := m.layout.Index(activeID)
	if from < 0 {
		return m.Snapshot(), notFound(activeID)
	}
	to := m.layout.Index(overID)
	if to < 0 {
		return m.Snapshot(), notFound(overID)
	}
	if from != to {
		widgets := make([]widget.Widget, 0, len(m.layout.Widgets))
		active := m.layout.Widgets[from]
		for i, w := range m.layout.Widgets {
			if i == from {
				continue
			}
			if i == to && from > to {
				widgets = append(widgets, active)
			}
			widgets = append(widgets, w)
			if i == to && from < to {
				widgets = append(widgets, active)
			}
		}
		m.layout.Widgets = widgets
		observability.Engine().OnMutation("reorder", Applied.String())
	}
	return m.Snapshot(), nil
}

// Retitle changes the widget's display title. Placement is unaffected.
func (m *Mutator) Retitle(id, title string) (widget.Widget, error) {
	i := m.layout.Index(id)
	if i < 0 {
		return widget.Widget{}, notFound(id)
	}
	m.layout.Widgets[i].Title = title
	return m.layout.Widgets[i].Clone(), nil
}

// Configure replaces the widget's renderer payload. Placement is unaffected.
func (m *Mutator) Configure(id string, cfg widget.Config) (widget.Widget, error) {
	i := m.layout.Index(id)
	if i < 0 {
		return widget.Widget{}, notFound(id)
	}
	m.layout.Widgets[i].Config = cfg.Clone()
	return m.layout.Widgets[i].Clone(), nil
}

// relocate commits cand as the rect of widget i if it stays above
// [grid.MaxRows] and is free of every other widget.
func (m *Mutator) relocate(op string, i int, cand grid.Rect) (widget.Widget, Outcome, error) {
	cur := m.layout.Widgets[i]
	if cand == cur.Rect {
		observability.Engine().OnMutation(op, Unchanged.String())
		return cur.Clone(), Unchanged, nil
	}
	if !cand.WithinRows() {
		observability.Engine().OnMutation(op, Rejected.String())
		return cur.Clone(), Rejected, nil
	}
	rects := m.layout.Rects()
	occ := collision.Build(rects, m.layout.Columns, max(collision.MaxRow(rects, 0), cand.Bottom()))
	if !occ.IsFreeExcept(cand, i) {
		observability.Engine().OnMutation(op, Rejected.String())
		return cur.Clone(), Rejected, nil
	}
	m.layout.Widgets[i].Rect = cand
	observability.Engine().OnMutation(op, Applied.String())
	return m.layout.Widgets[i].Clone(), Applied, nil
}

// fit clamps r into the grid at no less than the kind's minimum size,
// pulling it up when it would reach past [grid.MaxRows].
func (m *Mutator) fit(kind widget.Kind, r grid.Rect) grid.Rect {
	floor := MinSize(m.reg, kind, m.layout.Columns)
	r.W = max(r.W, floor.W)
	r.H = min(max(r.H, floor.H), grid.MaxRows)
	r = grid.ClampRect(r, m.layout.Columns)
	r.Y = min(r.Y, grid.MaxRows-r.H)
	return r
}

type searchFunc func([]grid.Rect, grid.Size, int) (placement.Result, error)

func (m *Mutator) find(rects []grid.Rect, size grid.Size, search searchFunc) (placement.Result, error) {
	start := time.Now()
	res, err := search(rects, size, m.layout.Columns)
	observability.Engine().OnPlacement(res.Tier.String(), m.layout.Columns, time.Since(start), err)
	if err != nil {
		return placement.Result{}, apperr.Wrap(apperr.ErrCodePlacementExhausted, err,
			"no position for %dx%d on a %d-column grid", size.W, size.H, m.layout.Columns)
	}
	return res, nil
}
