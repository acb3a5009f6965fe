package document

import (
	"bytes"
	"cmp"
	"fmt"
	"io"
	"math"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/breakpoint"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/collision"
	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/grid"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/layout"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/widget"
)

// MaxDocumentSize bounds the bytes read by [Import].
const MaxDocumentSize = 8 << 20

// Problem is one structural defect found in a document.
type Problem struct {
	Breakpoint string `json:"breakpoint,omitempty"`
	Index      int    `json:"index"`
	WidgetID   string `json:"widgetId,omitempty"`
	Field      string `json:"field,omitempty"`
	Reason     string `json:"reason"`
}

func (p Problem) String() string {
	var b strings.Builder
	if p.Breakpoint != "" {
		b.WriteString(p.Breakpoint)
		if p.Index >= 0 {
			fmt.Fprintf(&b, ".widgets[%d]", p.Index)
		}
		if p.Field != "" {
			b.WriteString(".")
		}
	}
	b.WriteString(p.Field)
	if b.Len() > 0 {
		b.WriteString(": ")
	}
	b.WriteString(p.Reason)
	return b.String()
}

// LoadError reports a document that could not be restored. The caller
// receives a default set alongside it.
type LoadError struct {
	Problems []Problem
}

func (e *LoadError) Error() string {
	if len(e.Problems) == 1 {
		return "malformed document: " + e.Problems[0].String()
	}
	return fmt.Sprintf("malformed document: %s (and %d more)", e.Problems[0], len(e.Problems)-1)
}

// Warning kinds.
const (
	WarnOverlap     = "overlap"
	WarnDuplicateID = "duplicate-id"
	WarnResized     = "resized"
	WarnAdded       = "added"
	WarnRemoved     = "removed"
)

// Warning is one widget dropped or repaired while loading.
type Warning struct {
	Breakpoint string    `json:"breakpoint"`
	WidgetID   string    `json:"widgetId"`
	Kind       string    `json:"kind"`
	Rect       grid.Rect `json:"rect"`
	Message    string    `json:"message"`
}

// Report describes a successful load.
type Report struct {
	SavedAt  time.Time `json:"savedAt"`
	Warnings []Warning `json:"warnings"`
}

// Dropped returns the warnings for widgets that were removed.
func (r *Report) Dropped() []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Kind == WarnOverlap || w.Kind == WarnDuplicateID || w.Kind == WarnRemoved {
			out = append(out, w)
		}
	}
	return out
}

func (r *Report) warn(bp, id, kind string, rect grid.Rect, format string, args ...any) {
	r.Warnings = append(r.Warnings, Warning{
		Breakpoint: bp,
		WidgetID:   id,
		Kind:       kind,
		Rect:       rect,
		Message:    fmt.Sprintf(format, args...),
	})
}

// Loader restores documents. The zero Loader uses the default widget
// catalog and default breakpoints.
type Loader struct {
	// Registry supplies minimum widget sizes.
	Registry widget.Registry
	// Fallback are the breakpoints of the empty set returned on failure.
	Fallback []breakpoint.Breakpoint
}

// Load restores a set with the zero [Loader].
func Load(data []byte) (breakpoint.Set, *Report, error) {
	return Loader{}.Load(data)
}

// Import reads and loads a document from r.
func Import(r io.Reader) (breakpoint.Set, *Report, error) {
	return Loader{}.Import(r)
}

// ImportFile reads and loads the document at path.
func ImportFile(path string) (breakpoint.Set, *Report, error) {
	return Loader{}.ImportFile(path)
}

// Import reads and loads a document from r.
func (l Loader) Import(r io.Reader) (breakpoint.Set, *Report, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxDocumentSize+1))
	if err != nil {
		return l.Default(), &Report{}, fmt.Errorf("read document: %w", err)
	}
	if len(data) > MaxDocumentSize {
		return l.fail(Problem{Index: -1, Reason: fmt.Sprintf("document exceeds %d bytes", MaxDocumentSize)})
	}
	return l.Load(data)
}

// ImportFile reads and loads the document at path.
func (l Loader) ImportFile(path string) (breakpoint.Set, *Report, error) {
	f, err := os.Open(path)
	if err != nil {
		return l.Default(), &Report{}, fmt.Errorf("open %s: %w", path, err)
	}
	defer f.Close()
	return l.Import(f)
}

type rawDocument struct {
	Breakpoints map[string]*rawBreakpoint `json:"breakpoints"`
	SavedAt     *string                   `json:"savedAt"`
}

type rawBreakpoint struct {
	Columns  any           `json:"columns"`
	MinWidth any           `json:"minWidth"`
	Order    any           `json:"order"`
	Widgets  *[]*rawWidget `json:"widgets"`
}

type rawWidget struct {
	ID     *string         `json:"id"`
	Kind   *string         `json:"kind"`
	Title  *string         `json:"title"`
	X      any             `json:"x"`
	Y      any             `json:"y"`
	W      any             `json:"w"`
	H      any             `json:"h"`
	Config json.RawMessage `json:"config"`
}

// Load restores a set from data. On structural failure it returns an empty
// set over the fallback breakpoints and an error wrapping a [*LoadError].
func (l Loader) Load(data []byte) (breakpoint.Set, *Report, error) {
	reg := l.registry()

	var raw rawDocument
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return l.fail(Problem{Index: -1, Reason: "invalid JSON: " + err.Error()})
	}

	var problems []Problem
	report := &Report{}
	if raw.SavedAt == nil {
		problems = append(problems, Problem{Index: -1, Field: "savedAt", Reason: "missing"})
	} else if t, err := time.Parse(time.RFC3339, *raw.SavedAt); err != nil {
		problems = append(problems, Problem{Index: -1, Field: "savedAt", Reason: "not an ISO timestamp"})
	} else {
		report.SavedAt = t
	}
	if len(raw.Breakpoints) == 0 {
		problems = append(problems, Problem{Index: -1, Field: "breakpoints", Reason: "missing or empty"})
	}

	names := make([]string, 0, len(raw.Breakpoints))
	for name := range raw.Breakpoints {
		names = append(names, name)
	}
	slices.Sort(names)

	var bps []breakpoint.Breakpoint
	layouts := make(map[string]layout.Layout, len(names))
	orders := make(map[string]int, len(names))
	for _, name := range names {
		bp, lay, ps := parseBreakpoint(name, raw.Breakpoints[name])
		order, p := parseOrder(name, raw.Breakpoints[name])
		if p != nil {
			ps = append(ps, *p)
		}
		problems = append(problems, ps...)
		if len(ps) == 0 {
			bps = append(bps, bp)
			layouts[name] = lay
			orders[name] = order
		}
	}
	if len(problems) > 0 {
		return l.fail(problems...)
	}

	// widest first; saved order, then name, among equal widths
	slices.SortStableFunc(bps, func(a, b breakpoint.Breakpoint) int {
		return cmp.Or(
			cmp.Compare(b.MinWidth, a.MinWidth),
			cmp.Compare(orders[a.Name], orders[b.Name]),
		)
	})
	set := breakpoint.Set{Breakpoints: bps, Layouts: make(map[string]layout.Layout, len(bps))}
	for _, bp := range bps {
		set.Layouts[bp.Name] = repairLayout(bp.Name, layouts[bp.Name], reg, report)
	}

	set, err := repairIDSets(set, reg, report)
	if err != nil {
		return l.Default(), &Report{}, err
	}
	return set, report, nil
}

func (l Loader) registry() widget.Registry {
	if l.Registry == nil {
		return widget.DefaultCatalog()
	}
	return l.Registry
}

// Default returns the empty set Load falls back to on failure.
func (l Loader) Default() breakpoint.Set {
	if len(l.Fallback) == 0 {
		return breakpoint.DefaultSet()
	}
	return breakpoint.NewSet(l.Fallback)
}

func (l Loader) fail(problems ...Problem) (breakpoint.Set, *Report, error) {
	le := &LoadError{Problems: problems}
	return l.Default(), &Report{}, apperr.Wrap(apperr.ErrCodeLoad, le, "layout document rejected")
}

// parseOrder reads the optional order field. Documents without one sort
// after those that carry it.
func parseOrder(name string, raw *rawBreakpoint) (int, *Problem) {
	if raw == nil || raw.Order == nil {
		return math.MaxInt32, nil
	}
	order, reason := integer(raw.Order, false)
	if reason == "" && order < 0 {
		reason = "must not be negative"
	}
	if reason != "" {
		return 0, &Problem{Breakpoint: name, Index: -1, Field: "order", Reason: reason}
	}
	return order, nil
}

func parseBreakpoint(name string, raw *rawBreakpoint) (breakpoint.Breakpoint, layout.Layout, []Problem) {
	var problems []Problem
	add := func(index int, id, field, reason string) {
		problems = append(problems, Problem{Breakpoint: name, Index: index, WidgetID: id, Field: field, Reason: reason})
	}

	if err := apperr.ValidateBreakpointName(name); err != nil {
		add(-1, "", "", apperr.UserMessage(err))
	}
	if raw == nil {
		add(-1, "", "", "breakpoint is null")
		return breakpoint.Breakpoint{}, layout.Layout{}, problems
	}

	bp := breakpoint.Breakpoint{Name: name}
	if cols, reason := integer(raw.Columns, true); reason != "" {
		add(-1, "", "columns", reason)
	} else if cols < 1 {
		add(-1, "", "columns", "must be at least 1")
	} else {
		bp.Columns = cols
	}
	if raw.MinWidth == nil {
		bp.MinWidth = defaultMinWidth(name)
	} else if mw, reason := integer(raw.MinWidth, true); reason != "" {
		add(-1, "", "minWidth", reason)
	} else if mw < 0 {
		add(-1, "", "minWidth", "must not be negative")
	} else {
		bp.MinWidth = mw
	}
	if raw.Widgets == nil {
		add(-1, "", "widgets", "missing")
		return bp, layout.Layout{}, problems
	}

	lay := layout.New(bp.Columns)
	for i, rw := range *raw.Widgets {
		if rw == nil {
			add(i, "", "", "widget is null")
			continue
		}
		w, ps := parseWidget(rw, bp.Columns)
		for _, p := range ps {
			add(i, w.ID, p.Field, p.Reason)
		}
		if len(ps) == 0 {
			lay.Widgets = append(lay.Widgets, w)
		}
	}
	return bp, lay, problems
}

func parseWidget(rw *rawWidget, columns int) (widget.Widget, []Problem) {
	var problems []Problem
	add := func(field, reason string) {
		problems = append(problems, Problem{Field: field, Reason: reason})
	}

	var w widget.Widget
	switch {
	case rw.ID == nil:
		add("id", "missing")
	case *rw.ID == "":
		add("id", "empty")
	default:
		w.ID = *rw.ID
	}
	switch {
	case rw.Kind == nil:
		add("kind", "missing")
	case !widget.Kind(*rw.Kind).Valid():
		add("kind", fmt.Sprintf("unknown widget kind %q", *rw.Kind))
	default:
		w.Kind = widget.Kind(*rw.Kind)
	}
	if rw.Title != nil {
		w.Title = *rw.Title
	}

	fields := []struct {
		name string
		raw  any
		dst  *int
		min  int
	}{
		{"x", rw.X, &w.Rect.X, 0},
		{"y", rw.Y, &w.Rect.Y, 0},
		{"w", rw.W, &w.Rect.W, 1},
		{"h", rw.H, &w.Rect.H, 1},
	}
	for _, f := range fields {
		v, reason := integer(f.raw, true)
		switch {
		case reason != "":
			add(f.name, reason)
		case v < f.min:
			add(f.name, fmt.Sprintf("must be at least %d", f.min))
		default:
			*f.dst = v
		}
	}
	if len(problems) == 0 && columns > 0 && w.Rect.Right() > columns {
		add("x", fmt.Sprintf("rect %s extends past column %d", w.Rect, columns))
	}
	if len(problems) == 0 && !w.Rect.WithinRows() {
		add("y", fmt.Sprintf("rect %s extends past row %d", w.Rect, grid.MaxRows))
	}

	if len(rw.Config) > 0 && !bytes.Equal(bytes.TrimSpace(rw.Config), []byte("null")) {
		var cfg map[string]any
		if err := json.Unmarshal(rw.Config, &cfg); err != nil {
			add("config", "must be an object")
		} else {
			w.Config = cfg
		}
	}
	return w, problems
}

// integer converts a decoded JSON value into an int. Integral floats such as
// 3.0 are accepted; fractions, strings, booleans and null are not.
func integer(v any, required bool) (int, string) {
	switch n := v.(type) {
	case nil:
		if required {
			return 0, "missing"
		}
		return 0, ""
	case json.Number:
		if i, err := n.Int64(); err == nil {
			if i > math.MaxInt32 || i < math.MinInt32 {
				return 0, "out of range"
			}
			return int(i), ""
		}
		f, err := n.Float64()
		if err != nil || f != math.Trunc(f) {
			return 0, fmt.Sprintf("not an integer: %s", n)
		}
		if f > math.MaxInt32 || f < math.MinInt32 {
			return 0, "out of range"
		}
		return int(f), ""
	default:
		return 0, fmt.Sprintf("not an integer: %v", v)
	}
}

func defaultMinWidth(name string) int {
	for _, bp := range breakpoint.Defaults() {
		if bp.Name == name {
			return bp.MinWidth
		}
	}
	return 0
}

// repairLayout grows undersized widgets and drops widgets that repeat an
// earlier id or overlap an earlier widget.
func repairLayout(name string, l layout.Layout, reg widget.Registry, report *Report) layout.Layout {
	out := layout.New(l.Columns)
	seen := make(map[string]struct{}, len(l.Widgets))
	rects := make([]grid.Rect, 0, len(l.Widgets))
	for _, w := range l.Widgets {
		if _, dup := seen[w.ID]; dup {
			report.warn(name, w.ID, WarnDuplicateID, w.Rect, "dropped widget %q: id already used", w.ID)
			continue
		}
		if m := layout.MinSize(reg, w.Kind, l.Columns); w.Rect.W < m.W || w.Rect.H < m.H {
			before := w.Rect
			w.Rect.W = max(w.Rect.W, m.W)
			w.Rect.H = max(w.Rect.H, m.H)
			w.Rect = grid.ClampRect(w.Rect, l.Columns)
			w.Rect.Y = min(w.Rect.Y, grid.MaxRows-w.Rect.H)
			report.warn(name, w.ID, WarnResized, w.Rect, "grew widget %q from %s to its minimum size", w.ID, before)
		}
		if j := collision.FirstOverlap(rects, w.Rect, -1); j >= 0 {
			report.warn(name, w.ID, WarnOverlap, w.Rect, "dropped widget %q: overlaps %q", w.ID, out.Widgets[j].ID)
			continue
		}
		seen[w.ID] = struct{}{}
		out.Widgets = append(out.Widgets, w)
		rects = append(rects, w.Rect)
	}
	return out
}

// repairIDSets makes every breakpoint hold the widest breakpoint's ids.
func repairIDSets(s breakpoint.Set, reg widget.Registry, report *Report) (breakpoint.Set, error) {
	if breakpoint.IDSetsEqual(s) {
		return s, nil
	}
	source := s.Widest().Name
	src := s.Layouts[source]
	for _, bp := range s.Breakpoints[1:] {
		l := s.Layouts[bp.Name]
		for _, w := range src.Widgets {
			if l.Index(w.ID) < 0 {
				report.warn(bp.Name, w.ID, WarnAdded, grid.Rect{}, "added widget %q missing from %s", w.ID, bp.Name)
			}
		}
		for _, w := range l.Widgets {
			if src.Index(w.ID) < 0 {
				report.warn(bp.Name, w.ID, WarnRemoved, w.Rect, "removed widget %q absent from %s", w.ID, source)
			}
		}
	}
	out, err := breakpoint.Sync(s, source, reg)
	if err != nil {
		return s, apperr.Wrap(apperr.ErrCodeLoad, err, "repairing breakpoint widget sets")
	}
	for i, w := range report.Warnings {
		if w.Kind == WarnAdded {
			if added, ok := out.Layouts[w.Breakpoint].Get(w.WidgetID); ok {
				report.Warnings[i].Rect = added.Rect
			}
		}
	}
	return out, nil
}
