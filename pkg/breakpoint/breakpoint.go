// Package breakpoint keeps one layout per responsive breakpoint and derives
// breakpoint layouts from one another.
//
// Every breakpoint of a [Set] holds the same widget ids, each at a position
// suited to that breakpoint's column count. Positions are independent: a
// move in one breakpoint does not touch the others. Adds and deletes are
// propagated with [Sync].
package breakpoint

import (
	"cmp"
	"errors"
	"maps"
	"slices"

	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/layout"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/widget"
)

// ErrUnknownBreakpoint is wrapped by errors naming a breakpoint the set
// does not have.
var ErrUnknownBreakpoint = errors.New("unknown breakpoint")

// Breakpoint is a named responsive configuration. It applies to containers
// at least MinWidth pixels wide.
type Breakpoint struct {
	Name     string `toml:"name" json:"name" validate:"required"`
	MinWidth int    `toml:"min_width" json:"minWidth" validate:"gte=0"`
	Columns  int    `toml:"columns" json:"columns" validate:"gte=1,lte=48"`
}

// Defaults returns the standard breakpoints, widest first.
func Defaults() []Breakpoint {
	return []Breakpoint{
		{Name: "lg", MinWidth: 1200, Columns: 12},
		{Name: "md", MinWidth: 996, Columns: 10},
		{Name: "sm", MinWidth: 768, Columns: 6},
		{Name: "xs", MinWidth: 480, Columns: 4},
		{Name: "xxs", MinWidth: 0, Columns: 2},
	}
}

// Set maps each breakpoint to its layout. Breakpoints are ordered widest
// first.
type Set struct {
	Breakpoints []Breakpoint
	Layouts     map[string]layout.Layout
}

// NewSet returns a set with an empty layout per breakpoint.
func NewSet(bps []Breakpoint) Set {
	s := Set{
		Breakpoints: slices.Clone(bps),
		Layouts:     make(map[string]layout.Layout, len(bps)),
	}
	sortWidestFirst(s.Breakpoints)
	for _, bp := range s.Breakpoints {
		s.Layouts[bp.Name] = layout.New(bp.Columns)
	}
	return s
}

// DefaultSet returns an empty set over [Defaults].
func DefaultSet() Set { return NewSet(Defaults()) }

// Clone returns a deep copy of s.
func (s Set) Clone() Set {
	out := Set{
		Breakpoints: slices.Clone(s.Breakpoints),
		Layouts:     make(map[string]layout.Layout, len(s.Layouts)),
	}
	for name, l := range s.Layouts {
		out.Layouts[name] = l.Clone()
	}
	return out
}

// Names returns the breakpoint names, widest first.
func (s Set) Names() []string {
	out := make([]string, len(s.Breakpoints))
	for i, bp := range s.Breakpoints {
		out[i] = bp.Name
	}
	return out
}

// Lookup returns the breakpoint with the given name.
func (s Set) Lookup(name string) (Breakpoint, bool) {
	i := slices.IndexFunc(s.Breakpoints, func(bp Breakpoint) bool { return bp.Name == name })
	if i < 0 {
		return Breakpoint{}, false
	}
	return s.Breakpoints[i], true
}

// Layout returns a copy of the layout of the named breakpoint.
func (s Set) Layout(name string) (layout.Layout, error) {
	if _, ok := s.Lookup(name); !ok {
		return layout.Layout{}, unknown(name)
	}
	return s.Layouts[name].Clone(), nil
}

// Put replaces the layout of the named breakpoint. The layout's column
// count must match the breakpoint.
func (s *Set) Put(name string, l layout.Layout) error {
	bp, ok := s.Lookup(name)
	if !ok {
		return unknown(name)
	}
	if l.Columns != bp.Columns {
		return apperr.New(apperr.ErrCodeInvalidLayout, "breakpoint %q has %d columns, layout has %d", name, bp.Columns, l.Columns)
	}
	if s.Layouts == nil {
		s.Layouts = make(map[string]layout.Layout)
	}
	s.Layouts[name] = l.Clone()
	return nil
}

// Widest returns the first breakpoint. It is the zero Breakpoint for an
// empty set.
func (s Set) Widest() Breakpoint {
	if len(s.Breakpoints) == 0 {
		return Breakpoint{}
	}
	return s.Breakpoints[0]
}

// Resolve picks the breakpoint for a container of the given pixel width:
// the widest breakpoint whose MinWidth the container reaches. Containers
// narrower than every breakpoint get the narrowest one.
func (s Set) Resolve(width float64) Breakpoint {
	for _, bp := range s.Breakpoints {
		if width >= float64(bp.MinWidth) {
			return bp
		}
	}
	if len(s.Breakpoints) == 0 {
		return Breakpoint{}
	}
	return s.Breakpoints[len(s.Breakpoints)-1]
}

// IDSetsEqual reports whether every breakpoint holds the same widget ids.
func IDSetsEqual(s Set) bool {
	var want map[string]struct{}
	for _, bp := range s.Breakpoints {
		ids := idSet(s.Layouts[bp.Name])
		if want == nil {
			want = ids
			continue
		}
		if !maps.Equal(want, ids) {
			return false
		}
	}
	return true
}

// Validate checks the breakpoint list and every layout. reg may be nil to
// skip minimum size checks.
func Validate(s Set, reg widget.Registry) error {
	if len(s.Breakpoints) == 0 {
		return apperr.New(apperr.ErrCodeInvalidLayout, "no breakpoints")
	}
	seen := make(map[string]struct{}, len(s.Breakpoints))
	for _, bp := range s.Breakpoints {
		if _, dup := seen[bp.Name]; dup {
			return apperr.New(apperr.ErrCodeInvalidLayout, "duplicate breakpoint %q", bp.Name)
		}
		seen[bp.Name] = struct{}{}
		l, ok := s.Layouts[bp.Name]
		if !ok {
			return apperr.New(apperr.ErrCodeInvalidLayout, "breakpoint %q has no layout", bp.Name)
		}
		if l.Columns != bp.Columns {
			return apperr.New(apperr.ErrCodeInvalidLayout, "breakpoint %q has %d columns, layout has %d", bp.Name, bp.Columns, l.Columns)
		}
		if err := layout.Validate(l, reg); err != nil {
			return apperr.Wrap(apperr.ErrCodeInvalidLayout, err, "breakpoint %q", bp.Name)
		}
	}
	if !IDSetsEqual(s) {
		return apperr.New(apperr.ErrCodeInvalidLayout, "breakpoints disagree on widget ids")
	}
	return nil
}

func idSet(l layout.Layout) map[string]struct{} {
	out := make(map[string]struct{}, len(l.Widgets))
	for _, w := range l.Widgets {
		out[w.ID] = struct{}{}
	}
	return out
}

func sortWidestFirst(bps []Breakpoint) {
	slices.SortStableFunc(bps, func(a, b Breakpoint) int {
		return cmp.Compare(b.MinWidth, a.MinWidth)
	})
}

func unknown(name string) error {
	return apperr.Wrap(apperr.ErrCodeNotFound, ErrUnknownBreakpoint, "breakpoint %q", name)
}
