package breakpoint

import (
	"math"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/collision"
	apperr "github.com/shaikhimroz/new-nfm-sub000/pkg/errors"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/grid"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/layout"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/placement"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/widget"
)

// Scale maps r from a grid of fromColumns to one of toColumns. x and w are
// scaled proportionally and rounded to the nearest cell; y and h are kept.
// The result is clamped into the target grid.
func Scale(r grid.Rect, fromColumns, toColumns int) grid.Rect {
	if fromColumns > 0 && fromColumns != toColumns {
		f := float64(toColumns) / float64(fromColumns)
		r.X = int(math.Round(float64(r.X) * f))
		r.W = int(math.Round(float64(r.W) * f))
	}
	return grid.ClampRect(r, toColumns)
}

// Derive builds a layout for targetColumns from source. Each widget is
// scaled, raised to its kind's minimum size, and clamped. Widgets are
// processed in source order; a scaled rect that collides with an already
// derived widget is re-placed by the scan and new-row placement tiers, so
// earlier widgets keep the positions closest to the source.
func Derive(source layout.Layout, targetColumns int, reg widget.Registry) (layout.Layout, error) {
	if targetColumns < 1 {
		return layout.Layout{}, apperr.New(apperr.ErrCodeInvalidLayout, "cannot derive a %d-column layout", targetColumns)
	}
	if reg == nil {
		reg = widget.DefaultCatalog()
	}
	out := layout.New(targetColumns)
	rects := make([]grid.Rect, 0, len(source.Widgets))
	for _, w := range source.Widgets {
		r, err := deriveRect(rects, w, source.Columns, targetColumns, reg)
		if err != nil {
			return layout.Layout{}, err
		}
		w = w.Clone()
		w.Rect = r
		out.Widgets = append(out.Widgets, w)
		rects = append(rects, r)
	}
	return out, nil
}

func deriveRect(placed []grid.Rect, w widget.Widget, fromColumns, toColumns int, reg widget.Registry) (grid.Rect, error) {
	r := Scale(w.Rect, fromColumns, toColumns)
	r.W = max(r.W, layout.MinSize(reg, w.Kind, toColumns).W)
	r.H = max(r.H, layout.MinSize(reg, w.Kind, toColumns).H)
	r = grid.ClampRect(r, toColumns)
	if r.WithinRows() && collision.FirstOverlap(placed, r, -1) < 0 {
		return r, nil
	}
	res, err := placement.Scan(placed, r.Size(), toColumns)
	if err != nil {
		return grid.Rect{}, apperr.Wrap(apperr.ErrCodePlacementExhausted, err, "re-placing widget %q", w.ID)
	}
	return res.Rect(r.Size()), nil
}

// Sync makes every breakpoint hold exactly the widget ids of the source
// breakpoint. Widgets missing from a breakpoint are derived into it from
// their source rect; widgets absent from the source are deleted without
// moving the rest. Title and config are copied from the source, positions
// are not.
func Sync(s Set, source string, reg widget.Registry) (Set, error) {
	src, err := s.Layout(source)
	if err != nil {
		return s, err
	}
	if reg == nil {
		reg = widget.DefaultCatalog()
	}
	out := s.Clone()
	srcIDs := idSet(src)

	for _, bp := range out.Breakpoints {
		if bp.Name == source {
			continue
		}
		target := out.Layouts[bp.Name]
		kept := layout.New(bp.Columns)
		present := make(map[string]struct{}, len(target.Widgets))
		for _, w := range target.Widgets {
			if _, ok := srcIDs[w.ID]; !ok {
				continue
			}
			if _, dup := present[w.ID]; dup {
				continue
			}
			sw, _ := src.Get(w.ID)
			w.Kind, w.Title, w.Config = sw.Kind, sw.Title, sw.Config
			kept.Widgets = append(kept.Widgets, w)
			present[w.ID] = struct{}{}
		}

		rects := kept.Rects()
		for _, w := range src.Widgets {
			if _, ok := present[w.ID]; ok {
				continue
			}
			r, err := deriveRect(rects, w, src.Columns, bp.Columns, reg)
			if err != nil {
				return s, err
			}
			w = w.Clone()
			w.Rect = r
			kept.Widgets = append(kept.Widgets, w)
			rects = append(rects, r)
		}
		out.Layouts[bp.Name] = kept
	}
	return out, nil
}

// Rederive replaces every other breakpoint with a fresh [Derive] of the
// source breakpoint, discarding per-breakpoint positions.
func Rederive(s Set, source string, reg widget.Registry) (Set, error) {
	src, err := s.Layout(source)
	if err != nil {
		return s, err
	}
	out := s.Clone()
	for _, bp := range out.Breakpoints {
		if bp.Name == source {
			continue
		}
		l, err := Derive(src, bp.Columns, reg)
		if err != nil {
			return s, err
		}
		out.Layouts[bp.Name] = l
	}
	return out, nil
}
