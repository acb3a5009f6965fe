// Package placement finds a free position for a widget of a given size on a
// column grid that already holds other widgets.
//
// The search runs three tiers in order and the first success wins:
//
//  1. [TierAppend]: directly to the right of the most recently placed
//     rectangle, on the same row, if it fits and collides with nothing.
//  2. [TierScan]: a row-major scan of an occupancy matrix covering every
//     placed rectangle plus two spare rows. The first free top-left cell
//     wins, so ties resolve topmost then leftmost.
//  3. [TierNewRow]: column 0 of the first row below all content.
//
// Tier 3 sits below every rectangle, so [Find] only fails when the grid has
// no columns or the content already reaches [grid.MaxRows].
package placement

import (
	"errors"

	"github.com/shaikhimroz/new-nfm-sub000/pkg/collision"
	"github.com/shaikhimroz/new-nfm-sub000/pkg/grid"
)

// ScanBuffer is the number of empty rows the scan matrix extends below the
// lowest placed rectangle.
const ScanBuffer = 2

// ErrPlacementExhausted is returned when no tier produced a free position.
var ErrPlacementExhausted = errors.New("placement exhausted")

// Tier identifies which strategy produced a position.
type Tier int

const (
	TierAppend Tier = iota + 1
	TierScan
	TierNewRow
)

func (t Tier) String() string {
	switch t {
	case TierAppend:
		return "append"
	case TierScan:
		return "scan"
	case TierNewRow:
		return "new-row"
	default:
		return "unknown"
	}
}

// Result is a placement decision.
type Result struct {
	grid.Point
	Tier Tier
}

// Rect returns the placed rectangle for a widget of the given size.
func (r Result) Rect(size grid.Size) grid.Rect {
	return grid.Rect{X: r.X, Y: r.Y, W: size.W, H: size.H}
}

// Normalize returns size fitted to a grid of totalColumns columns: W in
// [1, totalColumns] and H in [1, grid.MaxRows].
func Normalize(size grid.Size, totalColumns int) grid.Size {
	size.W = min(max(size.W, 1), max(totalColumns, 1))
	size.H = min(max(size.H, 1), grid.MaxRows)
	return size
}

// Find places a rectangle of the given size among placed, which must be in
// insertion order (the last element is the most recently added). The size
// is normalised first; use [Normalize] to learn the footprint actually
// placed.
func Find(placed []grid.Rect, size grid.Size, totalColumns int) (Result, error) {
	if totalColumns < 1 {
		return Result{}, ErrPlacementExhausted
	}
	size = Normalize(size, totalColumns)
	if p, ok := appendBesideLast(placed, size, totalColumns); ok {
		return Result{Point: p, Tier: TierAppend}, nil
	}
	return Scan(placed, size, totalColumns)
}

// Scan runs only the full-grid scan and the new-row fallback. Relocating an
// existing widget uses it because "beside the last widget" carries no
// meaning there.
func Scan(placed []grid.Rect, size grid.Size, totalColumns int) (Result, error) {
	if totalColumns < 1 {
		return Result{}, ErrPlacementExhausted
	}
	size = Normalize(size, totalColumns)

	maxY := collision.MaxRow(placed, 0)
	occ := collision.Build(placed, totalColumns, min(maxY, grid.MaxRows)+ScanBuffer)
	for y := 0; y+size.H <= occ.Rows(); y++ {
		for x := 0; x+size.W <= totalColumns; x++ {
			if occ.IsFree(grid.Rect{X: x, Y: y, W: size.W, H: size.H}) {
				return Result{Point: grid.Point{X: x, Y: y}, Tier: TierScan}, nil
			}
		}
	}

	fallback := grid.Rect{X: 0, Y: maxY, W: size.W, H: size.H}
	if !fallback.WithinRows() || collision.FirstOverlap(placed, fallback, -1) >= 0 {
		return Result{}, ErrPlacementExhausted
	}
	return Result{Point: fallback.Origin(), Tier: TierNewRow}, nil
}

func appendBesideLast(placed []grid.Rect, size grid.Size, totalColumns int) (grid.Point, bool) {
	if len(placed) == 0 {
		return grid.Point{}, false
	}
	last := placed[len(placed)-1]
	if last.Right()+size.W > totalColumns {
		return grid.Point{}, false
	}
	candidate := grid.Rect{X: last.Right(), Y: last.Y, W: size.W, H: size.H}
	if candidate.X < 0 || !candidate.WithinRows() {
		return grid.Point{}, false
	}
	if collision.FirstOverlap(placed, candidate, -1) >= 0 {
		return grid.Point{}, false
	}
	return candidate.Origin(), true
}
