package grid

import (
	"fmt"
	"math"
)

// MaxRows bounds the vertical extent of every grid. No widget may reach
// below row MaxRows, which keeps occupancy matrices small and coordinates
// far from integer overflow.
const MaxRows = 10000

// maxCellDelta bounds a single displacement in cells. Anything larger moves
// a widget off the grid on any axis, so larger deltas saturate.
const maxCellDelta = 1 << 20

// Rect is a widget footprint in cell units. X,Y is the top-left cell and
// W,H are the column and row spans.
type Rect struct {
	X int `json:"x" bson:"x"`
	Y int `json:"y" bson:"y"`
	W int `json:"w" bson:"w"`
	H int `json:"h" bson:"h"`
}

// Right returns the first column to the right of the rectangle.
func (r Rect) Right() int { return r.X + r.W }

// Bottom returns the first row below the rectangle.
func (r Rect) Bottom() int { return r.Y + r.H }

// Size returns the span of the rectangle.
func (r Rect) Size() Size { return Size{W: r.W, H: r.H} }

// Origin returns the top-left cell.
func (r Rect) Origin() Point { return Point{X: r.X, Y: r.Y} }

// Area returns the number of cells covered.
func (r Rect) Area() int { return r.W * r.H }

// At returns r moved so that its top-left cell is p.
func (r Rect) At(p Point) Rect {
	r.X, r.Y = p.X, p.Y
	return r
}

// Translate returns r shifted by the given cell deltas. Deltas beyond the
// grid's reach saturate rather than wrap.
func (r Rect) Translate(dCols, dRows int) Rect {
	r.X += clamp(dCols, -maxCellDelta, maxCellDelta)
	r.Y += clamp(dRows, -maxCellDelta, maxCellDelta)
	return r
}

// InBounds reports whether r lies inside a grid with the given column count.
func (r Rect) InBounds(totalColumns int) bool {
	return r.X >= 0 && r.Y >= 0 && r.W >= 1 && r.H >= 1 && r.X+r.W <= totalColumns
}

// WithinRows reports whether r starts at or below row 0 and ends no lower
// than [MaxRows].
func (r Rect) WithinRows() bool {
	return r.Y >= 0 && r.H >= 1 && r.H <= MaxRows && r.Y <= MaxRows-r.H
}

func (r Rect) String() string {
	return fmt.Sprintf("(%d,%d,%d,%d)", r.X, r.Y, r.W, r.H)
}

// Size is a column/row span.
type Size struct {
	W int `json:"w"`
	H int `json:"h"`
}

// IsZero reports whether no span was given.
func (s Size) IsZero() bool { return s.W == 0 && s.H == 0 }

// AtLeast returns s with each dimension raised to the matching floor.
func (s Size) AtLeast(floor Size) Size {
	return Size{W: max(s.W, floor.W), H: max(s.H, floor.H)}
}

// Point is a cell coordinate.
type Point struct {
	X int `json:"x"`
	Y int `json:"y"`
}

// PixelDelta is a pointer displacement in pixels.
type PixelDelta struct {
	DX float64 `json:"dx"`
	DY float64 `json:"dy"`
}

// PixelDeltaToCellDelta converts a pixel displacement into whole cells,
// rounding each axis to the nearest cell (halves round away from zero).
// A non-positive pitch on an axis yields no movement on that axis, as does
// a NaN quotient. Huge displacements saturate at a bound far beyond any
// grid.
func PixelDeltaToCellDelta(dx, dy, columnWidthPx, rowHeightPx float64) (dCols, dRows int) {
	if columnWidthPx > 0 {
		dCols = cells(dx / columnWidthPx)
	}
	if rowHeightPx > 0 {
		dRows = cells(dy / rowHeightPx)
	}
	return dCols, dRows
}

func cells(q float64) int {
	if math.IsNaN(q) {
		return 0
	}
	q = math.Round(q)
	if q > maxCellDelta {
		return maxCellDelta
	}
	if q < -maxCellDelta {
		return -maxCellDelta
	}
	return int(q)
}

// ClampRect forces r inside a grid of totalColumns columns: W into
// [1, totalColumns], X into [0, totalColumns-W], Y >= 0 and H >= 1.
// A non-positive column count is treated as a single column.
func ClampRect(r Rect, totalColumns int) Rect {
	if totalColumns < 1 {
		totalColumns = 1
	}
	r.W = clamp(r.W, 1, totalColumns)
	r.X = clamp(r.X, 0, totalColumns-r.W)
	r.Y = max(r.Y, 0)
	r.H = max(r.H, 1)
	return r
}

func clamp(v, lo, hi int) int {
	return min(max(v, lo), hi)
}
