// Package collision answers whether a candidate rectangle is free given the
// rectangles already placed on a grid.
//
// Two tools are provided. [Overlaps] is the pairwise axis-aligned
// intersection test, cheap enough for validating whole layouts. [Occupancy]
// is a cell matrix labelled with the index of the rectangle covering each
// cell; it backs the scanning placement search and can re-derive the
// rectangles it was built from, which makes phantom overlaps and misreported
// gaps observable in tests.
package collision

import (
	"github.com/shaikhimroz/new-nfm-sub000/pkg/grid"
)

// Free marks an unoccupied cell in an [Occupancy] matrix.
const Free = -1

// Overlaps reports whether two rectangles share at least one cell.
func Overlaps(a, b grid.Rect) bool {
	return !(a.X >= b.X+b.W || a.X+a.W <= b.X || a.Y >= b.Y+b.H || a.Y+a.H <= b.Y)
}

// FirstOverlap returns the index of the first rectangle in rects that
// overlaps candidate, ignoring index skip. It returns -1 when candidate is
// clear of everything.
func FirstOverlap(rects []grid.Rect, candidate grid.Rect, skip int) int {
	for i, r := range rects {
		if i == skip {
			continue
		}
		if Overlaps(r, candidate) {
			return i
		}
	}
	return -1
}

// MaxRow returns the first row below every rectangle plus buffer rows.
func MaxRow(rects []grid.Rect, buffer int) int {
	bottom := 0
	for _, r := range rects {
		bottom = max(bottom, r.Bottom())
	}
	return bottom + buffer
}

// Occupancy is a rows × columns matrix recording which rectangle, by index,
// covers each cell. The column count is fixed; rows grow on demand when a
// marked rectangle extends below the current extent, up to [grid.MaxRows].
// Cells below that are clipped like cells past the last column.
type Occupancy struct {
	cols      int
	rows      int
	cells     []int
	count     int
	conflicts int
}

// Build marks every rectangle in rects on a fresh matrix of maxRow rows and
// totalColumns columns. Cells outside the column range are clipped. A cell
// claimed by more than one rectangle keeps its first owner and is counted as
// a conflict.
func Build(rects []grid.Rect, totalColumns, maxRow int) *Occupancy {
	o := &Occupancy{cols: max(totalColumns, 0)}
	o.grow(max(maxRow, 0))
	for i, r := range rects {
		o.mark(i, r)
	}
	o.count = len(rects)
	return o
}

// Columns returns the fixed column count.
func (o *Occupancy) Columns() int { return o.cols }

// Rows returns the current row extent.
func (o *Occupancy) Rows() int { return o.rows }

// Conflicts returns how many cells were claimed by more than one rectangle.
func (o *Occupancy) Conflicts() int { return o.conflicts }

// Owner returns the index of the rectangle covering (x, y), or [Free].
// Cells outside the matrix are reported as free.
func (o *Occupancy) Owner(x, y int) int {
	if x < 0 || y < 0 || x >= o.cols || y >= o.rows {
		return Free
	}
	return o.cells[y*o.cols+x]
}

// IsFree reports whether every cell of r lies inside the matrix and is
// unoccupied.
func (o *Occupancy) IsFree(r grid.Rect) bool {
	if r.W < 1 || r.H < 1 || r.X < 0 || r.Y < 0 || r.X+r.W > o.cols || r.Y+r.H > o.rows {
		return false
	}
	for y := r.Y; y < r.Y+r.H; y++ {
		row := o.cells[y*o.cols : (y+1)*o.cols]
		for x := r.X; x < r.X+r.W; x++ {
			if row[x] != Free {
				return false
			}
		}
	}
	return true
}

// IsFreeExcept is IsFree treating cells owned by index skip as unoccupied.
// It lets a widget be tested against its own prior footprint.
func (o *Occupancy) IsFreeExcept(r grid.Rect, skip int) bool {
	if r.W < 1 || r.H < 1 || r.X < 0 || r.Y < 0 || r.X+r.W > o.cols || r.Y+r.H > o.rows {
		return false
	}
	for y := r.Y; y < r.Y+r.H; y++ {
		for x := r.X; x < r.X+r.W; x++ {
			if owner := o.cells[y*o.cols+x]; owner != Free && owner != skip {
				return false
			}
		}
	}
	return true
}

// Regions re-derives one bounding rectangle per owner index from the marked
// cells. Owners with no marked cells (fully clipped) get a zero Rect.
func (o *Occupancy) Regions() []grid.Rect {
	out := make([]grid.Rect, o.count)
	seen := make([]bool, o.count)
	for y := 0; y < o.rows; y++ {
		for x := 0; x < o.cols; x++ {
			i := o.cells[y*o.cols+x]
			if i == Free {
				continue
			}
			if !seen[i] {
				out[i] = grid.Rect{X: x, Y: y, W: 1, H: 1}
				seen[i] = true
				continue
			}
			r := &out[i]
			if x < r.X {
				r.W += r.X - x
				r.X = x
			}
			r.W = max(r.W, x-r.X+1)
			r.H = max(r.H, y-r.Y+1)
		}
	}
	return out
}

// Occupied returns the number of marked cells.
func (o *Occupancy) Occupied() int {
	n := 0
	for _, c := range o.cells {
		if c != Free {
			n++
		}
	}
	return n
}

func (o *Occupancy) mark(owner int, r grid.Rect) {
	if r.W < 1 || r.H < 1 {
		return
	}
	if r.Y >= grid.MaxRows {
		return
	}
	y1 := min(r.Y+min(r.H, grid.MaxRows), grid.MaxRows)
	o.grow(y1)
	x0, x1 := max(r.X, 0), min(r.X+r.W, o.cols)
	y0 := max(r.Y, 0)
	for y := y0; y < y1; y++ {
		for x := x0; x < x1; x++ {
			c := &o.cells[y*o.cols+x]
			if *c == Free {
				*c = owner
			} else {
				o.conflicts++
			}
		}
	}
}

func (o *Occupancy) grow(rows int) {
	rows = min(rows, grid.MaxRows)
	if rows <= o.rows {
		return
	}
	extra := make([]int, (rows-o.rows)*o.cols)
	for i := range extra {
		extra[i] = Free
	}
	o.cells = append(o.cells, extra...)
	o.rows = rows
}
