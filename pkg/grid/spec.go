package grid

// Pixel geometry defaults, matching the dashboard canvas.
const (
	DefaultRowHeight      = 80
	DefaultMargin         = 16
	DefaultPadding        = 16
	DefaultContainerWidth = 1200
)

// Spec is the pixel geometry of one grid: how many columns it has and how
// large a cell is on screen. Margins sit between cells, padding sits between
// the outermost cells and the container edge.
type Spec struct {
	Columns        int        `toml:"columns" json:"columns"`
	RowHeight      float64    `toml:"row_height" json:"rowHeight"`
	Margin         [2]float64 `toml:"margin" json:"margin"`
	Padding        [2]float64 `toml:"padding" json:"padding"`
	ContainerWidth float64    `toml:"container_width" json:"containerWidth"`
}

// DefaultSpec returns the default canvas geometry for the given column count.
func DefaultSpec(columns int) Spec {
	return Spec{
		Columns:        columns,
		RowHeight:      DefaultRowHeight,
		Margin:         [2]float64{DefaultMargin, DefaultMargin},
		Padding:        [2]float64{DefaultPadding, DefaultPadding},
		ContainerWidth: DefaultContainerWidth,
	}
}

// WithColumns returns a copy of s for a different column count.
func (s Spec) WithColumns(columns int) Spec {
	s.Columns = columns
	return s
}

// ColumnWidth returns the on-screen width of a single column in pixels.
func (s Spec) ColumnWidth() float64 {
	if s.Columns < 1 {
		return 0
	}
	usable := s.ContainerWidth - s.Margin[0]*float64(s.Columns-1) - 2*s.Padding[0]
	if usable <= 0 {
		return 0
	}
	return usable / float64(s.Columns)
}

// CellPitch returns the pixel distance between the origins of adjacent
// cells on each axis.
func (s Spec) CellPitch() (colPx, rowPx float64) {
	colPx = s.ColumnWidth()
	if colPx > 0 {
		colPx += s.Margin[0]
	}
	rowPx = s.RowHeight
	if rowPx > 0 {
		rowPx += s.Margin[1]
	}
	return colPx, rowPx
}

// CellDelta converts a pointer displacement into a cell displacement.
func (s Spec) CellDelta(d PixelDelta) (dCols, dRows int) {
	colPx, rowPx := s.CellPitch()
	return PixelDeltaToCellDelta(d.DX, d.DY, colPx, rowPx)
}

// PixelDeltaFor returns the pointer displacement that moves exactly the
// given number of cells. It is the inverse of CellDelta.
func (s Spec) PixelDeltaFor(dCols, dRows int) PixelDelta {
	colPx, rowPx := s.CellPitch()
	return PixelDelta{DX: float64(dCols) * colPx, DY: float64(dRows) * rowPx}
}
