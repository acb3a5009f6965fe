// Package grid describes the cell coordinate system widgets are placed on.
//
// A dashboard canvas is a fixed number of columns wide and unbounded in the
// vertical direction. Positions and sizes are expressed in whole cells:
//
//	Rect{X: 4, Y: 0, W: 4, H: 3}
//
// covers columns 4..7 and rows 0..2. Everything in this package is a pure
// value computation; nothing here knows about widgets or layouts.
//
// # Pixels to cells
//
// Drag and resize gestures arrive as pixel deltas. [PixelDeltaToCellDelta]
// turns them into discrete cell deltas by rounding to the nearest cell, and
// [Spec] carries the pixel geometry (row height, margins, container padding)
// needed to compute the per-cell pitch:
//
//	spec := grid.DefaultSpec(12)
//	dCols, dRows := spec.CellDelta(grid.PixelDelta{DX: 210, DY: -95})
//
// # Bounds
//
// [ClampRect] forces any rectangle back inside the grid. It never fails, so
// callers can feed it corrupt input and still get an in-bounds result.
package grid
