// Package geometry maps between pixel rectangles on a sheet canvas and
// snapped cell ranges.
package geometry

import "github.com/SanChiaki/sr-template-editor/pkg/smartreport/cellref"

// MaxScanIndex caps every row and column scan. Overlays only live in the
// visible grid, so larger sheets are not searched.
const MaxScanIndex = 100

// SizeProvider reports the pixel size of individual rows and columns.
type SizeProvider interface {
	ColumnWidth(col int) float64
	RowHeight(row int) float64
}

// Rect is a pixel-space rectangle.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// Snap converts a pixel rectangle into the cell range it covers. The start
// cell is the one containing (x, y); the span keeps adding whole cells until
// it reaches the requested extent. The result always spans at least one row
// and one column.
func Snap(x, y, width, height float64, sizes SizeProvider) cellref.Range {
	col := startIndex(x, sizes.ColumnWidth)
	row := startIndex(y, sizes.RowHeight)

	return cellref.Range{
		Row:      row,
		Col:      col,
		RowCount: spanCount(row, height, sizes.RowHeight),
		ColCount: spanCount(col, width, sizes.ColumnWidth),
	}
}

// SnapRect is Snap for a Rect.
func SnapRect(r Rect, sizes SizeProvider) cellref.Range {
	return Snap(r.X, r.Y, r.Width, r.Height, sizes)
}

// Bounds computes the pixel rectangle covering r.
func Bounds(r cellref.Range, sizes SizeProvider) Rect {
	var b Rect
	for i := 0; i < r.Col; i++ {
		b.X += sizes.ColumnWidth(i)
	}
	for i := 0; i < r.Row; i++ {
		b.Y += sizes.RowHeight(i)
	}
	for i := 0; i < r.ColCount; i++ {
		b.Width += sizes.ColumnWidth(r.Col + i)
	}
	for i := 0; i < r.RowCount; i++ {
		b.Height += sizes.RowHeight(r.Row + i)
	}
	return b
}

// CellAt returns the zero-based (row, col) of the cell under a drop point.
func CellAt(x, y float64, sizes SizeProvider) (row, col int) {
	return dropIndex(y, sizes.RowHeight), dropIndex(x, sizes.ColumnWidth)
}

func startIndex(pos float64, size func(int) float64) int {
	pos = max(pos, 0)
	acc := 0.0
	i := 0
	for i < MaxScanIndex {
		s := size(i)
		if pos >= acc && pos < acc+s {
			break
		}
		acc += s
		i++
	}
	return i
}

func spanCount(start int, extent float64, size func(int) float64) int {
	acc := 0.0
	n := 0
	for i := start; acc < extent && i < MaxScanIndex; i++ {
		acc += size(i)
		n++
	}
	return max(n, 1)
}

func dropIndex(pos float64, size func(int) float64) int {
	acc := 0.0
	i := 0
	for acc < pos && i < MaxScanIndex {
		acc += size(i)
		i++
	}
	return max(i-1, 0)
}

// Uniform is a SizeProvider where every column and every row share one size.
type Uniform struct {
	Column float64
	Row    float64
}

func (u Uniform) ColumnWidth(int) float64 { return u.Column }
func (u Uniform) RowHeight(int) float64   { return u.Row }
