package workbook

import (
	"fmt"

	"github.com/xuri/excelize/v2"

	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/cellref"
)

// Default grid used when a sheet does not say otherwise.
const (
	DefaultColumnWidth = 9.140625 // stored width, 64px
	DefaultRowHeight   = 15.0     // points, 20px
)

// Sizes reads column widths and row heights from one sheet of a workbook, in
// pixels. Columns and rows are zero-based.
type Sizes struct {
	File  *excelize.File
	Sheet string
}

// NewSizes returns the sizes of sheet, or of the first sheet when sheet is
// empty.
func NewSizes(f *excelize.File, sheet string) (*Sizes, error) {
	if sheet == "" {
		sheet = f.GetSheetName(0)
	}
	if idx, err := f.GetSheetIndex(sheet); err != nil || idx < 0 {
		return nil, fmt.Errorf("%w: %q", ErrSheetNotFound, sheet)
	}
	return &Sizes{File: f, Sheet: sheet}, nil
}

func (s *Sizes) ColumnWidth(col int) float64 {
	width, err := s.File.GetColWidth(s.Sheet, cellref.IndexToLetters(col))
	if err != nil || width <= 0 {
		width = DefaultColumnWidth
	}
	return ColumnWidthToPixels(width)
}

func (s *Sizes) RowHeight(row int) float64 {
	height, err := s.File.GetRowHeight(s.Sheet, row+1)
	if err != nil || height <= 0 {
		height = DefaultRowHeight
	}
	return PointsToPixels(height)
}
