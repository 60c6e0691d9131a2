package workbook

import (
	"math"
	"strings"

	"github.com/xuri/excelize/v2"

	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/cellref"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/geometry"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/models"
)

// ShapeLineWidth is the border width of stamped shapes, in points.
const ShapeLineWidth = 1.5

// Stamp draws every positioned component on sheet as a labelled rectangle
// covering its cell range, the way the editor shows it. Components whose
// location does not parse are skipped. It returns the number of shapes drawn.
func Stamp(f *excelize.File, sheet string, components []models.Component) (int, error) {
	sizes, err := NewSizes(f, sheet)
	if err != nil {
		return 0, err
	}

	n := 0
	for _, c := range components {
		r, err := cellref.Parse(c.Location)
		if err != nil {
			continue
		}
		shape, err := shapeFor(c, r, sizes)
		if err != nil {
			return n, NewStampError(sizes.Sheet, c.ID, err)
		}
		if err := f.AddShape(sizes.Sheet, shape); err != nil {
			return n, NewStampError(sizes.Sheet, c.ID, err)
		}
		n++
	}
	return n, nil
}

func shapeFor(c models.Component, r cellref.Range, sizes geometry.SizeProvider) (*excelize.Shape, error) {
	style := c.EffectiveStyle()
	fill, err := excelColor(style.BackgroundColor)
	if err != nil {
		return nil, err
	}
	border, err := excelColor(style.BorderColor)
	if err != nil {
		return nil, err
	}
	text, err := excelColor(style.TextColor)
	if err != nil {
		return nil, err
	}

	label := c.Name
	if label == "" {
		label = c.Type.DisplayName()
	}

	bounds := geometry.Bounds(r, sizes)
	topLeft, _ := r.Cells()
	lineWidth := ShapeLineWidth
	return &excelize.Shape{
		Cell:   topLeft,
		Type:   "rect",
		Width:  uint(math.Round(bounds.Width)),
		Height: uint(math.Round(bounds.Height)),
		Fill:   excelize.Fill{Color: []string{fill}, Pattern: 1},
		Line:   excelize.ShapeLine{Color: border, Width: &lineWidth},
		Paragraph: []excelize.RichTextRun{
			{
				Text: label,
				Font: &excelize.Font{Color: text, Size: 10},
			},
		},
	}, nil
}

// excelColor converts a CSS color to the RRGGBB form excelize expects,
// flattening any transparency over white.
func excelColor(color string) (string, error) {
	hex, err := models.OpaqueHex(color)
	if err != nil {
		return "", err
	}
	return strings.ToUpper(strings.TrimPrefix(hex, "#")), nil
}
