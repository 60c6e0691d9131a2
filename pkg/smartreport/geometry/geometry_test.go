package geometry

import (
	"testing"

	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/cellref"
)

var defaultSizes = Uniform{Column: 64, Row: 20}

// varied has wide even columns and tall odd rows.
type varied struct{}

func (varied) ColumnWidth(i int) float64 {
	if i%2 == 0 {
		return 100
	}
	return 50
}

func (varied) RowHeight(i int) float64 {
	if i%2 == 1 {
		return 40
	}
	return 20
}

func TestSnap(t *testing.T) {
	tests := []struct {
		name     string
		x, y     float64
		w, h     float64
		sizes    SizeProvider
		expected string
	}{
		{"origin", 0, 0, 128, 40, defaultSizes, "A1:B2"},
		{"moved", 192, 60, 128, 40, defaultSizes, "D4:E5"},
		{"inside cell", 200, 65, 10, 5, defaultSizes, "D4:D4"},
		{"zero size", 70, 25, 0, 0, defaultSizes, "B2:B2"},
		{"partial cell rounds up", 0, 0, 65, 21, defaultSizes, "A1:B2"},
		{"negative origin", -10, -10, 64, 20, defaultSizes, "A1:A1"},
		{"varied", 100, 20, 150, 60, varied{}, "B2:C3"},
		{"varied mid cell", 120, 30, 100, 10, varied{}, "B2:C2"},
	}

	for _, tt := range tests {
		result := cellref.Format(Snap(tt.x, tt.y, tt.w, tt.h, tt.sizes))
		if result != tt.expected {
			t.Errorf("%s: Snap = %q, expected %q", tt.name, result, tt.expected)
		}
	}
}

func TestSnapCapsScan(t *testing.T) {
	r := Snap(1e9, 1e9, 1e9, 1e9, defaultSizes)
	if r.Col != MaxScanIndex || r.Row != MaxScanIndex {
		t.Errorf("start = (%d, %d), expected scan cap %d", r.Row, r.Col, MaxScanIndex)
	}
	if r.RowCount != 1 || r.ColCount != 1 {
		t.Errorf("span = %dx%d, expected minimum 1x1", r.RowCount, r.ColCount)
	}

	r = Snap(0, 0, 1e9, 1e9, defaultSizes)
	if r.ColCount != MaxScanIndex || r.RowCount != MaxScanIndex {
		t.Errorf("span = %dx%d, expected cap %d", r.RowCount, r.ColCount, MaxScanIndex)
	}
}

func TestBounds(t *testing.T) {
	tests := []struct {
		location string
		sizes    SizeProvider
		expected Rect
	}{
		{"A1:B2", defaultSizes, Rect{X: 0, Y: 0, Width: 128, Height: 40}},
		{"D4:E5", defaultSizes, Rect{X: 192, Y: 60, Width: 128, Height: 40}},
		{"B2:C3", varied{}, Rect{X: 100, Y: 20, Width: 150, Height: 60}},
	}

	for _, tt := range tests {
		r, err := cellref.Parse(tt.location)
		if err != nil {
			t.Fatalf("Parse(%q): %v", tt.location, err)
		}
		if result := Bounds(r, tt.sizes); result != tt.expected {
			t.Errorf("Bounds(%q) = %+v, expected %+v", tt.location, result, tt.expected)
		}
	}
}

func TestBoundsSnapInverse(t *testing.T) {
	for _, sizes := range []SizeProvider{defaultSizes, varied{}} {
		for _, location := range []string{"A1:A1", "C3:F9", "J2:K20", "Z10:AB12"} {
			r, _ := cellref.Parse(location)
			back := SnapRect(Bounds(r, sizes), sizes)
			if back != r {
				t.Errorf("Snap(Bounds(%q)) = %q", location, cellref.Format(back))
			}
		}
	}
}

func TestCellAt(t *testing.T) {
	tests := []struct {
		x, y     float64
		row, col int
	}{
		{0, 0, 0, 0},
		{10, 10, 0, 0},
		{64, 20, 0, 0},
		{70, 25, 1, 1},
		{300, 100, 4, 4},
		{1e9, 1e9, MaxScanIndex - 1, MaxScanIndex - 1},
	}

	for _, tt := range tests {
		row, col := CellAt(tt.x, tt.y, defaultSizes)
		if row != tt.row || col != tt.col {
			t.Errorf("CellAt(%v, %v) = (%d, %d), expected (%d, %d)", tt.x, tt.y, row, col, tt.row, tt.col)
		}
	}
}
