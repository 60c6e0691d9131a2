package workbook

import "testing"

func TestColumnWidthToPixels(t *testing.T) {
	tests := []struct {
		chars    float64
		expected float64
	}{
		{DefaultColumnWidth, 64},
		{20, 140},
		{0, 0},
		{-1, 0},
	}

	for _, tt := range tests {
		if result := ColumnWidthToPixels(tt.chars); result != tt.expected {
			t.Errorf("ColumnWidthToPixels(%v) = %v, expected %v", tt.chars, result, tt.expected)
		}
	}
}

func TestPointsToPixels(t *testing.T) {
	tests := []struct {
		pt       float64
		expected float64
	}{
		{DefaultRowHeight, 20},
		{30, 40},
		{0, 0},
	}

	for _, tt := range tests {
		if result := PointsToPixels(tt.pt); result != tt.expected {
			t.Errorf("PointsToPixels(%v) = %v, expected %v", tt.pt, result, tt.expected)
		}
	}
}

func TestEMUToPixels(t *testing.T) {
	if result := EMUToPixels(9525 * 64); result != 64 {
		t.Errorf("EMUToPixels = %v, expected 64", result)
	}
}
