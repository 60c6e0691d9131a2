// Package workbook reads and writes smart report layouts in xlsx files.
package workbook

import "math"

// EMUPerPixel is the number of EMUs (English Metric Units) per pixel at 96 DPI.
// 1 inch = 914400 EMU, 1 inch = 96 pixels at 96 DPI
// Therefore: 914400 / 96 = 9525 EMU per pixel
const EMUPerPixel = 9525

// MaxDigitWidth is the pixel width of the widest digit in the default
// 11pt Calibri font. Excel measures column widths in these digits.
const MaxDigitWidth = 7

// EMUToPixels converts EMU to pixels at 96 DPI.
func EMUToPixels(emu int64) float64 {
	return float64(emu) / EMUPerPixel
}

// PointsToPixels converts a row height in points to pixels at 96 DPI.
func PointsToPixels(pt float64) float64 {
	return math.Round(pt * 96 / 72)
}

// ColumnWidthToPixels converts a column width as stored in the sheet, in
// digit widths including cell padding, to pixels. The default stored width
// 9.140625 is 64 pixels.
func ColumnWidthToPixels(chars float64) float64 {
	if chars <= 0 {
		return 0
	}
	return math.Trunc((256*chars+math.Trunc(128/MaxDigitWidth))/256*MaxDigitWidth)
}
