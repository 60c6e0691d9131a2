// Package cellref converts between A1-style range notation and zero-based
// row/column geometry.
package cellref

import (
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// ErrInvalidRange indicates malformed range notation.
var ErrInvalidRange = errors.New("invalid range")

// ParseError describes why a notation string was rejected.
type ParseError struct {
	Notation string
	Reason   string
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("invalid range %q: %s", e.Notation, e.Reason)
}

func (e *ParseError) Unwrap() error {
	return ErrInvalidRange
}

// Range is a rectangular block of cells. Row and Col are zero-based; the
// counts are at least 1 for any range produced by Parse.
type Range struct {
	Row      int `json:"row"`
	Col      int `json:"col"`
	RowCount int `json:"rowCount"`
	ColCount int `json:"colCount"`
}

// Valid reports whether r describes at least one cell at a non-negative origin.
func (r Range) Valid() bool {
	return r.Row >= 0 && r.Col >= 0 && r.RowCount >= 1 && r.ColCount >= 1
}

// Overlaps reports whether r and o share at least one cell.
func (r Range) Overlaps(o Range) bool {
	return !(r.Row+r.RowCount <= o.Row ||
		r.Row >= o.Row+o.RowCount ||
		r.Col+r.ColCount <= o.Col ||
		r.Col >= o.Col+o.ColCount)
}

// Cells returns the names of the top-left and bottom-right cells of r.
func (r Range) Cells() (topLeft, bottomRight string) {
	rows, cols := max(r.RowCount, 1), max(r.ColCount, 1)
	topLeft = IndexToLetters(r.Col) + strconv.Itoa(r.Row+1)
	bottomRight = IndexToLetters(r.Col+cols-1) + strconv.Itoa(r.Row+rows)
	return topLeft, bottomRight
}

func (r Range) String() string {
	return Format(r)
}

// Parse accepts "A1:C5" or a single cell "B7". Column letters are
// case-insensitive. Reversed corners are normalised so the result always
// starts at the top-left cell.
func Parse(notation string) (Range, error) {
	s := strings.TrimSpace(notation)
	if s == "" {
		return Range{}, &ParseError{Notation: notation, Reason: "empty"}
	}

	parts := strings.Split(s, ":")
	if len(parts) > 2 {
		return Range{}, &ParseError{Notation: notation, Reason: "too many corners"}
	}

	startCol, startRow, err := splitCell(parts[0])
	if err != nil {
		return Range{}, &ParseError{Notation: notation, Reason: err.Error()}
	}
	endCol, endRow := startCol, startRow
	if len(parts) == 2 {
		endCol, endRow, err = splitCell(parts[1])
		if err != nil {
			return Range{}, &ParseError{Notation: notation, Reason: err.Error()}
		}
	}

	if endCol < startCol {
		startCol, endCol = endCol, startCol
	}
	if endRow < startRow {
		startRow, endRow = endRow, startRow
	}

	return Range{
		Row:      startRow,
		Col:      startCol,
		RowCount: endRow - startRow + 1,
		ColCount: endCol - startCol + 1,
	}, nil
}

// Format renders r in two-corner form ("A1:A1" for a single cell). Counts
// below 1 are treated as 1.
func Format(r Range) string {
	rows := max(r.RowCount, 1)
	cols := max(r.ColCount, 1)
	return fmt.Sprintf("%s%d:%s%d",
		IndexToLetters(r.Col), r.Row+1,
		IndexToLetters(r.Col+cols-1), r.Row+rows)
}

// Normalize returns the canonical form of a notation string. Notation that
// does not parse is trimmed and upper-cased but otherwise left alone.
func Normalize(notation string) string {
	r, err := Parse(notation)
	if err != nil {
		return strings.ToUpper(strings.TrimSpace(notation))
	}
	return Format(r)
}

// LettersToIndex converts column letters to a zero-based index (A=0, Z=25,
// AA=26).
func LettersToIndex(letters string) (int, error) {
	if letters == "" {
		return 0, errors.New("missing column letters")
	}
	n := 0
	for _, ch := range strings.ToUpper(letters) {
		if ch < 'A' || ch > 'Z' {
			return 0, fmt.Errorf("invalid column letter %q", ch)
		}
		if n > (math.MaxInt32-26)/26 {
			return 0, errors.New("column out of range")
		}
		n = n*26 + int(ch-'A'+1)
	}
	return n - 1, nil
}

// IndexToLetters converts a zero-based column index to letters. Negative
// indexes yield "".
func IndexToLetters(index int) string {
	if index < 0 {
		return ""
	}
	var buf []byte
	for n := index + 1; n > 0; n = (n - 1) / 26 {
		buf = append(buf, byte('A'+(n-1)%26))
	}
	for i, j := 0, len(buf)-1; i < j; i, j = i+1, j-1 {
		buf[i], buf[j] = buf[j], buf[i]
	}
	return string(buf)
}

// splitCell splits "AB12" into a zero-based column and row.
func splitCell(cell string) (col, row int, err error) {
	i := 0
	for i < len(cell) && isLetter(cell[i]) {
		i++
	}
	if i == 0 {
		return 0, 0, fmt.Errorf("cell %q has no column letters", cell)
	}
	digits := cell[i:]
	if digits == "" {
		return 0, 0, fmt.Errorf("cell %q has no row number", cell)
	}
	for j := 0; j < len(digits); j++ {
		if digits[j] < '0' || digits[j] > '9' {
			return 0, 0, fmt.Errorf("cell %q has a malformed row number", cell)
		}
	}

	col, err = LettersToIndex(cell[:i])
	if err != nil {
		return 0, 0, err
	}
	n, err := strconv.Atoi(digits)
	if err != nil || n < 1 || n > math.MaxInt32 {
		return 0, 0, fmt.Errorf("cell %q has an out of range row number", cell)
	}
	return col, n - 1, nil
}

func isLetter(b byte) bool {
	return (b >= 'A' && b <= 'Z') || (b >= 'a' && b <= 'z')
}
