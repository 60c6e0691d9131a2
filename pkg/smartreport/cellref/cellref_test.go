package cellref

import (
	"errors"
	"testing"

	"github.com/xuri/excelize/v2"
)

func TestParse(t *testing.T) {
	tests := []struct {
		input    string
		expected Range
	}{
		{"A1:C5", Range{Row: 0, Col: 0, RowCount: 5, ColCount: 3}},
		{"a1:b2", Range{Row: 0, Col: 0, RowCount: 2, ColCount: 2}},
		{"B7", Range{Row: 6, Col: 1, RowCount: 1, ColCount: 1}},
		{"AA10:AB11", Range{Row: 9, Col: 26, RowCount: 2, ColCount: 2}},
		{"C5:A1", Range{Row: 0, Col: 0, RowCount: 5, ColCount: 3}},
		{" D4:E5 ", Range{Row: 3, Col: 3, RowCount: 2, ColCount: 2}},
	}

	for _, tt := range tests {
		result, err := Parse(tt.input)
		if err != nil {
			t.Errorf("Parse(%q) unexpected error: %v", tt.input, err)
			continue
		}
		if result != tt.expected {
			t.Errorf("Parse(%q) = %+v, expected %+v", tt.input, result, tt.expected)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	inputs := []string{
		"",
		"A",
		"1",
		"A0",
		"1A",
		"A1:",
		":B2",
		"A1:B2:C3",
		"A-1",
		"A1.5",
		"$A$1",
		"Ä1",
		"ZZZZZZZZ1",
		"A99999999999",
	}

	for _, input := range inputs {
		_, err := Parse(input)
		if err == nil {
			t.Errorf("Parse(%q) expected error", input)
			continue
		}
		if !errors.Is(err, ErrInvalidRange) {
			t.Errorf("Parse(%q) error %v does not wrap ErrInvalidRange", input, err)
		}
		var pe *ParseError
		if !errors.As(err, &pe) || pe.Notation != input {
			t.Errorf("Parse(%q) error %v is not a ParseError for the input", input, err)
		}
	}
}

func TestFormat(t *testing.T) {
	tests := []struct {
		input    Range
		expected string
	}{
		{Range{Row: 0, Col: 0, RowCount: 5, ColCount: 3}, "A1:C5"},
		{Range{Row: 6, Col: 1, RowCount: 1, ColCount: 1}, "B7:B7"},
		{Range{Row: 3, Col: 25, RowCount: 1, ColCount: 2}, "Z4:AA4"},
		{Range{Row: 0, Col: 0, RowCount: 0, ColCount: 0}, "A1:A1"},
	}

	for _, tt := range tests {
		result := Format(tt.input)
		if result != tt.expected {
			t.Errorf("Format(%+v) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	inputs := []string{"A1", "a1:b2", "C5:A1", "XFD1048576", "AB3:ZZ40", "b2:b2"}

	for _, input := range inputs {
		first, err := Parse(input)
		if err != nil {
			t.Fatalf("Parse(%q): %v", input, err)
		}
		second, err := Parse(Format(first))
		if err != nil {
			t.Fatalf("Parse(Format(%q)): %v", input, err)
		}
		if first != second {
			t.Errorf("round trip of %q: %+v != %+v", input, first, second)
		}
	}
}

func TestNormalize(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"a1:b2", "A1:B2"},
		{"c3", "C3:C3"},
		{"b2:a1", "A1:B2"},
		{" not a range ", "NOT A RANGE"},
	}

	for _, tt := range tests {
		if result := Normalize(tt.input); result != tt.expected {
			t.Errorf("Normalize(%q) = %q, expected %q", tt.input, result, tt.expected)
		}
	}
}

func TestColumnLetters(t *testing.T) {
	tests := []struct {
		index   int
		letters string
	}{
		{0, "A"},
		{25, "Z"},
		{26, "AA"},
		{51, "AZ"},
		{52, "BA"},
		{701, "ZZ"},
		{702, "AAA"},
		{16383, "XFD"},
	}

	for _, tt := range tests {
		if result := IndexToLetters(tt.index); result != tt.letters {
			t.Errorf("IndexToLetters(%d) = %q, expected %q", tt.index, result, tt.letters)
		}
		result, err := LettersToIndex(tt.letters)
		if err != nil || result != tt.index {
			t.Errorf("LettersToIndex(%q) = (%d, %v), expected %d", tt.letters, result, err, tt.index)
		}
	}

	if result := IndexToLetters(-1); result != "" {
		t.Errorf("IndexToLetters(-1) = %q, expected empty", result)
	}
	if _, err := LettersToIndex("A1"); err == nil {
		t.Error("LettersToIndex(\"A1\") expected error")
	}
}

func TestColumnLettersBijection(t *testing.T) {
	for i := 0; i < 20000; i++ {
		letters := IndexToLetters(i)
		back, err := LettersToIndex(letters)
		if err != nil || back != i {
			t.Fatalf("LettersToIndex(IndexToLetters(%d)) = (%d, %v)", i, back, err)
		}
	}
}

func TestColumnLettersMatchExcelize(t *testing.T) {
	for i := 0; i < excelize.MaxColumns; i++ {
		expected, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			t.Fatalf("ColumnNumberToName(%d): %v", i+1, err)
		}
		if result := IndexToLetters(i); result != expected {
			t.Fatalf("IndexToLetters(%d) = %q, excelize says %q", i, result, expected)
		}
	}
}

func TestOverlaps(t *testing.T) {
	a := Range{Row: 0, Col: 0, RowCount: 2, ColCount: 2} // A1:B2
	tests := []struct {
		name     string
		other    Range
		expected bool
	}{
		{"same", a, true},
		{"corner", Range{Row: 1, Col: 1, RowCount: 2, ColCount: 2}, true},
		{"right", Range{Row: 0, Col: 2, RowCount: 2, ColCount: 2}, false},
		{"below", Range{Row: 2, Col: 0, RowCount: 1, ColCount: 1}, false},
		{"contains", Range{Row: 0, Col: 0, RowCount: 10, ColCount: 10}, true},
		{"far", Range{Row: 50, Col: 50, RowCount: 1, ColCount: 1}, false},
	}

	for _, tt := range tests {
		if result := a.Overlaps(tt.other); result != tt.expected {
			t.Errorf("%s: Overlaps = %v, expected %v", tt.name, result, tt.expected)
		}
		if result := tt.other.Overlaps(a); result != tt.expected {
			t.Errorf("%s: reversed Overlaps = %v, expected %v", tt.name, result, tt.expected)
		}
	}
}

func TestCells(t *testing.T) {
	topLeft, bottomRight := Range{Row: 1, Col: 1, RowCount: 2, ColCount: 2}.Cells()
	if topLeft != "B2" || bottomRight != "C3" {
		t.Errorf("Cells() = %q, %q, expected B2, C3", topLeft, bottomRight)
	}
	topLeft, bottomRight = Range{Row: 4, Col: 27}.Cells()
	if topLeft != "AB5" || bottomRight != "AB5" {
		t.Errorf("Cells() of empty span = %q, %q, expected AB5, AB5", topLeft, bottomRight)
	}
}
