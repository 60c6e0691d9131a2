package models

// Size is a span in whole cells.
type Size struct {
	Rows int
	Cols int
}

// FallbackSize is the drop size for types missing from DefaultSizes.
var FallbackSize = Size{Rows: 2, Cols: 2}

// DefaultSizes is the span a component occupies when dropped onto a single
// point instead of a selected range.
var DefaultSizes = map[ComponentType]Size{
	TypeText:      {Rows: 1, Cols: 2},
	TypeTable:     {Rows: 4, Cols: 5},
	TypeChart:     {Rows: 3, Cols: 4},
	TypeList:      {Rows: 4, Cols: 3},
	TypeMilestone: {Rows: 2, Cols: 2},
	TypeGantt:     {Rows: 4, Cols: 6},
	TypeImage:     {Rows: 3, Cols: 3},
	TypeFormula:   {Rows: 1, Cols: 2},
}

// DefaultSize returns the drop size for t.
func DefaultSize(t ComponentType) Size {
	if s, ok := DefaultSizes[t]; ok {
		return s
	}
	return FallbackSize
}
