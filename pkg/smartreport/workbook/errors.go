package workbook

import (
	"errors"
	"fmt"
)

// ErrSheetNotFound indicates the named sheet does not exist in the workbook.
var ErrSheetNotFound = errors.New("sheet not found")

// ErrNotEmbedded indicates the workbook carries no component list.
var ErrNotEmbedded = errors.New("no embedded components")

// StampError represents a component that could not be drawn.
type StampError struct {
	Sheet       string
	ComponentID string
	Err         error
}

func (e *StampError) Error() string {
	return fmt.Sprintf("stamp error in sheet %q (component %s): %v", e.Sheet, e.ComponentID, e.Err)
}

func (e *StampError) Unwrap() error {
	return e.Err
}

// NewStampError creates a new StampError.
func NewStampError(sheet, componentID string, err error) *StampError {
	return &StampError{
		Sheet:       sheet,
		ComponentID: componentID,
		Err:         err,
	}
}
