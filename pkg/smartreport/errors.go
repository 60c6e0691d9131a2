package smartreport

import (
	"errors"
	"fmt"

	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/cellref"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/models"
)

// ErrConflict indicates a placement that overlaps an existing component.
var ErrConflict = errors.New("range overlaps an existing component")

// ErrUnknownComponent indicates an id that is not in the component list.
var ErrUnknownComponent = errors.New("unknown component")

// ErrDuplicateComponent indicates an id that is already in the component list.
var ErrDuplicateComponent = errors.New("duplicate component id")

// ErrUnknownType indicates a component type outside models.ComponentTypes.
var ErrUnknownType = errors.New("unknown component type")

// ConflictError reports the component a placement collided with.
type ConflictError struct {
	Range cellref.Range
	With  models.Component
}

func (e *ConflictError) Error() string {
	return fmt.Sprintf("range %s overlaps component %q at %s", cellref.Format(e.Range), e.With.Name, e.With.Location)
}

func (e *ConflictError) Unwrap() error {
	return ErrConflict
}

// CanvasError represents a failed canvas operation.
type CanvasError struct {
	Op  string // "create", "remove", "text", "select", "bounds", "list"
	ID  string
	Err error
}

func (e *CanvasError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("canvas %s failed: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("canvas %s failed for %q: %v", e.Op, e.ID, e.Err)
}

func (e *CanvasError) Unwrap() error {
	return e.Err
}

// NewCanvasError creates a new CanvasError.
func NewCanvasError(op, id string, err error) *CanvasError {
	return &CanvasError{
		Op:  op,
		ID:  id,
		Err: err,
	}
}
