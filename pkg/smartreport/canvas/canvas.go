// Package canvas defines the contract between the layout coordinator and the
// spreadsheet widget that draws overlays, and ships an in-memory
// implementation of it.
package canvas

import (
	"errors"

	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/cellref"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/geometry"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/models"
)

var (
	// ErrUnavailable indicates the canvas is not initialised yet.
	ErrUnavailable = errors.New("canvas unavailable")
	// ErrUnknownOverlay indicates a stale handle or an id with no overlay.
	ErrUnknownOverlay = errors.New("unknown overlay")
	// ErrDuplicateOverlay indicates an overlay with the same id already exists.
	ErrDuplicateOverlay = errors.New("overlay already exists")
)

// Handle refers to one overlay object owned by the canvas.
type Handle interface {
	OverlayID() string
}

// Listener receives canvas notifications. Nil fields are skipped.
type Listener struct {
	// GeometryChanged fires after the user moved or resized an overlay.
	GeometryChanged func(id string)
	// Removed fires after any overlay disappeared; it does not say which.
	Removed func()
	// SelectionChanged fires when overlay selection changes. ok is false
	// when no overlay is selected.
	SelectionChanged func(id string, ok bool)
}

// Canvas is the spreadsheet surface overlays are drawn on.
type Canvas interface {
	geometry.SizeProvider

	CreateOverlay(id string, bounds geometry.Rect, style models.Style) (Handle, error)
	RemoveOverlay(id string) error
	SetOverlayText(h Handle, text string) error
	SetOverlaySelected(h Handle, selected bool) error
	OverlayBounds(id string) (geometry.Rect, error)
	ListOverlayIDs() ([]string, error)

	// CurrentSelection returns the selected cell block, if any.
	CurrentSelection() (cellref.Range, bool)

	// Subscribe registers l and returns a function that removes it.
	Subscribe(l Listener) (unsubscribe func())
}
