// Package smartreport binds typed smart components to cell ranges on a
// spreadsheet canvas and keeps the component list and the canvas overlays in
// step.
package smartreport

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/models"
)

// Options configures a Coordinator.
type Options struct {
	// CreateDelay is how long overlay creation waits after a list change.
	CreateDelay time.Duration
	// RecreateDelay separates removing an overlay from recreating it during
	// an update, so the canvas can finish its own bookkeeping.
	RecreateDelay time.Duration
	// ImportDelay is how long overlay creation waits after an import.
	ImportDelay time.Duration
	// SelectionRelease is how long canvas selection notifications are
	// ignored after the coordinator pushed a selection itself.
	SelectionRelease time.Duration
	// WarningTTL is how long a conflict warning stays current.
	WarningTTL time.Duration

	// Logger receives diagnostics for swallowed canvas failures.
	Logger zerolog.Logger

	// OnComponentsChange is called with a copy of the list after every change.
	OnComponentsChange func([]models.Component)
	// OnSelect is called when the selected component changes; ok is false
	// when nothing is selected.
	OnSelect func(c models.Component, ok bool)
	// OnConflict is called with each new conflict warning.
	OnConflict func(message string)
	// NewID generates component ids. Defaults to a random UUID.
	NewID func() string
}

// DefaultOptions returns the timings the canvas widget needs.
func DefaultOptions() Options {
	return Options{
		CreateDelay:      50 * time.Millisecond,
		RecreateDelay:    50 * time.Millisecond,
		ImportDelay:      100 * time.Millisecond,
		SelectionRelease: 100 * time.Millisecond,
		WarningTTL:       3 * time.Second,
		Logger:           zerolog.Nop(),
	}
}
