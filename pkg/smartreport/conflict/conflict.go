// Package conflict detects overlapping component placements.
package conflict

import (
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/cellref"
	"github.com/SanChiaki/sr-template-editor/pkg/smartreport/models"
)

// FindConflict returns the first component whose range overlaps candidate.
// The component with excludeID is skipped, as are components whose location
// does not parse.
func FindConflict(candidate cellref.Range, existing []models.Component, excludeID string) (models.Component, bool) {
	for _, c := range existing {
		if excludeID != "" && c.ID == excludeID {
			continue
		}
		r, err := cellref.Parse(c.Location)
		if err != nil {
			continue
		}
		if candidate.Overlaps(r) {
			return c, true
		}
	}
	return models.Component{}, false
}

// Overlaps reports whether candidate overlaps any component in existing
// other than excludeID.
func Overlaps(candidate cellref.Range, existing []models.Component, excludeID string) bool {
	_, ok := FindConflict(candidate, existing, excludeID)
	return ok
}

// Pair is two components whose ranges overlap.
type Pair struct {
	A, B models.Component
}

// Pairs lists every overlapping pair in components, in list order.
func Pairs(components []models.Component) []Pair {
	var pairs []Pair
	ranges := make([]*cellref.Range, len(components))
	for i, c := range components {
		if r, err := cellref.Parse(c.Location); err == nil {
			ranges[i] = &r
		}
	}
	for i := range components {
		if ranges[i] == nil {
			continue
		}
		for j := i + 1; j < len(components); j++ {
			if ranges[j] != nil && ranges[i].Overlaps(*ranges[j]) {
				pairs = append(pairs, Pair{A: components[i], B: components[j]})
			}
		}
	}
	return pairs
}
