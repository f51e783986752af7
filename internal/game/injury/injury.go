// Package injury implements the standalone injury-severity probability model.
// The event engine never consults it; the host rolls here after a critical
// hazard event lands and applies the outcome to the hero itself.
package injury

import "github.com/cory-johannsen/delve/internal/game/rng"

// Severity is the outcome class of an injury roll.
type Severity string

const (
	SeverityNone     Severity = "none"
	SeverityMinor    Severity = "minor"
	SeverityModerate Severity = "moderate"
	SeveritySevere   Severity = "severe"
)

type band struct {
	severity Severity
	weight   int
	// penalty is the inclusive extra-health-loss range for this severity.
	penaltyMin int
	penaltyMax int
}

// Table is a weighted injury-severity distribution.
type Table struct {
	bands []band
}

// DefaultTable returns the standard distribution: mostly shrugged off,
// rarely severe.
func DefaultTable() *Table {
	return &Table{bands: []band{
		{SeverityNone, 40, 0, 0},
		{SeverityMinor, 35, 2, 6},
		{SeverityModerate, 20, 5, 12},
		{SeveritySevere, 5, 10, 25},
	}}
}

// Roll draws a severity from the table's weighted distribution.
//
// Precondition: src must be non-nil.
func (t *Table) Roll(src rng.Source) Severity {
	total := 0
	for _, b := range t.bands {
		total += b.weight
	}
	cursor := src.Intn(total)
	for _, b := range t.bands {
		cursor -= b.weight
		if cursor < 0 {
			return b.severity
		}
	}
	return t.bands[len(t.bands)-1].severity
}

// Penalty rolls the extra health loss for a severity; 0 for SeverityNone or
// an unknown severity.
//
// Precondition: src must be non-nil.
func (t *Table) Penalty(severity Severity, src rng.Source) int {
	for _, b := range t.bands {
		if b.severity == severity {
			if b.penaltyMax == 0 {
				return 0
			}
			return rng.IntBetween(src, b.penaltyMin, b.penaltyMax)
		}
	}
	return 0
}
