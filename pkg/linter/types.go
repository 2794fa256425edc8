// Package linter runs the checker over source units and collects diagnostics.
package linter

import (
	"time"

	"github.com/ccollicutt/frostlint/pkg/checker"
	"github.com/ccollicutt/frostlint/pkg/diagnostic"
)

// UnitResult contains the diagnostics of a single source unit.
type UnitResult struct {
	// Path is the file that was checked.
	Path string `json:"path"`

	// Records are the diagnostics in checker output order.
	Records []diagnostic.Record `json:"records"`

	// Failed is set when the checker could not analyze the unit at all and
	// only reported its own failure.
	Failed bool `json:"failed,omitempty"`

	// Ignore is the effective ignore list after inline overrides.
	Ignore []string `json:"ignore,omitempty"`
}

// HasRecords returns true if the unit produced any diagnostics.
func (u *UnitResult) HasRecords() bool {
	return len(u.Records) > 0
}

// Result contains the output of a lint run.
type Result struct {
	// Units are in the order the units were passed to Lint.
	Units []UnitResult

	// Checker is the executable that produced the output.
	Checker checker.Executable

	Metadata Metadata
}

// Metadata provides context about the run.
type Metadata struct {
	// Dialect is the parser dialect in use.
	Dialect string

	// StartTime is when the run began.
	StartTime time.Time

	// EndTime is when the run completed.
	EndTime time.Time
}

// TotalRecords returns the number of diagnostics across all units.
func (r *Result) TotalRecords() int {
	total := 0
	for i := range r.Units {
		total += len(r.Units[i].Records)
	}
	return total
}

// Counts returns the number of errors and warnings across all units.
func (r *Result) Counts() (errors, warnings int) {
	for i := range r.Units {
		e, w := diagnostic.CountBySeverity(r.Units[i].Records)
		errors += e
		warnings += w
	}
	return errors, warnings
}

// UnitsWithRecords returns the number of units that produced diagnostics.
func (r *Result) UnitsWithRecords() int {
	count := 0
	for i := range r.Units {
		if r.Units[i].HasRecords() {
			count++
		}
	}
	return count
}

// FailedUnits returns the number of units the checker could not analyze.
func (r *Result) FailedUnits() int {
	count := 0
	for i := range r.Units {
		if r.Units[i].Failed {
			count++
		}
	}
	return count
}

// Fails reports whether any record is at least as severe as threshold.
// Warning is the lowest severity, so a Warning threshold fails on anything.
func (r *Result) Fails(threshold diagnostic.Severity) bool {
	errs, warns := r.Counts()
	if threshold == diagnostic.Warning {
		return errs+warns > 0
	}
	return errs > 0
}
