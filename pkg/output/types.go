// Package output provides formatting and output generation for lint results.
package output

import (
	"time"

	"github.com/ccollicutt/frostlint/pkg/linter"
)

// Report is the complete lint output.
type Report struct {
	// Summary provides aggregate statistics.
	Summary Summary `json:"summary"`

	// Results contains the diagnostics of each unit.
	Results []linter.UnitResult `json:"results"`

	// Metadata provides context about the run.
	Metadata Metadata `json:"metadata"`
}

// Summary provides aggregate statistics.
type Summary struct {
	// UnitsChecked is the number of source units handed to the checker.
	UnitsChecked int `json:"units_checked"`

	// UnitsWithIssues is the number of units with at least one diagnostic.
	UnitsWithIssues int `json:"units_with_issues"`

	// UnitsFailed is the number of units the checker could not analyze.
	UnitsFailed int `json:"units_failed"`

	// Errors and Warnings count diagnostics by severity.
	Errors   int `json:"errors"`
	Warnings int `json:"warnings"`

	// TotalIssues is Errors + Warnings.
	TotalIssues int `json:"total_issues"`
}

// Metadata provides context about the run.
type Metadata struct {
	// ConfigFile is the configuration used, empty for defaults.
	ConfigFile string `json:"config_file,omitempty"`

	// Checker and CheckerVersion identify the executable that ran.
	Checker        string `json:"checker"`
	CheckerVersion string `json:"checker_version"`

	// Dialect is the parser dialect.
	Dialect string `json:"dialect"`

	// AnalyzedAt is when the run completed.
	AnalyzedAt time.Time `json:"analyzed_at"`

	// Duration is how long the run took.
	Duration time.Duration `json:"duration"`
}

// NewReport creates a Report from a lint result.
func NewReport(result *linter.Result, configFile string) *Report {
	errs, warns := result.Counts()
	return &Report{
		Results: result.Units,
		Summary: Summary{
			UnitsChecked:    len(result.Units),
			UnitsWithIssues: result.UnitsWithRecords(),
			UnitsFailed:     result.FailedUnits(),
			Errors:          errs,
			Warnings:        warns,
			TotalIssues:     errs + warns,
		},
		Metadata: Metadata{
			ConfigFile:     configFile,
			Checker:        result.Checker.Path,
			CheckerVersion: result.Checker.Version,
			Dialect:        result.Metadata.Dialect,
			AnalyzedAt:     result.Metadata.EndTime,
			Duration:       result.Metadata.EndTime.Sub(result.Metadata.StartTime),
		},
	}
}

// HasIssues returns true if any diagnostics were reported.
func (r *Report) HasIssues() bool {
	return r.Summary.TotalIssues > 0
}
