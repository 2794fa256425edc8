package output

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/fatih/color"

	"github.com/ccollicutt/frostlint/pkg/diagnostic"
	"github.com/ccollicutt/frostlint/pkg/linter"
)

// TextFormatter formats reports as compiler-style text lines.
type TextFormatter struct {
	opts FormatOptions

	errorColor *color.Color
	warnColor  *color.Color
	pathColor  *color.Color
	dimColor   *color.Color
}

// NewTextFormatter creates a new text formatter with the given options.
func NewTextFormatter(opts FormatOptions) *TextFormatter {
	f := &TextFormatter{
		opts:       opts,
		errorColor: color.New(color.FgRed, color.Bold),
		warnColor:  color.New(color.FgYellow, color.Bold),
		pathColor:  color.New(color.Bold),
		dimColor:   color.New(color.Faint),
	}
	for _, c := range []*color.Color{f.errorColor, f.warnColor, f.pathColor, f.dimColor} {
		if opts.Color {
			c.EnableColor()
		} else {
			c.DisableColor()
		}
	}
	return f
}

// Name returns the format name.
func (f *TextFormatter) Name() string {
	return "text"
}

// Format renders the report as text.
func (f *TextFormatter) Format(ctx context.Context, report *Report, w io.Writer) error {
	if f.opts.Quiet {
		return f.formatQuiet(report, w)
	}
	return f.formatFull(report, w)
}

func (f *TextFormatter) formatQuiet(report *Report, w io.Writer) error {
	_, err := fmt.Fprintf(w, "frostlint: %d files checked, %d with issues, %d errors, %d warnings\n",
		report.Summary.UnitsChecked,
		report.Summary.UnitsWithIssues,
		report.Summary.Errors,
		report.Summary.Warnings)
	return err
}

func (f *TextFormatter) formatFull(report *Report, w io.Writer) error {
	for i := range report.Results {
		if err := f.formatUnit(&report.Results[i], w); err != nil {
			return err
		}
	}

	if report.HasIssues() || report.Summary.UnitsFailed > 0 {
		fmt.Fprintln(w)
	}
	fmt.Fprintf(w, "%d files checked, %d with issues: %s, %s\n",
		report.Summary.UnitsChecked,
		report.Summary.UnitsWithIssues,
		plural(report.Summary.Errors, "error"),
		plural(report.Summary.Warnings, "warning"))
	if report.Summary.UnitsFailed > 0 {
		fmt.Fprintf(w, "%d files could not be analyzed by the checker\n", report.Summary.UnitsFailed)
	}

	if f.opts.Verbose {
		fmt.Fprintf(w, "Checker: %s (%s)\n", report.Metadata.Checker, report.Metadata.CheckerVersion)
		fmt.Fprintf(w, "Dialect: %s\n", report.Metadata.Dialect)
		fmt.Fprintf(w, "Duration: %s\n", report.Metadata.Duration.Round(1e6))
	}
	return nil
}

func (f *TextFormatter) formatUnit(unit *linter.UnitResult, w io.Writer) error {
	for _, r := range unit.Records {
		if _, err := fmt.Fprintln(w, f.formatRecord(unit.Path, r)); err != nil {
			return err
		}
	}
	if f.opts.Verbose && len(unit.Ignore) > 0 {
		fmt.Fprintf(w, "%s\n", f.dimColor.Sprintf("%s: ignored %s", unit.Path, strings.Join(unit.Ignore, ",")))
	}
	return nil
}

// formatRecord renders "path:line[:col]: severity[code]: message" with
// 1-based positions.
func (f *TextFormatter) formatRecord(path string, r diagnostic.Record) string {
	pos := fmt.Sprintf("%s:%d", path, r.Line+1)
	if r.Column != nil {
		pos += fmt.Sprintf(":%d", *r.Column+1)
	}

	label := r.Severity.String()
	if r.Code != "" {
		label += "[" + r.Code + "]"
	}
	if r.Severity == diagnostic.Error {
		label = f.errorColor.Sprint(label)
	} else {
		label = f.warnColor.Sprint(label)
	}

	msg := r.Message
	if r.Near != "" {
		msg += " " + f.dimColor.Sprintf("(near %q)", r.Near)
	}
	if r.Kind == diagnostic.KindUnexpected {
		msg += " " + f.dimColor.Sprint("(checker failed)")
	}
	return fmt.Sprintf("%s: %s: %s", f.pathColor.Sprint(pos), label, msg)
}

func plural(n int, word string) string {
	if n == 1 {
		return fmt.Sprintf("%d %s", n, word)
	}
	return fmt.Sprintf("%d %ss", n, word)
}
