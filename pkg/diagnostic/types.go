// Package diagnostic turns raw checker output into normalized diagnostic records.
package diagnostic

import "fmt"

// Severity classifies a diagnostic record.
type Severity uint8

const (
	// Error is reported for E-codes, syntax errors and checker failures.
	Error Severity = iota
	// Warning is reported for I- and W-codes.
	Warning
)

func (s Severity) String() string {
	switch s {
	case Error:
		return "error"
	case Warning:
		return "warning"
	}
	return "unknown"
}

// MarshalText encodes the severity by name.
func (s Severity) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText decodes a severity name.
func (s *Severity) UnmarshalText(text []byte) error {
	sev, err := ParseSeverity(string(text))
	if err != nil {
		return err
	}
	*s = sev
	return nil
}

// ParseSeverity parses "error" or "warning".
func ParseSeverity(name string) (Severity, error) {
	switch name {
	case "error":
		return Error, nil
	case "warning":
		return Warning, nil
	}
	return Error, fmt.Errorf("unknown severity %q (must be error or warning)", name)
}

// severityForCode derives severity from the leading letter of a checker code.
func severityForCode(code string) Severity {
	if code != "" && code[0] == 'E' {
		return Error
	}
	return Warning
}

// Kind records which output shape produced a record.
type Kind uint8

const (
	// KindFinding is a regular coded finding.
	KindFinding Kind = iota
	// KindSyntaxError is a syntax error reported by the checker.
	KindSyntaxError
	// KindUnexpected means the checker itself failed on the unit.
	KindUnexpected
)

func (k Kind) String() string {
	switch k {
	case KindFinding:
		return "finding"
	case KindSyntaxError:
		return "syntax_error"
	case KindUnexpected:
		return "unexpected"
	}
	return "unknown"
}

// MarshalText encodes the kind by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText decodes a kind name.
func (k *Kind) UnmarshalText(text []byte) error {
	switch string(text) {
	case "finding":
		*k = KindFinding
	case "syntax_error":
		*k = KindSyntaxError
	case "unexpected":
		*k = KindUnexpected
	default:
		return fmt.Errorf("unknown diagnostic kind %q", text)
	}
	return nil
}

// Record is one normalized diagnostic.
//
// Line and Column are 0-based after normalization. Column is nil when the
// record carries a Near token or when the checker gave no usable column.
// Near and Column are never both set.
type Record struct {
	Line     int      `json:"line"`
	Column   *int     `json:"column,omitempty"`
	Severity Severity `json:"severity"`
	Code     string   `json:"code,omitempty"`
	Near     string   `json:"near,omitempty"`
	Message  string   `json:"message"`
	Kind     Kind     `json:"kind"`
}

// HasColumn reports whether the record has a numeric column.
func (r Record) HasColumn() bool {
	return r.Column != nil
}

// String renders the record as "line:col: severity[code]: message" using
// 1-based positions for display.
func (r Record) String() string {
	pos := fmt.Sprintf("%d", r.Line+1)
	if r.Column != nil {
		pos = fmt.Sprintf("%d:%d", r.Line+1, *r.Column+1)
	}
	label := r.Severity.String()
	if r.Code != "" {
		label += "[" + r.Code + "]"
	}
	msg := r.Message
	if r.Near != "" {
		msg += fmt.Sprintf(" (near %q)", r.Near)
	}
	return fmt.Sprintf("%s: %s: %s", pos, label, msg)
}

// HasOnlyUnexpected reports whether records is non-empty and consists solely
// of checker-failure records, meaning the unit was never analyzed.
func HasOnlyUnexpected(records []Record) bool {
	if len(records) == 0 {
		return false
	}
	for _, r := range records {
		if r.Kind != KindUnexpected {
			return false
		}
	}
	return true
}

func intPtr(v int) *int {
	return &v
}
