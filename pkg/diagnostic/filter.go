package diagnostic

import "strings"

// Filter drops records whose code starts with any of the ignore entries.
// Records without a code (syntax errors, checker failures) are always kept.
func Filter(records []Record, ignore []string) []Record {
	if len(ignore) == 0 {
		return records
	}
	kept := records[:0:0]
	for _, r := range records {
		if !ignored(r.Code, ignore) {
			kept = append(kept, r)
		}
	}
	return kept
}

func ignored(code string, ignore []string) bool {
	if code == "" {
		return false
	}
	for _, prefix := range ignore {
		if prefix != "" && strings.HasPrefix(code, prefix) {
			return true
		}
	}
	return false
}

// CountBySeverity returns the number of errors and warnings in records.
func CountBySeverity(records []Record) (errors, warnings int) {
	for _, r := range records {
		if r.Severity == Error {
			errors++
		} else {
			warnings++
		}
	}
	return errors, warnings
}
