package diagnostic

import (
	"fmt"
	"sort"
	"strings"
)

// ColumnDefault decides the column of a syntax error that carries none.
type ColumnDefault uint8

const (
	// ColumnAbsent leaves the column unset.
	ColumnAbsent ColumnDefault = iota
	// ColumnZero pins the column to the start of the line.
	ColumnZero
)

func (c ColumnDefault) String() string {
	if c == ColumnZero {
		return "zero"
	}
	return "absent"
}

// Override adjusts how records with a specific code are built.
type Override struct {
	// ClearNear drops the near token so the numeric column is kept.
	ClearNear bool
}

// Policy configures a Parser.
type Policy struct {
	// Multiline scans the whole output at once, which lets a syntax error
	// swallow its echoed source line and caret marker. Otherwise every
	// physical line is matched on its own.
	Multiline bool

	// SyntaxColumn applies to syntax errors reported without a column.
	SyntaxColumn ColumnDefault

	// Overrides is keyed by checker code (e.g. "E402").
	Overrides map[string]Override
}

// Dialect names.
const (
	DialectLine      = "line"
	DialectBlock     = "block"
	DialectBlockZero = "block-zero"
	DialectCompat    = "compat"

	DefaultDialect = DialectBlock
)

// dialects are the known output conventions of the checker over its
// releases, expressed as parser policies.
var dialects = map[string]Policy{
	DialectLine: {
		Multiline:    false,
		SyntaxColumn: ColumnAbsent,
	},
	DialectBlock: {
		Multiline:    true,
		SyntaxColumn: ColumnAbsent,
	},
	DialectBlockZero: {
		Multiline:    true,
		SyntaxColumn: ColumnZero,
	},
	DialectCompat: {
		Multiline:    true,
		SyntaxColumn: ColumnZero,
		Overrides: map[string]Override{
			"E402": {ClearNear: true},
		},
	},
}

// DefaultPolicy returns the policy of DefaultDialect.
func DefaultPolicy() Policy {
	p, _ := LookupDialect(DefaultDialect)
	return p
}

// LookupDialect returns a copy of the named dialect's policy.
func LookupDialect(name string) (Policy, error) {
	p, ok := dialects[name]
	if !ok {
		return Policy{}, fmt.Errorf("unknown dialect %q (must be one of %s)",
			name, strings.Join(Dialects(), ", "))
	}
	if p.Overrides != nil {
		overrides := make(map[string]Override, len(p.Overrides))
		for code, o := range p.Overrides {
			overrides[code] = o
		}
		p.Overrides = overrides
	}
	return p, nil
}

// Dialects returns the known dialect names, sorted.
func Dialects() []string {
	names := make([]string, 0, len(dialects))
	for name := range dialects {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
