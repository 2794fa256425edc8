package checker

import (
	"errors"
	"fmt"
	"regexp"
	"strings"

	"golang.org/x/mod/semver"
)

// ErrVersionUnsupported is returned when the installed checker does not
// satisfy the configured version requirement.
var ErrVersionUnsupported = errors.New("checker version not supported")

var versionPattern = regexp.MustCompile(`(\d+\.\d+\.\d+)`)

// ParseVersion extracts the first x.y.z version from checker output.
func ParseVersion(output string) (string, error) {
	m := versionPattern.FindStringSubmatch(output)
	if m == nil {
		return "", fmt.Errorf("no version found in %q", strings.TrimSpace(output))
	}
	return m[1], nil
}

var constraintPattern = regexp.MustCompile(`^\s*(>=|<=|==|!=|>|<|=)?\s*v?(\d+(?:\.\d+){0,2})\s*$`)

type constraint struct {
	op      string
	version string
}

// Requirement is a set of version constraints that must all hold,
// written like ">= 1.3.2" or ">= 1.3.2, < 2".
type Requirement struct {
	raw         string
	constraints []constraint
}

// ParseRequirement parses a comma-separated list of constraints. An empty
// string yields a requirement that allows any version.
func ParseRequirement(s string) (Requirement, error) {
	req := Requirement{raw: strings.TrimSpace(s)}
	if req.raw == "" {
		return req, nil
	}
	for _, part := range strings.Split(req.raw, ",") {
		m := constraintPattern.FindStringSubmatch(part)
		if m == nil {
			return Requirement{}, fmt.Errorf("invalid version constraint %q", strings.TrimSpace(part))
		}
		op := m[1]
		if op == "" || op == "=" {
			op = "=="
		}
		req.constraints = append(req.constraints, constraint{op: op, version: "v" + m[2]})
	}
	return req, nil
}

// String returns the requirement as written.
func (r Requirement) String() string {
	return r.raw
}

// Allows reports whether version satisfies every constraint.
func (r Requirement) Allows(version string) bool {
	v := "v" + strings.TrimPrefix(strings.TrimSpace(version), "v")
	if !semver.IsValid(v) {
		return false
	}
	for _, c := range r.constraints {
		cmp := semver.Compare(v, c.version)
		var ok bool
		switch c.op {
		case ">=":
			ok = cmp >= 0
		case ">":
			ok = cmp > 0
		case "<=":
			ok = cmp <= 0
		case "<":
			ok = cmp < 0
		case "==":
			ok = cmp == 0
		case "!=":
			ok = cmp != 0
		}
		if !ok {
			return false
		}
	}
	return true
}

// Check returns ErrVersionUnsupported (wrapped) when version is not allowed.
func (r Requirement) Check(version string) error {
	if r.Allows(version) {
		return nil
	}
	return fmt.Errorf("%w: have %q, need %s", ErrVersionUnsupported, version, r.raw)
}
