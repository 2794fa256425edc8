package source

import (
	"bufio"
	"regexp"
	"strings"
)

// inlinePattern matches "# [frostlint ignore:E101,W201]".
var inlinePattern = regexp.MustCompile(`^#\s*\[frostlint\s+([^\]]*)\]`)

// InlineSettings reads frostlint settings from the leading comment block of
// code. Scanning stops at the first line that is neither blank nor a
// comment. Later settings win over earlier ones.
func InlineSettings(code string) map[string]string {
	settings := map[string]string{}
	scanner := bufio.NewScanner(strings.NewReader(code))
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		if !strings.HasPrefix(line, "#") {
			break
		}
		m := inlinePattern.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		for _, field := range strings.Fields(m[1]) {
			name, value, ok := strings.Cut(field, ":")
			if !ok || name == "" {
				continue
			}
			settings[name] = value
		}
	}
	return settings
}

// InlineIgnore returns the inline ignore list of code, if one is present.
// An empty list ("ignore:") is valid and clears the configured list.
func InlineIgnore(code string) ([]string, bool) {
	value, ok := InlineSettings(code)["ignore"]
	if !ok {
		return nil, false
	}
	var codes []string
	for _, c := range strings.Split(value, ",") {
		if c = strings.TrimSpace(c); c != "" {
			codes = append(codes, c)
		}
	}
	return codes, true
}
