package checker

import (
	"sort"
	"strings"
)

// Options are the framework-level settings translated into checker flags.
type Options struct {
	// Ignore lists codes (or code prefixes) the checker should not report.
	Ignore []string
	// Settings are passed through as --name=value.
	Settings map[string]string
}

// optionNames maps framework option names to the checker's setting names.
var optionNames = map[string]string{
	"ignore": "ignore_frosted_errors",
}

// SettingName translates a framework option name into the checker's name.
func SettingName(name string) string {
	if mapped, ok := optionNames[name]; ok {
		return mapped
	}
	return strings.ReplaceAll(name, "-", "_")
}

// Args builds the checker command line: verbose output, the translated
// options in a stable order and "-" to read the unit from stdin.
func (o Options) Args() []string {
	args := []string{"--verbose"}

	names := make([]string, 0, len(o.Settings))
	for name := range o.Settings {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		args = append(args, "--"+SettingName(name)+"="+o.Settings[name])
	}

	if len(o.Ignore) > 0 {
		args = append(args, "--"+SettingName("ignore")+"="+strings.Join(o.Ignore, ","))
	}
	return append(args, "-")
}

// Resolved returns the options keyed by checker setting name, for logging.
func (o Options) Resolved() map[string]string {
	out := make(map[string]string, len(o.Settings)+1)
	for name, value := range o.Settings {
		out[SettingName(name)] = value
	}
	out[SettingName("ignore")] = strings.Join(o.Ignore, ",")
	out["verbose"] = "true"
	return out
}
