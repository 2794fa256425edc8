// Package config provides configuration loading and validation for frostlint.
package config

import (
	"time"

	"github.com/ccollicutt/frostlint/pkg/checker"
	"github.com/ccollicutt/frostlint/pkg/diagnostic"
)

// Config is the root configuration structure loaded from YAML or from the
// [tool.frostlint] table of pyproject.toml.
type Config struct {
	// Checker controls how the external checker is located and invoked.
	Checker CheckerConfig `yaml:"checker" toml:"checker"`

	// Sources are files, directories or glob patterns to check when none
	// are given on the command line.
	Sources []string `yaml:"sources,omitempty" toml:"sources"`

	// Ignore lists codes (or prefixes such as "W2") to suppress. Passed to
	// the checker and applied again to its output.
	Ignore []string `yaml:"ignore,omitempty" toml:"ignore"`

	// LineBase and ColumnBase are the numbering bases of the checker's
	// output. Positions are normalized to 0-based by subtracting them.
	LineBase   int `yaml:"line_base" toml:"line_base"`
	ColumnBase int `yaml:"column_base" toml:"column_base"`

	// Dialect selects the parser policy (line, block, block-zero, compat).
	Dialect string `yaml:"dialect" toml:"dialect"`

	// FailOn is the lowest severity that makes a run fail (error, warning).
	FailOn string `yaml:"fail_on" toml:"fail_on"`

	// Jobs bounds concurrent checker processes. Zero means GOMAXPROCS.
	Jobs int `yaml:"jobs,omitempty" toml:"jobs"`

	// Debug logs the resolved checker options of every invocation.
	Debug bool `yaml:"debug,omitempty" toml:"debug"`

	Webhooks []WebhookConfig `yaml:"webhooks,omitempty" toml:"webhooks"`

	// Populated during validation.
	policy      diagnostic.Policy
	requirement checker.Requirement
	failOn      diagnostic.Severity
}

// Policy returns the parser policy for the configured dialect.
func (c *Config) Policy() diagnostic.Policy {
	return c.policy
}

// Requirement returns the parsed checker version requirement.
func (c *Config) Requirement() checker.Requirement {
	return c.requirement
}

// FailOnSeverity returns the parsed fail_on severity.
func (c *Config) FailOnSeverity() diagnostic.Severity {
	return c.failOn
}

// CheckerOptions returns the options passed to every checker invocation.
func (c *Config) CheckerOptions() checker.Options {
	return checker.Options{
		Ignore:   append([]string(nil), c.Ignore...),
		Settings: c.Checker.Settings,
	}
}

// CheckerConfig describes the external checker.
type CheckerConfig struct {
	// Executable is a command name looked up on PATH or a path.
	Executable string `yaml:"executable" toml:"executable"`

	// VersionRequirement gates parsing, e.g. ">= 1.3.2".
	VersionRequirement string `yaml:"version_requirement" toml:"version_requirement"`

	// Timeout bounds a single invocation.
	Timeout time.Duration `yaml:"timeout" toml:"timeout"`

	// Settings are extra checker settings passed as --name=value.
	Settings map[string]string `yaml:"settings,omitempty" toml:"settings"`
}

// WebhookTrigger determines when a webhook fires.
type WebhookTrigger string

const (
	// WebhookTriggerOnIssues fires only when diagnostics are reported (default).
	WebhookTriggerOnIssues WebhookTrigger = "on_issues"
	// WebhookTriggerAlways fires after every run.
	WebhookTriggerAlways WebhookTrigger = "always"
	// WebhookTriggerNever disables the webhook.
	WebhookTriggerNever WebhookTrigger = "never"
)

// WebhookConfig defines a webhook endpoint for sending lint reports.
type WebhookConfig struct {
	Name    string         `yaml:"name,omitempty" toml:"name"`
	URL     string         `yaml:"url" toml:"url"`
	Token   string         `yaml:"token,omitempty" toml:"token"`
	Trigger WebhookTrigger `yaml:"trigger,omitempty" toml:"trigger"`
	Timeout time.Duration  `yaml:"timeout,omitempty" toml:"timeout"`
}
