package config

import (
	"os"
	"time"

	"github.com/ccollicutt/frostlint/pkg/checker"
	"github.com/ccollicutt/frostlint/pkg/diagnostic"
)

// Default values for configuration.
const (
	DefaultVersionRequirement = ">= 1.3.2"
	DefaultLineBase           = 1
	DefaultColumnBase         = 0
	DefaultFailOn             = "warning"
	DefaultWebhookTimeout     = 10 * time.Second
)

// DefaultFiles are looked up, in order, when no config path is given.
var DefaultFiles = []string{".frostlint.yaml", ".frostlint.yml", "pyproject.toml"}

// Environment variable names.
const (
	EnvChecker = "FROSTLINT_CHECKER"
	EnvDialect = "FROSTLINT_DIALECT"
)

// DefaultConfig returns a configuration with sensible defaults.
func DefaultConfig() *Config {
	return &Config{
		Checker: CheckerConfig{
			Executable:         checker.DefaultExecutable,
			VersionRequirement: DefaultVersionRequirement,
			Timeout:            checker.DefaultTimeout,
		},
		LineBase:   DefaultLineBase,
		ColumnBase: DefaultColumnBase,
		Dialect:    diagnostic.DefaultDialect,
		FailOn:     DefaultFailOn,
	}
}

// applyEnvironmentOverrides applies environment variable overrides to the config.
func (c *Config) applyEnvironmentOverrides() {
	if exe := os.Getenv(EnvChecker); exe != "" {
		c.Checker.Executable = exe
	}
	if dialect := os.Getenv(EnvDialect); dialect != "" {
		c.Dialect = dialect
	}
}
