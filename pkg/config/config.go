package config

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/ccollicutt/frostlint/pkg/checker"
	"github.com/ccollicutt/frostlint/pkg/diagnostic"
)

// ErrNoToolSection is returned when a pyproject.toml has no [tool.frostlint] table.
var ErrNoToolSection = errors.New("no [tool.frostlint] section")

var codePattern = regexp.MustCompile(`^[EIW]\d{0,3}$`)

// reservedSettings are controlled by frostlint itself.
var reservedSettings = map[string]bool{
	"ignore":  true,
	"verbose": true,
}

// pyproject mirrors the part of pyproject.toml frostlint reads.
type pyproject struct {
	Tool struct {
		Frostlint Config `toml:"frostlint"`
	} `toml:"tool"`
}

// Load reads and validates a configuration file. Files ending in .toml are
// read from their [tool.frostlint] table, anything else is parsed as YAML.
func Load(_ context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path) // #nosec G304 -- user-provided config path is expected
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	var cfg *Config
	if strings.EqualFold(filepath.Ext(path), ".toml") {
		cfg, err = decodeTOML(data)
	} else {
		cfg, err = decodeYAML(data)
	}
	if err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	cfg.applyEnvironmentOverrides()

	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// Default returns the validated default configuration with environment
// overrides applied, for runs without a config file.
func Default(_ context.Context) (*Config, error) {
	cfg := DefaultConfig()
	cfg.applyEnvironmentOverrides()
	if err := Validate(cfg); err != nil {
		return nil, fmt.Errorf("validating config: %w", err)
	}
	return cfg, nil
}

// FindDefault returns the first of DefaultFiles present in dir. A
// pyproject.toml only counts when it has a [tool.frostlint] table.
func FindDefault(dir string) (string, bool) {
	for _, name := range DefaultFiles {
		path := filepath.Join(dir, name)
		info, err := os.Stat(path)
		if err != nil || info.IsDir() {
			continue
		}
		if name == "pyproject.toml" && !hasToolSection(path) {
			continue
		}
		return path, true
	}
	return "", false
}

func decodeYAML(data []byte) (*Config, error) {
	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func decodeTOML(data []byte) (*Config, error) {
	var doc pyproject
	doc.Tool.Frostlint = *DefaultConfig()
	meta, err := toml.Decode(string(data), &doc)
	if err != nil {
		return nil, err
	}
	if !meta.IsDefined("tool", "frostlint") {
		return nil, ErrNoToolSection
	}
	return &doc.Tool.Frostlint, nil
}

func hasToolSection(path string) bool {
	var doc pyproject
	meta, err := toml.DecodeFile(path, &doc)
	return err == nil && meta.IsDefined("tool", "frostlint")
}

// Validate checks a configuration for errors and resolves the parser
// policy, version requirement and fail_on severity.
func Validate(cfg *Config) error {
	policy, err := diagnostic.LookupDialect(cfg.Dialect)
	if err != nil {
		return fmt.Errorf("dialect: %w", err)
	}
	cfg.policy = policy

	if cfg.LineBase < 0 {
		return fmt.Errorf("line_base: must be >= 0, got %d", cfg.LineBase)
	}
	if cfg.ColumnBase < 0 {
		return fmt.Errorf("column_base: must be >= 0, got %d", cfg.ColumnBase)
	}
	if cfg.Jobs < 0 {
		return fmt.Errorf("jobs: must be >= 0, got %d", cfg.Jobs)
	}

	for i, code := range cfg.Ignore {
		if !codePattern.MatchString(code) {
			return fmt.Errorf("ignore[%d]: invalid code %q (expected E, I or W followed by up to three digits)", i, code)
		}
	}

	sev, err := diagnostic.ParseSeverity(cfg.FailOn)
	if err != nil {
		return fmt.Errorf("fail_on: %w", err)
	}
	cfg.failOn = sev

	if err := validateChecker(cfg); err != nil {
		return fmt.Errorf("checker: %w", err)
	}

	for i := range cfg.Webhooks {
		if err := validateWebhook(&cfg.Webhooks[i]); err != nil {
			name := cfg.Webhooks[i].Name
			if name == "" {
				name = cfg.Webhooks[i].URL
			}
			return fmt.Errorf("webhooks[%d] (%s): %w", i, name, err)
		}
	}
	return nil
}

func validateChecker(cfg *Config) error {
	c := &cfg.Checker
	if c.Executable == "" {
		return errors.New("executable is required")
	}
	req, err := checker.ParseRequirement(c.VersionRequirement)
	if err != nil {
		return fmt.Errorf("version_requirement: %w", err)
	}
	cfg.requirement = req

	if c.Timeout <= 0 {
		c.Timeout = checker.DefaultTimeout
	}
	for name := range c.Settings {
		if reservedSettings[name] {
			return fmt.Errorf("settings: %q is managed by frostlint", name)
		}
	}
	return nil
}

func validateWebhook(wh *WebhookConfig) error {
	if wh.URL == "" {
		return errors.New("url is required")
	}
	u, err := url.Parse(wh.URL)
	if err != nil {
		return fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("url scheme must be http or https, got %q", u.Scheme)
	}
	if u.Host == "" {
		return errors.New("url must have a host")
	}

	wh.Token = expandEnvVar(wh.Token)

	switch wh.Trigger {
	case "":
		wh.Trigger = WebhookTriggerOnIssues
	case WebhookTriggerOnIssues, WebhookTriggerAlways, WebhookTriggerNever:
	default:
		return fmt.Errorf("invalid trigger %q (must be on_issues, always, or never)", wh.Trigger)
	}

	if wh.Timeout <= 0 {
		wh.Timeout = DefaultWebhookTimeout
	}
	return nil
}

// expandEnvVar expands a token written as ${VAR} or $VAR.
func expandEnvVar(s string) string {
	if strings.HasPrefix(s, "${") && strings.HasSuffix(s, "}") {
		return os.Getenv(s[2 : len(s)-1])
	}
	if strings.HasPrefix(s, "$") && !strings.HasPrefix(s, "${") {
		return os.Getenv(s[1:])
	}
	return s
}
