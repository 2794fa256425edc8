package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/frostlint/pkg/checker"
	"github.com/ccollicutt/frostlint/pkg/config"
	"github.com/ccollicutt/frostlint/pkg/diagnostic"
	"github.com/ccollicutt/frostlint/pkg/source"
)

// DiagnoseOptions holds options for the diagnose command
type DiagnoseOptions struct {
	Verbose bool
}

// DiagnosticResult represents the result of a single diagnostic check
type DiagnosticResult struct {
	Check    string
	Status   string // "ok", "warning", "error"
	Message  string
	Details  []string
	Suggests []string
}

// smokeSource always yields an unused import finding.
const smokeSource = "import os\n"

// NewDiagnoseCommand creates the diagnose command
func NewDiagnoseCommand() *cobra.Command {
	opts := &DiagnoseOptions{}

	cmd := &cobra.Command{
		Use:   "diagnose [config-file]",
		Short: "Diagnose common setup issues",
		Long: `Diagnose common setup issues.

This command checks:
- Config file syntax and structure
- Checker presence on PATH and its version against the requirement
- That the checker's output parses with the configured dialect
- Source file existence
- Webhook configuration

Example:
  frostlint diagnose
  frostlint diagnose -v .frostlint.yaml  # verbose output`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			path := ""
			if len(args) == 1 {
				path = args[0]
			}
			return runDiagnose(commandContext(cmd), cmd.OutOrStdout(), path, opts)
		},
	}

	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show detailed diagnostic output")

	return cmd
}

func runDiagnose(ctx context.Context, w io.Writer, configPath string, opts *DiagnoseOptions) error {
	results := []DiagnosticResult{}

	if configPath == "" {
		if found, ok := config.FindDefault("."); ok {
			configPath = found
		}
	}

	var cfg *config.Config
	if configPath == "" {
		results = append(results, DiagnosticResult{
			Check:   "Config File",
			Status:  "ok",
			Message: "No config file found, using defaults",
			Suggests: []string{
				"Use 'frostlint detect -w .frostlint.yaml <captured-output>' to generate a starter config",
			},
		})
		cfg, _ = config.Default(ctx)
	} else {
		result := checkConfigExists(configPath)
		results = append(results, result)
		if result.Status == "error" {
			printDiagnostics(w, results, opts)
			return nil
		}

		var parsed DiagnosticResult
		cfg, parsed = checkConfigParseable(ctx, configPath)
		results = append(results, parsed)
		if parsed.Status == "error" {
			printDiagnostics(w, results, opts)
			return nil
		}
	}
	if cfg == nil {
		results = append(results, DiagnosticResult{
			Check:   "Environment",
			Status:  "error",
			Message: fmt.Sprintf("Invalid %s or %s", config.EnvChecker, config.EnvDialect),
		})
		printDiagnostics(w, results, opts)
		return nil
	}

	resolver := checker.NewResolver(cfg.Checker.Executable)
	checkerResults := checkChecker(ctx, cfg, resolver)
	results = append(results, checkerResults...)

	results = append(results, checkSources(cfg)...)
	results = append(results, checkWebhooks(cfg, opts)...)

	printDiagnostics(w, results, opts)
	return nil
}

func checkConfigExists(path string) DiagnosticResult {
	result := DiagnosticResult{
		Check: "Config File",
	}

	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		result.Status = "error"
		result.Message = fmt.Sprintf("Config file not found: %s", path)
		result.Suggests = []string{
			"Check the file path is correct",
			"Use 'frostlint detect -w .frostlint.yaml <captured-output>' to generate a starter config",
		}
		return result
	}
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Cannot access config file: %v", err)
		result.Suggests = []string{"Check file permissions"}
		return result
	}
	if info.IsDir() {
		result.Status = "error"
		result.Message = "Path is a directory, not a file"
		return result
	}
	if info.Size() == 0 {
		result.Status = "error"
		result.Message = "Config file is empty"
		result.Suggests = []string{
			"Use 'frostlint detect -w .frostlint.yaml <captured-output>' to generate a starter config",
		}
		return result
	}

	result.Status = "ok"
	result.Message = fmt.Sprintf("Found: %s (%d bytes)", path, info.Size())
	return result
}

func checkConfigParseable(ctx context.Context, path string) (*config.Config, DiagnosticResult) {
	result := DiagnosticResult{
		Check: "Config Syntax",
	}

	cfg, err := config.Load(ctx, path)
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Failed to parse config: %v", err)
		switch {
		case errors.Is(err, config.ErrNoToolSection):
			result.Suggests = []string{"Add a [tool.frostlint] table to pyproject.toml"}
		case strings.Contains(err.Error(), "yaml"):
			result.Suggests = []string{
				"Check YAML syntax - ensure proper indentation (use spaces, not tabs)",
			}
		case strings.Contains(err.Error(), "toml"):
			result.Suggests = []string{"Check TOML syntax of the [tool.frostlint] table"}
		}
		return nil, result
	}

	result.Status = "ok"
	result.Message = "Config file parsed successfully"
	result.Details = []string{
		fmt.Sprintf("Dialect: %s", cfg.Dialect),
		fmt.Sprintf("Sources: %d", len(cfg.Sources)),
		fmt.Sprintf("Ignored codes: %d", len(cfg.Ignore)),
	}
	return cfg, result
}

// checkChecker verifies the checker can be found, satisfies the version
// requirement and produces output the configured dialect can parse.
func checkChecker(ctx context.Context, cfg *config.Config, resolver *checker.Resolver) []DiagnosticResult {
	presence := DiagnosticResult{Check: fmt.Sprintf("Checker: %s", resolver.Name())}

	exe, err := resolver.Resolve()
	if err != nil {
		presence.Status = "error"
		presence.Message = err.Error()
		presence.Suggests = []string{
			"Install frosted (pip install frosted)",
			fmt.Sprintf("Set checker.executable in the config or %s", config.EnvChecker),
		}
		return []DiagnosticResult{presence}
	}
	presence.Status = "ok"
	presence.Message = fmt.Sprintf("Found %s", exe.Path)
	presence.Details = []string{fmt.Sprintf("Version: %s", exe.Version)}

	gate := DiagnosticResult{Check: "Checker Version"}
	if err := cfg.Requirement().Check(exe.Version); err != nil {
		gate.Status = "error"
		gate.Message = err.Error()
		gate.Suggests = []string{"Upgrade frosted or relax checker.version_requirement"}
		return []DiagnosticResult{presence, gate}
	}
	gate.Status = "ok"
	gate.Message = fmt.Sprintf("%s satisfies %q", exe.Version, cfg.Requirement().String())

	return []DiagnosticResult{presence, gate, checkCheckerOutput(ctx, cfg, resolver)}
}

func checkCheckerOutput(ctx context.Context, cfg *config.Config, resolver *checker.Resolver) DiagnosticResult {
	result := DiagnosticResult{Check: fmt.Sprintf("Output Parsing (%s)", cfg.Dialect)}

	runner := checker.NewExecRunner(resolver, cfg.Checker.Timeout)
	out, err := runner.Run(ctx, source.Unit{Path: source.StdinName, Code: smokeSource}, cfg.CheckerOptions())
	if err != nil {
		result.Status = "error"
		result.Message = fmt.Sprintf("Checker failed to run: %v", err)
		return result
	}

	parser := diagnostic.NewParser(cfg.Policy())
	matched, total := parser.Coverage(string(out))
	records := parser.Parse(string(out), cfg.LineBase, cfg.ColumnBase)

	switch {
	case total == 0:
		result.Status = "warning"
		result.Message = "Checker produced no output for a sample with an unused import"
		result.Suggests = []string{"Check that W201 is not ignored and the checker runs with --verbose"}
	case matched < total:
		result.Status = "warning"
		result.Message = fmt.Sprintf("Dialect consumed %d/%d output lines", matched, total)
		result.Details = []string{truncate(strings.TrimSpace(string(out)), 200)}
		result.Suggests = []string{"Capture the output and run 'frostlint detect' to pick a better dialect"}
	case diagnostic.HasOnlyUnexpected(records):
		result.Status = "warning"
		result.Message = "Checker reported a failure on the sample"
		result.Details = []string{records[0].Message}
	default:
		result.Status = "ok"
		result.Message = fmt.Sprintf("Parsed %d record(s) from sample output", len(records))
	}
	return result
}

func checkSources(cfg *config.Config) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Sources) == 0 {
		results = append(results, DiagnosticResult{
			Check:   "Sources",
			Status:  "ok",
			Message: "No sources configured; paths must be given to 'frostlint lint'",
		})
		return results
	}

	totalFiles := 0
	for _, pattern := range cfg.Sources {
		result := DiagnosticResult{
			Check: fmt.Sprintf("Source: %s", pattern),
		}

		files, err := source.ExpandGlobs([]string{pattern})
		switch {
		case err != nil:
			result.Status = "error"
			result.Message = fmt.Sprintf("Invalid pattern: %v", err)
		case len(files) == 0:
			result.Status = "warning"
			result.Message = "Matches no Python files"
			result.Suggests = []string{
				"Check if the files exist at this path",
				"Directories are searched for *.py files recursively",
			}
		default:
			result.Status = "ok"
			result.Message = fmt.Sprintf("Matches %d file(s)", len(files))
			result.Details = files
			totalFiles += len(files)
		}
		results = append(results, result)
	}

	if totalFiles == 0 {
		results = append(results, DiagnosticResult{
			Check:   "Sources Summary",
			Status:  "error",
			Message: "No accessible source files found",
			Suggests: []string{
				"Ensure at least one configured source exists and is readable",
			},
		})
	}

	return results
}

func printDiagnostics(w io.Writer, results []DiagnosticResult, opts *DiagnoseOptions) {
	fmt.Fprintln(w, "=== frostlint Diagnostics ===")
	fmt.Fprintln(w)

	okCount := 0
	warnCount := 0
	errCount := 0

	for _, r := range results {
		var icon string
		switch r.Status {
		case "ok":
			icon = "PASS"
			okCount++
		case "warning":
			icon = "WARN"
			warnCount++
		case "error":
			icon = "FAIL"
			errCount++
		}

		fmt.Fprintf(w, "[%s] %s\n", icon, r.Check)
		fmt.Fprintf(w, "    %s\n", r.Message)

		if opts.Verbose || r.Status != "ok" {
			for _, d := range r.Details {
				fmt.Fprintf(w, "      - %s\n", d)
			}
		}

		for _, s := range r.Suggests {
			fmt.Fprintf(w, "      Hint: %s\n", s)
		}

		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "---")
	fmt.Fprintf(w, "Summary: %d passed, %d warnings, %d errors\n", okCount, warnCount, errCount)

	if errCount > 0 {
		ExitCode = 2
		fmt.Fprintln(w, "\nFix the errors above before linting.")
	} else if warnCount > 0 {
		fmt.Fprintln(w, "\nSetup is usable but has warnings.")
	} else {
		fmt.Fprintln(w, "\nSetup looks good!")
	}
}

func checkWebhooks(cfg *config.Config, opts *DiagnoseOptions) []DiagnosticResult {
	results := []DiagnosticResult{}

	if len(cfg.Webhooks) == 0 {
		if opts.Verbose {
			results = append(results, DiagnosticResult{
				Check:   "Webhooks",
				Status:  "ok",
				Message: "No webhooks configured (optional)",
			})
		}
		return results
	}

	for _, wh := range cfg.Webhooks {
		name := wh.Name
		if name == "" {
			name = wh.URL
		}

		result := DiagnosticResult{
			Check: fmt.Sprintf("Webhook: %s", name),
		}

		issues := []string{}
		warnings := []string{}

		if wh.URL == "" {
			issues = append(issues, "Missing url")
		} else {
			u, err := url.Parse(wh.URL)
			if err != nil {
				issues = append(issues, fmt.Sprintf("Invalid URL: %v", err))
			} else if u.Scheme != "http" && u.Scheme != "https" {
				issues = append(issues, fmt.Sprintf("URL scheme must be http or https, got %q", u.Scheme))
			} else if u.Host == "" {
				issues = append(issues, "URL must have a host")
			}
		}

		if wh.Trigger != "" {
			switch wh.Trigger {
			case config.WebhookTriggerOnIssues, config.WebhookTriggerAlways, config.WebhookTriggerNever:
			default:
				issues = append(issues, fmt.Sprintf("Invalid trigger %q (use on_issues, always, or never)", wh.Trigger))
			}
		}

		if strings.HasPrefix(wh.Token, "$") {
			warnings = append(warnings, fmt.Sprintf("Token appears to be an unresolved env var: %s", wh.Token))
		}

		if len(issues) > 0 {
			result.Status = "error"
			result.Message = fmt.Sprintf("%d configuration issue(s)", len(issues))
			result.Details = issues
		} else if len(warnings) > 0 {
			result.Status = "warning"
			result.Message = fmt.Sprintf("%d warning(s)", len(warnings))
			result.Details = warnings
		} else {
			result.Status = "ok"
			result.Message = fmt.Sprintf("Trigger: %s", wh.Trigger)
			if opts.Verbose {
				result.Details = []string{
					fmt.Sprintf("URL: %s", wh.URL),
					fmt.Sprintf("Timeout: %s", wh.Timeout),
				}
				if wh.Token != "" {
					result.Details = append(result.Details, "Token: configured")
				}
			}
		}

		results = append(results, result)
	}

	if opts.Verbose {
		for _, wh := range cfg.Webhooks {
			if wh.URL == "" {
				continue
			}

			name := wh.Name
			if name == "" {
				name = wh.URL
			}

			result := checkWebhookConnectivity(wh)
			result.Check = fmt.Sprintf("Webhook Connectivity: %s", name)
			results = append(results, result)
		}
	}

	return results
}

func checkWebhookConnectivity(wh config.WebhookConfig) DiagnosticResult {
	result := DiagnosticResult{}

	client := &http.Client{
		Timeout: 5 * time.Second,
	}

	req, err := http.NewRequest(http.MethodHead, wh.URL, nil)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot create request: %v", err)
		return result
	}

	if wh.Token != "" {
		req.Header.Set("Authorization", "Bearer "+wh.Token)
	}

	resp, err := client.Do(req)
	if err != nil {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Cannot connect: %v", err)
		result.Suggests = []string{
			"Check if the webhook URL is correct",
			"Verify network connectivity",
		}
		return result
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 200 && resp.StatusCode < 400 {
		result.Status = "ok"
		result.Message = fmt.Sprintf("Reachable (status %d)", resp.StatusCode)
	} else {
		result.Status = "warning"
		result.Message = fmt.Sprintf("Reachable but returned status %d", resp.StatusCode)
		result.Suggests = []string{
			"The endpoint may require POST method (will work during actual webhook send)",
			"Check authentication if using a token",
		}
	}

	return result
}

func truncate(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	return s[:maxLen-3] + "..."
}
