package commands

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"slices"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/frostlint/internal/logging"
	"github.com/ccollicutt/frostlint/pkg/config"
	"github.com/ccollicutt/frostlint/pkg/linter"
	"github.com/ccollicutt/frostlint/pkg/output"
	"github.com/ccollicutt/frostlint/pkg/source"
	"github.com/ccollicutt/frostlint/pkg/webhook"
)

// ExitCode is set by commands to indicate the result
var ExitCode = 0

// LintOptions holds command-line options for the lint command.
type LintOptions struct {
	Config  string
	Output  string
	Select  []string
	Ignore  []string
	Dialect string
	FailOn  string
	Jobs    int
	Debug   bool
	Verbose bool
	Quiet   bool
	NoColor bool

	// Webhook options
	WebhookURL     string
	WebhookToken   string
	WebhookTrigger string
}

// NewLintCommand creates the lint command.
func NewLintCommand() *cobra.Command {
	opts := &LintOptions{}

	cmd := &cobra.Command{
		Use:   "lint [path...]",
		Short: "Check Python sources with frosted",
		Long: `Run the frosted checker over Python files and report its diagnostics.

Paths may be files, directories (searched for .py files) or glob patterns.
Use "-" to read a single unit from standard input. Without paths, the
sources listed in the configuration are checked.

Configuration is read from --config, or else the first of .frostlint.yaml,
.frostlint.yml or pyproject.toml ([tool.frostlint]) in the working
directory. Flags override the configuration.

Exit codes:
  0 - No diagnostics at or above fail_on
  1 - Diagnostics at or above fail_on
  2 - Configuration or runtime error`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runLint(cmd, args, opts)
		},
	}

	addConfigFlag(cmd, &opts.Config)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringSliceVar(&opts.Select, "select", nil, "Only report codes with these prefixes (e.g. E,W2)")
	cmd.Flags().StringSliceVar(&opts.Ignore, "ignore", nil, "Codes or prefixes to ignore (replaces configured list)")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "Parser dialect (line|block|block-zero|compat)")
	cmd.Flags().StringVar(&opts.FailOn, "fail-on", "", "Lowest severity that fails the run (error|warning)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "Concurrent checker processes (0 = configured or CPU count)")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Log the resolved checker options of every invocation")
	cmd.Flags().BoolVarP(&opts.Verbose, "verbose", "v", false, "Show checker details, timing and ignore lists")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")

	// Webhook flags
	cmd.Flags().StringVar(&opts.WebhookURL, "webhook-url", "", "Webhook endpoint URL")
	cmd.Flags().StringVar(&opts.WebhookToken, "webhook-token", "", "Bearer token for webhook auth")
	cmd.Flags().StringVar(&opts.WebhookTrigger, "webhook-trigger", "on_issues", "When to fire webhook (on_issues|always|never)")

	return cmd
}

func runLint(cmd *cobra.Command, args []string, opts *LintOptions) error {
	ctx := commandContext(cmd)

	cfg, configPath, err := loadConfig(ctx, opts.Config)
	if err != nil {
		return err
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}
	logger := logging.Configure(cfg.Debug)

	formatter, err := createFormatter(opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	report, err := lintOnce(ctx, cmd, cfg, configPath, args, opts, logger)
	if err != nil {
		return err
	}

	if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
		return fmt.Errorf("formatting output: %w", err)
	}

	sendWebhooks(ctx, cmd.ErrOrStderr(), cfg, opts, report)
	return nil
}

// lintOnce runs the linter over args (or the configured sources) and sets
// ExitCode from the configured fail_on threshold.
func lintOnce(ctx context.Context, cmd *cobra.Command, cfg *config.Config, configPath string, args []string, opts *LintOptions, logger *slog.Logger) (*output.Report, error) {
	l := linter.New(cfg,
		linter.WithLogger(logger),
		linter.WithSelect(opts.Select),
	)

	var result *linter.Result
	var err error
	switch {
	case len(args) == 1 && args[0] == "-":
		unit, rerr := source.ReadFrom(cmd.InOrStdin(), source.StdinName)
		if rerr != nil {
			return nil, rerr
		}
		result, err = l.Lint(ctx, []source.Unit{unit})
	case len(args) > 0:
		result, err = l.LintPaths(ctx, args)
	case len(cfg.Sources) > 0:
		result, err = l.LintPaths(ctx, cfg.Sources)
	default:
		return nil, errors.New("no paths given and no sources configured")
	}
	if err != nil {
		return nil, fmt.Errorf("lint failed: %w", err)
	}

	ExitCode = 0
	if result.Fails(cfg.FailOnSeverity()) {
		ExitCode = 1
	}
	return output.NewReport(result, configPath), nil
}

// apply overlays flag values on cfg and revalidates it.
func (o *LintOptions) apply(cfg *config.Config) error {
	if o.Dialect != "" {
		cfg.Dialect = o.Dialect
	}
	if o.FailOn != "" {
		cfg.FailOn = o.FailOn
	}
	if o.Ignore != nil {
		cfg.Ignore = slices.Clone(o.Ignore)
	}
	if o.Jobs > 0 {
		cfg.Jobs = o.Jobs
	}
	cfg.Debug = cfg.Debug || o.Debug

	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}
	return nil
}

func createFormatter(opts *LintOptions, w io.Writer) (output.Formatter, error) {
	formatOpts := output.FormatOptions{
		Verbose: opts.Verbose,
		Quiet:   opts.Quiet,
	}
	if f, ok := w.(*os.File); ok && !opts.NoColor {
		formatOpts.Color = output.ColorEnabled(f)
	}
	return output.New(opts.Output, formatOpts)
}

// sendWebhooks sends the report to all configured webhooks.
// Errors are logged to stderr but don't fail the run.
func sendWebhooks(ctx context.Context, w io.Writer, cfg *config.Config, opts *LintOptions, report *output.Report) {
	hooks := collectWebhooks(cfg, opts)
	if len(hooks) == 0 {
		return
	}

	for _, resp := range webhook.NewClient().Dispatch(ctx, report, hooks) {
		if resp.Success() {
			fmt.Fprintf(w, "Webhook %s: sent (%d, %s)\n", resp.Name, resp.StatusCode, resp.Duration)
		} else {
			fmt.Fprintf(w, "Webhook %s: failed (%v)\n", resp.Name, resp.Error)
		}
	}
}

// collectWebhooks merges config file webhooks with the CLI webhook.
func collectWebhooks(cfg *config.Config, opts *LintOptions) []config.WebhookConfig {
	webhooks := make([]config.WebhookConfig, 0, len(cfg.Webhooks)+1)
	webhooks = append(webhooks, cfg.Webhooks...)

	if opts.WebhookURL != "" {
		trigger := config.WebhookTrigger(opts.WebhookTrigger)
		if trigger == "" {
			trigger = config.WebhookTriggerOnIssues
		}

		webhooks = append(webhooks, config.WebhookConfig{
			Name:    "cli",
			URL:     opts.WebhookURL,
			Token:   opts.WebhookToken,
			Trigger: trigger,
			Timeout: config.DefaultWebhookTimeout,
		})
	}

	return webhooks
}
