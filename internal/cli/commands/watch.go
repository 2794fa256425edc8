package commands

import (
	"context"
	"errors"
	"fmt"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/frostlint/internal/logging"
	"github.com/ccollicutt/frostlint/pkg/watch"
)

// WatchOptions holds command-line options for the watch command.
type WatchOptions struct {
	LintOptions
	Debounce time.Duration
}

// NewWatchCommand creates the watch command.
func NewWatchCommand() *cobra.Command {
	opts := &WatchOptions{}

	cmd := &cobra.Command{
		Use:   "watch [path...]",
		Short: "Re-lint Python sources whenever they change",
		Long: `Lint once, then watch the given paths (or the configured sources) and
lint again whenever a .py file is written, created, removed or renamed.

Each run lints the full set of paths so that the summary stays complete.
Stop with Ctrl-C.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runWatch(cmd, args, opts)
		},
	}

	addConfigFlag(cmd, &opts.Config)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringSliceVar(&opts.Select, "select", nil, "Only report codes with these prefixes (e.g. E,W2)")
	cmd.Flags().StringSliceVar(&opts.Ignore, "ignore", nil, "Codes or prefixes to ignore (replaces configured list)")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "Parser dialect (line|block|block-zero|compat)")
	cmd.Flags().IntVarP(&opts.Jobs, "jobs", "j", 0, "Concurrent checker processes (0 = configured or CPU count)")
	cmd.Flags().BoolVar(&opts.Debug, "debug", false, "Log the resolved checker options of every invocation")
	cmd.Flags().BoolVarP(&opts.Quiet, "quiet", "q", false, "Summary only, no details")
	cmd.Flags().BoolVar(&opts.NoColor, "no-color", false, "Disable colored output")
	cmd.Flags().DurationVar(&opts.Debounce, "debounce", watch.DefaultDebounce, "Wait for writes to settle before re-linting")

	return cmd
}

func runWatch(cmd *cobra.Command, args []string, opts *WatchOptions) error {
	ctx, stop := signal.NotifyContext(commandContext(cmd), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	cfg, configPath, err := loadConfig(ctx, opts.Config)
	if err != nil {
		return err
	}
	if err := opts.apply(cfg); err != nil {
		return err
	}
	logger := logging.Configure(cfg.Debug)

	paths := args
	if len(paths) == 0 {
		paths = cfg.Sources
	}
	if len(paths) == 0 {
		return errors.New("no paths given and no sources configured")
	}

	formatter, err := createFormatter(&opts.LintOptions, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	run := func(ctx context.Context) {
		report, err := lintOnce(ctx, cmd, cfg, configPath, paths, &opts.LintOptions, logger)
		if err != nil {
			logger.Error("lint failed", "error", err)
			return
		}
		if err := formatter.Format(ctx, report, cmd.OutOrStdout()); err != nil {
			logger.Error("formatting output", "error", err)
		}
	}

	w, err := watch.New(paths, func(ctx context.Context, changed []string) {
		logger.Info("sources changed", "files", len(changed))
		run(ctx)
	}, watch.WithDebounce(opts.Debounce), watch.WithLogger(logger))
	if err != nil {
		return err
	}

	run(ctx)
	fmt.Fprintf(cmd.ErrOrStderr(), "Watching %d director(ies) for changes...\n", len(w.Dirs()))

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
