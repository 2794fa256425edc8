package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/frostlint/pkg/config"
	"github.com/ccollicutt/frostlint/pkg/source"
)

// NewValidateCommand creates the validate command.
func NewValidateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [config-file]",
		Short: "Validate a configuration file",
		Long: `Validate a frostlint configuration file without running the checker.

Without an argument the default config file in the working directory is
validated.

Checks:
  - YAML or TOML syntax
  - Dialect, fail_on and numbering bases
  - Ignore code syntax
  - Checker version requirement and settings
  - Webhook URLs and triggers
  - Source file existence (warning only)`,
		Args: cobra.MaximumNArgs(1),
		RunE: runValidate,
	}
}

func runValidate(cmd *cobra.Command, args []string) error {
	ctx := commandContext(cmd)
	w := cmd.OutOrStdout()

	var path string
	if len(args) == 1 {
		path = args[0]
	} else if found, ok := config.FindDefault("."); ok {
		path = found
	} else {
		return fmt.Errorf("no config file given and none of %s found", strings.Join(config.DefaultFiles, ", "))
	}

	fmt.Fprintf(w, "Validating %s...\n", path)

	cfg, err := config.Load(ctx, path)
	if err != nil {
		return fmt.Errorf("validation failed: %w", err)
	}

	fmt.Fprintf(w, "\nConfiguration valid!\n")
	fmt.Fprintf(w, "  Checker:     %s (%s)\n", cfg.Checker.Executable, cfg.Requirement())
	fmt.Fprintf(w, "  Dialect:     %s\n", cfg.Dialect)
	fmt.Fprintf(w, "  Bases:       line %d, column %d\n", cfg.LineBase, cfg.ColumnBase)
	fmt.Fprintf(w, "  Fail on:     %s\n", cfg.FailOnSeverity())
	if len(cfg.Ignore) > 0 {
		fmt.Fprintf(w, "  Ignore:      %s\n", strings.Join(cfg.Ignore, ","))
	}
	fmt.Fprintf(w, "  Webhooks:    %d\n", len(cfg.Webhooks))

	if len(cfg.Sources) == 0 {
		return nil
	}

	files, err := source.ExpandGlobs(cfg.Sources)
	if err != nil {
		fmt.Fprintf(w, "\nWarning: Error expanding source patterns: %v\n", err)
	} else if len(files) == 0 {
		fmt.Fprintf(w, "\nWarning: No files match source patterns\n")
	} else {
		fmt.Fprintf(w, "\nSource files matched: %d\n", len(files))
		for _, f := range files {
			fmt.Fprintf(w, "  - %s\n", f)
		}
	}

	return nil
}
