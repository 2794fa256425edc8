package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/frostlint/pkg/config"
	"github.com/ccollicutt/frostlint/pkg/diagnostic"
)

// ParseOptions holds command-line options for the parse command.
type ParseOptions struct {
	Config     string
	Output     string
	Dialect    string
	LineBase   int
	ColumnBase int
	Ignore     []string
}

// NewParseCommand creates the parse command.
func NewParseCommand() *cobra.Command {
	opts := &ParseOptions{}

	cmd := &cobra.Command{
		Use:   "parse [output-file]",
		Short: "Parse captured checker output without running the checker",
		Long: `Parse raw frosted output into diagnostics.

Reads the output from a file, or from standard input when no file (or "-")
is given. Positions are normalized to 0-based using the configured line and
column bases and printed 1-based.

Example:
  frosted --verbose - < mod.py | frostlint parse
  frostlint parse --dialect compat -o json captured.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runParse(cmd, args, opts)
		},
	}

	addConfigFlag(cmd, &opts.Config)
	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().StringVar(&opts.Dialect, "dialect", "", "Parser dialect (line|block|block-zero|compat)")
	cmd.Flags().IntVar(&opts.LineBase, "line-base", -1, "Line numbering base of the output (default from config)")
	cmd.Flags().IntVar(&opts.ColumnBase, "column-base", -1, "Column numbering base of the output (default from config)")
	cmd.Flags().StringSliceVar(&opts.Ignore, "ignore", nil, "Codes or prefixes to drop")

	return cmd
}

func runParse(cmd *cobra.Command, args []string, opts *ParseOptions) error {
	ctx := commandContext(cmd)

	cfg, _, err := loadConfig(ctx, opts.Config)
	if err != nil {
		return err
	}
	if opts.Dialect != "" {
		cfg.Dialect = opts.Dialect
	}
	if opts.LineBase >= 0 {
		cfg.LineBase = opts.LineBase
	}
	if opts.ColumnBase >= 0 {
		cfg.ColumnBase = opts.ColumnBase
	}
	if err := config.Validate(cfg); err != nil {
		return fmt.Errorf("invalid options: %w", err)
	}

	raw, err := readInput(cmd, args)
	if err != nil {
		return err
	}

	records := diagnostic.NewParser(cfg.Policy()).Parse(string(raw), cfg.LineBase, cfg.ColumnBase)
	records = diagnostic.Filter(records, opts.Ignore)

	w := cmd.OutOrStdout()
	switch opts.Output {
	case "json":
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		if records == nil {
			records = []diagnostic.Record{}
		}
		return encoder.Encode(records)
	case "text":
		for _, r := range records {
			fmt.Fprintln(w, r.String())
		}
		return nil
	default:
		return fmt.Errorf("unknown output format %q (use text or json)", opts.Output)
	}
}

func readInput(cmd *cobra.Command, args []string) ([]byte, error) {
	if len(args) == 0 || args[0] == "-" {
		data, err := io.ReadAll(cmd.InOrStdin())
		if err != nil {
			return nil, fmt.Errorf("reading stdin: %w", err)
		}
		return data, nil
	}
	data, err := os.ReadFile(args[0]) // #nosec G304 -- user-provided path is expected
	if err != nil {
		return nil, fmt.Errorf("reading checker output: %w", err)
	}
	return data, nil
}
