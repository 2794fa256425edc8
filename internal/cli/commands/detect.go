package commands

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/frostlint/pkg/detector"
)

// DetectOptions holds command-line options for the detect command.
type DetectOptions struct {
	Output      string
	SampleSize  int
	ShowAll     bool
	WriteConfig string
}

// NewDetectCommand creates the detect command.
func NewDetectCommand() *cobra.Command {
	opts := &DetectOptions{}

	cmd := &cobra.Command{
		Use:   "detect [output-file]",
		Short: "Detect the parser dialect that fits captured checker output",
		Long: `Score every parser dialect against a sample of captured frosted output.

Each dialect is rated by the share of non-blank output lines its records
consume. Ties are broken by fewer checker-failure records and then in favor
of the default dialect. Reads standard input when no file (or "-") is given.

Optionally generates a starter config file with --write-config.

Example:
  frosted --verbose - < mod.py 2>&1 | frostlint detect
  frostlint detect --all captured.txt
  frostlint detect -w .frostlint.yaml captured.txt`,
		Args: cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDetect(cmd, args, opts)
		},
	}

	cmd.Flags().StringVarP(&opts.Output, "output", "o", "text", "Output format (text|json)")
	cmd.Flags().IntVarP(&opts.SampleSize, "sample", "n", detector.DefaultSampleSize, "Number of lines to sample")
	cmd.Flags().BoolVar(&opts.ShowAll, "all", false, "Show every dialect, not just the best match")
	cmd.Flags().StringVarP(&opts.WriteConfig, "write-config", "w", "", "Write starter config to file (will not overwrite)")

	return cmd
}

func runDetect(cmd *cobra.Command, args []string, opts *DetectOptions) error {
	ctx := commandContext(cmd)
	d := detector.New(detector.WithSampleSize(opts.SampleSize))

	name := "<stdin>"
	var result *detector.DetectionResult
	var err error
	if len(args) == 0 || args[0] == "-" {
		result, err = d.DetectFromReader(ctx, cmd.InOrStdin())
	} else {
		name = args[0]
		if _, serr := os.Stat(name); os.IsNotExist(serr) {
			return fmt.Errorf("output file not found: %s", name)
		}
		result, err = d.DetectFromFile(ctx, name)
	}
	if err != nil {
		return fmt.Errorf("detection failed: %w", err)
	}

	w := cmd.OutOrStdout()
	if opts.WriteConfig != "" {
		if err := writeStarterConfig(w, result, opts.WriteConfig); err != nil {
			return err
		}
	}

	switch opts.Output {
	case "json":
		return outputDetectJSON(w, result, name, opts)
	default:
		return outputDetectText(w, result, name, opts)
	}
}

func outputDetectText(w io.Writer, result *detector.DetectionResult, name string, opts *DetectOptions) error {
	fmt.Fprintln(w, "=== Dialect Detection ===")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "Input: %s\n", name)
	fmt.Fprintf(w, "Lines sampled: %d\n", result.SampledLines)
	fmt.Fprintln(w)

	if !result.HasMatch() {
		fmt.Fprintln(w, "No dialect recognized any line.")
		fmt.Fprintln(w)
		fmt.Fprintln(w, "Tip: capture the checker output with --verbose and stderr included,")
		fmt.Fprintln(w, "for example: frosted --verbose - < mod.py 2>&1")
		return nil
	}

	best := result.BestMatch()
	fmt.Fprintf(w, "Detected Dialect: %s\n", best.Dialect)
	fmt.Fprintf(w, "Confidence: %.1f%% (%d records, %d checker failures)\n",
		best.Confidence*100, best.Records, best.Unexpected)
	fmt.Fprintln(w)
	if best.Sample != nil {
		fmt.Fprintf(w, "Sample record:\n  %s\n", best.Sample)
		fmt.Fprintln(w)
	}

	if result.AmbiguityNote != "" {
		fmt.Fprintf(w, "Note: %s\n", result.AmbiguityNote)
		fmt.Fprintln(w)
	}

	fmt.Fprintln(w, "--- Configuration snippet (copy to your config file) ---")
	fmt.Fprintln(w)
	fmt.Fprintf(w, "dialect: %s\n", best.Dialect)
	fmt.Fprintln(w)

	if opts.ShowAll && len(result.Matches) > 1 {
		fmt.Fprintln(w, "--- Other dialects ---")
		for i, m := range result.Matches[1:] {
			fmt.Fprintf(w, "%d. %s (%.1f%% confidence, %d records)\n", i+2, m.Dialect, m.Confidence*100, m.Records)
		}
		fmt.Fprintln(w)
	}

	return nil
}

// JSONMatch represents a dialect match in JSON output.
type JSONMatch struct {
	Dialect    string  `json:"dialect"`
	Confidence float64 `json:"confidence"`
	Records    int     `json:"records"`
	Unexpected int     `json:"unexpected"`
	Sample     string  `json:"sample,omitempty"`
}

// JSONOutput represents the full JSON output.
type JSONOutput struct {
	Input         string      `json:"input"`
	Matches       []JSONMatch `json:"matches"`
	SampledLines  int         `json:"sampled_lines"`
	AmbiguityNote string      `json:"ambiguity_note,omitempty"`
}

func outputDetectJSON(w io.Writer, result *detector.DetectionResult, name string, opts *DetectOptions) error {
	out := JSONOutput{
		Input:         name,
		SampledLines:  result.SampledLines,
		AmbiguityNote: result.AmbiguityNote,
		Matches:       make([]JSONMatch, 0),
	}

	matches := result.Matches
	if !opts.ShowAll && len(matches) > 1 {
		matches = matches[:1]
	}

	for _, m := range matches {
		jm := JSONMatch{
			Dialect:    m.Dialect,
			Confidence: m.Confidence,
			Records:    m.Records,
			Unexpected: m.Unexpected,
		}
		if m.Sample != nil {
			jm.Sample = m.Sample.String()
		}
		out.Matches = append(out.Matches, jm)
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(out)
}

// writeStarterConfig writes a config selecting the detected dialect.
func writeStarterConfig(w io.Writer, result *detector.DetectionResult, configPath string) error {
	if _, err := os.Stat(configPath); err == nil {
		return fmt.Errorf("config file already exists: %s (will not overwrite)", configPath)
	}
	if !result.HasMatch() {
		return fmt.Errorf("cannot generate config: no dialect detected")
	}

	data, err := detector.StarterConfig(result.BestMatch().Dialect)
	if err != nil {
		return err
	}

	// #nosec G306 - config file doesn't need restrictive permissions
	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	fmt.Fprintf(w, "Wrote starter config to: %s\n\n", configPath)
	return nil
}
