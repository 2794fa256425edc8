// Package cli provides the command-line interface for frostlint.
package cli

import (
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/frostlint/internal/cli/commands"
	"github.com/ccollicutt/frostlint/internal/cli/plugins"
)

// Execute runs the root command with the process arguments and returns the
// exit code.
func Execute() int {
	return Run(os.Args[1:], os.Stdout, os.Stderr)
}

// Run executes frostlint with args. External plugins are tried for
// unknown commands before cobra reports them.
func Run(args []string, stdout, stderr io.Writer) int {
	rootCmd := NewRootCommand()
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)
	commands.ExitCode = 0

	candidate := pluginCandidate(rootCmd, args)
	if candidate != "" {
		if pluginPath, err := plugins.FindPlugin(candidate); err == nil {
			return plugins.Execute(pluginPath, args[1:])
		}
	}

	if err := rootCmd.Execute(); err != nil {
		if candidate != "" {
			_, _ = fmt.Fprintln(stderr, plugins.FormatNotFoundError(candidate))
			return 2
		}
		// SilenceErrors prevents cobra from printing this.
		_, _ = fmt.Fprintf(stderr, "Error: %v\n", err)
		return 2
	}
	return commands.ExitCode
}

// pluginCandidate returns the first argument when it names neither a flag
// nor a built-in command.
func pluginCandidate(rootCmd *cobra.Command, args []string) string {
	if len(args) == 0 || args[0] == "" || args[0][0] == '-' {
		return ""
	}
	if isBuiltinCommand(rootCmd, args[0]) {
		return ""
	}
	return args[0]
}

// isBuiltinCommand checks if a command name is a built-in cobra command.
func isBuiltinCommand(rootCmd *cobra.Command, name string) bool {
	for _, cmd := range rootCmd.Commands() {
		if cmd.Name() == name || cmd.HasAlias(name) {
			return true
		}
	}
	// Also check for special commands like help and completion
	return name == "help" || name == "completion"
}

// NewRootCommand creates the root cobra command.
func NewRootCommand() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "frostlint",
		Short: "Run the frosted checker and report its diagnostics",
		Long: `frostlint runs the frosted static checker over Python sources and turns
its output into structured diagnostics with 0-based positions, severities
and codes.

It handles:
  - Findings (path:line:column:code:near:message)
  - Syntax errors, with optional context and caret lines
  - Checker failures, reported against the unit as a whole

PLUGINS:
  frostlint supports plugins for extended functionality. Plugins are standalone
  binaries named frostlint-<command> that are automatically discovered and invoked.

  Plugin locations (searched in order):
    1. Same directory as the frostlint binary
    2. Directories listed in FROSTLINT_PLUGIN_PATH
    3. ~/.frostlint/plugins/
    4. Anywhere in PATH`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	rootCmd.AddCommand(commands.NewLintCommand())
	rootCmd.AddCommand(commands.NewParseCommand())
	rootCmd.AddCommand(commands.NewDetectCommand())
	rootCmd.AddCommand(commands.NewDiagnoseCommand())
	rootCmd.AddCommand(commands.NewValidateCommand())
	rootCmd.AddCommand(commands.NewWatchCommand())
	rootCmd.AddCommand(commands.NewVersionCommand())

	return rootCmd
}
