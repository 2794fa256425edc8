package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/ccollicutt/frostlint/pkg/checker"
)

// Version is set via ldflags at build time.
var Version = "dev"

// NewVersionCommand creates the version command.
func NewVersionCommand() *cobra.Command {
	var showChecker bool

	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Long:  "Print the version of frostlint and, with --checker, of the frosted checker it finds.",
		Run: func(cmd *cobra.Command, args []string) {
			w := cmd.OutOrStdout()
			fmt.Fprintf(w, "frostlint %s\n", Version)
			if !showChecker {
				return
			}
			name := checker.DefaultExecutable
			if cfg, _, err := loadConfig(commandContext(cmd), ""); err == nil {
				name = cfg.Checker.Executable
			}
			exe, err := checker.NewResolver(name).Resolve()
			if err != nil {
				fmt.Fprintf(w, "checker: %v\n", err)
				return
			}
			fmt.Fprintf(w, "checker: %s %s\n", exe.Path, exe.Version)
		},
	}

	cmd.Flags().BoolVar(&showChecker, "checker", false, "Also print the resolved checker version")
	return cmd
}
