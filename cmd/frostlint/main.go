// frostlint - structured diagnostics from the frosted Python checker
//
// frostlint runs frosted over Python sources and reports its findings,
// syntax errors and failures with normalized positions.
package main

import (
	"os"

	"github.com/ccollicutt/frostlint/internal/cli"
)

func main() {
	os.Exit(cli.Execute())
}
