// Command carbonledger allocates operational emissions across film
// productions and assembles certification-ready sustainability reports.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/filmops/carbonledger/internal/cli"
	"github.com/filmops/carbonledger/internal/engine"
)

// version is set at build time via -ldflags.
var version = "dev" //nolint:gochecknoglobals // Build-time version injection

func main() {
	err := run()
	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
	}
	os.Exit(exitCode(err))
}

func run() error {
	// Best-effort: a missing .env is the normal case.
	_ = godotenv.Load()

	root := cli.NewRootCmd(version)
	root.SilenceErrors = true
	return root.Execute()
}

// exitCode maps run errors to process exit codes. Validation failures
// exit with 2 so scripts can tell bad input apart from runtime faults.
func exitCode(err error) int {
	switch {
	case err == nil:
		return 0
	case engine.IsValidation(err):
		return 2
	default:
		return 1
	}
}
