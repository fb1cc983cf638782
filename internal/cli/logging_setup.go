package cli

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/filmops/carbonledger/internal/config"
	"github.com/filmops/carbonledger/internal/logging"
)

// setupLogging configures the package logger from config file, environment,
// and CLI flags. Flag beats environment beats config.
func setupLogging(cmd *cobra.Command, cfg *config.Config) {
	loggingCfg := cfg.Logging

	if envLevel := os.Getenv("CARBONLEDGER_LOG_LEVEL"); envLevel != "" {
		loggingCfg.Level = envLevel
	}
	if envFormat := os.Getenv("CARBONLEDGER_LOG_FORMAT"); envFormat != "" {
		loggingCfg.Format = envFormat
	}

	debug, _ := cmd.Flags().GetBool("debug")
	if debug {
		loggingCfg.Level = "debug"
		loggingCfg.Format = "console"
	}

	// Piped output gets JSON logs; a terminal keeps the console format.
	if loggingCfg.Format == "" {
		if isTerminal(os.Stderr) {
			loggingCfg.Format = "console"
		} else {
			loggingCfg.Format = "json"
		}
	}

	root := logging.New(logging.Config{
		Level:  loggingCfg.Level,
		Format: loggingCfg.Format,
		Output: cmd.ErrOrStderr(),
	})
	logger = logging.ComponentLogger(root, "cli")
}
