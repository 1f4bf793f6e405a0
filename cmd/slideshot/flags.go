package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/slideshot/internal/config"
	slideshotlog "github.com/nao1215/slideshot/internal/log"
)

// addDBDirFlag registers the hidden history database directory flag.
func addDBDirFlag(cmd *cobra.Command) {
	cmd.Flags().String("db-dir", "", "History database directory")
	_ = cmd.Flags().MarkHidden("db-dir")
}

// getDBDir returns the history database directory, defaulting to the XDG
// data directory.
func getDBDir(cmd *cobra.Command) string {
	if dir, err := cmd.Flags().GetString("db-dir"); err == nil && dir != "" {
		return dir
	}
	return config.XDGDataDir()
}

// getVerboseFlag retrieves the verbose flag from the command or its parent.
func getVerboseFlag(cmd *cobra.Command) bool {
	verbose, err := cmd.Flags().GetBool("verbose")
	if err != nil {
		verbose, err = cmd.Root().PersistentFlags().GetBool("verbose")
		if err != nil {
			return false
		}
	}
	return verbose
}

func getLogJSONFlag(cmd *cobra.Command) bool {
	logJSON, err := cmd.Flags().GetBool("log-json")
	if err != nil {
		logJSON, err = cmd.Root().PersistentFlags().GetBool("log-json")
		if err != nil {
			return false
		}
	}
	return logJSON
}

// setupLogger creates the process logger and installs it as the default.
func setupLogger(cmd *cobra.Command) *slog.Logger {
	verbose := getVerboseFlag(cmd)

	var logger *slog.Logger
	if getLogJSONFlag(cmd) {
		logger = slideshotlog.NewJSONLogger(os.Stderr, verbose)
	} else {
		logger = slideshotlog.NewLogger(os.Stderr, verbose)
	}
	slog.SetDefault(logger)
	return logger
}
