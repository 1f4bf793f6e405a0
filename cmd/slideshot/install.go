package main

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/nao1215/slideshot/internal/config"
	"github.com/nao1215/slideshot/internal/renderer"
)

// NewInstallCmd creates the install command.
func NewInstallCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "install",
		Short: "Download the managed Chromium",
		Long: `Install downloads the Chromium build slideshot uses when no browser is
installed on the system. It is stored under the cache directory
(~/.cache/slideshot/browser on Linux) unless SLIDESHOT_BROWSER_DIR is set.

Captures download it automatically on first use; run install ahead of time
for offline use or in CI images.`,
		Args:          cobra.NoArgs,
		RunE:          runInstallCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().String("dir", "", "Install into this directory")
	cmd.Flags().Int("attempts", renderer.DefaultDownloadAttempts, "Download attempts before giving up")

	return cmd
}

// runInstallCmd executes the install command.
func runInstallCmd(cmd *cobra.Command, _ []string) error {
	dir, err := cmd.Flags().GetString("dir")
	if err != nil {
		return err
	}
	if dir == "" {
		dir = renderer.ManagedDir(config.BrowserDir())
	}
	attempts, err := cmd.Flags().GetInt("attempts")
	if err != nil {
		return err
	}
	if attempts < 1 {
		return fmt.Errorf("--attempts must be at least 1, got %d", attempts)
	}

	logger := setupLogger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Installing Chromium into %s\n", dir)
	info, err := renderer.Install(ctx, dir, attempts, logger)
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Chromium ready: %s\n", info.Path)
	return nil
}
