package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// NewRootCmd creates the root command. Invoked with an HTML path it
// captures that slide.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "slideshot <html_path>",
		Short: "Screenshot HTML slides and check their text layout",
		Long: `slideshot renders a local HTML slide in headless Chromium and saves a PNG
screenshot. With --report it also writes a layout report listing every word
with its position and any word that overflows the slide canvas, is clipped
by a container, or overlaps another word.

Chromium is taken from --chromium, the config file, the system PATH, or a
managed copy under the cache directory, which is downloaded on first use
unless --no-auto-install is given.

Examples:
  # Screenshot to deck/intro.png
  slideshot deck/intro.html

  # Screenshot plus layout report, failing when problems are found
  slideshot deck/intro.html -o out/intro.png --report out/intro.json --fail-on-warnings

  # Check a 1280x720 slide root instead of the whole body
  slideshot deck/intro.html --canvas "#slide" --width 1280 --height 720 --report layout.json

  # Draw the warnings over the screenshot
  slideshot deck/intro.html --annotate out/intro.annotated.png`,
		Version:       getVersion(),
		Args:          cobra.ExactArgs(1),
		RunE:          runCaptureCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Global flags that apply to all commands
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable verbose logging")
	cmd.PersistentFlags().Bool("log-json", false, "Write logs as JSON")

	addCaptureFlags(cmd)

	cmd.AddCommand(NewInitCmd())
	cmd.AddCommand(NewInstallCmd())
	cmd.AddCommand(NewHistoryCmd())
	cmd.AddCommand(NewCompareCmd())
	cmd.AddCommand(NewAnalyzeCmd())
	cmd.AddCommand(NewVersionCmd())

	return cmd
}

// Execute runs the root command.
func Execute() {
	if err := NewRootCmd().Execute(); err != nil {
		if !errors.Is(err, ErrLayoutWarnings) {
			fmt.Fprint(os.Stderr, "error: ")
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
