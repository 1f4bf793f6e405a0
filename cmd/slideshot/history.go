package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nao1215/slideshot/internal/database"
	"github.com/nao1215/slideshot/internal/model"
)

const noWarningsMessage = "No warnings"

// NewHistoryCmd creates the history command.
func NewHistoryCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history [html_path]",
		Short: "List recorded captures of a slide",
		Long: `History lists the captures of a slide recorded in the history database,
newest first, with their warning counts.

Examples:
  # Show the runs of a slide
  slideshot history deck/intro.html

  # List every slide with recorded runs
  slideshot history --list-slides`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runHistoryCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().BoolP("list-slides", "L", false, "List all slides in the history database")

	addDBDirFlag(cmd)

	return cmd
}

// runHistoryCmd executes the history command.
func runHistoryCmd(cmd *cobra.Command, args []string) error {
	listSlides, err := cmd.Flags().GetBool("list-slides")
	if err != nil {
		return err
	}

	// Validate arguments before opening the database.
	var slide string
	if !listSlides {
		if len(args) == 0 {
			return errors.New("html path is required (use --list-slides to see recorded slides)")
		}
		if slide, err = database.SlideKey(args[0]); err != nil {
			return err
		}
	}

	db, err := database.Open(getDBDir(cmd), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	if listSlides {
		return listRecordedSlides(cmd.Context(), cmd.OutOrStdout(), db)
	}
	return listRunHistory(cmd.Context(), cmd.OutOrStdout(), db, slide)
}

// listRecordedSlides prints every slide that has runs.
func listRecordedSlides(ctx context.Context, out io.Writer, db *database.HistoryDB) error {
	slides, err := db.ListSlides(ctx)
	if err != nil {
		return fmt.Errorf("failed to list slides: %w", err)
	}

	if len(slides) == 0 {
		fmt.Fprintln(out, "No slides found in the history database.")
		fmt.Fprintln(out, "\nUse 'slideshot <html_path>' to capture a slide.")
		return nil
	}

	fmt.Fprintf(out, "Recorded slides (%d):\n\n", len(slides))
	for _, slide := range slides {
		fmt.Fprintf(out, "  • %s\n", slide)
	}
	fmt.Fprintln(out, "\nUse 'slideshot history <html_path>' to see the runs of a slide.")
	return nil
}

// listRunHistory prints the runs of one slide.
func listRunHistory(ctx context.Context, out io.Writer, db *database.HistoryDB, slide string) error {
	runs, err := db.ListRuns(ctx, slide)
	if err != nil {
		return fmt.Errorf("failed to get history: %w", err)
	}

	if len(runs) == 0 {
		fmt.Fprintf(out, "No runs found for %s\n", slide)
		fmt.Fprintln(out, "\nUse 'slideshot <html_path>' to capture this slide.")
		return nil
	}

	fmt.Fprintf(out, "History for %s (%d runs):\n\n", slide, len(runs))
	fmt.Fprintf(out, "  %-6s  %-20s  %-8s  %s\n", "ID", "Date", "Digest", "Warnings")
	fmt.Fprintln(out, "  "+strings.Repeat("-", 64))

	for _, meta := range runs {
		fmt.Fprintf(out, "  %-6d  %-20s  %-8s  %s\n",
			meta.ID,
			meta.CapturedAt.Local().Format("2006-01-02 15:04:05"),
			shortDigest(meta.Digest),
			formatWarningSummary(meta.Summary),
		)
	}

	fmt.Fprintln(out, "\nUse 'slideshot compare <html_path>' to compare the latest two runs.")
	fmt.Fprintln(out, "Use 'slideshot compare --with-run-id <id> <html_path>' to compare with a specific run.")
	return nil
}

// kindAbbreviations label the warning kinds in the history table.
var kindAbbreviations = map[model.WarningKind]string{
	model.WarningOverflow:   "OF",
	model.WarningClipped:    "CL",
	model.WarningOverlap:    "OL",
	model.WarningStructural: "ST",
}

// formatWarningSummary formats per-kind counts, e.g. "OF:2 CL:1".
func formatWarningSummary(s model.Summary) string {
	var parts []string
	for _, kind := range model.AllWarningKinds() {
		if n := s.Count(kind); n > 0 {
			parts = append(parts, fmt.Sprintf("%s:%d", kindAbbreviations[kind], n))
		}
	}
	if len(parts) == 0 {
		return noWarningsMessage
	}
	return strings.Join(parts, " ")
}

func shortDigest(digest string) string {
	if len(digest) > 8 {
		return digest[:8]
	}
	return digest
}
