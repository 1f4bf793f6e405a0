package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/nao1215/slideshot/internal/database"
	"github.com/nao1215/slideshot/internal/report"
)

// NewCompareCmd creates the compare command.
func NewCompareCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "compare <html_path>",
		Short: "Compare the layout warnings of two runs",
		Long: `Compare shows which layout warnings appeared or disappeared between two
recorded captures of a slide. Warnings are matched by kind and word text,
so edits that move words around do not show up as changes.

By default the latest two runs are compared. Use 'slideshot history' to
see the run IDs.

Examples:
  # Compare the latest two runs
  slideshot compare deck/intro.html

  # Compare the latest run with run 5
  slideshot compare --with-run-id 5 deck/intro.html

  # Output in JSON or Markdown
  slideshot compare --json deck/intro.html
  slideshot compare --markdown deck/intro.html`,
		Args:          cobra.ExactArgs(1),
		RunE:          runCompareCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	cmd.Flags().Int64P("with-run-id", "i", 0,
		"Compare the latest run with this run (use 'slideshot history' to see IDs)")
	cmd.Flags().BoolP("json", "j", false, "Output comparison result in JSON format")
	cmd.Flags().BoolP("markdown", "m", false, "Output comparison result in Markdown format")
	cmd.MarkFlagsMutuallyExclusive("json", "markdown")

	addDBDirFlag(cmd)

	return cmd
}

// runCompareCmd executes the compare command.
func runCompareCmd(cmd *cobra.Command, args []string) error {
	slide, err := database.SlideKey(args[0])
	if err != nil {
		return err
	}
	withRunID, err := cmd.Flags().GetInt64("with-run-id")
	if err != nil {
		return err
	}
	jsonOutput, err := cmd.Flags().GetBool("json")
	if err != nil {
		return err
	}
	markdownOutput, err := cmd.Flags().GetBool("markdown")
	if err != nil {
		return err
	}

	db, err := database.Open(getDBDir(cmd), database.DefaultOptions())
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer db.Close()

	comparison, err := compareRuns(cmd, db, slide, withRunID)
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	switch {
	case jsonOutput:
		return report.WriteComparisonJSON(out, comparison)
	case markdownOutput:
		return report.WriteComparisonMarkdown(out, comparison)
	default:
		return report.WriteComparisonText(out, comparison)
	}
}

// compareRuns loads the two runs to compare. The latest run is always the
// current one.
func compareRuns(cmd *cobra.Command, db *database.HistoryDB, slide string, withRunID int64) (*report.Comparison, error) {
	ctx := cmd.Context()

	runs, err := db.GetLatestRuns(ctx, slide, 2)
	if err != nil {
		return nil, fmt.Errorf("failed to get history: %w", err)
	}
	if len(runs) == 0 {
		return nil, fmt.Errorf("no runs found for %s", slide)
	}

	current := runs[0]
	var previous *database.Run
	switch {
	case withRunID > 0:
		previous, err = db.GetRunByID(ctx, withRunID)
		if err != nil {
			return nil, err
		}
		if previous.Slide != slide {
			return nil, fmt.Errorf("run %d belongs to %s, not %s", withRunID, previous.Slide, slide)
		}
		if previous.ID == current.ID {
			return nil, errors.New("cannot compare the latest run with itself")
		}
	case len(runs) < 2:
		return nil, fmt.Errorf("at least 2 runs are required for comparison (found %d)", len(runs))
	default:
		previous = runs[1]
	}

	return report.Compare(slide, comparedRun(previous), comparedRun(current)), nil
}

func comparedRun(run *database.Run) report.ComparedRun {
	return report.ComparedRun{
		Info: report.RunInfo{
			ID:         run.ID,
			CapturedAt: run.CapturedAt,
			Digest:     run.Digest,
			Summary:    run.Summary,
		},
		Report: run.Report,
	}
}
