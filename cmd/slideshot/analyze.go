package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/nao1215/slideshot/internal/config"
	"github.com/nao1215/slideshot/internal/renderer"
	"github.com/nao1215/slideshot/internal/report"
)

// NewAnalyzeCmd creates the analyze command.
func NewAnalyzeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze <snapshot.json>",
		Short: "Analyze a saved rendering snapshot without a browser",
		Long: `Analyze runs the layout checks on a snapshot written by
'slideshot <html_path> --snapshot <path>'. No browser is started, so
thresholds can be tuned against the same rendering.

The JSON layout report goes to stdout unless --report is given.

Examples:
  slideshot deck/intro.html --snapshot intro.snapshot.json
  slideshot analyze intro.snapshot.json --overlap-min-area 4
  slideshot analyze intro.snapshot.json --report layout.json --markdown layout.md`,
		Args:          cobra.ExactArgs(1),
		RunE:          runAnalyzeCmd,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	f := cmd.Flags()
	f.String("report", "", "Write the JSON layout report to this path instead of stdout")
	f.String("markdown", "", "Write a Markdown layout summary to this path")
	f.BoolP("text", "t", false, "Print a human-readable summary instead of JSON")
	f.Float64(config.FlagMinVisibleFraction, config.DefaultMinVisibleFraction,
		"Report words whose visible fraction is below this value as clipped")
	f.Float64(config.FlagOverlapMinArea, config.DefaultOverlapMinArea,
		"Ignore overlaps up to this area in square CSS pixels")
	f.String(config.FlagSegmentation, config.DefaultSegmentation,
		"Word geometry fallback without per-word browser geometry (proportional|node)")
	f.Bool("fail-on-warnings", false, "Exit with status 1 when the layout report has warnings")

	return cmd
}

// runAnalyzeCmd executes the analyze command.
func runAnalyzeCmd(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()

	cfg := config.NewConfig()

	var err error
	if cfg.ReportPath, err = f.GetString("report"); err != nil {
		return err
	}
	if cfg.MarkdownPath, err = f.GetString("markdown"); err != nil {
		return err
	}
	if cfg.MinVisibleFraction, err = f.GetFloat64(config.FlagMinVisibleFraction); err != nil {
		return err
	}
	if cfg.OverlapMinArea, err = f.GetFloat64(config.FlagOverlapMinArea); err != nil {
		return err
	}
	if cfg.Segmentation, err = f.GetString(config.FlagSegmentation); err != nil {
		return err
	}
	if cfg.FailOnWarnings, err = f.GetBool("fail-on-warnings"); err != nil {
		return err
	}
	text, err := f.GetBool("text")
	if err != nil {
		return err
	}
	if err := cfg.ValidateAnalysis(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}
	if cfg.ReportPath != "" && cfg.ReportPath == cfg.MarkdownPath {
		return fmt.Errorf("configuration error: %w", config.ErrConflictingOutputs)
	}

	logger := setupLogger(cmd)

	data, err := os.ReadFile(args[0])
	if err != nil {
		return fmt.Errorf("failed to read snapshot: %w", err)
	}
	snap, err := renderer.DecodeSnapshot(data)
	if err != nil {
		return fmt.Errorf("invalid snapshot %s: %w", args[0], err)
	}

	layout, err := analyzeSnapshot(snap, cfg, logger)
	if err != nil {
		return err
	}
	doc := &report.Document{Source: args[0], Report: layout}

	out := cmd.OutOrStdout()
	if cfg.ReportPath != "" {
		if err := writeReport(cfg.ReportPath, jsonReportWriter, doc); err != nil {
			return fmt.Errorf("failed to write report: %w", err)
		}
	}
	if cfg.MarkdownPath != "" {
		if err := writeReport(cfg.MarkdownPath, markdownReportWriter, doc); err != nil {
			return fmt.Errorf("failed to write markdown: %w", err)
		}
	}

	switch {
	case text:
		if _, err := report.NewSimpleWriter(out, report.WithShowEmpty(true)).Write(doc); err != nil {
			return err
		}
	case cfg.ReportPath == "":
		if _, err := report.NewJSONWriter(out, report.WithPrettyPrint()).Write(doc); err != nil {
			return err
		}
	}

	if cfg.FailOnWarnings && layout.HasWarnings() {
		return fmt.Errorf("%w: %d", ErrLayoutWarnings, layout.Summary().Total())
	}
	return nil
}
