package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/nao1215/slideshot/internal/annotate"
	"github.com/nao1215/slideshot/internal/config"
	"github.com/nao1215/slideshot/internal/database"
	"github.com/nao1215/slideshot/internal/htmlmeta"
	"github.com/nao1215/slideshot/internal/model"
	"github.com/nao1215/slideshot/internal/pipeline"
	"github.com/nao1215/slideshot/internal/renderer"
	"github.com/nao1215/slideshot/internal/report"
	"github.com/nao1215/slideshot/internal/segment"
)

// ErrLayoutWarnings is returned with --fail-on-warnings when the layout
// report contains warnings.
var ErrLayoutWarnings = errors.New("layout warnings found")

// addCaptureFlags registers the flags of the capture command.
func addCaptureFlags(cmd *cobra.Command) {
	f := cmd.Flags()

	// Outputs
	f.StringP("output", "o", "",
		"Screenshot path (default: <html_path> with .png extension)")
	f.String("report", "",
		"Write the JSON layout report to this path")
	f.String("markdown", "",
		"Write a Markdown layout summary to this path")
	f.String("annotate", "",
		"Write a copy of the screenshot with warnings drawn on it")
	f.String("snapshot", "",
		"Write the raw rendered snapshot as JSON (re-analyze with 'slideshot analyze')")

	// Capture
	f.Int(config.FlagWidth, config.DefaultWidth, "Viewport width in CSS pixels")
	f.Int(config.FlagHeight, config.DefaultHeight, "Viewport height in CSS pixels")
	f.Float64(config.FlagDelay, config.DefaultDelay.Seconds(), "Seconds to wait after the page loaded before capturing")
	f.Duration(config.FlagTimeout, config.DefaultTimeout, "Limit for loading, settling and capturing")
	f.Bool(config.FlagNoFullPage, false, "Capture only the viewport")
	f.Bool(config.FlagNoAutoInstall, false, "Do not download Chromium when none is found")
	f.String(config.FlagChromium, "", "Chromium binary to use")

	// Analysis
	f.String(config.FlagCanvas, config.DefaultCanvasSelector,
		`CSS selector of the slide canvas (overrides <meta name="slideshot:canvas">)`)
	f.Float64(config.FlagMinVisibleFraction, config.DefaultMinVisibleFraction,
		"Report words whose visible fraction is below this value as clipped")
	f.Float64(config.FlagOverlapMinArea, config.DefaultOverlapMinArea,
		"Ignore overlaps up to this area in square CSS pixels")
	f.String(config.FlagSegmentation, config.DefaultSegmentation,
		"Word geometry fallback without per-word browser geometry (proportional|node)")
	f.Bool("fail-on-warnings", false, "Exit with status 1 when the layout report has warnings")
	f.Bool("no-history", false, "Do not record this run in the history database")

	f.StringP("config", "c", "",
		"Configuration file path (default: .slideshot in current or home directory)")

	addDBDirFlag(cmd)
}

// runCaptureCmd executes the capture.
func runCaptureCmd(cmd *cobra.Command, args []string) error {
	cfg, err := buildConfig(cmd, args)
	if err != nil {
		return err
	}

	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("configuration error: %w", err)
	}

	logger := setupLogger(cmd)

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return runCapture(ctx, cfg, logger, cmd.OutOrStdout())
}

// buildConfig creates a Config from flags and the configuration file.
func buildConfig(cmd *cobra.Command, args []string) (*config.Config, error) {
	cfg := config.NewConfig()
	f := cmd.Flags()

	var err error
	if len(args) > 0 {
		cfg.HTMLPath = args[0]
	}

	stringFlags := []struct {
		name string
		dst  *string
	}{
		{"output", &cfg.OutputPath},
		{"report", &cfg.ReportPath},
		{"markdown", &cfg.MarkdownPath},
		{"annotate", &cfg.AnnotatePath},
		{"snapshot", &cfg.SnapshotPath},
		{config.FlagChromium, &cfg.ChromiumPath},
		{config.FlagCanvas, &cfg.CanvasSelector},
		{config.FlagSegmentation, &cfg.Segmentation},
		{"config", &cfg.ConfigFilePath},
	}
	for _, sf := range stringFlags {
		if *sf.dst, err = f.GetString(sf.name); err != nil {
			return nil, err
		}
	}

	if cfg.Width, err = f.GetInt(config.FlagWidth); err != nil {
		return nil, err
	}
	if cfg.Height, err = f.GetInt(config.FlagHeight); err != nil {
		return nil, err
	}
	delaySeconds, err := f.GetFloat64(config.FlagDelay)
	if err != nil {
		return nil, err
	}
	if cfg.Delay, err = config.DelayFromSeconds(delaySeconds); err != nil {
		return nil, err
	}
	if cfg.Timeout, err = f.GetDuration(config.FlagTimeout); err != nil {
		return nil, err
	}
	if cfg.MinVisibleFraction, err = f.GetFloat64(config.FlagMinVisibleFraction); err != nil {
		return nil, err
	}
	if cfg.OverlapMinArea, err = f.GetFloat64(config.FlagOverlapMinArea); err != nil {
		return nil, err
	}

	noFullPage, err := f.GetBool(config.FlagNoFullPage)
	if err != nil {
		return nil, err
	}
	cfg.FullPage = !noFullPage

	noAutoInstall, err := f.GetBool(config.FlagNoAutoInstall)
	if err != nil {
		return nil, err
	}
	cfg.AutoInstall = !noAutoInstall

	if cfg.FailOnWarnings, err = f.GetBool("fail-on-warnings"); err != nil {
		return nil, err
	}
	noHistory, err := f.GetBool("no-history")
	if err != nil {
		return nil, err
	}
	cfg.SaveToDB = !noHistory
	cfg.DBDir = getDBDir(cmd)
	cfg.CanvasSelectorExplicit = f.Changed(config.FlagCanvas)
	cfg.Verbose = getVerboseFlag(cmd)
	cfg.LogJSON = getLogJSONFlag(cmd)

	// An explicitly named config file must exist; otherwise a missing file
	// just means no overrides.
	configPath := config.FindConfigFile(cfg.ConfigFilePath)
	switch {
	case configPath != "":
		cfg.SlideConfigs, err = config.LoadConfigFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", configPath, err)
		}
	case cfg.ConfigFilePath != "":
		return nil, fmt.Errorf("%w: %s", config.ErrConfigNotFound, cfg.ConfigFilePath)
	default:
		cfg.SlideConfigs = &config.File{Slides: make(map[string]config.SlideConfig)}
	}

	if cfg.HTMLPath != "" {
		cfg.ApplySlideConfig(cfg.SlideConfigs.GetSlideConfig(cfg.HTMLPath), f.Changed)
	}

	return cfg, nil
}

// runCapture renders the slide, writes the screenshot and, when any
// analysis output is wanted, the layout artifacts.
func runCapture(ctx context.Context, cfg *config.Config, logger *slog.Logger, out io.Writer) error {
	doc, err := htmlmeta.ParseFile(cfg.HTMLPath)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %s", renderer.ErrHTMLNotFound, cfg.HTMLPath)
		}
		return fmt.Errorf("failed to read %s: %w", cfg.HTMLPath, err)
	}
	if !cfg.CanvasSelectorExplicit && doc.CanvasSelector != "" {
		logger.Debug("using canvas selector declared by the document", "selector", doc.CanvasSelector)
		cfg.CanvasSelector = doc.CanvasSelector
	}
	if len(doc.RemoteResources) > 0 {
		logger.Warn("slide references remote resources; rendering may depend on the network",
			"count", len(doc.RemoteResources),
			"first", doc.RemoteResources[0],
		)
	}

	browser, err := renderer.EnsureBrowser(ctx, renderer.BrowserOptions{
		ExplicitPath: cfg.ChromiumPath,
		InstallDir:   renderer.ManagedDir(config.BrowserDir()),
		AutoInstall:  cfg.AutoInstall,
		Logger:       logger,
	})
	if err != nil {
		return err
	}
	logger.Debug("using browser", "path", browser.Path, "source", string(browser.Source))

	result, err := renderer.New(browser.Path, renderer.WithLogger(logger)).Capture(ctx, renderer.Request{
		HTMLPath:       cfg.HTMLPath,
		Width:          cfg.Width,
		Height:         cfg.Height,
		Delay:          cfg.Delay,
		FullPage:       cfg.FullPage,
		Timeout:        cfg.Timeout,
		CanvasSelector: cfg.CanvasSelector,
		WantSnapshot:   cfg.WantsAnalysis(),
	})
	if err != nil {
		return err
	}

	outputPath := cfg.ResolvedOutputPath()
	if err := writeFile(outputPath, result.Screenshot); err != nil {
		return fmt.Errorf("failed to write screenshot: %w", err)
	}
	fmt.Fprintf(out, "Saved screenshot to %s\n", outputPath)

	if !cfg.WantsAnalysis() {
		return nil
	}

	layout, err := analyzeSnapshot(result.Snapshot, cfg, logger)
	if err != nil {
		return err
	}

	reportDoc := &report.Document{
		Source:     cfg.HTMLPath,
		Title:      doc.Title,
		Screenshot: outputPath,
		Width:      cfg.Width,
		Height:     cfg.Height,
		CapturedAt: time.Now(),
		Report:     layout,
	}

	group := pipeline.NewArtifactGroup(pipeline.WithGroupLogger(logger))
	addReportArtifacts(group, cfg, reportDoc)
	if cfg.AnnotatePath != "" {
		group.Add("annotate", func(context.Context) error {
			overlay, err := annotate.Overlay(result.Screenshot, layout)
			if err != nil {
				return err
			}
			return writeFile(cfg.AnnotatePath, overlay)
		})
	}
	if cfg.SnapshotPath != "" {
		group.Add("snapshot", func(context.Context) error {
			return writeJSON(cfg.SnapshotPath, result.Snapshot)
		})
	}
	if cfg.SaveToDB {
		group.Add("history", func(ctx context.Context) error {
			return saveHistory(ctx, cfg, doc, reportDoc)
		})
	}

	if err := group.Run(ctx); err != nil {
		return fmt.Errorf("failed to write artifacts: %w", err)
	}

	for _, p := range []string{cfg.ReportPath, cfg.MarkdownPath, cfg.AnnotatePath, cfg.SnapshotPath} {
		if p != "" {
			fmt.Fprintf(out, "Saved %s\n", p)
		}
	}
	return checkWarnings(out, layout, cfg.FailOnWarnings)
}

// analyzeSnapshot runs the layout pipeline with the configured thresholds.
func analyzeSnapshot(snap *model.Snapshot, cfg *config.Config, logger *slog.Logger) (*model.LayoutReport, error) {
	layout, err := pipeline.Analyze(snap,
		[]pipeline.Option{pipeline.WithLogger(logger)},
		pipeline.WithSegmentation(segment.Strategy(cfg.Segmentation)),
		pipeline.WithMinVisibleFraction(cfg.MinVisibleFraction),
		pipeline.WithOverlapMinArea(cfg.OverlapMinArea),
	)
	if err != nil {
		return nil, fmt.Errorf("layout analysis failed: %w", err)
	}
	return layout, nil
}

// addReportArtifacts registers the JSON report and Markdown summary.
func addReportArtifacts(group *pipeline.ArtifactGroup, cfg *config.Config, doc *report.Document) {
	if cfg.ReportPath != "" {
		group.Add("report", func(context.Context) error {
			return writeReport(cfg.ReportPath, jsonReportWriter, doc)
		})
	}
	if cfg.MarkdownPath != "" {
		group.Add("markdown", func(context.Context) error {
			return writeReport(cfg.MarkdownPath, markdownReportWriter, doc)
		})
	}
}

// checkWarnings prints a one-line summary and, with failOnWarnings,
// turns warnings into an error.
func checkWarnings(out io.Writer, layout *model.LayoutReport, failOnWarnings bool) error {
	summary := layout.Summary()
	if summary.Total() == 0 {
		return nil
	}
	fmt.Fprintf(out, "Layout warnings: %d (overflow %d, clipped %d, overlap %d, structural %d)\n",
		summary.Total(), summary.Overflow, summary.Clipped, summary.Overlap, summary.Structural)
	if failOnWarnings {
		return fmt.Errorf("%w: %d", ErrLayoutWarnings, summary.Total())
	}
	return nil
}

func saveHistory(ctx context.Context, cfg *config.Config, doc *htmlmeta.Document, reportDoc *report.Document) error {
	slide, err := database.SlideKey(cfg.HTMLPath)
	if err != nil {
		return err
	}
	screenshot, err := filepath.Abs(reportDoc.Screenshot)
	if err != nil {
		return err
	}

	db, err := database.Open(cfg.DBDir, database.DefaultOptions())
	if err != nil {
		return err
	}
	defer db.Close()

	_, err = db.SaveRun(ctx, &database.Run{
		Slide:      slide,
		Title:      doc.Title,
		Digest:     doc.Digest,
		CapturedAt: reportDoc.CapturedAt,
		Width:      cfg.Width,
		Height:     cfg.Height,
		Screenshot: screenshot,
		Report:     reportDoc.Report,
	})
	return err
}
