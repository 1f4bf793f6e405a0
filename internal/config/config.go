package config

import (
	"math"
	"path/filepath"
	"time"

	"github.com/adrg/xdg"

	"github.com/nao1215/slideshot/internal/segment"
)

// Default configuration values.
const (
	// AppName is the application name used for XDG directory paths.
	AppName = "slideshot"

	// DefaultWidth and DefaultHeight are the viewport size in CSS pixels.
	// 1400x900 leaves room around a 16:9 1280x720 slide.
	DefaultWidth  = 1400
	DefaultHeight = 900

	// MaxViewportDimension is the largest width or height Chromium accepts
	// for device metrics emulation.
	MaxViewportDimension = 10000000

	// DefaultDelay is the settle time after the page finished loading.
	DefaultDelay = 0 * time.Second

	// DefaultTimeout bounds navigation, settling and capture together.
	DefaultTimeout = 30 * time.Second

	// DefaultCanvasSelector is the CSS selector of the canvas root.
	DefaultCanvasSelector = "body"

	// DefaultMinVisibleFraction reports any reduction of a word's visible
	// area as clipping.
	DefaultMinVisibleFraction = 1.0

	// DefaultOverlapMinArea reports any overlap with a positive area.
	DefaultOverlapMinArea = 0.0

	// DefaultSegmentation is the fallback used when the browser does not
	// report per-token geometry.
	DefaultSegmentation = string(segment.StrategyProportional)
)

// Config holds all configuration options for one slideshot run.
// It is populated from CLI flags and the optional config file and passed
// through the application rather than kept in global state.
type Config struct {
	// HTMLPath is the local HTML file to render.
	HTMLPath string

	// OutputPath is the PNG screenshot path.
	// Empty means HTMLPath with its extension replaced by ".png".
	OutputPath string

	// ReportPath is the JSON layout report path. Empty disables the report.
	ReportPath string

	// MarkdownPath is the Markdown summary path. Empty disables it.
	MarkdownPath string

	// AnnotatePath is the annotated overlay PNG path. Empty disables it.
	AnnotatePath string

	// SnapshotPath is where the raw rendered snapshot is written as JSON.
	// Empty disables it. The file can be re-analyzed with "slideshot analyze".
	SnapshotPath string

	// Width and Height are the viewport size in CSS pixels.
	Width  int
	Height int

	// Delay is waited after the page loaded and before capture.
	Delay time.Duration

	// FullPage captures the whole scrollable page instead of the viewport.
	FullPage bool

	// AutoInstall downloads a managed Chromium when none is found.
	AutoInstall bool

	// ChromiumPath is an explicit browser binary. Empty means lookup.
	ChromiumPath string

	// Timeout bounds navigation, settling and capture.
	Timeout time.Duration

	// CanvasSelector is the CSS selector of the canvas root element.
	CanvasSelector string

	// CanvasSelectorExplicit is true when the selector came from the command
	// line; it then wins over a selector declared by the document.
	CanvasSelectorExplicit bool

	// MinVisibleFraction is the clipped threshold in (0, 1].
	MinVisibleFraction float64

	// OverlapMinArea is the minimum overlap area in square CSS pixels.
	OverlapMinArea float64

	// Segmentation is the fallback segmentation strategy name.
	Segmentation string

	// FailOnWarnings makes the run fail when the report has warnings.
	FailOnWarnings bool

	// SaveToDB records the run in the history database.
	SaveToDB bool

	// DBDir is the directory of the history database.
	// Defaults to the XDG data directory.
	DBDir string

	// Verbose enables debug logging.
	Verbose bool

	// LogJSON switches logs to JSON.
	LogJSON bool

	// ConfigFilePath is the path to the configuration file.
	// If empty, the tool searches the usual locations.
	ConfigFilePath string

	// SlideConfigs holds the overrides loaded from the config file.
	SlideConfigs *File
}

// NewConfig creates a new Config with default values.
func NewConfig() *Config {
	return &Config{
		Width:              DefaultWidth,
		Height:             DefaultHeight,
		Delay:              DefaultDelay,
		FullPage:           true,
		AutoInstall:        true,
		Timeout:            DefaultTimeout,
		CanvasSelector:     DefaultCanvasSelector,
		MinVisibleFraction: DefaultMinVisibleFraction,
		OverlapMinArea:     DefaultOverlapMinArea,
		Segmentation:       DefaultSegmentation,
		SaveToDB:           true,
		DBDir:              XDGDataDir(),
	}
}

// ResolvedOutputPath returns OutputPath, or HTMLPath with a ".png"
// extension when OutputPath is empty.
func (c *Config) ResolvedOutputPath() string {
	if c.OutputPath != "" {
		return c.OutputPath
	}
	ext := filepath.Ext(c.HTMLPath)
	return c.HTMLPath[:len(c.HTMLPath)-len(ext)] + ".png"
}

// WantsAnalysis reports whether any artifact needs the layout report.
func (c *Config) WantsAnalysis() bool {
	return c.ReportPath != "" || c.MarkdownPath != "" || c.AnnotatePath != "" ||
		c.SnapshotPath != "" || c.FailOnWarnings || c.SaveToDB
}

// XDGDataDir returns the XDG data directory for slideshot.
// On Linux: ~/.local/share/slideshot
func XDGDataDir() string {
	return filepath.Join(xdg.DataHome, AppName)
}

// XDGConfigDir returns the XDG config directory for slideshot.
// On Linux: ~/.config/slideshot
func XDGConfigDir() string {
	return filepath.Join(xdg.ConfigHome, AppName)
}

// XDGCacheDir returns the XDG cache directory for slideshot.
// On Linux: ~/.cache/slideshot
func XDGCacheDir() string {
	return filepath.Join(xdg.CacheHome, AppName)
}

// BrowserDir returns the directory that holds the managed Chromium.
func BrowserDir() string {
	return filepath.Join(XDGCacheDir(), "browser")
}

// DelayFromSeconds converts the --delay value, given in seconds, to a
// duration. Negative values pass through so that Validate reports them.
func DelayFromSeconds(sec float64) (time.Duration, error) {
	if math.IsNaN(sec) || math.IsInf(sec, 0) {
		return 0, ErrInvalidDelay
	}
	return time.Duration(sec * float64(time.Second)), nil
}

// Validate checks if the configuration is valid.
// It returns the first problem found as one of the sentinel errors.
func (c *Config) Validate() error {
	if c.HTMLPath == "" {
		return ErrNoHTMLPath
	}

	if c.Width <= 0 || c.Height <= 0 || c.Width > MaxViewportDimension || c.Height > MaxViewportDimension {
		return ErrInvalidViewport
	}

	if c.Delay < 0 {
		return ErrInvalidDelay
	}

	// The delay runs inside the timeout, so a shorter timeout always fails.
	if c.Timeout <= 0 || c.Timeout <= c.Delay {
		return ErrInvalidTimeout
	}

	if err := c.ValidateAnalysis(); err != nil {
		return err
	}

	if c.CanvasSelector == "" {
		return ErrNoCanvasSelector
	}

	if c.hasConflictingOutputs() {
		return ErrConflictingOutputs
	}

	return nil
}

// ValidateAnalysis checks only the analysis thresholds. It is enough when
// a saved snapshot is re-analyzed and nothing is captured.
func (c *Config) ValidateAnalysis() error {
	if c.MinVisibleFraction <= 0 || c.MinVisibleFraction > 1 {
		return ErrInvalidVisibleFraction
	}

	if c.OverlapMinArea < 0 {
		return ErrInvalidOverlapArea
	}

	if _, err := segment.ParseStrategy(c.Segmentation); err != nil {
		return ErrInvalidSegmentation
	}

	return nil
}

// hasConflictingOutputs reports whether two artifacts would be written to
// the same file or an artifact would overwrite the input.
func (c *Config) hasConflictingOutputs() bool {
	seen := map[string]bool{filepath.Clean(c.HTMLPath): true}
	for _, p := range []string{c.ResolvedOutputPath(), c.ReportPath, c.MarkdownPath, c.AnnotatePath, c.SnapshotPath} {
		if p == "" {
			continue
		}
		p = filepath.Clean(p)
		if seen[p] {
			return true
		}
		seen[p] = true
	}
	return false
}
