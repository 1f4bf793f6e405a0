package renderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-rod/rod/lib/launcher"
)

// BrowserDirEnv overrides the managed browser directory.
const BrowserDirEnv = "SLIDESHOT_BROWSER_DIR"

// DefaultDownloadAttempts is the number of managed download attempts.
const DefaultDownloadAttempts = 3

// BrowserSource tells where a browser binary was found.
type BrowserSource string

// Browser sources, in lookup order.
const (
	SourceExplicit   BrowserSource = "explicit"
	SourceSystem     BrowserSource = "system"
	SourceManaged    BrowserSource = "managed"
	SourceDownloaded BrowserSource = "downloaded"
)

// BrowserInfo describes a usable browser binary.
type BrowserInfo struct {
	Path   string
	Source BrowserSource
}

// BrowserOptions controls EnsureBrowser.
type BrowserOptions struct {
	// ExplicitPath is a browser binary chosen by the user. When set, no
	// other location is tried.
	ExplicitPath string

	// InstallDir holds the managed browser.
	InstallDir string

	// AutoInstall allows downloading a managed browser.
	AutoInstall bool

	// Attempts is the number of download attempts. Zero means
	// DefaultDownloadAttempts.
	Attempts int

	// Logger receives progress messages.
	Logger *slog.Logger
}

// browserFinder holds the environment probes so they can be replaced in
// tests.
type browserFinder struct {
	lookPath    func() (string, bool)
	managedPath func(dir string) string
	download    func(ctx context.Context, dir string, logger *slog.Logger) error
	exists      func(path string) bool
	backoff     func(attempt int) time.Duration
}

func defaultFinder() browserFinder {
	return browserFinder{
		lookPath:    launcher.LookPath,
		managedPath: managedBinPath,
		download:    downloadManaged,
		exists:      fileExists,
		backoff:     downloadBackoff,
	}
}

// EnsureBrowser returns a browser binary, looking in this order: the
// explicit path, the system installation, the managed installation. When
// none is found it downloads the managed browser if opts.AutoInstall is set
// and returns ErrChromiumMissing otherwise.
func EnsureBrowser(ctx context.Context, opts BrowserOptions) (*BrowserInfo, error) {
	return defaultFinder().ensure(ctx, opts)
}

// Install downloads the managed browser into dir unless it is already
// there, and returns its path.
func Install(ctx context.Context, dir string, attempts int, logger *slog.Logger) (*BrowserInfo, error) {
	f := defaultFinder()
	if p := f.managedPath(dir); f.exists(p) {
		return &BrowserInfo{Path: p, Source: SourceManaged}, nil
	}
	return f.install(ctx, dir, attempts, loggerOrDefault(logger))
}

func (f browserFinder) ensure(ctx context.Context, opts BrowserOptions) (*BrowserInfo, error) {
	logger := loggerOrDefault(opts.Logger)

	if opts.ExplicitPath != "" {
		if !f.exists(opts.ExplicitPath) {
			return nil, fmt.Errorf("%w: %s does not exist", ErrChromiumMissing, opts.ExplicitPath)
		}
		return &BrowserInfo{Path: opts.ExplicitPath, Source: SourceExplicit}, nil
	}

	if p, ok := f.lookPath(); ok {
		logger.Debug("using system browser", "path", p)
		return &BrowserInfo{Path: p, Source: SourceSystem}, nil
	}

	dir := opts.InstallDir
	if p := f.managedPath(dir); f.exists(p) {
		logger.Debug("using managed browser", "path", p)
		return &BrowserInfo{Path: p, Source: SourceManaged}, nil
	}

	if !opts.AutoInstall {
		return nil, ErrChromiumMissing
	}

	return f.install(ctx, dir, opts.Attempts, logger)
}

// install downloads the managed browser with retries and backoff.
func (f browserFinder) install(ctx context.Context, dir string, attempts int, logger *slog.Logger) (*BrowserInfo, error) {
	if attempts <= 0 {
		attempts = DefaultDownloadAttempts
	}
	logger.Warn("chromium not found, downloading managed browser", "dir", dir)

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		lastErr = f.download(ctx, dir, logger)
		if lastErr == nil {
			p := f.managedPath(dir)
			if !f.exists(p) {
				return nil, fmt.Errorf("%w: %s missing after download", ErrDownloadFailed, p)
			}
			return &BrowserInfo{Path: p, Source: SourceDownloaded}, nil
		}
		if errors.Is(lastErr, context.Canceled) || errors.Is(lastErr, context.DeadlineExceeded) {
			break
		}

		logger.Warn("chromium download failed", "attempt", attempt, "of", attempts, "error", lastErr)
		if attempt == attempts {
			break
		}
		if err := sleepContext(ctx, f.backoff(attempt)); err != nil {
			lastErr = err
			break
		}
	}
	return nil, fmt.Errorf("%w: %w", ErrDownloadFailed, lastErr)
}

// downloadBackoff waits 2s, 4s, 8s... between attempts.
func downloadBackoff(attempt int) time.Duration {
	if attempt < 1 {
		attempt = 1
	}
	if attempt > 6 {
		attempt = 6
	}
	return time.Duration(1<<attempt) * time.Second
}

// ManagedDir returns the managed browser directory, honoring
// SLIDESHOT_BROWSER_DIR.
func ManagedDir(defaultDir string) string {
	if d := os.Getenv(BrowserDirEnv); d != "" {
		return d
	}
	return defaultDir
}

func newManagedBrowser(dir string) *launcher.Browser {
	b := launcher.NewBrowser()
	if dir != "" {
		b.RootDir = dir
	}
	return b
}

func managedBinPath(dir string) string {
	return newManagedBrowser(dir).BinPath()
}

func downloadManaged(ctx context.Context, dir string, logger *slog.Logger) error {
	b := newManagedBrowser(dir)
	b.Context = ctx
	b.Logger = printLogger{logger: logger}
	return b.Download()
}

// printLogger adapts slog to the Println logger used by the launcher.
type printLogger struct {
	logger *slog.Logger
}

func (p printLogger) Println(args ...interface{}) {
	p.logger.Debug(fmt.Sprint(args...))
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

func sleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}

func loggerOrDefault(logger *slog.Logger) *slog.Logger {
	if logger == nil {
		return slog.Default()
	}
	return logger
}
