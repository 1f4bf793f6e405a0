package renderer

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"time"

	"github.com/go-rod/rod"
	"github.com/go-rod/rod/lib/launcher"
	"github.com/go-rod/rod/lib/proto"

	"github.com/nao1215/slideshot/internal/model"
)

// idleTimeout bounds the wait for the page's main thread to become idle
// after load. Slides that never go idle are captured anyway.
const idleTimeout = 2 * time.Second

// fontsReadyJS resolves once web fonts have loaded, so text geometry is
// measured with the final font metrics.
const fontsReadyJS = `() => document.fonts ? document.fonts.ready.then(() => true) : true`

// Request describes one capture.
type Request struct {
	// HTMLPath is the local file to render.
	HTMLPath string

	// Width and Height are the viewport size in CSS pixels.
	Width  int
	Height int

	// Delay is waited after load and before the snapshot.
	Delay time.Duration

	// FullPage captures the whole scrollable page.
	FullPage bool

	// Timeout bounds navigation, settling and capture. Zero means no
	// limit beyond ctx.
	Timeout time.Duration

	// CanvasSelector is passed to the snapshot script.
	CanvasSelector string

	// WantSnapshot requests the layout snapshot in addition to the
	// screenshot.
	WantSnapshot bool
}

func (r Request) validate() error {
	if r.HTMLPath == "" {
		return fmt.Errorf("%w: no HTML path", ErrInvalidRequest)
	}
	if r.Width <= 0 || r.Height <= 0 {
		return fmt.Errorf("%w: viewport %dx%d", ErrInvalidRequest, r.Width, r.Height)
	}
	if r.Delay < 0 || r.Timeout < 0 {
		return fmt.Errorf("%w: negative delay or timeout", ErrInvalidRequest)
	}
	if r.WantSnapshot && r.CanvasSelector == "" {
		return fmt.Errorf("%w: empty canvas selector", ErrInvalidRequest)
	}
	return nil
}

// Result is the outcome of a successful capture.
type Result struct {
	// URL is the file:// URL that was rendered.
	URL string

	// Screenshot holds the PNG bytes.
	Screenshot []byte

	// Snapshot is nil unless Request.WantSnapshot was set.
	Snapshot *model.Snapshot

	// Elapsed is the wall time of the capture.
	Elapsed time.Duration
}

// Renderer launches a browser per capture.
type Renderer struct {
	bin       string
	noSandbox bool
	logger    *slog.Logger
}

// Option configures a Renderer.
type Option func(*Renderer)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Renderer) {
		r.logger = logger
	}
}

// WithNoSandbox disables the Chromium sandbox. Chromium refuses to start
// as root with the sandbox enabled.
func WithNoSandbox(noSandbox bool) Option {
	return func(r *Renderer) {
		r.noSandbox = noSandbox
	}
}

// New creates a Renderer that launches the browser at bin.
func New(bin string, opts ...Option) *Renderer {
	r := &Renderer{
		bin:       bin,
		noSandbox: os.Geteuid() == 0,
	}
	for _, opt := range opts {
		opt(r)
	}
	if r.logger == nil {
		r.logger = slog.Default()
	}
	return r
}

// Capture renders req.HTMLPath and returns the screenshot and, when
// requested, the snapshot. Any failure is returned as *RendererFailure,
// except for a missing input file (ErrHTMLNotFound) and an invalid request.
func (r *Renderer) Capture(ctx context.Context, req Request) (*Result, error) {
	if err := req.validate(); err != nil {
		return nil, err
	}
	if _, err := os.Stat(req.HTMLPath); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrHTMLNotFound, req.HTMLPath)
		}
		return nil, err
	}
	target, err := FileURL(req.HTMLPath)
	if err != nil {
		return nil, err
	}

	if req.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, req.Timeout)
		defer cancel()
	}
	start := time.Now()

	l := launcher.New().
		Context(ctx).
		Bin(r.bin).
		Headless(true).
		NoSandbox(r.noSandbox).
		Set("hide-scrollbars").
		Set("force-device-scale-factor", "1")
	u, err := l.Launch()
	if err != nil {
		return nil, fail(StageLaunch, err)
	}
	defer l.Cleanup()
	r.logger.Debug("browser launched", "bin", r.bin, "control_url", u)

	browser := rod.New().ControlURL(u).Context(ctx)
	if err := browser.Connect(); err != nil {
		return nil, fail(StageConnect, err)
	}
	defer func() {
		if err := browser.Close(); err != nil {
			r.logger.Debug("browser close failed", "error", err)
		}
	}()

	page, err := browser.Page(proto.TargetCreateTarget{})
	if err != nil {
		return nil, fail(StagePage, err)
	}
	page = page.Context(ctx)

	if err := page.SetViewport(&proto.EmulationSetDeviceMetricsOverride{
		Width:             req.Width,
		Height:            req.Height,
		DeviceScaleFactor: 1,
	}); err != nil {
		return nil, fail(StageViewport, err)
	}

	if err := page.Navigate(target); err != nil {
		return nil, fail(StageNavigate, fmt.Errorf("%s: %w", target, err))
	}
	if err := r.settle(ctx, page, req.Delay); err != nil {
		return nil, fail(StageSettle, err)
	}

	result := &Result{URL: target}
	if req.WantSnapshot {
		snap, err := r.snapshot(page, req)
		if err != nil {
			return nil, fail(StageSnapshot, err)
		}
		result.Snapshot = snap
	}

	png, err := page.Screenshot(req.FullPage, &proto.PageCaptureScreenshot{
		Format: proto.PageCaptureScreenshotFormatPng,
	})
	if err != nil {
		return nil, fail(StageScreenshot, err)
	}
	result.Screenshot = png
	result.Elapsed = time.Since(start)

	r.logger.Debug("capture complete",
		"url", target,
		"bytes", len(png),
		"elapsed", result.Elapsed,
	)
	return result, nil
}

// settle waits for load, fonts, an idle main thread, and then the
// configured delay.
func (r *Renderer) settle(ctx context.Context, page *rod.Page, delay time.Duration) error {
	if err := page.WaitLoad(); err != nil {
		return fmt.Errorf("wait load: %w", err)
	}
	if _, err := page.Eval(fontsReadyJS); err != nil {
		return fmt.Errorf("wait fonts: %w", err)
	}
	if err := page.WaitIdle(idleTimeout); err != nil {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		r.logger.Debug("page did not become idle, continuing", "error", err)
	}
	if delay > 0 {
		r.logger.Debug("waiting post-load delay", "delay", delay)
		if err := sleepContext(ctx, delay); err != nil {
			return fmt.Errorf("delay: %w", err)
		}
	}
	return nil
}

func (r *Renderer) snapshot(page *rod.Page, req Request) (*model.Snapshot, error) {
	res, err := page.Eval(snapshotJS, req.CanvasSelector, req.FullPage)
	if err != nil {
		return nil, err
	}
	snap, err := DecodeSnapshot([]byte(res.Value.Str()))
	if err != nil {
		return nil, err
	}
	r.logger.Debug("snapshot extracted",
		"nodes", len(snap.Nodes),
		"canvas", snap.CanvasPath,
	)
	return snap, nil
}
