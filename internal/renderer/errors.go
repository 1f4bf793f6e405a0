package renderer

import (
	"errors"
	"fmt"
)

var (
	// ErrChromiumMissing is returned when no browser was found and
	// automatic installation is disabled.
	ErrChromiumMissing = errors.New("chromium is not installed: run \"slideshot install\" or drop --no-auto-install")

	// ErrDownloadFailed is returned when every download attempt failed.
	ErrDownloadFailed = errors.New("chromium download failed")

	// ErrHTMLNotFound is returned when the input file does not exist.
	ErrHTMLNotFound = errors.New("HTML file not found")

	// ErrInvalidRequest is returned for a capture request that cannot be
	// rendered, such as a non-positive viewport.
	ErrInvalidRequest = errors.New("invalid capture request")
)

// Stage names the point of the capture that failed.
type Stage string

// Capture stages, in execution order.
const (
	StageBrowser    Stage = "browser"
	StageLaunch     Stage = "launch"
	StageConnect    Stage = "connect"
	StagePage       Stage = "page"
	StageViewport   Stage = "viewport"
	StageNavigate   Stage = "navigate"
	StageSettle     Stage = "settle"
	StageSnapshot   Stage = "snapshot"
	StageScreenshot Stage = "screenshot"
)

// RendererFailure reports a fatal failure of the browser side. No
// snapshot or screenshot is produced when it is returned.
type RendererFailure struct {
	Stage Stage
	Err   error
}

// Error implements the error interface.
func (e *RendererFailure) Error() string {
	return fmt.Sprintf("renderer: %s: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *RendererFailure) Unwrap() error {
	return e.Err
}

func fail(stage Stage, err error) error {
	return &RendererFailure{Stage: stage, Err: err}
}
