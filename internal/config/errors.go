package config

import "errors"

// Configuration validation errors.
// These errors are returned by Config.Validate() so callers can use
// errors.Is() while users still get a readable message.
var (
	// ErrNoHTMLPath is returned when no HTML file is given.
	ErrNoHTMLPath = errors.New("no HTML file specified: provide the path of a local slide")

	// ErrInvalidViewport is returned when width or height is out of range.
	ErrInvalidViewport = errors.New("invalid viewport: width and height must be positive")

	// ErrInvalidDelay is returned when the post-load delay is negative.
	ErrInvalidDelay = errors.New("invalid delay: must be non-negative")

	// ErrInvalidTimeout is returned when the timeout is not positive or does
	// not leave time after the post-load delay.
	ErrInvalidTimeout = errors.New("invalid timeout: must be positive and longer than the delay")

	// ErrInvalidVisibleFraction is returned when the clipped threshold is
	// outside (0, 1].
	ErrInvalidVisibleFraction = errors.New("invalid minimum visible fraction: must be greater than 0 and at most 1")

	// ErrInvalidOverlapArea is returned when the overlap threshold is negative.
	ErrInvalidOverlapArea = errors.New("invalid overlap minimum area: must be non-negative")

	// ErrInvalidSegmentation is returned for an unknown segmentation strategy.
	ErrInvalidSegmentation = errors.New("invalid segmentation: must be proportional or node")

	// ErrNoCanvasSelector is returned when the canvas selector is empty.
	ErrNoCanvasSelector = errors.New("invalid canvas selector: must not be empty")

	// ErrConflictingOutputs is returned when two artifacts share a path or
	// an artifact would overwrite the input HTML.
	ErrConflictingOutputs = errors.New("conflicting outputs: screenshot, report, markdown, annotate and snapshot paths must differ from each other and from the input")
)
