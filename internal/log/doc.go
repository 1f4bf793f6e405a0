// Package log builds the slog loggers used by slideshot.
//
// Loggers write text by default or JSON on request, at warn level unless
// verbose output is enabled. Every logger is wrapped in a PathHandler that
// rewrites absolute paths under the user's home directory to start with
// "~", so logs that end up in CI output or bug reports do not leak the
// account name.
//
// # Usage
//
//	logger := log.NewLogger(os.Stderr, verbose)
//	logger.Debug("capturing slide", "html", "/home/alice/deck/intro.html")
//	// level=DEBUG msg="capturing slide" html=~/deck/intro.html
//
//	slog.SetDefault(logger)
package log
