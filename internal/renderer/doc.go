// Package renderer drives headless Chromium through go-rod.
//
// It is the only part of slideshot that blocks or talks to an external
// process. Capture loads one local HTML file, waits for it to settle,
// extracts a model.Snapshot of the rendered text geometry and takes the
// PNG screenshot. Everything the analysis needs is copied out of the
// browser before Capture returns; no live handle survives it.
//
// EnsureBrowser locates a Chromium binary or downloads a managed one into
// the slideshot cache directory.
package renderer
