// Package pipeline runs the layout analysis as a sequence of steps.
//
// An Analysis value is threaded through every step: segmentation fills in
// the words, canvas resolution the bounds, classification the warnings, and
// assembly the final report. The steps are synchronous and never touch the
// browser; they only read the snapshot they were handed.
//
// The package also provides ArtifactGroup, which writes the independent
// output artifacts of a run (report files, overlay, history row)
// concurrently once the analysis has succeeded.
package pipeline
