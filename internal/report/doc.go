// Package report writes layout reports.
//
// JSONWriter is the canonical sink: it emits the wire form of a
// model.LayoutReport (words, canvasBounds, warnings) and nothing else, so
// its output can be decoded back into an equal report. MarkdownWriter and
// SimpleWriter render the same report for people, with the slide context
// carried by Document. Compare diffs the warnings of two runs.
package report
