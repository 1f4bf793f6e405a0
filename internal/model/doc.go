// Package model defines the data shared by the analysis stages.
//
// A Snapshot is what the renderer hands over: rendered text nodes with
// their boxes, the element path of the canvas root and capability flags
// describing which geometry the browser could report. The analysis turns
// it into Words, Warnings and finally a LayoutReport.
//
// Everything here is plain data and serializes to the JSON wire format of
// the layout report. Nothing in this package talks to a browser.
package model
