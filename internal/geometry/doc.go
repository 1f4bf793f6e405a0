// Package geometry provides the axis-aligned rectangle type used for
// every piece of rendered layout data: word boxes, canvas bounds and
// clipping regions.
//
// All coordinates are viewport CSS pixels with the origin at the top-left
// corner of the page, X growing to the right and Y growing downwards.
package geometry
