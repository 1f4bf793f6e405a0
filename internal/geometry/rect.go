package geometry

import "math"

// Point is a position in viewport coordinates.
type Point struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
}

// Rect is an axis-aligned rectangle in viewport coordinates.
// Width and Height are expected to be non-negative; use IsValid or
// IsEmpty before relying on that for data coming from the browser.
type Rect struct {
	X      float64 `json:"x"`
	Y      float64 `json:"y"`
	Width  float64 `json:"width"`
	Height float64 `json:"height"`
}

// NewRect creates a rectangle from its origin and size.
func NewRect(x, y, width, height float64) Rect {
	return Rect{X: x, Y: y, Width: width, Height: height}
}

// NewRectFromEdges creates a rectangle from its four edges.
// A right edge left of the left edge (or a bottom above the top) yields
// a zero-sized dimension rather than a negative one.
func NewRectFromEdges(left, top, right, bottom float64) Rect {
	return Rect{
		X:      left,
		Y:      top,
		Width:  math.Max(0, right-left),
		Height: math.Max(0, bottom-top),
	}
}

// Left returns the left edge X coordinate.
func (r Rect) Left() float64 {
	return r.X
}

// Top returns the top edge Y coordinate.
func (r Rect) Top() float64 {
	return r.Y
}

// Right returns the right edge X coordinate.
func (r Rect) Right() float64 {
	return r.X + r.Width
}

// Bottom returns the bottom edge Y coordinate.
func (r Rect) Bottom() float64 {
	return r.Y + r.Height
}

// Center returns the center point.
func (r Rect) Center() Point {
	return Point{X: r.X + r.Width/2, Y: r.Y + r.Height/2}
}

// Area returns the area of the rectangle. Negative dimensions count as zero.
func (r Rect) Area() float64 {
	if r.Width <= 0 || r.Height <= 0 {
		return 0
	}
	return r.Width * r.Height
}

// IsEmpty reports whether the rectangle has zero area.
func (r Rect) IsEmpty() bool {
	return r.Width <= 0 || r.Height <= 0
}

// IsValid reports whether the rectangle has strictly positive dimensions.
func (r Rect) IsValid() bool {
	return r.Width > 0 && r.Height > 0
}

// IsFinite reports whether every field is a finite number.
func (r Rect) IsFinite() bool {
	for _, v := range [...]float64{r.X, r.Y, r.Width, r.Height} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

// ContainsPoint reports whether p lies inside r, edges included.
func (r Rect) ContainsPoint(p Point) bool {
	return p.X >= r.Left() && p.X <= r.Right() &&
		p.Y >= r.Top() && p.Y <= r.Bottom()
}

// Contains reports whether other lies entirely inside r.
// Containment is inclusive: an edge exactly on r's edge is inside.
func (r Rect) Contains(other Rect) bool {
	return other.Left() >= r.Left() &&
		other.Top() >= r.Top() &&
		other.Right() <= r.Right() &&
		other.Bottom() <= r.Bottom()
}

// Intersects reports whether r and other share an area greater than zero.
// Rectangles that only touch along an edge or a corner do not intersect.
func (r Rect) Intersects(other Rect) bool {
	return r.Intersection(other).Area() > 0
}

// Intersection returns the overlapping region of r and other.
// The result is empty when the two rectangles do not intersect.
func (r Rect) Intersection(other Rect) Rect {
	return NewRectFromEdges(
		math.Max(r.Left(), other.Left()),
		math.Max(r.Top(), other.Top()),
		math.Min(r.Right(), other.Right()),
		math.Min(r.Bottom(), other.Bottom()),
	)
}

// Union returns the smallest rectangle containing both r and other.
func (r Rect) Union(other Rect) Rect {
	return NewRectFromEdges(
		math.Min(r.Left(), other.Left()),
		math.Min(r.Top(), other.Top()),
		math.Max(r.Right(), other.Right()),
		math.Max(r.Bottom(), other.Bottom()),
	)
}

// Edges holds one non-negative distance per side of a rectangle.
type Edges struct {
	Left   float64 `json:"left,omitempty"`
	Top    float64 `json:"top,omitempty"`
	Right  float64 `json:"right,omitempty"`
	Bottom float64 `json:"bottom,omitempty"`
}

// Any reports whether at least one edge distance is non-zero.
func (e Edges) Any() bool {
	return e.Left > 0 || e.Top > 0 || e.Right > 0 || e.Bottom > 0
}

// Max returns the largest edge distance.
func (e Edges) Max() float64 {
	return math.Max(math.Max(e.Left, e.Top), math.Max(e.Right, e.Bottom))
}

// Penetration returns how far inner extends past each edge of r.
// Edges that inner does not cross are reported as zero, so
// r.Penetration(inner).Any() == !r.Contains(inner).
func (r Rect) Penetration(inner Rect) Edges {
	return Edges{
		Left:   math.Max(0, r.Left()-inner.Left()),
		Top:    math.Max(0, r.Top()-inner.Top()),
		Right:  math.Max(0, inner.Right()-r.Right()),
		Bottom: math.Max(0, inner.Bottom()-r.Bottom()),
	}
}
