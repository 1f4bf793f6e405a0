package model

import (
	"strings"

	"github.com/nao1215/slideshot/internal/geometry"
)

// TokenBox is the rendered box of one whitespace-delimited token inside a
// text node, as measured by the browser with a DOM Range.
type TokenBox struct {
	// Text is the token text without surrounding whitespace.
	Text string `json:"text"`

	// Rect is the bounding box of the token range.
	Rect geometry.Rect `json:"rect"`
}

// RenderedNode is one text-bearing node reported by the renderer.
// The canvas root element is also reported as a RenderedNode, usually
// with empty Text.
type RenderedNode struct {
	// Text is the raw text content of the node, whitespace included.
	Text string `json:"text"`

	// Rect is the bounding box of the whole node.
	Rect geometry.Rect `json:"rect"`

	// ElementPath identifies the element owning the node, as an XPath
	// with sibling indices (e.g. "/html/body/div[2]/p").
	ElementPath string `json:"elementPath"`

	// Tokens holds per-token geometry. It is only meaningful when the
	// snapshot reports SupportsPerTokenGeometry.
	Tokens []TokenBox `json:"tokens,omitempty"`

	// ClipRect is the intersection of the boxes of every ancestor that
	// clips its overflow. Nil means no ancestor clips the node. It is only
	// meaningful when the snapshot reports SupportsVisibleGeometry.
	ClipRect *geometry.Rect `json:"clipRect,omitempty"`
}

// Snapshot is the immutable, fully materialized view of a rendered page
// that the analysis works on. It is captured once, after the post-load
// delay, and never refers back to the live browser.
type Snapshot struct {
	// Nodes lists rendered nodes in document order.
	Nodes []RenderedNode `json:"nodes"`

	// CanvasPath is the ElementPath of the canvas root node.
	// Empty when the configured canvas selector matched nothing.
	CanvasPath string `json:"canvasPath"`

	// Viewport is the page area the screenshot covers.
	Viewport geometry.Rect `json:"viewport"`

	// SupportsPerTokenGeometry reports whether Nodes carry Tokens.
	SupportsPerTokenGeometry bool `json:"supportsPerTokenGeometry"`

	// SupportsVisibleGeometry reports whether Nodes carry ClipRect data.
	// When false, a nil ClipRect means "unknown" rather than "unclipped".
	SupportsVisibleGeometry bool `json:"supportsVisibleGeometry"`
}

// IsAncestorPath reports whether the element at ancestor contains the
// element at descendant. A path is not its own ancestor.
func IsAncestorPath(ancestor, descendant string) bool {
	if ancestor == "" || len(descendant) <= len(ancestor) {
		return false
	}
	return strings.HasPrefix(descendant, ancestor) && descendant[len(ancestor)] == '/'
}

// RelatedPaths reports whether two element paths name the same element or
// one of them contains the other.
func RelatedPaths(a, b string) bool {
	return a == b || IsAncestorPath(a, b) || IsAncestorPath(b, a)
}
