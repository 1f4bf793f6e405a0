// Package canvas resolves the slide's safe area from a rendered snapshot.
package canvas

import (
	"errors"
	"fmt"

	"github.com/nao1215/slideshot/internal/model"
)

// DefaultSelector is the CSS selector of the canvas root when neither the
// command line nor the document names one.
const DefaultSelector = "body"

var (
	// ErrNoCanvasPath is returned when the renderer found no element
	// matching the canvas selector.
	ErrNoCanvasPath = errors.New("no element matches the canvas selector")

	// ErrCanvasNotFound is returned when the canvas path names no node of
	// the snapshot.
	ErrCanvasNotFound = errors.New("canvas root is not among the rendered nodes")

	// ErrCanvasEmpty is returned when the canvas root has no area.
	ErrCanvasEmpty = errors.New("canvas root has non-positive width or height")
)

// Resolve returns the box of the canvas root node. Failures are returned as
// *model.StructuralError wrapping one of the sentinel errors above.
func Resolve(snap *model.Snapshot) (*model.CanvasBounds, error) {
	if snap.CanvasPath == "" {
		return nil, &model.StructuralError{Err: ErrNoCanvasPath}
	}

	for _, node := range snap.Nodes {
		if node.ElementPath != snap.CanvasPath {
			continue
		}
		if !node.Rect.IsFinite() || !node.Rect.IsValid() {
			return nil, &model.StructuralError{
				Path: snap.CanvasPath,
				Err:  fmt.Errorf("%w: %gx%g", ErrCanvasEmpty, node.Rect.Width, node.Rect.Height),
			}
		}
		return &model.CanvasBounds{Rect: node.Rect}, nil
	}

	return nil, &model.StructuralError{Path: snap.CanvasPath, Err: ErrCanvasNotFound}
}
