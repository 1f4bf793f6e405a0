package model

import "github.com/nao1215/slideshot/internal/geometry"

// Word is a single whitespace-delimited unit of rendered text.
//
// Only Text and the rectangle are part of the serialized report. The
// remaining fields link the word back to the snapshot it came from and
// exist for the analysis only.
type Word struct {
	// Text is the word without surrounding whitespace.
	Text string `json:"text"`

	// Rect is the declared bounding box of the word.
	geometry.Rect

	// SourceNode is the index of the originating node in Snapshot.Nodes.
	SourceNode int `json:"-"`

	// ElementPath is copied from the originating node.
	ElementPath string `json:"-"`

	// Visible is the part of Rect left visible after ancestor clipping.
	// Nil when the renderer did not report visibility data.
	Visible *geometry.Rect `json:"-"`
}

// SameSource reports whether two words come from the same node or from
// elements where one contains the other.
func (w Word) SameSource(other Word) bool {
	if w.SourceNode == other.SourceNode {
		return true
	}
	if w.ElementPath == "" || other.ElementPath == "" {
		return false
	}
	return RelatedPaths(w.ElementPath, other.ElementPath)
}
