package model

import "github.com/nao1215/slideshot/internal/geometry"

// CanvasBounds is the resolved rectangle of the canvas root element.
type CanvasBounds struct {
	geometry.Rect
}

// LayoutReport is the complete result of analyzing one snapshot.
// Once built by Assemble it is treated as immutable.
type LayoutReport struct {
	// Words lists every word in reading order. Never nil.
	Words []Word `json:"words"`

	// CanvasBounds is nil when the canvas root could not be resolved.
	CanvasBounds *CanvasBounds `json:"canvasBounds"`

	// Warnings lists detected anomalies. Never nil.
	Warnings []Warning `json:"warnings"`
}

// HasWarnings reports whether any anomaly was detected.
func (r *LayoutReport) HasWarnings() bool {
	return len(r.Warnings) > 0
}

// WarningsOfKind returns the warnings of the given kind, in report order.
func (r *LayoutReport) WarningsOfKind(kind WarningKind) []Warning {
	var out []Warning
	for _, w := range r.Warnings {
		if w.Kind == kind {
			out = append(out, w)
		}
	}
	return out
}

// WordsOf returns the words a warning refers to.
func (r *LayoutReport) WordsOf(w Warning) []Word {
	words := make([]Word, 0, len(w.WordIndices))
	for _, idx := range w.WordIndices {
		if idx >= 0 && idx < len(r.Words) {
			words = append(words, r.Words[idx])
		}
	}
	return words
}

// Summary counts words and warnings per kind.
type Summary struct {
	Words      int `json:"words"`
	Overflow   int `json:"overflow"`
	Clipped    int `json:"clipped"`
	Overlap    int `json:"overlap"`
	Structural int `json:"structural"`
}

// Total returns the total number of warnings.
func (s Summary) Total() int {
	return s.Overflow + s.Clipped + s.Overlap + s.Structural
}

// Count returns the number of warnings of the given kind.
func (s Summary) Count(kind WarningKind) int {
	switch kind {
	case WarningOverflow:
		return s.Overflow
	case WarningClipped:
		return s.Clipped
	case WarningOverlap:
		return s.Overlap
	case WarningStructural:
		return s.Structural
	default:
		return 0
	}
}

// Summary returns the per-kind counts of the report.
func (r *LayoutReport) Summary() Summary {
	s := Summary{Words: len(r.Words)}
	for _, w := range r.Warnings {
		switch w.Kind {
		case WarningOverflow:
			s.Overflow++
		case WarningClipped:
			s.Clipped++
		case WarningOverlap:
			s.Overlap++
		case WarningStructural:
			s.Structural++
		}
	}
	return s
}
