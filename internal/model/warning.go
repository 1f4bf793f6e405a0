package model

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/nao1215/slideshot/internal/geometry"
)

// WarningKind classifies a layout anomaly.
type WarningKind int

const (
	// WarningOverflow marks a word extending past the canvas bounds.
	WarningOverflow WarningKind = iota

	// WarningClipped marks a word whose visible area was reduced by an
	// ancestor that clips its overflow.
	WarningClipped

	// WarningOverlap marks two unrelated words whose boxes intersect.
	WarningOverlap

	// WarningStructural marks a document-level problem, such as a missing
	// canvas root. It references no words.
	WarningStructural
)

// String returns the wire name of the kind.
func (k WarningKind) String() string {
	switch k {
	case WarningOverflow:
		return "overflow"
	case WarningClipped:
		return "clipped"
	case WarningOverlap:
		return "overlap"
	case WarningStructural:
		return "structural"
	default:
		return "unknown"
	}
}

// ParseWarningKind converts a wire name back into a WarningKind.
func ParseWarningKind(s string) (WarningKind, error) {
	switch s {
	case "overflow":
		return WarningOverflow, nil
	case "clipped":
		return WarningClipped, nil
	case "overlap":
		return WarningOverlap, nil
	case "structural":
		return WarningStructural, nil
	default:
		return 0, fmt.Errorf("unknown warning kind %q", s)
	}
}

// MarshalText implements encoding.TextMarshaler.
func (k WarningKind) MarshalText() ([]byte, error) {
	if k < WarningOverflow || k > WarningStructural {
		return nil, fmt.Errorf("unknown warning kind %d", int(k))
	}
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *WarningKind) UnmarshalText(text []byte) error {
	parsed, err := ParseWarningKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// AllWarningKinds lists every kind in report order.
func AllWarningKinds() []WarningKind {
	return []WarningKind{WarningStructural, WarningOverflow, WarningClipped, WarningOverlap}
}

// WarningDetail carries the magnitude of a violation. Only the fields
// relevant to the warning kind are set.
type WarningDetail struct {
	// Edges is the penetration past each exceeded canvas edge (overflow).
	Edges *geometry.Edges `json:"edges,omitempty"`

	// Intersection is the shared region of two words (overlap).
	Intersection *geometry.Rect `json:"intersection,omitempty"`

	// Area is the area of Intersection (overlap).
	Area float64 `json:"area,omitempty"`

	// Visible is the visible part of the word (clipped).
	Visible *geometry.Rect `json:"visible,omitempty"`

	// VisibleFraction is the visible area divided by the declared area
	// (clipped).
	VisibleFraction *float64 `json:"visibleFraction,omitempty"`

	// Message describes a structural problem.
	Message string `json:"message,omitempty"`
}

// Warning is one detected layout anomaly.
type Warning struct {
	Kind        WarningKind   `json:"kind"`
	WordIndices []int         `json:"wordIndices"`
	Detail      WarningDetail `json:"detail"`
}

// NewOverflowWarning creates an overflow warning for word i.
func NewOverflowWarning(i int, edges geometry.Edges) Warning {
	return Warning{
		Kind:        WarningOverflow,
		WordIndices: []int{i},
		Detail:      WarningDetail{Edges: &edges},
	}
}

// NewClippedWarning creates a clipped warning for word i.
func NewClippedWarning(i int, visible geometry.Rect, fraction float64) Warning {
	return Warning{
		Kind:        WarningClipped,
		WordIndices: []int{i},
		Detail:      WarningDetail{Visible: &visible, VisibleFraction: &fraction},
	}
}

// NewOverlapWarning creates an overlap warning for words i and j.
func NewOverlapWarning(i, j int, intersection geometry.Rect) Warning {
	if j < i {
		i, j = j, i
	}
	return Warning{
		Kind:        WarningOverlap,
		WordIndices: []int{i, j},
		Detail:      WarningDetail{Intersection: &intersection, Area: intersection.Area()},
	}
}

// NewStructuralWarning creates a structural warning.
func NewStructuralWarning(message string) Warning {
	return Warning{
		Kind:        WarningStructural,
		WordIndices: []int{},
		Detail:      WarningDetail{Message: message},
	}
}

// Key identifies a warning by kind and word index set, e.g. "overlap:1,4".
func (w Warning) Key() string {
	parts := make([]string, len(w.WordIndices))
	for i, idx := range w.WordIndices {
		parts[i] = strconv.Itoa(idx)
	}
	return w.Kind.String() + ":" + strings.Join(parts, ",")
}
