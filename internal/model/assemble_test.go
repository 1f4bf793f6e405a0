package model

import (
	"errors"
	"math"
	"testing"

	"github.com/nao1215/slideshot/internal/geometry"
)

func TestAssemble(t *testing.T) {
	t.Parallel()

	canvas := &CanvasBounds{Rect: geometry.NewRect(0, 0, 1400, 900)}
	words := []Word{
		{Text: "a", Rect: geometry.NewRect(0, 0, 10, 10)},
		{Text: "b", Rect: geometry.NewRect(5, 0, 10, 10)},
	}

	tests := []struct {
		name      string
		words     []Word
		bounds    *CanvasBounds
		warnings  []Warning
		invariant string
	}{
		{
			name:     "valid report",
			words:    words,
			bounds:   canvas,
			warnings: []Warning{NewOverlapWarning(0, 1, geometry.NewRect(5, 0, 5, 10))},
		},
		{
			name:     "structural only without canvas",
			warnings: []Warning{NewStructuralWarning("missing")},
		},
		{
			name:      "negative width",
			words:     []Word{{Text: "x", Rect: geometry.Rect{Width: -1, Height: 2}}},
			bounds:    canvas,
			invariant: "word geometry",
		},
		{
			name:      "NaN coordinate",
			words:     []Word{{Text: "x", Rect: geometry.Rect{X: math.NaN(), Width: 1, Height: 2}}},
			bounds:    canvas,
			invariant: "word geometry",
		},
		{
			name:      "empty canvas",
			words:     words,
			bounds:    &CanvasBounds{Rect: geometry.NewRect(0, 0, 0, 900)},
			invariant: "canvas bounds",
		},
		{
			name:      "index out of range",
			words:     words,
			bounds:    canvas,
			warnings:  []Warning{NewOverflowWarning(2, geometry.Edges{Right: 1})},
			invariant: "word references",
		},
		{
			name:      "repeated index",
			words:     words,
			bounds:    canvas,
			warnings:  []Warning{{Kind: WarningOverlap, WordIndices: []int{1, 1}}},
			invariant: "word references",
		},
		{
			name:      "overflow without canvas",
			words:     words,
			warnings:  []Warning{NewOverflowWarning(0, geometry.Edges{Right: 1})},
			invariant: "canvas bounds",
		},
		{
			name:   "duplicate warning",
			words:  words,
			bounds: canvas,
			warnings: []Warning{
				NewOverlapWarning(0, 1, geometry.NewRect(5, 0, 5, 10)),
				NewOverlapWarning(1, 0, geometry.NewRect(5, 0, 5, 10)),
			},
			invariant: "unique warnings",
		},
		{
			name:      "structural referencing a word",
			words:     words,
			warnings:  []Warning{{Kind: WarningStructural, WordIndices: []int{0}}},
			invariant: "word references",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			report, err := Assemble(tt.words, tt.bounds, tt.warnings)
			if tt.invariant == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				if report.Words == nil || report.Warnings == nil {
					t.Error("expected non-nil slices")
				}
				return
			}

			var ice *InternalConsistencyError
			if !errors.As(err, &ice) {
				t.Fatalf("expected InternalConsistencyError, got %v", err)
			}
			if ice.Invariant != tt.invariant {
				t.Errorf("got invariant %q, expected %q", ice.Invariant, tt.invariant)
			}
			if report != nil {
				t.Error("expected no report on failure")
			}
		})
	}
}

func TestAssembleCopiesInput(t *testing.T) {
	t.Parallel()

	words := []Word{{Text: "a", Rect: geometry.NewRect(0, 0, 10, 10)}}
	bounds := &CanvasBounds{Rect: geometry.NewRect(0, 0, 100, 100)}
	report, err := Assemble(words, bounds, nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	words[0].Text = "changed"
	bounds.Width = 1

	if report.Words[0].Text != "a" {
		t.Error("report shares word storage with caller")
	}
	if report.CanvasBounds.Width != 100 {
		t.Error("report shares canvas bounds with caller")
	}
}

func TestStructuralError(t *testing.T) {
	t.Parallel()

	cause := errors.New("no element matches")
	err := error(&StructuralError{Path: "/html/body/main", Err: cause})

	if !errors.Is(err, ErrStructural) {
		t.Error("expected errors.Is(err, ErrStructural)")
	}
	if !errors.Is(err, cause) {
		t.Error("expected errors.Is(err, cause)")
	}
	if got := err.Error(); got != "structural: canvas /html/body/main: no element matches" {
		t.Errorf("unexpected message %q", got)
	}
}
