package model

import (
	"fmt"
	"slices"
)

// Assemble validates the analysis results and packages them into a
// LayoutReport. The input slices are copied, so later changes by the
// caller do not affect the report.
//
// Any violation returns an *InternalConsistencyError. Such a report is
// never partially emitted.
func Assemble(words []Word, bounds *CanvasBounds, warnings []Warning) (*LayoutReport, error) {
	for i, w := range words {
		if !w.IsFinite() || w.Width < 0 || w.Height < 0 {
			return nil, &InternalConsistencyError{
				Invariant: "word geometry",
				Detail:    fmt.Sprintf("word %d %q has invalid rectangle %+v", i, w.Text, w.Rect),
			}
		}
	}

	if bounds != nil && (!bounds.IsFinite() || bounds.Width <= 0 || bounds.Height <= 0) {
		return nil, &InternalConsistencyError{
			Invariant: "canvas bounds",
			Detail:    fmt.Sprintf("canvas rectangle %+v has no area", bounds.Rect),
		}
	}

	seen := make(map[string]struct{}, len(warnings))
	for i, w := range warnings {
		if err := checkWarning(w, len(words), bounds != nil); err != nil {
			err.Detail = fmt.Sprintf("warning %d: %s", i, err.Detail)
			return nil, err
		}
		key := w.Key()
		if _, dup := seen[key]; dup {
			return nil, &InternalConsistencyError{
				Invariant: "unique warnings",
				Detail:    fmt.Sprintf("warning %d duplicates %s", i, key),
			}
		}
		seen[key] = struct{}{}
	}

	report := &LayoutReport{
		Words:        make([]Word, len(words)),
		CanvasBounds: nil,
		Warnings:     make([]Warning, len(warnings)),
	}
	copy(report.Words, words)
	for i, w := range warnings {
		w.WordIndices = slices.Clone(w.WordIndices)
		if w.WordIndices == nil {
			w.WordIndices = []int{}
		}
		report.Warnings[i] = w
	}
	if bounds != nil {
		b := *bounds
		report.CanvasBounds = &b
	}
	return report, nil
}

// checkWarning validates the word references of a single warning.
func checkWarning(w Warning, wordCount int, hasBounds bool) *InternalConsistencyError {
	want := 0
	switch w.Kind {
	case WarningOverflow, WarningClipped:
		want = 1
		if !hasBounds {
			return &InternalConsistencyError{
				Invariant: "canvas bounds",
				Detail:    w.Kind.String() + " warning without canvas bounds",
			}
		}
	case WarningOverlap:
		want = 2
	case WarningStructural:
		want = 0
	default:
		return &InternalConsistencyError{
			Invariant: "warning kind",
			Detail:    fmt.Sprintf("unknown kind %d", int(w.Kind)),
		}
	}

	if len(w.WordIndices) != want {
		return &InternalConsistencyError{
			Invariant: "word references",
			Detail:    fmt.Sprintf("%s warning references %d words, want %d", w.Kind, len(w.WordIndices), want),
		}
	}

	for j, idx := range w.WordIndices {
		if idx < 0 || idx >= wordCount {
			return &InternalConsistencyError{
				Invariant: "word references",
				Detail:    fmt.Sprintf("index %d out of range [0,%d)", idx, wordCount),
			}
		}
		if slices.Contains(w.WordIndices[:j], idx) {
			return &InternalConsistencyError{
				Invariant: "word references",
				Detail:    fmt.Sprintf("index %d repeated", idx),
			}
		}
	}
	return nil
}
