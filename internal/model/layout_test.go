package model

import (
	"bytes"
	"encoding/json"
	"reflect"
	"testing"

	"github.com/nao1215/slideshot/internal/geometry"
)

func sampleReport(t *testing.T) *LayoutReport {
	t.Helper()

	words := []Word{
		{Text: "Quarterly", Rect: geometry.NewRect(40, 40, 120, 32)},
		{Text: "results", Rect: geometry.NewRect(168, 40, 96, 32)},
		{Text: "overflowing", Rect: geometry.NewRect(1390, 200, 50, 20)},
	}
	warnings := []Warning{
		NewOverflowWarning(2, geometry.Edges{Right: 40}),
		NewClippedWarning(1, geometry.NewRect(168, 40, 48, 32), 0.5),
		NewOverlapWarning(0, 1, geometry.NewRect(150, 40, 10, 32)),
	}
	report, err := Assemble(words, &CanvasBounds{Rect: geometry.NewRect(0, 0, 1400, 900)}, warnings)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return report
}

func TestLayoutReportJSON(t *testing.T) {
	t.Parallel()

	t.Run("field names", func(t *testing.T) {
		t.Parallel()

		report, err := Assemble(
			[]Word{{Text: "Hi", Rect: geometry.NewRect(1, 2, 3, 4), SourceNode: 7, ElementPath: "/html/body/p"}},
			&CanvasBounds{Rect: geometry.NewRect(0, 0, 10, 10)},
			nil,
		)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := json.Marshal(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		want := `{"words":[{"text":"Hi","x":1,"y":2,"width":3,"height":4}],` +
			`"canvasBounds":{"x":0,"y":0,"width":10,"height":10},"warnings":[]}`
		if string(data) != want {
			t.Errorf("got %s, expected %s", data, want)
		}
	})

	t.Run("missing canvas serializes as null", func(t *testing.T) {
		t.Parallel()

		report, err := Assemble(nil, nil, []Warning{NewStructuralWarning("no canvas")})
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		data, err := json.Marshal(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Contains(data, []byte(`"words":[]`)) {
			t.Errorf("expected empty words array in %s", data)
		}
		if !bytes.Contains(data, []byte(`"canvasBounds":null`)) {
			t.Errorf("expected null canvasBounds in %s", data)
		}
	})

	t.Run("round trip preserves serialized fields", func(t *testing.T) {
		t.Parallel()

		report := sampleReport(t)
		first, err := json.Marshal(report)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}

		var decoded LayoutReport
		if err := json.Unmarshal(first, &decoded); err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !reflect.DeepEqual(&decoded, report) {
			t.Errorf("decoded report differs:\n got %+v\nwant %+v", decoded, *report)
		}

		second, err := json.Marshal(&decoded)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !bytes.Equal(first, second) {
			t.Errorf("re-encoded report differs:\n got %s\nwant %s", second, first)
		}
	})
}

func TestLayoutReportSummary(t *testing.T) {
	t.Parallel()

	report := sampleReport(t)
	s := report.Summary()

	if s.Words != 3 {
		t.Errorf("got %d words, expected 3", s.Words)
	}
	if s.Overflow != 1 || s.Clipped != 1 || s.Overlap != 1 || s.Structural != 0 {
		t.Errorf("unexpected counts %+v", s)
	}
	if s.Total() != 3 {
		t.Errorf("got total %d, expected 3", s.Total())
	}
	if got := report.WordsOf(report.Warnings[2]); len(got) != 2 || got[0].Text != "Quarterly" {
		t.Errorf("unexpected words for overlap: %+v", got)
	}
	if got := report.WarningsOfKind(WarningOverflow); len(got) != 1 {
		t.Errorf("got %d overflow warnings, expected 1", len(got))
	}
}
