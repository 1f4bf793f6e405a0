package pipeline

import (
	"bytes"
	"encoding/json"
	"errors"
	"testing"

	"github.com/nao1215/slideshot/internal/geometry"
	"github.com/nao1215/slideshot/internal/model"
	"github.com/nao1215/slideshot/internal/segment"
)

func bodyNode() model.RenderedNode {
	return model.RenderedNode{ElementPath: "/html/body", Rect: geometry.NewRect(0, 0, 1400, 900)}
}

func tokenNode(path, text string, rect geometry.Rect) model.RenderedNode {
	return model.RenderedNode{
		Text:        text,
		Rect:        rect,
		ElementPath: path,
		Tokens:      []model.TokenBox{{Text: text, Rect: rect}},
	}
}

func analyze(t *testing.T, snap *model.Snapshot, opts ...DefaultPipelineOption) *model.LayoutReport {
	t.Helper()

	report, err := Analyze(snap, []Option{WithLogger(quietLogger())}, opts...)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return report
}

func TestAnalyzeScenarios(t *testing.T) {
	t.Parallel()

	t.Run("single word inside canvas", func(t *testing.T) {
		t.Parallel()

		report := analyze(t, &model.Snapshot{
			CanvasPath:               "/html/body",
			SupportsPerTokenGeometry: true,
			Nodes: []model.RenderedNode{
				bodyNode(),
				tokenNode("/html/body/h1", "Hello", geometry.NewRect(100, 100, 80, 30)),
			},
		})
		if len(report.Words) != 1 || len(report.Warnings) != 0 {
			t.Errorf("got %d words and %d warnings, expected 1 and 0", len(report.Words), len(report.Warnings))
		}
	})

	t.Run("word past right edge", func(t *testing.T) {
		t.Parallel()

		report := analyze(t, &model.Snapshot{
			CanvasPath:               "/html/body",
			SupportsPerTokenGeometry: true,
			Nodes: []model.RenderedNode{
				bodyNode(),
				tokenNode("/html/body/p", "Overflowing", geometry.NewRect(1390, 100, 50, 30)),
			},
		})
		if len(report.Warnings) != 1 {
			t.Fatalf("got %d warnings, expected 1", len(report.Warnings))
		}
		w := report.Warnings[0]
		if w.Kind != model.WarningOverflow || w.WordIndices[0] != 0 || w.Detail.Edges.Right != 40 {
			t.Errorf("unexpected warning %+v", w)
		}
	})

	t.Run("overlap independent of node order", func(t *testing.T) {
		t.Parallel()

		a := tokenNode("/html/body/div[1]", "alpha", geometry.NewRect(10, 10, 50, 20))
		b := tokenNode("/html/body/div[2]", "beta", geometry.NewRect(30, 15, 50, 20))

		var outputs [][]byte
		for _, nodes := range [][]model.RenderedNode{{bodyNode(), a, b}, {bodyNode(), b, a}} {
			report := analyze(t, &model.Snapshot{
				CanvasPath:               "/html/body",
				SupportsPerTokenGeometry: true,
				Nodes:                    nodes,
			})
			if len(report.Warnings) != 1 || report.Warnings[0].Kind != model.WarningOverlap {
				t.Fatalf("unexpected warnings %+v", report.Warnings)
			}
			if got := report.Warnings[0].WordIndices; got[0] != 0 || got[1] != 1 {
				t.Errorf("got indices %v, expected [0 1]", got)
			}
			data, err := json.Marshal(report)
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
			outputs = append(outputs, data)
		}
		if !bytes.Equal(outputs[0], outputs[1]) {
			t.Errorf("reports differ:\n%s\n%s", outputs[0], outputs[1])
		}
	})

	t.Run("missing canvas root", func(t *testing.T) {
		t.Parallel()

		clip := geometry.NewRect(0, 0, 10, 10)
		node := tokenNode("/html/body/p", "far", geometry.NewRect(5000, 100, 50, 30))
		node.ClipRect = &clip

		report := analyze(t, &model.Snapshot{
			CanvasPath:               "/html/body/main",
			SupportsPerTokenGeometry: true,
			SupportsVisibleGeometry:  true,
			Nodes:                    []model.RenderedNode{bodyNode(), node},
		})
		if report.CanvasBounds != nil {
			t.Errorf("expected nil canvas bounds, got %+v", report.CanvasBounds)
		}
		if len(report.Warnings) != 1 || report.Warnings[0].Kind != model.WarningStructural {
			t.Fatalf("expected a single structural warning, got %+v", report.Warnings)
		}
		if report.Warnings[0].Detail.Message == "" {
			t.Error("expected structural message")
		}
	})
}

func TestAnalyzeStructuralWarningLeads(t *testing.T) {
	t.Parallel()

	report := analyze(t, &model.Snapshot{
		SupportsPerTokenGeometry: true,
		Nodes: []model.RenderedNode{
			tokenNode("/html/body/div[1]", "alpha", geometry.NewRect(10, 10, 50, 20)),
			tokenNode("/html/body/div[2]", "beta", geometry.NewRect(30, 15, 50, 20)),
		},
	})

	if len(report.Warnings) != 2 {
		t.Fatalf("got %d warnings, expected 2", len(report.Warnings))
	}
	if report.Warnings[0].Kind != model.WarningStructural || report.Warnings[1].Kind != model.WarningOverlap {
		t.Errorf("unexpected order %s, %s", report.Warnings[0].Kind, report.Warnings[1].Kind)
	}
}

func TestAnalyzeFallbackSegmentation(t *testing.T) {
	t.Parallel()

	snap := &model.Snapshot{
		CanvasPath: "/html/body",
		Nodes: []model.RenderedNode{
			bodyNode(),
			{Text: "two words", Rect: geometry.NewRect(10, 10, 90, 20), ElementPath: "/html/body/p"},
		},
	}

	if got := len(analyze(t, snap).Words); got != 2 {
		t.Errorf("proportional: got %d words, expected 2", got)
	}
	if got := len(analyze(t, snap, WithSegmentation(segment.StrategyNode)).Words); got != 1 {
		t.Errorf("node: got %d words, expected 1", got)
	}
}

func TestAnalyzeThresholds(t *testing.T) {
	t.Parallel()

	clip := geometry.NewRect(0, 0, 1400, 110)
	node := tokenNode("/html/body/div/p", "cut", geometry.NewRect(10, 100, 40, 20))
	node.ClipRect = &clip

	snap := &model.Snapshot{
		CanvasPath:               "/html/body",
		SupportsPerTokenGeometry: true,
		SupportsVisibleGeometry:  true,
		Nodes:                    []model.RenderedNode{bodyNode(), node},
	}

	strict := analyze(t, snap)
	if len(strict.Warnings) != 1 || strict.Warnings[0].Kind != model.WarningClipped {
		t.Errorf("expected one clipped warning, got %+v", strict.Warnings)
	}

	lenient := analyze(t, snap, WithMinVisibleFraction(0.5))
	if len(lenient.Warnings) != 0 {
		t.Errorf("expected no warnings at 0.5, got %+v", lenient.Warnings)
	}
}

type failingStep struct{ err error }

func (f failingStep) Do(*Analysis) error { return f.err }
func (f failingStep) Name() string       { return "failing" }

func TestAnalyzeNoPartialReport(t *testing.T) {
	t.Parallel()

	p := New(WithLogger(quietLogger()))
	p.AddSteps(
		NewSegmentStep(segment.StrategyProportional, quietLogger()),
		failingStep{err: &model.InternalConsistencyError{Invariant: "test", Detail: "forced"}},
		NewAssembleStep(),
	)

	report, err := p.Run(&model.Snapshot{})
	var ice *model.InternalConsistencyError
	if !errors.As(err, &ice) {
		t.Fatalf("expected InternalConsistencyError, got %v", err)
	}
	if report != nil {
		t.Error("expected no report")
	}
}
