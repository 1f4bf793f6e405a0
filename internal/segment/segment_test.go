package segment

import (
	"reflect"
	"testing"

	"github.com/nao1215/slideshot/internal/geometry"
	"github.com/nao1215/slideshot/internal/model"
)

func TestParseStrategy(t *testing.T) {
	t.Parallel()

	for _, name := range []string{"proportional", "node"} {
		if _, err := ParseStrategy(name); err != nil {
			t.Errorf("ParseStrategy(%q) unexpected error: %v", name, err)
		}
	}
	if _, err := ParseStrategy("glyph"); err == nil {
		t.Error("expected error for unknown strategy")
	}
	if got := New("").Fallback(); got != StrategyProportional {
		t.Errorf("got %q, expected proportional default", got)
	}
}

func TestSegmentProportional(t *testing.T) {
	t.Parallel()

	snap := &model.Snapshot{
		Nodes: []model.RenderedNode{
			{Text: "  Hello   world\n", Rect: geometry.NewRect(100, 10, 110, 20), ElementPath: "/html/body/h1"},
		},
	}

	words := New(StrategyProportional).Segment(snap)
	want := []model.Word{
		{Text: "Hello", Rect: geometry.NewRect(100, 10, 50, 20), SourceNode: 0, ElementPath: "/html/body/h1"},
		{Text: "world", Rect: geometry.NewRect(160, 10, 50, 20), SourceNode: 0, ElementPath: "/html/body/h1"},
	}
	if !reflect.DeepEqual(words, want) {
		t.Errorf("got %+v, expected %+v", words, want)
	}
}

func TestSegmentNode(t *testing.T) {
	t.Parallel()

	snap := &model.Snapshot{
		Nodes: []model.RenderedNode{
			{Text: "\n  Quarterly results  ", Rect: geometry.NewRect(0, 0, 200, 30)},
			{Text: "   ", Rect: geometry.NewRect(0, 40, 10, 10)},
		},
	}

	words := New(StrategyNode).Segment(snap)
	if len(words) != 1 {
		t.Fatalf("got %d words, expected 1", len(words))
	}
	if words[0].Text != "Quarterly results" {
		t.Errorf("got %q, expected trimmed node text", words[0].Text)
	}
	if words[0].Rect != geometry.NewRect(0, 0, 200, 30) {
		t.Errorf("got %+v, expected node rect", words[0].Rect)
	}
}

func TestSegmentPerToken(t *testing.T) {
	t.Parallel()

	snap := &model.Snapshot{
		SupportsPerTokenGeometry: true,
		Nodes: []model.RenderedNode{
			{
				Text: "wrapped line",
				Rect: geometry.NewRect(10, 10, 80, 40),
				Tokens: []model.TokenBox{
					{Text: "wrapped", Rect: geometry.NewRect(10, 10, 70, 20)},
					{Text: "\u200b", Rect: geometry.NewRect(80, 10, 0, 20)},
					{Text: "line", Rect: geometry.NewRect(10, 30, 40, 20)},
				},
			},
		},
	}

	words := New(StrategyNode).Segment(snap)
	if len(words) != 2 {
		t.Fatalf("got %d words, expected 2: %+v", len(words), words)
	}
	if words[0].Text != "wrapped" || words[1].Text != "line" {
		t.Errorf("unexpected words %+v", words)
	}
	if words[1].Rect != geometry.NewRect(10, 30, 40, 20) {
		t.Errorf("expected token geometry to be used, got %+v", words[1].Rect)
	}
}

func TestSegmentPerTokenMissingTokens(t *testing.T) {
	t.Parallel()

	snap := &model.Snapshot{
		SupportsPerTokenGeometry: true,
		SupportsVisibleGeometry:  true,
		Nodes: []model.RenderedNode{
			{Text: "", Rect: geometry.NewRect(0, 0, 400, 300), ElementPath: "/html/body"},
			{Text: "  Agenda  ", Rect: geometry.NewRect(20, 20, 120, 30), ElementPath: "/html/body/h1"},
			{Text: " \n ", Rect: geometry.NewRect(20, 60, 10, 10), ElementPath: "/html/body/p"},
		},
	}

	words := New(StrategyProportional).Segment(snap)
	if len(words) != 1 {
		t.Fatalf("got %d words, expected 1: %+v", len(words), words)
	}
	w := words[0]
	if w.Text != "Agenda" || w.Rect != geometry.NewRect(20, 20, 120, 30) {
		t.Errorf("expected the node rect as one word, got %+v", w)
	}
	if w.SourceNode != 1 || w.ElementPath != "/html/body/h1" {
		t.Errorf("unexpected source %d %q", w.SourceNode, w.ElementPath)
	}
	if w.Visible == nil || *w.Visible != w.Rect {
		t.Errorf("expected unclipped visible rect, got %+v", w.Visible)
	}
}

func TestSegmentReadingOrder(t *testing.T) {
	t.Parallel()

	snap := &model.Snapshot{
		SupportsPerTokenGeometry: true,
		Nodes: []model.RenderedNode{
			{Tokens: []model.TokenBox{{Text: "footer", Rect: geometry.NewRect(10, 800, 50, 20)}}},
			{Tokens: []model.TokenBox{{Text: "right", Rect: geometry.NewRect(500, 10, 50, 20)}}},
			{Tokens: []model.TokenBox{{Text: "left", Rect: geometry.NewRect(10, 10, 50, 20)}}},
			{Tokens: []model.TokenBox{
				{Text: "tieA", Rect: geometry.NewRect(10, 400, 50, 20)},
				{Text: "tieB", Rect: geometry.NewRect(10, 400, 50, 20)},
			}},
			{Tokens: []model.TokenBox{{Text: "tieC", Rect: geometry.NewRect(10, 400, 50, 20)}}},
		},
	}

	words := New(StrategyProportional).Segment(snap)
	var got []string
	for _, w := range words {
		got = append(got, w.Text)
	}
	want := []string{"left", "right", "tieA", "tieB", "tieC", "footer"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, expected %v", got, want)
	}
}

func TestSegmentVisibleGeometry(t *testing.T) {
	t.Parallel()

	clip := geometry.NewRect(0, 0, 100, 100)
	nodes := []model.RenderedNode{
		{
			Text:        "clipped",
			ElementPath: "/html/body/div/p",
			ClipRect:    &clip,
			Tokens:      []model.TokenBox{{Text: "clipped", Rect: geometry.NewRect(80, 0, 40, 20)}},
		},
		{
			Text:   "free",
			Tokens: []model.TokenBox{{Text: "free", Rect: geometry.NewRect(0, 200, 40, 20)}},
		},
	}

	t.Run("with visibility data", func(t *testing.T) {
		t.Parallel()

		snap := &model.Snapshot{Nodes: nodes, SupportsPerTokenGeometry: true, SupportsVisibleGeometry: true}
		words := New(StrategyProportional).Segment(snap)
		if len(words) != 2 {
			t.Fatalf("got %d words, expected 2", len(words))
		}
		if words[0].Visible == nil || *words[0].Visible != geometry.NewRect(80, 0, 20, 20) {
			t.Errorf("got visible %+v, expected clipped rect", words[0].Visible)
		}
		if words[1].Visible == nil || *words[1].Visible != words[1].Rect {
			t.Errorf("got visible %+v, expected full rect for unclipped node", words[1].Visible)
		}
	})

	t.Run("without visibility data", func(t *testing.T) {
		t.Parallel()

		snap := &model.Snapshot{Nodes: nodes, SupportsPerTokenGeometry: true}
		for _, w := range New(StrategyProportional).Segment(snap) {
			if w.Visible != nil {
				t.Errorf("word %q has visible rect without capability", w.Text)
			}
		}
	})
}

func TestSegmentNonNegative(t *testing.T) {
	t.Parallel()

	snap := &model.Snapshot{
		Nodes: []model.RenderedNode{
			{Text: "odd box", Rect: geometry.Rect{X: 5, Y: 5, Width: -10, Height: -3}},
			{Text: "", Rect: geometry.NewRect(0, 0, 10, 10)},
		},
	}

	words := New(StrategyProportional).Segment(snap)
	if words == nil {
		t.Fatal("expected non-nil slice")
	}
	for _, w := range words {
		if w.Width < 0 || w.Height < 0 {
			t.Errorf("word %q has negative size %+v", w.Text, w.Rect)
		}
	}
	if !reflect.DeepEqual(words, New(StrategyProportional).Segment(snap)) {
		t.Error("segmentation is not deterministic")
	}
}
