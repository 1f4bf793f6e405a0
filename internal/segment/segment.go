// Package segment splits rendered text nodes into words with geometry.
//
// Two paths exist and are chosen by the snapshot's capability flag: per-token
// geometry reported by the browser, or a fallback that derives word boxes
// from the node box. Under per-token geometry a node that came without token
// boxes is taken as one word with its node rect.
package segment

import (
	"cmp"
	"fmt"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/nao1215/slideshot/internal/geometry"
	"github.com/nao1215/slideshot/internal/model"
)

// Strategy selects how words are derived when the renderer does not report
// per-token geometry.
type Strategy string

const (
	// StrategyProportional apportions the node box along its horizontal
	// extent by the rune offset of each token.
	StrategyProportional Strategy = "proportional"

	// StrategyNode emits the whole trimmed node text as a single word
	// with the node box.
	StrategyNode Strategy = "node"
)

// Strategies lists the accepted fallback strategy names.
func Strategies() []Strategy {
	return []Strategy{StrategyProportional, StrategyNode}
}

// ParseStrategy converts a name into a Strategy.
func ParseStrategy(s string) (Strategy, error) {
	for _, st := range Strategies() {
		if string(st) == s {
			return st, nil
		}
	}
	return "", fmt.Errorf("unknown segmentation strategy %q (want proportional or node)", s)
}

// Segmenter turns snapshot nodes into words.
type Segmenter struct {
	fallback Strategy
}

// New creates a Segmenter. An empty or unknown fallback means
// StrategyProportional.
func New(fallback Strategy) *Segmenter {
	if fallback != StrategyNode {
		fallback = StrategyProportional
	}
	return &Segmenter{fallback: fallback}
}

// Fallback returns the strategy used without per-token geometry.
func (s *Segmenter) Fallback() Strategy {
	return s.fallback
}

// Segment returns the words of the snapshot in reading order. The result is
// a pure function of the snapshot and never nil.
func (s *Segmenter) Segment(snap *model.Snapshot) []model.Word {
	words := make([]model.Word, 0, len(snap.Nodes))
	// order holds the token position of each word inside its node.
	order := make([]int, 0, len(snap.Nodes))

	for i, node := range snap.Nodes {
		var nodeWords []model.Word
		if snap.SupportsPerTokenGeometry {
			nodeWords = fromTokens(i, node)
		} else if s.fallback == StrategyNode {
			nodeWords = wholeNode(i, node)
		} else {
			nodeWords = proportional(i, node)
		}

		for j := range nodeWords {
			if snap.SupportsVisibleGeometry {
				nodeWords[j].Visible = visibleRect(nodeWords[j].Rect, node.ClipRect)
			}
			words = append(words, nodeWords[j])
			order = append(order, j)
		}
	}

	sortReadingOrder(words, order)
	return words
}

// fromTokens converts browser-reported token boxes into words. A node the
// browser reported no token boxes for falls back to its own rect.
func fromTokens(index int, node model.RenderedNode) []model.Word {
	if len(node.Tokens) == 0 {
		return wholeNode(index, node)
	}
	words := make([]model.Word, 0, len(node.Tokens))
	for _, tok := range node.Tokens {
		text := strings.TrimSpace(tok.Text)
		if !visible(text) {
			continue
		}
		words = append(words, newWord(text, clampRect(tok.Rect), index, node.ElementPath))
	}
	return words
}

// wholeNode treats the node as one word.
func wholeNode(index int, node model.RenderedNode) []model.Word {
	text := strings.TrimSpace(node.Text)
	if !visible(text) {
		return nil
	}
	return []model.Word{newWord(text, clampRect(node.Rect), index, node.ElementPath)}
}

// proportional splits the node box horizontally. Runs of whitespace count as
// one character, as they do once rendered.
func proportional(index int, node model.RenderedNode) []model.Word {
	tokens := strings.Fields(node.Text)
	if len(tokens) == 0 {
		return nil
	}

	normalized := strings.Join(tokens, " ")
	total := float64(utf8.RuneCountInString(normalized))
	rect := clampRect(node.Rect)
	unit := rect.Width / total

	words := make([]model.Word, 0, len(tokens))
	offset := 0
	for _, tok := range tokens {
		n := utf8.RuneCountInString(tok)
		if visible(tok) {
			r := geometry.NewRect(rect.X+unit*float64(offset), rect.Y, unit*float64(n), rect.Height)
			words = append(words, newWord(tok, r, index, node.ElementPath))
		}
		offset += n + 1
	}
	return words
}

func newWord(text string, rect geometry.Rect, index int, path string) model.Word {
	return model.Word{
		Text:        text,
		Rect:        rect,
		SourceNode:  index,
		ElementPath: path,
	}
}

// visible reports whether text has at least one character that renders.
// Control and format characters such as U+200B do not count.
func visible(text string) bool {
	for _, r := range text {
		if !unicode.IsControl(r) && !unicode.Is(unicode.Cf, r) && !unicode.IsSpace(r) {
			return true
		}
	}
	return false
}

// clampRect guarantees non-negative dimensions.
func clampRect(r geometry.Rect) geometry.Rect {
	if r.Width < 0 {
		r.Width = 0
	}
	if r.Height < 0 {
		r.Height = 0
	}
	return r
}

// visibleRect intersects a word box with the clip region of its node.
func visibleRect(rect geometry.Rect, clip *geometry.Rect) *geometry.Rect {
	v := rect
	if clip != nil && !clip.Contains(rect) {
		v = rect.Intersection(*clip)
	}
	return &v
}

// sortReadingOrder sorts words top-to-bottom, then left-to-right, then by
// source node, then by token position.
func sortReadingOrder(words []model.Word, order []int) {
	idx := make([]int, len(words))
	for i := range idx {
		idx[i] = i
	}
	slices.SortStableFunc(idx, func(a, b int) int {
		wa, wb := words[a], words[b]
		switch {
		case wa.Y != wb.Y:
			return cmp.Compare(wa.Y, wb.Y)
		case wa.X != wb.X:
			return cmp.Compare(wa.X, wb.X)
		case wa.SourceNode != wb.SourceNode:
			return wa.SourceNode - wb.SourceNode
		default:
			return order[a] - order[b]
		}
	})

	sorted := make([]model.Word, len(words))
	for i, j := range idx {
		sorted[i] = words[j]
	}
	copy(words, sorted)
}
