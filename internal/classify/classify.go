// Package classify detects layout anomalies among segmented words.
package classify

import (
	"github.com/nao1215/slideshot/internal/model"
)

// fractionEpsilon absorbs float noise when comparing visible fractions
// against the threshold.
const fractionEpsilon = 1e-9

// Options tunes the classifier thresholds.
type Options struct {
	// MinVisibleFraction is the smallest visible/declared area ratio a word
	// may have before it is reported as clipped. 1.0 reports any reduction.
	MinVisibleFraction float64

	// OverlapMinArea is the intersection area two words must exceed to be
	// reported as overlapping.
	OverlapMinArea float64
}

// DefaultOptions returns the default thresholds.
func DefaultOptions() Options {
	return Options{
		MinVisibleFraction: 1.0,
		OverlapMinArea:     0,
	}
}

// Classifier compares words against the canvas and against each other.
// It holds no state between calls.
type Classifier struct {
	opts Options
}

// New creates a Classifier.
func New(opts Options) *Classifier {
	if opts.OverlapMinArea < 0 {
		opts.OverlapMinArea = 0
	}
	return &Classifier{opts: opts}
}

// Classify returns the warnings for words in a fixed order: every overflow
// in word order, then every clipped word in word order, then every
// overlapping pair in ascending (i, j) order. When bounds is nil only the
// overlap check runs. The result is never nil.
func (c *Classifier) Classify(words []model.Word, bounds *model.CanvasBounds) []model.Warning {
	warnings := []model.Warning{}
	if bounds != nil {
		warnings = append(warnings, c.overflow(words, bounds)...)
		warnings = append(warnings, c.clipped(words)...)
	}
	return append(warnings, c.overlap(words)...)
}

func (c *Classifier) overflow(words []model.Word, bounds *model.CanvasBounds) []model.Warning {
	var out []model.Warning
	for i, w := range words {
		if bounds.Contains(w.Rect) {
			continue
		}
		out = append(out, model.NewOverflowWarning(i, bounds.Penetration(w.Rect)))
	}
	return out
}

// clipped only looks at words that carry visibility data. Zero-area words
// have no meaningful fraction and are skipped.
func (c *Classifier) clipped(words []model.Word) []model.Warning {
	var out []model.Warning
	for i, w := range words {
		if w.Visible == nil {
			continue
		}
		declared := w.Area()
		if declared <= 0 {
			continue
		}
		fraction := w.Visible.Area() / declared
		if fraction >= c.opts.MinVisibleFraction-fractionEpsilon {
			continue
		}
		out = append(out, model.NewClippedWarning(i, *w.Visible, fraction))
	}
	return out
}

func (c *Classifier) overlap(words []model.Word) []model.Warning {
	var out []model.Warning
	for i := range words {
		for j := i + 1; j < len(words); j++ {
			if words[i].SameSource(words[j]) {
				continue
			}
			inter := words[i].Intersection(words[j].Rect)
			area := inter.Area()
			if area <= 0 || area <= c.opts.OverlapMinArea {
				continue
			}
			out = append(out, model.NewOverlapWarning(i, j, inter))
		}
	}
	return out
}
