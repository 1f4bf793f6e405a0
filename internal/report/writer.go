package report

import (
	"fmt"
	"io"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/nao1215/slideshot/internal/model"
)

// Document is an analyzed slide together with the context that the
// human-readable writers display.
type Document struct {
	// Source is the path of the HTML file.
	Source string

	// Title is the document title, if any.
	Title string

	// Screenshot is the path the PNG was written to.
	Screenshot string

	// Width and Height are the viewport dimensions used for the capture.
	Width  int
	Height int

	// CapturedAt is when the capture finished.
	CapturedAt time.Time

	// Report is the assembled layout report.
	Report *model.LayoutReport
}

// Writer defines the interface for report output.
type Writer interface {
	// Write outputs the document to the configured destination and returns
	// the number of bytes written.
	Write(doc *Document) (int, error)
}

// MultiWriter writes to multiple Writers in order.
type MultiWriter struct {
	writers []Writer
}

// NewMultiWriter creates a Writer that writes to all provided Writers.
func NewMultiWriter(writers ...Writer) *MultiWriter {
	return &MultiWriter{writers: writers}
}

// Write outputs the document to all configured Writers.
// It stops on the first error.
func (m *MultiWriter) Write(doc *Document) (int, error) {
	var total int
	for _, w := range m.writers {
		n, err := w.Write(doc)
		total += n
		if err != nil {
			return total, err
		}
	}
	return total, nil
}

// baseWriter provides common functionality for report writers.
type baseWriter struct {
	output io.Writer
}

func newBaseWriter(output io.Writer) baseWriter {
	return baseWriter{output: output}
}

var titleCaser = cases.Title(language.English)

// KindTitle returns the display name of a warning kind, e.g. "Overflow".
func KindTitle(kind model.WarningKind) string {
	return titleCaser.String(kind.String())
}

// WordTexts returns the texts of the words a warning refers to.
func WordTexts(report *model.LayoutReport, w model.Warning) []string {
	words := report.WordsOf(w)
	texts := make([]string, len(words))
	for i, word := range words {
		texts[i] = word.Text
	}
	return texts
}

// DescribeDetail renders the magnitude of a warning in one line.
func DescribeDetail(w model.Warning) string {
	d := w.Detail
	switch w.Kind {
	case model.WarningOverflow:
		if d.Edges == nil {
			return "-"
		}
		var parts []string
		for _, e := range []struct {
			name  string
			value float64
		}{
			{"left", d.Edges.Left},
			{"top", d.Edges.Top},
			{"right", d.Edges.Right},
			{"bottom", d.Edges.Bottom},
		} {
			if e.value > 0 {
				parts = append(parts, fmt.Sprintf("%s +%.1fpx", e.name, e.value))
			}
		}
		return strings.Join(parts, ", ")
	case model.WarningClipped:
		if d.VisibleFraction == nil {
			return "-"
		}
		return fmt.Sprintf("%.0f%% visible", *d.VisibleFraction*100)
	case model.WarningOverlap:
		return fmt.Sprintf("%.1fpx² shared", d.Area)
	case model.WarningStructural:
		return d.Message
	default:
		return "-"
	}
}

// canvasText formats the canvas bounds for display.
func canvasText(report *model.LayoutReport) string {
	if report.CanvasBounds == nil {
		return "unresolved"
	}
	b := report.CanvasBounds
	return fmt.Sprintf("%.0fx%.0f at (%.0f, %.0f)", b.Width, b.Height, b.X, b.Y)
}

// truncateString truncates s to maxLen runes with an ellipsis.
func truncateString(s string, maxLen int) string {
	r := []rune(s)
	if len(r) <= maxLen {
		return s
	}
	if maxLen <= 3 {
		return string(r[:maxLen])
	}
	return string(r[:maxLen-3]) + "..."
}
