package report

import (
	"fmt"
	"io"
	"strings"

	"github.com/nao1215/slideshot/internal/model"
)

// SimpleWriter outputs a plain-text layout summary for the terminal.
type SimpleWriter struct {
	baseWriter

	// showEmpty prints the warnings section even when there are none.
	showEmpty bool

	// verbose lists every word with its geometry.
	verbose bool
}

// SimpleWriterOption configures a SimpleWriter.
type SimpleWriterOption func(*SimpleWriter)

// WithShowEmpty configures the writer to show empty sections.
func WithShowEmpty(show bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.showEmpty = show
	}
}

// WithVerbose enables the word listing.
func WithVerbose(verbose bool) SimpleWriterOption {
	return func(w *SimpleWriter) {
		w.verbose = verbose
	}
}

// NewSimpleWriter creates a SimpleWriter that outputs to the given writer.
func NewSimpleWriter(output io.Writer, opts ...SimpleWriterOption) *SimpleWriter {
	w := &SimpleWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs the document in human-readable form.
func (w *SimpleWriter) Write(doc *Document) (int, error) {
	var sb strings.Builder

	w.writeHeader(&sb, doc)
	w.writeSummary(&sb, doc.Report.Summary())
	w.writeWarnings(&sb, doc.Report)
	if w.verbose {
		w.writeWords(&sb, doc.Report)
	}

	return io.WriteString(w.output, sb.String())
}

func (w *SimpleWriter) writeHeader(sb *strings.Builder, doc *Document) {
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n")
	sb.WriteString("                        SLIDE LAYOUT REPORT\n")
	sb.WriteString(strings.Repeat("=", 70))
	sb.WriteString("\n\n")

	fmt.Fprintf(sb, "Source:     %s\n", doc.Source)
	if doc.Title != "" {
		fmt.Fprintf(sb, "Title:      %s\n", doc.Title)
	}
	if doc.Screenshot != "" {
		fmt.Fprintf(sb, "Screenshot: %s\n", doc.Screenshot)
	}
	fmt.Fprintf(sb, "Canvas:     %s\n", canvasText(doc.Report))
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeSummary(sb *strings.Builder, summary model.Summary) {
	section(sb, "SUMMARY")

	fmt.Fprintf(sb, "  WORDS:      %d\n", summary.Words)
	for _, kind := range model.AllWarningKinds() {
		label := strings.ToUpper(kind.String()) + ":"
		fmt.Fprintf(sb, "  %-11s %d\n", label, summary.Count(kind))
	}
	sb.WriteString("\n")
	fmt.Fprintf(sb, "  TOTAL:      %d warnings\n\n", summary.Total())
}

func (w *SimpleWriter) writeWarnings(sb *strings.Builder, report *model.LayoutReport) {
	if !report.HasWarnings() && !w.showEmpty {
		return
	}

	section(sb, "WARNINGS")

	if !report.HasWarnings() {
		sb.WriteString("  No warnings\n\n")
		return
	}

	for _, warning := range report.Warnings {
		words := WordTexts(report, warning)
		fmt.Fprintf(sb, "  [%s]", KindTitle(warning.Kind))
		if len(words) > 0 {
			fmt.Fprintf(sb, " %q", strings.Join(words, " / "))
		}
		fmt.Fprintf(sb, " %s\n", DescribeDetail(warning))
	}
	sb.WriteString("\n")
}

func (w *SimpleWriter) writeWords(sb *strings.Builder, report *model.LayoutReport) {
	section(sb, "WORDS")

	for i, word := range report.Words {
		fmt.Fprintf(sb, "  %4d  %-24s x=%.1f y=%.1f w=%.1f h=%.1f\n",
			i, truncateString(word.Text, 24), word.X, word.Y, word.Width, word.Height)
	}
	sb.WriteString("\n")
}

func section(sb *strings.Builder, title string) {
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n")
	sb.WriteString(title)
	sb.WriteString("\n")
	sb.WriteString(strings.Repeat("-", 70))
	sb.WriteString("\n\n")
}
