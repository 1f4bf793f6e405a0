package report

import (
	"io"
	"strconv"
	"strings"

	"github.com/nao1215/markdown"
	"github.com/nao1215/markdown/mermaid/piechart"

	"github.com/nao1215/slideshot/internal/model"
)

// MarkdownWriter outputs a layout summary in GitHub-flavored Markdown.
type MarkdownWriter struct {
	baseWriter
}

// NewMarkdownWriter creates a MarkdownWriter that outputs to the given writer.
func NewMarkdownWriter(output io.Writer) *MarkdownWriter {
	return &MarkdownWriter{baseWriter: newBaseWriter(output)}
}

// Write outputs the document in Markdown format.
func (w *MarkdownWriter) Write(doc *Document) (int, error) {
	md := markdown.NewMarkdown(w.output)
	summary := doc.Report.Summary()

	w.writeHeader(md, doc, summary)
	w.writeSummary(md, summary)
	w.writeWarnings(md, doc.Report)
	w.writeFooter(md)

	return len(md.String()), md.Build()
}

func (w *MarkdownWriter) writeHeader(md *markdown.Markdown, doc *Document, summary model.Summary) {
	md.H1("Slide Layout Report")
	md.PlainText("")

	rows := [][]string{
		{"Source", "`" + doc.Source + "`"},
	}
	if doc.Title != "" {
		rows = append(rows, []string{"Title", doc.Title})
	}
	if doc.Screenshot != "" {
		rows = append(rows, []string{"Screenshot", "`" + doc.Screenshot + "`"})
	}
	if doc.Width > 0 && doc.Height > 0 {
		rows = append(rows, []string{"Viewport", strconv.Itoa(doc.Width) + "x" + strconv.Itoa(doc.Height)})
	}
	if !doc.CapturedAt.IsZero() {
		rows = append(rows, []string{"Captured", doc.CapturedAt.Format("2006-01-02 15:04:05 MST")})
	}
	rows = append(rows,
		[]string{"Canvas", canvasText(doc.Report)},
		[]string{"Words", strconv.Itoa(summary.Words)},
	)

	md.Table(markdown.TableSet{
		Header: []string{"Property", "Value"},
		Rows:   rows,
	})
	md.PlainText("")
}

func (w *MarkdownWriter) writeSummary(md *markdown.Markdown, summary model.Summary) {
	md.H2("Warning Summary")
	md.PlainText("")

	rows := make([][]string, 0, len(model.AllWarningKinds())+1)
	for _, kind := range model.AllWarningKinds() {
		rows = append(rows, []string{KindTitle(kind), strconv.Itoa(summary.Count(kind))})
	}
	rows = append(rows, []string{"**Total**", "**" + strconv.Itoa(summary.Total()) + "**"})

	md.Table(markdown.TableSet{
		Header: []string{"Kind", "Count"},
		Rows:   rows,
	})
	md.PlainText("")

	if summary.Total() > 0 {
		w.writePieChart(md, summary)
	}
	w.writeAlert(md, summary)
}

func (w *MarkdownWriter) writePieChart(md *markdown.Markdown, summary model.Summary) {
	chart := piechart.NewPieChart(
		io.Discard,
		piechart.WithTitle("Warnings by Kind"),
		piechart.WithShowData(true),
	)
	for _, kind := range model.AllWarningKinds() {
		if n := summary.Count(kind); n > 0 {
			chart.LabelAndIntValue(KindTitle(kind), uint64(n))
		}
	}

	md.PlainText("")
	md.CodeBlocks(markdown.SyntaxHighlightMermaid, chart.String())
	md.PlainText("")
}

func (w *MarkdownWriter) writeAlert(md *markdown.Markdown, summary model.Summary) {
	switch {
	case summary.Structural > 0:
		md.Caution("The canvas root could not be resolved. Bounds and clipping were not checked.")
	case summary.Overflow > 0 || summary.Clipped > 0:
		md.Warningf("%d word(s) extend past the canvas or are cut off.", summary.Overflow+summary.Clipped)
	case summary.Overlap > 0:
		md.Importantf("%d pair(s) of words overlap.", summary.Overlap)
	default:
		md.Tip("No layout problems detected.")
	}
	md.PlainText("")
}

func (w *MarkdownWriter) writeWarnings(md *markdown.Markdown, report *model.LayoutReport) {
	md.H2("Warnings")
	md.PlainText("")

	if !report.HasWarnings() {
		md.PlainText("No warnings.")
		md.PlainText("")
		return
	}

	for _, kind := range model.AllWarningKinds() {
		warnings := report.WarningsOfKind(kind)
		if len(warnings) == 0 {
			continue
		}
		md.H3(KindTitle(kind))
		md.PlainText("")

		rows := make([][]string, len(warnings))
		for i, warning := range warnings {
			words := WordTexts(report, warning)
			text := "-"
			if len(words) > 0 {
				text = "`" + strings.Join(words, "` / `") + "`"
			}
			rows[i] = []string{
				strconv.Itoa(i + 1),
				truncateString(text, 60),
				truncateString(DescribeDetail(warning), 80),
			}
		}
		md.Table(markdown.TableSet{
			Header: []string{"#", "Words", "Detail"},
			Rows:   rows,
		})
		md.PlainText("")
	}
}

func (w *MarkdownWriter) writeFooter(md *markdown.Markdown) {
	md.HorizontalRule()
	md.PlainText("")
	md.PlainTextf("*Report generated by slideshot*")
}
