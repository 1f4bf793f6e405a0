package report

import (
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/nao1215/markdown"

	"github.com/nao1215/slideshot/internal/model"
)

// Directions of a comparison.
const (
	DirectionImproved  = "improved"
	DirectionWorsened  = "worsened"
	DirectionUnchanged = "unchanged"
)

// RunInfo identifies one stored capture in a comparison.
type RunInfo struct {
	ID         int64         `json:"id"`
	CapturedAt time.Time     `json:"captured_at"`
	Digest     string        `json:"digest"`
	Summary    model.Summary `json:"summary"`
}

// ComparedRun is a stored capture with its decoded report.
type ComparedRun struct {
	Info   RunInfo
	Report *model.LayoutReport
}

// WarningChange is a warning that appears in only one of the two runs.
// Warnings are matched by kind and word text, since word indices shift
// whenever the slide is edited.
type WarningChange struct {
	Kind   string   `json:"kind"`
	Words  []string `json:"words"`
	Detail string   `json:"detail"`
}

// Comparison is the difference between two runs of the same slide.
type Comparison struct {
	Source           string          `json:"source"`
	Previous         RunInfo         `json:"previous_run"`
	Current          RunInfo         `json:"current_run"`
	ContentChanged   bool            `json:"content_changed"`
	NewWarnings      []WarningChange `json:"new_warnings,omitempty"`
	ResolvedWarnings []WarningChange `json:"resolved_warnings,omitempty"`
	UnchangedCount   int             `json:"unchanged_count"`
	Direction        string          `json:"direction"`
}

// Compare diffs the warnings of previous and current.
func Compare(source string, previous, current ComparedRun) *Comparison {
	result := &Comparison{
		Source:         source,
		Previous:       previous.Info,
		Current:        current.Info,
		ContentChanged: previous.Info.Digest != current.Info.Digest,
	}
	result.Previous.Summary = previous.Report.Summary()
	result.Current.Summary = current.Report.Summary()

	remaining := make(map[string]int)
	for _, w := range previous.Report.Warnings {
		remaining[warningSignature(previous.Report, w)]++
	}

	matched := make(map[string]int)
	for _, w := range current.Report.Warnings {
		sig := warningSignature(current.Report, w)
		if remaining[sig] > 0 {
			remaining[sig]--
			matched[sig]++
			result.UnchangedCount++
			continue
		}
		result.NewWarnings = append(result.NewWarnings, newWarningChange(current.Report, w))
	}

	for _, w := range previous.Report.Warnings {
		sig := warningSignature(previous.Report, w)
		if matched[sig] > 0 {
			matched[sig]--
			continue
		}
		result.ResolvedWarnings = append(result.ResolvedWarnings, newWarningChange(previous.Report, w))
	}

	result.Direction = direction(result.Previous.Summary, result.Current.Summary)
	return result
}

func warningSignature(report *model.LayoutReport, w model.Warning) string {
	if w.Kind == model.WarningStructural {
		return w.Kind.String() + "|" + w.Detail.Message
	}
	return w.Kind.String() + "|" + strings.Join(WordTexts(report, w), "\x1f")
}

func newWarningChange(report *model.LayoutReport, w model.Warning) WarningChange {
	return WarningChange{
		Kind:   w.Kind.String(),
		Words:  WordTexts(report, w),
		Detail: DescribeDetail(w),
	}
}

// severityScore weighs structural problems above words leaving the canvas,
// and those above overlaps.
func severityScore(s model.Summary) int {
	return s.Structural*100 + s.Overflow*10 + s.Clipped*10 + s.Overlap*5
}

func direction(previous, current model.Summary) string {
	prev, cur := severityScore(previous), severityScore(current)
	switch {
	case cur < prev:
		return DirectionImproved
	case cur > prev:
		return DirectionWorsened
	default:
		return DirectionUnchanged
	}
}

// WriteComparisonJSON outputs the comparison as indented JSON.
func WriteComparisonJSON(w io.Writer, c *Comparison) error {
	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(c)
}

// WriteComparisonMarkdown outputs the comparison in Markdown.
func WriteComparisonMarkdown(w io.Writer, c *Comparison) error {
	md := markdown.NewMarkdown(w)

	md.H1("Layout Comparison: " + c.Source)
	md.PlainText("")
	md.H2("Summary")
	md.PlainText("")
	md.PlainTextf("**Status:** %s", formatDirection(c.Direction))
	md.PlainText("")
	if c.ContentChanged {
		md.Note("The HTML changed between the two runs.")
		md.PlainText("")
	}

	rows := [][]string{
		{"Run", strconv.FormatInt(c.Previous.ID, 10), strconv.FormatInt(c.Current.ID, 10), "-"},
		{"Date", c.Previous.CapturedAt.Format("2006-01-02 15:04"), c.Current.CapturedAt.Format("2006-01-02 15:04"), "-"},
		{"Words", strconv.Itoa(c.Previous.Summary.Words), strconv.Itoa(c.Current.Summary.Words),
			formatDelta(c.Current.Summary.Words - c.Previous.Summary.Words)},
	}
	for _, kind := range model.AllWarningKinds() {
		prev, cur := c.Previous.Summary.Count(kind), c.Current.Summary.Count(kind)
		rows = append(rows, []string{KindTitle(kind), strconv.Itoa(prev), strconv.Itoa(cur), formatDelta(cur - prev)})
	}
	rows = append(rows, []string{
		"**Total**",
		"**" + strconv.Itoa(c.Previous.Summary.Total()) + "**",
		"**" + strconv.Itoa(c.Current.Summary.Total()) + "**",
		"**" + formatDelta(c.Current.Summary.Total()-c.Previous.Summary.Total()) + "**",
	})
	md.Table(markdown.TableSet{
		Header: []string{"Metric", "Previous", "Current", "Change"},
		Rows:   rows,
	})
	md.PlainText("")

	if len(c.NewWarnings) > 0 {
		md.H2(fmt.Sprintf("New Warnings (%d)", len(c.NewWarnings)))
		md.PlainText("")
		items := make([]string, len(c.NewWarnings))
		for i, change := range c.NewWarnings {
			items[i] = "**[" + change.Kind + "]** " + changeText(change)
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	if len(c.ResolvedWarnings) > 0 {
		md.H2(fmt.Sprintf("Resolved Warnings (%d)", len(c.ResolvedWarnings)))
		md.PlainText("")
		items := make([]string, len(c.ResolvedWarnings))
		for i, change := range c.ResolvedWarnings {
			items[i] = "~~**[" + change.Kind + "]** " + changeText(change) + "~~"
		}
		md.BulletList(items...)
		md.PlainText("")
	}

	if c.UnchangedCount > 0 {
		md.HorizontalRule()
		md.PlainText("")
		md.PlainTextf("*%d warnings unchanged*", c.UnchangedCount)
	}

	return md.Build()
}

// WriteComparisonText outputs the comparison for the terminal.
func WriteComparisonText(w io.Writer, c *Comparison) error {
	var sb strings.Builder

	fmt.Fprintf(&sb, "Layout Comparison: %s\n", c.Source)
	sb.WriteString(strings.Repeat("=", 60))
	sb.WriteString("\n")
	fmt.Fprintf(&sb, "\nStatus: %s\n", formatDirection(c.Direction))
	if c.ContentChanged {
		sb.WriteString("HTML changed between runs\n")
	}
	fmt.Fprintf(&sb, "\nPrevious run: #%d %s\n", c.Previous.ID, c.Previous.CapturedAt.Format("2006-01-02 15:04:05"))
	fmt.Fprintf(&sb, "Current run:  #%d %s\n", c.Current.ID, c.Current.CapturedAt.Format("2006-01-02 15:04:05"))

	sb.WriteString("\nWarnings Summary:\n")
	fmt.Fprintf(&sb, "  %-11s  %-10s  %-10s  %-10s\n", "Kind", "Previous", "Current", "Change")
	sb.WriteString("  " + strings.Repeat("-", 47) + "\n")
	for _, kind := range model.AllWarningKinds() {
		prev, cur := c.Previous.Summary.Count(kind), c.Current.Summary.Count(kind)
		fmt.Fprintf(&sb, "  %-11s  %-10d  %-10d  %-10s\n", KindTitle(kind), prev, cur, formatDelta(cur-prev))
	}
	sb.WriteString("  " + strings.Repeat("-", 47) + "\n")
	fmt.Fprintf(&sb, "  %-11s  %-10d  %-10d  %-10s\n", "Total",
		c.Previous.Summary.Total(), c.Current.Summary.Total(),
		formatDelta(c.Current.Summary.Total()-c.Previous.Summary.Total()))

	if len(c.NewWarnings) > 0 {
		fmt.Fprintf(&sb, "\nNew Warnings (%d):\n", len(c.NewWarnings))
		for _, change := range c.NewWarnings {
			fmt.Fprintf(&sb, "  [+] [%s] %s\n", change.Kind, changeText(change))
		}
	}
	if len(c.ResolvedWarnings) > 0 {
		fmt.Fprintf(&sb, "\nResolved Warnings (%d):\n", len(c.ResolvedWarnings))
		for _, change := range c.ResolvedWarnings {
			fmt.Fprintf(&sb, "  [-] [%s] %s\n", change.Kind, changeText(change))
		}
	}
	if c.UnchangedCount > 0 {
		fmt.Fprintf(&sb, "\nUnchanged: %d warnings\n", c.UnchangedCount)
	}

	_, err := io.WriteString(w, sb.String())
	return err
}

func changeText(change WarningChange) string {
	if len(change.Words) == 0 {
		return change.Detail
	}
	return strconv.Quote(strings.Join(change.Words, " / ")) + " " + change.Detail
}

func formatDirection(direction string) string {
	switch direction {
	case DirectionImproved:
		return "IMPROVED (fewer layout problems)"
	case DirectionWorsened:
		return "WORSENED (more layout problems)"
	default:
		return "UNCHANGED"
	}
}

func formatDelta(delta int) string {
	if delta > 0 {
		return "+" + strconv.Itoa(delta)
	}
	return strconv.Itoa(delta)
}
