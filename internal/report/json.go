package report

import (
	"encoding/json"
	"io"

	"github.com/nao1215/slideshot/internal/model"
)

// JSONWriter outputs the canonical JSON form of a layout report.
// Field order follows the model structs, so equal reports always produce
// identical bytes.
type JSONWriter struct {
	baseWriter

	indent       bool
	indentPrefix string
	indentString string
}

// JSONWriterOption configures a JSONWriter.
type JSONWriterOption func(*JSONWriter)

// WithIndent enables indented output with the given prefix and indent.
func WithIndent(prefix, indent string) JSONWriterOption {
	return func(w *JSONWriter) {
		w.indent = true
		w.indentPrefix = prefix
		w.indentString = indent
	}
}

// WithPrettyPrint enables two-space indentation.
func WithPrettyPrint() JSONWriterOption {
	return WithIndent("", "  ")
}

// NewJSONWriter creates a JSONWriter that outputs to the given writer.
func NewJSONWriter(output io.Writer, opts ...JSONWriterOption) *JSONWriter {
	w := &JSONWriter{baseWriter: newBaseWriter(output)}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Write outputs doc.Report. The slide context is not part of the
// canonical form.
func (w *JSONWriter) Write(doc *Document) (int, error) {
	return w.WriteReport(doc.Report)
}

// WriteReport outputs report in canonical form followed by a newline.
func (w *JSONWriter) WriteReport(report *model.LayoutReport) (int, error) {
	data, err := w.encode(report)
	if err != nil {
		return 0, err
	}
	return w.output.Write(data)
}

func (w *JSONWriter) encode(v any) ([]byte, error) {
	var (
		data []byte
		err  error
	)
	if w.indent {
		data, err = json.MarshalIndent(v, w.indentPrefix, w.indentString)
	} else {
		data, err = json.Marshal(v)
	}
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// EncodeReport returns the canonical pretty-printed bytes of report.
func EncodeReport(report *model.LayoutReport) ([]byte, error) {
	return NewJSONWriter(io.Discard, WithPrettyPrint()).encode(report)
}

// DecodeReport parses a report previously written by JSONWriter.
func DecodeReport(data []byte) (*model.LayoutReport, error) {
	var report model.LayoutReport
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, err
	}
	if report.Words == nil {
		report.Words = []model.Word{}
	}
	if report.Warnings == nil {
		report.Warnings = []model.Warning{}
	}
	return &report, nil
}
