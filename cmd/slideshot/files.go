package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/nao1215/slideshot/internal/report"
)

// writeFile writes data to path, creating parent directories as needed.
func writeFile(path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "" && dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}
	return os.WriteFile(path, data, 0600)
}

// writeJSON writes v as indented JSON.
func writeJSON(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	return writeFile(path, append(data, '\n'))
}

// writeReport renders doc into path with the writer built by newWriter.
// Rendering goes to memory first so a failed render leaves no partial file.
func writeReport(path string, newWriter func(io.Writer) report.Writer, doc *report.Document) error {
	var buf bytes.Buffer
	if _, err := newWriter(&buf).Write(doc); err != nil {
		return err
	}
	return writeFile(path, buf.Bytes())
}

func jsonReportWriter(w io.Writer) report.Writer {
	return report.NewJSONWriter(w, report.WithPrettyPrint())
}

func markdownReportWriter(w io.Writer) report.Writer {
	return report.NewMarkdownWriter(w)
}
