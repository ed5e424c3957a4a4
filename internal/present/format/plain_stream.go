package format

import (
	"io"
	"text/tabwriter"

	"github.com/mithrel/folio/pkg/api"
)

// PlainStreamWriter incrementally writes templates in the same plain TSV format.
type PlainStreamWriter struct {
	tw          *tabwriter.Writer
	headers     bool
	wroteHeader bool
	seen        seenIDs
}

// NewPlainStreamWriter creates a streaming plain writer.
func NewPlainStreamWriter(w io.Writer, headers bool) *PlainStreamWriter {
	return &PlainStreamWriter{
		tw:      tabwriter.NewWriter(w, 0, 0, 2, ' ', 0),
		headers: headers,
		seen:    seenIDs{},
	}
}

// WriteTemplates writes a batch of templates and flushes.
func (pw *PlainStreamWriter) WriteTemplates(templates []api.Template) error {
	if pw.headers && !pw.wroteHeader {
		_, _ = io.WriteString(pw.tw, headerLine)
		pw.wroteHeader = true
	}
	for _, t := range pw.seen.fresh(templates) {
		_, _ = io.WriteString(pw.tw, plainRow(t))
	}
	return pw.tw.Flush()
}

// Close flushes remaining buffered output.
func (pw *PlainStreamWriter) Close() error {
	return pw.tw.Flush()
}
