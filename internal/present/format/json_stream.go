package format

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"

	"github.com/mithrel/folio/pkg/api"
)

// JSONStreamWriter writes list pages as a single JSON array, one write per
// page. Templates already written on an earlier page are skipped.
type JSONStreamWriter struct {
	w      io.Writer
	prefix string
	seen   seenIDs
	n      int
}

// NewJSONStreamWriter creates a streaming JSON writer.
func NewJSONStreamWriter(w io.Writer, indent bool) *JSONStreamWriter {
	jw := &JSONStreamWriter{w: w, seen: seenIDs{}}
	if indent {
		jw.prefix = "  "
	}
	return jw
}

func (jw *JSONStreamWriter) WriteTemplates(templates []api.Template) error {
	var buf bytes.Buffer
	for _, t := range jw.seen.fresh(templates) {
		b, err := jw.encode(t)
		if err != nil {
			return fmt.Errorf("encode template %s: %w", t.ID, err)
		}
		buf.WriteString(jw.separator())
		buf.Write(b)
		jw.n++
	}
	if buf.Len() == 0 {
		return nil
	}
	_, err := jw.w.Write(buf.Bytes())
	return err
}

func (jw *JSONStreamWriter) encode(t api.Template) ([]byte, error) {
	if jw.prefix == "" {
		return json.Marshal(t)
	}
	return json.MarshalIndent(t, jw.prefix, "  ")
}

func (jw *JSONStreamWriter) separator() string {
	switch {
	case jw.n == 0 && jw.prefix != "":
		return "[\n" + jw.prefix
	case jw.n == 0:
		return "["
	case jw.prefix != "":
		return ",\n" + jw.prefix
	default:
		return ","
	}
}

// Close ends the array; an empty stream still yields valid JSON.
func (jw *JSONStreamWriter) Close() error {
	closing := "]\n"
	switch {
	case jw.n == 0:
		closing = "[]\n"
	case jw.prefix != "":
		closing = "\n]\n"
	}
	_, err := io.WriteString(jw.w, closing)
	return err
}

// NDJSONStreamWriter writes one template per line, skipping repeats.
type NDJSONStreamWriter struct {
	enc  *json.Encoder
	seen seenIDs
}

func NewNDJSONStreamWriter(w io.Writer) *NDJSONStreamWriter {
	return &NDJSONStreamWriter{enc: json.NewEncoder(w), seen: seenIDs{}}
}

func (nw *NDJSONStreamWriter) WriteTemplates(templates []api.Template) error {
	for _, t := range nw.seen.fresh(templates) {
		if err := nw.enc.Encode(t); err != nil {
			return err
		}
	}
	return nil
}

func (nw *NDJSONStreamWriter) Close() error { return nil }

// seenIDs remembers template ids across list pages. Paging by updatedAt
// repeats a template that was saved while the walk was running.
type seenIDs map[string]struct{}

func (s seenIDs) fresh(templates []api.Template) []api.Template {
	out := make([]api.Template, 0, len(templates))
	for _, t := range templates {
		if t.ID != "" {
			if _, ok := s[t.ID]; ok {
				continue
			}
			s[t.ID] = struct{}{}
		}
		out = append(out, t)
	}
	return out
}
