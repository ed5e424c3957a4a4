// Package present writes templates, validation reports and export results
// to the terminal in the selected output mode.
package present

import (
	"io"

	"github.com/mithrel/folio/internal/present/format"
	"github.com/mithrel/folio/pkg/api"
)

type Mode int

const (
	ModePlain Mode = iota
	ModePretty
	ModeJSON
	ModeNDJSON
)

type Options struct {
	Mode       Mode
	JSONIndent bool
	Headers    bool
}

// ParseMode parses a string like "plain", "pretty", "json", "ndjson".
func ParseMode(s string) (Mode, bool) {
	switch s {
	case "plain":
		return ModePlain, true
	case "pretty":
		return ModePretty, true
	case "json":
		return ModeJSON, true
	case "ndjson":
		return ModeNDJSON, true
	default:
		return ModePlain, false
	}
}

func (m Mode) String() string {
	switch m {
	case ModePretty:
		return "pretty"
	case ModeJSON:
		return "json"
	case ModeNDJSON:
		return "ndjson"
	default:
		return "plain"
	}
}

// RenderTemplates renders a list of templates according to options.
func RenderTemplates(w io.Writer, templates []api.Template, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, templates, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, templates)
	case ModePretty:
		return format.WritePrettyTemplates(w, templates)
	default:
		return format.WritePlainTemplates(w, templates, opts.Headers)
	}
}

// RenderTemplate renders a single template according to options.
func RenderTemplate(w io.Writer, t api.Template, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, t, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, []api.Template{t})
	case ModePretty:
		return format.WritePrettyTemplate(w, t)
	default:
		return format.WritePlainTemplate(w, t, opts.Headers)
	}
}

func RenderValidation(w io.Writer, res api.ValidationResult, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, res, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, []api.ValidationResult{res})
	case ModePretty:
		return format.WritePrettyValidation(w, res)
	default:
		return format.WritePlainValidation(w, res)
	}
}

func RenderExport(w io.Writer, r api.ExportResult, opts Options) error {
	switch opts.Mode {
	case ModeJSON:
		return format.WriteJSON(w, r, opts.JSONIndent)
	case ModeNDJSON:
		return format.WriteNDJSON(w, []api.ExportResult{r})
	default:
		return format.WritePlainExport(w, r)
	}
}

// StreamWriter receives templates in batches, e.g. one list page at a time.
type StreamWriter interface {
	WriteTemplates([]api.Template) error
	Close() error
}

// NewStream returns a StreamWriter for the mode. Pretty output has no
// incremental form and streams as plain rows.
func NewStream(w io.Writer, opts Options) StreamWriter {
	switch opts.Mode {
	case ModeJSON:
		return format.NewJSONStreamWriter(w, opts.JSONIndent)
	case ModeNDJSON:
		return format.NewNDJSONStreamWriter(w)
	default:
		return format.NewPlainStreamWriter(w, opts.Headers)
	}
}
