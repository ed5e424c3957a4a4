package format

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/mithrel/folio/internal/render"
	"github.com/mithrel/folio/pkg/api"
)

func renderMarkdown(w io.Writer, md string) error {
	r, err := glamour.NewTermRenderer(
		glamour.WithStandardStyle("dracula"),
		glamour.WithWordWrap(80),
	)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	out, err := r.Render(md)
	if err != nil {
		return fmt.Errorf("failed to render markdown: %w", err)
	}

	_, err = io.WriteString(w, out)
	return err
}

// WritePrettyTemplate renders a template outline with glamour.
func WritePrettyTemplate(w io.Writer, t api.Template) error {
	return renderMarkdown(w, render.Markdown(&t))
}

// WritePrettyTemplates renders a summary table.
func WritePrettyTemplates(w io.Writer, templates []api.Template) error {
	var b strings.Builder
	b.WriteString("| Name | Category | Pages | Version | Tags |\n|---|---|---|---|---|\n")
	for _, t := range templates {
		fmt.Fprintf(&b, "| %s | %s | %d | %d | %s |\n",
			mdCell(t.Name), mdCell(t.Category), len(t.Pages), t.Version, mdCell(strings.Join(t.Tags, ", ")))
	}
	if len(templates) == 0 {
		b.WriteString("\n_No templates._\n")
	}
	return renderMarkdown(w, b.String())
}

func WritePrettyValidation(w io.Writer, res api.ValidationResult) error {
	var b strings.Builder
	if res.IsValid {
		b.WriteString("# Valid\n")
	} else {
		b.WriteString("# Invalid\n")
	}
	if len(res.Errors) > 0 {
		b.WriteString("\n## Errors\n\n")
		for _, e := range res.Errors {
			b.WriteString("- " + e + "\n")
		}
	}
	if len(res.Warnings) > 0 {
		b.WriteString("\n## Warnings\n\n")
		for _, wn := range res.Warnings {
			b.WriteString("- " + wn + "\n")
		}
	}
	return renderMarkdown(w, b.String())
}

func mdCell(s string) string {
	return strings.ReplaceAll(strings.ReplaceAll(s, "|", "\\|"), "\n", " ")
}
