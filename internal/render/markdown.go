package render

import (
	"fmt"
	"strings"

	"github.com/mithrel/folio/internal/geometry"
	"github.com/mithrel/folio/pkg/api"
)

// Markdown summarises a template for terminal display: metadata, then one
// section per page listing its elements.
func Markdown(t *api.Template) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# %s\n\n", t.Name)
	if t.Description != "" {
		fmt.Fprintf(&b, "%s\n\n", t.Description)
	}
	fmt.Fprintf(&b, "- **id:** `%s`\n", t.ID)
	fmt.Fprintf(&b, "- **category:** %s\n", t.Category)
	if len(t.Tags) > 0 {
		fmt.Fprintf(&b, "- **tags:** %s\n", strings.Join(t.Tags, ", "))
	}
	fmt.Fprintf(&b, "- **version:** %d (revision %d)\n", t.Version, t.Revision)
	if !t.UpdatedAt.IsZero() {
		fmt.Fprintf(&b, "- **updated:** %s\n", t.UpdatedAt.Format("2006-01-02 15:04"))
	}

	for _, p := range t.Pages {
		fmt.Fprintf(&b, "\n## %d. %s\n\n", p.PageNumber, p.Name)
		if p.PageSettings != nil {
			dim := geometry.Dimensions(*p.PageSettings)
			fmt.Fprintf(&b, "%s %s, %.0f x %.0f mm\n\n", p.PageSettings.Size, p.PageSettings.Orientation, dim.Width, dim.Height)
		}
		if len(p.Elements) == 0 {
			b.WriteString("_empty page_\n")
			continue
		}
		b.WriteString("| type | position | size | content |\n|---|---|---|---|\n")
		for _, el := range p.Elements {
			fmt.Fprintf(&b, "| %s | %.1f, %.1f | %.1f x %.1f | %s |\n",
				el.Type, el.Position.X, el.Position.Y, el.Size.Width, el.Size.Height, cell(summary(el)))
		}
	}
	return b.String()
}

func summary(el api.Element) string {
	switch c := el.Content.(type) {
	case *api.TextContent:
		return c.Text
	case *api.HeadingContent:
		return c.Text
	case *api.ImageContent:
		return c.Src
	case *api.TableContent:
		return fmt.Sprintf("%d columns, %d rows", len(c.Columns), len(c.Data))
	case *api.ChartContent:
		return strings.TrimSpace(c.ChartType + " " + c.Title)
	case *api.SignatureContent:
		return firstNonEmpty(c.Signer, c.Label)
	case *api.BarcodeContent:
		return c.Value
	case *api.QRCodeContent:
		return c.Value
	}
	return ""
}

func cell(s string) string {
	s = strings.ReplaceAll(s, "\n", " ")
	s = strings.ReplaceAll(s, "|", "\\|")
	if r := []rune(s); len(r) > 40 {
		s = string(r[:39]) + "…"
	}
	return s
}
