// Package render turns templates into standalone documents.
package render

import (
	"fmt"
	"html/template"
	"io"
	"sort"
	"strings"

	"github.com/mithrel/folio/internal/geometry"
	"github.com/mithrel/folio/internal/validate"
	"github.com/mithrel/folio/pkg/api"
)

var funcs = template.FuncMap{
	"mm": func(v float64) string { return fmt.Sprintf("%.2fmm", v) },
}

var htmlTmpl = template.Must(template.New("doc").Funcs(funcs).Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{.Name}}</title>
<style>
body { margin: 0; font-family: {{.Font}}; font-size: {{.FontSize}}pt; color: {{.Color}}; line-height: {{.LineHeight}}; }
.page { position: relative; overflow: hidden; page-break-after: always; }
.page:last-child { page-break-after: auto; }
.el { position: absolute; box-sizing: border-box; }
table { border-collapse: collapse; width: 100%; }
td, th { border: 1px solid #ccc; padding: 2px 4px; }
</style>
</head>
<body>
{{range .Pages}}<div class="page" id="{{.ID}}" style="width: {{mm .Width}}; height: {{mm .Height}}; background-color: {{.Background}};{{if .Image}} background-image: url('{{.Image}}'); background-size: cover;{{end}}">
{{range .Elements}}<div class="el" id="{{.ID}}" style="left: {{mm .X}}; top: {{mm .Y}}; width: {{mm .W}}; height: {{mm .H}}; z-index: {{.Z}};{{.Style}}">{{.Body}}</div>
{{end}}</div>
{{end}}</body>
</html>
`))

type docView struct {
	Name       string
	Font       string
	FontSize   float64
	Color      string
	LineHeight float64
	Pages      []pageView
}

type pageView struct {
	ID         string
	Width      float64
	Height     float64
	Background string
	Image      string
	Elements   []elementView
}

type elementView struct {
	ID         string
	X, Y, W, H float64
	Z          int
	Style      template.CSS
	Body       template.HTML
}

// HTML writes t as a printable HTML document. Text placeholders are filled
// from data; hidden elements are skipped.
func HTML(w io.Writer, t *api.Template, data map[string]any) error {
	t = validate.Sanitize(t)
	gs := *t.GlobalStyles
	doc := docView{
		Name:       t.Name,
		Font:       gs.FontFamily,
		FontSize:   gs.FontSize,
		Color:      gs.Color,
		LineHeight: gs.LineHeight,
	}
	for _, p := range t.Pages {
		dim := geometry.Dimensions(*p.PageSettings)
		pv := pageView{
			ID:         p.ID,
			Width:      dim.Width,
			Height:     dim.Height,
			Background: p.PageSettings.BackgroundColor,
		}
		if p.BackgroundImage != nil {
			pv.Image = p.BackgroundImage.URL
		}
		els := visible(p.Elements)
		if p.Header != nil {
			els = append(els, visible(p.Header.Elements)...)
		}
		if p.Footer != nil {
			els = append(els, shiftFooter(visible(p.Footer.Elements), dim.Height-p.Footer.Height)...)
		}
		sort.SliceStable(els, func(i, j int) bool { return els[i].ZIndex < els[j].ZIndex })
		for _, el := range els {
			pv.Elements = append(pv.Elements, elementView{
				ID: el.ID,
				X:  el.Position.X, Y: el.Position.Y,
				W: el.Size.Width, H: el.Size.Height,
				Z:     el.ZIndex,
				Style: styleOf(el.Styles),
				Body:  body(el, data),
			})
		}
		doc.Pages = append(doc.Pages, pv)
	}
	return htmlTmpl.Execute(w, doc)
}

func visible(els []api.Element) []api.Element {
	out := make([]api.Element, 0, len(els))
	for _, el := range els {
		if el.Visible {
			out = append(out, el)
		}
	}
	return out
}

// shiftFooter moves footer-relative positions onto the page.
func shiftFooter(els []api.Element, top float64) []api.Element {
	for i := range els {
		els[i].Position.Y += top
	}
	return els
}

func styleOf(s api.ElementStyles) template.CSS {
	var b strings.Builder
	add := func(k, v string) {
		if v != "" {
			fmt.Fprintf(&b, " %s: %s;", k, cssValue(v))
		}
	}
	add("font-family", s.FontFamily)
	if s.FontSize > 0 {
		fmt.Fprintf(&b, " font-size: %gpt;", s.FontSize)
	}
	add("font-weight", s.FontWeight)
	add("font-style", s.FontStyle)
	add("text-decoration", s.TextDecoration)
	add("text-align", s.TextAlign)
	add("color", s.Color)
	add("background-color", s.BackgroundColor)
	if s.Padding != nil {
		p := s.Padding
		fmt.Fprintf(&b, " padding: %gmm %gmm %gmm %gmm;", p.Top, p.Right, p.Bottom, p.Left)
	}
	if s.Border != nil && s.Border.Width > 0 {
		fmt.Fprintf(&b, " border: %gpx %s %s;", s.Border.Width, cssValue(s.Border.Style), cssValue(s.Border.Color))
	}
	if s.BorderRadius > 0 {
		fmt.Fprintf(&b, " border-radius: %gpx;", s.BorderRadius)
	}
	if s.Opacity != nil {
		fmt.Fprintf(&b, " opacity: %g;", *s.Opacity)
	}
	if s.Rotation != 0 {
		fmt.Fprintf(&b, " transform: rotate(%gdeg);", s.Rotation)
	}
	return template.CSS(b.String())
}

// cssValue drops characters that could end a declaration.
func cssValue(v string) string {
	return strings.Map(func(r rune) rune {
		switch r {
		case ';', '{', '}', '<', '>', '"', '\'', '\\':
			return -1
		}
		return r
	}, v)
}

func esc(s string) string { return template.HTMLEscapeString(s) }

func body(el api.Element, data map[string]any) template.HTML {
	switch c := el.Content.(type) {
	case *api.TextContent:
		return template.HTML(esc(validate.Render(c.Text, data)))
	case *api.HeadingContent:
		level := min(max(c.Level, 1), 6)
		return template.HTML(fmt.Sprintf("<h%d>%s</h%d>", level, esc(validate.Render(c.Text, data)), level))
	case *api.ImageContent:
		fit := c.Fit
		if fit == "" {
			fit = "contain"
		}
		return template.HTML(fmt.Sprintf(`<img src="%s" alt="%s" style="width: 100%%; height: 100%%; object-fit: %s;">`,
			esc(c.Src), esc(c.Alt), cssValue(fit)))
	case *api.TableContent:
		return tableHTML(c)
	case *api.ChartContent:
		return template.HTML(fmt.Sprintf(`<div class="chart" data-type="%s" data-source="%s">%s</div>`,
			esc(c.ChartType), esc(c.DataSource), esc(validate.Render(c.Title, data))))
	case *api.LineContent:
		color := c.Color
		if color == "" {
			color = "#000000"
		}
		return template.HTML(fmt.Sprintf(`<svg width="100%%" height="100%%"><line x1="%g" y1="%g" x2="%g" y2="%g" stroke="%s" stroke-width="%g"/></svg>`,
			c.StartPoint.X, c.StartPoint.Y, c.EndPoint.X, c.EndPoint.Y, esc(color), max(c.Thickness, 1)))
	case *api.RectangleContent:
		return shapeHTML(c.Shape, fmt.Sprintf("border-radius: %gpx;", c.CornerRadius))
	case *api.CircleContent:
		return shapeHTML(c.Shape, "border-radius: 50%;")
	case *api.SignatureContent:
		return template.HTML(fmt.Sprintf(`<div style="border-bottom: 1px solid #000; height: 70%%;"></div><div>%s</div>`,
			esc(firstNonEmpty(c.Signer, c.Label))))
	case *api.BarcodeContent:
		return template.HTML(fmt.Sprintf(`<div class="barcode" data-format="%s">%s</div>`, esc(c.Format), esc(c.Value)))
	case *api.QRCodeContent:
		return template.HTML(fmt.Sprintf(`<div class="qrcode">%s</div>`, esc(c.Value)))
	default:
		return ""
	}
}

func tableHTML(c *api.TableContent) template.HTML {
	var b strings.Builder
	b.WriteString("<table>")
	if c.ShowHeader == nil || *c.ShowHeader {
		b.WriteString("<tr>")
		for _, col := range c.Columns {
			fmt.Fprintf(&b, "<th>%s</th>", esc(col.Header))
		}
		b.WriteString("</tr>")
	}
	rows := c.Data
	if c.MaxRows > 0 && len(rows) > c.MaxRows {
		rows = rows[:c.MaxRows]
	}
	for _, row := range rows {
		b.WriteString("<tr>")
		for _, cell := range row {
			fmt.Fprintf(&b, "<td>%s</td>", esc(cell))
		}
		b.WriteString("</tr>")
	}
	b.WriteString("</table>")
	return template.HTML(b.String())
}

func shapeHTML(s api.Shape, extra string) template.HTML {
	fill := s.FillColor
	if fill == "" {
		fill = "transparent"
	}
	stroke := s.StrokeColor
	if stroke == "" {
		stroke = "#000000"
	}
	return template.HTML(fmt.Sprintf(`<div style="width: 100%%; height: 100%%; box-sizing: border-box; background: %s; border: %gpx solid %s; %s"></div>`,
		cssValue(fill), s.StrokeWidth, cssValue(stroke), extra))
}

func firstNonEmpty(vals ...string) string {
	for _, v := range vals {
		if v != "" {
			return v
		}
	}
	return ""
}
