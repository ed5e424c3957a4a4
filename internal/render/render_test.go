package render

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/folio/pkg/api"
)

func sampleTemplate() *api.Template {
	t := api.NewTemplate("Monthly report")
	t.ID = "tpl-1"

	greet := api.NewElement(api.ElementText, api.Position{X: 20, Y: 30}, api.Size{Width: 80, Height: 10})
	greet.ID = "greet"
	greet.Content = &api.TextContent{Text: "<b>Hello {{name}}</b>"}
	greet.Styles.Color = "#ff0000"

	hidden := api.NewElement(api.ElementText, api.Position{X: 20, Y: 50}, api.Size{Width: 80, Height: 10})
	hidden.ID = "hidden"
	hidden.Visible = false
	hidden.Content = &api.TextContent{Text: "secret"}

	table := api.NewElement(api.ElementTable, api.Position{X: 20, Y: 70}, api.Size{Width: 120, Height: 40})
	table.ID = "tbl"
	table.Content = &api.TableContent{
		Columns: []api.TableColumn{{Key: "t", Header: "Temp"}},
		Data:    [][]string{{"21"}, {"22"}, {"23"}},
		MaxRows: 2,
	}

	t.Pages[0].Elements = []api.Element{greet, hidden, table}
	return t
}

func TestHTML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, sampleTemplate(), map[string]any{"name": "Ada"}))
	out := buf.String()

	assert.Contains(t, out, "<title>Monthly report</title>")
	assert.Contains(t, out, "&lt;b&gt;Hello Ada&lt;/b&gt;")
	assert.NotContains(t, out, "secret")
	assert.Contains(t, out, "width: 210.00mm")
	assert.Contains(t, out, "left: 20.00mm")
	assert.Contains(t, out, "color: #ff0000;")
	assert.Contains(t, out, "<th>Temp</th>")
	assert.Contains(t, out, "<td>22</td>")
	assert.NotContains(t, out, "<td>23</td>", "rows past maxRows are dropped")
}

func TestHTMLLeavesMissingVariables(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, sampleTemplate(), nil))
	assert.Contains(t, buf.String(), "Hello {{name}}")
}

func TestHTMLFooterIsPlacedAtPageBottom(t *testing.T) {
	tpl := sampleTemplate()
	note := api.NewElement(api.ElementText, api.Position{X: 10, Y: 5}, api.Size{Width: 50, Height: 5})
	note.ID = "foot"
	note.Content = &api.TextContent{Text: "page footer"}
	tpl.Pages[0].Footer = &api.Region{Height: 20, Elements: []api.Element{note}}

	var buf bytes.Buffer
	require.NoError(t, HTML(&buf, tpl, nil))
	out := buf.String()
	i := strings.Index(out, `id="foot"`)
	require.Positive(t, i)
	// A4 portrait is 297mm tall: 297 - 20 + 5.
	assert.Contains(t, out[i:], "top: 282.00mm")
}

func TestCSSValueStripsDeclarationBreakers(t *testing.T) {
	assert.Equal(t, "#fff", cssValue("#fff"))
	assert.Equal(t, "redscript", cssValue(`red;}<script>`))
}

func TestMarkdown(t *testing.T) {
	tpl := sampleTemplate()
	tpl.Tags = []string{"ops", "weekly"}
	md := Markdown(tpl)

	assert.True(t, strings.HasPrefix(md, "# Monthly report\n"))
	assert.Contains(t, md, "- **tags:** ops, weekly")
	assert.Contains(t, md, "## 1. Page 1")
	assert.Contains(t, md, "A4 portrait, 210 x 297 mm")
	assert.Contains(t, md, `<b>Hello {{name}}</b>`)
	assert.Contains(t, md, "1 columns, 3 rows")
}
