package validate

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/folio/pkg/api"
)

const legacyDoc = `{
  "id": "tpl-1",
  "name": "",
  "pages": [
    {"id": "p1", "name": "Cover", "pageNumber": 4, "elements": [
      {"id": "own", "type": "text", "position": {"x": 1, "y": 1}, "size": {"width": 10, "height": 10}, "content": "kept"}
    ]},
    {"id": "p2", "pageNumber": 9}
  ],
  "elements": [
    {"id": "a", "type": "table", "pageId": "p2", "position": {"x": -5, "y": 12}, "size": {"width": 0, "height": -3}},
    {"id": "b", "type": "chart", "pageId": "p2", "position": {"x": 3, "y": 4}, "size": {"width": 80, "height": 60},
     "content": {"chartType": "bar"}},
    {"type": "text", "pageId": "p2", "position": {"x": 3, "y": 4}, "size": {"width": 80, "height": 60}}
  ]
}`

func decode(t *testing.T, doc string) *api.Template {
	t.Helper()
	var tpl api.Template
	require.NoError(t, json.Unmarshal([]byte(doc), &tpl))
	return &tpl
}

func TestSanitizeRepairsLegacyDocument(t *testing.T) {
	in := decode(t, legacyDoc)
	out := Sanitize(in)

	assert.Equal(t, api.DefaultTemplateName, out.Name)
	assert.Equal(t, api.DefaultCategory, out.Category)
	assert.Equal(t, []string{}, out.Tags)
	require.NotNil(t, out.GlobalStyles)
	assert.Equal(t, api.DefaultGlobalStyles(), *out.GlobalStyles)
	assert.Nil(t, out.Elements)

	require.Len(t, out.Pages, 2)
	assert.Equal(t, 1, out.Pages[0].PageNumber)
	assert.Equal(t, "Cover", out.Pages[0].Name)
	assert.Equal(t, 2, out.Pages[1].PageNumber)
	assert.Equal(t, "Page 2", out.Pages[1].Name)
	require.NotNil(t, out.Pages[1].PageSettings)
	assert.Equal(t, api.DefaultPageSettings(), *out.Pages[1].PageSettings)

	require.Len(t, out.Pages[0].Elements, 1)
	assert.Equal(t, "own", out.Pages[0].Elements[0].ID)

	els := out.Pages[1].Elements
	require.Len(t, els, 3)
	assert.Equal(t, api.Position{X: 0, Y: 12}, els[0].Position)
	assert.Equal(t, api.DefaultElementSize, els[0].Size)
	table := els[0].Content.(*api.TableContent)
	assert.Equal(t, api.DefaultDataSource, table.DataSource)
	assert.Equal(t, 50, table.MaxRows)

	chart := els[1].Content.(*api.ChartContent)
	assert.Equal(t, "bar", chart.ChartType)
	assert.Equal(t, "timestamp", chart.XAxis)

	assert.NotEmpty(t, els[2].ID)
	assert.IsType(t, &api.TextContent{}, els[2].Content)
	for _, el := range els {
		assert.Empty(t, el.PageID)
	}

	assert.Len(t, in.Elements, 3, "input untouched")
	assert.Equal(t, "", in.Name)
	assert.Equal(t, -5.0, in.Elements[0].Position.X)

	assert.True(t, Validate(out, DefaultOptions()).IsValid)
}

func TestSanitizeIsIdempotent(t *testing.T) {
	docs := map[string]*api.Template{
		"legacy": decode(t, legacyDoc),
		"empty":  {},
		"flat only": decode(t, `{"id": "x", "elements": [
			{"type": "image", "position": {"x": 1, "y": 2}, "size": {"width": 3, "height": 4}},
			{"id": "dup", "type": "line"}, {"id": "dup", "type": "qrcode"}]}`),
		"regions": decode(t, `{"id": "r", "pages": [{"id": "p", "header": {"height": 900, "elements": [{"type": "text"}]}}]}`),
	}
	for name, tpl := range docs {
		t.Run(name, func(t *testing.T) {
			once := Sanitize(tpl)
			twice := Sanitize(once)
			assert.Equal(t, once, twice)
			assert.Equal(t, once, Sanitize(tpl), "deterministic")

			ids := once.IDs()
			uniq := map[string]bool{}
			for _, id := range ids {
				assert.NotEmpty(t, id)
				assert.False(t, uniq[id], "duplicate id %s", id)
				uniq[id] = true
			}
		})
	}
}

func TestSanitizeNilReturnsUsableTemplate(t *testing.T) {
	out := Sanitize(nil)
	require.Len(t, out.Pages, 1)
	assert.NotEmpty(t, out.ID)
	assert.True(t, Validate(out, DefaultOptions()).IsValid)
}

func TestSanitizeClampsRegionHeight(t *testing.T) {
	tpl := decode(t, `{"id": "r", "pages": [{"id": "p", "footer": {"height": 900}}]}`)
	out := Sanitize(tpl)
	assert.Equal(t, float64(api.MaxRegionHeight), out.Pages[0].Footer.Height)
	assert.Equal(t, []api.Element{}, out.Pages[0].Footer.Elements)
}

func TestFlattenDistributeRoundTrip(t *testing.T) {
	tpl := Sanitize(decode(t, legacyDoc))
	want := tpl.Clone()

	Flatten(tpl)
	require.Len(t, tpl.Elements, 4)
	assert.Equal(t, tpl.Pages[0].ID, tpl.Elements[0].PageID)
	assert.Equal(t, tpl.Pages[1].ID, tpl.Elements[3].PageID)

	Distribute(tpl)
	assert.Nil(t, tpl.Elements)
	assert.Equal(t, want.Pages, tpl.Pages)
}

func TestDistributeOrphansLandOnFirstPage(t *testing.T) {
	tpl := &api.Template{
		Pages: []api.Page{{ID: "p1", Elements: []api.Element{{ID: "x"}}}},
		Elements: []api.Element{
			{ID: "x"},
			{ID: "y", PageID: "gone"},
		},
	}
	Distribute(tpl)
	require.Len(t, tpl.Pages[0].Elements, 2)
	assert.Equal(t, "y", tpl.Pages[0].Elements[1].ID)
	assert.Empty(t, tpl.Pages[0].Elements[1].PageID)
}
