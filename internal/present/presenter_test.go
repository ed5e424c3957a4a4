package present

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/folio/pkg/api"
)

func sample() []api.Template {
	a := api.NewTemplate("Invoice")
	a.ID = "t1"
	a.Tags = []string{"billing", "q3"}
	b := api.NewTemplate("Letter\twith tab")
	b.ID = "t2"
	return []api.Template{*a, *b}
}

func TestParseMode(t *testing.T) {
	for _, s := range []string{"plain", "pretty", "json", "ndjson"} {
		m, ok := ParseMode(s)
		require.True(t, ok, s)
		assert.Equal(t, s, m.String())
	}
	_, ok := ParseMode("tui")
	assert.False(t, ok)
}

func TestRenderTemplatesPlain(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTemplates(&buf, sample(), Options{Mode: ModePlain, Headers: true}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[0], "id"))
	assert.Contains(t, lines[1], "billing,q3")
	assert.Contains(t, lines[2], `Letter\twith tab`)
}

func TestRenderTemplatesNDJSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTemplates(&buf, sample(), Options{Mode: ModeNDJSON}))
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var got api.Template
	require.NoError(t, json.Unmarshal([]byte(lines[0]), &got))
	assert.Equal(t, "t1", got.ID)
}

func TestJSONStreamAcrossBatches(t *testing.T) {
	var buf bytes.Buffer
	s := NewStream(&buf, Options{Mode: ModeJSON})
	ts := sample()
	require.NoError(t, s.WriteTemplates(ts[:1]))
	require.NoError(t, s.WriteTemplates(ts[1:]))
	require.NoError(t, s.Close())

	var got []api.Template
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got, 2)

	buf.Reset()
	indented := NewStream(&buf, Options{Mode: ModeJSON, JSONIndent: true})
	require.NoError(t, indented.WriteTemplates(ts))
	require.NoError(t, indented.Close())
	require.NoError(t, json.Unmarshal(buf.Bytes(), &got))
	assert.Len(t, got, 2)
	assert.True(t, strings.HasPrefix(buf.String(), "[\n  {"))

	buf.Reset()
	empty := NewStream(&buf, Options{Mode: ModeJSON})
	require.NoError(t, empty.Close())
	assert.Equal(t, "[]\n", buf.String())
}

func TestStreamsSkipTemplatesRepeatedAcrossPages(t *testing.T) {
	ts := sample()
	for _, mode := range []Mode{ModePlain, ModeJSON, ModeNDJSON} {
		t.Run(mode.String(), func(t *testing.T) {
			var buf bytes.Buffer
			s := NewStream(&buf, Options{Mode: mode})
			require.NoError(t, s.WriteTemplates(ts))
			require.NoError(t, s.WriteTemplates(ts[1:]))
			require.NoError(t, s.Close())
			assert.Equal(t, 1, strings.Count(buf.String(), "t2"))
		})
	}
}

func TestRenderValidationPlain(t *testing.T) {
	var buf bytes.Buffer
	res := api.ValidationResult{IsValid: false, Errors: []string{"template name is required"}, Warnings: []string{"page 1: exceeds right margin"}}
	require.NoError(t, RenderValidation(&buf, res, Options{}))
	assert.Equal(t, "invalid\t1 errors\t1 warnings\nerror\ttemplate name is required\nwarning\tpage 1: exceeds right margin\n", buf.String())
}

func TestRenderTemplatePretty(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, RenderTemplate(&buf, sample()[0], Options{Mode: ModePretty}))
	assert.Contains(t, buf.String(), "Invoice")
}
