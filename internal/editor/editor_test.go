package editor

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/folio/internal/validate"
	"github.com/mithrel/folio/pkg/api"
)

func TestComposeParseRoundTrip(t *testing.T) {
	orig := api.NewTemplate("Invoice")
	orig.Tags = []string{"billing"}

	content, err := ComposeContent(orig)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(content), "# folio template\n"))

	got, res, err := ParseEdited(content)
	require.NoError(t, err)
	assert.True(t, res.IsValid, res.Errors)
	assert.Equal(t, validate.Sanitize(orig).Hash(), got.Hash())
}

func TestParseEditedReportsValidation(t *testing.T) {
	doc := `# header
{"name": "Poster", "pages": [], "elements": [
  {"id": "img", "type": "image", "position": {"x": 30, "y": 30}, "size": {"width": 20, "height": 20}}
]}`
	got, res, err := ParseEdited([]byte(doc))
	require.NoError(t, err)
	require.NotNil(t, got)
	require.Len(t, got.Pages, 1, "sanitize restores a page")
	assert.False(t, res.IsValid)
	assert.Contains(t, strings.Join(res.Errors, "\n"), "image source is required")
}

func TestParseEditedErrors(t *testing.T) {
	_, _, err := ParseEdited([]byte("# only comments\n\n"))
	assert.Error(t, err)

	_, _, err = ParseEdited([]byte("{not json"))
	assert.Error(t, err)
}

func TestCarryKeepsIdentity(t *testing.T) {
	orig := api.NewTemplate("A")
	orig.Version = 4
	orig.Persisted = true
	edited := api.NewTemplate("B")

	Carry(orig, edited)
	assert.Equal(t, orig.ID, edited.ID)
	assert.Equal(t, int64(4), edited.Version)
	assert.True(t, edited.Persisted)
	assert.Equal(t, "B", edited.Name)
}

func TestPathForID(t *testing.T) {
	t.Setenv("XDG_RUNTIME_DIR", "/tmp/xdg")
	p, err := PathForID("a/b c")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/tmp/xdg", "folio", "a-b-c.folio.json"), p)
}

func TestEditWithScriptedEditor(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("XDG_RUNTIME_DIR", dir)
	t.Setenv("VISUAL", "")
	t.Setenv("EDITOR", "sed -i.bak s/Invoice/Receipt/")

	orig := api.NewTemplate("Invoice")
	orig.Version = 3
	edited, res, changed, err := Edit(orig)
	require.NoError(t, err)
	require.True(t, changed)
	assert.True(t, res.IsValid)
	assert.Equal(t, "Receipt", edited.Name)
	assert.Equal(t, orig.ID, edited.ID)
	assert.Equal(t, int64(3), edited.Version)

	_, err = os.Stat(filepath.Join(dir, "folio", orig.ID+".folio.json"))
	assert.True(t, os.IsNotExist(err))
}
