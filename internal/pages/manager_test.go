package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/folio/pkg/api"
)

func newManager(t *testing.T, n int) *Manager {
	t.Helper()
	tpl := api.NewTemplate("Doc")
	m := New(tpl)
	for i := 1; i < n; i++ {
		m.AddPage(-1, "")
	}
	m.First()
	require.Equal(t, n, m.Len())
	return m
}

func pageIDs(m *Manager) []string {
	var out []string
	for _, p := range m.Template().Pages {
		out = append(out, p.ID)
	}
	return out
}

func assertNumbered(t *testing.T, m *Manager) {
	t.Helper()
	for i, p := range m.Template().Pages {
		assert.Equal(t, i+1, p.PageNumber)
	}
}

func TestNewAddsPageToEmptyTemplate(t *testing.T) {
	m := New(&api.Template{Name: "x"})
	require.Equal(t, 1, m.Len())
	assert.Equal(t, "Page 1", m.CurrentPage().Name)
	assert.NotNil(t, m.CurrentPage().PageSettings)
}

func TestRemovePageRenumbers(t *testing.T) {
	m := newManager(t, 3)
	ids := pageIDs(m)

	require.True(t, m.RemovePage(1))
	require.Equal(t, 2, m.Len())
	assertNumbered(t, m)
	assert.Equal(t, ids[2], m.Template().Pages[1].ID)
	assert.Equal(t, 2, m.Template().Pages[1].PageNumber)
	assert.Equal(t, "Page 2", m.Template().Pages[1].Name)
}

func TestRemoveLastRemainingPageFails(t *testing.T) {
	m := newManager(t, 1)
	before := m.Template().Clone()

	assert.False(t, m.RemovePage(0))
	assert.Equal(t, before, m.Template())
	assert.False(t, newManager(t, 2).RemovePage(5))
}

func TestRemovePageCursor(t *testing.T) {
	m := newManager(t, 4)
	ids := pageIDs(m)

	m.Last()
	require.True(t, m.RemovePage(1))
	assert.Equal(t, 2, m.Current())
	assert.Equal(t, ids[3], m.CurrentPage().ID, "cursor stays on the same page")

	m.SetCurrent(1)
	require.True(t, m.RemovePage(0))
	assert.Equal(t, 0, m.Current())
	assert.Equal(t, ids[2], m.CurrentPage().ID)
}

func TestAddPageInsertsAndKeepsCustomNames(t *testing.T) {
	m := newManager(t, 3)
	require.True(t, m.UpdatePageName(2, "Appendix"))

	id := m.AddPage(0, "")
	assert.Equal(t, 1, m.Current())
	assert.Equal(t, id, m.CurrentPage().ID)
	assertNumbered(t, m)

	var names []string
	for _, p := range m.Template().Pages {
		names = append(names, p.Name)
	}
	assert.Equal(t, []string{"Page 1", "Page 2", "Page 3", "Appendix"}, names)

	named := m.AddPage(-1, "Back cover")
	assert.Equal(t, 4, m.Current())
	assert.Equal(t, named, m.Template().Pages[4].ID)
	assert.Equal(t, "Back cover", m.Template().Pages[4].Name)
}

func TestAddPageInheritsSettings(t *testing.T) {
	m := newManager(t, 1)
	ps := api.DefaultPageSettings()
	ps.Orientation = api.Landscape
	require.NoError(t, m.SetPageSettings(0, ps))

	m.AddPage(0, "")
	assert.Equal(t, api.Landscape, m.CurrentPage().PageSettings.Orientation)
	assert.NotSame(t, m.Template().Pages[0].PageSettings, m.CurrentPage().PageSettings)
}

func TestDuplicatePageClonesWithFreshIDs(t *testing.T) {
	m := newManager(t, 2)
	_, err := m.AddElement(api.ElementText, api.Position{X: 30, Y: 30})
	require.NoError(t, err)
	src := m.Template().Pages[0]

	id, ok := m.DuplicatePage(0)
	require.True(t, ok)
	require.Equal(t, 3, m.Len())
	assertNumbered(t, m)
	assert.Equal(t, 1, m.Current())

	cp := m.Template().Pages[1]
	assert.Equal(t, id, cp.ID)
	assert.Equal(t, "Page 1 (Copy)", cp.Name)
	require.Len(t, cp.Elements, 1)
	assert.NotEqual(t, src.Elements[0].ID, cp.Elements[0].ID)
	assert.Equal(t, src.Elements[0].Position, cp.Elements[0].Position)

	cp.Elements[0].Content.(*api.TextContent).Text = "changed"
	assert.Equal(t, "", m.Template().Pages[0].Elements[0].Content.(*api.TextContent).Text)

	_, ok = m.DuplicatePage(9)
	assert.False(t, ok)
}

func TestReorderPagesTracksCursor(t *testing.T) {
	m := newManager(t, 4)
	ids := pageIDs(m)

	m.SetCurrent(0)
	require.True(t, m.ReorderPages(0, 2))
	assert.Equal(t, []string{ids[1], ids[2], ids[0], ids[3]}, pageIDs(m))
	assert.Equal(t, 2, m.Current())
	assertNumbered(t, m)

	m.SetCurrent(1)
	require.True(t, m.ReorderPages(3, 0))
	assert.Equal(t, 2, m.Current())
	assert.Equal(t, ids[2], m.CurrentPage().ID)

	assert.False(t, m.ReorderPages(0, 7))
}

func TestNavigation(t *testing.T) {
	m := newManager(t, 3)
	m.Prev()
	assert.Equal(t, 0, m.Current())
	m.Next()
	m.Next()
	m.Next()
	assert.Equal(t, 2, m.Current())
	m.First()
	assert.Equal(t, 0, m.Current())
	m.Last()
	assert.Equal(t, 2, m.Current())
	assert.False(t, m.SetCurrent(-1))
}

func TestUpdatePageNameEmptyRestoresAutoName(t *testing.T) {
	m := newManager(t, 2)
	require.True(t, m.UpdatePageName(1, "Summary"))
	assert.Equal(t, "Summary", m.Template().Pages[1].Name)
	require.True(t, m.UpdatePageName(1, ""))
	assert.Equal(t, "Page 2", m.Template().Pages[1].Name)
	assert.False(t, m.UpdatePageName(4, "x"))
}

func TestMoveElementToPage(t *testing.T) {
	m := newManager(t, 2)
	id, err := m.AddElement(api.ElementRectangle, api.Position{X: 150, Y: 200})
	require.NoError(t, err)

	small := api.DefaultPageSettings()
	small.Size = api.SizeCustom
	small.CustomSize = &api.Size{Width: 120, Height: 120}
	small.Margins = api.Spacing{}
	require.NoError(t, m.SetPageSettings(1, small))

	require.True(t, m.MoveElementToPage(id, 0, 1))
	assert.Empty(t, m.Template().Pages[0].Elements)
	require.Len(t, m.Template().Pages[1].Elements, 1)
	el := m.Template().Pages[1].Elements[0]
	assert.Equal(t, api.Position{X: 20, Y: 70}, el.Position)

	assert.False(t, m.MoveElementToPage("missing", 1, 0))
	assert.False(t, m.MoveElementToPage(id, 1, 3))
	assert.False(t, m.MoveElementToPage("missing", 1, 1), "same page still needs the element")
	assert.False(t, m.MoveElementToPage(id, 0, 0), "element lives on page 2")
	assert.True(t, m.MoveElementToPage(id, 1, 1))

	require.NoError(t, m.SetLocked(id, true))
	assert.False(t, m.MoveElementToPage(id, 1, 0))
	assert.Len(t, m.Template().Pages[1].Elements, 1, "locked element stays put")
}

func TestSetPageSettingsRejectsInvalid(t *testing.T) {
	m := newManager(t, 1)
	ps := api.DefaultPageSettings()
	ps.Margins.Left = -1
	assert.ErrorIs(t, m.SetPageSettings(0, ps), ErrInvalidSettings)

	ps = api.DefaultPageSettings()
	ps.Size = api.SizeCustom
	assert.ErrorIs(t, m.SetPageSettings(0, ps), ErrInvalidSettings)
	assert.ErrorIs(t, m.SetPageSettings(3, api.DefaultPageSettings()), ErrInvalidIndex)
}

func TestSetRegion(t *testing.T) {
	m := newManager(t, 1)
	require.NoError(t, m.SetRegion(0, Header, &api.Region{Height: 25, ReplicateAcrossPages: true}))
	assert.Equal(t, 25.0, m.CurrentPage().Header.Height)
	assert.ErrorIs(t, m.SetRegion(0, Footer, &api.Region{Height: 201}), ErrRegionHeight)
	require.NoError(t, m.SetRegion(0, Header, nil))
	assert.Nil(t, m.CurrentPage().Header)
}
