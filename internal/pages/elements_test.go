package pages

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/folio/pkg/api"
)

func TestAddElementSnapsAndStacks(t *testing.T) {
	m := newManager(t, 1)

	first, err := m.AddElement(api.ElementText, api.Position{X: 47, Y: 62})
	require.NoError(t, err)
	second, err := m.AddElement(api.ElementTable, api.Position{X: 0, Y: 0})
	require.NoError(t, err)

	a, _ := m.Template().ElementByID(first)
	b, _ := m.Template().ElementByID(second)
	assert.Equal(t, api.Position{X: 50, Y: 60}, a.Position)
	assert.Equal(t, api.DefaultElementSize, a.Size)
	assert.Equal(t, 1, a.ZIndex)

	assert.Equal(t, api.Position{X: 20, Y: 20}, b.Position, "clamped inside the margins")
	assert.Equal(t, 2, b.ZIndex)
	table, ok := b.Content.(*api.TableContent)
	require.True(t, ok)
	assert.Equal(t, 50, table.MaxRows)

	_, err = m.AddElement("sticker", api.Position{})
	assert.ErrorIs(t, err, ErrInvalidType)
	assert.Len(t, m.CurrentElements(), 2)
}

func TestMoveElementClampsToPage(t *testing.T) {
	m := newManager(t, 1)
	id, err := m.AddElement(api.ElementImage, api.Position{X: 30, Y: 30})
	require.NoError(t, err)

	require.NoError(t, m.MoveElement(id, api.Position{X: 500, Y: 500}))
	el, _ := m.Template().ElementByID(id)
	assert.Equal(t, api.Position{X: 90, Y: 227}, el.Position)

	m.SetGrid(Grid{Enabled: false})
	require.NoError(t, m.MoveElement(id, api.Position{X: 33.5, Y: 41.25}))
	assert.Equal(t, api.Position{X: 33.5, Y: 41.25}, el.Position)

	m.SetGrid(Grid{Margins: true})
	require.NoError(t, m.MoveElement(id, api.Position{X: 23, Y: 100}))
	assert.Equal(t, api.Position{X: 20, Y: 100}, el.Position)

	assert.ErrorIs(t, m.MoveElement("nope", api.Position{}), ErrElementNotFound)
}

func TestResizeElementRespectsBounds(t *testing.T) {
	ps := api.PageSettings{
		Size:        api.SizeCustom,
		Orientation: api.Portrait,
		CustomSize:  &api.Size{Width: 40, Height: 100},
	}
	tpl := api.NewTemplate("bounds")
	tpl.Pages[0].PageSettings = &ps
	tpl.Pages[0].Elements = []api.Element{{
		ID:      "e1",
		Type:    api.ElementRectangle,
		Size:    api.Size{Width: 50, Height: 50},
		Visible: true,
		Content: api.NewContent(api.ElementRectangle),
	}}
	m := New(tpl)

	require.NoError(t, m.ResizeElement("e1", api.Size{Width: 100, Height: 50}))
	assert.Equal(t, api.Size{Width: 40, Height: 50}, tpl.Pages[0].Elements[0].Size)

	require.NoError(t, m.ResizeElement("e1", api.Size{Width: 0, Height: 0}))
	assert.Equal(t, api.Size{Width: 1, Height: 1}, tpl.Pages[0].Elements[0].Size)
}

func TestLockedElementsCannotMove(t *testing.T) {
	m := newManager(t, 1)
	id, err := m.AddElement(api.ElementSignature, api.Position{X: 40, Y: 40})
	require.NoError(t, err)
	require.NoError(t, m.SetLocked(id, true))

	assert.ErrorIs(t, m.MoveElement(id, api.Position{X: 100, Y: 100}), ErrElementLocked)
	assert.ErrorIs(t, m.ResizeElement(id, api.Size{Width: 10, Height: 10}), ErrElementLocked)

	require.NoError(t, m.SetLocked(id, false))
	assert.NoError(t, m.MoveElement(id, api.Position{X: 100, Y: 100}))
}

func TestZOrderAndDelete(t *testing.T) {
	m := newManager(t, 1)
	a, _ := m.AddElement(api.ElementCircle, api.Position{X: 20, Y: 20})
	b, _ := m.AddElement(api.ElementCircle, api.Position{X: 40, Y: 40})

	require.NoError(t, m.BringToFront(a))
	ea, _ := m.Template().ElementByID(a)
	assert.Equal(t, 3, ea.ZIndex)

	require.NoError(t, m.SendToBack(a))
	assert.Equal(t, 1, ea.ZIndex)

	require.NoError(t, m.SetVisible(b, false))
	eb, _ := m.Template().ElementByID(b)
	assert.False(t, eb.Visible)

	assert.True(t, m.DeleteElement(a))
	assert.False(t, m.DeleteElement(a))
	require.Len(t, m.CurrentElements(), 1)
	assert.Equal(t, b, m.CurrentElements()[0].ID)
}
