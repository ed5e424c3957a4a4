package pages

import (
	"github.com/mithrel/folio/internal/geometry"
	"github.com/mithrel/folio/pkg/api"
)

// AddElement places a new element of type t on the current page. The
// position is snapped and clamped; the element goes on top of the stack.
func (m *Manager) AddElement(t api.ElementType, p api.Position) (string, error) {
	if !t.IsValid() {
		return "", ErrInvalidType
	}
	page := m.CurrentPage()
	if page == nil {
		return "", ErrInvalidIndex
	}
	b := m.bounds(m.current)
	size := geometry.ClampSize(api.Position{X: b.MinX, Y: b.MinY}, api.DefaultElementSize, b)
	el := api.NewElement(t, m.place(p, size, b), size)
	switch t {
	case api.ElementTable:
		c := api.DefaultTableContent()
		el.Content = &c
	case api.ElementChart:
		c := api.DefaultChartContent()
		el.Content = &c
	}
	el.ZIndex = topZ(page.Elements) + 1
	page.Elements = append(page.Elements, el)
	return el.ID, nil
}

// MoveElement snaps and clamps the requested position.
func (m *Manager) MoveElement(id string, p api.Position) error {
	el, pi := m.tpl.ElementByID(id)
	if el == nil {
		return ErrElementNotFound
	}
	if el.Locked {
		return ErrElementLocked
	}
	el.Position = m.place(p, el.Size, m.bounds(pi))
	return nil
}

// ResizeElement clamps the requested size so the element stays on the page.
func (m *Manager) ResizeElement(id string, s api.Size) error {
	el, pi := m.tpl.ElementByID(id)
	if el == nil {
		return ErrElementNotFound
	}
	if el.Locked {
		return ErrElementLocked
	}
	el.Size = geometry.ClampSize(el.Position, s, m.bounds(pi))
	return nil
}

func (m *Manager) DeleteElement(id string) bool {
	_, pi := m.tpl.ElementByID(id)
	if pi < 0 {
		return false
	}
	page := &m.tpl.Pages[pi]
	i := indexOf(page.Elements, id)
	page.Elements = append(page.Elements[:i], page.Elements[i+1:]...)
	return true
}

func (m *Manager) BringToFront(id string) error {
	el, pi := m.tpl.ElementByID(id)
	if el == nil {
		return ErrElementNotFound
	}
	el.ZIndex = topZ(m.tpl.Pages[pi].Elements) + 1
	return nil
}

func (m *Manager) SendToBack(id string) error {
	el, pi := m.tpl.ElementByID(id)
	if el == nil {
		return ErrElementNotFound
	}
	low := el.ZIndex
	for _, e := range m.tpl.Pages[pi].Elements {
		low = min(low, e.ZIndex)
	}
	el.ZIndex = low - 1
	return nil
}

func (m *Manager) SetVisible(id string, visible bool) error {
	el, _ := m.tpl.ElementByID(id)
	if el == nil {
		return ErrElementNotFound
	}
	el.Visible = visible
	return nil
}

func (m *Manager) SetLocked(id string, locked bool) error {
	el, _ := m.tpl.ElementByID(id)
	if el == nil {
		return ErrElementNotFound
	}
	el.Locked = locked
	return nil
}

func (m *Manager) place(p api.Position, s api.Size, b geometry.Bounds) api.Position {
	p = geometry.Snap(p, m.grid.Size, m.grid.Tolerance, m.grid.Enabled)
	if m.grid.Margins {
		p = geometry.SnapToMargins(p, s, b, geometry.MarginSnapTolerance)
	}
	return geometry.ClampToPageBounds(p, s, b)
}

func topZ(els []api.Element) int {
	z := 0
	for _, e := range els {
		z = max(z, e.ZIndex)
	}
	return z
}
