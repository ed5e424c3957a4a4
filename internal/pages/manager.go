// Package pages owns every structural change to a template: page lifecycle,
// element placement and the current-page cursor.
package pages

import (
	"errors"

	"github.com/mithrel/folio/internal/geometry"
	"github.com/mithrel/folio/pkg/api"
)

var (
	ErrInvalidIndex    = errors.New("page index out of range")
	ErrElementNotFound = errors.New("element not found")
	ErrElementLocked   = errors.New("element is locked")
	ErrInvalidType     = errors.New("unknown element type")
	ErrRegionHeight    = errors.New("region height must be between 0 and 200")
	ErrInvalidSettings = errors.New("invalid page settings")
)

// Grid configures snapping for element moves.
type Grid struct {
	Size      float64
	Tolerance float64
	Enabled   bool
	// Margins also pulls element edges onto nearby margin lines.
	Margins bool
}

func DefaultGrid() Grid {
	return Grid{Size: geometry.DefaultGridSize, Tolerance: geometry.DefaultSnapTolerance, Enabled: true}
}

// Manager mutates a template in place. It is not safe for concurrent use.
type Manager struct {
	tpl     *api.Template
	current int
	grid    Grid
}

type Option func(*Manager)

func WithGrid(g Grid) Option {
	return func(m *Manager) { m.grid = g }
}

// New wraps t. A template without pages gets a default one so the manager
// always has a current page.
func New(t *api.Template, opts ...Option) *Manager {
	m := &Manager{tpl: t, grid: DefaultGrid()}
	for _, o := range opts {
		o(m)
	}
	if len(t.Pages) == 0 {
		t.Pages = []api.Page{api.NewPage(1, t.PageSettings)}
	}
	t.Renumber()
	return m
}

func (m *Manager) Template() *api.Template { return m.tpl }
func (m *Manager) Grid() Grid              { return m.grid }
func (m *Manager) SetGrid(g Grid)          { m.grid = g }
func (m *Manager) Len() int                { return len(m.tpl.Pages) }
func (m *Manager) Current() int            { return m.current }

func (m *Manager) valid(i int) bool { return i >= 0 && i < len(m.tpl.Pages) }

// SetCurrent moves the cursor; out of range indexes are ignored.
func (m *Manager) SetCurrent(i int) bool {
	if !m.valid(i) {
		return false
	}
	m.current = i
	return true
}

func (m *Manager) Next()  { m.current = min(m.current+1, len(m.tpl.Pages)-1) }
func (m *Manager) Prev()  { m.current = max(m.current-1, 0) }
func (m *Manager) First() { m.current = 0 }
func (m *Manager) Last()  { m.current = len(m.tpl.Pages) - 1 }

func (m *Manager) CurrentPage() *api.Page {
	if !m.valid(m.current) {
		return nil
	}
	return &m.tpl.Pages[m.current]
}

func (m *Manager) CurrentElements() []api.Element {
	return m.tpl.PageElements(m.current)
}

// AddPage inserts a page after afterIndex (append when afterIndex < 0 or
// past the end) and makes it current. The new page inherits the settings
// of the page it follows.
func (m *Manager) AddPage(afterIndex int, name string) string {
	at := len(m.tpl.Pages)
	if afterIndex >= 0 && afterIndex < len(m.tpl.Pages) {
		at = afterIndex + 1
	}
	var inherit *api.PageSettings
	if ref := at - 1; ref >= 0 {
		inherit = m.tpl.Pages[ref].PageSettings
	}
	p := api.NewPage(at+1, inherit)
	if name != "" {
		p.Name = name
	}
	m.tpl.Pages = append(m.tpl.Pages, api.Page{})
	copy(m.tpl.Pages[at+1:], m.tpl.Pages[at:])
	m.tpl.Pages[at] = p
	m.tpl.Renumber()
	m.current = at
	return p.ID
}

// RemovePage deletes the page at index. The last remaining page can never
// be removed.
func (m *Manager) RemovePage(index int) bool {
	n := len(m.tpl.Pages)
	if n <= 1 || !m.valid(index) {
		return false
	}
	m.tpl.Pages = append(m.tpl.Pages[:index], m.tpl.Pages[index+1:]...)
	m.tpl.Renumber()
	switch {
	case m.current >= n-1:
		m.current = max(0, n-2)
	case m.current > index:
		m.current--
	}
	return true
}

// DuplicatePage inserts a deep copy of the page at index right after it.
// Every element of the copy gets a fresh id.
func (m *Manager) DuplicatePage(index int) (string, bool) {
	if !m.valid(index) {
		return "", false
	}
	cp := m.tpl.Pages[index].Clone()
	cp.ID = api.NewID()
	cp.Name = displayName(m.tpl.Pages[index]) + " (Copy)"
	reID(cp.Elements)
	for _, r := range []*api.Region{cp.Header, cp.Footer} {
		if r != nil {
			reID(r.Elements)
		}
	}
	at := index + 1
	m.tpl.Pages = append(m.tpl.Pages, api.Page{})
	copy(m.tpl.Pages[at+1:], m.tpl.Pages[at:])
	m.tpl.Pages[at] = cp
	m.tpl.Renumber()
	m.current = at
	return cp.ID, true
}

// ReorderPages moves the page at from to position to. The cursor follows
// the page it was on.
func (m *Manager) ReorderPages(from, to int) bool {
	if !m.valid(from) || !m.valid(to) {
		return false
	}
	if from == to {
		return true
	}
	p := m.tpl.Pages[from]
	pages := append(m.tpl.Pages[:from:from], m.tpl.Pages[from+1:]...)
	pages = append(pages[:to], append([]api.Page{p}, pages[to:]...)...)
	m.tpl.Pages = pages
	m.tpl.Renumber()

	switch c := m.current; {
	case c == from:
		m.current = to
	case c > from && c <= to:
		m.current--
	case c < from && c >= to:
		m.current++
	}
	return true
}

// UpdatePageName renames a page. An empty name restores the generated one.
func (m *Manager) UpdatePageName(index int, name string) bool {
	if !m.valid(index) {
		return false
	}
	m.tpl.Pages[index].Name = name
	m.tpl.Renumber()
	return true
}

// MoveElementToPage re-homes an element, clamping it into the target page.
// It fails when the element is not on page from or is locked.
func (m *Manager) MoveElementToPage(elementID string, from, to int) bool {
	if !m.valid(from) || !m.valid(to) {
		return false
	}
	src := &m.tpl.Pages[from]
	idx := indexOf(src.Elements, elementID)
	if idx < 0 || src.Elements[idx].Locked {
		return false
	}
	if from == to {
		return true
	}
	el := src.Elements[idx]
	src.Elements = append(src.Elements[:idx], src.Elements[idx+1:]...)

	dst := &m.tpl.Pages[to]
	b := m.bounds(to)
	el.Size = geometry.ClampSize(api.Position{X: b.MinX, Y: b.MinY}, el.Size, b)
	el.Position = geometry.ClampToPageBounds(el.Position, el.Size, b)
	el.PageID = ""
	dst.Elements = append(dst.Elements, el)
	return true
}

// SetPageSettings replaces a page's settings and pulls its elements back
// inside the new margins.
func (m *Manager) SetPageSettings(index int, ps api.PageSettings) error {
	if !m.valid(index) {
		return ErrInvalidIndex
	}
	mg := ps.Margins
	if mg.Top < 0 || mg.Right < 0 || mg.Bottom < 0 || mg.Left < 0 {
		return ErrInvalidSettings
	}
	if !ps.Size.IsValid() || !ps.Orientation.IsValid() {
		return ErrInvalidSettings
	}
	if ps.Size == api.SizeCustom && (ps.CustomSize == nil || ps.CustomSize.Width <= 0 || ps.CustomSize.Height <= 0) {
		return ErrInvalidSettings
	}
	page := &m.tpl.Pages[index]
	page.PageSettings = &ps
	b := geometry.BoundsFor(ps)
	for i := range page.Elements {
		el := &page.Elements[i]
		el.Position = geometry.ClampToPageBounds(el.Position, el.Size, b)
		el.Size = geometry.ClampSize(el.Position, el.Size, b)
	}
	return nil
}

func (m *Manager) SetBackground(index int, bg *api.BackgroundImage) error {
	if !m.valid(index) {
		return ErrInvalidIndex
	}
	m.tpl.Pages[index].BackgroundImage = bg
	return nil
}

type RegionKind int

const (
	Header RegionKind = iota
	Footer
)

// SetRegion installs or clears (nil) a header or footer.
func (m *Manager) SetRegion(index int, kind RegionKind, r *api.Region) error {
	if !m.valid(index) {
		return ErrInvalidIndex
	}
	if r != nil && (r.Height < 0 || r.Height > api.MaxRegionHeight) {
		return ErrRegionHeight
	}
	if kind == Header {
		m.tpl.Pages[index].Header = r
	} else {
		m.tpl.Pages[index].Footer = r
	}
	return nil
}

func (m *Manager) bounds(index int) geometry.Bounds {
	ps := api.DefaultPageSettings()
	if p := m.tpl.Pages[index].PageSettings; p != nil {
		ps = *p
	}
	return geometry.BoundsFor(ps)
}

func displayName(p api.Page) string {
	if p.Name == "" {
		return api.AutoPageName(p.PageNumber)
	}
	return p.Name
}

func reID(els []api.Element) {
	for i := range els {
		els[i].ID = api.NewID()
	}
}

func indexOf(els []api.Element, id string) int {
	for i := range els {
		if els[i].ID == id {
			return i
		}
	}
	return -1
}
