package api

import (
	"strconv"
	"strings"
	"time"
)

// NewTemplate returns an unpersisted draft with a single default page.
func NewTemplate(name string) *Template {
	if strings.TrimSpace(name) == "" {
		name = DefaultTemplateName
	}
	gs := DefaultGlobalStyles()
	now := time.Now().UTC()
	return &Template{
		ID:           NewDraftID(),
		Name:         name,
		Category:     DefaultCategory,
		Tags:         []string{},
		Pages:        []Page{NewPage(1, nil)},
		GlobalStyles: &gs,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
}

// NewPage returns a page with a fresh id and an auto-generated name. A nil
// settings falls back to the defaults.
func NewPage(number int, settings *PageSettings) Page {
	ps := DefaultPageSettings()
	if settings != nil {
		ps = *settings
		if settings.CustomSize != nil {
			cs := *settings.CustomSize
			ps.CustomSize = &cs
		}
	}
	return Page{
		ID:           NewID(),
		Name:         AutoPageName(number),
		PageNumber:   number,
		Elements:     []Element{},
		PageSettings: &ps,
	}
}

// NewElement returns a visible element of type t with its empty content variant.
func NewElement(t ElementType, pos Position, size Size) Element {
	return Element{
		ID:       NewID(),
		Type:     t,
		Position: pos,
		Size:     size,
		ZIndex:   1,
		Visible:  true,
		Content:  NewContent(t),
	}
}

func AutoPageName(n int) string {
	return AutoPageNamePrefix + strconv.Itoa(n)
}

// IsAutoPageName reports whether name is empty or of the form "Page <n>".
func IsAutoPageName(name string) bool {
	name = strings.TrimSpace(name)
	if name == "" {
		return true
	}
	rest, ok := strings.CutPrefix(name, AutoPageNamePrefix)
	if !ok || rest == "" {
		return false
	}
	_, err := strconv.Atoi(rest)
	return err == nil
}

// ElementByID finds an element on any page. It returns the element and the
// index of its page, or nil and -1.
func (t *Template) ElementByID(id string) (*Element, int) {
	for pi := range t.Pages {
		els := t.Pages[pi].Elements
		for ei := range els {
			if els[ei].ID == id {
				return &els[ei], pi
			}
		}
	}
	return nil, -1
}

// PageElements returns the elements of page index, or nil when out of range.
func (t *Template) PageElements(index int) []Element {
	if index < 0 || index >= len(t.Pages) {
		return nil
	}
	return t.Pages[index].Elements
}

// PageIndex returns the index of the page with id, or -1.
func (t *Template) PageIndex(id string) int {
	for i := range t.Pages {
		if t.Pages[i].ID == id {
			return i
		}
	}
	return -1
}

// ElementCount counts page elements, excluding header and footer regions.
func (t *Template) ElementCount() int {
	n := 0
	for _, p := range t.Pages {
		n += len(p.Elements)
	}
	return n
}

// IDs returns every page, element and region element id in document order.
func (t *Template) IDs() []string {
	var out []string
	for _, p := range t.Pages {
		out = append(out, p.ID)
		for _, e := range p.Elements {
			out = append(out, e.ID)
		}
		for _, r := range []*Region{p.Header, p.Footer} {
			if r == nil {
				continue
			}
			for _, e := range r.Elements {
				out = append(out, e.ID)
			}
		}
	}
	return out
}

// Renumber sets PageNumber to index+1 and refreshes auto-generated names.
func (t *Template) Renumber() {
	for i := range t.Pages {
		t.Pages[i].PageNumber = i + 1
		if IsAutoPageName(t.Pages[i].Name) {
			t.Pages[i].Name = AutoPageName(i + 1)
		}
	}
}

// Clone returns a deep copy of the template.
func (t *Template) Clone() *Template {
	if t == nil {
		return nil
	}
	out := *t
	if t.Tags != nil {
		out.Tags = append([]string{}, t.Tags...)
	}
	out.Elements = cloneElements(t.Elements)
	out.PageSettings = clonePageSettings(t.PageSettings)
	if t.GlobalStyles != nil {
		gs := *t.GlobalStyles
		out.GlobalStyles = &gs
	}
	if t.Pages != nil {
		out.Pages = make([]Page, len(t.Pages))
		for i := range t.Pages {
			out.Pages[i] = t.Pages[i].Clone()
		}
	}
	return &out
}

// Clone returns a deep copy of the page, keeping ids.
func (p Page) Clone() Page {
	out := p
	out.Elements = cloneElements(p.Elements)
	out.PageSettings = clonePageSettings(p.PageSettings)
	if p.BackgroundImage != nil {
		bg := *p.BackgroundImage
		out.BackgroundImage = &bg
	}
	out.Header = cloneRegion(p.Header)
	out.Footer = cloneRegion(p.Footer)
	return out
}

// Clone returns a deep copy of the element, keeping its id.
func (e Element) Clone() Element {
	out := e
	out.Content = CloneContent(e.Content)
	out.Styles = e.Styles.clone()
	return out
}

func (s ElementStyles) clone() ElementStyles {
	out := s
	if s.Padding != nil {
		p := *s.Padding
		out.Padding = &p
	}
	if s.Border != nil {
		b := *s.Border
		out.Border = &b
	}
	if s.Opacity != nil {
		o := *s.Opacity
		out.Opacity = &o
	}
	if s.Shadow != nil {
		sh := *s.Shadow
		out.Shadow = &sh
	}
	return out
}

func cloneElements(in []Element) []Element {
	if in == nil {
		return nil
	}
	out := make([]Element, len(in))
	for i := range in {
		out[i] = in[i].Clone()
	}
	return out
}

func clonePageSettings(ps *PageSettings) *PageSettings {
	if ps == nil {
		return nil
	}
	out := *ps
	if ps.CustomSize != nil {
		cs := *ps.CustomSize
		out.CustomSize = &cs
	}
	return &out
}

func cloneRegion(r *Region) *Region {
	if r == nil {
		return nil
	}
	out := *r
	out.Elements = cloneElements(r.Elements)
	return &out
}
