// Package validate checks templates for structural problems and repairs them
// into a canonical shape.
package validate

import (
	"fmt"
	"strings"

	"github.com/mithrel/folio/internal/geometry"
	"github.com/mithrel/folio/pkg/api"
)

type Options struct {
	RequireName        bool
	RequireElements    bool
	RequireID          bool
	CheckElementBounds bool
	// MaxElements caps the number of page elements; 0 disables the check.
	MaxElements int
}

func DefaultOptions() Options {
	return Options{
		RequireName:        true,
		CheckElementBounds: true,
		MaxElements:        1000,
	}
}

type report struct {
	errors   []string
	warnings []string
}

func (r *report) errorf(format string, args ...any) {
	r.errors = append(r.errors, fmt.Sprintf(format, args...))
}

func (r *report) warnf(format string, args ...any) {
	r.warnings = append(r.warnings, fmt.Sprintf(format, args...))
}

// Validate reports errors and warnings for t without modifying it.
func Validate(t *api.Template, opts Options) api.ValidationResult {
	r := &report{}
	if t == nil {
		r.errorf("template is required")
		return r.result()
	}
	if opts.RequireID && strings.TrimSpace(t.ID) == "" {
		r.errorf("template id is required")
	}
	if opts.RequireName && strings.TrimSpace(t.Name) == "" {
		r.errorf("template name is required")
	}
	if len(t.Pages) == 0 {
		r.errorf("template must have at least one page")
	}
	if opts.RequireElements && t.ElementCount() == 0 && len(t.Elements) == 0 {
		r.errorf("template must contain at least one element")
	}
	if opts.MaxElements > 0 && t.ElementCount() > opts.MaxElements {
		r.errorf("template has %d elements, the maximum is %d", t.ElementCount(), opts.MaxElements)
	}
	if t.GlobalStyles == nil {
		r.warnf("global styles missing, defaults will be used")
	}
	if t.PageSettings != nil {
		checkSettings(r, "template", *t.PageSettings)
	}

	seen := map[string]string{}
	claim := func(id, where string) {
		if id == "" {
			return
		}
		if prev, ok := seen[id]; ok {
			r.errorf("%s: duplicate id %q (also used by %s)", where, id, prev)
			return
		}
		seen[id] = where
	}

	for i, p := range t.Pages {
		where := fmt.Sprintf("page %d", i+1)
		if strings.TrimSpace(p.ID) == "" {
			r.errorf("%s: missing id", where)
		}
		claim(p.ID, where)
		if p.PageNumber != i+1 {
			r.warnf("%s: page number is %d", where, p.PageNumber)
		}

		ps := p.PageSettings
		if ps == nil {
			ps = t.PageSettings
		}
		if ps == nil {
			r.warnf("%s: page settings missing, defaults will be used", where)
			def := api.DefaultPageSettings()
			ps = &def
		} else if p.PageSettings != nil {
			checkSettings(r, where, *ps)
		}
		var bounds *geometry.Bounds
		if opts.CheckElementBounds && settingsUsable(*ps) {
			b := geometry.BoundsFor(*ps)
			bounds = &b
		}

		for j, el := range p.Elements {
			ew := elementLabel(where, j, el)
			claim(el.ID, ew)
			checkElement(r, ew, el, bounds)
		}
		for _, reg := range []struct {
			name string
			r    *api.Region
		}{{"header", p.Header}, {"footer", p.Footer}} {
			if reg.r == nil {
				continue
			}
			rw := where + " " + reg.name
			if reg.r.Height < 0 || reg.r.Height > api.MaxRegionHeight {
				r.errorf("%s: height must be between 0 and %d", rw, api.MaxRegionHeight)
			}
			for j, el := range reg.r.Elements {
				ew := elementLabel(rw, j, el)
				claim(el.ID, ew)
				checkElement(r, ew, el, nil)
			}
		}
	}
	return r.result()
}

func (r *report) result() api.ValidationResult {
	return api.ValidationResult{
		IsValid:  len(r.errors) == 0,
		Errors:   append([]string{}, r.errors...),
		Warnings: append([]string{}, r.warnings...),
	}
}

func elementLabel(where string, i int, el api.Element) string {
	if el.ID == "" {
		return fmt.Sprintf("%s: element #%d", where, i+1)
	}
	return fmt.Sprintf("%s: element %s", where, el.ID)
}

func checkElement(r *report, where string, el api.Element, b *geometry.Bounds) {
	if strings.TrimSpace(el.ID) == "" {
		r.errorf("%s: missing id", where)
	}
	if !el.Type.IsValid() {
		r.errorf("%s: invalid type %q", where, el.Type)
		return
	}
	if el.Position.X < 0 || el.Position.Y < 0 {
		r.errorf("%s: invalid position (must be non-negative)", where)
	}
	if el.Size.Width <= 0 || el.Size.Height <= 0 {
		r.errorf("%s: invalid size (must be greater than zero)", where)
	}
	if el.Content != nil && el.Content.Kind() != el.Type {
		r.errorf("%s: content is %s, expected %s", where, el.Content.Kind(), el.Type)
		return
	}

	switch c := el.Content.(type) {
	case *api.TextContent:
		for _, msg := range CheckVariables(c.Text) {
			r.errorf("%s: %s", where, msg)
		}
	case *api.HeadingContent:
		for _, msg := range CheckVariables(c.Text) {
			r.errorf("%s: %s", where, msg)
		}
	case *api.ImageContent:
		if strings.TrimSpace(c.Src) == "" {
			r.errorf("%s: image source is required", where)
		}
	case nil:
		switch el.Type {
		case api.ElementText, api.ElementHeading:
			r.errorf("%s: text content is required", where)
		case api.ElementImage:
			r.errorf("%s: image source is required", where)
		}
	}

	if b == nil || el.Size.Width <= 0 || el.Size.Height <= 0 {
		return
	}
	if el.Position.X < b.MinX {
		r.warnf("%s: exceeds left margin", where)
	}
	if el.Position.Y < b.MinY {
		r.warnf("%s: exceeds top margin", where)
	}
	if el.Position.X+el.Size.Width > b.MaxX {
		r.warnf("%s: exceeds right margin", where)
	}
	if el.Position.Y+el.Size.Height > b.MaxY {
		r.warnf("%s: exceeds bottom margin", where)
	}
}

func checkSettings(r *report, where string, ps api.PageSettings) {
	if ps.Size == "" {
		r.errorf("%s: page size is required", where)
	} else if !ps.Size.IsValid() {
		r.errorf("%s: invalid page size %q", where, ps.Size)
	}
	if ps.Orientation == "" {
		r.errorf("%s: page orientation is required", where)
	} else if !ps.Orientation.IsValid() {
		r.errorf("%s: invalid orientation %q", where, ps.Orientation)
	}
	m := ps.Margins
	if m.Top < 0 || m.Right < 0 || m.Bottom < 0 || m.Left < 0 {
		r.errorf("%s: margins must be non-negative", where)
	}
	if ps.Size == api.SizeCustom {
		if ps.CustomSize == nil {
			r.errorf("%s: custom page size requires customSize", where)
		} else if ps.CustomSize.Width <= 0 || ps.CustomSize.Height <= 0 {
			r.errorf("%s: customSize must be greater than zero", where)
		}
	}
}

func settingsUsable(ps api.PageSettings) bool {
	if !ps.Size.IsValid() || !ps.Orientation.IsValid() {
		return false
	}
	if ps.Size == api.SizeCustom && (ps.CustomSize == nil || ps.CustomSize.Width <= 0 || ps.CustomSize.Height <= 0) {
		return false
	}
	return true
}
