package validate

import "github.com/mithrel/folio/pkg/api"

// Distribute moves the legacy flat element list into the pages. A page takes
// the flat elements whose pageId matches it, or keeps its own elements when
// none match. Flat elements that belong to no page and are not already on a
// page land on the first page. The flat list is cleared. Distribute modifies
// t in place.
func Distribute(t *api.Template) {
	if len(t.Elements) == 0 {
		t.Elements = nil
		return
	}
	if len(t.Pages) == 0 {
		els := make([]api.Element, 0, len(t.Elements))
		for _, el := range t.Elements {
			el.PageID = ""
			els = append(els, el)
		}
		page := api.Page{Name: api.AutoPageName(1), PageNumber: 1, Elements: els}
		if t.PageSettings != nil {
			ps := *t.PageSettings
			page.PageSettings = &ps
		}
		t.Pages = []api.Page{page}
		t.Elements = nil
		return
	}

	byPage := map[string][]api.Element{}
	for _, el := range t.Elements {
		if el.PageID != "" && t.PageIndex(el.PageID) >= 0 {
			byPage[el.PageID] = append(byPage[el.PageID], el)
		}
	}
	for i := range t.Pages {
		p := &t.Pages[i]
		matched, ok := byPage[p.ID]
		if !ok {
			continue
		}
		for j := range matched {
			matched[j].PageID = ""
		}
		p.Elements = matched
	}

	placed := map[string]bool{}
	for _, p := range t.Pages {
		for _, el := range p.Elements {
			placed[el.ID] = true
		}
	}
	for _, el := range t.Elements {
		if el.PageID != "" && t.PageIndex(el.PageID) >= 0 {
			continue
		}
		if el.ID != "" && placed[el.ID] {
			continue
		}
		el.PageID = ""
		t.Pages[0].Elements = append(t.Pages[0].Elements, el)
	}
	t.Elements = nil
}

// Flatten rebuilds the legacy flat element list from the pages, stamping
// each copy with the id of its page. Pages are left untouched.
func Flatten(t *api.Template) {
	var flat []api.Element
	for _, p := range t.Pages {
		for _, el := range p.Elements {
			cp := el.Clone()
			cp.PageID = p.ID
			flat = append(flat, cp)
		}
	}
	t.Elements = flat
}
