package validate

import (
	"strconv"
	"strings"

	"github.com/mithrel/folio/internal/geometry"
	"github.com/mithrel/folio/pkg/api"
)

// Sanitize returns a repaired copy of t. It never fails and never modifies
// its input, and Sanitize(Sanitize(t)) equals Sanitize(t). Missing or
// duplicate ids are derived from the template id and the element's position
// in the document, so repeated runs produce the same ids.
func Sanitize(t *api.Template) *api.Template {
	if t == nil {
		t = &api.Template{}
	}
	c := t.Clone()

	if strings.TrimSpace(c.Name) == "" {
		c.Name = api.DefaultTemplateName
	}
	if strings.TrimSpace(c.Category) == "" {
		c.Category = api.DefaultCategory
	}
	if c.Tags == nil {
		c.Tags = []string{}
	}
	if c.ID == "" {
		c.ID = api.DraftIDPrefix + api.HashString("template", c.Name, c.CreatedAt.String())[:32]
	}

	gs := api.DefaultGlobalStyles()
	if c.GlobalStyles != nil {
		fillGlobalStyles(c.GlobalStyles, gs)
	} else {
		c.GlobalStyles = &gs
	}
	if c.PageSettings == nil {
		ps := api.DefaultPageSettings()
		c.PageSettings = &ps
	} else {
		fillPageSettings(c.PageSettings)
	}

	Distribute(c)
	if len(c.Pages) == 0 {
		c.Pages = []api.Page{{}}
	}

	seen := map[string]bool{}
	unique := func(id string, parts ...string) string {
		if id == "" || seen[id] {
			id = api.HashString(append([]string{c.ID}, parts...)...)[:32]
		}
		seen[id] = true
		return id
	}

	for i := range c.Pages {
		p := &c.Pages[i]
		pi := strconv.Itoa(i)
		p.ID = unique(p.ID, "page", pi)
		if p.PageSettings == nil {
			ps := *c.PageSettings
			if ps.CustomSize != nil {
				cs := *ps.CustomSize
				ps.CustomSize = &cs
			}
			p.PageSettings = &ps
		} else {
			fillPageSettings(p.PageSettings)
		}
		if p.Elements == nil {
			p.Elements = []api.Element{}
		}
		for j := range p.Elements {
			el := &p.Elements[j]
			el.ID = unique(el.ID, "element", pi, strconv.Itoa(j))
			sanitizeElement(el)
		}
		for _, r := range []struct {
			name   string
			region *api.Region
		}{{"header", p.Header}, {"footer", p.Footer}} {
			if r.region == nil {
				continue
			}
			r.region.Height = min(max(r.region.Height, 0), api.MaxRegionHeight)
			if r.region.Elements == nil {
				r.region.Elements = []api.Element{}
			}
			for j := range r.region.Elements {
				el := &r.region.Elements[j]
				el.ID = unique(el.ID, r.name, pi, strconv.Itoa(j))
				sanitizeElement(el)
			}
		}
	}
	c.Renumber()
	return c
}

func sanitizeElement(el *api.Element) {
	el.PageID = ""
	el.Position.X = max(el.Position.X, 0)
	el.Position.Y = max(el.Position.Y, 0)
	if el.Size.Width <= 0 {
		el.Size.Width = api.DefaultElementSize.Width
	}
	if el.Size.Height <= 0 {
		el.Size.Height = api.DefaultElementSize.Height
	}
	if !el.Type.IsValid() {
		return
	}
	if el.Content == nil || el.Content.Kind() != el.Type {
		el.Content = api.NewContent(el.Type)
	}
	switch c := el.Content.(type) {
	case *api.TableContent:
		fillTable(c)
	case *api.ChartContent:
		fillChart(c)
	}
}

func fillGlobalStyles(gs *api.GlobalStyles, def api.GlobalStyles) {
	if gs.FontFamily == "" {
		gs.FontFamily = def.FontFamily
	}
	if gs.FontSize <= 0 {
		gs.FontSize = def.FontSize
	}
	if gs.Color == "" {
		gs.Color = def.Color
	}
	if gs.BackgroundColor == "" {
		gs.BackgroundColor = def.BackgroundColor
	}
	if gs.LineHeight <= 0 {
		gs.LineHeight = def.LineHeight
	}
}

func fillPageSettings(ps *api.PageSettings) {
	def := api.DefaultPageSettings()
	if !ps.Size.IsValid() {
		ps.Size = def.Size
	}
	if !ps.Orientation.IsValid() {
		ps.Orientation = def.Orientation
	}
	if ps.BackgroundColor == "" {
		ps.BackgroundColor = def.BackgroundColor
	}
	ps.Margins.Top = max(ps.Margins.Top, 0)
	ps.Margins.Right = max(ps.Margins.Right, 0)
	ps.Margins.Bottom = max(ps.Margins.Bottom, 0)
	ps.Margins.Left = max(ps.Margins.Left, 0)
	if ps.Size == api.SizeCustom && (ps.CustomSize == nil || ps.CustomSize.Width <= 0 || ps.CustomSize.Height <= 0) {
		a4 := geometry.Dimensions(api.PageSettings{Size: api.SizeA4, Orientation: api.Portrait})
		ps.CustomSize = &a4
	}
}

func fillTable(c *api.TableContent) {
	def := api.DefaultTableContent()
	if c.DataSource == "" {
		c.DataSource = def.DataSource
	}
	if c.Columns == nil {
		c.Columns = def.Columns
	}
	if c.ShowHeader == nil {
		c.ShowHeader = def.ShowHeader
	}
	if c.HeaderStyle == nil {
		c.HeaderStyle = def.HeaderStyle
	}
	if c.RowStyle == nil {
		c.RowStyle = def.RowStyle
	}
	if c.BorderStyle == "" {
		c.BorderStyle = def.BorderStyle
	}
	if c.FontSize <= 0 {
		c.FontSize = def.FontSize
	}
	if c.FontFamily == "" {
		c.FontFamily = def.FontFamily
	}
	if c.MaxRows <= 0 {
		c.MaxRows = def.MaxRows
	}
}

func fillChart(c *api.ChartContent) {
	def := api.DefaultChartContent()
	if c.ChartType == "" {
		c.ChartType = def.ChartType
	}
	if c.DataSource == "" {
		c.DataSource = def.DataSource
	}
	if c.XAxis == "" {
		c.XAxis = def.XAxis
	}
	if c.YAxis == "" {
		c.YAxis = def.YAxis
	}
	if c.Width == "" {
		c.Width = def.Width
	}
	if c.Height == "" {
		c.Height = def.Height
	}
	if c.Colors == nil {
		c.Colors = def.Colors
	}
	if c.ShowLegend == nil {
		c.ShowLegend = def.ShowLegend
	}
	if c.ShowGrid == nil {
		c.ShowGrid = def.ShowGrid
	}
	if c.ShowLabels == nil {
		c.ShowLabels = def.ShowLabels
	}
	if c.LegendPosition == "" {
		c.LegendPosition = def.LegendPosition
	}
}
