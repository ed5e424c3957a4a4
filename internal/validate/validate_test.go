package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/folio/pkg/api"
)

func sampleTemplate() *api.Template {
	tpl := api.NewTemplate("Report")
	tpl.Pages[0].ID = "p1"
	tpl.Pages[0].Elements = []api.Element{
		{
			ID: "e1", Type: api.ElementText, Visible: true, ZIndex: 1,
			Position: api.Position{X: 30, Y: 30},
			Size:     api.Size{Width: 50, Height: 20},
			Content:  &api.TextContent{Text: "Temp {{sensor.temperature|formatTemperature}}"},
		},
		{
			ID: "e2", Type: api.ElementImage, Visible: true, ZIndex: 2,
			Position: api.Position{X: 30, Y: 60},
			Size:     api.Size{Width: 40, Height: 40},
			Content:  &api.ImageContent{Src: "https://example.com/logo.png"},
		},
	}
	return tpl
}

func TestValidateAcceptsWellFormedTemplate(t *testing.T) {
	res := Validate(sampleTemplate(), DefaultOptions())
	assert.True(t, res.IsValid, res.Errors)
	assert.Empty(t, res.Errors)
	assert.Empty(t, res.Warnings)
}

func TestValidateReportsErrors(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*api.Template)
		want   string
	}{
		{"name required", func(tpl *api.Template) { tpl.Name = "  " }, "template name is required"},
		{"pages required", func(tpl *api.Template) { tpl.Pages = nil }, "template must have at least one page"},
		{"invalid type", func(tpl *api.Template) { tpl.Pages[0].Elements[0].Type = "foo" }, `page 1: element e1: invalid type "foo"`},
		{"zero size", func(tpl *api.Template) { tpl.Pages[0].Elements[0].Size.Width = 0 }, "page 1: element e1: invalid size (must be greater than zero)"},
		{"negative position", func(tpl *api.Template) { tpl.Pages[0].Elements[1].Position.X = -4 }, "page 1: element e2: invalid position (must be non-negative)"},
		{"missing image source", func(tpl *api.Template) {
			tpl.Pages[0].Elements[1].Content = &api.ImageContent{}
		}, "page 1: element e2: image source is required"},
		{"bad variable", func(tpl *api.Template) {
			tpl.Pages[0].Elements[0].Content = &api.TextContent{Text: "{{open"}
		}, "page 1: element e1: unbalanced variable braces: 1 opened vs 0 closed"},
		{"duplicate id", func(tpl *api.Template) { tpl.Pages[0].Elements[1].ID = "e1" }, `page 1: element e1: duplicate id "e1" (also used by page 1: element e1)`},
		{"content mismatch", func(tpl *api.Template) {
			tpl.Pages[0].Elements[0].Content = &api.ImageContent{Src: "x"}
		}, "page 1: element e1: content is image, expected text"},
		{"negative margin", func(tpl *api.Template) { tpl.Pages[0].PageSettings.Margins.Top = -1 }, "page 1: margins must be non-negative"},
		{"custom needs size", func(tpl *api.Template) { tpl.Pages[0].PageSettings.Size = api.SizeCustom }, "page 1: custom page size requires customSize"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tpl := sampleTemplate()
			tt.mutate(tpl)
			res := Validate(tpl, DefaultOptions())
			assert.False(t, res.IsValid)
			assert.Contains(t, res.Errors, tt.want)
		})
	}
}

func TestValidateBoundsAreWarnings(t *testing.T) {
	tpl := sampleTemplate()
	tpl.Pages[0].Elements[0].Position = api.Position{X: 5, Y: 280}

	res := Validate(tpl, DefaultOptions())
	assert.True(t, res.IsValid)
	assert.ElementsMatch(t, []string{
		"page 1: element e1: exceeds left margin",
		"page 1: element e1: exceeds bottom margin",
	}, res.Warnings)

	opts := DefaultOptions()
	opts.CheckElementBounds = false
	assert.Empty(t, Validate(tpl, opts).Warnings)
}

func TestValidateOptions(t *testing.T) {
	tpl := sampleTemplate()
	tpl.Pages[0].Elements = nil

	opts := DefaultOptions()
	assert.True(t, Validate(tpl, opts).IsValid)

	opts.RequireElements = true
	assert.Contains(t, Validate(tpl, opts).Errors, "template must contain at least one element")

	opts = DefaultOptions()
	opts.MaxElements = 1
	assert.False(t, Validate(sampleTemplate(), opts).IsValid)

	opts = DefaultOptions()
	opts.RequireID = true
	tpl = sampleTemplate()
	tpl.ID = ""
	assert.Contains(t, Validate(tpl, opts).Errors, "template id is required")
}

func TestValidateMissingSettingsWarns(t *testing.T) {
	tpl := sampleTemplate()
	tpl.Pages[0].PageSettings = nil
	tpl.GlobalStyles = nil

	res := Validate(tpl, DefaultOptions())
	require.True(t, res.IsValid)
	assert.Contains(t, res.Warnings, "page 1: page settings missing, defaults will be used")
	assert.Contains(t, res.Warnings, "global styles missing, defaults will be used")
}

func TestValidateDoesNotMutate(t *testing.T) {
	tpl := sampleTemplate()
	tpl.Pages[0].Elements[0].Size.Width = -1
	before := tpl.Clone()
	Validate(tpl, DefaultOptions())
	assert.Equal(t, before, tpl)
}
