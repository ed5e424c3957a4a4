package sync

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/mithrel/folio/internal/errs"
	"github.com/mithrel/folio/internal/validate"
	"github.com/mithrel/folio/pkg/api"
)

const (
	DefaultExportQuality   = 90
	DefaultExportDPI       = 300
	minQuality, maxQuality = 1, 100
	minDPI, maxDPI         = 72, 600
)

// clampOptions fills unset quality and dpi with defaults and clamps both
// into range.
func clampOptions(o api.ExportOptions) api.ExportOptions {
	if o.Quality == 0 {
		o.Quality = DefaultExportQuality
	}
	if o.DPI == 0 {
		o.DPI = DefaultExportDPI
	}
	o.Quality = min(max(o.Quality, minQuality), maxQuality)
	o.DPI = min(max(o.DPI, minDPI), maxDPI)
	if o.IncludeMetadata == nil {
		o.IncludeMetadata = api.Bool(true)
	}
	return o
}

// Export produces a downloadable artifact for t. JSON exports are built
// locally as a data URL; every other format is rendered by the store.
func (c *Client) Export(ctx context.Context, t *api.Template, opts api.ExportOptions) (api.ExportResult, error) {
	if t == nil || strings.TrimSpace(t.Name) == "" {
		return api.ExportResult{}, c.fail("export", errs.Validation([]string{"template name is required"}))
	}
	doc := validate.Sanitize(t)
	if res := validate.Validate(doc, validate.Options{RequireName: true}); !res.IsValid {
		return api.ExportResult{}, c.fail("export", errs.Validation(res.Errors))
	}
	opts = clampOptions(opts)

	switch opts.Format {
	case api.ExportJSON:
		return c.exportJSON(doc, opts)
	case api.ExportPDF, api.ExportPNG, api.ExportHTML:
	default:
		return api.ExportResult{}, c.fail("export", errs.Validation([]string{fmt.Sprintf("unsupported export format %q", opts.Format)}))
	}

	req := struct {
		Template *api.Template     `json:"template"`
		Options  api.ExportOptions `json:"options"`
	}{doc, opts}
	var out api.ExportResult
	err := c.retry(ctx, c.exportRetry, func(ctx context.Context) error {
		out = api.ExportResult{}
		return c.call(ctx, http.MethodPost, basePath+"/export", nil, req, &out)
	})
	if err != nil {
		return api.ExportResult{}, c.fail("export", err)
	}
	if out.Format == "" {
		out.Format = opts.Format
	}
	c.log.Infow("template exported", "id", doc.ID, "format", out.Format, "file", out.Filename)
	return out, nil
}

func (c *Client) exportJSON(doc *api.Template, opts api.ExportOptions) (api.ExportResult, error) {
	var payload any = doc
	if !*opts.IncludeMetadata {
		payload = struct {
			Name         string            `json:"name"`
			Pages        []api.Page        `json:"pages"`
			PageSettings *api.PageSettings `json:"pageSettings,omitempty"`
			GlobalStyles *api.GlobalStyles `json:"globalStyles,omitempty"`
		}{doc.Name, doc.Pages, doc.PageSettings, doc.GlobalStyles}
	}
	b, err := json.MarshalIndent(payload, "", "  ")
	if err != nil {
		return api.ExportResult{}, c.fail("export", err)
	}
	return api.ExportResult{
		URL:      "data:application/json;base64," + base64.StdEncoding.EncodeToString(b),
		Filename: api.ExportFilename(doc.Name, c.now().UnixMilli(), api.ExportJSON),
		Format:   api.ExportJSON,
	}, nil
}
