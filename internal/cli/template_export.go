package cli

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mithrel/folio/internal/present"
	"github.com/mithrel/folio/internal/render"
	"github.com/mithrel/folio/pkg/api"
)

func newTemplateExportCmd() *cobra.Command {
	var out outputFlags
	var format, dest string
	var quality, dpi int
	var noMeta bool
	cmd := &cobra.Command{
		Use:               "export <id|file.json>",
		Short:             "Export a template as pdf, png, html or json",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTemplateIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			opts, err := out.options()
			if err != nil {
				return err
			}
			t, err := resolveTemplate(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			eo := api.ExportOptions{Format: api.ExportFormat(strings.ToLower(format)), Quality: quality, DPI: dpi}
			if noMeta {
				eo.IncludeMetadata = api.Bool(false)
			}
			res, err := app.Sync.Export(cmd.Context(), t, eo)
			if err != nil {
				return err
			}
			if payload, ok := decodeDataURL(res.URL); ok {
				if dest == "" {
					dest = res.Filename
				}
				if err := os.WriteFile(dest, payload, 0o644); err != nil {
					return err
				}
				res.URL = dest
			}
			return present.RenderExport(cmd.OutOrStdout(), res, opts)
		},
	}
	cmd.Flags().StringVar(&format, "format", string(api.ExportPDF), "pdf|png|html|json")
	cmd.Flags().IntVar(&quality, "quality", 0, "image quality 1-100 (default 90)")
	cmd.Flags().IntVar(&dpi, "dpi", 0, "resolution 72-600 (default 300)")
	cmd.Flags().BoolVar(&noMeta, "no-metadata", false, "json only: keep just name, pages and styles")
	cmd.Flags().StringVarP(&dest, "out", "o", "", "file for locally built exports (default: generated filename)")
	_ = cmd.RegisterFlagCompletionFunc("format", func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
		return []string{"pdf", "png", "html", "json"}, cobra.ShellCompDirectiveNoFileComp
	})
	addOutputFlags(cmd, &out, "plain")
	return cmd
}

// decodeDataURL returns the payload of a base64 data: URL.
func decodeDataURL(u string) ([]byte, bool) {
	if !strings.HasPrefix(u, "data:") {
		return nil, false
	}
	_, enc, ok := strings.Cut(u, ";base64,")
	if !ok {
		return nil, false
	}
	b, err := base64.StdEncoding.DecodeString(enc)
	if err != nil {
		return nil, false
	}
	return b, true
}

func newTemplateRenderCmd() *cobra.Command {
	var pairs []string
	var dataFile, dest string
	cmd := &cobra.Command{
		Use:               "render <id|file.json>",
		Short:             "Render a template to HTML with variable data",
		Args:              cobra.ExactArgs(1),
		ValidArgsFunction: completeTemplateIDs,
		RunE: func(cmd *cobra.Command, args []string) error {
			app := getApp(cmd)
			t, err := resolveTemplate(cmd.Context(), app, args[0])
			if err != nil {
				return err
			}
			data, err := renderData(dataFile, pairs)
			if err != nil {
				return err
			}
			var w io.Writer = cmd.OutOrStdout()
			if dest != "" {
				f, err := os.Create(dest)
				if err != nil {
					return err
				}
				defer f.Close()
				w = f
			}
			return render.HTML(w, t, data)
		},
	}
	cmd.Flags().StringArrayVar(&pairs, "data", nil, "variable as key=value; value may be JSON (repeatable)")
	cmd.Flags().StringVar(&dataFile, "data-file", "", "JSON object with variable data")
	cmd.Flags().StringVarP(&dest, "out", "o", "", "write HTML to this file")
	return cmd
}

// renderData merges the data file with key=value pairs; pairs win. Dotted
// keys nest, so customer.name=Ada sets {"customer": {"name": "Ada"}}.
func renderData(file string, pairs []string) (map[string]any, error) {
	data := map[string]any{}
	if file != "" {
		b, err := os.ReadFile(file)
		if err != nil {
			return nil, err
		}
		if err := json.Unmarshal(b, &data); err != nil {
			return nil, fmt.Errorf("parse %s: %w", file, err)
		}
	}
	for _, p := range pairs {
		k, raw, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --data %q: want key=value", p)
		}
		var v any = raw
		var decoded any
		if err := json.Unmarshal([]byte(raw), &decoded); err == nil {
			v = decoded
		}
		setPath(data, strings.Split(strings.TrimSpace(k), "."), v)
	}
	return data, nil
}

func setPath(m map[string]any, path []string, v any) {
	for _, k := range path[:len(path)-1] {
		next, ok := m[k].(map[string]any)
		if !ok {
			next = map[string]any{}
			m[k] = next
		}
		m = next
	}
	m[path[len(path)-1]] = v
}
