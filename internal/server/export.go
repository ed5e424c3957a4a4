package server

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"path/filepath"

	"github.com/mithrel/folio/internal/render"
	"github.com/mithrel/folio/internal/validate"
	"github.com/mithrel/folio/pkg/api"
)

type exportRequest struct {
	Template *api.Template     `json:"template"`
	Options  api.ExportOptions `json:"options"`
	Data     map[string]any    `json:"data,omitempty"`
}

func (s *Server) exportHandler(w http.ResponseWriter, r *http.Request) {
	var req exportRequest
	if _, err := decodeBody(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if req.Template == nil {
		writeError(w, http.StatusBadRequest, "template is required", nil)
		return
	}
	s.export(w, r, req.Template, req.Options, req.Data)
}

// exportByIDHandler exports a stored template. The body carries the export
// options directly.
func (s *Server) exportByIDHandler(w http.ResponseWriter, r *http.Request) {
	var opts api.ExportOptions
	if _, err := decodeBody(r, &opts); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if !s.visible(r, t) {
		writeError(w, http.StatusForbidden, "access denied", nil)
		return
	}
	s.export(w, r, &t, opts, nil)
}

func (s *Server) export(w http.ResponseWriter, r *http.Request, t *api.Template, opts api.ExportOptions, data map[string]any) {
	t = validate.Sanitize(t)
	if res := validate.Validate(t, validate.Options{RequireName: true}); !res.IsValid {
		writeError(w, http.StatusBadRequest, "validation failed", res.Errors)
		return
	}
	filename := api.ExportFilename(t.Name, s.now().UnixMilli(), opts.Format)

	switch opts.Format {
	case api.ExportJSON:
		b, err := json.Marshal(t)
		if err != nil {
			s.internalError(w, r, err)
			return
		}
		writeJSON(w, http.StatusOK, map[string]any{
			"content":  "data:application/json;base64," + base64.StdEncoding.EncodeToString(b),
			"filename": filename,
			"format":   opts.Format,
		})
	case api.ExportHTML:
		dir := s.exportsDir()
		if dir == "" {
			writeError(w, http.StatusNotImplemented, "exports directory is not configured", nil)
			return
		}
		if err := s.writeHTML(dir, filename, t, data); err != nil {
			s.internalError(w, r, err)
			return
		}
		s.log.Infow("template exported", "id", t.ID, "format", opts.Format, "file", filename)
		writeJSON(w, http.StatusOK, api.ExportResult{
			URL:      baseURL(r) + "/exports/" + filename,
			Filename: filename,
			Format:   opts.Format,
		})
	case api.ExportPDF, api.ExportPNG:
		writeError(w, http.StatusNotImplemented, fmt.Sprintf("%s rendering is not available on this server", opts.Format), nil)
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported export format %q", opts.Format), nil)
	}
}

func (s *Server) writeHTML(dir, filename string, t *api.Template, data map[string]any) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	f, err := os.Create(filepath.Join(dir, filename))
	if err != nil {
		return err
	}
	if err := render.HTML(f, t, data); err != nil {
		_ = f.Close()
		return err
	}
	return f.Close()
}

func baseURL(r *http.Request) string {
	scheme := "http"
	if r.TLS != nil {
		scheme = "https"
	}
	return scheme + "://" + r.Host
}
