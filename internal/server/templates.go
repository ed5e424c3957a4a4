package server

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/gorilla/mux"

	"github.com/mithrel/folio/internal/db"
	"github.com/mithrel/folio/internal/util"
	"github.com/mithrel/folio/internal/validate"
	"github.com/mithrel/folio/pkg/api"
)

const (
	maxBodyBytes  = 10 << 20
	maxNameLen    = 255
	maxDescLen    = 500
	maxSearchHits = 20
)

func (s *Server) listHandler(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	lq := db.ListQuery{
		Category:  q.Get("category"),
		CreatedBy: q.Get("createdBy"),
		SortBy:    q.Get("sortBy"),
		SortOrder: q.Get("sortOrder"),
	}
	if tags := q.Get("tags"); tags != "" {
		lq.Tags = strings.Split(tags, ",")
	}
	if v := q.Get("isPublic"); v != "" {
		lq.IsPublic = api.Bool(v == "true")
	}
	lq.Page, _ = strconv.Atoi(q.Get("page"))
	lq.Limit, _ = strconv.Atoi(q.Get("limit"))
	lq = lq.Normalize()

	items, total, err := s.store.List(r.Context(), lq)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	totalPages := (total + lq.Limit - 1) / lq.Limit
	writeJSON(w, http.StatusOK, map[string]any{
		"templates": items,
		"pagination": api.Pagination{
			Page:       lq.Page,
			Limit:      lq.Limit,
			Total:      total,
			TotalPages: totalPages,
			HasNext:    lq.Page < totalPages,
			HasPrev:    lq.Page > 1,
		},
	})
}

func (s *Server) getHandler(w http.ResponseWriter, r *http.Request) {
	t, ok := s.lookup(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"template": t})
}

func (s *Server) createHandler(w http.ResponseWriter, r *http.Request) {
	var in api.Template
	if _, err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	if msgs := checkMetadata(in); len(msgs) > 0 {
		writeError(w, http.StatusBadRequest, "validation failed", msgs)
		return
	}
	now := s.now()
	in.ID = api.NewID()
	in.Version = 1
	in.Revision = 0
	in.CreatedAt = now
	in.UpdatedAt = now
	in.Persisted = false
	in.CreatedBy = r.Header.Get(UserHeader)
	if strings.TrimSpace(in.Category) == "" {
		in.Category = api.DefaultCategory
	}
	if in.Tags == nil {
		in.Tags = []string{}
	}

	out, err := s.store.Create(r.Context(), in)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	s.log.Infow("template created", "id", out.ID, "name", out.Name)
	writeJSON(w, http.StatusCreated, map[string]any{"template": out})
}

// updateHandler merges the fields present in the body onto the stored
// template. Without an explicit version the stored version is incremented.
// An If-Match header turns the write into a compare-and-swap on the version.
func (s *Server) updateHandler(w http.ResponseWriter, r *http.Request) {
	var in api.Template
	present, err := decodeBody(r, &in)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	cur, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if !s.owns(r, cur) {
		writeError(w, http.StatusForbidden, "access denied", nil)
		return
	}

	next := cur
	if present["name"] && strings.TrimSpace(in.Name) != "" {
		next.Name = in.Name
	}
	if present["description"] {
		next.Description = in.Description
	}
	if present["category"] && strings.TrimSpace(in.Category) != "" {
		next.Category = in.Category
	}
	if present["tags"] && in.Tags != nil {
		next.Tags = in.Tags
	}
	if present["isPublic"] {
		next.IsPublic = in.IsPublic
	}
	if present["thumbnail"] {
		next.Thumbnail = in.Thumbnail
	}
	if present["pages"] {
		next.Pages = in.Pages
	}
	if present["elements"] {
		next.Elements = in.Elements
	}
	if present["pageSettings"] {
		next.PageSettings = in.PageSettings
	}
	if present["globalStyles"] {
		next.GlobalStyles = in.GlobalStyles
	}
	next.Version = cur.Version + 1
	if present["version"] {
		next.Version = in.Version
	}
	if present["revision"] {
		next.Revision = in.Revision
	}
	next.UpdatedAt = s.now()
	if msgs := checkMetadata(next); len(msgs) > 0 {
		writeError(w, http.StatusBadRequest, "validation failed", msgs)
		return
	}

	var out api.Template
	if match := r.Header.Get("If-Match"); match != "" {
		want, perr := strconv.ParseInt(strings.Trim(match, `"W/ `), 10, 64)
		if perr != nil {
			writeError(w, http.StatusBadRequest, "invalid If-Match header", match)
			return
		}
		out, err = s.store.UpdateCAS(r.Context(), next, want)
	} else {
		out, err = s.store.Update(r.Context(), next)
	}
	switch {
	case errors.Is(err, db.ErrConflict):
		writeError(w, http.StatusConflict, "version conflict", map[string]int64{"currentVersion": cur.Version})
		return
	case errors.Is(err, db.ErrNotFound):
		writeError(w, http.StatusNotFound, "template not found", nil)
		return
	case err != nil:
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"template": out})
}

func (s *Server) deleteHandler(w http.ResponseWriter, r *http.Request) {
	cur, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if !s.owns(r, cur) {
		writeError(w, http.StatusForbidden, "access denied", nil)
		return
	}
	if err := s.store.Delete(r.Context(), cur.ID); err != nil {
		if errors.Is(err, db.ErrNotFound) {
			writeError(w, http.StatusNotFound, "template not found", nil)
			return
		}
		s.internalError(w, r, err)
		return
	}
	s.log.Infow("template deleted", "id", cur.ID)
	writeJSON(w, http.StatusOK, map[string]any{"message": "template deleted"})
}

func (s *Server) duplicateHandler(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Name string `json:"name"`
	}
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err == nil && len(bytes.TrimSpace(raw)) > 0 {
		err = json.Unmarshal(raw, &body)
	}
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	src, ok := s.lookup(w, r)
	if !ok {
		return
	}
	if !s.visible(r, src) {
		writeError(w, http.StatusForbidden, "access denied", nil)
		return
	}

	dup := *src.Clone()
	now := s.now()
	dup.ID = api.NewID()
	dup.Name = strings.TrimSpace(body.Name)
	if dup.Name == "" {
		dup.Name = src.Name + " (Copy)"
	}
	dup.IsPublic = false
	dup.Version = 1
	dup.Revision = 0
	dup.CreatedBy = r.Header.Get(UserHeader)
	dup.CreatedAt = now
	dup.UpdatedAt = now

	out, err := s.store.Create(r.Context(), dup)
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"template": out})
}

// searchHandler matches q case-insensitively against name and description,
// or exactly against a tag, and ranks the hits by fuzzy score on the name.
func (s *Server) searchHandler(w http.ResponseWriter, r *http.Request) {
	q := strings.TrimSpace(r.URL.Query().Get("q"))
	if q == "" {
		writeError(w, http.StatusBadRequest, "search query is required", nil)
		return
	}
	all, err := s.store.All(r.Context())
	if err != nil {
		s.internalError(w, r, err)
		return
	}
	needle := strings.ToLower(q)
	hits := []api.Template{}
	for _, t := range all {
		if !s.visible(r, t) {
			continue
		}
		if strings.Contains(strings.ToLower(t.Name), needle) ||
			strings.Contains(strings.ToLower(t.Description), needle) ||
			hasTag(t.Tags, needle) {
			hits = append(hits, t)
		}
	}
	names := make([]string, len(hits))
	for i, t := range hits {
		names[i] = t.Name
	}
	ranked := make([]api.Template, 0, min(len(hits), maxSearchHits))
	for _, i := range util.RankIndexes(q, names) {
		if len(ranked) == maxSearchHits {
			break
		}
		ranked = append(ranked, summaryOf(hits[i]))
	}
	writeJSON(w, http.StatusOK, map[string]any{"templates": ranked})
}

func (s *Server) validateHandler(w http.ResponseWriter, r *http.Request) {
	var in api.Template
	if _, err := decodeBody(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}
	res := validate.Validate(&in, validate.DefaultOptions())
	writeJSON(w, http.StatusOK, res)
}

func (s *Server) lookup(w http.ResponseWriter, r *http.Request) (api.Template, bool) {
	id := mux.Vars(r)["id"]
	t, err := s.store.Get(r.Context(), id)
	if errors.Is(err, db.ErrNotFound) {
		writeError(w, http.StatusNotFound, "template not found", nil)
		return api.Template{}, false
	}
	if err != nil {
		s.internalError(w, r, err)
		return api.Template{}, false
	}
	return t, true
}

// owns reports whether the caller may modify t. Anonymous callers and
// templates without an owner are unrestricted.
func (s *Server) owns(r *http.Request, t api.Template) bool {
	user := r.Header.Get(UserHeader)
	return user == "" || t.CreatedBy == "" || t.CreatedBy == user
}

func (s *Server) visible(r *http.Request, t api.Template) bool {
	return t.IsPublic || s.owns(r, t)
}

// decodeBody decodes the JSON body into v and reports which top-level keys
// were present.
func decodeBody(r *http.Request, v any) (map[string]bool, error) {
	raw, err := io.ReadAll(io.LimitReader(r.Body, maxBodyBytes))
	if err != nil {
		return nil, err
	}
	if err := json.Unmarshal(raw, v); err != nil {
		return nil, err
	}
	var keys map[string]json.RawMessage
	if err := json.Unmarshal(raw, &keys); err != nil {
		return nil, err
	}
	present := make(map[string]bool, len(keys))
	for k := range keys {
		present[k] = true
	}
	return present, nil
}

func checkMetadata(t api.Template) []string {
	var msgs []string
	name := strings.TrimSpace(t.Name)
	switch {
	case name == "":
		msgs = append(msgs, "template name is required")
	case len(name) > maxNameLen:
		msgs = append(msgs, "template name is too long")
	}
	if len(t.Description) > maxDescLen {
		msgs = append(msgs, "template description is too long")
	}
	return msgs
}

func hasTag(tags []string, needle string) bool {
	for _, tag := range tags {
		if strings.ToLower(tag) == needle {
			return true
		}
	}
	return false
}

// summaryOf drops the document body from search results.
func summaryOf(t api.Template) api.Template {
	return api.Template{
		ID:          t.ID,
		Name:        t.Name,
		Description: t.Description,
		Category:    t.Category,
		Tags:        t.Tags,
		Thumbnail:   t.Thumbnail,
		IsPublic:    t.IsPublic,
		CreatedBy:   t.CreatedBy,
		Version:     t.Version,
		Revision:    t.Revision,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}
