package sync

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/mithrel/folio/internal/errs"
	"github.com/mithrel/folio/internal/validate"
	"github.com/mithrel/folio/pkg/api"
)

const defaultListLimit = 10

type templateData struct {
	Template api.Template `json:"template"`
}

// Save sanitizes and validates t, then creates it when it has never been
// persisted or updates it in place otherwise. meta overrides metadata
// fields; its Version and Revision are forwarded only when set. The
// returned template is the store's copy, marked persisted.
func (c *Client) Save(ctx context.Context, t *api.Template, meta *api.SaveMetadata) (*api.Template, error) {
	if t == nil {
		return nil, c.fail("save", errs.Validation([]string{"template is required"}))
	}
	in := t.Clone()
	applyMetadata(in, meta)
	doc := validate.Sanitize(in)
	if res := validate.Validate(doc, validate.DefaultOptions()); !res.IsValid {
		return nil, c.fail("save", errs.Validation(res.Errors))
	}
	if c.remoteCheck {
		res, err := c.ValidateRemote(ctx, doc)
		if err != nil {
			return nil, err
		}
		if !res.IsValid {
			return nil, c.fail("save", errs.Validation(res.Errors))
		}
	}
	validate.Flatten(doc)

	create := !t.Persisted
	body, err := requestBody(doc, create, meta)
	if err != nil {
		return nil, c.fail("save", err)
	}
	method, path, hdr := http.MethodPost, basePath, http.Header{}
	if !create {
		method, path = http.MethodPut, basePath+"/"+url.PathEscape(doc.ID)
		if c.mode == ModeVersionMatch {
			hdr.Set("If-Match", strconv.Quote(strconv.FormatInt(t.Version, 10)))
		}
	}

	var out templateData
	err = c.retry(ctx, c.maxRetries, func(ctx context.Context) error {
		out = templateData{}
		return c.call(ctx, method, path, hdr, body, &out)
	})
	if err != nil {
		return nil, c.fail("save", err)
	}
	saved := normalize(&out.Template)
	c.replace(ctx, saved)
	c.log.Infow("template saved", "id", saved.ID, "created", create, "version", saved.Version)
	return saved.Clone(), nil
}

func applyMetadata(t *api.Template, meta *api.SaveMetadata) {
	if meta == nil {
		return
	}
	if meta.Name != "" {
		t.Name = meta.Name
	}
	if meta.Description != "" {
		t.Description = meta.Description
	}
	if meta.Category != "" {
		t.Category = meta.Category
	}
	if meta.Tags != nil {
		t.Tags = append([]string{}, meta.Tags...)
	}
	if meta.IsPublic != nil {
		t.IsPublic = *meta.IsPublic
	}
}

// requestBody encodes doc for the store. Store-owned fields are dropped;
// a create also drops the id and starts at version 1.
func requestBody(doc *api.Template, create bool, meta *api.SaveMetadata) (map[string]any, error) {
	raw, err := json.Marshal(doc)
	if err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	var body map[string]any
	if err := json.Unmarshal(raw, &body); err != nil {
		return nil, fmt.Errorf("encode template: %w", err)
	}
	for _, k := range []string{"persisted", "createdAt", "updatedAt", "createdBy", "version", "revision"} {
		delete(body, k)
	}
	if create {
		delete(body, "id")
		body["version"] = 1
	}
	if meta != nil && meta.Version != nil {
		body["version"] = *meta.Version
	}
	if meta != nil && meta.Revision != nil {
		body["revision"] = *meta.Revision
	}
	return body, nil
}

// normalize fills anything the store left out with the defaults Sanitize
// applies and marks the result persisted.
func normalize(t *api.Template) *api.Template {
	n := validate.Sanitize(t)
	n.Persisted = true
	return n
}

func (c *Client) remember(ctx context.Context, t *api.Template) {
	if err := c.cache.Set(ctx, t); err != nil {
		c.log.Warnw("cache write failed", "id", t.ID, "error", err)
	}
}

func (c *Client) generation(id string) uint64 {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	return c.gens[id]
}

// replace caches t as the newest copy of its id. Loads already in flight
// for that id will not cache their older result, and later loads do not
// join them.
func (c *Client) replace(ctx context.Context, t *api.Template) {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	c.gens[t.ID]++
	c.flight.Forget("load:" + t.ID)
	c.remember(ctx, t)
}

func (c *Client) evict(ctx context.Context, id string) {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	c.gens[id]++
	c.flight.Forget("load:" + id)
	if err := c.cache.Delete(ctx, id); err != nil {
		c.log.Warnw("cache evict failed", "id", id, "error", err)
	}
}

// rememberAt caches t unless its id was written since gen.
func (c *Client) rememberAt(ctx context.Context, t *api.Template, gen uint64) {
	c.genMu.Lock()
	defer c.genMu.Unlock()
	if c.gens[t.ID] != gen {
		c.log.Debugw("dropping stale load", "id", t.ID)
		return
	}
	c.remember(ctx, t)
}

// Load returns the template with the given id. A fresh cached copy is
// returned without a request; concurrent loads of the same id share one
// request and its result.
func (c *Client) Load(ctx context.Context, id string) (*api.Template, error) {
	if strings.TrimSpace(id) == "" {
		return nil, c.fail("load", errs.Validation([]string{"template id is required"}))
	}
	if t, ok, err := c.cache.Get(ctx, id); err != nil {
		c.log.Warnw("cache read failed", "id", id, "error", err)
	} else if ok {
		return t, nil
	}

	// The shared fetch outlives any single caller; each caller stops
	// waiting when its own ctx is done. The HTTP client timeout bounds it.
	gen := c.generation(id)
	fetchCtx := context.WithoutCancel(ctx)
	ch := c.flight.DoChan("load:"+id, func() (any, error) {
		var out templateData
		err := c.retry(fetchCtx, c.maxRetries, func(ctx context.Context) error {
			out = templateData{}
			return c.call(ctx, http.MethodGet, basePath+"/"+url.PathEscape(id), nil, nil, &out)
		})
		if err != nil {
			return nil, err
		}
		t := normalize(&out.Template)
		c.rememberAt(fetchCtx, t, gen)
		return t, nil
	})

	select {
	case <-ctx.Done():
		return nil, c.fail("load", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return nil, c.fail("load", res.Err)
		}
		c.log.Debugw("template loaded", "id", id, "shared", res.Shared)
		return res.Val.(*api.Template).Clone(), nil
	}
}

func (c *Client) Delete(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return c.fail("delete", errs.Validation([]string{"template id is required"}))
	}
	err := c.retry(ctx, c.maxRetries, func(ctx context.Context) error {
		return c.call(ctx, http.MethodDelete, basePath+"/"+url.PathEscape(id), nil, nil, nil)
	})
	if err != nil {
		return c.fail("delete", err)
	}
	c.evict(ctx, id)
	return nil
}

// Duplicate asks the store to copy a template. An empty newName lets the
// store pick "<name> (Copy)".
func (c *Client) Duplicate(ctx context.Context, id, newName string) (*api.Template, error) {
	if strings.TrimSpace(id) == "" {
		return nil, c.fail("duplicate", errs.Validation([]string{"template id is required"}))
	}
	body := map[string]string{}
	if name := strings.TrimSpace(newName); name != "" {
		body["name"] = name
	}
	var out templateData
	err := c.retry(ctx, c.maxRetries, func(ctx context.Context) error {
		out = templateData{}
		return c.call(ctx, http.MethodPost, basePath+"/"+url.PathEscape(id)+"/duplicate", nil, body, &out)
	})
	if err != nil {
		return nil, c.fail("duplicate", err)
	}
	dup := normalize(&out.Template)
	c.replace(ctx, dup)
	return dup.Clone(), nil
}

// List returns one page of templates. It never fails: on error the failure
// is recorded and an empty page is returned.
func (c *Client) List(ctx context.Context, f api.ListFilters) api.ListResult {
	q := url.Values{}
	if f.Category != "" {
		q.Set("category", f.Category)
	}
	if len(f.Tags) > 0 {
		q.Set("tags", strings.Join(f.Tags, ","))
	}
	if f.IsPublic != nil {
		q.Set("isPublic", strconv.FormatBool(*f.IsPublic))
	}
	if f.CreatedBy != "" {
		q.Set("createdBy", f.CreatedBy)
	}
	if f.Page > 0 {
		q.Set("page", strconv.Itoa(f.Page))
	}
	if f.Limit > 0 {
		q.Set("limit", strconv.Itoa(f.Limit))
	}
	if f.SortBy != "" {
		q.Set("sortBy", f.SortBy)
	}
	if f.SortOrder != "" {
		q.Set("sortOrder", f.SortOrder)
	}
	path := basePath
	if len(q) > 0 {
		path += "?" + q.Encode()
	}

	var out struct {
		Templates  []api.Template `json:"templates"`
		Pagination api.Pagination `json:"pagination"`
	}
	if err := c.call(ctx, http.MethodGet, path, nil, nil, &out); err != nil {
		_ = c.fail("list", err)
		return api.ListResult{Templates: []api.Template{}, Page: max(f.Page, 1), Limit: limitOrDefault(f.Limit)}
	}
	for i := range out.Templates {
		out.Templates[i].Persisted = true
	}
	if out.Templates == nil {
		out.Templates = []api.Template{}
	}
	return api.ListResult{
		Templates: out.Templates,
		Total:     out.Pagination.Total,
		Page:      out.Pagination.Page,
		Limit:     out.Pagination.Limit,
	}
}

func limitOrDefault(n int) int {
	if n > 0 {
		return n
	}
	return defaultListLimit
}

// Search returns templates whose name, description or tags match q. Like
// List it never fails.
func (c *Client) Search(ctx context.Context, q string) []api.Template {
	q = strings.TrimSpace(q)
	if q == "" {
		return []api.Template{}
	}
	var out struct {
		Templates []api.Template `json:"templates"`
	}
	if err := c.call(ctx, http.MethodGet, basePath+"/search?q="+url.QueryEscape(q), nil, nil, &out); err != nil {
		_ = c.fail("search", err)
		return []api.Template{}
	}
	for i := range out.Templates {
		out.Templates[i].Persisted = true
	}
	if out.Templates == nil {
		out.Templates = []api.Template{}
	}
	return out.Templates
}

// ValidateRemote asks the store to validate t.
func (c *Client) ValidateRemote(ctx context.Context, t *api.Template) (api.ValidationResult, error) {
	var res api.ValidationResult
	err := c.retry(ctx, c.maxRetries, func(ctx context.Context) error {
		res = api.ValidationResult{}
		return c.call(ctx, http.MethodPost, basePath+"/validate", nil, t, &res)
	})
	if err != nil {
		return api.ValidationResult{}, c.fail("validate", err)
	}
	return res, nil
}
