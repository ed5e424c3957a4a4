package db

import (
	"context"
	"slices"
	"sort"
	"strings"
	"sync"

	"github.com/mithrel/folio/pkg/api"
)

type memStore struct {
	mu   sync.RWMutex
	byID map[string]api.Template
}

var _ Store = (*memStore)(nil)

func newMemStore() *memStore {
	return &memStore{byID: make(map[string]api.Template)}
}

func (m *memStore) Close() error { return nil }

func (m *memStore) Create(_ context.Context, t api.Template) (api.Template, error) {
	if t.ID == "" {
		return api.Template{}, ErrConflict
	}
	if t.Version == 0 {
		t.Version = 1
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[t.ID]; ok {
		return api.Template{}, ErrConflict
	}
	m.byID[t.ID] = *t.Clone()
	return t, nil
}

func (m *memStore) Get(_ context.Context, id string) (api.Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	t, ok := m.byID[id]
	if !ok {
		return api.Template{}, ErrNotFound
	}
	return *t.Clone(), nil
}

func (m *memStore) Update(ctx context.Context, t api.Template) (api.Template, error) {
	return m.update(t, nil)
}

func (m *memStore) UpdateCAS(ctx context.Context, t api.Template, ifVersion int64) (api.Template, error) {
	return m.update(t, &ifVersion)
}

func (m *memStore) update(t api.Template, ifVersion *int64) (api.Template, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.byID[t.ID]
	if !ok {
		return api.Template{}, ErrNotFound
	}
	if ifVersion != nil && cur.Version != *ifVersion {
		return api.Template{}, ErrConflict
	}
	m.byID[t.ID] = *t.Clone()
	return t, nil
}

func (m *memStore) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byID[id]; !ok {
		return ErrNotFound
	}
	delete(m.byID, id)
	return nil
}

func (m *memStore) List(ctx context.Context, q ListQuery) ([]api.Template, int, error) {
	q = q.Normalize()
	all, _ := m.All(ctx)
	matched := all[:0]
	for _, t := range all {
		if q.matches(t) {
			matched = append(matched, t)
		}
	}
	sortTemplates(matched, q)
	total := len(matched)
	start := min(q.Offset(), total)
	end := min(start+q.Limit, total)
	return append([]api.Template{}, matched[start:end]...), total, nil
}

func (m *memStore) All(_ context.Context) ([]api.Template, error) {
	m.mu.RLock()
	out := make([]api.Template, 0, len(m.byID))
	for _, t := range m.byID {
		out = append(out, *t.Clone())
	}
	m.mu.RUnlock()
	sortTemplates(out, ListQuery{SortBy: "updatedAt", SortOrder: "desc"})
	return out, nil
}

func (q ListQuery) matches(t api.Template) bool {
	if q.Category != "" && t.Category != q.Category {
		return false
	}
	if q.IsPublic != nil && t.IsPublic != *q.IsPublic {
		return false
	}
	if q.CreatedBy != "" && t.CreatedBy != q.CreatedBy {
		return false
	}
	if len(q.Tags) > 0 {
		have := uniqueStrings(t.Tags)
		if !slices.ContainsFunc(q.Tags, func(tag string) bool { return slices.Contains(have, tag) }) {
			return false
		}
	}
	return true
}

func sortTemplates(ts []api.Template, q ListQuery) {
	asc := q.SortOrder == "asc"
	sort.SliceStable(ts, func(i, j int) bool {
		a, b := ts[i], ts[j]
		var c int
		switch q.SortBy {
		case "name":
			c = strings.Compare(strings.ToLower(a.Name), strings.ToLower(b.Name))
		case "createdAt":
			c = a.CreatedAt.Compare(b.CreatedAt)
		default:
			c = a.UpdatedAt.Compare(b.UpdatedAt)
		}
		if c == 0 {
			c = strings.Compare(a.ID, b.ID)
		}
		if asc {
			return c < 0
		}
		return c > 0
	})
}
