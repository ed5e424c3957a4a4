package db

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/folio/pkg/api"
)

func setupTestDB(t *testing.T) (Store, context.Context) {
	t.Helper()
	ctx := context.Background()
	store, err := Open(ctx, "sqlite://"+filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = store.Close() })
	return store, ctx
}

// eachStore runs fn against the sqlite and in-memory stores.
func eachStore(t *testing.T, fn func(t *testing.T, store Store, ctx context.Context)) {
	t.Run("sqlite", func(t *testing.T) {
		store, ctx := setupTestDB(t)
		fn(t, store, ctx)
	})
	t.Run("mem", func(t *testing.T) {
		store, err := Open(context.Background(), "mem://")
		require.NoError(t, err)
		fn(t, store, context.Background())
	})
}

func newTemplate(id, name string, ts time.Time) api.Template {
	t := api.NewTemplate(name)
	t.ID = id
	t.CreatedAt = ts
	t.UpdatedAt = ts
	return *t
}

func TestCreateGetDelete(t *testing.T) {
	eachStore(t, func(t *testing.T, store Store, ctx context.Context) {
		now := time.Now().UTC().Truncate(time.Second)
		in := newTemplate("tpl-1", "Invoice", now)
		in.Tags = []string{"Billing"}

		created, err := store.Create(ctx, in)
		require.NoError(t, err)
		assert.Equal(t, int64(1), created.Version)

		_, err = store.Create(ctx, in)
		assert.ErrorIs(t, err, ErrConflict)

		got, err := store.Get(ctx, "tpl-1")
		require.NoError(t, err)
		assert.Equal(t, "Invoice", got.Name)
		assert.Equal(t, []string{"Billing"}, got.Tags)
		require.Len(t, got.Pages, 1)
		assert.Equal(t, in.Pages[0].ID, got.Pages[0].ID)
		assert.True(t, now.Equal(got.CreatedAt))

		require.NoError(t, store.Delete(ctx, "tpl-1"))
		_, err = store.Get(ctx, "tpl-1")
		assert.ErrorIs(t, err, ErrNotFound)
		assert.ErrorIs(t, store.Delete(ctx, "tpl-1"), ErrNotFound)
	})
}

func TestUpdateCAS(t *testing.T) {
	eachStore(t, func(t *testing.T, store Store, ctx context.Context) {
		now := time.Now().UTC().Truncate(time.Second)
		_, err := store.Create(ctx, newTemplate("tpl-1", "Initial", now))
		require.NoError(t, err)

		t.Run("matching version succeeds", func(t *testing.T) {
			next := newTemplate("tpl-1", "Second", now.Add(time.Minute))
			next.Version = 2
			out, err := store.UpdateCAS(ctx, next, 1)
			require.NoError(t, err)
			assert.Equal(t, int64(2), out.Version)
			assert.Equal(t, "Second", out.Name)
		})

		t.Run("stale version conflicts", func(t *testing.T) {
			stale := newTemplate("tpl-1", "Stale", now)
			stale.Version = 2
			_, err := store.UpdateCAS(ctx, stale, 1)
			assert.ErrorIs(t, err, ErrConflict)

			got, err := store.Get(ctx, "tpl-1")
			require.NoError(t, err)
			assert.Equal(t, "Second", got.Name)
		})

		t.Run("missing template", func(t *testing.T) {
			_, err := store.UpdateCAS(ctx, newTemplate("nope", "x", now), 1)
			assert.ErrorIs(t, err, ErrNotFound)
			_, err = store.Update(ctx, newTemplate("nope", "x", now))
			assert.ErrorIs(t, err, ErrNotFound)
		})

		t.Run("unconditional update", func(t *testing.T) {
			last := newTemplate("tpl-1", "Last", now)
			last.Version = 7
			out, err := store.Update(ctx, last)
			require.NoError(t, err)
			assert.Equal(t, int64(7), out.Version)
		})
	})
}

func TestListFiltersAndPaging(t *testing.T) {
	eachStore(t, func(t *testing.T, store Store, ctx context.Context) {
		base := time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < 5; i++ {
			tpl := newTemplate(fmt.Sprintf("tpl-%d", i), fmt.Sprintf("Report %c", 'E'-i), base.Add(time.Duration(i)*time.Hour))
			if i%2 == 0 {
				tpl.Category = "sensor"
				tpl.Tags = []string{"weekly"}
			}
			tpl.IsPublic = i == 4
			_, err := store.Create(ctx, tpl)
			require.NoError(t, err)
		}

		page, total, err := store.List(ctx, ListQuery{Limit: 2})
		require.NoError(t, err)
		assert.Equal(t, 5, total)
		require.Len(t, page, 2)
		assert.Equal(t, "tpl-4", page[0].ID, "newest update first")
		assert.Equal(t, "tpl-3", page[1].ID)

		page, _, err = store.List(ctx, ListQuery{Limit: 2, Page: 3})
		require.NoError(t, err)
		require.Len(t, page, 1)
		assert.Equal(t, "tpl-0", page[0].ID)

		page, total, err = store.List(ctx, ListQuery{Category: "sensor", SortBy: "name", SortOrder: "asc"})
		require.NoError(t, err)
		assert.Equal(t, 3, total)
		assert.Equal(t, []string{"tpl-4", "tpl-2", "tpl-0"}, ids(page))

		page, total, err = store.List(ctx, ListQuery{Tags: []string{"WEEKLY", "other"}, IsPublic: api.Bool(false)})
		require.NoError(t, err)
		assert.Equal(t, 2, total)
		assert.Equal(t, []string{"tpl-2", "tpl-0"}, ids(page))

		all, err := store.All(ctx)
		require.NoError(t, err)
		assert.Len(t, all, 5)
	})
}

func TestNormalize(t *testing.T) {
	q := ListQuery{Limit: 500, SortBy: "bogus", SortOrder: "up", Tags: []string{" A", "a", ""}}.Normalize()
	assert.Equal(t, 1, q.Page)
	assert.Equal(t, MaxPageSize, q.Limit)
	assert.Equal(t, "updatedAt", q.SortBy)
	assert.Equal(t, "desc", q.SortOrder)
	assert.Equal(t, []string{"a"}, q.Tags)
	assert.Equal(t, 0, q.Offset())
}

func TestOpenRejectsUnknownScheme(t *testing.T) {
	_, err := Open(context.Background(), "postgres://localhost")
	assert.Error(t, err)
}

func ids(ts []api.Template) []string {
	out := make([]string, 0, len(ts))
	for _, t := range ts {
		out = append(out, t.ID)
	}
	return out
}
