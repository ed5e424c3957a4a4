package autosave

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mithrel/folio/pkg/api"
)

func TestTickSavesOnlyWhenChanged(t *testing.T) {
	doc := api.NewTemplate("Invoice")
	saves := 0
	s := New(0, func() *api.Template { return doc.Clone() }, func(_ context.Context, t *api.Template) (*api.Template, error) {
		saves++
		out := t.Clone()
		out.ID = "srv-1"
		out.Version = int64(saves)
		out.Persisted = true
		return out, nil
	}, nil)
	s.Saved = func(stored *api.Template) {
		doc.ID = stored.ID
		doc.Version = stored.Version
		doc.Persisted = true
	}

	saved, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, "srv-1", doc.ID)

	saved, err = s.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, saved, "unchanged document must not be saved")

	doc.Name = "Invoice v2"
	saved, err = s.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, 2, saves)
	assert.Equal(t, int64(2), doc.Version)
}

func TestTickKeepsEditsMadeDuringSaveDirty(t *testing.T) {
	first := api.NewTemplate("Invoice")
	second := first.Clone()
	second.Name = "Invoice edited"

	id := first.ID
	reads := 0
	snapshot := func() *api.Template {
		reads++
		src := first
		if reads > 1 {
			src = second
		}
		out := src.Clone()
		out.ID = id
		return out
	}
	var stored []string
	s := New(0, snapshot, func(_ context.Context, t *api.Template) (*api.Template, error) {
		stored = append(stored, t.Name)
		out := t.Clone()
		out.ID = "srv-1"
		out.Persisted = true
		return out, nil
	}, nil)
	s.Saved = func(saved *api.Template) { id = saved.ID }

	saved, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, saved)
	assert.Equal(t, []string{"Invoice"}, stored)

	saved, err = s.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, saved, "edit written during the first save is still pending")
	assert.Equal(t, []string{"Invoice", "Invoice edited"}, stored)

	saved, err = s.Tick(context.Background())
	require.NoError(t, err)
	assert.False(t, saved)
}

func TestTickFailureKeepsDirty(t *testing.T) {
	doc := api.NewTemplate("Draft")
	fail := true
	s := New(0, func() *api.Template { return doc }, func(_ context.Context, t *api.Template) (*api.Template, error) {
		if fail {
			return nil, errors.New("store down")
		}
		return t.Clone(), nil
	}, nil)

	_, err := s.Tick(context.Background())
	require.Error(t, err)
	assert.True(t, s.Dirty(doc))

	fail = false
	saved, err := s.Tick(context.Background())
	require.NoError(t, err)
	assert.True(t, saved)
	assert.False(t, s.Dirty(doc))
}

func TestStartStop(t *testing.T) {
	s := New(DefaultInterval, func() *api.Template { return nil }, nil, nil)
	require.NoError(t, s.Start())
	s.Stop()
}
