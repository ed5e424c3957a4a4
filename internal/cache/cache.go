// Package cache holds recently loaded templates for a short time window.
package cache

import (
	"context"
	"sync"
	"time"

	"github.com/mithrel/folio/pkg/api"
)

// DefaultTTL is how long a loaded template stays fresh.
const DefaultTTL = 5 * time.Second

// Cache maps template ids to documents. Expired entries behave as absent.
type Cache interface {
	Get(ctx context.Context, id string) (*api.Template, bool, error) // tpl, found, err
	Set(ctx context.Context, t *api.Template) error
	Delete(ctx context.Context, id string) error
}

type entry struct {
	tpl     *api.Template
	expires time.Time
}

// Memory is an in-process Cache. Values are copied on the way in and out.
type Memory struct {
	mu      sync.Mutex
	ttl     time.Duration
	now     func() time.Time
	entries map[string]entry
}

var _ Cache = (*Memory)(nil)

type MemoryOption func(*Memory)

// WithClock replaces time.Now, for tests.
func WithClock(now func() time.Time) MemoryOption {
	return func(m *Memory) { m.now = now }
}

func NewMemory(ttl time.Duration, opts ...MemoryOption) *Memory {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	m := &Memory{ttl: ttl, now: time.Now, entries: map[string]entry{}}
	for _, o := range opts {
		o(m)
	}
	return m
}

func (m *Memory) Get(_ context.Context, id string) (*api.Template, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	e, ok := m.entries[id]
	if !ok {
		return nil, false, nil
	}
	if !m.now().Before(e.expires) {
		delete(m.entries, id)
		return nil, false, nil
	}
	return e.tpl.Clone(), true, nil
}

func (m *Memory) Set(_ context.Context, t *api.Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[t.ID] = entry{tpl: t.Clone(), expires: m.now().Add(m.ttl)}
	return nil
}

func (m *Memory) Delete(_ context.Context, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, id)
	return nil
}

// Len counts entries including expired ones not yet evicted.
func (m *Memory) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.entries)
}
