package db

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/mithrel/folio/pkg/api"
)

// Store persists templates for the reference server.
type Store interface {
	Create(ctx context.Context, t api.Template) (api.Template, error)
	Get(ctx context.Context, id string) (api.Template, error)
	// Update replaces the stored document unconditionally.
	Update(ctx context.Context, t api.Template) (api.Template, error)
	// UpdateCAS replaces the document only while its stored version equals
	// ifVersion.
	UpdateCAS(ctx context.Context, t api.Template, ifVersion int64) (api.Template, error)
	Delete(ctx context.Context, id string) error
	List(ctx context.Context, q ListQuery) ([]api.Template, int, error) // page, total, err
	All(ctx context.Context) ([]api.Template, error)
	Close() error
}

var (
	ErrNotFound = errors.New("not found")
	ErrConflict = errors.New("conflict")
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

// ListQuery filters and pages the template list. Tags match when the
// template carries any of them.
type ListQuery struct {
	Category  string
	Tags      []string
	IsPublic  *bool
	CreatedBy string
	Page      int
	Limit     int
	SortBy    string // name | createdAt | updatedAt
	SortOrder string // asc | desc
}

// Normalize applies defaults: page 1, limit 10, newest update first.
func (q ListQuery) Normalize() ListQuery {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = DefaultPageSize
	}
	q.Limit = min(q.Limit, MaxPageSize)
	switch q.SortBy {
	case "name", "createdAt", "updatedAt":
	default:
		q.SortBy = "updatedAt"
	}
	if q.SortOrder != "asc" {
		q.SortOrder = "desc"
	}
	q.Tags = uniqueStrings(q.Tags)
	return q
}

func (q ListQuery) Offset() int { return (q.Page - 1) * q.Limit }

// Open returns a Store for sqlite://path or mem://.
func Open(ctx context.Context, dsn string) (Store, error) {
	switch {
	case strings.HasPrefix(dsn, "sqlite://"):
		return openSQLite(ctx, dsn)
	case dsn == "mem://" || dsn == "":
		return newMemStore(), nil
	default:
		return nil, fmt.Errorf("db: unsupported dsn %q", dsn)
	}
}

func uniqueStrings(in []string) []string {
	if len(in) == 0 {
		return nil
	}
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	return out
}
