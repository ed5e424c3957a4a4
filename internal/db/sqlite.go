package db

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	_ "modernc.org/sqlite"

	"github.com/mithrel/folio/pkg/api"
)

type sqliteStore struct{ db *sql.DB }

var _ Store = (*sqliteStore)(nil)

// openSQLite connects with the modernc.org/sqlite driver and ensures the
// schema exists.
func openSQLite(ctx context.Context, dsn string) (*sqliteStore, error) {
	path := strings.TrimPrefix(dsn, "sqlite://")
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			path = filepath.Join(home, path[2:])
		}
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		return nil, err
	}
	dbh, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if _, err := dbh.ExecContext(ctx, `PRAGMA journal_mode=WAL;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if _, err := dbh.ExecContext(ctx, `PRAGMA foreign_keys=ON;`); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	if err := migrate(ctx, dbh); err != nil {
		_ = dbh.Close()
		return nil, err
	}
	return &sqliteStore{db: dbh}, nil
}

func migrate(ctx context.Context, db *sql.DB) error {
	_, err := db.ExecContext(ctx, `
CREATE TABLE IF NOT EXISTS templates (
  id TEXT PRIMARY KEY,
  name TEXT NOT NULL,
  category TEXT NOT NULL,
  is_public INTEGER NOT NULL DEFAULT 0,
  created_by TEXT NOT NULL DEFAULT '',
  version INTEGER NOT NULL,
  revision INTEGER NOT NULL,
  created_at INTEGER NOT NULL,
  updated_at INTEGER NOT NULL,
  doc BLOB NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_templates_updated ON templates(updated_at DESC, id);
CREATE INDEX IF NOT EXISTS idx_templates_category ON templates(category);
-- Tags projection for list filters
CREATE TABLE IF NOT EXISTS template_tags (
  template_id TEXT NOT NULL,
  tag TEXT NOT NULL COLLATE NOCASE,
  PRIMARY KEY(template_id, tag),
  FOREIGN KEY(template_id) REFERENCES templates(id) ON DELETE CASCADE
);
CREATE INDEX IF NOT EXISTS idx_template_tags_tag ON template_tags(tag, template_id);
`)
	return err
}

func (s *sqliteStore) Close() error { return s.db.Close() }

func (s *sqliteStore) Create(ctx context.Context, t api.Template) (api.Template, error) {
	if t.ID == "" {
		return api.Template{}, ErrConflict
	}
	if t.Version == 0 {
		t.Version = 1
	}
	doc, err := json.Marshal(t)
	if err != nil {
		return api.Template{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return api.Template{}, err
	}
	defer tx.Rollback()

	if _, err = tx.ExecContext(ctx, `INSERT INTO templates(id, name, category, is_public, created_by, version, revision, created_at, updated_at, doc) VALUES(?,?,?,?,?,?,?,?,?,?)`,
		t.ID, t.Name, t.Category, t.IsPublic, t.CreatedBy, t.Version, t.Revision,
		t.CreatedAt.UnixNano(), t.UpdatedAt.UnixNano(), doc); err != nil {
		if strings.Contains(err.Error(), "UNIQUE") {
			err = ErrConflict
		}
		return api.Template{}, err
	}
	if err = upsertTemplateTags(ctx, tx, t.ID, t.Tags); err != nil {
		return api.Template{}, err
	}
	if err := tx.Commit(); err != nil {
		return api.Template{}, err
	}
	return t, nil
}

func (s *sqliteStore) Get(ctx context.Context, id string) (api.Template, error) {
	return getTemplate(ctx, s.db, id)
}

type queryer interface {
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

func getTemplate(ctx context.Context, q queryer, id string) (api.Template, error) {
	var doc []byte
	err := q.QueryRowContext(ctx, `SELECT doc FROM templates WHERE id=?`, id).Scan(&doc)
	if errors.Is(err, sql.ErrNoRows) {
		return api.Template{}, ErrNotFound
	}
	if err != nil {
		return api.Template{}, err
	}
	var t api.Template
	if err := json.Unmarshal(doc, &t); err != nil {
		return api.Template{}, err
	}
	return t, nil
}

func (s *sqliteStore) Update(ctx context.Context, t api.Template) (api.Template, error) {
	return s.update(ctx, t, nil)
}

func (s *sqliteStore) UpdateCAS(ctx context.Context, t api.Template, ifVersion int64) (api.Template, error) {
	return s.update(ctx, t, &ifVersion)
}

func (s *sqliteStore) update(ctx context.Context, t api.Template, ifVersion *int64) (api.Template, error) {
	doc, err := json.Marshal(t)
	if err != nil {
		return api.Template{}, err
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return api.Template{}, err
	}
	defer tx.Rollback()

	q := `UPDATE templates SET name=?, category=?, is_public=?, created_by=?, version=?, revision=?, updated_at=?, doc=? WHERE id=?`
	args := []any{t.Name, t.Category, t.IsPublic, t.CreatedBy, t.Version, t.Revision, t.UpdatedAt.UnixNano(), doc, t.ID}
	if ifVersion != nil {
		q += ` AND version=?`
		args = append(args, *ifVersion)
	}
	res, err := tx.ExecContext(ctx, q, args...)
	if err != nil {
		return api.Template{}, err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		if _, err := getTemplate(ctx, tx, t.ID); err != nil {
			return api.Template{}, err
		}
		return api.Template{}, ErrConflict
	}

	if _, err = tx.ExecContext(ctx, `DELETE FROM template_tags WHERE template_id=?`, t.ID); err != nil {
		return api.Template{}, err
	}
	if err = upsertTemplateTags(ctx, tx, t.ID, t.Tags); err != nil {
		return api.Template{}, err
	}
	out, err := getTemplate(ctx, tx, t.ID)
	if err != nil {
		return api.Template{}, err
	}
	if err := tx.Commit(); err != nil {
		return api.Template{}, err
	}
	return out, nil
}

func (s *sqliteStore) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM templates WHERE id=?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ErrNotFound
	}
	return nil
}

// List returns one page of templates and the total number matching q.
func (s *sqliteStore) List(ctx context.Context, q ListQuery) ([]api.Template, int, error) {
	q = q.Normalize()
	where, args := buildWhere(q)

	var total int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM templates t`+where, args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	sqlq := `SELECT t.doc FROM templates t` + where + "\n" + orderClause(q) + "\nLIMIT ? OFFSET ?"
	args = append(args, q.Limit, q.Offset())
	out, err := s.scanDocs(ctx, sqlq, args...)
	if err != nil {
		return nil, 0, err
	}
	return out, total, nil
}

func (s *sqliteStore) All(ctx context.Context) ([]api.Template, error) {
	return s.scanDocs(ctx, `SELECT doc FROM templates ORDER BY updated_at DESC, id DESC`)
}

func (s *sqliteStore) scanDocs(ctx context.Context, q string, args ...any) ([]api.Template, error) {
	rows, err := s.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := []api.Template{}
	for rows.Next() {
		var doc []byte
		if err := rows.Scan(&doc); err != nil {
			return nil, err
		}
		var t api.Template
		if err := json.Unmarshal(doc, &t); err != nil {
			return nil, err
		}
		out = append(out, t)
	}
	return out, rows.Err()
}

func buildWhere(q ListQuery) (string, []any) {
	conds := []string{}
	args := []any{}
	if q.Category != "" {
		conds = append(conds, "t.category = ?")
		args = append(args, q.Category)
	}
	if q.IsPublic != nil {
		conds = append(conds, "t.is_public = ?")
		args = append(args, *q.IsPublic)
	}
	if q.CreatedBy != "" {
		conds = append(conds, "t.created_by = ?")
		args = append(args, q.CreatedBy)
	}
	if l := len(q.Tags); l > 0 {
		ph := make([]string, 0, l)
		for _, tag := range q.Tags {
			ph = append(ph, "?")
			args = append(args, tag)
		}
		conds = append(conds, "EXISTS (SELECT 1 FROM template_tags tt WHERE tt.template_id = t.id AND tt.tag IN ("+strings.Join(ph, ",")+"))")
	}
	if len(conds) == 0 {
		return "", args
	}
	return "\nWHERE " + strings.Join(conds, " AND "), args
}

func orderClause(q ListQuery) string {
	dir := "DESC"
	if q.SortOrder == "asc" {
		dir = "ASC"
	}
	col := "t.updated_at"
	switch q.SortBy {
	case "name":
		col = "t.name COLLATE NOCASE"
	case "createdAt":
		col = "t.created_at"
	}
	return "ORDER BY " + col + " " + dir + ", t.id " + dir
}

func upsertTemplateTags(ctx context.Context, tx *sql.Tx, id string, tags []string) error {
	for _, tag := range uniqueStrings(tags) {
		if _, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO template_tags(template_id, tag) VALUES(?,?)`, id, tag); err != nil {
			return err
		}
	}
	return nil
}
