package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
)

// Stats holds database statistics.
type Stats struct {
	DBPath      string        `json:"db_path"`
	DBSizeBytes int64         `json:"db_size_bytes"`
	Snapshot    *SnapshotInfo `json:"snapshot,omitempty"`
	Posts       int           `json:"posts"`
	Pages       int           `json:"pages"`
	Tags        int           `json:"tags"`
	Categories  int           `json:"categories"`
	Runs        int           `json:"runs"`
	LastRun     string        `json:"last_run,omitempty"`
	Templates   []KindStats   `json:"templates"`
}

// KindStats counts pages per template across the ledger.
type KindStats struct {
	Template string `json:"template"`
	Pages    int    `json:"pages"`
}

// Stats returns database statistics.
func (s *SQLiteStore) Stats(ctx context.Context, dbPath string) (*Stats, error) {
	st := &Stats{DBPath: dbPath, Templates: []KindStats{}}

	// DB file size
	if info, err := os.Stat(dbPath); err == nil {
		st.DBSizeBytes = info.Size()
	}

	snap, err := s.Snapshot(ctx)
	switch {
	case err == nil:
		st.Snapshot = snap
	case !errors.Is(err, ErrNoSnapshot):
		return nil, err
	}

	counts := []struct {
		dst   *int
		query string
		args  []any
	}{
		{&st.Posts, `SELECT COUNT(*) FROM posts`, nil},
		{&st.Pages, `SELECT COUNT(*) FROM pages`, nil},
		{&st.Tags, `SELECT COUNT(*) FROM terms WHERE taxonomy = ?`, []any{taxonomyTag}},
		{&st.Categories, `SELECT COUNT(*) FROM terms WHERE taxonomy = ?`, []any{taxonomyCategory}},
		{&st.Runs, `SELECT COUNT(*) FROM runs`, nil},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("count: %w", err)
		}
	}

	err = s.db.QueryRowContext(ctx, `SELECT id FROM runs ORDER BY created_at DESC, id DESC LIMIT 1`).Scan(&st.LastRun)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("last run: %w", err)
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT template, COUNT(*) AS cnt
		FROM run_pages GROUP BY template ORDER BY cnt DESC, template`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var ks KindStats
		if err := rows.Scan(&ks.Template, &ks.Pages); err != nil {
			return nil, err
		}
		st.Templates = append(st.Templates, ks)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return st, nil
}
