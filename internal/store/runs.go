package store

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/rcliao/pressplan/internal/model"
)

// RecordRun appends a run and its descriptors to the ledger.
func (s *SQLiteStore) RecordRun(ctx context.Context, p RunParams) (*model.Run, error) {
	now := time.Now().UTC()
	run := &model.Run{
		ID:           s.newID(now),
		CreatedAt:    now,
		Source:       p.Source,
		Archive:      p.Archive,
		PostsPerPage: p.PostsPerPage,
		PageCount:    len(p.Pages),
		Pages:        p.Pages,
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx,
		`INSERT INTO runs (id, created_at, source, archive, posts_per_page, page_count)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		run.ID, now.Format(timeLayout), run.Source, run.Archive, run.PostsPerPage, run.PageCount)
	if err != nil {
		return nil, fmt.Errorf("insert run: %w", err)
	}

	for i, d := range p.Pages {
		vars, err := json.Marshal(d.Context.Vars(d.Kind))
		if err != nil {
			return nil, fmt.Errorf("encode context for %s: %w", d.Path, err)
		}
		_, err = tx.ExecContext(ctx,
			`INSERT INTO run_pages (run_id, seq, path, template, context) VALUES (?, ?, ?, ?, ?)`,
			run.ID, i, d.Path, d.Kind.String(), string(vars))
		if err != nil {
			return nil, fmt.Errorf("insert run page: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return run, nil
}

// Fixed-width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (model.Run, error) {
	var r model.Run
	var createdAt string
	if err := sc.Scan(&r.ID, &createdAt, &r.Source, &r.Archive, &r.PostsPerPage, &r.PageCount); err != nil {
		return r, err
	}
	t, err := time.Parse(timeLayout, createdAt)
	if err != nil {
		return r, fmt.Errorf("parse created_at %q: %w", createdAt, err)
	}
	r.CreatedAt = t
	return r, nil
}

const runColumns = `id, created_at, source, archive, posts_per_page, page_count`

func (s *SQLiteStore) ListRuns(ctx context.Context, p ListRunsParams) ([]model.Run, error) {
	limit := p.Limit
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	runs := []model.Run{}
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// GetRun loads a run by id or unique id prefix, including its pages.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*model.Run, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+runColumns+` FROM runs WHERE substr(id, 1, length(?)) = ? ORDER BY id LIMIT 2`, id, id)
	if err != nil {
		return nil, err
	}
	var matches []model.Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		matches = append(matches, r)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	switch {
	case len(matches) == 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case len(matches) > 1 && matches[0].ID != id:
		return nil, fmt.Errorf("ambiguous run id prefix %q", id)
	}
	run := matches[0]

	pages, err := s.runPages(ctx, run.ID)
	if err != nil {
		return nil, err
	}
	run.Pages = pages
	return &run, nil
}

func (s *SQLiteStore) runPages(ctx context.Context, runID string) ([]model.PageDescriptor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT path, template, context FROM run_pages WHERE run_id = ? ORDER BY seq`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := []model.PageDescriptor{}
	for rows.Next() {
		var path, template, vars string
		if err := rows.Scan(&path, &template, &vars); err != nil {
			return nil, err
		}
		doc, err := json.Marshal(struct {
			Path     string          `json:"path"`
			Template string          `json:"template"`
			Context  json.RawMessage `json:"context"`
		}{path, template, json.RawMessage(vars)})
		if err != nil {
			return nil, err
		}
		var d model.PageDescriptor
		if err := json.Unmarshal(doc, &d); err != nil {
			return nil, fmt.Errorf("decode page %s: %w", path, err)
		}
		pages = append(pages, d)
	}
	return pages, rows.Err()
}

// PruneRuns keeps the newest keep runs and deletes the rest.
func (s *SQLiteStore) PruneRuns(ctx context.Context, keep int) (int, error) {
	if keep < 0 {
		return 0, fmt.Errorf("keep must be non-negative, got %d", keep)
	}
	res, err := s.db.ExecContext(ctx,
		`DELETE FROM runs WHERE id NOT IN (
			SELECT id FROM runs ORDER BY created_at DESC, id DESC LIMIT ?
		)`, keep)
	if err != nil {
		return 0, err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

var _ Store = (*SQLiteStore)(nil)
