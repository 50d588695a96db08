package store

import (
	"context"
	"database/sql"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"strconv"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
	_ "modernc.org/sqlite"

	"github.com/rcliao/pressplan/internal/model"
)

const (
	taxonomyTag      = "tag"
	taxonomyCategory = "category"
)

// SQLiteStore implements Store using SQLite.
type SQLiteStore struct {
	db *sql.DB

	mu      sync.Mutex
	entropy *rand.Rand
}

// NewSQLiteStore opens or creates a SQLite database at the given path.
func NewSQLiteStore(dbPath string) (*SQLiteStore, error) {
	dir := filepath.Dir(dbPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create db dir: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(wal)&_pragma=foreign_keys(on)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}

	s := &SQLiteStore{
		db:      db,
		entropy: rand.New(rand.NewSource(time.Now().UnixNano())),
	}

	if err := s.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return s, nil
}

func (s *SQLiteStore) newID(t time.Time) string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return ulid.MustNew(ulid.Timestamp(t), s.entropy).String()
}

func (s *SQLiteStore) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS settings (
		key   TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS posts (
		id   TEXT PRIMARY KEY,
		seq  INTEGER NOT NULL,
		uri  TEXT NOT NULL,
		date TEXT
	);
	CREATE INDEX IF NOT EXISTS idx_posts_seq ON posts(seq);

	CREATE TABLE IF NOT EXISTS pages (
		id            TEXT PRIMARY KEY,
		seq           INTEGER NOT NULL,
		uri           TEXT NOT NULL,
		is_posts_page INTEGER NOT NULL DEFAULT 0,
		is_front_page INTEGER NOT NULL DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS terms (
		taxonomy TEXT NOT NULL,
		id       TEXT NOT NULL,
		seq      INTEGER NOT NULL,
		uri      TEXT NOT NULL,
		slug     TEXT NOT NULL,
		name     TEXT,
		count    INTEGER NOT NULL DEFAULT 0,
		PRIMARY KEY (taxonomy, id)
	);

	CREATE TABLE IF NOT EXISTS term_posts (
		taxonomy TEXT NOT NULL,
		term_id  TEXT NOT NULL,
		seq      INTEGER NOT NULL,
		post_id  TEXT NOT NULL,
		PRIMARY KEY (taxonomy, term_id, seq),
		FOREIGN KEY (taxonomy, term_id) REFERENCES terms(taxonomy, id) ON DELETE CASCADE
	);

	CREATE TABLE IF NOT EXISTS runs (
		id             TEXT PRIMARY KEY,
		created_at     TEXT NOT NULL,
		source         TEXT NOT NULL,
		archive        TEXT NOT NULL,
		posts_per_page INTEGER NOT NULL,
		page_count     INTEGER NOT NULL
	);
	CREATE INDEX IF NOT EXISTS idx_runs_created ON runs(created_at DESC);

	CREATE TABLE IF NOT EXISTS run_pages (
		run_id   TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
		seq      INTEGER NOT NULL,
		path     TEXT NOT NULL,
		template TEXT NOT NULL,
		context  TEXT NOT NULL,
		PRIMARY KEY (run_id, seq)
	);
	`
	_, err := s.db.Exec(schema)
	return err
}

// SaveContent replaces the snapshot in a single transaction.
func (s *SQLiteStore) SaveContent(ctx context.Context, c *model.Content, origin string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	for _, table := range []string{"term_posts", "terms", "pages", "posts", "settings"} {
		if _, err := tx.ExecContext(ctx, `DELETE FROM `+table); err != nil {
			return fmt.Errorf("clear %s: %w", table, err)
		}
	}

	meta := map[string]string{
		"posts_per_page": strconv.Itoa(c.Settings.PostsPerPage),
		"snapshot_at":    time.Now().UTC().Format(time.RFC3339),
		"origin":         origin,
	}
	for k, v := range meta {
		if _, err := tx.ExecContext(ctx, `INSERT INTO settings (key, value) VALUES (?, ?)`, k, v); err != nil {
			return fmt.Errorf("insert setting: %w", err)
		}
	}

	for i, p := range c.Posts {
		_, err := tx.ExecContext(ctx, `INSERT INTO posts (id, seq, uri, date) VALUES (?, ?, ?, ?)`,
			p.ID, i, p.URI, p.Date)
		if err != nil {
			return fmt.Errorf("insert post %s: %w", p.ID, err)
		}
	}

	for i, p := range c.Pages {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO pages (id, seq, uri, is_posts_page, is_front_page) VALUES (?, ?, ?, ?, ?)`,
			p.ID, i, p.URI, p.IsPostsPage, p.IsFrontPage)
		if err != nil {
			return fmt.Errorf("insert page %s: %w", p.ID, err)
		}
	}

	if err := insertTerms(ctx, tx, taxonomyTag, c.Tags); err != nil {
		return err
	}
	if err := insertTerms(ctx, tx, taxonomyCategory, c.Categories); err != nil {
		return err
	}

	return tx.Commit()
}

func insertTerms(ctx context.Context, tx *sql.Tx, taxonomy string, terms []model.Term) error {
	for i, t := range terms {
		_, err := tx.ExecContext(ctx,
			`INSERT INTO terms (taxonomy, id, seq, uri, slug, name, count) VALUES (?, ?, ?, ?, ?, ?, ?)`,
			taxonomy, t.ID, i, t.URI, t.Slug, t.Name, t.Count)
		if err != nil {
			return fmt.Errorf("insert %s %s: %w", taxonomy, t.ID, err)
		}
		for j, postID := range t.PostIDs {
			_, err := tx.ExecContext(ctx,
				`INSERT INTO term_posts (taxonomy, term_id, seq, post_id) VALUES (?, ?, ?, ?)`,
				taxonomy, t.ID, j, postID)
			if err != nil {
				return fmt.Errorf("insert %s posts: %w", taxonomy, err)
			}
		}
	}
	return nil
}

func (s *SQLiteStore) setting(ctx context.Context, key string) (string, error) {
	var v string
	err := s.db.QueryRowContext(ctx, `SELECT value FROM settings WHERE key = ?`, key).Scan(&v)
	if err == sql.ErrNoRows {
		return "", ErrNoSnapshot
	}
	return v, err
}

func (s *SQLiteStore) Settings(ctx context.Context) (model.ReadingSettings, error) {
	v, err := s.setting(ctx, "posts_per_page")
	if err != nil {
		return model.ReadingSettings{}, err
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return model.ReadingSettings{}, fmt.Errorf("stored posts_per_page %q: %w", v, err)
	}
	return model.ReadingSettings{PostsPerPage: n}, nil
}

func (s *SQLiteStore) Posts(ctx context.Context) ([]model.Post, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT id, uri, COALESCE(date, '') FROM posts ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	posts := []model.Post{}
	for rows.Next() {
		var p model.Post
		if err := rows.Scan(&p.ID, &p.URI, &p.Date); err != nil {
			return nil, err
		}
		posts = append(posts, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	model.LinkSiblings(posts)
	return posts, nil
}

func (s *SQLiteStore) Pages(ctx context.Context) ([]model.Page, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, uri, is_posts_page, is_front_page FROM pages ORDER BY seq`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	pages := []model.Page{}
	for rows.Next() {
		var p model.Page
		if err := rows.Scan(&p.ID, &p.URI, &p.IsPostsPage, &p.IsFrontPage); err != nil {
			return nil, err
		}
		pages = append(pages, p)
	}
	return pages, rows.Err()
}

func (s *SQLiteStore) Tags(ctx context.Context) ([]model.Term, error) {
	return s.terms(ctx, taxonomyTag)
}

func (s *SQLiteStore) Categories(ctx context.Context) ([]model.Term, error) {
	return s.terms(ctx, taxonomyCategory)
}

func (s *SQLiteStore) terms(ctx context.Context, taxonomy string) ([]model.Term, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, uri, slug, COALESCE(name, ''), count FROM terms WHERE taxonomy = ? ORDER BY seq`, taxonomy)
	if err != nil {
		return nil, err
	}
	terms := []model.Term{}
	index := make(map[string]int)
	for rows.Next() {
		var t model.Term
		if err := rows.Scan(&t.ID, &t.URI, &t.Slug, &t.Name, &t.Count); err != nil {
			rows.Close()
			return nil, err
		}
		index[t.ID] = len(terms)
		terms = append(terms, t)
	}
	rows.Close()
	if err := rows.Err(); err != nil {
		return nil, err
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT term_id, post_id FROM term_posts WHERE taxonomy = ? ORDER BY term_id, seq`, taxonomy)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	for rows.Next() {
		var termID, postID string
		if err := rows.Scan(&termID, &postID); err != nil {
			return nil, err
		}
		if i, ok := index[termID]; ok {
			terms[i].PostIDs = append(terms[i].PostIDs, postID)
		}
	}
	return terms, rows.Err()
}

func (s *SQLiteStore) Close() error {
	return s.db.Close()
}
