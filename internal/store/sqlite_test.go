package store

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/rcliao/pressplan/internal/model"
)

func newTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dir := t.TempDir()
	s, err := NewSQLiteStore(filepath.Join(dir, "test.db"))
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleContent() *model.Content {
	posts := []model.Post{
		{ID: "p3", URI: "/third/", Date: "2024-03-01T00:00:00"},
		{ID: "p2", URI: "/second/", Date: "2024-02-01T00:00:00"},
		{ID: "p1", URI: "/first/", Date: "2024-01-01T00:00:00"},
	}
	model.LinkSiblings(posts)
	return &model.Content{
		Settings: model.ReadingSettings{PostsPerPage: 2},
		Posts:    posts,
		Pages: []model.Page{
			{ID: "home", URI: "/", IsFrontPage: true},
			{ID: "blog", URI: "/blog/", IsPostsPage: true},
		},
		Tags: []model.Term{
			{ID: "t-go", URI: "/tag/go/", Slug: "go", Name: "Go", Count: 2, PostIDs: []string{"p3", "p1"}},
			{ID: "t-empty", URI: "/tag/empty/", Slug: "empty", Count: 0},
		},
		Categories: []model.Term{
			{ID: "c-misc", URI: "/category/misc/", Slug: "misc", Count: 3, PostIDs: []string{"p3", "p2", "p1"}},
		},
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	if err := s.SaveContent(ctx, sampleContent(), "file:content.json"); err != nil {
		t.Fatalf("save: %v", err)
	}

	got, err := s.ExportContent(ctx)
	if err != nil {
		t.Fatalf("export: %v", err)
	}
	if got.Settings.PostsPerPage != 2 {
		t.Errorf("expected 2 posts per page, got %d", got.Settings.PostsPerPage)
	}
	if len(got.Posts) != 3 || got.Posts[0].ID != "p3" || got.Posts[2].ID != "p1" {
		t.Fatalf("posts out of order: %+v", got.Posts)
	}
	if got.Posts[1].PreviousID != "p3" || got.Posts[1].NextID != "p1" {
		t.Errorf("siblings not relinked: %+v", got.Posts[1])
	}
	if len(got.Pages) != 2 || !got.Pages[1].IsPostsPage || !got.Pages[0].IsFrontPage {
		t.Errorf("unexpected pages %+v", got.Pages)
	}
	if len(got.Tags) != 2 || got.Tags[0].Slug != "go" {
		t.Fatalf("unexpected tags %+v", got.Tags)
	}
	if ids := got.Tags[0].PostIDs; len(ids) != 2 || ids[0] != "p3" || ids[1] != "p1" {
		t.Errorf("tag membership order lost: %v", ids)
	}
	if len(got.Tags[1].PostIDs) != 0 {
		t.Errorf("expected no posts for empty tag, got %v", got.Tags[1].PostIDs)
	}
	if len(got.Categories) != 1 || len(got.Categories[0].PostIDs) != 3 {
		t.Errorf("unexpected categories %+v", got.Categories)
	}

	info, err := s.Snapshot(ctx)
	if err != nil {
		t.Fatalf("snapshot info: %v", err)
	}
	if info.Origin != "file:content.json" || info.TakenAt.IsZero() {
		t.Errorf("unexpected snapshot info %+v", info)
	}
}

func TestSaveContentReplaces(t *testing.T) {
	ctx := context.Background()
	s := newTestStore(t)

	s.SaveContent(ctx, sampleContent(), "first")
	next := &model.Content{
		Settings: model.ReadingSettings{PostsPerPage: 5},
		Posts:    []model.Post{{ID: "only", URI: "/only/"}},
	}
	if err := s.SaveContent(ctx, next, "second"); err != nil {
		t.Fatalf("save: %v", err)
	}

	posts, _ := s.Posts(ctx)
	if len(posts) != 1 || posts[0].ID != "only" {
		t.Errorf("expected snapshot to be replaced, got %+v", posts)
	}
	tags, _ := s.Tags(ctx)
	if len(tags) != 0 {
		t.Errorf("expected no tags, got %+v", tags)
	}
	settings, _ := s.Settings(ctx)
	if settings.PostsPerPage != 5 {
		t.Errorf("expected 5, got %d", settings.PostsPerPage)
	}
}

func TestNoSnapshot(t *testing.T) {
	s := newTestStore(t)
	_, err := s.Settings(context.Background())
	if !errors.Is(err, ErrNoSnapshot) {
		t.Errorf("expected ErrNoSnapshot, got %v", err)
	}
}

func TestDBPathCreation(t *testing.T) {
	dir := t.TempDir()
	dbPath := filepath.Join(dir, "sub", "dir", "test.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatalf("create store: %v", err)
	}
	s.Close()

	if _, err := os.Stat(dbPath); os.IsNotExist(err) {
		t.Error("expected db file to be created")
	}
}

func TestStats(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "stats.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	s.SaveContent(ctx, sampleContent(), "test")
	s.RecordRun(ctx, RunParams{Source: "db", Archive: "root", PostsPerPage: 2, Pages: samplePages()})

	st, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats: %v", err)
	}
	if st.Posts != 3 || st.Pages != 2 || st.Tags != 2 || st.Categories != 1 {
		t.Errorf("unexpected counts %+v", st)
	}
	if st.Runs != 1 || st.LastRun == "" {
		t.Errorf("expected one run, got %d (%q)", st.Runs, st.LastRun)
	}
	if st.Snapshot == nil || st.Snapshot.Origin != "test" {
		t.Errorf("unexpected snapshot %+v", st.Snapshot)
	}
	if len(st.Templates) != 2 || st.Templates[0].Template != "post" || st.Templates[0].Pages != 2 {
		t.Errorf("unexpected template counts %+v", st.Templates)
	}
	if st.DBSizeBytes == 0 {
		t.Error("expected non-zero db size")
	}
}

func TestStatsEmpty(t *testing.T) {
	ctx := context.Background()
	dbPath := filepath.Join(t.TempDir(), "empty.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	defer s.Close()

	st, err := s.Stats(ctx, dbPath)
	if err != nil {
		t.Fatalf("stats on empty db: %v", err)
	}
	if st.Snapshot != nil || st.Runs != 0 || st.LastRun != "" || len(st.Templates) != 0 {
		t.Errorf("expected empty stats, got %+v", st)
	}
}

func TestStatsClosedDB(t *testing.T) {
	dbPath := filepath.Join(t.TempDir(), "closed.db")
	s, err := NewSQLiteStore(dbPath)
	if err != nil {
		t.Fatal(err)
	}
	s.Close()

	if _, err := s.Stats(context.Background(), dbPath); err == nil {
		t.Error("expected an error from a closed database")
	}
}
