package source

import (
	"context"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSource(t *testing.T) {
	path := filepath.Join(t.TempDir(), "content.json")
	doc := `{
  "settings": {"posts_per_page": 3},
  "posts": [{"id": "a", "uri": "/a/"}, {"id": "b", "uri": "/b/"}],
  "pages": [{"id": "p", "uri": "/blog/", "is_posts_page": true}],
  "tags": [{"id": "t", "uri": "/tag/x/", "slug": "x", "count": 1, "post_ids": ["a"]}],
  "categories": []
}`
	if err := os.WriteFile(path, []byte(doc), 0o644); err != nil {
		t.Fatal(err)
	}

	src, err := NewFileSource(path)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	c, err := Load(context.Background(), src)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Settings.PostsPerPage != 3 {
		t.Errorf("expected 3 posts per page, got %d", c.Settings.PostsPerPage)
	}
	if c.Posts[0].NextID != "b" || c.Posts[1].PreviousID != "a" {
		t.Errorf("siblings not linked: %+v", c.Posts)
	}
	if !c.Pages[0].IsPostsPage || c.Tags[0].PostIDs[0] != "a" {
		t.Errorf("unexpected content %+v", c)
	}
}

func TestFileSource_Missing(t *testing.T) {
	if _, err := NewFileSource(filepath.Join(t.TempDir(), "nope.json")); err == nil {
		t.Error("expected error for missing file")
	}
}
