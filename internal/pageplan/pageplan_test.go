package pageplan

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/rcliao/pressplan/internal/model"
)

func makePosts(n int) []model.Post {
	posts := make([]model.Post, n)
	for i := range posts {
		posts[i] = model.Post{ID: fmt.Sprintf("post-%d", i), URI: fmt.Sprintf("/p/%d/", i)}
	}
	model.LinkSiblings(posts)
	return posts
}

func deref(s *string) string {
	if s == nil {
		return "<nil>"
	}
	return *s
}

func TestBuildArchivePages_Example(t *testing.T) {
	got, err := BuildArchivePages(makePosts(25), 10, "/")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 pages, got %d", len(got))
	}

	wantPaths := []string{"/", "/page/2", "/page/3"}
	for i, d := range got {
		if d.Path != wantPaths[i] {
			t.Errorf("page %d: expected path %q, got %q", i+1, wantPaths[i], d.Path)
		}
		if d.Context.Offset != i*10 {
			t.Errorf("page %d: expected offset %d, got %d", i+1, i*10, d.Context.Offset)
		}
		if d.Context.PostsPerPage != 10 {
			t.Errorf("page %d: expected postsPerPage 10, got %d", i+1, d.Context.PostsPerPage)
		}
		if d.Kind != model.KindPostArchive {
			t.Errorf("page %d: expected post-archive, got %s", i+1, d.Kind)
		}
	}

	if deref(got[0].Context.NextPagePath) != "/page/2" {
		t.Errorf("expected first next=/page/2, got %s", deref(got[0].Context.NextPagePath))
	}
	if got[0].Context.PreviousPagePath != nil {
		t.Errorf("expected first previous nil, got %s", deref(got[0].Context.PreviousPagePath))
	}
	if deref(got[2].Context.PreviousPagePath) != "/page/2" {
		t.Errorf("expected last previous=/page/2, got %s", deref(got[2].Context.PreviousPagePath))
	}
	if got[2].Context.NextPagePath != nil {
		t.Errorf("expected last next nil, got %s", deref(got[2].Context.NextPagePath))
	}
}

func TestBuildArchivePages_CountAndLinks(t *testing.T) {
	for _, n := range []int{1, 2, 9, 10, 11, 30, 31, 97} {
		for _, size := range []int{1, 3, 10, 50} {
			got, err := BuildArchivePages(makePosts(n), size, "/blog/")
			if err != nil {
				t.Fatalf("n=%d size=%d: %v", n, size, err)
			}
			want := (n + size - 1) / size
			if len(got) != want {
				t.Errorf("n=%d size=%d: expected %d pages, got %d", n, size, want, len(got))
				continue
			}
			for k, d := range got {
				if d.Context.Offset != k*size {
					t.Errorf("n=%d size=%d page %d: offset %d", n, size, k+1, d.Context.Offset)
				}
				if k+1 < len(got) && deref(d.Context.NextPagePath) != got[k+1].Path {
					t.Errorf("n=%d size=%d page %d: next %s, want %s", n, size, k+1, deref(d.Context.NextPagePath), got[k+1].Path)
				}
				if k > 0 && deref(d.Context.PreviousPagePath) != got[k-1].Path {
					t.Errorf("n=%d size=%d page %d: previous %s, want %s", n, size, k+1, deref(d.Context.PreviousPagePath), got[k-1].Path)
				}
			}
			if got[0].Context.PreviousPagePath != nil || got[len(got)-1].Context.NextPagePath != nil {
				t.Errorf("n=%d size=%d: end links should be nil", n, size)
			}
		}
	}
}

func TestBuildArchivePages_PostsPageBase(t *testing.T) {
	got, err := BuildArchivePages(makePosts(5), 2, "/blog/")
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	want := []string{"/blog/", "/blog/page/2", "/blog/page/3"}
	for i, d := range got {
		if d.Path != want[i] {
			t.Errorf("expected %q, got %q", want[i], d.Path)
		}
	}
}

func TestBuildArchivePages_ConfigError(t *testing.T) {
	for _, n := range []int{0, -1} {
		_, err := BuildArchivePages(makePosts(3), n, "/")
		var cfgErr *ConfigError
		if !errors.As(err, &cfgErr) {
			t.Fatalf("postsPerPage=%d: expected ConfigError, got %v", n, err)
		}
		if cfgErr.Value != n {
			t.Errorf("expected value %d, got %d", n, cfgErr.Value)
		}
	}
}

func TestBuildPostPages(t *testing.T) {
	if got := BuildPostPages(nil); len(got) != 0 {
		t.Fatalf("expected no pages for no posts, got %d", len(got))
	}

	posts := makePosts(3)
	got := BuildPostPages(posts)
	if len(got) != 3 {
		t.Fatalf("expected 3, got %d", len(got))
	}
	if got[0].Path != "/p/0/" || got[0].Kind != model.KindPost {
		t.Errorf("unexpected first descriptor %+v", got[0])
	}
	if got[0].Context.PreviousPostID != nil {
		t.Errorf("expected newest post to have no previous, got %s", deref(got[0].Context.PreviousPostID))
	}
	if deref(got[1].Context.PreviousPostID) != "post-0" || deref(got[1].Context.NextPostID) != "post-2" {
		t.Errorf("middle post neighbours: %s / %s", deref(got[1].Context.PreviousPostID), deref(got[1].Context.NextPostID))
	}
	if got[2].Context.NextPostID != nil {
		t.Errorf("expected oldest post to have no next")
	}
}

func TestBuildPostPages_KeepsSourceNeighbours(t *testing.T) {
	// Neighbour ids come from the source, not from slice position.
	posts := []model.Post{{ID: "a", URI: "/a/", PreviousID: "x", NextID: "y"}}
	got := BuildPostPages(posts)
	if deref(got[0].Context.PreviousPostID) != "x" || deref(got[0].Context.NextPostID) != "y" {
		t.Errorf("neighbours rewritten: %s / %s", deref(got[0].Context.PreviousPostID), deref(got[0].Context.NextPostID))
	}
}

func TestBuildStaticPages_SkipsPostsPage(t *testing.T) {
	pages := []model.Page{
		{ID: "1", URI: "/about/"},
		{ID: "2", URI: "/blog/", IsPostsPage: true},
		{ID: "3", URI: "/", IsFrontPage: true},
	}
	got := BuildStaticPages(pages)
	if len(got) != 2 {
		t.Fatalf("expected 2, got %d", len(got))
	}
	for _, d := range got {
		if d.Path == "/blog/" {
			t.Errorf("posts page should not get a descriptor")
		}
		if d.Kind != model.KindPage {
			t.Errorf("expected page kind, got %s", d.Kind)
		}
	}
	if got[0].Context.ID != "1" || got[1].Context.ID != "3" {
		t.Errorf("unexpected ids %q %q", got[0].Context.ID, got[1].Context.ID)
	}
}

func TestBuildTaxonomyPages(t *testing.T) {
	tags := []model.Term{
		{ID: "t1", URI: "/tag/go/", Slug: "go", Count: 5, PostIDs: []string{"a", "b", "c", "d", "e"}},
		{ID: "t2", URI: "/tag/empty/", Slug: "empty", Count: 0},
		{ID: "t3", URI: "/tag/one/", Slug: "one", Count: 1, PostIDs: []string{"a"}},
	}
	got, err := BuildTagPages(tags, 2)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("expected 4 descriptors, got %d", len(got))
	}
	want := []string{"/tag/go/", "/tag/go/page/2", "/tag/go/page/3", "/tag/one/"}
	for i, d := range got {
		if d.Path != want[i] {
			t.Errorf("descriptor %d: expected %q, got %q", i, want[i], d.Path)
		}
		if d.Kind != model.KindTagArchive {
			t.Errorf("descriptor %d: expected tag-archive, got %s", i, d.Kind)
		}
	}
	if got[1].Context.Slug != "go" || got[3].Context.Slug != "one" {
		t.Errorf("slug not carried into context")
	}
	if got[3].Context.NextPagePath != nil || got[3].Context.PreviousPagePath != nil {
		t.Errorf("single page term should have no neighbours")
	}
}

func TestBuildTaxonomyPages_CountIsAuthoritative(t *testing.T) {
	// A stale zero count wins over a non-empty post list.
	stale := []model.Term{{ID: "c1", URI: "/category/news/", Slug: "news", Count: 0, PostIDs: []string{"a", "b"}}}
	got, err := BuildCategoryPages(stale, 10)
	if err != nil {
		t.Fatalf("build: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("expected term with count 0 to be skipped, got %d descriptors", len(got))
	}
}

func TestBuildTaxonomyPages_RejectsKind(t *testing.T) {
	if _, err := BuildTaxonomyPages(nil, 10, model.KindPost); err == nil {
		t.Error("expected error for non-taxonomy kind")
	}
	var cfgErr *ConfigError
	if _, err := BuildTagPages(nil, 0); !errors.As(err, &cfgErr) {
		t.Errorf("expected ConfigError, got %v", err)
	}
}

func TestBuildersAreIdempotent(t *testing.T) {
	posts := makePosts(23)
	tags := []model.Term{{URI: "/tag/x/", Slug: "x", Count: 3, PostIDs: []string{"1", "2", "3"}}}

	run := func() []byte {
		var all []model.PageDescriptor
		all = append(all, BuildPostPages(posts)...)
		archive, _ := BuildArchivePages(posts, 4, "/")
		all = append(all, archive...)
		tagPages, _ := BuildTagPages(tags, 2)
		all = append(all, tagPages...)
		b, err := json.Marshal(all)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		return b
	}

	first, second := run(), run()
	if string(first) != string(second) {
		t.Error("expected identical output for identical input")
	}
}
