// Package pageplan turns content entities into the page descriptors of a
// static build. Every function here is a pure transform: no I/O, no shared
// state, and identical input always yields an identical plan.
package pageplan

import (
	"fmt"

	"github.com/rcliao/pressplan/internal/model"
)

// BuildPostPages emits one Post descriptor per post at the post's URI.
// posts must already be ordered by date descending; neighbour ids are taken
// from the posts as given.
func BuildPostPages(posts []model.Post) []model.PageDescriptor {
	out := make([]model.PageDescriptor, 0, len(posts))
	for _, p := range posts {
		out = append(out, model.PageDescriptor{
			Path: p.URI,
			Kind: model.KindPost,
			Context: model.Context{
				ID:             p.ID,
				PreviousPostID: optional(p.PreviousID),
				NextPostID:     optional(p.NextID),
			},
		})
	}
	return out
}

// BuildArchivePages paginates posts under basePath, postsPerPage per page.
func BuildArchivePages(posts []model.Post, postsPerPage int, basePath string) ([]model.PageDescriptor, error) {
	if err := checkPostsPerPage(postsPerPage); err != nil {
		return nil, err
	}
	return archivePages(Chunk(posts, postsPerPage), postsPerPage, basePath, model.KindPostArchive, ""), nil
}

// BuildTaxonomyPages paginates each term's posts under the term's own URI.
// Terms whose Count is zero are skipped even if they list posts.
func BuildTaxonomyPages(terms []model.Term, postsPerPage int, kind model.TemplateKind) ([]model.PageDescriptor, error) {
	if kind != model.KindTagArchive && kind != model.KindCategoryArchive {
		return nil, fmt.Errorf("taxonomy pages need a tag or category kind, got %s", kind)
	}
	if err := checkPostsPerPage(postsPerPage); err != nil {
		return nil, err
	}
	var out []model.PageDescriptor
	for _, t := range terms {
		if t.Count == 0 {
			continue
		}
		out = append(out, archivePages(Chunk(t.PostIDs, postsPerPage), postsPerPage, t.URI, kind, t.Slug)...)
	}
	return out, nil
}

// BuildTagPages is BuildTaxonomyPages for tags.
func BuildTagPages(tags []model.Term, postsPerPage int) ([]model.PageDescriptor, error) {
	return BuildTaxonomyPages(tags, postsPerPage, model.KindTagArchive)
}

// BuildCategoryPages is BuildTaxonomyPages for categories.
func BuildCategoryPages(categories []model.Term, postsPerPage int) ([]model.PageDescriptor, error) {
	return BuildTaxonomyPages(categories, postsPerPage, model.KindCategoryArchive)
}

// BuildStaticPages emits one Page descriptor per page, leaving out the posts
// page since the archive already owns its URI.
func BuildStaticPages(pages []model.Page) []model.PageDescriptor {
	var out []model.PageDescriptor
	for _, p := range pages {
		if p.IsPostsPage {
			continue
		}
		out = append(out, model.PageDescriptor{
			Path:    p.URI,
			Kind:    model.KindPage,
			Context: model.Context{ID: p.ID},
		})
	}
	return out
}

func archivePages[T any](chunks [][]T, postsPerPage int, base string, kind model.TemplateKind, slug string) []model.PageDescriptor {
	total := len(chunks)
	out := make([]model.PageDescriptor, 0, total)
	for i := range chunks {
		page := i + 1
		path, _ := PagePath(base, page, total)
		out = append(out, model.PageDescriptor{
			Path: path,
			Kind: kind,
			Context: model.Context{
				Offset:           i * postsPerPage,
				PostsPerPage:     postsPerPage,
				Slug:             slug,
				NextPagePath:     neighbourPath(base, page+1, total),
				PreviousPagePath: neighbourPath(base, page-1, total),
			},
		})
	}
	return out
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
