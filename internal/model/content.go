// Package model defines the content entities and page descriptors.
package model

// ReadingSettings mirrors the content source's reading settings.
type ReadingSettings struct {
	PostsPerPage int `json:"posts_per_page"`
}

// Post is a blog post as delivered by the content source, already ordered
// by date descending. PreviousID and NextID name the adjacent posts in that
// ordering (empty at either end).
type Post struct {
	ID         string `json:"id"`
	URI        string `json:"uri"`
	Date       string `json:"date,omitempty"`
	PreviousID string `json:"previous_id,omitempty"`
	NextID     string `json:"next_id,omitempty"`
}

// Page is a static page.
type Page struct {
	ID          string `json:"id"`
	URI         string `json:"uri"`
	IsPostsPage bool   `json:"is_posts_page,omitempty"`
	IsFrontPage bool   `json:"is_front_page,omitempty"`
}

// Term is a tag or a category together with the ids of its posts.
// Count is reported by the content source and may disagree with len(PostIDs).
type Term struct {
	ID      string   `json:"id"`
	URI     string   `json:"uri"`
	Slug    string   `json:"slug"`
	Name    string   `json:"name,omitempty"`
	Count   int      `json:"count"`
	PostIDs []string `json:"post_ids,omitempty"`
}

// Content is everything a generation run reads from a content source.
type Content struct {
	Settings   ReadingSettings `json:"settings"`
	Posts      []Post          `json:"posts"`
	Pages      []Page          `json:"pages"`
	Tags       []Term          `json:"tags"`
	Categories []Term          `json:"categories"`
}

// LinkSiblings sets PreviousID and NextID from slice adjacency.
// Content sources call it after ordering; the page builder never reorders.
func LinkSiblings(posts []Post) {
	for i := range posts {
		posts[i].PreviousID = ""
		posts[i].NextID = ""
		if i > 0 {
			posts[i].PreviousID = posts[i-1].ID
		}
		if i < len(posts)-1 {
			posts[i].NextID = posts[i+1].ID
		}
	}
}
