package model

import "time"

// Run is one recorded generation run.
type Run struct {
	ID           string           `json:"id"`
	CreatedAt    time.Time        `json:"created_at"`
	Source       string           `json:"source"`
	Archive      string           `json:"archive"`
	PostsPerPage int              `json:"posts_per_page"`
	PageCount    int              `json:"page_count"`
	Pages        []PageDescriptor `json:"pages,omitempty"`
}
