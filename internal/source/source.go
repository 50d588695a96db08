// Package source provides the content-source interface and its providers:
// a WPGraphQL endpoint and a JSON export file.
package source

import (
	"context"
	"fmt"
	"strings"

	"github.com/rcliao/pressplan/internal/model"
)

// Source delivers the entities a generation run plans pages for.
// Posts must come back ordered by date descending with siblings linked.
type Source interface {
	Settings(ctx context.Context) (model.ReadingSettings, error)
	Posts(ctx context.Context) ([]model.Post, error)
	Pages(ctx context.Context) ([]model.Page, error)
	Tags(ctx context.Context) ([]model.Term, error)
	Categories(ctx context.Context) ([]model.Term, error)
}

// Sessioner is implemented by sources that cache between calls. Session
// returns a view with an empty cache; the cache lives as long as the view.
type Sessioner interface {
	Session() Source
}

// Session returns a fresh per-run view of src, or src itself when it keeps
// no cache.
func Session(src Source) Source {
	if s, ok := src.(Sessioner); ok {
		return s.Session()
	}
	return src
}

// QueryError is one entry of a GraphQL error list.
type QueryError struct {
	Message string `json:"message"`
	Path    string `json:"path,omitempty"`
}

// ContentSourceError means a query against the content source failed.
// It is fatal for the run.
type ContentSourceError struct {
	Query  string
	Errors []QueryError
}

func (e *ContentSourceError) Error() string {
	msgs := make([]string, 0, len(e.Errors))
	for _, qe := range e.Errors {
		if qe.Path != "" {
			msgs = append(msgs, qe.Path+": "+qe.Message)
		} else {
			msgs = append(msgs, qe.Message)
		}
	}
	return fmt.Sprintf("content source query %s failed: %s", e.Query, strings.Join(msgs, "; "))
}

// Load reads every collection from src into one Content value.
func Load(ctx context.Context, src Source) (*model.Content, error) {
	var c model.Content
	var err error
	if c.Settings, err = src.Settings(ctx); err != nil {
		return nil, err
	}
	if c.Posts, err = src.Posts(ctx); err != nil {
		return nil, err
	}
	if c.Pages, err = src.Pages(ctx); err != nil {
		return nil, err
	}
	if c.Tags, err = src.Tags(ctx); err != nil {
		return nil, err
	}
	if c.Categories, err = src.Categories(ctx); err != nil {
		return nil, err
	}
	return &c, nil
}

// Static serves a Content value already in memory.
type Static struct {
	Content *model.Content
}

func (s Static) Settings(context.Context) (model.ReadingSettings, error) {
	return s.Content.Settings, nil
}

func (s Static) Posts(context.Context) ([]model.Post, error) { return s.Content.Posts, nil }

func (s Static) Pages(context.Context) ([]model.Page, error) { return s.Content.Pages, nil }

func (s Static) Tags(context.Context) ([]model.Term, error) { return s.Content.Tags, nil }

func (s Static) Categories(context.Context) ([]model.Term, error) {
	return s.Content.Categories, nil
}
