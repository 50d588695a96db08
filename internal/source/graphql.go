package source

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/tidwall/gjson"

	"github.com/rcliao/pressplan/internal/model"
)

const (
	settingsQuery = `query ReadingSettings {
  readingSettings { postsPerPage }
}`

	postsQuery = `query Posts($first: Int!, $after: String) {
  posts(first: $first, after: $after, where: {orderby: {field: DATE, order: DESC}}) {
    pageInfo { hasNextPage endCursor }
    nodes {
      id uri date
      tags { nodes { id } }
      categories { nodes { id } }
    }
  }
}`

	pagesQuery = `query Pages($first: Int!, $after: String) {
  pages(first: $first, after: $after) {
    pageInfo { hasNextPage endCursor }
    nodes { id uri isPostsPage isFrontPage }
  }
}`

	termsQuery = `query Terms($first: Int!, $after: String) {
  %s(first: $first, after: $after, where: {hideEmpty: false}) {
    pageInfo { hasNextPage endCursor }
    nodes { id uri slug name count }
  }
}`
)

// DefaultBatchSize matches WPGraphQL's default connection limit.
const DefaultBatchSize = 100

// GraphQLSource reads content from a WPGraphQL endpoint. Posts and term
// membership are fetched once and cached; use Session for each generation
// run so every run starts from current content.
type GraphQLSource struct {
	endpoint string
	batch    int
	client   *http.Client
	logger   *slog.Logger

	mu         sync.Mutex
	posts      []model.Post
	membership map[string][]string // term id -> post ids, date descending
}

// GraphQLOption configures a GraphQLSource.
type GraphQLOption func(*GraphQLSource)

// WithBatchSize sets the `first:` size of each paginated request.
func WithBatchSize(n int) GraphQLOption {
	return func(s *GraphQLSource) {
		if n > 0 {
			s.batch = n
		}
	}
}

// WithHTTPClient replaces the default client.
func WithHTTPClient(c *http.Client) GraphQLOption {
	return func(s *GraphQLSource) { s.client = c }
}

// WithLogger sets the logger used for request timings.
func WithLogger(l *slog.Logger) GraphQLOption {
	return func(s *GraphQLSource) { s.logger = l }
}

// NewGraphQLSource creates a source for the WPGraphQL endpoint at url.
func NewGraphQLSource(url string, opts ...GraphQLOption) *GraphQLSource {
	s := &GraphQLSource{
		endpoint: url,
		batch:    DefaultBatchSize,
		client:   &http.Client{Timeout: 30 * time.Second},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Session returns a source for the same endpoint with an empty cache.
func (s *GraphQLSource) Session() Source {
	return &GraphQLSource{
		endpoint: s.endpoint,
		batch:    s.batch,
		client:   s.client,
		logger:   s.logger,
	}
}

type graphqlRequest struct {
	Query     string         `json:"query"`
	Variables map[string]any `json:"variables,omitempty"`
}

// query runs one request and returns its data object.
func (s *GraphQLSource) query(ctx context.Context, name, query string, vars map[string]any) (gjson.Result, error) {
	body, _ := json.Marshal(graphqlRequest{Query: query, Variables: vars})
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, bytes.NewReader(body))
	if err != nil {
		return gjson.Result{}, err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := s.client.Do(req)
	if err != nil {
		return gjson.Result{}, &ContentSourceError{Query: name, Errors: []QueryError{{Message: err.Error()}}}
	}
	defer resp.Body.Close()

	b, err := io.ReadAll(resp.Body)
	if err != nil {
		return gjson.Result{}, fmt.Errorf("read %s response: %w", name, err)
	}
	s.logger.Debug("graphql query", "query", name, "status", resp.StatusCode, "duration", time.Since(start))

	if resp.StatusCode != http.StatusOK {
		return gjson.Result{}, &ContentSourceError{Query: name, Errors: []QueryError{{
			Message: fmt.Sprintf("HTTP %d: %s", resp.StatusCode, bytes.TrimSpace(b)),
		}}}
	}
	if !gjson.ValidBytes(b) {
		return gjson.Result{}, &ContentSourceError{Query: name, Errors: []QueryError{{Message: "response is not valid JSON"}}}
	}

	res := gjson.ParseBytes(b)
	if errs := res.Get("errors"); errs.IsArray() && len(errs.Array()) > 0 {
		cse := &ContentSourceError{Query: name}
		for _, e := range errs.Array() {
			qe := QueryError{Message: e.Get("message").String()}
			var parts []string
			for _, p := range e.Get("path").Array() {
				parts = append(parts, p.String())
			}
			if len(parts) > 0 {
				qe.Path = strings.Join(parts, ".")
			}
			cse.Errors = append(cse.Errors, qe)
		}
		return gjson.Result{}, cse
	}
	return res.Get("data"), nil
}

// paginate follows a connection's cursors, calling fn with each page's nodes.
func (s *GraphQLSource) paginate(ctx context.Context, name, query, field string, fn func(gjson.Result)) error {
	var after any
	for {
		data, err := s.query(ctx, name, query, map[string]any{"first": s.batch, "after": after})
		if err != nil {
			return err
		}
		conn := data.Get(field)
		if nodes := conn.Get("nodes"); nodes.IsArray() {
			nodes.ForEach(func(_, node gjson.Result) bool {
				fn(node)
				return true
			})
		}
		if !conn.Get("pageInfo.hasNextPage").Bool() {
			return nil
		}
		cursor := conn.Get("pageInfo.endCursor").String()
		if cursor == "" {
			return &ContentSourceError{Query: name, Errors: []QueryError{{Message: "hasNextPage without endCursor"}}}
		}
		after = cursor
	}
}

func (s *GraphQLSource) Settings(ctx context.Context) (model.ReadingSettings, error) {
	data, err := s.query(ctx, "ReadingSettings", settingsQuery, nil)
	if err != nil {
		return model.ReadingSettings{}, err
	}
	return model.ReadingSettings{PostsPerPage: int(data.Get("readingSettings.postsPerPage").Int())}, nil
}

// loadPosts fetches every post once. Term membership is collected from the
// same pass so per-term post lists are complete and date ordered.
func (s *GraphQLSource) loadPosts(ctx context.Context) ([]model.Post, map[string][]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.posts != nil {
		return s.posts, s.membership, nil
	}

	posts := []model.Post{}
	membership := make(map[string][]string)
	err := s.paginate(ctx, "Posts", postsQuery, "posts", func(node gjson.Result) {
		id := node.Get("id").String()
		posts = append(posts, model.Post{
			ID:   id,
			URI:  node.Get("uri").String(),
			Date: node.Get("date").String(),
		})
		for _, path := range []string{"tags.nodes.#.id", "categories.nodes.#.id"} {
			for _, term := range node.Get(path).Array() {
				membership[term.String()] = append(membership[term.String()], id)
			}
		}
	})
	if err != nil {
		return nil, nil, err
	}
	model.LinkSiblings(posts)
	s.posts, s.membership = posts, membership
	return posts, membership, nil
}

func (s *GraphQLSource) Posts(ctx context.Context) ([]model.Post, error) {
	posts, _, err := s.loadPosts(ctx)
	return posts, err
}

func (s *GraphQLSource) Pages(ctx context.Context) ([]model.Page, error) {
	pages := []model.Page{}
	err := s.paginate(ctx, "Pages", pagesQuery, "pages", func(node gjson.Result) {
		pages = append(pages, model.Page{
			ID:          node.Get("id").String(),
			URI:         node.Get("uri").String(),
			IsPostsPage: node.Get("isPostsPage").Bool(),
			IsFrontPage: node.Get("isFrontPage").Bool(),
		})
	})
	if err != nil {
		return nil, err
	}
	return pages, nil
}

func (s *GraphQLSource) Tags(ctx context.Context) ([]model.Term, error) {
	return s.terms(ctx, "Tags", "tags")
}

func (s *GraphQLSource) Categories(ctx context.Context) ([]model.Term, error) {
	return s.terms(ctx, "Categories", "categories")
}

func (s *GraphQLSource) terms(ctx context.Context, name, field string) ([]model.Term, error) {
	_, membership, err := s.loadPosts(ctx)
	if err != nil {
		return nil, err
	}
	terms := []model.Term{}
	err = s.paginate(ctx, name, fmt.Sprintf(termsQuery, field), field, func(node gjson.Result) {
		id := node.Get("id").String()
		terms = append(terms, model.Term{
			ID:      id,
			URI:     node.Get("uri").String(),
			Slug:    node.Get("slug").String(),
			Name:    node.Get("name").String(),
			Count:   int(node.Get("count").Int()),
			PostIDs: membership[id],
		})
	})
	if err != nil {
		return nil, err
	}
	return terms, nil
}
