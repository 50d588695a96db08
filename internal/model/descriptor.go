package model

import (
	"encoding/json"
	"fmt"
)

// TemplateKind selects the template a renderer uses for a page.
type TemplateKind int

const (
	KindPost TemplateKind = iota + 1
	KindPage
	KindPostArchive
	KindTagArchive
	KindCategoryArchive
)

var kindNames = map[TemplateKind]string{
	KindPost:            "post",
	KindPage:            "page",
	KindPostArchive:     "post-archive",
	KindTagArchive:      "tag-archive",
	KindCategoryArchive: "category-archive",
}

func (k TemplateKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("TemplateKind(%d)", int(k))
}

// IsArchive reports whether pages of this kind are paginated listings.
func (k TemplateKind) IsArchive() bool {
	return k == KindPostArchive || k == KindTagArchive || k == KindCategoryArchive
}

func (k TemplateKind) MarshalText() ([]byte, error) {
	name, ok := kindNames[k]
	if !ok {
		return nil, fmt.Errorf("unknown template kind %d", int(k))
	}
	return []byte(name), nil
}

func (k *TemplateKind) UnmarshalText(b []byte) error {
	kind, err := ParseTemplateKind(string(b))
	if err != nil {
		return err
	}
	*k = kind
	return nil
}

// ParseTemplateKind maps a template name back to its kind.
func ParseTemplateKind(s string) (TemplateKind, error) {
	for k, name := range kindNames {
		if name == s {
			return k, nil
		}
	}
	return 0, fmt.Errorf("unknown template kind %q", s)
}

// Context carries the variables a template queries with. Which fields are
// meaningful depends on the descriptor's kind; see Vars.
type Context struct {
	ID             string
	PreviousPostID *string
	NextPostID     *string

	Offset           int
	PostsPerPage     int
	Slug             string
	NextPagePath     *string
	PreviousPagePath *string
}

// Vars returns the template variables for kind. Absent neighbours are
// kept as explicit nulls.
func (c Context) Vars(kind TemplateKind) map[string]any {
	switch kind {
	case KindPost:
		return map[string]any{
			"id":             c.ID,
			"previousPostId": c.PreviousPostID,
			"nextPostId":     c.NextPostID,
		}
	case KindPage:
		return map[string]any{"id": c.ID}
	}
	vars := map[string]any{
		"offset":           c.Offset,
		"postsPerPage":     c.PostsPerPage,
		"nextPagePath":     c.NextPagePath,
		"previousPagePath": c.PreviousPagePath,
	}
	if kind == KindTagArchive || kind == KindCategoryArchive {
		vars["slug"] = c.Slug
	}
	return vars
}

// PageDescriptor is one page handed to the renderer.
type PageDescriptor struct {
	Path    string
	Kind    TemplateKind
	Context Context
}

type descriptorJSON struct {
	Path     string          `json:"path"`
	Template TemplateKind    `json:"template"`
	Context  json.RawMessage `json:"context"`
}

func (d PageDescriptor) MarshalJSON() ([]byte, error) {
	ctx, err := json.Marshal(d.Context.Vars(d.Kind))
	if err != nil {
		return nil, err
	}
	return json.Marshal(descriptorJSON{Path: d.Path, Template: d.Kind, Context: ctx})
}

func (d *PageDescriptor) UnmarshalJSON(b []byte) error {
	var raw descriptorJSON
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	var vars struct {
		ID               string  `json:"id"`
		PreviousPostID   *string `json:"previousPostId"`
		NextPostID       *string `json:"nextPostId"`
		Offset           int     `json:"offset"`
		PostsPerPage     int     `json:"postsPerPage"`
		Slug             string  `json:"slug"`
		NextPagePath     *string `json:"nextPagePath"`
		PreviousPagePath *string `json:"previousPagePath"`
	}
	if len(raw.Context) > 0 {
		if err := json.Unmarshal(raw.Context, &vars); err != nil {
			return fmt.Errorf("decode context: %w", err)
		}
	}
	*d = PageDescriptor{
		Path: raw.Path,
		Kind: raw.Template,
		Context: Context{
			ID:               vars.ID,
			PreviousPostID:   vars.PreviousPostID,
			NextPostID:       vars.NextPostID,
			Offset:           vars.Offset,
			PostsPerPage:     vars.PostsPerPage,
			Slug:             vars.Slug,
			NextPagePath:     vars.NextPagePath,
			PreviousPagePath: vars.PreviousPagePath,
		},
	}
	return nil
}
