package pageplan

import (
	"errors"

	"github.com/rcliao/pressplan/internal/model"
)

// ErrNullPath is returned when a descriptor without an output path would
// reach a renderer.
var ErrNullPath = errors.New("page descriptor has no path")

// Plan is the ordered set of descriptors for one generation run.
type Plan struct {
	PostsPerPage int                    `json:"posts_per_page"`
	Archive      string                 `json:"archive"`
	Descriptors  []model.PageDescriptor `json:"pages"`
}

// Validate rejects descriptors with no path and paths claimed twice.
func (p *Plan) Validate() error {
	seen := make(map[string]model.TemplateKind, len(p.Descriptors))
	for _, d := range p.Descriptors {
		if d.Path == "" {
			return ErrNullPath
		}
		if prev, ok := seen[d.Path]; ok {
			return &PathCollisionError{Path: d.Path, First: prev, Second: d.Kind}
		}
		seen[d.Path] = d.Kind
	}
	return nil
}

// Lookup returns the descriptor planned for path.
func (p *Plan) Lookup(path string) (model.PageDescriptor, bool) {
	for _, d := range p.Descriptors {
		if d.Path == path {
			return d, true
		}
	}
	return model.PageDescriptor{}, false
}

// CountByKind tallies descriptors per template kind.
func (p *Plan) CountByKind() map[model.TemplateKind]int {
	counts := make(map[model.TemplateKind]int)
	for _, d := range p.Descriptors {
		counts[d.Kind]++
	}
	return counts
}

// Paths returns the output paths in plan order.
func (p *Plan) Paths() []string {
	paths := make([]string, len(p.Descriptors))
	for i, d := range p.Descriptors {
		paths[i] = d.Path
	}
	return paths
}
