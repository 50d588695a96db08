package pageplan

import (
	"fmt"

	"github.com/rcliao/pressplan/internal/model"
)

// ConfigError reports a content-source setting the builder cannot work with.
type ConfigError struct {
	Field string
	Value int
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("invalid %s %d: must be greater than zero", e.Field, e.Value)
}

// PathCollisionError reports two descriptors targeting the same output path.
type PathCollisionError struct {
	Path   string
	First  model.TemplateKind
	Second model.TemplateKind
}

func (e *PathCollisionError) Error() string {
	return fmt.Sprintf("path collision at %q: %s and %s", e.Path, e.First, e.Second)
}

func checkPostsPerPage(n int) error {
	if n <= 0 {
		return &ConfigError{Field: "postsPerPage", Value: n}
	}
	return nil
}
