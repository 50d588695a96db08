package source

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/rcliao/pressplan/internal/model"
)

// ReadFile loads a Content document as written by the export command.
// Post siblings are relinked from file order.
func ReadFile(path string) (*model.Content, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read content file: %w", err)
	}
	var c model.Content
	if err := json.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse content file %s: %w", path, err)
	}
	model.LinkSiblings(c.Posts)
	return &c, nil
}

// NewFileSource returns a Source backed by a Content JSON file.
func NewFileSource(path string) (Static, error) {
	c, err := ReadFile(path)
	if err != nil {
		return Static{}, err
	}
	return Static{Content: c}, nil
}
