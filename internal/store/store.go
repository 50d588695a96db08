// Package store keeps a SQLite snapshot of site content and a ledger of
// generation runs.
package store

import (
	"context"
	"errors"

	"github.com/rcliao/pressplan/internal/model"
	"github.com/rcliao/pressplan/internal/source"
)

// ErrNoSnapshot is returned when content is read before any snapshot exists.
var ErrNoSnapshot = errors.New("no content snapshot (run `pressplan snapshot` or `pressplan import` first)")

// ErrRunNotFound is returned by GetRun for an unknown id.
var ErrRunNotFound = errors.New("run not found")

// RunParams holds parameters for recording a run.
type RunParams struct {
	Source       string
	Archive      string
	PostsPerPage int
	Pages        []model.PageDescriptor
}

// ListRunsParams holds parameters for listing runs.
type ListRunsParams struct {
	Limit int
}

// Store defines the snapshot and ledger operations. A Store is also a
// content source reading from its snapshot.
type Store interface {
	source.Source

	// SaveContent replaces the snapshot with c.
	SaveContent(ctx context.Context, c *model.Content, origin string) error

	// RecordRun stores a run and its pages. Returns the created run.
	RecordRun(ctx context.Context, p RunParams) (*model.Run, error)

	// ListRuns lists runs newest first, without their pages.
	ListRuns(ctx context.Context, p ListRunsParams) ([]model.Run, error)

	// GetRun returns one run with its pages. id may be a unique prefix.
	GetRun(ctx context.Context, id string) (*model.Run, error)

	// PruneRuns deletes all but the newest keep runs. Returns how many went.
	PruneRuns(ctx context.Context, keep int) (int, error)

	// Close closes the store.
	Close() error
}
