package store

import (
	"context"
	"time"

	"github.com/rcliao/pressplan/internal/model"
	"github.com/rcliao/pressplan/internal/source"
)

// SnapshotInfo describes the stored snapshot.
type SnapshotInfo struct {
	Origin  string    `json:"origin"`
	TakenAt time.Time `json:"taken_at"`
}

// ExportContent returns the whole snapshot as a Content document.
func (s *SQLiteStore) ExportContent(ctx context.Context) (*model.Content, error) {
	return source.Load(ctx, s)
}

// Snapshot returns metadata about the stored snapshot, or ErrNoSnapshot.
func (s *SQLiteStore) Snapshot(ctx context.Context) (*SnapshotInfo, error) {
	origin, err := s.setting(ctx, "origin")
	if err != nil {
		return nil, err
	}
	taken, err := s.setting(ctx, "snapshot_at")
	if err != nil {
		return nil, err
	}
	info := &SnapshotInfo{Origin: origin}
	info.TakenAt, _ = time.Parse(time.RFC3339, taken)
	return info, nil
}
