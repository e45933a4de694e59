package ops

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/ekm507/chroni/internal/db"
	"github.com/ekm507/chroni/internal/errors"
)

// SnapshotCreateInput contains parameters for the SnapshotCreate operation.
type SnapshotCreateInput struct {
	Name string
	Note *string
}

// SnapshotCreateOutput contains the result of the SnapshotCreate operation.
type SnapshotCreateOutput struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Files int    `json:"files"`
}

// SnapshotCreate captures a named, immutable mapping from every tracked
// file to its current latest version. The snapshot only references
// versions; no content is copied.
func SnapshotCreate(ctx context.Context, database *sql.DB, input SnapshotCreateInput) (*SnapshotCreateOutput, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, errors.NewInvalidRequest("snapshot name is required")
	}

	engine := newChain(database)

	items, err := db.GetTrackedItems(ctx, database)
	if err != nil {
		return nil, err
	}

	var files []db.SnapshotFile
	for _, item := range items {
		if !isFile(item) {
			continue
		}
		latest, err := engine.Latest(ctx, item)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			// Tracked but never scanned; nothing to pin.
			continue
		}
		files = append(files, db.SnapshotFile{Path: item, Version: latest.Version})
	}

	id, err := generateULID()
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	snap := &db.Snapshot{
		ID:        id,
		Name:      name,
		Note:      input.Note,
		CreatedAt: time.Now().Unix(),
	}
	if err := db.InsertSnapshot(ctx, database, snap, files); err != nil {
		return nil, err
	}

	return &SnapshotCreateOutput{ID: id, Name: name, Files: len(files)}, nil
}
