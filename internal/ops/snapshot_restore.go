package ops

import (
	"context"
	"database/sql"

	"github.com/ekm507/chroni/internal/db"
	"github.com/ekm507/chroni/internal/errors"
	"github.com/ekm507/chroni/internal/fsio"
)

// SnapshotRestoreInput contains parameters for the SnapshotRestore operation.
type SnapshotRestoreInput struct {
	Name string
}

// SnapshotRestoreFailure reports one file that could not be restored.
type SnapshotRestoreFailure struct {
	Path    string `json:"path"`
	Version int    `json:"version"`
	Reason  string `json:"reason"`
}

// SnapshotRestoreOutput contains the result of the SnapshotRestore operation.
type SnapshotRestoreOutput struct {
	Name     string                   `json:"name"`
	Restored []string                 `json:"restored"`
	Failed   []SnapshotRestoreFailure `json:"failed,omitempty"`
}

// SnapshotRestore writes every file of a snapshot back to its pinned
// version. Failures are collected per file; one bad chain does not stop
// the rest of the snapshot from restoring.
func SnapshotRestore(ctx context.Context, database *sql.DB, input SnapshotRestoreInput) (*SnapshotRestoreOutput, error) {
	snap, err := db.GetSnapshotByName(ctx, database, input.Name)
	if err != nil {
		return nil, err
	}
	if snap == nil {
		return nil, errors.NewSnapshotNotFound(input.Name)
	}

	files, err := db.GetSnapshotFiles(ctx, database, snap.ID)
	if err != nil {
		return nil, err
	}

	engine := newChain(database)
	out := &SnapshotRestoreOutput{Name: snap.Name, Restored: []string{}}

	for _, f := range files {
		content, err := engine.Materialize(ctx, f.Path, f.Version)
		if err != nil {
			out.Failed = append(out.Failed, SnapshotRestoreFailure{
				Path: f.Path, Version: f.Version, Reason: err.Error(),
			})
			continue
		}
		if err := fsio.WriteText(f.Path, content); err != nil {
			out.Failed = append(out.Failed, SnapshotRestoreFailure{
				Path: f.Path, Version: f.Version, Reason: err.Error(),
			})
			continue
		}
		out.Restored = append(out.Restored, f.Path)
	}

	return out, nil
}
