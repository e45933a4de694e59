package ops

import (
	"context"
	"database/sql"

	"github.com/ekm507/chroni/internal/db"
)

// SnapshotListOutput contains the result of the SnapshotList operation.
type SnapshotListOutput struct {
	Snapshots []db.Snapshot `json:"snapshots"`
	Total     int           `json:"total"`
}

// SnapshotList returns all snapshots, most recent first.
func SnapshotList(ctx context.Context, database *sql.DB) (*SnapshotListOutput, error) {
	snaps, err := db.ListSnapshots(ctx, database)
	if err != nil {
		return nil, err
	}
	return &SnapshotListOutput{Snapshots: snaps, Total: len(snaps)}, nil
}
