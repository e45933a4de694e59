package ops

import (
	"context"
	"database/sql"

	"github.com/ekm507/chroni/internal/fsio"
)

// RestoreInput contains parameters for the Restore operation.
type RestoreInput struct {
	Path    string
	Version int
}

// RestoreOutput contains the result of the Restore operation.
type RestoreOutput struct {
	Path    string `json:"path"`
	Version int    `json:"version"`
}

// Restore materializes a past version and writes it back to the working
// file. The chain itself is untouched; the restored content becomes a new
// version on the next scan if it differs from the latest.
func Restore(ctx context.Context, database *sql.DB, input RestoreInput) (*RestoreOutput, error) {
	path, err := fsio.ResolvePath(input.Path)
	if err != nil {
		return nil, err
	}

	content, err := newChain(database).Materialize(ctx, path, input.Version)
	if err != nil {
		return nil, err
	}

	if err := fsio.WriteText(path, content); err != nil {
		return nil, err
	}

	return &RestoreOutput{Path: path, Version: input.Version}, nil
}
