package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ekm507/chroni/internal/errors"
	"github.com/ekm507/chroni/internal/fsio"
)

// RestoreDateInput contains parameters for the RestoreDate operation.
type RestoreDateInput struct {
	Path string
	Date string // YYYY-MM-DD, optionally with HH:MM or HH:MM:SS
}

// RestoreDateOutput contains the result of the RestoreDate operation.
type RestoreDateOutput struct {
	Path      string `json:"path"`
	Version   int    `json:"version"`
	CreatedAt int64  `json:"created_at"`
}

// RestoreDate restores a file to the latest version created at or before
// a given instant.
func RestoreDate(ctx context.Context, database *sql.DB, input RestoreDateInput) (*RestoreDateOutput, error) {
	path, err := fsio.ResolvePath(input.Path)
	if err != nil {
		return nil, err
	}

	instant, err := parseDate(input.Date)
	if err != nil {
		return nil, err
	}

	engine := newChain(database)

	meta, err := engine.FindNearestAt(ctx, path, instant)
	if err != nil {
		return nil, err
	}
	if meta == nil {
		return nil, errors.NewInvalidRequest(
			fmt.Sprintf("no version of %s exists at or before %s", path, input.Date))
	}

	content, err := engine.Materialize(ctx, path, meta.Version)
	if err != nil {
		return nil, err
	}
	if err := fsio.WriteText(path, content); err != nil {
		return nil, err
	}

	return &RestoreDateOutput{Path: path, Version: meta.Version, CreatedAt: meta.CreatedAt}, nil
}
