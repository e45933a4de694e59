package ops

import (
	"context"
	"database/sql"

	"github.com/ekm507/chroni/internal/db"
	"github.com/ekm507/chroni/internal/errors"
	"github.com/ekm507/chroni/internal/fsio"
)

// ShowInput contains parameters for the Show operation.
type ShowInput struct {
	Path    string
	Version *int // nil = latest
}

// ShowOutput contains the result of the Show operation.
type ShowOutput struct {
	Path      string `json:"path"`
	Version   int    `json:"version"`
	CreatedAt int64  `json:"created_at"`
	Content   string `json:"content"`
}

// Show materializes a path's content at a version (latest by default).
func Show(ctx context.Context, database *sql.DB, input ShowInput) (*ShowOutput, error) {
	path, err := fsio.ResolvePath(input.Path)
	if err != nil {
		return nil, err
	}

	engine := newChain(database)

	v := 0
	if input.Version != nil {
		v = *input.Version
	} else {
		latest, err := engine.Latest(ctx, path)
		if err != nil {
			return nil, err
		}
		if latest == nil {
			return nil, errors.NewNotFound(path)
		}
		v = latest.Version
	}

	content, err := engine.Materialize(ctx, path, v)
	if err != nil {
		return nil, err
	}

	rec, err := db.GetVersion(ctx, database, path, v)
	if err != nil {
		return nil, err
	}

	return &ShowOutput{Path: path, Version: v, CreatedAt: rec.CreatedAt, Content: content}, nil
}
