package ops

import (
	"context"
	"database/sql"

	"github.com/ekm507/chroni/internal/config"
	"github.com/ekm507/chroni/internal/db"
	"github.com/ekm507/chroni/internal/fsio"
)

// ForgetInput contains parameters for the Forget operation.
type ForgetInput struct {
	Path string
}

// ForgetOutput contains the result of the Forget operation.
type ForgetOutput struct {
	Path      string   `json:"path"`
	Forgotten bool     `json:"forgotten"` // false if the path had no state
	Paths     []string `json:"paths,omitempty"`
}

// Forget removes all history of a path: its version chain, snapshot
// references, and tracking state. For a directory, every known file
// beneath it is forgotten too.
func Forget(ctx context.Context, database *sql.DB, cfg *config.Config, input ForgetInput) (*ForgetOutput, error) {
	path, err := fsio.ResolvePath(input.Path)
	if err != nil {
		return nil, err
	}

	known, err := db.PathKnown(ctx, database, path)
	if err != nil {
		return nil, err
	}
	if !known {
		return &ForgetOutput{Path: path, Forgotten: false}, nil
	}

	forgotten := []string{path}
	if err := forgetOne(ctx, database, path); err != nil {
		return nil, err
	}

	if isDir(path) {
		files, err := fsio.TextFilesInDir(path, cfg.ExcludedDirs)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			fileKnown, err := db.PathKnown(ctx, database, f)
			if err != nil {
				return nil, err
			}
			if !fileKnown {
				continue
			}
			if err := forgetOne(ctx, database, f); err != nil {
				return nil, err
			}
			forgotten = append(forgotten, f)
		}
	}

	return &ForgetOutput{Path: path, Forgotten: true, Paths: forgotten}, nil
}

// forgetOne drops one path's chain (atomic, snapshot refs included) and
// its tracking row.
func forgetOne(ctx context.Context, database *sql.DB, path string) error {
	if _, err := newChain(database).Forget(ctx, path); err != nil {
		return err
	}
	return db.DeleteTrackedItem(ctx, database, path)
}
