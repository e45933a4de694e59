package ops

import (
	"context"
	"database/sql"

	"github.com/ekm507/chroni/internal/config"
	"github.com/ekm507/chroni/internal/db"
	"github.com/ekm507/chroni/internal/fsio"
)

// UntrackInput contains parameters for the Untrack operation.
type UntrackInput struct {
	Path string
}

// UntrackOutput contains the result of the Untrack operation.
type UntrackOutput struct {
	Path      string `json:"path"`
	Untracked bool   `json:"untracked"` // false if the path wasn't tracked
}

// Untrack stops tracking a path. History survives untracking; only new
// scans stop. For a directory, contained tracked files are untracked too.
func Untrack(ctx context.Context, database *sql.DB, cfg *config.Config, input UntrackInput) (*UntrackOutput, error) {
	path, err := fsio.ResolvePath(input.Path)
	if err != nil {
		return nil, err
	}

	tracked, err := db.IsTracked(ctx, database, path)
	if err != nil {
		return nil, err
	}
	if !tracked {
		return &UntrackOutput{Path: path, Untracked: false}, nil
	}

	if err := db.DeactivateTrackedItem(ctx, database, path); err != nil {
		return nil, err
	}

	if isDir(path) {
		files, err := fsio.TextFilesInDir(path, cfg.ExcludedDirs)
		if err != nil {
			return nil, err
		}
		for _, f := range files {
			fileTracked, err := db.IsTracked(ctx, database, f)
			if err != nil {
				return nil, err
			}
			if !fileTracked {
				continue
			}
			if err := db.DeactivateTrackedItem(ctx, database, f); err != nil {
				return nil, err
			}
		}
	}

	return &UntrackOutput{Path: path, Untracked: true}, nil
}
