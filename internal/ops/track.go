package ops

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/ekm507/chroni/internal/config"
	"github.com/ekm507/chroni/internal/db"
	"github.com/ekm507/chroni/internal/errors"
	"github.com/ekm507/chroni/internal/fsio"
)

// TrackInput contains parameters for the Track operation.
type TrackInput struct {
	Path string // file or directory, required
}

// TrackOutput contains the result of the Track operation.
type TrackOutput struct {
	Path           string   `json:"path"`
	AlreadyTracked bool     `json:"already_tracked"`
	Tracked        []string `json:"tracked,omitempty"` // paths newly tracked
}

// Track starts tracking a file or directory. For a directory, every text
// file beneath it (excluded dirs skipped) is tracked individually.
func Track(ctx context.Context, database *sql.DB, cfg *config.Config, input TrackInput) (*TrackOutput, error) {
	path, err := fsio.ResolvePath(input.Path)
	if err != nil {
		return nil, err
	}
	if !isFile(path) && !isDir(path) {
		return nil, errors.NewInvalidRequest(fmt.Sprintf("path does not exist: %s", input.Path))
	}

	tracked, err := db.IsTracked(ctx, database, path)
	if err != nil {
		return nil, err
	}
	if tracked {
		return &TrackOutput{Path: path, AlreadyTracked: true}, nil
	}

	if err := db.UpsertTrackedItem(ctx, database, path); err != nil {
		return nil, err
	}
	newlyTracked := []string{path}

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
			if fileTracked {
				continue
			}
			if err := db.UpsertTrackedItem(ctx, database, f); err != nil {
				return nil, err
			}
			newlyTracked = append(newlyTracked, f)
		}
	}

	return &TrackOutput{Path: path, Tracked: newlyTracked}, nil
}
