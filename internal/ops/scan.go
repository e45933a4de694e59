package ops

import (
	"context"
	"database/sql"
	"fmt"
	"os"

	"github.com/ekm507/chroni/internal/config"
	"github.com/ekm507/chroni/internal/db"
	"github.com/ekm507/chroni/internal/fsio"
)

// ScanInput contains parameters for the Scan operation.
type ScanInput struct {
	// Paths restricts the scan to specific files (watch mode). Empty
	// means scan everything tracked.
	Paths []string
}

// ScanChange reports one file that gained a new version.
type ScanChange struct {
	Path    string `json:"path"`
	Version int    `json:"version"`
}

// ScanSkip reports one file that could not be scanned. The file is
// skipped cleanly; no partial version is recorded for it.
type ScanSkip struct {
	Path   string `json:"path"`
	Reason string `json:"reason"`
}

// ScanOutput contains the result of the Scan operation.
type ScanOutput struct {
	Changed []ScanChange `json:"changed"`
	Skipped []ScanSkip   `json:"skipped,omitempty"`
}

// Scan reads every eligible tracked file and records changed content as a
// new version. Files are scanned one at a time, which keeps the
// single-writer-per-path assumption of the chain; a version conflict
// (another writer won the race) is reported as a skip and resolves on the
// next scan.
func Scan(ctx context.Context, database *sql.DB, cfg *config.Config, input ScanInput) (*ScanOutput, error) {
	candidates, err := scanCandidates(ctx, database, cfg, input.Paths)
	if err != nil {
		return nil, err
	}

	engine := newChain(database)
	out := &ScanOutput{Changed: []ScanChange{}}

	for _, path := range candidates {
		info, err := os.Stat(path)
		if err != nil {
			// Deleted or unreadable since discovery; nothing to record.
			continue
		}
		if cfg.MaxFileBytes > 0 && info.Size() > int64(cfg.MaxFileBytes) {
			out.Skipped = append(out.Skipped, ScanSkip{
				Path:   path,
				Reason: fmt.Sprintf("file exceeds %d bytes", cfg.MaxFileBytes),
			})
			continue
		}

		content, err := fsio.ReadText(path)
		if err != nil {
			out.Skipped = append(out.Skipped, ScanSkip{Path: path, Reason: err.Error()})
			continue
		}

		meta, err := engine.RecordChange(ctx, path, content)
		if err != nil {
			out.Skipped = append(out.Skipped, ScanSkip{Path: path, Reason: err.Error()})
			continue
		}
		if meta != nil {
			out.Changed = append(out.Changed, ScanChange{Path: meta.Path, Version: meta.Version})
		}
	}

	return out, nil
}

// scanCandidates resolves the set of files a scan should visit, in a
// stable order without duplicates.
func scanCandidates(ctx context.Context, database *sql.DB, cfg *config.Config, only []string) ([]string, error) {
	if len(only) > 0 {
		var candidates []string
		for _, p := range only {
			path, err := fsio.ResolvePath(p)
			if err != nil {
				return nil, err
			}
			ok, err := eligibleForScan(ctx, database, path)
			if err != nil {
				return nil, err
			}
			if ok {
				candidates = append(candidates, path)
			}
		}
		return candidates, nil
	}

	items, err := db.GetTrackedItems(ctx, database)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool)
	var candidates []string
	add := func(path string) {
		if !seen[path] {
			seen[path] = true
			candidates = append(candidates, path)
		}
	}

	for _, item := range items {
		switch {
		case isFile(item):
			add(item)
		case isDir(item):
			files, err := fsio.TextFilesInDir(item, cfg.ExcludedDirs)
			if err != nil {
				return nil, err
			}
			for _, f := range files {
				// Skip files the user explicitly untracked.
				tracked, active, err := db.TrackedState(ctx, database, f)
				if err != nil {
					return nil, err
				}
				if tracked && !active {
					continue
				}
				add(f)
			}
		}
	}

	return candidates, nil
}
