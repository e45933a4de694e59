package ops

import (
	"context"
	"database/sql"

	"github.com/ekm507/chroni/internal/chain"
	"github.com/ekm507/chroni/internal/db"
	"github.com/ekm507/chroni/internal/delta"
	"github.com/ekm507/chroni/internal/errors"
	"github.com/ekm507/chroni/internal/fsio"
	"github.com/ekm507/chroni/internal/version"
)

// HistoryInput contains parameters for the History operation.
type HistoryInput struct {
	Path  string
	Limit int // 0 = all versions; N = the most recent N
}

// HistoryEntry is one version plus a human-readable change preview.
type HistoryEntry struct {
	version.Meta
	Preview string `json:"preview,omitempty"` // unified diff, display only
}

// HistoryOutput contains the result of the History operation.
type HistoryOutput struct {
	Path     string         `json:"path"`
	Versions []HistoryEntry `json:"versions"`
}

// History lists a path's versions ascending with a unified-diff preview
// of each change. Previews are rendered from one forward replay of the
// chain; they are never parsed back.
func History(ctx context.Context, database *sql.DB, input HistoryInput) (*HistoryOutput, error) {
	path, err := fsio.ResolvePath(input.Path)
	if err != nil {
		return nil, err
	}

	metas, err := newChain(database).History(ctx, path, input.Limit)
	if err != nil {
		return nil, err
	}
	if len(metas) == 0 {
		return nil, errors.NewNotFound(path)
	}

	last := metas[len(metas)-1].Version
	recs, err := db.GetVersionsUpTo(ctx, database, path, last)
	if err != nil {
		return nil, err
	}
	contents, err := chain.Replay(path, recs)
	if err != nil {
		return nil, err
	}

	// The meta window may be a suffix of the full chain when limited.
	offset := last - len(metas) // versions are contiguous 1..last

	entries := make([]HistoryEntry, 0, len(metas))
	for i, m := range metas {
		idx := offset + i
		prev := ""
		if idx > 0 {
			prev = contents[idx-1]
		}
		entries = append(entries, HistoryEntry{
			Meta:    m,
			Preview: delta.Unified(prev, contents[idx]),
		})
	}

	return &HistoryOutput{Path: path, Versions: entries}, nil
}
