// Package ops implements the chroni operations: the glue between the CLI
// and the version-chain core. One file per operation, each taking the
// shared database handle, configuration, and an input struct.
package ops

import (
	"context"
	"crypto/rand"
	"database/sql"
	"fmt"
	"os"
	"time"

	"github.com/oklog/ulid/v2"

	"github.com/ekm507/chroni/internal/chain"
	"github.com/ekm507/chroni/internal/db"
	"github.com/ekm507/chroni/internal/errors"
	"github.com/ekm507/chroni/internal/fsio"
)

// dateLayouts accepted by restore-date, most specific first.
var dateLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02",
}

// newChain builds the version-chain engine over the shared handle.
func newChain(database *sql.DB) *chain.Chain {
	return chain.New(chain.NewSQLiteStore(database))
}

// parseDate parses YYYY-MM-DD with optional HH:MM[:SS], in local time.
func parseDate(s string) (time.Time, error) {
	for _, layout := range dateLayouts {
		if t, err := time.ParseInLocation(layout, s, time.Local); err == nil {
			return t, nil
		}
	}
	return time.Time{}, errors.NewInvalidRequest(
		fmt.Sprintf("invalid date %q (want YYYY-MM-DD, optionally with HH:MM or HH:MM:SS)", s))
}

// generateULID generates a new ULID.
func generateULID() (string, error) {
	entropy := ulid.Monotonic(rand.Reader, 0)
	id, err := ulid.New(ulid.Timestamp(time.Now()), entropy)
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// isDir reports whether the path exists and is a directory.
func isDir(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}

// isFile reports whether the path exists and is a regular file.
func isFile(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.Mode().IsRegular()
}

// eligibleForScan reports whether a resolved file path should be scanned:
// either individually tracked, or a text file beneath an actively tracked
// directory and not explicitly untracked.
func eligibleForScan(ctx context.Context, database *sql.DB, path string) (bool, error) {
	tracked, active, err := db.TrackedState(ctx, database, path)
	if err != nil {
		return false, err
	}
	if tracked {
		return active, nil
	}

	roots, err := db.GetTrackedItems(ctx, database)
	if err != nil {
		return false, err
	}
	for _, root := range roots {
		if root == path || !isDir(root) {
			continue
		}
		if isUnder(path, root) && fsio.IsTextFile(path) {
			return true, nil
		}
	}
	return false, nil
}

// isUnder reports whether path lies strictly beneath root.
func isUnder(path, root string) bool {
	if len(path) <= len(root) {
		return false
	}
	return path[:len(root)] == root && path[len(root)] == os.PathSeparator
}
