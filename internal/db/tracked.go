package db

import (
	"context"
	"database/sql"

	"github.com/ekm507/chroni/internal/errors"
)

// UpsertTrackedItem marks a path as actively tracked, reactivating it if
// it was untracked earlier.
func UpsertTrackedItem(ctx context.Context, db *sql.DB, path string) error {
	query := `INSERT OR REPLACE INTO tracked_items (path, active) VALUES (?, 1)`
	if _, err := db.ExecContext(ctx, query, path); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeactivateTrackedItem stops tracking a path; its history survives.
func DeactivateTrackedItem(ctx context.Context, db *sql.DB, path string) error {
	query := `UPDATE tracked_items SET active = 0 WHERE path = ?`
	if _, err := db.ExecContext(ctx, query, path); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// DeleteTrackedItem removes a path's tracking row entirely (forget).
func DeleteTrackedItem(ctx context.Context, db *sql.DB, path string) error {
	query := `DELETE FROM tracked_items WHERE path = ?`
	if _, err := db.ExecContext(ctx, query, path); err != nil {
		return errors.NewInternal(err)
	}
	return nil
}

// IsTracked reports whether a path is actively tracked.
func IsTracked(ctx context.Context, db *sql.DB, path string) (bool, error) {
	query := `SELECT 1 FROM tracked_items WHERE path = ? AND active = 1`

	var one int
	err := db.QueryRowContext(ctx, query, path).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, errors.NewInternal(err)
	}
	return true, nil
}

// TrackedState reports whether a path has a tracking row and whether it
// is active. Distinguishes never-tracked from explicitly untracked.
func TrackedState(ctx context.Context, db *sql.DB, path string) (tracked, active bool, err error) {
	query := `SELECT active FROM tracked_items WHERE path = ?`

	var a int
	scanErr := db.QueryRowContext(ctx, query, path).Scan(&a)
	if scanErr == sql.ErrNoRows {
		return false, false, nil
	}
	if scanErr != nil {
		return false, false, errors.NewInternal(scanErr)
	}
	return true, a == 1, nil
}

// PathKnown reports whether a path appears anywhere: as a tracked item
// (active or not) or with version records.
func PathKnown(ctx context.Context, db *sql.DB, path string) (bool, error) {
	query := `
		SELECT EXISTS (SELECT 1 FROM tracked_items WHERE path = ?)
		    OR EXISTS (SELECT 1 FROM file_versions WHERE path = ?)
	`

	var known bool
	if err := db.QueryRowContext(ctx, query, path, path).Scan(&known); err != nil {
		return false, errors.NewInternal(err)
	}
	return known, nil
}

// GetTrackedItems returns all actively tracked paths, sorted.
func GetTrackedItems(ctx context.Context, db *sql.DB) ([]string, error) {
	query := `SELECT path FROM tracked_items WHERE active = 1 ORDER BY path ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var paths []string
	for rows.Next() {
		var p string
		if err := rows.Scan(&p); err != nil {
			return nil, errors.NewInternal(err)
		}
		paths = append(paths, p)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return paths, nil
}
