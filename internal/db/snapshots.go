package db

import (
	"context"
	"database/sql"

	"github.com/ekm507/chroni/internal/errors"
)

// Snapshot is a named, immutable capture of per-path version numbers.
type Snapshot struct {
	ID        string  `json:"id"`
	Name      string  `json:"name"`
	Note      *string `json:"note,omitempty"`
	CreatedAt int64   `json:"created_at"`
}

// SnapshotFile pins one path to the version it had when the snapshot was taken.
type SnapshotFile struct {
	Path    string `json:"path"`
	Version int    `json:"version"`
}

// InsertSnapshot stores a snapshot and its file pins in one transaction.
func InsertSnapshot(ctx context.Context, db *sql.DB, snap *Snapshot, files []SnapshotFile) error {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return errors.NewInternal(err)
	}
	defer tx.Rollback()

	query := `INSERT INTO snapshots (id, name, note, created_at) VALUES (?, ?, ?, ?)`
	if _, err := tx.ExecContext(ctx, query, snap.ID, snap.Name, toNullString(snap.Note), snap.CreatedAt); err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewSnapshotExists(snap.Name)
		}
		return errors.NewInternal(err)
	}

	fileQuery := `INSERT INTO snapshot_files (snapshot_id, path, version) VALUES (?, ?, ?)`
	for _, f := range files {
		if _, err := tx.ExecContext(ctx, fileQuery, snap.ID, f.Path, f.Version); err != nil {
			return errors.NewInternal(err)
		}
	}

	if err := tx.Commit(); err != nil {
		return errors.NewInternal(err)
	}

	return nil
}

// GetSnapshotByName retrieves a snapshot by its unique name.
// Returns nil if no snapshot has that name.
func GetSnapshotByName(ctx context.Context, db *sql.DB, name string) (*Snapshot, error) {
	query := `SELECT id, name, note, created_at FROM snapshots WHERE name = ?`

	var snap Snapshot
	var note sql.NullString
	err := db.QueryRowContext(ctx, query, name).Scan(&snap.ID, &snap.Name, &note, &snap.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	snap.Note = fromNullString(note)

	return &snap, nil
}

// ListSnapshots returns all snapshots, most recent first.
func ListSnapshots(ctx context.Context, db *sql.DB) ([]Snapshot, error) {
	query := `SELECT id, name, note, created_at FROM snapshots ORDER BY created_at DESC, name ASC`

	rows, err := db.QueryContext(ctx, query)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var snaps []Snapshot
	for rows.Next() {
		var snap Snapshot
		var note sql.NullString
		if err := rows.Scan(&snap.ID, &snap.Name, &note, &snap.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		snap.Note = fromNullString(note)
		snaps = append(snaps, snap)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return snaps, nil
}

// GetSnapshotFiles returns the file pins of a snapshot, ordered by path.
func GetSnapshotFiles(ctx context.Context, db *sql.DB, snapshotID string) ([]SnapshotFile, error) {
	query := `SELECT path, version FROM snapshot_files WHERE snapshot_id = ? ORDER BY path ASC`

	rows, err := db.QueryContext(ctx, query, snapshotID)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var files []SnapshotFile
	for rows.Next() {
		var f SnapshotFile
		if err := rows.Scan(&f.Path, &f.Version); err != nil {
			return nil, errors.NewInternal(err)
		}
		files = append(files, f)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return files, nil
}

// toNullString converts a *string to sql.NullString.
func toNullString(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

// fromNullString converts a sql.NullString to *string.
func fromNullString(ns sql.NullString) *string {
	if !ns.Valid {
		return nil
	}
	return &ns.String
}
