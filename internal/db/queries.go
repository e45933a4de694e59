package db

import (
	"context"
	"database/sql"
	"strings"

	"github.com/ekm507/chroni/internal/errors"
	"github.com/ekm507/chroni/internal/version"
)

// AppendVersion stores a new version record. The (path, version) primary
// key makes a concurrent-append race a hard conflict instead of a silent
// overwrite; callers re-read the latest version and retry.
func AppendVersion(ctx context.Context, db *sql.DB, rec *version.Record) error {
	query := `
		INSERT INTO file_versions (path, version, kind, payload, content_hash, created_at)
		VALUES (?, ?, ?, ?, ?, ?)
	`

	_, err := db.ExecContext(ctx, query,
		rec.Path, rec.Version, string(rec.Kind), rec.Payload, rec.ContentHash, rec.CreatedAt,
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return errors.NewVersionConflict(rec.Path, rec.Version)
		}
		return errors.NewInternal(err)
	}

	return nil
}

// isUniqueConstraintError checks if the error is a SQLite UNIQUE constraint violation.
func isUniqueConstraintError(err error) bool {
	if err == nil {
		return false
	}
	// SQLite returns "UNIQUE constraint failed: ..." for unique violations
	return strings.Contains(err.Error(), "UNIQUE constraint failed")
}

// GetVersion retrieves one version record for a path.
func GetVersion(ctx context.Context, db *sql.DB, path string, v int) (*version.Record, error) {
	query := `
		SELECT path, version, kind, payload, content_hash, created_at
		FROM file_versions
		WHERE path = ? AND version = ?
	`

	row := db.QueryRowContext(ctx, query, path, v)
	rec, err := scanRecord(row)
	if err == sql.ErrNoRows {
		return nil, errors.NewVersionNotFound(path, v)
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return rec, nil
}

// GetVersionsUpTo retrieves all records for a path with version <= v,
// ordered ascending by version.
func GetVersionsUpTo(ctx context.Context, db *sql.DB, path string, v int) ([]version.Record, error) {
	query := `
		SELECT path, version, kind, payload, content_hash, created_at
		FROM file_versions
		WHERE path = ? AND version <= ?
		ORDER BY version ASC
	`

	rows, err := db.QueryContext(ctx, query, path, v)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var recs []version.Record
	for rows.Next() {
		var rec version.Record
		var kind string
		if err := rows.Scan(&rec.Path, &rec.Version, &kind, &rec.Payload, &rec.ContentHash, &rec.CreatedAt); err != nil {
			return nil, errors.NewInternal(err)
		}
		rec.Kind = version.Kind(kind)
		recs = append(recs, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return recs, nil
}

// GetAllVersions retrieves version metadata for a path, ordered ascending.
// A positive limit caps the result to the most recent limit versions.
func GetAllVersions(ctx context.Context, db *sql.DB, path string, limit int) ([]version.Meta, error) {
	query := `
		SELECT path, version, kind, content_hash, created_at
		FROM file_versions
		WHERE path = ?
		ORDER BY version ASC
	`
	args := []any{path}
	if limit > 0 {
		// Most recent limit versions, still returned ascending.
		query = `
			SELECT path, version, kind, content_hash, created_at
			FROM (
				SELECT path, version, kind, content_hash, created_at
				FROM file_versions
				WHERE path = ?
				ORDER BY version DESC
				LIMIT ?
			)
			ORDER BY version ASC
		`
		args = append(args, limit)
	}

	rows, err := db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, errors.NewInternal(err)
	}
	defer rows.Close()

	var metas []version.Meta
	for rows.Next() {
		m, err := scanMeta(rows)
		if err != nil {
			return nil, errors.NewInternal(err)
		}
		metas = append(metas, *m)
	}
	if err := rows.Err(); err != nil {
		return nil, errors.NewInternal(err)
	}

	return metas, nil
}

// GetLatestVersion retrieves metadata of the highest version for a path.
// Returns nil if the path has no versions.
func GetLatestVersion(ctx context.Context, db *sql.DB, path string) (*version.Meta, error) {
	query := `
		SELECT path, version, kind, content_hash, created_at
		FROM file_versions
		WHERE path = ?
		ORDER BY version DESC
		LIMIT 1
	`

	m, err := scanMeta(db.QueryRowContext(ctx, query, path))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return m, nil
}

// GetNearestVersionAt retrieves the latest version whose timestamp is at
// or before instant (unix seconds); ties broken by highest version.
// Returns nil if the instant predates the path's first version.
func GetNearestVersionAt(ctx context.Context, db *sql.DB, path string, instant int64) (*version.Meta, error) {
	query := `
		SELECT path, version, kind, content_hash, created_at
		FROM file_versions
		WHERE path = ? AND created_at <= ?
		ORDER BY created_at DESC, version DESC
		LIMIT 1
	`

	m, err := scanMeta(db.QueryRowContext(ctx, query, path, instant))
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, errors.NewInternal(err)
	}

	return m, nil
}

// DeleteAllVersions removes a path's entire chain and any snapshot
// references to it, in one transaction. Returns whether anything existed.
func DeleteAllVersions(ctx context.Context, db *sql.DB, path string) (bool, error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	defer tx.Rollback()

	result, err := tx.ExecContext(ctx, `DELETE FROM file_versions WHERE path = ?`, path)
	if err != nil {
		return false, errors.NewInternal(err)
	}
	deleted, err := result.RowsAffected()
	if err != nil {
		return false, errors.NewInternal(err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM snapshot_files WHERE path = ?`, path); err != nil {
		return false, errors.NewInternal(err)
	}

	if err := tx.Commit(); err != nil {
		return false, errors.NewInternal(err)
	}

	return deleted > 0, nil
}

// scanner abstracts *sql.Row and *sql.Rows for the meta scan helper.
type scanner interface {
	Scan(dest ...any) error
}

// scanMeta scans a payload-less version row.
func scanMeta(row scanner) (*version.Meta, error) {
	var m version.Meta
	var kind string
	if err := row.Scan(&m.Path, &m.Version, &kind, &m.ContentHash, &m.CreatedAt); err != nil {
		return nil, err
	}
	m.Kind = version.Kind(kind)
	return &m, nil
}

// scanRecord scans a full version row.
func scanRecord(row *sql.Row) (*version.Record, error) {
	var rec version.Record
	var kind string
	if err := row.Scan(&rec.Path, &rec.Version, &kind, &rec.Payload, &rec.ContentHash, &rec.CreatedAt); err != nil {
		return nil, err
	}
	rec.Kind = version.Kind(kind)
	return &rec, nil
}
