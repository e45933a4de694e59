package chain

import (
	"context"
	"database/sql"

	"github.com/ekm507/chroni/internal/db"
	"github.com/ekm507/chroni/internal/version"
)

// Store is the persistence surface the chain replays against: a durable,
// append-only log keyed by (path, version). Append must fail on a
// (path, version) collision rather than overwrite, and DeleteAll must be
// atomic with respect to concurrent readers.
type Store interface {
	Append(ctx context.Context, rec *version.Record) error
	Get(ctx context.Context, path string, v int) (*version.Record, error)
	GetUpTo(ctx context.Context, path string, v int) ([]version.Record, error)
	History(ctx context.Context, path string, limit int) ([]version.Meta, error)
	Latest(ctx context.Context, path string) (*version.Meta, error)
	NearestAt(ctx context.Context, path string, instant int64) (*version.Meta, error)
	DeleteAll(ctx context.Context, path string) (bool, error)
}

// SQLiteStore implements Store over the long-lived database handle.
// Connection pooling and scoped acquisition per operation belong to
// database/sql; no per-operation open/close.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore wraps an initialized database handle.
func NewSQLiteStore(database *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: database}
}

func (s *SQLiteStore) Append(ctx context.Context, rec *version.Record) error {
	return db.AppendVersion(ctx, s.db, rec)
}

func (s *SQLiteStore) Get(ctx context.Context, path string, v int) (*version.Record, error) {
	return db.GetVersion(ctx, s.db, path, v)
}

func (s *SQLiteStore) GetUpTo(ctx context.Context, path string, v int) ([]version.Record, error) {
	return db.GetVersionsUpTo(ctx, s.db, path, v)
}

func (s *SQLiteStore) History(ctx context.Context, path string, limit int) ([]version.Meta, error) {
	return db.GetAllVersions(ctx, s.db, path, limit)
}

func (s *SQLiteStore) Latest(ctx context.Context, path string) (*version.Meta, error) {
	return db.GetLatestVersion(ctx, s.db, path)
}

func (s *SQLiteStore) NearestAt(ctx context.Context, path string, instant int64) (*version.Meta, error) {
	return db.GetNearestVersionAt(ctx, s.db, path, instant)
}

func (s *SQLiteStore) DeleteAll(ctx context.Context, path string) (bool, error) {
	return db.DeleteAllVersions(ctx, s.db, path)
}
