// Package chain is the versioned-content engine: it appends observed
// content as full or delta records and materializes any past version by
// replaying deltas from the chain's full seed.
package chain

import (
	"context"
	"time"

	"github.com/ekm507/chroni/internal/delta"
	"github.com/ekm507/chroni/internal/errors"
	"github.com/ekm507/chroni/internal/fsio"
	"github.com/ekm507/chroni/internal/version"
)

// Chain records and reconstructs per-path version history.
// At most one in-flight RecordChange per path is assumed (the scan loop
// enforces this); a lost race surfaces as VERSION_CONFLICT from the store.
type Chain struct {
	store Store
	now   func() time.Time
}

// New creates a chain over a store.
func New(store Store) *Chain {
	return &Chain{store: store, now: time.Now}
}

// RecordChange appends observed content for a path as a new version.
// Version 1 is a full record; later versions store a delta against the
// previous version. Returns nil when content is unchanged (no record is
// appended), making repeated scans of an unchanged file idempotent.
func (c *Chain) RecordChange(ctx context.Context, path, content string) (*version.Meta, error) {
	latest, err := c.store.Latest(ctx, path)
	if err != nil {
		return nil, err
	}

	hash := fsio.HashText(content)
	ts := c.timestamp(latest)

	if latest == nil {
		rec := &version.Record{
			Path:        path,
			Version:     1,
			Kind:        version.KindFull,
			Payload:     content,
			ContentHash: hash,
			CreatedAt:   ts,
		}
		if err := c.store.Append(ctx, rec); err != nil {
			return nil, err
		}
		m := rec.ToMeta()
		return &m, nil
	}

	// No-change test: the stored hash of the latest materialized content
	// against the observed content's hash.
	if latest.ContentHash == hash {
		return nil, nil
	}

	prev, err := c.Materialize(ctx, path, latest.Version)
	if err != nil {
		return nil, err
	}

	payload, err := delta.Encode(delta.Compute(prev, content))
	if err != nil {
		return nil, err
	}

	rec := &version.Record{
		Path:        path,
		Version:     latest.Version + 1,
		Kind:        version.KindDelta,
		Payload:     payload,
		ContentHash: hash,
		CreatedAt:   ts,
	}
	if err := c.store.Append(ctx, rec); err != nil {
		return nil, err
	}

	m := rec.ToMeta()
	return &m, nil
}

// Materialize reconstructs the exact content at a version by replaying
// deltas forward from the chain's full seed. O(version) records replayed;
// chains are expected to stay short-to-moderate.
func (c *Chain) Materialize(ctx context.Context, path string, v int) (string, error) {
	if v < 1 {
		return "", errors.NewVersionNotFound(path, v)
	}

	recs, err := c.store.GetUpTo(ctx, path, v)
	if err != nil {
		return "", err
	}
	if len(recs) == 0 || recs[len(recs)-1].Version != v {
		return "", errors.NewVersionNotFound(path, v)
	}

	contents, err := Replay(path, recs)
	if err != nil {
		return "", err
	}

	return contents[len(contents)-1], nil
}

// Replay validates a fetched chain prefix and reconstructs the content at
// every record, in order. Chain invariants: starts at 1, first record
// full, no gaps. A violation means a prior bug or storage corruption; it
// is reported, never patched over by treating a delta as if it were full.
func Replay(path string, recs []version.Record) ([]string, error) {
	if len(recs) == 0 {
		return nil, nil
	}

	if recs[0].Version != 1 {
		return nil, errors.NewChainIntegrity(path, "chain does not start at version 1")
	}
	if recs[0].Kind != version.KindFull {
		return nil, errors.NewChainIntegrity(path, "first record is not a full record")
	}

	contents := make([]string, 0, len(recs))
	content := recs[0].Payload
	contents = append(contents, content)

	for i := 1; i < len(recs); i++ {
		rec := &recs[i]
		if rec.Version != recs[i-1].Version+1 {
			return nil, errors.NewChainIntegrity(path, "gap in version numbers")
		}
		if rec.Kind != version.KindDelta {
			return nil, errors.NewChainIntegrity(path, "unexpected full record mid-chain")
		}
		d, err := delta.Decode(rec.Payload)
		if err != nil {
			return nil, err
		}
		content, err = delta.Apply(content, d)
		if err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}

	return contents, nil
}

// Latest returns metadata of the newest version, or nil for an empty chain.
func (c *Chain) Latest(ctx context.Context, path string) (*version.Meta, error) {
	return c.store.Latest(ctx, path)
}

// History returns version metadata ascending; a positive limit caps the
// result to the most recent limit versions.
func (c *Chain) History(ctx context.Context, path string, limit int) ([]version.Meta, error) {
	return c.store.History(ctx, path, limit)
}

// FindNearestAt returns the latest version created at or before instant,
// ties broken by highest version number. Returns nil when the instant
// predates the chain.
func (c *Chain) FindNearestAt(ctx context.Context, path string, instant time.Time) (*version.Meta, error) {
	return c.store.NearestAt(ctx, path, instant.Unix())
}

// Forget deletes the path's entire chain atomically. Returns whether any
// history existed.
func (c *Chain) Forget(ctx context.Context, path string) (bool, error) {
	return c.store.DeleteAll(ctx, path)
}

// timestamp returns the record creation instant, clamped so timestamps
// never decrease within a chain even if the wall clock steps back.
func (c *Chain) timestamp(latest *version.Meta) int64 {
	ts := c.now().Unix()
	if latest != nil && ts < latest.CreatedAt {
		ts = latest.CreatedAt
	}
	return ts
}
