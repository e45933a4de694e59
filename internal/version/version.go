// Package version defines the record types of the per-file version chain.
// Each tracked path owns a contiguous chain 1..N; version 1 always stores
// full content, later versions store a delta against the version before.
package version

// Kind discriminates full-content records from delta records.
type Kind string

const (
	// KindFull marks a record whose payload is the complete file content.
	KindFull Kind = "full"

	// KindDelta marks a record whose payload is an encoded delta against
	// the materialized content of version-1.
	KindDelta Kind = "delta"
)

// Record is one immutable entry in a path's version chain.
type Record struct {
	Path        string // canonical absolute path of the tracked file
	Version     int    // 1-based, contiguous per path
	Kind        Kind
	Payload     string // full text (KindFull) or encoded delta (KindDelta)
	ContentHash string // xxh3-128 of the materialized content at this version
	CreatedAt   int64  // unix seconds, non-decreasing within a chain
}

// Meta is a Record without its payload, for history listings and lookups
// that don't need content.
type Meta struct {
	Path        string `json:"path"`
	Version     int    `json:"version"`
	Kind        Kind   `json:"kind"`
	ContentHash string `json:"content_hash"`
	CreatedAt   int64  `json:"created_at"`
}

// ToMeta strips the payload from a record.
func (r *Record) ToMeta() Meta {
	return Meta{
		Path:        r.Path,
		Version:     r.Version,
		Kind:        r.Kind,
		ContentHash: r.ContentHash,
		CreatedAt:   r.CreatedAt,
	}
}
