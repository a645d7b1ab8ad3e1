package types

import "github.com/google/uuid"

// ID is an opaque, case-sensitive identifier for a domain entity. It
// is backed by a ULID-like value at the wire boundary but this
// package never interprets its structure.
type ID string

// NewID mints a fresh opaque identifier.
func NewID() ID {
	return ID(uuid.NewString())
}

// Revision is a monotonically increasing, non-negative revision
// number of a Place. The initial revision is 0.
type Revision uint64

// IsInitial reports whether r is the first revision of a place.
func (r Revision) IsInitial() bool { return r == 0 }

// Next returns the revision that immediately follows r.
func (r Revision) Next() Revision { return r + 1 }

// SubRevision is a monotonically increasing sub-revision within a
// single PlaceRevision's review-status log.
type SubRevision uint64
