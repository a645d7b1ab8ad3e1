package types

// ReviewStatus is the moderation state of a PlaceRevision.
type ReviewStatus string

const (
	Created   ReviewStatus = "created"
	Confirmed ReviewStatus = "confirmed"
	Rejected  ReviewStatus = "rejected"
	Archived  ReviewStatus = "archived"
)

// Valid reports whether s is one of the four legal review statuses.
func (s ReviewStatus) Valid() bool {
	switch s {
	case Created, Confirmed, Rejected, Archived:
		return true
	default:
		return false
	}
}

// VisibleStatuses is the default filter for public search/list reads
// (GLOSSARY: "Visible status set").
var VisibleStatuses = map[ReviewStatus]bool{
	Created:   true,
	Confirmed: true,
}

// ReviewStatusLogEntry is one append-only entry in a PlaceRevision's
// review history. The newest entry (by SubRev) determines the
// revision's denormalized CurrentStatus (invariant I2).
type ReviewStatusLogEntry struct {
	SubRev    SubRevision
	CreatedAt int64 // milliseconds since epoch
	Reviewer  *ID
	Status    ReviewStatus
	Context   string // optional free-text reason/comment
}

// ReviewNonce is a single-use, expiring token permitting out-of-band
// review of one specific revision of one specific place (spec.md
// §4.3, §4.6). Consuming it requires the place's current revision to
// still equal PlaceRevision; otherwise the workflow fails
// apperr.InvalidVersion.
type ReviewNonce struct {
	PlaceID       ID
	PlaceRevision Revision
	Nonce         string
	NewStatus     ReviewStatus
	ExpiresAt     int64 // milliseconds since epoch
}
