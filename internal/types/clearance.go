package types

// PendingClearance is a per-(Organization,Place) record noting that
// the place's current revision carries a moderated tag owned by that
// organization and has not yet been approved at the current revision
// (GLOSSARY: "Pending clearance"). At most one row exists per
// (OrgID, PlaceID) pair (invariant I4/P7).
type PendingClearance struct {
	OrgID               ID
	PlaceID             ID
	CreatedAt           int64 // milliseconds since epoch
	LastClearedRevision *Revision
}

// ClearanceUpdate is the caller-supplied payload for resolving a
// pending clearance: if ClearedRevision is nil, the store uses the
// place's current revision.
type ClearanceUpdate struct {
	PlaceID         ID
	ClearedRevision *Revision
}
