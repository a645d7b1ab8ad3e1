package types

// ModeratedTag is a tag label "owned" by an Organization with flags
// governing whether the organization (or a Scout/Admin) may add or
// remove it on a place, and whether doing so requires a clearance
// round-trip.
type ModeratedTag struct {
	Label            string // normalized
	AllowAdd         bool
	AllowRemove      bool
	RequireClearance bool
}

// Organization owns zero or more ModeratedTags. Labels are unique
// within one organization (enforced at registration); across
// organizations a label may be owned-with-clearance by at most one
// organization (spec.md §4.4, enforced by the clearance engine).
type Organization struct {
	ID           ID
	Name         string
	APIToken     string
	ModeratedTag []ModeratedTag
}

// FindModeratedTag returns the org's rule for label, if any.
func (o *Organization) FindModeratedTag(label string) (ModeratedTag, bool) {
	for _, mt := range o.ModeratedTag {
		if mt.Label == label {
			return mt, true
		}
	}
	return ModeratedTag{}, false
}
