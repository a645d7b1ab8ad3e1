package types

import "github.com/commonplaces/placecore/internal/geo"

// Contact is the optional contact information on a PlaceRevision.
type Contact struct {
	Name  string
	Email string
	Phone string
}

// CustomLink is an arbitrary named link attached to a PlaceRevision.
type CustomLink struct {
	URL         string
	Title       string
	Description string
}

// Links bundles the optional link fields of a PlaceRevision.
type Links struct {
	Homepage    string
	Image       string
	ImageLink   string
	CustomLinks []CustomLink
}

// Authorship records when and by whom a PlaceRevision was authored.
type Authorship struct {
	At int64 // milliseconds since epoch
	By *ID
}

// Place is the logical, identity-stable entity: a Place never changes
// except for which revision its CurrentRev pointer names (invariant I1).
type Place struct {
	ID         ID
	License    string
	CurrentRev Revision
}

// PlaceRevision is one immutable snapshot of a Place (invariant I2 for
// the one mutable exception: CurrentStatus). Primary key is
// (PlaceID, Rev).
type PlaceRevision struct {
	PlaceID ID
	Rev     Revision

	Title       string
	Description string

	Location geo.Point
	Address  *Address

	Contact       *Contact
	OpeningHours  string
	FoundedOn     *string // YYYY-MM-DD
	Links         Links
	Tags          []string // normalized, deduplicated
	Created       Authorship
	CurrentStatus ReviewStatus
}

// Address is the optional structured address on a PlaceRevision.
type Address struct {
	Street  string
	Zip     string
	City    string
	Country string
	State   string
}

// TagSet returns the revision's tags as a TagSet for diffing.
func (r *PlaceRevision) TagSet() TagSet {
	return NewTagSet(r.Tags...)
}

// NewPlaceInput is the caller-supplied payload for creating a place
// (revision 0).
type NewPlaceInput struct {
	License      string
	Title        string
	Description  string
	Location     geo.Point
	Address      *Address
	Contact      *Contact
	OpeningHours string
	FoundedOn    *string
	Links        Links
	Tags         []string
	CreatedBy    *ID
}

// UpdatePlaceInput is the caller-supplied payload for updating a
// place. Version must equal CurrentRev+1 (spec.md §6).
type UpdatePlaceInput struct {
	Version      Revision
	Title        string
	Description  string
	Location     geo.Point
	Address      *Address
	Contact      *Contact
	OpeningHours string
	FoundedOn    *string
	Links        Links
	Tags         []string
	UpdatedBy    *ID
}
