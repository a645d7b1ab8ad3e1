// Package validate implements the field-level validation and
// auto-correction rules of spec.md §4.6/§7 (Validation errors, the
// "auto-correct empty-string fields to None" step of create_place),
// grounded on
// _examples/original_source/ofdb-core/src/util/validate.rs's
// Validate/AutoCorrect trait pair, reworked as plain functions in the
// teacher's no-framework style (the teacher never reaches for
// go-playground/validator anywhere in the retrieval pack, so this
// stays hand-rolled on net/mail, net/url and time rather than
// importing a validation framework with no grounded precedent).
package validate

import (
	"net/mail"
	"net/url"
	"strings"
	"time"

	"github.com/commonplaces/placecore/internal/apperr"
	"github.com/commonplaces/placecore/internal/types"
)

// Email reports whether s is a syntactically valid email address. An
// empty string is considered valid (absence, not malformed presence).
func Email(s string) bool {
	if s == "" {
		return true
	}
	_, err := mail.ParseAddress(s)
	return err == nil
}

// URL reports whether s is a syntactically valid absolute http(s) URL.
// An empty string is considered valid.
func URL(s string) bool {
	if s == "" {
		return true
	}
	u, err := url.Parse(s)
	if err != nil || !u.IsAbs() {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// Date reports whether s is a valid YYYY-MM-DD calendar date. An empty
// string is considered valid.
func Date(s string) bool {
	if s == "" {
		return true
	}
	_, err := time.Parse("2006-01-02", s)
	return err == nil
}

// License reports whether license is non-empty (the repository-level
// check); whether it belongs to the caller's accepted-license
// allow-list is checked separately by the create_place workflow.
func License(license string) bool {
	return strings.TrimSpace(license) != ""
}

// Contact validates the optional email field of c; the phone number is
// not checked.
func Contact(c *types.Contact) error {
	if c == nil {
		return nil
	}
	if !Email(c.Email) {
		return apperr.New(apperr.Validation, "Contact", "invalid email address")
	}
	return nil
}

// addressNonEmpty reports whether a has at least one non-empty field.
func addressNonEmpty(a *types.Address) bool {
	return a != nil && (a.Street != "" || a.Zip != "" || a.City != "" || a.Country != "" || a.State != "")
}

func contactNonEmpty(c *types.Contact) bool {
	return c != nil && (c.Name != "" || c.Email != "" || c.Phone != "")
}

// AutoCorrectAddress nils a if every field is empty, otherwise trims
// its fields and returns it unchanged in shape.
func AutoCorrectAddress(a *types.Address) *types.Address {
	if a == nil {
		return nil
	}
	a.Street = strings.TrimSpace(a.Street)
	a.Zip = strings.TrimSpace(a.Zip)
	a.City = strings.TrimSpace(a.City)
	a.Country = strings.TrimSpace(a.Country)
	a.State = strings.TrimSpace(a.State)
	if !addressNonEmpty(a) {
		return nil
	}
	return a
}

// AutoCorrectContact nils c if every field is empty, otherwise trims
// its fields and returns it unchanged in shape.
func AutoCorrectContact(c *types.Contact) *types.Contact {
	if c == nil {
		return nil
	}
	c.Name = strings.TrimSpace(c.Name)
	c.Email = strings.TrimSpace(c.Email)
	c.Phone = strings.TrimSpace(c.Phone)
	if !contactNonEmpty(c) {
		return nil
	}
	return c
}

// AutoCorrectFoundedOn nils founded if it is an empty string.
func AutoCorrectFoundedOn(founded *string) *string {
	if founded == nil {
		return nil
	}
	v := strings.TrimSpace(*founded)
	if v == "" {
		return nil
	}
	return &v
}

// NewPlaceInput applies the create_place auto-correct step to in
// place: empty Address/Contact are dropped (set to nil) and FoundedOn
// is trimmed or dropped, matching the teacher's Event/Location/Contact
// AutoCorrect chain generalized to a place.
func NewPlaceInput(in *types.NewPlaceInput) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.OpeningHours = strings.TrimSpace(in.OpeningHours)
	in.Links.Homepage = strings.TrimSpace(in.Links.Homepage)
	in.Links.Image = strings.TrimSpace(in.Links.Image)
	in.Links.ImageLink = strings.TrimSpace(in.Links.ImageLink)
	in.Address = AutoCorrectAddress(in.Address)
	in.Contact = AutoCorrectContact(in.Contact)
	in.FoundedOn = AutoCorrectFoundedOn(in.FoundedOn)
}

// UpdatePlaceInput is NewPlaceInput's counterpart for update_place.
func UpdatePlaceInput(in *types.UpdatePlaceInput) {
	in.Title = strings.TrimSpace(in.Title)
	in.Description = strings.TrimSpace(in.Description)
	in.OpeningHours = strings.TrimSpace(in.OpeningHours)
	in.Links.Homepage = strings.TrimSpace(in.Links.Homepage)
	in.Links.Image = strings.TrimSpace(in.Links.Image)
	in.Links.ImageLink = strings.TrimSpace(in.Links.ImageLink)
	in.Address = AutoCorrectAddress(in.Address)
	in.Contact = AutoCorrectContact(in.Contact)
	in.FoundedOn = AutoCorrectFoundedOn(in.FoundedOn)
}

// PlaceRevision validates the fields of a fully-assembled revision
// before it is persisted: non-empty title, valid contact email, valid
// homepage/image URLs, valid FoundedOn date.
func PlaceRevision(rev *types.PlaceRevision) error {
	if strings.TrimSpace(rev.Title) == "" {
		return apperr.New(apperr.Validation, "PlaceRevision", "title must not be empty")
	}
	if err := Contact(rev.Contact); err != nil {
		return err
	}
	if !URL(rev.Links.Homepage) {
		return apperr.New(apperr.Validation, "PlaceRevision", "invalid homepage URL")
	}
	if !URL(rev.Links.Image) {
		return apperr.New(apperr.Validation, "PlaceRevision", "invalid image URL")
	}
	if !URL(rev.Links.ImageLink) {
		return apperr.New(apperr.Validation, "PlaceRevision", "invalid image link URL")
	}
	if rev.FoundedOn != nil && !Date(*rev.FoundedOn) {
		return apperr.New(apperr.Validation, "PlaceRevision", "invalid founded_on date")
	}
	return nil
}
