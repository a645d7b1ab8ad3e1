// Package export implements the CSV export column contract of
// spec.md §6, grounded on
// _examples/original_source/ofdb-webserver/src/web/api/tests.rs's
// export_csv assertions (column order, category/tag split,
// created_by role gating) and adapters::csv::EntryRecord's
// field-per-column shape in the original, reworked here as a single
// pure function with no file/HTTP I/O (that stays an external
// collaborator per spec.md §1 Non-goals).
package export

import (
	"sort"
	"strconv"
	"strings"

	"github.com/commonplaces/placecore/internal/types"
)

// categoryTags are the well-known top-level category labels the
// original ofdb-entities Category type hard-codes (ID_NON_PROFIT,
// ID_COMMERCIAL); a place's tags in this set are reported in the
// categories column instead of the tags column.
var categoryTags = map[string]bool{
	"non-profit": true,
	"commercial": true,
}

// PlaceCSVRow renders one CSV row for place/rev in the exact column
// order of spec.md §6:
//
//	id, created_at, created_by?, version, title, description, lat, lng,
//	street, zip, city, country, state, homepage, contact_name,
//	contact_email, contact_phone, opening_hours, founded_on, categories,
//	tags, license, image_url, image_link_url, avg_rating
//
// created_by is visible to an Admin caller for any place, to a Scout
// caller only when ownedByCallerOrg is true (the place carries a
// moderated tag cleared by the caller's organization), and is denied
// (returns an empty column) for every other role.
func PlaceCSVRow(place types.Place, rev types.PlaceRevision, avg types.AvgRatings, callerRole types.Role, ownedByCallerOrg bool) []string {
	categories, tags := splitCategories(rev.Tags)

	var createdBy string
	if rev.Created.By != nil && canSeeCreatedBy(callerRole, ownedByCallerOrg) {
		createdBy = string(*rev.Created.By)
	}

	var street, zip, city, country, state string
	if rev.Address != nil {
		street, zip, city, country, state = rev.Address.Street, rev.Address.Zip, rev.Address.City, rev.Address.Country, rev.Address.State
	}

	var contactName, contactEmail, contactPhone string
	if rev.Contact != nil {
		contactName, contactEmail, contactPhone = rev.Contact.Name, rev.Contact.Email, rev.Contact.Phone
	}

	var foundedOn string
	if rev.FoundedOn != nil {
		foundedOn = *rev.FoundedOn
	}

	return []string{
		string(place.ID),
		strconv.FormatInt(rev.Created.At/1000, 10),
		createdBy,
		strconv.FormatUint(uint64(rev.Rev), 10),
		rev.Title,
		rev.Description,
		strconv.FormatFloat(rev.Location.Lat.Deg(), 'f', -1, 64),
		strconv.FormatFloat(rev.Location.Lng.Deg(), 'f', -1, 64),
		street,
		zip,
		city,
		country,
		state,
		rev.Links.Homepage,
		contactName,
		contactEmail,
		contactPhone,
		rev.OpeningHours,
		foundedOn,
		strings.Join(categories, ","),
		strings.Join(tags, ","),
		place.License,
		rev.Links.Image,
		rev.Links.ImageLink,
		strconv.FormatFloat(avg.Combined(), 'f', -1, 64),
	}
}

func canSeeCreatedBy(role types.Role, ownedByCallerOrg bool) bool {
	switch {
	case role == types.RoleAdmin:
		return true
	case role == types.RoleScout:
		return ownedByCallerOrg
	default:
		return false
	}
}

func splitCategories(allTags []string) (categories, tags []string) {
	for _, t := range allTags {
		if categoryTags[t] {
			categories = append(categories, t)
		} else {
			tags = append(tags, t)
		}
	}
	sort.Strings(categories)
	sort.Strings(tags)
	return categories, tags
}
