package export_test

import (
	"testing"

	"github.com/commonplaces/placecore/internal/export"
	"github.com/commonplaces/placecore/internal/geo"
	"github.com/commonplaces/placecore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testPlaceAndRevision(t *testing.T) (types.Place, types.PlaceRevision) {
	t.Helper()
	lat, err := geo.LatFromDeg(52.5)
	require.NoError(t, err)
	lng, err := geo.LngFromDeg(13.4)
	require.NoError(t, err)

	createdBy := types.ID("user-1")
	founded := "1999-01-01"

	place := types.Place{ID: types.ID("place-1"), License: "ODbL-1.0", CurrentRev: 0}
	rev := types.PlaceRevision{
		PlaceID:     place.ID,
		Rev:         0,
		Title:       "Cafe Freiraum",
		Description: "A nice place",
		Location:    geo.NewPoint(lat, lng),
		Address: &types.Address{
			Street: "Hauptstr. 1", Zip: "10115", City: "Berlin", Country: "Germany", State: "Berlin",
		},
		Contact:      &types.Contact{Name: "Jane Doe", Email: "jane@cafe.test", Phone: "0123456789"},
		OpeningHours: "24/7",
		FoundedOn:    &founded,
		Links:        types.Links{Homepage: "https://cafe.test", Image: "https://cafe.test/img.png", ImageLink: "https://cafe.test/img-link"},
		Tags:         []string{"vegan", "non-profit", "wifi"},
		Created:      types.Authorship{At: 1_000_000, By: &createdBy},
	}
	return place, rev
}

func TestPlaceCSVRow_ColumnOrderAndSplit(t *testing.T) {
	place, rev := testPlaceAndRevision(t)
	row := export.PlaceCSVRow(place, rev, types.AvgRatings{}, types.RoleAdmin, false)

	require.Len(t, row, 25)
	assert.Equal(t, "place-1", row[0])
	assert.Equal(t, "1000", row[1]) // unix seconds, from millis/1000
	assert.Equal(t, "user-1", row[2])
	assert.Equal(t, "0", row[3])
	assert.Equal(t, "Cafe Freiraum", row[4])
	assert.Equal(t, "non-profit", row[19]) // categories column
	assert.Equal(t, "vegan,wifi", row[20]) // tags column excludes category tag
	assert.Equal(t, "ODbL-1.0", row[21])
}

func TestPlaceCSVRow_CreatedByVisibility(t *testing.T) {
	place, rev := testPlaceAndRevision(t)

	t.Run("admin always sees created_by", func(t *testing.T) {
		row := export.PlaceCSVRow(place, rev, types.AvgRatings{}, types.RoleAdmin, false)
		assert.Equal(t, "user-1", row[2])
	})

	t.Run("scout sees created_by only for their org's place", func(t *testing.T) {
		owned := export.PlaceCSVRow(place, rev, types.AvgRatings{}, types.RoleScout, true)
		assert.Equal(t, "user-1", owned[2])

		notOwned := export.PlaceCSVRow(place, rev, types.AvgRatings{}, types.RoleScout, false)
		assert.Equal(t, "", notOwned[2])
	})

	t.Run("user is denied regardless of ownership", func(t *testing.T) {
		row := export.PlaceCSVRow(place, rev, types.AvgRatings{}, types.RoleUser, true)
		assert.Equal(t, "", row[2])
	})
}

func TestPlaceCSVRow_OptionalFieldsOmittedWhenNil(t *testing.T) {
	place := types.Place{ID: types.ID("place-2"), License: "CC0"}
	rev := types.PlaceRevision{
		PlaceID: place.ID,
		Title:   "Bare Place",
		Created: types.Authorship{At: 0},
	}
	row := export.PlaceCSVRow(place, rev, types.AvgRatings{}, types.RoleAdmin, false)
	require.Len(t, row, 25)
	assert.Equal(t, "", row[2])  // created_by: nil By
	assert.Equal(t, "", row[8])  // street
	assert.Equal(t, "", row[14]) // contact_name
	assert.Equal(t, "", row[18]) // founded_on
	assert.Equal(t, "", row[19]) // categories
	assert.Equal(t, "", row[20]) // tags
}
