package workflow_test

import (
	"context"
	"testing"

	"github.com/commonplaces/placecore/internal/apperr"
	"github.com/commonplaces/placecore/internal/clearance"
	"github.com/commonplaces/placecore/internal/geo"
	"github.com/commonplaces/placecore/internal/search"
	"github.com/commonplaces/placecore/internal/storage/memory"
	"github.com/commonplaces/placecore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUpdatePlace_HappyPath(t *testing.T) {
	store := memory.New()
	eng, index := newEngine(store)
	ctx := context.Background()

	created, err := eng.CreatePlace(ctx, validInput(), "", []string{"ODbL-1.0"}, clearance.Caller{}, 1000)
	require.NoError(t, err)

	update := types.UpdatePlaceInput{
		Version:     1,
		Title:       "Cafe Freiraum II",
		Links:       types.Links{Homepage: "https://cafe.test"},
		Tags:        []string{"vegan", "wifi"},
		Description: "still vegan",
	}
	updated, err := eng.UpdatePlace(ctx, created.Place.ID, update, clearance.Caller{}, 2000)
	require.NoError(t, err)
	assert.Equal(t, "Cafe Freiraum II", updated.Revision.Title)
	assert.Equal(t, types.Revision(1), updated.Place.CurrentRev)

	docs := index.Search(search.Query{IDs: []types.ID{created.Place.ID}, Status: []types.ReviewStatus{types.Created}})
	require.Len(t, docs, 1)
	assert.Equal(t, "Cafe Freiraum II", docs[0].Title)
}

func TestUpdatePlace_WrongVersionFails(t *testing.T) {
	store := memory.New()
	eng, _ := newEngine(store)
	ctx := context.Background()

	created, err := eng.CreatePlace(ctx, validInput(), "", []string{"ODbL-1.0"}, clearance.Caller{}, 1000)
	require.NoError(t, err)

	update := types.UpdatePlaceInput{Version: 5, Title: "X", Links: types.Links{Homepage: "https://cafe.test"}}
	_, err = eng.UpdatePlace(ctx, created.Place.ID, update, clearance.Caller{}, 2000)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.InvalidVersion))
}

func TestUpdatePlace_KeepsLocationWhenNoneSupplied(t *testing.T) {
	store := memory.New()
	eng, _ := newEngine(store)
	ctx := context.Background()

	input := validInput()
	lat, err := geo.LatFromDeg(52.5)
	require.NoError(t, err)
	lng, err := geo.LngFromDeg(13.4)
	require.NoError(t, err)
	input.Location = geo.NewPoint(lat, lng)
	created, err := eng.CreatePlace(ctx, input, "", []string{"ODbL-1.0"}, clearance.Caller{}, 1000)
	require.NoError(t, err)

	update := types.UpdatePlaceInput{Version: 1, Title: "Still here", Links: types.Links{Homepage: "https://cafe.test"}}
	updated, err := eng.UpdatePlace(ctx, created.Place.ID, update, clearance.Caller{}, 2000)
	require.NoError(t, err)
	assert.Equal(t, created.Revision.Location, updated.Revision.Location)
}

func TestUpdatePlace_ModeratedTagAuthorizationOnDiffOnly(t *testing.T) {
	store := memory.New()
	eng, _ := newEngine(store)
	ctx := context.Background()

	org := types.Organization{ID: types.NewID(), Name: "Acme", APIToken: "acme-token"}
	require.NoError(t, store.CreateOrganization(ctx, org))
	require.NoError(t, store.RegisterModeratedTag(ctx, org.ID, types.ModeratedTag{Label: "verified", AllowAdd: true, AllowRemove: false}))

	caller := clearance.Caller{OrgToken: org.APIToken}

	input := validInput()
	input.Tags = []string{"vegan", "verified"}
	created, err := eng.CreatePlace(ctx, input, "", []string{"ODbL-1.0"}, caller, 1000)
	require.NoError(t, err)

	t.Run("keeping the tag is fine", func(t *testing.T) {
		update := types.UpdatePlaceInput{Version: 1, Title: "X", Links: types.Links{Homepage: "https://cafe.test"}, Tags: []string{"vegan", "verified"}}
		_, err := eng.UpdatePlace(ctx, created.Place.ID, update, caller, 2000)
		require.NoError(t, err)
	})

	t.Run("removing the tag is refused", func(t *testing.T) {
		update := types.UpdatePlaceInput{Version: 2, Title: "X", Links: types.Links{Homepage: "https://cafe.test"}, Tags: []string{"vegan"}}
		_, err := eng.UpdatePlace(ctx, created.Place.ID, update, caller, 3000)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.ModeratedTagAuthorization))
	})

	t.Run("adding without caller identity is refused even though allow_add is true", func(t *testing.T) {
		org2 := types.Organization{ID: types.NewID(), Name: "Beta", APIToken: "beta-token"}
		require.NoError(t, store.CreateOrganization(ctx, org2))
		require.NoError(t, store.RegisterModeratedTag(ctx, org2.ID, types.ModeratedTag{Label: "beta-verified", AllowAdd: true}))

		update := types.UpdatePlaceInput{Version: 2, Title: "X", Links: types.Links{Homepage: "https://cafe.test"}, Tags: []string{"vegan", "verified", "beta-verified"}}
		_, err := eng.UpdatePlace(ctx, created.Place.ID, update, caller, 2000)
		require.Error(t, err)
		assert.True(t, apperr.Is(err, apperr.ModeratedTagAuthorization))
	})
}
