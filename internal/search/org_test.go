package search_test

import (
	"context"
	"testing"

	"github.com/commonplaces/placecore/internal/clearance"
	"github.com/commonplaces/placecore/internal/geo"
	"github.com/commonplaces/placecore/internal/search"
	"github.com/commonplaces/placecore/internal/storage/memory"
	"github.com/commonplaces/placecore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSearchAsOrg_ExcludesPlacesWithoutOwnedTag(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	index := search.New(store)
	eng := clearance.New(store)

	org := types.Organization{ID: types.NewID(), Name: "Acme"}
	require.NoError(t, store.CreateOrganization(ctx, org))
	require.NoError(t, eng.RegisterModeratedTag(ctx, org.ID, types.ModeratedTag{Label: "verified", AllowAdd: true}))

	owned := addPlace(t, store, "Owned", "", []string{"verified"}, 1, 1)
	unowned := addPlace(t, store, "Unowned", "", nil, 1, 1)
	require.NoError(t, index.Reindex(ctx, owned))
	require.NoError(t, index.Reindex(ctx, unowned))

	q := search.NewTextQuery("")
	docs, err := index.SearchAsOrg(ctx, q, org.ID, eng, types.NewTagSet("verified"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, owned, docs[0].PlaceID)
}

func TestSearchAsOrg_SeesClearedRevisionNotCurrent(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	index := search.New(store)
	eng := clearance.New(store)

	org := types.Organization{ID: types.NewID(), Name: "Acme"}
	require.NoError(t, store.CreateOrganization(ctx, org))
	require.NoError(t, eng.RegisterModeratedTag(ctx, org.ID, types.ModeratedTag{Label: "verified", AllowAdd: true, RequireClearance: true}))

	id := types.NewID()
	lat, err := geo.LatFromDeg(1)
	require.NoError(t, err)
	lng, err := geo.LngFromDeg(1)
	require.NoError(t, err)
	place := types.Place{ID: id, License: "ODbL-1.0"}
	rev0 := types.PlaceRevision{PlaceID: id, Rev: 0, Title: "Original", Tags: []string{"verified"}, Location: geo.NewPoint(lat, lng), Created: types.Authorship{At: 1}}
	require.NoError(t, store.CreateOrUpdatePlace(ctx, place, rev0, nil))
	require.NoError(t, eng.RecordPending(ctx, []types.ID{org.ID}, id, nil, 1))
	zero := types.Revision(0)
	require.NoError(t, store.UpdatePendingClearancesForPlaces(ctx, org.ID, []types.ClearanceUpdate{{PlaceID: id, ClearedRevision: &zero}}))
	require.NoError(t, index.Reindex(ctx, id))

	one := types.Revision(1)
	rev1 := types.PlaceRevision{PlaceID: id, Rev: 1, Title: "Updated", Tags: []string{"verified"}, Location: geo.NewPoint(lat, lng), Created: types.Authorship{At: 2}}
	require.NoError(t, store.CreateOrUpdatePlace(ctx, place, rev1, &one))
	require.NoError(t, index.Reindex(ctx, id))

	q := search.NewTextQuery("")
	docs, err := index.SearchAsOrg(ctx, q, org.ID, eng, types.NewTagSet("verified"))
	require.NoError(t, err)
	require.Len(t, docs, 1)
	assert.Equal(t, "Original", docs[0].Title)
}

func TestSearchAsOrg_ExcludesPlaceFirstTaggedOnUpdate(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	index := search.New(store)
	eng := clearance.New(store)

	org := types.Organization{ID: types.NewID(), Name: "Acme"}
	require.NoError(t, store.CreateOrganization(ctx, org))
	require.NoError(t, eng.RegisterModeratedTag(ctx, org.ID, types.ModeratedTag{Label: "verified", AllowAdd: true, RequireClearance: true}))

	id := types.NewID()
	lat, err := geo.LatFromDeg(1)
	require.NoError(t, err)
	lng, err := geo.LngFromDeg(1)
	require.NoError(t, err)
	place := types.Place{ID: id, License: "ODbL-1.0"}
	rev0 := types.PlaceRevision{PlaceID: id, Rev: 0, Title: "Original", Location: geo.NewPoint(lat, lng), Created: types.Authorship{At: 1}}
	require.NoError(t, store.CreateOrUpdatePlace(ctx, place, rev0, nil))
	require.NoError(t, index.Reindex(ctx, id))

	// The tag is introduced for the first time on this update, so the
	// pending clearance's LastClearedRevision is the pre-update
	// revision 0 (spec.md §4.4 step 1), which does not carry the tag.
	zero := types.Revision(0)
	require.NoError(t, eng.RecordPending(ctx, []types.ID{org.ID}, id, &zero, 2))
	one := types.Revision(1)
	rev1 := types.PlaceRevision{PlaceID: id, Rev: 1, Title: "Updated", Tags: []string{"verified"}, Location: geo.NewPoint(lat, lng), Created: types.Authorship{At: 2}}
	require.NoError(t, store.CreateOrUpdatePlace(ctx, place, rev1, &one))
	require.NoError(t, index.Reindex(ctx, id))

	q := search.NewTextQuery("")
	docs, err := index.SearchAsOrg(ctx, q, org.ID, eng, types.NewTagSet("verified"))
	require.NoError(t, err)
	assert.Empty(t, docs)
}
