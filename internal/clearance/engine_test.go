package clearance_test

import (
	"context"
	"testing"

	"github.com/commonplaces/placecore/internal/apperr"
	"github.com/commonplaces/placecore/internal/clearance"
	"github.com/commonplaces/placecore/internal/storage/memory"
	"github.com/commonplaces/placecore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setup(t *testing.T) (context.Context, *memory.Store, *clearance.Engine) {
	t.Helper()
	ctx := context.Background()
	store := memory.New()
	return ctx, store, clearance.New(store)
}

func TestAuthorize_NoOwnerIsFreeToChange(t *testing.T) {
	ctx, _, eng := setup(t)
	need, err := eng.Authorize(ctx, []string{"cafe"}, []string{"cafe", "wifi"}, clearance.Caller{})
	require.NoError(t, err)
	assert.Empty(t, need)
}

func TestAuthorize_DisallowedAddIsRefused(t *testing.T) {
	ctx, store, eng := setup(t)
	org := types.Organization{ID: types.NewID(), Name: "Acme", APIToken: "acme-token"}
	require.NoError(t, store.CreateOrganization(ctx, org))
	require.NoError(t, eng.RegisterModeratedTag(ctx, org.ID, types.ModeratedTag{Label: "verified", AllowAdd: false}))

	_, err := eng.Authorize(ctx, nil, []string{"verified"}, clearance.Caller{OrgToken: org.APIToken})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ModeratedTagAuthorization))
}

func TestAuthorize_DisallowedRemoveIsRefused(t *testing.T) {
	ctx, store, eng := setup(t)
	org := types.Organization{ID: types.NewID(), Name: "Acme", APIToken: "acme-token"}
	require.NoError(t, store.CreateOrganization(ctx, org))
	require.NoError(t, eng.RegisterModeratedTag(ctx, org.ID, types.ModeratedTag{Label: "verified", AllowAdd: true, AllowRemove: false}))

	_, err := eng.Authorize(ctx, []string{"verified"}, nil, clearance.Caller{OrgToken: org.APIToken})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ModeratedTagAuthorization))
}

func TestAuthorize_RequireClearanceReturnsOwningOrg(t *testing.T) {
	ctx, store, eng := setup(t)
	org := types.Organization{ID: types.NewID(), Name: "Acme", APIToken: "acme-token"}
	require.NoError(t, store.CreateOrganization(ctx, org))
	require.NoError(t, eng.RegisterModeratedTag(ctx, org.ID, types.ModeratedTag{Label: "verified", AllowAdd: true, RequireClearance: true}))

	need, err := eng.Authorize(ctx, nil, []string{"verified"}, clearance.Caller{OrgToken: org.APIToken})
	require.NoError(t, err)
	require.Len(t, need, 1)
	assert.Equal(t, org.ID, need[0])
}

func TestAuthorize_AllowAddWithoutCallerIdentityIsRefused(t *testing.T) {
	ctx, store, eng := setup(t)
	org := types.Organization{ID: types.NewID(), Name: "Acme", APIToken: "acme-token"}
	require.NoError(t, store.CreateOrganization(ctx, org))
	require.NoError(t, eng.RegisterModeratedTag(ctx, org.ID, types.ModeratedTag{Label: "verified", AllowAdd: true}))

	_, err := eng.Authorize(ctx, nil, []string{"verified"}, clearance.Caller{})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ModeratedTagAuthorization))
}

func TestAuthorize_ScoutRoleMayActOnAnyOrg(t *testing.T) {
	ctx, store, eng := setup(t)
	org := types.Organization{ID: types.NewID(), Name: "Acme", APIToken: "acme-token"}
	require.NoError(t, store.CreateOrganization(ctx, org))
	require.NoError(t, eng.RegisterModeratedTag(ctx, org.ID, types.ModeratedTag{Label: "verified", AllowAdd: true}))

	_, err := eng.Authorize(ctx, nil, []string{"verified"}, clearance.Caller{Role: types.RoleScout})
	require.NoError(t, err)
}

func TestRegisterModeratedTag_ConflictingOwnerRefused(t *testing.T) {
	ctx, store, eng := setup(t)
	orgA := types.Organization{ID: types.NewID(), Name: "A"}
	orgB := types.Organization{ID: types.NewID(), Name: "B"}
	require.NoError(t, store.CreateOrganization(ctx, orgA))
	require.NoError(t, store.CreateOrganization(ctx, orgB))

	require.NoError(t, eng.RegisterModeratedTag(ctx, orgA.ID, types.ModeratedTag{Label: "verified"}))
	err := eng.RegisterModeratedTag(ctx, orgB.ID, types.ModeratedTag{Label: "verified"})
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.ModeratedTagConflict))
}

func TestRegisterModeratedTag_SameOwnerMayUpdate(t *testing.T) {
	ctx, store, eng := setup(t)
	org := types.Organization{ID: types.NewID(), Name: "A"}
	require.NoError(t, store.CreateOrganization(ctx, org))

	require.NoError(t, eng.RegisterModeratedTag(ctx, org.ID, types.ModeratedTag{Label: "verified", AllowAdd: true}))
	require.NoError(t, eng.RegisterModeratedTag(ctx, org.ID, types.ModeratedTag{Label: "verified", AllowAdd: false}))

	got, err := store.GetOrganization(ctx, org.ID)
	require.NoError(t, err)
	mt, ok := got.FindModeratedTag("verified")
	require.True(t, ok)
	assert.False(t, mt.AllowAdd)
}

func TestRecordPendingAndClear(t *testing.T) {
	ctx, store, eng := setup(t)
	org := types.Organization{ID: types.NewID(), Name: "Acme"}
	require.NoError(t, store.CreateOrganization(ctx, org))

	placeID := types.NewID()
	require.NoError(t, eng.RecordPending(ctx, []types.ID{org.ID}, placeID, nil, 1000))

	pending, err := eng.Pending(ctx, org.ID, types.Pagination{})
	require.NoError(t, err)
	require.Len(t, pending, 1)
	assert.Equal(t, placeID, pending[0].PlaceID)

	n, err := eng.Clear(ctx, org.ID, []types.ID{placeID})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	pending, err = eng.Pending(ctx, org.ID, types.Pagination{})
	require.NoError(t, err)
	assert.Empty(t, pending)
}

func TestRecordPending_NoOrgsIsNoop(t *testing.T) {
	ctx, _, eng := setup(t)
	require.NoError(t, eng.RecordPending(ctx, nil, types.NewID(), nil, 1000))
}

func TestClearedView(t *testing.T) {
	ctx, store, eng := setup(t)
	org := types.Organization{ID: types.NewID(), Name: "Acme"}
	require.NoError(t, store.CreateOrganization(ctx, org))

	placeID := types.NewID()
	place := types.Place{ID: placeID, License: "ODbL-1.0"}
	rev0 := types.PlaceRevision{PlaceID: placeID, Rev: 0, Title: "Original", Created: types.Authorship{At: 1}}
	require.NoError(t, store.CreateOrUpdatePlace(ctx, place, rev0, nil))

	view, err := store.GetPlace(ctx, placeID)
	require.NoError(t, err)

	t.Run("no pending clearance sees current revision", func(t *testing.T) {
		rev, err := eng.ClearedView(ctx, org.ID, view)
		require.NoError(t, err)
		assert.Equal(t, "Original", rev.Title)
	})

	require.NoError(t, eng.RecordPending(ctx, []types.ID{org.ID}, placeID, nil, 1000))
	one := types.Revision(1)
	rev1 := types.PlaceRevision{PlaceID: placeID, Rev: 1, Title: "Updated", Created: types.Authorship{At: 2}}
	require.NoError(t, store.CreateOrUpdatePlace(ctx, place, rev1, &one))

	view, err = store.GetPlace(ctx, placeID)
	require.NoError(t, err)

	t.Run("pending clearance never cleared is invisible", func(t *testing.T) {
		rev, err := eng.ClearedView(ctx, org.ID, view)
		require.NoError(t, err)
		assert.Nil(t, rev)
	})

	zero := types.Revision(0)
	require.NoError(t, store.UpdatePendingClearancesForPlaces(ctx, org.ID, []types.ClearanceUpdate{{PlaceID: placeID, ClearedRevision: &zero}}))

	t.Run("cleared revision behind current returns the cleared one", func(t *testing.T) {
		rev, err := eng.ClearedView(ctx, org.ID, view)
		require.NoError(t, err)
		assert.Equal(t, "Original", rev.Title)
	})
}
