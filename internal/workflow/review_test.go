package workflow_test

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

func TestReviewPlaces_RequiresScoutOrAdmin(t *testing.T) {
	store := memory.New()
	eng, _ := newEngine(store)
	ctx := context.Background()

	created, err := eng.CreatePlace(ctx, validInput(), "", []string{"ODbL-1.0"}, clearance.Caller{}, 1000)
	require.NoError(t, err)

	_, err = eng.ReviewPlaces(ctx, types.RoleUser, []types.ID{created.Place.ID}, types.Confirmed, nil, "", 2000)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	changed, err := eng.ReviewPlaces(ctx, types.RoleScout, []types.ID{created.Place.ID}, types.Confirmed, nil, "", 2000)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
}

func TestIssueReviewNonce_RequiresScoutOrAdmin(t *testing.T) {
	store := memory.New()
	eng, _ := newEngine(store)
	ctx := context.Background()

	created, err := eng.CreatePlace(ctx, validInput(), "", []string{"ODbL-1.0"}, clearance.Caller{}, 1000)
	require.NoError(t, err)

	_, err = eng.IssueReviewNonce(ctx, types.RoleGuest, created.Place.ID, 0, types.Confirmed, 2000)
	require.Error(t, err)
	assert.True(t, apperr.Is(err, apperr.Forbidden))

	nonce, err := eng.IssueReviewNonce(ctx, types.RoleAdmin, created.Place.ID, 0, types.Confirmed, 2000)
	require.NoError(t, err)
	require.NotEmpty(t, nonce.Nonce)

	changed, err := eng.ReviewPlaceWithToken(ctx, nonce.Nonce, 3000)
	require.NoError(t, err)
	assert.Equal(t, 1, changed)
}
