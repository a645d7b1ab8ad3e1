package workflow_test

import (
	"context"
	"testing"

	"github.com/commonplaces/placecore/internal/clearance"
	"github.com/commonplaces/placecore/internal/review"
	"github.com/commonplaces/placecore/internal/search"
	"github.com/commonplaces/placecore/internal/storage/memory"
	"github.com/commonplaces/placecore/internal/types"
	"github.com/commonplaces/placecore/internal/workflow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReindexStalePlaces_RecoversEveryPlace(t *testing.T) {
	store := memory.New()
	index := search.New(store)
	eng := workflow.New(store, clearance.New(store), review.New(store, index), index, nil, nil, nil)
	ctx := context.Background()

	_, err := eng.CreatePlace(ctx, validInput(), "", []string{"ODbL-1.0"}, clearance.Caller{}, 1000)
	require.NoError(t, err)
	second := validInput()
	second.Title = "Second Place"
	_, err = eng.CreatePlace(ctx, second, "", []string{"ODbL-1.0"}, clearance.Caller{}, 1000)
	require.NoError(t, err)

	// a fresh index, as if the process crashed between commit and
	// indexing and restarted with an empty in-memory index.
	freshIndex := search.New(store)
	freshEng := workflow.New(store, clearance.New(store), review.New(store, freshIndex), freshIndex, nil, nil, nil)

	n, err := freshEng.ReindexStalePlaces(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	docs := freshIndex.Search(search.Query{Status: []types.ReviewStatus{types.Created}})
	assert.Len(t, docs, 2)
}

func TestReindexStalePlaces_NoIndexIsNoop(t *testing.T) {
	store := memory.New()
	eng := workflow.New(store, clearance.New(store), review.New(store, nil), nil, nil, nil, nil)
	n, err := eng.ReindexStalePlaces(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 0, n)
}
