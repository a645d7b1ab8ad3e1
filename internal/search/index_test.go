package search_test

import (
	"context"
	"testing"

	"github.com/commonplaces/placecore/internal/geo"
	"github.com/commonplaces/placecore/internal/search"
	"github.com/commonplaces/placecore/internal/storage"
	"github.com/commonplaces/placecore/internal/storage/memory"
	"github.com/commonplaces/placecore/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func addPlace(t *testing.T, store *memory.Store, title, description string, tags []string, latDeg, lngDeg float64) types.ID {
	t.Helper()
	lat, err := geo.LatFromDeg(latDeg)
	require.NoError(t, err)
	lng, err := geo.LngFromDeg(lngDeg)
	require.NoError(t, err)
	id := types.NewID()
	place := types.Place{ID: id, License: "ODbL-1.0"}
	rev := types.PlaceRevision{
		PlaceID: id, Rev: 0, Title: title, Description: description,
		Tags: tags, Location: geo.NewPoint(lat, lng), Created: types.Authorship{At: 1},
	}
	require.NoError(t, store.CreateOrUpdatePlace(context.Background(), place, rev, nil))
	return id
}

func TestReindex_RemovesDeletedPlace(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	index := search.New(store)

	id := types.NewID() // never created in store
	require.NoError(t, index.Reindex(ctx, id))

	docs := index.Search(search.Query{IDs: []types.ID{id}, Status: []types.ReviewStatus{types.Created}})
	assert.Empty(t, docs)
}

func TestSearch_TextMatchAndDefaultVisibleStatus(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	index := search.New(store)

	cafe := addPlace(t, store, "Cafe Freiraum", "vegan cafe with wifi", []string{"vegan", "wifi"}, 52.5, 13.4)
	require.NoError(t, index.Reindex(ctx, cafe))

	rejected := addPlace(t, store, "Rejected Place", "vegan", nil, 52.5, 13.4)
	_, err := store.ReviewPlaces(ctx, []types.ID{rejected}, types.Rejected, storage.ReviewLogEntry{CreatedAt: 2})
	require.NoError(t, err)
	require.NoError(t, index.Reindex(ctx, rejected))

	q := search.NewTextQuery("vegan")
	docs := index.Search(q)
	require.Len(t, docs, 1)
	assert.Equal(t, cafe, docs[0].PlaceID)
}

func TestSearch_MustAndMustNotTerms(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	index := search.New(store)

	a := addPlace(t, store, "Cafe One", "vegan wifi", nil, 1, 1)
	b := addPlace(t, store, "Cafe Two", "vegan", nil, 1, 1)
	require.NoError(t, index.Reindex(ctx, a))
	require.NoError(t, index.Reindex(ctx, b))

	q := search.NewTextQuery("+vegan -wifi")
	docs := index.Search(q)
	require.Len(t, docs, 1)
	assert.Equal(t, b, docs[0].PlaceID)
}

func TestSearch_Bbox(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	index := search.New(store)

	inside := addPlace(t, store, "In", "", nil, 10, 10)
	outside := addPlace(t, store, "Out", "", nil, 50, 50)
	require.NoError(t, index.Reindex(ctx, inside))
	require.NoError(t, index.Reindex(ctx, outside))

	sw, err := geo.PointFromDeg(0, 0)
	require.NoError(t, err)
	ne, err := geo.PointFromDeg(20, 20)
	require.NoError(t, err)
	bbox := geo.NewBbox(sw, ne)

	q := search.NewTextQuery("")
	q.Bbox = &bbox
	docs := index.Search(q)
	require.Len(t, docs, 1)
	assert.Equal(t, inside, docs[0].PlaceID)
}

func TestSearch_HashtagMustMatch(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	index := search.New(store)

	tagged := addPlace(t, store, "Tagged", "", []string{"non-profit"}, 1, 1)
	untagged := addPlace(t, store, "Untagged", "", nil, 1, 1)
	require.NoError(t, index.Reindex(ctx, tagged))
	require.NoError(t, index.Reindex(ctx, untagged))

	q := search.NewTextQuery("#non-profit")
	docs := index.Search(q)
	require.Len(t, docs, 1)
	assert.Equal(t, tagged, docs[0].PlaceID)
}

func TestSearch_RankedByCombinedRatingThenScore(t *testing.T) {
	ctx := context.Background()
	store := memory.New()
	index := search.New(store)

	low := addPlace(t, store, "Low", "vegan wifi", nil, 1, 1)
	high := addPlace(t, store, "High", "vegan", nil, 1, 1)

	require.NoError(t, store.AddRating(ctx, types.Rating{ID: types.NewID(), PlaceID: high, Context: types.Diversity, Value: 2, CreatedAt: 1}))

	require.NoError(t, index.Reindex(ctx, low))
	require.NoError(t, index.Reindex(ctx, high))

	q := search.NewTextQuery("vegan")
	docs := index.Search(q)
	require.Len(t, docs, 2)
	assert.Equal(t, high, docs[0].PlaceID, "higher combined rating ranks first")
	assert.Equal(t, low, docs[1].PlaceID)
}

func TestTokenize_SplitsHashtagsAndPolarity(t *testing.T) {
	toks := search.Tokenize("+vegan -wifi #non-profit plain")
	require.Len(t, toks.Terms, 3)
	assert.Equal(t, "vegan", toks.Terms[0].Text)
	assert.Equal(t, search.Must, toks.Terms[0].Polarity)
	assert.Equal(t, "wifi", toks.Terms[1].Text)
	assert.Equal(t, search.MustNot, toks.Terms[1].Polarity)
	assert.Equal(t, "plain", toks.Terms[2].Text)
	assert.Equal(t, search.Should, toks.Terms[2].Polarity)
	require.Len(t, toks.HashTags, 1)
	assert.Equal(t, "non-profit", toks.HashTags[0])
}
