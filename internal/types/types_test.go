package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeTagIdempotent(t *testing.T) {
	cases := []string{"  #Solar  ", "solar", "#SOLAR", "Solar"}
	for _, c := range cases {
		once := NormalizeTag(c)
		twice := NormalizeTag(once)
		assert.Equal(t, once, twice, "normalize(normalize(%q))", c)
	}
	assert.Equal(t, "solar", NormalizeTag("  #Solar  "))
}

func TestSplitAndNormalizeTagsSplitsOnWhitespaceAndDedups(t *testing.T) {
	got := SplitAndNormalizeTags("two tags", "#tags", " TWO ")
	assert.Equal(t, []string{"two", "tags"}, got)
}

func TestTagSetDiff(t *testing.T) {
	old := NewTagSet("solar", "community")
	next := NewTagSet("solar", "repair-cafe")

	added, removed := next.Diff(old)
	assert.ElementsMatch(t, []string{"repair-cafe"}, added)
	assert.ElementsMatch(t, []string{"community"}, removed)
}

func TestRoleOrdering(t *testing.T) {
	assert.True(t, RoleAdmin.AtLeast(RoleScout))
	assert.True(t, RoleScout.AtLeast(RoleScout))
	assert.False(t, RoleUser.AtLeast(RoleScout))
	assert.False(t, RoleGuest.AtLeast(RoleUser))
}

func TestComputeAvgRatingsExcludesArchivedAndDefaultsToZero(t *testing.T) {
	archived := int64(100)
	ratings := []*Rating{
		{Context: Diversity, Value: 2},
		{Context: Diversity, Value: 0},
		{Context: Renewable, Value: 1, ArchivedAt: &archived},
	}
	avg := ComputeAvgRatings(ratings)
	assert.Equal(t, 1.0, avg.Diversity)
	assert.Equal(t, 0.0, avg.Renewable) // all archived -> no samples -> 0
	assert.Equal(t, 0.0, avg.Fairness)  // no samples at all -> 0

	// combined = mean of the six per-context means, contexts with no
	// non-archived ratings counted with value 0 rather than excluded.
	assert.InDelta(t, 1.0/6.0, avg.Combined(), 1e-9)
}

func TestReviewStatusValidAndVisibleSet(t *testing.T) {
	assert.True(t, Created.Valid())
	assert.True(t, ReviewStatus("bogus").Valid() == false)
	assert.True(t, VisibleStatuses[Created])
	assert.True(t, VisibleStatuses[Confirmed])
	assert.False(t, VisibleStatuses[Rejected])
	assert.False(t, VisibleStatuses[Archived])
}
