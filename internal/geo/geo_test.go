package geo

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustPoint(t *testing.T, lat, lng float64) Point {
	t.Helper()
	p, err := PointFromDeg(lat, lng)
	require.NoError(t, err)
	return p
}

func TestLatLngFromDegOutOfRange(t *testing.T) {
	_, err := LatFromDeg(91)
	require.Error(t, err)
	_, err = LngFromDeg(-181)
	require.Error(t, err)
}

func TestPointDistanceZeroForCoincidentPoints(t *testing.T) {
	p1 := mustPoint(t, 0, 0)
	d, ok := PointDistance(p1, p1)
	require.True(t, ok)
	assert.Equal(t, Distance(0), d)

	p2 := mustPoint(t, -25, 55)
	d, ok = PointDistance(p2, p2)
	require.True(t, ok)
	assert.Equal(t, Distance(0), d)
}

func TestPointDistanceAntimeridianWraps(t *testing.T) {
	p1 := mustPoint(t, -15, -180)
	p2 := mustPoint(t, -15, 180)
	d, ok := PointDistance(p1, p2)
	require.True(t, ok)
	assert.Less(t, float64(d), 0.000001)
}

func TestPointDistanceKnownCities(t *testing.T) {
	stuttgart := mustPoint(t, 48.7755, 9.1827)
	mannheim := mustPoint(t, 49.4836, 8.4630)
	d, ok := PointDistance(stuttgart, mannheim)
	require.True(t, ok)
	assert.Greater(t, float64(d), 94_000.0)
	assert.Less(t, float64(d), 95_000.0)

	newYork := mustPoint(t, 40.714268, -74.005974)
	sydney := mustPoint(t, -33.867138, 151.207108)
	d, ok = PointDistance(newYork, sydney)
	require.True(t, ok)
	assert.Greater(t, float64(d), 15_985_000.0)
	assert.Less(t, float64(d), 15_995_000.0)
}

func TestPointDistanceSymmetric(t *testing.T) {
	a := mustPoint(t, 80, 0)
	b := mustPoint(t, 90, 20)
	da, ok := PointDistance(a, b)
	require.True(t, ok)
	db, ok := PointDistance(b, a)
	require.True(t, ok)
	assert.Equal(t, da, db)
}

func TestPointDistanceInvalidCoordinates(t *testing.T) {
	a := Point{Lat: LatFromRaw(0), Lng: InvalidLng}
	b := mustPoint(t, 20, 20)
	_, ok := PointDistance(a, b)
	assert.False(t, ok)
}

func TestPointDistanceNeverNegative(t *testing.T) {
	cases := [][4]float64{
		{-81.2281041784343, 77.75747775927069, 40.92116510538438, -93.33303223984923},
		{67.01568147028595, 122.10276824520099, -87.84709362678561, 132.71691422570353},
		{-37.44489137895633, -124.46758920534867, 29.29724492099939, 0.03218860366949281},
	}
	for _, c := range cases {
		p1 := mustPoint(t, c[0], c[1])
		p2 := mustPoint(t, c[2], c[3])
		d, ok := PointDistance(p1, p2)
		require.True(t, ok)
		assert.GreaterOrEqual(t, float64(d), 0.0)
		assert.False(t, math.IsNaN(float64(d)))
	}
}

func TestBboxContainsPointRegular(t *testing.T) {
	sw := mustPoint(t, -25, -20)
	ne := mustPoint(t, 25, 30)
	bbox := NewBbox(sw, ne)

	assert.True(t, bbox.ContainsPoint(mustPoint(t, -10, -15)))
	assert.False(t, bbox.ContainsPoint(mustPoint(t, -26, -15)))
	assert.True(t, bbox.ContainsPoint(mustPoint(t, 10, 20)))
	assert.False(t, bbox.ContainsPoint(mustPoint(t, 26, 20)))
	assert.False(t, bbox.ContainsPoint(mustPoint(t, -10, -21)))
	assert.False(t, bbox.ContainsPoint(mustPoint(t, 10, 31)))
}

func TestBboxContainsPointAntimeridian(t *testing.T) {
	sw := mustPoint(t, -25, 175)
	ne := mustPoint(t, 25, -175)
	bbox := NewBbox(sw, ne)

	assert.True(t, bbox.ContainsPoint(mustPoint(t, -10, 177)))
	assert.False(t, bbox.ContainsPoint(mustPoint(t, -26, 177)))
	assert.True(t, bbox.ContainsPoint(mustPoint(t, 10, -177)))
	assert.False(t, bbox.ContainsPoint(mustPoint(t, 26, 177)))
	assert.False(t, bbox.ContainsPoint(mustPoint(t, -10, 174)))
	assert.False(t, bbox.ContainsPoint(mustPoint(t, 10, -174)))
}

func TestBboxContainsPointReversedLngTreatedAsInverse(t *testing.T) {
	sw := mustPoint(t, -25, 30)
	ne := mustPoint(t, 25, 10)
	bbox := NewBbox(sw, ne)

	assert.True(t, bbox.ContainsPoint(mustPoint(t, -10, 5)))
	assert.False(t, bbox.ContainsPoint(mustPoint(t, -26, 5)))
	assert.True(t, bbox.ContainsPoint(mustPoint(t, 10, 35)))
	assert.False(t, bbox.ContainsPoint(mustPoint(t, 26, 35)))
	assert.True(t, bbox.ContainsPoint(mustPoint(t, 10, 180)))
	assert.True(t, bbox.ContainsPoint(mustPoint(t, 10, -180)))
	assert.False(t, bbox.ContainsPoint(mustPoint(t, -10, 11)))
	assert.False(t, bbox.ContainsPoint(mustPoint(t, 10, 29)))
}

func TestBboxIsEmpty(t *testing.T) {
	degenerate := NewBbox(mustPoint(t, 0, 0), mustPoint(t, 0, 10))
	assert.True(t, degenerate.IsEmpty())

	sameLng := NewBbox(mustPoint(t, 0, 10), mustPoint(t, 10, 10))
	assert.True(t, sameLng.IsEmpty())

	ok := NewBbox(mustPoint(t, 0, 0), mustPoint(t, 10, 10))
	assert.False(t, ok.IsEmpty())
}

func TestParsePointAndBbox(t *testing.T) {
	p, err := ParsePoint("1.5,2.5")
	require.NoError(t, err)
	assert.InDelta(t, 1.5, p.Lat.Deg(), 1e-6)
	assert.InDelta(t, 2.5, p.Lng.Deg(), 1e-6)

	b, err := ParseBbox("-10,-10,10,10")
	require.NoError(t, err)
	assert.True(t, b.ContainsPoint(mustPoint(t, 0, 0)))

	_, err = ParsePoint("not-a-point")
	require.Error(t, err)

	_, err = ParseBbox("1,2,3")
	require.Error(t, err)
}
