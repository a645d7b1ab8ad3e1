// Package geo implements fixed-point geographic coordinates, bounding
// boxes and great-circle distance for the place store.
//
// Coordinates are stored as signed 32-bit fixed-point integers rather
// than floats so that two places at the "same" location compare equal
// regardless of how they were parsed, and so invalid/unset coordinates
// have a single well-known sentinel representation.
package geo

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// RawCoord is the fixed-point wire representation of a single
// coordinate axis.
type RawCoord = int32

const (
	rawMax RawCoord = math.MaxInt32
	rawMin RawCoord = -rawMax

	// rawInvalid is the reserved sentinel for "no coordinate". It is
	// the one raw value that rawMin/rawMax do not cover.
	rawInvalid RawCoord = math.MinInt32
)

const (
	latDegMin, latDegMax = -90.0, 90.0
	lngDegMin, lngDegMax = -180.0, 180.0
)

// OutOfRange is returned when a degree value lies outside its legal
// range for the axis being converted.
type OutOfRange struct {
	Axis  string
	Value float64
}

func (e *OutOfRange) Error() string {
	return fmt.Sprintf("%s %g out of range", e.Axis, e.Value)
}

func degToRaw(deg, degMin, degMax float64) RawCoord {
	scale := (float64(rawMax) - float64(rawMin)) / (degMax - degMin)
	return RawCoord(math.Round(deg * scale))
}

func rawToDeg(raw RawCoord, degMin, degMax float64) float64 {
	scale := (degMax - degMin) / (float64(rawMax) - float64(rawMin))
	return float64(raw) * scale
}

// LatCoord is a fixed-point latitude in [-90,90] degrees, or the
// invalid sentinel.
type LatCoord struct{ raw RawCoord }

// LngCoord is a fixed-point longitude in [-180,180] degrees, or the
// invalid sentinel.
type LngCoord struct{ raw RawCoord }

// InvalidLat carries the invalid sentinel and compares unequal to
// every valid latitude. It is not the zero value of LatCoord: raw 0
// is latitude 0.
var InvalidLat = LatCoord{raw: rawInvalid}

// InvalidLng carries the invalid sentinel and compares unequal to
// every valid longitude. It is not the zero value of LngCoord: raw 0
// is longitude 0.
var InvalidLng = LngCoord{raw: rawInvalid}

// LatFromDeg converts a latitude in degrees to its fixed-point form.
// Out-of-range degrees fail with OutOfRange; callers that want a
// panicking convenience constructor can ignore the error since the
// literal is known valid at compile time.
func LatFromDeg(deg float64) (LatCoord, error) {
	if deg < latDegMin || deg > latDegMax || math.IsNaN(deg) {
		return InvalidLat, &OutOfRange{Axis: "latitude", Value: deg}
	}
	return LatCoord{raw: degToRaw(deg, latDegMin, latDegMax)}, nil
}

// LngFromDeg converts a longitude in degrees to its fixed-point form.
func LngFromDeg(deg float64) (LngCoord, error) {
	if deg < lngDegMin || deg > lngDegMax || math.IsNaN(deg) {
		return InvalidLng, &OutOfRange{Axis: "longitude", Value: deg}
	}
	return LngCoord{raw: degToRaw(deg, lngDegMin, lngDegMax)}, nil
}

// LatFromRaw wraps a raw fixed-point value as a LatCoord without range
// checking; used when reading a value that was already validated at
// write time (e.g. out of storage).
func LatFromRaw(raw RawCoord) LatCoord { return LatCoord{raw: raw} }

// LngFromRaw wraps a raw fixed-point value as a LngCoord.
func LngFromRaw(raw RawCoord) LngCoord { return LngCoord{raw: raw} }

// IsValid reports whether c is not the invalid sentinel.
func (c LatCoord) IsValid() bool { return c.raw != rawInvalid }

// IsValid reports whether c is not the invalid sentinel.
func (c LngCoord) IsValid() bool { return c.raw != rawInvalid }

// Raw returns the fixed-point wire value.
func (c LatCoord) Raw() RawCoord { return c.raw }

// Raw returns the fixed-point wire value.
func (c LngCoord) Raw() RawCoord { return c.raw }

// Deg returns the latitude in degrees, or NaN if invalid.
func (c LatCoord) Deg() float64 {
	if !c.IsValid() {
		return math.NaN()
	}
	return rawToDeg(c.raw, latDegMin, latDegMax)
}

// Deg returns the longitude in degrees, or NaN if invalid.
func (c LngCoord) Deg() float64 {
	if !c.IsValid() {
		return math.NaN()
	}
	return rawToDeg(c.raw, lngDegMin, lngDegMax)
}

func (c LatCoord) rad() float64 { return c.Deg() * math.Pi / 180 }
func (c LngCoord) rad() float64 { return c.Deg() * math.Pi / 180 }

// Less reports whether c < other. Only meaningful when both are
// valid; comparisons against an invalid coordinate other than
// equality-to-self are undefined and Less always returns false.
func (c LatCoord) Less(other LatCoord) bool {
	if !c.IsValid() || !other.IsValid() {
		return false
	}
	return c.raw < other.raw
}

// LessEq reports whether c <= other, under the same validity rule as Less.
func (c LatCoord) LessEq(other LatCoord) bool {
	return c == other || c.Less(other)
}

func (c LngCoord) equal(other LngCoord) bool { return c == other }

// Point is a (lat,lng) location. The zero Point is the valid location
// (0,0); an invalid Point carries InvalidLat and/or InvalidLng.
type Point struct {
	Lat LatCoord
	Lng LngCoord
}

// NewPoint builds a Point from its components.
func NewPoint(lat LatCoord, lng LngCoord) Point { return Point{Lat: lat, Lng: lng} }

// PointFromDeg builds a Point from degrees, failing if either axis is
// out of range.
func PointFromDeg(latDeg, lngDeg float64) (Point, error) {
	lat, err := LatFromDeg(latDeg)
	if err != nil {
		return Point{}, err
	}
	lng, err := LngFromDeg(lngDeg)
	if err != nil {
		return Point{}, err
	}
	return Point{Lat: lat, Lng: lng}, nil
}

// IsValid reports whether both axes are valid.
func (p Point) IsValid() bool { return p.Lat.IsValid() && p.Lng.IsValid() }

func (p Point) String() string {
	return fmt.Sprintf("%g,%g", p.Lat.Deg(), p.Lng.Deg())
}

// ParsePoint parses "lat,lng" in decimal degrees.
func ParsePoint(s string) (Point, error) {
	lat, lng, ok := splitTwo(s)
	if !ok {
		return Point{}, fmt.Errorf("geo: invalid point format %q", s)
	}
	return parseLatLng(lat, lng)
}

func parseLatLng(latStr, lngStr string) (Point, error) {
	latDeg, err := strconv.ParseFloat(strings.TrimSpace(latStr), 64)
	if err != nil {
		return Point{}, fmt.Errorf("geo: latitude: %w", err)
	}
	lngDeg, err := strconv.ParseFloat(strings.TrimSpace(lngStr), 64)
	if err != nil {
		return Point{}, fmt.Errorf("geo: longitude: %w", err)
	}
	return PointFromDeg(latDeg, lngDeg)
}

func splitTwo(s string) (a, b string, ok bool) {
	parts := strings.Split(s, ",")
	if len(parts) != 2 {
		return "", "", false
	}
	return parts[0], parts[1], true
}

// Distance is a great-circle distance in meters. Negative values are
// invalid (the zero value, 0, is a valid distance for coincident
// points).
type Distance float64

// IsValid reports whether d is a non-negative distance.
func (d Distance) IsValid() bool { return d >= 0 }

// WGS-84 ellipsoid semi-axes, in meters.
const (
	wgs84Major = 6_378_137.0
	wgs84Minor = 6_356_752.3
)

func wgs84EarthRadius(lat LatCoord) float64 {
	latRad := lat.rad()
	sinLat, cosLat := math.Sin(latRad), math.Cos(latRad)
	majorN := wgs84Major * wgs84Major * cosLat
	minorN := wgs84Minor * wgs84Minor * sinLat
	majorD := wgs84Major * cosLat
	minorD := wgs84Minor * sinLat
	return math.Sqrt((majorN*majorN + minorN*minorN) / (majorD*majorD + minorD*minorD))
}

// PointDistance computes the great-circle distance between p1 and p2
// using a Vincenty special case on the WGS-84 ellipsoid with a mean
// latitude-dependent earth radius. It returns false if either point is
// invalid.
func PointDistance(p1, p2 Point) (Distance, bool) {
	if !p1.IsValid() || !p2.IsValid() {
		return 0, false
	}

	lat1, lng1 := p1.Lat.rad(), p1.Lng.rad()
	lat2, lng2 := p2.Lat.rad(), p2.Lng.rad()

	sinLat1, cosLat1 := math.Sin(lat1), math.Cos(lat1)
	sinLat2, cosLat2 := math.Sin(lat2), math.Cos(lat2)

	dlng := math.Abs(lng1 - lng2)
	sinDlng, cosDlng := math.Sin(dlng), math.Cos(dlng)

	nom1 := cosLat2 * sinDlng
	nom2 := cosLat1*sinLat2 - sinLat1*cosLat2*cosDlng
	nom := math.Sqrt(nom1*nom1 + nom2*nom2)
	denom := sinLat1*sinLat2 + cosLat1*cosLat2*cosDlng

	meanRadius := (wgs84EarthRadius(p1.Lat) + wgs84EarthRadius(p2.Lat)) / 2
	return Distance(meanRadius * math.Atan2(nom, denom)), true
}

// Bbox is an axis-aligned bounding box in lat/lng space. When
// sw.Lng > ne.Lng it represents an "inverse" box that straddles the
// antimeridian: longitude containment is then exclusive of the gap
// between ne.Lng and sw.Lng rather than inclusive of the range
// between them.
type Bbox struct {
	SW Point
	NE Point
}

// NewBbox builds a Bbox from its corners.
func NewBbox(sw, ne Point) Bbox { return Bbox{SW: sw, NE: ne} }

// IsValid reports whether both corners are valid points with
// sw.Lat <= ne.Lat.
func (b Bbox) IsValid() bool {
	return b.SW.IsValid() && b.NE.IsValid() && b.SW.Lat.LessEq(b.NE.Lat)
}

// IsEmpty reports whether the box contains no points: either its
// latitude range is degenerate/inverted, or its longitude bounds
// coincide.
func (b Bbox) IsEmpty() bool {
	return !b.SW.Lat.Less(b.NE.Lat) || b.SW.Lng == b.NE.Lng
}

// ContainsPoint reports whether pt lies within b, honoring the
// antimeridian-straddling "inverse" box convention when
// sw.Lng > ne.Lng.
func (b Bbox) ContainsPoint(pt Point) bool {
	if pt.Lat.Less(b.SW.Lat) || b.NE.Lat.Less(pt.Lat) {
		return false
	}
	if b.SW.Lng.raw <= b.NE.Lng.raw {
		return b.SW.Lng.raw <= pt.Lng.raw && pt.Lng.raw <= b.NE.Lng.raw
	}
	// Inverse/antimeridian box: excluded region is the open gap
	// strictly between ne.Lng and sw.Lng.
	return !(b.NE.Lng.raw < pt.Lng.raw && pt.Lng.raw < b.SW.Lng.raw)
}

func (b Bbox) String() string {
	return fmt.Sprintf("%s,%s", b.SW, b.NE)
}

// ParseBbox parses "sw_lat,sw_lng,ne_lat,ne_lng" in decimal degrees.
func ParseBbox(s string) (Bbox, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 4 {
		return Bbox{}, fmt.Errorf("geo: invalid bbox format %q", s)
	}
	sw, err := parseLatLng(parts[0], parts[1])
	if err != nil {
		return Bbox{}, fmt.Errorf("geo: southwest point: %w", err)
	}
	ne, err := parseLatLng(parts[2], parts[3])
	if err != nil {
		return Bbox{}, fmt.Errorf("geo: northeast point: %w", err)
	}
	return NewBbox(sw, ne), nil
}
