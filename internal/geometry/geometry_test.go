package geometry

import (
	"fmt"
	"testing"

	"github.com/paulmach/orb"
	"github.com/stretchr/testify/assert"
)

// square builds a closed CCW ring with the given lower-left corner and
// side length in degrees.
func square(lng, lat, side float64) orb.Ring {
	return orb.Ring{
		{lng, lat},
		{lng + side, lat},
		{lng + side, lat + side},
		{lng, lat + side},
		{lng, lat},
	}
}

func squareGeoJSON(lng, lat, side float64) []byte {
	return []byte(fmt.Sprintf(
		`{"type":"Polygon","coordinates":[[[%f,%f],[%f,%f],[%f,%f],[%f,%f],[%f,%f]]]}`,
		lng, lat,
		lng+side, lat,
		lng+side, lat+side,
		lng, lat+side,
		lng, lat,
	))
}

func TestParseBoundary_ValidPolygon(t *testing.T) {
	ring, err := ParseBoundary(squareGeoJSON(0, 0, 0.001))
	assert.NoError(t, err)
	assert.Len(t, ring, 5)
	assert.True(t, ring.Closed())
}

func TestParseBoundary_NotAPolygon(t *testing.T) {
	_, err := ParseBoundary([]byte(`{"type":"Point","coordinates":[1,2]}`))
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestParseBoundary_MalformedJSON(t *testing.T) {
	_, err := ParseBoundary([]byte(`{"type":"Polygon"`))
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestParseBoundary_TooFewPoints(t *testing.T) {
	_, err := ParseBoundary([]byte(`{"type":"Polygon","coordinates":[[[0,0],[1,1],[0,0]]]}`))
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestParseBoundary_UnclosedRing(t *testing.T) {
	_, err := ParseBoundary([]byte(`{"type":"Polygon","coordinates":[[[0,0],[1,0],[1,1],[0,1]]]}`))
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestParseBoundary_DegenerateCollinear(t *testing.T) {
	// Four coordinates but only two distinct points.
	_, err := ParseBoundary([]byte(`{"type":"Polygon","coordinates":[[[0,0],[1,1],[0,0],[0,0]]]}`))
	assert.ErrorIs(t, err, ErrInvalidGeometry)
}

func TestCentroid_Square(t *testing.T) {
	c := Centroid(square(0, 0, 2))
	assert.InDelta(t, 1.0, c[0], 1e-9)
	assert.InDelta(t, 1.0, c[1], 1e-9)
}

func TestIntersects_OverlappingSquares(t *testing.T) {
	a := square(0, 0, 0.001)
	b := square(0.0005, 0.0005, 0.001)
	assert.True(t, Intersects(a, b))
	assert.True(t, Intersects(b, a))
}

func TestIntersects_SharedFenceLineIsNotOverlap(t *testing.T) {
	a := square(0, 0, 0.001)
	b := square(0.001, 0, 0.001) // shares the eastern edge of a
	assert.False(t, Intersects(a, b))
	assert.False(t, Intersects(b, a))
}

func TestIntersects_Containment(t *testing.T) {
	outer := square(0, 0, 0.01)
	inner := square(0.004, 0.004, 0.001)
	assert.True(t, Intersects(outer, inner))
	assert.True(t, Intersects(inner, outer))
}

func TestIntersects_DisjointSquares(t *testing.T) {
	a := square(0, 0, 0.001)
	b := square(0.01, 0.01, 0.001)
	assert.False(t, Intersects(a, b))
}

func TestMinDistanceMeters_TouchingIsZero(t *testing.T) {
	a := square(0, 0, 0.001)
	b := square(0.001, 0, 0.001)
	assert.Equal(t, 0.0, MinDistanceMeters(a, b))
}

func TestMinDistanceMeters_OverlappingIsZero(t *testing.T) {
	a := square(0, 0, 0.001)
	b := square(0.0005, 0, 0.001)
	assert.Equal(t, 0.0, MinDistanceMeters(a, b))
}

func TestMinDistanceMeters_FiftyMeterGap(t *testing.T) {
	// At the equator a degree of longitude is ~111.32 km, so a gap of
	// 0.00045 degrees is ~50 m.
	a := square(0, 0, 0.001)
	b := square(0.001+0.00045, 0, 0.001)

	d := MinDistanceMeters(a, b)
	assert.InDelta(t, 50.0, d, 1.0)
	assert.InDelta(t, d, MinDistanceMeters(b, a), 1e-6)
}

func TestMinDistanceMeters_VertexToEdge(t *testing.T) {
	// b sits north of a, offset so the nearest approach is a vertex of
	// b against an edge of a.
	a := square(0, 0, 0.001)
	b := square(0.0005, 0.0019, 0.001) // ~100m north

	d := MinDistanceMeters(a, b)
	assert.InDelta(t, 100.0, d, 2.0)
}
