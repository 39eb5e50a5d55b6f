// Package geometry holds the polygon primitives behind field adjacency.
//
// Boundaries are GeoJSON Polygon rings of [longitude, latitude] pairs in
// WGS84 degrees. All distances returned by this package are meters,
// computed on a local equirectangular projection around the geometry
// (accurate to well under a percent at field scale). Thresholds passed
// to callers must therefore also be in meters.
package geometry

import (
	"errors"
	"fmt"
	"math"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geojson"
	"github.com/paulmach/orb/planar"
)

var ErrInvalidGeometry = errors.New("invalid geometry")

// metersPerDegreeLat is the WGS84 meridian degree length. Longitude
// degrees shrink with cos(latitude); see project().
const metersPerDegreeLat = 111320.0

// ParseBoundary decodes a GeoJSON Polygon geometry and returns its outer
// ring. It fails with a wrapped ErrInvalidGeometry for anything that is
// not a closed polygon ring of at least 3 distinct points.
func ParseBoundary(data []byte) (orb.Ring, error) {
	geom, err := geojson.UnmarshalGeometry(data)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidGeometry, err)
	}

	polygon, ok := geom.Geometry().(orb.Polygon)
	if !ok {
		return nil, fmt.Errorf("%w: expected a Polygon, got %s", ErrInvalidGeometry, geom.Type)
	}
	if len(polygon) == 0 {
		return nil, fmt.Errorf("%w: polygon has no rings", ErrInvalidGeometry)
	}

	ring := polygon[0]
	return ring, ValidateRing(ring)
}

// ValidateRing rejects degenerate rings: unclosed, or fewer than 3
// distinct points.
func ValidateRing(ring orb.Ring) error {
	if len(ring) < 4 {
		return fmt.Errorf("%w: ring has %d points, need at least 3 distinct plus closure", ErrInvalidGeometry, len(ring))
	}
	if !ring.Closed() {
		return fmt.Errorf("%w: ring is not closed (first point must equal last)", ErrInvalidGeometry)
	}

	distinct := map[orb.Point]struct{}{}
	for _, p := range ring[:len(ring)-1] {
		distinct[p] = struct{}{}
	}
	if len(distinct) < 3 {
		return fmt.Errorf("%w: ring has fewer than 3 distinct points", ErrInvalidGeometry)
	}
	return nil
}

// Centroid returns the area-weighted centroid of the ring.
func Centroid(ring orb.Ring) orb.Point {
	centroid, _ := planar.CentroidArea(orb.Polygon{ring})
	return centroid
}

// MarshalBoundary encodes a ring back to a GeoJSON Polygon geometry.
func MarshalBoundary(ring orb.Ring) ([]byte, error) {
	return geojson.NewGeometry(orb.Polygon{ring}).MarshalJSON()
}

// MinDistanceMeters returns the minimum distance between the two ring
// boundaries in meters, or 0 when the polygons touch or overlap.
func MinDistanceMeters(a, b orb.Ring) float64 {
	if Intersects(a, b) {
		return 0
	}

	// Project both rings to a shared local plane so segment math is
	// Euclidean in meters.
	origin := Centroid(a)
	pa := projectRing(a, origin)
	pb := projectRing(b, origin)

	min := math.Inf(1)
	for _, p := range pa {
		if d := distanceToRing(p, pb); d < min {
			min = d
		}
	}
	for _, p := range pb {
		if d := distanceToRing(p, pa); d < min {
			min = d
		}
	}
	return min
}

// Intersects reports whether the two rings share interior area. Touching
// at a point or along a shared fence line is not an intersection; a
// proper edge crossing or full containment is.
func Intersects(a, b orb.Ring) bool {
	for i := 0; i < len(a)-1; i++ {
		for j := 0; j < len(b)-1; j++ {
			if segmentsCross(a[i], a[i+1], b[j], b[j+1]) {
				return true
			}
		}
	}

	// No crossing edges: one ring may still sit entirely inside the
	// other. The centroid of a simple ring is interior for the field
	// shapes we deal with.
	if planar.RingContains(b, Centroid(a)) {
		return true
	}
	return planar.RingContains(a, Centroid(b))
}

// segmentsCross is a strict (proper) intersection test: the segments
// cross at a single interior point. Shared endpoints and collinear
// contact do not count, so adjacent boundaries along a fence line stay
// non-intersecting.
func segmentsCross(p1, p2, q1, q2 orb.Point) bool {
	d1 := cross(q1, q2, p1)
	d2 := cross(q1, q2, p2)
	d3 := cross(p1, p2, q1)
	d4 := cross(p1, p2, q2)
	return ((d1 > 0 && d2 < 0) || (d1 < 0 && d2 > 0)) &&
		((d3 > 0 && d4 < 0) || (d3 < 0 && d4 > 0))
}

func cross(a, b, c orb.Point) float64 {
	return (b[0]-a[0])*(c[1]-a[1]) - (b[1]-a[1])*(c[0]-a[0])
}

// project maps a lon/lat point onto a local plane (meters) centered at
// origin, using an equirectangular approximation.
func project(p, origin orb.Point) orb.Point {
	latScale := metersPerDegreeLat
	lngScale := metersPerDegreeLat * math.Cos(origin[1]*math.Pi/180)
	return orb.Point{
		(p[0] - origin[0]) * lngScale,
		(p[1] - origin[1]) * latScale,
	}
}

func projectRing(ring orb.Ring, origin orb.Point) orb.Ring {
	projected := make(orb.Ring, len(ring))
	for i, p := range ring {
		projected[i] = project(p, origin)
	}
	return projected
}

func distanceToRing(p orb.Point, ring orb.Ring) float64 {
	min := math.Inf(1)
	for i := 0; i < len(ring)-1; i++ {
		if d := planar.DistanceFromSegment(ring[i], ring[i+1], p); d < min {
			min = d
		}
	}
	return min
}
