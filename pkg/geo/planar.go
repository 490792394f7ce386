// pkg/geo/planar.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	gomath "math"

	"github.com/airtraffic/airtraffic/pkg/math"
)

// The functions in this file treat latitude and longitude as plain
// Cartesian coordinates measured in degrees. That is only a reasonable
// approximation over small areas away from the poles and the
// antimeridian; none of the results are true distances on the Earth.

const (
	// Roughly a metre, in degrees.
	planarEpsilon = 1e-5
	// Cross products smaller than this count as collinear.
	collinearEpsilon = 1e-15
)

// Orientation values returned by EuclideanOrientation.
const (
	Collinear        = 0
	Clockwise        = 1
	CounterClockwise = 2
)

// EuclideanDistance returns the straight-line distance between the two
// points in degrees.
func EuclideanDistance(p1, p2 Coordinate) float64 {
	return gomath.Sqrt(math.Sqr(p1.long-p2.long) + math.Sqr(p1.lat-p2.lat))
}

// EuclideanPerpendicularDistance returns the distance (in degrees) from
// p to the line through p1 and p2, found from the triangle's area via
// Heron's formula. Degenerate triangles where p sits on an endpoint or
// the points are collinear are handled separately.
func EuclideanPerpendicularDistance(p1, p2, p Coordinate) float64 {
	d2p := EuclideanDistance(p2, p)
	if gomath.Abs(d2p) < planarEpsilon {
		return 0
	}
	dp1 := EuclideanDistance(p, p1)
	if gomath.Abs(dp1) < planarEpsilon {
		return 0
	}
	d12 := EuclideanDistance(p1, p2)
	if gomath.Abs(d12) < planarEpsilon {
		return d2p
	}

	s := (d12 + d2p + dp1) / 2 // semi-perimeter
	if gomath.Abs(s-d2p) < planarEpsilon {
		return dp1
	}
	if gomath.Abs(s-dp1) < planarEpsilon {
		return d2p
	}
	return 2 * gomath.Sqrt(s*(s-d12)*(s-d2p)*(s-dp1)) / d12
}

// EuclideanOnSegment reports whether q lies within the axis-aligned box
// spanned by p and r. For collinear p, q, r, that means q is on the
// segment pr.
func EuclideanOnSegment(p, q, r Coordinate) bool {
	return q.long <= max(p.long, r.long) && q.long >= min(p.long, r.long) &&
		q.lat <= max(p.lat, r.lat) && q.lat >= min(p.lat, r.lat)
}

// EuclideanOrientation returns Collinear, Clockwise or CounterClockwise
// according to the sign of the cross product (q-p)x(r-q), where latitude
// is taken as the first axis.
func EuclideanOrientation(p, q, r Coordinate) int {
	v := (q.lat-p.lat)*(r.long-q.long) - (q.long-p.long)*(r.lat-q.lat)
	if gomath.Abs(v) < collinearEpsilon {
		return Collinear
	} else if v > 0 {
		return Clockwise
	}
	return CounterClockwise
}

// EuclideanLineIntersect reports whether the segments p1q1 and p2q2
// intersect, including touching at an endpoint and collinear overlap.
func EuclideanLineIntersect(p1, q1, p2, q2 Coordinate) bool {
	o1 := EuclideanOrientation(p1, q1, p2)
	o2 := EuclideanOrientation(p1, q1, q2)
	o3 := EuclideanOrientation(p2, q2, p1)
	o4 := EuclideanOrientation(p2, q2, q1)

	if o1 != o2 && o3 != o4 {
		return true
	}

	// Collinear special cases
	return (o1 == Collinear && EuclideanOnSegment(p1, p2, q1)) ||
		(o2 == Collinear && EuclideanOnSegment(p1, q2, q1)) ||
		(o3 == Collinear && EuclideanOnSegment(p2, p1, q2)) ||
		(o4 == Collinear && EuclideanOnSegment(p2, q1, q2))
}
