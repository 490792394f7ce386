// pkg/geo/sphere.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	gomath "math"

	"github.com/airtraffic/airtraffic/pkg/math"
)

// EarthRadius is the radius of the sphere used for all of the spherical
// calculations.
var EarthRadius = Distance{6371.0}

///////////////////////////////////////////////////////////////////////////
// Great circles

// DistanceBetween returns the great-circle distance between two
// coordinates, computed with the haversine formula.
func DistanceBetween(a, b Coordinate) Distance {
	return a.DistanceTo(b.lat, b.long)
}

// DistanceTo returns the great-circle distance from c to the given
// latitude and longitude.
// https://www.movable-type.co.uk/scripts/latlong.html
func (c Coordinate) DistanceTo(lat, long float64) Distance {
	dlat, dlong := DegreesToRadians(lat-c.lat), DegreesToRadians(long-c.long)

	h := math.Sqr(gomath.Sin(dlat/2)) +
		gomath.Cos(DegreesToRadians(c.lat))*gomath.Cos(DegreesToRadians(lat))*math.Sqr(gomath.Sin(dlong/2))
	h = math.Clamp(h, 0, 1) // round-off, near-antipodal points
	d := 2 * gomath.Atan2(gomath.Sqrt(h), gomath.Sqrt(1-h))

	return EarthRadius.Scale(d)
}

// FindPointAtDistanceFrom returns the point reached by travelling the
// given distance along the great circle leaving start with the given
// initial bearing. The result is Normalised.
func FindPointAtDistanceFrom(start Coordinate, bearing Angle, distance Distance) Coordinate {
	delta := distance.Ratio(EarthRadius)
	sinDelta, cosDelta := gomath.Sincos(delta)
	lat, long := start.LatitudeRadians(), start.LongitudeRadians()
	sinLat, cosLat := gomath.Sincos(lat)

	destLat := math.SafeASin(sinLat*cosDelta + cosLat*sinDelta*bearing.Cos())
	destLong := long + gomath.Atan2(bearing.Sin()*sinDelta*cosLat, cosDelta-sinLat*gomath.Sin(destLat))

	return fromRadians(destLat, destLong).Normalised()
}

// FindLatitudeAtDistanceFrom returns just the latitude (in degrees) that
// FindPointAtDistanceFrom would reach from the given starting latitude.
func FindLatitudeAtDistanceFrom(lat float64, bearing Angle, distance Distance) float64 {
	delta := distance.Ratio(EarthRadius)
	sinDelta, cosDelta := gomath.Sincos(delta)
	sinLat, cosLat := gomath.Sincos(DegreesToRadians(lat))

	return RadiansToDegrees(math.SafeASin(sinLat*cosDelta + cosLat*sinDelta*bearing.Cos()))
}

// GreatCircleMidpoint returns the point halfway between a and b along the
// great circle joining them. Its longitude is in (-180,180].
func GreatCircleMidpoint(a, b Coordinate) Coordinate {
	dlong := DegreesToRadians(b.long - a.long)
	lat1, lat2 := a.LatitudeRadians(), b.LatitudeRadians()

	bx := gomath.Cos(lat2) * gomath.Cos(dlong)
	by := gomath.Cos(lat2) * gomath.Sin(dlong)

	lat := gomath.Atan2(gomath.Sin(lat1)+gomath.Sin(lat2),
		gomath.Sqrt(math.Sqr(gomath.Cos(lat1)+bx)+math.Sqr(by)))
	long := a.LongitudeRadians() + gomath.Atan2(by, gomath.Cos(lat1)+bx)
	long = gomath.Pi - math.Mod(gomath.Pi-long, 2*gomath.Pi)

	return fromRadians(lat, long)
}

///////////////////////////////////////////////////////////////////////////
// Rhumb lines

// rhumbLongitudeDelta returns the longitude difference from a to b,
// taking the shorter way around if going directly would be more than
// 180 degrees.
func rhumbLongitudeDelta(a, b Coordinate) Angle {
	d := b.LongitudeAngle().Sub(a.LongitudeAngle())
	if gomath.Abs(d.Degrees()) > 180 {
		if d.Degrees() < 0 {
			d = TwoPi.Add(d)
		} else {
			d = d.Sub(TwoPi)
		}
	}
	return d
}

// RhumbBearing returns the constant bearing of the rhumb line from a to
// b. The result is in [-pi,pi] and is not normalized.
func RhumbBearing(a, b Coordinate) Angle {
	dlong := rhumbLongitudeDelta(a, b)

	// Along a parallel; the ratio below is 0/0 at the south pole.
	var dpsi float64
	if a.lat != b.lat {
		dpsi = gomath.Log(gomath.Tan(b.LatitudeRadians()/2+gomath.Pi/4) / gomath.Tan(a.LatitudeRadians()/2+gomath.Pi/4))
	}
	return AngleFromRadians(gomath.Atan2(dlong.Radians(), dpsi))
}

// LoxodromicMidpoint returns the point halfway between a and b along the
// rhumb line joining them.
func LoxodromicMidpoint(a, b Coordinate) Coordinate {
	lat := a.LatitudeAngle().Add(b.LatitudeAngle()).Div(2)

	if d := b.LongitudeAngle().Sub(a.LongitudeAngle()); gomath.Abs(d.Degrees()) <= 180 {
		long := a.LongitudeAngle().Add(b.LongitudeAngle()).Div(2)
		return fromRadians(lat.Radians(), long.Radians())
	}

	long := a.LongitudeAngle().Add(rhumbLongitudeDelta(a, b).Div(2))
	return fromRadians(lat.Radians(), long.Radians()).Normalised()
}

///////////////////////////////////////////////////////////////////////////
// BoundingBox

// BoundingBox holds the extreme latitudes and longitudes (in degrees) of
// a region. West may be greater than East if the region spans the
// antimeridian.
type BoundingBox struct {
	North, South, East, West float64
}

// BoundingBoxAround returns the box whose edges are radius away from
// center due north, south, east and west.
func BoundingBoxAround(center Coordinate, radius Distance) BoundingBox {
	return BoundingBox{
		North: FindPointAtDistanceFrom(center, North, radius).Latitude(),
		South: FindPointAtDistanceFrom(center, South, radius).Latitude(),
		East:  FindPointAtDistanceFrom(center, East, radius).Longitude(),
		West:  FindPointAtDistanceFrom(center, West, radius).Longitude(),
	}
}

// Contains reports whether c falls inside the box, with c's longitude
// normalized first.
func (b BoundingBox) Contains(c Coordinate) bool {
	if c.lat > b.North || c.lat < b.South {
		return false
	}
	long := c.Normalised().long
	if b.West <= b.East {
		return long >= b.West && long <= b.East
	}
	return long >= b.West || long <= b.East
}
