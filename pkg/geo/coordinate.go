// pkg/geo/coordinate.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"encoding/json"
	"fmt"
	gomath "math"
	"strconv"

	"github.com/airtraffic/airtraffic/pkg/math"
)

// Coordinates whose axes are both closer than this (in degrees) compare
// as equal.
const coordinateEpsilon = 1e-6

///////////////////////////////////////////////////////////////////////////
// Coordinate

// Coordinate is a latitude-longitude pair in degrees. Latitude is always
// in [-90,90]; longitude is not range checked and may be outside
// [-180,180] until Normalised is called.
type Coordinate struct {
	lat, long float64
}

var (
	ZeroCoordinate = Coordinate{0, 0}
	NaNCoordinate  = Coordinate{gomath.NaN(), gomath.NaN()}
)

func NewCoordinate(lat, long float64) (Coordinate, error) {
	if lat > 90 || lat < -90 {
		return Coordinate{}, fmt.Errorf("latitude %g: must be between +/- 90 (inclusive): %w", lat, ErrOutOfRange)
	}
	return Coordinate{lat, long}, nil
}

// MustCoordinate is like NewCoordinate but panics if the latitude is out
// of range. It is intended for constants and tests.
func MustCoordinate(lat, long float64) Coordinate {
	c, err := NewCoordinate(lat, long)
	if err != nil {
		panic(err)
	}
	return c
}

func CoordinateFromAngles(lat, long Angle) (Coordinate, error) {
	return NewCoordinate(lat.Degrees(), long.Degrees())
}

func CoordinateFromRadians(latRadians, longRadians float64) (Coordinate, error) {
	return NewCoordinate(RadiansToDegrees(latRadians), RadiansToDegrees(longRadians))
}

// fromRadians is used for the results of the trigonometric operations,
// where the latitude is in range by construction but may have picked up
// a little round-off on the way back to degrees.
func fromRadians(latRadians, longRadians float64) Coordinate {
	return Coordinate{math.Clamp(RadiansToDegrees(latRadians), -90, 90), RadiansToDegrees(longRadians)}
}

func (c Coordinate) Latitude() float64         { return c.lat }
func (c Coordinate) Longitude() float64        { return c.long }
func (c Coordinate) LatitudeRadians() float64  { return DegreesToRadians(c.lat) }
func (c Coordinate) LongitudeRadians() float64 { return DegreesToRadians(c.long) }
func (c Coordinate) LatitudeAngle() Angle      { return AngleFromDegrees(c.lat) }
func (c Coordinate) LongitudeAngle() Angle     { return AngleFromDegrees(c.long) }

// At returns latitude for index 0 and longitude for index 1.
func (c Coordinate) At(index int) (float64, error) {
	switch index {
	case 0:
		return c.lat, nil
	case 1:
		return c.long, nil
	default:
		return 0, fmt.Errorf("index %d: %w", index, ErrIndex)
	}
}

// Array returns the coordinate as {latitude, longitude}.
func (c Coordinate) Array() [2]float64 {
	return [2]float64{c.lat, c.long}
}

// IsNormal reports whether the longitude is in [-180,180].
func (c Coordinate) IsNormal() bool {
	return c.long <= 180 && c.long >= -180
}

func (c Coordinate) IsNaN() bool {
	return gomath.IsNaN(c.lat) || gomath.IsNaN(c.long)
}

// Normalised returns the coordinate with its longitude wrapped into
// [-180,180] by whole turns.
func (c Coordinate) Normalised() Coordinate {
	long := c.long
	if long > 180 {
		long -= 360 * gomath.Ceil((long-180)/360)
	} else if long < -180 {
		long += 360 * gomath.Ceil((-180-long)/360)
	}
	return Coordinate{c.lat, long}
}

// Round rounds both axes to the given number of decimal places.
func (c Coordinate) Round(places int) Coordinate {
	return Coordinate{math.RoundTo(c.lat, places), math.RoundTo(c.long, places)}
}

// Add returns the axis-wise sum of the two coordinates; it fails if the
// resulting latitude is out of range.
func (c Coordinate) Add(b Coordinate) (Coordinate, error) {
	return NewCoordinate(c.lat+b.lat, c.long+b.long)
}

// Sub returns the axis-wise difference of the two coordinates; it fails
// if the resulting latitude is out of range.
func (c Coordinate) Sub(b Coordinate) (Coordinate, error) {
	return NewCoordinate(c.lat-b.lat, c.long-b.long)
}

// Equal reports whether both axes are within 1e-6 degrees. NaN
// coordinates are never equal to anything, themselves included.
func (c Coordinate) Equal(b Coordinate) bool {
	return gomath.Abs(b.lat-c.lat) < coordinateEpsilon && gomath.Abs(b.long-c.long) < coordinateEpsilon
}

// String returns e.g. "51.5 -0.12".
func (c Coordinate) String() string {
	return strconv.FormatFloat(c.lat, 'f', -1, 64) + " " + strconv.FormatFloat(c.long, 'f', -1, 64)
}

// Store Coordinates as "lat, long" strings in JSON so that config files
// can use any of the notations that Parse accepts.
func (c Coordinate) MarshalJSON() ([]byte, error) {
	return json.Marshal(strconv.FormatFloat(c.lat, 'f', -1, 64) + ", " + strconv.FormatFloat(c.long, 'f', -1, 64))
}

func (c *Coordinate) UnmarshalJSON(b []byte) error {
	if len(b) > 0 && b[0] == '[' {
		var ll [2]float64
		if err := json.Unmarshal(b, &ll); err != nil {
			return err
		}
		pt, err := NewCoordinate(ll[0], ll[1])
		if err == nil {
			*c = pt
		}
		return err
	}

	var s string
	if err := json.Unmarshal(b, &s); err != nil {
		return err
	}
	pt, err := Parse(s)
	if err == nil {
		*c = pt
	}
	return err
}

// CheckJSON lets JSON type checking accept either the string or the
// two-element array encoding.
func (c Coordinate) CheckJSON(v any) bool {
	switch v := v.(type) {
	case string:
		_, ok := TryParse(v)
		return ok
	case []any:
		if len(v) != 2 {
			return false
		}
		_, lok := v[0].(float64)
		_, rok := v[1].(float64)
		return lok && rok
	default:
		return false
	}
}
