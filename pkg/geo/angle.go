// pkg/geo/angle.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"fmt"
	gomath "math"
	"strconv"

	"github.com/airtraffic/airtraffic/pkg/math"
)

// Angles closer than this (in radians) compare as equal.
const angleEpsilon = 1e-4

// Angle is an angular quantity stored in radians. The zero value is a
// zero angle. Arithmetic never normalizes implicitly; call Normalise for
// that.
type Angle struct {
	radians float64
}

var (
	ZeroAngle = Angle{0}
	North     = Angle{0}
	South     = Angle{gomath.Pi}
	East      = Angle{gomath.Pi / 2}
	West      = Angle{3 * gomath.Pi / 2}
	Pi        = Angle{gomath.Pi}
	TwoPi     = Angle{2 * gomath.Pi}
	NaNAngle  = Angle{gomath.NaN()}
)

func AngleFromRadians(r float64) Angle {
	return Angle{r}
}

func AngleFromDegrees(d float64) Angle {
	return Angle{DegreesToRadians(d)}
}

func DegreesToRadians(d float64) float64 {
	return math.Radians(d)
}

func RadiansToDegrees(r float64) float64 {
	return math.Degrees(r)
}

func (a Angle) Radians() float64 { return a.radians }
func (a Angle) Degrees() float64 { return RadiansToDegrees(a.radians) }
func (a Angle) Cos() float64     { return gomath.Cos(a.radians) }
func (a Angle) Sin() float64     { return gomath.Sin(a.radians) }
func (a Angle) Tan() float64     { return gomath.Tan(a.radians) }
func (a Angle) IsNaN() bool      { return gomath.IsNaN(a.radians) }

func (a Angle) Abs() Angle {
	return Angle{gomath.Abs(a.radians)}
}

// Normalise returns the equivalent angle in [0, 2pi).
func (a Angle) Normalise() Angle {
	return Angle{math.Mod(a.radians, 2*gomath.Pi)}
}

// Limit clamps the angle to [lower, upper], comparing raw radian values.
func (a Angle) Limit(lower, upper Angle) (Angle, error) {
	if lower.Greater(upper) {
		return Angle{}, fmt.Errorf("lower limit %s exceeds upper limit %s: %w", lower, upper, ErrInvalidArgument)
	}
	if a.Less(lower) {
		return lower, nil
	} else if a.Greater(upper) {
		return upper, nil
	}
	return a, nil
}

// Equal reports whether the two angles' raw radian values are within
// 1e-4 of each other. Unlike IEEE comparison, NaN is equal to NaN.
// Equivalent directions with different windings (e.g. 0 and 2pi) are not
// equal unless normalized first.
func (a Angle) Equal(b Angle) bool {
	if a.IsNaN() && b.IsNaN() {
		return true
	}
	return gomath.Abs(a.radians-b.radians) < angleEpsilon
}

func (a Angle) Add(b Angle) Angle      { return Angle{a.radians + b.radians} }
func (a Angle) Sub(b Angle) Angle      { return Angle{a.radians - b.radians} }
func (a Angle) Neg() Angle             { return Angle{-a.radians} }
func (a Angle) Scale(s float64) Angle  { return Angle{a.radians * s} }
func (a Angle) Div(s float64) Angle    { return Angle{a.radians / s} }
func (a Angle) Less(b Angle) bool      { return a.radians < b.radians }
func (a Angle) Greater(b Angle) bool   { return a.radians > b.radians }
func (a Angle) LessEq(b Angle) bool    { return a.radians <= b.radians }
func (a Angle) GreaterEq(b Angle) bool { return a.radians >= b.radians }

// String formats the angle in degrees with at most two decimal places,
// e.g. "10.25 degrees".
func (a Angle) String() string {
	d := a.Degrees()
	if !gomath.IsNaN(d) && !gomath.IsInf(d, 0) {
		d = gomath.Round(d*100) / 100
	}
	return strconv.FormatFloat(d, 'f', -1, 64) + " degrees"
}
