// pkg/math/core.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	gomath "math"

	"golang.org/x/exp/constraints"
)

// Degrees converts an angle expressed in radians to degrees.
func Degrees(r float64) float64 {
	return r * 180 / gomath.Pi
}

// Radians converts an angle expressed in degrees to radians.
func Radians(d float64) float64 {
	return d * gomath.Pi / 180
}

func Abs[V constraints.Integer | constraints.Float](x V) V {
	if x < 0 {
		return -x
	}
	return x
}

func Sqr[V constraints.Integer | constraints.Float](v V) V { return v * v }

func Clamp[T constraints.Ordered](x T, low T, high T) T {
	if x < low {
		return low
	} else if x > high {
		return high
	}
	return x
}

// SafeASin is math.Asin with its argument clamped to [-1,1], so that
// values that have drifted just outside that range through round-off
// don't give NaN.
func SafeASin(a float64) float64 {
	return gomath.Asin(Clamp(a, -1, 1))
}

// Mod returns a modulo b with the result in [0,b) for positive b; unlike
// math.Mod, the result never takes the sign of a.
func Mod(a, b float64) float64 {
	m := gomath.Mod(a, b)
	if m < 0 {
		m += b
	}
	if m >= b {
		// -tiny + b may round up to b.
		m = 0
	}
	return m
}

// RoundTo rounds v to the given number of decimal places, with ties
// going to the even neighbor.
func RoundTo(v float64, places int) float64 {
	p := gomath.Pow(10, float64(places))
	return gomath.RoundToEven(v*p) / p
}
