// pkg/geo/distance.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"fmt"
	"strings"
	"sync"
)

const (
	MileToKm         = 1.609344
	NauticalMileToKm = 1.852
)

// Distance is a length stored in kilometres. The factories reject
// negative lengths, but the arithmetic methods do not re-check, so
// e.g. a.Sub(b) with b > a yields a negative Distance.
type Distance struct {
	km float64
}

var ZeroDistance = Distance{0}

func DistanceFromKilometres(km float64) (Distance, error) {
	if km < 0 {
		return Distance{}, fmt.Errorf("%g km: must be greater than or equal to zero: %w", km, ErrOutOfRange)
	}
	return Distance{km}, nil
}

func DistanceFromMetres(m float64) (Distance, error) {
	return DistanceFromKilometres(m / 1000)
}

func DistanceFromNauticalMiles(nm float64) (Distance, error) {
	return DistanceFromKilometres(NauticalMilesToKilometres(nm))
}

func DistanceFromMiles(mi float64) (Distance, error) {
	return DistanceFromKilometres(MilesToKilometres(mi))
}

func MilesToKilometres(mi float64) float64         { return mi * MileToKm }
func KilometresToMiles(km float64) float64         { return km / MileToKm }
func NauticalMilesToKilometres(nm float64) float64 { return nm * NauticalMileToKm }
func KilometresToNauticalMiles(km float64) float64 { return km / NauticalMileToKm }

func (d Distance) Kilometres() float64    { return d.km }
func (d Distance) Metres() float64        { return d.km * 1000 }
func (d Distance) Miles() float64         { return KilometresToMiles(d.km) }
func (d Distance) NauticalMiles() float64 { return KilometresToNauticalMiles(d.km) }

func (d Distance) Add(b Distance) Distance   { return Distance{d.km + b.km} }
func (d Distance) Sub(b Distance) Distance   { return Distance{d.km - b.km} }
func (d Distance) Neg() Distance             { return Distance{-d.km} }
func (d Distance) Scale(s float64) Distance  { return Distance{d.km * s} }
func (d Distance) Div(s float64) Distance    { return Distance{d.km / s} }
func (d Distance) Ratio(b Distance) float64  { return d.km / b.km }
func (d Distance) Equal(b Distance) bool     { return d.km == b.km }
func (d Distance) Less(b Distance) bool      { return d.km < b.km }
func (d Distance) Greater(b Distance) bool   { return d.km > b.km }
func (d Distance) LessEq(b Distance) bool    { return d.km <= b.km }
func (d Distance) GreaterEq(b Distance) bool { return d.km >= b.km }
func (d Distance) In(u Unit) float64         { return u.fromKilometres(d.km) }
func (d Distance) String() string            { return fmt.Sprintf("%g km", d.km) }

///////////////////////////////////////////////////////////////////////////
// Accumulator

// Accumulator is a running total of distances that may be updated from
// multiple goroutines.
type Accumulator struct {
	mu    sync.Mutex
	total Distance
}

func (a *Accumulator) Add(d Distance) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.total = a.total.Add(d)
}

func (a *Accumulator) Total() Distance {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.total
}

///////////////////////////////////////////////////////////////////////////
// Unit

// Unit identifies one of the length units that distances can be created
// from or expressed in.
type Unit int

const (
	Kilometres Unit = iota
	Metres
	Miles
	NauticalMiles
)

func ParseUnit(s string) (Unit, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "km", "kms", "kilometre", "kilometres", "kilometer", "kilometers":
		return Kilometres, nil
	case "m", "metre", "metres", "meter", "meters":
		return Metres, nil
	case "mi", "mile", "miles", "statute mile", "statute miles":
		return Miles, nil
	case "nm", "nmi", "nautical mile", "nautical miles":
		return NauticalMiles, nil
	default:
		return Kilometres, fmt.Errorf("%q: unknown distance unit", s)
	}
}

// Distance returns a Distance of v in this unit.
func (u Unit) Distance(v float64) (Distance, error) {
	switch u {
	case Metres:
		return DistanceFromMetres(v)
	case Miles:
		return DistanceFromMiles(v)
	case NauticalMiles:
		return DistanceFromNauticalMiles(v)
	default:
		return DistanceFromKilometres(v)
	}
}

func (u Unit) fromKilometres(km float64) float64 {
	switch u {
	case Metres:
		return km * 1000
	case Miles:
		return KilometresToMiles(km)
	case NauticalMiles:
		return KilometresToNauticalMiles(km)
	default:
		return km
	}
}

// String returns the plural spoken name of the unit.
func (u Unit) String() string {
	switch u {
	case Metres:
		return "metres"
	case Miles:
		return "miles"
	case NauticalMiles:
		return "nautical miles"
	default:
		return "kilometres"
	}
}
