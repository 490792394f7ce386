// pkg/math/heading.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package math

import (
	"fmt"
	"strings"
)

///////////////////////////////////////////////////////////////////////////
// headings and directions

type CardinalOrdinalDirection int

const (
	North CardinalOrdinalDirection = iota
	NorthEast
	East
	SouthEast
	South
	SouthWest
	West
	NorthWest
)

// Heading returns the compass heading at the center of the direction's
// 45 degree sector.
func (co CardinalOrdinalDirection) Heading() float64 {
	return float64(co) * 45
}

// Contains reports whether the given heading (in degrees) falls in the
// 45 degree sector centered on the direction.
func (co CardinalOrdinalDirection) Contains(heading float64) bool {
	return HeadingDifference(NormalizeHeading(heading), co.Heading()) <= 22.5
}

func (co CardinalOrdinalDirection) ShortString() string {
	if co < North || co > NorthWest {
		return "ERROR"
	}
	return [...]string{"N", "NE", "E", "SE", "S", "SW", "W", "NW"}[co]
}

// String returns the direction the way it should be spoken, e.g. "south
// west".
func (co CardinalOrdinalDirection) String() string {
	if co < North || co > NorthWest {
		return "ERROR"
	}
	return [...]string{"north", "north east", "east", "south east",
		"south", "south west", "west", "north west"}[co]
}

// ParseCardinalOrdinalDirection accepts both abbreviations ("SW") and
// spelled-out directions in any of the forms a speech recognizer tends to
// produce ("south west", "southwest", "south-west").
func ParseCardinalOrdinalDirection(s string) (CardinalOrdinalDirection, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "", "-", "", "_", "").Replace(norm)

	switch norm {
	case "n", "north":
		return North, nil
	case "ne", "northeast":
		return NorthEast, nil
	case "e", "east":
		return East, nil
	case "se", "southeast":
		return SouthEast, nil
	case "s", "south":
		return South, nil
	case "sw", "southwest":
		return SouthWest, nil
	case "w", "west":
		return West, nil
	case "nw", "northwest":
		return NorthWest, nil
	}

	return CardinalOrdinalDirection(0), fmt.Errorf("%q: invalid direction", s)
}

// HeadingDifference returns the minimum difference between two
// headings. (i.e., the result is always in the range [0,180].)
func HeadingDifference(a float64, b float64) float64 {
	d := Abs(a - b)
	if d > 180 {
		d = 360 - d
	}
	return d
}

// Compass converts a heading expressed into degrees into a string
// corresponding to the closest compass direction.
func Compass(heading float64) string {
	return CompassDirection(heading).String()
}

// ShortCompass converts a heading expressed in degrees into an abbreviated
// string corresponding to the closest compass direction.
func ShortCompass(heading float64) string {
	return CompassDirection(heading).ShortString()
}

// CompassDirection returns the closest cardinal or ordinal direction to
// the given heading.
func CompassDirection(heading float64) CardinalOrdinalDirection {
	h := NormalizeHeading(heading + 22.5) // now [0,45] is north, etc...
	return CardinalOrdinalDirection(int(h/45) % 8)
}

// NormalizeHeading reduces it to [0,360).
func NormalizeHeading(h float64) float64 {
	return Mod(h, 360)
}
