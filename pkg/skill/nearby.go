// pkg/skill/nearby.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package skill

import (
	"slices"
	"strings"
	"unicode"

	"github.com/airtraffic/airtraffic/pkg/flightradar"
	"github.com/airtraffic/airtraffic/pkg/geo"
	"github.com/airtraffic/airtraffic/pkg/math"
	"github.com/airtraffic/airtraffic/pkg/util"

	"golang.org/x/text/message"
)

// Nearby is an aircraft within range of the user.
type Nearby struct {
	flightradar.Sighting
	Location geo.Coordinate
	Distance geo.Distance

	// Bearing is the rhumb line bearing from the user, in [0, 2pi).
	Bearing geo.Angle
}

// FindNearby returns the sightings strictly closer than radius to ref,
// closest first.
func FindNearby(ref geo.Coordinate, radius geo.Distance, sightings []flightradar.Sighting) []Nearby {
	var nearby []Nearby
	for _, s := range sightings {
		loc, err := s.Location()
		if err != nil {
			continue
		}
		if d := geo.DistanceBetween(ref, loc); d.Less(radius) {
			nearby = append(nearby, Nearby{
				Sighting: s,
				Location: loc,
				Distance: d,
				Bearing:  geo.RhumbBearing(ref, loc).Normalise(),
			})
		}
	}

	slices.SortStableFunc(nearby, func(a, b Nearby) int {
		if a.Distance.Less(b.Distance) {
			return -1
		} else if b.Distance.Less(a.Distance) {
			return 1
		}
		return 0
	})
	return nearby
}

// InDirection returns the aircraft whose bearing from the user falls in
// the 45 degree sector around dir.
func InDirection(nearby []Nearby, dir math.CardinalOrdinalDirection) []Nearby {
	return util.FilterSlice(nearby, func(n Nearby) bool { return dir.Contains(n.Bearing.Degrees()) })
}

// Letters whose names start with a vowel sound, so that e.g. "A320" is
// "an A320".
const vowelSoundLetters = "AEFHILMNORSX"

// indefiniteArticle returns "a" or "an" as appropriate for s. Aircraft
// type designators are spoken letter by letter, so those are judged by
// the sound of the first letter's name rather than by spelling.
func indefiniteArticle(s string) string {
	if s == "" {
		return "a"
	}

	first := rune(s[0])
	var an bool
	switch {
	case unicode.IsDigit(first):
		an = first == '8'
	case strings.ToUpper(s) == s:
		an = strings.ContainsRune(vowelSoundLetters, first)
	default:
		an = strings.ContainsRune("aeiouAEIOU", first)
	}
	return util.Select(an, "an", "a")
}

// describe returns the speech describing the closest aircraft, e.g. "a
// B738 flight FR123 to DUB, range 3.2 miles, bearing 45 degrees north
// east, at altitude 35,000 feet and 450 knots".
func describe(p *message.Printer, n Nearby, units geo.Unit) string {
	var b strings.Builder

	if n.AircraftType != "" {
		b.WriteString(indefiniteArticle(n.AircraftType) + " " + sayCharacters(n.AircraftType))
	} else {
		b.WriteString("an aircraft")
	}
	if n.FlightNumber != "" {
		b.WriteString(" flight " + sayCharacters(n.FlightNumber))
	} else if n.Callsign != "" {
		b.WriteString(", callsign " + sayCharacters(n.Callsign))
	}
	if n.Destination != "" {
		b.WriteString(" to " + sayCharacters(n.Destination))
	}

	b.WriteString(", range " + formatRange(p, n.Distance.In(units)) + " " + units.String())

	bearing := n.Bearing.Degrees()
	b.WriteString(p.Sprintf(", bearing %.0f degrees %s", math.NormalizeHeading(math.RoundTo(bearing, 0)),
		math.Compass(bearing)))

	if n.OnGround {
		b.WriteString(", on the ground")
	} else {
		b.WriteString(p.Sprintf(", at altitude %d feet", int(n.AltitudeFt)))
	}
	b.WriteString(p.Sprintf(" and %d knots", int(n.GroundSpeedKts)))

	return b.String()
}

// formatRange speaks short ranges to a tenth of a unit.
func formatRange(p *message.Printer, v float64) string {
	if v < 10 {
		return p.Sprintf("%.1f", v)
	}
	return p.Sprintf("%.0f", v)
}

// formatRadius drops the decimals from whole numbers, so a request for
// 20 miles is spoken as "20 miles".
func formatRadius(p *message.Printer, v float64) string {
	if v == float64(int64(v)) {
		return p.Sprintf("%d", int64(v))
	}
	return p.Sprintf("%.1f", v)
}
