// pkg/geo/parse.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"fmt"
	"regexp"
	"strconv"
)

// axisValue is a parsed latitude or longitude magnitude along with
// whether a sign or hemisphere marker asked for it to be negated.
type axisValue struct {
	value  float64
	negate bool
}

func (a axisValue) get() float64 {
	if a.negate {
		return -a.value
	}
	return a.value
}

// coordinateGrammar matches a complete string and returns the two axis
// values it found. ok is false if the string doesn't match or a numeric
// field fails to parse.
type coordinateGrammar struct {
	name  string
	match func(s string) (lat, long axisValue, ok bool)
}

const separator = `[\s;,]+`

var (
	decimalPairRe = regexp.MustCompile(`^\s*([0-9.-]+)` + separator + `([0-9.-]+)\s*$`)

	decimalHemisphereRe = regexp.MustCompile(`^\s*([0-9.-]+)[\s°º]*([NS]?)[\s°º]*` + separator +
		`([0-9.-]+)[\s°º]*([EW]?)[\s°º]*$`)

	degreesMinutesRe = regexp.MustCompile(`^\s*([NS-]?)\s*(\d+)[º°'\s-]+([0-9.]+)[\s'′’´]?\s*([NS]?)` + separator +
		`([EW-]?)\s*(\d+)[º°'\s-]+([0-9.]+)[\s'′’´]?\s*([EW]?)\s*$`)

	degreesMinutesSecondsRe = regexp.MustCompile(`^\s*([NS-]?)\s*(\d+)[º°\s-]+(\d+)['’′´\s]+([0-9.]+)["”″\s]?\s*([NS]?)` + separator +
		`([EW-]?)\s*(\d+)[º°\s-]+(\d+)['’′´\s]+([0-9.]+)["”″\s]?\s*([EW]?)\s*$`)
)

// grammars are tried in order; the first one that matches with a valid
// latitude wins.
var grammars = []coordinateGrammar{
	{name: "decimal", match: matchDecimalPair},
	{name: "decimal-hemisphere", match: matchDecimalHemisphere},
	{name: "degrees-minutes", match: matchDegreesMinutes},
	{name: "degrees-minutes-seconds", match: matchDegreesMinutesSeconds},
}

// parseFloats parses each of the given strings, stopping at the first
// failure.
func parseFloats(strs ...string) ([]float64, bool) {
	v := make([]float64, len(strs))
	for i, s := range strs {
		var err error
		if v[i], err = strconv.ParseFloat(s, 64); err != nil {
			return nil, false
		}
	}
	return v, true
}

// 51.5, -0.12
func matchDecimalPair(s string) (lat, long axisValue, ok bool) {
	m := decimalPairRe.FindStringSubmatch(s)
	if m == nil {
		return
	}
	v, ok := parseFloats(m[1], m[2])
	if !ok {
		return
	}
	return axisValue{value: v[0]}, axisValue{value: v[1]}, true
}

// 51.5°N 0.12°W
func matchDecimalHemisphere(s string) (lat, long axisValue, ok bool) {
	m := decimalHemisphereRe.FindStringSubmatch(s)
	if m == nil {
		return
	}
	v, ok := parseFloats(m[1], m[3])
	if !ok {
		return
	}
	return axisValue{value: v[0], negate: m[2] == "S"}, axisValue{value: v[1], negate: m[4] == "W"}, true
}

// 51 30.0N 000 07.2W
func matchDegreesMinutes(s string) (lat, long axisValue, ok bool) {
	m := degreesMinutesRe.FindStringSubmatch(s)
	if m == nil {
		return
	}
	v, ok := parseFloats(m[2], m[3], m[6], m[7])
	if !ok {
		return
	}
	lat = axisValue{
		value:  v[0] + v[1]/60,
		negate: m[1] == "-" || m[1] == "S" || m[4] == "S",
	}
	long = axisValue{
		value:  v[2] + v[3]/60,
		negate: m[5] == "-" || m[5] == "W" || m[8] == "W",
	}
	return lat, long, true
}

// 51°30'0.0"N 000°07'12.0"W
func matchDegreesMinutesSeconds(s string) (lat, long axisValue, ok bool) {
	m := degreesMinutesSecondsRe.FindStringSubmatch(s)
	if m == nil {
		return
	}
	v, ok := parseFloats(m[2], m[3], m[4], m[7], m[8], m[9])
	if !ok {
		return
	}
	lat = axisValue{
		value:  v[0] + v[1]/60 + v[2]/3600,
		negate: m[1] == "-" || m[1] == "S" || m[5] == "S",
	}
	long = axisValue{
		value:  v[3] + v[4]/60 + v[5]/3600,
		negate: m[6] == "-" || m[6] == "W" || m[10] == "W",
	}
	return lat, long, true
}

// TryParse attempts to parse s as a coordinate in one of the supported
// notations: plain decimal degrees, decimal degrees with hemisphere
// letters, degrees and decimal minutes, or degrees, minutes and decimal
// seconds. Only the latitude is range-checked; a longitude outside of
// [-180,180] is returned as is.
func TryParse(s string) (Coordinate, bool) {
	for _, g := range grammars {
		lat, long, ok := g.match(s)
		if !ok {
			continue
		}
		if la := lat.get(); la >= -90 && la <= 90 {
			return Coordinate{lat: la, long: long.get()}, true
		}
	}
	return NaNCoordinate, false
}

// Parse is like TryParse but returns an error wrapping ErrFormat if s
// can't be parsed.
func Parse(s string) (Coordinate, error) {
	if c, ok := TryParse(s); ok {
		return c, nil
	}
	return NaNCoordinate, fmt.Errorf("%q: %w", s, ErrFormat)
}
