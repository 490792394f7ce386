// pkg/flightradar/feed.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flightradar

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/airtraffic/airtraffic/pkg/geo"
	"github.com/airtraffic/airtraffic/pkg/log"
	"github.com/airtraffic/airtraffic/pkg/util"

	"github.com/iancoleman/orderedmap"
)

// Response is a decoded feed: the aircraft inside the requested bounds,
// in the order the feed listed them, along with the feed's statistics.
type Response struct {
	FullCount int        `json:"full_count"`
	Version   int        `json:"version"`
	Stats     Stats      `json:"stats"`
	Sightings []Sighting `json:"-"`
}

type Stats struct {
	Total   Counts `json:"total"`
	Visible Counts `json:"visible"`
}

// Counts gives the number of aircraft tracked by each kind of source.
type Counts struct {
	ADSB      int `json:"ads-b"`
	MLAT      int `json:"mlat"`
	FAA       int `json:"faa"`
	FLARM     int `json:"flarm"`
	Estimated int `json:"estimated"`
}

func (c Counts) Sum() int {
	return c.ADSB + c.MLAT + c.FAA + c.FLARM + c.Estimated
}

// Sighting is a single aircraft position report.
type Sighting struct {
	ID               string
	ModeS            string
	Latitude         float64
	Longitude        float64
	Track            float64 // degrees true
	AltitudeFt       float64
	GroundSpeedKts   float64
	Squawk           string
	Radar            string
	AircraftType     string // ICAO type designator, e.g. "B738"
	Registration     string
	Timestamp        int64 // Unix seconds
	Origin           string
	Destination      string
	FlightNumber     string
	OnGround         bool
	VerticalSpeedFpm float64
	Callsign         string
	Airline          string
}

// Location returns the sighting's position; it fails if the feed gave an
// invalid latitude.
func (s Sighting) Location() (geo.Coordinate, error) {
	return geo.NewCoordinate(s.Latitude, s.Longitude)
}

// Top-level feed keys that don't hold aircraft.
var metadataKeys = map[string]bool{
	"stats":             true,
	"selected-aircraft": true,
	"full_count":        true,
	"version":           true,
}

// Positions of the fields in each aircraft's array. Anything past the
// callsign is optional.
const (
	fieldModeS = iota
	fieldLatitude
	fieldLongitude
	fieldTrack
	fieldAltitude
	fieldGroundSpeed
	fieldSquawk
	fieldRadar
	fieldType
	fieldRegistration
	fieldTimestamp
	fieldOrigin
	fieldDestination
	fieldFlightNumber
	fieldOnGround
	fieldVerticalSpeed
	fieldCallsign
	fieldGlider
	fieldAirline
)

// Decode parses the body of a feed response. Aircraft entries that can't
// be parsed, or that have an invalid position, are logged and skipped.
func Decode(body []byte, lg *log.Logger) (*Response, error) {
	var r Response
	if err := util.UnmarshalJSON(body, &r); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}

	// Decode a second time to get at the aircraft entries in order.
	om := orderedmap.New()
	if err := json.Unmarshal(body, om); err != nil {
		return nil, fmt.Errorf("decoding feed: %w", err)
	}

	for _, key := range om.Keys() {
		if metadataKeys[key] {
			continue
		}
		v, _ := om.Get(key)
		values, ok := v.([]any)
		if !ok {
			lg.Debugf("%s: ignoring unexpected %T in feed", key, v)
			continue
		}

		s, err := parseSighting(key, values)
		if err == nil {
			_, err = s.Location()
		}
		if err != nil {
			lg.Warnf("%s: skipping aircraft: %v", key, err)
			continue
		}
		r.Sightings = append(r.Sightings, s)
	}

	return &r, nil
}

type row []any

// str returns the value at index i as a string; missing and null values
// give the empty string.
func (r row) str(i int) string {
	if i >= len(r) {
		return ""
	}
	switch v := r[i].(type) {
	case string:
		return v
	case float64:
		return strconv.FormatFloat(v, 'f', -1, 64)
	default:
		return ""
	}
}

// num returns the value at index i as a number. The feed sometimes
// encodes numbers as strings, so those are accepted too.
func (r row) num(i int) (float64, error) {
	if i >= len(r) {
		return 0, fmt.Errorf("field %d: missing", i)
	}
	switch v := r[i].(type) {
	case float64:
		return v, nil
	case string:
		f, err := util.Atof(v)
		if err != nil {
			return 0, fmt.Errorf("field %d: %w", i, err)
		}
		return f, nil
	case bool:
		return util.Select(v, 1.0, 0.0), nil
	default:
		return 0, fmt.Errorf("field %d: unexpected %T", i, r[i])
	}
}

func parseSighting(id string, values []any) (Sighting, error) {
	r := row(values)
	if len(r) <= fieldCallsign {
		return Sighting{}, fmt.Errorf("only %d fields", len(r))
	}

	s := Sighting{
		ID:           id,
		ModeS:        r.str(fieldModeS),
		Squawk:       r.str(fieldSquawk),
		Radar:        r.str(fieldRadar),
		AircraftType: r.str(fieldType),
		Registration: r.str(fieldRegistration),
		Origin:       r.str(fieldOrigin),
		Destination:  r.str(fieldDestination),
		FlightNumber: r.str(fieldFlightNumber),
		Callsign:     r.str(fieldCallsign),
		Airline:      r.str(fieldAirline),
	}

	for _, f := range []struct {
		index int
		v     *float64
	}{
		{fieldLatitude, &s.Latitude},
		{fieldLongitude, &s.Longitude},
		{fieldTrack, &s.Track},
		{fieldAltitude, &s.AltitudeFt},
		{fieldGroundSpeed, &s.GroundSpeedKts},
	} {
		var err error
		if *f.v, err = r.num(f.index); err != nil {
			return Sighting{}, err
		}
	}

	// These are informational; don't reject the aircraft over them.
	if ts, err := r.num(fieldTimestamp); err == nil {
		s.Timestamp = int64(ts)
	}
	if g, err := r.num(fieldOnGround); err == nil {
		s.OnGround = g != 0
	}
	if vs, err := r.num(fieldVerticalSpeed); err == nil {
		s.VerticalSpeedFpm = vs
	}

	return s, nil
}
