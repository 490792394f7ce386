// pkg/skill/handler.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package skill

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	gomath "math"
	"net/http"
	"strconv"
	"sync"

	"github.com/airtraffic/airtraffic/pkg/flightradar"
	"github.com/airtraffic/airtraffic/pkg/geo"
	"github.com/airtraffic/airtraffic/pkg/log"
	"github.com/airtraffic/airtraffic/pkg/math"
	"github.com/airtraffic/airtraffic/pkg/util"

	"github.com/goforj/godump"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var (
	ErrUnknownRequestType = errors.New("Unknown request type")
	ErrUnknownIntent      = errors.New("Unknown intent")
	ErrMissingSlot        = errors.New("Missing slot value")
	ErrInvalidSlot        = errors.New("Invalid slot value")
)

const (
	launchSpeech   = "This is Air Traffic. Go ahead with your request, or ask for help"
	helpSpeech     = "I can tell you about aircraft flying near your position or over a specific place. You can ask questions like what is nearby? how many flights are within 20 miles? and, what is south of me? You can also set your specific location for more accurate results."
	goodbyeSpeech  = "Goodbye."
	fallbackSpeech = "Sorry, I can't help with that. You can ask me what is nearby, or ask for help."
	feedDownSpeech = "I'm unable to contact Flight Radar."
)

// DefaultLocation is used for users who haven't set their own.
var DefaultLocation = geo.MustCoordinate(52.041808, 1.208131)

// Fetcher provides the aircraft inside a bounding box;
// *flightradar.Client implements it.
type Fetcher interface {
	Fetch(ctx context.Context, bb geo.BoundingBox) (*flightradar.Response, error)
}

type Config struct {
	// DefaultLocation is used when the user hasn't stored a location; if
	// nil, the package's DefaultLocation is used.
	DefaultLocation *geo.Coordinate

	// DefaultRadius and DefaultUnits apply when the request doesn't
	// specify them.
	DefaultRadius float64
	DefaultUnits  geo.Unit

	// DumpRequests logs a dump of each request at debug level.
	DumpRequests bool
}

// Handler responds to voice service requests.
type Handler struct {
	cfg     Config
	fetcher Fetcher
	store   LocationStore
	lg      *log.Logger
	printer *message.Printer

	mu     sync.Mutex
	counts map[string]int
}

func NewHandler(cfg Config, fetcher Fetcher, store LocationStore, lg *log.Logger) *Handler {
	if cfg.DefaultLocation == nil {
		loc := DefaultLocation
		cfg.DefaultLocation = &loc
	}
	if cfg.DefaultRadius <= 0 {
		cfg.DefaultRadius = 20
	}
	if store == nil {
		store = NewMemoryLocationStore()
	}

	return &Handler{
		cfg:     cfg,
		fetcher: fetcher,
		store:   store,
		lg:      lg,
		printer: message.NewPrinter(language.BritishEnglish),
		counts:  make(map[string]int),
	}
}

// IntentCounts returns how many requests of each type, or for each
// intent, have been handled.
func (h *Handler) IntentCounts() map[string]int {
	h.mu.Lock()
	defer h.mu.Unlock()

	c := make(map[string]int, len(h.counts))
	for k, v := range h.counts {
		c[k] = v
	}
	return c
}

func (h *Handler) count(name string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.counts[name]++
}

// Handle returns the response to req. If it returns an error, the
// response is nil; ErrorResponse gives something suitable to say instead.
func (h *Handler) Handle(ctx context.Context, req *Request) (*Response, error) {
	lg := h.lg.With(slog.String("request_id", req.Request.RequestID))
	if h.cfg.DumpRequests {
		lg.Debug("request", slog.String("dump", godump.DumpStr(req)))
	}

	switch req.Request.Type {
	case LaunchRequest:
		h.count(LaunchRequest)
		return Ask(launchSpeech, helpSpeech), nil

	case SessionEndedRequest:
		h.count(SessionEndedRequest)
		lg.Infof("session ended: %s", req.Request.Reason)
		return &Response{Version: "1.0", Response: ResponseBody{ShouldEndSession: true}}, nil

	case IntentRequest:
		name := req.Request.Intent.Name
		lg.Infof("intent %s", name)

		switch name {
		case HelpIntent:
			h.count(name)
			return Ask(helpSpeech, ""), nil
		case StopIntent, CancelIntent:
			h.count(name)
			return Tell(goodbyeSpeech), nil
		case NearbyAircraftIntent:
			h.count(name)
			return h.nearbyAircraft(ctx, req, lg)
		case SetLocationIntent:
			h.count(name)
			return h.setLocation(req, lg)
		default:
			h.count("unknown intent")
			return nil, fmt.Errorf("%q: %w", name, ErrUnknownIntent)
		}

	default:
		h.count("unknown request")
		return nil, fmt.Errorf("%q: %w", req.Request.Type, ErrUnknownRequestType)
	}
}

// ErrorResponse returns the response for an error returned by Handle.
func (h *Handler) ErrorResponse(err error) *Response {
	switch {
	case errors.Is(err, ErrMissingSlot):
		return Ask("Sorry, I didn't catch that. Where are you? You can say a latitude and longitude.", "")
	case errors.Is(err, geo.ErrFormat), errors.Is(err, ErrInvalidSlot):
		return Ask("Sorry, I didn't understand that. Please try again.", "")
	default:
		return Tell(fallbackSpeech)
	}
}

// userLocation returns the stored location for the user making the
// request, or the configured default.
func (h *Handler) userLocation(req *Request, lg *log.Logger) geo.Coordinate {
	c, ok, err := h.store.Get(req.UserID())
	if err != nil {
		lg.Warnf("%s: unable to get location: %v", req.UserID(), err)
	}
	if ok {
		return c
	}
	return *h.cfg.DefaultLocation
}

func (h *Handler) nearbyAircraft(ctx context.Context, req *Request, lg *log.Logger) (*Response, error) {
	intent := req.Request.Intent
	p := h.printer

	radius := h.cfg.DefaultRadius
	if v, ok := intent.Slot("distance"); ok {
		r, err := strconv.ParseFloat(v, 64)
		if err != nil || !(r > 0) || gomath.IsInf(r, 0) {
			return nil, fmt.Errorf("distance %q: %w", v, ErrInvalidSlot)
		}
		radius = r
	}

	units := h.cfg.DefaultUnits
	if v, ok := intent.Slot("distanceUnits"); ok {
		u, err := geo.ParseUnit(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", err, ErrInvalidSlot)
		}
		units = u
	}

	var dir *math.CardinalOrdinalDirection
	if v, ok := intent.Slot("direction"); ok {
		d, err := math.ParseCardinalOrdinalDirection(v)
		if err != nil {
			return nil, fmt.Errorf("%w: %w", err, ErrInvalidSlot)
		}
		dir = &d
	}

	dist, err := units.Distance(radius)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", err, ErrInvalidSlot)
	}

	ref := h.userLocation(req, lg)
	flights, err := h.fetcher.Fetch(ctx, geo.BoundingBoxAround(ref, dist))
	if err != nil {
		lg.Errorf("%s: flight feed: %v", ref, err)
		return Tell(feedDownSpeech), nil
	}

	nearby := FindNearby(ref, dist, flights.Sightings)
	where := ""
	if dir != nil {
		nearby = InDirection(nearby, *dir)
		where = " to the " + dir.String()
	}
	lg.Infof("%s: %d of %d aircraft within %s%s", ref, len(nearby), len(flights.Sightings), dist, where)

	within := where + " within " + formatRadius(p, radius) + " " + units.String()
	if len(nearby) == 0 {
		return Tell("There are no flights" + within + "."), nil
	}

	lg.Debugf("closest is %s at %s %s", nearby[0].ID, nearby[0].Distance,
		math.ShortCompass(nearby[0].Bearing.Degrees()))

	var speech string
	if len(nearby) == 1 {
		speech = "There is 1 aircraft" + within + ". It is "
	} else {
		speech = p.Sprintf("There are %d aircraft", len(nearby)) + within + ". The closest is "
	}
	speech += describe(p, nearby[0], units) + "."

	return Tell(speech).WithCard("Air Traffic", stripTags(speech)), nil
}

func (h *Handler) setLocation(req *Request, lg *log.Logger) (*Response, error) {
	v, ok := req.Request.Intent.Slot("location")
	if !ok {
		return nil, fmt.Errorf("location: %w", ErrMissingSlot)
	}

	c, err := geo.Parse(v)
	if err != nil {
		return nil, err
	}
	c = c.Normalised()

	if err := h.store.Set(req.UserID(), c); err != nil {
		lg.Errorf("%s: unable to store location: %v", req.UserID(), err)
		return Tell("Sorry, I wasn't able to save your location."), nil
	}
	lg.Infof("%s: location set to %s", req.UserID(), c)

	return Tell("OK, your location is now " + speakCoordinate(h.printer, c) + "."), nil
}

// speakCoordinate returns e.g. "52.04 degrees north, 1.21 degrees east".
func speakCoordinate(p *message.Printer, c geo.Coordinate) string {
	lat, long := c.Latitude(), c.Longitude()
	return p.Sprintf("%.2f degrees %s, %.2f degrees %s",
		gomath.Abs(lat), util.Select(lat < 0, "south", "north"),
		gomath.Abs(long), util.Select(long < 0, "west", "east"))
}

///////////////////////////////////////////////////////////////////////////
// HTTP

// Requests are small; anything bigger than this is not from the voice
// service.
const maxRequestSize = 1 << 20

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", http.MethodPost)
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}

	b, err := io.ReadAll(io.LimitReader(r.Body, maxRequestSize))
	if err != nil {
		h.lg.Warnf("%s: reading request: %v", r.RemoteAddr, err)
		http.Error(w, "bad request", http.StatusBadRequest)
		return
	}

	var req Request
	if err := util.UnmarshalJSON(b, &req); err != nil {
		h.lg.Warnf("%s: %v", r.RemoteAddr, err)
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	resp, err := h.Handle(r.Context(), &req)
	if err != nil {
		h.lg.Warnf("%s: %v", req.Request.RequestID, err)
		resp = h.ErrorResponse(err)
	}

	w.Header().Set("Content-Type", "application/json;charset=UTF-8")
	if err := json.NewEncoder(w).Encode(resp); err != nil {
		h.lg.Errorf("%s: writing response: %v", req.Request.RequestID, err)
	}
}
