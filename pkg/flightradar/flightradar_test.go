// pkg/flightradar/flightradar_test.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flightradar

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/airtraffic/airtraffic/pkg/geo"

	"github.com/klauspost/compress/gzip"
)

const testFeed = `{
  "full_count": 12345,
  "version": 4,
  "2d1e5a3b": ["4CA2D6", 52.1, 1.3, 271, 35000, 450, "2741", "T-EGSS1", "B738", "EI-DAC", 1700000000, "STN", "DUB", "FR123", 0, 0, "RYR4TC", 0, "RYR"],
  "2d1e5a3c": ["406B8D", "52.05", "1.25", 90, 3500, 180, "", "F-EGSH1", "DH8D", "G-JECX", 1700000001, "EDI", "NWI", "", 1, -640, "LOG123"],
  "short": ["ABC123", 52.0],
  "badpos": ["ABC124", 95, 0, 0, 0, 0, "", "", "", "", 0, "", "", "", 0, 0, ""],
  "badnum": ["ABC125", "north", 0, 0, 0, 0, "", "", "", "", 0, "", "", "", 0, 0, ""],
  "stats": {"total": {"ads-b": 10, "mlat": 2, "faa": 0, "flarm": 1, "estimated": 1},
            "visible": {"ads-b": 2, "mlat": 0, "faa": 0, "flarm": 0, "estimated": 0}},
  "selected-aircraft": {"available-ems": {}, "ems": {}}
}`

func TestDecode(t *testing.T) {
	r, err := Decode([]byte(testFeed), nil)
	if err != nil {
		t.Fatalf("unexpected error %v", err)
	}

	if r.FullCount != 12345 || r.Version != 4 {
		t.Errorf("metadata: got %d, %d", r.FullCount, r.Version)
	}
	if r.Stats.Total.Sum() != 14 || r.Stats.Visible.Sum() != 2 || r.Stats.Total.ADSB != 10 {
		t.Errorf("stats: got %+v", r.Stats)
	}

	if len(r.Sightings) != 2 {
		t.Fatalf("expected 2 sightings, got %d: %+v", len(r.Sightings), r.Sightings)
	}

	s := r.Sightings[0]
	if s.ID != "2d1e5a3b" || s.ModeS != "4CA2D6" || s.AircraftType != "B738" || s.FlightNumber != "FR123" ||
		s.Destination != "DUB" || s.Origin != "STN" || s.Callsign != "RYR4TC" || s.Airline != "RYR" ||
		s.Registration != "EI-DAC" || s.Squawk != "2741" {
		t.Errorf("first sighting: got %+v", s)
	}
	if s.Latitude != 52.1 || s.Longitude != 1.3 || s.Track != 271 || s.AltitudeFt != 35000 || s.GroundSpeedKts != 450 ||
		s.Timestamp != 1700000000 || s.OnGround {
		t.Errorf("first sighting numbers: got %+v", s)
	}

	// Numbers given as strings, no airline
	s = r.Sightings[1]
	if s.ID != "2d1e5a3c" || s.Latitude != 52.05 || s.Longitude != 1.25 || !s.OnGround ||
		s.VerticalSpeedFpm != -640 || s.Airline != "" || s.FlightNumber != "" {
		t.Errorf("second sighting: got %+v", s)
	}
	if loc, err := s.Location(); err != nil || !loc.Equal(geo.MustCoordinate(52.05, 1.25)) {
		t.Errorf("location: got %s, %v", loc, err)
	}
}

func TestDecodeErrors(t *testing.T) {
	if _, err := Decode([]byte(`{"full_count": 1,`), nil); err == nil {
		t.Errorf("expected an error for truncated JSON")
	}
	if _, err := Decode([]byte(`[1, 2]`), nil); err == nil {
		t.Errorf("expected an error for a non-object feed")
	}
	if r, err := Decode([]byte(`{"full_count": 0, "version": 4}`), nil); err != nil || len(r.Sightings) != 0 {
		t.Errorf("empty feed: got %+v, %v", r, err)
	}
}

type testServer struct {
	*httptest.Server
	hits     atomic.Int64
	status   int
	gzip     bool
	delay    time.Duration
	mu       sync.Mutex
	lastArgs map[string]string
}

func newTestServer(t *testing.T) *testServer {
	ts := &testServer{status: http.StatusOK}
	ts.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ts.hits.Add(1)
		time.Sleep(ts.delay)

		ts.mu.Lock()
		ts.lastArgs = make(map[string]string)
		for k := range r.URL.Query() {
			ts.lastArgs[k] = r.URL.Query().Get(k)
		}
		ts.mu.Unlock()

		if ts.status != http.StatusOK {
			http.Error(w, "nope", ts.status)
			return
		}
		if ts.gzip && r.Header.Get("Accept-Encoding") == "gzip" {
			w.Header().Set("Content-Encoding", "gzip")
			zw := gzip.NewWriter(w)
			zw.Write([]byte(testFeed))
			zw.Close()
			return
		}
		w.Write([]byte(testFeed))
	}))
	t.Cleanup(ts.Close)
	return ts
}

func testBox() geo.BoundingBox {
	d, _ := geo.DistanceFromKilometres(20)
	return geo.BoundingBoxAround(geo.MustCoordinate(52.041808, 1.208131), d)
}

func TestFetch(t *testing.T) {
	for _, compressed := range []bool{false, true} {
		ts := newTestServer(t)
		ts.gzip = compressed
		c := NewClient(Options{BaseURL: ts.URL}, nil)

		r, err := c.Fetch(context.Background(), testBox())
		if err != nil {
			t.Fatalf("gzip %v: unexpected error %v", compressed, err)
		}
		if len(r.Sightings) != 2 {
			t.Errorf("gzip %v: expected 2 sightings, got %d", compressed, len(r.Sightings))
		}

		ts.mu.Lock()
		if b := ts.lastArgs["bounds"]; b != "52.2217,51.8619,0.9157,1.5006" {
			t.Errorf("bounds: got %q", b)
		}
		if ts.lastArgs["maxage"] != "14400" || ts.lastArgs["mlat"] != "1" || ts.lastArgs["stats"] != "1" {
			t.Errorf("query: got %v", ts.lastArgs)
		}
		ts.mu.Unlock()
	}
}

func TestFetchCaching(t *testing.T) {
	ts := newTestServer(t)
	c := NewClient(Options{BaseURL: ts.URL, MinInterval: time.Hour}, nil)
	ctx := context.Background()

	r1, err := c.Fetch(ctx, testBox())
	if err != nil {
		t.Fatal(err)
	}
	// Callers get their own copies.
	r1.Sightings[0].FlightNumber = "changed"

	r2, err := c.Fetch(ctx, testBox())
	if err != nil {
		t.Fatal(err)
	}
	if r2.Sightings[0].FlightNumber != "FR123" {
		t.Errorf("cached response was modified: %+v", r2.Sightings[0])
	}
	if n := ts.hits.Load(); n != 1 {
		t.Errorf("expected 1 request to the feed, got %d", n)
	}

	// A different box within MinInterval is rate limited.
	other := testBox()
	other.North += 1
	if _, err := c.Fetch(ctx, other); !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited, got %v", err)
	}

	if st := c.Stats(); st.Requests != 1 || st.CacheHits != 1 {
		t.Errorf("stats: got %+v", st)
	}
}

func TestFetchCacheExpiry(t *testing.T) {
	ts := newTestServer(t)
	c := NewClient(Options{BaseURL: ts.URL, CacheTTL: 10 * time.Millisecond}, nil)

	for iter := 0; iter < 2; iter++ {
		if _, err := c.Fetch(context.Background(), testBox()); err != nil {
			t.Fatal(err)
		}
		time.Sleep(50 * time.Millisecond)
	}
	if n := ts.hits.Load(); n != 2 {
		t.Errorf("expected 2 requests after expiry, got %d", n)
	}
}

func TestFetchCacheCoversMinInterval(t *testing.T) {
	ts := newTestServer(t)
	c := NewClient(Options{BaseURL: ts.URL, MinInterval: time.Hour, CacheTTL: 10 * time.Millisecond}, nil)

	if c.opts.CacheTTL != time.Hour {
		t.Errorf("expected CacheTTL to be raised to MinInterval, got %s", c.opts.CacheTTL)
	}

	// The same box within MinInterval is served from the cache rather than
	// rate limited.
	for iter := 0; iter < 2; iter++ {
		if _, err := c.Fetch(context.Background(), testBox()); err != nil {
			t.Fatal(err)
		}
		time.Sleep(50 * time.Millisecond)
	}
	if n := ts.hits.Load(); n != 1 {
		t.Errorf("expected 1 request to the feed, got %d", n)
	}
}

func TestFetchSharedCallerGivesUp(t *testing.T) {
	ts := newTestServer(t)
	ts.delay = 200 * time.Millisecond
	c := NewClient(Options{BaseURL: ts.URL}, nil)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	firstErr := make(chan error, 1)
	go func() {
		_, err := c.Fetch(ctx, testBox())
		firstErr <- err
	}()

	// Join the request once it has reached the feed.
	for ts.hits.Load() == 0 {
		time.Sleep(time.Millisecond)
	}
	type result struct {
		r   *Response
		err error
	}
	second := make(chan result, 1)
	go func() {
		r, err := c.Fetch(context.Background(), testBox())
		second <- result{r, err}
	}()
	time.Sleep(20 * time.Millisecond)
	cancel()

	if err := <-firstErr; !errors.Is(err, context.Canceled) {
		t.Errorf("first caller: expected Canceled, got %v", err)
	}
	res := <-second
	if res.err != nil || len(res.r.Sightings) != 2 {
		t.Errorf("second caller: got %+v, %v", res.r, res.err)
	}
	if n := ts.hits.Load(); n != 1 {
		t.Errorf("expected a single request to the feed, got %d", n)
	}
}

func TestFetchShared(t *testing.T) {
	ts := newTestServer(t)
	ts.delay = 100 * time.Millisecond
	c := NewClient(Options{BaseURL: ts.URL, MinInterval: time.Hour}, nil)

	var wg sync.WaitGroup
	var failures atomic.Int64
	for iter := 0; iter < 8; iter++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			if _, err := c.Fetch(context.Background(), testBox()); err != nil {
				failures.Add(1)
			}
		}()
	}
	wg.Wait()

	if failures.Load() != 0 {
		t.Errorf("%d concurrent fetches failed", failures.Load())
	}
	if n := ts.hits.Load(); n != 1 {
		t.Errorf("expected a single request to the feed, got %d", n)
	}
}

func TestFetchBadStatus(t *testing.T) {
	ts := newTestServer(t)
	ts.status = http.StatusServiceUnavailable
	c := NewClient(Options{BaseURL: ts.URL}, nil)

	if _, err := c.Fetch(context.Background(), testBox()); !errors.Is(err, ErrBadStatus) {
		t.Errorf("expected ErrBadStatus, got %v", err)
	}
	if st := c.Stats(); st.Failures != 1 {
		t.Errorf("expected a failure to be counted, got %+v", st)
	}
}

func TestFetchCancelled(t *testing.T) {
	ts := newTestServer(t)
	ts.delay = time.Second
	c := NewClient(Options{BaseURL: ts.URL}, nil)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	if _, err := c.Fetch(ctx, testBox()); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("expected DeadlineExceeded, got %v", err)
	}
}
