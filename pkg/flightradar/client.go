// pkg/flightradar/client.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package flightradar

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/airtraffic/airtraffic/pkg/geo"
	"github.com/airtraffic/airtraffic/pkg/log"

	"github.com/brunoga/deep"
	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/klauspost/compress/gzip"
	"golang.org/x/sync/singleflight"
)

const DefaultBaseURL = "https://data-live.flightradar24.com/zones/fcgi/feed.js"

// Feed bodies are typically a few hundred KB; anything much larger is
// not something we want to decode.
const maxBodySize = 32 << 20

var (
	ErrRateLimited = errors.New("Too many requests to the flight feed")
	ErrBadStatus   = errors.New("Unexpected HTTP status from the flight feed")
)

type Options struct {
	BaseURL string

	// MaxAge is the oldest position report the feed should return.
	MaxAge time.Duration

	// MinInterval is the minimum time between requests to the feed.
	MinInterval time.Duration

	// CacheSize and CacheTTL control how many responses are cached and for
	// how long; requests for a cached bounding box don't go to the feed.
	// CacheTTL is never shorter than MinInterval.
	CacheSize int
	CacheTTL  time.Duration

	// FetchTimeout bounds a request to the feed. The request is shared by
	// everyone asking for the same box, so it isn't canceled when one of
	// them gives up.
	FetchTimeout time.Duration

	HTTPClient *http.Client
	UserAgent  string
}

func (o *Options) setDefaults() {
	if o.BaseURL == "" {
		o.BaseURL = DefaultBaseURL
	}
	if o.MaxAge == 0 {
		o.MaxAge = 4 * time.Hour
	}
	if o.CacheSize == 0 {
		o.CacheSize = 64
	}
	if o.CacheTTL == 0 {
		o.CacheTTL = 15 * time.Second
	}
	o.CacheTTL = max(o.CacheTTL, o.MinInterval)
	if o.FetchTimeout == 0 {
		o.FetchTimeout = 20 * time.Second
	}
	if o.HTTPClient == nil {
		o.HTTPClient = &http.Client{Timeout: 10 * time.Second}
	}
	if o.UserAgent == "" {
		o.UserAgent = "airtraffic/1.0"
	}
}

// Client fetches aircraft positions from the flight feed. It is safe for
// concurrent use; concurrent requests for the same bounding box share a
// single request to the feed.
type Client struct {
	opts  Options
	lg    *log.Logger
	cache *expirable.LRU[string, *Response]
	group singleflight.Group

	mu          sync.Mutex
	lastRequest time.Time

	requests  atomic.Int64
	cacheHits atomic.Int64
	failures  atomic.Int64
}

// ClientStats summarizes a Client's activity since it was created.
type ClientStats struct {
	Requests  int64
	CacheHits int64
	Failures  int64
}

func NewClient(opts Options, lg *log.Logger) *Client {
	opts.setDefaults()
	return &Client{
		opts:  opts,
		lg:    lg,
		cache: expirable.NewLRU[string, *Response](opts.CacheSize, nil, opts.CacheTTL),
	}
}

func (c *Client) Stats() ClientStats {
	return ClientStats{
		Requests:  c.requests.Load(),
		CacheHits: c.cacheHits.Load(),
		Failures:  c.failures.Load(),
	}
}

// boundsParam formats the box as the feed expects: north, south, west,
// east. Rounding to 4 places also makes it a reasonable cache key.
func boundsParam(bb geo.BoundingBox) string {
	return fmt.Sprintf("%.4f,%.4f,%.4f,%.4f", bb.North, bb.South, bb.West, bb.East)
}

// Fetch returns the aircraft currently inside the bounding box. The
// returned Response belongs to the caller.
func (c *Client) Fetch(ctx context.Context, bb geo.BoundingBox) (*Response, error) {
	bounds := boundsParam(bb)

	if r, ok := c.cache.Get(bounds); ok {
		c.cacheHits.Add(1)
		c.lg.Debugf("%s: cached response", bounds)
		return deep.MustCopy(r), nil
	}

	ch := c.group.DoChan(bounds, func() (any, error) {
		// Another caller may have just filled it.
		if r, ok := c.cache.Get(bounds); ok {
			return r, nil
		}
		if err := c.reserve(); err != nil {
			return nil, err
		}

		fctx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.opts.FetchTimeout)
		defer cancel()

		r, err := c.get(fctx, bounds)
		if err != nil {
			c.failures.Add(1)
			return nil, err
		}
		c.cache.Add(bounds, r)
		return r, nil
	})

	var res singleflight.Result
	select {
	case <-ctx.Done():
		c.lg.Warnf("%s: %v", bounds, ctx.Err())
		return nil, ctx.Err()
	case res = <-ch:
	}

	if res.Err != nil {
		c.lg.Warnf("%s: %v", bounds, res.Err)
		return nil, res.Err
	}
	if res.Shared {
		c.lg.Debugf("%s: shared response", bounds)
	}

	return deep.MustCopy(res.Val.(*Response)), nil
}

// reserve claims the next request slot, failing if it's too soon after
// the previous request.
func (c *Client) reserve() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	if wait := c.opts.MinInterval - now.Sub(c.lastRequest); wait > 0 {
		return fmt.Errorf("retry in %s: %w", wait.Round(time.Millisecond), ErrRateLimited)
	}
	c.lastRequest = now
	return nil
}

func (c *Client) requestURL(bounds string) (string, error) {
	u, err := url.Parse(c.opts.BaseURL)
	if err != nil {
		return "", err
	}

	q := u.Query()
	q.Set("bounds", bounds)
	for _, flag := range []string{"faa", "mlat", "flarm", "adsb", "gnd", "air", "vehicles", "estimated", "gliders", "stats"} {
		q.Set(flag, "1")
	}
	q.Set("maxage", strconv.Itoa(int(c.opts.MaxAge.Seconds())))
	u.RawQuery = q.Encode()

	return u.String(), nil
}

func (c *Client) get(ctx context.Context, bounds string) (*Response, error) {
	c.requests.Add(1)

	u, err := c.requestURL(bounds)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Accept-Encoding", "gzip")
	req.Header.Set("User-Agent", c.opts.UserAgent)

	start := time.Now()
	resp, err := c.opts.HTTPClient.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%s: %w", resp.Status, ErrBadStatus)
	}

	var body io.Reader = resp.Body
	if resp.Header.Get("Content-Encoding") == "gzip" {
		zr, err := gzip.NewReader(resp.Body)
		if err != nil {
			return nil, fmt.Errorf("gzip: %w", err)
		}
		defer zr.Close()
		body = zr
	}

	b, err := io.ReadAll(io.LimitReader(body, maxBodySize))
	if err != nil {
		return nil, err
	}
	c.lg.Debugf("%s: %d bytes in %s", bounds, len(b), time.Since(start))

	r, err := Decode(b, c.lg)
	if err != nil {
		return nil, err
	}
	c.lg.Infof("%s: %d aircraft", bounds, len(r.Sightings))
	return r, nil
}
