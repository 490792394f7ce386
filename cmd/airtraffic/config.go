// cmd/airtraffic/config.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/airtraffic/airtraffic/pkg/flightradar"
	"github.com/airtraffic/airtraffic/pkg/geo"
	"github.com/airtraffic/airtraffic/pkg/log"
	"github.com/airtraffic/airtraffic/pkg/skill"
	"github.com/airtraffic/airtraffic/pkg/util"
)

const DefaultPort = 8080

type Config struct {
	Port int

	// Used for users who haven't set their own location.
	DefaultLocation geo.Coordinate
	DefaultRadius   float64
	DefaultUnits    string

	// LocationsFile is where user locations are stored; if empty, they
	// are only kept in memory.
	LocationsFile string
	DumpRequests  bool

	Feed FeedConfig
}

// FeedConfig holds the flight feed options; times are in seconds.
type FeedConfig struct {
	BaseURL     string
	MaxAge      int
	MinInterval float64
	CacheSize   int
	CacheTTL    float64
}

func getDefaultConfig() *Config {
	c := &Config{
		Port:            DefaultPort,
		DefaultLocation: skill.DefaultLocation,
		DefaultRadius:   20,
		DefaultUnits:    "kilometres",
		Feed: FeedConfig{
			BaseURL:  flightradar.DefaultBaseURL,
			MaxAge:   4 * 60 * 60,
			CacheTTL: 15,
		},
	}
	if fn, err := util.CachePath("locations.msgpack"); err == nil {
		c.LocationsFile = fn
	}
	return c
}

func configFilePath(lg *log.Logger) string {
	dir, err := os.UserConfigDir()
	if err != nil {
		lg.Errorf("Unable to find user config dir: %v", err)
		dir = "."
	}
	return filepath.Join(dir, "AirTraffic", "config.json")
}

// LoadOrMakeDefaultConfig reads the config at fn, starting from the
// defaults for anything it doesn't set. A missing file isn't an error.
func LoadOrMakeDefaultConfig(fn string, lg *log.Logger) (*Config, error) {
	lg.Infof("Loading config from: %s", fn)

	config := getDefaultConfig()

	contents, err := os.ReadFile(fn)
	if os.IsNotExist(err) {
		lg.Infof("%s: not found; using default configuration", fn)
		return config, nil
	} else if err != nil {
		return nil, err
	}

	var e util.ErrorLogger
	e.Push(fn)
	if util.CheckJSON[Config](contents, &e); e.HaveErrors() {
		return nil, e.Err()
	}
	if err := util.UnmarshalJSON(contents, config); err != nil {
		e.Error(err)
		return nil, e.Err()
	}

	if config.Validate(&e); e.HaveErrors() {
		return nil, e.Err()
	}
	return config, nil
}

func (c *Config) Validate(e *util.ErrorLogger) {
	if c.Port <= 0 || c.Port > 65535 {
		e.ErrorString("Port: %d is not a valid port number", c.Port)
	}
	if !c.DefaultLocation.IsNormal() {
		e.ErrorString("DefaultLocation: %s is out of range", c.DefaultLocation)
	}
	if c.DefaultRadius <= 0 {
		e.ErrorString("DefaultRadius: must be positive")
	}
	if _, err := geo.ParseUnit(c.DefaultUnits); err != nil {
		e.ErrorString("DefaultUnits: %v", err)
	}

	e.Push("Feed")
	defer e.Pop()
	if c.Feed.MaxAge < 0 || c.Feed.MinInterval < 0 || c.Feed.CacheSize < 0 || c.Feed.CacheTTL < 0 {
		e.ErrorString("values may not be negative")
	}
}

func (c *Config) Encode(w io.Writer) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "    ")
	return enc.Encode(c)
}

func (c *Config) Save(fn string, lg *log.Logger) error {
	lg.Infof("Saving config to: %s", fn)
	if err := os.MkdirAll(filepath.Dir(fn), 0o700); err != nil {
		return err
	}

	f, err := os.Create(fn)
	if err != nil {
		return err
	}
	defer f.Close()

	return c.Encode(f)
}

func seconds(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}

func (c *Config) FeedOptions() flightradar.Options {
	return flightradar.Options{
		BaseURL:     c.Feed.BaseURL,
		MaxAge:      time.Duration(c.Feed.MaxAge) * time.Second,
		MinInterval: seconds(c.Feed.MinInterval),
		CacheSize:   c.Feed.CacheSize,
		CacheTTL:    seconds(c.Feed.CacheTTL),
	}
}

func (c *Config) SkillConfig() skill.Config {
	units, _ := geo.ParseUnit(c.DefaultUnits)
	loc := c.DefaultLocation
	return skill.Config{
		DefaultLocation: &loc,
		DefaultRadius:   c.DefaultRadius,
		DefaultUnits:    units,
		DumpRequests:    c.DumpRequests,
	}
}
