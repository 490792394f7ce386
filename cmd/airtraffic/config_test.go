// cmd/airtraffic/config_test.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/airtraffic/airtraffic/pkg/flightradar"
	"github.com/airtraffic/airtraffic/pkg/geo"
	"github.com/airtraffic/airtraffic/pkg/skill"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	fn := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(fn, []byte(contents), 0o600); err != nil {
		t.Fatal(err)
	}
	return fn
}

func TestLoadConfigMissing(t *testing.T) {
	config, err := LoadOrMakeDefaultConfig(filepath.Join(t.TempDir(), "nope.json"), nil)
	if err != nil {
		t.Fatal(err)
	}
	if config.Port != DefaultPort || config.DefaultRadius != 20 || !config.DefaultLocation.Equal(skill.DefaultLocation) {
		t.Errorf("expected defaults, got %+v", config)
	}
}

func TestLoadConfig(t *testing.T) {
	fn := writeConfigFile(t, `{
    "Port": 9000,
    "DefaultLocation": "51.5N 0.12W",
    "DefaultUnits": "miles",
    "Feed": { "MinInterval": 2.5, "CacheSize": 8 }
}`)

	config, err := LoadOrMakeDefaultConfig(fn, nil)
	if err != nil {
		t.Fatal(err)
	}
	if config.Port != 9000 {
		t.Errorf("Port: got %d", config.Port)
	}
	if !config.DefaultLocation.Equal(geo.MustCoordinate(51.5, -0.12)) {
		t.Errorf("DefaultLocation: got %s", config.DefaultLocation)
	}
	// Unset values keep their defaults.
	if config.DefaultRadius != 20 || config.Feed.BaseURL != flightradar.DefaultBaseURL {
		t.Errorf("defaults lost: %+v", config)
	}

	opts := config.FeedOptions()
	if opts.MinInterval != 2500*time.Millisecond || opts.CacheSize != 8 || opts.MaxAge != 4*time.Hour {
		t.Errorf("FeedOptions: got %+v", opts)
	}
	if sc := config.SkillConfig(); sc.DefaultUnits != geo.Miles || sc.DefaultRadius != 20 ||
		sc.DefaultLocation == nil || !sc.DefaultLocation.Equal(geo.MustCoordinate(51.5, -0.12)) {
		t.Errorf("SkillConfig: got %+v", sc)
	}
}

func TestLoadConfigErrors(t *testing.T) {
	for _, test := range []struct {
		contents, err string
	}{
		{`{"Port": "eighty"}`, "Port"},
		{`{"Prot": 80}`, "misspelled"},
		{`{"DefaultLocation": "somewhere"}`, "DefaultLocation"},
		{`{"DefaultRadius": -1}`, "DefaultRadius"},
		{`{"DefaultUnits": "cubits"}`, "cubits"},
		{`{"Port": 0}`, "Port"},
		{`{"Feed": {"CacheTTL": -5}}`, "negative"},
		{"{\n\"Port\": 80,\n}", "line 3"},
	} {
		_, err := LoadOrMakeDefaultConfig(writeConfigFile(t, test.contents), nil)
		if err == nil {
			t.Errorf("%s: expected an error", test.contents)
		} else if !strings.Contains(err.Error(), test.err) {
			t.Errorf("%s: expected error mentioning %q, got %v", test.contents, test.err, err)
		}
	}
}

func TestSaveConfig(t *testing.T) {
	fn := filepath.Join(t.TempDir(), "sub", "config.json")

	config := getDefaultConfig()
	config.Port = 1234
	config.DefaultLocation = geo.MustCoordinate(-33.9, 151.2)
	if err := config.Save(fn, nil); err != nil {
		t.Fatal(err)
	}

	loaded, err := LoadOrMakeDefaultConfig(fn, nil)
	if err != nil {
		t.Fatal(err)
	}
	if loaded.Port != 1234 || !loaded.DefaultLocation.Equal(config.DefaultLocation) {
		t.Errorf("got %+v", loaded)
	}
}

func TestStatusPage(t *testing.T) {
	feed := flightradar.NewClient(flightradar.Options{}, nil)
	h := skill.NewHandler(skill.Config{}, feed, nil, nil)

	req := &skill.Request{}
	req.Request.Type = skill.LaunchRequest
	if _, err := h.Handle(context.Background(), req); err != nil {
		t.Fatal(err)
	}

	mux := newServeMux(h, feed, nil)
	rec := httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/sup", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("got status %d", rec.Code)
	}
	body := rec.Body.String()
	for _, s := range []string{"Server Status", "Running goroutines", "<tt>LaunchRequest</tt>", "Cache hits: 0"} {
		if !strings.Contains(body, s) {
			t.Errorf("status page is missing %q", s)
		}
	}

	rec = httptest.NewRecorder()
	mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/skill", nil))
	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("GET /skill: got status %d", rec.Code)
	}
}
