// cmd/airtraffic/main.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

// airtraffic serves the voice skill that answers "what's flying near me"
// and can also answer the question once from the command line.

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net"
	"net/http"
	"net/http/pprof"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/airtraffic/airtraffic/pkg/flightradar"
	"github.com/airtraffic/airtraffic/pkg/geo"
	"github.com/airtraffic/airtraffic/pkg/log"
	"github.com/airtraffic/airtraffic/pkg/skill"
	"github.com/airtraffic/airtraffic/pkg/util"

	"github.com/apenwarr/fixconsole"
	"golang.org/x/sync/errgroup"
)

var (
	logLevel     = flag.String("loglevel", "info", "logging level: debug, info, warn, error")
	logDir       = flag.String("logdir", "", "log file directory")
	configFile   = flag.String("config", "", "path to the JSON configuration file")
	writeConfig  = flag.Bool("writeconfig", false, "write the configuration file with the current settings and exit")
	serverPort   = flag.Int("port", 0, "port to listen on (overrides the configuration)")
	nearby       = flag.Bool("nearby", false, "print the aircraft nearby and exit rather than running the server")
	location     = flag.String("location", "", "location to use, e.g. \"52.04N 1.21E\"")
	radius       = flag.Float64("radius", 0, "search radius for -nearby")
	units        = flag.String("units", "", "units for -radius: km, miles, nm")
	direction    = flag.String("direction", "", "only report aircraft in this direction for -nearby, e.g. \"SW\"")
	dumpRequests = flag.Bool("dump", false, "log a dump of each request at debug level")
)

func main() {
	flag.Parse()

	if err := fixconsole.FixConsoleIfNeeded(); err != nil {
		fmt.Printf("FixConsole: %v\n", err)
	}

	lg := log.New(*logLevel, *logDir)

	if *configFile == "" {
		*configFile = configFilePath(lg)
	}
	config, err := LoadOrMakeDefaultConfig(*configFile, lg)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		lg.Errorf("%v", err)
		os.Exit(1)
	}

	if err := applyFlags(config); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	if *writeConfig {
		if err := config.Save(*configFile, lg); err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		return
	}

	feed := flightradar.NewClient(config.FeedOptions(), lg)

	var store skill.LocationStore
	if config.LocationsFile != "" {
		fs, err := skill.NewFileLocationStore(config.LocationsFile, lg)
		if err != nil {
			// Carry on; locations just won't persist.
			lg.Errorf("%s: %v", config.LocationsFile, err)
		} else {
			store = fs
		}
	}

	handler := skill.NewHandler(config.SkillConfig(), feed, store, lg)

	if *nearby {
		speech, err := nearbyOnce(handler)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			os.Exit(1)
		}
		fmt.Println(speech)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := runServer(ctx, config.Port, handler, feed, lg); err != nil {
		lg.Errorf("%v", err)
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// applyFlags overrides the configuration with the values given on the
// command line.
func applyFlags(config *Config) error {
	if *serverPort != 0 {
		config.Port = *serverPort
	}
	if *location != "" {
		c, err := geo.Parse(*location)
		if err != nil {
			return err
		}
		config.DefaultLocation = c.Normalised()
	}
	if *radius != 0 {
		config.DefaultRadius = *radius
	}
	if *units != "" {
		config.DefaultUnits = *units
	}
	if *dumpRequests {
		config.DumpRequests = true
	}

	var e util.ErrorLogger
	config.Validate(&e)
	return e.Err()
}

// nearbyOnce asks the handler about nearby aircraft as if the request
// had come from the voice service.
func nearbyOnce(h *skill.Handler) (string, error) {
	req := &skill.Request{Version: "1.0"}
	req.Request.Type = skill.IntentRequest
	req.Request.RequestID = "cli"
	req.Request.Intent.Name = skill.NearbyAircraftIntent
	if *direction != "" {
		req.Request.Intent.Slots = map[string]skill.Slot{
			"direction": {Name: "direction", Value: *direction},
		}
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	resp, err := h.Handle(ctx, req)
	if err != nil {
		return "", err
	}
	return resp.Speech(), nil
}

func newServeMux(handler *skill.Handler, feed *flightradar.Client, lg *log.Logger) *http.ServeMux {
	mux := http.NewServeMux()

	mux.Handle("/skill", handler)
	mux.Handle("/sup", statsSource{
		lg:      lg,
		intents: handler.IntentCounts,
		feed:    feed.Stats,
	})

	mux.HandleFunc("/debug/pprof/", pprof.Index)
	mux.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
	mux.HandleFunc("/debug/pprof/profile", pprof.Profile)
	mux.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
	mux.HandleFunc("/debug/pprof/trace", pprof.Trace)

	return mux
}

// runServer serves requests until ctx is canceled, then shuts down
// gracefully.
func runServer(ctx context.Context, port int, handler *skill.Handler, feed *flightradar.Client, lg *log.Logger) error {
	srv := &http.Server{
		Addr:              net.JoinHostPort("", strconv.Itoa(port)),
		Handler:           newServeMux(handler, feed, lg),
		ReadHeaderTimeout: 10 * time.Second,
	}

	eg, ctx := errgroup.WithContext(ctx)

	eg.Go(func() error {
		lg.Infof("Launching HTTP server on port %d", port)
		fmt.Printf("Launching HTTP server on port %d\n", port)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	eg.Go(func() error {
		<-ctx.Done()
		lg.Info("shutting down")

		sctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})

	// Periodically log the same statistics the status page shows.
	eg.Go(func() error {
		src := statsSource{lg: lg, intents: handler.IntentCounts, feed: feed.Stats}
		t := time.NewTicker(15 * time.Minute)
		defer t.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-t.C:
				lg.Info("stats", "stats", src.stats())
			}
		}
	})

	return eg.Wait()
}
