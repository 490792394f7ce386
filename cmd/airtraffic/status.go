// cmd/airtraffic/status.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package main

import (
	"html/template"
	"log/slog"
	"net/http"
	"runtime"
	"time"

	"github.com/airtraffic/airtraffic/pkg/flightradar"
	"github.com/airtraffic/airtraffic/pkg/log"
	"github.com/airtraffic/airtraffic/pkg/util"

	"github.com/shirou/gopsutil/v3/cpu"
)

type serverStats struct {
	Uptime           time.Duration
	AllocMemory      uint64
	TotalAllocMemory uint64
	SysMemory        uint64
	NumGC            uint32
	NumGoRoutines    int
	CPUUsage         int

	Feed    flightradar.ClientStats
	Intents []intentCount
}

type intentCount struct {
	Name  string
	Count int
}

func (ss serverStats) LogValue() slog.Value {
	intents := util.MapSlice(ss.Intents, func(ic intentCount) slog.Attr { return slog.Int(ic.Name, ic.Count) })
	return slog.GroupValue(
		slog.Duration("uptime", ss.Uptime),
		slog.Uint64("alloc_mb", ss.AllocMemory),
		slog.Uint64("sys_mb", ss.SysMemory),
		slog.Int("goroutines", ss.NumGoRoutines),
		slog.Int("cpu", ss.CPUUsage),
		slog.Int64("feed_requests", ss.Feed.Requests),
		slog.Int64("feed_cache_hits", ss.Feed.CacheHits),
		slog.Int64("feed_failures", ss.Feed.Failures),
		slog.Attr{Key: "intents", Value: slog.GroupValue(intents...)})
}

// statsSource provides the counts shown on the status page.
type statsSource struct {
	lg      *log.Logger
	intents func() map[string]int
	feed    func() flightradar.ClientStats
}

func (s statsSource) stats() serverStats {
	var m runtime.MemStats
	runtime.ReadMemStats(&m)

	// With a zero interval, this is the usage since the last call.
	usage, _ := cpu.Percent(0, false)

	stats := serverStats{
		Uptime:           s.lg.Uptime().Round(time.Second),
		AllocMemory:      m.Alloc / (1024 * 1024),
		TotalAllocMemory: m.TotalAlloc / (1024 * 1024),
		SysMemory:        m.Sys / (1024 * 1024),
		NumGC:            m.NumGC,
		NumGoRoutines:    runtime.NumGoroutine(),
		Feed:             s.feed(),
	}
	if len(usage) > 0 {
		stats.CPUUsage = int(usage[0] + 0.5)
	}

	counts := s.intents()
	for _, name := range util.SortedMapKeys(counts) {
		stats.Intents = append(stats.Intents, intentCount{Name: name, Count: counts[name]})
	}

	return stats
}

var statsTemplate = template.Must(template.New("").Parse(`
<!DOCTYPE html>
<html>
<head>
<title>Air Traffic</title>
</head>
<style>
table {
  border-collapse: collapse;
}

th, td {
  border: 1px solid #dddddd;
  padding: 8px;
  text-align: left;
}

tr:nth-child(even) {
  background-color: #f2f2f2;
}
</style>
<body>
<h1>Server Status</h1>
<ul>
  <li>Uptime: {{.Uptime}}</li>
  <li>CPU usage: {{.CPUUsage}}%</li>
  <li>Allocated memory: {{.AllocMemory}} MB</li>
  <li>Total allocated memory: {{.TotalAllocMemory}} MB</li>
  <li>System memory: {{.SysMemory}} MB</li>
  <li>Garbage collection passes: {{.NumGC}}</li>
  <li>Running goroutines: {{.NumGoRoutines}}</li>
</ul>

<h1>Flight Feed</h1>
<ul>
  <li>Requests: {{.Feed.Requests}}</li>
  <li>Cache hits: {{.Feed.CacheHits}}</li>
  <li>Failures: {{.Feed.Failures}}</li>
</ul>

<h1>Requests</h1>
<table>
  <tr>
  <th>Intent</th>
  <th>Count</th>
  </tr>
{{range .Intents}}
  <tr>
  <td><tt>{{.Name}}</tt></td>
  <td>{{.Count}}</td>
  </tr>
{{end}}
</table>

</body>
</html>
`))

func (s statsSource) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := statsTemplate.Execute(w, s.stats()); err != nil {
		s.lg.Errorf("%s: %v", r.URL.String(), err)
	}
	s.lg.Infof("%s: served stats request", r.URL.String())
}
