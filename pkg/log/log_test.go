// pkg/log/log_test.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"strings"
	"testing"
)

type record struct {
	Level     string       `json:"level"`
	Msg       string       `json:"msg"`
	Callstack []StackFrame `json:"callstack"`
	Request   string       `json:"request"`
}

func readRecords(t *testing.T, buf *bytes.Buffer) []record {
	t.Helper()
	var recs []record
	for _, line := range strings.Split(strings.TrimSpace(buf.String()), "\n") {
		if line == "" {
			continue
		}
		var r record
		if err := json.Unmarshal([]byte(line), &r); err != nil {
			t.Fatalf("%s: %v", line, err)
		}
		recs = append(recs, r)
	}
	return recs
}

func TestLevels(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter(&buf, slog.LevelInfo)

	lg.Debug("hidden")
	lg.Debugf("hidden %d", 2)
	lg.Info("shown")
	lg.Warnf("warned %d", 3)
	lg.Errorf("failed %s", "badly")

	recs := readRecords(t, &buf)
	if len(recs) != 3 {
		t.Fatalf("expected 3 records, got %d: %+v", len(recs), recs)
	}
	for i, expected := range []struct{ level, msg string }{
		{"INFO", "shown"},
		{"WARN", "warned 3"},
		{"ERROR", "failed badly"},
	} {
		if recs[i].Level != expected.level || recs[i].Msg != expected.msg {
			t.Errorf("record %d: got %s %q, expected %s %q", i, recs[i].Level, recs[i].Msg, expected.level, expected.msg)
		}
	}
}

func TestCallstack(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter(&buf, slog.LevelDebug)
	lg.Debug("here")

	recs := readRecords(t, &buf)
	if len(recs) != 1 || len(recs[0].Callstack) == 0 {
		t.Fatalf("expected a record with a callstack, got %+v", recs)
	}
	top := recs[0].Callstack[0]
	if top.File != "log_test.go" || top.Function != "log.TestCallstack" {
		t.Errorf("unexpected top frame %s", top)
	}
}

func TestWith(t *testing.T) {
	var buf bytes.Buffer
	lg := NewWithWriter(&buf, slog.LevelInfo).With(slog.String("request", "abc"))
	lg.Info("tagged")

	if recs := readRecords(t, &buf); len(recs) != 1 || recs[0].Request != "abc" {
		t.Errorf("expected request attribute, got %+v", recs)
	}
}

func TestNilLogger(t *testing.T) {
	var lg *Logger

	// None of these should panic.
	lg.Debug("debug")
	lg.Infof("info %d", 1)
	lg = lg.With("k", "v")
	if lg != nil {
		t.Errorf("With on a nil logger should return nil")
	}
	if lg.Uptime() != 0 {
		t.Errorf("nil logger should report zero uptime")
	}
}

func TestParseLevel(t *testing.T) {
	for _, test := range []struct {
		s     string
		level slog.Level
		ok    bool
	}{
		{"debug", slog.LevelDebug, true},
		{"INFO", slog.LevelInfo, true},
		{"", slog.LevelInfo, true},
		{"warn", slog.LevelWarn, true},
		{"error", slog.LevelError, true},
		{"chatty", slog.LevelInfo, false},
	} {
		l, err := ParseLevel(test.s)
		if (err == nil) != test.ok || l != test.level {
			t.Errorf("%q: got %s, %v", test.s, l, err)
		}
	}
}
