// pkg/log/stack.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package log

import (
	"path/filepath"
	"runtime"
	"strconv"
	"strings"
)

const modulePrefix = "github.com/airtraffic/airtraffic/"

type StackFrame struct {
	File     string `json:"file"`
	Line     int    `json:"line"`
	Function string `json:"function"`
}

// Callstack returns the stack of the function that called the logging
// method, stopping at main.main.
func Callstack() []StackFrame {
	var callers [16]uintptr
	n := runtime.Callers(3, callers[:]) // skip Callers, Callstack and the logging method
	frames := runtime.CallersFrames(callers[:n])

	fr := make([]StackFrame, 0, n)
	for {
		frame, more := frames.Next()
		fn := strings.TrimPrefix(frame.Function, modulePrefix+"pkg/")
		fn = strings.TrimPrefix(fn, modulePrefix)
		fn = strings.TrimPrefix(fn, "main.")

		fr = append(fr, StackFrame{
			File:     filepath.Base(frame.File),
			Line:     frame.Line,
			Function: fn,
		})

		// Don't keep going up into go runtime stack frames.
		if !more || frame.Function == "main.main" {
			return fr
		}
	}
}

func (f StackFrame) String() string {
	return f.File + ":" + strconv.Itoa(f.Line) + ":" + f.Function
}
