// pkg/geo/errors.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import "errors"

var (
	ErrFormat          = errors.New("Unable to parse string as a coordinate")
	ErrIndex           = errors.New("Coordinate index must be either 0 or 1")
	ErrInvalidArgument = errors.New("Invalid argument")
	ErrOutOfRange      = errors.New("Argument out of range")
)
