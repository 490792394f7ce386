// pkg/geo/distance_test.go
// Copyright(c) 2024 airtraffic contributors, licensed under the GNU Public License, Version 3.
// SPDX: GPL-3.0-only

package geo

import (
	"errors"
	gomath "math"
	"sync"
	"testing"
)

func mustDistance(t *testing.T, km float64) Distance {
	t.Helper()
	d, err := DistanceFromKilometres(km)
	if err != nil {
		t.Fatalf("%g km: %v", km, err)
	}
	return d
}

func TestDistanceFactories(t *testing.T) {
	if _, err := DistanceFromKilometres(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for negative kilometres, got %v", err)
	}
	if _, err := DistanceFromMiles(-0.5); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange for negative miles, got %v", err)
	}
	if d, err := DistanceFromKilometres(0); err != nil || d != ZeroDistance {
		t.Errorf("zero distance: got %s, %v", d, err)
	}

	type Test struct {
		from func(float64) (Distance, error)
		v    float64
		km   float64
	}
	for _, test := range []Test{
		Test{from: DistanceFromMetres, v: 1500, km: 1.5},
		Test{from: DistanceFromMiles, v: 1, km: 1.609344},
		Test{from: DistanceFromNauticalMiles, v: 10, km: 18.52},
		Test{from: DistanceFromKilometres, v: 20, km: 20},
	} {
		d, err := test.from(test.v)
		if err != nil {
			t.Errorf("%g: unexpected error %v", test.v, err)
		} else if gomath.Abs(d.Kilometres()-test.km) > 1e-9 {
			t.Errorf("%g: got %g km, expected %g", test.v, d.Kilometres(), test.km)
		}
	}
}

func TestDistanceViews(t *testing.T) {
	d := mustDistance(t, 18.52)
	if gomath.Abs(d.NauticalMiles()-10) > 1e-9 {
		t.Errorf("got %g nm, expected 10", d.NauticalMiles())
	}
	if gomath.Abs(d.Metres()-18520) > 1e-6 {
		t.Errorf("got %g m, expected 18520", d.Metres())
	}
	if gomath.Abs(mustDistance(t, 1.609344).Miles()-1) > 1e-12 {
		t.Errorf("expected 1 mile")
	}
	if gomath.Abs(d.In(NauticalMiles)-d.NauticalMiles()) > 1e-12 {
		t.Errorf("In(NauticalMiles) disagrees with NauticalMiles()")
	}
}

func TestDistanceArithmetic(t *testing.T) {
	a, b := mustDistance(t, 1), mustDistance(t, 2)

	if s := a.Add(b); s.Kilometres() != 3 {
		t.Errorf("1+2: got %s", s)
	}
	// Subtraction doesn't validate, so the result can be negative.
	if s := a.Sub(b); s.Kilometres() != -1 {
		t.Errorf("1-2: got %s, expected -1 km", s)
	}
	if s := b.Scale(2.5); s.Kilometres() != 5 {
		t.Errorf("2*2.5: got %s", s)
	}
	if s := b.Div(4); s.Kilometres() != 0.5 {
		t.Errorf("2/4: got %s", s)
	}
	if r := a.Ratio(b); r != 0.5 {
		t.Errorf("1/2: got %g", r)
	}
	if !a.Less(b) || !b.Greater(a) || !a.LessEq(a) || !a.GreaterEq(a) {
		t.Errorf("ordering mismatch for 1 and 2 km")
	}
	if a.Equal(mustDistance(t, 1+1e-12)) {
		t.Errorf("distance equality should be exact")
	}
	if s := a.String(); s != "1 km" {
		t.Errorf("got %q, expected \"1 km\"", s)
	}
}

func TestDistanceAccumulator(t *testing.T) {
	var acc Accumulator
	var wg sync.WaitGroup
	for iter := 0; iter < 10; iter++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for iter := 0; iter < 10; iter++ {
				acc.Add(Distance{1})
			}
		}()
	}
	wg.Wait()

	if total := acc.Total(); total.Kilometres() != 100 {
		t.Errorf("got %s, expected 100 km", total)
	}
}

func TestParseUnit(t *testing.T) {
	for _, test := range []struct {
		s    string
		unit Unit
	}{
		{"km", Kilometres},
		{" Kilometers ", Kilometres},
		{"metres", Metres},
		{"Miles", Miles},
		{"nautical miles", NauticalMiles},
		{"NM", NauticalMiles},
	} {
		u, err := ParseUnit(test.s)
		if err != nil {
			t.Errorf("%q: unexpected error %v", test.s, err)
		} else if u != test.unit {
			t.Errorf("%q: got %s, expected %s", test.s, u, test.unit)
		}
	}

	if _, err := ParseUnit("furlongs"); err == nil {
		t.Errorf("expected error for unknown unit")
	}
}

func TestUnitDistance(t *testing.T) {
	for _, u := range []Unit{Kilometres, Metres, Miles, NauticalMiles} {
		d, err := u.Distance(2)
		if err != nil {
			t.Errorf("%s: unexpected error %v", u, err)
		} else if gomath.Abs(d.In(u)-2) > 1e-9 {
			t.Errorf("%s: round trip gave %g", u, d.In(u))
		}
	}
	if _, err := Miles.Distance(-1); !errors.Is(err, ErrOutOfRange) {
		t.Errorf("expected ErrOutOfRange, got %v", err)
	}
}
