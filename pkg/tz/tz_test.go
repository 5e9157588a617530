package tz

import (
	"errors"
	"testing"
	"time"
)

func TestParseValid(t *testing.T) {
	tests := []struct {
		in      string
		stdName string
		stdOff  int
		dstName string
		dstOff  int
	}{
		{"UTC0", "UTC", 0, "", 0},
		{"JST-9", "JST", 9 * 3600, "", 0},
		{"<+0530>-5:30", "+0530", 5*3600 + 1800, "", 0},
		{"CET-1CEST,M3.5.0,M10.5.0/3", "CET", 3600, "CEST", 7200},
		{"EST5EDT", "EST", -5 * 3600, "EDT", -4 * 3600},
		{"NZST-12NZDT-13,M9.5.0,M4.1.0/3", "NZST", 12 * 3600, "NZDT", 13 * 3600},
	}
	for _, tt := range tests {
		z, err := Parse(tt.in)
		if err != nil {
			t.Errorf("Parse(%q): %v", tt.in, err)
			continue
		}
		if z.stdName != tt.stdName || z.stdOff != tt.stdOff {
			t.Errorf("Parse(%q) std = %s %d, want %s %d", tt.in, z.stdName, z.stdOff, tt.stdName, tt.stdOff)
		}
		if z.dstName != tt.dstName || (z.hasDST && z.dstOff != tt.dstOff) {
			t.Errorf("Parse(%q) dst = %s %d, want %s %d", tt.in, z.dstName, z.dstOff, tt.dstName, tt.dstOff)
		}
		if z.String() != tt.in {
			t.Errorf("String() = %q, want %q", z.String(), tt.in)
		}
	}
}

func TestParseInvalid(t *testing.T) {
	for _, in := range []string{
		"",
		"UTC",
		"AB1",
		"CET-1CEST,M3.5.0",
		"CET-1CEST,M13.1.0,M10.5.0",
		"CET-1CEST,M3.6.0,M10.5.0",
		"CET-1CEST,M3.5.7,M10.5.0",
		"<CET-1",
		"CET-1 ",
		"Europe/Berlin",
	} {
		if _, err := Parse(in); !errors.Is(err, ErrSyntax) {
			t.Errorf("Parse(%q) = %v, want ErrSyntax", in, err)
		}
	}
}

func TestPresetsParse(t *testing.T) {
	for _, p := range Presets {
		if _, err := Parse(p.TZ); err != nil {
			t.Errorf("preset %q: %v", p.Label, err)
		}
	}
}

func TestCentralEuropeTransitions(t *testing.T) {
	z := mustParse(t, "CET-1CEST,M3.5.0,M10.5.0/3")
	tests := []struct {
		utc  time.Time
		name string
		hour int
	}{
		{time.Date(2025, 1, 15, 12, 0, 0, 0, time.UTC), "CET", 13},
		{time.Date(2025, 3, 30, 0, 59, 59, 0, time.UTC), "CET", 1},
		{time.Date(2025, 3, 30, 1, 0, 0, 0, time.UTC), "CEST", 3},
		{time.Date(2025, 7, 1, 22, 30, 0, 0, time.UTC), "CEST", 0},
		{time.Date(2025, 10, 26, 0, 59, 59, 0, time.UTC), "CEST", 2},
		{time.Date(2025, 10, 26, 1, 0, 0, 0, time.UTC), "CET", 2},
		{time.Date(2025, 12, 31, 23, 30, 0, 0, time.UTC), "CET", 0},
	}
	for _, tt := range tests {
		local := z.In(tt.utc)
		name, _ := local.Zone()
		if name != tt.name || local.Hour() != tt.hour {
			t.Errorf("In(%v) = %v, want %s hour %d", tt.utc, local, tt.name, tt.hour)
		}
	}
}

func TestUSEasternTransitions(t *testing.T) {
	z := mustParse(t, "EST5EDT,M3.2.0,M11.1.0")
	tests := []struct {
		utc time.Time
		dst bool
	}{
		{time.Date(2025, 3, 9, 6, 59, 59, 0, time.UTC), false},
		{time.Date(2025, 3, 9, 7, 0, 0, 0, time.UTC), true},
		{time.Date(2025, 11, 2, 5, 59, 59, 0, time.UTC), true},
		{time.Date(2025, 11, 2, 6, 0, 0, 0, time.UTC), false},
	}
	for _, tt := range tests {
		if _, _, dst := z.Lookup(tt.utc); dst != tt.dst {
			t.Errorf("Lookup(%v) dst = %v, want %v", tt.utc, dst, tt.dst)
		}
	}
}

func TestSouthernHemisphere(t *testing.T) {
	z := mustParse(t, "AEST-10AEDT,M10.1.0,M4.1.0/3")
	if _, off, _ := z.Lookup(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC)); off != 11*3600 {
		t.Errorf("January offset = %d, want %d", off, 11*3600)
	}
	if _, off, _ := z.Lookup(time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)); off != 10*3600 {
		t.Errorf("June offset = %d, want %d", off, 10*3600)
	}
	if _, off, _ := z.Lookup(time.Date(2025, 12, 10, 0, 0, 0, 0, time.UTC)); off != 11*3600 {
		t.Errorf("December offset = %d, want %d", off, 11*3600)
	}
}

func TestJulianRules(t *testing.T) {
	leap := rule{kind: ruleJulian, day: 60}
	if got := time.Unix(leap.unix(2024), 0).UTC(); got.Month() != time.March || got.Day() != 1 {
		t.Errorf("J60 in 2024 = %v, want March 1", got)
	}
	if got := time.Unix(leap.unix(2025), 0).UTC(); got.Month() != time.March || got.Day() != 1 {
		t.Errorf("J60 in 2025 = %v, want March 1", got)
	}
	zero := rule{kind: ruleDayOfYear, day: 59}
	if got := time.Unix(zero.unix(2024), 0).UTC(); got.Month() != time.February || got.Day() != 29 {
		t.Errorf("59 in 2024 = %v, want February 29", got)
	}
}

func TestLoad(t *testing.T) {
	z, err := Load("JST-9")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := z.In(time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)); got.Hour() != 5 {
		t.Errorf("JST hour = %d, want 5", got.Hour())
	}

	z, err = Load("")
	if err != nil {
		t.Fatalf("Load(empty): %v", err)
	}
	if got := z.In(time.Date(2025, 1, 1, 20, 0, 0, 0, time.UTC)); got.Hour() != 20 {
		t.Errorf("empty zone hour = %d, want 20", got.Hour())
	}

	if _, err := Load("Not/AZone"); !errors.Is(err, ErrSyntax) {
		t.Errorf("Load(bogus) = %v, want ErrSyntax", err)
	}
}

func mustParse(t *testing.T, s string) *Zone {
	t.Helper()
	z, err := Parse(s)
	if err != nil {
		t.Fatalf("Parse(%q): %v", s, err)
	}
	return z
}
