// Package tz parses POSIX TZ strings such as "CET-1CEST,M3.5.0,M10.5.0/3"
// and applies their daylight-saving rules without a zoneinfo database.
package tz

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/clock"
)

var ErrSyntax = errors.New("invalid TZ string")

// Preset is a named TZ string offered to users.
type Preset struct {
	Label string
	TZ    string
}

// Presets is the zone menu shown by the configuration surfaces.
var Presets = []Preset{
	{"UTC", "UTC0"},
	{"Europe - Berlin (CET/CEST)", "CET-1CEST,M3.5.0,M10.5.0/3"},
	{"Europe - London", "GMT0BST,M3.5.0/1,M10.5.0"},
	{"USA - Eastern (New York)", "EST5EDT,M3.2.0,M11.1.0"},
	{"USA - Pacific (Los Angeles)", "PST8PDT,M3.2.0,M11.1.0"},
	{"Japan (Tokyo)", "JST-9"},
}

type ruleKind uint8

const (
	ruleJulian    ruleKind = iota // Jn, 1..365, Feb 29 never counted
	ruleDayOfYear                 // n, 0..365
	ruleMonthWeek                 // Mm.w.d
)

type rule struct {
	kind  ruleKind
	day   int
	week  int
	month int
	at    int // seconds after local midnight
}

// Zone is a parsed POSIX TZ string.
type Zone struct {
	src string

	stdName string
	stdOff  int // seconds east of UTC
	dstName string
	dstOff  int
	hasDST  bool
	start   rule
	end     rule

	stdLoc *time.Location
	dstLoc *time.Location
}

// Parse parses s. Offsets follow POSIX sign convention: "EST5" is UTC-5.
func Parse(s string) (*Zone, error) {
	p := parser{s: s}
	z := &Zone{src: s}

	var err error
	if z.stdName, err = p.name(); err != nil {
		return nil, p.fail(err)
	}
	off, err := p.offset()
	if err != nil {
		return nil, p.fail(err)
	}
	z.stdOff = -off

	if !p.done() {
		if z.dstName, err = p.name(); err != nil {
			return nil, p.fail(err)
		}
		z.hasDST = true
		z.dstOff = z.stdOff + 3600
		if !p.done() && p.peek() != ',' {
			if off, err = p.offset(); err != nil {
				return nil, p.fail(err)
			}
			z.dstOff = -off
		}
		if p.done() {
			// Unspecified rules default to the US ones.
			z.start = rule{kind: ruleMonthWeek, month: 3, week: 2, at: 7200}
			z.end = rule{kind: ruleMonthWeek, month: 11, week: 1, at: 7200}
		} else {
			if !p.consume(',') {
				return nil, p.fail(nil)
			}
			if z.start, err = p.rule(); err != nil {
				return nil, p.fail(err)
			}
			if !p.consume(',') {
				return nil, p.fail(nil)
			}
			if z.end, err = p.rule(); err != nil {
				return nil, p.fail(err)
			}
		}
	}
	if !p.done() {
		return nil, p.fail(nil)
	}

	z.stdLoc = time.FixedZone(z.stdName, z.stdOff)
	if z.hasDST {
		z.dstLoc = time.FixedZone(z.dstName, z.dstOff)
	}
	return z, nil
}

func (z *Zone) String() string { return z.src }

// Lookup returns the abbreviation and UTC offset in effect at t.
func (z *Zone) Lookup(t time.Time) (name string, offset int, dst bool) {
	if z.isDST(t) {
		return z.dstName, z.dstOff, true
	}
	return z.stdName, z.stdOff, false
}

// In returns t in the zone's wall time.
func (z *Zone) In(t time.Time) time.Time {
	if z.isDST(t) {
		return t.In(z.dstLoc)
	}
	return t.In(z.stdLoc)
}

func (z *Zone) isDST(t time.Time) bool {
	if !z.hasDST {
		return false
	}
	u := t.Unix()
	year := t.UTC().Add(time.Duration(z.stdOff) * time.Second).Year()

	// Start is given in standard wall time, end in daylight wall time.
	start := z.start.unix(year) - int64(z.stdOff)
	end := z.end.unix(year) - int64(z.dstOff)
	if start < end {
		return u >= start && u < end
	}
	// Southern hemisphere: DST spans the new year.
	return !(u >= end && u < start)
}

// unix returns the rule instant for year as seconds, in local wall time
// expressed as if it were UTC.
func (r rule) unix(year int) int64 {
	jan1 := time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC)
	var yday int
	switch r.kind {
	case ruleJulian:
		yday = r.day - 1
		if isLeap(year) && r.day >= 60 {
			yday++
		}
	case ruleDayOfYear:
		yday = r.day
	case ruleMonthWeek:
		first := time.Date(year, time.Month(r.month), 1, 0, 0, 0, 0, time.UTC)
		d := (r.day-int(first.Weekday())+7)%7 + 1
		d += (r.week - 1) * 7
		if dim := daysIn(year, r.month); d > dim {
			d -= 7
		}
		yday = first.YearDay() - 1 + d - 1
	}
	return jan1.Unix() + int64(yday)*86400 + int64(r.at)
}

func isLeap(y int) bool { return y%4 == 0 && (y%100 != 0 || y%400 == 0) }

func daysIn(year, month int) int {
	return time.Date(year, time.Month(month)+1, 0, 0, 0, 0, 0, time.UTC).Day()
}

// Load resolves s as a POSIX TZ string, falling back to the system zone
// database (IANA names) where one is available.
func Load(s string) (clock.Zone, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return clock.LocationZone(time.UTC), nil
	}
	if z, err := Parse(s); err == nil {
		return z, nil
	}
	loc, err := time.LoadLocation(s)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrSyntax, s)
	}
	return clock.LocationZone(loc), nil
}
