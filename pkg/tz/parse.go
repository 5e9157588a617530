package tz

import (
	"errors"
	"fmt"
)

type parser struct {
	s   string
	pos int
}

func (p *parser) done() bool { return p.pos >= len(p.s) }

func (p *parser) peek() byte {
	if p.done() {
		return 0
	}
	return p.s[p.pos]
}

func (p *parser) consume(c byte) bool {
	if p.peek() == c && !p.done() {
		p.pos++
		return true
	}
	return false
}

func (p *parser) fail(err error) error {
	if err == nil {
		err = errors.New("unexpected character")
	}
	return fmt.Errorf("%w %q at %d: %v", ErrSyntax, p.s, p.pos, err)
}

// name reads an alphabetic abbreviation or a <quoted> one.
func (p *parser) name() (string, error) {
	if p.consume('<') {
		start := p.pos
		for !p.done() && p.peek() != '>' {
			p.pos++
		}
		if p.done() {
			return "", errors.New("unterminated <name>")
		}
		n := p.s[start:p.pos]
		p.pos++
		if len(n) < 3 {
			return "", errors.New("name too short")
		}
		return n, nil
	}
	start := p.pos
	for !p.done() && isAlpha(p.peek()) {
		p.pos++
	}
	if p.pos-start < 3 {
		return "", errors.New("name too short")
	}
	return p.s[start:p.pos], nil
}

// offset reads [+|-]hh[:mm[:ss]] as seconds.
func (p *parser) offset() (int, error) {
	neg := false
	if p.consume('-') {
		neg = true
	} else {
		p.consume('+')
	}
	secs, err := p.hms(167)
	if err != nil {
		return 0, err
	}
	if neg {
		secs = -secs
	}
	return secs, nil
}

func (p *parser) hms(maxHour int) (int, error) {
	h, ok := p.num(0, maxHour)
	if !ok {
		return 0, errors.New("bad hour")
	}
	secs := h * 3600
	if p.consume(':') {
		m, ok := p.num(0, 59)
		if !ok {
			return 0, errors.New("bad minute")
		}
		secs += m * 60
		if p.consume(':') {
			s, ok := p.num(0, 59)
			if !ok {
				return 0, errors.New("bad second")
			}
			secs += s
		}
	}
	return secs, nil
}

func (p *parser) num(lo, hi int) (int, bool) {
	start := p.pos
	n := 0
	for !p.done() && isDigit(p.peek()) {
		n = n*10 + int(p.peek()-'0')
		p.pos++
		if n > hi {
			return 0, false
		}
	}
	if p.pos == start || n < lo {
		return 0, false
	}
	return n, true
}

// rule reads Jn, n or Mm.w.d, optionally followed by /time.
func (p *parser) rule() (rule, error) {
	var r rule
	var ok bool
	switch {
	case p.consume('J'):
		r.kind = ruleJulian
		if r.day, ok = p.num(1, 365); !ok {
			return r, errors.New("bad julian day")
		}
	case p.consume('M'):
		r.kind = ruleMonthWeek
		if r.month, ok = p.num(1, 12); !ok || !p.consume('.') {
			return r, errors.New("bad month")
		}
		if r.week, ok = p.num(1, 5); !ok || !p.consume('.') {
			return r, errors.New("bad week")
		}
		if r.day, ok = p.num(0, 6); !ok {
			return r, errors.New("bad weekday")
		}
	default:
		r.kind = ruleDayOfYear
		if r.day, ok = p.num(0, 365); !ok {
			return r, errors.New("bad day of year")
		}
	}

	r.at = 2 * 3600
	if p.consume('/') {
		neg := p.consume('-')
		if !neg {
			p.consume('+')
		}
		at, err := p.hms(167)
		if err != nil {
			return r, err
		}
		if neg {
			at = -at
		}
		r.at = at
	}
	return r, nil
}

func isAlpha(c byte) bool { return c >= 'A' && c <= 'Z' || c >= 'a' && c <= 'z' }

func isDigit(c byte) bool { return c >= '0' && c <= '9' }
