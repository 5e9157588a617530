// Package pins binds the engine's output lines to real or simulated GPIO.
package pins

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/mux"
)

var ErrUnknownBackend = errors.New("unknown pin backend")

// Map names the GPIO behind each line, e.g. "GPIO17".
type Map map[mux.Line]string

// DefaultMap is the Raspberry Pi header wiring (BCM numbering).
func DefaultMap() Map {
	return Map{
		mux.Grid0: "GPIO5",
		mux.Grid1: "GPIO6",
		mux.Grid2: "GPIO13",
		mux.Grid3: "GPIO19",
		mux.SegA:  "GPIO17",
		mux.SegB:  "GPIO27",
		mux.SegC:  "GPIO22",
		mux.SegD:  "GPIO23",
		mux.SegE:  "GPIO24",
		mux.SegF:  "GPIO25",
		mux.SegG:  "GPIO12",
		mux.Dot:   "GPIO16",
		mux.LED:   "GPIO26",
	}
}

// ParseMap reads line names ("SEG_A", "grid0", ...) to GPIO names, filling
// unspecified lines from DefaultMap.
func ParseMap(raw map[string]string) (Map, error) {
	m := DefaultMap()
	for k, v := range raw {
		l, err := mux.ParseLine(k)
		if err != nil {
			return nil, err
		}
		m[l] = strings.TrimSpace(v)
	}
	return m, m.Validate()
}

// Validate checks that every line is mapped and no GPIO is used twice.
func (m Map) Validate() error {
	seen := make(map[string]mux.Line, len(m))
	for _, l := range mux.Lines() {
		name, ok := m[l]
		if !ok || name == "" {
			return fmt.Errorf("line %s: no gpio", l)
		}
		key := strings.ToUpper(name)
		if prev, dup := seen[key]; dup {
			return fmt.Errorf("gpio %s used by %s and %s", name, prev, l)
		}
		seen[key] = l
	}
	return nil
}

// Opener returns the output for one named GPIO.
type Opener func(name string) (mux.Pin, error)

// Build opens every line of m.
func Build(m Map, open Opener) (mux.Pins, error) {
	var out mux.Pins
	if err := m.Validate(); err != nil {
		return out, err
	}
	for _, l := range mux.Lines() {
		p, err := open(m[l])
		if err != nil {
			return out, fmt.Errorf("line %s (%s): %w", l, m[l], err)
		}
		out[l] = p
	}
	return out, nil
}

// BCM extracts the Broadcom pin number from "GPIO17", "BCM17" or "17".
func BCM(name string) (int, error) {
	s := strings.ToUpper(strings.TrimSpace(name))
	s = strings.TrimPrefix(s, "GPIO")
	s = strings.TrimPrefix(s, "BCM")
	n, err := strconv.Atoi(s)
	if err != nil || n < 0 || n > 53 {
		return 0, fmt.Errorf("invalid bcm pin %q", name)
	}
	return n, nil
}
