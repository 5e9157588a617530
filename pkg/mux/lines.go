package mux

import (
	"errors"
	"fmt"
	"strings"
)

// Line names one physical output of the display board.
type Line uint8

const (
	Grid0 Line = iota
	Grid1
	Grid2
	Grid3
	SegA
	SegB
	SegC
	SegD
	SegE
	SegF
	SegG
	Dot
	LED

	NumLines = 13
)

var lineNames = [NumLines]string{
	"GRID0", "GRID1", "GRID2", "GRID3",
	"SEG_A", "SEG_B", "SEG_C", "SEG_D", "SEG_E", "SEG_F", "SEG_G",
	"DOT", "LED",
}

func (l Line) String() string {
	if int(l) < NumLines {
		return lineNames[l]
	}
	return fmt.Sprintf("LINE%d", uint8(l))
}

// ErrUnknownLine is returned by ParseLine for names not in the line set.
var ErrUnknownLine = errors.New("unknown output line")

// ParseLine maps a name such as "grid2" or "SEG_A" to its Line.
func ParseLine(name string) (Line, error) {
	n := strings.ToUpper(strings.TrimSpace(name))
	for i, ln := range lineNames {
		if n == ln || n == strings.ReplaceAll(ln, "_", "") {
			return Line(i), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownLine, name)
}

// Lines returns every line in index order.
func Lines() []Line {
	out := make([]Line, NumLines)
	for i := range out {
		out[i] = Line(i)
	}
	return out
}

// Pin asserts a logic level on one output. Set must not block or allocate:
// it is called from the tick handler. machine.Pin satisfies it directly.
type Pin interface {
	Set(high bool)
}

// Pins binds every Line to a Pin.
type Pins [NumLines]Pin

// Validate reports the first unbound line.
func (p *Pins) Validate() error {
	for i, pin := range p {
		if pin == nil {
			return fmt.Errorf("mux: line %s has no pin", Line(i))
		}
	}
	return nil
}
