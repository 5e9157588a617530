// Package render holds what the tubes and the LED should currently show.
//
// State is the hand-off point between the formatter task (writer) and the
// multiplexing tick (reader). Every access goes through one critical.Section
// held only for the field copy, so a reader sees a Frame either entirely
// before or entirely after any write.
package render

import (
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/critical"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/segment"
)

// Tubes is the number of display positions.
const Tubes = 4

// DimLevel is the LED duty in eighths: 0 always off, 8 always on.
type DimLevel uint8

const (
	DimOff     DimLevel = 0
	DimOn      DimLevel = 8
	DefaultDim DimLevel = 2
)

// Clamp limits l to [DimOff, DimOn].
func (l DimLevel) Clamp() DimLevel {
	if l > DimOn {
		return DimOn
	}
	return l
}

// TubeState is what one tube shows.
type TubeState struct {
	Digit segment.Digit
	Dot   bool
}

// Frame is one coherent display intent, left to right.
type Frame [Tubes]TubeState

// BlankFrame is the "no time available" frame: dashes, no dots.
func BlankFrame() Frame {
	var f Frame
	for i := range f {
		f[i] = TubeState{Digit: segment.Blank}
	}
	return f
}

// String renders f as e.g. "14.07" or "----" for logs and status output.
func (f Frame) String() string {
	buf := make([]byte, 0, 2*Tubes)
	for _, ts := range f {
		buf = append(buf, ts.Digit.String()...)
		if ts.Dot {
			buf = append(buf, '.')
		}
	}
	return string(buf)
}

// State is the shared render state. The zero value is not ready; use New.
type State struct {
	sec   critical.Section
	frame Frame
	dim   DimLevel
}

// New returns a State showing BlankFrame at the given dim level.
func New(dim DimLevel) *State {
	return &State{
		frame: BlankFrame(),
		dim:   dim.Clamp(),
	}
}

// WriteDisplay replaces all four tubes as one unit.
func (s *State) WriteDisplay(f Frame) {
	s.sec.Enter()
	s.frame = f
	s.sec.Exit()
}

// WriteDimLevel replaces the LED duty. Values above DimOn are clamped.
func (s *State) WriteDimLevel(l DimLevel) {
	l = l.Clamp()
	s.sec.Enter()
	s.dim = l
	s.sec.Exit()
}

// ReadDisplay returns a copy of the current frame.
func (s *State) ReadDisplay() Frame {
	s.sec.Enter()
	f := s.frame
	s.sec.Exit()
	return f
}

// ReadTube returns the state of one position; pos is taken modulo Tubes.
func (s *State) ReadTube(pos int) TubeState {
	pos &= Tubes - 1
	s.sec.Enter()
	ts := s.frame[pos]
	s.sec.Exit()
	return ts
}

// ReadDimLevel returns the current LED duty.
func (s *State) ReadDimLevel() DimLevel {
	s.sec.Enter()
	l := s.dim
	s.sec.Exit()
	return l
}
