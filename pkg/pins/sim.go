package pins

import (
	"sync/atomic"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/mux"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/segment"
)

// SimPin is an in-memory output line.
type SimPin struct {
	level atomic.Bool
}

func (p *SimPin) Set(high bool) { p.level.Store(high) }

func (p *SimPin) High() bool { return p.level.Load() }

// TubeView is what one tube last showed while its grid was on.
type TubeView struct {
	Segments segment.Pattern
	Dot      bool
}

// SimBoard is a set of SimPins plus a persistence-of-vision model of the
// tubes: Sample latches whatever the lit tube shows, the way the eye
// integrates the multiplexed glow.
type SimBoard struct {
	pins [mux.NumLines]SimPin

	tubes   [4]atomic.Uint32 // segment bits 0-6, dot bit 7
	ledHist atomic.Uint32    // last 8 LED samples, bit 0 newest
	samples atomic.Uint64
}

func NewSimBoard() *SimBoard {
	return &SimBoard{}
}

// Pins returns the board's lines for mux.New.
func (b *SimBoard) Pins() mux.Pins {
	var out mux.Pins
	for i := range b.pins {
		out[i] = &b.pins[i]
	}
	return out
}

// Level reports the current level of l.
func (b *SimBoard) Level(l mux.Line) bool {
	return b.pins[l].High()
}

// Sample records the current pin levels. Call it after each engine tick.
func (b *SimBoard) Sample() {
	lit := -1
	for g := 0; g < 4; g++ {
		if b.pins[mux.Grid0+mux.Line(g)].High() {
			if lit >= 0 {
				// Two grids on is a wiring fault; show nothing for either.
				b.tubes[lit].Store(0)
				lit = -1
				break
			}
			lit = g
		}
	}
	if lit >= 0 {
		var bits uint32
		for s := 0; s < segment.Count; s++ {
			if b.pins[mux.SegA+mux.Line(s)].High() {
				bits |= 1 << s
			}
		}
		if b.pins[mux.Dot].High() {
			bits |= 1 << 7
		}
		b.tubes[lit].Store(bits)
	}

	h := b.ledHist.Load() << 1
	if b.pins[mux.LED].High() {
		h |= 1
	}
	b.ledHist.Store(h & 0xFF)
	b.samples.Add(1)
}

// Tube returns the last latched view of tube pos.
func (b *SimBoard) Tube(pos int) TubeView {
	bits := b.tubes[pos&3].Load()
	var v TubeView
	for s := 0; s < segment.Count; s++ {
		v.Segments[s] = bits&(1<<s) != 0
	}
	v.Dot = bits&(1<<7) != 0
	return v
}

// LEDDuty is the fraction of the last 8 samples with the LED on.
func (b *SimBoard) LEDDuty() float64 {
	h := b.ledHist.Load()
	n := 0
	for i := 0; i < 8; i++ {
		if h&(1<<i) != 0 {
			n++
		}
	}
	return float64(n) / 8
}

// Samples counts Sample calls.
func (b *SimBoard) Samples() uint64 { return b.samples.Load() }

// Digits decodes the latched tubes back to digits, '?' for patterns that
// are not in the segment table.
func (b *SimBoard) Digits() string {
	out := make([]byte, 0, 8)
	for i := 0; i < 4; i++ {
		v := b.Tube(i)
		out = append(out, decode(v.Segments))
		if v.Dot {
			out = append(out, '.')
		}
	}
	return string(out)
}

func decode(p segment.Pattern) byte {
	for d := segment.Digit(0); d <= segment.Blank; d++ {
		if segment.Lookup(d) == p {
			return d.String()[0]
		}
	}
	if p == (segment.Pattern{}) {
		return ' '
	}
	return '?'
}
