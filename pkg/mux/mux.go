// Package mux is the tick-driven multiplexing engine.
//
// Each Tick lights exactly one tube: blank everything, let the drivers settle,
// advance the cursor, fetch that tube's state and drive its segments, dot and
// grid. The LED is dimmed by an 8-step software PWM on the same tick.
package mux

import (
	"time"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/render"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/segment"
)

const (
	// TickRate is the fixed handler frequency in Hz.
	TickRate = 500

	// TickPeriod is the interval between handler invocations.
	TickPeriod = time.Second / TickRate

	// SettleTime is how long all outputs stay blank before the next grid is
	// energised. It is a property of the driver transistors.
	SettleTime = 40 * time.Microsecond

	// PWMSteps is the LED duty frame length in ticks.
	PWMSteps = 8
)

// Engine owns the multiplex and PWM cursors. Only the tick handler may call
// Tick; the cursors are never shared.
type Engine struct {
	pins   Pins
	state  *render.State
	settle func()

	cursor int
	pwm    uint8
}

// New binds an engine to its outputs and render state and drives every line
// low, so nothing is lit until the first Tick.
func New(pins Pins, state *render.State) (*Engine, error) {
	if err := pins.Validate(); err != nil {
		return nil, err
	}
	e := &Engine{
		pins:   pins,
		state:  state,
		settle: func() { busyWait(SettleTime) },
		cursor: render.Tubes - 1,
	}
	e.Halt()
	return e, nil
}

// SetSettle replaces the settle delay. Tests use it to observe the blank
// phase without waiting.
func (e *Engine) SetSettle(fn func()) {
	if fn == nil {
		fn = func() {}
	}
	e.settle = fn
}

// Tick runs one multiplex step and one PWM step. It does not allocate or
// block beyond SettleTime.
func (e *Engine) Tick() {
	e.blank()
	e.settle()

	e.cursor = (e.cursor + 1) & (render.Tubes - 1)
	ts := e.state.ReadTube(e.cursor)

	pat := segment.Lookup(ts.Digit)
	for i := 0; i < segment.Count; i++ {
		e.pins[SegA+Line(i)].Set(pat[i])
	}
	e.pins[Dot].Set(ts.Dot)
	e.pins[Grid0+Line(e.cursor)].Set(true)

	e.stepPWM()
}

// blank turns off every grid, segment and the dot. The LED is left alone.
func (e *Engine) blank() {
	for l := Grid0; l <= Dot; l++ {
		e.pins[l].Set(false)
	}
}

// stepPWM turns the LED on at phase 0 and off at phase == level, so a level
// of 0 never lights it and a level of 8 never turns it off.
func (e *Engine) stepPWM() {
	off := uint8(e.state.ReadDimLevel())
	if e.pwm == off {
		e.pins[LED].Set(false)
	} else if e.pwm == 0 {
		e.pins[LED].Set(true)
	}

	e.pwm++
	if e.pwm == PWMSteps {
		e.pwm = 0
	}
}

// Halt drives every line low, LED included. Call it only when the tick
// source is stopped.
func (e *Engine) Halt() {
	for i := range e.pins {
		e.pins[i].Set(false)
	}
}

// Cursor returns the tube lit by the last Tick.
func (e *Engine) Cursor() int { return e.cursor }

// PWMPhase returns the phase the next Tick will evaluate.
func (e *Engine) PWMPhase() int { return int(e.pwm) }

func busyWait(d time.Duration) {
	start := time.Now()
	for time.Since(start) < d {
	}
}
