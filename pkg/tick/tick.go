// Package tick drives the multiplexing engine from a fixed-rate source.
package tick

import "github.com/tuffrabit/tinygo-nixie-clock/pkg/mux"

const (
	// Rate is the tick frequency in Hz.
	Rate = mux.TickRate

	// Period is the time between ticks.
	Period = mux.TickPeriod
)
