//go:build !tinygo

package pins

import (
	"fmt"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/mux"
)

// Backend names accepted by Open.
const (
	BackendSim    = "sim"
	BackendRPIO   = "rpio"
	BackendPeriph = "periph"
)

// Open returns the pins for backend. board is used by the sim backend
// and ignored otherwise. The returned func releases the backend.
func Open(backend string, m Map, board *SimBoard) (mux.Pins, func() error, error) {
	noop := func() error { return nil }
	switch backend {
	case BackendSim, "":
		if board == nil {
			return mux.Pins{}, nil, fmt.Errorf("%s backend needs a board", BackendSim)
		}
		return board.Pins(), noop, nil
	case BackendRPIO:
		return OpenRPIO(m)
	case BackendPeriph:
		p, err := OpenPeriph(m)
		return p, noop, err
	default:
		return mux.Pins{}, nil, fmt.Errorf("%w: %q", ErrUnknownBackend, backend)
	}
}
