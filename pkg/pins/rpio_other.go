//go:build !linux && !tinygo

package pins

import (
	"errors"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/mux"
)

// OpenRPIO is only available on Linux.
func OpenRPIO(m Map) (mux.Pins, func() error, error) {
	return mux.Pins{}, nil, errors.New("rpio backend requires linux")
}
