//go:build linux && !tinygo

package pins

import (
	"fmt"

	"github.com/stianeikeland/go-rpio/v4"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/mux"
)

type rpioPin struct {
	p rpio.Pin
}

func (p rpioPin) Set(high bool) {
	if high {
		p.p.High()
	} else {
		p.p.Low()
	}
}

// OpenRPIO maps the Raspberry Pi GPIO block and opens m by BCM number.
// The returned func releases the mapping.
func OpenRPIO(m Map) (mux.Pins, func() error, error) {
	if err := rpio.Open(); err != nil {
		return mux.Pins{}, nil, fmt.Errorf("failed to open rpio: %w", err)
	}
	out, err := Build(m, func(name string) (mux.Pin, error) {
		n, err := BCM(name)
		if err != nil {
			return nil, err
		}
		p := rpio.Pin(n)
		p.Output()
		p.Low()
		return rpioPin{p}, nil
	})
	if err != nil {
		rpio.Close()
		return mux.Pins{}, nil, err
	}
	return out, rpio.Close, nil
}
