//go:build !tinygo

package pins

import (
	"fmt"

	"periph.io/x/conn/v3/gpio"
	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/host/v3"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/mux"
)

type periphPin struct {
	p gpio.PinOut
}

// Set ignores the error: the tick path has no error channel and a pin that
// accepted its initial Out call does not start failing.
func (p periphPin) Set(high bool) {
	if high {
		_ = p.p.Out(gpio.High)
	} else {
		_ = p.p.Out(gpio.Low)
	}
}

// OpenPeriph initialises periph.io host drivers and opens m by name.
func OpenPeriph(m Map) (mux.Pins, error) {
	if _, err := host.Init(); err != nil {
		return mux.Pins{}, fmt.Errorf("periph host init: %w", err)
	}
	return Build(m, func(name string) (mux.Pin, error) {
		p := gpioreg.ByName(name)
		if p == nil {
			return nil, fmt.Errorf("no such gpio %q", name)
		}
		if err := p.Out(gpio.Low); err != nil {
			return nil, err
		}
		return periphPin{p}, nil
	})
}
