//go:build !tinygo && !cgo

package sim

import (
	"context"
	"errors"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/pins"
)

func RunWindow(_ context.Context, _ *pins.SimBoard) error {
	return errors.New("window mode requires cgo (build/run with CGO_ENABLED=1)")
}
