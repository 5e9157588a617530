//go:build tinygo

package main

import (
	"context"
	"fmt"
	"machine"
	"time"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/clock"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/config"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/control"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/display"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/mux"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/protocol"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/render"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/storage"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/tick"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/timesource"
	"github.com/tuffrabit/tinygo-nixie-clock/serial"
)

// Board wiring. The I2C0 bus (GP4/GP5) is shared by the DS3231 and the
// debug OLED.
var lines = [mux.NumLines]machine.Pin{
	mux.Grid0: machine.GP2,
	mux.Grid1: machine.GP3,
	mux.Grid2: machine.GP6,
	mux.Grid3: machine.GP7,
	mux.SegA:  machine.GP8,
	mux.SegB:  machine.GP9,
	mux.SegC:  machine.GP10,
	mux.SegD:  machine.GP11,
	mux.SegE:  machine.GP12,
	mux.SegF:  machine.GP13,
	mux.SegG:  machine.GP14,
	mux.Dot:   machine.GP15,
	mux.LED:   machine.LED,
}

const statusRefresh = 250 * time.Millisecond

// MAIN THREAD DUTIES
//

func main() {
	// Render state must exist and be blank before the tick is armed.
	state := render.New(render.DefaultDim)

	var outputs mux.Pins
	for l, p := range lines {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		outputs[l] = p
	}
	engine, err := mux.New(outputs, state)
	if err != nil {
		halt()
	}

	bus := machine.I2C0
	busErr := bus.Configure(machine.I2CConfig{
		Frequency: 400 * machine.KHz,
		SDA:       machine.I2C0_SDA_PIN,
		SCL:       machine.I2C0_SCL_PIN,
	})

	var disp *display.Manager
	if busErr == nil {
		disp = display.NewManager(bus)
	}

	var src clock.Source
	if busErr == nil && timesource.ProbeRTC(bus) {
		src = timesource.NewRTC(bus)
	} else {
		// No RTC: time stays invalid until set over serial.
		src = timesource.NewManual()
	}

	var store control.Store
	mgr, err := storage.New(machine.Flash, true)
	if err != nil {
		disp.ShowError(fmt.Errorf("storage: %w", err))
	} else {
		store = mgr
	}

	defaults := config.Default()
	formatter := clock.New(state, src, defaults.Policy(), nil)
	ctl := control.New(state, formatter, src, store, defaults)
	if err := ctl.Load(); err != nil && store != nil {
		disp.ShowError(fmt.Errorf("cfg: %w", err))
	}

	ctx := context.Background()
	go formatter.Run(ctx)

	if err := tick.Start(engine.Tick); err != nil {
		disp.ShowError(fmt.Errorf("systick: %w", err))
	}

	mainSerial := serial.NewSerial(machine.Serial, protocol.NewHandler(ctl)) // USB CDC Serial
	if disp != nil {
		mainSerial.SetObserver(disp.ShowExchange)
	}
	go mainSerial.Handle()

	for {
		disp.ShowStatus(ctl.Status())
		time.Sleep(statusRefresh)
	}
}

// halt parks the core with every output low.
func halt() {
	for _, p := range lines {
		p.Configure(machine.PinConfig{Mode: machine.PinOutput})
		p.Low()
	}
	select {}
}
