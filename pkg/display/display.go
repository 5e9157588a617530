//go:build tinygo && !nodebug

// Package display provides SSD1306 OLED support for debug output. The top
// rows mirror the tubes and the wall clock; the bottom rows show the last
// serial exchange and the last error.
//
// To build without display support, use:
//
//	tinygo build -tags=nodebug -target=pico -o firmware.uf2 .
package display

import (
	"image/color"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ssd1306"
	"tinygo.org/x/tinyfont"
	"tinygo.org/x/tinyfont/proggy"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/control"
)

const (
	i2cAddress = 0x3C

	screenWidth  = 128
	screenHeight = 64
	rowHeight    = 16
	baseline     = 11

	rowTubes = 0
	rowClock = 1
	rowIn    = 2
	rowErr   = 3
	rows     = 4
)

var white = color.RGBA{255, 255, 255, 255}

// Manager handles the SSD1306 display for debug output.
type Manager struct {
	device *ssd1306.Device
	font   *tinyfont.Font
	fmt    *FrameFormatter
	lines  [rows]string
}

// NewManager initializes the display on an already configured bus.
// Returns nil if the display cannot be set up (non-fatal for debug).
func NewManager(bus drivers.I2C) *Manager {
	if bus == nil {
		return nil
	}
	dev := ssd1306.NewI2C(bus)
	dev.Configure(ssd1306.Config{
		Address: i2cAddress,
		Width:   screenWidth,
		Height:  screenHeight,
	})
	dev.ClearDisplay()

	m := &Manager{
		device: dev,
		font:   &proggy.TinySZ8pt7b,
		fmt:    NewFrameFormatter(),
	}
	m.setLine(rowTubes, "Nixie Debug")
	m.setLine(rowClock, "Waiting for time...")
	m.refresh()
	return m
}

// ShowStatus redraws the tube and clock rows.
func (m *Manager) ShowStatus(st control.Status) {
	if m == nil {
		return
	}
	tubes, clock := m.fmt.FormatStatus(st)
	changed := m.setLine(rowTubes, tubes)
	changed = m.setLine(rowClock, clock) || changed
	if changed {
		m.refresh()
	}
}

// ShowExchange shows the last serial command and its status.
func (m *Manager) ShowExchange(cmd, status uint8) {
	if m == nil {
		return
	}
	if m.setLine(rowIn, m.fmt.FormatExchange(cmd, status)) {
		m.refresh()
	}
}

// ShowError displays an error on the bottom row.
func (m *Manager) ShowError(err error) {
	if m == nil || err == nil {
		return
	}
	if m.setLine(rowErr, m.fmt.FormatError(err)) {
		m.refresh()
	}
}

// setLine stores s for row and reports whether it changed.
func (m *Manager) setLine(row int, s string) bool {
	if m.lines[row] == s {
		return false
	}
	m.lines[row] = s
	return true
}

// refresh redraws every row and pushes the buffer to the panel.
func (m *Manager) refresh() {
	m.device.ClearBuffer()
	for row, s := range m.lines {
		tinyfont.WriteLine(m.device, m.font, 0, int16(row*rowHeight+baseline), s, white)
	}
	m.device.Display()
}
