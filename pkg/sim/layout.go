// Package sim shows a simulated display board in a desktop window.
package sim

import (
	"image/color"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/segment"
)

const (
	tubeW   = 80
	tubeH   = 140
	stroke  = 10
	tubeGap = 36
	margin  = 30
	ledR    = 12

	// Width and Height are the logical window size.
	Width  = 2*margin + 4*tubeW + 3*tubeGap
	Height = 2*margin + tubeH + 3*ledR
)

var (
	colorBG   = color.RGBA{0x10, 0x0c, 0x0a, 0xff}
	colorOff  = color.RGBA{0x2a, 0x20, 0x1a, 0xff}
	colorGlow = color.RGBA{0xff, 0x8a, 0x20, 0xff}
	colorLED  = color.RGBA{0x40, 0xa0, 0xff, 0xff}
)

// Rect is a filled rectangle in window coordinates.
type Rect struct {
	X, Y, W, H float32
}

// tubeOrigin is the top-left corner of tube pos.
func tubeOrigin(pos int) (float32, float32) {
	return float32(margin + pos*(tubeW+tubeGap)), margin
}

// segmentRects places segments A..G for the tube at pos.
func segmentRects(pos int) [segment.Count]Rect {
	x, y := tubeOrigin(pos)
	const w, h, t = tubeW, tubeH, stroke
	return [segment.Count]Rect{
		{x + t, y, w - 2*t, t},             // A
		{x + w - t, y + t, t, h/2 - t},     // B
		{x + w - t, y + h/2, t, h/2 - t},   // C
		{x + t, y + h - t, w - 2*t, t},     // D
		{x, y + h/2, t, h/2 - t},           // E
		{x, y + t, t, h/2 - t},             // F
		{x + t, y + h/2 - t/2, w - 2*t, t}, // G
	}
}

// dotRect is the decimal point right of tube pos.
func dotRect(pos int) Rect {
	x, y := tubeOrigin(pos)
	return Rect{x + tubeW + 6, y + tubeH - stroke, stroke, stroke}
}

// ledCenter is the indicator LED position.
func ledCenter() (float32, float32) {
	return Width / 2, margin + tubeH + 2*ledR
}

// scale dims c to duty of its brightness, over the off color.
func scale(c color.RGBA, duty float64) color.RGBA {
	if duty <= 0 {
		return colorOff
	}
	if duty > 1 {
		duty = 1
	}
	mix := func(a, b uint8) uint8 {
		return uint8(float64(a) + (float64(b)-float64(a))*duty)
	}
	return color.RGBA{mix(colorOff.R, c.R), mix(colorOff.G, c.G), mix(colorOff.B, c.B), 0xff}
}
