package timesource

import (
	"fmt"
	"sync"
	"time"

	"tinygo.org/x/drivers"
	"tinygo.org/x/drivers/ds3231"
)

// RTCPollInterval bounds how often the RTC is read over I2C.
const RTCPollInterval = time.Second

// RTC reads a DS3231 battery-backed clock. Reads are cached and
// extrapolated for RTCPollInterval so the 50 Hz formatter does not hit the
// bus on every frame.
type RTC struct {
	mu  sync.Mutex
	dev ds3231.Device

	last    time.Time
	lastAt  time.Time
	valid   bool
	polled  bool
	lastErr error

	now func() time.Time
}

// ProbeRTC reports whether a DS3231 answers on bus.
func ProbeRTC(bus drivers.I2C) bool {
	var b [1]byte
	return bus.Tx(ds3231.Address, []byte{0x00}, b[:]) == nil
}

// NewRTC wraps a DS3231 on bus.
func NewRTC(bus drivers.I2C) *RTC {
	return &RTC{
		dev: ds3231.New(bus),
		now: time.Now,
	}
}

// Now reports invalid when the oscillator-stop flag is set, which is the
// case after first power-up or a flat backup battery.
func (r *RTC) Now() (time.Time, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	mono := r.now()
	if !r.polled || mono.Sub(r.lastAt) >= RTCPollInterval {
		r.poll(mono)
	}
	if !r.valid {
		return time.Time{}, false
	}
	return r.last.Add(mono.Sub(r.lastAt)), true
}

func (r *RTC) poll(mono time.Time) {
	r.polled = true
	r.lastAt = mono
	if !r.dev.IsTimeValid() {
		r.valid = false
		r.lastErr = ErrRTCStopped
		return
	}
	t, err := r.dev.ReadTime()
	if err != nil {
		r.valid = false
		r.lastErr = fmt.Errorf("read rtc: %w", err)
		return
	}
	r.last = t
	r.valid = true
	r.lastErr = nil
}

// SetTime writes t (as UTC) to the chip and clears the oscillator-stop flag.
func (r *RTC) SetTime(t time.Time) error {
	if t.IsZero() {
		return ErrZeroTime
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	if err := r.dev.SetTime(t.UTC()); err != nil {
		return fmt.Errorf("write rtc: %w", err)
	}
	if !r.dev.IsRunning() {
		if err := r.dev.SetRunning(true); err != nil {
			return fmt.Errorf("start rtc: %w", err)
		}
	}
	r.polled = false
	return nil
}

// Err returns the error from the most recent poll, if any.
func (r *RTC) Err() error {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.lastErr
}
