// Package config defines the persisted clock settings.
// The struct is fixed-size for zero-allocation binary serialization.
package config

import (
	"encoding/binary"
	"errors"
	"time"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/clock"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/render"
	"github.com/tuffrabit/tinygo-nixie-clock/pkg/tz"
)

// CurrentVersion is the config format version.
// Bump this when making breaking changes to the config format.
// When firmware boots and finds a different version in flash, the config is wiped.
const CurrentVersion uint16 = 1

// Size is the encoded length of ClockConfig.
const Size = 48

// DefaultTZ is used when no zone has been configured.
const DefaultTZ = "UTC0"

// Flags
const (
	FlagBlinkInTimeMode uint32 = 1 << iota
)

// ClockConfig holds the user-adjustable clock settings.
// Total size: 48 bytes
// Layout:
//   [0-1]:   Version (uint16)
//   [2-5]:   Flags (uint32)
//   [6]:     DimLevel (uint8, 0-8)
//   [7]:     DateWindowStart (uint8, second 0-59)
//   [8]:     DateWindowLen (uint8)
//   [9]:     Reserved (uint8)
//   [10-11]: BlinkMs (uint16)
//   [12-15]: Reserved for future use
//   [16-47]: TZ ([32]byte POSIX TZ string, null-terminated if shorter)
type ClockConfig struct {
	Version         uint16   // Config format version
	Flags           uint32   // Feature flags
	DimLevel        uint8    // LED duty in eighths
	DateWindowStart uint8    // First second showing DD.MM
	DateWindowLen   uint8    // Seconds showing DD.MM
	Reserved1       uint8    // Padding
	BlinkMs         uint16   // Dot blink period
	Reserved2       uint32   // Reserved for future use
	TZ              [32]byte // e.g. "CET-1CEST,M3.5.0,M10.5.0/3"
}

// Errors
var (
	ErrInvalidSize       = errors.New("invalid config size")
	ErrInvalidDimLevel   = errors.New("dim level out of range")
	ErrInvalidDateWindow = errors.New("date window out of range")
	ErrInvalidBlink      = errors.New("blink period out of range")
	ErrInvalidTZ         = errors.New("invalid time zone")
)

// Default returns the factory settings.
func Default() ClockConfig {
	c := ClockConfig{
		Version:         CurrentVersion,
		DimLevel:        uint8(render.DefaultDim),
		DateWindowStart: 50,
		DateWindowLen:   5,
		BlinkMs:         1000,
	}
	c.SetTZ(DefaultTZ)
	return c
}

// Validate checks every field against its allowed range.
func (c *ClockConfig) Validate() error {
	if c.DimLevel > uint8(render.DimOn) {
		return ErrInvalidDimLevel
	}
	if c.DateWindowStart > 59 || int(c.DateWindowStart)+int(c.DateWindowLen) > 60 {
		return ErrInvalidDateWindow
	}
	if c.BlinkMs < 100 || c.BlinkMs > 10000 {
		return ErrInvalidBlink
	}
	if _, err := tz.Load(c.GetTZ()); err != nil {
		return ErrInvalidTZ
	}
	return nil
}

// Policy converts the settings to a formatter policy.
func (c ClockConfig) Policy() clock.Policy {
	return clock.Policy{
		DateWindowStart: int(c.DateWindowStart),
		DateWindowLen:   int(c.DateWindowLen),
		BlinkPeriod:     time.Duration(c.BlinkMs) * time.Millisecond,
		BlinkInTimeMode: c.Flags&FlagBlinkInTimeMode != 0,
	}
}

// Dim returns the LED level, clamped.
func (c ClockConfig) Dim() render.DimLevel {
	return render.DimLevel(c.DimLevel).Clamp()
}

// Zone resolves the configured TZ string.
func (c ClockConfig) Zone() (clock.Zone, error) {
	return tz.Load(c.GetTZ())
}

// MarshalBinary implements encoding.BinaryMarshaler for ClockConfig.
func (c *ClockConfig) MarshalBinary() ([]byte, error) {
	buf := make([]byte, Size)
	binary.LittleEndian.PutUint16(buf[0:], c.Version)
	binary.LittleEndian.PutUint32(buf[2:], c.Flags)
	buf[6] = c.DimLevel
	buf[7] = c.DateWindowStart
	buf[8] = c.DateWindowLen
	buf[9] = c.Reserved1
	binary.LittleEndian.PutUint16(buf[10:], c.BlinkMs)
	binary.LittleEndian.PutUint32(buf[12:], c.Reserved2)
	copy(buf[16:48], c.TZ[:])
	return buf, nil
}

// UnmarshalBinary implements encoding.BinaryUnmarshaler for ClockConfig.
func (c *ClockConfig) UnmarshalBinary(data []byte) error {
	if len(data) < Size {
		return ErrInvalidSize
	}

	c.Version = binary.LittleEndian.Uint16(data[0:])
	c.Flags = binary.LittleEndian.Uint32(data[2:])
	c.DimLevel = data[6]
	c.DateWindowStart = data[7]
	c.DateWindowLen = data[8]
	c.Reserved1 = data[9]
	c.BlinkMs = binary.LittleEndian.Uint16(data[10:])
	c.Reserved2 = binary.LittleEndian.Uint32(data[12:])
	copy(c.TZ[:], data[16:48])
	return nil
}

// GetTZ returns the zone string (up to null terminator).
func (c ClockConfig) GetTZ() string {
	for i, b := range c.TZ {
		if b == 0 {
			return string(c.TZ[:i])
		}
	}
	return string(c.TZ[:])
}

// SetTZ sets the zone string.
// If it is longer than 31 bytes, it is truncated.
// The string is always null-terminated.
func (c *ClockConfig) SetTZ(s string) {
	b := []byte(s)
	if len(b) > 31 {
		b = b[:31]
	}
	c.TZ = [32]byte{}
	copy(c.TZ[:], b)
}

// SetBlinkInTimeMode sets or clears FlagBlinkInTimeMode.
func (c *ClockConfig) SetBlinkInTimeMode(on bool) {
	if on {
		c.Flags |= FlagBlinkInTimeMode
	} else {
		c.Flags &^= FlagBlinkInTimeMode
	}
}
