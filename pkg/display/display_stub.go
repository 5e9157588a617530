//go:build !tinygo || nodebug

// Package display provides a no-op stub when built with the nodebug tag or
// for the host, where the HTTP API and simulator window cover diagnostics.
package display

import (
	"tinygo.org/x/drivers"

	"github.com/tuffrabit/tinygo-nixie-clock/pkg/control"
)

// Manager is a no-op stub.
type Manager struct{}

// NewManager returns nil; callers handle a nil display.
func NewManager(bus drivers.I2C) *Manager {
	return nil
}

// ShowStatus is a no-op.
func (m *Manager) ShowStatus(st control.Status) {}

// ShowExchange is a no-op.
func (m *Manager) ShowExchange(cmd, status uint8) {}

// ShowError is a no-op.
func (m *Manager) ShowError(err error) {}
