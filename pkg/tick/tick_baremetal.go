//go:build tinygo && baremetal

package tick

import (
	"device/arm"
	"machine"
)

var handler func()

//export SysTick_Handler
func sysTickHandler() {
	if handler != nil {
		handler()
	}
}

// Start installs fn as the SysTick handler and arms the timer at Rate.
// fn runs in interrupt context: it must not allocate or block.
func Start(fn func()) error {
	handler = fn
	return arm.SetupSystemTimer(machine.CPUFrequency() / Rate)
}
