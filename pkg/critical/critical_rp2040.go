//go:build tinygo && rp2040

package critical

import (
	"runtime/interrupt"
	"runtime/volatile"
	"unsafe"
)

// spinlockID picks an SIO spinlock clear of the ones the TinyGo runtime
// reserves for its own scheduler and allocator.
const spinlockID = 9

const sioSpinlockBase = 0xd0000100

var spinlock = (*volatile.Register32)(unsafe.Pointer(uintptr(sioSpinlockBase + 4*spinlockID)))

// Section masks interrupts on the local core and holds an SIO hardware
// spinlock against the other one, so the tick handler and goroutines on
// either core exclude each other.
type Section struct {
	state interrupt.State
}

// Enter disables local interrupts, then claims the spinlock.
func (s *Section) Enter() {
	st := interrupt.Disable()
	claim(spinlock)
	s.state = st
}

// Exit releases the spinlock and restores the interrupt mask.
func (s *Section) Exit() {
	release(spinlock)
	interrupt.Restore(s.state)
}
