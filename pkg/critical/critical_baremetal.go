//go:build tinygo && baremetal && !rp2040

package critical

import "runtime/interrupt"

// Section masks interrupts while held, so it is safe to enter from both an
// interrupt handler and a goroutine on a single core.
type Section struct {
	state interrupt.State
}

// Enter disables interrupts and remembers the previous mask.
func (s *Section) Enter() {
	st := interrupt.Disable()
	s.state = st
}

// Exit restores the interrupt mask saved by Enter.
func (s *Section) Exit() {
	interrupt.Restore(s.state)
}
