//go:build !(tinygo && baremetal)

package critical

import (
	"runtime"
	"sync/atomic"
)

// spinsBeforeYield bounds busy spinning before the waiter yields its P, so a
// holder that was preempted mid-copy can finish even with GOMAXPROCS=1.
const spinsBeforeYield = 64

// Section is a CAS spinlock. The tick goroutine never parks on it.
type Section struct {
	held atomic.Bool
}

// Enter acquires the section.
func (s *Section) Enter() {
	for spins := 0; !s.held.CompareAndSwap(false, true); spins++ {
		if spins >= spinsBeforeYield {
			runtime.Gosched()
			spins = 0
		}
	}
}

// Exit releases the section.
func (s *Section) Exit() {
	s.held.Store(false)
}
