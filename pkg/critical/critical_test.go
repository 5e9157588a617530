package critical

import (
	"sync"
	"sync/atomic"
	"testing"
)

func TestSectionExcludes(t *testing.T) {
	const (
		workers = 8
		perWork = 20_000
	)

	var (
		sec     Section
		counter int
		wg      sync.WaitGroup
	)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWork; i++ {
				sec.Enter()
				counter++
				sec.Exit()
			}
		}()
	}
	wg.Wait()

	if counter != workers*perWork {
		t.Fatalf("counter = %d, want %d", counter, workers*perWork)
	}
}

func TestSectionReenterAfterExit(t *testing.T) {
	var sec Section
	sec.Enter()
	sec.Exit()
	sec.Enter()
	sec.Exit()
}

// fakeSpinlock claims on read like the SIO spinlock registers.
type fakeSpinlock struct {
	held atomic.Bool
}

func (l *fakeSpinlock) Get() uint32 {
	if l.held.CompareAndSwap(false, true) {
		return 1
	}
	return 0
}

func (l *fakeSpinlock) Set(uint32) { l.held.Store(false) }

func TestClaimExcludes(t *testing.T) {
	const (
		workers = 4
		perWork = 10_000
	)

	var (
		lock    fakeSpinlock
		counter int
		wg      sync.WaitGroup
	)
	wg.Add(workers)
	for w := 0; w < workers; w++ {
		go func() {
			defer wg.Done()
			for i := 0; i < perWork; i++ {
				claim(&lock)
				counter++
				release(&lock)
			}
		}()
	}
	wg.Wait()

	if counter != workers*perWork {
		t.Fatalf("counter = %d, want %d", counter, workers*perWork)
	}
}

func TestClaimHoldsUntilRelease(t *testing.T) {
	var lock fakeSpinlock
	claim(&lock)
	if lock.Get() != 0 {
		t.Fatal("second read claimed a held lock")
	}
	release(&lock)
	if lock.Get() == 0 {
		t.Fatal("lock still held after release")
	}
}
