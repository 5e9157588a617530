package critical

// claimRegister is a hardware lock register. A read that returns nonzero
// has claimed the lock; any write releases it.
type claimRegister interface {
	Get() uint32
	Set(uint32)
}

// claim spins until r is acquired. The other core only holds it for a
// field copy.
func claim(r claimRegister) {
	for r.Get() == 0 {
	}
}

func release(r claimRegister) {
	r.Set(1)
}
