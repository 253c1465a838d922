package queuecore

import (
	"runtime"
	"sync/atomic"
)

// Spinlock is a CAS-based mutual-exclusion lock that never parks a
// goroutine on the scheduler's wait queue — it busy-waits, yielding via
// runtime.Gosched between attempts. It is the Go analogue of briefly
// masking interrupts on a single-core target: the critical section is
// short (one slot's worth of action), so the spin window is bounded.
//
// Grounded on the CAS-retry pattern in the teacher's basicmpmc/fastmpmc
// queues, repurposed here to guard QueueCore's critical section instead of
// an entire lock-free ring.
type Spinlock struct {
	locked atomic.Bool
}

// Lock spins until the lock is acquired.
func (s *Spinlock) Lock() {
	for !s.locked.CompareAndSwap(false, true) {
		runtime.Gosched()
	}
}

// Unlock releases the lock.
func (s *Spinlock) Unlock() {
	s.locked.Store(false)
}

// TryLock attempts to acquire the lock without spinning and reports
// whether it succeeded. QueueCore's critical sections, including the ones
// behind pkg/interruptqueue's PushFromISR/PopFromISR, acquire the lock
// with Lock, which can spin for as long as the current holder takes.
func (s *Spinlock) TryLock() bool {
	return s.locked.CompareAndSwap(false, true)
}
