// Package spinqueue guards each side's critical section with a CAS
// spinlock instead of a schedulable mutex — the closest a userspace Go
// program can get to the spec's "briefly masking interrupts on a
// single-core system" discipline, since the critical section (one slot's
// worth of action) is short enough that spinning beats a context switch.
//
// Replaces the teacher's fastmpmc package in the benchmark matrix; keeps
// its cache-friendly intuition (short, uncontended critical sections)
// without the lock-free ring it used to get there.
package spinqueue

import "github.com/i5heu/rtqueue-bench/pkg/fifoqueue"

// New creates a FifoQueue guarded by two independent spinlocks.
func New[T any](capacity uint64) *fifoqueue.FifoQueue[T] {
	return fifoqueue.New[T](int(capacity), fifoqueue.WithSpinLocks())
}
