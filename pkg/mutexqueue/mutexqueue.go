// Package mutexqueue is the spec's portable-default discipline: a
// dedicated sync.Mutex guards each side's critical section independently,
// so a producer in step 2 never contends with a consumer in step 2.
//
// Replaces the teacher's basicmpmc package in the benchmark matrix — same
// role (the baseline, no-frills entry), different synchronization model
// (blocking and semaphore-backed instead of lock-free and spinning).
package mutexqueue

import "github.com/i5heu/rtqueue-bench/pkg/fifoqueue"

// New creates a FifoQueue guarded by two independent mutexes.
func New[T any](capacity uint64) *fifoqueue.FifoQueue[T] {
	return fifoqueue.New[T](int(capacity), fifoqueue.WithPerSideMutex())
}
