package fifoqueue

import (
	"sync"

	"github.com/i5heu/rtqueue-bench/internal/queuecore"
)

// Option configures the critical-section discipline used by New. The
// portable default — a dedicated mutex per side — is applied when no
// Option is given.
type Option func(*options)

type options struct {
	readLock, writeLock queuecore.Locker
}

func defaultOptions() options {
	return options{readLock: &sync.Mutex{}, writeLock: &sync.Mutex{}}
}

// WithPerSideMutex selects independent sync.Mutex instances for the read
// and write critical sections — the spec's recommended portable default.
func WithPerSideMutex() Option {
	return func(o *options) {
		o.readLock = &sync.Mutex{}
		o.writeLock = &sync.Mutex{}
	}
}

// WithSingleLock selects one shared mutex guarding both the read and write
// critical sections, modeling a single scheduler lock taken around step 2
// of either protocol.
func WithSingleLock() Option {
	return func(o *options) {
		lock := &sync.Mutex{}
		o.readLock = lock
		o.writeLock = lock
	}
}

// WithSpinLocks selects independent CAS spinlocks for the read and write
// critical sections, modeling briefly masking interrupts on a single-core
// target instead of taking a schedulable lock.
func WithSpinLocks() Option {
	return func(o *options) {
		o.readLock = &queuecore.Spinlock{}
		o.writeLock = &queuecore.Spinlock{}
	}
}

// WithLockers installs arbitrary Lockers for the read and write critical
// sections, for callers that need a discipline not covered above.
func WithLockers(readLock, writeLock queuecore.Locker) Option {
	return func(o *options) {
		o.readLock = readLock
		o.writeLock = writeLock
	}
}
