package semaphore

import "errors"

// The semaphore defines no error codes beyond this taxonomy; QueueCore and
// the typed facades propagate these unchanged.
var (
	// ErrWouldBlock is returned by TryWait when the semaphore's value is
	// zero and no permit can be granted without suspending the caller.
	ErrWouldBlock = errors.New("semaphore: would block")

	// ErrTimedOut is returned by TryWaitFor/TryWaitUntil when the deadline
	// elapses before a permit becomes available.
	ErrTimedOut = errors.New("semaphore: timed out")

	// ErrInterrupted is returned by Wait when the caller's context is
	// canceled before a permit becomes available.
	ErrInterrupted = errors.New("semaphore: interrupted")

	// ErrOperationNotPermitted is returned by Wait when invoked with a
	// context marked as an interrupt context; blocking is forbidden there.
	ErrOperationNotPermitted = errors.New("semaphore: operation not permitted in interrupt context")

	// ErrOverflow is returned by Post when the value is already at max.
	// The ring/semaphore invariant guarantees this never happens in a
	// correctly driven QueueCore; seeing it means something upstream
	// violated the protocol.
	ErrOverflow = errors.New("semaphore: overflow")
)
