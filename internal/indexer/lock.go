package indexer

import "sync/atomic"

// indexLock provides non-blocking single-writer semantics for workspace
// index runs using atomic operations.
type indexLock struct {
	state atomic.Int32 // 0 = unlocked, 1 = locked
}

// TryAcquire attempts to acquire the lock without blocking and reports
// whether it succeeded.
func (l *indexLock) TryAcquire() bool {
	return l.state.CompareAndSwap(0, 1)
}

// Release releases the lock. Must only be called after a successful
// TryAcquire.
func (l *indexLock) Release() {
	l.state.Store(0)
}
