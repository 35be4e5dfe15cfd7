package sync

import "math"

// Semaphore is a counting semaphore with the same block/wakeup discipline
// as Mutex: the waiter is registered (and, conceptually, marked BLOCKED)
// before the guard spinlock is released, so a concurrent Signal can never
// complete between the waiter's decision to block and its registration.
type Semaphore struct {
	guard   Spinlock
	count   int32
	waiters []chan struct{}
}

// NewSemaphore returns a semaphore initialized to count.
func NewSemaphore(count int32) *Semaphore {
	return &Semaphore{count: count}
}

// Wait decrements the count if positive, otherwise blocks until a
// Signal makes it positive again.
func (s *Semaphore) Wait() {
	for {
		s.guard.Acquire()
		if s.count > 0 {
			s.count--
			s.guard.Release()
			return
		}
		ch := make(chan struct{})
		s.waiters = append(s.waiters, ch)
		s.guard.Release()
		sched.Block(ch)
	}
}

// Signal increments the count, saturating at math.MaxInt32, and wakes
// one waiter if any are queued. The count is granted before the wake,
// not instead of it: a woken waiter re-checks count at the top of Wait,
// so it must find the permit already there or it blocks forever.
func (s *Semaphore) Signal() {
	s.guard.Acquire()
	if s.count < math.MaxInt32 {
		s.count++
	}
	var wake chan struct{}
	if len(s.waiters) > 0 {
		wake = s.waiters[0]
		s.waiters = s.waiters[1:]
	}
	s.guard.Release()
	if wake != nil {
		sched.Wakeup(wake)
	}
}

// Count returns the current count, for diagnostics and tests only; it
// is stale the instant it's read on a contended semaphore.
func (s *Semaphore) Count() int32 {
	s.guard.Acquire()
	defer s.guard.Release()
	return s.count
}
