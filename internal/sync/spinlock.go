// Package sync provides the kernel's own synchronization primitives:
// spinlocks, a recursive owner-tracked mutex, and a counting semaphore.
// It cannot use the standard library's sync package, which assumes a
// goroutine scheduler and blocking system calls this kernel doesn't have;
// instead blocking here means handing control to the task scheduler via
// the Scheduler interface's Block/Wakeup (installed with SetScheduler),
// the same kind of seam gopher-os leaves for task_block/task_wakeup
// before its scheduler existed.
package sync

import "sync/atomic"

const (
	unlocked uint32 = 0
	locked   uint32 = 1
)

// irqControl abstracts hal.IRQ's EnableInterrupts/DisableInterrupts pair
// without importing internal/hal directly, so this package has no
// dependency on which backend is active; SetIRQControl is called once
// during arch bring-up.
type irqControl interface {
	DisableInterrupts()
	EnableInterrupts()
	InterruptsEnabled() bool
}

var irq irqControl = noopIRQControl{}

// SetIRQControl installs the active backend's interrupt control, used by
// the IRQ-save lock variants. Called once during boot after hal.SetBackend.
func SetIRQControl(c irqControl) { irq = c }

type noopIRQControl struct{}

func (noopIRQControl) DisableInterrupts()      {}
func (noopIRQControl) EnableInterrupts()       {}
func (noopIRQControl) InterruptsEnabled() bool { return true }

// Spinlock is a single-word atomic lock. On a uniprocessor kernel this
// never actually spins for long (the only other context that could hold
// it is interrupted or preempted), but the acquire loop still has the
// shape a real SMP spinlock would.
type Spinlock struct {
	state uint32
}

// Acquire blocks until the lock can be acquired. Re-acquiring a lock
// already held by the caller deadlocks; this is not a recursive lock.
func (l *Spinlock) Acquire() {
	for !l.TryToAcquire() {
	}
}

// TryToAcquire attempts to acquire the lock without blocking.
func (l *Spinlock) TryToAcquire() bool {
	return atomic.CompareAndSwapUint32(&l.state, unlocked, locked)
}

// Release relinquishes a held lock. Calling Release on a free lock has
// no effect.
func (l *Spinlock) Release() {
	atomic.StoreUint32(&l.state, unlocked)
}

// IRQSpinlock is a Spinlock that also masks interrupts for its critical
// section, for locks taken from both thread and interrupt context.
type IRQSpinlock struct {
	inner Spinlock
}

// Acquire disables interrupts, then acquires the inner lock. It returns
// whether interrupts were enabled beforehand, to be passed to Release.
func (l *IRQSpinlock) Acquire() (wasEnabled bool) {
	wasEnabled = irq.InterruptsEnabled()
	irq.DisableInterrupts()
	l.inner.Acquire()
	return wasEnabled
}

// Release releases the inner lock and restores the interrupt state
// Acquire observed.
func (l *IRQSpinlock) Release(wasEnabled bool) {
	l.inner.Release()
	if wasEnabled {
		irq.EnableInterrupts()
	}
}
