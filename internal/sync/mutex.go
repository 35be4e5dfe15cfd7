package sync

// TaskID identifies the currently running task for ownership and
// recursion tracking. internal/task assigns these; this package only
// compares them for equality, so it has no dependency on internal/task
// itself (internal/task imports this package for Spinlock and the
// Scheduler interface, so the reverse import would be a cycle).
type TaskID int64

// NoTask is the zero TaskID, used before a scheduler exists (e.g. during
// PMM/VMM unit tests that exercise Mutex standalone).
const NoTask TaskID = 0

// Scheduler is the seam sync uses to suspend and resume tasks, the
// generalization of gopher-os's commented-out yieldFn TODO into a real
// block/wakeup contract. internal/task's scheduler implements this and
// registers itself with SetScheduler during kernel init.
type Scheduler interface {
	Current() TaskID
	Block(chan struct{})
	Wakeup(chan struct{})
}

var sched Scheduler = soloScheduler{}

// SetScheduler installs the active task scheduler. Until called, Mutex
// and Semaphore degrade to spin-only behavior under soloScheduler, which
// is adequate for unit tests that never contend.
func SetScheduler(s Scheduler) { sched = s }

// soloScheduler is the scheduler-less default: every caller appears to
// be the same task and nothing ever really blocks, since Block is only
// reached on genuine contention and there is no scheduler yet to resume
// the caller if it did.
type soloScheduler struct{}

func (soloScheduler) Current() TaskID         { return NoTask }
func (soloScheduler) Block(ch chan struct{})  { <-ch }
func (soloScheduler) Wakeup(ch chan struct{}) { close(ch) }

// Mutex is a recursive, owner-tracked lock. Re-acquiring from the task
// that already owns it succeeds and increments the recursion count;
// releasing decrements it and only actually unlocks at count zero.
type Mutex struct {
	guard     Spinlock
	owner     TaskID
	held      bool
	recursion int
	waiters   chan struct{}
}

// Lock acquires the mutex, blocking the calling task if another task
// holds it. The state transition to BLOCKED (represented here by handing
// off to Scheduler.Block) happens while guard is held, and guard is
// released only after the task is recorded as blocked, to avoid a lost
// wakeup between the unlock and the block.
func (m *Mutex) Lock() {
	me := sched.Current()
	for {
		m.guard.Acquire()
		if !m.held {
			m.held = true
			m.owner = me
			m.recursion = 1
			m.guard.Release()
			return
		}
		if m.owner == me {
			m.recursion++
			m.guard.Release()
			return
		}
		if m.waiters == nil {
			m.waiters = make(chan struct{})
		}
		wait := m.waiters
		m.guard.Release()
		sched.Block(wait)
	}
}

// Unlock releases one level of recursion. At recursion zero it hands the
// lock to a waiting task, if any.
func (m *Mutex) Unlock() {
	m.guard.Acquire()
	m.recursion--
	if m.recursion > 0 {
		m.guard.Release()
		return
	}
	m.held = false
	m.owner = NoTask
	wake := m.waiters
	m.waiters = nil
	m.guard.Release()
	if wake != nil {
		sched.Wakeup(wake)
	}
}
