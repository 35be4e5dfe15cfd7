package task

import "github.com/castorworks/CastorOS-sub006/internal/sync"

// Scheduler is a uniprocessor, priority-ordered, round-robin-within-
// priority run queue. It implements sync.Scheduler so internal/sync.Mutex
// and internal/sync.Semaphore can suspend and resume tasks through it
// once installed with sync.SetScheduler.
type Scheduler struct {
	guard   sync.Spinlock
	ready   []*Task
	current *Task
	nextPID PID
	byPID   map[PID]*Task
}

// NewScheduler returns an empty scheduler. The kernel entrypoint installs
// it as the active scheduler via sync.SetScheduler and creates the first
// (idle or init) task with Spawn.
func NewScheduler() *Scheduler {
	return &Scheduler{byPID: map[PID]*Task{}}
}

// Spawn registers the caller-built task t as a new task in the READY
// state, assigns it the next PID and name, and enqueues it.
func (s *Scheduler) Spawn(name string, ctxSize int, parent *Task, t *Task) *Task {
	s.guard.Acquire()
	defer s.guard.Release()

	s.nextPID++
	t.PID = s.nextPID
	t.Name = name
	t.State = Ready
	if parent != nil {
		parent.AddChild(t)
	}
	s.byPID[t.PID] = t
	s.ready = append(s.ready, t)
	return t
}

// Pick selects the next task to run: highest Priority among READY tasks,
// ties broken round-robin (oldest-enqueued first, since Spawn/Wake always
// append).
func (s *Scheduler) Pick() *Task {
	s.guard.Acquire()
	defer s.guard.Release()

	best := -1
	for i, t := range s.ready {
		if t.State != Ready {
			continue
		}
		if best == -1 || t.Priority > s.ready[best].Priority {
			best = i
		}
	}
	if best == -1 {
		return nil
	}
	next := s.ready[best]
	s.ready = append(s.ready[:best], s.ready[best+1:]...)
	next.State = Running
	s.current = next
	return next
}

// Current returns the task selected by the most recent Pick. Implements
// sync.Scheduler.
func (s *Scheduler) Current() sync.TaskID {
	s.guard.Acquire()
	defer s.guard.Release()
	if s.current == nil {
		return sync.NoTask
	}
	return sync.TaskID(s.current.PID)
}

// Requeue returns a task that yielded or was preempted to the back of
// the ready queue.
func (s *Scheduler) Requeue(t *Task) {
	s.guard.Acquire()
	defer s.guard.Release()
	t.State = Ready
	s.ready = append(s.ready, t)
}

// Block implements sync.Scheduler: it suspends the calling goroutine on
// ch until Wakeup closes it. It does not mark the current task BLOCKED
// or switch context; this module has no hardware context-switch path,
// and nothing replaces this behavior at runtime.
func (s *Scheduler) Block(ch chan struct{}) { <-ch }

// Wakeup implements sync.Scheduler by closing the channel, releasing
// every blocked waiter.
func (s *Scheduler) Wakeup(ch chan struct{}) { close(ch) }

// Exit marks the current task TERMINATED with the given exit code and
// removes it from the ready queue if present.
func (s *Scheduler) Exit(t *Task, code int) {
	s.guard.Acquire()
	defer s.guard.Release()
	t.Exit(code)
	for i, candidate := range s.ready {
		if candidate == t {
			s.ready = append(s.ready[:i], s.ready[i+1:]...)
			break
		}
	}
}

// Lookup returns the task with the given PID, or nil.
func (s *Scheduler) Lookup(pid PID) *Task {
	s.guard.Acquire()
	defer s.guard.Release()
	return s.byPID[pid]
}

// Reap removes a TERMINATED child from its parent's child list and the
// scheduler's PID table, drops its kernel stack and AddrSpace references,
// and returns its exit code. Reports ok=false if
// the child is not yet TERMINATED.
func (s *Scheduler) Reap(parent, child *Task) (exitCode int, ok bool) {
	s.guard.Acquire()
	defer s.guard.Release()
	if child.State != Terminated {
		return 0, false
	}
	for i, c := range parent.Children {
		if c == child {
			parent.Children = append(parent.Children[:i], parent.Children[i+1:]...)
			break
		}
	}
	delete(s.byPID, child.PID)
	child.KernelStack = nil
	child.AddrSpace = nil
	child.State = Unused
	return child.ExitCode, true
}
