// Package stat implements the syscall and scheduler counters backing the
// D_STAT/D_PROF devices, ported from the Oichkatzelesfrettschen-biscuit
// pack's stat/stats packages: biscuit's Counter_t and Cycles_t are
// compile-time-gated atomic counters bumped from hot paths and dumped on
// demand, which is the same shape these counters follow, minus the
// Stats/Timing build flags (this kernel always collects them — the
// Non-goals only exclude a full sampling profiler, not basic accounting).
package stat

import (
	"sync"
	"sync/atomic"

	"github.com/castorworks/CastorOS-sub006/internal/syscall"
)

// Counter is a monotonically increasing event count, grounded on
// biscuit's Counter_t.
type Counter int64

// Inc adds one to the counter. Safe for concurrent use.
func (c *Counter) Inc() {
	atomic.AddInt64((*int64)(c), 1)
}

// Add adds delta to the counter. Safe for concurrent use.
func (c *Counter) Add(delta int64) {
	atomic.AddInt64((*int64)(c), delta)
}

// Get returns the current value.
func (c *Counter) Get() int64 {
	return atomic.LoadInt64((*int64)(c))
}

// Cycles accumulates a duration measured in CPU cycles, grounded on
// biscuit's Cycles_t.
type Cycles int64

// Add accumulates delta cycles. Safe for concurrent use.
func (c *Cycles) Add(delta uint64) {
	atomic.AddInt64((*int64)(c), int64(delta))
}

// Get returns the accumulated cycle count.
func (c *Cycles) Get() int64 {
	return atomic.LoadInt64((*int64)(c))
}

// Registry holds the counters the D_STAT/D_PROF devices read back. One
// Registry is shared kernel-wide; Default is created at package
// initialization.
//
// The syscall number space is sparse (seven disjoint subsystem ranges,
// see internal/syscall), so per-number counts live in a map rather than
// an array sized to the highest number.
type Registry struct {
	syscallGuard sync.Mutex
	syscallCount map[syscall.Number]*Counter

	SchedSwitches Counter
	SchedRuntime  Cycles
	IRQCount      Counter
	PageFaults    Counter
}

// NewRegistry returns an empty counter set.
func NewRegistry() *Registry {
	return &Registry{syscallCount: map[syscall.Number]*Counter{}}
}

// Default is the process-wide counter set. Production code reaches it
// through this package rather than threading a Registry through every
// call site, the same shortcut biscuit takes with its package-level
// stats struct.
var Default = NewRegistry()

// RecordSyscall bumps the per-number syscall counter, allocating it on
// first use.
func (r *Registry) RecordSyscall(n syscall.Number) {
	r.syscallGuard.Lock()
	c, ok := r.syscallCount[n]
	if !ok {
		c = &Counter{}
		r.syscallCount[n] = c
	}
	r.syscallGuard.Unlock()
	c.Inc()
}

// SyscallCount returns the count recorded for n, or 0 if it was never
// called.
func (r *Registry) SyscallCount(n syscall.Number) int64 {
	r.syscallGuard.Lock()
	c, ok := r.syscallCount[n]
	r.syscallGuard.Unlock()
	if !ok {
		return 0
	}
	return c.Get()
}

// RecordSchedSwitch counts one context switch and the cycles spent in
// the task that was switched away from.
func (r *Registry) RecordSchedSwitch(runCycles uint64) {
	r.SchedSwitches.Inc()
	r.SchedRuntime.Add(runCycles)
}

// RecordIRQ counts one interrupt dispatch.
func (r *Registry) RecordIRQ() {
	r.IRQCount.Inc()
}

// RecordPageFault counts one page fault handled by the VMM.
func (r *Registry) RecordPageFault() {
	r.PageFaults.Inc()
}
