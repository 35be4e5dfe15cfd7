package stat

import (
	"testing"

	"github.com/castorworks/CastorOS-sub006/internal/syscall"
)

func TestCounterIncAndAdd(t *testing.T) {
	var c Counter
	c.Inc()
	c.Add(4)
	if got := c.Get(); got != 5 {
		t.Errorf("Get() = %d, want 5", got)
	}
}

func TestCyclesAdd(t *testing.T) {
	var c Cycles
	c.Add(100)
	c.Add(50)
	if got := c.Get(); got != 150 {
		t.Errorf("Get() = %d, want 150", got)
	}
}

func TestRegistryRecordSyscallAllocatesOnFirstUse(t *testing.T) {
	r := NewRegistry()
	if got := r.SyscallCount(syscall.SysGetpid); got != 0 {
		t.Errorf("SyscallCount before any record = %d, want 0", got)
	}

	r.RecordSyscall(syscall.SysGetpid)
	r.RecordSyscall(syscall.SysGetpid)
	r.RecordSyscall(syscall.SysFork)

	if got := r.SyscallCount(syscall.SysGetpid); got != 2 {
		t.Errorf("SysGetpid count = %d, want 2", got)
	}
	if got := r.SyscallCount(syscall.SysFork); got != 1 {
		t.Errorf("SysFork count = %d, want 1", got)
	}
}

func TestRegistryRecordSchedSwitchAccumulatesRuntime(t *testing.T) {
	r := NewRegistry()
	r.RecordSchedSwitch(1000)
	r.RecordSchedSwitch(2000)

	if got := r.SchedSwitches.Get(); got != 2 {
		t.Errorf("SchedSwitches = %d, want 2", got)
	}
	if got := r.SchedRuntime.Get(); got != 3000 {
		t.Errorf("SchedRuntime = %d, want 3000", got)
	}
}

func TestRegistryRecordIRQAndPageFault(t *testing.T) {
	r := NewRegistry()
	r.RecordIRQ()
	r.RecordIRQ()
	r.RecordPageFault()

	if got := r.IRQCount.Get(); got != 2 {
		t.Errorf("IRQCount = %d, want 2", got)
	}
	if got := r.PageFaults.Get(); got != 1 {
		t.Errorf("PageFaults = %d, want 1", got)
	}
}
