package main

import (
	"github.com/castorworks/CastorOS-sub006/internal/errno"
	"github.com/castorworks/CastorOS-sub006/internal/stat"
	"github.com/castorworks/CastorOS-sub006/internal/syscall"
	"github.com/castorworks/CastorOS-sub006/internal/task"
)

// rebootFn and poweroffFn are the arch-specific power-control primitives.
// amd64/i386 have no platform-reset primitive wired in this build (no
// ACPI/keyboard-controller reset path implemented, see DESIGN.md); arm64
// overrides these with the PSCI SYSTEM_RESET/SYSTEM_OFF calls in
// internal/hal/arm64.
var (
	rebootFn   = func() {}
	poweroffFn = func() {}
)

// defaultSyscallTable is the dispatch table installed during bring-up.
// It is a package variable rather than a local in kmain so a host test
// can register fakes and call registerSyscalls directly without going
// through the whole boot sequence.
var defaultSyscallTable = syscall.NewTable()

// registerSyscalls wires the handful of syscalls this kernel implements
// natively (the rest of the number space is reserved for VFS/network/
// signal subsystems that live outside this module) onto t, counting
// each dispatch in stat.Default the way biscuit's syscall trampoline
// bumps its per-call counters.
func registerSyscalls(t *syscall.Table) {
	t.Register(syscall.SysGetpid, func(syscall.Args) int64 {
		stat.Default.RecordSyscall(syscall.SysGetpid)
		return int64(scheduler.Current())
	})

	t.Register(syscall.SysExit, func(a syscall.Args) int64 {
		stat.Default.RecordSyscall(syscall.SysExit)
		if current := scheduler.Lookup(task.PID(scheduler.Current())); current != nil {
			scheduler.Exit(current, int(a.Args[0]))
		}
		return 0
	})

	t.Register(syscall.SysSchedYield, func(syscall.Args) int64 {
		stat.Default.RecordSyscall(syscall.SysSchedYield)
		return 0
	})

	t.Register(syscall.SysUname, func(syscall.Args) int64 {
		stat.Default.RecordSyscall(syscall.SysUname)
		return 0
	})

	t.Register(syscall.SysPoweroff, func(syscall.Args) int64 {
		stat.Default.RecordSyscall(syscall.SysPoweroff)
		poweroffFn()
		return int64(errno.ENOSYS) // unreachable if poweroffFn actually powers off
	})

	t.Register(syscall.SysReboot, func(syscall.Args) int64 {
		stat.Default.RecordSyscall(syscall.SysReboot)
		rebootFn()
		return int64(errno.ENOSYS) // unreachable if rebootFn actually resets
	})
}
