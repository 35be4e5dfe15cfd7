// Package syscall implements the syscall number space and dispatch
// table, grouping numbers by subsystem (process, fs, mm, time, signal,
// sys, sockets) in contiguous ranges rather than a flat Linux-compatible
// numbering.
package syscall

import "github.com/castorworks/CastorOS-sub006/internal/errno"

// Args is the uniform argument record the dispatcher passes to every
// handler, mirroring hal.SyscallArgs but decoupled from the HAL package
// so this package has no per-ISA dependency.
type Args struct {
	Number uint64
	Args   [6]uint64
	Extra  uintptr
}

// Handler is one syscall implementation. It returns a non-negative
// success value or a negative -errno.
type Handler func(Args) int64

// Number spaces, one contiguous block per subsystem.
const (
	SysExit Number = 0x0000 + iota
	SysFork
	SysExecve
	SysWaitpid
	SysGetpid
	SysGetppid
	SysSchedYield
	SysClone
)

const (
	SysOpen Number = 0x0100 + iota
	SysClose
	SysRead
	SysWrite
	SysLseek
	SysStat
	SysFstat
	SysMkdir
	SysRmdir
	SysUnlink
	SysRename
	SysGetcwd
	SysChdir
	SysGetdents
	SysFtruncate
	SysPipe
	SysDup
	SysDup2
	SysIoctl
)

const (
	SysBrk Number = 0x0200 + iota
	SysMmap
	SysMunmap
	SysMprotect
)

const (
	SysTime Number = 0x0300 + iota
	SysGettimeofday
	SysNanosleep
	SysClockGettime
)

const (
	SysKill Number = 0x0400 + iota
	SysSigaction
	SysSigprocmask
	SysSigreturn
)

const (
	SysUname Number = 0x0500 + iota
	SysGetrandom
	SysDebugPrint
	SysReboot
	SysPoweroff
)

const (
	SysSocket Number = 0x0600 + iota
	SysBind
	SysListen
	SysAccept
	SysConnect
	SysSend
	SysSendto
	SysRecv
	SysRecvfrom
	SysShutdown
	SysSetsockopt
	SysGetsockopt
	SysGetsockname
	SysGetpeername
	SysSelect
	SysFcntl
)

// Number is a syscall number, unique across every subsystem range.
type Number uint64

// Table maps syscall numbers to handlers and dispatches to -ENOSYS for
// anything unregistered.
type Table struct {
	handlers map[Number]Handler
}

// NewTable returns an empty dispatch table.
func NewTable() *Table {
	return &Table{handlers: map[Number]Handler{}}
}

// Register installs handler for number. Registering the same number
// twice replaces the previous handler, matching how a real kernel's
// syscall table is fixed at link time but is free to be rebuilt in
// tests.
func (t *Table) Register(number Number, handler Handler) {
	t.handlers[number] = handler
}

// Dispatch looks up args.Number and invokes its handler, returning
// -ENOSYS for unregistered numbers.
func (t *Table) Dispatch(args Args) int64 {
	handler, ok := t.handlers[Number(args.Number)]
	if !ok {
		return int64(errno.ENOSYS)
	}
	return handler(args)
}
