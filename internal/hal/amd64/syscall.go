package amd64

import (
	"encoding/binary"

	"github.com/castorworks/CastorOS-sub006/internal/hal"
)

// syscall implements hal.Syscall for the amd64 SysV trap frame: argument
// registers in order are RDI, RSI, RDX, R10, R8, R9 (R10 replacing RCX,
// which the SYSCALL instruction clobbers with the return RIP), syscall
// number in RAX, return value written back into RAX.
type syscall struct{}

// NewSyscall builds the amd64 Syscall facet.
func NewSyscall() *syscall { return &syscall{} }

// Trap frame word offsets, matching the register save order a real
// syscall entry stub would push: rax, rdi, rsi, rdx, r10, r8, r9.
const (
	offRAX = 0
	offRDI = 1
	offRSI = 2
	offRDX = 3
	offR10 = 4
	offR8  = 5
	offR9  = 6

	syscallFrameSize = 7 * 8
)

func (syscall) ExtractArgs(trapFrame []byte) hal.SyscallArgs {
	if len(trapFrame) < syscallFrameSize {
		panic("amd64: syscall trap frame too small")
	}
	word := func(off int) uint64 {
		return binary.LittleEndian.Uint64(trapFrame[off*8:])
	}
	return hal.SyscallArgs{
		Number: word(offRAX),
		Args: [6]uint64{
			word(offRDI),
			word(offRSI),
			word(offRDX),
			word(offR10),
			word(offR8),
			word(offR9),
		},
	}
}

func (syscall) SetReturn(trapFrame []byte, value int64) {
	if len(trapFrame) < syscallFrameSize {
		panic("amd64: syscall trap frame too small")
	}
	binary.LittleEndian.PutUint64(trapFrame[offRAX*8:], uint64(value))
}
