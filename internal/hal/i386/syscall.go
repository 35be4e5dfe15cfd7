package i386

import (
	"encoding/binary"

	"github.com/castorworks/CastorOS-sub006/internal/hal"
)

// syscall implements hal.Syscall for the classic i686 int 0x80 ABI:
// syscall number in eax, up to 6 arguments in ebx, ecx, edx, esi, edi,
// ebp, return value written back into eax.
type syscall struct{}

// NewSyscall builds the i686 Syscall facet.
func NewSyscall() *syscall { return &syscall{} }

const (
	offEAX = 0
	offEBX = 1
	offECX = 2
	offEDX = 3
	offESI = 4
	offEDI = 5
	offEBP = 6

	syscallFrameSize = 7 * 4
)

func (syscall) ExtractArgs(trapFrame []byte) hal.SyscallArgs {
	if len(trapFrame) < syscallFrameSize {
		panic("i386: syscall trap frame too small")
	}
	word := func(off int) uint64 {
		return uint64(binary.LittleEndian.Uint32(trapFrame[off*4:]))
	}
	return hal.SyscallArgs{
		Number: word(offEAX),
		Args: [6]uint64{
			word(offEBX),
			word(offECX),
			word(offEDX),
			word(offESI),
			word(offEDI),
			word(offEBP),
		},
	}
}

func (syscall) SetReturn(trapFrame []byte, value int64) {
	if len(trapFrame) < syscallFrameSize {
		panic("i386: syscall trap frame too small")
	}
	binary.LittleEndian.PutUint32(trapFrame[offEAX*4:], uint32(value))
}
