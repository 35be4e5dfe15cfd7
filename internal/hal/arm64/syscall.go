package arm64

import (
	"encoding/binary"

	"github.com/castorworks/CastorOS-sub006/internal/hal"
)

// syscall implements hal.Syscall for the AArch64 SVC ABI: syscall number
// in x8, up to 6 arguments in x0-x5, return value written back into x0.
type syscall struct{}

// NewSyscall builds the ARM64 Syscall facet.
func NewSyscall() *syscall { return &syscall{} }

const (
	offX0 = 0
	offX1 = 1
	offX2 = 2
	offX3 = 3
	offX4 = 4
	offX5 = 5
	offX8 = 6

	syscallFrameSize = 7 * 8
)

func (syscall) ExtractArgs(trapFrame []byte) hal.SyscallArgs {
	if len(trapFrame) < syscallFrameSize {
		panic("arm64: syscall trap frame too small")
	}
	word := func(off int) uint64 {
		return binary.LittleEndian.Uint64(trapFrame[off*8:])
	}
	return hal.SyscallArgs{
		Number: word(offX8),
		Args: [6]uint64{
			word(offX0),
			word(offX1),
			word(offX2),
			word(offX3),
			word(offX4),
			word(offX5),
		},
	}
}

func (syscall) SetReturn(trapFrame []byte, value int64) {
	if len(trapFrame) < syscallFrameSize {
		panic("arm64: syscall trap frame too small")
	}
	binary.LittleEndian.PutUint64(trapFrame[offX0*8:], uint64(value))
}
