package syscall

import (
	"encoding/binary"
	"testing"

	"github.com/castorworks/CastorOS-sub006/internal/hal"
)

type fakeSyscallFacet struct {
	frame []byte
}

func (f *fakeSyscallFacet) ExtractArgs(trapFrame []byte) hal.SyscallArgs {
	return hal.SyscallArgs{Number: binary.LittleEndian.Uint64(trapFrame[0:8])}
}

func (f *fakeSyscallFacet) SetReturn(trapFrame []byte, value int64) {
	binary.LittleEndian.PutUint64(trapFrame[8:16], uint64(value))
}

func TestHandleRoundTripsThroughFacetAndTable(t *testing.T) {
	table := NewTable()
	table.Register(SysGetpid, func(Args) int64 { return 99 })

	frame := make([]byte, 16)
	binary.LittleEndian.PutUint64(frame[0:8], uint64(SysGetpid))

	Handle(&fakeSyscallFacet{}, table, frame)

	got := int64(binary.LittleEndian.Uint64(frame[8:16]))
	if got != 99 {
		t.Errorf("return value = %d, want 99", got)
	}
}
