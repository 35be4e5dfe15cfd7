package arm64

import (
	"encoding/binary"
	"testing"

	"github.com/castorworks/CastorOS-sub006/internal/mem"
)

func TestInitContextSetsEntryAndStack(t *testing.T) {
	c := NewContext()
	buf := make([]byte, c.ContextSize())

	const entry = mem.Vaddr(0x40080000)
	const stack = mem.Vaddr(0xffff800000010000)

	c.InitContext(buf, entry, stack, false)

	pc := binary.LittleEndian.Uint64(buf[gprCount*8:])
	sp := binary.LittleEndian.Uint64(buf[(gprCount+1)*8:])
	pstate := binary.LittleEndian.Uint64(buf[(gprCount+2)*8:])

	if mem.Vaddr(pc) != entry {
		t.Errorf("pc = %#x, want %#x", pc, entry)
	}
	if mem.Vaddr(sp) != stack {
		t.Errorf("sp = %#x, want %#x", sp, stack)
	}
	if pstate != 0x0 {
		t.Errorf("pstate = %#x, want EL0t (0x0)", pstate)
	}
}

func TestInitContextKernelModeSelectsEL1h(t *testing.T) {
	c := NewContext()
	buf := make([]byte, c.ContextSize())
	c.InitContext(buf, mem.Vaddr(0), mem.Vaddr(0), true)

	pstate := binary.LittleEndian.Uint64(buf[(gprCount+2)*8:])
	if pstate != 0x5 {
		t.Errorf("pstate = %#x, want EL1h (0x5)", pstate)
	}
}

func TestInitContextPanicsOnShortBuffer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on undersized context buffer")
		}
	}()
	c := NewContext()
	c.InitContext(make([]byte, 4), mem.Vaddr(0), mem.Vaddr(0), true)
}
