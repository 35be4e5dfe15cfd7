package i386

import (
	"encoding/binary"
	"testing"

	"github.com/castorworks/CastorOS-sub006/internal/mem"
)

func TestInitContextSetsEntryAndStack(t *testing.T) {
	c := NewContext()
	buf := make([]byte, c.ContextSize())

	const entry = mem.Vaddr(0x08048000)
	const stack = mem.Vaddr(0xbffff000)

	c.InitContext(buf, entry, stack, false)

	eip := binary.LittleEndian.Uint32(buf[gprCount*4:])
	esp := binary.LittleEndian.Uint32(buf[(gprCount+3)*4:])
	cs := binary.LittleEndian.Uint32(buf[(gprCount+1)*4:])

	if mem.Vaddr(eip) != entry {
		t.Errorf("eip = %#x, want %#x", eip, entry)
	}
	if mem.Vaddr(esp) != stack {
		t.Errorf("esp = %#x, want %#x", esp, stack)
	}
	if cs != 0x1b {
		t.Errorf("cs = %#x, want user-mode selector 0x1b", cs)
	}
}

func TestInitContextKernelModeSelector(t *testing.T) {
	c := NewContext()
	buf := make([]byte, c.ContextSize())
	c.InitContext(buf, mem.Vaddr(0), mem.Vaddr(0), true)

	cs := binary.LittleEndian.Uint32(buf[(gprCount+1)*4:])
	if cs != 0x08 {
		t.Errorf("cs = %#x, want kernel selector 0x08", cs)
	}
}

func TestInitContextPanicsOnShortBuffer(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on undersized context buffer")
		}
	}()
	c := NewContext()
	c.InitContext(make([]byte, 2), mem.Vaddr(0), mem.Vaddr(0), true)
}
