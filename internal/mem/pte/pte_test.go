package pte

import (
	"testing"

	"github.com/castorworks/CastorOS-sub006/internal/mem"
)

var encoders = map[string]Encoder{
	"amd64": AMD64,
	"i686":  I686,
	"arm64": ARM64,
}

func TestMakeRoundTrip(t *testing.T) {
	addr := mem.Paddr(0x1234_5000)

	flagSets := []Flag{
		PRESENT,
		PRESENT | WRITE,
		PRESENT | WRITE | USER,
		PRESENT | USER | COW,
		PRESENT | ACCESSED | DIRTY,
		PRESENT | GLOBAL,
		PRESENT | NOCACHE,
	}

	for name, enc := range encoders {
		for _, flags := range flagSets {
			p := enc.Make(addr, flags)
			if got := enc.Addr(p); got != addr {
				t.Errorf("%s: Addr() = %#x, want %#x (flags=%v)", name, got, addr, flags)
			}
			if got := enc.Flags(p); got != flags {
				t.Errorf("%s: Flags() = %v, want %v", name, got, flags)
			}
		}
	}
}

func TestModifyPreservesAddr(t *testing.T) {
	addr := mem.Paddr(0x8000)

	for name, enc := range encoders {
		p := enc.Make(addr, PRESENT|WRITE)
		p = enc.Modify(p, COW, WRITE)

		if got := enc.Addr(p); got != addr {
			t.Errorf("%s: Modify() changed address: got %#x, want %#x", name, got, addr)
		}
		if !Has(enc, p, COW) {
			t.Errorf("%s: Modify() did not set COW", name)
		}
		if HasAny(enc, p, WRITE) {
			t.Errorf("%s: Modify() did not clear WRITE", name)
		}
	}
}

func TestExecDefaultsAndOverrides(t *testing.T) {
	// amd64 and arm64 have a real execute-never bit: EXEC absent by
	// default unless explicitly requested.
	for _, name := range []string{"amd64", "arm64"} {
		enc := encoders[name]
		p := enc.Make(0, PRESENT)
		if HasAny(enc, p, EXEC) {
			t.Errorf("%s: EXEC set without requesting it", name)
		}

		p = enc.Make(0, PRESENT|EXEC)
		if !Has(enc, p, EXEC) {
			t.Errorf("%s: EXEC not set when requested", name)
		}
	}

	// i686 has no hardware NX bit: every page is always executable.
	p := I686.Make(0, PRESENT)
	if !Has(I686, p, EXEC) {
		t.Errorf("i686: EXEC should always report true")
	}
}

func TestVaIndexLevels(t *testing.T) {
	v := mem.Vaddr(0x7fff_f7a0_0000)

	for name, enc := range encoders {
		levels := 4
		if name == "i686" {
			levels = 2
		}
		for level := 0; level < levels; level++ {
			idx := enc.VaIndex(v, level)
			maxIdx := uintptr(0x1ff)
			if name == "i686" {
				maxIdx = 0x3ff
			}
			if idx > maxIdx {
				t.Errorf("%s: VaIndex(level=%d) = %d, exceeds max %d", name, level, idx, maxIdx)
			}
		}
	}
}

func TestCowImpliesReadOnly(t *testing.T) {
	// Property: a COW entry should be installed with WRITE cleared by
	// whoever calls Modify; the encoder itself does not enforce this
	// invariant, it just stores whatever flags it is given.
	for name, enc := range encoders {
		p := enc.Make(0x1000, PRESENT|COW)
		if HasAny(enc, p, WRITE) {
			t.Errorf("%s: constructing with COW alone unexpectedly set WRITE", name)
		}
	}
}
