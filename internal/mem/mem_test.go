package mem

import "testing"

func TestPaddrPFNRoundTrip(t *testing.T) {
	tests := []Paddr{0, Paddr(PageSize), Paddr(PageSize) * 1234, PaddrInvalid.AlignDown(Paddr(PageSize))}

	for _, p := range tests {
		pfn := p.PFN()
		if got := pfn.Addr(); got != p {
			t.Errorf("Paddr(%#x).PFN().Addr() = %#x, want %#x", uint64(p), uint64(got), uint64(p))
		}
	}
}

func TestPaddrInvalid(t *testing.T) {
	if PaddrInvalid.Valid() {
		t.Errorf("PaddrInvalid.Valid() = true, want false")
	}
	if !Paddr(0).Valid() {
		t.Errorf("Paddr(0).Valid() = false, want true")
	}
}

func TestVaddrAlignment(t *testing.T) {
	base := Vaddr(PageSize) * 3
	unaligned := base + 17

	if !base.PageAligned() {
		t.Errorf("Vaddr(%#x).PageAligned() = false, want true", base)
	}
	if unaligned.PageAligned() {
		t.Errorf("Vaddr(%#x).PageAligned() = true, want false", unaligned)
	}
	if got := unaligned.AlignDown(Vaddr(PageSize)); got != base {
		t.Errorf("AlignDown() = %#x, want %#x", got, base)
	}
	if got := unaligned.AlignUp(Vaddr(PageSize)); got != base+Vaddr(PageSize) {
		t.Errorf("AlignUp() = %#x, want %#x", got, base+Vaddr(PageSize))
	}
}

func TestPFNInvalid(t *testing.T) {
	if PFNInvalid.Valid() {
		t.Errorf("PFNInvalid.Valid() = true, want false")
	}
}
