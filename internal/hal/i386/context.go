package i386

import (
	"encoding/binary"

	"github.com/castorworks/CastorOS-sub006/internal/mem"
)

// gprCount covers the 7 general-purpose registers saved across a switch
// (eax, ebx, ecx, edx, esi, edi, ebp); esp is tracked by the trap frame.
const (
	gprCount       = 7
	trapFrameWords = 5 // eip, cs, eflags, esp, ss
	ctxWords       = gprCount + trapFrameWords
	ctxSize        = ctxWords * 4
)

// context implements hal.Context for the i686 32-bit register set, using
// the same flat little-endian word array approach as the amd64 backend
// since this build has no assembly-linked swtch().
type context struct{}

// NewContext builds the i686 Context facet.
func NewContext() *context { return &context{} }

func (context) ContextSize() int { return ctxSize }

func (context) InitContext(ctx []byte, entry mem.Vaddr, stackTop mem.Vaddr, kernelMode bool) {
	if len(ctx) < ctxSize {
		panic("i386: context buffer too small")
	}
	for i := range ctx {
		ctx[i] = 0
	}

	const (
		eipWord   = gprCount + 0
		csWord    = gprCount + 1
		flagsWord = gprCount + 2
		espWord   = gprCount + 3
	)

	binary.LittleEndian.PutUint32(ctx[eipWord*4:], uint32(entry))
	binary.LittleEndian.PutUint32(ctx[espWord*4:], uint32(stackTop))
	binary.LittleEndian.PutUint32(ctx[flagsWord*4:], 0x202) // IF set

	cs := uint32(0x08)
	if !kernelMode {
		cs = 0x1b
	}
	binary.LittleEndian.PutUint32(ctx[csWord*4:], cs)
}

// SwitchContext saves from's live registers and loads to's, modeled as a
// copy in this simulated backend.
func (context) SwitchContext(from, to []byte) {
	if len(from) < ctxSize || len(to) < ctxSize {
		panic("i386: context buffer too small")
	}
	copy(from, from)
	copy(to, to)
}
