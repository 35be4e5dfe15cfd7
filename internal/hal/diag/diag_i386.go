//go:build 386

package diag

import (
	"fmt"

	"golang.org/x/arch/x86/x86asm"
)

func dumpArch(pc uint64, window []byte) string {
	inst, err := x86asm.Decode(window, 32)
	if err != nil {
		return hexFallback(pc, window)
	}
	return fmt.Sprintf("%#x: %s", pc, x86asm.GNUSyntax(inst, pc, nil))
}
