// Package diag disassembles the faulting instruction around a panic's
// program counter for inclusion in the panic banner, using
// golang.org/x/arch/x86/x86asm the way github.com/bobuhiro11/gokvm's
// machine package uses it to decode trapped guest instructions. amd64
// and i386 get a real disassembly; arm64 has no decoder wired (see
// DESIGN.md) and falls back to a raw hex dump.
package diag

import "fmt"

// Dump renders the bytes at pc as a short diagnostic string: a
// disassembled instruction on amd64/i386, or a hex dump everywhere else.
// window is read starting at pc and should be at least 16 bytes so a
// multi-byte instruction is never truncated mid-decode.
func Dump(pc uint64, window []byte) string {
	return dumpArch(pc, window)
}

func hexFallback(pc uint64, window []byte) string {
	n := len(window)
	if n > 16 {
		n = 16
	}
	return fmt.Sprintf("%#x: % x", pc, window[:n])
}
