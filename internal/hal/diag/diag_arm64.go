//go:build arm64

package diag

// ARM64 has no disassembler wired (golang.org/x/arch has no arm64
// decoder in this pack), so the panic banner gets a hex dump instead of
// a disassembled instruction on this architecture.
func dumpArch(pc uint64, window []byte) string {
	return hexFallback(pc, window)
}
