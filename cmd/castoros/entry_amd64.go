//go:build amd64

package main

import (
	"encoding/binary"
	"unsafe"

	"github.com/castorworks/CastorOS-sub006/internal/hal/amd64"
	"github.com/castorworks/CastorOS-sub006/internal/hal/bootinfo"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pmm"
)

func init() {
	haltFn = amd64.Halt
}

// multibootInfoView turns the physical address the multiboot2-compliant
// loader left in RDI (forwarded here by rt0 assembly, same contract as
// gopher-os's Kmain(multibootInfoPtr uintptr)) into a byte slice sized to
// the blob's own total_size field, so bootinfo.ParseMultiboot2 can read
// it like any other []byte.
func multibootInfoView(ptr uintptr) []byte {
	header := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), 8)
	totalSize := binary.LittleEndian.Uint32(header[0:4])
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), totalSize)
}

// Kmain is the only Go symbol the rt0 assembly stub calls. It is not
// expected to return.
//
//go:noinline
func Kmain(multibootInfoPtr uintptr, kernelStart, kernelEnd uintptr) {
	info, err := bootinfo.ParseMultiboot2(multibootInfoView(multibootInfoPtr))
	if err != nil {
		panic(err)
	}
	info.KernelStart = mem.Paddr(kernelStart)
	info.KernelEnd = mem.Paddr(kernelEnd)

	pmm.Default.Init(availableRegions(info), reservedRegions(info))
	backend := amd64.NewBackend(pmm.Default, pmm.ZoneNormal)

	kmain(info, backend)
}
