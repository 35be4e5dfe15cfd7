//go:build 386

package main

import (
	"encoding/binary"
	"unsafe"

	"github.com/castorworks/CastorOS-sub006/internal/hal/bootinfo"
	"github.com/castorworks/CastorOS-sub006/internal/hal/i386"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pmm"
)

func init() {
	haltFn = i386.Halt
}

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
	backend := i386.NewBackend(pmm.Default, pmm.ZoneNormal)

	kmain(info, backend)
}
