//go:build arm64

package main

import (
	"encoding/binary"
	"unsafe"

	"github.com/castorworks/CastorOS-sub006/internal/hal/arm64"
	"github.com/castorworks/CastorOS-sub006/internal/hal/bootinfo"
	"github.com/castorworks/CastorOS-sub006/internal/mem"
	"github.com/castorworks/CastorOS-sub006/internal/mem/pmm"
)

func init() {
	haltFn = arm64.Halt
	rebootFn = arm64.Reset
	poweroffFn = arm64.PowerOff
}

// dtbView turns the physical address of the flattened device tree blob
// U-Boot/the firmware leaves in X0 into a byte slice sized to the blob's
// own big-endian totalsize header field.
func dtbView(ptr uintptr) []byte {
	header := unsafe.Slice((*byte)(unsafe.Pointer(ptr)), 8)
	totalSize := binary.BigEndian.Uint32(header[4:8])
	return unsafe.Slice((*byte)(unsafe.Pointer(ptr)), totalSize)
}

// Kmain is the only Go symbol the rt0 assembly stub calls. It is not
// expected to return.
//
//go:noinline
func Kmain(dtbPtr uintptr, kernelStart, kernelEnd uintptr) {
	info, err := bootinfo.ParseDTB(dtbView(dtbPtr))
	if err != nil {
		panic(err)
	}
	info.KernelStart = mem.Paddr(kernelStart)
	info.KernelEnd = mem.Paddr(kernelEnd)

	pmm.Default.Init(availableRegions(info), reservedRegions(info))
	backend := arm64.NewBackend(pmm.Default, pmm.ZoneNormal)

	kmain(info, backend)
}
