package bootinfo

import (
	"encoding/binary"
	"errors"

	"github.com/castorworks/CastorOS-sub006/internal/mem"
)

// Multiboot2 tag types this parser understands. Unrecognized tags are
// skipped, not rejected, matching gopher-os's hal/multiboot scanner.
type mbTagType uint32

const (
	mbTagEnd mbTagType = iota
	mbTagCmdLine
	mbTagBootLoaderName
	mbTagModule
	mbTagBasicMemInfo
	mbTagBiosBootDevice
	mbTagMemoryMap
)

const (
	mbMemAvailable = 1
	mbMemReserved  = 2
)

// ErrTruncated is returned when a multiboot2 info blob ends before a tag
// header or body it claims to have finishes.
var ErrTruncated = errors.New("bootinfo: truncated multiboot2 info")

// ParseMultiboot2 walks a multiboot2 boot information structure (as
// placed in memory by the loader per the multiboot2 spec: an 8-byte
// header followed by 8-byte-aligned tags terminated by a zero-type,
// zero-size tag) and produces a BootInfo. data must start at the info
// structure's total_size field.
//
// Unlike gopher-os's multiboot.findTagByType, which walks a live pointer
// into physical memory with unsafe.Pointer, this takes a []byte so it
// can be unit tested against synthetic blobs; the kernel entrypoint is
// responsible for turning the loader-provided physical address into a
// slice over the direct map before calling this.
func ParseMultiboot2(data []byte) (*BootInfo, error) {
	if len(data) < 8 {
		return nil, ErrTruncated
	}
	totalSize := binary.LittleEndian.Uint32(data[0:4])
	if int(totalSize) > len(data) {
		return nil, ErrTruncated
	}

	info := &BootInfo{}
	off := 8
	for off+8 <= int(totalSize) {
		tagType := mbTagType(binary.LittleEndian.Uint32(data[off:]))
		tagSize := binary.LittleEndian.Uint32(data[off+4:])
		if tagType == mbTagEnd {
			break
		}
		if off+int(tagSize) > int(totalSize) {
			return nil, ErrTruncated
		}
		body := data[off+8 : off+int(tagSize)]

		switch tagType {
		case mbTagCmdLine:
			info.Cmdline = cString(body)
		case mbTagMemoryMap:
			regions, err := parseMemoryMap(body)
			if err != nil {
				return nil, err
			}
			info.Regions = regions
		}

		// Tags are padded to an 8-byte boundary.
		off += (int(tagSize) + 7) &^ 7
	}
	return info, nil
}

func parseMemoryMap(body []byte) ([]MemoryRegion, error) {
	if len(body) < 8 {
		return nil, ErrTruncated
	}
	entrySize := binary.LittleEndian.Uint32(body[0:4])
	if entrySize < 16 {
		return nil, errors.New("bootinfo: memory map entry size too small")
	}

	var regions []MemoryRegion
	for off := 8; off+int(entrySize) <= len(body); off += int(entrySize) {
		entry := body[off : off+int(entrySize)]
		base := binary.LittleEndian.Uint64(entry[0:8])
		length := binary.LittleEndian.Uint64(entry[8:16])
		entryType := binary.LittleEndian.Uint32(entry[16:20])

		t := MemoryReserved
		if entryType == mbMemAvailable {
			t = MemoryAvailable
		}
		regions = append(regions, MemoryRegion{
			Base:   mem.Paddr(base),
			Length: mem.Size(length),
			Type:   t,
		})
	}
	return regions, nil
}

// cString returns the NUL-terminated string at the start of b.
func cString(b []byte) string {
	for i, c := range b {
		if c == 0 {
			return string(b[:i])
		}
	}
	return string(b)
}
