package bootinfo

import (
	"encoding/binary"
	"errors"

	"github.com/castorworks/CastorOS-sub006/internal/mem"
)

// Flattened device tree structure tokens, big-endian per the devicetree
// spec. Mirrors the fdtBeginNode/fdtEndNode/fdtProp/fdtNop/fdtEnd
// constants mazarin's dtb_qemu.go walks via raw pointer arithmetic;
// this parser walks a []byte instead so it has no platform dependency
// and can be driven from a table-driven test.
const (
	fdtMagic = 0xd00dfeed

	fdtBeginNode = 1
	fdtEndNode   = 2
	fdtProp      = 3
	fdtNop       = 4
	fdtEnd       = 9
)

// ErrNotFDT is returned when the blob's magic number does not match the
// flattened device tree header.
var ErrNotFDT = errors.New("bootinfo: not a flattened device tree")

// ParseDTB walks a flattened device tree blob and extracts /memory
// reg properties and /chosen/bootargs into a BootInfo.
func ParseDTB(data []byte) (*BootInfo, error) {
	if len(data) < 40 {
		return nil, ErrNotFDT
	}
	if binary.BigEndian.Uint32(data[0:4]) != fdtMagic {
		return nil, ErrNotFDT
	}
	offStruct := binary.BigEndian.Uint32(data[8:12])
	offStrings := binary.BigEndian.Uint32(data[12:16])
	if int(offStruct) >= len(data) || int(offStrings) >= len(data) {
		return nil, ErrTruncated
	}

	info := &BootInfo{}
	p := int(offStruct)
	nodePath := []string{}

	for p+4 <= len(data) {
		tag := binary.BigEndian.Uint32(data[p:])
		p += 4

		switch tag {
		case fdtBeginNode:
			name, next, err := readCString(data, p)
			if err != nil {
				return nil, err
			}
			p = align4(next)
			nodePath = append(nodePath, name)

		case fdtEndNode:
			if len(nodePath) == 0 {
				return nil, errors.New("bootinfo: unbalanced fdt node nesting")
			}
			nodePath = nodePath[:len(nodePath)-1]

		case fdtProp:
			if p+8 > len(data) {
				return nil, ErrTruncated
			}
			propLen := binary.BigEndian.Uint32(data[p:])
			nameOff := binary.BigEndian.Uint32(data[p+4:])
			p += 8
			if p+int(propLen) > len(data) {
				return nil, ErrTruncated
			}
			value := data[p : p+int(propLen)]
			name, _, err := readCString(data, int(offStrings)+int(nameOff))
			if err != nil {
				return nil, err
			}

			applyProp(info, nodePath, name, value)

			p = align4(p + int(propLen))

		case fdtNop:
			// no body

		case fdtEnd:
			return info, nil

		default:
			return nil, errors.New("bootinfo: unrecognized fdt token")
		}
	}
	return info, nil
}

func applyProp(info *BootInfo, path []string, propName string, value []byte) {
	switch {
	case isChosenBootargs(path, propName):
		info.Cmdline = cString(value)
	case isMemoryReg(path, propName):
		for off := 0; off+16 <= len(value); off += 16 {
			base := binary.BigEndian.Uint64(value[off:])
			length := binary.BigEndian.Uint64(value[off+8:])
			info.Regions = append(info.Regions, MemoryRegion{
				Base:   mem.Paddr(base),
				Length: mem.Size(length),
				Type:   MemoryAvailable,
			})
		}
	}
}

func isChosenBootargs(path []string, propName string) bool {
	return len(path) > 0 && path[len(path)-1] == "chosen" && propName == "bootargs"
}

func isMemoryReg(path []string, propName string) bool {
	if propName != "reg" || len(path) == 0 {
		return false
	}
	last := path[len(path)-1]
	return last == "memory" || hasPrefix(last, "memory@")
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[:len(prefix)] == prefix
}

func readCString(data []byte, start int) (string, int, error) {
	for i := start; i < len(data); i++ {
		if data[i] == 0 {
			return string(data[start:i]), i + 1, nil
		}
	}
	return "", 0, ErrTruncated
}

func align4(off int) int { return (off + 3) &^ 3 }
