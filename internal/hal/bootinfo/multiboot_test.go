package bootinfo

import (
	"encoding/binary"
	"testing"
)

// buildMultiboot2 assembles a synthetic multiboot2 info blob with a
// cmdline tag and a memory map tag, padding every tag to an 8-byte
// boundary as the real loader does.
func buildMultiboot2(cmdline string, regions [][3]uint64) []byte {
	var tags []byte

	appendTag := func(tagType uint32, body []byte) {
		header := make([]byte, 8)
		binary.LittleEndian.PutUint32(header[0:], tagType)
		binary.LittleEndian.PutUint32(header[4:], uint32(8+len(body)))
		tag := append(header, body...)
		for len(tag)%8 != 0 {
			tag = append(tag, 0)
		}
		tags = append(tags, tag...)
	}

	cmdBody := append([]byte(cmdline), 0)
	appendTag(1, cmdBody)

	var mmapBody []byte
	entrySizeHdr := make([]byte, 8)
	binary.LittleEndian.PutUint32(entrySizeHdr[0:], 24)
	binary.LittleEndian.PutUint32(entrySizeHdr[4:], 0)
	mmapBody = append(mmapBody, entrySizeHdr...)
	for _, r := range regions {
		entry := make([]byte, 24)
		binary.LittleEndian.PutUint64(entry[0:], r[0])
		binary.LittleEndian.PutUint64(entry[8:], r[1])
		binary.LittleEndian.PutUint32(entry[16:], uint32(r[2]))
		mmapBody = append(mmapBody, entry...)
	}
	appendTag(6, mmapBody)

	// End tag.
	appendTag(0, nil)

	header := make([]byte, 8)
	total := 8 + len(tags)
	binary.LittleEndian.PutUint32(header[0:], uint32(total))
	return append(header, tags...)
}

func TestParseMultiboot2ExtractsCmdlineAndMemoryMap(t *testing.T) {
	blob := buildMultiboot2("console=ttyS0 root=/dev/sda1", [][3]uint64{
		{0x0, 0x9fc00, mbMemAvailable},
		{0x100000, 0x1ff00000, mbMemAvailable},
		{0xfec00000, 0x1000, mbMemReserved},
	})

	info, err := ParseMultiboot2(blob)
	if err != nil {
		t.Fatalf("ParseMultiboot2: %v", err)
	}

	if info.Cmdline != "console=ttyS0 root=/dev/sda1" {
		t.Errorf("Cmdline = %q", info.Cmdline)
	}
	if len(info.Regions) != 3 {
		t.Fatalf("len(Regions) = %d, want 3", len(info.Regions))
	}
	if info.Regions[2].Type != MemoryReserved {
		t.Errorf("Regions[2].Type = %v, want MemoryReserved", info.Regions[2].Type)
	}
	if len(info.Available()) != 2 {
		t.Errorf("len(Available()) = %d, want 2", len(info.Available()))
	}
}

func TestParseMultiboot2RejectsTruncatedBlob(t *testing.T) {
	if _, err := ParseMultiboot2([]byte{1, 2, 3}); err != ErrTruncated {
		t.Errorf("err = %v, want ErrTruncated", err)
	}
}
