package amd64

import (
	"encoding/binary"
	"testing"
)

func buildTrapFrame(rax, rdi, rsi, rdx, r10, r8, r9 uint64) []byte {
	buf := make([]byte, syscallFrameSize)
	words := []uint64{rax, rdi, rsi, rdx, r10, r8, r9}
	for i, w := range words {
		binary.LittleEndian.PutUint64(buf[i*8:], w)
	}
	return buf
}

func TestExtractArgsOrdersRegistersCorrectly(t *testing.T) {
	s := NewSyscall()
	frame := buildTrapFrame(1 /* write */, 3, 0x1000, 64, 0, 0, 0)

	args := s.ExtractArgs(frame)

	if args.Number != 1 {
		t.Errorf("Number = %d, want 1", args.Number)
	}
	want := [6]uint64{3, 0x1000, 64, 0, 0, 0}
	if args.Args != want {
		t.Errorf("Args = %v, want %v", args.Args, want)
	}
}

func TestSetReturnWritesRAX(t *testing.T) {
	s := NewSyscall()
	frame := buildTrapFrame(1, 0, 0, 0, 0, 0, 0)

	s.SetReturn(frame, -14) // -EFAULT

	got := int64(binary.LittleEndian.Uint64(frame[offRAX*8:]))
	if got != -14 {
		t.Errorf("rax = %d, want -14", got)
	}
}

func TestExtractArgsPanicsOnShortFrame(t *testing.T) {
	defer func() {
		if recover() == nil {
			t.Fatal("expected panic on undersized trap frame")
		}
	}()
	NewSyscall().ExtractArgs(make([]byte, 4))
}
