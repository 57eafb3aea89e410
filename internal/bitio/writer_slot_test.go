package bitio

import (
	"bytes"
	"errors"
	"math/rand"
	"testing"
)

func TestSlotWriter_MSBFirst(t *testing.T) {
	buf := make([]byte, 4)
	w := NewSlotWriter(buf)
	w.PutBits(0x1, 1)
	w.PutBits(0x0, 2)
	w.PutBits(0x1f, 5)
	w.PutBits(0xabc, 12)
	w.PutBits(0x6, 4)
	if n := w.Flush(); n != 3 {
		t.Fatalf("Flush() = %d, want 3", n)
	}
	want := []byte{0x9f, 0xab, 0xc6, 0x00}
	if !bytes.Equal(buf, want) {
		t.Errorf("buf = % x, want % x", buf, want)
	}
	if err := w.Err(); err != nil {
		t.Errorf("Err() = %v", err)
	}
}

func TestSlotWriter_PartialByteFlush(t *testing.T) {
	buf := make([]byte, 2)
	w := NewSlotWriter(buf)
	w.PutBits(0x5, 3)
	if got := w.BitsWritten(); got != 3 {
		t.Fatalf("BitsWritten() = %d, want 3", got)
	}
	if got := w.BitsLeft(); got != 13 {
		t.Fatalf("BitsLeft() = %d, want 13", got)
	}
	w.Fill(0xff)
	if buf[0] != 0xa0 || buf[1] != 0xff {
		t.Errorf("buf = % x, want a0 ff", buf)
	}
}

func TestSlotWriter_SignedBits(t *testing.T) {
	buf := make([]byte, 3)
	w := NewSlotWriter(buf)
	w.PutSignedBits(-1, 9)
	w.PutSignedBits(-256, 9)
	w.PutSignedBits(5, 6)
	w.Flush()
	// 1_1111_1111 1_0000_0000 00_0101
	want := []byte{0xff, 0xc0, 0x05}
	if !bytes.Equal(buf, want) {
		t.Errorf("buf = % x, want % x", buf, want)
	}
}

func TestSlotWriter_Overflow(t *testing.T) {
	buf := make([]byte, 1)
	w := NewSlotWriter(buf)
	w.PutBits(0x3f, 6)
	w.PutBits(0x7, 3) // does not fit, dropped
	if !errors.Is(w.Err(), ErrOverflow) {
		t.Fatalf("Err() = %v, want ErrOverflow", w.Err())
	}
	if got := w.BitsWritten(); got != 6 {
		t.Errorf("BitsWritten() = %d, want 6", got)
	}
	w.PutBits(0x1, 2) // still fits exactly
	if got := w.BitsLeft(); got != 0 {
		t.Errorf("BitsLeft() = %d, want 0", got)
	}
	if buf[0] != 0xfd {
		t.Errorf("buf[0] = %#x, want 0xfd", buf[0])
	}
}

func TestSlotWriter_Reset(t *testing.T) {
	a := make([]byte, 2)
	b := make([]byte, 3)
	w := NewSlotWriter(a)
	w.PutBits(0xff, 8)
	w.PutBits(0xff, 9) // overflow
	w.Reset(b)
	if w.Err() != nil || w.BitsWritten() != 0 || w.Size() != 3 {
		t.Fatalf("Reset left state: err=%v written=%d size=%d", w.Err(), w.BitsWritten(), w.Size())
	}
	w.PutBits(0x12345, 20)
	if got := w.Bytes(); !bytes.Equal(got, []byte{0x12, 0x34}) {
		t.Errorf("Bytes() = % x, want 12 34", got)
	}
}

func TestSlotWriter_RandomRoundTrip(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	type field struct {
		v uint32
		n int
	}
	for iter := 0; iter < 100; iter++ {
		buf := make([]byte, 64)
		w := NewSlotWriter(buf)
		var fields []field
		for w.BitsLeft() > 32 {
			n := 1 + rng.Intn(32)
			v := rng.Uint32()
			if n < 32 {
				v &= 1<<uint(n) - 1
			}
			fields = append(fields, field{v, n})
			w.PutBits(v, n)
		}
		w.Flush()

		pos := 0
		for i, f := range fields {
			var got uint32
			for k := 0; k < f.n; k++ {
				got = got<<1 | uint32(buf[pos>>3]>>(7-uint(pos&7))&1)
				pos++
			}
			if got != f.v {
				t.Fatalf("iter %d field %d: got %#x, want %#x (%d bits)", iter, i, got, f.v, f.n)
			}
		}
	}
}

func BenchmarkSlotWriter_PutBits(b *testing.B) {
	buf := make([]byte, 14)
	w := NewSlotWriter(buf)
	for i := 0; i < b.N; i++ {
		if w.BitsLeft() < 16 {
			w.Reset(buf)
		}
		w.PutBits(uint32(i), 1+i&15)
	}
}
