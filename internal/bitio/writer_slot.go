// Package bitio provides the fixed-capacity MSB-first bit writer used to
// fill DV block slots.
package bitio

import "errors"

// ErrOverflow is reported when a write does not fit in the slot.
var ErrOverflow = errors.New("bitio: slot overflow")

// SlotWriter writes bits MSB-first into a fixed byte slice.
//
// Bits are accumulated in a 64-bit register and emitted one byte at a time.
// The writer never grows its buffer: a write that would exceed the slot is
// dropped and recorded as ErrOverflow.
type SlotWriter struct {
	buf  []byte
	cur  int    // bytes committed to buf
	bits uint64 // pending bits, right aligned
	used int    // number of pending bits (< 8 between calls)
	err  error
}

// NewSlotWriter returns a writer over buf.
func NewSlotWriter(buf []byte) *SlotWriter {
	w := &SlotWriter{}
	w.Reset(buf)
	return w
}

// Reset points the writer at buf and clears all state.
func (w *SlotWriter) Reset(buf []byte) {
	w.buf = buf
	w.cur = 0
	w.bits = 0
	w.used = 0
	w.err = nil
}

// PutBits writes the low n bits (0..32) of v.
func (w *SlotWriter) PutBits(v uint32, n int) {
	if n == 0 {
		return
	}
	if n > w.BitsLeft() {
		if w.err == nil {
			w.err = ErrOverflow
		}
		return
	}
	if n < 32 {
		v &= 1<<uint(n) - 1
	}
	w.bits = w.bits<<uint(n) | uint64(v)
	w.used += n
	for w.used >= 8 {
		w.used -= 8
		w.buf[w.cur] = byte(w.bits >> uint(w.used))
		w.cur++
	}
	w.bits &= 1<<uint(w.used) - 1
}

// PutSignedBits writes v as an n-bit two's complement value.
func (w *SlotWriter) PutSignedBits(v int32, n int) {
	w.PutBits(uint32(v), n)
}

// BitsWritten returns the number of bits written so far.
func (w *SlotWriter) BitsWritten() int {
	return w.cur<<3 + w.used
}

// BitsLeft returns the remaining capacity in bits.
func (w *SlotWriter) BitsLeft() int {
	return len(w.buf)<<3 - w.BitsWritten()
}

// Flush pads the pending bits with zeros up to a byte boundary and returns
// the number of bytes used.
func (w *SlotWriter) Flush() int {
	if w.used > 0 {
		w.buf[w.cur] = byte(w.bits << uint(8-w.used))
		w.cur++
		w.bits = 0
		w.used = 0
	}
	return w.cur
}

// Fill flushes the writer and sets every unused byte of the slot to b.
func (w *SlotWriter) Fill(b byte) {
	n := w.Flush()
	for i := n; i < len(w.buf); i++ {
		w.buf[i] = b
	}
}

// Bytes returns the committed bytes, excluding any pending partial byte.
func (w *SlotWriter) Bytes() []byte {
	return w.buf[:w.cur]
}

// Size returns the slot capacity in bytes.
func (w *SlotWriter) Size() int {
	return len(w.buf)
}

// Err returns the first error encountered during writing, if any.
func (w *SlotWriter) Err() error {
	return w.err
}
