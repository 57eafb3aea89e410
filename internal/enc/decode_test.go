package enc

import (
	"sync"
	"testing"

	"github.com/deepteams/dv/internal/vlc"
)

// Test-side decoder for the AC bitstream. It builds the inverse of
// vlc.Encode and replays the block, macroblock and segment passes of the
// packer over the written slots.

type vlcKey struct {
	v uint32
	n int
}

type acCoef struct {
	pos   int
	level int
	neg   bool
}

type symbol struct {
	run, level int
	neg, eob   bool
}

var (
	decodeOnce sync.Once
	decodeMap  map[vlcKey]symbol
)

func vlcDecodeMap() map[vlcKey]symbol {
	decodeOnce.Do(func() {
		decodeMap = make(map[vlcKey]symbol)
		decodeMap[vlcKey{vlc.EOBCode, vlc.EOBBits}] = symbol{eob: true}
		for run := 0; run < 63; run++ {
			for level := 1; level <= vlc.MaxLevel; level++ {
				for sign := uint8(0); sign < 2; sign++ {
					v, n := vlc.Encode(run, level, sign)
					decodeMap[vlcKey{v, n}] = symbol{run: run, level: level, neg: sign == 1}
				}
			}
		}
	})
	return decodeMap
}

// bitString holds one bit per element, MSB first.
type bitString []uint8

func bytesToBits(b []byte) bitString {
	out := make(bitString, 0, len(b)*8)
	for _, c := range b {
		for i := 7; i >= 0; i-- {
			out = append(out, c>>uint(i)&1)
		}
	}
	return out
}

func codeBits(v uint32, n int) bitString {
	out := make(bitString, n)
	for i := 0; i < n; i++ {
		out[i] = uint8(v >> uint(n-1-i) & 1)
	}
	return out
}

func (s bitString) value() uint32 {
	var v uint32
	for _, b := range s {
		v = v<<1 | uint32(b)
	}
	return v
}

type blockDecoder struct {
	pending bitString
	pos     int
	coefs   []acCoef
	done    bool
	err     string
}

// feed consumes bits from src until EOB or the end of src and returns the
// number of bits consumed.
func (d *blockDecoder) feed(src bitString) int {
	m := vlcDecodeMap()
	i := 0
	for !d.done && i < len(src) {
		d.pending = append(d.pending, src[i])
		i++
		if len(d.pending) > 32 {
			d.err = "no code matches 32 bits"
			d.done = true
			break
		}
		s, ok := m[vlcKey{d.pending.value(), len(d.pending)}]
		if !ok {
			continue
		}
		d.pending = d.pending[:0]
		if s.eob {
			d.done = true
			break
		}
		d.pos += s.run + 1
		if d.pos >= 64 {
			d.err = "scan position past 63"
			d.done = true
			break
		}
		d.coefs = append(d.coefs, acCoef{d.pos, s.level, s.neg})
	}
	return i
}

// decodeScopes decodes the AC payloads of a segment. slots holds the
// bits of every block slot after its header, bpm slots per macroblock.
func decodeScopes(t *testing.T, slots []bitString, bpm int) []blockDecoder {
	t.Helper()
	dec := make([]blockDecoder, len(slots))
	rest := make([]bitString, len(slots))
	for j := range slots {
		n := dec[j].feed(slots[j])
		rest[j] = slots[j][n:]
	}

	var segPool bitString
	for m := 0; m*bpm < len(slots); m++ {
		var pool bitString
		for j := m * bpm; j < (m+1)*bpm; j++ {
			pool = append(pool, rest[j]...)
		}
		off := 0
		for j := m * bpm; j < (m+1)*bpm; j++ {
			if !dec[j].done {
				off += dec[j].feed(pool[off:])
			}
		}
		segPool = append(segPool, pool[off:]...)
	}

	off := 0
	for j := range dec {
		if !dec[j].done {
			off += dec[j].feed(segPool[off:])
		}
	}
	for j := range dec {
		if dec[j].err != "" {
			t.Fatalf("block %d: %s", j, dec[j].err)
		}
		if !dec[j].done {
			t.Fatalf("block %d: no EOB in segment", j)
		}
	}
	return dec
}

func chainCoefs(b *Block) []acCoef {
	var out []acCoef
	b.Coefficients(func(pos, level int, neg bool) {
		out = append(out, acCoef{pos, level, neg})
	})
	return out
}

func sameCoefs(a, b []acCoef) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

// expectedBits is the AC stream of a freshly quantized block.
func expectedBits(b *Block) bitString {
	var out bitString
	prev := 0
	b.Coefficients(func(pos, level int, neg bool) {
		var sign uint8
		if neg {
			sign = 1
		}
		out = append(out, codeBits(vlc.Encode(pos-prev-1, level, sign))...)
		prev = pos
	})
	return append(out, codeBits(vlc.EOBCode, vlc.EOBBits)...)
}

// chainBlock builds a block whose chain holds levels (scan position to
// signed magnitude).
func chainBlock(dc int16, levels map[int]int) *Block {
	b := new(Block)
	b.reset()
	b.mb[0] = dc
	prev := 0
	for k := 1; k < 64; k++ {
		l, ok := levels[k]
		if !ok || l == 0 {
			continue
		}
		if l < 0 {
			b.sign[k] = 1
			l = -l
		}
		b.mb[k] = int16(l)
		b.next[prev] = uint8(k)
		prev = k
	}
	b.next[prev] = chainEnd
	b.recomputeAreas()
	return b
}
