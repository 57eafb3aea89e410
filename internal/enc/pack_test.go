package enc

import (
	"math/rand"
	"testing"

	"github.com/deepteams/dv/internal/bitio"
)

func randomChain(rng *rand.Rand, n int) *Block {
	levels := make(map[int]int)
	for len(levels) < n {
		l := 1 + rng.Intn(30)
		if rng.Intn(8) == 0 {
			l = 1 + rng.Intn(255)
		}
		if rng.Intn(2) == 0 {
			l = -l
		}
		levels[1+rng.Intn(63)] = l
	}
	return chainBlock(0, levels)
}

// writtenBits returns the bits committed to pbs after Fill, skipping the
// first skip bits of the first writer.
func writtenBits(pbs []bitio.SlotWriter, bufs [][]byte, skip int) bitString {
	var out bitString
	for i := range pbs {
		used := pbs[i].BitsWritten()
		out = append(out, bytesToBits(bufs[i])[:used]...)
	}
	return out[skip:]
}

// A block written into writers whose capacity exactly matches its cost
// fills every writer and splits VLCs across writer boundaries MSB-first.
func TestEncodeAC_ExactFit(t *testing.T) {
	rng := rand.New(rand.NewSource(11))
	for iter := 0; iter < 50; iter++ {
		b := randomChain(rng, 1+rng.Intn(20))
		want := expectedBits(b)
		total := len(want)
		pad := (8 - total%8) % 8
		n := (total + pad) / 8

		bufs := make([][]byte, n)
		pbs := make([]bitio.SlotWriter, n)
		for i := range pbs {
			bufs[i] = make([]byte, 1)
			pbs[i].Reset(bufs[i])
		}
		pbs[0].PutBits(0, pad)

		b.encodeAC(pbs)
		if !b.packed() {
			t.Fatalf("iter %d: block not packed, %d bits pending", iter, b.partialBits)
		}
		for i := range pbs {
			if pbs[i].BitsLeft() != 0 || pbs[i].Err() != nil {
				t.Fatalf("iter %d: writer %d has %d bits left, err %v", iter, i, pbs[i].BitsLeft(), pbs[i].Err())
			}
		}
		if got := writtenBits(pbs, bufs, pad); string(got) != string(want) {
			t.Fatalf("iter %d: bitstream mismatch\n got %v\nwant %v", iter, got, want)
		}
	}
}

// One bit short: the last bit of the EOB is carried over and lands first
// in the next writer handed to the block.
func TestEncodeAC_Carry(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	b := randomChain(rng, 12)
	want := expectedBits(b)
	capBits := len(want) - 1
	pad := (8 - capBits%8) % 8
	buf := make([]byte, (capBits+pad)/8)
	var w bitio.SlotWriter
	w.Reset(buf)
	w.PutBits(0, pad)

	b.encodeAC([]bitio.SlotWriter{w})
	if b.packed() || b.partialBits != 1 {
		t.Fatalf("packed %v with %d pending bits, want 1 pending", b.packed(), b.partialBits)
	}

	var more [1]bitio.SlotWriter
	extra := make([]byte, 1)
	more[0].Reset(extra)
	b.encodeAC(more[:])
	if !b.packed() {
		t.Fatal("block not packed after the second writer")
	}
	if got := extra[0] >> 7; got != want[len(want)-1] {
		t.Errorf("carried bit = %d, want %d", got, want[len(want)-1])
	}
}

// Blocks that overflow their own slot continue in the free space of the
// other slots of their scope, in order.
func TestPackScope(t *testing.T) {
	rng := rand.New(rand.NewSource(21))
	for iter := 0; iter < 100; iter++ {
		const bpm = 6
		n := 2 * bpm
		blks := make([]Block, n)
		bufs := make([][]byte, n)
		pbs := make([]bitio.SlotWriter, n)
		slotBits := 0
		acBits := 0
		for j := range blks {
			blks[j] = *randomChain(rng, rng.Intn(12))
			bufs[j] = make([]byte, 2+rng.Intn(10))
			pbs[j].Reset(bufs[j])
			slotBits += len(bufs[j]) * 8
			acBits += blks[j].bits()
		}
		if acBits > slotBits {
			continue
		}
		want := make([][]acCoef, n)
		for j := range blks {
			want[j] = chainCoefs(&blks[j])
			blks[j].encodeAC(pbs[j : j+1])
		}
		for m := 0; m < n/bpm; m++ {
			packScope(blks[m*bpm:(m+1)*bpm], pbs[m*bpm:(m+1)*bpm])
		}
		packScope(blks, pbs)

		slots := make([]bitString, n)
		for j := range blks {
			if !blks[j].packed() {
				t.Fatalf("iter %d: block %d not packed", iter, j)
			}
			if pbs[j].Err() != nil {
				t.Fatalf("iter %d: writer %d: %v", iter, j, pbs[j].Err())
			}
			pbs[j].Fill(0xff)
			slots[j] = bytesToBits(bufs[j])
		}
		dec := decodeScopes(t, slots, bpm)
		for j := range dec {
			if !sameCoefs(dec[j].coefs, want[j]) {
				t.Fatalf("iter %d block %d: decoded %v, want %v", iter, j, dec[j].coefs, want[j])
			}
		}
	}
}

func BenchmarkEncodeAC(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	src := randomChain(rng, 30)
	buf := make([]byte, 64)
	pbs := make([]bitio.SlotWriter, 1)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		blk := *src
		pbs[0].Reset(buf)
		blk.encodeAC(pbs)
	}
}
