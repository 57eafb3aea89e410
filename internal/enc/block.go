// Package enc implements the DV video segment encoder: block quantization,
// the segment rate controller, the AC bitstream packer and the segment
// orchestrator that ties them to a frame buffer.
package enc

import (
	"fmt"

	"github.com/deepteams/dv/internal/vlc"
)

// DCTMode selects the transform applied to a block.
type DCTMode uint8

const (
	DCT88  DCTMode = iota // progressive 8x8
	DCT248                // 2-4-8, two interleaved fields
)

func (m DCTMode) String() string {
	if m == DCT248 {
		return "2-4-8"
	}
	return "8x8"
}

// chainEnd is the next[] sentinel closing a block's coefficient chain.
const chainEnd = 64

// Block is the encoding state of one 8x8 block.
//
// The non-zero AC coefficients form a singly linked chain in scan order
// starting at position 0: next[k] is the scan position of the coefficient
// following k, or chainEnd. mb, sign and next are indexed by scan position.
type Block struct {
	mb      [64]int16 // mb[0] is the signed DC, mb[k>0] an AC magnitude
	sign    [64]uint8
	next    [64]uint8
	bitSize [4]int // VLC cost of each area, EOB excluded
	prev    [5]int // prev[a]: last chain position before area a
	areaQ   [4]int // right shifts applied to each area so far
	cno     int
	dctMode DCTMode

	// Packer state.
	curAC        int
	partialBits  int
	partialValue uint32
}

// reset clears all coefficient and packer state.
func (b *Block) reset() {
	*b = Block{}
	b.next[0] = chainEnd
}

// Class returns the block's class number.
func (b *Block) Class() int { return b.cno }

// Mode returns the block's DCT mode.
func (b *Block) Mode() DCTMode { return b.dctMode }

// DC returns the signed DC coefficient.
func (b *Block) DC() int { return int(b.mb[0]) }

// dcHeader returns the 9-bit DC value written in the block header.
func (b *Block) dcHeader() int32 {
	return int32(((int(b.mb[0]) >> 3) - 1024 + 2) >> 2)
}

// bits returns the block's current AC cost including its EOB.
func (b *Block) bits() int {
	return b.bitSize[0] + b.bitSize[1] + b.bitSize[2] + b.bitSize[3] + vlc.EOBBits
}

// packed reports whether the packer has emitted every VLC including EOB.
func (b *Block) packed() bool {
	return b.curAC >= chainEnd && b.partialBits == 0
}

// Coefficients calls fn for every coefficient on the chain in scan order.
func (b *Block) Coefficients(fn func(pos, level int, negative bool)) {
	for k := int(b.next[0]); k < chainEnd; k = int(b.next[k]) {
		fn(k, int(b.mb[k]), b.sign[k] != 0)
	}
}

// recomputeAreas rebuilds prev[] and bitSize[] from the chain.
func (b *Block) recomputeAreas() {
	prev := 0
	k := int(b.next[0])
	for a := 0; a < 4; a++ {
		b.prev[a] = prev
		b.bitSize[a] = 0
		for ; k < areaStart[a+1]; k = int(b.next[k]) {
			b.bitSize[a] += vlc.Size(k-prev-1, int(b.mb[k]))
			prev = k
		}
	}
	b.prev[4] = prev
}

// checkChain verifies the chain invariants: strictly increasing positions,
// non-zero magnitudes no larger than vlc.MaxLevel, a terminating sentinel,
// and area bookkeeping consistent with the chain.
func (b *Block) checkChain() error {
	prev := 0
	costs := [4]int{}
	prevs := [5]int{}
	a := 0
	k := int(b.next[0])
	for ; k < chainEnd; k = int(b.next[k]) {
		if k <= prev {
			return fmt.Errorf("chain not increasing: %d after %d", k, prev)
		}
		if b.mb[k] <= 0 || int(b.mb[k]) > vlc.MaxLevel {
			return fmt.Errorf("position %d has magnitude %d", k, b.mb[k])
		}
		for k >= areaStart[a+1] {
			a++
			prevs[a] = prev
		}
		costs[a] += vlc.Size(k-prev-1, int(b.mb[k]))
		prev = k
	}
	if k != chainEnd {
		return fmt.Errorf("chain ends at %d", k)
	}
	for a < 4 {
		a++
		prevs[a] = prev
	}
	if costs != b.bitSize {
		return fmt.Errorf("area costs %v, chain gives %v", b.bitSize, costs)
	}
	if prevs != b.prev {
		return fmt.Errorf("area prev %v, chain gives %v", b.prev, prevs)
	}
	return nil
}
