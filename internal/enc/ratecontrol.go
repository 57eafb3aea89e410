package enc

import (
	"github.com/deepteams/dv/internal/profile"
	"github.com/deepteams/dv/internal/vlc"
)

// lumaBlocks is the number of leading luma blocks in every macroblock.
const lumaBlocks = 4

// requantizeArea applies one more halving step to area a, unlinking the
// coefficients that reach zero. When the first coefficient of a later area
// loses its predecessor, that area's prev[] entry and cost are fixed up.
func (b *Block) requantizeArea(a int) {
	b.bitSize[a] = 0
	b.areaQ[a]++
	end := areaStart[a+1]
	prev := b.prev[a]
	for k := int(b.next[prev]); k < end; k = int(b.next[k]) {
		b.mb[k] >>= 1
		if b.mb[k] != 0 {
			b.bitSize[a] += vlc.Size(k-prev-1, int(b.mb[k]))
			prev = k
			continue
		}
		nk := int(b.next[k])
		if nk >= end {
			a2 := a + 1
			for ; a2 <= 4 && areaStart[a2] <= nk; a2++ {
				b.prev[a2] = prev
			}
			if nk < chainEnd {
				lvl := int(b.mb[nk])
				b.bitSize[a2-1] += vlc.Size(nk-prev-1, lvl) - vlc.Size(nk-k-1, lvl)
			}
		}
		b.next[prev] = uint8(nk)
	}
	b.prev[a+1] = prev
}

// guessQnos lowers the quantization numbers of the five macroblocks of a
// segment until the segment's AC cost fits budget.
//
// Phase 1 steps every macroblock down one qno at a time, in macroblock
// order, requantizing only the areas whose shift changes. The segment cost
// is checked after each macroblock's step, not once per round of five, so
// later macroblocks of the round may keep the higher qno. A macroblock not
// yet stepped counts as over budget. If every qno reaches zero, phase 2
// drops small magnitudes outright with a doubling threshold, luma blocks
// first, then chroma blocks too.
func guessQnos(blks []Block, qnos *[profile.MBsPerSegment]int, bpm, budget int) {
	var size [profile.MBsPerSegment]int
	for i := range size {
		size[i] = 1 << 24
	}
	for {
		active := false
		for i := range qnos {
			if qnos[i] == 0 {
				continue
			}
			active = true
			qnos[i]--
			size[i] = 0
			for j := 0; j < bpm; j++ {
				b := &blks[i*bpm+j]
				for a := 0; a < 4; a++ {
					for want := profile.Shift(qnos[i], b.cno, a); b.areaQ[a] < want; {
						b.requantizeArea(a)
					}
					size[i] += b.bitSize[a]
				}
				size[i] += vlc.EOBBits
			}
			if size[0]+size[1]+size[2]+size[3]+size[4] <= budget {
				return
			}
		}
		if !active {
			break
		}
	}

	for _, lumaOnly := range []bool{true, false} {
		for a := 2; a <= vlc.MaxLevel+1; a += a {
			if dropBelow(blks, bpm, a, lumaOnly) <= budget {
				return
			}
		}
	}
}

// dropBelow unlinks every AC magnitude below threshold (luma blocks only
// when lumaOnly is set) and returns the resulting segment cost.
func dropBelow(blks []Block, bpm, threshold int, lumaOnly bool) int {
	total := 0
	for j := range blks {
		b := &blks[j]
		if !lumaOnly || j%bpm < lumaBlocks {
			prev := 0
			for k := int(b.next[0]); k < chainEnd; k = int(b.next[k]) {
				if int(b.mb[k]) < threshold {
					b.next[prev] = b.next[k]
					continue
				}
				prev = k
			}
			b.recomputeAreas()
		}
		total += b.bits()
	}
	return total
}
