package enc

import (
	"github.com/deepteams/dv/internal/bitio"
	"github.com/deepteams/dv/internal/vlc"
)

// encodeAC writes the block's pending VLCs into pbs starting with pbs[0],
// moving on to the next writer whenever one is full. A VLC that straddles
// two writers is split MSB-first. When pbs is exhausted the unwritten tail
// of the current VLC stays in the block for a later call. It returns the
// index of the writer it stopped in.
func (b *Block) encodeAC(pbs []bitio.SlotWriter) int {
	i := 0
	size := b.partialBits
	v := b.partialValue
	b.partialBits = 0
	b.partialValue = 0
	for {
		for {
			left := pbs[i].BitsLeft()
			if size <= left {
				break
			}
			if left > 0 {
				size -= left
				pbs[i].PutBits(v>>uint(size), left)
				v &= 1<<uint(size) - 1
			}
			if i+1 >= len(pbs) {
				b.partialBits = size
				b.partialValue = v
				return i
			}
			i++
		}
		pbs[i].PutBits(v, size)

		if b.curAC >= chainEnd {
			return i
		}
		prev := b.curAC
		b.curAC = int(b.next[prev])
		if b.curAC < chainEnd {
			v, size = vlc.Encode(b.curAC-prev-1, int(b.mb[b.curAC]), b.sign[b.curAC])
		} else {
			v, size = vlc.EOBCode, vlc.EOBBits
		}
	}
}

// packScope runs the packer for every unfinished block of blks over the
// shared writers pbs. The writer cursor only moves forward, so every writer
// before it is full.
func packScope(blks []Block, pbs []bitio.SlotWriter) {
	cur := 0
	for j := range blks {
		if blks[j].partialBits > 0 {
			cur += blks[j].encodeAC(pbs[cur:])
		}
	}
}
