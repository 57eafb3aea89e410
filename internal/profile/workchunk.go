package profile

// MBCoord locates a macroblock in 8-pixel units of the luma raster.
type MBCoord struct {
	X, Y int
}

// WorkChunk describes one video segment: the DIF block holding its first
// macroblock and the raster position of each of its five macroblocks.
type WorkChunk struct {
	Index     int
	Channel   int
	Sequence  int
	Slot      int // segment number within the DIF sequence, 0..26
	BufOffset int // in DIF blocks from the start of the frame
	MB        [MBsPerSegment]MBCoord
}

// ByteOffset returns the frame offset of the segment's first video DIF.
func (c *WorkChunk) ByteOffset() int {
	return c.BufOffset * DIFBlockSize
}

// Macroblock shuffling tables for 720-wide SD rasters.
var (
	seqOffset      = [MBsPerSegment]int{2, 6, 8, 0, 4}
	shuf3          = [MBsPerSegment]int{18, 9, 27, 0, 36}
	lStartShuffled = [MBsPerSegment]int{9, 4, 13, 0, 18}
	serpent1       = [SegmentsPerSeq]int{
		0, 1, 2, 2, 1, 0, 0, 1, 2, 2, 1, 0, 0, 1, 2,
		2, 1, 0, 0, 1, 2, 2, 1, 0, 0, 1, 2,
	}
	serpent2 = [30]int{
		0, 1, 2, 3, 4, 5, 5, 4, 3, 2, 1, 0, 0, 1, 2,
		3, 4, 5, 5, 4, 3, 2, 1, 0, 0, 1, 2, 3, 4, 5,
	}
)

// mbCoord returns the raster position of macroblock m of the given segment.
func mbCoord(p *Profile, ch, seq, slot, m int) MBCoord {
	band := (seq + seqOffset[m]) % p.DIFSegSize
	switch p.Format {
	case YUV422:
		x := shuf3[m] + slot/3
		y := serpent1[slot] + (band*2+ch)*3
		return MBCoord{X: x * 2, Y: y}
	case YUV420:
		x := shuf3[m] + slot/3
		y := serpent1[slot] + band*3
		return MBCoord{X: x * 2, Y: y * 2}
	default:
		k := slot
		if m == 1 || m == 2 {
			k += 3
		}
		x := lStartShuffled[m] + k/6
		y := serpent2[k] + band*6
		if x > 21 {
			// Rightmost column: 16x16 macroblocks on even rows.
			y = y*2 - band*6
		}
		return MBCoord{X: x * 4, Y: y}
	}
}

// buildWorkChunks walks the DIF layout of a frame: each sequence starts
// with the control blocks, then audio and video DIFs interleave with one
// audio block ahead of every three segments.
func buildWorkChunks(p *Profile) []WorkChunk {
	chunks := make([]WorkChunk, 0, p.NumSegments())
	pos := 0
	for c := 0; c < p.NDIFChan; c++ {
		for s := 0; s < p.DIFSegSize; s++ {
			pos += ControlDIFsCount
			for j := 0; j < SegmentsPerSeq; j++ {
				if j%3 == 0 {
					pos++
				}
				wc := WorkChunk{
					Index:     len(chunks),
					Channel:   c,
					Sequence:  s,
					Slot:      j,
					BufOffset: pos,
				}
				for m := 0; m < MBsPerSegment; m++ {
					wc.MB[m] = mbCoord(p, c, s, j, m)
				}
				chunks = append(chunks, wc)
				pos += MBsPerSegment
			}
		}
	}
	return chunks
}

// RightColumnX is the first macroblock column, in 8-pixel units, of the
// 16x16 macroblocks that close a 4:1:1 raster.
const RightColumnX = 704 / 8

// MBSize returns the luma footprint of a macroblock in pixels.
func (p *Profile) MBSize(mb MBCoord) (w, h int) {
	switch p.Format {
	case YUV420:
		return 16, 16
	case YUV422:
		return 16, 8
	}
	if mb.X >= RightColumnX {
		return 16, 16
	}
	return 32, 8
}
