package enc

import (
	"errors"
	"fmt"
	"sync"

	"github.com/deepteams/dv/internal/bitio"
	"github.com/deepteams/dv/internal/profile"
)

var (
	// ErrACOverflow reports AC data that did not fit the segment.
	ErrACOverflow = errors.New("enc: AC bitstream overflow")
	// ErrBufferOverflow reports a block slot written past its end.
	ErrBufferOverflow = errors.New("enc: bitstream written beyond block slot")
	// ErrShortFrame reports a frame buffer or picture too small for the profile.
	ErrShortFrame = errors.New("enc: frame buffer too small")
)

// SegmentError locates an encoding failure inside a frame.
type SegmentError struct {
	Segment    int
	Macroblock int
	Block      int
	Err        error
}

func (e *SegmentError) Error() string {
	return fmt.Sprintf("enc: segment %d macroblock %d block %d: %v", e.Segment, e.Macroblock, e.Block, e.Err)
}

func (e *SegmentError) Unwrap() error { return e.Err }

// Frame is a planar Y'CbCr picture in the layout of a profile: a full
// resolution luma plane and two chroma planes subsampled per the profile's
// chroma format.
type Frame struct {
	Y, Cb, Cr []byte
	YStride   int
	CStride   int
}

// Validate checks that the planes cover the profile raster.
func (f *Frame) Validate(p *profile.Profile) error {
	cw, ch := p.ChromaSize()
	switch {
	case f.YStride < p.Width || len(f.Y) < (p.Height-1)*f.YStride+p.Width:
		return fmt.Errorf("%w: luma plane", ErrShortFrame)
	case f.CStride < cw || len(f.Cb) < (ch-1)*f.CStride+cw || len(f.Cr) < (ch-1)*f.CStride+cw:
		return fmt.Errorf("%w: chroma planes", ErrShortFrame)
	}
	return nil
}

const segmentBlocks = profile.MBsPerSegment * profile.MaxBlocksPerMB

// segmentState is the pooled scratch of one segment encode.
type segmentState struct {
	blocks  [segmentBlocks]Block
	pbs     [segmentBlocks]bitio.SlotWriter
	scratch [64]byte // rearranged chroma of 4:1:1 right-column macroblocks
}

var segmentPool = sync.Pool{
	New: func() any { return new(segmentState) },
}

// Stats summarizes the encoding of one segment.
type Stats struct {
	QNO      [profile.MBsPerSegment]int
	Classes  [4]int // block count per class number
	ACBits   int    // AC bits after rate control, EOBs included
	DCT248   int    // blocks coded with the 2-4-8 DCT
	RateCtrl bool   // rate control was needed
}

// EncodeSegment encodes the five macroblocks of chunk from f into their
// video DIF blocks of frame. frame must hold a complete DV frame whose DIF
// IDs have already been written.
func EncodeSegment(q *Quantizer, p *profile.Profile, f *Frame, chunk *profile.WorkChunk, frame []byte) error {
	return encodeSegment(q, p, f, chunk, frame, nil)
}

// EncodeSegmentStats is EncodeSegment that also reports statistics.
func EncodeSegmentStats(q *Quantizer, p *profile.Profile, f *Frame, chunk *profile.WorkChunk, frame []byte, st *Stats) error {
	return encodeSegment(q, p, f, chunk, frame, st)
}

func encodeSegment(q *Quantizer, p *profile.Profile, f *Frame, chunk *profile.WorkChunk, frame []byte, stats *Stats) error {
	st := segmentPool.Get().(*segmentState)
	defer segmentPool.Put(st)
	return st.encode(q, p, f, chunk, frame, stats)
}

func (st *segmentState) encode(q *Quantizer, p *profile.Profile, f *Frame, chunk *profile.WorkChunk, frame []byte, stats *Stats) error {
	start := chunk.ByteOffset()
	end := start + profile.MBsPerSegment*profile.DIFBlockSize
	if len(frame) < end {
		return &SegmentError{Segment: chunk.Index, Err: ErrShortFrame}
	}
	seg := frame[start:end]

	bpm := p.BPM
	n := profile.MBsPerSegment * bpm
	blks := st.blocks[:n]
	pbs := st.pbs[:n]

	var qnos [profile.MBsPerSegment]int
	bits := 0
	for m, mb := range chunk.MB {
		qnos[m] = profile.NumQNO - 1
		bits += q.initMacroblock(st, p, f, mb, blks[m*bpm:(m+1)*bpm])
	}
	rateCtrl := fitSegment(blks, &qnos, bpm, bits)
	if err := packSegment(p, seg, blks, pbs, &qnos, chunk.Index); err != nil {
		return err
	}
	for j := range pbs {
		pbs[j].Fill(0xff)
	}

	if stats != nil {
		*stats = Stats{QNO: qnos, RateCtrl: rateCtrl}
		for j := range blks {
			b := &blks[j]
			stats.Classes[b.cno]++
			stats.ACBits += b.bits()
			if b.dctMode == DCT248 {
				stats.DCT248++
			}
		}
	}
	return nil
}

// fitSegment runs rate control on a segment whose quantized AC cost bits
// exceeds BudgetBits and reports whether it did. A segment that fits
// exactly keeps its quantization numbers.
func fitSegment(blks []Block, qnos *[profile.MBsPerSegment]int, bpm, bits int) bool {
	if bits <= BudgetBits {
		return false
	}
	guessQnos(blks, qnos, bpm, BudgetBits)
	return true
}

// packSegment writes the QNO byte and block headers of every macroblock of
// seg and packs the AC chains at block, macroblock and segment scope. The
// writers are left unpadded.
func packSegment(p *profile.Profile, seg []byte, blks []Block, pbs []bitio.SlotWriter, qnos *[profile.MBsPerSegment]int, index int) error {
	bpm := p.BPM
	for m := 0; m < profile.MBsPerSegment; m++ {
		dif := seg[m*profile.DIFBlockSize : (m+1)*profile.DIFBlockSize]
		dif[3] = byte(qnos[m]) // STA = 0
		off := 4
		mbBlks := blks[m*bpm : (m+1)*bpm]
		mbPbs := pbs[m*bpm : (m+1)*bpm]
		for i := range mbBlks {
			sz := p.BlockSizes[i] >> 3
			w := &mbPbs[i]
			b := &mbBlks[i]
			w.Reset(dif[off : off+sz])
			w.PutSignedBits(b.dcHeader(), 9)
			w.PutBits(uint32(b.dctMode), 1)
			w.PutBits(uint32(b.cno), 2)
			b.encodeAC(mbPbs[i : i+1])
			off += sz
		}
		packScope(mbBlks, mbPbs)
	}
	packScope(blks, pbs)

	for j := range blks {
		if !blks[j].packed() {
			return &SegmentError{Segment: index, Macroblock: j / bpm, Block: j % bpm, Err: ErrACOverflow}
		}
	}
	for j := range pbs {
		if pbs[j].Err() != nil {
			return &SegmentError{Segment: index, Macroblock: j / bpm, Block: j % bpm, Err: ErrBufferOverflow}
		}
	}
	return nil
}

// initMacroblock quantizes the blocks of one macroblock and returns their
// AC cost. Luma blocks come first, then Cr and Cb.
func (q *Quantizer) initMacroblock(st *segmentState, p *profile.Profile, f *Frame, mb profile.MBCoord, blks []Block) int {
	ls := f.YStride
	y := f.Y[mb.Y*8*ls+mb.X*8:]
	bits := 0
	switch {
	case p.Format == profile.YUV422:
		// 16x8 luma in the first and third slot; the others stay empty.
		bits += q.initBlock(&blks[0], y, ls, false)
		bits += q.initBlock(&blks[1], nil, ls, false)
		bits += q.initBlock(&blks[2], y[8:], ls, false)
		bits += q.initBlock(&blks[3], nil, ls, false)
	case p.Format == profile.YUV420 || mb.X >= profile.RightColumnX:
		// 16x16 luma.
		bits += q.initBlock(&blks[0], y, ls, false)
		bits += q.initBlock(&blks[1], y[8:], ls, false)
		bits += q.initBlock(&blks[2], y[8*ls:], ls, false)
		bits += q.initBlock(&blks[3], y[8*ls+8:], ls, false)
	default:
		// 32x8 luma.
		bits += q.initBlock(&blks[0], y, ls, false)
		bits += q.initBlock(&blks[1], y[8:], ls, false)
		bits += q.initBlock(&blks[2], y[16:], ls, false)
		bits += q.initBlock(&blks[3], y[24:], ls, false)
	}

	cs := f.CStride
	var cOff int
	switch p.Format {
	case profile.YUV420:
		cOff = (mb.Y>>1)*8*cs + (mb.X>>1)*8
	case profile.YUV411:
		cOff = mb.Y*8*cs + (mb.X>>2)*8
	default:
		cOff = mb.Y*8*cs + (mb.X>>1)*8
	}
	for i, plane := range [2][]byte{f.Cr, f.Cb} {
		c, stride := plane[cOff:], cs
		if p.Format == profile.YUV411 && mb.X >= profile.RightColumnX {
			// The 4x16 chroma column becomes one 8x8 block: the lower
			// eight lines fill the right half.
			for r := 0; r < 8; r++ {
				copy(st.scratch[r*8:r*8+4], c[r*cs:r*cs+4])
				copy(st.scratch[r*8+4:r*8+8], c[(r+8)*cs:(r+8)*cs+4])
			}
			c, stride = st.scratch[:], 8
		}
		bits += q.initBlock(&blks[lumaBlocks+i], c, stride, true)
	}
	return bits
}
