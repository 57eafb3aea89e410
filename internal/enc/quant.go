package enc

import (
	"github.com/deepteams/dv/internal/dsp"
	"github.com/deepteams/dv/internal/vlc"
)

// DefaultDeadzone is the default quantizer dead zone.
const DefaultDeadzone = 7

// MaxDeadzone is the largest accepted dead zone.
const MaxDeadzone = 1024

// interlaceThreshold is subtracted from the frame VSAD before it is
// compared with the per-field VSAD.
const interlaceThreshold = 400

// Quantizer holds the per-encoder block quantization settings.
type Quantizer struct {
	// Deadzone discards raw coefficients whose magnitude is not above it.
	Deadzone int
	// Interlaced enables the per-block 2-4-8 DCT decision.
	Interlaced bool
	// Classes overrides the class thresholds; nil selects ImprovedClasses.
	Classes *ClassThresholds
}

func (q *Quantizer) classes() *ClassThresholds {
	if q.Classes == nil {
		return &ImprovedClasses
	}
	return q.Classes
}

// guessDCTMode picks the 2-4-8 transform when the two fields of the block
// are much smoother than the frame.
func (q *Quantizer) guessDCTMode(pix []byte, stride int) DCTMode {
	if !q.Interlaced {
		return DCT88
	}
	ps := dsp.VSADIntra8(pix, stride, 8) - interlaceThreshold
	if ps > 0 {
		is := dsp.VSADIntra8(pix, stride<<1, 4) + dsp.VSADIntra8(pix[stride:], stride<<1, 4)
		if ps > is {
			return DCT248
		}
	}
	return DCT88
}

// initBlock samples, transforms and quantizes one block and returns its
// AC cost in bits. A nil pix encodes an empty block that packs to a bare
// EOB.
func (q *Quantizer) initBlock(b *Block, pix []byte, stride int, chroma bool) int {
	b.reset()
	var coeffs [64]int16
	if pix != nil {
		b.dctMode = q.guessDCTMode(pix, stride)
		dsp.GetPixels(&coeffs, pix, stride)
		if b.dctMode == DCT248 {
			dsp.FDCT248(&coeffs)
		} else {
			dsp.FDCT88(&coeffs)
		}
	}
	bias := 0
	if chroma {
		bias = 1
	}
	return b.quantize(&coeffs, q.Deadzone, q.classes(), bias)
}

// quantize weights the transform coefficients of b.dctMode, builds the
// coefficient chain and assigns the class number. It returns the AC cost
// in bits.
func (b *Block) quantize(coeffs *[64]int16, deadzone int, classes *ClassThresholds, bias int) int {
	zigzag, weight := scanTables(b.dctMode)

	b.mb[0] = coeffs[0]
	maxLevel := classes[0]
	prev := 0
	for a := 0; a < 4; a++ {
		b.prev[a] = prev
		b.bitSize[a] = 0
		for i := areaStart[a]; i < areaStart[a+1]; i++ {
			level := int(coeffs[zigzag[i]])
			var sign uint8
			if level < 0 {
				level = -level
				sign = 1
			}
			if level <= deadzone {
				continue
			}
			level = int((int64(level)*int64(weight[i]) + 1<<(weightBits+3)) >> (weightBits + 4))
			if level == 0 {
				continue
			}
			b.mb[i] = int16(level)
			b.sign[i] = sign
			if level > maxLevel {
				maxLevel = level
			}
			b.bitSize[a] += vlc.Size(i-prev-1, level)
			b.next[prev] = uint8(i)
			prev = i
		}
	}
	b.next[prev] = chainEnd
	b.prev[4] = prev

	cno := 0
	for maxLevel > classes[cno] {
		cno++
	}
	cno += bias
	if cno >= 3 {
		cno = 3
		b.halve()
	}
	b.cno = cno
	return b.bits()
}

// halve divides every chain magnitude by two, unlinking the ones that
// reach zero. Magnitudes still above vlc.MaxLevel saturate.
func (b *Block) halve() {
	prev := 0
	for k := int(b.next[0]); k < chainEnd; k = int(b.next[k]) {
		b.mb[k] >>= 1
		if b.mb[k] == 0 {
			continue
		}
		if b.mb[k] > vlc.MaxLevel {
			b.mb[k] = vlc.MaxLevel
		}
		b.next[prev] = uint8(k)
		prev = k
	}
	b.next[prev] = chainEnd
	b.recomputeAreas()
}
