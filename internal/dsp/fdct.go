package dsp

import "math"

// Forward DCTs in floating point. Output is scaled by 8 relative to the
// orthonormal transform, so the DC term equals the sum of the 64 samples
// and AC terms match the integer "islow" scaling DV weights assume.

const dctScale = 8

var (
	dct8 [8][8]float64 // dct8[u][x], orthonormal 8-point basis
	dct4 [4][4]float64 // dct4[u][k], orthonormal 4-point basis
)

func initDCTTables() {
	for u := 0; u < 8; u++ {
		cu := math.Sqrt(2.0 / 8)
		if u == 0 {
			cu = math.Sqrt(1.0 / 8)
		}
		for x := 0; x < 8; x++ {
			dct8[u][x] = cu * math.Cos(float64((2*x+1)*u)*math.Pi/16)
		}
	}
	for u := 0; u < 4; u++ {
		cu := math.Sqrt(2.0 / 4)
		if u == 0 {
			cu = math.Sqrt(1.0 / 4)
		}
		for k := 0; k < 4; k++ {
			dct4[u][k] = cu * math.Cos(float64((2*k+1)*u)*math.Pi/8)
		}
	}
}

// roundCoeff rounds a scaled coefficient to int16 with saturation.
func roundCoeff(v float64) int16 {
	r := math.Round(v)
	if r > math.MaxInt16 {
		return math.MaxInt16
	}
	if r < math.MinInt16 {
		return math.MinInt16
	}
	return int16(r)
}

// rowDCT applies the horizontal 8-point DCT to every row of in and writes
// the scaled, rounded result to block.
func rowDCT(block *[64]int16, in *[64]float64) {
	for v := 0; v < 8; v++ {
		row := in[v*8 : v*8+8]
		for u := 0; u < 8; u++ {
			b := &dct8[u]
			s := b[0]*row[0] + b[1]*row[1] + b[2]*row[2] + b[3]*row[3] +
				b[4]*row[4] + b[5]*row[5] + b[6]*row[6] + b[7]*row[7]
			block[v*8+u] = roundCoeff(dctScale * s)
		}
	}
}

// fdct88 is the separable 8x8 DCT-II.
func fdct88(block *[64]int16) {
	var tmp [64]float64
	// Vertical pass.
	for x := 0; x < 8; x++ {
		var col [8]float64
		for y := 0; y < 8; y++ {
			col[y] = float64(block[y*8+x])
		}
		for v := 0; v < 8; v++ {
			b := &dct8[v]
			tmp[v*8+x] = b[0]*col[0] + b[1]*col[1] + b[2]*col[2] + b[3]*col[3] +
				b[4]*col[4] + b[5]*col[5] + b[6]*col[6] + b[7]*col[7]
		}
	}
	rowDCT(block, &tmp)
}

// fdct248 is the DV 2-4-8 DCT used for interlaced blocks. Each column is
// split into line-pair sums and differences, each transformed with a
// 4-point DCT. Frequency u of the sums lands in row 2u and frequency u of
// the differences in row 2u+1.
func fdct248(block *[64]int16) {
	var tmp [64]float64
	for x := 0; x < 8; x++ {
		var s, d [4]float64
		for k := 0; k < 4; k++ {
			a := float64(block[(2*k)*8+x])
			b := float64(block[(2*k+1)*8+x])
			s[k] = (a + b) * math.Sqrt2 / 2
			d[k] = (a - b) * math.Sqrt2 / 2
		}
		for u := 0; u < 4; u++ {
			b := &dct4[u]
			tmp[(2*u)*8+x] = b[0]*s[0] + b[1]*s[1] + b[2]*s[2] + b[3]*s[3]
			tmp[(2*u+1)*8+x] = b[0]*d[0] + b[1]*d[1] + b[2]*d[2] + b[3]*d[3]
		}
	}
	rowDCT(block, &tmp)
}
