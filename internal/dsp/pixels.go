package dsp

// getPixels copies an 8x8 block of 8-bit samples into dst.
func getPixels(dst *[64]int16, src []byte, stride int) {
	_ = src[7*stride+7]
	for y := 0; y < 8; y++ {
		row := src[y*stride : y*stride+8]
		d := dst[y*8 : y*8+8]
		for x, p := range row {
			d[x] = int16(p)
		}
	}
}

// vsadIntra8 returns the sum of |s[x] - s[x+stride]| over the h-1 row
// pairs of an 8-wide block. Large values mean strong vertical detail,
// which the encoder compares against the same metric computed per field.
func vsadIntra8(src []byte, stride, h int) int {
	score := 0
	for y := 1; y < h; y++ {
		a := src[(y-1)*stride : (y-1)*stride+8]
		b := src[y*stride : y*stride+8]
		for x := 0; x < 8; x++ {
			d := int(a[x]) - int(b[x])
			if d < 0 {
				d = -d
			}
			score += d
		}
	}
	return score
}
