package dsp

// BT.601 RGB -> Y'CbCr conversion using fixed-point arithmetic.
// Output is studio range: Y' in [16..235], Cb/Cr in [16..240].

const (
	yuvFix  = 16 // fixed-point precision
	yuvHalf = 1 << (yuvFix - 1)
)

// RGB -> YUV conversion coefficients.
const (
	kRGBToY0 = 16839 // 0.2568 * (1 << 16)
	kRGBToY1 = 33059 // 0.5041 * (1 << 16)
	kRGBToY2 = 6420  // 0.0979 * (1 << 16)
	kRGBToU0 = -9719
	kRGBToU1 = -19081
	kRGBToU2 = 28800
	kRGBToV0 = 28800
	kRGBToV1 = -24116
	kRGBToV2 = -4684
)

// clipUV descales a chroma accumulator carrying 1<<extra summed samples
// and clips it to [0..255].
func clipUV(uv, extra int) uint8 {
	shift := yuvFix + extra
	uv = (uv + 1<<(shift-1) + (128 << shift)) >> shift
	if uv&^0xff == 0 {
		return uint8(uv)
	}
	if uv < 0 {
		return 0
	}
	return 255
}

// RGBToY converts an RGB triple to the Y' component.
func RGBToY(r, g, b int) uint8 {
	return uint8((kRGBToY0*r + kRGBToY1*g + kRGBToY2*b + yuvHalf + (16 << yuvFix)) >> yuvFix)
}

// RGBToU converts an RGB triple to the Cb component.
func RGBToU(r, g, b int) uint8 {
	return clipUV(kRGBToU0*r+kRGBToU1*g+kRGBToU2*b, 0)
}

// RGBToV converts an RGB triple to the Cr component.
func RGBToV(r, g, b int) uint8 {
	return clipUV(kRGBToV0*r+kRGBToV1*g+kRGBToV2*b, 0)
}

// log2Small returns log2(n) for n in {1, 2, 4, 8}.
func log2Small(n int) int {
	switch n {
	case 1:
		return 0
	case 2:
		return 1
	case 4:
		return 2
	}
	return 3
}

// ConvertRGBAToYCbCr converts an RGBA raster (4 bytes per pixel, alpha
// ignored) to planar Y'CbCr. Chroma is box-filtered over subX x subY
// pixels; subX*subY must be 1, 2, 4 or 8. width and height must be
// multiples of subX and subY.
func ConvertRGBAToYCbCr(pix []byte, stride, width, height int,
	y []byte, yStride int, cb, cr []byte, cStride int, subX, subY int) {
	for j := 0; j < height; j++ {
		src := pix[j*stride : j*stride+width*4]
		dst := y[j*yStride : j*yStride+width]
		for i := range dst {
			p := src[i*4 : i*4+3]
			dst[i] = RGBToY(int(p[0]), int(p[1]), int(p[2]))
		}
	}

	extra := log2Small(subX * subY)
	cw := width / subX
	for j := 0; j < height/subY; j++ {
		cbRow := cb[j*cStride : j*cStride+cw]
		crRow := cr[j*cStride : j*cStride+cw]
		for i := 0; i < cw; i++ {
			var r, g, b int
			for dy := 0; dy < subY; dy++ {
				row := pix[(j*subY+dy)*stride:]
				for dx := 0; dx < subX; dx++ {
					p := row[(i*subX+dx)*4:]
					r += int(p[0])
					g += int(p[1])
					b += int(p[2])
				}
			}
			cbRow[i] = clipUV(kRGBToU0*r+kRGBToU1*g+kRGBToU2*b, extra)
			crRow[i] = clipUV(kRGBToV0*r+kRGBToV1*g+kRGBToV2*b, extra)
		}
	}
}
