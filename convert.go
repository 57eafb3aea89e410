package dv

import (
	"image"

	"golang.org/x/image/draw"

	"github.com/deepteams/dv/internal/dsp"
	"github.com/deepteams/dv/internal/enc"
	"github.com/deepteams/dv/internal/pool"
)

// Full-range (JFIF) to studio-range Y'CbCr mappings.
var (
	lumaRange   [256]uint8
	chromaRange [256]uint8
)

func init() {
	for v := 0; v < 256; v++ {
		lumaRange[v] = uint8(16 + (v*219+127)/255)
		c := (v-128)*224 + 127
		if c < 0 {
			c -= 254
		}
		chromaRange[v] = uint8(128 + c/255)
	}
}

// convert returns the image in the planar layout of the encoder's profile.
// The planes are owned by the encoder and reused by the next frame.
func (e *Encoder) convert(img image.Image) *enc.Frame {
	p := e.p
	cw, ch := p.ChromaSize()
	if e.y == nil {
		e.y = pool.Get(p.Width * p.Height)
		e.cb = pool.Get(cw * ch)
		e.cr = pool.Get(cw * ch)
	}
	f := &enc.Frame{Y: e.y, Cb: e.cb, Cr: e.cr, YStride: p.Width, CStride: cw}

	b := img.Bounds()
	sameSize := b.Dx() == p.Width && b.Dy() == p.Height
	if src, ok := img.(*image.YCbCr); ok && sameSize && src.SubsampleRatio == subsampleRatio(p.Format) {
		e.copyYCbCr(f, src)
		return f
	}

	if e.rgba == nil {
		e.rgba = image.NewRGBA(image.Rect(0, 0, p.Width, p.Height))
	}
	if sameSize {
		draw.Draw(e.rgba, e.rgba.Rect, img, b.Min, draw.Src)
	} else {
		e.opts.Scaler.interpolator().Scale(e.rgba, e.rgba.Rect, img, b, draw.Src, nil)
	}
	sx, sy := p.Format.Subsampling()
	dsp.ConvertRGBAToYCbCr(e.rgba.Pix, e.rgba.Stride, p.Width, p.Height,
		f.Y, f.YStride, f.Cb, f.Cr, f.CStride, sx, sy)
	return f
}

// copyYCbCr copies a full-range picture of the profile's raster and
// subsampling into the studio-range planes of f.
func (e *Encoder) copyYCbCr(f *enc.Frame, src *image.YCbCr) {
	p := e.p
	b := src.Rect
	for j := 0; j < p.Height; j++ {
		row := src.Y[src.YOffset(b.Min.X, b.Min.Y+j):]
		dst := f.Y[j*f.YStride : j*f.YStride+p.Width]
		for i := range dst {
			dst[i] = lumaRange[row[i]]
		}
	}

	cw, ch := p.ChromaSize()
	_, sy := p.Format.Subsampling()
	for j := 0; j < ch; j++ {
		off := src.COffset(b.Min.X, b.Min.Y+j*sy)
		cb, cr := src.Cb[off:], src.Cr[off:]
		dcb := f.Cb[j*f.CStride : j*f.CStride+cw]
		dcr := f.Cr[j*f.CStride : j*f.CStride+cw]
		for i := range dcb {
			dcb[i] = chromaRange[cb[i]]
			dcr[i] = chromaRange[cr[i]]
		}
	}
}
