package dv

import (
	"image"
	"io"
	"testing"
)

func loadTestImage(b *testing.B, w, h int) image.Image {
	b.Helper()
	return makeGradient(w, h)
}

func benchmarkEncode(b *testing.B, img image.Image, opts *EncoderOptions) {
	e, err := NewEncoder(io.Discard, opts)
	if err != nil {
		b.Fatal(err)
	}
	defer e.Close()
	if err := e.WriteFrame(img); err != nil {
		b.Fatal(err)
	}
	b.SetBytes(int64(e.Profile().FrameSize))
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if err := e.WriteFrame(img); err != nil {
			b.Fatal(err)
		}
	}
}

func BenchmarkEncode_DV25_525(b *testing.B) {
	benchmarkEncode(b, loadTestImage(b, 720, 480), withProfile("dv25-525-411"))
}

func BenchmarkEncode_DV25_625(b *testing.B) {
	benchmarkEncode(b, loadTestImage(b, 720, 576), withProfile("dv25-625-420"))
}

func BenchmarkEncode_DV50_625(b *testing.B) {
	benchmarkEncode(b, loadTestImage(b, 720, 576), withProfile("dv50-625-422"))
}

func BenchmarkEncode_Interlaced(b *testing.B) {
	opts := withProfile("dv25-625-420")
	opts.Interlaced = true
	benchmarkEncode(b, loadTestImage(b, 720, 576), opts)
}

func BenchmarkEncode_Noise(b *testing.B) {
	benchmarkEncode(b, makeNoise(720, 576, 1), withProfile("dv25-625-420"))
}

func BenchmarkEncode_SingleWorker(b *testing.B) {
	opts := withProfile("dv25-625-420")
	opts.Workers = 1
	benchmarkEncode(b, loadTestImage(b, 720, 576), opts)
}

func BenchmarkEncode_Scaled(b *testing.B) {
	benchmarkEncode(b, loadTestImage(b, 1280, 720), withProfile("dv25-625-420"))
}

func BenchmarkEncode_YCbCr(b *testing.B) {
	img := image.NewYCbCr(image.Rect(0, 0, 720, 480), image.YCbCrSubsampleRatio411)
	for i := range img.Y {
		img.Y[i] = uint8(i)
	}
	benchmarkEncode(b, img, withProfile("dv25-525-411"))
}

func BenchmarkParseFrame(b *testing.B) {
	img := loadTestImage(b, 720, 576)
	p := ProfileByName("dv25-625-420")
	var buf []byte
	{
		e, _ := NewEncoder(writerFunc(func(p []byte) (int, error) {
			buf = append(buf[:0], p...)
			return len(p), nil
		}), withProfile(p.Name))
		if err := e.WriteFrame(img); err != nil {
			b.Fatal(err)
		}
		e.Close()
	}
	b.SetBytes(int64(len(buf)))
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := ParseFrame(buf); err != nil {
			b.Fatal(err)
		}
	}
}

type writerFunc func([]byte) (int, error)

func (f writerFunc) Write(p []byte) (int, error) { return f(p) }
