// Command gdv encodes images into raw DV streams and inspects DV streams.
//
// Usage:
//
//	gdv enc [options] <input>...   PNG/JPEG/GIF/BMP/TIFF/WebP → DV (use "-" for stdin)
//	gdv info [options] <input.dv>  Display DV stream parameters
//
// Outputs named *.zst, or written with -z, are zstd-compressed; info reads
// compressed streams transparently.
package main

import (
	"bufio"
	"bytes"
	"flag"
	"fmt"
	"image"
	"image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/klauspost/compress/zstd"
	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"

	"github.com/deepteams/dv"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	var err error
	switch os.Args[1] {
	case "enc":
		err = runEnc(os.Args[2:])
	case "info":
		err = runInfo(os.Args[2:])
	case "profiles":
		printProfiles(os.Stdout)
	case "-h", "-help", "--help", "help":
		printUsage()
		return
	default:
		fmt.Fprintf(os.Stderr, "gdv: unknown command %q\n\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}

	if err != nil {
		fmt.Fprintf(os.Stderr, "gdv: %v\n", err)
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Fprintf(os.Stderr, `Usage:
  gdv enc [options] <input>...    Encode images to a raw DV stream
  gdv info [options] <input.dv>   Display DV stream parameters
  gdv profiles                    List the supported DV profiles

Use "-" as input to read from stdin, "-o -" to write to stdout.

Run "gdv <command> -h" for command-specific options.
`)
}

func printProfiles(w io.Writer) {
	for _, p := range dv.Profiles() {
		fmt.Fprintf(w, "%-18s %dx%d %s %d/%d fps, %d bytes/frame\n",
			p.Name, p.Width, p.Height, p.Format, p.FrameRateNum, p.FrameRateDen, p.FrameSize)
	}
}

// openInput returns an io.ReadCloser for the given path.
// If path is "-", stdin is returned (caller should not close).
func openInput(path string) (io.ReadCloser, error) {
	if path == "-" {
		return io.NopCloser(os.Stdin), nil
	}
	return os.Open(path)
}

// --- enc ---

func runEnc(args []string) error {
	fs := flag.NewFlagSet("enc", flag.ContinueOnError)
	profileName := fs.String("profile", "", `DV profile (default: chosen from the first image; see "gdv profiles")`)
	interlaced := fs.Bool("interlaced", false, "choose the 2-4-8 field DCT per block")
	deadzone := fs.Int("deadzone", -1, "quantizer dead zone 0-1024 (-1=default)")
	tff := fs.Bool("tff", false, "mark frames top field first")
	wide := fs.Bool("wide", false, "mark frames 16:9")
	workers := fs.Int("workers", 0, "segment encoding goroutines (0=GOMAXPROCS)")
	scaler := fs.String("scaler", "catmullrom", "resampling filter: catmullrom/approxbilinear/bilinear/nearest")
	smpte := fs.Bool("smpte_classes", false, "use the SMPTE 314M class thresholds")
	repeat := fs.Int("frames", 1, "frames written per still image")
	compress := fs.Bool("z", false, "zstd-compress the output (implied by a .zst output name)")
	verbose := fs.Bool("v", false, "print per-frame statistics")
	output := fs.String("o", "", `output path (default: <input>.dv, "-" for stdout)`)

	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("enc: missing input file\nUsage: gdv enc [options] <input>...")
	}
	if *repeat < 1 {
		return fmt.Errorf("enc: invalid -frames %d (must be >= 1)", *repeat)
	}

	s, err := dv.ParseScaler(*scaler)
	if err != nil {
		return fmt.Errorf("enc: %w", err)
	}
	opts := dv.DefaultOptions()
	opts.Profile = *profileName
	opts.Interlaced = *interlaced
	opts.QuantDeadzone = *deadzone
	opts.TopFieldFirst = *tff
	opts.Wide = *wide
	opts.Workers = *workers
	opts.Scaler = s
	opts.ConservativeClasses = *smpte

	inputs := fs.Args()
	outputPath := *output
	if outputPath == "" {
		if inputs[0] == "-" {
			outputPath = "output.dv"
		} else {
			base := strings.TrimSuffix(filepath.Base(inputs[0]), filepath.Ext(inputs[0]))
			outputPath = base + ".dv"
		}
		if *compress {
			outputPath += ".zst"
		}
	}
	zst := *compress || strings.HasSuffix(strings.ToLower(outputPath), ".zst")

	if outputPath == "-" {
		return encodeStream(os.Stdout, inputs, opts, *repeat, zst, *verbose)
	}
	out, err := os.Create(outputPath)
	if err != nil {
		return err
	}
	cw := &countWriter{w: out}
	if err := encodeStream(cw, inputs, opts, *repeat, zst, *verbose); err != nil {
		out.Close()
		os.Remove(outputPath)
		return err
	}
	if err := out.Close(); err != nil {
		os.Remove(outputPath)
		return err
	}
	fmt.Fprintf(os.Stderr, "Encoded %d input(s) → %s (%d bytes)\n", len(inputs), outputPath, cw.n)
	return nil
}

// countWriter counts the bytes written through it.
type countWriter struct {
	w io.Writer
	n int64
}

func (c *countWriter) Write(p []byte) (int, error) {
	n, err := c.w.Write(p)
	c.n += int64(n)
	return n, err
}

// encodeStream encodes every input in order into one DV stream on w.
func encodeStream(w io.Writer, inputs []string, opts *dv.EncoderOptions, repeat int, zst, verbose bool) error {
	var zw *zstd.Encoder
	if zst {
		var err error
		zw, err = zstd.NewWriter(w)
		if err != nil {
			return fmt.Errorf("enc: %w", err)
		}
		// Flushes what was encoded when an input fails.
		defer func() {
			if zw != nil {
				zw.Close()
			}
		}()
		w = zw
	}

	enc, err := dv.NewEncoder(w, opts)
	if err != nil {
		return fmt.Errorf("enc: %w", err)
	}
	defer enc.Close()

	write := func(img image.Image, n int) error {
		for i := 0; i < n; i++ {
			if err := enc.WriteFrame(img); err != nil {
				return fmt.Errorf("enc: %w", err)
			}
			if verbose {
				printStats(os.Stderr, enc.Frames()-1, enc.LastStats())
			}
		}
		return nil
	}

	for _, path := range inputs {
		if strings.EqualFold(filepath.Ext(path), ".gif") && path != "-" {
			err = encodeGIF(path, enc, write)
		} else {
			err = encodeStill(path, func(img image.Image) error { return write(img, repeat) })
		}
		if err != nil {
			return err
		}
	}

	if zw != nil {
		err := zw.Close()
		zw = nil
		if err != nil {
			return fmt.Errorf("enc: compressing: %w", err)
		}
	}
	if verbose {
		fmt.Fprintf(os.Stderr, "%d frames, profile %s\n", enc.Frames(), enc.Profile().Name)
	}
	return nil
}

func encodeStill(path string, write func(image.Image) error) error {
	in, err := openInput(path)
	if err != nil {
		return err
	}
	defer in.Close()
	img, _, err := image.Decode(in)
	if err != nil {
		return fmt.Errorf("enc: decoding %s: %w", path, err)
	}
	return write(img)
}

// encodeGIF composites the frames of an animated GIF and writes each one
// for as many DV frames as its delay lasts.
func encodeGIF(path string, enc *dv.Encoder, write func(image.Image, int) error) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	g, err := gif.DecodeAll(f)
	if err != nil {
		return fmt.Errorf("enc: decoding GIF: %w", err)
	}
	if len(g.Image) == 0 {
		return fmt.Errorf("enc: GIF has no frames")
	}

	canvasW, canvasH := g.Config.Width, g.Config.Height
	if canvasW == 0 || canvasH == 0 {
		canvasW = g.Image[0].Bounds().Dx()
		canvasH = g.Image[0].Bounds().Dy()
	}
	canvas := image.NewNRGBA(image.Rect(0, 0, canvasW, canvasH))

	for i, frame := range g.Image {
		b := frame.Bounds()

		var disposal byte
		if i < len(g.Disposal) {
			disposal = g.Disposal[i]
		}
		var saved []uint8
		if disposal == gif.DisposalPrevious {
			saved = saveCanvasRect(canvas, b)
		}

		draw.Draw(canvas, b, frame, b.Min, draw.Over)

		delay := 100 * time.Millisecond // default
		if i < len(g.Delay) && g.Delay[i] > 0 {
			delay = time.Duration(g.Delay[i]) * 10 * time.Millisecond
		}
		// The first frame fixes the profile, and with it the frame rate.
		if err := write(canvas, 1); err != nil {
			return fmt.Errorf("GIF frame %d: %w", i, err)
		}
		if err := write(canvas, framesFor(delay, enc.Profile())-1); err != nil {
			return fmt.Errorf("GIF frame %d: %w", i, err)
		}

		switch disposal {
		case gif.DisposalBackground:
			clearCanvasRect(canvas, b)
		case gif.DisposalPrevious:
			restoreCanvasRect(canvas, b, saved)
		}
	}
	return nil
}

// framesFor returns the number of frames of p covering d, at least one.
func framesFor(d time.Duration, p *dv.Profile) int {
	num := int64(d) * int64(p.FrameRateNum)
	den := int64(time.Second) * int64(p.FrameRateDen)
	return max(int((num+den/2)/den), 1)
}

// saveCanvasRect copies the pixel data of r from canvas.
func saveCanvasRect(canvas *image.NRGBA, r image.Rectangle) []uint8 {
	r = r.Intersect(canvas.Bounds())
	if r.Empty() {
		return nil
	}
	w := r.Dx() * 4
	saved := make([]uint8, r.Dy()*w)
	for y := r.Min.Y; y < r.Max.Y; y++ {
		srcOff := canvas.PixOffset(r.Min.X, y)
		dstOff := (y - r.Min.Y) * w
		copy(saved[dstOff:dstOff+w], canvas.Pix[srcOff:srcOff+w])
	}
	return saved
}

// restoreCanvasRect pastes previously saved pixel data back into the canvas rect.
func restoreCanvasRect(canvas *image.NRGBA, r image.Rectangle, saved []uint8) {
	r = r.Intersect(canvas.Bounds())
	if r.Empty() || saved == nil {
		return
	}
	w := r.Dx() * 4
	for y := r.Min.Y; y < r.Max.Y; y++ {
		dstOff := canvas.PixOffset(r.Min.X, y)
		srcOff := (y - r.Min.Y) * w
		copy(canvas.Pix[dstOff:dstOff+w], saved[srcOff:srcOff+w])
	}
}

// clearCanvasRect fills the given rect of the canvas with transparent black.
func clearCanvasRect(canvas *image.NRGBA, r image.Rectangle) {
	draw.Draw(canvas, r, image.Transparent, image.Point{}, draw.Src)
}

func meanQNO(h [16]int) float64 {
	sum, n := 0, 0
	for q, c := range h {
		sum += q * c
		n += c
	}
	if n == 0 {
		return 0
	}
	return float64(sum) / float64(n)
}

func printStats(w io.Writer, frame int, st dv.FrameStats) {
	fmt.Fprintf(w, "frame %d: mean QNO %.2f, rate control %d/%d segments, 2-4-8 blocks %d, classes %v, AC %d bits\n",
		frame, meanQNO(st.QNOHistogram), st.RateControlled, st.Segments, st.DCT248, st.Classes, st.ACBits)
}

// --- info ---

// zstdMagic starts every zstd frame.
var zstdMagic = []byte{0x28, 0xb5, 0x2f, 0xfd}

func runInfo(args []string) error {
	fs := flag.NewFlagSet("info", flag.ContinueOnError)
	verbose := fs.Bool("v", false, "print every frame")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() < 1 {
		return fmt.Errorf("info: missing input file\nUsage: gdv info [options] <input.dv>")
	}
	inputPath := fs.Arg(0)

	in, err := openInput(inputPath)
	if err != nil {
		return err
	}
	defer in.Close()

	br := bufio.NewReader(in)
	var r io.Reader = br
	compression := "none"
	if magic, _ := br.Peek(len(zstdMagic)); bytes.Equal(magic, zstdMagic) {
		zr, err := zstd.NewReader(br)
		if err != nil {
			return fmt.Errorf("info: %w", err)
		}
		defer zr.Close()
		r = zr
		compression = "zstd"
	}

	var (
		first  *dv.FrameInfo
		hist   [16]int
		frames int
		buf    []byte
	)
	for {
		buf, err = dv.ReadFrame(r, buf)
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("info: frame %d: %w", frames, err)
		}
		fi, err := dv.ParseFrame(buf)
		if err != nil {
			return fmt.Errorf("info: frame %d: %w", frames, err)
		}
		if first == nil {
			first = fi
		} else if fi.Profile != first.Profile {
			return fmt.Errorf("info: frame %d: profile changes from %s to %s", frames, first.Profile.Name, fi.Profile.Name)
		}
		for q, c := range fi.QNOHistogram {
			hist[q] += c
		}
		if *verbose {
			fmt.Printf("frame %d: mean QNO %.2f\n", frames, meanQNO(fi.QNOHistogram))
		}
		frames++
	}
	if first == nil {
		return fmt.Errorf("info: %s holds no DV frame", inputPath)
	}

	name := inputPath
	if inputPath == "-" {
		name = "<stdin>"
	}
	p := first.Profile
	aspect := "4:3"
	if first.Wide {
		aspect = "16:9"
	}
	order := "bottom field first"
	if first.TopFieldFirst {
		order = "top field first"
	}
	duration := time.Duration(frames) * time.Second * time.Duration(p.FrameRateDen) / time.Duration(p.FrameRateNum)

	fmt.Printf("File:        %s\n", name)
	fmt.Printf("Compression: %s\n", compression)
	fmt.Printf("Profile:     %s\n", p.Name)
	fmt.Printf("Dimensions:  %d x %d\n", p.Width, p.Height)
	fmt.Printf("Chroma:      %s\n", p.Format)
	fmt.Printf("Frame rate:  %d/%d\n", p.FrameRateNum, p.FrameRateDen)
	fmt.Printf("Aspect:      %s\n", aspect)
	fmt.Printf("Field order: %s\n", order)
	fmt.Printf("Frames:      %d\n", frames)
	fmt.Printf("Duration:    %v\n", duration.Round(time.Millisecond))
	fmt.Printf("Mean QNO:    %.2f\n", meanQNO(hist))
	return nil
}
