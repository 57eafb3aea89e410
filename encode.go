package dv

import (
	"fmt"
	"image"
	"io"
	"runtime"
	"strings"
	"sync"
	"sync/atomic"

	"golang.org/x/image/draw"

	"github.com/deepteams/dv/internal/dif"
	"github.com/deepteams/dv/internal/enc"
	"github.com/deepteams/dv/internal/pool"
	"github.com/deepteams/dv/internal/profile"
)

// Scaler selects the resampling filter used when an image does not match
// the profile raster.
type Scaler int

const (
	ScalerCatmullRom Scaler = iota
	ScalerApproxBiLinear
	ScalerBiLinear
	ScalerNearest
)

var scalerNames = [...]string{"catmullrom", "approxbilinear", "bilinear", "nearest"}

func (s Scaler) String() string {
	if s < 0 || int(s) >= len(scalerNames) {
		return fmt.Sprintf("Scaler(%d)", int(s))
	}
	return scalerNames[s]
}

// ParseScaler returns the scaler with the given name (case-insensitive).
func ParseScaler(name string) (Scaler, error) {
	for i, n := range scalerNames {
		if strings.EqualFold(name, n) {
			return Scaler(i), nil
		}
	}
	return 0, fmt.Errorf("%w: unknown scaler %q", ErrInvalidOption, name)
}

func (s Scaler) interpolator() draw.Interpolator {
	switch s {
	case ScalerApproxBiLinear:
		return draw.ApproxBiLinear
	case ScalerBiLinear:
		return draw.BiLinear
	case ScalerNearest:
		return draw.NearestNeighbor
	}
	return draw.CatmullRom
}

// EncoderOptions controls DV encoding parameters.
type EncoderOptions struct {
	// Profile names the DV system to encode, for example "dv25-625-420"
	// (see Profiles). When empty, the profile is chosen from the first
	// frame: a *image.YCbCr whose size and subsampling match a profile
	// selects it, otherwise images up to 480 lines high are coded as
	// dv25-525-411 and taller ones as dv25-625-420.
	Profile string

	// Interlaced enables the per-block choice between the 8x8 DCT and the
	// 2-4-8 field DCT. When false every block uses the 8x8 DCT.
	Interlaced bool

	// QuantDeadzone discards DCT coefficients whose magnitude does not
	// exceed it (0-1024, default 7). Larger values trade detail for fewer
	// rate-control passes.
	// The default value -1 (or any value < 0) is treated as 7.
	QuantDeadzone int

	// TopFieldFirst marks the frames as top field first in the VAUX
	// video control pack.
	TopFieldFirst bool

	// Wide marks the frames as 16:9.
	Wide bool

	// Workers is the number of goroutines encoding video segments.
	// Zero selects runtime.GOMAXPROCS(0).
	Workers int

	// Scaler is the filter used to resample images whose size differs from
	// the profile raster (default CatmullRom).
	Scaler Scaler

	// ConservativeClasses selects the class thresholds of SMPTE 314M
	// table 22 instead of the default assignment that keeps most blocks
	// in class 2.
	ConservativeClasses bool
}

// Options is an alias for EncoderOptions.
type Options = EncoderOptions

// DefaultOptions returns encoding options with automatic profile
// selection, deadzone 7 and CatmullRom scaling.
func DefaultOptions() *EncoderOptions {
	return &EncoderOptions{
		QuantDeadzone: -1, // sentinel: treated as 7
		Scaler:        ScalerCatmullRom,
	}
}

// validateConfig returns an error describing the first invalid parameter
// found, or nil if the configuration is valid.
func validateConfig(opts *EncoderOptions) error {
	if opts.Profile != "" && ProfileByName(opts.Profile) == nil {
		return fmt.Errorf("%w %q", ErrUnknownProfile, opts.Profile)
	}
	if opts.QuantDeadzone > enc.MaxDeadzone {
		return fmt.Errorf("%w: QuantDeadzone %d (must be 0-%d or negative sentinel)", ErrInvalidOption, opts.QuantDeadzone, enc.MaxDeadzone)
	}
	if opts.Workers < 0 {
		return fmt.Errorf("%w: Workers %d (must be >= 0)", ErrInvalidOption, opts.Workers)
	}
	if opts.Scaler < ScalerCatmullRom || opts.Scaler > ScalerNearest {
		return fmt.Errorf("%w: Scaler %d", ErrInvalidOption, opts.Scaler)
	}
	return nil
}

// resolveDeadzone returns the effective dead zone.
// Negative values (sentinels) map to 7.
func resolveDeadzone(v int) int {
	if v < 0 {
		return enc.DefaultDeadzone
	}
	return v
}

// resolveWorkers returns the effective worker count.
func resolveWorkers(v int) int {
	if v == 0 {
		return runtime.GOMAXPROCS(0)
	}
	return v
}

// resolveProfile picks the profile of an encoder whose options leave it
// unset.
func resolveProfile(img image.Image) *Profile {
	b := img.Bounds()
	if src, ok := img.(*image.YCbCr); ok {
		if p := ProfileFor(b.Dx(), b.Dy(), src.SubsampleRatio); p != nil {
			return p
		}
	}
	if b.Dy() <= 480 {
		return profile.ByName("dv25-525-411")
	}
	return profile.ByName("dv25-625-420")
}

// FrameStats summarizes the encoding of one frame.
type FrameStats struct {
	Segments       int
	RateControlled int                 // segments whose blocks did not fit at QNO 15
	QNOHistogram   [profile.NumQNO]int // macroblocks per quantization number
	Classes        [4]int              // blocks per class number
	DCT248         int                 // blocks coded with the 2-4-8 DCT
	ACBits         int                 // AC bits kept after rate control
}

func (s *FrameStats) add(st *enc.Stats) {
	s.Segments++
	if st.RateCtrl {
		s.RateControlled++
	}
	for _, q := range st.QNO {
		s.QNOHistogram[q]++
	}
	for c, n := range st.Classes {
		s.Classes[c] += n
	}
	s.DCT248 += st.DCT248
	s.ACBits += st.ACBits
}

func (s *FrameStats) merge(o *FrameStats) {
	s.Segments += o.Segments
	s.RateControlled += o.RateControlled
	for i, n := range o.QNOHistogram {
		s.QNOHistogram[i] += n
	}
	for i, n := range o.Classes {
		s.Classes[i] += n
	}
	s.DCT248 += o.DCT248
	s.ACBits += o.ACBits
}

// Encoder writes a raw DV stream: a sequence of frames of one profile.
// An Encoder is not safe for concurrent use.
type Encoder struct {
	w       io.Writer
	opts    EncoderOptions
	p       *Profile
	q       enc.Quantizer
	hdr     dif.Header
	workers int

	y, cb, cr []byte
	rgba      *image.RGBA

	frames int
	stats  FrameStats
	closed bool
}

// NewEncoder returns an Encoder writing to w. If opts is nil,
// DefaultOptions is used.
func NewEncoder(w io.Writer, opts *EncoderOptions) (*Encoder, error) {
	if opts == nil {
		opts = DefaultOptions()
	}
	if err := validateConfig(opts); err != nil {
		return nil, err
	}
	e := &Encoder{
		w:       w,
		opts:    *opts,
		workers: resolveWorkers(opts.Workers),
		hdr:     dif.Header{TopFieldFirst: opts.TopFieldFirst, Wide: opts.Wide},
		q: enc.Quantizer{
			Deadzone:   resolveDeadzone(opts.QuantDeadzone),
			Interlaced: opts.Interlaced,
		},
	}
	if opts.ConservativeClasses {
		e.q.Classes = &enc.SMPTEClasses
	}
	if opts.Profile != "" {
		e.p = ProfileByName(opts.Profile)
	}
	return e, nil
}

// Profile returns the profile of the stream, or nil when it is chosen by
// the first frame and no frame was written yet.
func (e *Encoder) Profile() *Profile { return e.p }

// Frames returns the number of frames written.
func (e *Encoder) Frames() int { return e.frames }

// LastStats returns the statistics of the last frame written.
func (e *Encoder) LastStats() FrameStats { return e.stats }

// WriteFrame encodes img as the next frame of the stream.
func (e *Encoder) WriteFrame(img image.Image) error {
	if e.closed {
		return ErrClosed
	}
	if img == nil || img.Bounds().Empty() {
		return ErrEmptyImage
	}
	if e.p == nil {
		e.p = resolveProfile(img)
	}
	f := e.convert(img)
	if err := f.Validate(e.p); err != nil {
		return fmt.Errorf("dv: %w", err)
	}

	buf := pool.Get(e.p.FrameSize)
	defer pool.Put(buf)
	if err := dif.FormatFrame(buf, e.p, e.hdr); err != nil {
		return fmt.Errorf("dv: formatting frame: %w", err)
	}
	stats, err := e.encodeSegments(f, buf)
	if err != nil {
		return fmt.Errorf("dv: frame %d: %w", e.frames, err)
	}
	if _, err := e.w.Write(buf); err != nil {
		return fmt.Errorf("dv: writing frame %d: %w", e.frames, err)
	}
	e.stats = stats
	e.frames++
	return nil
}

// encodeSegments encodes every video segment of the frame on the worker
// pool. Workers claim segments through an atomic counter; the first error
// stops all of them.
func (e *Encoder) encodeSegments(f *enc.Frame, buf []byte) (FrameStats, error) {
	chunks := e.p.WorkChunks()
	numWorkers := min(e.workers, len(chunks))

	var (
		next     atomic.Int32
		failed   atomic.Bool
		once     sync.Once
		firstErr error
		mu       sync.Mutex
		total    FrameStats
		wg       sync.WaitGroup
	)
	wg.Add(numWorkers)
	for w := 0; w < numWorkers; w++ {
		go func() {
			defer wg.Done()
			var local FrameStats
			var st enc.Stats
			for !failed.Load() {
				i := int(next.Add(1) - 1)
				if i >= len(chunks) {
					break
				}
				if err := enc.EncodeSegmentStats(&e.q, e.p, f, &chunks[i], buf, &st); err != nil {
					once.Do(func() {
						firstErr = err
						failed.Store(true)
					})
					return
				}
				local.add(&st)
			}
			mu.Lock()
			total.merge(&local)
			mu.Unlock()
		}()
	}
	wg.Wait()
	if firstErr != nil {
		return FrameStats{}, firstErr
	}
	return total, nil
}

// Close releases the encoder's buffers. It does not close the underlying
// writer. Further calls to WriteFrame return ErrClosed.
func (e *Encoder) Close() error {
	if e.closed {
		return nil
	}
	e.closed = true
	for _, b := range [][]byte{e.y, e.cb, e.cr} {
		if b != nil {
			pool.Put(b)
		}
	}
	e.y, e.cb, e.cr, e.rgba = nil, nil, nil, nil
	return nil
}

// Encode writes img as a single DV frame to w. If opts is nil,
// DefaultOptions is used.
func Encode(w io.Writer, img image.Image, opts *EncoderOptions) error {
	e, err := NewEncoder(w, opts)
	if err != nil {
		return err
	}
	defer e.Close()
	return e.WriteFrame(img)
}
