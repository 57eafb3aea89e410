package dv

import (
	"errors"
	"fmt"
	"image"
	"io"

	"github.com/deepteams/dv/internal/dif"
	"github.com/deepteams/dv/internal/profile"
)

// Errors returned by the encoder and the frame reader.
var (
	ErrInvalidOption  = errors.New("dv: invalid encoder option")
	ErrUnknownProfile = errors.New("dv: unknown profile")
	ErrEmptyImage     = errors.New("dv: empty image")
	ErrClosed         = errors.New("dv: encoder closed")
)

// Profile describes one DV system: raster, chroma format, frame rate and
// DIF layout.
type Profile = profile.Profile

// Profiles returns every supported profile.
func Profiles() []*Profile {
	return profile.All()
}

// ProfileByName returns the profile with the given name, or nil.
func ProfileByName(name string) *Profile {
	return profile.ByName(name)
}

// ProfileFor returns the profile that codes a width x height raster with
// the given chroma subsampling, or nil.
func ProfileFor(width, height int, sub image.YCbCrSubsampleRatio) *Profile {
	var f profile.ChromaFormat
	switch sub {
	case image.YCbCrSubsampleRatio411:
		f = profile.YUV411
	case image.YCbCrSubsampleRatio420:
		f = profile.YUV420
	case image.YCbCrSubsampleRatio422:
		f = profile.YUV422
	default:
		return nil
	}
	return profile.Find(width, height, f)
}

// subsampleRatio returns the image.YCbCr ratio of a chroma format.
func subsampleRatio(f profile.ChromaFormat) image.YCbCrSubsampleRatio {
	switch f {
	case profile.YUV411:
		return image.YCbCrSubsampleRatio411
	case profile.YUV420:
		return image.YCbCrSubsampleRatio420
	}
	return image.YCbCrSubsampleRatio422
}

// FrameInfo describes an encoded DV frame.
type FrameInfo struct {
	Profile       *Profile
	Wide          bool // 16:9
	TopFieldFirst bool
	Interlaced    bool

	// QNOHistogram counts the macroblocks coded with each quantization
	// number; 15 is the finest.
	QNOHistogram [profile.NumQNO]int
}

// ParseFrame checks the DIF structure of a complete DV frame and returns
// its parameters.
func ParseFrame(data []byte) (*FrameInfo, error) {
	fi, err := dif.Parse(data)
	if err != nil {
		return nil, fmt.Errorf("dv: parsing frame: %w", err)
	}
	return &FrameInfo{
		Profile:       fi.Profile,
		Wide:          fi.Wide,
		TopFieldFirst: fi.TopFieldFirst,
		Interlaced:    fi.Interlaced,
		QNOHistogram:  fi.QNOHistogram(),
	}, nil
}

// HeaderSize is the number of leading bytes FrameSize needs.
const HeaderSize = profile.ControlDIFsCount * profile.DIFBlockSize

// FrameSize returns the size of the frame whose first HeaderSize bytes are
// header.
func FrameSize(header []byte) (int, error) {
	n, err := dif.FrameSize(header)
	if err != nil {
		return 0, fmt.Errorf("dv: reading frame header: %w", err)
	}
	return n, nil
}

// ReadFrame reads the next frame of a raw DV stream into buf, growing it
// as needed, and returns the frame. It returns io.EOF when the stream ends
// on a frame boundary.
func ReadFrame(r io.Reader, buf []byte) ([]byte, error) {
	if cap(buf) < HeaderSize {
		buf = make([]byte, HeaderSize)
	}
	buf = buf[:HeaderSize]
	if _, err := io.ReadFull(r, buf); err != nil {
		if err == io.ErrUnexpectedEOF {
			return nil, fmt.Errorf("dv: reading frame header: %w", err)
		}
		return nil, err
	}
	n, err := FrameSize(buf)
	if err != nil {
		return nil, err
	}
	if cap(buf) < n {
		grown := make([]byte, n)
		copy(grown, buf)
		buf = grown
	}
	buf = buf[:n]
	if _, err := io.ReadFull(r, buf[HeaderSize:]); err != nil {
		if err == io.EOF {
			err = io.ErrUnexpectedEOF
		}
		return nil, fmt.Errorf("dv: reading frame: %w", err)
	}
	return buf, nil
}
