package dif

import (
	"fmt"

	"github.com/deepteams/dv/internal/profile"
)

// Info describes a parsed DV frame.
type Info struct {
	Profile       *profile.Profile
	DSF           int
	STYPE         int
	APT           int
	Wide          bool
	TopFieldFirst bool
	Interlaced    bool

	// QNO holds the quantization number of every video DIF in frame order.
	QNO []uint8
}

// QNOHistogram counts the macroblocks coded with each quantization number.
func (fi *Info) QNOHistogram() [profile.NumQNO]int {
	var h [profile.NumQNO]int
	for _, q := range fi.QNO {
		h[q]++
	}
	return h
}

// Probe identifies the DV system of a frame from its first DIF sequence.
// It needs the six control DIFs of the sequence.
func Probe(data []byte) (*profile.Profile, error) {
	if len(data) < profile.ControlDIFsCount*BlockSize {
		return nil, ErrTruncated
	}
	if SectionType(data) != SectHeader {
		return nil, fmt.Errorf("%w: frame starts with section %#x", ErrInvalidID, data[0])
	}
	hp := data[IDSize : IDSize+PackSize]
	var dsf int
	switch hp[0] {
	case PackHeader525:
		dsf = 0
	case PackHeader625:
		dsf = 1
	default:
		return nil, fmt.Errorf("%w: header pack %#x", ErrInvalidID, hp[0])
	}
	apt := int(hp[1] & 0x07)

	vs, err := findPack(data, PackVideoSource)
	if err != nil {
		return nil, err
	}
	stype := int(vs[3] & 0x1f)
	if int(vs[3]>>5&1) != dsf {
		return nil, fmt.Errorf("%w: header and video source packs disagree on the system", ErrInvalidID)
	}
	p := profile.Lookup(dsf, stype, apt)
	if p == nil {
		return nil, fmt.Errorf("%w: dsf %d stype %d apt %d", ErrUnsupported, dsf, stype, apt)
	}
	return p, nil
}

// FrameSize returns the size of the frame starting at data, which must
// hold at least its first six DIF blocks.
func FrameSize(data []byte) (int, error) {
	p, err := Probe(data)
	if err != nil {
		return 0, err
	}
	return p.FrameSize, nil
}

// findPack returns the first pack with the given ID in the VAUX DIFs of
// the first DIF sequence.
func findPack(data []byte, id byte) ([]byte, error) {
	start := (HeaderDIFs + SubcodeDIFs) * BlockSize
	for j := 0; j < VAUXDIFs; j++ {
		d := data[start+j*BlockSize : start+(j+1)*BlockSize]
		if SectionType(d) != SectVAUX {
			return nil, fmt.Errorf("%w: VAUX block %d has section %#x", ErrInvalidID, j, d[0])
		}
		for k := 0; k < PacksPerVAUX; k++ {
			pack := d[IDSize+k*PackSize : IDSize+(k+1)*PackSize]
			if pack[0] == id {
				return pack, nil
			}
		}
	}
	return nil, fmt.Errorf("%w: %#x", ErrNoPack, id)
}

// Parse checks the DIF structure of a complete frame and extracts its
// system parameters and per-macroblock quantization numbers.
func Parse(data []byte) (*Info, error) {
	p, err := Probe(data)
	if err != nil {
		return nil, err
	}
	if len(data) < p.FrameSize {
		return nil, fmt.Errorf("%w: %d of %d bytes", ErrTruncated, len(data), p.FrameSize)
	}

	fi := &Info{
		Profile: p,
		DSF:     p.DSF,
		STYPE:   p.VideoSType,
		APT:     int(data[IDSize+1] & 0x07),
		QNO:     make([]uint8, 0, p.NDIFChan*p.DIFSegSize*profile.VideoDIFsPerSeq),
	}
	vc, err := findPack(data, PackVideoControl)
	if err != nil {
		return nil, err
	}
	fi.Wide = vc[2]&0x07 == aspectWide
	fi.TopFieldFirst = vc[3]&secondFieldFlag == 0
	fi.Interlaced = vc[3]&interlacedFlag != 0

	for ch := 0; ch < p.NDIFChan; ch++ {
		for seq := 0; seq < p.DIFSegSize; seq++ {
			s := data[sequenceOffset(p, ch, seq):]
			if err := checkSequence(s, ch, seq); err != nil {
				return nil, err
			}
			for j := 0; j < profile.VideoDIFsPerSeq; j++ {
				d := s[videoDIFIndex(j)*BlockSize:]
				fi.QNO = append(fi.QNO, d[IDSize]&0x0f)
			}
		}
	}
	return fi, nil
}

// checkSequence verifies the ID of every block of one DIF sequence.
func checkSequence(s []byte, ch, seq int) error {
	check := func(i, sect, num int) error {
		d := s[i*BlockSize:]
		switch {
		case int(d[0]) != sect:
			return fmt.Errorf("%w: channel %d sequence %d block %d: section %#x, want %#x",
				ErrInvalidID, ch, seq, i, d[0], sect)
		case int(d[1]>>4) != seq || int(d[1]>>3&1) != ch&1:
			return fmt.Errorf("%w: channel %d sequence %d block %d: sequence byte %#x",
				ErrInvalidID, ch, seq, i, d[1])
		case int(d[2]) != num:
			return fmt.Errorf("%w: channel %d sequence %d block %d: number %d, want %d",
				ErrInvalidID, ch, seq, i, d[2], num)
		}
		return nil
	}

	i := 0
	if err := check(i, SectHeader, 0); err != nil {
		return err
	}
	i++
	for j := 0; j < SubcodeDIFs; j++ {
		if err := check(i, SectSubcode, j); err != nil {
			return err
		}
		i++
	}
	for j := 0; j < VAUXDIFs; j++ {
		if err := check(i, SectVAUX, j); err != nil {
			return err
		}
		i++
	}
	for j := 0; j < profile.VideoDIFsPerSeq; j++ {
		if j%videoPerAudio == 0 {
			if err := check(i, SectAudio, j/videoPerAudio); err != nil {
				return err
			}
			i++
		}
		if err := check(i, SectVideo, j); err != nil {
			return err
		}
		i++
	}
	return nil
}
