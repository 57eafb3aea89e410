package dif

import (
	"fmt"

	"github.com/deepteams/dv/internal/profile"
)

// Header carries the per-frame flags written into the VAUX packs.
type Header struct {
	TopFieldFirst bool
	Wide          bool // 16:9 display aspect
}

// FormatFrame writes the DIF skeleton of a p frame into buf: IDs and packs
// of the control blocks, 0xFF audio blocks and the IDs of the video
// blocks. Video payloads are left to the segment encoder.
func FormatFrame(buf []byte, p *profile.Profile, h Header) error {
	if len(buf) < p.FrameSize {
		return fmt.Errorf("%w: %d bytes for a %d-byte frame", ErrShortBuffer, len(buf), p.FrameSize)
	}
	pos := 0
	for ch := 0; ch < p.NDIFChan; ch++ {
		for seq := 0; seq < p.DIFSegSize; seq++ {
			fill(buf[pos:pos+profile.ControlDIFsCount*BlockSize], 0xff)

			d := buf[pos : pos+BlockSize]
			writeID(d, SectHeader, ch, seq, 0)
			writePack(d[IDSize:], headerPackID(p), p, h)
			pos += BlockSize

			for j := 0; j < SubcodeDIFs; j++ {
				d := buf[pos : pos+BlockSize]
				writeID(d, SectSubcode, ch, seq, j)
				for k := 0; k < SSYBPerDIF; k++ {
					writeSSYBID(d[IDSize+k*SSYBSize:], k, seq < p.DIFSegSize/2)
				}
				pos += BlockSize
			}

			for j := 0; j < VAUXDIFs; j++ {
				d := buf[pos : pos+BlockSize]
				writeID(d, SectVAUX, ch, seq, j)
				off := IDSize
				off += writePack(d[off:], PackVideoSource, p, h)
				off += writePack(d[off:], PackVideoControl, p, h)
				off += 7 * PackSize
				off += writePack(d[off:], PackVideoSource, p, h)
				writePack(d[off:], PackVideoControl, p, h)
				pos += BlockSize
			}

			for j := 0; j < profile.VideoDIFsPerSeq; j++ {
				if j%videoPerAudio == 0 {
					d := buf[pos : pos+BlockSize]
					fill(d, 0xff)
					writeID(d, SectAudio, ch, seq, j/videoPerAudio)
					pos += BlockSize
				}
				writeID(buf[pos:pos+BlockSize], SectVideo, ch, seq, j)
				pos += BlockSize
			}
		}
	}
	return nil
}

func fill(b []byte, v byte) {
	for i := range b {
		b[i] = v
	}
}

func headerPackID(p *profile.Profile) int {
	if p.DSF == 1 {
		return PackHeader625
	}
	return PackHeader525
}

// writeID writes a DIF block ID. The FSC bit selects the channel of
// two-channel systems; FSP is always set for SD.
func writeID(buf []byte, sect, ch, seq, num int) {
	fsc := ch & 1
	fsp := 1 - ch>>1
	buf[0] = byte(sect)
	buf[1] = byte(seq<<4 | fsc<<3 | fsp<<2 | 3)
	buf[2] = byte(num)
}

// writeSSYBID writes the ID of subcode sync block syb. firstHalf is set
// for the sequences of the first half of a channel.
func writeSSYBID(buf []byte, syb int, firstHalf bool) {
	fr := 0
	if firstHalf {
		fr = 1
	}
	if syb == 11 {
		buf[0] = byte(fr<<7 | 0x7f)
	} else {
		buf[0] = byte(fr<<7 | 0x0f)
	}
	buf[1] = byte(0xf0 | syb&0x0f)
	buf[2] = 0xff
}

// writePack writes one five-byte pack and returns its size.
func writePack(buf []byte, id int, p *profile.Profile, h Header) int {
	apt := p.APT()
	buf[0] = byte(id)
	switch id {
	case PackHeader525, PackHeader625:
		buf[1] = byte(0xf8 | apt)
		buf[2] = byte(0x0f<<3 | apt) // audio data valid
		buf[3] = byte(0x0f<<3 | apt) // video data valid
		buf[4] = byte(0x0f<<3 | apt) // subcode valid
	case PackVideoSource:
		buf[1] = 0xff
		buf[2] = 1<<7 | 1<<6 | 3<<4 | 0x0f // color, CLF invalid
		buf[3] = byte(3<<6 | p.DSF<<5 | p.VideoSType)
		buf[4] = 0xff
	case PackVideoControl:
		aspect := 0
		if h.Wide {
			aspect = aspectWide
		}
		fs := secondFieldFlag
		if h.TopFieldFirst {
			fs = 0
		}
		buf[1] = 0x3f // copy free
		buf[2] = byte(0xc8 | aspect)
		buf[3] = byte(1<<7 | fs | 1<<5 | interlacedFlag | 0x0c)
		buf[4] = 0xff
	default:
		buf[1], buf[2], buf[3], buf[4] = 0xff, 0xff, 0xff, 0xff
	}
	return PackSize
}
