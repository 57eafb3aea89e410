// Package dif defines the DV DIF block layout, formats the DIF skeleton of
// a frame (block IDs, header, subcode, VAUX and audio blocks) and parses
// frames back into their system parameters.
package dif

import (
	"errors"

	"github.com/deepteams/dv/internal/profile"
)

// Section types, the first byte of a DIF block ID.
const (
	SectHeader  = 0x1f
	SectSubcode = 0x3f
	SectVAUX    = 0x56
	SectAudio   = 0x76
	SectVideo   = 0x96
)

// Pack IDs.
const (
	PackHeader525    = 0x3f
	PackHeader625    = 0xbf
	PackVideoSource  = 0x60
	PackVideoControl = 0x61
	PackNoInfo       = 0xff
)

// Block structure sizes.
const (
	BlockSize    = profile.DIFBlockSize
	IDSize       = 3  // section type, sequence/channel, block number
	PackSize     = 5  // pack ID and four data bytes
	SSYBSize     = 8  // SSYB ID and one pack
	SSYBPerDIF   = 6  // subcode sync blocks per subcode DIF
	PacksPerVAUX = 15 // pack slots in a VAUX DIF
)

// Control blocks at the start of each DIF sequence.
const (
	HeaderDIFs  = 1
	SubcodeDIFs = 2
	VAUXDIFs    = 3
)

// videoPerAudio is the number of video DIFs following each audio DIF.
const videoPerAudio = profile.VideoDIFsPerSeq / profile.AudioDIFsPerSeq

// Video control pack flags.
const (
	aspectWide      = 0x02
	secondFieldFlag = 0x40 // set when the bottom field comes first
	interlacedFlag  = 0x10
)

// Common errors.
var (
	ErrTruncated   = errors.New("dif: truncated frame")
	ErrShortBuffer = errors.New("dif: buffer smaller than frame")
	ErrInvalidID   = errors.New("dif: unexpected DIF block ID")
	ErrNoPack      = errors.New("dif: pack not found")
	ErrUnsupported = errors.New("dif: unsupported DV system")
)

// SectionType returns the section type of a DIF block from its ID.
func SectionType(block []byte) int {
	return int(block[0])
}

// sequenceOffset returns the frame offset of DIF sequence seq of channel ch.
func sequenceOffset(p *profile.Profile, ch, seq int) int {
	return (ch*p.DIFSegSize + seq) * profile.DIFsPerSequence * BlockSize
}

// videoDIFIndex returns the position of video DIF j within its sequence.
func videoDIFIndex(j int) int {
	return profile.ControlDIFsCount + j + j/videoPerAudio + 1
}
