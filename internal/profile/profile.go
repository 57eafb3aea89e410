// Package profile defines the standard-definition DV system profiles, the
// quantization step tables and the video segment work chunks that map
// every segment of a frame onto its five macroblocks and DIF blocks.
package profile

import "fmt"

// DIF frame structure constants.
const (
	DIFBlockSize     = 80  // bytes per DIF block
	DIFsPerSequence  = 150 // 1 header + 2 subcode + 3 VAUX + 9 audio + 135 video
	VideoDIFsPerSeq  = 135
	AudioDIFsPerSeq  = 9
	SegmentsPerSeq   = 27 // video segments per DIF sequence
	MBsPerSegment    = 5
	MaxBlocksPerMB   = 6
	ControlDIFsCount = 6 // header, subcode and VAUX blocks leading each sequence
)

// ChromaFormat is the chroma subsampling layout of a profile.
type ChromaFormat int

const (
	YUV411 ChromaFormat = iota // 4:1:1, 32x8 macroblocks
	YUV420                     // 4:2:0, 16x16 macroblocks
	YUV422                     // 4:2:2, 16x8 macroblocks
)

func (f ChromaFormat) String() string {
	switch f {
	case YUV411:
		return "4:1:1"
	case YUV420:
		return "4:2:0"
	case YUV422:
		return "4:2:2"
	}
	return fmt.Sprintf("ChromaFormat(%d)", int(f))
}

// Subsampling returns the horizontal and vertical chroma decimation.
func (f ChromaFormat) Subsampling() (x, y int) {
	switch f {
	case YUV411:
		return 4, 1
	case YUV420:
		return 2, 2
	}
	return 2, 1
}

// Profile describes one DV system.
type Profile struct {
	Name         string
	DSF          int // 0: 525/60 system, 1: 625/50 system
	VideoSType   int // 0: 4:1:1 / 4:2:0 compression, 4: 4:2:2 compression
	FrameSize    int // bytes per frame
	DIFSegSize   int // DIF sequences per channel
	NDIFChan     int // DIF channels
	FrameRateNum int
	FrameRateDen int
	Width        int
	Height       int
	Format       ChromaFormat
	BPM          int   // blocks per macroblock
	BlockSizes   []int // bit capacity of each block slot in a macroblock
	SAR          [2][2]int

	chunks []WorkChunk
}

func (p *Profile) String() string {
	return fmt.Sprintf("%s (%dx%d %s, %d bytes/frame)", p.Name, p.Width, p.Height, p.Format, p.FrameSize)
}

// APT returns the track application ID written in header packs.
func (p *Profile) APT() int {
	if p.Format == YUV420 {
		return 0
	}
	return 1
}

// NumSegments returns the number of video segments in a frame.
func (p *Profile) NumSegments() int {
	return p.NDIFChan * p.DIFSegSize * SegmentsPerSeq
}

// WorkChunks returns the per-segment work description. The slice is
// shared and must not be modified.
func (p *Profile) WorkChunks() []WorkChunk {
	return p.chunks
}

// ChromaSize returns the chroma plane dimensions.
func (p *Profile) ChromaSize() (w, h int) {
	sx, sy := p.Format.Subsampling()
	return p.Width / sx, p.Height / sy
}

var sdBlockSizes = []int{112, 112, 112, 112, 80, 80}

var profiles = []*Profile{
	{
		Name:         "dv25-525-411",
		DSF:          0,
		VideoSType:   0,
		FrameSize:    120000,
		DIFSegSize:   10,
		NDIFChan:     1,
		FrameRateNum: 30000,
		FrameRateDen: 1001,
		Width:        720,
		Height:       480,
		Format:       YUV411,
		BPM:          6,
		BlockSizes:   sdBlockSizes,
		SAR:          [2][2]int{{8, 9}, {32, 27}},
	},
	{
		Name:         "dv25-625-420",
		DSF:          1,
		VideoSType:   0,
		FrameSize:    144000,
		DIFSegSize:   12,
		NDIFChan:     1,
		FrameRateNum: 25,
		FrameRateDen: 1,
		Width:        720,
		Height:       576,
		Format:       YUV420,
		BPM:          6,
		BlockSizes:   sdBlockSizes,
		SAR:          [2][2]int{{16, 15}, {64, 45}},
	},
	{
		Name:         "dvcpro25-625-411",
		DSF:          1,
		VideoSType:   0,
		FrameSize:    144000,
		DIFSegSize:   12,
		NDIFChan:     1,
		FrameRateNum: 25,
		FrameRateDen: 1,
		Width:        720,
		Height:       576,
		Format:       YUV411,
		BPM:          6,
		BlockSizes:   sdBlockSizes,
		SAR:          [2][2]int{{16, 15}, {64, 45}},
	},
	{
		Name:         "dv50-525-422",
		DSF:          0,
		VideoSType:   4,
		FrameSize:    240000,
		DIFSegSize:   10,
		NDIFChan:     2,
		FrameRateNum: 30000,
		FrameRateDen: 1001,
		Width:        720,
		Height:       480,
		Format:       YUV422,
		BPM:          6,
		BlockSizes:   sdBlockSizes,
		SAR:          [2][2]int{{8, 9}, {32, 27}},
	},
	{
		Name:         "dv50-625-422",
		DSF:          1,
		VideoSType:   4,
		FrameSize:    288000,
		DIFSegSize:   12,
		NDIFChan:     2,
		FrameRateNum: 25,
		FrameRateDen: 1,
		Width:        720,
		Height:       576,
		Format:       YUV422,
		BPM:          6,
		BlockSizes:   sdBlockSizes,
		SAR:          [2][2]int{{16, 15}, {64, 45}},
	},
}

func init() {
	for _, p := range profiles {
		p.chunks = buildWorkChunks(p)
	}
}

// All returns every supported profile.
func All() []*Profile {
	out := make([]*Profile, len(profiles))
	copy(out, profiles)
	return out
}

// ByName returns the profile with the given name, or nil.
func ByName(name string) *Profile {
	for _, p := range profiles {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// Find returns the first profile matching the raster and chroma format,
// or nil. For 720x576 4:1:1 this is the DVCPRO profile.
func Find(width, height int, format ChromaFormat) *Profile {
	for _, p := range profiles {
		if p.Width == width && p.Height == height && p.Format == format {
			return p
		}
	}
	return nil
}

// Lookup finds the profile described by the header fields of a frame.
// 625/50 frames with APT 0 are 4:2:0; every other STYPE 0 frame is 4:1:1.
func Lookup(dsf, stype, apt int) *Profile {
	format := YUV411
	switch {
	case stype == 4:
		format = YUV422
	case dsf == 1 && apt == 0:
		format = YUV420
	}
	for _, p := range profiles {
		if p.DSF == dsf && p.VideoSType == stype && p.Format == format {
			return p
		}
	}
	return nil
}
