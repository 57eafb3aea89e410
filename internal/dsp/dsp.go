// Package dsp implements the pixel-level helpers of the DV encoder: block
// sampling, the 8x8 and 2-4-8 forward DCTs, the interlace cost metric and
// BT.601 colour conversion.
package dsp

// Function variables for dispatch.
// These are set to pure-Go implementations by Init() and can be overridden
// by platform-specific implementations in the future.
var (
	// FDCT88 transforms an 8x8 block of samples in place.
	FDCT88 func(block *[64]int16)
	// FDCT248 transforms an 8x8 block in place as two interleaved 4x8
	// fields: rows 0..3 carry the field sums, rows 4..7 the differences.
	FDCT248 func(block *[64]int16)

	// GetPixels loads an 8x8 block from src with the given line stride.
	GetPixels func(dst *[64]int16, src []byte, stride int)

	// VSADIntra8 sums the absolute vertical gradients of an 8-wide,
	// h-high block.
	VSADIntra8 func(src []byte, stride, h int) int
)

// Init initialises all function pointers to their pure-Go implementations.
// It runs from the package init and is idempotent.
func Init() {
	initDCTTables()

	FDCT88 = fdct88
	FDCT248 = fdct248
	GetPixels = getPixels
	VSADIntra8 = vsadIntra8
}

func init() {
	Init()
}
