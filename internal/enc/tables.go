package enc

// BudgetBits is the AC bit capacity of one video segment: five macroblocks
// of four 100-bit luma and two 68-bit chroma payloads.
const BudgetBits = (100*4 + 68*2) * 5

// weightBits is the fixed-point precision of the weight tables. The extra
// shift of 4 removes the 8x DCT scaling and the doubled weights.
const weightBits = 18

// areaStart[a] is the first scan position of area a; areaStart[4] closes
// the last area.
var areaStart = [5]int{1, 6, 21, 43, 64}

// zigzag88 maps scan positions to natural positions for 8x8 blocks.
var zigzag88 = [64]uint8{
	0, 1, 8, 16, 9, 2, 3, 10,
	17, 24, 32, 25, 18, 11, 4, 5,
	12, 19, 26, 33, 40, 48, 41, 34,
	27, 20, 13, 6, 7, 14, 21, 28,
	35, 42, 49, 56, 57, 50, 43, 36,
	29, 22, 15, 23, 30, 37, 44, 51,
	58, 59, 52, 45, 38, 31, 39, 46,
	53, 60, 61, 54, 47, 55, 62, 63,
}

// zigzag248 maps scan positions to natural positions for 2-4-8 blocks,
// where row 2u holds vertical frequency u of the field sums and row 2u+1
// the same frequency of the field differences.
var zigzag248 = [64]uint8{
	0, 8, 1, 9, 16, 24, 2, 10,
	17, 25, 32, 40, 48, 56, 33, 41,
	18, 26, 3, 11, 4, 12, 19, 27,
	34, 42, 49, 57, 50, 58, 35, 43,
	20, 28, 5, 13, 6, 14, 21, 29,
	36, 44, 51, 59, 52, 60, 37, 45,
	22, 30, 7, 15, 23, 31, 38, 46,
	53, 61, 54, 62, 39, 47, 55, 63,
}

// Weights in scan order, 18-bit fixed point.
var weight88 = [64]int32{
	131072, 257107, 257107, 242189, 252167, 242189, 235923, 237536,
	237536, 235923, 229376, 231390, 223754, 231390, 229376, 222935,
	224969, 217965, 217965, 224969, 222935, 200636, 218652, 211916,
	212325, 211916, 218652, 200636, 188995, 196781, 205965, 206433,
	206433, 205965, 196781, 188995, 185364, 185364, 200636, 200704,
	200636, 185364, 185364, 174609, 180568, 195068, 195068, 180568,
	174609, 170091, 175557, 189591, 175557, 170091, 165371, 170627,
	170627, 165371, 160727, 153560, 160727, 144651, 144651, 136258,
}

var weight248 = [64]int32{
	131072, 262144, 257107, 257107, 242189, 242189, 242189, 242189,
	237536, 237536, 229376, 229376, 200636, 200636, 224973, 224973,
	223754, 223754, 235923, 235923, 229376, 229376, 217965, 217965,
	211916, 211916, 196781, 196781, 185364, 185364, 206433, 206433,
	211916, 211916, 222935, 222935, 200636, 200636, 205964, 205964,
	200704, 200704, 180568, 180568, 175557, 175557, 195068, 195068,
	185364, 185364, 188995, 188995, 174606, 174606, 175557, 175557,
	170627, 170627, 153560, 153560, 165371, 165371, 144651, 144651,
}

// ClassThresholds selects the class number of a block: the class is the
// first index whose threshold is not below the block's largest weighted
// AC magnitude.
type ClassThresholds [4]int

var (
	// ImprovedClasses assigns class 2 to most blocks and class 3 only when
	// a magnitude does not fit the 8-bit level field.
	ImprovedClasses = ClassThresholds{-1, -1, 255, 0xffff}

	// SMPTEClasses is the conservative assignment of SMPTE 314M table 22.
	SMPTEClasses = ClassThresholds{12, 24, 36, 0xffff}
)

// scanTables returns the scan order and weights of a DCT mode.
func scanTables(mode DCTMode) (*[64]uint8, *[64]int32) {
	if mode == DCT248 {
		return &zigzag248, &weight248
	}
	return &zigzag88, &weight88
}
