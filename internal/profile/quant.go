package profile

// NumQNO is the number of quantization numbers; the encoder starts every
// macroblock at the finest one, NumQNO-1.
const NumQNO = 16

// QuantShifts[qno+QuantOffset[cno]][area] is the right shift applied to
// the weighted magnitudes of an area. Rows are non-decreasing as the row
// index falls, by at most one per step.
var QuantShifts = [22][4]uint8{
	{3, 3, 4, 4},
	{3, 3, 4, 4},
	{2, 3, 3, 4},
	{2, 3, 3, 4},
	{2, 2, 3, 3},
	{2, 2, 3, 3},
	{1, 2, 2, 3},
	{1, 2, 2, 3},
	{1, 1, 2, 2},
	{1, 1, 2, 2},
	{0, 1, 1, 2},
	{0, 1, 1, 2},
	{0, 0, 1, 1},
	{0, 0, 1, 1},
	{0, 0, 0, 1},
	{0, 0, 0, 0},
	{0, 0, 0, 0},
	{0, 0, 0, 0},
	{0, 0, 0, 0},
	{0, 0, 0, 0},
	{0, 0, 0, 0},
	{0, 0, 0, 0},
}

// QuantOffset maps a class number to its row offset in QuantShifts.
var QuantOffset = [4]int{6, 3, 0, 1}

// Shift returns the area shift for a quantization and class number.
func Shift(qno, cno, area int) int {
	return int(QuantShifts[qno+QuantOffset[cno]][area])
}
