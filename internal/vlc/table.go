package vlc

// entry is one row of the DV run/amplitude code list. Codes are listed
// without their trailing sign bit; entries with a non-zero level gain one
// extra bit for the sign when they are expanded into the map.
type entry struct {
	code  uint16
	len   uint8
	run   uint8
	level uint8
}

// shortCodes holds every code up to 12 bits except the EOB stamp, in
// canonical order. The 13-bit run codes and 15-bit amplitude codes are
// regular enough to be generated (see init).
var shortCodes = [...]entry{
	{0x0000, 2, 0, 1},
	{0x0002, 3, 0, 2},
	{0x0007, 4, 1, 1},
	{0x0008, 4, 0, 3},
	{0x0009, 4, 0, 4},
	{0x0014, 5, 2, 1},
	{0x0015, 5, 1, 2},
	{0x0016, 5, 0, 5},
	{0x0017, 5, 0, 6},
	{0x0030, 6, 3, 1},
	{0x0031, 6, 4, 1},
	{0x0032, 6, 0, 7},
	{0x0033, 6, 0, 8},
	{0x0068, 7, 5, 1},
	{0x0069, 7, 6, 1},
	{0x006a, 7, 2, 2},
	{0x006b, 7, 1, 3},
	{0x006c, 7, 1, 4},
	{0x006d, 7, 0, 9},
	{0x006e, 7, 0, 10},
	{0x006f, 7, 0, 11},
	{0x00e0, 8, 7, 1},
	{0x00e1, 8, 8, 1},
	{0x00e2, 8, 9, 1},
	{0x00e3, 8, 10, 1},
	{0x00e4, 8, 3, 2},
	{0x00e5, 8, 4, 2},
	{0x00e6, 8, 2, 3},
	{0x00e7, 8, 1, 5},
	{0x00e8, 8, 1, 6},
	{0x00e9, 8, 1, 7},
	{0x00ea, 8, 0, 12},
	{0x00eb, 8, 0, 13},
	{0x00ec, 8, 0, 14},
	{0x00ed, 8, 0, 15},
	{0x00ee, 8, 0, 16},
	{0x00ef, 8, 0, 17},
	{0x01e0, 9, 11, 1},
	{0x01e1, 9, 12, 1},
	{0x01e2, 9, 13, 1},
	{0x01e3, 9, 14, 1},
	{0x01e4, 9, 5, 2},
	{0x01e5, 9, 6, 2},
	{0x01e6, 9, 3, 3},
	{0x01e7, 9, 4, 3},
	{0x01e8, 9, 2, 4},
	{0x01e9, 9, 2, 5},
	{0x01ea, 9, 1, 8},
	{0x01eb, 9, 0, 18},
	{0x01ec, 9, 0, 19},
	{0x01ed, 9, 0, 20},
	{0x01ee, 9, 0, 21},
	{0x01ef, 9, 0, 22},
	{0x03e0, 10, 5, 3},
	{0x03e1, 10, 3, 4},
	{0x03e2, 10, 3, 5},
	{0x03e3, 10, 2, 6},
	{0x03e4, 10, 1, 9},
	{0x03e5, 10, 1, 10},
	{0x03e6, 10, 1, 11},
	{0x07ce, 11, 0, 0},
	{0x07cf, 11, 1, 0},
	{0x07d0, 11, 6, 3},
	{0x07d1, 11, 4, 4},
	{0x07d2, 11, 3, 6},
	{0x07d3, 11, 1, 12},
	{0x07d4, 11, 1, 13},
	{0x07d5, 11, 1, 14},
	{0x0fac, 12, 2, 0},
	{0x0fad, 12, 3, 0},
	{0x0fae, 12, 4, 0},
	{0x0faf, 12, 5, 0},
	{0x0fb0, 12, 7, 2},
	{0x0fb1, 12, 8, 2},
	{0x0fb2, 12, 9, 2},
	{0x0fb3, 12, 10, 2},
	{0x0fb4, 12, 7, 3},
	{0x0fb5, 12, 8, 3},
	{0x0fb6, 12, 4, 5},
	{0x0fb7, 12, 3, 7},
	{0x0fb8, 12, 2, 7},
	{0x0fb9, 12, 2, 8},
	{0x0fba, 12, 2, 9},
	{0x0fbb, 12, 2, 10},
	{0x0fbc, 12, 2, 11},
	{0x0fbd, 12, 1, 15},
	{0x0fbe, 12, 1, 16},
	{0x0fbf, 12, 1, 17},
}

// Long code families.
const (
	runCodeBase   = 0x1f80 // 13 bits, low 6 bits carry the run
	runCodeBits   = 13
	levelCodeBase = 0x7f00 // 15 bits, low 8 bits carry the level
	levelCodeBits = 15
)
