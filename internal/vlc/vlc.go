// Package vlc implements the DV AC coefficient variable-length code.
//
// A coefficient is coded as a (run, level, sign) triple where run counts the
// zero coefficients skipped in scan order. Short pairs map directly to one
// code; the rest are coded as a run code followed by a level code.
package vlc

// Map dimensions of the compact lookup table.
const (
	MapRunSize   = 15
	MapLevelSize = 23
)

// MaxLevel is the largest magnitude the level escape can carry.
const MaxLevel = 255

// End-of-block stamp.
const (
	EOBCode = 0x6
	EOBBits = 4
)

type code struct {
	vlc  uint32
	size uint8
}

// vlcMap[run][0] holds the "run zeros" codes used as escape prefixes;
// vlcMap[run][level] for level > 0 holds the code with a zero sign bit.
var vlcMap [MapRunSize][MapLevelSize]code

func init() {
	initMap()
}

func initMap() {
	add := func(e entry) {
		if int(e.run) >= MapRunSize || int(e.level) >= MapLevelSize {
			return
		}
		c := &vlcMap[e.run][e.level]
		if c.size != 0 {
			return
		}
		if e.level != 0 {
			c.vlc = uint32(e.code) << 1
			c.size = e.len + 1
		} else {
			c.vlc = uint32(e.code)
			c.size = e.len
		}
	}
	for _, e := range shortCodes {
		add(e)
	}
	for r := 0; r < 64; r++ {
		add(entry{code: uint16(runCodeBase | r), len: runCodeBits, run: uint8(r)})
	}
	for l := 0; l <= MaxLevel; l++ {
		add(entry{code: uint16(levelCodeBase | l), len: levelCodeBits, level: uint8(l)})
	}

	// Pairs without a dedicated code become "run-1 zeros" + "level at run 0".
	for r := 1; r < MapRunSize; r++ {
		for l := 1; l < MapLevelSize; l++ {
			c := &vlcMap[r][l]
			if c.size != 0 {
				continue
			}
			pre := vlcMap[r-1][0]
			lc := vlcMap[0][l]
			c.vlc = lc.vlc | pre.vlc<<lc.size
			c.size = pre.size + lc.size
		}
	}
}

// Encode returns the code for a run of zeros followed by a coefficient of
// magnitude level (1..MaxLevel) with the given sign bit (1 = negative).
func Encode(run, level int, sign uint8) (uint32, int) {
	if run < MapRunSize && level < MapLevelSize {
		c := vlcMap[run][level]
		return c.vlc | uint32(sign), int(c.size)
	}
	var v uint32
	var size int
	if level < MapLevelSize {
		c := vlcMap[0][level]
		v = c.vlc | uint32(sign)
		size = int(c.size)
	} else {
		v = (levelCodeBase << 1) | uint32(level)<<1 | uint32(sign)
		size = levelCodeBits + 1
	}
	if run > 0 {
		if run < 16 {
			pre := vlcMap[run-1][0]
			v |= pre.vlc << uint(size)
			size += int(pre.size)
		} else {
			v |= uint32(runCodeBase|(run-1)) << uint(size)
			size += runCodeBits
		}
	}
	return v, size
}

// Size returns the length in bits of Encode(run, level, sign). It does not
// depend on the sign.
func Size(run, level int) int {
	if run < MapRunSize && level < MapLevelSize {
		return int(vlcMap[run][level].size)
	}
	size := levelCodeBits + 1
	if level < MapLevelSize {
		size = int(vlcMap[0][level].size)
	}
	if run > 0 {
		if run < 16 {
			size += int(vlcMap[run-1][0].size)
		} else {
			size += runCodeBits
		}
	}
	return size
}
