package enc

import (
	"math/rand"
	"testing"

	"github.com/deepteams/dv/internal/vlc"
)

func TestQuantize_ZeroBlock(t *testing.T) {
	for bias, wantCno := range []int{0, 1} {
		var b Block
		b.reset()
		var coeffs [64]int16
		bits := b.quantize(&coeffs, DefaultDeadzone, &ImprovedClasses, bias)
		if bits != vlc.EOBBits {
			t.Errorf("bias %d: bits = %d, want %d", bias, bits, vlc.EOBBits)
		}
		if b.next[0] != chainEnd {
			t.Errorf("bias %d: chain starts at %d, want empty", bias, b.next[0])
		}
		if b.cno != wantCno {
			t.Errorf("bias %d: cno = %d, want %d", bias, b.cno, wantCno)
		}
		if err := b.checkChain(); err != nil {
			t.Error(err)
		}
	}
}

// Scan position 1 of an 8x8 block is natural position 1 with weight
// 257107: raw 9 weighs to level 1, raw 326 to 20 and raw 4894 to 300.
func TestQuantize_Deadzone(t *testing.T) {
	tests := []struct {
		raw, deadzone int
		want          int
	}{
		{9, 7, 1},
		{9, 8, 1},
		{9, 9, 0},
		{-9, 7, 1},
		{8, 0, 0}, // weighs to zero
		{326, DefaultDeadzone, 20},
	}
	for _, tt := range tests {
		var b Block
		b.reset()
		var coeffs [64]int16
		coeffs[1] = int16(tt.raw)
		b.quantize(&coeffs, tt.deadzone, &ImprovedClasses, 0)
		got := 0
		if b.next[0] == 1 {
			got = int(b.mb[1])
			if (tt.raw < 0) != (b.sign[1] == 1) {
				t.Errorf("raw %d: sign bit %d", tt.raw, b.sign[1])
			}
		}
		if got != tt.want {
			t.Errorf("raw %d deadzone %d: level %d, want %d", tt.raw, tt.deadzone, got, tt.want)
		}
		if err := b.checkChain(); err != nil {
			t.Error(err)
		}
	}
}

func TestQuantize_ClassThreeHalves(t *testing.T) {
	var b Block
	b.reset()
	var coeffs [64]int16
	coeffs[1] = 4894 // level 300
	coeffs[8] = -9   // scan 2, level 1: halves to zero
	coeffs[0] = 1000
	bits := b.quantize(&coeffs, DefaultDeadzone, &ImprovedClasses, 0)

	if b.cno != 3 {
		t.Fatalf("cno = %d, want 3", b.cno)
	}
	if got := chainCoefs(&b); !sameCoefs(got, []acCoef{{1, 150, false}}) {
		t.Fatalf("chain = %v, want [{1 150 false}]", got)
	}
	if want := vlc.Size(0, 150) + vlc.EOBBits; bits != want {
		t.Errorf("bits = %d, want %d", bits, want)
	}
	if b.DC() != 1000 {
		t.Errorf("DC = %d, want 1000", b.DC())
	}
	if err := b.checkChain(); err != nil {
		t.Error(err)
	}
}

func TestQuantize_Classes(t *testing.T) {
	tests := []struct {
		name    string
		classes *ClassThresholds
		raw     int16 // at scan position 1
		bias    int
		want    int
	}{
		{"improved/dc-only", &ImprovedClasses, 0, 0, 0},
		{"improved/ac", &ImprovedClasses, 326, 0, 2},
		{"improved/chroma", &ImprovedClasses, 326, 1, 3},
		{"smpte/small", &SMPTEClasses, 9, 0, 0},
		{"smpte/20", &SMPTEClasses, 326, 0, 1},
		{"smpte/20-chroma", &SMPTEClasses, 326, 1, 2},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b Block
			b.reset()
			var coeffs [64]int16
			coeffs[1] = tt.raw
			b.quantize(&coeffs, DefaultDeadzone, tt.classes, tt.bias)
			if b.Class() != tt.want {
				t.Errorf("class = %d, want %d", b.Class(), tt.want)
			}
		})
	}
}

func TestInitBlock_ChainInvariant(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	pix := make([]byte, 16*8)
	for _, interlaced := range []bool{false, true} {
		q := &Quantizer{Deadzone: DefaultDeadzone, Interlaced: interlaced}
		for iter := 0; iter < 200; iter++ {
			amp := 1 + rng.Intn(255)
			base := rng.Intn(256 - amp + 1)
			for i := range pix {
				pix[i] = byte(base + rng.Intn(amp))
			}
			var b Block
			bits := q.initBlock(&b, pix, 16, iter&1 == 1)
			if err := b.checkChain(); err != nil {
				t.Fatalf("interlaced %v iter %d: %v", interlaced, iter, err)
			}
			if bits != b.bits() {
				t.Fatalf("initBlock returned %d, block holds %d", bits, b.bits())
			}
			if b.cno < 0 || b.cno > 3 {
				t.Fatalf("cno = %d", b.cno)
			}
		}
	}
}

func TestInitBlock_Nil(t *testing.T) {
	q := &Quantizer{Deadzone: DefaultDeadzone, Interlaced: true}
	var b Block
	if bits := q.initBlock(&b, nil, 0, false); bits != vlc.EOBBits {
		t.Errorf("bits = %d, want %d", bits, vlc.EOBBits)
	}
	if b.DC() != 0 || b.Mode() != DCT88 || b.Class() != 0 {
		t.Errorf("nil block: dc %d mode %v class %d", b.DC(), b.Mode(), b.Class())
	}
	if got := b.dcHeader(); got != -256 {
		t.Errorf("dcHeader = %d, want -256", got)
	}
}

func TestGuessDCTMode(t *testing.T) {
	stripes := make([]byte, 64)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			if y&1 == 1 {
				stripes[y*8+x] = 255
			}
		}
	}
	ramp := make([]byte, 64)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			ramp[y*8+x] = byte(y * 30)
		}
	}
	tests := []struct {
		name       string
		pix        []byte
		interlaced bool
		want       DCTMode
	}{
		{"stripes", stripes, true, DCT248},
		{"stripes/progressive", stripes, false, DCT88},
		{"ramp", ramp, true, DCT88},
		{"flat", make([]byte, 64), true, DCT88},
	}
	for _, tt := range tests {
		q := &Quantizer{Interlaced: tt.interlaced}
		if got := q.guessDCTMode(tt.pix, 8); got != tt.want {
			t.Errorf("%s: mode = %v, want %v", tt.name, got, tt.want)
		}
	}
}

// Two flat fields differ only in their difference DC, which is scan
// position 1 (natural 8, weight 262144) of a 2-4-8 block: raw 4800 weighs
// to 300 and is halved in class 3.
func TestInitBlock_FieldDifferenceDC(t *testing.T) {
	pix := make([]byte, 64)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			pix[y*8+x] = 200
			if y&1 == 1 {
				pix[y*8+x] = 50
			}
		}
	}
	q := Quantizer{Deadzone: DefaultDeadzone, Interlaced: true}
	var b Block
	q.initBlock(&b, pix, 8, false)
	if b.dctMode != DCT248 {
		t.Fatalf("mode = %v, want %v", b.dctMode, DCT248)
	}
	if b.mb[0] != 8000 {
		t.Errorf("DC = %d, want 8000", b.mb[0])
	}
	if b.next[0] != 1 || b.next[1] != chainEnd {
		t.Fatalf("chain = %d -> %d, want 1 -> end", b.next[0], b.next[1])
	}
	if b.mb[1] != 150 || b.sign[1] != 0 {
		t.Errorf("scan 1 = %d (sign %d), want 150 positive", b.mb[1], b.sign[1])
	}
	if b.cno != 3 {
		t.Errorf("cno = %d, want 3", b.cno)
	}
	if err := b.checkChain(); err != nil {
		t.Error(err)
	}
}

func TestDCHeader(t *testing.T) {
	tests := []struct {
		dc   int16
		want int32
	}{
		{0, -256},
		{8192, 0},    // mid-gray block
		{16320, 254}, // all 255
		{1024, -224},
	}
	for _, tt := range tests {
		b := chainBlock(tt.dc, nil)
		if got := b.dcHeader(); got != tt.want {
			t.Errorf("dcHeader(%d) = %d, want %d", tt.dc, got, tt.want)
		}
	}
}

func BenchmarkInitBlock(b *testing.B) {
	rng := rand.New(rand.NewSource(1))
	pix := make([]byte, 16*8)
	for i := range pix {
		pix[i] = byte(rng.Intn(256))
	}
	q := &Quantizer{Deadzone: DefaultDeadzone, Interlaced: true}
	var blk Block
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		q.initBlock(&blk, pix, 16, false)
	}
}
