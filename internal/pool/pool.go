// Package pool provides bucketed sync.Pool instances for the frame and
// plane buffers of the encoder. Size classes follow the SD DV frame sizes
// and the plane sizes of 720-wide rasters.
package pool

import "sync"

// Size classes for bucketed pools.
const (
	SizeDV25NTSC = 120000 // 525/60 DV25 frame; also holds any SD 4:1:1 or 4:2:0 chroma plane
	SizeDV25PAL  = 144000 // 625/50 DV25 frame
	SizeDV50NTSC = 240000 // 525/60 DV50 frame; also holds any SD 4:2:2 chroma plane
	SizeDV50PAL  = 288000 // 625/50 DV50 frame
	SizeLuma     = 720 * 576
)

// MinPooled is the smallest capacity worth pooling.
const MinPooled = 4096

var sizes = [...]int{SizeDV25NTSC, SizeDV25PAL, SizeDV50NTSC, SizeDV50PAL, SizeLuma}

// bucketIndex returns the pool index for a given size, or -1 when the size
// is larger than every class.
func bucketIndex(size int) int {
	for i, s := range sizes {
		if size <= s {
			return i
		}
	}
	return -1
}

var pools [len(sizes)]sync.Pool

func init() {
	for i := range pools {
		sz := sizes[i]
		pools[i] = sync.Pool{
			New: func() any {
				b := make([]byte, sz)
				return &b
			},
		}
	}
}

// Get returns a byte slice of exactly size bytes. The contents are not
// cleared. The caller should call Put when done.
func Get(size int) []byte {
	idx := bucketIndex(size)
	if idx < 0 {
		return make([]byte, size)
	}
	bp := pools[idx].Get().(*[]byte)
	b := *bp
	if cap(b) < size {
		b = make([]byte, size)
		*bp = b
		return b
	}
	return b[:size]
}

// Put returns a byte slice to the pool. Slices smaller than MinPooled or
// larger than every size class are dropped.
func Put(b []byte) {
	c := cap(b)
	if c < MinPooled {
		return
	}
	idx := bucketIndex(c)
	if idx < 0 {
		return
	}
	// A slice is filed under the largest class it can serve.
	if sizes[idx] > c {
		idx--
	}
	if idx < 0 {
		return
	}
	b = b[:c]
	pools[idx].Put(&b)
}
