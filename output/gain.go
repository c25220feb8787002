package output

import (
	"encoding/binary"
	"math"
)

// scaleS16 stores the s16le samples of src multiplied by gain into dst,
// saturating at the 16-bit range. A trailing odd byte is dropped.
func scaleS16(dst, src []byte, gain float32) []byte {
	n := len(src) &^ 1
	if cap(dst) < n {
		dst = make([]byte, n)
	}
	dst = dst[:n]

	for i := 0; i < n; i += 2 {
		sample := float32(int16(binary.LittleEndian.Uint16(src[i:]))) * gain
		sample = float32(math.Max(math.MinInt16, math.Min(math.MaxInt16, float64(sample))))
		binary.LittleEndian.PutUint16(dst[i:], uint16(int16(sample)))
	}

	return dst
}
