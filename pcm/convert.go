// Package pcm converts planar float samples into interleaved signed 16-bit
// little endian frames.
package pcm

import "math"

// Block holds synthesized samples, one plane per channel. Planes have equal length.
type Block [][]float32

// Frames returns the number of samples per channel.
func (b Block) Frames() int {
	if len(b) == 0 {
		return 0
	}
	return len(b[0])
}

// Slice returns the first n frames of every plane.
func (b Block) Slice(n int) Block {
	out := make(Block, len(b))
	for c, plane := range b {
		out[c] = plane[:n]
	}
	return out
}

// SampleToInt16 scales a sample in [-1, 1] to the 16-bit range, rounding to
// the nearest value and saturating out of range input. NaN maps to 0.
func SampleToInt16(s float32) int16 {
	if s != s {
		return 0
	}

	v := math.Round(float64(s) * 32767)
	if v > math.MaxInt16 {
		return math.MaxInt16
	} else if v < math.MinInt16 {
		return math.MinInt16
	}
	return int16(v)
}

// Size returns the number of bytes Convert produces for the block.
func Size(block Block, channels int) int {
	return block.Frames() * channels * 2
}

// Convert interleaves the first channels planes of block into s16le bytes.
func Convert(block Block, channels int) []byte {
	out := make([]byte, Size(block, channels))
	ConvertInto(out, block, channels)
	return out
}

// ConvertInto writes as many whole frames of block as fit into dst and returns
// the number of bytes written.
func ConvertInto(dst []byte, block Block, channels int) int {
	if channels <= 0 || len(block) < channels {
		return 0
	}

	frames := min(block.Frames(), len(dst)/(2*channels))
	for c := 0; c < channels; c++ {
		plane := block[c]
		ptr := 2 * c
		for i := 0; i < frames; i++ {
			v := uint16(SampleToInt16(plane[i]))
			dst[ptr] = byte(v)
			dst[ptr+1] = byte(v >> 8)
			ptr += 2 * channels
		}
	}

	return frames * channels * 2
}
