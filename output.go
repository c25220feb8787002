package go_lwjall

import (
	"fmt"
	"time"
)

// Format describes the PCM data handed to an output device. It is announced
// once the stream headers are known and before any audio is produced.
type Format struct {
	SampleRate    int
	Channels      int
	BitsPerSample int
	Signed        bool
	LittleEndian  bool
}

// NewS16LEFormat returns the interleaved signed 16-bit little endian format
// produced by the decoder.
func NewS16LEFormat(sampleRate, channels int) Format {
	return Format{
		SampleRate:    sampleRate,
		Channels:      channels,
		BitsPerSample: 16,
		Signed:        true,
		LittleEndian:  true,
	}
}

// FrameSize is the number of bytes of one sample for every channel.
func (f Format) FrameSize() int {
	return f.Channels * f.BitsPerSample / 8
}

// Duration returns the playback time of n bytes in this format.
func (f Format) Duration(n int) time.Duration {
	if f.SampleRate <= 0 || f.FrameSize() <= 0 {
		return 0
	}

	frames := int64(n / f.FrameSize())
	return time.Duration(frames) * time.Second / time.Duration(f.SampleRate)
}

func (f Format) String() string {
	sign, endian := "u", "be"
	if f.Signed {
		sign = "s"
	}
	if f.LittleEndian {
		endian = "le"
	}

	return fmt.Sprintf("%s%d%s %dHz %dch", sign, f.BitsPerSample, endian, f.SampleRate, f.Channels)
}
