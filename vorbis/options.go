package vorbis

const (
	// DataChunkSize is the amount of data read from the physical bitstream on each iteration.
	DataChunkSize = 8192

	// DefaultMaxDesyncBytes is how much garbage is skipped looking for a page
	// before the stream is considered lost.
	DefaultMaxDesyncBytes = 256 * 1024
)

type Option func(*Decoder)

// WithZeroGranuleEOS controls whether a first audio page with granule position
// 0 ends the stream. Some muxers emit such a page when a stream is truncated.
func WithZeroGranuleEOS(enabled bool) Option {
	return func(d *Decoder) {
		d.zeroGranuleEOS = enabled
	}
}

func WithMaxDesyncBytes(n int64) Option {
	return func(d *Decoder) {
		if n > 0 {
			d.maxDesyncBytes = n
		}
	}
}

// WithSynthesizer replaces the synthesis backend.
func WithSynthesizer(newSynth func() Synthesizer) Option {
	return func(d *Decoder) {
		if newSynth != nil {
			d.newSynth = newSynth
		}
	}
}
