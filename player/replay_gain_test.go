//go:build test_unit

package player

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/vorbis"
)

func TestReadReplayGainMetadata(t *testing.T) {
	rg, err := readReplayGainMetadata(vorbis.Info{Comments: []string{
		"TITLE=test",
		"REPLAYGAIN_TRACK_GAIN=-6.00 dB",
		"replaygain_track_peak=0.5",
		"REPLAYGAIN_ALBUM_GAIN=+1.5 dB",
	}})
	require.NoError(t, err)
	require.NotNil(t, rg)

	assert.Equal(t, float32(-6), rg.trackGainDb)
	assert.Equal(t, float32(0.5), rg.trackPeak)
	assert.Equal(t, float32(1.5), rg.albumGainDb)
	assert.Zero(t, rg.albumPeak)
}

func TestReadReplayGainMetadata_Missing(t *testing.T) {
	rg, err := readReplayGainMetadata(vorbis.Info{Comments: []string{"ARTIST=someone"}})
	require.NoError(t, err)
	assert.Nil(t, rg)
}

func TestReadReplayGainMetadata_Invalid(t *testing.T) {
	_, err := readReplayGainMetadata(vorbis.Info{Comments: []string{"REPLAYGAIN_TRACK_GAIN=loud"}})
	assert.ErrorContains(t, err, "REPLAYGAIN_TRACK_GAIN")
}

func TestReplayGainFactor(t *testing.T) {
	rg := ReplayGain{trackGainDb: -6, trackPeak: 0.5, albumGainDb: 12, albumPeak: 0.5}

	assert.InDelta(t, math.Pow(10, -6.0/20), rg.Factor(0, false), 1e-6)
	assert.InDelta(t, math.Pow(10, -9.0/20), rg.Factor(-3, false), 1e-6)

	// +12 dB would push the 0.5 peak above full scale
	assert.InDelta(t, 2, rg.Factor(0, true), 1e-6)
}

type infoSource struct {
	lwjall.ChunkSource
	info vorbis.Info
}

func (s infoSource) Info() vorbis.Info {
	return s.info
}

func TestNormalisationFactor(t *testing.T) {
	log := &lwjall.NullLogger{}

	src := infoSource{info: vorbis.Info{Comments: []string{"REPLAYGAIN_TRACK_GAIN=-20 dB"}}}
	assert.InDelta(t, 0.1, normalisationFactor(log, src, 0, false), 1e-6)

	// album gain is missing, so the factor is 0 dB
	assert.InDelta(t, 1, normalisationFactor(log, src, 0, true), 1e-6)

	assert.Equal(t, float32(1), normalisationFactor(log, lwjall.NewMockChunkSource(t), 0, false))
	assert.Equal(t, float32(1), normalisationFactor(log, infoSource{info: vorbis.Info{Comments: []string{"REPLAYGAIN_TRACK_GAIN=x"}}}, 0, false))
}
