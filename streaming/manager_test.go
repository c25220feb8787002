//go:build test_unit

package streaming_test

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/internal/vorbistest"
	"github.com/thog92/go-lwjall/pcm"
	"github.com/thog92/go-lwjall/streaming"
	"github.com/thog92/go-lwjall/vorbis"
)

var rawSynth = []vorbis.Option{
	vorbis.WithSynthesizer(func() vorbis.Synthesizer { return vorbistest.NewRawSynthesizer() }),
}

func sineManager(t *testing.T, opts ...streaming.Option) (pcm.Block, *streaming.Manager) {
	t.Helper()

	block := vorbistest.Sine(44100, 2, 44100, 440, 0.9)
	data := vorbistest.Encode(42, vorbistest.Headers(2, 44100), vorbistest.RawPackets(block, 1024), 4)

	m, err := streaming.Open(nil, bytes.NewReader(data), rawSynth, opts...)
	require.NoError(t, err)
	return block, m
}

func TestManager_Format(t *testing.T) {
	_, m := sineManager(t)
	defer func() { _ = m.Close() }()

	f := m.Format()
	assert.Equal(t, 44100, f.SampleRate)
	assert.Equal(t, 2, f.Channels)
	assert.Equal(t, 16, f.BitsPerSample)
	assert.True(t, f.Signed)
	assert.True(t, f.LittleEndian)
	assert.Equal(t, 4, f.FrameSize())
}

func TestManager_ChunkingInvariance(t *testing.T) {
	_, m := sineManager(t)
	all, err := m.PullAll()
	require.NoError(t, err)
	require.Len(t, all, 44100*2*2)

	for _, target := range []int{1, 333, 4096, streaming.DefaultChunkSize, 1 << 20} {
		_, m := sineManager(t)

		var joined []byte
		for {
			chunk, err := m.PullChunk(target)
			require.NoError(t, err)
			if chunk == nil {
				break
			}

			if len(joined)+len(chunk) < len(all) {
				assert.GreaterOrEqual(t, len(chunk), target)
			}
			joined = append(joined, chunk...)
		}

		assert.Equal(t, all, joined, "target %d", target)
	}
}

func TestManager_SineRoundTrip(t *testing.T) {
	block, m := sineManager(t)
	out, err := m.PullAll()
	require.NoError(t, err)
	require.Len(t, out, block.Frames()*4)

	for i := 0; i < block.Frames(); i++ {
		for c := 0; c < 2; c++ {
			got := int16(binary.LittleEndian.Uint16(out[2*(i*2+c):]))
			require.LessOrEqual(t, got, int16(32767))
			require.GreaterOrEqual(t, got, int16(-32767))

			diff := math.Abs(float64(got)/32767 - float64(block[c][i]))
			require.LessOrEqual(t, diff, 0.01, "frame %d channel %d", i, c)
		}
	}
}

func TestManager_MonoFullScaleRoundTrip(t *testing.T) {
	block := vorbistest.Sine(44100, 1, 44100, 1000, 1)
	data := vorbistest.Encode(43, vorbistest.Headers(1, 44100), vorbistest.RawPackets(block, 512), 4)

	m, err := streaming.Open(nil, bytes.NewReader(data), rawSynth)
	require.NoError(t, err)
	defer func() { _ = m.Close() }()

	assert.Equal(t, 1, m.Format().Channels)
	assert.Equal(t, 2, m.Format().FrameSize())

	out, err := m.PullAll()
	require.NoError(t, err)
	require.Len(t, out, 44100*2)

	var peak, maxErr float64
	for i := 0; i < block.Frames(); i++ {
		got := int16(binary.LittleEndian.Uint16(out[2*i:]))
		require.NotEqual(t, int16(math.MinInt16), got, "frame %d", i)

		peak = max(peak, math.Abs(float64(got)))
		maxErr = max(maxErr, math.Abs(float64(got)/32767-float64(block[0][i])))
	}

	assert.LessOrEqual(t, maxErr, 0.01)
	assert.InDelta(t, 32767, peak, 32767*0.01)
}

func TestManager_EndOfStreamIdempotent(t *testing.T) {
	_, m := sineManager(t)

	chunk, err := m.PullChunk(1 << 30)
	require.NoError(t, err)
	assert.Len(t, chunk, 44100*4)

	for i := 0; i < 3; i++ {
		chunk, err = m.PullChunk(0)
		assert.NoError(t, err)
		assert.Nil(t, chunk)
	}

	rest, err := m.PullAll()
	assert.NoError(t, err)
	assert.Empty(t, rest)

	require.NoError(t, m.Close())
	_, err = m.PullChunk(0)
	assert.ErrorIs(t, err, lwjall.ErrClosed)
	assert.ErrorIs(t, m.Close(), lwjall.ErrClosed)
}

func TestManager_DefaultChunkSize(t *testing.T) {
	_, m := sineManager(t, streaming.WithChunkSize(10000))

	chunk, err := m.PullChunk(0)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(chunk), 10000)
	assert.Less(t, len(chunk), 10000+1024*4)
}

func TestManager_NativeSilence(t *testing.T) {
	data := vorbistest.Encode(1, vorbistest.Headers(2, 44100), vorbistest.SilentPackets(9, 256), 3)

	m, err := streaming.Open(nil, bytes.NewReader(data), nil)
	require.NoError(t, err)

	out, err := m.PullAll()
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 8*128*4), out)
}

func TestManager_OpenNotThisCodec(t *testing.T) {
	_, err := streaming.Open(nil, bytes.NewReader([]byte("definitely not audio data")), nil)
	assert.ErrorIs(t, err, lwjall.ErrNotThisCodec)
}

type failingReader struct {
	blocks int
	err    error
	closed int
}

func (r *failingReader) ReadBlock(int) (pcm.Block, error) {
	if r.blocks == 0 {
		return nil, r.err
	}
	r.blocks--
	return pcm.Block{{0.5, 0.5}}, nil
}

func (r *failingReader) Info() vorbis.Info {
	return vorbis.Info{Channels: 1, SampleRate: 8000}
}

func (r *failingReader) Close() error {
	r.closed++
	return nil
}

func TestManager_FatalError(t *testing.T) {
	dec := &failingReader{blocks: 2, err: lwjall.ErrDesync}
	m := streaming.NewManager(nil, dec)

	chunk, err := m.PullChunk(4)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x00, 0x40, 0x00, 0x40}, chunk)

	_, err = m.PullChunk(100)
	assert.ErrorIs(t, err, lwjall.ErrDesync)
	assert.Equal(t, 1, dec.closed)

	_, err = m.PullAll()
	assert.ErrorIs(t, err, lwjall.ErrDesync)
}

func TestManager_ShortStreamSingleChunk(t *testing.T) {
	dec := &failingReader{blocks: 1, err: io.EOF}
	m := streaming.NewManager(nil, dec)

	chunk, err := m.PullChunk(0)
	require.NoError(t, err)
	assert.Len(t, chunk, 4)

	chunk, err = m.PullChunk(0)
	assert.NoError(t, err)
	assert.Nil(t, chunk)
	assert.False(t, errors.Is(err, io.EOF))
}
