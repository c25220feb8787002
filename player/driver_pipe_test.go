//go:build test_unit

package player_test

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/internal/vorbistest"
	"github.com/thog92/go-lwjall/output"
	"github.com/thog92/go-lwjall/player"
	"github.com/thog92/go-lwjall/streaming"
	"github.com/thog92/go-lwjall/vorbis"
	"go.uber.org/goleak"
)

func openSine(t *testing.T) *streaming.Manager {
	t.Helper()

	block := vorbistest.Sine(22050, 2, 22050, 440, 0.5)
	data := vorbistest.Encode(7, vorbistest.Headers(2, 22050), vorbistest.RawPackets(block, 512), 4)

	m, err := streaming.Open(nil, bytes.NewReader(data), []vorbis.Option{
		vorbis.WithSynthesizer(func() vorbis.Synthesizer { return vorbistest.NewRawSynthesizer() }),
	})
	require.NoError(t, err)
	return m
}

func TestDriver_PlaysThroughPipe(t *testing.T) {
	defer goleak.VerifyNone(t)

	ref := openSine(t)
	expected, err := ref.PullAll()
	require.NoError(t, err)
	require.NoError(t, ref.Close())

	path := filepath.Join(t.TempDir(), "out.pcm")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	src := openSine(t)
	out, err := output.NewOutput(&output.NewOutputOptions{
		Log:        &lwjall.NullLogger{},
		Backend:    "pipe",
		Format:     src.Format(),
		OutputPipe: path,
	})
	require.NoError(t, err)

	d := player.NewDriver(nil, out, 0, src, player.WithBufferCount(3), player.WithChunkSize(8192))
	require.NoError(t, d.Prime())

	ticker := time.NewTicker(time.Millisecond)
	defer ticker.Stop()

	timeout := time.After(5 * time.Second)
loop:
	for {
		select {
		case <-d.Done():
			break loop
		case <-ticker.C:
			require.NoError(t, d.Update())
		case <-timeout:
			t.Fatal("playback did not complete")
		}
	}

	require.NoError(t, d.Close())
	require.NoError(t, out.Close())

	played, err := os.ReadFile(path)
	require.NoError(t, err)
	require.Equal(t, expected, played)
}
