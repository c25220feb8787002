//go:build test_unit

package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/go-audio/wav"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/internal/vorbistest"
)

func writeSilence(t *testing.T, dir string, packets int) string {
	t.Helper()

	path := filepath.Join(dir, "silence.ogg")
	data := vorbistest.Encode(1, vorbistest.Headers(2, 44100), vorbistest.SilentPackets(packets, 256), 3)
	require.NoError(t, os.WriteFile(path, data, 0o644))
	return path
}

func TestLoadConfigDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig([]string{"a.ogg", "b.ogg"})
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "pulseaudio", cfg.AudioBackend)
	assert.Equal(t, 3, cfg.BufferCount)
	assert.Equal(t, 128*1024, cfg.ChunkSize)
	assert.Equal(t, 10*time.Millisecond, cfg.TickInterval)
	assert.Equal(t, float32(1), cfg.Volume)
	assert.True(t, cfg.ZeroGranuleEOS)
	assert.False(t, cfg.Loop)
	assert.Equal(t, 30*time.Second, cfg.HttpTimeout)
	assert.Equal(t, []string{"a.ogg", "b.ogg"}, cfg.Inputs)
}

func TestLoadConfigFileAndFlags(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "oggplay.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
log_level: debug
audio_backend: pipe
buffer_count: 5
tick_interval: 25ms
zero_granule_eos: false
volume: 0.5
`), 0o644))

	cfg, err := loadConfig([]string{"--config", path, "--buffer-count", "8", "--loop", "x.ogg"})
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, "pipe", cfg.AudioBackend)
	assert.Equal(t, 25*time.Millisecond, cfg.TickInterval)
	assert.False(t, cfg.ZeroGranuleEOS)
	assert.Equal(t, float32(0.5), cfg.Volume)

	// flags win over the file
	assert.Equal(t, 8, cfg.BufferCount)
	assert.True(t, cfg.Loop)
}

func TestLoadConfigAlsaBackend(t *testing.T) {
	t.Chdir(t.TempDir())

	cfg, err := loadConfig([]string{"--audio-backend", "alsa", "--audio-device", "hw:0", "x.ogg"})
	require.NoError(t, err)
	assert.Equal(t, "alsa", cfg.AudioBackend)
	assert.Equal(t, "hw:0", cfg.AudioDevice)
}

func TestLoadConfigErrors(t *testing.T) {
	t.Chdir(t.TempDir())

	_, err := loadConfig(nil)
	assert.ErrorContains(t, err, "no input")

	_, err = loadConfig([]string{"--config", "missing.yml", "x.ogg"})
	assert.ErrorContains(t, err, "configuration file")

	_, err = loadConfig([]string{"--buffer-count", "0", "x.ogg"})
	assert.ErrorContains(t, err, "buffer_count")

	_, err = loadConfig([]string{"--audio-backend", "oss", "x.ogg"})
	assert.ErrorContains(t, err, "unknown audio backend")

	_, err = loadConfig([]string{"--metadata-pipe", "/tmp/meta", "--metadata-pipe-format", "dacp", "x.ogg"})
	assert.ErrorContains(t, err, "unknown metadata pipe format")
}

func TestAppDump(t *testing.T) {
	dir := t.TempDir()
	input := writeSilence(t, dir, 9)

	cfg := &Config{
		Inputs:         []string{input, input},
		Dump:           filepath.Join(dir, "out.pcm"),
		ChunkSize:      1024,
		MaxDesyncBytes: 4096,
		ZeroGranuleEOS: true,
	}

	app := NewApp(cfg, &lwjall.NullLogger{})
	require.NoError(t, app.Dump(context.Background()))

	out, err := os.ReadFile(cfg.Dump)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 2*8*128*4), out)
}

func TestAppDumpWav(t *testing.T) {
	dir := t.TempDir()
	input := writeSilence(t, dir, 9)

	cfg := &Config{
		Inputs:         []string{input, input},
		Dump:           filepath.Join(dir, "out.wav"),
		ChunkSize:      1024,
		MaxDesyncBytes: 4096,
		ZeroGranuleEOS: true,
	}

	app := NewApp(cfg, &lwjall.NullLogger{})
	require.NoError(t, app.Dump(context.Background()))

	f, err := os.Open(cfg.Dump)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	dec := wav.NewDecoder(f)
	require.True(t, dec.IsValidFile())

	buf, err := dec.FullPCMBuffer()
	require.NoError(t, err)
	assert.Equal(t, uint16(2), dec.NumChans)
	assert.Equal(t, uint32(44100), dec.SampleRate)
	assert.Equal(t, uint16(16), dec.BitDepth)
	assert.Equal(t, make([]int, 2*8*128*2), buf.Data)
}

func TestAppDumpWavFormatMismatch(t *testing.T) {
	dir := t.TempDir()
	stereo := writeSilence(t, dir, 9)

	mono := filepath.Join(dir, "mono.ogg")
	require.NoError(t, os.WriteFile(mono, vorbistest.Encode(2, vorbistest.Headers(1, 22050), vorbistest.SilentPackets(9, 256), 3), 0o644))

	cfg := &Config{
		Inputs:         []string{stereo, mono},
		Dump:           filepath.Join(dir, "out.wav"),
		ChunkSize:      1024,
		MaxDesyncBytes: 4096,
		ZeroGranuleEOS: true,
	}

	app := NewApp(cfg, &lwjall.NullLogger{})
	assert.ErrorContains(t, app.Dump(context.Background()), "cannot append")
}

func TestAppDumpInvalidInput(t *testing.T) {
	dir := t.TempDir()
	input := filepath.Join(dir, "text.ogg")
	require.NoError(t, os.WriteFile(input, []byte("this is not an ogg file at all"), 0o644))

	app := NewApp(&Config{Inputs: []string{input}, Dump: filepath.Join(dir, "out.pcm")}, &lwjall.NullLogger{})
	assert.ErrorIs(t, app.Dump(context.Background()), lwjall.ErrNotThisCodec)
}

func TestAppPlayThroughPipe(t *testing.T) {
	dir := t.TempDir()
	input := writeSilence(t, dir, 9)

	pipe := filepath.Join(dir, "out.pcm")
	require.NoError(t, os.WriteFile(pipe, nil, 0o644))

	cfg := &Config{
		Inputs:          []string{input, input},
		AudioBackend:    "pipe",
		AudioOutputPipe: pipe,
		BufferCount:     2,
		ChunkSize:       1024,
		TickInterval:    time.Millisecond,
		Volume:          1,
		ZeroGranuleEOS:  true,
	}

	app := NewApp(cfg, &lwjall.NullLogger{})
	require.NoError(t, app.Play(context.Background()))

	out, err := os.ReadFile(pipe)
	require.NoError(t, err)
	assert.Equal(t, make([]byte, 2*8*128*4), out)
}

func TestAppPlayWithMetadataPipe(t *testing.T) {
	dir := t.TempDir()
	input := writeSilence(t, dir, 9)

	pipe := filepath.Join(dir, "out.pcm")
	require.NoError(t, os.WriteFile(pipe, nil, 0o644))

	cfg := &Config{
		Inputs:             []string{input},
		AudioBackend:       "pipe",
		AudioOutputPipe:    pipe,
		BufferCount:        3,
		ChunkSize:          1024,
		TickInterval:       time.Millisecond,
		Volume:             1,
		ZeroGranuleEOS:     true,
		MetadataPipe:       filepath.Join(dir, "metadata"),
		MetadataPipeFormat: "xml",
	}

	app := NewApp(cfg, &lwjall.NullLogger{})
	require.NoError(t, app.Play(context.Background()))

	// nobody was reading, the pipe is gone after playback
	_, err := os.Stat(cfg.MetadataPipe)
	assert.ErrorIs(t, err, os.ErrNotExist)

	out, err := os.ReadFile(pipe)
	require.NoError(t, err)
	assert.Len(t, out, 8*128*4)
}
