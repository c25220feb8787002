//go:build test_unit && unix

package metadata

import (
	"bufio"
	"encoding/json"
	"errors"
	"io"
	"os"
	"path/filepath"
	"syscall"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestNewFIFOManagerUnknownFormat(t *testing.T) {
	_, err := NewFIFOManager(nil, "x", "dacp", 0)
	assert.ErrorContains(t, err, "unknown metadata format")
}

func TestPublisherWritesToReader(t *testing.T) {
	defer goleak.VerifyNone(t)

	path := filepath.Join(t.TempDir(), "metadata")
	p, err := NewPublisher(nil, Config{Path: path, Format: "json"})
	require.NoError(t, err)
	require.NoError(t, p.Start())

	fi, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.ModeNamedPipe, fi.Mode().Type())

	reader, err := os.OpenFile(path, os.O_RDONLY|syscall.O_NONBLOCK, 0)
	require.NoError(t, err)
	defer func() { _ = reader.Close() }()

	p.UpdateVolume(0.25)
	p.UpdateTrack("song.ogg", testInfo)
	p.UpdatePlayingState(false)

	lines := make(chan string, 2)
	go func() {
		r := bufio.NewReader(reader)
		for got := 0; got < 2; {
			line, err := r.ReadString('\n')
			if errors.Is(err, io.EOF) {
				// no writer connected yet
				time.Sleep(5 * time.Millisecond)
				continue
			} else if err != nil {
				return
			}

			lines <- line
			got++
		}
	}()

	next := func() string {
		select {
		case line := <-lines:
			return line
		case <-time.After(2 * time.Second):
			require.FailNow(t, "timed out waiting for metadata")
			return ""
		}
	}

	var first, second TrackMetadata
	require.NoError(t, json.Unmarshal([]byte(next()), &first))
	require.NoError(t, json.Unmarshal([]byte(next()), &second))

	assert.Equal(t, "Song", first.Title)
	assert.Equal(t, 25, first.Volume)
	assert.True(t, first.Playing)
	assert.False(t, second.Playing)

	p.Stop()
	_, err = os.Stat(path)
	assert.ErrorIs(t, err, os.ErrNotExist)

	// stopped publishers ignore updates
	p.UpdatePlayingState(true)
	p.Stop()
}

func TestPublisherWithoutReader(t *testing.T) {
	defer goleak.VerifyNone(t)

	fm, err := NewFIFOManager(nil, filepath.Join(t.TempDir(), "metadata"), "xml", 1)
	require.NoError(t, err)
	require.NoError(t, fm.Start())

	tm := NewTrackMetadata("song.ogg", testInfo)
	for range 5 {
		fm.WriteMetadata(tm)
	}

	require.Eventually(t, func() bool { return fm.errorCount.Load() > 0 }, time.Second, 5*time.Millisecond)
	assert.Zero(t, fm.writeCount.Load())
	fm.Stop()
}

func TestNilPublisher(t *testing.T) {
	var p *Publisher
	assert.NoError(t, p.Start())
	p.UpdateTrack("song.ogg", testInfo)
	p.UpdateVolume(1)
	p.UpdatePlayingState(true)
	p.Stop()
}
