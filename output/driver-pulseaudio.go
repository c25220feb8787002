package output

import (
	"encoding/binary"
	"errors"
	"fmt"
	"sync"

	"github.com/jfreymuth/pulse"
	"github.com/jfreymuth/pulse/proto"
	lwjall "github.com/thog92/go-lwjall"
)

// pulseQueueSize is the number of written buffers waiting for PulseAudio.
const pulseQueueSize = 2

// pulseAudioSink feeds a PulseAudio playback stream. Written buffers wait in
// a ring until the stream asks for samples.
type pulseAudioSink struct {
	log lwjall.Logger

	client *pulse.Client
	stream *pulse.PlaybackStream

	ring    *RingBuffer[[]int16]
	pending []int16

	// unplayed counts the samples written but not yet handed to the stream.
	unplayed  int
	drainLock sync.Mutex
	drainCond *sync.Cond
	closed    bool

	volume     proto.Volume
	volumeLock sync.Mutex
}

func newPulseAudioSink(log lwjall.Logger, opts *NewOutputOptions) (*pulseAudioSink, error) {
	client, err := pulse.NewClient(pulse.ClientApplicationName(lwjall.VersionString()), pulse.ClientApplicationIconName("audio-x-generic"))
	if err != nil {
		return nil, err
	}

	out := &pulseAudioSink{
		log:    log,
		client: client,
		ring:   NewRingBuffer[[]int16](pulseQueueSize),
	}
	out.drainCond = sync.NewCond(&out.drainLock)

	var channelOpt pulse.PlaybackOption
	if opts.Format.Channels == 1 {
		channelOpt = pulse.PlaybackMono
	} else if opts.Format.Channels == 2 {
		channelOpt = pulse.PlaybackStereo
	} else {
		client.Close()
		return nil, fmt.Errorf("%w: cannot play %d channels, pulse only supports mono and stereo", ErrUnsupportedAudio, opts.Format.Channels)
	}

	lplaybackopts := []pulse.PlaybackOption{
		pulse.PlaybackSampleRate(opts.Format.SampleRate),
		channelOpt,
	}

	if opts.Device != "" {
		var lsink *pulse.Sink
		if opts.Device == "default" {
			lsink, err = client.DefaultSink()
		} else {
			lsink, err = client.SinkByID(opts.Device)
		}

		if err != nil {
			client.Close()
			return nil, fmt.Errorf("cannot find pulseaudio sink %s: %w", opts.Device, err)
		}

		lplaybackopts = append(lplaybackopts, pulse.PlaybackSink(lsink))
	}

	out.stream, err = client.NewPlayback(pulse.Int16Reader(out.int16Reader), lplaybackopts...)
	if err != nil {
		client.Close()
		return nil, err
	}

	cvol, _ := out.stream.Volume()
	out.volume = cvol.Avg()
	log.Debugf("pulseaudio stream volume at %.2f", out.volume.Norm())

	return out, nil
}

func (out *pulseAudioSink) int16Reader(buf []int16) (int, error) {
	for len(out.pending) == 0 {
		samples, err := out.ring.GetWait()
		if errors.Is(err, ErrBufferClosed) {
			return 0, pulse.EndOfData
		}
		out.pending = samples
	}

	n := copy(buf, out.pending)
	out.pending = out.pending[n:]

	out.drainLock.Lock()
	out.unplayed = max(out.unplayed-n, 0)
	if out.unplayed == 0 {
		out.drainCond.Broadcast()
	}
	out.drainLock.Unlock()

	return n, nil
}

func (out *pulseAudioSink) Write(p []byte) (int, error) {
	samples := make([]int16, len(p)/2)
	for i := range samples {
		samples[i] = int16(binary.LittleEndian.Uint16(p[2*i:]))
	}

	out.drainLock.Lock()
	out.unplayed += len(samples)
	out.drainLock.Unlock()

	if err := out.ring.PutWait(samples); err != nil {
		return 0, err
	}

	// Start() does nothing if the playback is already started.
	out.stream.Start()
	return len(p), nil
}

func (out *pulseAudioSink) Flush() error {
	out.ring.Clear()

	out.drainLock.Lock()
	out.unplayed = 0
	out.drainCond.Broadcast()
	out.drainLock.Unlock()

	if out.stream.Running() {
		// Stop() will stop new samples from being requested, but will continue
		// to play whatever is in the buffer.
		out.stream.Stop()

		err := out.client.RawRequest(&proto.FlushPlaybackStream{
			StreamIndex: out.stream.StreamIndex(),
		}, nil)
		if err != nil {
			return fmt.Errorf("could not flush playback: %w", err)
		}
	}

	return nil
}

// Drain waits for the ring to be handed to the stream, then for the server to
// play what it buffered.
func (out *pulseAudioSink) Drain() error {
	out.drainLock.Lock()
	for out.unplayed > 0 && !out.closed {
		out.drainCond.Wait()
	}
	closed := out.closed
	out.drainLock.Unlock()

	if closed || !out.stream.Running() {
		return nil
	}

	err := out.client.RawRequest(&proto.DrainPlaybackStream{
		StreamIndex: out.stream.StreamIndex(),
	}, nil)
	if err != nil {
		return fmt.Errorf("could not drain playback: %w", err)
	}

	return nil
}

func (out *pulseAudioSink) SetVolume(vol float32) error {
	volume := proto.NormVolume(float64(vol))

	out.volumeLock.Lock()
	defer out.volumeLock.Unlock()
	if volume == out.volume {
		return nil
	}
	out.volume = volume

	return out.stream.SetVolume(proto.ChannelVolumes{volume})
}

func (out *pulseAudioSink) SetGain(gain float32) error {
	return out.SetVolume(min(gain, 1))
}

func (out *pulseAudioSink) Close() error {
	out.drainLock.Lock()
	out.closed = true
	out.drainCond.Broadcast()
	out.drainLock.Unlock()

	_ = out.ring.Close()
	out.stream.Close()
	out.client.Close()
	return nil
}
