package output

import (
	"errors"
	"fmt"
	"maps"
	"slices"
	"sync"

	lwjall "github.com/thog92/go-lwjall"
)

var (
	ErrOutputClosed       = errors.New("output closed")
	ErrUnknownBuffer      = errors.New("unknown buffer")
	ErrBufferQueued       = errors.New("buffer is queued")
	ErrInvalidDequeue     = errors.New("cannot dequeue unprocessed buffers")
	ErrFormatMismatch     = errors.New("format does not match output")
	ErrTooManyBuffers     = errors.New("too many buffers")
	ErrUnknownBackend     = errors.New("unknown audio backend")
	ErrBackendUnavailable = errors.New("audio backend not available in this build")
	ErrUnsupportedAudio   = errors.New("unsupported audio format")
)

// MaxBuffers is the number of buffers an output can hold.
const MaxBuffers = 256

// Buffer is the handle of a device buffer.
type Buffer int

// Device is a buffer queue output: PCM is submitted into buffers, buffers are
// queued on a source and reported processed once played.
type Device interface {
	CreateBuffer() (Buffer, error)
	Submit(buf Buffer, format lwjall.Format, data []byte) error
	Enqueue(source int, buf Buffer) error
	ProcessedCount(source int) (int, error)
	Dequeue(source int, n int) ([]Buffer, error)
	Play(source int) error
	Stop(source int) error
	Close() error
}

// GainSetter is implemented by devices that can scale the volume of a source.
type GainSetter interface {
	SetGain(source int, gain float32) error
}

// sink is where played buffers end up.
type sink interface {
	Write(p []byte) (int, error)

	// Flush drops audio that was written but not yet played.
	Flush() error

	// Drain blocks until the audio written so far has been played, or until
	// the sink is flushed or closed.
	Drain() error

	SetGain(gain float32) error
	Close() error
}

type NewOutputOptions struct {
	Log lwjall.Logger

	// Backend is one of "pipe", "pulseaudio" or "alsa".
	Backend string

	// Format is the only format accepted by Submit.
	Format lwjall.Format

	// Device specifies the audio device name.
	//
	// This feature is supported only by the pulseaudio and alsa backends.
	Device string

	// OutputPipe is the path of the file or FIFO the pipe backend writes to.
	OutputPipe string
}

type buffer struct {
	data   []byte
	queued bool
}

type source struct {
	queue     []Buffer
	processed int
	playing   bool
	gain      float32

	// gen changes whenever the in flight buffer is abandoned.
	gen uint64
}

// Output implements Device on top of a sink. A single goroutine plays the
// queued buffers, sources are serialized and not mixed.
type Output struct {
	log    lwjall.Logger
	format lwjall.Format
	sink   sink

	mu      sync.Mutex
	cond    *sync.Cond
	buffers map[Buffer]*buffer
	next    Buffer
	sources map[int]*source
	gain    float32
	closed  bool
	err     error

	done chan struct{}
}

func NewOutput(opts *NewOutputOptions) (*Output, error) {
	log := lwjall.OrNullLogger(opts.Log)
	if opts.Format.BitsPerSample != 16 || !opts.Format.Signed || !opts.Format.LittleEndian {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedAudio, opts.Format)
	}

	var s sink
	var err error
	switch opts.Backend {
	case "pipe":
		s, err = newPipeSink(log, opts)
	case "pulseaudio":
		s, err = newPulseAudioSink(log, opts)
	case "alsa":
		s, err = newAlsaSink(log, opts)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownBackend, opts.Backend)
	}
	if err != nil {
		return nil, err
	}

	return newOutput(log, opts.Format, s), nil
}

func newOutput(log lwjall.Logger, format lwjall.Format, s sink) *Output {
	out := &Output{
		log:     log,
		format:  format,
		sink:    s,
		buffers: map[Buffer]*buffer{},
		sources: map[int]*source{},
		gain:    1,
		done:    make(chan struct{}),
	}
	out.cond = sync.NewCond(&out.mu)

	go out.outputLoop()

	log.Debugf("output: playing %s", format)
	return out
}

func (out *Output) Format() lwjall.Format {
	return out.format
}

func (out *Output) getSource(id int) *source {
	src, ok := out.sources[id]
	if !ok {
		src = &source{gain: 1}
		out.sources[id] = src
	}
	return src
}

// nextPlayable returns the first playing source with unplayed buffers.
func (out *Output) nextPlayable() *source {
	for _, id := range slices.Sorted(maps.Keys(out.sources)) {
		src := out.sources[id]
		if src.playing && src.processed < len(src.queue) {
			return src
		}
	}
	return nil
}

func (out *Output) outputLoop() {
	defer close(out.done)

	for {
		out.mu.Lock()

		var src *source
		for !out.closed {
			if src = out.nextPlayable(); src != nil {
				break
			}
			out.cond.Wait()
		}

		if out.closed {
			out.mu.Unlock()
			return
		}

		data := out.buffers[src.queue[src.processed]].data
		gen, gain := src.gen, src.gain
		out.mu.Unlock()

		var err error
		if gain != out.gain {
			if err = out.sink.SetGain(gain); err == nil {
				out.gain = gain
			}
		}
		if err == nil {
			_, err = out.sink.Write(data)
		}
		if err == nil && out.isLastQueued(src, gen) {
			// the source stops after this buffer, it is processed once audible
			err = out.sink.Drain()
		}

		out.mu.Lock()
		if err != nil {
			if !out.closed {
				out.log.WithError(err).Errorf("output: failed writing buffer")
				out.err = err
				out.closed = true
			}
			out.cond.Broadcast()
			out.mu.Unlock()
			return
		}

		if src.gen == gen {
			src.processed++
			if src.processed == len(src.queue) {
				// ran out of buffers, like a real device the source stops
				src.playing = false
			}
		}
		out.cond.Broadcast()
		out.mu.Unlock()
	}
}

func (out *Output) isLastQueued(src *source, gen uint64) bool {
	out.mu.Lock()
	defer out.mu.Unlock()
	return src.gen == gen && src.processed+1 == len(src.queue)
}

func (out *Output) checkOpen() error {
	if out.err != nil {
		return fmt.Errorf("%w: %w", ErrOutputClosed, out.err)
	} else if out.closed {
		return ErrOutputClosed
	}
	return nil
}

func (out *Output) CreateBuffer() (Buffer, error) {
	out.mu.Lock()
	defer out.mu.Unlock()

	if err := out.checkOpen(); err != nil {
		return 0, err
	} else if len(out.buffers) >= MaxBuffers {
		return 0, ErrTooManyBuffers
	}

	out.next++
	out.buffers[out.next] = &buffer{}
	return out.next, nil
}

// Submit stores a copy of data into a buffer that is not queued.
func (out *Output) Submit(buf Buffer, format lwjall.Format, data []byte) error {
	out.mu.Lock()
	defer out.mu.Unlock()

	if err := out.checkOpen(); err != nil {
		return err
	} else if format != out.format {
		return fmt.Errorf("%w: got %s, want %s", ErrFormatMismatch, format, out.format)
	}

	b, ok := out.buffers[buf]
	if !ok {
		return ErrUnknownBuffer
	} else if b.queued {
		return ErrBufferQueued
	}

	b.data = slices.Clone(data)
	return nil
}

func (out *Output) Enqueue(sourceId int, buf Buffer) error {
	out.mu.Lock()
	defer out.mu.Unlock()

	if err := out.checkOpen(); err != nil {
		return err
	}

	b, ok := out.buffers[buf]
	if !ok {
		return ErrUnknownBuffer
	} else if b.queued {
		return ErrBufferQueued
	}

	b.queued = true
	src := out.getSource(sourceId)
	src.queue = append(src.queue, buf)
	out.cond.Broadcast()
	return nil
}

// ProcessedCount returns how many queued buffers have been played.
func (out *Output) ProcessedCount(sourceId int) (int, error) {
	out.mu.Lock()
	defer out.mu.Unlock()

	if err := out.checkOpen(); err != nil {
		return 0, err
	}

	return out.getSource(sourceId).processed, nil
}

// Queued returns how many buffers are queued on a source, processed or not.
func (out *Output) Queued(sourceId int) int {
	out.mu.Lock()
	defer out.mu.Unlock()
	return len(out.getSource(sourceId).queue)
}

// Dequeue removes n processed buffers from the front of the queue.
func (out *Output) Dequeue(sourceId int, n int) ([]Buffer, error) {
	out.mu.Lock()
	defer out.mu.Unlock()

	if err := out.checkOpen(); err != nil {
		return nil, err
	}

	src := out.getSource(sourceId)
	if n < 0 || n > src.processed {
		return nil, fmt.Errorf("%w: %d requested, %d processed", ErrInvalidDequeue, n, src.processed)
	}

	bufs := slices.Clone(src.queue[:n])
	for _, buf := range bufs {
		out.buffers[buf].queued = false
	}

	src.queue = slices.Delete(src.queue, 0, n)
	src.processed -= n
	return bufs, nil
}

func (out *Output) Play(sourceId int) error {
	out.mu.Lock()
	defer out.mu.Unlock()

	if err := out.checkOpen(); err != nil {
		return err
	}

	src := out.getSource(sourceId)
	if !src.playing && src.processed < len(src.queue) {
		src.playing = true
		out.cond.Broadcast()
	}
	return nil
}

// Stop halts a source and marks all its buffers processed.
func (out *Output) Stop(sourceId int) error {
	out.mu.Lock()
	defer out.mu.Unlock()

	if err := out.checkOpen(); err != nil {
		return err
	}

	src := out.getSource(sourceId)
	wasPlaying := src.playing
	src.playing = false
	src.processed = len(src.queue)
	src.gen++

	if wasPlaying {
		if err := out.sink.Flush(); err != nil {
			out.log.WithError(err).Warnf("output: failed flushing stopped source %d", sourceId)
		}
	}
	return nil
}

// Playing reports whether a source is playing.
func (out *Output) Playing(sourceId int) bool {
	out.mu.Lock()
	defer out.mu.Unlock()
	return out.getSource(sourceId).playing
}

// SetGain sets the linear gain of a source, 1 leaves samples untouched.
func (out *Output) SetGain(sourceId int, gain float32) error {
	if gain < 0 {
		return fmt.Errorf("invalid gain value: %0.2f", gain)
	}

	out.mu.Lock()
	defer out.mu.Unlock()

	if err := out.checkOpen(); err != nil {
		return err
	}

	out.getSource(sourceId).gain = gain
	return nil
}

// Close closes the output and waits for the playing goroutine to exit.
func (out *Output) Close() error {
	out.mu.Lock()
	if out.closed && out.err == nil {
		out.mu.Unlock()
		<-out.done
		return nil
	}
	out.closed = true
	out.cond.Broadcast()
	out.mu.Unlock()

	err := out.sink.Close()
	<-out.done
	return err
}
