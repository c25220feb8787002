package player

import (
	"errors"
	"fmt"

	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/output"
	"github.com/thog92/go-lwjall/streaming"
)

const (
	DefaultBufferCount = 3
	MaxBufferCount     = 16
)

var ErrNotPrimed = errors.New("driver not primed")

// Driver keeps a device source fed from a ChunkSource. It is not safe for
// concurrent use, Update is meant to be called from a single service loop.
type Driver struct {
	log    lwjall.Logger
	dev    output.Device
	source int
	src    lwjall.ChunkSource
	format lwjall.Format
	scene  *Scene

	bufferCount int
	chunkSize   int

	buffers []output.Buffer
	queued  int
	primed  bool
	eos     bool
	closed  bool

	normalise    bool
	pregain      float32
	useAlbumGain bool
	trim         float32

	lastGain float32
	done     chan struct{}
}

type DriverOption func(*Driver)

// WithBufferCount sets how many device buffers are cycled, clamped to [1, MaxBufferCount].
func WithBufferCount(n int) DriverOption {
	return func(d *Driver) {
		d.bufferCount = min(max(n, 1), MaxBufferCount)
	}
}

// WithChunkSize sets the byte target of every chunk pulled from the source.
func WithChunkSize(n int) DriverOption {
	return func(d *Driver) {
		if n > 0 {
			d.chunkSize = n
		}
	}
}

// WithScene makes the driver apply the scene parameters on every tick.
func WithScene(scene *Scene) DriverOption {
	return func(d *Driver) {
		d.scene = scene
	}
}

// WithNormalisation scales sources carrying replay gain comments to the
// reference level. The pregain is in dB.
func WithNormalisation(pregain float32, useAlbumGain bool) DriverOption {
	return func(d *Driver) {
		d.normalise = true
		d.pregain = pregain
		d.useAlbumGain = useAlbumGain
	}
}

func NewDriver(log lwjall.Logger, dev output.Device, source int, src lwjall.ChunkSource, opts ...DriverOption) *Driver {
	d := &Driver{
		log:         lwjall.OrNullLogger(log).WithField("source", source),
		dev:         dev,
		source:      source,
		src:         src,
		format:      src.Format(),
		bufferCount: DefaultBufferCount,
		chunkSize:   streaming.DefaultChunkSize,
		trim:        1,
		lastGain:    -1,
		done:        make(chan struct{}),
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Done is closed once every chunk of the source has been played.
func (d *Driver) Done() <-chan struct{} {
	return d.done
}

func (d *Driver) finished() bool {
	select {
	case <-d.done:
		return true
	default:
		return false
	}
}

// fill pulls the next chunk into buf and queues it. It returns false once the
// source has no more audio.
func (d *Driver) fill(buf output.Buffer) (bool, error) {
	if d.eos {
		return false, nil
	}

	chunk, err := d.src.PullChunk(d.chunkSize)
	if err != nil {
		return false, fmt.Errorf("failed pulling chunk: %w", err)
	} else if chunk == nil {
		d.log.Debugf("reached end of stream with %d buffers queued", d.queued)
		d.eos = true
		return false, nil
	}

	if err := d.dev.Submit(buf, d.format, chunk); err != nil {
		return false, fmt.Errorf("failed submitting buffer %d: %w", buf, err)
	} else if err := d.dev.Enqueue(d.source, buf); err != nil {
		return false, fmt.Errorf("failed queueing buffer %d: %w", buf, err)
	}

	d.queued++
	d.log.Tracef("queued %d bytes into buffer %d", len(chunk), buf)
	return true, nil
}

func (d *Driver) applyScene() error {
	if d.scene == nil && !d.normalise {
		return nil
	}

	setter, ok := d.dev.(output.GainSetter)
	if !ok {
		return nil
	}

	gain := d.trim
	if d.scene != nil {
		gain *= d.scene.Source().Gain
	}

	if gain == d.lastGain {
		return nil
	}

	if err := setter.SetGain(d.source, gain); err != nil {
		return fmt.Errorf("failed setting gain: %w", err)
	}

	d.lastGain = gain
	return nil
}

// start fills the idle buffers and starts playback.
func (d *Driver) start() error {
	if d.normalise {
		d.trim = normalisationFactor(d.log, d.src, d.pregain, d.useAlbumGain)
	}

	if err := d.applyScene(); err != nil {
		return err
	}

	for _, buf := range d.buffers {
		if ok, err := d.fill(buf); err != nil {
			return err
		} else if !ok {
			break
		}
	}

	if d.queued == 0 {
		d.log.Debugf("source is empty, nothing to play")
		close(d.done)
		return nil
	}

	if err := d.dev.Play(d.source); err != nil {
		return fmt.Errorf("failed starting playback: %w", err)
	}

	d.log.Debugf("started playback with %d buffers queued", d.queued)
	return nil
}

// Prime creates the device buffers, fills as many as the source allows and
// starts playback.
func (d *Driver) Prime() error {
	if d.closed {
		return lwjall.ErrClosed
	} else if d.primed {
		return fmt.Errorf("driver already primed")
	}

	for len(d.buffers) < d.bufferCount {
		buf, err := d.dev.CreateBuffer()
		if err != nil {
			return fmt.Errorf("failed creating buffer: %w", err)
		}

		d.buffers = append(d.buffers, buf)
	}

	d.primed = true
	return d.start()
}

// Update recycles the buffers the device has played. It stops the source and
// closes Done once the source is exhausted and every queued buffer was played.
func (d *Driver) Update() error {
	if d.closed {
		return lwjall.ErrClosed
	} else if !d.primed {
		return ErrNotPrimed
	} else if d.finished() {
		return nil
	}

	if err := d.applyScene(); err != nil {
		return err
	}

	processed, err := d.dev.ProcessedCount(d.source)
	if err != nil {
		return fmt.Errorf("failed getting processed buffers: %w", err)
	}

	var refilled int
	for ; processed > 0 && !d.eos; processed-- {
		bufs, err := d.dev.Dequeue(d.source, 1)
		if err != nil {
			return fmt.Errorf("failed dequeuing buffer: %w", err)
		} else if len(bufs) != 1 {
			return fmt.Errorf("dequeued %d buffers instead of 1", len(bufs))
		}

		d.queued--

		ok, err := d.fill(bufs[0])
		if err != nil {
			return err
		} else if ok {
			refilled++
		}
	}

	if refilled > 0 {
		// the device stops on its own when it runs out of buffers
		if err := d.dev.Play(d.source); err != nil {
			return fmt.Errorf("failed resuming playback: %w", err)
		}
	}

	if d.eos && processed >= d.queued {
		if err := d.dev.Stop(d.source); err != nil {
			return fmt.Errorf("failed stopping source: %w", err)
		}

		d.log.Debugf("playback completed")
		close(d.done)
	}

	return nil
}

// Stop halts playback, releases the queued buffers and closes the chunk
// source. Done is closed if it was not already.
func (d *Driver) Stop() error {
	if d.closed {
		return lwjall.ErrClosed
	} else if !d.primed {
		return ErrNotPrimed
	}

	if err := d.dev.Stop(d.source); err != nil {
		return fmt.Errorf("failed stopping source: %w", err)
	}

	// a stopped source reports every queued buffer as processed
	if d.queued > 0 {
		if _, err := d.dev.Dequeue(d.source, d.queued); err != nil {
			return fmt.Errorf("failed dequeuing buffers: %w", err)
		}
		d.queued = 0
	}

	d.eos = true
	if !d.finished() {
		close(d.done)
	}

	if d.src != nil {
		err := d.src.Close()
		d.src = nil
		if err != nil {
			return fmt.Errorf("failed closing source: %w", err)
		}
	}

	return nil
}

// Restart plays src from the start using the buffers of the previous source,
// which is stopped. Sources cannot be rewound, callers provide a fresh one.
func (d *Driver) Restart(src lwjall.ChunkSource) error {
	if d.closed {
		return lwjall.ErrClosed
	} else if !d.primed {
		return ErrNotPrimed
	}

	if format := src.Format(); format != d.format {
		return fmt.Errorf("cannot restart with different format: %s != %s", format, d.format)
	}

	if err := d.Stop(); err != nil {
		d.log.WithError(err).Warnf("failed stopping previous source")
	}

	d.src = src
	d.eos = false
	d.done = make(chan struct{})
	return d.start()
}

// Close stops the source and closes the chunk source. Device buffers belong
// to the device and are released with it.
func (d *Driver) Close() error {
	if d.closed {
		return lwjall.ErrClosed
	}
	d.closed = true

	var errs []error
	if d.primed {
		if err := d.dev.Stop(d.source); err != nil {
			errs = append(errs, fmt.Errorf("failed stopping source: %w", err))
		}
	}

	if d.src != nil {
		if err := d.src.Close(); err != nil {
			errs = append(errs, fmt.Errorf("failed closing source: %w", err))
		}
		d.src = nil
	}

	return errors.Join(errs...)
}
