package player

import (
	"errors"
	"fmt"
	"time"

	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/output"
)

const DefaultTickInterval = 10 * time.Millisecond

// Opener returns a fresh source every time it is called. Looping playback
// reopens the source at the end of every iteration.
type Opener func() (lwjall.ChunkSource, error)

type Player struct {
	log lwjall.Logger

	source       int
	bufferCount  int
	chunkSize    int
	tickInterval time.Duration
	scene        *Scene

	normalisationEnabled      bool
	normalisationUseAlbumGain bool
	normalisationPregain      float32

	newDevice func(format lwjall.Format) (output.Device, error)

	cmd    chan playerCmd
	ev     chan Event
	exited chan struct{}
}

type playerCmdType int

const (
	playerCmdPlay playerCmdType = iota
	playerCmdStop
	playerCmdClose
)

type playerCmd struct {
	typ  playerCmdType
	data any
	resp chan any
}

type playerCmdDataPlay struct {
	open Opener
	loop bool
}

type Options struct {
	Log lwjall.Logger

	// NewDevice creates the output device for a format. The device is
	// reused as long as the played sources keep the same format.
	NewDevice func(format lwjall.Format) (output.Device, error)

	// Source is the device source the player queues buffers on.
	Source int

	// BufferCount is the number of device buffers cycled, see WithBufferCount.
	BufferCount int
	// ChunkSize is the byte target of every buffer.
	ChunkSize int
	// TickInterval is how often played buffers are recycled.
	TickInterval time.Duration

	// Volume is the initial linear gain, 1 if zero.
	Volume float32

	// NormalisationEnabled specifies if the volume should be normalised
	// according to the REPLAYGAIN_* comments of the stream.
	NormalisationEnabled bool
	// NormalisationUseAlbumGain specifies whether album gain instead of track gain
	// should be used for normalisation
	NormalisationUseAlbumGain bool
	// NormalisationPregain specifies the pre-gain to apply when normalising the volume
	// in dB. Use negative values to avoid clipping.
	NormalisationPregain float32
}

func NewPlayer(opts *Options) (*Player, error) {
	if opts.NewDevice == nil {
		return nil, errors.New("no output device factory")
	}

	p := &Player{
		log:          lwjall.OrNullLogger(opts.Log),
		source:       opts.Source,
		bufferCount:  opts.BufferCount,
		chunkSize:    opts.ChunkSize,
		tickInterval: opts.TickInterval,
		scene:        NewScene(),
		newDevice:    opts.NewDevice,

		normalisationEnabled:      opts.NormalisationEnabled,
		normalisationUseAlbumGain: opts.NormalisationUseAlbumGain,
		normalisationPregain:      opts.NormalisationPregain,

		cmd:    make(chan playerCmd),
		ev:     make(chan Event, 128),
		exited: make(chan struct{}),
	}

	if p.bufferCount <= 0 {
		p.bufferCount = DefaultBufferCount
	}
	if p.tickInterval <= 0 {
		p.tickInterval = DefaultTickInterval
	}
	if opts.Volume > 0 {
		if err := p.scene.SetGain(opts.Volume); err != nil {
			return nil, err
		}
	}

	go p.manageLoop()

	return p, nil
}

func (p *Player) emit(typ EventType, err error) {
	select {
	case p.ev <- Event{Type: typ, Err: err}:
	default:
		p.log.Warnf("dropped player event %s", typ)
	}
}

func (p *Player) manageLoop() {
	defer close(p.exited)

	// current output device and the driver feeding it
	var dev output.Device
	var drv *Driver
	var current playerCmdDataPlay
	done := make(<-chan struct{})

	ticker := time.NewTicker(p.tickInterval)
	defer ticker.Stop()

	closeDevice := func() {
		if drv != nil {
			if err := drv.Close(); err != nil {
				p.log.WithError(err).Warnf("failed closing driver")
			}
			drv = nil
		}

		if dev != nil {
			if err := dev.Close(); err != nil {
				p.log.WithError(err).Warnf("failed closing output device")
			}
			dev = nil
		}

		done = make(<-chan struct{})
	}

	play := func(data playerCmdDataPlay) error {
		done = make(<-chan struct{})

		src, err := data.open()
		if err != nil {
			return fmt.Errorf("failed opening source: %w", err)
		}

		format := src.Format()
		if drv != nil && drv.format == format {
			if err := drv.Restart(src); err != nil {
				_ = src.Close()
				return err
			}

			done = drv.Done()
			return nil
		}

		// the format changed, a new output device is needed
		closeDevice()

		dev, err = p.newDevice(format)
		if err != nil {
			_ = src.Close()
			return fmt.Errorf("failed creating output device: %w", err)
		}

		p.log.Debugf("created new output device for %s", format)

		opts := []DriverOption{
			WithBufferCount(p.bufferCount),
			WithChunkSize(p.chunkSize),
			WithScene(p.scene),
		}
		if p.normalisationEnabled {
			opts = append(opts, WithNormalisation(p.normalisationPregain, p.normalisationUseAlbumGain))
		}

		drv = NewDriver(p.log, dev, p.source, src, opts...)
		if err := drv.Prime(); err != nil {
			closeDevice()
			return err
		}

		done = drv.Done()
		return nil
	}

loop:
	for {
		select {
		case cmd := <-p.cmd:
			switch cmd.typ {
			case playerCmdPlay:
				current = cmd.data.(playerCmdDataPlay)
				if err := play(current); err != nil {
					cmd.resp <- err
					break
				}

				cmd.resp <- nil
				p.emit(EventTypePlay, nil)
			case playerCmdStop:
				if drv != nil {
					if err := drv.Stop(); err != nil && !errors.Is(err, ErrNotPrimed) {
						p.log.WithError(err).Warnf("failed stopping driver")
					}

					done = make(<-chan struct{})
					p.log.Tracef("stopped playback because of stop command")
				}

				current = playerCmdDataPlay{}
				cmd.resp <- struct{}{}
				p.emit(EventTypeStop, nil)
			case playerCmdClose:
				break loop
			default:
				panic("unknown player command")
			}
		case <-ticker.C:
			if drv == nil {
				continue
			}

			if err := drv.Update(); err != nil {
				p.log.WithError(err).Errorf("output driver failed")

				// the device is in an unknown state, start over on the next play
				closeDevice()
				p.emit(EventTypeStop, err)
			}
		case <-done:
			if !current.loop {
				done = make(<-chan struct{})
				p.emit(EventTypeNotPlaying, nil)
				break
			}

			if err := play(current); err != nil {
				p.log.WithError(err).Errorf("failed restarting looped source")
				done = make(<-chan struct{})
				p.emit(EventTypeNotPlaying, err)
				break
			}

			p.log.Debugf("looping source")
			p.emit(EventTypeLoop, nil)
		}
	}

	close(p.cmd)
	closeDevice()
}

// Scene returns the parameters applied to the playing source.
func (p *Player) Scene() *Scene {
	return p.scene
}

func (p *Player) Receive() <-chan Event {
	return p.ev
}

// Close stops playback, closes the output device and waits for the
// player goroutine to exit.
func (p *Player) Close() {
	p.cmd <- playerCmd{typ: playerCmdClose}
	<-p.exited
}

// SetVolume sets the linear gain, it is applied on the next tick.
func (p *Player) SetVolume(vol float32) error {
	return p.scene.SetGain(vol)
}

func (p *Player) Volume() float32 {
	return p.scene.Source().Gain
}

// Play stops what is playing and starts playing the source returned by open.
func (p *Player) Play(open Opener, loop bool) error {
	resp := make(chan any, 1)
	p.cmd <- playerCmd{typ: playerCmdPlay, data: playerCmdDataPlay{open: open, loop: loop}, resp: resp}
	if err := <-resp; err != nil {
		return err.(error)
	}

	return nil
}

func (p *Player) Stop() {
	resp := make(chan any, 1)
	p.cmd <- playerCmd{typ: playerCmdStop, resp: resp}
	<-resp
}
