package metadata

import (
	"math"
	"sync"
	"time"

	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/vorbis"
)

// Publisher keeps the state of the current track and sends a snapshot to the
// FIFO on every change. A nil *Publisher does nothing.
type Publisher struct {
	fifo *FIFOManager

	mutex    sync.Mutex
	metadata *TrackMetadata
	volume   int
}

type Config struct {
	Path       string
	Format     string
	BufferSize int
}

func NewPublisher(log lwjall.Logger, config Config) (*Publisher, error) {
	fifo, err := NewFIFOManager(log, config.Path, config.Format, config.BufferSize)
	if err != nil {
		return nil, err
	}

	return &Publisher{fifo: fifo, volume: 100}, nil
}

func (p *Publisher) Start() error {
	if p == nil {
		return nil
	}
	return p.fifo.Start()
}

func (p *Publisher) Stop() {
	if p == nil {
		return
	}
	p.fifo.Stop()
}

// UpdateTrack announces a new track as playing.
func (p *Publisher) UpdateTrack(input string, info vorbis.Info) {
	if p == nil {
		return
	}

	p.mutex.Lock()
	p.metadata = NewTrackMetadata(input, info)
	p.metadata.Volume = p.volume
	p.metadata.Playing = true
	p.mutex.Unlock()

	p.write()
}

// UpdateVolume takes a linear gain and publishes it in the 0-100 range.
func (p *Publisher) UpdateVolume(gain float32) {
	if p == nil {
		return
	}

	vol := int(math.Round(float64(min(max(gain, 0), 1)) * 100))

	p.mutex.Lock()
	p.volume = vol
	if p.metadata != nil {
		p.metadata.Volume = vol
		p.metadata.Timestamp = time.Now()
	}
	p.mutex.Unlock()

	p.write()
}

func (p *Publisher) UpdatePlayingState(playing bool) {
	if p == nil {
		return
	}

	p.mutex.Lock()
	if p.metadata != nil {
		p.metadata.Playing = playing
		p.metadata.Timestamp = time.Now()
	}
	p.mutex.Unlock()

	p.write()
}

func (p *Publisher) write() {
	p.mutex.Lock()
	if p.metadata == nil {
		p.mutex.Unlock()
		return
	}
	snapshot := *p.metadata
	p.mutex.Unlock()

	p.fifo.WriteMetadata(&snapshot)
}
