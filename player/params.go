package player

import (
	"fmt"
	"math"
	"sync/atomic"
)

type Vec3 [3]float32

// Listener is where the scene is heard from.
type Listener struct {
	Position Vec3
	Look     Vec3
	Up       Vec3
}

var DefaultListener = Listener{
	Look: Vec3{0, 0, -1},
	Up:   Vec3{0, 1, 0},
}

// SourceParams are the per source playback parameters.
type SourceParams struct {
	Gain     float32
	Pitch    float32
	Position Vec3
}

var DefaultSourceParams = SourceParams{Gain: 1, Pitch: 1}

func (p SourceParams) validate() error {
	if p.Gain < 0 || math.IsNaN(float64(p.Gain)) {
		return fmt.Errorf("invalid gain value: %0.2f", p.Gain)
	} else if p.Pitch <= 0 || math.IsNaN(float64(p.Pitch)) {
		return fmt.Errorf("invalid pitch value: %0.2f", p.Pitch)
	}
	return nil
}

// Scene holds the listener and source parameters. Writers replace whole
// snapshots, so readers on the service goroutine never see a torn value.
type Scene struct {
	listener atomic.Pointer[Listener]
	source   atomic.Pointer[SourceParams]
}

func NewScene() *Scene {
	s := &Scene{}
	s.SetListener(DefaultListener)
	_ = s.SetSource(DefaultSourceParams)
	return s
}

func (s *Scene) SetListener(l Listener) {
	s.listener.Store(&l)
}

func (s *Scene) Listener() Listener {
	return *s.listener.Load()
}

func (s *Scene) SetSource(p SourceParams) error {
	if err := p.validate(); err != nil {
		return err
	}

	s.source.Store(&p)
	return nil
}

func (s *Scene) Source() SourceParams {
	return *s.source.Load()
}

// SetGain replaces the gain and keeps the other source parameters.
func (s *Scene) SetGain(gain float32) error {
	for {
		old := s.source.Load()
		p := *old
		p.Gain = gain
		if err := p.validate(); err != nil {
			return err
		}

		if s.source.CompareAndSwap(old, &p) {
			return nil
		}
	}
}
