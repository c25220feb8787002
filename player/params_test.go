//go:build test_unit

package player

import (
	"math"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSceneDefaults(t *testing.T) {
	s := NewScene()
	assert.Equal(t, DefaultListener, s.Listener())
	assert.Equal(t, DefaultSourceParams, s.Source())
}

func TestSceneSetSourceValidates(t *testing.T) {
	s := NewScene()

	assert.Error(t, s.SetSource(SourceParams{Gain: -1, Pitch: 1}))
	assert.Error(t, s.SetSource(SourceParams{Gain: 1, Pitch: 0}))
	assert.Error(t, s.SetSource(SourceParams{Gain: float32(math.NaN()), Pitch: 1}))
	assert.Error(t, s.SetGain(-0.5))

	// rejected values leave the snapshot untouched
	assert.Equal(t, DefaultSourceParams, s.Source())

	params := SourceParams{Gain: 0.5, Pitch: 1.5, Position: Vec3{1, 2, 3}}
	require.NoError(t, s.SetSource(params))
	assert.Equal(t, params, s.Source())

	require.NoError(t, s.SetGain(0.25))
	params.Gain = 0.25
	assert.Equal(t, params, s.Source())
}

func TestSceneListener(t *testing.T) {
	s := NewScene()
	l := Listener{Position: Vec3{1, 0, 0}, Look: Vec3{1, 0, 0}, Up: Vec3{0, 0, 1}}
	s.SetListener(l)
	assert.Equal(t, l, s.Listener())
}

func TestSceneConcurrentSetGain(t *testing.T) {
	s := NewScene()
	require.NoError(t, s.SetSource(SourceParams{Gain: 1, Pitch: 2}))

	var wg sync.WaitGroup
	for i := range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for range 100 {
				_ = s.SetGain(float32(i) / 8)
				_ = s.Source()
			}
		}()
	}
	wg.Wait()

	// concurrent gain updates never lose the other parameters
	assert.Equal(t, float32(2), s.Source().Pitch)
}
