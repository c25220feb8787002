//go:build libvorbis

package vorbis

func defaultSynthesizer() Synthesizer {
	return NewLibvorbisSynthesizer()
}
