package vorbis

import (
	"github.com/jfreymuth/vorbis"
	"github.com/thog92/go-lwjall/ogg"
	"github.com/thog92/go-lwjall/pcm"
)

// nativeSynthesizer decodes with the pure Go github.com/jfreymuth/vorbis.
type nativeSynthesizer struct {
	dec vorbis.Decoder

	buf    []float32
	planes pcm.Block
}

// NewNativeSynthesizer returns a Synthesizer that does not need cgo.
func NewNativeSynthesizer() Synthesizer {
	return &nativeSynthesizer{}
}

func (s *nativeSynthesizer) HeaderIn(packet []byte) (err error) {
	defer recoverDecodingPanic(&err)

	if err := s.dec.ReadHeader(packet); err != nil {
		return err
	}

	if s.dec.HeadersRead() {
		s.buf = make([]float32, s.dec.BufferSize())
		s.planes = make(pcm.Block, s.dec.Channels())
	}

	return nil
}

func (s *nativeSynthesizer) BlockIn(packet *ogg.Packet) (err error) {
	defer recoverDecodingPanic(&err)

	if len(packet.Data) == 0 {
		return nil
	}

	out, err := s.dec.DecodeInto(packet.Data, s.buf)
	if err != nil {
		return err
	}

	channels := len(s.planes)
	frames := len(out) / channels
	for c := range s.planes {
		for i := 0; i < frames; i++ {
			s.planes[c] = append(s.planes[c], out[i*channels+c])
		}
	}

	return nil
}

func (s *nativeSynthesizer) PcmOut() pcm.Block {
	return s.planes
}

func (s *nativeSynthesizer) Read(n int) {
	for c, plane := range s.planes {
		rest := copy(plane, plane[min(n, len(plane)):])
		s.planes[c] = plane[:rest]
	}
}

func (s *nativeSynthesizer) Reset() {
	s.dec.Clear()
	for c := range s.planes {
		s.planes[c] = s.planes[c][:0]
	}
}

func (s *nativeSynthesizer) Close() {
	s.buf = nil
	s.planes = nil
}
