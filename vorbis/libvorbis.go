//go:build libvorbis

package vorbis

import (
	"errors"
	"fmt"
	"strings"

	"github.com/thog92/go-lwjall/ogg"
	"github.com/thog92/go-lwjall/pcm"
	"github.com/xlab/vorbis-go/vorbis"
)

// libvorbisSynthesizer decodes with the reference libvorbis through cgo.
type libvorbisSynthesizer struct {
	// info contains basic information about the audio in a vorbis bitstream.
	info vorbis.Info

	// comment stores all the bitstream user comments as Ogg Vorbis comment.
	comment vorbis.Comment

	// dspState is the state for one instance of the Vorbis decoder.
	dspState vorbis.DspState

	// block holds the data for a single block of audio. One Vorbis block translates to one codec packet.
	block vorbis.Block

	headers  int
	channels int
	pcm      [][][]float32
	ready    bool
}

func NewLibvorbisSynthesizer() Synthesizer {
	s := &libvorbisSynthesizer{}
	vorbis.InfoInit(&s.info)
	vorbis.CommentInit(&s.comment)
	return s
}

func (s *libvorbisSynthesizer) HeaderIn(packet []byte) error {
	p := vorbis.OggPacket{
		BOS:    b(s.headers == 0),
		Bytes:  len(packet),
		Packet: packet,
	}
	if ret := vorbis.SynthesisHeaderin(&s.info, &s.comment, &p); ret < 0 {
		return fmt.Errorf("vorbis: header %d rejected: %d", s.headers+1, ret)
	}

	s.headers++
	if s.headers < 3 {
		return nil
	}

	s.info.Deref()
	s.comment.Deref()
	s.channels = int(s.info.Channels)

	if ret := vorbis.SynthesisInit(&s.dspState, &s.info); ret < 0 {
		return errors.New("vorbis: error during playback initialization")
	}

	vorbis.BlockInit(&s.dspState, &s.block)
	s.pcm = [][][]float32{
		make([][]float32, s.channels),
	}
	s.ready = true
	return nil
}

func (s *libvorbisSynthesizer) BlockIn(packet *ogg.Packet) error {
	if !s.ready {
		return errors.New("vorbis: missing headers")
	} else if len(packet.Data) == 0 {
		return nil
	}

	p := vorbis.OggPacket{
		Bytes:      len(packet.Data),
		Packet:     packet.Data,
		EOS:        b(packet.EOS),
		GranulePos: packet.GranulePos,
	}
	if ret := vorbis.Synthesis(&s.block, &p); ret != 0 {
		return fmt.Errorf("vorbis: packet rejected: %d", ret)
	}

	vorbis.SynthesisBlockin(&s.dspState, &s.block)
	return nil
}

func (s *libvorbisSynthesizer) safeSynthesisPcmout() (ret int32) {
	defer func() {
		err := recover()
		if err == nil {
			return
		}

		switch err := err.(type) {
		case string:
			// the calloc inside allocPPFloatMemory will sometimes fail for no apparent reason,
			// avoid panicking the entire program and fail locally instead.
			if strings.HasPrefix(err, "memory alloc error") {
				ret = -1
				return
			}
		}

		panic(err)
	}()

	return vorbis.SynthesisPcmout(&s.dspState, s.pcm)
}

func (s *libvorbisSynthesizer) PcmOut() pcm.Block {
	if !s.ready {
		return nil
	}

	samples := s.safeSynthesisPcmout()
	if samples <= 0 {
		return nil
	}

	block := make(pcm.Block, s.channels)
	for c := range block {
		block[c] = s.pcm[0][c][:samples]
	}
	return block
}

func (s *libvorbisSynthesizer) Read(n int) {
	if s.ready && n > 0 {
		vorbis.SynthesisRead(&s.dspState, int32(n))
	}
}

// Reset is a no-op, libvorbis keeps lapping across the gap.
func (s *libvorbisSynthesizer) Reset() {}

func (s *libvorbisSynthesizer) Close() {
	if s.comment.Ref() != nil {
		vorbis.CommentClear(&s.comment)
		s.comment.Free()
	}

	if s.info.Ref() != nil {
		vorbis.InfoClear(&s.info)
		s.info.Free()
	}

	if s.dspState.Ref() != nil {
		vorbis.DspClear(&s.dspState)
		s.dspState.Free()
	}

	if s.block.Ref() != nil {
		vorbis.BlockClear(&s.block)
		s.block.Free()
	}

	s.ready = false
}

func b(v bool) int {
	if v {
		return 1
	}
	return 0
}
