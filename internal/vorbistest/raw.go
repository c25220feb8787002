package vorbistest

import (
	"encoding/binary"
	"errors"
	"math"

	"github.com/thog92/go-lwjall/ogg"
	"github.com/thog92/go-lwjall/pcm"
)

// RawSynthesizer decodes packets holding interleaved little endian float32
// samples. It accepts any header set whose identification header is valid.
type RawSynthesizer struct {
	channels int
	headers  int
	planes   pcm.Block

	Resets int
	Closed bool
}

func NewRawSynthesizer() *RawSynthesizer {
	return &RawSynthesizer{}
}

func (s *RawSynthesizer) HeaderIn(packet []byte) error {
	if s.headers == 0 {
		if len(packet) < 30 {
			return errors.New("short identification header")
		}
		s.channels = int(packet[11])
		s.planes = make(pcm.Block, s.channels)
	}
	s.headers++
	return nil
}

func (s *RawSynthesizer) BlockIn(packet *ogg.Packet) error {
	data := packet.Data
	if s.headers < 3 {
		return errors.New("missing headers")
	} else if len(data)%(4*s.channels) != 0 {
		return errors.New("truncated frame")
	}

	for i := 0; i < len(data)/4; i++ {
		v := math.Float32frombits(binary.LittleEndian.Uint32(data[4*i:]))
		c := i % s.channels
		s.planes[c] = append(s.planes[c], v)
	}
	return nil
}

func (s *RawSynthesizer) PcmOut() pcm.Block {
	return s.planes
}

func (s *RawSynthesizer) Read(n int) {
	for c := range s.planes {
		s.planes[c] = s.planes[c][min(n, len(s.planes[c])):]
	}
}

func (s *RawSynthesizer) Reset() {
	s.Resets++
}

func (s *RawSynthesizer) Close() {
	s.Closed = true
}

// RawPackets splits block into packets of framesPerPacket frames for
// RawSynthesizer, with granule positions counting frames.
func RawPackets(block pcm.Block, framesPerPacket int) []Packet {
	var packets []Packet
	channels := len(block)
	for start := 0; start < block.Frames(); start += framesPerPacket {
		end := min(start+framesPerPacket, block.Frames())
		data := make([]byte, 0, (end-start)*channels*4)
		for i := start; i < end; i++ {
			for c := 0; c < channels; c++ {
				data = binary.LittleEndian.AppendUint32(data, math.Float32bits(block[c][i]))
			}
		}
		packets = append(packets, Packet{Data: data, Granule: int64(end)})
	}
	return packets
}

// Sine returns frames samples of a sine wave on every channel.
func Sine(sampleRate, channels, frames int, frequency float64, amplitude float32) pcm.Block {
	block := make(pcm.Block, channels)
	for c := range block {
		block[c] = make([]float32, frames)
		for i := range block[c] {
			t := float64(i) / float64(sampleRate)
			block[c][i] = amplitude * float32(math.Sin(2*math.Pi*frequency*t+float64(c)))
		}
	}
	return block
}
