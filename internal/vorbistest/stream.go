package vorbistest

import (
	"bytes"

	"github.com/thog92/go-lwjall/ogg"
)

// Packet is an audio packet with the granule position it ends at.
type Packet struct {
	Data    []byte
	Granule int64
}

// Encode muxes headers and packets into an Ogg stream the way encoders do:
// the identification header alone on the first page, the other headers on
// their own pages and audio starting on a fresh page. Every packetsPerPage
// packets a page is flushed, 0 leaves page boundaries to the writer.
func Encode(serial uint32, headers [][]byte, packets []Packet, packetsPerPage int) []byte {
	var buf bytes.Buffer
	w := ogg.NewWriterSerial(&buf, serial)

	for i, h := range headers {
		must(w.WritePacket(h, 0, false))
		if i == 0 || i == len(headers)-1 {
			must(w.Flush())
		}
	}

	for i, p := range packets {
		must(w.WritePacket(p.Data, p.Granule, i == len(packets)-1))
		if packetsPerPage > 0 && (i+1)%packetsPerPage == 0 && i != len(packets)-1 {
			must(w.Flush())
		}
	}

	if len(packets) == 0 {
		must(w.Close())
	}

	return buf.Bytes()
}

// SilentPackets returns n single byte packets that decode to silence with
// SetupHeader. The first packet only primes the decoder, every other one
// yields half a short block.
func SilentPackets(n int, shortBlock int) []Packet {
	packets := make([]Packet, n)
	for i := range packets {
		packets[i] = Packet{Data: []byte{0x00}, Granule: int64(i * shortBlock / 2)}
	}
	return packets
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
