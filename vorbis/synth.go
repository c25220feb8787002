package vorbis

import (
	"fmt"

	"github.com/thog92/go-lwjall/ogg"
	"github.com/thog92/go-lwjall/pcm"
)

// Synthesizer turns Vorbis packets into PCM. Samples made available by BlockIn
// stay in PcmOut until they are marked consumed with Read.
type Synthesizer interface {
	// HeaderIn submits the identification, comment and setup headers in order.
	HeaderIn(packet []byte) error

	// BlockIn synthesizes one audio packet. GranulePos is -1 unless the packet
	// ends a page.
	BlockIn(packet *ogg.Packet) error

	// PcmOut returns the unread samples. The returned planes are only valid
	// until the next call to Read or BlockIn.
	PcmOut() pcm.Block

	// Read marks the first n frames of PcmOut as consumed.
	Read(n int)

	// Reset drops the overlap with the previous packet, it is called after lost data.
	Reset()

	Close()
}

func recoverDecodingPanic(err *error) {
	if r := recover(); r != nil {
		*err = fmt.Errorf("vorbis: decoding panic: %v", r)
	}
}
