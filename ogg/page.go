package ogg

import (
	"encoding/binary"
	"fmt"
)

// Page header flags.
const (
	// PageFlagContinuation marks a page whose first segment continues a packet
	// from the previous page.
	PageFlagContinuation = 0x01

	// PageFlagBOS marks the first page of a logical bitstream.
	PageFlagBOS = 0x02

	// PageFlagEOS marks the last page of a logical bitstream.
	PageFlagEOS = 0x04
)

const (
	pageHeaderSize = 27
	maxSegments    = 255
	captureMagic   = "OggS"
)

// Page is one frame of an Ogg physical bitstream.
type Page struct {
	Version    byte
	HeaderType byte

	// GranulePos is the codec defined position of the last packet completed
	// on this page, or -1 if no packet ends here.
	GranulePos int64

	SerialNumber uint32
	PageSequence uint32

	// Segments is the lacing table. A value of 255 continues the current
	// packet, any smaller value ends it.
	Segments []byte
	Payload  []byte
}

func (p *Page) IsContinued() bool {
	return p.HeaderType&PageFlagContinuation != 0
}

func (p *Page) IsBOS() bool {
	return p.HeaderType&PageFlagBOS != 0
}

func (p *Page) IsEOS() bool {
	return p.HeaderType&PageFlagEOS != 0
}

// CompletedPackets returns how many packets end on this page.
func (p *Page) CompletedPackets() int {
	var n int
	for _, seg := range p.Segments {
		if seg < 255 {
			n++
		}
	}
	return n
}

func (p *Page) String() string {
	return fmt.Sprintf("page{serial: %08x, seq: %d, granule: %d, segments: %d, bytes: %d, flags: %03b}",
		p.SerialNumber, p.PageSequence, p.GranulePos, len(p.Segments), len(p.Payload), p.HeaderType)
}

func (p *Page) validate() error {
	if len(p.Segments) > maxSegments {
		return ErrInvalidPage
	}

	var size int
	for _, seg := range p.Segments {
		size += int(seg)
	}
	if size != len(p.Payload) {
		return ErrInvalidPage
	}

	return nil
}

// Encode serializes the page, filling in its checksum.
func (p *Page) Encode() ([]byte, error) {
	if err := p.validate(); err != nil {
		return nil, err
	}

	headerSize := pageHeaderSize + len(p.Segments)
	data := make([]byte, headerSize+len(p.Payload))

	copy(data[0:4], captureMagic)
	data[4] = p.Version
	data[5] = p.HeaderType
	binary.LittleEndian.PutUint64(data[6:14], uint64(p.GranulePos))
	binary.LittleEndian.PutUint32(data[14:18], p.SerialNumber)
	binary.LittleEndian.PutUint32(data[18:22], p.PageSequence)
	data[26] = byte(len(p.Segments))
	copy(data[pageHeaderSize:], p.Segments)
	copy(data[headerSize:], p.Payload)

	binary.LittleEndian.PutUint32(data[22:26], pageChecksum(data[:headerSize], data[headerSize:]))
	return data, nil
}

// decodePage builds a page from a verified header and body. The returned page
// does not alias the input.
func decodePage(header, body []byte) *Page {
	p := &Page{
		Version:      header[4],
		HeaderType:   header[5],
		GranulePos:   int64(binary.LittleEndian.Uint64(header[6:14])),
		SerialNumber: binary.LittleEndian.Uint32(header[14:18]),
		PageSequence: binary.LittleEndian.Uint32(header[18:22]),
	}

	p.Segments = make([]byte, len(header)-pageHeaderSize)
	copy(p.Segments, header[pageHeaderSize:])
	p.Payload = make([]byte, len(body))
	copy(p.Payload, body)
	return p
}

// segmentTable returns the lacing values of a packet of n bytes. A packet whose
// size is a multiple of 255 is terminated by a zero lacing value.
func segmentTable(n int) []byte {
	segments := make([]byte, n/255+1)
	for i := 0; i < len(segments)-1; i++ {
		segments[i] = 255
	}
	segments[len(segments)-1] = byte(n % 255)
	return segments
}
