package ogg

// Packet is a codec packet reassembled from one or more pages.
type Packet struct {
	Data []byte

	// BOS is set for the first packet of the logical stream.
	BOS bool
	// EOS is set for the last packet of the last page.
	EOS bool

	// GranulePos is the position of the page this packet ends, or -1 when
	// another packet ends after it on the same page.
	GranulePos int64
	PacketNo   int64
}

// StreamState reassembles the packets of one logical bitstream.
type StreamState struct {
	serial uint32

	lastSeq  int64
	partial  []byte
	packetNo int64
	bos      bool
	eos      bool

	// queue holds complete packets in arrival order, a nil entry marks a hole.
	queue []*Packet
}

func NewStreamState(serial uint32) *StreamState {
	return &StreamState{serial: serial, lastSeq: -1}
}

func (s *StreamState) Serial() uint32 {
	return s.serial
}

// EOS reports whether the end of stream page has been submitted.
func (s *StreamState) EOS() bool {
	return s.eos
}

// Pending returns the number of queued packets.
func (s *StreamState) Pending() int {
	var n int
	for _, pkt := range s.queue {
		if pkt != nil {
			n++
		}
	}
	return n
}

// Reset forgets all pending data and sequence tracking.
func (s *StreamState) Reset() {
	s.lastSeq = -1
	s.partial = nil
	s.packetNo = 0
	s.bos, s.eos = false, false
	s.queue = nil
}

func (s *StreamState) markHole() {
	s.partial = nil
	if n := len(s.queue); n > 0 && s.queue[n-1] == nil {
		return
	}
	s.queue = append(s.queue, nil)
}

// PageIn submits a page to the stream.
func (s *StreamState) PageIn(p *Page) error {
	if p.SerialNumber != s.serial {
		return ErrSerialMismatch
	} else if p.Version != 0 {
		return ErrUnsupportedVersion
	} else if err := p.validate(); err != nil {
		return err
	}

	if s.lastSeq >= 0 && int64(p.PageSequence) != s.lastSeq+1 {
		s.markHole()
	}
	s.lastSeq = int64(p.PageSequence)

	segments, off := p.Segments, 0
	if p.IsBOS() && !p.IsContinued() {
		s.bos = true
	}

	if p.IsContinued() {
		if len(s.partial) == 0 {
			// the start of this packet was lost, drop the fragment
			for len(segments) > 0 {
				seg := segments[0]
				segments = segments[1:]
				off += int(seg)
				if seg < 255 {
					break
				}
			}
		}
	} else if len(s.partial) > 0 {
		s.markHole()
	}

	last := -1
	for i := len(segments) - 1; i >= 0; i-- {
		if segments[i] < 255 {
			last = i
			break
		}
	}

	for i, seg := range segments {
		s.partial = append(s.partial, p.Payload[off:off+int(seg)]...)
		off += int(seg)
		if seg == 255 {
			continue
		}

		pkt := &Packet{Data: s.partial, BOS: s.bos, GranulePos: -1, PacketNo: s.packetNo}
		if pkt.Data == nil {
			pkt.Data = []byte{}
		}
		if i == last {
			pkt.GranulePos = p.GranulePos
			pkt.EOS = p.IsEOS()
		}

		s.queue = append(s.queue, pkt)
		s.packetNo++
		s.partial = nil
		s.bos = false
	}

	if p.IsEOS() {
		s.eos = true
	}

	return nil
}

// PacketOut returns the next complete packet, nil when none is complete, or
// ErrHole once for every gap in the data.
func (s *StreamState) PacketOut() (*Packet, error) {
	if len(s.queue) == 0 {
		return nil, nil
	}

	pkt := s.queue[0]
	s.queue[0] = nil
	s.queue = s.queue[1:]
	if pkt == nil {
		return nil, ErrHole
	}

	return pkt, nil
}

// PageToPackets submits a page and returns every packet completed so far.
// Holes are skipped.
func (s *StreamState) PageToPackets(p *Page) ([]*Packet, error) {
	if err := s.PageIn(p); err != nil {
		return nil, err
	}

	var packets []*Packet
	for len(s.queue) > 0 {
		pkt, _ := s.PacketOut()
		if pkt != nil {
			packets = append(packets, pkt)
		}
	}

	return packets, nil
}
