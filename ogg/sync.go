package ogg

import (
	"bytes"
	"encoding/binary"
)

// Outcome reports the result of a SyncState.PageOut attempt.
type Outcome int

const (
	// NeedMoreData means no complete page is buffered yet.
	NeedMoreData Outcome = iota
	// PageReady means a verified page was extracted.
	PageReady
	// Desynchronized means bytes were skipped while looking for a page boundary.
	Desynchronized
)

func (o Outcome) String() string {
	switch o {
	case NeedMoreData:
		return "need_more_data"
	case PageReady:
		return "page_ready"
	case Desynchronized:
		return "desynchronized"
	default:
		return "unknown"
	}
}

// SyncState is the byte window in front of the page parser. Bytes submitted
// through Buffer/Wrote or Write are consumed exactly once, in order.
type SyncState struct {
	data     []byte
	fill     int
	returned int
	avail    int

	// header and body size of the page candidate at returned, once its
	// segment table has been read.
	headerBytes int
	bodyBytes   int

	skipped int64
}

// Buffer returns a writable slice of exactly size bytes at the end of the
// window. Callers fill a prefix of it and report the count with Wrote.
func (s *SyncState) Buffer(size int) []byte {
	if s.returned > 0 {
		remaining := s.fill - s.returned
		if remaining > 0 {
			copy(s.data, s.data[s.returned:s.fill])
		}
		s.fill = remaining
		s.returned = 0
	}

	if size > len(s.data)-s.fill {
		grown := make([]byte, s.fill+size+4096)
		copy(grown, s.data[:s.fill])
		s.data = grown
	}

	s.avail = size
	return s.data[s.fill : s.fill+size]
}

// Wrote commits n bytes previously written into the slice returned by Buffer.
func (s *SyncState) Wrote(n int) error {
	if n < 0 || n > s.avail {
		return ErrBufferOverflow
	}

	s.fill += n
	s.avail -= n
	return nil
}

// Write appends a copy of p to the window.
func (s *SyncState) Write(p []byte) (int, error) {
	copy(s.Buffer(len(p)), p)
	if err := s.Wrote(len(p)); err != nil {
		return 0, err
	}

	return len(p), nil
}

// SyncFill appends raw to the window and attempts to extract a page.
func (s *SyncState) SyncFill(raw []byte) (*Page, Outcome) {
	_, _ = s.Write(raw)
	return s.PageOut()
}

// Buffered returns the number of bytes not yet consumed by a page.
func (s *SyncState) Buffered() int {
	return s.fill - s.returned
}

// Skipped returns the number of bytes discarded since the last verified page.
func (s *SyncState) Skipped() int64 {
	return s.skipped
}

// Reset drops all buffered bytes.
func (s *SyncState) Reset() {
	s.fill, s.returned, s.avail = 0, 0, 0
	s.headerBytes, s.bodyBytes = 0, 0
	s.skipped = 0
}

// PageOut extracts the next verified page from the window. On Desynchronized
// the window has already been advanced to the next candidate, so calling
// PageOut again makes progress.
func (s *SyncState) PageOut() (*Page, Outcome) {
	data := s.data[s.returned:s.fill]

	if s.headerBytes == 0 {
		if len(data) < len(captureMagic) {
			return nil, NeedMoreData
		} else if string(data[:4]) != captureMagic {
			return s.skip(data)
		} else if len(data) < pageHeaderSize {
			return nil, NeedMoreData
		} else if data[4] != 0 {
			return s.skip(data)
		}

		headerBytes := pageHeaderSize + int(data[26])
		if len(data) < headerBytes {
			return nil, NeedMoreData
		}

		var bodyBytes int
		for _, seg := range data[pageHeaderSize:headerBytes] {
			bodyBytes += int(seg)
		}

		s.headerBytes, s.bodyBytes = headerBytes, bodyBytes
	}

	total := s.headerBytes + s.bodyBytes
	if len(data) < total {
		return nil, NeedMoreData
	}

	header, body := data[:s.headerBytes], data[s.headerBytes:total]
	if binary.LittleEndian.Uint32(header[22:26]) != pageChecksum(header, body) {
		return s.skip(data)
	}

	page := decodePage(header, body)
	s.returned += total
	s.headerBytes, s.bodyBytes = 0, 0
	s.skipped = 0
	return page, PageReady
}

// skip discards the rejected candidate at the start of data up to the next
// possible capture pattern.
func (s *SyncState) skip(data []byte) (*Page, Outcome) {
	s.headerBytes, s.bodyBytes = 0, 0

	n := len(data)
	if next := bytes.IndexByte(data[1:], captureMagic[0]); next >= 0 {
		n = next + 1
	}

	s.returned += n
	s.skipped += int64(n)
	return nil, Desynchronized
}
