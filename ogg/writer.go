package ogg

import (
	"fmt"
	"io"

	"golang.org/x/exp/rand"
)

// pageFillSize is the payload size after which a page is emitted.
const pageFillSize = 4096

// Writer packs packets of a single logical bitstream into pages.
type Writer struct {
	w      io.Writer
	serial uint32

	seq      uint32
	segments []byte
	body     []byte

	// granule of the last packet completed on the pending page, -1 if none
	granule   int64
	continued bool
	ended     bool
	closed    bool
}

// NewWriter returns a Writer with a random serial number.
func NewWriter(w io.Writer) *Writer {
	return NewWriterSerial(w, rand.Uint32())
}

func NewWriterSerial(w io.Writer, serial uint32) *Writer {
	return &Writer{w: w, serial: serial, granule: -1}
}

func (w *Writer) Serial() uint32 {
	return w.serial
}

// WritePacket appends a packet ending at the given granule position. When eos
// is set the packet is the last one and the final page is written immediately.
func (w *Writer) WritePacket(data []byte, granule int64, eos bool) error {
	if w.closed || w.ended {
		return ErrWriterClosed
	}

	var off int
	for _, seg := range segmentTable(len(data)) {
		if len(w.segments) == maxSegments {
			if err := w.writePage(false); err != nil {
				return err
			}
		}

		w.segments = append(w.segments, seg)
		w.body = append(w.body, data[off:off+int(seg)]...)
		off += int(seg)
	}
	w.granule = granule

	if eos {
		return w.writePage(true)
	} else if len(w.body) >= pageFillSize {
		return w.writePage(false)
	}

	return nil
}

// Flush emits the pending data as a page, if any.
func (w *Writer) Flush() error {
	if w.closed || w.ended {
		return ErrWriterClosed
	} else if len(w.segments) == 0 {
		return nil
	}

	return w.writePage(false)
}

// Close writes the pending data as the end of stream page, unless the stream
// was already ended by WritePacket.
func (w *Writer) Close() error {
	if w.closed {
		return ErrWriterClosed
	}

	var err error
	if !w.ended {
		err = w.writePage(true)
	}

	w.closed = true
	return err
}

func (w *Writer) writePage(eos bool) error {
	page := Page{
		SerialNumber: w.serial,
		PageSequence: w.seq,
		GranulePos:   -1,
		Segments:     w.segments,
		Payload:      w.body,
	}

	if w.continued {
		page.HeaderType |= PageFlagContinuation
	}
	if w.seq == 0 {
		page.HeaderType |= PageFlagBOS
	}
	if eos {
		page.HeaderType |= PageFlagEOS
	}

	for _, seg := range w.segments {
		if seg < 255 {
			page.GranulePos = w.granule
			break
		}
	}

	data, err := page.Encode()
	if err != nil {
		return fmt.Errorf("failed encoding page %d: %w", w.seq, err)
	}

	if _, err := w.w.Write(data); err != nil {
		return fmt.Errorf("failed writing page %d: %w", w.seq, err)
	}

	w.continued = len(w.segments) > 0 && w.segments[len(w.segments)-1] == 255
	w.segments = w.segments[:0]
	w.body = w.body[:0]
	w.granule = -1
	w.seq++
	w.ended = eos
	return nil
}
