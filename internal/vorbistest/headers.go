// Package vorbistest builds Ogg Vorbis streams for tests.
package vorbistest

import (
	"encoding/binary"
)

// IdentificationHeader returns a 30 byte identification header. The block
// sizes are given as base 2 exponents.
func IdentificationHeader(channels, sampleRate int, shortExp, longExp byte) []byte {
	h := make([]byte, 30)
	h[0] = 0x01
	copy(h[1:7], "vorbis")
	binary.LittleEndian.PutUint32(h[7:11], 0)
	h[11] = byte(channels)
	binary.LittleEndian.PutUint32(h[12:16], uint32(sampleRate))
	binary.LittleEndian.PutUint32(h[16:20], 0)
	binary.LittleEndian.PutUint32(h[20:24], 128000)
	binary.LittleEndian.PutUint32(h[24:28], 0)
	h[28] = longExp<<4 | shortExp
	h[29] = 0x01
	return h
}

// CommentHeader returns a comment header. A vendor of 34 bytes and no
// comments yields a 50 byte header.
func CommentHeader(vendor string, comments ...string) []byte {
	h := []byte{0x03, 'v', 'o', 'r', 'b', 'i', 's'}
	h = binary.LittleEndian.AppendUint32(h, uint32(len(vendor)))
	h = append(h, vendor...)
	h = binary.LittleEndian.AppendUint32(h, uint32(len(comments)))
	for _, c := range comments {
		h = binary.LittleEndian.AppendUint32(h, uint32(len(c)))
		h = append(h, c...)
	}
	return append(h, 0x01)
}

type bitWriter struct {
	data []byte
	bit  uint
}

func (w *bitWriter) write(v uint32, n uint) {
	for i := uint(0); i < n; i++ {
		if w.bit == 0 {
			w.data = append(w.data, 0)
		}
		if v&(1<<i) != 0 {
			w.data[len(w.data)-1] |= 1 << w.bit
		}
		w.bit = (w.bit + 1) % 8
	}
}

// SetupHeader returns the smallest setup header a decoder accepts, zero
// padded to size bytes. It describes a single short block mode whose packets
// decode to silence.
func SetupHeader(size int) []byte {
	var w bitWriter

	// codebooks
	w.write(0, 8)
	w.write(0x564342, 24)
	w.write(1, 16)
	w.write(2, 24)
	w.write(0, 1)
	w.write(0, 1)
	w.write(0, 5)
	w.write(0, 5)
	w.write(0, 4)

	// time domain transforms
	w.write(0, 6)
	w.write(0, 16)

	// floors
	w.write(0, 6)
	w.write(1, 16)
	w.write(0, 5)
	w.write(0, 3)
	w.write(0, 2)
	w.write(0, 8)
	w.write(1, 2)
	w.write(8, 4)

	// residues
	w.write(0, 6)
	w.write(0, 16)
	w.write(0, 24)
	w.write(0, 24)
	w.write(0, 24)
	w.write(0, 6)
	w.write(0, 8)
	w.write(0, 3)
	w.write(0, 1)

	// mappings
	w.write(0, 6)
	w.write(0, 16)
	w.write(0, 1)
	w.write(0, 1)
	w.write(0, 2)
	w.write(0, 8)
	w.write(0, 8)
	w.write(0, 8)

	// modes
	w.write(0, 6)
	w.write(0, 1)
	w.write(0, 16)
	w.write(0, 16)
	w.write(0, 8)

	// framing
	w.write(1, 1)

	h := append([]byte{0x05, 'v', 'o', 'r', 'b', 'i', 's'}, w.data...)
	if len(h) < size {
		h = append(h, make([]byte, size-len(h))...)
	}
	return h
}

// Headers returns the identification, comment and setup headers of a stream
// of 30, 50 and 4000 bytes.
func Headers(channels, sampleRate int) [][]byte {
	return [][]byte{
		IdentificationHeader(channels, sampleRate, 8, 11),
		CommentHeader("go-lwjall test vendor string 01234"),
		SetupHeader(4000),
	}
}
