package vorbis

import (
	"encoding/binary"
	"errors"
	"fmt"

	lwjall "github.com/thog92/go-lwjall"
)

// SplitXiphLacing splits codec private data into the three header packets when
// no Ogg stream is available. Both Xiph lacing (as used by Matroska) and the
// 16-bit length prefixed form are accepted.
func SplitXiphLacing(codecPriv []byte) ([][]byte, error) {
	if len(codecPriv) < 2 {
		return nil, fmt.Errorf("%w: no codec private data", lwjall.ErrMalformedHeader)
	}

	if codecPriv[0] == 0x00 && codecPriv[1] == identificationHeaderSize {
		headers := make([][]byte, 0, 3)
		p := codecPriv
		for i := 0; i < 3; i++ {
			if len(p) < 2 {
				return nil, fmt.Errorf("%w: header %d size missing", lwjall.ErrMalformedHeader, i+1)
			}

			size := int(binary.BigEndian.Uint16(p))
			if size > len(p)-2 {
				return nil, fmt.Errorf("%w: header %d size damaged", lwjall.ErrMalformedHeader, i+1)
			}

			headers = append(headers, p[2:2+size])
			p = p[2+size:]
		}
		return headers, nil
	} else if codecPriv[0] != 0x02 {
		return nil, fmt.Errorf("%w: initial header len is wrong: %d", lwjall.ErrMalformedHeader, codecPriv[0])
	}

	var sizes [2]int
	offset := 1
	for i := range sizes {
		for offset < len(codecPriv) && codecPriv[offset] == 0xff {
			sizes[i] += 0xff
			offset++
		}
		if offset >= len(codecPriv)-1 {
			return nil, fmt.Errorf("%w: header sizes damaged", lwjall.ErrMalformedHeader)
		}

		sizes[i] += int(codecPriv[offset])
		offset++
	}

	if offset+sizes[0]+sizes[1] > len(codecPriv) {
		return nil, fmt.Errorf("%w: header sizes exceed codec private data", lwjall.ErrMalformedHeader)
	}

	first := codecPriv[offset : offset+sizes[0]]
	second := codecPriv[offset+sizes[0] : offset+sizes[0]+sizes[1]]
	third := codecPriv[offset+sizes[0]+sizes[1]:]
	return [][]byte{first, second, third}, nil
}

// JoinXiphLacing is the inverse of SplitXiphLacing.
func JoinXiphLacing(headers [][]byte) ([]byte, error) {
	if len(headers) != 3 {
		return nil, errors.New("vorbis: exactly three headers are required")
	}

	out := []byte{0x02}
	for _, h := range headers[:2] {
		n := len(h)
		for ; n >= 0xff; n -= 0xff {
			out = append(out, 0xff)
		}
		out = append(out, byte(n))
	}

	for _, h := range headers {
		out = append(out, h...)
	}
	return out, nil
}
