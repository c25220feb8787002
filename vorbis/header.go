package vorbis

import (
	"bytes"
	"encoding/binary"
	"errors"
	"fmt"
	"strings"

	lwjall "github.com/thog92/go-lwjall"
)

const (
	headerTypeIdentification = 1
	headerTypeComment        = 3
	headerTypeSetup          = 5

	identificationHeaderSize = 30
)

var codecMagic = []byte("vorbis")

// Bitrate hints from the identification header. Any of them may be zero.
type Bitrate struct {
	Maximum int
	Nominal int
	Minimum int
}

// Info represents basic information about the audio in a Vorbis bitstream.
type Info struct {
	Channels   int
	SampleRate int
	Bitrate    Bitrate

	// BlockSize holds the short and long window sizes.
	BlockSize [2]int

	Vendor   string
	Comments []string
}

// Format returns the PCM format the decoder output converts to.
func (i Info) Format() lwjall.Format {
	return lwjall.NewS16LEFormat(i.SampleRate, i.Channels)
}

// Comment returns the value of the first user comment with the given field
// name. Field names are case insensitive.
func (i Info) Comment(name string) (string, bool) {
	for _, c := range i.Comments {
		key, value, ok := strings.Cut(c, "=")
		if ok && strings.EqualFold(key, name) {
			return value, true
		}
	}
	return "", false
}

// IsHeader reports whether the packet carries a Vorbis header.
func IsHeader(packet []byte) bool {
	return len(packet) >= 7 && packet[0]&1 == 1 && bytes.Equal(packet[1:7], codecMagic)
}

func isHeaderType(packet []byte, typ byte) bool {
	return IsHeader(packet) && packet[0] == typ
}

func parseIdentification(packet []byte) (Info, error) {
	if !isHeaderType(packet, headerTypeIdentification) {
		return Info{}, errors.New("missing identification header")
	} else if len(packet) < identificationHeaderSize {
		return Info{}, fmt.Errorf("identification header too short: %d bytes", len(packet))
	}

	h := packet[7:]
	le := binary.LittleEndian
	if version := le.Uint32(h[0:4]); version != 0 {
		return Info{}, fmt.Errorf("unsupported vorbis version %d", version)
	}

	info := Info{
		Channels:   int(h[4]),
		SampleRate: int(le.Uint32(h[5:9])),
		Bitrate: Bitrate{
			Maximum: int(int32(le.Uint32(h[9:13]))),
			Nominal: int(int32(le.Uint32(h[13:17]))),
			Minimum: int(int32(le.Uint32(h[17:21]))),
		},
		BlockSize: [2]int{1 << (h[21] & 0x0f), 1 << (h[21] >> 4)},
	}

	if info.Channels < 1 {
		return Info{}, errors.New("no channels")
	} else if info.SampleRate <= 0 {
		return Info{}, errors.New("invalid sample rate")
	}

	for _, size := range info.BlockSize {
		if size < 64 || size > 8192 {
			return Info{}, fmt.Errorf("invalid block size %d", size)
		}
	}
	if info.BlockSize[0] > info.BlockSize[1] {
		return Info{}, fmt.Errorf("short block size %d exceeds long block size %d", info.BlockSize[0], info.BlockSize[1])
	}

	if h[22]&1 == 0 {
		return Info{}, errors.New("identification header framing bit not set")
	}

	return info, nil
}

func parseComment(packet []byte) (vendor string, comments []string, err error) {
	if !isHeaderType(packet, headerTypeComment) {
		return "", nil, errors.New("missing comment header")
	}

	h := packet[7:]
	next := func() (string, bool) {
		if len(h) < 4 {
			return "", false
		}
		n := binary.LittleEndian.Uint32(h)
		if uint64(n) > uint64(len(h)-4) {
			return "", false
		}
		s := string(h[4 : 4+n])
		h = h[4+n:]
		return s, true
	}

	vendor, ok := next()
	if !ok {
		return "", nil, errors.New("truncated vendor string")
	} else if len(h) < 4 {
		return "", nil, errors.New("truncated comment count")
	}

	count := binary.LittleEndian.Uint32(h)
	h = h[4:]
	if uint64(count) > uint64(len(h)/4) {
		return "", nil, fmt.Errorf("comment count %d exceeds header size", count)
	}

	comments = make([]string, 0, count)
	for i := uint32(0); i < count; i++ {
		comment, ok := next()
		if !ok {
			return "", nil, fmt.Errorf("truncated comment %d", i)
		}
		comments = append(comments, comment)
	}

	return vendor, comments, nil
}
