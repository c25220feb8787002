package go_lwjall

import (
	"errors"
	"fmt"
)

var (
	// ErrNotThisCodec is returned when the first header packet is not a Vorbis
	// identification header. The caller may try another decoder on the same data.
	ErrNotThisCodec = errors.New("not a vorbis stream")

	// ErrMalformedHeader is returned when the stream headers are truncated or corrupt.
	ErrMalformedHeader = errors.New("malformed stream header")

	// ErrDesync is returned when the container framing could not be recovered.
	ErrDesync = errors.New("container framing lost")

	// ErrNotInitialized is returned when audio is requested before the headers
	// have been negotiated.
	ErrNotInitialized = errors.New("decoder not initialized")

	// ErrClosed is returned by any operation on a closed decoder or buffer.
	ErrClosed = errors.New("decoder closed")
)

// IoError wraps a failure of the byte source.
type IoError struct {
	Op  string
	Err error
}

func (e *IoError) Error() string {
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *IoError) Unwrap() error {
	return e.Err
}
