package ogg

import "errors"

var (
	// ErrInvalidPage is returned for a page whose segment table does not match its payload.
	ErrInvalidPage = errors.New("ogg: invalid page structure")

	// ErrUnsupportedVersion is returned for pages with a stream structure version other than 0.
	ErrUnsupportedVersion = errors.New("ogg: unsupported stream structure version")

	// ErrSerialMismatch is returned when a page is submitted to the stream of another serial number.
	ErrSerialMismatch = errors.New("ogg: page belongs to another logical stream")

	// ErrHole is returned once by StreamState.PacketOut when data was lost
	// between two packets.
	ErrHole = errors.New("ogg: hole in data")

	// ErrBufferOverflow is returned when more bytes are committed than were requested.
	ErrBufferOverflow = errors.New("ogg: sync buffer overflow")

	// ErrWriterClosed is returned when writing to a closed Writer.
	ErrWriterClosed = errors.New("ogg: writer closed")
)
