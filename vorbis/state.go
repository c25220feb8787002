package vorbis

// State is the lifecycle of a decoding session.
type State int

const (
	StateUninitialized State = iota
	StateHeaderNegotiating
	StateStreaming
	StateEndOfStream
	StateFailed
	StateClosed
)

func (s State) String() string {
	switch s {
	case StateUninitialized:
		return "uninitialized"
	case StateHeaderNegotiating:
		return "header_negotiating"
	case StateStreaming:
		return "streaming"
	case StateEndOfStream:
		return "end_of_stream"
	case StateFailed:
		return "failed"
	case StateClosed:
		return "closed"
	default:
		return "unknown"
	}
}
