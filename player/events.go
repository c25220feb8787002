package player

type EventType int

const (
	EventTypePlay EventType = iota
	EventTypeStop
	EventTypeLoop
	EventTypeNotPlaying
)

func (t EventType) String() string {
	switch t {
	case EventTypePlay:
		return "play"
	case EventTypeStop:
		return "stop"
	case EventTypeLoop:
		return "loop"
	case EventTypeNotPlaying:
		return "not_playing"
	default:
		return "unknown"
	}
}

type Event struct {
	Type EventType

	// Err is set when playback ended because of a failure.
	Err error
}
