package audio

import (
	"errors"
	"io"
	"time"
)

// LatencyReader measures the time from the first Read until the wrapped
// source reports EOF. Closing it closes the source if it is an io.Closer.
type LatencyReader struct {
	io.Reader
	Callback func(time.Duration)

	start   time.Time
	latency time.Duration
	done    bool
}

func (r *LatencyReader) Read(b []byte) (int, error) {
	if r.start.IsZero() {
		r.start = time.Now()
	}

	n, err := r.Reader.Read(b)
	if errors.Is(err, io.EOF) && !r.done {
		r.done = true
		r.latency = time.Since(r.start)
		if r.Callback != nil {
			r.Callback(r.latency)
		}
	}

	return n, err
}

// Latency returns the measured time, zero until EOF was reached.
func (r *LatencyReader) Latency() time.Duration {
	return r.latency
}

func (r *LatencyReader) Close() error {
	if c, ok := r.Reader.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
