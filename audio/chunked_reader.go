package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"regexp"
	"slices"
	"strconv"
	"sync"
	"time"

	"github.com/cenkalti/backoff/v4"
	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/internal/metrics"
)

const DefaultChunkSize = 512 * 1024

const DefaultMaxRetries = 5

var contentRangeRegexp = regexp.MustCompile("^bytes (\\d+)-(\\d+)/(\\d+|\\*)$")

// parseContentRange returns a size of -1 when the complete length is unknown.
func parseContentRange(resp *http.Response) (start int64, end int64, size int64, err error) {
	header := resp.Header.Get("Content-Range")
	if len(header) == 0 {
		return 0, 0, 0, fmt.Errorf("invalid first chunk response status: no Content-Range header")
	}

	match := contentRangeRegexp.FindStringSubmatch(header)
	if len(match) == 0 {
		return 0, 0, 0, fmt.Errorf("invalid content range header: %s", header)
	} else if start, err = strconv.ParseInt(match[1], 10, 0); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid content range start: %w", err)
	} else if end, err = strconv.ParseInt(match[2], 10, 0); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid content range end: %w", err)
	} else if match[3] == "*" {
		size = -1
	} else if size, err = strconv.ParseInt(match[3], 10, 0); err != nil {
		return 0, 0, 0, fmt.Errorf("invalid content range size: %w", err)
	}

	return start, end, size, nil
}

// HttpChunkedReader reads a remote resource front to back with range
// requests of a fixed size. Only the chunk being read is kept in memory.
//
// A server answering the first request with the whole resource instead of a
// range is read sequentially from that response.
type HttpChunkedReader struct {
	log    lwjall.Logger
	client *http.Client
	url    *url.URL

	chunkSize     int64
	maxRetries    uint64
	retryInterval time.Duration

	ctx    context.Context
	cancel context.CancelFunc

	mu sync.Mutex
	// len is -1 until the end of a resource of unknown size is reached.
	len    int64
	pos    int64
	chunk  []byte
	off    int
	body   io.ReadCloser
	closed bool

	latencies []time.Duration
}

type HttpChunkedReaderOption func(*HttpChunkedReader)

func WithChunkSize(size int) HttpChunkedReaderOption {
	return func(r *HttpChunkedReader) {
		if size > 0 {
			r.chunkSize = int64(size)
		}
	}
}

// WithRetries sets how many times a chunk request is retried and the
// initial wait between attempts.
func WithRetries(maxRetries int, interval time.Duration) HttpChunkedReaderOption {
	return func(r *HttpChunkedReader) {
		r.maxRetries = uint64(max(maxRetries, 0))
		if interval > 0 {
			r.retryInterval = interval
		}
	}
}

func NewHttpChunkedReader(log lwjall.Logger, client *http.Client, audioUrl string, opts ...HttpChunkedReaderOption) (_ *HttpChunkedReader, err error) {
	r := &HttpChunkedReader{
		log:           lwjall.OrNullLogger(log),
		client:        client,
		chunkSize:     DefaultChunkSize,
		maxRetries:    DefaultMaxRetries,
		retryInterval: 500 * time.Millisecond,
	}

	for _, opt := range opts {
		opt(r)
	}

	if r.client == nil {
		r.client = http.DefaultClient
	}

	r.url, err = url.Parse(audioUrl)
	if err != nil {
		return nil, fmt.Errorf("failed parsing resource url: %w", err)
	}

	r.ctx, r.cancel = context.WithCancel(context.Background())

	// request the first chunk, needed for the complete content length
	if err := r.fetchChunk(0); err != nil {
		r.cancel()
		return nil, fmt.Errorf("failed requesting first chunk: %w", err)
	}

	r.log.Debugf("fetched first chunk of %d bytes, total size is %d bytes", len(r.chunk), r.len)
	return r, nil
}

func (r *HttpChunkedReader) requestChunk(start int64) (*http.Response, error) {
	req, err := http.NewRequestWithContext(r.ctx, http.MethodGet, r.url.String(), nil)
	if err != nil {
		return nil, err
	}

	req.Header.Set("User-Agent", lwjall.VersionString())
	req.Header.Set("Range", fmt.Sprintf("bytes=%d-%d", start, start+r.chunkSize-1))
	return r.client.Do(req)
}

// downloadChunk performs a single attempt at fetching the chunk at start.
func (r *HttpChunkedReader) downloadChunk(start int64) error {
	resp, err := r.requestChunk(start)
	if err != nil {
		if r.ctx.Err() != nil {
			return backoff.Permanent(err)
		}
		return err
	}

	if resp.StatusCode == http.StatusOK && start == 0 {
		r.log.Debugf("server does not support range requests, streaming the whole resource")
		r.body, r.len = resp.Body, resp.ContentLength
		r.chunk, r.off = nil, 0
		return nil
	}

	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode == http.StatusRequestedRangeNotSatisfiable && start > 0 && r.len < 0 {
		// read past the end of a resource of unknown size
		r.chunk, r.off, r.len = nil, 0, start
		return nil
	} else if resp.StatusCode >= 400 && resp.StatusCode < 500 {
		return backoff.Permanent(fmt.Errorf("invalid chunk response status: %s", resp.Status))
	} else if resp.StatusCode == http.StatusOK {
		return backoff.Permanent(fmt.Errorf("server stopped honoring range requests at %d", start))
	} else if resp.StatusCode != http.StatusPartialContent {
		return fmt.Errorf("invalid chunk response status: %s", resp.Status)
	}

	rangeStart, rangeEnd, size, err := parseContentRange(resp)
	if err != nil {
		return backoff.Permanent(err)
	} else if rangeStart != start {
		return backoff.Permanent(fmt.Errorf("unexpected chunk start %d, wanted %d", rangeStart, start))
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed reading chunk body: %w", err)
	} else if int64(len(data)) != rangeEnd-rangeStart+1 {
		return fmt.Errorf("short chunk body: %d bytes of %d", len(data), rangeEnd-rangeStart+1)
	}

	r.chunk, r.off = data, 0
	switch {
	case size >= 0:
		r.len = size
	case int64(len(data)) < r.chunkSize:
		r.len = start + int64(len(data))
	default:
		r.len = -1
	}
	return nil
}

func (r *HttpChunkedReader) fetchChunk(start int64) error {
	b := backoff.NewExponentialBackOff()
	b.InitialInterval = r.retryInterval

	var attempt int
	begin := time.Now()
	err := backoff.RetryNotify(func() error {
		attempt++

		if err := r.downloadChunk(start); err != nil {
			r.log.WithError(err).Debugf("failed downloading chunk at %d (attempt %d)", start, attempt)
			return err
		}
		return nil
	}, backoff.WithContext(backoff.WithMaxRetries(b, r.maxRetries), r.ctx), func(error, time.Duration) {
		metrics.HttpChunkRetriesTotal.Inc()
	})
	if err != nil {
		return fmt.Errorf("failed downloading chunk at %d: %w", start, err)
	}

	latency := time.Since(begin)
	r.latencies = append(r.latencies, latency)
	metrics.HttpChunkLatency.Observe(float64(latency) / float64(time.Millisecond))
	r.log.Tracef("fetched chunk at %d, size: %d", start, len(r.chunk))
	return nil
}

// readBody reads from a response that carries the whole resource.
func (r *HttpChunkedReader) readBody(p []byte) (int, error) {
	n, err := r.body.Read(p)
	r.pos += int64(n)

	if errors.Is(err, io.EOF) {
		if r.len >= 0 && r.pos < r.len {
			return n, fmt.Errorf("response body ended at %d of %d bytes: %w", r.pos, r.len, io.ErrUnexpectedEOF)
		}
		r.len = r.pos
		return n, io.EOF
	} else if err != nil {
		return n, fmt.Errorf("failed reading response body: %w", err)
	}

	return n, nil
}

func (r *HttpChunkedReader) Read(p []byte) (n int, err error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.closed {
		return 0, lwjall.ErrClosed
	} else if r.body != nil {
		return r.readBody(p)
	}

	for len(p) > 0 {
		if r.off >= len(r.chunk) {
			if r.len >= 0 && r.pos >= r.len {
				return n, io.EOF
			}

			if err := r.fetchChunk(r.pos); err != nil {
				if n > 0 {
					// report the bytes already copied, the error comes back on the next call
					r.chunk, r.off = nil, 0
					return n, nil
				}
				return 0, err
			}
		}

		copied := copy(p, r.chunk[r.off:])
		r.off += copied
		r.pos += int64(copied)
		n += copied
		p = p[copied:]
	}

	return n, nil
}

// Close aborts any request in flight.
func (r *HttpChunkedReader) Close() error {
	// cancel first, a Read waiting on the network holds the lock
	r.cancel()

	r.mu.Lock()
	defer r.mu.Unlock()

	r.closed = true
	r.chunk = nil
	if r.body != nil {
		_ = r.body.Close()
		r.body = nil
	}
	return nil
}

// Size returns the length of the resource, or -1 while it is unknown.
func (r *HttpChunkedReader) Size() int64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.len
}

// InitialLatency is the time it took to fetch the first chunk.
func (r *HttpChunkedReader) InitialLatency() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.latencies) == 0 {
		return 0
	}
	return r.latencies[0]
}

func (r *HttpChunkedReader) MaxLatency() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.latencies) == 0 {
		return 0
	}
	return slices.Max(r.latencies)
}

func (r *HttpChunkedReader) MinLatency() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.latencies) == 0 {
		return 0
	}
	return slices.Min(r.latencies)
}

func (r *HttpChunkedReader) MedianLatency() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.latencies) == 0 {
		return 0
	}

	sorted := slices.Sorted(slices.Values(r.latencies))
	return sorted[len(sorted)/2]
}

func (r *HttpChunkedReader) AvgLatencyMs() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()

	if len(r.latencies) == 0 {
		return 0
	}

	var total time.Duration
	for _, l := range r.latencies {
		total += l
	}
	return float64(total.Microseconds()) / float64(len(r.latencies)) / 1000
}

// TotalTime is the time spent downloading chunks.
func (r *HttpChunkedReader) TotalTime() time.Duration {
	r.mu.Lock()
	defer r.mu.Unlock()

	var total time.Duration
	for _, l := range r.latencies {
		total += l
	}
	return total
}

var _ io.ReadCloser = (*HttpChunkedReader)(nil)
