// Package streaming turns a decoding session into fixed size PCM chunks for a
// buffer queue.
package streaming

import (
	"errors"
	"fmt"
	"io"
	"sync"

	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/pcm"
	"github.com/thog92/go-lwjall/vorbis"
)

// DefaultChunkSize is the amount of PCM accumulated for a single buffer.
const DefaultChunkSize = 128 * 1024

// BlockReader is the part of a decoding session the manager pulls from.
type BlockReader interface {
	ReadBlock(maxFrames int) (pcm.Block, error)
	Info() vorbis.Info
	Close() error
}

// Manager accumulates converted PCM until a chunk is full.
type Manager struct {
	log lwjall.Logger

	dec    BlockReader
	info   vorbis.Info
	format lwjall.Format

	chunkSize int

	mu     sync.Mutex
	eos    bool
	closed bool
	err    error
}

type Option func(*Manager)

// WithChunkSize sets the default target of PullChunk.
func WithChunkSize(size int) Option {
	return func(m *Manager) {
		if size > 0 {
			m.chunkSize = size
		}
	}
}

// NewManager wraps a decoder whose headers have already been negotiated.
func NewManager(log lwjall.Logger, dec BlockReader, opts ...Option) *Manager {
	info := dec.Info()
	m := &Manager{
		log:       lwjall.OrNullLogger(log),
		dec:       dec,
		info:      info,
		format:    info.Format(),
		chunkSize: DefaultChunkSize,
	}

	for _, opt := range opts {
		opt(m)
	}

	m.log.Debugf("streaming: %s, chunks of %d bytes (%s)", m.format, m.chunkSize, m.format.Duration(m.chunkSize))
	return m
}

// Open opens a Vorbis stream and wraps it in a manager.
func Open(log lwjall.Logger, r io.Reader, decOpts []vorbis.Option, opts ...Option) (*Manager, error) {
	dec, err := vorbis.Open(log, r, decOpts...)
	if err != nil {
		return nil, err
	}

	return NewManager(log, dec, opts...), nil
}

// Info returns the stream parameters and comments.
func (m *Manager) Info() vorbis.Info {
	return m.info
}

// Format returns the format of every chunk.
func (m *Manager) Format() lwjall.Format {
	return m.format
}

// PullChunk returns at least target bytes of PCM, less only at the end of the
// stream. Once the stream is exhausted it returns nil and no error. A target
// of 0 or less selects the configured chunk size.
func (m *Manager) PullChunk(target int) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return nil, lwjall.ErrClosed
	} else if m.err != nil {
		return nil, m.err
	} else if m.eos {
		return nil, nil
	}

	if target <= 0 {
		target = m.chunkSize
	}

	var chunk []byte
	for len(chunk) < target {
		block, err := m.dec.ReadBlock(0)
		if errors.Is(err, io.EOF) {
			m.eos = true
			m.log.Debugf("streaming: end of stream reached")
			break
		} else if err != nil {
			m.fail(err)
			return nil, m.err
		}

		if chunk == nil {
			chunk = make([]byte, 0, target+pcm.Size(block, m.format.Channels))
		}

		n := len(chunk)
		chunk = append(chunk, make([]byte, pcm.Size(block, m.format.Channels))...)
		pcm.ConvertInto(chunk[n:], block, m.format.Channels)
	}

	if len(chunk) == 0 {
		return nil, nil
	}

	m.log.Tracef("streaming: pulled chunk of %d bytes", len(chunk))
	return chunk, nil
}

// PullAll decodes everything left in the stream.
func (m *Manager) PullAll() ([]byte, error) {
	var out []byte
	for {
		chunk, err := m.PullChunk(0)
		if err != nil {
			return nil, err
		} else if chunk == nil {
			return out, nil
		}

		out = append(out, chunk...)
	}
}

func (m *Manager) fail(err error) {
	m.err = fmt.Errorf("streaming: decoding failed: %w", err)
	if cerr := m.dec.Close(); cerr != nil && !errors.Is(cerr, lwjall.ErrClosed) {
		m.log.WithError(cerr).Warnf("streaming: failed closing decoder")
	}
}

// Close closes the decoder.
func (m *Manager) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return lwjall.ErrClosed
	}
	m.closed = true

	if err := m.dec.Close(); err != nil && !errors.Is(err, lwjall.ErrClosed) {
		return err
	}
	return nil
}
