package vorbis

import (
	"errors"
	"fmt"
	"io"
	"slices"
	"sync"

	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/ogg"
	"github.com/thog92/go-lwjall/pcm"
)

// Decoder implements a streaming Ogg Vorbis decoder.
type Decoder struct {
	sync.Mutex

	log lwjall.Logger

	// input is the physical bitstream. It is read sequentially and never seeked.
	input     io.Reader
	bytesRead int64

	// syncState tracks the synchronization of the physical bitstream, data is
	// read in, verified and split into pages here.
	syncState ogg.SyncState

	// streamState tracks the decode state of the logical bitstream selected by
	// the first page.
	streamState *ogg.StreamState

	synth    Synthesizer
	newSynth func() Synthesizer

	info    Info
	state   State
	headers int
	err     error

	zeroGranuleEOS bool
	maxDesyncBytes int64

	firstAudioPage bool
	desynced       int64
	released       bool

	lastGranulePos int64

	// framesOut counts the frames returned since the stream started, it is
	// realigned on every page granule position.
	framesOut int64
	// endFrames is how many of the pending frames may still be returned once
	// the last packet was synthesized, or -1 when unbounded.
	endFrames int64

	closeOnce sync.Once
	closeErr  error
}

// NewDecoder creates a decoder for the provided bytestream. Nothing is read
// until the headers are negotiated.
func NewDecoder(log lwjall.Logger, r io.Reader, opts ...Option) *Decoder {
	d := &Decoder{
		log:            lwjall.OrNullLogger(log),
		input:          r,
		newSynth:       defaultSynthesizer,
		zeroGranuleEOS: true,
		maxDesyncBytes: DefaultMaxDesyncBytes,
		endFrames:      -1,
	}

	for _, opt := range opts {
		opt(d)
	}

	return d
}

// Open creates a decoder and negotiates the stream headers. On failure the
// decoder has already been released.
func Open(log lwjall.Logger, r io.Reader, opts ...Option) (*Decoder, error) {
	d := NewDecoder(log, r, opts...)
	if _, err := d.NegotiateHeaders(); err != nil {
		return nil, err
	}

	return d, nil
}

func (d *Decoder) State() State {
	d.Lock()
	defer d.Unlock()
	return d.state
}

// HeadersReceived returns how many of the three stream headers were accepted.
func (d *Decoder) HeadersReceived() int {
	d.Lock()
	defer d.Unlock()
	return d.headers
}

// Info returns the stream information, it is only valid after negotiation.
func (d *Decoder) Info() Info {
	d.Lock()
	defer d.Unlock()
	return d.info
}

// NegotiateHeaders reads pages until the identification, comment and setup
// headers have been accepted.
func (d *Decoder) NegotiateHeaders() (Info, error) {
	d.Lock()
	defer d.Unlock()

	switch d.state {
	case StateStreaming, StateEndOfStream:
		return d.info, nil
	case StateUninitialized:
	default:
		return Info{}, d.stateError()
	}

	d.state = StateHeaderNegotiating
	d.synth = d.newSynth()

	for d.headers < 3 {
		packet, err := d.nextHeaderPacket()
		if err != nil {
			return Info{}, d.fail(err)
		}

		if err := d.headerIn(packet.Data); err != nil {
			return Info{}, d.fail(err)
		}
	}

	d.startStreaming()
	return d.info, nil
}

// ReadHeaders negotiates the stream from in-memory header packets, for
// containers other than Ogg. See SplitXiphLacing.
func (d *Decoder) ReadHeaders(headers [][]byte) (Info, error) {
	d.Lock()
	defer d.Unlock()

	if d.state != StateUninitialized {
		return Info{}, d.stateError()
	}

	d.state = StateHeaderNegotiating
	d.synth = d.newSynth()

	for _, header := range headers {
		if err := d.headerIn(header); err != nil {
			return Info{}, d.fail(err)
		}
		if d.headers == 3 {
			break
		}
	}

	if d.headers < 3 {
		if d.headers == 0 {
			return Info{}, d.fail(fmt.Errorf("%w: no headers", lwjall.ErrNotThisCodec))
		}
		return Info{}, d.fail(fmt.Errorf("%w: got %d of 3 headers", lwjall.ErrMalformedHeader, d.headers))
	}

	d.startStreaming()
	return d.info, nil
}

func (d *Decoder) startStreaming() {
	d.state = StateStreaming
	d.firstAudioPage = true
	d.framesOut = 0
	d.endFrames = -1
	d.log.Infof("vorbis: stream %s, vendor %q, %d comments", d.info.Format(), d.info.Vendor, len(d.info.Comments))
}

func (d *Decoder) headerIn(data []byte) error {
	switch d.headers {
	case 0:
		info, err := parseIdentification(data)
		if err != nil {
			return fmt.Errorf("%w: %w", lwjall.ErrNotThisCodec, err)
		}
		d.info = info
	case 1:
		vendor, comments, err := parseComment(data)
		if err != nil {
			return fmt.Errorf("%w: %w", lwjall.ErrMalformedHeader, err)
		}
		d.info.Vendor, d.info.Comments = vendor, comments
	case 2:
		if !isHeaderType(data, headerTypeSetup) {
			return fmt.Errorf("%w: missing setup header", lwjall.ErrMalformedHeader)
		}
	}

	if err := d.synth.HeaderIn(data); err != nil {
		return fmt.Errorf("%w: header %d rejected: %w", lwjall.ErrMalformedHeader, d.headers+1, err)
	}

	d.headers++
	d.log.Tracef("vorbis: accepted header %d", d.headers)
	return nil
}

func (d *Decoder) nextHeaderPacket() (*ogg.Packet, error) {
	for {
		if d.streamState != nil {
			packet, err := d.streamState.PacketOut()
			if errors.Is(err, ogg.ErrHole) {
				return nil, fmt.Errorf("%w: data is missing near header %d", lwjall.ErrMalformedHeader, d.headers+1)
			} else if packet != nil {
				return packet, nil
			} else if d.streamState.EOS() {
				return nil, fmt.Errorf("%w: stream ended after %d headers", lwjall.ErrMalformedHeader, d.headers)
			}
		}

		page, err := d.nextPage()
		if err != nil {
			if d.streamState == nil && d.bytesRead > 0 && (errors.Is(err, io.EOF) || errors.Is(err, lwjall.ErrDesync)) {
				return nil, fmt.Errorf("%w: no ogg page found", lwjall.ErrNotThisCodec)
			} else if errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("%w: source exhausted after %d headers", lwjall.ErrMalformedHeader, d.headers)
			}
			return nil, err
		}

		if d.streamState == nil {
			d.streamState = ogg.NewStreamState(page.SerialNumber)
		}

		if err := d.streamState.PageIn(page); errors.Is(err, ogg.ErrSerialMismatch) {
			d.log.Tracef("vorbis: ignoring page of logical stream %08x", page.SerialNumber)
		} else if err != nil {
			return nil, fmt.Errorf("%w: %w", lwjall.ErrMalformedHeader, err)
		}
	}
}

func (d *Decoder) readChunk() (int, error) {
	if d.input == nil {
		return 0, io.EOF
	}

	buf := d.syncState.Buffer(DataChunkSize)
	n, err := io.ReadFull(d.input, buf)
	if werr := d.syncState.Wrote(n); werr != nil {
		return 0, fmt.Errorf("vorbis: failed submitting %d bytes: %w", n, werr)
	}
	d.bytesRead += int64(n)

	if errors.Is(err, io.ErrUnexpectedEOF) || (n > 0 && errors.Is(err, io.EOF)) {
		return n, nil
	} else if errors.Is(err, io.EOF) {
		return 0, io.EOF
	} else if err != nil {
		return n, &lwjall.IoError{Op: "read", Err: err}
	}

	return n, nil
}

func (d *Decoder) nextPage() (*ogg.Page, error) {
	for {
		page, outcome := d.syncState.PageOut()
		switch outcome {
		case ogg.PageReady:
			if d.desynced > 0 {
				d.log.Debugf("vorbis: resynchronized after skipping %d bytes", d.desynced)
				d.desynced = 0
			}
			d.log.Tracef("vorbis: %s", page)
			return page, nil
		case ogg.Desynchronized:
			d.desynced = d.syncState.Skipped()
			if d.desynced > d.maxDesyncBytes {
				return nil, fmt.Errorf("%w: skipped %d bytes without finding a page", lwjall.ErrDesync, d.desynced)
			}
			continue
		}

		if _, err := d.readChunk(); err != nil {
			return nil, err
		}
	}
}

// audioPageIn submits a page read after the headers.
func (d *Decoder) audioPageIn(page *ogg.Page) error {
	if d.streamState == nil {
		d.streamState = ogg.NewStreamState(page.SerialNumber)
	} else if page.SerialNumber != d.streamState.Serial() {
		d.log.Tracef("vorbis: ignoring page of logical stream %08x", page.SerialNumber)
		return nil
	}

	if d.firstAudioPage {
		d.firstAudioPage = false
		if d.zeroGranuleEOS && page.GranulePos == 0 {
			d.log.Debugf("vorbis: first audio page has granule position 0, ending stream")
			d.state = StateEndOfStream
			return nil
		}
	}

	return d.streamState.PageIn(page)
}

// drain returns up to maxFrames unread frames, or nil when there are none.
// Frames past the end granule of the stream are discarded.
func (d *Decoder) drain(maxFrames int) pcm.Block {
	out := d.synth.PcmOut()
	n := out.Frames()
	if n == 0 {
		return nil
	}

	if d.endFrames >= 0 && int64(n) > d.endFrames {
		if d.endFrames == 0 {
			d.synth.Read(n)
			return nil
		}
		n = int(d.endFrames)
	}
	if maxFrames > 0 && n > maxFrames {
		n = maxFrames
	}

	block := make(pcm.Block, len(out))
	for c := range out {
		block[c] = slices.Clone(out[c][:n])
	}

	d.synth.Read(n)
	d.framesOut += int64(n)
	if d.endFrames > 0 {
		d.endFrames -= int64(n)
	}
	return block
}

// packetIn synthesizes an audio packet. A granule position marks the total
// frame count at the end of the packet: on the last packet it bounds what is
// left to return, elsewhere it realigns the frame counter.
func (d *Decoder) packetIn(packet *ogg.Packet) error {
	if err := d.synth.BlockIn(packet); err != nil {
		return err
	}

	if packet.GranulePos < 0 {
		return nil
	}

	pending := int64(d.synth.PcmOut().Frames())
	if !packet.EOS {
		d.framesOut = packet.GranulePos - pending
		return nil
	}

	if keep := max(packet.GranulePos-d.framesOut, 0); keep < pending {
		d.log.Tracef("vorbis: trimming %d frames past the final granule %d", pending-keep, packet.GranulePos)
		d.endFrames = keep
	}
	return nil
}

// DecodePacket synthesizes a single audio packet and returns all the samples it
// made available. The result may be empty.
func (d *Decoder) DecodePacket(packet []byte) (pcm.Block, error) {
	d.Lock()
	defer d.Unlock()

	if d.state != StateStreaming {
		return nil, d.stateError()
	}

	if err := d.synth.BlockIn(&ogg.Packet{Data: packet, GranulePos: -1}); err != nil {
		return nil, fmt.Errorf("vorbis: failed decoding packet: %w", err)
	}

	return d.drain(0), nil
}

// ReadBlock returns at most maxFrames frames of decoded audio, reading from
// the source as needed. A maxFrames of 0 returns whatever is available. At the
// end of the stream io.EOF is returned.
func (d *Decoder) ReadBlock(maxFrames int) (pcm.Block, error) {
	d.Lock()
	defer d.Unlock()

	if d.state != StateStreaming {
		return nil, d.stateError()
	}

	for {
		if block := d.drain(maxFrames); block != nil {
			return block, nil
		}

		if d.streamState != nil {
			packet, err := d.streamState.PacketOut()
			if errors.Is(err, ogg.ErrHole) {
				d.log.Debugf("vorbis: corrupt or missing data in bitstream")
				d.synth.Reset()
				continue
			} else if packet != nil {
				if packet.GranulePos >= 0 {
					d.lastGranulePos = packet.GranulePos
				}

				if err := d.packetIn(packet); err != nil {
					d.log.WithError(err).Debugf("vorbis: skipping packet %d", packet.PacketNo)
				}
				continue
			} else if d.streamState.EOS() {
				return nil, d.endOfStream("end of stream page")
			}
		}

		page, err := d.nextPage()
		if errors.Is(err, io.EOF) {
			return nil, d.endOfStream("source exhausted")
		} else if err != nil {
			return nil, d.fail(err)
		}

		if err := d.audioPageIn(page); err != nil {
			return nil, d.fail(fmt.Errorf("vorbis: failed submitting page: %w", err))
		} else if d.state == StateEndOfStream {
			return nil, io.EOF
		}
	}
}

// PositionMs returns the position of the last observed granule.
func (d *Decoder) PositionMs() int64 {
	d.Lock()
	defer d.Unlock()

	if d.info.SampleRate <= 0 {
		return 0
	}
	return d.lastGranulePos * 1000 / int64(d.info.SampleRate)
}

func (d *Decoder) endOfStream(reason string) error {
	d.log.Debugf("vorbis: %s, decoded up to %dms", reason, d.lastGranulePos*1000/int64(max(d.info.SampleRate, 1)))
	d.state = StateEndOfStream
	return io.EOF
}

func (d *Decoder) stateError() error {
	switch d.state {
	case StateClosed:
		return lwjall.ErrClosed
	case StateFailed:
		return d.err
	case StateEndOfStream:
		return io.EOF
	default:
		return lwjall.ErrNotInitialized
	}
}

// fail releases the session after a fatal error. The error is returned by
// every later call.
func (d *Decoder) fail(err error) error {
	d.log.WithError(err).Debugf("vorbis: session failed in state %s", d.state)

	if cerr := d.release(); cerr != nil {
		err = errors.Join(err, cerr)
	}

	d.err = err
	d.state = StateFailed
	return err
}

func (d *Decoder) release() error {
	if d.released {
		return nil
	}
	d.released = true

	if d.synth != nil {
		d.synth.Close()
		d.synth = nil
	}

	d.syncState.Reset()
	d.streamState = nil

	return d.closeInput()
}

func (d *Decoder) closeInput() error {
	d.closeOnce.Do(func() {
		if c, ok := d.input.(io.Closer); ok {
			if err := c.Close(); err != nil {
				d.closeErr = &lwjall.IoError{Op: "close", Err: err}
			}
		}
	})
	return d.closeErr
}

// Close releases the allocated resources and closes the source when it is an
// io.Closer. Puts the decoder into an unrecoverable state.
//
// The source is closed before waiting for a ReadBlock in progress, so a read
// blocked on it is interrupted.
func (d *Decoder) Close() error {
	_ = d.closeInput()

	d.Lock()
	defer d.Unlock()

	if d.state == StateClosed {
		return lwjall.ErrClosed
	}

	d.state = StateClosed
	return d.release()
}
