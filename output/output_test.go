//go:build test_unit

package output_test

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/output"
	"go.uber.org/goleak"
)

type PipeOutputSuite struct {
	suite.Suite

	path   string
	format lwjall.Format
	out    *output.Output
}

func (suite *PipeOutputSuite) SetupTest() {
	suite.path = filepath.Join(suite.T().TempDir(), "out.pcm")
	suite.Require().NoError(os.WriteFile(suite.path, nil, 0o644))

	suite.format = lwjall.NewS16LEFormat(44100, 2)

	var err error
	suite.out, err = output.NewOutput(&output.NewOutputOptions{
		Log:        &lwjall.NullLogger{},
		Backend:    "pipe",
		Format:     suite.format,
		OutputPipe: suite.path,
	})
	suite.Require().NoError(err)
}

func (suite *PipeOutputSuite) TearDownTest() {
	_ = suite.out.Close()
}

func (suite *PipeOutputSuite) waitProcessed(source, n int) {
	suite.Eventually(func() bool {
		processed, err := suite.out.ProcessedCount(source)
		return err == nil && processed == n
	}, time.Second, time.Millisecond)
}

func (suite *PipeOutputSuite) queue(source int, chunks ...[]byte) []output.Buffer {
	var bufs []output.Buffer
	for _, chunk := range chunks {
		buf, err := suite.out.CreateBuffer()
		suite.Require().NoError(err)
		suite.Require().NoError(suite.out.Submit(buf, suite.format, chunk))
		suite.Require().NoError(suite.out.Enqueue(source, buf))
		bufs = append(bufs, buf)
	}
	return bufs
}

func (suite *PipeOutputSuite) TestPlaysInOrder() {
	chunks := [][]byte{
		bytes.Repeat([]byte{1, 0, 2, 0}, 100),
		bytes.Repeat([]byte{3, 0, 4, 0}, 50),
		bytes.Repeat([]byte{5, 0, 6, 0}, 10),
	}
	bufs := suite.queue(0, chunks...)

	processed, err := suite.out.ProcessedCount(0)
	suite.Require().NoError(err)
	suite.Zero(processed)
	suite.False(suite.out.Playing(0))

	suite.Require().NoError(suite.out.Play(0))
	suite.waitProcessed(0, 3)
	suite.Eventually(func() bool { return !suite.out.Playing(0) }, time.Second, time.Millisecond)

	dequeued, err := suite.out.Dequeue(0, 3)
	suite.Require().NoError(err)
	suite.Equal(bufs, dequeued)
	suite.Zero(suite.out.Queued(0))

	suite.Require().NoError(suite.out.Close())

	written, err := os.ReadFile(suite.path)
	suite.Require().NoError(err)
	suite.Equal(bytes.Join(chunks, nil), written)
}

func (suite *PipeOutputSuite) TestGain() {
	suite.Require().NoError(suite.out.SetGain(0, 0.5))
	suite.Error(suite.out.SetGain(0, -1))

	suite.queue(0, []byte{0x00, 0x40, 0x00, 0xc0})
	suite.Require().NoError(suite.out.Play(0))
	suite.waitProcessed(0, 1)
	suite.Require().NoError(suite.out.Close())

	written, err := os.ReadFile(suite.path)
	suite.Require().NoError(err)
	suite.Equal([]byte{0x00, 0x20, 0x00, 0xe0}, written)
}

func (suite *PipeOutputSuite) TestStopMarksProcessed() {
	suite.queue(1, make([]byte, 16), make([]byte, 16))

	suite.Require().NoError(suite.out.Stop(1))
	processed, err := suite.out.ProcessedCount(1)
	suite.Require().NoError(err)
	suite.Equal(2, processed)

	// nothing left to play
	suite.Require().NoError(suite.out.Play(1))
	suite.False(suite.out.Playing(1))

	bufs, err := suite.out.Dequeue(1, 2)
	suite.Require().NoError(err)
	suite.Len(bufs, 2)
}

func (suite *PipeOutputSuite) TestBufferErrors() {
	bufs := suite.queue(0, make([]byte, 4))

	suite.ErrorIs(suite.out.Submit(bufs[0], suite.format, make([]byte, 4)), output.ErrBufferQueued)
	suite.ErrorIs(suite.out.Enqueue(0, bufs[0]), output.ErrBufferQueued)
	suite.ErrorIs(suite.out.Submit(output.Buffer(999), suite.format, nil), output.ErrUnknownBuffer)
	suite.ErrorIs(suite.out.Enqueue(0, output.Buffer(999)), output.ErrUnknownBuffer)

	_, err := suite.out.Dequeue(0, 1)
	suite.ErrorIs(err, output.ErrInvalidDequeue)

	buf, err := suite.out.CreateBuffer()
	suite.Require().NoError(err)
	suite.ErrorIs(suite.out.Submit(buf, lwjall.NewS16LEFormat(48000, 2), nil), output.ErrFormatMismatch)

	suite.Require().NoError(suite.out.Close())
	_, err = suite.out.CreateBuffer()
	suite.ErrorIs(err, output.ErrOutputClosed)
	suite.NoError(suite.out.Close())
}

func (suite *PipeOutputSuite) TestPipeLocked() {
	_, err := output.NewOutput(&output.NewOutputOptions{
		Backend:    "pipe",
		Format:     suite.format,
		OutputPipe: suite.path,
	})
	suite.Error(err)
}

func TestPipeOutputSuite(t *testing.T) {
	defer goleak.VerifyNone(t)
	suite.Run(t, new(PipeOutputSuite))
}

func TestNewOutput_InvalidOptions(t *testing.T) {
	_, err := output.NewOutput(&output.NewOutputOptions{Backend: "oss", Format: lwjall.NewS16LEFormat(44100, 2)})
	if !errors.Is(err, output.ErrUnknownBackend) {
		t.Fatalf("expected unknown backend error, got %v", err)
	}

	_, err = output.NewOutput(&output.NewOutputOptions{Backend: "pipe", Format: lwjall.Format{SampleRate: 44100, Channels: 2, BitsPerSample: 8}})
	if err == nil {
		t.Fatal("expected unsupported format error")
	}
}
