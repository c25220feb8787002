//go:build test_unit

package player

import (
	"bytes"
	"errors"
	"testing"

	"github.com/stretchr/testify/suite"
	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/output"
	"github.com/thog92/go-lwjall/streaming"
)

var testFormat = lwjall.NewS16LEFormat(44100, 2)

type DriverSuite struct {
	suite.Suite

	dev *output.MockDevice
	src *lwjall.MockChunkSource
}

func (suite *DriverSuite) SetupTest() {
	suite.dev = output.NewMockDevice(suite.T())
	suite.src = lwjall.NewMockChunkSource(suite.T())
	suite.src.EXPECT().Format().Return(testFormat).Maybe()
}

func (suite *DriverSuite) chunk(b byte) []byte {
	return bytes.Repeat([]byte{b}, 16)
}

func (suite *DriverSuite) expectBuffers(bufs ...output.Buffer) {
	for _, buf := range bufs {
		suite.dev.EXPECT().CreateBuffer().Return(buf, nil).Once()
	}
}

func (suite *DriverSuite) expectChunk(buf output.Buffer, data []byte) {
	suite.src.EXPECT().PullChunk(64).Return(data, nil).Once()
	suite.dev.EXPECT().Submit(buf, testFormat, data).Return(nil).Once()
	suite.dev.EXPECT().Enqueue(7, buf).Return(nil).Once()
}

func (suite *DriverSuite) expectEOS() {
	suite.src.EXPECT().PullChunk(64).Return(nil, nil).Once()
}

func (suite *DriverSuite) newDriver(n int) *Driver {
	return NewDriver(&lwjall.NullLogger{}, suite.dev, 7, suite.src, WithBufferCount(n), WithChunkSize(64))
}

func (suite *DriverSuite) assertDone(d *Driver, done bool) {
	select {
	case <-d.Done():
		suite.True(done, "driver completed too early")
	default:
		suite.False(done, "driver did not complete")
	}
}

func (suite *DriverSuite) TestTwoChunksThreeBuffers() {
	d := suite.newDriver(3)

	suite.expectBuffers(1, 2, 3)
	suite.expectChunk(1, suite.chunk(1))
	suite.expectChunk(2, suite.chunk(2))
	suite.expectEOS()
	suite.dev.EXPECT().Play(7).Return(nil).Once()
	suite.Require().NoError(d.Prime())
	suite.assertDone(d, false)

	// one of two played, no refill past the end of stream
	suite.dev.EXPECT().ProcessedCount(7).Return(1, nil).Once()
	suite.Require().NoError(d.Update())
	suite.assertDone(d, false)

	suite.dev.EXPECT().ProcessedCount(7).Return(2, nil).Once()
	suite.dev.EXPECT().Stop(7).Return(nil).Once()
	suite.Require().NoError(d.Update())
	suite.assertDone(d, true)

	// completion fires once, later ticks do nothing
	suite.Require().NoError(d.Update())
	suite.assertDone(d, true)
}

func (suite *DriverSuite) TestRecyclesBuffers() {
	d := suite.newDriver(2)

	suite.expectBuffers(1, 2)
	suite.expectChunk(1, suite.chunk(1))
	suite.expectChunk(2, suite.chunk(2))
	suite.dev.EXPECT().Play(7).Return(nil).Once()
	suite.Require().NoError(d.Prime())

	suite.dev.EXPECT().ProcessedCount(7).Return(0, nil).Once()
	suite.Require().NoError(d.Update())

	suite.dev.EXPECT().ProcessedCount(7).Return(1, nil).Once()
	suite.dev.EXPECT().Dequeue(7, 1).Return([]output.Buffer{1}, nil).Once()
	suite.expectChunk(1, suite.chunk(3))
	suite.dev.EXPECT().Play(7).Return(nil).Once()
	suite.Require().NoError(d.Update())

	// buffer 2 is dequeued, but the source is over, so it stays idle
	suite.dev.EXPECT().ProcessedCount(7).Return(1, nil).Once()
	suite.dev.EXPECT().Dequeue(7, 1).Return([]output.Buffer{2}, nil).Once()
	suite.expectEOS()
	suite.Require().NoError(d.Update())
	suite.assertDone(d, false)

	suite.dev.EXPECT().ProcessedCount(7).Return(1, nil).Once()
	suite.dev.EXPECT().Stop(7).Return(nil).Once()
	suite.Require().NoError(d.Update())
	suite.assertDone(d, true)
}

func (suite *DriverSuite) TestEmptySource() {
	d := suite.newDriver(3)

	suite.expectBuffers(1, 2, 3)
	suite.expectEOS()
	suite.Require().NoError(d.Prime())
	suite.assertDone(d, true)
}

func (suite *DriverSuite) TestUpdateBeforePrime() {
	d := suite.newDriver(3)
	suite.ErrorIs(d.Update(), ErrNotPrimed)
}

func (suite *DriverSuite) TestPullError() {
	d := suite.newDriver(1)

	fail := errors.New("boom")
	suite.expectBuffers(1)
	suite.src.EXPECT().PullChunk(64).Return(nil, fail).Once()
	suite.ErrorIs(d.Prime(), fail)
}

func (suite *DriverSuite) TestRestart() {
	d := suite.newDriver(1)

	suite.expectBuffers(1)
	suite.expectChunk(1, suite.chunk(1))
	suite.dev.EXPECT().Play(7).Return(nil).Once()
	suite.Require().NoError(d.Prime())

	suite.dev.EXPECT().ProcessedCount(7).Return(1, nil).Once()
	suite.dev.EXPECT().Dequeue(7, 1).Return([]output.Buffer{1}, nil).Once()
	suite.expectEOS()
	suite.dev.EXPECT().Stop(7).Return(nil).Once()
	suite.Require().NoError(d.Update())
	suite.assertDone(d, true)

	next := lwjall.NewMockChunkSource(suite.T())
	next.EXPECT().Format().Return(testFormat).Once()
	next.EXPECT().PullChunk(64).Return(suite.chunk(9), nil).Once()
	suite.dev.EXPECT().Submit(output.Buffer(1), testFormat, suite.chunk(9)).Return(nil).Once()
	suite.dev.EXPECT().Enqueue(7, output.Buffer(1)).Return(nil).Once()
	suite.dev.EXPECT().Stop(7).Return(nil).Once()
	suite.dev.EXPECT().Play(7).Return(nil).Once()
	suite.src.EXPECT().Close().Return(nil).Once()

	suite.Require().NoError(d.Restart(next))
	suite.assertDone(d, false)

	suite.dev.EXPECT().Stop(7).Return(nil).Once()
	next.EXPECT().Close().Return(nil).Once()
	suite.Require().NoError(d.Close())
	suite.ErrorIs(d.Close(), lwjall.ErrClosed)
}

func (suite *DriverSuite) TestStopReleasesBuffers() {
	d := suite.newDriver(3)

	suite.expectBuffers(1, 2, 3)
	suite.expectChunk(1, suite.chunk(1))
	suite.expectChunk(2, suite.chunk(2))
	suite.expectChunk(3, suite.chunk(3))
	suite.dev.EXPECT().Play(7).Return(nil).Once()
	suite.Require().NoError(d.Prime())

	suite.dev.EXPECT().Stop(7).Return(nil).Once()
	suite.dev.EXPECT().Dequeue(7, 3).Return([]output.Buffer{1, 2, 3}, nil).Once()
	suite.src.EXPECT().Close().Return(nil).Once()
	suite.Require().NoError(d.Stop())
	suite.assertDone(d, true)

	// the source is already closed
	suite.dev.EXPECT().Stop(7).Return(nil).Once()
	suite.Require().NoError(d.Close())
}

func (suite *DriverSuite) TestRestartFormatMismatch() {
	d := suite.newDriver(1)

	suite.expectBuffers(1)
	suite.expectChunk(1, suite.chunk(1))
	suite.dev.EXPECT().Play(7).Return(nil).Once()
	suite.Require().NoError(d.Prime())

	next := lwjall.NewMockChunkSource(suite.T())
	next.EXPECT().Format().Return(lwjall.NewS16LEFormat(22050, 1)).Once()
	suite.Error(d.Restart(next))
}

func (suite *DriverSuite) TestCloseErrors() {
	d := suite.newDriver(1)

	suite.src.EXPECT().Close().Return(errors.New("close failed")).Once()
	suite.ErrorContains(d.Close(), "close failed")
}

func (suite *DriverSuite) TestAppliesGain() {
	gains := output.NewMockGainSetter(suite.T())
	dev := struct {
		*output.MockDevice
		*output.MockGainSetter
	}{suite.dev, gains}

	scene := NewScene()
	d := NewDriver(nil, dev, 7, suite.src, WithBufferCount(1), WithChunkSize(64), WithScene(scene))

	gains.EXPECT().SetGain(7, float32(1)).Return(nil).Once()
	suite.expectBuffers(1)
	suite.expectChunk(1, suite.chunk(1))
	suite.dev.EXPECT().Play(7).Return(nil).Once()
	suite.Require().NoError(d.Prime())

	// unchanged gain is not sent again
	suite.dev.EXPECT().ProcessedCount(7).Return(0, nil).Once()
	suite.Require().NoError(d.Update())

	suite.Require().NoError(scene.SetGain(0.25))
	gains.EXPECT().SetGain(7, float32(0.25)).Return(nil).Once()
	suite.dev.EXPECT().ProcessedCount(7).Return(0, nil).Once()
	suite.Require().NoError(d.Update())
}

func TestDriverSuite(t *testing.T) {
	suite.Run(t, new(DriverSuite))
}

func TestWithBufferCountClamps(t *testing.T) {
	src := lwjall.NewMockChunkSource(t)
	src.EXPECT().Format().Return(testFormat)

	for n, want := range map[int]int{-1: 1, 0: 1, 1: 1, 3: 3, 16: 16, 100: MaxBufferCount} {
		d := NewDriver(nil, output.NewMockDevice(t), 0, src, WithBufferCount(n))
		if d.bufferCount != want {
			t.Errorf("WithBufferCount(%d) = %d, want %d", n, d.bufferCount, want)
		}
	}

	d := NewDriver(nil, output.NewMockDevice(t), 0, src, WithChunkSize(0))
	if d.chunkSize != streaming.DefaultChunkSize {
		t.Errorf("WithChunkSize(0) = %d, want default", d.chunkSize)
	}
}
