package metadata

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sync"
	"sync/atomic"
	"time"

	lwjall "github.com/thog92/go-lwjall"
)

const DefaultBufferSize = 16

// FIFOManager writes metadata updates to a named pipe. Updates are dropped
// while nobody is reading or the buffer is full.
type FIFOManager struct {
	log    lwjall.Logger
	path   string
	format string

	pipe   *os.File
	mutex  sync.Mutex
	closed bool
	buffer chan []byte
	stopCh chan struct{}
	done   chan struct{}

	writeCount atomic.Int64
	errorCount atomic.Int64
	dropCount  atomic.Int64
}

func NewFIFOManager(log lwjall.Logger, path, format string, bufferSize int) (*FIFOManager, error) {
	switch format {
	case "json", "xml":
	default:
		return nil, fmt.Errorf("unknown metadata format: %s", format)
	}

	if bufferSize <= 0 {
		bufferSize = DefaultBufferSize
	}

	return &FIFOManager{
		log:    lwjall.OrNullLogger(log),
		path:   path,
		format: format,
		buffer: make(chan []byte, bufferSize),
		stopCh: make(chan struct{}),
		done:   make(chan struct{}),
	}, nil
}

// Start creates the named pipe and starts writing to it.
func (fm *FIFOManager) Start() error {
	if err := os.Remove(fm.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("failed removing old metadata FIFO: %w", err)
	}

	if err := mkfifo(fm.path); err != nil {
		return fmt.Errorf("mkfifo failed: %w", err)
	}

	fm.log.WithField("path", fm.path).WithField("format", fm.format).
		Infof("metadata FIFO started")

	go fm.writerLoop()
	return nil
}

// Stop stops writing and removes the named pipe.
func (fm *FIFOManager) Stop() {
	fm.mutex.Lock()
	if fm.closed {
		fm.mutex.Unlock()
		return
	}
	fm.closed = true
	close(fm.stopCh)
	fm.mutex.Unlock()

	<-fm.done

	fm.mutex.Lock()
	if fm.pipe != nil {
		_ = fm.pipe.Close()
		fm.pipe = nil
	}
	fm.mutex.Unlock()

	_ = os.Remove(fm.path)

	fm.log.WithField("writes", fm.writeCount.Load()).
		WithField("errors", fm.errorCount.Load()).
		WithField("drops", fm.dropCount.Load()).
		Infof("metadata FIFO stopped")
}

// WriteMetadata queues an update, it does not wait for it to be written.
func (fm *FIFOManager) WriteMetadata(metadata *TrackMetadata) {
	fm.mutex.Lock()
	closed := fm.closed
	fm.mutex.Unlock()

	if closed {
		return
	}

	var data []byte
	switch fm.format {
	case "json":
		data = metadata.ToJSONFormat()
	case "xml":
		data = metadata.ToXMLFormat()
	}

	select {
	case fm.buffer <- data:
	case <-time.After(50 * time.Millisecond):
		fm.dropCount.Add(1)
	}
}

func (fm *FIFOManager) writerLoop() {
	defer close(fm.done)

	for {
		select {
		case data := <-fm.buffer:
			if err := fm.writeToFIFO(data); err != nil {
				// only once in a while, there is usually just nobody listening
				if fm.errorCount.Add(1)%50 == 1 {
					fm.log.WithError(err).Debugf("error writing to metadata FIFO")
				}
			} else {
				fm.writeCount.Add(1)
			}
		case <-fm.stopCh:
			return
		}
	}
}

func (fm *FIFOManager) writeToFIFO(data []byte) error {
	fm.mutex.Lock()
	defer fm.mutex.Unlock()

	if fm.pipe == nil {
		pipe, err := openFIFO(fm.path)
		if err != nil {
			return fmt.Errorf("failed to open FIFO: %w", err)
		}
		fm.pipe = pipe
	}

	if _, err := fm.pipe.Write(data); err != nil {
		// the reader went away, reopen on the next write
		_ = fm.pipe.Close()
		fm.pipe = nil
		return err
	}

	return nil
}
