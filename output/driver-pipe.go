package output

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/gofrs/flock"
	lwjall "github.com/thog92/go-lwjall"
)

// pipeSink writes s16le PCM to a file or FIFO. A lock file next to it keeps
// two players from interleaving their output.
type pipeSink struct {
	log  lwjall.Logger
	file *os.File
	lock *flock.Flock

	gain    float32
	scratch []byte
}

func newPipeSink(log lwjall.Logger, opts *NewOutputOptions) (_ *pipeSink, err error) {
	if opts.OutputPipe == "" {
		return nil, errors.New("no output pipe configured")
	}

	lock := flock.New(opts.OutputPipe + ".lock")
	locked, err := lock.TryLock()
	if err != nil {
		return nil, fmt.Errorf("failed locking output pipe: %w", err)
	} else if !locked {
		return nil, fmt.Errorf("output pipe %s is in use", opts.OutputPipe)
	}
	defer func() {
		if err != nil {
			_ = lock.Unlock()
		}
	}()

	if _, err := os.Stat(opts.OutputPipe); errors.Is(err, fs.ErrNotExist) {
		if err := mkfifo(opts.OutputPipe); err != nil {
			return nil, fmt.Errorf("failed creating fifo: %w", err)
		}
		log.Infof("created fifo at %s", opts.OutputPipe)
	}

	// opening a fifo blocks until a reader shows up
	file, err := os.OpenFile(opts.OutputPipe, os.O_WRONLY, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open fifo: %w", err)
	}

	return &pipeSink{log: log, file: file, lock: lock, gain: 1}, nil
}

func (s *pipeSink) Write(p []byte) (int, error) {
	if s.gain == 1 {
		return s.file.Write(p)
	}

	s.scratch = scaleS16(s.scratch, p, s.gain)
	return s.file.Write(s.scratch)
}

func (s *pipeSink) Flush() error {
	return nil
}

// Drain returns right away, writes go straight to the file.
func (s *pipeSink) Drain() error {
	return nil
}

func (s *pipeSink) SetGain(gain float32) error {
	s.gain = gain
	return nil
}

func (s *pipeSink) Close() error {
	return errors.Join(s.file.Close(), s.lock.Unlock())
}
