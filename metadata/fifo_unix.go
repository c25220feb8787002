//go:build unix

package metadata

import (
	"os"

	"golang.org/x/sys/unix"
)

func mkfifo(path string) error {
	return unix.Mkfifo(path, 0o666)
}

// openFIFO fails with ENXIO instead of blocking when nobody is reading.
func openFIFO(path string) (*os.File, error) {
	return os.OpenFile(path, os.O_WRONLY|unix.O_NONBLOCK, 0)
}
