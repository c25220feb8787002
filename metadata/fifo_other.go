//go:build !unix

package metadata

import (
	"errors"
	"os"
)

var errNoFIFO = errors.New("metadata pipe is not supported on this platform")

func mkfifo(string) error {
	return errNoFIFO
}

func openFIFO(string) (*os.File, error) {
	return nil, errNoFIFO
}
