//go:build !unix

package output

import "errors"

func mkfifo(string) error {
	return errors.New("fifo output is not supported on this platform")
}
