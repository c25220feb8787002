//go:build !(alsa && linux && cgo)

package output

import (
	"fmt"

	lwjall "github.com/thog92/go-lwjall"
)

func newAlsaSink(lwjall.Logger, *NewOutputOptions) (sink, error) {
	return nil, fmt.Errorf("%w: alsa requires a linux cgo build with the alsa tag", ErrBackendUnavailable)
}
