//go:build alsa && linux && cgo

package output

// #cgo pkg-config: alsa
//
// #include <alsa/asoundlib.h>
//
import "C"
import (
	"fmt"
	"sync"
	"time"
	"unsafe"

	lwjall "github.com/thog92/go-lwjall"
)

const (
	BufferTimeMicro = 500_000
	NumPeriods      = 4 // number of periods requested
)

// alsaSink writes to an ALSA playback device. Writes wait for room in the
// device buffer with the lock released, so a flush never waits for more than
// one period.
type alsaSink struct {
	log lwjall.Logger

	channels   int
	sampleRate int
	frameSize  int

	lock sync.Mutex

	pcmHandle  *C.snd_pcm_t
	periodSize int
	bufferSize int

	gain    float32
	scratch []byte
	closed  bool

	// gen changes on every flush, a write or drain in progress gives up.
	gen uint64
}

func newAlsaSink(log lwjall.Logger, opts *NewOutputOptions) (*alsaSink, error) {
	out := &alsaSink{
		log:        log,
		channels:   opts.Format.Channels,
		sampleRate: opts.Format.SampleRate,
		frameSize:  opts.Format.FrameSize(),
		gain:       1,
	}

	device := opts.Device
	if device == "" {
		device = "default"
	}

	if err := out.setupPcm(device); err != nil {
		if out.pcmHandle != nil {
			C.snd_pcm_close(out.pcmHandle)
		}
		return nil, err
	}

	return out, nil
}

func (out *alsaSink) alsaError(name string, err C.int) error {
	return fmt.Errorf("ALSA error at %s: %s", name, C.GoString(C.snd_strerror(err)))
}

func (out *alsaSink) setupPcm(device string) error {
	cdevice := C.CString(device)
	defer C.free(unsafe.Pointer(cdevice))
	if err := C.snd_pcm_open(&out.pcmHandle, cdevice, C.SND_PCM_STREAM_PLAYBACK, 0); err < 0 {
		return out.alsaError("snd_pcm_open", err)
	}

	var hwparams *C.snd_pcm_hw_params_t
	C.snd_pcm_hw_params_malloc(&hwparams)
	defer C.free(unsafe.Pointer(hwparams))

	if err := C.snd_pcm_hw_params_any(out.pcmHandle, hwparams); err < 0 {
		return out.alsaError("snd_pcm_hw_params_any", err)
	}

	if err := C.snd_pcm_hw_params_set_access(out.pcmHandle, hwparams, C.SND_PCM_ACCESS_RW_INTERLEAVED); err < 0 {
		return out.alsaError("snd_pcm_hw_params_set_access", err)
	}

	if err := C.snd_pcm_hw_params_set_format(out.pcmHandle, hwparams, C.SND_PCM_FORMAT_S16_LE); err < 0 {
		return out.alsaError("snd_pcm_hw_params_set_format", err)
	}

	if err := C.snd_pcm_hw_params_set_channels(out.pcmHandle, hwparams, C.unsigned(out.channels)); err < 0 {
		return out.alsaError("snd_pcm_hw_params_set_channels", err)
	}

	if err := C.snd_pcm_hw_params_set_rate_resample(out.pcmHandle, hwparams, 1); err < 0 {
		return out.alsaError("snd_pcm_hw_params_set_rate_resample", err)
	}

	sr := C.unsigned(out.sampleRate)
	if err := C.snd_pcm_hw_params_set_rate_near(out.pcmHandle, hwparams, &sr, nil); err < 0 {
		return out.alsaError("snd_pcm_hw_params_set_rate_near", err)
	} else if int(sr) != out.sampleRate {
		return fmt.Errorf("%w: device does not support %d Hz", ErrUnsupportedAudio, out.sampleRate)
	}

	bufferTime := C.uint(BufferTimeMicro)
	if err := C.snd_pcm_hw_params_set_buffer_time_near(out.pcmHandle, hwparams, &bufferTime, nil); err < 0 {
		return out.alsaError("snd_pcm_hw_params_set_buffer_time_near", err)
	}

	// Request a period size that's approximately bufferSize/4.
	// By default, it might use a really short buffer size like 220 which can
	// lead to crackling.
	var bufferSize C.snd_pcm_uframes_t
	if err := C.snd_pcm_hw_params_get_buffer_size(hwparams, &bufferSize); err < 0 {
		return out.alsaError("snd_pcm_hw_params_get_buffer_size", err)
	}
	periodSize := bufferSize / NumPeriods
	if err := C.snd_pcm_hw_params_set_period_size_near(out.pcmHandle, hwparams, &periodSize, nil); err < 0 {
		return out.alsaError("snd_pcm_hw_params_set_period_size_near", err)
	}

	if err := C.snd_pcm_hw_params(out.pcmHandle, hwparams); err < 0 {
		return out.alsaError("snd_pcm_hw_params", err)
	}

	var dir C.int
	var frames C.snd_pcm_uframes_t
	if err := C.snd_pcm_hw_params_get_period_size(hwparams, &frames, &dir); err < 0 {
		return out.alsaError("snd_pcm_hw_params_get_period_size", err)
	}
	out.periodSize = int(frames)

	if err := C.snd_pcm_hw_params_get_buffer_size(hwparams, &frames); err < 0 {
		return out.alsaError("snd_pcm_hw_params_get_buffer_size", err)
	}
	out.bufferSize = int(frames)

	var swparams *C.snd_pcm_sw_params_t
	C.snd_pcm_sw_params_malloc(&swparams)
	defer C.free(unsafe.Pointer(swparams))

	if err := C.snd_pcm_sw_params_current(out.pcmHandle, swparams); err < 0 {
		return out.alsaError("snd_pcm_sw_params_current", err)
	}

	if err := C.snd_pcm_sw_params_set_start_threshold(out.pcmHandle, swparams, C.snd_pcm_uframes_t(out.bufferSize-out.periodSize)); err < 0 {
		return out.alsaError("snd_pcm_sw_params_set_start_threshold", err)
	}

	if err := C.snd_pcm_sw_params_set_avail_min(out.pcmHandle, swparams, C.snd_pcm_uframes_t(out.periodSize)); err < 0 {
		return out.alsaError("snd_pcm_sw_params_set_avail_min", err)
	}

	if err := C.snd_pcm_sw_params(out.pcmHandle, swparams); err < 0 {
		return out.alsaError("snd_pcm_sw_params", err)
	}

	out.log.Debugf("alsa device %s configured, rate = %d, period size = %d frames, buffer size = %d frames",
		device, out.sampleRate, out.periodSize, out.bufferSize)
	return nil
}

// framesDuration is how long the device takes to play n frames.
func (out *alsaSink) framesDuration(n int) time.Duration {
	return time.Duration(n) * time.Second / time.Duration(out.sampleRate)
}

func (out *alsaSink) Write(p []byte) (int, error) {
	out.lock.Lock()
	if out.closed {
		out.lock.Unlock()
		return 0, ErrOutputClosed
	}
	gen := out.gen
	data := p
	if out.gain != 1 {
		out.scratch = scaleS16(out.scratch, p, out.gain)
		data = out.scratch
	}
	out.lock.Unlock()

	frames := len(data) / out.frameSize
	written := 0
	for written < frames {
		out.lock.Lock()
		if out.closed {
			out.lock.Unlock()
			return written * out.frameSize, ErrOutputClosed
		} else if out.gen != gen {
			out.lock.Unlock()
			return len(p), nil
		}

		avail := int(C.snd_pcm_avail(out.pcmHandle))
		if avail < 0 {
			// Got an error, so must recover (even for an underrun).
			if errCode := C.snd_pcm_recover(out.pcmHandle, C.int(avail), 1); errCode < 0 {
				out.lock.Unlock()
				return written * out.frameSize, out.alsaError("snd_pcm_recover", errCode)
			}
			out.lock.Unlock()
			continue
		} else if avail < min(out.periodSize, frames-written) {
			// Wait until periodSize*1.125 frames can be written, snd_pcm_writei
			// is still delayed when waiting for exactly periodSize.
			wait := out.framesDuration(out.periodSize + out.periodSize/8 - avail)
			out.lock.Unlock()
			time.Sleep(wait)
			continue
		}

		n := min(frames-written, avail)
		nn := C.snd_pcm_writei(out.pcmHandle, unsafe.Pointer(&data[written*out.frameSize]), C.snd_pcm_uframes_t(n))
		if nn < 0 {
			if errCode := C.snd_pcm_recover(out.pcmHandle, C.int(nn), 1); errCode < 0 {
				out.lock.Unlock()
				return written * out.frameSize, out.alsaError("snd_pcm_recover", errCode)
			}
		} else {
			written += int(nn)
		}
		out.lock.Unlock()
	}

	return len(p), nil
}

// Drain waits until the device buffer has been played. A device that never
// reached its start threshold is started first.
func (out *alsaSink) Drain() error {
	out.lock.Lock()
	gen := out.gen
	out.lock.Unlock()

	for {
		out.lock.Lock()
		if out.closed || out.gen != gen {
			out.lock.Unlock()
			return nil
		}

		var delay C.snd_pcm_sframes_t
		if err := C.snd_pcm_delay(out.pcmHandle, &delay); err < 0 || delay <= 0 {
			// an underrun means everything was played
			out.lock.Unlock()
			return nil
		}

		if C.snd_pcm_state(out.pcmHandle) == C.SND_PCM_STATE_PREPARED {
			if err := C.snd_pcm_start(out.pcmHandle); err < 0 {
				out.lock.Unlock()
				return out.alsaError("snd_pcm_start", err)
			}
		}
		out.lock.Unlock()

		time.Sleep(min(out.framesDuration(int(delay)), out.framesDuration(out.periodSize)))
	}
}

func (out *alsaSink) Flush() error {
	out.lock.Lock()
	defer out.lock.Unlock()

	out.gen++
	if out.closed {
		return nil
	}

	if err := C.snd_pcm_drop(out.pcmHandle); err < 0 {
		return out.alsaError("snd_pcm_drop", err)
	}

	// Since we are not actually stopping the stream, prepare it again.
	if err := C.snd_pcm_prepare(out.pcmHandle); err < 0 {
		return out.alsaError("snd_pcm_prepare", err)
	}

	return nil
}

// SetGain scales samples in software, the device mixer is left alone.
func (out *alsaSink) SetGain(gain float32) error {
	out.lock.Lock()
	defer out.lock.Unlock()
	out.gain = gain
	return nil
}

func (out *alsaSink) Close() error {
	out.lock.Lock()
	defer out.lock.Unlock()

	if out.closed {
		return nil
	}
	out.closed = true

	if err := C.snd_pcm_close(out.pcmHandle); err < 0 {
		return out.alsaError("snd_pcm_close", err)
	}
	out.pcmHandle = nil
	return nil
}
