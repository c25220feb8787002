package main

import (
	"context"
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	goaudio "github.com/go-audio/audio"
	"github.com/go-audio/wav"
	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/internal/metrics"
)

// dumpWriter receives the decoded PCM of every input in order.
type dumpWriter interface {
	Write(format lwjall.Format, chunk []byte) error
	Close() error
}

type rawDumpWriter struct {
	f *os.File
}

func (w *rawDumpWriter) Write(_ lwjall.Format, chunk []byte) error {
	_, err := w.f.Write(chunk)
	return err
}

func (w *rawDumpWriter) Close() error {
	return w.f.Close()
}

// wavDumpWriter writes a single WAV file, every input must share its format.
type wavDumpWriter struct {
	f      *os.File
	enc    *wav.Encoder
	format lwjall.Format
	buf    goaudio.IntBuffer
}

func (w *wavDumpWriter) Write(format lwjall.Format, chunk []byte) error {
	if w.enc == nil {
		w.format = format
		w.enc = wav.NewEncoder(w.f, format.SampleRate, format.BitsPerSample, format.Channels, 1)
		w.buf = goaudio.IntBuffer{
			Format:         &goaudio.Format{NumChannels: format.Channels, SampleRate: format.SampleRate},
			SourceBitDepth: format.BitsPerSample,
		}
	} else if format != w.format {
		return fmt.Errorf("cannot append %s audio to a %s wav file", format, w.format)
	}

	w.buf.Data = w.buf.Data[:0]
	for i := 0; i+1 < len(chunk); i += 2 {
		w.buf.Data = append(w.buf.Data, int(int16(binary.LittleEndian.Uint16(chunk[i:]))))
	}

	return w.enc.Write(&w.buf)
}

func (w *wavDumpWriter) Close() error {
	if w.enc != nil {
		if err := w.enc.Close(); err != nil {
			_ = w.f.Close()
			return fmt.Errorf("failed finalizing wav file: %w", err)
		}
	}
	return w.f.Close()
}

func newDumpWriter(path string) (dumpWriter, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed creating dump file: %w", err)
	}

	if strings.EqualFold(filepath.Ext(path), ".wav") {
		return &wavDumpWriter{f: f}, nil
	}
	return &rawDumpWriter{f: f}, nil
}

// Dump decodes every input into the dump file, as WAV if its name ends in
// .wav and as raw s16le otherwise.
func (app *App) Dump(ctx context.Context) (err error) {
	out, err := newDumpWriter(app.cfg.Dump)
	if err != nil {
		return err
	}
	defer func() {
		if cerr := out.Close(); cerr != nil && err == nil {
			err = cerr
		}
	}()

	for _, input := range app.cfg.Inputs {
		m, err := app.openStream(input)
		if err != nil {
			return err
		}

		var total int
		for ctx.Err() == nil {
			chunk, err := m.PullChunk(0)
			if err != nil {
				_ = m.Close()
				metrics.StreamErrorsTotal.Inc()
				return fmt.Errorf("failed decoding %s: %w", input, err)
			} else if chunk == nil {
				break
			}

			if err := out.Write(m.Format(), chunk); err != nil {
				_ = m.Close()
				return fmt.Errorf("failed writing dump file: %w", err)
			}
			total += len(chunk)
			metrics.DecodedBytesTotal.Add(float64(len(chunk)))
		}

		_ = m.Close()
		app.log.Infof("decoded %s: %d bytes, %s", input, total, m.Format().Duration(total))

		if ctx.Err() != nil {
			return ctx.Err()
		}
	}

	return nil
}
