package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	flag "github.com/spf13/pflag"
	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/audio"
	"github.com/thog92/go-lwjall/internal/metrics"
	"github.com/thog92/go-lwjall/metadata"
	"github.com/thog92/go-lwjall/output"
	"github.com/thog92/go-lwjall/player"
	"github.com/thog92/go-lwjall/streaming"
	"github.com/thog92/go-lwjall/vorbis"
)

type App struct {
	cfg    *Config
	log    lwjall.Logger
	client *http.Client

	// meta is nil when the metadata pipe is disabled
	meta *metadata.Publisher
}

func NewApp(cfg *Config, logger lwjall.Logger) *App {
	return &App{
		cfg:    cfg,
		log:    logger,
		client: &http.Client{Timeout: cfg.HttpTimeout},
	}
}

func isRemote(input string) bool {
	return strings.HasPrefix(input, "http://") || strings.HasPrefix(input, "https://")
}

func (app *App) openInput(input string) (io.ReadCloser, error) {
	if isRemote(input) {
		r, err := audio.NewHttpChunkedReader(app.log.WithField("url", input), app.client, input)
		if err != nil {
			return nil, err
		}

		app.log.Debugf("remote input is %d bytes, first chunk took %s", r.Size(), r.InitialLatency())
		return r, nil
	}

	return os.Open(input)
}

func (app *App) decoderOptions() []vorbis.Option {
	return []vorbis.Option{
		vorbis.WithMaxDesyncBytes(int64(app.cfg.MaxDesyncBytes)),
		vorbis.WithZeroGranuleEOS(app.cfg.ZeroGranuleEOS),
	}
}

func (app *App) openStream(input string) (*streaming.Manager, error) {
	logger := app.log.WithField("input", input)

	raw, err := app.openInput(input)
	if err != nil {
		metrics.StreamErrorsTotal.Inc()
		return nil, fmt.Errorf("failed opening %s: %w", input, err)
	}

	src := &audio.LatencyReader{Reader: raw, Callback: func(d time.Duration) {
		logger.Debugf("read whole input in %s", d)
	}}

	m, err := streaming.Open(logger, src, app.decoderOptions(), streaming.WithChunkSize(app.cfg.ChunkSize))
	if err != nil {
		_ = src.Close()
		metrics.StreamErrorsTotal.Inc()
		return nil, fmt.Errorf("failed opening stream %s: %w", input, err)
	}

	kind := "file"
	if isRemote(input) {
		kind = "http"
	}
	metrics.StreamsOpenedTotal.WithLabelValues(kind).Inc()

	info := m.Info()
	logger.Infof("opened %s stream from %s (%d kbps nominal)", m.Format(), info.Vendor, info.Bitrate.Nominal/1000)
	return m, nil
}

func (app *App) opener(input string) player.Opener {
	return func() (lwjall.ChunkSource, error) {
		m, err := app.openStream(input)
		if err != nil {
			return nil, err
		}

		app.meta.UpdateTrack(input, m.Info())
		return meteredStream{m}, nil
	}
}

func (app *App) newDevice(format lwjall.Format) (output.Device, error) {
	return output.NewOutput(&output.NewOutputOptions{
		Log:        app.log,
		Backend:    app.cfg.AudioBackend,
		Format:     format,
		Device:     app.cfg.AudioDevice,
		OutputPipe: app.cfg.AudioOutputPipe,
	})
}

// waitEnd waits for the current input to stop playing.
func waitEnd(ctx context.Context, p *player.Player) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case ev := <-p.Receive():
			metrics.PlaybackEventsTotal.WithLabelValues(ev.Type.String()).Inc()
			switch ev.Type {
			case player.EventTypeNotPlaying:
				return ev.Err
			case player.EventTypeStop:
				if ev.Err != nil {
					return ev.Err
				}
			}
		}
	}
}

// Play plays the inputs in order, the whole list is repeated when looping.
func (app *App) Play(ctx context.Context) error {
	p, err := player.NewPlayer(&player.Options{
		Log:                       app.log,
		NewDevice:                 app.newDevice,
		BufferCount:               app.cfg.BufferCount,
		ChunkSize:                 app.cfg.ChunkSize,
		TickInterval:              app.cfg.TickInterval,
		Volume:                    app.cfg.Volume,
		NormalisationEnabled:      !app.cfg.NormalisationDisabled,
		NormalisationUseAlbumGain: app.cfg.NormalisationUseAlbumGain,
		NormalisationPregain:      app.cfg.NormalisationPregain,
	})
	if err != nil {
		return fmt.Errorf("failed creating player: %w", err)
	}
	defer p.Close()

	if len(app.cfg.MetadataPipe) > 0 {
		app.meta, err = metadata.NewPublisher(app.log, metadata.Config{
			Path:   app.cfg.MetadataPipe,
			Format: app.cfg.MetadataPipeFormat,
		})
		if err != nil {
			return fmt.Errorf("failed creating metadata pipe: %w", err)
		} else if err := app.meta.Start(); err != nil {
			return fmt.Errorf("failed starting metadata pipe: %w", err)
		}

		defer app.meta.Stop()
		app.meta.UpdateVolume(app.cfg.Volume)
	}

	// a single input loops without reopening the output
	loopSingle := app.cfg.Loop && len(app.cfg.Inputs) == 1

	for {
		var played int
		for _, input := range app.cfg.Inputs {
			if err := p.Play(app.opener(input), loopSingle); err != nil {
				app.log.WithError(err).Errorf("failed playing %s", input)
				continue
			}

			played++
			err := waitEnd(ctx, p)
			app.meta.UpdatePlayingState(false)
			if errors.Is(err, context.Canceled) {
				p.Stop()
				return nil
			} else if err != nil {
				app.log.WithError(err).Errorf("playback of %s failed", input)
			}
		}

		if played == 0 {
			return errors.New("no input could be played")
		} else if !app.cfg.Loop {
			return nil
		}
	}
}

func main() {
	cfg, err := loadConfig(os.Args[1:])
	if errors.Is(err, flag.ErrHelp) {
		os.Exit(0)
	} else if err != nil {
		log.WithError(err).Fatal("failed reading configuration")
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		log.WithError(err).Fatalf("invalid log level: %s", cfg.LogLevel)
	}

	logger.Debugf("running %s", lwjall.SystemInfoString())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if len(cfg.MetricsAddress) > 0 {
		ms, err := startMetricsServer(logger, cfg.MetricsAddress)
		if err != nil {
			log.WithError(err).Fatal("failed starting metrics server")
		}
		defer func() { _ = ms.Close() }()
	}

	app := NewApp(cfg, logger)
	if len(cfg.Dump) > 0 {
		err = app.Dump(ctx)
	} else {
		err = app.Play(ctx)
	}

	if err != nil && !errors.Is(err, context.Canceled) {
		stop()
		log.WithError(err).Fatal("playback failed")
	}
}
