package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	flag "github.com/spf13/pflag"
	"github.com/thog92/go-lwjall/player"
	"github.com/thog92/go-lwjall/streaming"
	"github.com/thog92/go-lwjall/vorbis"
)

const defaultConfigPath = "config.yml"

type Config struct {
	ConfigPath string `koanf:"config"`

	LogLevel string `koanf:"log_level"`

	AudioBackend    string `koanf:"audio_backend"`
	AudioDevice     string `koanf:"audio_device"`
	AudioOutputPipe string `koanf:"audio_output_pipe"`

	BufferCount  int           `koanf:"buffer_count"`
	ChunkSize    int           `koanf:"chunk_size"`
	TickInterval time.Duration `koanf:"tick_interval"`

	Volume float32 `koanf:"volume"`
	Loop   bool    `koanf:"loop"`

	NormalisationDisabled     bool    `koanf:"normalisation_disabled"`
	NormalisationUseAlbumGain bool    `koanf:"normalisation_use_album_gain"`
	NormalisationPregain      float32 `koanf:"normalisation_pregain"`

	MaxDesyncBytes int  `koanf:"max_desync_bytes"`
	ZeroGranuleEOS bool `koanf:"zero_granule_eos"`

	HttpTimeout time.Duration `koanf:"http_timeout"`

	MetricsAddress string `koanf:"metrics_address"`

	MetadataPipe       string `koanf:"metadata_pipe"`
	MetadataPipeFormat string `koanf:"metadata_pipe_format"`

	// Dump decodes the inputs into this file instead of playing them.
	Dump string `koanf:"dump"`

	Inputs []string `koanf:"-"`
}

func defaultConfig() map[string]any {
	return map[string]any{
		"log_level":             "info",
		"audio_backend":         "pulseaudio",
		"audio_output_pipe":     "/tmp/oggplay.pcm",
		"buffer_count":          player.DefaultBufferCount,
		"chunk_size":            streaming.DefaultChunkSize,
		"tick_interval":         player.DefaultTickInterval.String(),
		"volume":                1.0,
		"normalisation_pregain": 0.0,
		"max_desync_bytes":      vorbis.DefaultMaxDesyncBytes,
		"zero_granule_eos":      true,
		"http_timeout":          (30 * time.Second).String(),
		"metadata_pipe_format":  "json",
	}
}

func newFlagSet() *flag.FlagSet {
	f := flag.NewFlagSet("oggplay", flag.ContinueOnError)
	f.Usage = func() {
		_, _ = fmt.Fprintf(os.Stderr, "Usage: oggplay [flags] <file or url>...\n\n")
		f.PrintDefaults()
	}

	f.String("config", defaultConfigPath, "path to the YAML configuration file")
	f.String("log-level", "info", "log level (trace, debug, info, warn, error)")
	f.String("audio-backend", "pulseaudio", "audio backend (pulseaudio, alsa, pipe)")
	f.String("audio-device", "", "audio device name")
	f.String("audio-output-pipe", "/tmp/oggplay.pcm", "output FIFO for the pipe backend")
	f.Int("buffer-count", player.DefaultBufferCount, "number of queued output buffers")
	f.Int("chunk-size", streaming.DefaultChunkSize, "bytes of PCM per output buffer")
	f.Duration("tick-interval", player.DefaultTickInterval, "how often played buffers are recycled")
	f.Float32("volume", 1, "linear volume")
	f.Bool("loop", false, "play the inputs in a loop")
	f.Bool("normalisation-disabled", false, "ignore replay gain comments")
	f.Bool("normalisation-use-album-gain", false, "normalise with the album gain")
	f.Float32("normalisation-pregain", 0, "pregain in dB applied when normalising")
	f.Int("max-desync-bytes", vorbis.DefaultMaxDesyncBytes, "bytes skipped looking for a page before giving up")
	f.Bool("zero-granule-eos", true, "treat a zero granule position on the first audio page as end of stream")
	f.Duration("http-timeout", 30*time.Second, "timeout of a single HTTP request")
	f.String("metrics-address", "", "address serving prometheus metrics, disabled if empty")
	f.String("metadata-pipe", "", "named pipe where now playing metadata is written")
	f.String("metadata-pipe-format", "json", "metadata pipe format (json, xml)")
	f.String("dump", "", "decode the inputs to this file instead of playing them, WAV if it ends in .wav")
	return f
}

func loadConfig(args []string) (*Config, error) {
	f := newFlagSet()
	if err := f.Parse(args); err != nil {
		return nil, err
	}

	k := koanf.New(".")
	if err := k.Load(confmap.Provider(defaultConfig(), "."), nil); err != nil {
		return nil, fmt.Errorf("failed loading defaults: %w", err)
	}

	// a missing file is fine unless explicitly requested
	path, _ := f.GetString("config")
	if _, err := os.Stat(path); err == nil {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed reading configuration file: %w", err)
		}
	} else if !errors.Is(err, fs.ErrNotExist) || f.Changed("config") {
		return nil, fmt.Errorf("failed reading configuration file: %w", err)
	}

	if err := k.Load(posflag.ProviderWithFlag(f, ".", k, func(fl *flag.Flag) (string, any) {
		return strings.ReplaceAll(fl.Name, "-", "_"), posflag.FlagVal(f, fl)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed loading flags: %w", err)
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("failed unmarshalling configuration: %w", err)
	}

	cfg.ConfigPath = path
	cfg.Inputs = f.Args()
	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validate() error {
	if len(c.Inputs) == 0 {
		return errors.New("no input given")
	} else if c.BufferCount < 1 || c.BufferCount > player.MaxBufferCount {
		return fmt.Errorf("buffer_count must be between 1 and %d", player.MaxBufferCount)
	} else if c.ChunkSize <= 0 {
		return fmt.Errorf("invalid chunk_size: %d", c.ChunkSize)
	} else if c.TickInterval <= 0 {
		return fmt.Errorf("invalid tick_interval: %s", c.TickInterval)
	} else if c.Volume < 0 {
		return fmt.Errorf("invalid volume: %0.2f", c.Volume)
	}

	switch c.AudioBackend {
	case "pulseaudio", "alsa", "pipe":
	default:
		return fmt.Errorf("unknown audio backend: %s", c.AudioBackend)
	}

	if len(c.MetadataPipe) > 0 && c.MetadataPipeFormat != "json" && c.MetadataPipeFormat != "xml" {
		return fmt.Errorf("unknown metadata pipe format: %s", c.MetadataPipeFormat)
	}

	return nil
}
