package player

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	lwjall "github.com/thog92/go-lwjall"
	"github.com/thog92/go-lwjall/vorbis"
)

type ReplayGain struct {
	trackGainDb float32
	trackPeak   float32
	albumGainDb float32
	albumPeak   float32
}

func parseReplayGainValue(v string) (float32, error) {
	v = strings.TrimSpace(v)
	v = strings.TrimSpace(strings.TrimSuffix(strings.TrimSuffix(v, "dB"), "db"))
	f, err := strconv.ParseFloat(v, 32)
	if err != nil {
		return 0, err
	}
	return float32(f), nil
}

// readReplayGainMetadata reads the REPLAYGAIN_* user comments. Missing peaks
// are left at zero.
func readReplayGainMetadata(info vorbis.Info) (*ReplayGain, error) {
	var rg ReplayGain
	var found bool
	for name, dst := range map[string]*float32{
		"REPLAYGAIN_TRACK_GAIN": &rg.trackGainDb,
		"REPLAYGAIN_TRACK_PEAK": &rg.trackPeak,
		"REPLAYGAIN_ALBUM_GAIN": &rg.albumGainDb,
		"REPLAYGAIN_ALBUM_PEAK": &rg.albumPeak,
	} {
		v, ok := info.Comment(name)
		if !ok {
			continue
		}

		f, err := parseReplayGainValue(v)
		if err != nil {
			return nil, fmt.Errorf("invalid %s comment %q: %w", name, v, err)
		}

		*dst = f
		found = true
	}

	if !found {
		return nil, nil
	}
	return &rg, nil
}

// Factor returns the linear gain that brings the track to the reference
// level, reduced so that the peak does not clip.
func (rg ReplayGain) Factor(pregain float32, useAlbumGain bool) float32 {
	gainDb, peak := rg.trackGainDb, rg.trackPeak
	if useAlbumGain {
		gainDb, peak = rg.albumGainDb, rg.albumPeak
	}

	factor := float32(math.Pow(10, float64(gainDb+pregain)/20))
	if peak > 0 && factor*peak > 1 {
		factor = 1 / peak
	}
	return factor
}

// normalisationFactor returns the replay gain factor of sources carrying
// Vorbis comments, 1 for everything else.
func normalisationFactor(log lwjall.Logger, src lwjall.ChunkSource, pregain float32, useAlbumGain bool) float32 {
	withInfo, ok := src.(interface{ Info() vorbis.Info })
	if !ok {
		return 1
	}

	rg, err := readReplayGainMetadata(withInfo.Info())
	if err != nil {
		log.WithError(err).Warnf("ignoring invalid replay gain metadata")
		return 1
	} else if rg == nil {
		return 1
	}

	factor := rg.Factor(pregain, useAlbumGain)
	log.Debugf("normalising source with factor %.3f", factor)
	return factor
}
