package metadata

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/thog92/go-lwjall/vorbis"
)

// TrackMetadata represents what is currently playing.
type TrackMetadata struct {
	Input      string    `json:"input"`
	Title      string    `json:"title,omitempty"`
	Artist     string    `json:"artist,omitempty"`
	Album      string    `json:"album,omitempty"`
	Genre      string    `json:"genre,omitempty"`
	Vendor     string    `json:"vendor,omitempty"`
	SampleRate int       `json:"sample_rate"`
	Channels   int       `json:"channels"`
	Bitrate    int       `json:"bitrate,omitempty"`
	Volume     int       `json:"volume"`
	Playing    bool      `json:"playing"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewTrackMetadata builds the metadata of an input out of its Vorbis headers.
// The title falls back to the input name.
func NewTrackMetadata(input string, info vorbis.Info) *TrackMetadata {
	tm := &TrackMetadata{
		Input:      input,
		Vendor:     info.Vendor,
		SampleRate: info.SampleRate,
		Channels:   info.Channels,
		Bitrate:    info.Bitrate.Nominal,
		Timestamp:  time.Now(),
	}

	tm.Title, _ = info.Comment("TITLE")
	tm.Artist, _ = info.Comment("ARTIST")
	tm.Album, _ = info.Comment("ALBUM")
	tm.Genre, _ = info.Comment("GENRE")
	if tm.Title == "" {
		tm.Title = input
	}

	return tm
}

// ToJSONFormat encodes the metadata as a single JSON line.
func (tm *TrackMetadata) ToJSONFormat() []byte {
	data, _ := json.Marshal(tm)
	return append(data, '\n')
}

// ToXMLFormat encodes the metadata as shairport-sync style items, readable by
// the same tools that consume its metadata pipe.
func (tm *TrackMetadata) ToXMLFormat() []byte {
	var result []byte
	item := func(itemType, code, data string) {
		result = fmt.Appendf(result, "<item><type>%08x</type><code>%08x</code><length>%x</length><data>%s</data></item>\n",
			fourCC(itemType), fourCC(code), len(data), base64.StdEncoding.EncodeToString([]byte(data)))
	}

	if tm.Title != "" {
		item("core", "minm", tm.Title)
	}
	if tm.Artist != "" {
		item("core", "asar", tm.Artist)
	}
	if tm.Album != "" {
		item("core", "asal", tm.Album)
	}
	if tm.Genre != "" {
		item("core", "asgn", tm.Genre)
	}

	playState := "stop"
	if tm.Playing {
		playState = "play"
	}
	item("ssnc", "pply", playState)
	item("ssnc", "pvol", strconv.Itoa(tm.Volume))

	return result
}

func fourCC(s string) uint32 {
	if len(s) != 4 {
		return 0
	}
	return uint32(s[0])<<24 | uint32(s[1])<<16 | uint32(s[2])<<8 | uint32(s[3])
}
