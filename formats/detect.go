// SPDX-License-Identifier: EPL-2.0

package formats

import (
	"bytes"
	"mime"
	"strings"

	"github.com/xmyshaw/mandarin-pitch-detector/audio"
	"github.com/xmyshaw/mandarin-pitch-detector/formats/aiff"
	"github.com/xmyshaw/mandarin-pitch-detector/formats/flac"
	"github.com/xmyshaw/mandarin-pitch-detector/formats/mp3"
	"github.com/xmyshaw/mandarin-pitch-detector/formats/vorbis"
	"github.com/xmyshaw/mandarin-pitch-detector/formats/wav"
)

// Format keys used in the decoder registry.
const (
	WAV     = "wav"
	MP3     = "mp3"
	Ogg     = "ogg"
	AIFF    = "aiff"
	FLAC    = "flac"
	Opus    = "opus"
	WebM    = "webm"
	MP4     = "mp4"
	Unknown = ""
)

// SniffLen is how many leading bytes Detect looks at.
const SniffLen = 64

var mediaTypes = map[string]string{
	"audio/wav":       WAV,
	"audio/wave":      WAV,
	"audio/x-wav":     WAV,
	"audio/vnd.wave":  WAV,
	"audio/mpeg":      MP3,
	"audio/mp3":       MP3,
	"audio/ogg":       Ogg,
	"audio/vorbis":    Ogg,
	"application/ogg": Ogg,
	"audio/opus":      Opus,
	"audio/aiff":      AIFF,
	"audio/x-aiff":    AIFF,
	"audio/flac":      FLAC,
	"audio/x-flac":    FLAC,
	"audio/webm":      WebM,
	"video/webm":      WebM,
	"audio/mp4":       MP4,
	"audio/x-m4a":     MP4,
}

// NewRegistry returns a registry with every decoder this module ships.
// Opus, WebM and MP4 are recognised by Detect but have no decoder.
func NewRegistry() *audio.Registry {
	reg := audio.NewRegistry()
	reg.Register(WAV, wav.Decoder{})
	reg.Register(MP3, mp3.Decoder{})
	reg.Register(Ogg, vorbis.Decoder{})
	reg.Register(AIFF, aiff.Decoder{})
	reg.Register(FLAC, flac.Decoder{})

	return reg
}

// Detect identifies the container from its leading bytes, falling back to
// the declared media type when the bytes are not recognised.
func Detect(head []byte, mediaType string) string {
	if f := sniff(head); f != Unknown {
		return f
	}

	return FromMediaType(mediaType)
}

// FromMediaType maps a MIME type (parameters ignored) to a format key.
func FromMediaType(mediaType string) string {
	if mediaType == "" {
		return Unknown
	}

	mt, _, err := mime.ParseMediaType(mediaType)
	if err != nil {
		// tolerate sloppy values such as "audio/webm;codecs=opus;"
		mt = strings.ToLower(strings.TrimSpace(strings.Split(mediaType, ";")[0]))
	}

	return mediaTypes[mt]
}

func sniff(b []byte) string {
	switch {
	case len(b) >= 12 && bytes.Equal(b[0:4], []byte("RIFF")) && bytes.Equal(b[8:12], []byte("WAVE")):
		return WAV
	case len(b) >= 12 && bytes.Equal(b[0:4], []byte("FORM")) &&
		(bytes.Equal(b[8:12], []byte("AIFF")) || bytes.Equal(b[8:12], []byte("AIFC"))):
		return AIFF
	case bytes.HasPrefix(b, []byte("fLaC")):
		return FLAC
	case bytes.HasPrefix(b, []byte("OggS")):
		if bytes.Contains(b, []byte("OpusHead")) {
			return Opus
		}
		return Ogg
	case bytes.HasPrefix(b, []byte{0x1A, 0x45, 0xDF, 0xA3}):
		return WebM
	case len(b) >= 8 && bytes.Equal(b[4:8], []byte("ftyp")):
		return MP4
	case bytes.HasPrefix(b, []byte("ID3")):
		return MP3
	case len(b) >= 2 && b[0] == 0xFF && b[1]&0xE0 == 0xE0:
		// MPEG audio frame sync
		return MP3
	}

	return Unknown
}
