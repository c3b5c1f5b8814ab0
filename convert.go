// SPDX-License-Identifier: EPL-2.0

package pitchdetector

import (
	"context"
	"fmt"
	"io"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/xmyshaw/mandarin-pitch-detector/capture"
	"github.com/xmyshaw/mandarin-pitch-detector/convert"
	"github.com/xmyshaw/mandarin-pitch-detector/formats/wav"
)

// ConvertToWAV reads a whole recording from r and converts it with every
// decoder this module ships. mediaType may be empty; the container is
// identified from its leading bytes first.
func ConvertToWAV(ctx context.Context, r io.Reader, mediaType string, opts convert.Options) (*wav.File, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("reading recording: %w", err)
	}

	return convert.New(nil, opts, nil).Convert(ctx, capture.NewBlob(data, mediaType))
}

// LoadBlob reads a recording from disk, guessing the media type from the
// file extension.
func LoadBlob(path string) (*capture.Blob, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}

	return capture.NewBlob(data, MediaTypeByExtension(path)), nil
}

var extraTypes = map[string]string{
	".wav":  "audio/wav",
	".mp3":  "audio/mpeg",
	".ogg":  "audio/ogg",
	".oga":  "audio/ogg",
	".opus": "audio/opus",
	".flac": "audio/flac",
	".aif":  "audio/aiff",
	".aiff": "audio/aiff",
	".webm": "audio/webm",
	".m4a":  "audio/mp4",
}

// MediaTypeByExtension maps a file name to an audio media type, or "" when
// the extension is unknown.
func MediaTypeByExtension(path string) string {
	ext := strings.ToLower(filepath.Ext(path))
	if t, ok := extraTypes[ext]; ok {
		return t
	}

	// system tables differ between platforms; only trust them for audio
	if t := mime.TypeByExtension(ext); strings.HasPrefix(t, "audio/") {
		return t
	}

	return ""
}
