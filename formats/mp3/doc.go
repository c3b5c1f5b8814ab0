// SPDX-License-Identifier: EPL-2.0

// Package mp3 decodes MPEG-1/2 Layer III recordings.
//
// It wraps github.com/hajimehoshi/go-mp3, which always yields 16-bit stereo
// PCM; mono files come out with both channels equal.
//
//	src, err := mp3.Decoder{}.Decode(file)
//	if errors.Is(err, mp3.ErrNotMP3) {
//	    // not an MP3 stream
//	}
//	pcm, err := audio.ReadAll(ctx, src)
package mp3
