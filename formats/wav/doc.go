// SPDX-License-Identifier: EPL-2.0

// Package wav encodes recordings into canonical WAV files and decodes
// integer PCM WAV input.
//
// # Encoding
//
// Encode turns an audio.PCMBuffer into the fixed upload format: a 44-byte
// little-endian header (RIFF, "fmt " with 16 bytes, "data") followed by
// interleaved 16-bit signed samples.
//
//	data, err := wav.Encode(pcm)
//	if err != nil {
//	    // the buffer broke an invariant; nothing was written
//	}
//	file := wav.NewFile(data) // recording.wav, audio/wav
//
// Samples are clamped to [-1, 1] before scaling, so out of range input
// saturates instead of wrapping. Identical buffers always produce identical
// bytes.
//
// EncodeWith(pcm, wav.Float32) writes 32-bit IEEE float samples instead.
// WriteWAV16 streams already quantised int16 samples, which is what the
// capture session uses.
//
// # Decoding
//
// Decoder wraps github.com/go-audio/wav, so files with extra chunks before
// or after "fmt " are accepted. Only integer PCM (16, 24 or 32 bits) is
// supported:
//
//	src, err := wav.Decoder{}.Decode(file)
//	if errors.Is(err, wav.ErrNotWavFile) {
//	    fmt.Println("Not a WAV file")
//	}
package wav
