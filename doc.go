// SPDX-License-Identifier: EPL-2.0

// Package pitchdetector records a spoken syllable, converts it to a
// canonical WAV file and asks a remote service which Mandarin tone it
// carries.
//
// # Packages
//
// The work is split into small packages, leaf first:
//   - audio: the Source/Decoder abstraction, PCMBuffer, downmixing and resampling
//   - formats and its subpackages: container detection and decoders for WAV,
//     MP3, Ogg Vorbis, AIFF and FLAC, plus the WAV encoder
//   - capture: a recording session over a blocking input Device
//   - convert: any supported recording → WAV
//   - analysis: the HTTP client for the tone service
//   - lifecycle: the Idle → Recording → Recorded → Analyzing → Succeeded/Failed
//     state machine tying the pieces together
//
// # Quick Start
//
// Converting an existing recording takes one call:
//
//	f, _ := os.Open("ma.mp3")
//	file, err := pitchdetector.ConvertToWAV(ctx, f, "audio/mpeg", convert.Options{})
//
// Submitting it:
//
//	client, _ := analysis.NewClient(analysis.Config{BaseURL: "http://localhost:8000"})
//	res, err := client.Analyze(ctx, file)
//	fmt.Println(res.Tone, res.FormatSlope())
//
// The tonerec command in cmd/tonerec wires a microphone, the converter and
// the client into an interactive loop.
//
// # WAV output
//
// The encoder writes the canonical 44-byte RIFF header followed by
// interleaved little-endian samples. Samples are clamped to [-1, 1];
// negative values scale by 32768 and positive values by 32767, so both ends
// of the 16-bit range are reachable and nothing wraps. Identical input
// always yields identical bytes.
package pitchdetector
