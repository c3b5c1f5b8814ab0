// SPDX-License-Identifier: EPL-2.0

// Package audio provides the PCM model shared by the decoders, the WAV
// encoder and the recording converter.
//
// # Source Interface
//
// Every format decoder returns a Source that streams interleaved float32
// samples in the range [-1.0, 1.0]:
//
//	type Source interface {
//	    SampleRate() int
//	    Channels() int
//	    ReadSamples(dst []float32) (int, error)
//	    BufSize() int
//	    Close() error
//	}
//
// # PCM Buffers
//
// A recording is short, so conversion works on the whole decoded signal at
// once. ReadAll drains a Source into a PCMBuffer, which keeps one slice per
// channel:
//
//	buf, err := audio.ReadAll(ctx, src)
//	if err != nil {
//	    return err
//	}
//	fmt.Println(buf.SampleRate, buf.NumChannels(), buf.Frames())
//
// Validate enforces the buffer invariants (at least one channel, equal
// channel lengths, positive sample rate) and is called by the encoder before
// anything is written.
//
// # Channel Mixing and Resampling
//
// Downmix averages channels into mono, Resample changes the sample rate
// using cubic interpolation:
//
//	mono, _ := audio.Downmix(buf)
//	out, _ := audio.Resample(mono, 16000)
//
// # Format Registry
//
// The registry maps a format key to its decoder:
//
//	registry := audio.NewRegistry()
//	registry.Register("wav", wav.Decoder{})
//	decoder, ok := registry.Get("wav")
package audio
