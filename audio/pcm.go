// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"
)

// PCMBuffer holds fully decoded audio, one sample slice per channel.
// Every channel slice has the same length.
type PCMBuffer struct {
	SampleRate int
	Channels   [][]float32
}

func (b *PCMBuffer) NumChannels() int { return len(b.Channels) }

// Frames returns the number of samples per channel.
func (b *PCMBuffer) Frames() int {
	if len(b.Channels) == 0 {
		return 0
	}
	return len(b.Channels[0])
}

func (b *PCMBuffer) Duration() time.Duration {
	if b.SampleRate <= 0 {
		return 0
	}
	return time.Duration(b.Frames()) * time.Second / time.Duration(b.SampleRate)
}

// Validate reports whether the buffer can be encoded: at least one channel,
// equal channel lengths and a positive sample rate.
func (b *PCMBuffer) Validate() error {
	if b == nil {
		return fmt.Errorf("%w: nil buffer", ErrInvalidPCMBuffer)
	}
	if b.SampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", ErrInvalidPCMBuffer, b.SampleRate)
	}
	if len(b.Channels) == 0 {
		return fmt.Errorf("%w: no channels", ErrInvalidPCMBuffer)
	}
	frames := len(b.Channels[0])
	for c, ch := range b.Channels[1:] {
		if len(ch) != frames {
			return fmt.Errorf("%w: channel %d has %d samples, channel 0 has %d",
				ErrInvalidPCMBuffer, c+1, len(ch), frames)
		}
	}

	return nil
}

// Interleaved returns the samples as frame-major interleaved values.
func (b *PCMBuffer) Interleaved() []float32 {
	channels := len(b.Channels)
	frames := b.Frames()
	out := make([]float32, frames*channels)
	for c, ch := range b.Channels {
		for f, v := range ch {
			out[f*channels+c] = v
		}
	}

	return out
}

// FromInterleaved splits interleaved samples into a PCMBuffer. Trailing
// samples that do not form a whole frame are dropped.
func FromInterleaved(sampleRate, channels int, samples []float32) (*PCMBuffer, error) {
	if channels < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrInvalidPCMBuffer, channels)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("%w: sample rate %d", ErrInvalidPCMBuffer, sampleRate)
	}

	frames := len(samples) / channels
	buf := &PCMBuffer{
		SampleRate: sampleRate,
		Channels:   make([][]float32, channels),
	}
	for c := range channels {
		buf.Channels[c] = make([]float32, frames)
	}
	for f := range frames {
		base := f * channels
		for c := range channels {
			buf.Channels[c][f] = samples[base+c]
		}
	}

	return buf, nil
}

const maxEmptyReads = 100

// ReadAll drains src into a PCMBuffer. The context is checked between reads
// so a long decode can be abandoned.
func ReadAll(ctx context.Context, src Source) (*PCMBuffer, error) {
	channels := src.Channels()
	if channels < 1 {
		return nil, fmt.Errorf("%w: source reports %d channels", ErrInvalidPCMBuffer, channels)
	}

	size := src.BufSize()
	if size < channels {
		size = 4096
	}
	// whole frames only so interleaving stays aligned
	size -= size % channels
	buf := make([]float32, size)

	var interleaved []float32
	empty := 0
	for {
		if err := ctx.Err(); err != nil {
			return nil, fmt.Errorf("%w", err)
		}

		n, err := src.ReadSamples(buf)
		if n > 0 {
			interleaved = append(interleaved, buf[:n]...)
			empty = 0
		}
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("reading samples: %w", err)
		}
		if n == 0 {
			empty++
			if empty >= maxEmptyReads {
				return nil, fmt.Errorf("reading samples: %w", io.ErrNoProgress)
			}
		}
	}

	if len(interleaved) < channels {
		return nil, ErrEmptyAudio
	}

	return FromInterleaved(src.SampleRate(), channels, interleaved)
}
