// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"fmt"
	"math"
)

// Downmix averages all channels into a single channel. A mono buffer is
// returned as is.
func Downmix(b *PCMBuffer) (*PCMBuffer, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if b.NumChannels() == 1 {
		return b, nil
	}

	frames := b.Frames()
	mono := make([]float32, frames)

	switch b.NumChannels() {
	case 2: // Stereo (most common)
		left, right := b.Channels[0], b.Channels[1]
		for f := range frames {
			mono[f] = (left[f] + right[f]) * 0.5
		}
	default:
		inv := float32(1.0) / float32(b.NumChannels())
		for f := range frames {
			var sum float32
			for _, ch := range b.Channels {
				sum += ch[f]
			}
			mono[f] = sum * inv
		}
	}

	return &PCMBuffer{SampleRate: b.SampleRate, Channels: [][]float32{mono}}, nil
}

// Resample converts b to dstRate using Catmull-Rom cubic interpolation.
// When downsampling, a one-pole low-pass runs over the source first to
// tame aliasing.
func Resample(b *PCMBuffer, dstRate int) (*PCMBuffer, error) {
	if err := b.Validate(); err != nil {
		return nil, err
	}
	if dstRate <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidRate, dstRate)
	}
	if dstRate == b.SampleRate {
		return b, nil
	}

	ratio := float64(b.SampleRate) / float64(dstRate)
	srcFrames := b.Frames()
	dstFrames := int(math.Round(float64(srcFrames) / ratio))

	out := &PCMBuffer{
		SampleRate: dstRate,
		Channels:   make([][]float32, b.NumChannels()),
	}

	for c, ch := range b.Channels {
		src := ch
		if ratio > 1 {
			src = lowPass(ch, 0.5)
		}

		dst := make([]float32, dstFrames)
		for i := range dstFrames {
			pos := float64(i) * ratio
			idx := int(pos)
			frac := float32(pos - float64(idx))

			dst[i] = cubic(
				at(src, idx-1),
				at(src, idx),
				at(src, idx+1),
				at(src, idx+2),
				frac,
			)
		}
		out.Channels[c] = dst
	}

	return out, nil
}

// at returns s[i] with the edge samples repeated past both ends.
func at(s []float32, i int) float32 {
	if len(s) == 0 {
		return 0
	}
	if i < 0 {
		return s[0]
	}
	if i >= len(s) {
		return s[len(s)-1]
	}
	return s[i]
}

func lowPass(s []float32, alpha float32) []float32 {
	out := make([]float32, len(s))
	if len(s) == 0 {
		return out
	}

	// seeded with the first sample to avoid a warm-up transient
	state := s[0]
	for i, x := range s {
		state = alpha*x + (1-alpha)*state
		out[i] = state
	}

	return out
}

// cubic interpolates between y1 and y2; x is the fractional position (0 <= x <= 1).
func cubic(y0, y1, y2, y3, x float32) float32 {
	a0 := -0.5*y0 + 1.5*y1 - 1.5*y2 + 0.5*y3
	a1 := y0 - 2.5*y1 + 2*y2 - 0.5*y3
	a2 := -0.5*y0 + 0.5*y2

	return ((a0*x+a1)*x+a2)*x + y1
}
