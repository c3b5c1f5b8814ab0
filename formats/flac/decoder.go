// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"errors"
	"fmt"
	"io"

	"github.com/mewkiz/flac"
	"github.com/mewkiz/flac/frame"

	"github.com/xmyshaw/mandarin-pitch-detector/audio"
)

var ErrNotFlac = errors.New("not a FLAC stream")

// frameParser is the part of flac.Stream the source needs.
type frameParser interface {
	ParseNext() (*frame.Frame, error)
	Close() error
}

type source struct {
	stream     frameParser
	sampleRate int
	channels   int
	scale      float32

	// interleaved samples of the current frame not yet handed out
	pending []float32
	eof     bool
}

func (s *source) SampleRate() int { return s.sampleRate }
func (s *source) Channels() int   { return s.channels }
func (s *source) BufSize() int    { return 4096 }

func (s *source) Close() error {
	if err := s.stream.Close(); err != nil {
		return fmt.Errorf("%w", err)
	}
	return nil
}

func (s *source) ReadSamples(dst []float32) (int, error) {
	whole := len(dst) - len(dst)%s.channels
	written := 0

	for written < whole {
		if len(s.pending) == 0 {
			if s.eof {
				break
			}
			if err := s.fill(); err != nil {
				return written, err
			}
			continue
		}

		n := copy(dst[written:whole], s.pending)
		s.pending = s.pending[n:]
		written += n
	}

	if written == 0 && s.eof && whole > 0 {
		return 0, io.EOF
	}

	return written, nil
}

// fill decodes the next frame into pending.
func (s *source) fill() error {
	f, err := s.stream.ParseNext()
	if errors.Is(err, io.EOF) {
		s.eof = true
		return nil
	}
	if err != nil {
		return fmt.Errorf("decoding flac frame: %w", err)
	}
	if len(f.Subframes) != s.channels {
		return fmt.Errorf("%w: frame has %d subframes, stream has %d channels",
			ErrNotFlac, len(f.Subframes), s.channels)
	}

	frames := len(f.Subframes[0].Samples)
	if cap(s.pending) < frames*s.channels {
		s.pending = make([]float32, frames*s.channels)
	}
	s.pending = s.pending[:frames*s.channels]

	for c, sub := range f.Subframes {
		for i, v := range sub.Samples[:frames] {
			s.pending[i*s.channels+c] = float32(v) * s.scale
		}
	}

	return nil
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	stream, err := flac.New(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotFlac, err)
	}

	info := stream.Info
	if info.NChannels < 1 || info.BitsPerSample < 1 || info.SampleRate < 1 {
		stream.Close()
		return nil, fmt.Errorf("%w: invalid stream info", ErrNotFlac)
	}

	return &source{
		stream:     stream,
		sampleRate: int(info.SampleRate),
		channels:   int(info.NChannels),
		scale:      1 / float32(int64(1)<<(info.BitsPerSample-1)),
	}, nil
}
