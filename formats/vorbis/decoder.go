package vorbis

import (
	"errors"
	"fmt"
	"io"

	"github.com/jfreymuth/oggvorbis"

	"github.com/xmyshaw/mandarin-pitch-detector/audio"
)

var ErrNotVorbis = errors.New("not an Ogg Vorbis stream")

// oggReader is an interface for oggvorbis.Reader to allow testing
type oggReader interface {
	SampleRate() int
	Channels() int
	Read([]float32) (int, error)
}

type source struct {
	dec oggReader
}

func (s *source) SampleRate() int { return s.dec.SampleRate() }
func (s *source) Channels() int   { return s.dec.Channels() }
func (s *source) Close() error    { return nil }
func (s *source) BufSize() int    { return 4096 }

// ReadSamples reads straight into dst; oggvorbis already yields
// interleaved float32.
func (s *source) ReadSamples(dst []float32) (int, error) {
	ch := s.dec.Channels()
	whole := len(dst) - len(dst)%ch
	if whole == 0 {
		return 0, nil
	}

	n, err := s.dec.Read(dst[:whole])
	if err != nil && !errors.Is(err, io.EOF) {
		return n, fmt.Errorf("decoding vorbis: %w", err)
	}
	if n == 0 && err == nil {
		return 0, io.EOF
	}

	return n, err
}

type Decoder struct{}

func (Decoder) Decode(r io.Reader) (audio.Source, error) {
	dec, err := oggvorbis.NewReader(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrNotVorbis, err)
	}
	if dec.Channels() < 1 {
		return nil, fmt.Errorf("%w: %d channels", ErrNotVorbis, dec.Channels())
	}

	return &source{dec: dec}, nil
}
