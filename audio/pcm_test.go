// SPDX-License-Identifier: EPL-2.0

package audio

import (
	"context"
	"errors"
	"io"
	"slices"
	"testing"
	"time"

	"github.com/xmyshaw/mandarin-pitch-detector/internal/audiotest"
)

func TestPCMBuffer_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		buf     *PCMBuffer
		wantErr bool
	}{
		{name: "nil", buf: nil, wantErr: true},
		{name: "zero rate", buf: &PCMBuffer{Channels: [][]float32{{0}}}, wantErr: true},
		{name: "no channels", buf: &PCMBuffer{SampleRate: 8000}, wantErr: true},
		{name: "ragged", buf: &PCMBuffer{SampleRate: 8000, Channels: [][]float32{{0, 0}, {0}}}, wantErr: true},
		{name: "empty mono", buf: &PCMBuffer{SampleRate: 8000, Channels: [][]float32{{}}}},
		{name: "stereo", buf: &PCMBuffer{SampleRate: 8000, Channels: [][]float32{{1, 2}, {3, 4}}}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.buf.Validate()
			if tt.wantErr && !errors.Is(err, ErrInvalidPCMBuffer) {
				t.Errorf("Validate() = %v, want ErrInvalidPCMBuffer", err)
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
		})
	}
}

func TestPCMBuffer_Duration(t *testing.T) {
	t.Parallel()

	b := &PCMBuffer{SampleRate: 16000, Channels: [][]float32{make([]float32, 8000)}}
	if d := b.Duration(); d != 500*time.Millisecond {
		t.Errorf("Duration() = %v, want 500ms", d)
	}
	if d := (&PCMBuffer{}).Duration(); d != 0 {
		t.Errorf("Duration() of empty buffer = %v, want 0", d)
	}
}

func TestInterleaveRoundTrip(t *testing.T) {
	t.Parallel()

	samples := []float32{1, -1, 2, -2, 3, -3, 99}
	b, err := FromInterleaved(8000, 2, samples)
	if err != nil {
		t.Fatalf("FromInterleaved() error = %v", err)
	}

	if b.Frames() != 3 {
		t.Fatalf("Frames() = %d, want 3 (partial frame dropped)", b.Frames())
	}
	if !slices.Equal(b.Channels[0], []float32{1, 2, 3}) || !slices.Equal(b.Channels[1], []float32{-1, -2, -3}) {
		t.Errorf("channels = %v, want [[1 2 3] [-1 -2 -3]]", b.Channels)
	}
	if got := b.Interleaved(); !slices.Equal(got, samples[:6]) {
		t.Errorf("Interleaved() = %v, want %v", got, samples[:6])
	}
}

func TestFromInterleaved_Invalid(t *testing.T) {
	t.Parallel()

	if _, err := FromInterleaved(8000, 0, nil); !errors.Is(err, ErrInvalidPCMBuffer) {
		t.Errorf("zero channels: error = %v, want ErrInvalidPCMBuffer", err)
	}
	if _, err := FromInterleaved(0, 1, nil); !errors.Is(err, ErrInvalidPCMBuffer) {
		t.Errorf("zero rate: error = %v, want ErrInvalidPCMBuffer", err)
	}
}

func TestReadAll(t *testing.T) {
	t.Parallel()

	src := audiotest.NewMockSource(22050, 2, 10000, func(i, ch int) float32 {
		if ch == 0 {
			return 0.25
		}
		return -0.25
	})

	b, err := ReadAll(context.Background(), src)
	if err != nil {
		t.Fatalf("ReadAll() error = %v", err)
	}

	if b.SampleRate != 22050 || b.NumChannels() != 2 || b.Frames() != 10000 {
		t.Fatalf("got %d Hz %dch %d frames, want 22050 Hz 2ch 10000 frames",
			b.SampleRate, b.NumChannels(), b.Frames())
	}
	if b.Channels[0][9999] != 0.25 || b.Channels[1][0] != -0.25 {
		t.Error("channels were not de-interleaved correctly")
	}
}

func TestReadAll_Empty(t *testing.T) {
	t.Parallel()

	_, err := ReadAll(context.Background(), audiotest.NewSilentSource(8000, 1, 0))
	if !errors.Is(err, ErrEmptyAudio) {
		t.Errorf("ReadAll() error = %v, want ErrEmptyAudio", err)
	}
}

func TestReadAll_SourceError(t *testing.T) {
	t.Parallel()

	boom := errors.New("corrupt frame")
	src := audiotest.NewSilentSource(8000, 1, 100000).FailAfter(5000, boom)

	_, err := ReadAll(context.Background(), src)
	if !errors.Is(err, boom) {
		t.Errorf("ReadAll() error = %v, want wrapped %v", err, boom)
	}
}

func TestReadAll_Cancelled(t *testing.T) {
	t.Parallel()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := ReadAll(ctx, audiotest.NewSilentSource(8000, 1, 100))
	if !errors.Is(err, context.Canceled) {
		t.Errorf("ReadAll() error = %v, want context.Canceled", err)
	}
}

// stuckSource never makes progress and never finishes.
type stuckSource struct{}

func (stuckSource) SampleRate() int                   { return 8000 }
func (stuckSource) Channels() int                     { return 1 }
func (stuckSource) ReadSamples([]float32) (int, error) { return 0, nil }
func (stuckSource) BufSize() int                      { return 0 }
func (stuckSource) Close() error                      { return nil }

func TestReadAll_NoProgress(t *testing.T) {
	t.Parallel()

	_, err := ReadAll(context.Background(), stuckSource{})
	if !errors.Is(err, io.ErrNoProgress) {
		t.Errorf("ReadAll() error = %v, want io.ErrNoProgress", err)
	}
}
