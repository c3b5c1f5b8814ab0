// SPDX-License-Identifier: EPL-2.0

package flac

import (
	"bytes"
	"errors"
	"io"
	"testing"

	"github.com/mewkiz/flac/frame"
)

type mockStream struct {
	frames []*frame.Frame
	err    error
	closed bool
}

func (m *mockStream) ParseNext() (*frame.Frame, error) {
	if len(m.frames) == 0 {
		if m.err != nil {
			return nil, m.err
		}
		return nil, io.EOF
	}
	f := m.frames[0]
	m.frames = m.frames[1:]
	return f, nil
}

func (m *mockStream) Close() error {
	m.closed = true
	return nil
}

func newFrame(channels ...[]int32) *frame.Frame {
	f := &frame.Frame{}
	for _, ch := range channels {
		f.Subframes = append(f.Subframes, &frame.Subframe{Samples: ch})
	}
	return f
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("not a flac stream at all")))
	if !errors.Is(err, ErrNotFlac) {
		t.Errorf("Decode() error = %v, want ErrNotFlac", err)
	}
}

func TestSource_ReadSamples_InterleavesAcrossFrames(t *testing.T) {
	t.Parallel()

	stream := &mockStream{frames: []*frame.Frame{
		newFrame([]int32{16384, -16384}, []int32{0, 8192}),
		newFrame([]int32{-32768}, []int32{32767}),
	}}
	src := &source{stream: stream, sampleRate: 44100, channels: 2, scale: 1.0 / 32768}

	var got []float32
	dst := make([]float32, 3) // odd on purpose
	for {
		n, err := src.ReadSamples(dst)
		got = append(got, dst[:n]...)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			t.Fatalf("ReadSamples() error = %v", err)
		}
	}

	want := []float32{0.5, 0, -0.5, 0.25, -1, 32767.0 / 32768}
	if len(got) != len(want) {
		t.Fatalf("read %v, want %v", got, want)
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("sample %d = %v, want %v", i, got[i], want[i])
		}
	}
}

func TestSource_ReadSamples_ChannelMismatch(t *testing.T) {
	t.Parallel()

	stream := &mockStream{frames: []*frame.Frame{newFrame([]int32{1})}}
	src := &source{stream: stream, sampleRate: 8000, channels: 2, scale: 1.0 / 32768}

	_, err := src.ReadSamples(make([]float32, 4))
	if !errors.Is(err, ErrNotFlac) {
		t.Errorf("ReadSamples() error = %v, want ErrNotFlac", err)
	}
}

func TestSource_ReadSamples_StreamError(t *testing.T) {
	t.Parallel()

	boom := errors.New("crc mismatch")
	src := &source{stream: &mockStream{err: boom}, sampleRate: 8000, channels: 1, scale: 1.0 / 32768}

	_, err := src.ReadSamples(make([]float32, 4))
	if !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want wrapped %v", err, boom)
	}
}

func TestSource_Close(t *testing.T) {
	t.Parallel()

	stream := &mockStream{}
	src := &source{stream: stream, channels: 1}

	if err := src.Close(); err != nil {
		t.Fatalf("Close() error = %v", err)
	}
	if !stream.closed {
		t.Error("Close() did not close the stream")
	}
}
