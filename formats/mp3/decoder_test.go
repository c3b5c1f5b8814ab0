// SPDX-License-Identifier: EPL-2.0

package mp3

import (
	"bytes"
	"encoding/binary"
	"errors"
	"io"
	"math"
	"testing"
)

// mockMP3Reader simulates the gomp3.Decoder for testing
type mockMP3Reader struct {
	sampleRate int
	data       []byte
	offset     int
	chunk      int // max bytes per Read, 0 = unlimited
	err        error
}

func newMockReader(rate int, samples []int16) *mockMP3Reader {
	data := make([]byte, len(samples)*2)
	for i, s := range samples {
		binary.LittleEndian.PutUint16(data[i*2:], uint16(s))
	}
	return &mockMP3Reader{sampleRate: rate, data: data}
}

func (m *mockMP3Reader) SampleRate() int { return m.sampleRate }

func (m *mockMP3Reader) Read(buf []byte) (int, error) {
	if m.err != nil {
		return 0, m.err
	}
	if m.offset >= len(m.data) {
		return 0, io.EOF
	}
	if m.chunk > 0 && len(buf) > m.chunk {
		buf = buf[:m.chunk]
	}
	n := copy(buf, m.data[m.offset:])
	m.offset += n
	return n, nil
}

func TestDecoder_InvalidInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader([]byte("This is not MP3 data")))
	if !errors.Is(err, ErrNotMP3) {
		t.Errorf("Decode() error = %v, want ErrNotMP3", err)
	}
}

func TestDecoder_EmptyInput(t *testing.T) {
	t.Parallel()

	_, err := Decoder{}.Decode(bytes.NewReader(nil))
	if err == nil {
		t.Error("Decode() error = nil, want error for empty input")
	}
}

func TestSource_Metadata(t *testing.T) {
	t.Parallel()

	src := &source{dec: newMockReader(44100, nil), sampleRate: 44100, buf: make([]byte, 8192)}

	if src.SampleRate() != 44100 {
		t.Errorf("SampleRate() = %d, want 44100", src.SampleRate())
	}
	if src.Channels() != 2 {
		t.Errorf("Channels() = %d, want 2", src.Channels())
	}
	if src.BufSize() != 4096 {
		t.Errorf("BufSize() = %d, want 4096", src.BufSize())
	}
}

func TestSource_ReadSamples(t *testing.T) {
	t.Parallel()

	samples := []int16{0, 16384, -16384, 32767, -32768, 0}
	src := &source{dec: newMockReader(44100, samples), sampleRate: 44100}

	dst := make([]float32, 16)
	n, err := src.ReadSamples(dst)
	if err != nil {
		t.Fatalf("ReadSamples() error = %v", err)
	}
	if n != len(samples) {
		t.Fatalf("ReadSamples() n = %d, want %d", n, len(samples))
	}

	want := []float32{0, 0.5, -0.5, 1, -1, 0}
	for i := range n {
		if math.Abs(float64(dst[i]-want[i])) > 0.001 {
			t.Errorf("dst[%d] = %v, want ≈%v", i, dst[i], want[i])
		}
	}

	n, err = src.ReadSamples(dst)
	if n != 0 || !errors.Is(err, io.EOF) {
		t.Errorf("ReadSamples() after end = (%d, %v), want (0, io.EOF)", n, err)
	}
}

func TestSource_ReadSamples_ShortReads(t *testing.T) {
	t.Parallel()

	samples := make([]int16, 100)
	for i := range samples {
		samples[i] = int16(i * 100)
	}
	reader := newMockReader(22050, samples)
	reader.chunk = 3 // odd sized reads must not tear samples

	src := &source{dec: reader, sampleRate: 22050}

	var got []float32
	dst := make([]float32, 10)
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

	if len(got) != len(samples) {
		t.Fatalf("read %d samples, want %d", len(got), len(samples))
	}
	for i, s := range samples {
		want := float32(s) / 32767
		if math.Abs(float64(got[i]-want)) > 0.0001 {
			t.Fatalf("sample %d = %v, want %v", i, got[i], want)
		}
	}
}

func TestSource_ReadSamples_DropsTornFrame(t *testing.T) {
	t.Parallel()

	reader := newMockReader(8000, []int16{1000, 2000, 3000})
	src := &source{dec: reader, sampleRate: 8000}

	dst := make([]float32, 8)
	n, _ := src.ReadSamples(dst)
	if n != 2 {
		t.Errorf("ReadSamples() n = %d, want 2 (one whole stereo frame)", n)
	}
}

func TestSource_ReadSamples_Error(t *testing.T) {
	t.Parallel()

	boom := errors.New("corrupt frame")
	src := &source{dec: &mockMP3Reader{err: boom}, sampleRate: 8000}

	_, err := src.ReadSamples(make([]float32, 4))
	if !errors.Is(err, boom) {
		t.Errorf("ReadSamples() error = %v, want wrapped %v", err, boom)
	}
}
