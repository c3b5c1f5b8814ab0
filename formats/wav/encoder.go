// SPDX-License-Identifier: EPL-2.0

package wav

import (
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/xmyshaw/mandarin-pitch-detector/audio"
	"github.com/xmyshaw/mandarin-pitch-detector/utils"
)

const (
	headerSize = 44

	formatPCM       = 1
	formatIEEEFloat = 3

	// samples per Write call
	chunkSize = 8192
)

// Encoding selects the sample format of the data chunk.
type Encoding int

const (
	// PCM16 is 16-bit signed linear PCM, the default.
	PCM16 Encoding = iota
	// Float32 is 32-bit IEEE float.
	Float32
)

func (e Encoding) String() string {
	switch e {
	case PCM16:
		return "pcm16"
	case Float32:
		return "float32"
	default:
		return fmt.Sprintf("Encoding(%d)", int(e))
	}
}

// ParseEncoding maps a config name to an Encoding. The empty string is PCM16.
func ParseEncoding(s string) (Encoding, error) {
	switch s {
	case "", "pcm16":
		return PCM16, nil
	case "float32":
		return Float32, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownEncoding, s)
	}
}

// Encode renders buf as a canonical 16-bit PCM WAV file. The output is a
// pure function of buf.
func Encode(buf *audio.PCMBuffer) ([]byte, error) {
	return EncodeWith(buf, PCM16)
}

// EncodeWith renders buf using the requested sample encoding.
func EncodeWith(buf *audio.PCMBuffer, enc Encoding) ([]byte, error) {
	if err := buf.Validate(); err != nil {
		return nil, fmt.Errorf("encoding WAV: %w", err)
	}

	interleaved := buf.Interleaved()
	out := new(bytes.Buffer)

	switch enc {
	case PCM16:
		out.Grow(headerSize + len(interleaved)*2)
		pcm := make([]int16, len(interleaved))
		for i, x := range interleaved {
			pcm[i] = utils.Float32ToInt16(x)
		}
		if err := WriteWAV16(out, buf.SampleRate, buf.NumChannels(), pcm); err != nil {
			return nil, err
		}
	case Float32:
		out.Grow(headerSize + len(interleaved)*4)
		if err := WriteWAVFloat32(out, buf.SampleRate, buf.NumChannels(), interleaved); err != nil {
			return nil, err
		}
	default:
		return nil, fmt.Errorf("%w: %d", ErrUnknownEncoding, int(enc))
	}

	return out.Bytes(), nil
}

// WriteWAV16 writes a 16-bit PCM WAV. samples are interleaved int16 PCM.
func WriteWAV16(w io.Writer, sampleRate, channels int, samples []int16) error {
	if err := checkLayout(sampleRate, channels, len(samples), 2); err != nil {
		return err
	}

	header := makeHeader(formatPCM, sampleRate, channels, 16, uint32(len(samples)*2))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("%w", err)
	}
	if len(samples) == 0 {
		return nil
	}

	buf := make([]byte, min(len(samples), chunkSize)*2)
	for i := 0; i < len(samples); i += chunkSize {
		chunk := samples[i:min(i+chunkSize, len(samples))]
		buf = buf[:len(chunk)*2]

		for j, s := range chunk {
			binary.LittleEndian.PutUint16(buf[j*2:], uint16(s))
		}

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

// WriteWAVFloat32 writes a 32-bit IEEE float WAV. samples are interleaved and
// clamped to [-1, 1].
func WriteWAVFloat32(w io.Writer, sampleRate, channels int, samples []float32) error {
	if err := checkLayout(sampleRate, channels, len(samples), 4); err != nil {
		return err
	}

	header := makeHeader(formatIEEEFloat, sampleRate, channels, 32, uint32(len(samples)*4))
	if _, err := w.Write(header); err != nil {
		return fmt.Errorf("%w", err)
	}
	if len(samples) == 0 {
		return nil
	}

	buf := make([]byte, min(len(samples), chunkSize)*4)
	for i := 0; i < len(samples); i += chunkSize {
		chunk := samples[i:min(i+chunkSize, len(samples))]
		buf = buf[:len(chunk)*4]

		for j, s := range chunk {
			s = max(-1, min(1, s))
			binary.LittleEndian.PutUint32(buf[j*4:], math.Float32bits(s))
		}

		if _, err := w.Write(buf); err != nil {
			return fmt.Errorf("%w", err)
		}
	}

	return nil
}

// maxDataSize is the largest data chunk whose RIFF size still fits in 32 bits.
const maxDataSize = math.MaxUint32 - (headerSize - 8)

func checkLayout(sampleRate, channels, samples, bytesPerSample int) error {
	if sampleRate <= 0 {
		return fmt.Errorf("%w: sample rate %d", audio.ErrInvalidPCMBuffer, sampleRate)
	}
	if channels < 1 || channels*bytesPerSample > math.MaxUint16 {
		return fmt.Errorf("%w: %d channels", audio.ErrInvalidPCMBuffer, channels)
	}
	if samples%channels != 0 {
		return fmt.Errorf("%w: %d samples for %d channels", audio.ErrInvalidDstSize, samples, channels)
	}
	if uint64(samples)*uint64(bytesPerSample) > maxDataSize {
		return fmt.Errorf("%w: %d samples of %d bytes", ErrTooLarge, samples, bytesPerSample)
	}
	if uint64(sampleRate)*uint64(channels*bytesPerSample) > math.MaxUint32 {
		return fmt.Errorf("%w: byte rate of %d Hz x %d channels", ErrTooLarge, sampleRate, channels)
	}

	return nil
}

// makeHeader builds the RIFF, fmt and data chunk headers.
func makeHeader(audioFormat uint16, sampleRate, channels, bitsPerSample int, dataSize uint32) []byte {
	blockAlign := uint16(channels * bitsPerSample / 8)
	byteRate := uint32(sampleRate) * uint32(blockAlign)

	header := make([]byte, headerSize)

	copy(header[0:4], "RIFF")
	binary.LittleEndian.PutUint32(header[4:8], 36+dataSize)
	copy(header[8:12], "WAVE")

	copy(header[12:16], "fmt ")
	binary.LittleEndian.PutUint32(header[16:20], 16)
	binary.LittleEndian.PutUint16(header[20:22], audioFormat)
	binary.LittleEndian.PutUint16(header[22:24], uint16(channels))
	binary.LittleEndian.PutUint32(header[24:28], uint32(sampleRate))
	binary.LittleEndian.PutUint32(header[28:32], byteRate)
	binary.LittleEndian.PutUint16(header[32:34], blockAlign)
	binary.LittleEndian.PutUint16(header[34:36], uint16(bitsPerSample))

	copy(header[36:40], "data")
	binary.LittleEndian.PutUint32(header[40:44], dataSize)

	return header
}
