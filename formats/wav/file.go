// SPDX-License-Identifier: EPL-2.0

package wav

const (
	// FileName is the logical name every converted recording is uploaded under.
	FileName = "recording.wav"
	// MediaType labels WAV payloads.
	MediaType = "audio/wav"
)

// File is an encoded WAV container ready for upload.
type File struct {
	Name      string
	MediaType string
	Data      []byte
}

// NewFile wraps encoded WAV bytes under the fixed recording name.
func NewFile(data []byte) *File {
	return &File{
		Name:      FileName,
		MediaType: MediaType,
		Data:      data,
	}
}

func (f *File) Size() int { return len(f.Data) }
