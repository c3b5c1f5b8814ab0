// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"time"

	"github.com/google/uuid"
)

// Blob is one finished recording. It is never modified after creation; each
// recording gets a fresh ID.
type Blob struct {
	ID         uuid.UUID
	Data       []byte
	MediaType  string
	CapturedAt time.Time
}

// NewBlob wraps bytes obtained elsewhere, e.g. an audio file on disk.
func NewBlob(data []byte, mediaType string) *Blob {
	return &Blob{
		ID:         uuid.New(),
		Data:       data,
		MediaType:  mediaType,
		CapturedAt: time.Now(),
	}
}

func (b *Blob) Size() int { return len(b.Data) }
