// SPDX-License-Identifier: EPL-2.0

package convert

import (
	"errors"
	"fmt"
)

var (
	ErrUnknownFormat     = errors.New("unrecognised audio format")
	ErrUnsupportedFormat = errors.New("no decoder for audio format")
	ErrNoInput           = errors.New("no recording to convert")
)

// DecodeError reports that a recording could not be decoded into PCM.
// Format is the detected container key, empty when detection failed.
type DecodeError struct {
	Format string
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Format == "" {
		return fmt.Sprintf("could not decode recording: %v", e.Err)
	}
	return fmt.Sprintf("could not decode %s recording: %v", e.Format, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }
