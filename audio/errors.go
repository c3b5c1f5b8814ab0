// SPDX-License-Identifier: EPL-2.0

package audio

import "errors"

var (
	ErrInvalidDstSize   = errors.New("dst size must be multiple of channels")
	ErrInvalidPCMBuffer = errors.New("invalid PCM buffer")
	ErrInvalidRate      = errors.New("sample rate must be positive")
	ErrEmptyAudio       = errors.New("audio contains no samples")
)
