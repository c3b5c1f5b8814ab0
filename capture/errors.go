// SPDX-License-Identifier: EPL-2.0

package capture

import "errors"

var (
	ErrAlreadyRecording = errors.New("already recording")
	ErrNotRecording     = errors.New("not recording")
	ErrInvalidDevice    = errors.New("invalid capture device")
)
