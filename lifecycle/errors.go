// SPDX-License-Identifier: EPL-2.0

package lifecycle

import (
	"errors"

	"github.com/xmyshaw/mandarin-pitch-detector/analysis"
	"github.com/xmyshaw/mandarin-pitch-detector/convert"
)

// FallbackMessage is shown when a failure carries nothing more specific.
const FallbackMessage = "An error occurred during analysis"

var (
	ErrAlreadyRecording  = errors.New("already recording")
	ErrNotRecording      = errors.New("not recording")
	ErrAnalyzeNotAllowed = errors.New("analysis not allowed in the current state")
	ErrBusy              = errors.New("cannot load a recording while recording or analysing")
	ErrNoBlob            = errors.New("no recording")
	// ErrStaleResult is returned by Analyze when a new recording was started
	// while the request was in flight. The late result is dropped.
	ErrStaleResult = errors.New("analysis result belongs to a superseded recording")
)

// Message turns an analysis failure into the text shown to the user. It is
// never empty.
func Message(err error) string {
	if err == nil {
		return FallbackMessage
	}

	var se *analysis.ServerError
	if errors.As(err, &se) && se.Detail != "" {
		return se.Detail
	}
	var de *convert.DecodeError
	if errors.As(err, &de) {
		return de.Error()
	}

	return FallbackMessage
}
