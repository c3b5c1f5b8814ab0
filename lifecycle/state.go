// SPDX-License-Identifier: EPL-2.0

package lifecycle

import (
	"github.com/xmyshaw/mandarin-pitch-detector/analysis"
	"github.com/xmyshaw/mandarin-pitch-detector/capture"
	"github.com/xmyshaw/mandarin-pitch-detector/formats/wav"
)

// Phase is the position in the record → analyse cycle.
type Phase int

const (
	Idle Phase = iota
	Recording
	Recorded
	Analyzing
	Succeeded
	Failed
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case Recording:
		return "recording"
	case Recorded:
		return "recorded"
	case Analyzing:
		return "analyzing"
	case Succeeded:
		return "succeeded"
	case Failed:
		return "failed"
	default:
		return "unknown"
	}
}

// State is a snapshot of the controller. Result and File are set only in
// Succeeded and Message only in Failed. Blob is the recording the state
// refers to; File is the WAV that was submitted for it.
type State struct {
	Phase   Phase
	Blob    *capture.Blob
	File    *wav.File
	Result  *analysis.Result
	Message string
}

// CanAnalyze reports whether Analyze would be accepted in this state.
func (s State) CanAnalyze() bool {
	return s.Blob != nil && s.Phase != Recording && s.Phase != Analyzing
}
