// SPDX-License-Identifier: EPL-2.0

package capture

// Status of a recording session.
type Status int

const (
	StatusIdle Status = iota
	StatusRecording
	StatusStopped
)

func (s Status) String() string {
	switch s {
	case StatusIdle:
		return "idle"
	case StatusRecording:
		return "recording"
	case StatusStopped:
		return "stopped"
	default:
		return "unknown"
	}
}
