// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"encoding/base64"
	"encoding/json"
	"fmt"
	"strings"
)

// Tone is the label the service assigns to a syllable.
type Tone string

const (
	ToneLevel   Tone = "Tone 1 (Level)"
	ToneRising  Tone = "Tone 2 (Rising)"
	ToneDipping Tone = "Tone 3 (Dipping)"
	ToneFalling Tone = "Tone 4 (Falling)"
	ToneUnknown Tone = "Unknown"
)

// Known reports whether t is one of the labels above other than ToneUnknown.
func (t Tone) Known() bool {
	switch t {
	case ToneLevel, ToneRising, ToneDipping, ToneFalling:
		return true
	}
	return false
}

// Result is a successful analysis.
type Result struct {
	Tone      Tone
	Slope     float64
	IsDipping bool
	// PlotImage is the base64 PNG exactly as the service sent it.
	PlotImage string
	// PitchContour is the per-frame pitch in semitones relative to the mean.
	// Empty when the service omits it.
	PitchContour []float64
}

// FormatSlope renders the slope with four decimals.
func (r *Result) FormatSlope() string {
	return fmt.Sprintf("%.4f", r.Slope)
}

// Plot returns the decoded PNG bytes, or nil when no plot was sent.
func (r *Result) Plot() ([]byte, error) {
	return decodeBase64(r.PlotImage)
}

// decodeBase64 accepts padded and unpadded standard encoding, ignoring line
// breaks and an optional data URL prefix.
func decodeBase64(s string) ([]byte, error) {
	if i := strings.Index(s, ";base64,"); i >= 0 && strings.HasPrefix(s, "data:") {
		s = s[i+len(";base64,"):]
	}
	s = strings.Map(func(r rune) rune {
		switch r {
		case '\n', '\r', ' ', '\t':
			return -1
		}
		return r
	}, s)
	if s == "" {
		return nil, nil
	}

	if b, err := base64.StdEncoding.DecodeString(s); err == nil {
		return b, nil
	}
	b, err := base64.RawStdEncoding.DecodeString(strings.TrimRight(s, "="))
	if err != nil {
		return nil, fmt.Errorf("decoding plot image: %w", err)
	}

	return b, nil
}

// wireResult mirrors the JSON body. Pointers tell a missing field apart from
// its zero value.
type wireResult struct {
	Tone         *string   `json:"tone"`
	Slope        *float64  `json:"slope"`
	IsDipping    *bool     `json:"is_dipping"`
	PlotImage    *string   `json:"plot_image"`
	PitchContour []float64 `json:"pitch_contour"`
}

// parseResult validates body against the result shape. Unknown fields are
// ignored.
func parseResult(body []byte) (*Result, error) {
	var w wireResult
	if err := json.Unmarshal(body, &w); err != nil {
		return nil, &MalformedResponseError{Reason: "decoding body", Err: err}
	}

	var missing []string
	if w.Tone == nil {
		missing = append(missing, "tone")
	}
	if w.Slope == nil {
		missing = append(missing, "slope")
	}
	if w.IsDipping == nil {
		missing = append(missing, "is_dipping")
	}
	if w.PlotImage == nil {
		missing = append(missing, "plot_image")
	}
	if len(missing) > 0 {
		return nil, &MalformedResponseError{Reason: "missing " + strings.Join(missing, ", ")}
	}

	r := &Result{
		Tone:         Tone(*w.Tone),
		Slope:        *w.Slope,
		IsDipping:    *w.IsDipping,
		PlotImage:    *w.PlotImage,
		PitchContour: w.PitchContour,
	}

	return r, nil
}
