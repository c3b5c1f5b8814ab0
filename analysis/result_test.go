// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"encoding/base64"
	"testing"
)

func TestResult_FormatSlope(t *testing.T) {
	t.Parallel()

	tests := []struct {
		slope float64
		want  string
	}{
		{12.5, "12.5000"},
		{0, "0.0000"},
		{-0.05, "-0.0500"},
		{0.123456, "0.1235"},
	}

	for _, tt := range tests {
		r := &Result{Slope: tt.slope}
		if got := r.FormatSlope(); got != tt.want {
			t.Errorf("FormatSlope(%v) = %q, want %q", tt.slope, got, tt.want)
		}
	}
}

func TestResult_Plot(t *testing.T) {
	t.Parallel()

	raw := []byte{0x89, 'P', 'N', 'G', 1, 2, 3}
	std := base64.StdEncoding.EncodeToString(raw)

	tests := []struct {
		name  string
		image string
		want  []byte
	}{
		{name: "padded", image: std, want: raw},
		{name: "unpadded", image: base64.RawStdEncoding.EncodeToString(raw), want: raw},
		{name: "wrapped", image: std[:4] + "\n" + std[4:], want: raw},
		{name: "data url", image: "data:image/png;base64," + std, want: raw},
		{name: "empty", image: "", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := (&Result{PlotImage: tt.image}).Plot()
			if err != nil {
				t.Fatalf("Plot() error = %v", err)
			}
			if string(got) != string(tt.want) {
				t.Errorf("Plot() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestTone_Known(t *testing.T) {
	t.Parallel()

	for _, tone := range []Tone{ToneLevel, ToneRising, ToneDipping, ToneFalling} {
		if !tone.Known() {
			t.Errorf("%q.Known() = false", tone)
		}
	}
	for _, tone := range []Tone{ToneUnknown, "Tone 5 (Neutral)", ""} {
		if tone.Known() {
			t.Errorf("%q.Known() = true", tone)
		}
	}
}

func TestParseResult_IgnoresUnknownFields(t *testing.T) {
	t.Parallel()

	r, err := parseResult([]byte(`{"tone":"Tone 3 (Dipping)","slope":-0.01,"is_dipping":true,"plot_image":"","extra":{"x":1}}`))
	if err != nil {
		t.Fatalf("parseResult() error = %v", err)
	}
	if r.Tone != ToneDipping || !r.IsDipping {
		t.Errorf("parseResult() = %+v", r)
	}
}
