// SPDX-License-Identifier: EPL-2.0

package view

import (
	"bytes"
	"encoding/base64"
	"errors"
	"image"
	"image/color"
	"image/png"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/xmyshaw/mandarin-pitch-detector/analysis"
	"github.com/xmyshaw/mandarin-pitch-detector/capture"
	"github.com/xmyshaw/mandarin-pitch-detector/lifecycle"
)

func render(t *testing.T, s lifecycle.State) string {
	t.Helper()

	var buf bytes.Buffer
	if err := Render(&buf, s); err != nil {
		t.Fatalf("Render() error = %v", err)
	}
	return buf.String()
}

func TestRender(t *testing.T) {
	t.Parallel()

	blob := capture.NewBlob(make([]byte, 88244), "audio/wav")
	result := &analysis.Result{Tone: analysis.ToneRising, Slope: 12.5}

	tests := []struct {
		name    string
		state   lifecycle.State
		want    []string
		notWant []string
	}{
		{
			name:    "idle",
			state:   lifecycle.State{},
			want:    []string{"[r] Start Recording", "[q] Quit"},
			notWant: []string{"Analyze", "Recording..."},
		},
		{
			name:    "recording",
			state:   lifecycle.State{Phase: lifecycle.Recording},
			want:    []string{"[s] Stop Recording", "● Recording..."},
			notWant: []string{"Analyze Pitch"},
		},
		{
			name:  "recorded",
			state: lifecycle.State{Phase: lifecycle.Recorded, Blob: blob},
			want:  []string{"[a] Analyze Pitch", "86.2 KiB, audio/wav"},
		},
		{
			name:    "analyzing",
			state:   lifecycle.State{Phase: lifecycle.Analyzing, Blob: blob},
			want:    []string{"Analyzing..."},
			notWant: []string{"Analyze Pitch", "Error", "Analysis Result"},
		},
		{
			name:  "failed",
			state: lifecycle.State{Phase: lifecycle.Failed, Blob: blob, Message: "invalid audio"},
			want:  []string{"Error: invalid audio", "[a] Analyze Pitch"},
		},
		{
			name:    "succeeded",
			state:   lifecycle.State{Phase: lifecycle.Succeeded, Blob: blob, Result: result},
			want:    []string{"Tone:    Tone 2 (Rising)", "Slope:   12.5000", "Dipping: No"},
			notWant: []string{"Contour"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			out := render(t, tt.state)
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output lacks %q:\n%s", w, out)
				}
			}
			for _, w := range tt.notWant {
				if strings.Contains(out, w) {
					t.Errorf("output contains %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestRender_DippingAndContour(t *testing.T) {
	t.Parallel()

	out := render(t, lifecycle.State{
		Phase: lifecycle.Succeeded,
		Result: &analysis.Result{
			Tone:         analysis.ToneDipping,
			Slope:        -0.01234,
			IsDipping:    true,
			PitchContour: []float64{1, 0, -1, 0, 1},
		},
	})

	for _, w := range []string{"Dipping: Yes", "Slope:   -0.0123", "Contour: █▄▁▄█"} {
		if !strings.Contains(out, w) {
			t.Errorf("output lacks %q:\n%s", w, out)
		}
	}
}

func TestSparkline(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		values []float64
		width  int
		want   string
	}{
		{name: "empty", values: nil, width: 10, want: ""},
		{name: "rising", values: []float64{0, 1, 2, 3, 4, 5, 6, 7}, width: 8, want: "▁▂▃▄▅▆▇█"},
		{name: "flat", values: []float64{2, 2, 2}, width: 8, want: "▅▅▅"},
		{name: "downsampled", values: []float64{0, 0, 7, 7}, width: 2, want: "▁█"},
		{name: "nan gap", values: []float64{0, math.NaN(), 7}, width: 3, want: "▁ █"},
		{name: "all nan", values: []float64{math.NaN(), math.NaN()}, width: 3, want: "  "},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := Sparkline(tt.values, tt.width); got != tt.want {
				t.Errorf("Sparkline() = %q, want %q", got, tt.want)
			}
		})
	}
}

func pngBase64(t *testing.T, w, h int) string {
	t.Helper()

	img := image.NewGray(image.Rect(0, 0, w, h))
	img.Set(1, 1, color.White)

	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	return base64.StdEncoding.EncodeToString(buf.Bytes())
}

func TestSavePlot(t *testing.T) {
	t.Parallel()

	path := filepath.Join(t.TempDir(), "pitch.png")
	r := &analysis.Result{PlotImage: pngBase64(t, 10, 4)}

	cfg, err := SavePlot(path, r)
	if err != nil {
		t.Fatalf("SavePlot() error = %v", err)
	}
	if cfg.Width != 10 || cfg.Height != 4 {
		t.Errorf("SavePlot() = %dx%d, want 10x4", cfg.Width, cfg.Height)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("reading plot: %v", err)
	}
	if _, err := png.Decode(bytes.NewReader(data)); err != nil {
		t.Errorf("saved file is not a PNG: %v", err)
	}
}

func TestSavePlot_Errors(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()

	tests := []struct {
		name    string
		result  *analysis.Result
		wantErr error
	}{
		{name: "nil result", result: nil, wantErr: ErrNoState},
		{name: "no plot", result: &analysis.Result{}, wantErr: ErrNoPlot},
		{name: "not png", result: &analysis.Result{PlotImage: base64.StdEncoding.EncodeToString([]byte("GIF89a"))}, wantErr: ErrNotPNG},
		{name: "not base64", result: &analysis.Result{PlotImage: "iVBOR%%%"}, wantErr: ErrNotPNG},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			path := filepath.Join(dir, tt.name+".png")
			if _, err := SavePlot(path, tt.result); !errors.Is(err, tt.wantErr) {
				t.Errorf("SavePlot() error = %v, want %v", err, tt.wantErr)
			}
			if _, err := os.Stat(path); !errors.Is(err, os.ErrNotExist) {
				t.Errorf("SavePlot() left a file behind")
			}
		})
	}
}
