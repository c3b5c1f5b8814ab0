// SPDX-License-Identifier: EPL-2.0

package view

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"slices"
	"strings"

	"github.com/xmyshaw/mandarin-pitch-detector/analysis"
	"github.com/xmyshaw/mandarin-pitch-detector/lifecycle"
)

var (
	ErrNoPlot  = errors.New("result carries no plot image")
	ErrNotPNG  = errors.New("plot image is not a PNG")
	ErrNoState = errors.New("nothing to render")
)

// Render writes a text view of s: the available controls, the recording
// indicator, progress or error line and the result card.
func Render(w io.Writer, s lifecycle.State) error {
	bw := bufio.NewWriter(w)

	bw.WriteString(controls(s))
	bw.WriteByte('\n')

	switch s.Phase {
	case lifecycle.Recording:
		bw.WriteString("● Recording...\n")
	case lifecycle.Analyzing:
		bw.WriteString("Analyzing...\n")
	case lifecycle.Failed:
		fmt.Fprintf(bw, "Error: %s\n", s.Message)
	}

	if s.Blob != nil && s.Phase != lifecycle.Recording {
		fmt.Fprintf(bw, "Recording: %s, %s\n", humanBytes(s.Blob.Size()), s.Blob.MediaType)
	}

	if s.Phase == lifecycle.Succeeded && s.Result != nil {
		renderResult(bw, s.Result)
	}

	return bw.Flush()
}

func controls(s lifecycle.State) string {
	items := []string{"[r] Start Recording"}
	if s.Phase == lifecycle.Recording {
		items[0] = "[s] Stop Recording"
	}
	if s.CanAnalyze() {
		items = append(items, "[a] Analyze Pitch")
	}
	items = append(items, "[q] Quit")

	return strings.Join(items, "  ")
}

func renderResult(w *bufio.Writer, r *analysis.Result) {
	dipping := "No"
	if r.IsDipping {
		dipping = "Yes"
	}

	w.WriteString("Analysis Result\n")
	fmt.Fprintf(w, "  Tone:    %s\n", r.Tone)
	fmt.Fprintf(w, "  Slope:   %s\n", r.FormatSlope())
	fmt.Fprintf(w, "  Dipping: %s\n", dipping)
	if len(r.PitchContour) > 0 {
		fmt.Fprintf(w, "  Contour: %s\n", Sparkline(r.PitchContour, 48))
	}
}

var bars = []rune("▁▂▃▄▅▆▇█")

// Sparkline draws values as a row of block characters, resampled to at most
// width cells. NaN values are drawn as spaces.
func Sparkline(values []float64, width int) string {
	if len(values) == 0 || width <= 0 {
		return ""
	}

	cells := min(width, len(values))
	picked := make([]float64, cells)
	for i := range cells {
		picked[i] = values[i*len(values)/cells]
	}

	finite := slices.DeleteFunc(slices.Clone(picked), func(v float64) bool { return v != v })
	if len(finite) == 0 {
		return strings.Repeat(" ", cells)
	}
	lo, hi := slices.Min(finite), slices.Max(finite)

	var sb strings.Builder
	for _, v := range picked {
		switch {
		case v != v:
			sb.WriteRune(' ')
		case hi == lo:
			sb.WriteRune(bars[len(bars)/2])
		default:
			idx := int((v - lo) / (hi - lo) * float64(len(bars)-1))
			sb.WriteRune(bars[idx])
		}
	}

	return sb.String()
}

func humanBytes(n int) string {
	switch {
	case n >= 1<<20:
		return fmt.Sprintf("%.1f MiB", float64(n)/(1<<20))
	case n >= 1<<10:
		return fmt.Sprintf("%.1f KiB", float64(n)/(1<<10))
	default:
		return fmt.Sprintf("%d B", n)
	}
}

// SavePlot writes the result's plot to path after checking it decodes as a
// PNG, and returns its dimensions.
func SavePlot(path string, r *analysis.Result) (image.Config, error) {
	if r == nil {
		return image.Config{}, ErrNoState
	}

	data, err := r.Plot()
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %w", ErrNotPNG, err)
	}
	if len(data) == 0 {
		return image.Config{}, ErrNoPlot
	}

	cfg, err := png.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return image.Config{}, fmt.Errorf("%w: %w", ErrNotPNG, err)
	}

	if err := os.WriteFile(path, data, 0o644); err != nil {
		return image.Config{}, fmt.Errorf("writing plot: %w", err)
	}

	return cfg, nil
}
