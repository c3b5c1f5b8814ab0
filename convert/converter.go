// SPDX-License-Identifier: EPL-2.0

package convert

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/xmyshaw/mandarin-pitch-detector/audio"
	"github.com/xmyshaw/mandarin-pitch-detector/capture"
	"github.com/xmyshaw/mandarin-pitch-detector/formats"
	"github.com/xmyshaw/mandarin-pitch-detector/formats/wav"
)

// Options control the shape of the produced WAV. The zero value keeps the
// source rate and channel layout and writes 16-bit PCM.
type Options struct {
	// SampleRate resamples to this rate when positive.
	SampleRate int
	// Mono averages all channels into one.
	Mono     bool
	Encoding wav.Encoding
}

// Observer receives the duration of every successful conversion.
type Observer interface {
	ObserveConversion(d time.Duration)
}

// Converter turns captured blobs into canonical WAV files. It keeps no
// per-call state and is safe for concurrent use.
type Converter struct {
	reg  *audio.Registry
	opts Options
	log  *slog.Logger
	obs  Observer
}

// New returns a Converter using the decoders in reg. A nil reg means every
// decoder this module ships; a nil logger discards output.
func New(reg *audio.Registry, opts Options, logger *slog.Logger) *Converter {
	if reg == nil {
		reg = formats.NewRegistry()
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	return &Converter{reg: reg, opts: opts, log: logger}
}

// WithObserver returns a copy of c that reports conversion timings to obs.
func (c *Converter) WithObserver(obs Observer) *Converter {
	cp := *c
	cp.obs = obs
	return &cp
}

// Convert decodes blob, applies the configured channel and rate changes and
// encodes the result as WAV. Failures before encoding are *DecodeError.
func (c *Converter) Convert(ctx context.Context, blob *capture.Blob) (*wav.File, error) {
	if blob == nil || len(blob.Data) == 0 {
		return nil, &DecodeError{Err: ErrNoInput}
	}

	start := time.Now()

	pcm, format, err := c.decode(ctx, blob)
	if err != nil {
		c.log.Warn("decode failed",
			slog.String("blob", blob.ID.String()),
			slog.String("media_type", blob.MediaType),
			slog.String("error", err.Error()))
		return nil, err
	}

	if c.opts.Mono {
		if pcm, err = audio.Downmix(pcm); err != nil {
			return nil, fmt.Errorf("downmixing: %w", err)
		}
	}
	if c.opts.SampleRate > 0 {
		if pcm, err = audio.Resample(pcm, c.opts.SampleRate); err != nil {
			return nil, fmt.Errorf("resampling: %w", err)
		}
	}

	data, err := wav.EncodeWith(pcm, c.opts.Encoding)
	if err != nil {
		return nil, fmt.Errorf("encoding wav: %w", err)
	}

	elapsed := time.Since(start)
	if c.obs != nil {
		c.obs.ObserveConversion(elapsed)
	}

	c.log.Debug("recording converted",
		slog.String("blob", blob.ID.String()),
		slog.String("format", format),
		slog.Int("sample_rate", pcm.SampleRate),
		slog.Int("channels", pcm.NumChannels()),
		slog.Duration("audio", pcm.Duration()),
		slog.Int("bytes", len(data)),
		slog.Duration("elapsed", elapsed))

	return wav.NewFile(data), nil
}

func (c *Converter) decode(ctx context.Context, blob *capture.Blob) (*audio.PCMBuffer, string, error) {
	head := blob.Data[:min(len(blob.Data), formats.SniffLen)]
	format := formats.Detect(head, blob.MediaType)
	if format == formats.Unknown {
		return nil, "", &DecodeError{Err: fmt.Errorf("%w (media type %q)", ErrUnknownFormat, blob.MediaType)}
	}

	dec, ok := c.reg.Get(format)
	if !ok {
		return nil, format, &DecodeError{Format: format, Err: ErrUnsupportedFormat}
	}

	src, err := dec.Decode(bytes.NewReader(blob.Data))
	if err != nil {
		return nil, format, &DecodeError{Format: format, Err: err}
	}
	defer func() {
		if cerr := src.Close(); cerr != nil {
			c.log.Debug("closing decoder", slog.String("error", cerr.Error()))
		}
	}()

	pcm, err := audio.ReadAll(ctx, src)
	if err != nil {
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, format, err
		}
		return nil, format, &DecodeError{Format: format, Err: err}
	}

	return pcm, format, nil
}
