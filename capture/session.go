// SPDX-License-Identifier: EPL-2.0

package capture

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/xmyshaw/mandarin-pitch-detector/formats/wav"
)

// Device is a blocking PCM input such as a microphone.
type Device interface {
	SampleRate() int
	Channels() int
	Start() error
	// Read fills dst with interleaved samples and blocks until data is
	// available. io.EOF means the device has nothing more to give.
	Read(dst []int16) (int, error)
	Stop() error
}

const defaultReadFrames = 1024

// Option configures a Session.
type Option func(*Session)

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) { s.log = l }
}

// WithReadFrames sets how many frames are requested per device read.
func WithReadFrames(n int) Option {
	return func(s *Session) {
		if n > 0 {
			s.readFrames = n
		}
	}
}

// Session records from a Device and turns the capture into a WAV Blob.
type Session struct {
	dev        Device
	log        *slog.Logger
	readFrames int

	mu      sync.Mutex
	status  Status
	blob    *Blob
	started time.Time
	stop    chan struct{}
	done    chan struct{}

	// written by the pump goroutine, read after done is closed
	captured []int16
	pumpErr  error
}

func NewSession(dev Device, opts ...Option) *Session {
	s := &Session{
		dev:        dev,
		log:        slog.New(slog.DiscardHandler),
		readFrames: defaultReadFrames,
	}
	for _, opt := range opts {
		opt(s)
	}

	return s
}

func (s *Session) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.status
}

// Blob returns the last finished recording, or nil.
func (s *Session) Blob() *Blob {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.blob
}

// Start begins capturing. The previous blob, if any, is discarded.
func (s *Session) Start(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status == StatusRecording {
		return ErrAlreadyRecording
	}
	if s.dev.SampleRate() <= 0 || s.dev.Channels() < 1 {
		return fmt.Errorf("%w: %d Hz, %d channels", ErrInvalidDevice, s.dev.SampleRate(), s.dev.Channels())
	}

	if err := s.dev.Start(); err != nil {
		return fmt.Errorf("starting capture device: %w", err)
	}

	s.status = StatusRecording
	s.blob = nil
	s.started = time.Now()
	s.captured = nil
	s.pumpErr = nil
	s.stop = make(chan struct{})
	s.done = make(chan struct{})

	go s.pump(ctx, s.stop, s.done)

	s.log.Info("recording started",
		slog.Int("sample_rate", s.dev.SampleRate()),
		slog.Int("channels", s.dev.Channels()))

	return nil
}

func (s *Session) pump(ctx context.Context, stop <-chan struct{}, done chan<- struct{}) {
	defer close(done)

	channels := s.dev.Channels()
	buf := make([]int16, s.readFrames*channels)
	var pcm []int16

	defer func() { s.captured = pcm }()

	for {
		// cancellation wins over a concurrent Stop
		if err := ctx.Err(); err != nil {
			s.pumpErr = err
			return
		}
		select {
		case <-stop:
			return
		default:
		}

		n, err := s.dev.Read(buf)
		if n > 0 {
			pcm = append(pcm, buf[:n]...)
		}
		if errors.Is(err, io.EOF) {
			// device drained; keep what we have until Stop
			return
		}
		if err != nil {
			s.pumpErr = err
			return
		}
	}
}

// Stop ends the capture and returns the finished recording as a WAV blob.
func (s *Session) Stop() (*Blob, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusRecording {
		return nil, ErrNotRecording
	}

	close(s.stop)
	<-s.done
	s.status = StatusStopped

	if err := s.dev.Stop(); err != nil {
		s.log.Warn("stopping capture device", slog.String("error", err.Error()))
	}

	channels := s.dev.Channels()
	pcm := s.captured[:len(s.captured)-len(s.captured)%channels]

	if s.pumpErr != nil {
		s.log.Warn("capture interrupted",
			slog.String("error", s.pumpErr.Error()),
			slog.Int("samples", len(pcm)))
		if len(pcm) == 0 {
			return nil, fmt.Errorf("capture interrupted: %w", s.pumpErr)
		}
	}

	data := new(bytes.Buffer)
	if err := wav.WriteWAV16(data, s.dev.SampleRate(), channels, pcm); err != nil {
		return nil, fmt.Errorf("finalising recording: %w", err)
	}

	s.blob = &Blob{
		ID:         uuid.New(),
		Data:       data.Bytes(),
		MediaType:  wav.MediaType,
		CapturedAt: s.started,
	}

	s.log.Info("recording stopped",
		slog.String("blob", s.blob.ID.String()),
		slog.Int("frames", len(pcm)/channels),
		slog.Duration("elapsed", time.Since(s.started)))

	return s.blob, nil
}
