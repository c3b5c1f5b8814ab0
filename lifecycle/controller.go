// SPDX-License-Identifier: EPL-2.0

package lifecycle

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/xmyshaw/mandarin-pitch-detector/analysis"
	"github.com/xmyshaw/mandarin-pitch-detector/capture"
	"github.com/xmyshaw/mandarin-pitch-detector/convert"
	"github.com/xmyshaw/mandarin-pitch-detector/formats/wav"
)

// Recorder produces recordings. *capture.Session implements it.
type Recorder interface {
	Start(ctx context.Context) error
	Stop() (*capture.Blob, error)
}

// Converter turns a recording into the WAV the service accepts.
// *convert.Converter implements it.
type Converter interface {
	Convert(ctx context.Context, blob *capture.Blob) (*wav.File, error)
}

// Analyzer submits a WAV file. *analysis.Client implements it.
type Analyzer interface {
	Analyze(ctx context.Context, file *wav.File) (*analysis.Result, error)
}

// Outcome labels how an analysis ended.
type Outcome string

const (
	OutcomeSuccess      Outcome = "success"
	OutcomeDecodeError  Outcome = "decode_error"
	OutcomeNetworkError Outcome = "network_error"
	OutcomeServerError  Outcome = "server_error"
	OutcomeMalformed    Outcome = "malformed"
	OutcomeStale        Outcome = "stale"
	OutcomeError        Outcome = "error"
)

// Observer is told about finished recordings and analyses.
type Observer interface {
	RecordingFinished()
	AnalysisFinished(o Outcome, elapsed time.Duration)
}

type Option func(*Controller)

func WithLogger(l *slog.Logger) Option {
	return func(c *Controller) { c.log = l }
}

func WithObserver(o Observer) Option {
	return func(c *Controller) { c.obs = o }
}

// Controller owns the State and is the only thing that changes it.
//
// Subscribers are called one at a time, in transition order, with no
// Controller lock held. A callback may read State or call other methods;
// transitions it causes are delivered after it returns. Delivery can happen
// on the goroutine of an earlier transition.
type Controller struct {
	rec  Recorder
	conv Converter
	an   Analyzer
	log  *slog.Logger
	obs  Observer

	mu    sync.Mutex
	state State
	// seq counts transitions; an analysis only lands if none happened
	// since it entered Analyzing
	seq     uint64
	subs    []subscriber
	nextSub uint64

	pending   []State
	notifying bool
}

type subscriber struct {
	id uint64
	fn func(State)
}

func New(rec Recorder, conv Converter, an Analyzer, opts ...Option) *Controller {
	c := &Controller{
		rec:  rec,
		conv: conv,
		an:   an,
		log:  slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(c)
	}

	return c
}

func (c *Controller) State() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	return c.state
}

// Subscribe registers fn for state changes and returns a function that
// removes it.
func (c *Controller) Subscribe(fn func(State)) (cancel func()) {
	c.mu.Lock()
	id := c.nextSub
	c.nextSub++
	c.subs = append(c.subs, subscriber{id: id, fn: fn})
	c.mu.Unlock()

	return func() {
		c.mu.Lock()
		defer c.mu.Unlock()

		c.subs = slices.DeleteFunc(c.subs, func(s subscriber) bool { return s.id == id })
	}
}

// commit replaces the state and queues it for subscribers. c.mu must be
// held and is released on return. The first committer drains the queue;
// commits made meanwhile only enqueue.
func (c *Controller) commit(s State) {
	c.log.Debug("state changed",
		slog.String("from", c.state.Phase.String()),
		slog.String("to", s.Phase.String()))

	c.state = s
	c.seq++
	c.pending = append(c.pending, s)

	if c.notifying {
		c.mu.Unlock()
		return
	}
	c.notifying = true

	for len(c.pending) > 0 {
		next := c.pending[0]
		c.pending = c.pending[1:]
		subs := slices.Clone(c.subs)
		c.mu.Unlock()

		for _, sub := range subs {
			sub.fn(next)
		}

		c.mu.Lock()
	}

	c.pending = nil
	c.notifying = false
	c.mu.Unlock()
}

// StartRecording begins a new recording from any phase. The previous
// recording, result and message are discarded; an analysis still in flight
// will find its recording gone and drop its result.
func (c *Controller) StartRecording(ctx context.Context) error {
	c.mu.Lock()

	if c.state.Phase == Recording {
		c.mu.Unlock()
		return ErrAlreadyRecording
	}

	if err := c.rec.Start(ctx); err != nil {
		c.log.Error("could not start recording", slog.String("error", err.Error()))
		c.commit(State{Phase: Failed, Message: "Could not start recording: " + err.Error()})
		return fmt.Errorf("starting recording: %w", err)
	}

	if c.state.Phase == Analyzing {
		c.log.Info("recording started during analysis; its result will be discarded",
			slog.String("blob", c.state.Blob.ID.String()))
	}

	c.commit(State{Phase: Recording})

	return nil
}

// StopRecording finishes the current recording and makes it available for
// analysis.
func (c *Controller) StopRecording() error {
	c.mu.Lock()

	if c.state.Phase != Recording {
		c.mu.Unlock()
		return ErrNotRecording
	}

	blob, err := c.rec.Stop()
	if err != nil {
		c.log.Error("recording failed", slog.String("error", err.Error()))
		c.commit(State{Phase: Failed, Message: "Recording failed: " + err.Error()})
		return fmt.Errorf("stopping recording: %w", err)
	}

	if c.obs != nil {
		c.obs.RecordingFinished()
	}
	c.commit(State{Phase: Recorded, Blob: blob})

	return nil
}

// LoadBlob makes an existing recording, such as a file from disk, the
// current one.
func (c *Controller) LoadBlob(blob *capture.Blob) error {
	if blob == nil {
		return ErrNoBlob
	}

	c.mu.Lock()

	if c.state.Phase == Recording || c.state.Phase == Analyzing {
		c.mu.Unlock()
		return ErrBusy
	}

	c.commit(State{Phase: Recorded, Blob: blob})

	return nil
}

// Analyze converts the current recording and submits it. It blocks until
// the service answers and returns the failure that put the controller in
// Failed, if any.
//
// While recording, while another analysis runs, or without a recording it
// returns ErrAnalyzeNotAllowed and changes nothing.
func (c *Controller) Analyze(ctx context.Context) error {
	c.mu.Lock()

	if !c.state.CanAnalyze() {
		phase := c.state.Phase
		c.mu.Unlock()
		c.log.Debug("analyze ignored", slog.String("phase", phase.String()))
		return ErrAnalyzeNotAllowed
	}

	blob := c.state.Blob
	tag := c.seq + 1
	c.commit(State{Phase: Analyzing, Blob: blob})

	log := c.log.With(slog.String("blob", blob.ID.String()))
	log.Info("analysis started", slog.Int("bytes", blob.Size()))

	start := time.Now()
	file, res, err := c.run(ctx, blob)

	return c.finish(log, tag, blob, file, res, err, time.Since(start))
}

func (c *Controller) run(ctx context.Context, blob *capture.Blob) (*wav.File, *analysis.Result, error) {
	file, err := c.conv.Convert(ctx, blob)
	if err != nil {
		return nil, nil, err
	}

	res, err := c.an.Analyze(ctx, file)
	if err == nil && res == nil {
		err = &analysis.MalformedResponseError{Reason: "empty result"}
	}

	return file, res, err
}

func (c *Controller) finish(log *slog.Logger, tag uint64, blob *capture.Blob, file *wav.File, res *analysis.Result, err error, elapsed time.Duration) error {
	c.mu.Lock()

	if c.seq != tag {
		c.mu.Unlock()
		log.Info("discarding stale analysis", slog.Duration("elapsed", elapsed))
		c.observe(OutcomeStale, elapsed)
		return ErrStaleResult
	}

	if err != nil {
		msg := Message(err)
		log.Warn("analysis failed",
			slog.String("error", err.Error()),
			slog.String("message", msg),
			slog.Duration("elapsed", elapsed))
		c.observe(outcomeOf(err), elapsed)
		c.commit(State{Phase: Failed, Blob: blob, Message: msg})
		return err
	}

	log.Info("analysis succeeded",
		slog.String("tone", string(res.Tone)),
		slog.Duration("elapsed", elapsed))
	c.observe(OutcomeSuccess, elapsed)
	c.commit(State{Phase: Succeeded, Blob: blob, File: file, Result: res})

	return nil
}

func (c *Controller) observe(o Outcome, elapsed time.Duration) {
	if c.obs != nil {
		c.obs.AnalysisFinished(o, elapsed)
	}
}

func outcomeOf(err error) Outcome {
	var (
		de *convert.DecodeError
		ne *analysis.NetworkError
		se *analysis.ServerError
		me *analysis.MalformedResponseError
	)

	switch {
	case errors.As(err, &de):
		return OutcomeDecodeError
	case errors.As(err, &ne):
		return OutcomeNetworkError
	case errors.As(err, &se):
		return OutcomeServerError
	case errors.As(err, &me):
		return OutcomeMalformed
	default:
		return OutcomeError
	}
}
