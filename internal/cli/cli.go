// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"time"

	"github.com/xmyshaw/mandarin-pitch-detector/analysis"
	"github.com/xmyshaw/mandarin-pitch-detector/capture"
	"github.com/xmyshaw/mandarin-pitch-detector/convert"
	"github.com/xmyshaw/mandarin-pitch-detector/formats"
	"github.com/xmyshaw/mandarin-pitch-detector/internal/config"
	"github.com/xmyshaw/mandarin-pitch-detector/internal/metrics"
	"github.com/xmyshaw/mandarin-pitch-detector/lifecycle"
)

const usage = `usage: tonerec [-config file] <command> [flags]

commands:
  record       record from the microphone, then analyse
  analyze      analyse an existing audio file
  interactive  record and analyse from keyboard commands
`

// Env is everything a run touches outside the process.
type Env struct {
	Args   []string
	Stdin  io.Reader
	Stdout io.Writer
	Stderr io.Writer
	// NewDevice opens the capture device. Required by record and interactive.
	NewDevice func(cfg config.CaptureConfig) capture.Device
}

// app is one configured run.
type app struct {
	env     Env
	cfg     *config.Config
	log     *slog.Logger
	metrics *metrics.Metrics
	conv    *convert.Converter
	client  *analysis.Client
}

// Run executes the command line in env.Args and returns the exit code.
func Run(ctx context.Context, env Env) int {
	fs := flag.NewFlagSet("tonerec", flag.ContinueOnError)
	fs.SetOutput(env.Stderr)
	fs.Usage = func() { fmt.Fprint(env.Stderr, usage) }
	configPath := fs.String("config", "", "Path to configuration file")

	if err := fs.Parse(env.Args); err != nil {
		return 2
	}
	if fs.NArg() == 0 {
		fs.Usage()
		return 2
	}

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(env.Stderr, "Failed to load configuration: %v\n", err)
		return 1
	}

	a, err := newApp(env, cfg)
	if err != nil {
		fmt.Fprintf(env.Stderr, "%v\n", err)
		return 1
	}

	stopMetrics := a.serveMetrics()
	defer stopMetrics()

	cmd, args := fs.Arg(0), fs.Args()[1:]
	switch cmd {
	case "record":
		err = a.record(ctx, args)
	case "analyze":
		err = a.analyze(ctx, args)
	case "interactive":
		err = a.interactive(ctx)
	default:
		fmt.Fprintf(env.Stderr, "unknown command %q\n", cmd)
		fs.Usage()
		return 2
	}

	var usageErr *usageError
	switch {
	case err == nil:
		return 0
	case errors.As(err, &usageErr):
		return 2
	default:
		a.log.Debug("command failed", slog.String("command", cmd), slog.String("error", err.Error()))
		return 1
	}
}

type usageError struct{ err error }

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func newApp(env Env, cfg *config.Config) (*app, error) {
	logger := cfg.Logging.NewLogger(env.Stdout, env.Stderr)

	logger.Debug("configuration loaded",
		slog.String("endpoint", cfg.Analysis.Endpoint),
		slog.Int("capture_sample_rate", cfg.Capture.SampleRate),
		slog.Int("convert_sample_rate", cfg.Convert.SampleRate),
		slog.Bool("mono", cfg.Convert.Mono),
		slog.String("encoding", cfg.Convert.Encoding))

	m := metrics.New()

	client, err := analysis.NewClient(analysis.Config{
		BaseURL: cfg.Analysis.Endpoint,
		Path:    cfg.Analysis.Path,
		Timeout: cfg.Analysis.TimeoutDuration(),
	}, analysis.WithLogger(logger.With(slog.String("component", "analysis"))))
	if err != nil {
		return nil, fmt.Errorf("creating analysis client: %w", err)
	}

	conv := convert.New(formats.NewRegistry(), convert.Options{
		SampleRate: cfg.Convert.SampleRate,
		Mono:       cfg.Convert.Mono,
		Encoding:   cfg.Convert.WAVEncoding(),
	}, logger.With(slog.String("component", "convert"))).WithObserver(m)

	return &app{
		env:     env,
		cfg:     cfg,
		log:     logger,
		metrics: m,
		conv:    conv,
		client:  client,
	}, nil
}

// controller builds a lifecycle controller around rec.
func (a *app) controller(rec lifecycle.Recorder) *lifecycle.Controller {
	return lifecycle.New(rec, a.conv, a.client,
		lifecycle.WithLogger(a.log.With(slog.String("component", "lifecycle"))),
		lifecycle.WithObserver(a.metrics))
}

func (a *app) session() (*capture.Session, error) {
	if a.env.NewDevice == nil {
		return nil, errors.New("no capture device available")
	}

	dev := a.env.NewDevice(a.cfg.Capture)

	return capture.NewSession(dev,
		capture.WithLogger(a.log.With(slog.String("component", "capture"))),
		capture.WithReadFrames(a.cfg.Capture.FramesPerBuffer)), nil
}

// serveMetrics starts the Prometheus listener if configured and returns a
// function that shuts it down.
func (a *app) serveMetrics() func() {
	addr := a.cfg.Metrics.Listen
	if addr == "" {
		return func() {}
	}

	ln, err := net.Listen("tcp", addr)
	if err != nil {
		a.log.Warn("metrics listener disabled", slog.String("listen", addr), slog.String("error", err.Error()))
		return func() {}
	}

	mux := http.NewServeMux()
	mux.Handle("/metrics", a.metrics.Handler())
	srv := &http.Server{Handler: mux, ReadHeaderTimeout: 5 * time.Second}

	go func() {
		if err := srv.Serve(ln); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.log.Error("metrics server failed", slog.String("error", err.Error()))
		}
	}()
	a.log.Info("serving metrics", slog.String("address", ln.Addr().String()))

	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := srv.Shutdown(ctx); err != nil {
			a.log.Warn("stopping metrics server", slog.String("error", err.Error()))
		}
	}
}
