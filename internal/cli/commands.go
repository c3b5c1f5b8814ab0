// SPDX-License-Identifier: EPL-2.0

package cli

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	pitchdetector "github.com/xmyshaw/mandarin-pitch-detector"
	"github.com/xmyshaw/mandarin-pitch-detector/capture"
	"github.com/xmyshaw/mandarin-pitch-detector/internal/view"
	"github.com/xmyshaw/mandarin-pitch-detector/lifecycle"
)

// outputFlags are shared by record and analyze.
type outputFlags struct {
	plot string
	wav  string
}

func (a *app) outputFlagSet(name string) (*flag.FlagSet, *outputFlags) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(a.env.Stderr)

	out := &outputFlags{}
	fs.StringVar(&out.plot, "plot", a.cfg.Output.PlotPath, "Where to save the pitch plot (empty to skip)")
	fs.StringVar(&out.wav, "wav", a.cfg.Output.WAVPath, "Where to save the converted WAV (empty to skip)")

	return fs, out
}

func (a *app) analyze(ctx context.Context, args []string) error {
	fs, out := a.outputFlagSet("analyze")
	if err := fs.Parse(args); err != nil {
		return &usageError{err}
	}
	if fs.NArg() != 1 {
		fmt.Fprintln(a.env.Stderr, "usage: tonerec analyze [-plot file] [-wav file] <audio file>")
		return &usageError{errors.New("analyze needs exactly one file")}
	}

	blob, err := pitchdetector.LoadBlob(fs.Arg(0))
	if err != nil {
		fmt.Fprintln(a.env.Stderr, err)
		return err
	}

	ctrl := a.controller(nil)
	if err := ctrl.LoadBlob(blob); err != nil {
		return err
	}

	return a.runAnalysis(ctx, ctrl, out)
}

func (a *app) record(ctx context.Context, args []string) error {
	fs, out := a.outputFlagSet("record")
	duration := fs.Duration("duration", 0, "Stop after this long (default: when Enter is pressed)")
	if err := fs.Parse(args); err != nil {
		return &usageError{err}
	}

	sess, err := a.session()
	if err != nil {
		fmt.Fprintln(a.env.Stderr, err)
		return err
	}

	ctrl := a.controller(sess)
	if err := ctrl.StartRecording(ctx); err != nil {
		fmt.Fprintln(a.env.Stderr, lifecycle.Message(err), "-", err)
		return err
	}

	if *duration > 0 {
		fmt.Fprintf(a.env.Stdout, "Recording for %v...\n", *duration)
		select {
		case <-time.After(*duration):
		case <-ctx.Done():
		}
	} else {
		fmt.Fprintln(a.env.Stdout, "Recording... press Enter to stop.")
		waitLine(ctx, a.env.Stdin)
	}

	if err := ctrl.StopRecording(); err != nil {
		fmt.Fprintln(a.env.Stderr, ctrl.State().Message)
		return err
	}

	return a.runAnalysis(ctx, ctrl, out)
}

// runAnalysis analyses the controller's current recording, prints the
// outcome and writes the requested artefacts.
func (a *app) runAnalysis(ctx context.Context, ctrl *lifecycle.Controller, out *outputFlags) error {
	fmt.Fprintln(a.env.Stdout, "Analyzing...")

	err := ctrl.Analyze(ctx)
	state := ctrl.State()

	if rerr := view.Render(a.env.Stdout, state); rerr != nil {
		return rerr
	}
	if err != nil {
		return err
	}

	a.saveArtefacts(state, out)

	return nil
}

func (a *app) saveArtefacts(s lifecycle.State, out *outputFlags) {
	if out.plot != "" && s.Result != nil {
		cfg, err := view.SavePlot(out.plot, s.Result)
		switch {
		case errors.Is(err, view.ErrNoPlot):
		case err != nil:
			a.log.Warn("could not save plot", slog.String("path", out.plot), slog.String("error", err.Error()))
		default:
			fmt.Fprintf(a.env.Stdout, "Plot saved to %s (%dx%d)\n", out.plot, cfg.Width, cfg.Height)
		}
	}

	// the WAV that was submitted, not a fresh conversion
	if out.wav != "" && s.File != nil {
		if err := os.WriteFile(out.wav, s.File.Data, 0o644); err != nil {
			a.log.Warn("could not save recording", slog.String("path", out.wav), slog.String("error", err.Error()))
			return
		}
		fmt.Fprintf(a.env.Stdout, "Recording saved to %s\n", out.wav)
	}
}

func (a *app) interactive(ctx context.Context) error {
	sess, err := a.session()
	if err != nil {
		fmt.Fprintln(a.env.Stderr, err)
		return err
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	ctrl := a.controller(sess)

	var mu sync.Mutex // serialises terminal output
	draw := func(s lifecycle.State) {
		mu.Lock()
		defer mu.Unlock()
		fmt.Fprintln(a.env.Stdout)
		if err := view.Render(a.env.Stdout, s); err != nil {
			a.log.Warn("could not render state", slog.String("phase", s.Phase.String()), slog.String("error", err.Error()))
		}
	}
	defer ctrl.Subscribe(draw)()
	draw(ctrl.State())

	var wg sync.WaitGroup
	defer wg.Wait()

	out := &outputFlags{plot: a.cfg.Output.PlotPath, wav: a.cfg.Output.WAVPath}

	lines := commands(ctx, a.env.Stdin)
loop:
	for {
		var cmd string
		select {
		case <-ctx.Done():
			break loop
		case line, ok := <-lines:
			if !ok {
				break loop
			}
			cmd = line
		}

		switch cmd {
		case "r":
			if err := ctrl.StartRecording(ctx); err != nil {
				a.log.Info("start ignored", slog.String("reason", err.Error()))
			}
		case "s":
			if err := ctrl.StopRecording(); err != nil {
				a.log.Info("stop ignored", slog.String("reason", err.Error()))
			}
		case "a":
			if !ctrl.State().CanAnalyze() {
				a.log.Info("analyze ignored", slog.String("phase", ctrl.State().Phase.String()))
				continue
			}
			wg.Go(func() {
				if err := ctrl.Analyze(ctx); err == nil {
					a.saveArtefacts(ctrl.State(), out)
				}
			})
		case "q":
			cancel()
		default:
			a.log.Info("unknown key", slog.String("key", cmd))
		}
	}

	if ctrl.State().Phase == lifecycle.Recording {
		if err := ctrl.StopRecording(); err != nil {
			a.log.Warn("stopping recording on exit", slog.String("error", err.Error()))
		}
	}

	return nil
}

// commands yields trimmed, lower-cased input lines. The channel is closed
// at EOF; a reader blocked on r is abandoned once ctx ends.
func commands(ctx context.Context, r io.Reader) <-chan string {
	ch := make(chan string)

	go func() {
		defer close(ch)
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			line := strings.ToLower(strings.TrimSpace(sc.Text()))
			if line == "" {
				continue
			}
			select {
			case ch <- line:
			case <-ctx.Done():
				return
			}
		}
	}()

	return ch
}

// waitLine returns after one line was read from r, at EOF or when ctx ends.
func waitLine(ctx context.Context, r io.Reader) {
	done := make(chan struct{})
	go func() {
		defer close(done)
		bufio.NewReader(r).ReadString('\n')
	}()

	select {
	case <-done:
	case <-ctx.Done():
	}
}

var _ lifecycle.Recorder = (*capture.Session)(nil)
