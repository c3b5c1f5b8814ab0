// SPDX-License-Identifier: EPL-2.0

// Command tonerec records a Mandarin syllable from the microphone, sends it
// to a pitch-tone analysis service and prints the detected tone.
package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/xmyshaw/mandarin-pitch-detector/capture"
	"github.com/xmyshaw/mandarin-pitch-detector/capture/portaudio"
	"github.com/xmyshaw/mandarin-pitch-detector/internal/cli"
	"github.com/xmyshaw/mandarin-pitch-detector/internal/config"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	code := cli.Run(ctx, cli.Env{
		Args:   os.Args[1:],
		Stdin:  os.Stdin,
		Stdout: os.Stdout,
		Stderr: os.Stderr,
		NewDevice: func(c config.CaptureConfig) capture.Device {
			return portaudio.New(c.SampleRate, c.Channels, c.FramesPerBuffer)
		},
	})

	stop()
	os.Exit(code)
}
