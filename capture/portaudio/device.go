// SPDX-License-Identifier: EPL-2.0

// Package portaudio captures from the default system input through
// github.com/gordonklaus/portaudio. It needs cgo and the PortAudio library,
// which is why it lives apart from the capture package.
package portaudio

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

var ErrNotStarted = errors.New("portaudio device not started")

// Device is a blocking 16-bit input stream on the default input device.
type Device struct {
	sampleRate int
	channels   int
	frames     int

	stream *portaudio.Stream
	buf    []int16
}

// New returns a device; nothing is opened until Start.
func New(sampleRate, channels, framesPerBuffer int) *Device {
	return &Device{
		sampleRate: sampleRate,
		channels:   channels,
		frames:     framesPerBuffer,
	}
}

func (d *Device) SampleRate() int { return d.sampleRate }
func (d *Device) Channels() int   { return d.channels }

func (d *Device) Start() error {
	if err := portaudio.Initialize(); err != nil {
		return fmt.Errorf("initialising portaudio: %w", err)
	}

	d.buf = make([]int16, d.frames*d.channels)

	stream, err := portaudio.OpenDefaultStream(d.channels, 0, float64(d.sampleRate), d.frames, d.buf)
	if err != nil {
		portaudio.Terminate()
		return fmt.Errorf("opening input stream: %w", err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		portaudio.Terminate()
		return fmt.Errorf("starting input stream: %w", err)
	}

	d.stream = stream

	return nil
}

// Read blocks until one buffer of frames has been captured.
func (d *Device) Read(dst []int16) (int, error) {
	if d.stream == nil {
		return 0, ErrNotStarted
	}

	// an overflow only means samples were dropped; the buffer is still valid
	if err := d.stream.Read(); err != nil && !errors.Is(err, portaudio.InputOverflowed) {
		return 0, fmt.Errorf("reading input stream: %w", err)
	}

	return copy(dst, d.buf), nil
}

func (d *Device) Stop() error {
	if d.stream == nil {
		return nil
	}

	var err error
	if stopErr := d.stream.Stop(); stopErr != nil {
		err = stopErr
	}
	if closeErr := d.stream.Close(); closeErr != nil && err == nil {
		err = closeErr
	}
	d.stream = nil

	if termErr := portaudio.Terminate(); termErr != nil && err == nil {
		err = termErr
	}

	if err != nil {
		return fmt.Errorf("%w", err)
	}

	return nil
}
