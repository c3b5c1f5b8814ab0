// SPDX-License-Identifier: EPL-2.0

package audiotest

import (
	"errors"
	"io"
	"sync"
)

// Device is a scripted capture device. It produces totalFrames frames from
// waveform and then reports io.EOF, unless Endless is set.
type Device struct {
	sampleRate  int
	channels    int
	totalFrames int
	waveform    func(frame int, channel int) int16

	// Endless keeps producing frames forever.
	Endless bool
	// StartErr, ReadErr and StopErr are returned by the respective calls.
	StartErr error
	ReadErr  error
	StopErr  error

	mu       sync.Mutex
	produced int
	reads    int
	started  int
	stopped  int
}

// NewSilentDevice returns a device that yields totalFrames frames of zeros.
func NewSilentDevice(sampleRate, channels, totalFrames int) *Device {
	return NewDevice(sampleRate, channels, totalFrames, func(int, int) int16 { return 0 })
}

func NewDevice(sampleRate, channels, totalFrames int, waveform func(frame int, channel int) int16) *Device {
	return &Device{
		sampleRate:  sampleRate,
		channels:    channels,
		totalFrames: totalFrames,
		waveform:    waveform,
	}
}

func (d *Device) SampleRate() int { return d.sampleRate }
func (d *Device) Channels() int   { return d.channels }

func (d *Device) Start() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.StartErr != nil {
		return d.StartErr
	}
	d.started++
	d.produced = 0

	return nil
}

func (d *Device) Read(dst []int16) (int, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.reads++
	if d.ReadErr != nil {
		return 0, d.ReadErr
	}

	frames := len(dst) / d.channels
	if !d.Endless {
		frames = min(frames, d.totalFrames-d.produced)
	}
	if frames <= 0 {
		return 0, io.EOF
	}

	for f := range frames {
		for c := range d.channels {
			dst[f*d.channels+c] = d.waveform(d.produced+f, c)
		}
	}
	d.produced += frames

	return frames * d.channels, nil
}

func (d *Device) Stop() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped++

	return d.StopErr
}

// Calls reports how often Start and Stop were invoked.
func (d *Device) Calls() (started, stopped int) {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.started, d.stopped
}

var ErrDeviceGone = errors.New("device unplugged")

// Produced returns how many frames the device has handed out since Start.
func (d *Device) Produced() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.produced
}

// Reads returns how many times Read was called, including failed calls.
func (d *Device) Reads() int {
	d.mu.Lock()
	defer d.mu.Unlock()

	return d.reads
}
