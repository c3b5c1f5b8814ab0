// SPDX-License-Identifier: EPL-2.0

package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/xmyshaw/mandarin-pitch-detector/formats/wav"
)

// EnvPrefix prefixes every environment override.
const EnvPrefix = "TONEREC_"

// Config is the complete client configuration.
type Config struct {
	Analysis AnalysisConfig `yaml:"analysis"`
	Capture  CaptureConfig  `yaml:"capture"`
	Convert  ConvertConfig  `yaml:"convert"`
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Output   OutputConfig   `yaml:"output"`
}

// AnalysisConfig locates the remote pitch-tone service.
type AnalysisConfig struct {
	Endpoint string `yaml:"endpoint"`
	Path     string `yaml:"path"`
	Timeout  int    `yaml:"timeout"` // seconds
}

// CaptureConfig describes the microphone stream.
type CaptureConfig struct {
	SampleRate      int `yaml:"sample_rate"`
	Channels        int `yaml:"channels"`
	FramesPerBuffer int `yaml:"frames_per_buffer"`
}

// ConvertConfig shapes the WAV sent to the service. A zero sample rate keeps
// the captured rate.
type ConvertConfig struct {
	SampleRate int    `yaml:"sample_rate"`
	Mono       bool   `yaml:"mono"`
	Encoding   string `yaml:"encoding"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	Output string `yaml:"output"`
}

// MetricsConfig enables a Prometheus listener when Listen is set.
type MetricsConfig struct {
	Listen string `yaml:"listen"`
}

// OutputConfig names where artefacts of a run are written. Empty paths
// disable the respective file.
type OutputConfig struct {
	PlotPath string `yaml:"plot_path"`
	WAVPath  string `yaml:"wav_path"`
}

func Default() *Config {
	return &Config{
		Analysis: AnalysisConfig{
			Endpoint: "http://localhost:8000",
			Path:     "/analyze_tone_praat",
			Timeout:  60,
		},
		Capture: CaptureConfig{
			SampleRate:      44100,
			Channels:        1,
			FramesPerBuffer: 1024,
		},
		Convert: ConvertConfig{
			Encoding: "pcm16",
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "text",
			Output: "stderr",
		},
		Output: OutputConfig{
			PlotPath: "pitch.png",
		},
	}
}

// Load builds the configuration from defaults, the YAML file at path (if
// path is not empty), a .env file in the working directory (if present) and
// finally TONEREC_* environment variables.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	// a missing .env is normal; existing variables are never overwritten
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	if err := cfg.ApplyEnv(os.LookupEnv); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// ApplyEnv overrides fields from TONEREC_* variables found by lookup.
func (c *Config) ApplyEnv(lookup func(string) (string, bool)) error {
	str := func(key string, dst *string) {
		if v, ok := lookup(EnvPrefix + key); ok {
			*dst = v
		}
	}
	num := func(key string, dst *int) error {
		v, ok := lookup(EnvPrefix + key)
		if !ok {
			return nil
		}
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%s%s: %w", EnvPrefix, key, err)
		}
		*dst = n
		return nil
	}

	str("ANALYSIS_ENDPOINT", &c.Analysis.Endpoint)
	str("ANALYSIS_PATH", &c.Analysis.Path)
	str("CONVERT_ENCODING", &c.Convert.Encoding)
	str("LOG_LEVEL", &c.Logging.Level)
	str("LOG_FORMAT", &c.Logging.Format)
	str("LOG_OUTPUT", &c.Logging.Output)
	str("METRICS_LISTEN", &c.Metrics.Listen)
	str("PLOT_PATH", &c.Output.PlotPath)
	str("WAV_PATH", &c.Output.WAVPath)

	for key, dst := range map[string]*int{
		"ANALYSIS_TIMEOUT":          &c.Analysis.Timeout,
		"CAPTURE_SAMPLE_RATE":       &c.Capture.SampleRate,
		"CAPTURE_CHANNELS":          &c.Capture.Channels,
		"CAPTURE_FRAMES_PER_BUFFER": &c.Capture.FramesPerBuffer,
		"CONVERT_SAMPLE_RATE":       &c.Convert.SampleRate,
	} {
		if err := num(key, dst); err != nil {
			return err
		}
	}

	if v, ok := lookup(EnvPrefix + "CONVERT_MONO"); ok {
		b, err := strconv.ParseBool(strings.TrimSpace(v))
		if err != nil {
			return fmt.Errorf("%sCONVERT_MONO: %w", EnvPrefix, err)
		}
		c.Convert.Mono = b
	}

	return nil
}

// Validate performs validation of every section.
func (c *Config) Validate() error {
	if err := c.Analysis.Validate(); err != nil {
		return fmt.Errorf("analysis config: %w", err)
	}

	if err := c.Capture.Validate(); err != nil {
		return fmt.Errorf("capture config: %w", err)
	}

	if err := c.Convert.Validate(); err != nil {
		return fmt.Errorf("convert config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

func (a *AnalysisConfig) Validate() error {
	if a.Endpoint == "" {
		return fmt.Errorf("endpoint cannot be empty")
	}

	u, err := url.Parse(a.Endpoint)
	if err != nil {
		return fmt.Errorf("endpoint: %w", err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return fmt.Errorf("endpoint must be an http or https URL, got %q", a.Endpoint)
	}

	if a.Timeout < 1 {
		return fmt.Errorf("timeout must be at least 1 second, got %d", a.Timeout)
	}

	return nil
}

// TimeoutDuration returns the request timeout as a time.Duration.
func (a *AnalysisConfig) TimeoutDuration() time.Duration {
	return time.Duration(a.Timeout) * time.Second
}

func (c *CaptureConfig) Validate() error {
	if c.SampleRate < 8000 || c.SampleRate > 192000 {
		return fmt.Errorf("sample_rate must be between 8000 and 192000 Hz, got %d", c.SampleRate)
	}

	if c.Channels < 1 || c.Channels > 2 {
		return fmt.Errorf("channels must be 1 or 2, got %d", c.Channels)
	}

	if c.FramesPerBuffer < 64 {
		return fmt.Errorf("frames_per_buffer must be at least 64, got %d", c.FramesPerBuffer)
	}

	return nil
}

func (c *ConvertConfig) Validate() error {
	if c.SampleRate != 0 && (c.SampleRate < 8000 || c.SampleRate > 192000) {
		return fmt.Errorf("sample_rate must be 0 or between 8000 and 192000 Hz, got %d", c.SampleRate)
	}

	if _, err := wav.ParseEncoding(c.Encoding); err != nil {
		return fmt.Errorf("encoding: %w", err)
	}

	return nil
}

// WAVEncoding returns the parsed encoding. Call Validate first.
func (c *ConvertConfig) WAVEncoding() wav.Encoding {
	enc, _ := wav.ParseEncoding(c.Encoding)
	return enc
}

func (l *LoggingConfig) Validate() error {
	if _, err := l.level(); err != nil {
		return err
	}

	validFormats := map[string]bool{"json": true, "text": true}
	if !validFormats[l.Format] {
		return fmt.Errorf("format must be 'json' or 'text', got '%s'", l.Format)
	}

	validOutputs := map[string]bool{"stdout": true, "stderr": true, "": true}
	if !validOutputs[l.Output] {
		return fmt.Errorf("output must be 'stdout' or 'stderr', got '%s'", l.Output)
	}

	return nil
}

func (l *LoggingConfig) level() (slog.Level, error) {
	switch strings.ToLower(l.Level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return 0, fmt.Errorf("level must be one of [debug, info, warn, error], got '%s'", l.Level)
	}
}

// NewLogger builds a logger for this configuration. stdout and stderr are
// passed in so tests can capture output.
func (l *LoggingConfig) NewLogger(stdout, stderr io.Writer) *slog.Logger {
	level, err := l.level()
	if err != nil {
		level = slog.LevelInfo
	}

	w := stderr
	if l.Output == "stdout" {
		w = stdout
	}

	opts := &slog.HandlerOptions{Level: level}
	if l.Format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}

	return slog.New(slog.NewTextHandler(w, opts))
}
