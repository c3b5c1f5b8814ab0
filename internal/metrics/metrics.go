// SPDX-License-Identifier: EPL-2.0

package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/xmyshaw/mandarin-pitch-detector/lifecycle"
)

// Metrics contains the Prometheus metrics of one client process. It
// implements lifecycle.Observer and convert.Observer.
type Metrics struct {
	Recordings         prometheus.Counter
	Analyses           *prometheus.CounterVec
	AnalysisDuration   prometheus.Histogram
	ConversionDuration prometheus.Histogram

	reg *prometheus.Registry
}

// New creates the metrics on a private registry, together with the Go
// runtime and process collectors.
func New() *Metrics {
	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	f := promauto.With(reg)

	return &Metrics{
		Recordings: f.NewCounter(prometheus.CounterOpts{
			Name: "tonerec_recordings_total",
			Help: "Total number of finished recordings",
		}),
		Analyses: f.NewCounterVec(prometheus.CounterOpts{
			Name: "tonerec_analyses_total",
			Help: "Total number of analyses by outcome",
		}, []string{"outcome"}),
		AnalysisDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tonerec_analysis_duration_seconds",
			Help:    "Time from entering Analyzing to a result, including conversion",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 10), // 50ms to ~25s
		}),
		ConversionDuration: f.NewHistogram(prometheus.HistogramOpts{
			Name:    "tonerec_conversion_duration_seconds",
			Help:    "Time spent decoding and re-encoding a recording",
			Buckets: prometheus.ExponentialBuckets(0.001, 2, 12), // 1ms to ~4s
		}),
		reg: reg,
	}
}

func (m *Metrics) RecordingFinished() {
	m.Recordings.Inc()
}

func (m *Metrics) AnalysisFinished(o lifecycle.Outcome, elapsed time.Duration) {
	m.Analyses.WithLabelValues(string(o)).Inc()
	m.AnalysisDuration.Observe(elapsed.Seconds())
}

func (m *Metrics) ObserveConversion(d time.Duration) {
	m.ConversionDuration.Observe(d.Seconds())
}

// Registry exposes the private registry, mainly for tests.
func (m *Metrics) Registry() *prometheus.Registry { return m.reg }

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.reg, promhttp.HandlerOpts{Registry: m.reg})
}
