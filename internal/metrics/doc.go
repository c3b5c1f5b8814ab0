// SPDX-License-Identifier: EPL-2.0

// Package metrics exposes recording and analysis counters for Prometheus.
package metrics
