// SPDX-License-Identifier: EPL-2.0

// Package lifecycle drives one recording through analysis:
// Idle → Recording → Recorded → Analyzing → Succeeded or Failed.
//
// A Controller owns the only State and hands snapshots to subscribers, so a
// presentation layer can render without sharing mutable data. Each analysis
// remembers the ID of the recording it was started for; if a new recording
// begins before the service answers, the late answer is discarded.
package lifecycle
