// SPDX-License-Identifier: EPL-2.0

// Package convert turns a captured recording in any supported container
// into the canonical WAV file the analysis service accepts.
//
// The container is identified from its leading bytes, falling back to the
// declared media type. Decoding failures are reported as *DecodeError so
// callers can tell a bad recording apart from an encoder problem.
package convert
