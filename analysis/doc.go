// SPDX-License-Identifier: EPL-2.0

// Package analysis is the HTTP client for the remote pitch-tone service.
//
// A recording is posted as multipart/form-data with a single "audio" field
// and the service answers with the tone label, the pitch slope, a dipping
// flag and a base64 PNG plot of the pitch contour.
package analysis
