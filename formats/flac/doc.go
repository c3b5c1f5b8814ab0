// SPDX-License-Identifier: EPL-2.0

// Package flac decodes FLAC recordings with github.com/mewkiz/flac.
// Samples of any bit depth are normalised to [-1, 1].
package flac
