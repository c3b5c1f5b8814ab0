// SPDX-License-Identifier: EPL-2.0

// Package aiff decodes AIFF recordings using github.com/go-audio/aiff.
//
// Integer PCM at 16, 24 or 32 bits is supported, any channel count and
// sample rate:
//
//	src, err := aiff.Decoder{}.Decode(file)
//	if err == aiff.ErrNotAiffFile {
//	    // not AIFF
//	}
package aiff
