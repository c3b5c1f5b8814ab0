// SPDX-License-Identifier: EPL-2.0

// Package formats ties the per-container decoders together.
//
// Recorders hand over whatever container the platform prefers, so the
// converter identifies the format from the leading bytes first and only then
// trusts the declared media type:
//
//	reg := formats.NewRegistry()
//	key := formats.Detect(data[:min(len(data), formats.SniffLen)], "audio/ogg")
//	dec, ok := reg.Get(key)
package formats
