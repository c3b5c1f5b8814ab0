// SPDX-License-Identifier: EPL-2.0

// Package vorbis decodes Ogg Vorbis recordings via
// github.com/jfreymuth/oggvorbis.
//
// Ogg files carrying Opus instead of Vorbis are rejected with ErrNotVorbis.
package vorbis
