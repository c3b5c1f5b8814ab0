// SPDX-License-Identifier: EPL-2.0

// Package view renders lifecycle state for a terminal and stores the pitch
// plot returned by the analysis service.
package view
