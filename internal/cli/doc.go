// SPDX-License-Identifier: EPL-2.0

// Package cli implements the tonerec command line: configuration, logging
// and metrics setup plus the record, analyze and interactive commands. The
// capture device is injected so the commands run without audio hardware.
package cli
