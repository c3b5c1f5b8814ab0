// SPDX-License-Identifier: EPL-2.0

// Package config loads the tonerec configuration from a YAML file, an
// optional .env file and TONEREC_* environment variables, in that order of
// increasing precedence.
package config
