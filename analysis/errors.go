// SPDX-License-Identifier: EPL-2.0

package analysis

import (
	"errors"
	"fmt"
)

var (
	ErrNoEndpoint = errors.New("analysis endpoint is not configured")
	ErrNoAudio    = errors.New("no audio to analyse")
)

// NetworkError means the request never produced an HTTP response, or the
// response body could not be read.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("analysis %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ServerError is a non-2xx response. Detail holds the server's "detail"
// string when the body carried one.
type ServerError struct {
	StatusCode int
	Detail     string
}

func (e *ServerError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("analysis service returned HTTP %d", e.StatusCode)
	}
	return fmt.Sprintf("analysis service returned HTTP %d: %s", e.StatusCode, e.Detail)
}

// MalformedResponseError is a 2xx response whose body is not a result.
type MalformedResponseError struct {
	Reason string
	Err    error
}

func (e *MalformedResponseError) Error() string {
	if e.Err == nil {
		return "malformed analysis response: " + e.Reason
	}
	return fmt.Sprintf("malformed analysis response: %s: %v", e.Reason, e.Err)
}

func (e *MalformedResponseError) Unwrap() error { return e.Err }
