// Copyright 2024 The Fcl3d Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package fcl3d is the module root; it re-exports the engine's status
// taxonomy so callers can import a single path for error checks.
package fcl3d

import "errors"

// Status is the outcome of a public API entry point. The zero value is
// StatusSuccess so a freshly declared Status reads as success.
type Status int

const (
	StatusSuccess Status = iota
	StatusInvalidParameter
	StatusInvalidHandle
	StatusInvalidState
	StatusBusy
	StatusBufferTooSmall
	StatusOutOfMemory
	StatusNotSupported
	StatusInternal
)

func (s Status) String() string {
	switch s {
	case StatusSuccess:
		return "Success"
	case StatusInvalidParameter:
		return "InvalidParameter"
	case StatusInvalidHandle:
		return "InvalidHandle"
	case StatusInvalidState:
		return "InvalidState"
	case StatusBusy:
		return "Busy"
	case StatusBufferTooSmall:
		return "BufferTooSmall"
	case StatusOutOfMemory:
		return "OutOfMemory"
	case StatusNotSupported:
		return "NotSupported"
	case StatusInternal:
		return "Internal"
	default:
		return "Unknown"
	}
}

// StatusError pairs a Status with a descriptive message, so callers that
// want the plain sentinel can still errors.Is against it while callers that
// want context can read Error().
type StatusError struct {
	Status  Status
	Message string
}

func (e *StatusError) Error() string {
	if e.Message == "" {
		return e.Status.String()
	}
	return e.Status.String() + ": " + e.Message
}

// Is makes errors.Is(err, ErrInvalidHandle) etc. work against a *StatusError
// built from the corresponding sentinel.
func (e *StatusError) Is(target error) bool {
	var se *StatusError
	if errors.As(target, &se) {
		return se.Status == e.Status
	}
	return false
}

// NewStatusError builds a *StatusError carrying the given message.
func NewStatusError(status Status, message string) error {
	return &StatusError{Status: status, Message: message}
}

// Sentinels for errors.Is comparisons against a bare status, no message.
var (
	ErrInvalidParameter = &StatusError{Status: StatusInvalidParameter}
	ErrInvalidHandle    = &StatusError{Status: StatusInvalidHandle}
	ErrInvalidState     = &StatusError{Status: StatusInvalidState}
	ErrBusy             = &StatusError{Status: StatusBusy}
	ErrBufferTooSmall   = &StatusError{Status: StatusBufferTooSmall}
	ErrOutOfMemory      = &StatusError{Status: StatusOutOfMemory}
	ErrNotSupported     = &StatusError{Status: StatusNotSupported}
	ErrInternal         = &StatusError{Status: StatusInternal}
)

// StatusOf extracts the Status carried by err, or StatusInternal if err is
// non-nil but not a *StatusError (an invariant violation: every error this
// module returns should already carry a Status).
func StatusOf(err error) Status {
	if err == nil {
		return StatusSuccess
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Status
	}
	return StatusInternal
}
