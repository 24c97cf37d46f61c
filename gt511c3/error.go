// Copyright 2025 The go-gt511c3 Authors. All rights reserved.
// Use of this source code is governed by the license that can be
// found in the LICENSE file.

package gt511c3

import (
	"errors"
	"fmt"
)

// ErrorKind classifies every failure the engine can surface.
type ErrorKind int

const (
	// KindGeneric is an unclassified failure.
	KindGeneric ErrorKind = iota
	// KindConfiguration is an invalid or missing transport parameter.
	KindConfiguration
	// KindCommunication is a write failure, framing corruption or timeout.
	KindCommunication
	// KindCapacity is a payload length exceeding the configured maximum.
	KindCapacity
	// KindBadParameter is a device rejection for an invalid parameter.
	KindBadParameter
	// KindBadState is a device rejection for an operation out of sequence.
	KindBadState
	// KindBusy is a device rejection for a resource already in use.
	KindBusy
	// KindAccessDenied is a verification or identification failure.
	KindAccessDenied
	// KindResourceExhausted is a full or empty template database.
	KindResourceExhausted
	// KindNotSupported is a command the device does not implement.
	KindNotSupported
	// KindCanceled is a capture canceled on the device side.
	KindCanceled
)

var kindNames = map[ErrorKind]string{
	KindGeneric:           "generic",
	KindConfiguration:     "configuration",
	KindCommunication:     "communication",
	KindCapacity:          "capacity",
	KindBadParameter:      "bad parameter",
	KindBadState:          "bad state",
	KindBusy:              "busy",
	KindAccessDenied:      "access denied",
	KindResourceExhausted: "resource exhausted",
	KindNotSupported:      "not supported",
	KindCanceled:          "canceled",
}

func (k ErrorKind) String() string {
	if name, ok := kindNames[k]; ok {
		return name
	}
	return fmt.Sprintf("ErrorKind(%d)", int(k))
}

// Session and transport errors.
var (
	ErrNotOpen       = errors.New("session is not open")
	ErrAlreadyOpen   = errors.New("session is already open")
	ErrBusy          = errors.New("a command is already in flight")
	ErrTimeout       = errors.New("timeout waiting for device response")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// StatusError is a well-formed device rejection: the scanner answered Nack
// with the embedded status code.
type StatusError struct {
	Status Status
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("device rejected command: %s (0x%04X)", e.Status, uint16(e.Status))
}

// Kind returns the taxonomy kind for the rejection's status code.
func (e *StatusError) Kind() ErrorKind {
	return e.Status.Kind()
}

// KindOf classifies any error returned by this package. Callers that only
// care about the failure class can switch on the result instead of matching
// sentinels.
func KindOf(err error) ErrorKind {
	if err == nil {
		return KindGeneric
	}
	var se *StatusError
	if errors.As(err, &se) {
		return se.Kind()
	}
	switch {
	case errors.Is(err, ErrInvalidConfig):
		return KindConfiguration
	case errors.Is(err, ErrPayloadTooLarge):
		return KindCapacity
	case errors.Is(err, ErrBadStartCode),
		errors.Is(err, ErrBadDeviceID),
		errors.Is(err, ErrChecksumMismatch),
		errors.Is(err, ErrBadResponseCode),
		errors.Is(err, ErrFrameLength),
		errors.Is(err, ErrTimeout):
		return KindCommunication
	case errors.Is(err, ErrNotOpen),
		errors.Is(err, ErrAlreadyOpen),
		errors.Is(err, ErrBusy):
		return KindBadState
	default:
		return KindGeneric
	}
}
