// Copyright 2025 The go-gt511c3 Authors. All rights reserved.
// Use of this source code is governed by the license that can be
// found in the LICENSE file.

package gt511c3

import "fmt"

// Status is a device status code reported in the parameter field of a Nack
// response.
type Status uint16

// GT-511C3 status codes.
const (
	StatusSuccess          Status = 0x0000
	StatusTimeout          Status = 0x1001 // Obsolete, capture timeout
	StatusInvalidBaudrate  Status = 0x1002 // Obsolete, invalid serial baud rate
	StatusInvalidPos       Status = 0x1003 // The specified ID is not between 0~199
	StatusIsNotUsed        Status = 0x1004 // The specified ID is not used
	StatusIsAlreadyUsed    Status = 0x1005 // The specified ID is already used
	StatusCommErr          Status = 0x1006 // Communication error
	StatusVerifyFailed     Status = 0x1007 // 1:1 verification failure
	StatusIdentifyFailed   Status = 0x1008 // 1:N identification failure
	StatusDBIsFull         Status = 0x1009 // The database is full
	StatusDBIsEmpty        Status = 0x100A // The database is empty
	StatusTurnErr          Status = 0x100B // Obsolete, invalid order of the enrollment turns
	StatusBadFinger        Status = 0x100C // Too bad fingerprint
	StatusEnrollFailed     Status = 0x100D // Enrollment failure
	StatusIsNotSupported   Status = 0x100E // The specified command is not supported
	StatusDeviceErr        Status = 0x100F // Device error, crypto chip trouble
	StatusCaptureCanceled  Status = 0x1010 // Obsolete, the capture was canceled
	StatusInvalidParam     Status = 0x1011 // Invalid parameter
	StatusFingerNotPressed Status = 0x1012 // Finger is not pressed
	StatusInvalid          Status = 0xFFFF // Reserved for unparseable responses
)

var statusNames = map[Status]string{
	StatusSuccess:          "success",
	StatusTimeout:          "capture timeout",
	StatusInvalidBaudrate:  "invalid baud rate",
	StatusInvalidPos:       "id out of range",
	StatusIsNotUsed:        "id not in use",
	StatusIsAlreadyUsed:    "id already in use",
	StatusCommErr:          "communication error",
	StatusVerifyFailed:     "verification failed",
	StatusIdentifyFailed:   "identification failed",
	StatusDBIsFull:         "database is full",
	StatusDBIsEmpty:        "database is empty",
	StatusTurnErr:          "invalid enrollment order",
	StatusBadFinger:        "bad fingerprint",
	StatusEnrollFailed:     "enrollment failed",
	StatusIsNotSupported:   "command not supported",
	StatusDeviceErr:        "device error",
	StatusCaptureCanceled:  "capture canceled",
	StatusInvalidParam:     "invalid parameter",
	StatusFingerNotPressed: "finger not pressed",
	StatusInvalid:          "invalid status",
}

func (s Status) String() string {
	if name, ok := statusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("Status(0x%04X)", uint16(s))
}

// Kind translates a device status code into the generic error taxonomy.
// The mapping is total: every defined code has exactly one kind and any
// unrecognized code falls back to KindGeneric, never to success.
func (s Status) Kind() ErrorKind {
	switch s {
	case StatusTimeout, StatusCommErr:
		return KindCommunication
	case StatusInvalidBaudrate, StatusInvalidParam:
		return KindBadParameter
	case StatusInvalidPos, StatusIsNotUsed, StatusTurnErr, StatusBadFinger,
		StatusEnrollFailed, StatusDeviceErr, StatusFingerNotPressed:
		return KindBadState
	case StatusIsAlreadyUsed:
		return KindBusy
	case StatusVerifyFailed, StatusIdentifyFailed:
		return KindAccessDenied
	case StatusDBIsFull, StatusDBIsEmpty:
		return KindResourceExhausted
	case StatusIsNotSupported:
		return KindNotSupported
	case StatusCaptureCanceled:
		return KindCanceled
	default:
		return KindGeneric
	}
}
