// Copyright 2025 The go-gt511c3 Authors. All rights reserved.
// Use of this source code is governed by the license that can be
// found in the LICENSE file.

package gt511c3

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

var allStatuses = []Status{
	StatusTimeout, StatusInvalidBaudrate, StatusInvalidPos, StatusIsNotUsed,
	StatusIsAlreadyUsed, StatusCommErr, StatusVerifyFailed, StatusIdentifyFailed,
	StatusDBIsFull, StatusDBIsEmpty, StatusTurnErr, StatusBadFinger,
	StatusEnrollFailed, StatusIsNotSupported, StatusDeviceErr,
	StatusCaptureCanceled, StatusInvalidParam, StatusFingerNotPressed,
	StatusInvalid,
}

func TestStatusKindMapping(t *testing.T) {
	tests := []struct {
		status Status
		kind   ErrorKind
	}{
		{StatusTimeout, KindCommunication},
		{StatusCommErr, KindCommunication},
		{StatusInvalidBaudrate, KindBadParameter},
		{StatusInvalidParam, KindBadParameter},
		{StatusInvalidPos, KindBadState},
		{StatusIsNotUsed, KindBadState},
		{StatusTurnErr, KindBadState},
		{StatusBadFinger, KindBadState},
		{StatusEnrollFailed, KindBadState},
		{StatusDeviceErr, KindBadState},
		{StatusFingerNotPressed, KindBadState},
		{StatusIsAlreadyUsed, KindBusy},
		{StatusVerifyFailed, KindAccessDenied},
		{StatusIdentifyFailed, KindAccessDenied},
		{StatusDBIsFull, KindResourceExhausted},
		{StatusDBIsEmpty, KindResourceExhausted},
		{StatusIsNotSupported, KindNotSupported},
		{StatusCaptureCanceled, KindCanceled},
		{StatusInvalid, KindGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.status.String(), func(t *testing.T) {
			assert.Equal(t, tt.kind, tt.status.Kind())
		})
	}
}

func TestStatusTranslationIsTotal(t *testing.T) {
	// Every defined code has a name and a kind; nothing panics or maps to a
	// success-looking value.
	for _, s := range allStatuses {
		assert.NotContains(t, s.String(), "Status(0x", "status 0x%04X should have a name", uint16(s))
		assert.NotEqual(t, StatusSuccess, s)
		_ = s.Kind()
	}
}

func TestUnknownStatusMapsToGeneric(t *testing.T) {
	unknown := Status(0x2FFF)
	assert.Equal(t, KindGeneric, unknown.Kind())
	assert.Equal(t, "Status(0x2FFF)", unknown.String())
}

func TestStatusErrorCarriesKind(t *testing.T) {
	err := &StatusError{Status: StatusDBIsFull}
	assert.Equal(t, KindResourceExhausted, err.Kind())
	assert.Contains(t, err.Error(), "database is full")
	assert.Equal(t, KindResourceExhausted, KindOf(err))
}

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		kind ErrorKind
	}{
		{"config", ErrInvalidConfig, KindConfiguration},
		{"capacity", ErrPayloadTooLarge, KindCapacity},
		{"framing", ErrChecksumMismatch, KindCommunication},
		{"start code", ErrBadStartCode, KindCommunication},
		{"timeout", ErrTimeout, KindCommunication},
		{"not open", ErrNotOpen, KindBadState},
		{"busy", ErrBusy, KindBadState},
		{"nil", nil, KindGeneric},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.kind, KindOf(tt.err))
		})
	}
}
