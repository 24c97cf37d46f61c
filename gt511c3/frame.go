// Copyright 2025 The go-gt511c3 Authors. All rights reserved.
// Use of this source code is governed by the license that can be
// found in the LICENSE file.

package gt511c3

import (
	"encoding/binary"
	"errors"
	"fmt"
)

// GT-511C3 wire format constants.
const (
	// CmdStartCode1 and CmdStartCode2 open every command and response frame.
	CmdStartCode1 byte = 0x55
	CmdStartCode2 byte = 0xAA

	// DataStartCode1 and DataStartCode2 open every data frame.
	DataStartCode1 byte = 0x5A
	DataStartCode2 byte = 0xA5

	// DeviceID is fixed; the scanner is the only device on the channel.
	DeviceID uint16 = 0x0001

	// CommandFrameSize is the fixed size of a command frame on the wire.
	CommandFrameSize = 12
	// ResponseFrameSize is the fixed size of a response frame on the wire.
	ResponseFrameSize = 12

	// dataFrameOverhead is the data frame size beyond its payload:
	// two start codes, the device ID and the trailing checksum.
	dataFrameOverhead = 6

	checksumSize = 2
)

// Response codes carried in the response frame's code field.
const (
	respAck  uint16 = 0x30
	respNack uint16 = 0x31
)

// Errors related to frame encoding and decoding.
var (
	ErrBadStartCode     = errors.New("invalid start code")
	ErrBadDeviceID      = errors.New("unexpected device id")
	ErrChecksumMismatch = errors.New("checksum mismatch")
	ErrBadResponseCode  = errors.New("invalid response code")
	ErrFrameLength      = errors.New("invalid frame length")
	ErrPayloadTooLarge  = errors.New("payload exceeds maximum frame size")
)

// Checksum computes the GT-511C3 frame checksum: the byte-addition sum of p
// accumulated in a 16-bit register. Overflow wraps at 16 bits, matching the
// scanner's own checksum generator bit for bit.
func Checksum(p []byte) uint16 {
	var sum uint16
	for _, b := range p {
		sum += uint16(b)
	}
	return sum
}

// Response is the decoded form of a 12-byte response frame.
// On Ack the Parameter field carries the command's output value; on Nack it
// carries the device status code, available via Status.
type Response struct {
	Ack       bool
	Parameter uint32
}

// Status returns the device status code reported by a Nack response.
// It returns StatusSuccess for an Ack.
func (r Response) Status() Status {
	if r.Ack {
		return StatusSuccess
	}
	return Status(r.Parameter)
}

// EncodeCommand builds a 12-byte command frame for the given command code and
// input parameter. All multi-byte fields are little-endian; the checksum
// covers the ten bytes preceding it.
func EncodeCommand(cmd Command, parameter uint32) []byte {
	buf := make([]byte, CommandFrameSize)
	buf[0] = CmdStartCode1
	buf[1] = CmdStartCode2
	binary.LittleEndian.PutUint16(buf[2:], DeviceID)
	binary.LittleEndian.PutUint32(buf[4:], parameter)
	binary.LittleEndian.PutUint16(buf[8:], uint16(cmd))
	binary.LittleEndian.PutUint16(buf[10:], Checksum(buf[:10]))
	return buf
}

// DecodeResponse validates and decodes a 12-byte response frame.
// Validation order is start codes, device ID, checksum, response code; the
// first failure wins so the diagnostic points at the outermost corruption.
func DecodeResponse(buf []byte) (Response, error) {
	if len(buf) != ResponseFrameSize {
		return Response{}, fmt.Errorf("%w: got %d bytes, want %d", ErrFrameLength, len(buf), ResponseFrameSize)
	}
	if buf[0] != CmdStartCode1 || buf[1] != CmdStartCode2 {
		return Response{}, fmt.Errorf("%w: 0x%02X 0x%02X", ErrBadStartCode, buf[0], buf[1])
	}
	if id := binary.LittleEndian.Uint16(buf[2:]); id != DeviceID {
		return Response{}, fmt.Errorf("%w: 0x%04X", ErrBadDeviceID, id)
	}
	want := Checksum(buf[:ResponseFrameSize-checksumSize])
	if got := binary.LittleEndian.Uint16(buf[10:]); got != want {
		return Response{}, fmt.Errorf("%w: got 0x%04X, want 0x%04X", ErrChecksumMismatch, got, want)
	}

	// The parameter is read before the code decides how to interpret it;
	// both fields live at fixed offsets regardless of Ack/Nack.
	parameter := binary.LittleEndian.Uint32(buf[4:])
	switch code := binary.LittleEndian.Uint16(buf[8:]); code {
	case respAck:
		return Response{Ack: true, Parameter: parameter}, nil
	case respNack:
		return Response{Ack: false, Parameter: parameter}, nil
	default:
		return Response{}, fmt.Errorf("%w: 0x%04X", ErrBadResponseCode, code)
	}
}

// DataFrameSize returns the total on-wire size of a data frame carrying
// payloadLen bytes. The frame does not self-describe its length; the caller
// must know it from the command that triggered the transfer.
func DataFrameSize(payloadLen int) int {
	return payloadLen + dataFrameOverhead
}

// EncodeData builds a data frame carrying payload, for the commands whose
// contract has the host send data to the device (template upload). The
// checksum covers everything before it.
func EncodeData(payload []byte) []byte {
	buf := make([]byte, DataFrameSize(len(payload)))
	buf[0] = DataStartCode1
	buf[1] = DataStartCode2
	binary.LittleEndian.PutUint16(buf[2:], DeviceID)
	copy(buf[4:], payload)
	csOffset := len(buf) - checksumSize
	binary.LittleEndian.PutUint16(buf[csOffset:], Checksum(buf[:csOffset]))
	return buf
}

// DecodeData validates a data frame of exactly DataFrameSize(payloadLen)
// bytes and returns a copy of its payload. A zero payloadLen is legal and
// yields an empty slice from a 6-byte frame.
func DecodeData(buf []byte, payloadLen int) ([]byte, error) {
	if payloadLen < 0 || len(buf) != DataFrameSize(payloadLen) {
		return nil, fmt.Errorf("%w: got %d bytes, want %d", ErrFrameLength, len(buf), DataFrameSize(payloadLen))
	}
	if buf[0] != DataStartCode1 || buf[1] != DataStartCode2 {
		return nil, fmt.Errorf("%w: 0x%02X 0x%02X", ErrBadStartCode, buf[0], buf[1])
	}
	if id := binary.LittleEndian.Uint16(buf[2:]); id != DeviceID {
		return nil, fmt.Errorf("%w: 0x%04X", ErrBadDeviceID, id)
	}
	csOffset := len(buf) - checksumSize
	want := Checksum(buf[:csOffset])
	if got := binary.LittleEndian.Uint16(buf[csOffset:]); got != want {
		return nil, fmt.Errorf("%w: got 0x%04X, want 0x%04X", ErrChecksumMismatch, got, want)
	}

	payload := make([]byte, payloadLen)
	copy(payload, buf[4:csOffset])
	return payload, nil
}
