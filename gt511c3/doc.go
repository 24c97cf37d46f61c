// Copyright 2025 The go-gt511c3 Authors. All rights reserved.
// Use of this source code is governed by the license that can be
// found in the LICENSE file.

// Package gt511c3 implements the host side of the GT-511C3 fingerprint
// scanner's serial command/response protocol.
//
// The scanner speaks a half-duplex binary protocol over a UART: the host
// sends a fixed 12-byte command frame, the scanner answers with a 12-byte
// Ack/Nack response frame, and some commands are followed by one
// variable-length data frame whose size the host must know in advance
// (a captured image, a stored template, the device-info block).
//
// The package splits into the frame codec (EncodeCommand, DecodeResponse,
// DecodeData), the status translation (Status, ErrorKind) and the Client
// session that sequences the open/execute/close lifecycle over a Port. A
// production Port wraps a platform serial device via go.bug.st/serial; tests
// and simulators can inject their own.
package gt511c3
