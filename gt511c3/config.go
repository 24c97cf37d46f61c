// Copyright 2025 The go-gt511c3 Authors. All rights reserved.
// Use of this source code is governed by the license that can be
// found in the LICENSE file.

package gt511c3

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// Device limits and defaults.
const (
	// ResetBaudRate is the scanner's power-on baud rate. Open always starts
	// the handshake here.
	ResetBaudRate = 9600
	// MaxBaudRate is the highest baud rate the scanner supports.
	MaxBaudRate = 115200

	// DefaultMaxPayload bounds the data-frame payload the engine will accept.
	DefaultMaxPayload = 64 * 1024

	// DefaultResponseTimeout bounds each response and data-frame read.
	DefaultResponseTimeout = 3 * time.Second
	ResponseTimeoutMin     = 10 * time.Millisecond
)

// SerialConfig holds serial port configuration parameters.
type SerialConfig struct {
	// Address is the serial port address (e.g., "COM3" on Windows,
	// "/dev/ttyS0" on Linux).
	Address string
	// DataBits is the number of data bits. The scanner uses 8.
	DataBits int
	// StopBits specifies the number of stop bits. Use serial.OneStopBit or
	// serial.TwoStopBits.
	StopBits serial.StopBits
	// Parity specifies the parity mode. Use serial.NoParity,
	// serial.OddParity or serial.EvenParity.
	Parity serial.Parity
}

// Config defines a GT-511C3 session configuration.
type Config struct {
	// Serial port settings. The baud rate is not part of SerialConfig: the
	// session always opens at ResetBaudRate and only leaves it when an
	// operating baud is set on the ClientOption.
	Serial SerialConfig

	// ResponseTimeout bounds each whole-frame read from the device. A device
	// that stays silent past the deadline yields ErrTimeout instead of
	// stalling the caller.
	ResponseTimeout time.Duration

	// MaxPayload is the largest data-frame payload the session will request
	// or accept.
	MaxPayload int
}

// applyDefaults fills zero-valued fields that have sensible defaults.
// It does not validate; sessions over an injected Port have no serial
// address to check.
func (sf *Config) applyDefaults() {
	if sf.Serial.DataBits == 0 {
		sf.Serial.DataBits = 8
	}
	if sf.ResponseTimeout == 0 {
		sf.ResponseTimeout = DefaultResponseTimeout
	}
	if sf.MaxPayload == 0 {
		sf.MaxPayload = DefaultMaxPayload
	}
}

// Valid applies defaults and checks configuration validity.
func (sf *Config) Valid() error {
	if sf == nil {
		return fmt.Errorf("%w: nil config", ErrInvalidConfig)
	}
	if sf.Serial.Address == "" {
		return fmt.Errorf("%w: serial address (port name) must be configured", ErrInvalidConfig)
	}
	sf.applyDefaults()
	if sf.ResponseTimeout < ResponseTimeoutMin {
		return fmt.Errorf("%w: response timeout below %s", ErrInvalidConfig, ResponseTimeoutMin)
	}
	if sf.MaxPayload < 0 {
		return fmt.Errorf("%w: max payload must be positive", ErrInvalidConfig)
	}
	return nil
}

// DefaultConfig provides a default session configuration.
// NOTE: Serial.Address needs to be set explicitly.
func DefaultConfig() Config {
	return Config{
		Serial: SerialConfig{
			DataBits: 8,
			StopBits: serial.OneStopBit,
			Parity:   serial.NoParity,
		},
		ResponseTimeout: DefaultResponseTimeout,
		MaxPayload:      DefaultMaxPayload,
	}
}
