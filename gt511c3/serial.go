// Copyright 2025 The go-gt511c3 Authors. All rights reserved.
// Use of this source code is governed by the license that can be
// found in the LICENSE file.

package gt511c3

import (
	"fmt"
	"time"

	"go.bug.st/serial"
)

// serialPort adapts a go.bug.st/serial port to the Port interface.
// The underlying port is opened lazily on the first Configure call so a
// Client can be constructed before the device is attached.
type serialPort struct {
	cfg  SerialConfig
	port serial.Port
}

// OpenPort returns a Port backed by the platform serial device described by
// cfg. The device itself is opened on the first Configure call.
func OpenPort(cfg SerialConfig) (Port, error) {
	if cfg.Address == "" {
		return nil, fmt.Errorf("%w: serial address (port name) must be configured", ErrInvalidConfig)
	}
	if cfg.DataBits == 0 {
		cfg.DataBits = 8
	}
	return &serialPort{cfg: cfg}, nil
}

func (sf *serialPort) Configure(baudRate int) error {
	if baudRate <= 0 || baudRate > MaxBaudRate {
		return fmt.Errorf("%w: baud rate %d out of range (1..%d)", ErrInvalidConfig, baudRate, MaxBaudRate)
	}
	mode := &serial.Mode{
		BaudRate: baudRate,
		DataBits: sf.cfg.DataBits,
		Parity:   sf.cfg.Parity,
		StopBits: sf.cfg.StopBits,
	}
	if sf.port == nil {
		port, err := serial.Open(sf.cfg.Address, mode)
		if err != nil {
			return fmt.Errorf("open serial port %s: %w", sf.cfg.Address, err)
		}
		sf.port = port
		return nil
	}
	if err := sf.port.SetMode(mode); err != nil {
		return fmt.Errorf("reconfigure serial port %s: %w", sf.cfg.Address, err)
	}
	return nil
}

func (sf *serialPort) SetReadTimeout(d time.Duration) error {
	if sf.port == nil {
		return fmt.Errorf("%w: port not configured", ErrInvalidConfig)
	}
	return sf.port.SetReadTimeout(d)
}

func (sf *serialPort) Read(p []byte) (int, error) {
	if sf.port == nil {
		return 0, fmt.Errorf("%w: port not configured", ErrInvalidConfig)
	}
	return sf.port.Read(p)
}

func (sf *serialPort) Write(p []byte) (int, error) {
	if sf.port == nil {
		return 0, fmt.Errorf("%w: port not configured", ErrInvalidConfig)
	}
	return sf.port.Write(p)
}

func (sf *serialPort) Close() error {
	if sf.port == nil {
		return nil
	}
	err := sf.port.Close()
	sf.port = nil
	return err
}
