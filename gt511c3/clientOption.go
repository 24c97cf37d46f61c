// Copyright 2025 The go-gt511c3 Authors. All rights reserved.
// Use of this source code is governed by the license that can be
// found in the LICENSE file.

package gt511c3

import (
	"time"

	"go.uber.org/zap"
)

// ClientOption holds the session configuration options.
type ClientOption struct {
	config            Config
	requestDeviceInfo bool // ask for the device-info data frame during Open
	operatingBaud     int  // 0 keeps the channel at ResetBaudRate
	logger            *zap.SugaredLogger
}

// NewOption creates a new ClientOption with the default configuration.
// Note: Serial.Address within the config needs to be set explicitly using
// SetSerialConfig or SetConfig.
func NewOption() *ClientOption {
	return &ClientOption{
		config:            DefaultConfig(),
		requestDeviceInfo: true,
		logger:            zap.NewNop().Sugar(),
	}
}

// SetConfig sets the main session configuration. Uses DefaultConfig() if the
// provided cfg is invalid.
func (sf *ClientOption) SetConfig(cfg Config) *ClientOption {
	if err := cfg.Valid(); err != nil {
		sf.config = DefaultConfig()
	} else {
		sf.config = cfg
	}
	return sf
}

// SetSerialConfig sets the serial port configuration within the main config.
func (sf *ClientOption) SetSerialConfig(serialCfg SerialConfig) *ClientOption {
	sf.config.Serial = serialCfg
	return sf
}

// SetResponseTimeout bounds each whole-frame read from the device.
func (sf *ClientOption) SetResponseTimeout(d time.Duration) *ClientOption {
	if d >= ResponseTimeoutMin {
		sf.config.ResponseTimeout = d
	}
	return sf
}

// SetMaxPayload bounds the data-frame payload the session will request or
// accept.
func (sf *ClientOption) SetMaxPayload(n int) *ClientOption {
	if n > 0 {
		sf.config.MaxPayload = n
	}
	return sf
}

// SetRequestDeviceInfo controls whether Open asks the scanner for its
// device-info block. Enabled by default.
func (sf *ClientOption) SetRequestDeviceInfo(b bool) *ClientOption {
	sf.requestDeviceInfo = b
	return sf
}

// SetOperatingBaud requests a baud-rate switch after the reset-baud
// handshake. Zero (the default) keeps the channel at ResetBaudRate; values
// above MaxBaudRate are rejected during Open.
func (sf *ClientOption) SetOperatingBaud(baudRate int) *ClientOption {
	sf.operatingBaud = baudRate
	return sf
}

// SetLogger sets the logger used by the session. A nop logger is used by
// default.
func (sf *ClientOption) SetLogger(l *zap.Logger) *ClientOption {
	if l != nil {
		sf.logger = l.Sugar()
	}
	return sf
}
