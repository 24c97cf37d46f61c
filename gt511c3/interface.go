// Copyright 2025 The go-gt511c3 Authors. All rights reserved.
// Use of this source code is governed by the license that can be
// found in the LICENSE file.

package gt511c3

import (
	"io"
	"time"
)

// Port is the byte-level transport the engine drives. A Client owns exactly
// one Port for its lifetime; nothing else may read or write the channel while
// the session exists, since the protocol has no message boundaries to
// resynchronize on.
type Port interface {
	io.ReadWriteCloser

	// Configure (re)configures the channel at the given baud rate. It is
	// called once at ResetBaudRate during Open and again if an operating
	// baud switch is requested.
	Configure(baudRate int) error

	// SetReadTimeout bounds subsequent Read calls. A Read returning 0 bytes
	// after the timeout is treated as an expired deadline by the session.
	SetReadTimeout(d time.Duration) error
}
