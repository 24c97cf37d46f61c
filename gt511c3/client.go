// Copyright 2025 The go-gt511c3 Authors. All rights reserved.
// Use of this source code is governed by the license that can be
// found in the LICENSE file.

package gt511c3

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// Session states
const (
	stateClosed uint32 = iota
	stateInitializing
	stateOpen
)

// Client drives one GT-511C3 scanner over an exclusively owned Port.
//
// The protocol is strictly half-duplex: one command frame goes out, one
// response frame (and optionally one data frame) comes back before the next
// command may be issued. The Client enforces this with a busy guard rather
// than a lock; a second in-flight command is a caller bug, not something to
// serialize, because interleaving would desynchronize frame boundaries on
// the byte stream with no recovery short of a re-open.
type Client struct {
	option ClientOption
	port   Port

	state uint32
	busy  int32
}

// Result is the outcome of a successfully acknowledged command: the
// response frame's output parameter and, when the command's contract
// includes a data frame, the received payload.
type Result struct {
	Parameter uint32
	Payload   []byte
}

// NewClient creates a session over an already constructed Port. The port is
// owned by the returned Client until Close. A nil o is equivalent to
// NewOption().
func NewClient(port Port, o *ClientOption) *Client {
	if o == nil {
		o = NewOption()
	}
	opt := *o
	opt.config.applyDefaults()
	return &Client{option: opt, port: port}
}

// Dial validates the configuration, opens the platform serial device named
// by it and returns a session over that port.
func Dial(o *ClientOption) (*Client, error) {
	opt := *o
	if err := opt.config.Valid(); err != nil {
		return nil, err
	}
	port, err := OpenPort(opt.config.Serial)
	if err != nil {
		return nil, err
	}
	return &Client{option: opt, port: port}, nil
}

// IsOpen reports whether the session is in the Open state.
func (sf *Client) IsOpen() bool {
	return atomic.LoadUint32(&sf.state) == stateOpen
}

// Open configures the transport at the scanner's power-on baud rate and runs
// the open handshake. When device info was requested (the default) the
// returned DeviceInfo is filled from the scanner's 24-byte data frame,
// otherwise it is nil.
//
// If an operating baud was set on the ClientOption, Open switches the device
// and the port to it after the handshake. On any failure the session stays
// Closed and the underlying error is returned.
func (sf *Client) Open(ctx context.Context) (*DeviceInfo, error) {
	if !atomic.CompareAndSwapUint32(&sf.state, stateClosed, stateInitializing) {
		return nil, ErrAlreadyOpen
	}
	opened := false
	defer func() {
		if !opened {
			atomic.StoreUint32(&sf.state, stateClosed)
		}
	}()

	if b := sf.option.operatingBaud; b != 0 && (b < 0 || b > MaxBaudRate) {
		return nil, fmt.Errorf("%w: operating baud %d out of range (1..%d)", ErrInvalidConfig, b, MaxBaudRate)
	}
	if err := sf.port.Configure(ResetBaudRate); err != nil {
		return nil, err
	}

	var parameter uint32
	if sf.option.requestDeviceInfo {
		parameter = 1
	}
	if _, err := sf.exchange(ctx, CmdOpen, parameter); err != nil {
		return nil, err
	}

	var info *DeviceInfo
	if sf.option.requestDeviceInfo {
		payload, err := sf.recvData(ctx, DeviceInfoSize)
		if err != nil {
			return nil, err
		}
		info = new(DeviceInfo)
		if err := info.UnmarshalBinary(payload); err != nil {
			return nil, err
		}
		sf.option.logger.Debugf("open handshake done: %s", info)
	}

	if b := sf.option.operatingBaud; b != 0 && b != ResetBaudRate {
		if _, err := sf.exchange(ctx, CmdChangeBaudRate, uint32(b)); err != nil {
			return nil, err
		}
		if err := sf.port.Configure(b); err != nil {
			return nil, err
		}
		sf.option.logger.Debugf("switched channel to %d baud", b)
	}

	atomic.StoreUint32(&sf.state, stateOpen)
	opened = true
	return info, nil
}

// Execute sends one command frame and returns the decoded outcome. Valid
// only in the Open state; a command already in flight yields ErrBusy.
//
// On Nack the translated StatusError is returned and no data frame is read.
// On Ack with a nonzero expectLen, a data frame of exactly that payload
// length is received and returned in the Result.
func (sf *Client) Execute(ctx context.Context, cmd Command, parameter uint32, expectLen int) (*Result, error) {
	if atomic.LoadUint32(&sf.state) != stateOpen {
		return nil, ErrNotOpen
	}
	if !atomic.CompareAndSwapInt32(&sf.busy, 0, 1) {
		return nil, ErrBusy
	}
	defer atomic.StoreInt32(&sf.busy, 0)

	resp, err := sf.exchange(ctx, cmd, parameter)
	if err != nil {
		return nil, err
	}
	res := &Result{Parameter: resp.Parameter}
	if expectLen > 0 {
		payload, err := sf.recvData(ctx, expectLen)
		if err != nil {
			return nil, err
		}
		res.Payload = payload
	}
	return res, nil
}

// Close sends the close command, awaits its outcome best-effort and releases
// the port. The session ends Closed regardless: a close failure is reported
// but there is no recovery action left once the caller is done with the
// channel. Closing an already closed session is a no-op.
func (sf *Client) Close(ctx context.Context) error {
	prev := atomic.SwapUint32(&sf.state, stateClosed)
	if prev == stateClosed {
		return nil
	}

	var closeErr error
	if prev == stateOpen {
		if atomic.CompareAndSwapInt32(&sf.busy, 0, 1) {
			_, closeErr = sf.exchange(ctx, CmdClose, 0)
			atomic.StoreInt32(&sf.busy, 0)
		} else {
			closeErr = ErrBusy
		}
	}
	if closeErr != nil {
		sf.option.logger.Warnf("close handshake failed: %v", closeErr)
	}
	if err := sf.port.Close(); err != nil && closeErr == nil {
		closeErr = err
	}
	return closeErr
}

// exchange writes one command frame and reads back its 12-byte response.
// A well-formed Nack is returned as a StatusError carrying the device
// status; framing or checksum corruption is never retried here.
func (sf *Client) exchange(ctx context.Context, cmd Command, parameter uint32) (Response, error) {
	frame := EncodeCommand(cmd, parameter)
	sf.option.logger.Debugf("TX %s param=0x%08X [% X]", cmd, parameter, frame)
	if _, err := sf.port.Write(frame); err != nil {
		return Response{}, fmt.Errorf("write %s command: %w", cmd, err)
	}

	buf := make([]byte, ResponseFrameSize)
	if err := sf.readFull(ctx, buf); err != nil {
		return Response{}, fmt.Errorf("read %s response: %w", cmd, err)
	}
	resp, err := DecodeResponse(buf)
	if err != nil {
		return Response{}, fmt.Errorf("decode %s response: %w", cmd, err)
	}
	if !resp.Ack {
		sf.option.logger.Warnf("%s rejected: %s", cmd, resp.Status())
		return resp, &StatusError{Status: resp.Status()}
	}
	sf.option.logger.Debugf("RX %s ack param=0x%08X", cmd, resp.Parameter)
	return resp, nil
}

// recvData reads and validates one data frame carrying payloadLen bytes.
// The length is caller-asserted, never discovered from the stream; the bound
// check runs before any byte is read so an oversized request cannot leave
// half a frame on the channel.
func (sf *Client) recvData(ctx context.Context, payloadLen int) ([]byte, error) {
	if payloadLen > sf.option.config.MaxPayload {
		return nil, fmt.Errorf("%w: %d bytes requested, limit %d", ErrPayloadTooLarge, payloadLen, sf.option.config.MaxPayload)
	}
	buf := make([]byte, DataFrameSize(payloadLen))
	if err := sf.readFull(ctx, buf); err != nil {
		return nil, fmt.Errorf("read data frame: %w", err)
	}
	payload, err := DecodeData(buf, payloadLen)
	if err != nil {
		return nil, fmt.Errorf("decode data frame: %w", err)
	}
	return payload, nil
}

// sendData writes one data frame carrying payload and reads the response
// frame the device answers the transfer with. The bound check mirrors
// recvData so an oversized payload never reaches the wire.
func (sf *Client) sendData(ctx context.Context, payload []byte) (Response, error) {
	if len(payload) > sf.option.config.MaxPayload {
		return Response{}, fmt.Errorf("%w: %d bytes offered, limit %d", ErrPayloadTooLarge, len(payload), sf.option.config.MaxPayload)
	}
	frame := EncodeData(payload)
	sf.option.logger.Debugf("TX data frame, %d byte payload", len(payload))
	if _, err := sf.port.Write(frame); err != nil {
		return Response{}, fmt.Errorf("write data frame: %w", err)
	}

	buf := make([]byte, ResponseFrameSize)
	if err := sf.readFull(ctx, buf); err != nil {
		return Response{}, fmt.Errorf("read data frame response: %w", err)
	}
	resp, err := DecodeResponse(buf)
	if err != nil {
		return Response{}, fmt.Errorf("decode data frame response: %w", err)
	}
	if !resp.Ack {
		sf.option.logger.Warnf("data frame rejected: %s", resp.Status())
		return resp, &StatusError{Status: resp.Status()}
	}
	return resp, nil
}

// readFull fills buf from the port, bounded by the configured response
// timeout and the context deadline, whichever comes first.
func (sf *Client) readFull(ctx context.Context, buf []byte) error {
	timeout := sf.option.config.ResponseTimeout
	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := sf.port.SetReadTimeout(time.Until(deadline)); err != nil {
		return err
	}

	for off := 0; off < len(buf); {
		if err := ctx.Err(); err != nil {
			return err
		}
		n, err := sf.port.Read(buf[off:])
		if err != nil {
			return err
		}
		if n == 0 {
			// The port's read timeout expired with nothing delivered.
			return fmt.Errorf("%w (waited %s for %d of %d bytes)", ErrTimeout, timeout, len(buf)-off, len(buf))
		}
		off += n
		if off < len(buf) && !time.Now().Before(deadline) {
			return fmt.Errorf("%w (waited %s for %d of %d bytes)", ErrTimeout, timeout, len(buf)-off, len(buf))
		}
	}
	return nil
}

// --- Command wrappers ---

// CmosLed switches the sensor's CMOS LED backlight. The light must be on for
// any capture to succeed.
func (sf *Client) CmosLed(ctx context.Context, on bool) error {
	var p uint32
	if on {
		p = 1
	}
	_, err := sf.Execute(ctx, CmdCmosLed, p, 0)
	return err
}

// GetEnrollCount returns the number of enrolled fingerprints.
func (sf *Client) GetEnrollCount(ctx context.Context) (uint32, error) {
	res, err := sf.Execute(ctx, CmdGetEnrollCount, 0, 0)
	if err != nil {
		return 0, err
	}
	return res.Parameter, nil
}

// CheckEnrolled reports whether the given ID holds an enrolled template.
func (sf *Client) CheckEnrolled(ctx context.Context, id uint32) (bool, error) {
	_, err := sf.Execute(ctx, CmdCheckEnrolled, id, 0)
	if err == nil {
		return true, nil
	}
	var se *StatusError
	if errors.As(err, &se) && se.Status == StatusIsNotUsed {
		return false, nil
	}
	return false, err
}

// EnrollStart begins an enrollment for the given ID. The device expects the
// turn sequence EnrollStart, Enroll1, Enroll2, Enroll3 with a capture before
// each turn.
func (sf *Client) EnrollStart(ctx context.Context, id uint32) error {
	_, err := sf.Execute(ctx, CmdEnrollStart, id, 0)
	return err
}

// Enroll1 makes the first enrollment template from the captured image.
func (sf *Client) Enroll1(ctx context.Context) error {
	_, err := sf.Execute(ctx, CmdEnroll1, 0, 0)
	return err
}

// Enroll2 makes the second enrollment template from the captured image.
func (sf *Client) Enroll2(ctx context.Context) error {
	_, err := sf.Execute(ctx, CmdEnroll2, 0, 0)
	return err
}

// Enroll3 makes the third template, merges all three and stores the result
// in the device database.
func (sf *Client) Enroll3(ctx context.Context) error {
	_, err := sf.Execute(ctx, CmdEnroll3, 0, 0)
	return err
}

// IsPressFinger reports whether a finger is currently on the sensor.
func (sf *Client) IsPressFinger(ctx context.Context) (bool, error) {
	res, err := sf.Execute(ctx, CmdIsPressFinger, 0, 0)
	if err != nil {
		return false, err
	}
	// The device answers 0 for pressed, nonzero for not pressed.
	return res.Parameter == 0, nil
}

// DeleteID removes the template stored under the given ID.
func (sf *Client) DeleteID(ctx context.Context, id uint32) error {
	_, err := sf.Execute(ctx, CmdDeleteID, id, 0)
	return err
}

// DeleteAll removes every template from the device database.
func (sf *Client) DeleteAll(ctx context.Context) error {
	_, err := sf.Execute(ctx, CmdDeleteAll, 0, 0)
	return err
}

// Verify matches the captured fingerprint against the template stored under
// the given ID. A mismatch surfaces as a StatusError with the access-denied
// kind.
func (sf *Client) Verify(ctx context.Context, id uint32) error {
	_, err := sf.Execute(ctx, CmdVerify, id, 0)
	return err
}

// Identify matches the captured fingerprint against the whole database and
// returns the matching ID.
func (sf *Client) Identify(ctx context.Context) (uint32, error) {
	res, err := sf.Execute(ctx, CmdIdentify, 0, 0)
	if err != nil {
		return 0, err
	}
	return res.Parameter, nil
}

// CaptureFinger captures a fingerprint image. With best set the device takes
// the slower, higher quality capture recommended for enrollment.
func (sf *Client) CaptureFinger(ctx context.Context, best bool) error {
	var p uint32
	if best {
		p = 1
	}
	_, err := sf.Execute(ctx, CmdCaptureFinger, p, 0)
	return err
}

// MakeTemplate builds a template from the captured image and downloads it
// without storing it in the database.
func (sf *Client) MakeTemplate(ctx context.Context) ([]byte, error) {
	res, err := sf.Execute(ctx, CmdMakeTemplate, 0, TemplateSize)
	if err != nil {
		return nil, err
	}
	return res.Payload, nil
}

// GetTemplate downloads the template stored under the given ID.
func (sf *Client) GetTemplate(ctx context.Context, id uint32) ([]byte, error) {
	res, err := sf.Execute(ctx, CmdGetTemplate, id, TemplateSize)
	if err != nil {
		return nil, err
	}
	return res.Payload, nil
}

// SetTemplate uploads a template into the slot with the given ID. The device
// acknowledges the command first, then receives the template as a data frame
// and acknowledges the store. The upload leg is not part of Execute's
// contract, so the wrapper guards the channel itself.
func (sf *Client) SetTemplate(ctx context.Context, id uint32, template []byte) error {
	if len(template) != TemplateSize {
		return fmt.Errorf("%w: template is %d bytes, want %d", ErrFrameLength, len(template), TemplateSize)
	}
	if atomic.LoadUint32(&sf.state) != stateOpen {
		return ErrNotOpen
	}
	if !atomic.CompareAndSwapInt32(&sf.busy, 0, 1) {
		return ErrBusy
	}
	defer atomic.StoreInt32(&sf.busy, 0)

	if _, err := sf.exchange(ctx, CmdSetTemplate, id); err != nil {
		return err
	}
	_, err := sf.sendData(ctx, template)
	return err
}

// GetImage downloads the captured 256x256 fingerprint image.
func (sf *Client) GetImage(ctx context.Context) ([]byte, error) {
	res, err := sf.Execute(ctx, CmdGetImage, 0, ImageSize)
	if err != nil {
		return nil, err
	}
	return res.Payload, nil
}

// GetRawImage captures and downloads a raw image from the sensor.
func (sf *Client) GetRawImage(ctx context.Context) ([]byte, error) {
	res, err := sf.Execute(ctx, CmdGetRawImage, 0, RawImageSize)
	if err != nil {
		return nil, err
	}
	return res.Payload, nil
}
