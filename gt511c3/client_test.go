// Copyright 2025 The go-gt511c3 Authors. All rights reserved.
// Use of this source code is governed by the license that can be
// found in the LICENSE file.

package gt511c3

import (
	"bytes"
	"context"
	"encoding/binary"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakePort is a scripted in-memory Port. Reads drain a pre-queued receive
// buffer; an empty buffer behaves like an expired serial read timeout
// (0 bytes, nil error). An optional gate channel blocks Read until closed,
// for exercising the in-flight guard.
type fakePort struct {
	mu          sync.Mutex
	rx          bytes.Buffer
	tx          bytes.Buffer
	bauds       []int
	readTimeout time.Duration
	closed      bool
	gate        chan struct{}
}

func (p *fakePort) queue(frames ...[]byte) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, f := range frames {
		p.rx.Write(f)
	}
}

func (p *fakePort) written() []byte {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]byte(nil), p.tx.Bytes()...)
}

func (p *fakePort) pending() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.rx.Len()
}

func (p *fakePort) Configure(baudRate int) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.bauds = append(p.bauds, baudRate)
	return nil
}

func (p *fakePort) SetReadTimeout(d time.Duration) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.readTimeout = d
	return nil
}

func (p *fakePort) Read(b []byte) (int, error) {
	p.mu.Lock()
	gate := p.gate
	p.mu.Unlock()
	if gate != nil {
		<-gate
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.rx.Len() == 0 {
		return 0, nil
	}
	return p.rx.Read(b)
}

func (p *fakePort) Write(b []byte) (int, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.tx.Write(b)
}

func (p *fakePort) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.closed = true
	return nil
}

func newTestOption() *ClientOption {
	return NewOption().
		SetRequestDeviceInfo(false).
		SetResponseTimeout(50 * time.Millisecond)
}

// openTestClient opens a session over the fake port and clears the recorded
// open handshake so tests only see their own traffic.
func openTestClient(t *testing.T, port *fakePort, o *ClientOption) *Client {
	t.Helper()
	port.queue(responseFrame(true, 0))
	c := NewClient(port, o)
	_, err := c.Open(context.Background())
	require.NoError(t, err)
	port.mu.Lock()
	port.tx.Reset()
	port.mu.Unlock()
	return c
}

func deviceInfoPayload() []byte {
	p := make([]byte, DeviceInfoSize)
	binary.LittleEndian.PutUint32(p[0:], 0x00010203)
	binary.LittleEndian.PutUint32(p[4:], 2048)
	copy(p[8:], "GT511C3-SERIAL##")
	return p
}

func TestClientOpenWithDeviceInfo(t *testing.T) {
	port := &fakePort{}
	port.queue(responseFrame(true, 0), dataFrame(deviceInfoPayload()))

	o := NewOption().SetResponseTimeout(50 * time.Millisecond)
	c := NewClient(port, o)
	info, err := c.Open(context.Background())
	require.NoError(t, err)
	require.NotNil(t, info)

	assert.Equal(t, uint32(0x00010203), info.FirmwareVersion)
	assert.Equal(t, uint32(2048), info.IsoAreaMaxSize)
	assert.Equal(t, "GT511C3-SERIAL##", string(info.SerialNumber[:]))
	assert.True(t, c.IsOpen())

	// The handshake starts at the power-on baud and requests device info.
	assert.Equal(t, []int{ResetBaudRate}, port.bauds)
	assert.Equal(t, EncodeCommand(CmdOpen, 1), port.written())
}

func TestClientOpenWithoutDeviceInfo(t *testing.T) {
	port := &fakePort{}
	port.queue(responseFrame(true, 0))

	c := NewClient(port, newTestOption())
	info, err := c.Open(context.Background())
	require.NoError(t, err)
	assert.Nil(t, info)
	assert.Equal(t, EncodeCommand(CmdOpen, 0), port.written())
}

func TestClientOpenNackStaysClosed(t *testing.T) {
	port := &fakePort{}
	port.queue(responseFrame(false, uint32(StatusDeviceErr)))

	c := NewClient(port, newTestOption())
	_, err := c.Open(context.Background())
	var se *StatusError
	require.ErrorAs(t, err, &se)
	assert.Equal(t, StatusDeviceErr, se.Status)
	assert.False(t, c.IsOpen())

	// The session is re-openable after a failed handshake.
	port.queue(responseFrame(true, 0))
	_, err = c.Open(context.Background())
	require.NoError(t, err)
	assert.True(t, c.IsOpen())
}

func TestClientOpenRejectsExcessiveOperatingBaud(t *testing.T) {
	port := &fakePort{}
	c := NewClient(port, newTestOption().SetOperatingBaud(230400))
	_, err := c.Open(context.Background())
	assert.ErrorIs(t, err, ErrInvalidConfig)
	assert.Empty(t, port.bauds, "transport must not be touched with a bad config")
	assert.False(t, c.IsOpen())
}

func TestClientOpenSwitchesOperatingBaud(t *testing.T) {
	port := &fakePort{}
	port.queue(responseFrame(true, 0), responseFrame(true, 0))

	c := NewClient(port, newTestOption().SetOperatingBaud(MaxBaudRate))
	_, err := c.Open(context.Background())
	require.NoError(t, err)

	assert.Equal(t, []int{ResetBaudRate, MaxBaudRate}, port.bauds)
	want := append(EncodeCommand(CmdOpen, 0), EncodeCommand(CmdChangeBaudRate, MaxBaudRate)...)
	assert.Equal(t, want, port.written())
}

func TestClientOpenTwice(t *testing.T) {
	port := &fakePort{}
	c := openTestClient(t, port, newTestOption())
	_, err := c.Open(context.Background())
	assert.ErrorIs(t, err, ErrAlreadyOpen)
}

func TestClientExecuteAckWithoutPayload(t *testing.T) {
	port := &fakePort{}
	c := openTestClient(t, port, newTestOption())

	port.queue(responseFrame(true, 7))
	res, err := c.Execute(context.Background(), CmdGetEnrollCount, 0, 0)
	require.NoError(t, err)

	assert.Equal(t, uint32(7), res.Parameter)
	assert.Empty(t, res.Payload)
	assert.Equal(t, EncodeCommand(CmdGetEnrollCount, 0), port.written())
	assert.Zero(t, port.pending(), "no data-frame read may be attempted")
}

func TestClientExecuteReceivesPayload(t *testing.T) {
	port := &fakePort{}
	c := openTestClient(t, port, newTestOption())

	want := []byte{0x10, 0x20, 0x30, 0x40}
	port.queue(responseFrame(true, 0), dataFrame(want))
	res, err := c.Execute(context.Background(), CmdGetTemplate, 3, len(want))
	require.NoError(t, err)
	assert.Equal(t, want, res.Payload)
}

func TestClientExecuteNackSkipsDataRead(t *testing.T) {
	port := &fakePort{}
	c := openTestClient(t, port, newTestOption())

	trailing := dataFrame([]byte{1, 2, 3, 4})
	port.queue(responseFrame(false, uint32(StatusDBIsFull)), trailing)

	_, err := c.Execute(context.Background(), CmdEnroll3, 0, 4)
	require.Error(t, err)
	assert.Equal(t, KindResourceExhausted, KindOf(err))
	assert.Equal(t, len(trailing), port.pending(), "data frame must stay unread after a Nack")
}

func TestClientExecuteRequiresOpen(t *testing.T) {
	c := NewClient(&fakePort{}, newTestOption())
	_, err := c.Execute(context.Background(), CmdCmosLed, 1, 0)
	assert.ErrorIs(t, err, ErrNotOpen)
}

func TestClientExecuteRejectsOversizedPayload(t *testing.T) {
	port := &fakePort{}
	o := newTestOption().SetMaxPayload(8)
	c := openTestClient(t, port, o)

	port.queue(responseFrame(true, 0))
	_, err := c.Execute(context.Background(), CmdGetImage, 0, 9)
	assert.ErrorIs(t, err, ErrPayloadTooLarge)
	assert.Equal(t, KindCapacity, KindOf(err))
}

func TestClientExecuteTimesOut(t *testing.T) {
	port := &fakePort{}
	c := openTestClient(t, port, newTestOption())

	start := time.Now()
	_, err := c.Execute(context.Background(), CmdCaptureFinger, 0, 0)
	assert.ErrorIs(t, err, ErrTimeout)
	assert.Equal(t, KindCommunication, KindOf(err))
	assert.Less(t, time.Since(start), 5*time.Second, "timeout must be bounded, not indefinite")
}

func TestClientExecuteRejectsConcurrentCommand(t *testing.T) {
	port := &fakePort{}
	c := openTestClient(t, port, newTestOption())

	port.mu.Lock()
	port.gate = make(chan struct{})
	port.mu.Unlock()

	done := make(chan error, 1)
	go func() {
		_, err := c.Execute(context.Background(), CmdCmosLed, 1, 0)
		done <- err
	}()

	// Wait until the first command frame is on the wire; the busy guard is
	// held from before the write until the exchange completes.
	require.Eventually(t, func() bool {
		return len(port.written()) == CommandFrameSize
	}, time.Second, time.Millisecond)

	_, err := c.Execute(context.Background(), CmdGetEnrollCount, 0, 0)
	assert.ErrorIs(t, err, ErrBusy)

	port.queue(responseFrame(true, 0))
	close(port.gate)
	require.NoError(t, <-done)
}

func TestClientExecuteCorruptedResponse(t *testing.T) {
	port := &fakePort{}
	c := openTestClient(t, port, newTestOption())

	bad := responseFrame(true, 0)
	bad[6] ^= 0x01
	port.queue(bad)
	_, err := c.Execute(context.Background(), CmdIsPressFinger, 0, 0)
	assert.ErrorIs(t, err, ErrChecksumMismatch)
}

func TestClientCloseHappyPath(t *testing.T) {
	port := &fakePort{}
	c := openTestClient(t, port, newTestOption())

	port.queue(responseFrame(true, 0))
	require.NoError(t, c.Close(context.Background()))
	assert.False(t, c.IsOpen())
	assert.True(t, port.closed)
	assert.Equal(t, EncodeCommand(CmdClose, 0), port.written())
}

func TestClientCloseDespiteCorruptedAck(t *testing.T) {
	port := &fakePort{}
	c := openTestClient(t, port, newTestOption())

	bad := responseFrame(true, 0)
	bad[0] = 0x00
	port.queue(bad)

	err := c.Close(context.Background())
	require.Error(t, err, "the corrupted close acknowledgement is still reported")
	assert.False(t, c.IsOpen(), "the session ends Closed regardless")
	assert.True(t, port.closed)

	// Closing again is a no-op.
	assert.NoError(t, c.Close(context.Background()))
}

func TestClientCloseWhenDeviceSilent(t *testing.T) {
	port := &fakePort{}
	c := openTestClient(t, port, newTestOption())

	err := c.Close(context.Background())
	assert.ErrorIs(t, err, ErrTimeout)
	assert.False(t, c.IsOpen())
	assert.True(t, port.closed)
}

func TestClientContextCancellation(t *testing.T) {
	port := &fakePort{}
	c := openTestClient(t, port, newTestOption().SetResponseTimeout(10*time.Second))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.Execute(ctx, CmdCaptureFinger, 0, 0)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestClientWrappers(t *testing.T) {
	ctx := context.Background()

	t.Run("GetEnrollCount", func(t *testing.T) {
		port := &fakePort{}
		c := openTestClient(t, port, newTestOption())
		port.queue(responseFrame(true, 3))
		n, err := c.GetEnrollCount(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint32(3), n)
	})

	t.Run("CheckEnrolledFree", func(t *testing.T) {
		port := &fakePort{}
		c := openTestClient(t, port, newTestOption())
		port.queue(responseFrame(false, uint32(StatusIsNotUsed)))
		used, err := c.CheckEnrolled(ctx, 12)
		require.NoError(t, err)
		assert.False(t, used)
	})

	t.Run("CheckEnrolledUsed", func(t *testing.T) {
		port := &fakePort{}
		c := openTestClient(t, port, newTestOption())
		port.queue(responseFrame(true, 0))
		used, err := c.CheckEnrolled(ctx, 12)
		require.NoError(t, err)
		assert.True(t, used)
	})

	t.Run("IsPressFinger", func(t *testing.T) {
		port := &fakePort{}
		c := openTestClient(t, port, newTestOption())
		port.queue(responseFrame(true, 0))
		pressed, err := c.IsPressFinger(ctx)
		require.NoError(t, err)
		assert.True(t, pressed)

		port.queue(responseFrame(true, 0x12345))
		pressed, err = c.IsPressFinger(ctx)
		require.NoError(t, err)
		assert.False(t, pressed)
	})

	t.Run("VerifyDenied", func(t *testing.T) {
		port := &fakePort{}
		c := openTestClient(t, port, newTestOption())
		port.queue(responseFrame(false, uint32(StatusVerifyFailed)))
		err := c.Verify(ctx, 5)
		assert.Equal(t, KindAccessDenied, KindOf(err))
	})

	t.Run("Identify", func(t *testing.T) {
		port := &fakePort{}
		c := openTestClient(t, port, newTestOption())
		port.queue(responseFrame(true, 42))
		id, err := c.Identify(ctx)
		require.NoError(t, err)
		assert.Equal(t, uint32(42), id)
	})

	t.Run("GetTemplate", func(t *testing.T) {
		port := &fakePort{}
		c := openTestClient(t, port, newTestOption())
		tpl := bytes.Repeat([]byte{0x7E}, TemplateSize)
		port.queue(responseFrame(true, 0), dataFrame(tpl))
		got, err := c.GetTemplate(ctx, 0)
		require.NoError(t, err)
		assert.Equal(t, tpl, got)
		assert.Equal(t, EncodeCommand(CmdGetTemplate, 0), port.written())
	})

	t.Run("CmosLed", func(t *testing.T) {
		port := &fakePort{}
		c := openTestClient(t, port, newTestOption())
		port.queue(responseFrame(true, 0))
		require.NoError(t, c.CmosLed(ctx, true))
		assert.Equal(t, EncodeCommand(CmdCmosLed, 1), port.written())
	})
}

func TestClientSetTemplate(t *testing.T) {
	port := &fakePort{}
	c := openTestClient(t, port, newTestOption())

	tpl := bytes.Repeat([]byte{0x3C}, TemplateSize)
	port.queue(responseFrame(true, 0), responseFrame(true, 0))
	require.NoError(t, c.SetTemplate(context.Background(), 9, tpl))

	// Command frame first, then the template as one data frame.
	want := append(EncodeCommand(CmdSetTemplate, 9), EncodeData(tpl)...)
	assert.Equal(t, want, port.written())
}

func TestClientSetTemplateRejectedStore(t *testing.T) {
	port := &fakePort{}
	c := openTestClient(t, port, newTestOption())

	tpl := bytes.Repeat([]byte{0x3C}, TemplateSize)
	port.queue(responseFrame(true, 0), responseFrame(false, uint32(StatusInvalidPos)))
	err := c.SetTemplate(context.Background(), 200, tpl)
	require.Error(t, err)
	assert.Equal(t, KindBadState, KindOf(err))
}

func TestClientSetTemplateRejectedCommandSkipsUpload(t *testing.T) {
	port := &fakePort{}
	c := openTestClient(t, port, newTestOption())

	tpl := bytes.Repeat([]byte{0x3C}, TemplateSize)
	port.queue(responseFrame(false, uint32(StatusDBIsFull)))
	err := c.SetTemplate(context.Background(), 9, tpl)
	assert.Equal(t, KindResourceExhausted, KindOf(err))
	assert.Equal(t, EncodeCommand(CmdSetTemplate, 9), port.written(),
		"the template must not follow a rejected command")
}

func TestClientSetTemplateRejectsWrongSize(t *testing.T) {
	port := &fakePort{}
	c := openTestClient(t, port, newTestOption())

	err := c.SetTemplate(context.Background(), 0, make([]byte, 10))
	assert.ErrorIs(t, err, ErrFrameLength)
	assert.Empty(t, port.written(), "nothing may reach the wire with a bad template size")
}

func TestNewClientNilOption(t *testing.T) {
	port := &fakePort{}
	port.queue(responseFrame(true, 0), dataFrame(deviceInfoPayload()))

	c := NewClient(port, nil)
	info, err := c.Open(context.Background())
	require.NoError(t, err)
	assert.NotNil(t, info, "defaults request device info")
}

func TestDeviceInfoUnmarshalRejectsShortBuffer(t *testing.T) {
	var di DeviceInfo
	assert.ErrorIs(t, di.UnmarshalBinary(make([]byte, 10)), ErrFrameLength)
}
