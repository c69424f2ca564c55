// Copyright (C) 2026  sraeck
//
// This program is free software; you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation; either version 2 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License along
// with this program; if not, see <https://www.gnu.org/licenses/>.

package mbus

import (
	"fmt"
	"io"
)

// baudSwitchAttempts bounds the polling loop after a baud-switch request.
// The replying meter delays its answer by roughly 600 ms past the normal
// turnaround window, so several short reads poll for it instead of one
// long blocking read.
const baudSwitchAttempts = 10

// Client drives request/response exchanges with M-Bus slaves over one
// serial link. One link, one exchange in flight: the Client is not safe
// for concurrent use, matching the half-duplex line underneath. Running
// independent Clients on different devices needs no synchronization.
type Client struct {
	device string
	baud   int

	transport *Transport
	dial      func(device string, baud int) (Port, error)

	onSend    TraceFunc
	onReceive TraceFunc
	logger    io.Writer
}

// NewClient prepares a client for the given serial device. No I/O happens
// until Connect.
func NewClient(device string) *Client {
	return &Client{
		device: device,
		baud:   DefaultBaudRate,
		dial:   OpenSerialPort,
	}
}

// SetLogger directs client and transport debug output to w.
func (c *Client) SetLogger(w io.Writer) {
	c.logger = w
	if c.transport != nil {
		c.transport.SetLogger(w)
	}
}

// SetDiagnosticHooks registers raw-byte observers for every send and
// receive. The hooks survive reconnects and baud changes. They are called
// synchronously and must not block.
func (c *Client) SetDiagnosticHooks(onSend, onReceive TraceFunc) {
	c.onSend = onSend
	c.onReceive = onReceive
	if c.transport != nil {
		c.transport.OnSend = onSend
		c.transport.OnReceive = onReceive
	}
}

// Connect opens the serial device at the client's current baud rate.
func (c *Client) Connect() error {
	if c.transport != nil {
		return fmt.Errorf("mbus: already connected to %s", c.device)
	}
	port, err := c.dial(c.device, c.baud)
	if err != nil {
		return err
	}
	c.transport = NewTransport(port)
	c.transport.SetLineRate(c.baud)
	c.transport.OnSend = c.onSend
	c.transport.OnReceive = c.onReceive
	c.transport.SetLogger(c.logger)
	return nil
}

// Disconnect closes the link. Safe to call when already closed.
func (c *Client) Disconnect() error {
	if c.transport == nil {
		return nil
	}
	err := c.transport.Close()
	c.transport = nil
	return err
}

// BaudRate returns the currently configured line rate.
func (c *Client) BaudRate() int {
	return c.baud
}

// SetBaudRate changes the line rate. On an open link the device is closed
// and reopened with the new line configuration, so the rate is in effect
// before the next read or write; on unsupported rates the link state is
// left unchanged.
func (c *Client) SetBaudRate(baud int) error {
	if _, err := ReplyTimeout(baud); err != nil {
		return err
	}
	c.baud = baud
	if c.transport == nil {
		return nil
	}
	if err := c.Disconnect(); err != nil {
		return err
	}
	return c.Connect()
}

// Ping sends a link reset (SND_NKE) to the address and waits for the
// single-byte acknowledge.
func (c *Client) Ping(address byte) error {
	if c.transport == nil {
		return ErrNotConnected
	}
	if err := c.transport.SendFrame(NewShortFrame(ControlSndNke, address)); err != nil {
		return err
	}
	reply, err := c.transport.ReceiveFrame()
	if err != nil {
		return err
	}
	if reply.Kind != FrameACK {
		return fmt.Errorf("mbus: expected ACK to SND_NKE, got %s frame", reply.Kind)
	}
	return nil
}

// Initialize resynchronizes a slave's link layer at session start by
// sending SND_NKE twice; the first frame may be lost on the wire and a
// redundant reset is harmless by protocol rule. Replies are drained but
// not required.
func (c *Client) Initialize(address byte) error {
	if c.transport == nil {
		return ErrNotConnected
	}
	for i := 0; i < 2; i++ {
		if err := c.transport.SendFrame(NewShortFrame(ControlSndNke, address)); err != nil {
			return err
		}
		// A silent or garbled answer is fine here, only the send matters.
		_, _ = c.transport.ReceiveFrame()
	}
	return nil
}

// RequestData sends REQ_UD2 to the address and receives one reply frame.
func (c *Client) RequestData(address byte) (*Frame, error) {
	if c.transport == nil {
		return nil, ErrNotConnected
	}
	if err := c.transport.SendFrame(NewShortFrame(ControlReqUD2FCB, address)); err != nil {
		return nil, err
	}
	return c.transport.ReceiveFrame()
}

// RequestDataAtBaud performs the vendor baud-switch readout: the request
// goes out at baudLow tagged with the CI code for baudHigh, the link is
// reopened (some adapters only apply a rate change cleanly on a fresh
// open) and switched to baudHigh, and the delayed reply is polled for with
// up to ten short receive attempts. All attempts exhausted means
// ErrTimeout; the caller must not retry indefinitely.
func (c *Client) RequestDataAtBaud(address byte, baudLow, baudHigh int) (*Frame, error) {
	if c.transport == nil {
		return nil, ErrNotConnected
	}
	ci, err := baudrateCI(baudHigh)
	if err != nil {
		return nil, err
	}
	if err := c.SetBaudRate(baudLow); err != nil {
		return nil, err
	}

	if err := c.transport.SendFrame(NewControlFrame(ControlReqUD2FCB, address, ci)); err != nil {
		return nil, err
	}

	if err := c.Disconnect(); err != nil {
		return nil, err
	}
	if err := c.Connect(); err != nil {
		return nil, err
	}
	if err := c.SetBaudRate(baudHigh); err != nil {
		return nil, err
	}

	for i := 0; i < baudSwitchAttempts; i++ {
		reply, err := c.transport.ReceiveFrame()
		if err == nil {
			return reply, nil
		}
		if c.logger != nil {
			fmt.Fprintf(c.logger, "mbus: baud-switch poll %d/%d: %v\n", i+1, baudSwitchAttempts, err)
		}
	}
	return nil, ErrTimeout
}

// ApplicationReset asks the slave to restart its application layer and
// waits for the acknowledge.
func (c *Client) ApplicationReset(address byte) error {
	if c.transport == nil {
		return ErrNotConnected
	}
	if err := c.transport.SendFrame(NewControlFrame(ControlSndUD, address, CIApplicationReset)); err != nil {
		return err
	}
	reply, err := c.transport.ReceiveFrame()
	if err != nil {
		return err
	}
	if reply.Kind != FrameACK {
		return fmt.Errorf("mbus: expected ACK to application reset, got %s frame", reply.Kind)
	}
	return nil
}

// baudrateCI maps a target rate to the CI code that announces it.
func baudrateCI(baud int) (byte, error) {
	switch baud {
	case 300:
		return CIBaudrate300, nil
	case 1200:
		return CIBaudrate1200, nil
	case 2400:
		return CIBaudrate2400, nil
	case 9600:
		return CIBaudrate9600, nil
	}
	return 0, fmt.Errorf("%w: %d", ErrUnsupportedBaudRate, baud)
}
