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
	"time"
)

// maxConsecutiveTimeouts bounds the receive loop: after this many empty
// reads in a row the line is considered silent. Total wait is therefore
// roughly 3x the port's reply timeout.
const maxConsecutiveTimeouts = 3

// TraceFunc observes raw bytes crossing the transport boundary. Hooks are
// invoked synchronously and must not block, or they stall the link.
type TraceFunc func(raw []byte)

// Transport bridges the pure frame assembler to one physical serial line.
// It is strictly sequential: the protocol is half-duplex, so there is never
// more than one read or write in flight, and a Transport must not be shared
// between goroutines.
type Transport struct {
	port    Port
	baud    int    // line rate, for the transmission-time fallback in SendFrame
	scratch []byte // read staging, sized to the largest frame

	// Diagnostic hooks, per transport instance rather than process-wide so
	// independent links can be traced independently.
	OnSend    TraceFunc
	OnReceive TraceFunc

	logger io.Writer
}

// NewTransport wraps an open port. Ownership of the port passes to the
// transport; Close releases it.
func NewTransport(port Port) *Transport {
	return &Transport{
		port:    port,
		scratch: make([]byte, MaxFrameSize),
	}
}

// SetLogger directs transport debug output to w. A nil w disables it.
func (t *Transport) SetLogger(w io.Writer) {
	t.logger = w
}

// SetLineRate tells the transport the baud rate of its port, enabling the
// transmission-time wait in SendFrame on ports that cannot drain.
func (t *Transport) SetLineRate(baud int) {
	t.baud = baud
}

// SendFrame packs the frame and writes it to the line, blocking until the
// bytes are physically transmitted: ports implementing Drainer are asked
// to drain their output queue, any other port with a known line rate is
// covered by sleeping out the frame's transmission time.
func (t *Transport) SendFrame(f *Frame) error {
	data, err := f.Pack()
	if err != nil {
		return err
	}

	for wrote := 0; wrote < len(data); {
		n, err := t.port.Write(data[wrote:])
		if err != nil {
			return fmt.Errorf("%w: after %d bytes: %v", ErrWriteFailed, wrote, err)
		}
		wrote += n
	}

	// Wait until the complete frame is on the wire; the reply window is
	// measured from the last transmitted bit.
	if d, ok := t.port.(Drainer); ok {
		if err := d.Drain(); err != nil {
			return fmt.Errorf("%w: drain: %v", ErrWriteFailed, err)
		}
	} else if t.baud > 0 {
		// No drain on this port, so wait out the frame's time on the
		// wire instead: 11 bits per character at 8E1.
		time.Sleep(time.Duration(len(data)*11) * time.Second / time.Duration(t.baud))
	}

	if t.logger != nil {
		fmt.Fprintf(t.logger, "mbus: sent %d bytes: % X\n", len(data), data)
	}
	if t.OnSend != nil {
		t.OnSend(data)
	}
	return nil
}

// ReceiveFrame runs the reception loop: read exactly as many bytes as the
// assembler asks for, append, reclassify, repeat. Three consecutive empty
// reads end the loop, yielding ErrTimeout when nothing arrived at all and
// ErrPartialFrame when bytes arrived but never completed a frame. A buffer
// the assembler rejects surfaces as a ValidationError, which is "garbage
// received", not "no response".
func (t *Transport) ReceiveFrame() (*Frame, error) {
	buf := make([]byte, 0, MaxFrameSize)
	need := 1
	timeouts := 0

	for {
		if need > len(t.scratch) {
			need = len(t.scratch)
		}
		n, err := t.port.Read(t.scratch[:need])
		if err != nil {
			return nil, fmt.Errorf("mbus: read failed: %w", err)
		}
		if n == 0 {
			timeouts++
			if timeouts >= maxConsecutiveTimeouts {
				if len(buf) == 0 {
					return nil, ErrTimeout
				}
				t.traceReceive(buf)
				return nil, fmt.Errorf("%w: %d bytes, %d still missing", ErrPartialFrame, len(buf), need)
			}
			continue
		}
		timeouts = 0
		buf = append(buf, t.scratch[:n]...)

		res := Assemble(buf)
		switch res.Status {
		case NeedMore:
			need = res.Missing
		case FrameInvalid:
			t.traceReceive(buf)
			return nil, res.Err
		case FrameComplete:
			t.traceReceive(buf)
			if t.logger != nil {
				fmt.Fprintf(t.logger, "mbus: received %s frame, %d bytes\n", res.Kind, len(buf))
			}
			return Unpack(buf)
		}
	}
}

// traceReceive fires the receive hook for any bytes taken off the line,
// complete frame or not.
func (t *Transport) traceReceive(raw []byte) {
	if t.OnReceive != nil {
		t.OnReceive(raw)
	}
}

// Close releases the underlying port.
func (t *Transport) Close() error {
	if t.port == nil {
		return nil
	}
	err := t.port.Close()
	t.port = nil
	return err
}
