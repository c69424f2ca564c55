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

import "fmt"

// FrameKind identifies one of the four M-Bus frame formats.
type FrameKind int

const (
	FrameACK FrameKind = iota
	FrameShort
	FrameControl
	FrameLong
)

func (k FrameKind) String() string {
	switch k {
	case FrameACK:
		return "ACK"
	case FrameShort:
		return "SHORT"
	case FrameControl:
		return "CONTROL"
	case FrameLong:
		return "LONG"
	}
	return "UNKNOWN"
}

// Frame is one M-Bus link-layer telegram. A Frame is built transiently per
// exchange and not reused; the zero value is not meaningful, use the
// constructors.
type Frame struct {
	Kind        FrameKind
	Control     byte
	Address     byte
	ControlInfo byte   // present for CONTROL and LONG frames only
	Payload     []byte // LONG frames only, 0..MaxPayloadSize bytes
}

// AckFrame returns the single-byte acknowledge telegram.
func AckFrame() *Frame {
	return &Frame{Kind: FrameACK}
}

// NewShortFrame builds a fixed-length frame carrying a control field and a
// primary address, such as SND_NKE or REQ_UD2.
func NewShortFrame(control, address byte) *Frame {
	return &Frame{Kind: FrameShort, Control: control, Address: address}
}

// NewControlFrame builds a variable-length frame without payload. The CI
// field selects the application-layer command.
func NewControlFrame(control, address, ci byte) *Frame {
	return &Frame{Kind: FrameControl, Control: control, Address: address, ControlInfo: ci}
}

// NewLongFrame builds a variable-length frame carrying payload bytes. The
// payload is referenced, not copied.
func NewLongFrame(control, address, ci byte, payload []byte) *Frame {
	return &Frame{Kind: FrameLong, Control: control, Address: address, ControlInfo: ci, Payload: payload}
}

// Checksum computes the M-Bus check character: the arithmetic sum modulo
// 256 over the control, address, CI and payload bytes.
func Checksum(data []byte) byte {
	var sum byte
	for _, b := range data {
		sum += b
	}
	return sum
}

// Pack serializes the frame into its wire representation, computing and
// appending the checksum.
func (f *Frame) Pack() ([]byte, error) {
	switch f.Kind {
	case FrameACK:
		return []byte{FrameAckStart}, nil

	case FrameShort:
		buf := []byte{FrameShortStart, f.Control, f.Address, 0, FrameStop}
		buf[3] = Checksum(buf[1:3])
		return buf, nil

	case FrameControl, FrameLong:
		if f.Kind == FrameControl && len(f.Payload) != 0 {
			return nil, fmt.Errorf("mbus: control frame cannot carry payload")
		}
		if len(f.Payload) > MaxPayloadSize {
			return nil, fmt.Errorf("%w: %d bytes", ErrPayloadTooLarge, len(f.Payload))
		}
		length := byte(3 + len(f.Payload)) // C + A + CI + payload
		buf := make([]byte, 0, int(length)+LongFrameOverhead)
		buf = append(buf, FrameLongStart, length, length, FrameLongStart)
		buf = append(buf, f.Control, f.Address, f.ControlInfo)
		buf = append(buf, f.Payload...)
		buf = append(buf, Checksum(buf[4:]), FrameStop)
		return buf, nil
	}
	return nil, fmt.Errorf("mbus: unknown frame kind %d", f.Kind)
}

// Verify checks a complete byte sequence against the wire encoding rules:
// start byte, redundant length fields, checksum and stop byte. It reports
// which frame kind matched, or a ValidationError naming the first rule that
// failed. Verify expects exactly one frame, no trailing bytes.
func Verify(raw []byte) (FrameKind, error) {
	if len(raw) == 0 {
		return 0, newValidationError(LengthMismatch, "empty buffer")
	}

	switch raw[0] {
	case FrameAckStart:
		if len(raw) != 1 {
			return 0, newValidationError(LengthMismatch, "ACK with %d trailing bytes", len(raw)-1)
		}
		return FrameACK, nil

	case FrameShortStart:
		if len(raw) != ShortFrameSize {
			return 0, newValidationError(LengthMismatch, "short frame of %d bytes", len(raw))
		}
		if sum := Checksum(raw[1:3]); raw[3] != sum {
			return 0, newValidationError(ChecksumMismatch, "got 0x%02X, want 0x%02X", raw[3], sum)
		}
		if raw[4] != FrameStop {
			return 0, newValidationError(BadStopByte, "got 0x%02X", raw[4])
		}
		return FrameShort, nil

	case FrameLongStart:
		if len(raw) < LongFrameMinSize {
			return 0, newValidationError(LengthMismatch, "long frame of %d bytes", len(raw))
		}
		length := raw[1]
		if raw[2] != length {
			return 0, newValidationError(LengthMismatch, "length fields 0x%02X and 0x%02X differ", raw[1], raw[2])
		}
		if int(length)+LongFrameOverhead != len(raw) {
			return 0, newValidationError(LengthMismatch, "length field %d but %d bytes on wire", length, len(raw))
		}
		if length < 3 {
			return 0, newValidationError(LengthMismatch, "length field %d below minimum 3", length)
		}
		if raw[3] != FrameLongStart {
			return 0, newValidationError(BadStartByte, "second start byte is 0x%02X", raw[3])
		}
		body := raw[4 : len(raw)-2]
		if sum := Checksum(body); raw[len(raw)-2] != sum {
			return 0, newValidationError(ChecksumMismatch, "got 0x%02X, want 0x%02X", raw[len(raw)-2], sum)
		}
		if raw[len(raw)-1] != FrameStop {
			return 0, newValidationError(BadStopByte, "got 0x%02X", raw[len(raw)-1])
		}
		if length == 3 {
			return FrameControl, nil
		}
		return FrameLong, nil
	}
	return 0, newValidationError(BadStartByte, "got 0x%02X", raw[0])
}

// Unpack verifies a complete byte sequence and extracts it into a Frame.
// The payload is copied out of raw.
func Unpack(raw []byte) (*Frame, error) {
	kind, err := Verify(raw)
	if err != nil {
		return nil, err
	}

	f := &Frame{Kind: kind}
	switch kind {
	case FrameACK:
		// no body
	case FrameShort:
		f.Control = raw[1]
		f.Address = raw[2]
	case FrameControl, FrameLong:
		f.Control = raw[4]
		f.Address = raw[5]
		f.ControlInfo = raw[6]
		if kind == FrameLong {
			f.Payload = make([]byte, len(raw)-LongFrameOverhead-3)
			copy(f.Payload, raw[7:len(raw)-2])
		}
	}
	return f, nil
}
