package mbus

import "testing"

func TestAssemble_EmptyBufferWantsStartByte(t *testing.T) {
	res := Assemble(nil)
	if res.Status != NeedMore || res.Missing != 1 {
		t.Fatalf("got status %d missing %d, want NeedMore(1)", res.Status, res.Missing)
	}
}

// Feeding a valid frame one byte at a time must converge on FrameComplete
// without ever reporting Invalid, and must agree with classifying the whole
// buffer in one call.
func TestAssemble_ByteAtATimeConvergence(t *testing.T) {
	frames := []*Frame{
		AckFrame(),
		NewShortFrame(ControlSndNke, 1),
		NewControlFrame(ControlSndUD, 3, CIApplicationReset),
		NewLongFrame(ControlRspUD, 1, 0x72, []byte{0x01, 0x02, 0x03}),
	}

	for _, f := range frames {
		raw, err := f.Pack()
		if err != nil {
			t.Fatalf("Pack %s failed: %v", f.Kind, err)
		}

		whole := Assemble(raw)
		if whole.Status != FrameComplete {
			t.Fatalf("%s: whole-buffer Assemble not complete: %+v", f.Kind, whole)
		}

		var res AssembleResult
		for i := 1; i <= len(raw); i++ {
			res = Assemble(raw[:i])
			if res.Status == FrameInvalid {
				t.Fatalf("%s: invalid at %d of %d bytes: %v", f.Kind, i, len(raw), res.Err)
			}
			if i < len(raw) {
				if res.Status != NeedMore {
					t.Fatalf("%s: complete after only %d of %d bytes", f.Kind, i, len(raw))
				}
				if res.Missing <= 0 {
					t.Fatalf("%s: NeedMore with missing %d", f.Kind, res.Missing)
				}
				if i+res.Missing > len(raw) {
					t.Fatalf("%s: over-read: %d bytes held, %d more requested, frame is %d",
						f.Kind, i, res.Missing, len(raw))
				}
			}
		}
		if res.Status != FrameComplete {
			t.Fatalf("%s: did not converge: %+v", f.Kind, res)
		}
		if res.Kind != whole.Kind {
			t.Errorf("%s: chunked kind %s differs from whole-buffer kind %s", f.Kind, res.Kind, whole.Kind)
		}
	}
}

func TestAssemble_BadStartByte(t *testing.T) {
	res := Assemble([]byte{0x42})
	if res.Status != FrameInvalid {
		t.Fatalf("got status %d, want FrameInvalid", res.Status)
	}
	if reason, ok := IsValidationError(res.Err); !ok || reason != BadStartByte {
		t.Fatalf("got %v, want BadStartByte", res.Err)
	}
}

func TestAssemble_LengthFieldDisagreement(t *testing.T) {
	// The redundant length fields differ; no number of further bytes can
	// repair that, so the buffer is invalid as soon as both are in.
	res := Assemble([]byte{0x68, 0x03, 0x04})
	if res.Status != FrameInvalid {
		t.Fatalf("got status %d, want FrameInvalid", res.Status)
	}
	if reason, ok := IsValidationError(res.Err); !ok || reason != LengthMismatch {
		t.Fatalf("got %v, want LengthMismatch", res.Err)
	}
}

func TestAssemble_ChecksumMismatchAtFullLength(t *testing.T) {
	// Correctly framed reply with a deliberately wrong check character:
	// sum over 08 01 72 is 0x7B, the frame carries 0xFF.
	raw := []byte{0x68, 0x03, 0x03, 0x68, 0x08, 0x01, 0x72, 0xFF, 0x16}

	res := Assemble(raw[:5])
	if res.Status != NeedMore || res.Missing != 4 {
		t.Fatalf("mid-frame: got %+v, want NeedMore(4)", res)
	}

	res = Assemble(raw)
	if res.Status != FrameInvalid {
		t.Fatalf("got status %d, want FrameInvalid", res.Status)
	}
	if reason, ok := IsValidationError(res.Err); !ok || reason != ChecksumMismatch {
		t.Fatalf("got %v, want ChecksumMismatch", res.Err)
	}
}

func TestAssemble_NeverOverReadsLongFrame(t *testing.T) {
	// With the three header bytes in, the assembler must ask for exactly
	// the announced remainder, not a byte more.
	res := Assemble([]byte{0x68, 0x07, 0x07})
	if res.Status != NeedMore {
		t.Fatalf("got status %d, want NeedMore", res.Status)
	}
	if want := 7 + LongFrameOverhead - 3; res.Missing != want {
		t.Fatalf("got missing %d, want %d", res.Missing, want)
	}
}
