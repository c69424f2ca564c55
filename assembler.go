package mbus

// AssembleStatus classifies the state of a partially received buffer.
type AssembleStatus int

const (
	// NeedMore means the buffer cannot be judged yet; read Missing more bytes.
	NeedMore AssembleStatus = iota
	// FrameComplete means the buffer holds exactly one well-formed frame.
	FrameComplete
	// FrameInvalid means the buffer can never become a well-formed frame.
	FrameInvalid
)

// AssembleResult is the outcome of one Assemble call.
type AssembleResult struct {
	Status  AssembleStatus
	Missing int       // valid when Status == NeedMore
	Kind    FrameKind // valid when Status == FrameComplete
	Err     error     // valid when Status == FrameInvalid
}

// Assemble inspects the bytes received so far and decides whether they form
// a complete frame, can never form one, or how many more bytes must be read
// before that question can be answered. It is pure and reentrant: the
// caller appends newly read bytes to its buffer and calls again. It never
// asks for more bytes than the frame can contain, since over-reading would
// swallow the start of the next frame on the line.
//
// The expected total is knowable early: an ACK is its start byte alone, a
// short frame is always five bytes, and a long frame announces its size in
// the length field once the first three bytes are in.
func Assemble(buf []byte) AssembleResult {
	if len(buf) == 0 {
		return AssembleResult{Status: NeedMore, Missing: 1}
	}

	switch buf[0] {
	case FrameAckStart:
		return complete(buf)

	case FrameShortStart:
		if len(buf) < ShortFrameSize {
			return AssembleResult{Status: NeedMore, Missing: ShortFrameSize - len(buf)}
		}
		return complete(buf)

	case FrameLongStart:
		if len(buf) < 3 {
			return AssembleResult{Status: NeedMore, Missing: 3 - len(buf)}
		}
		if buf[1] != buf[2] {
			return AssembleResult{
				Status: FrameInvalid,
				Err:    newValidationError(LengthMismatch, "length fields 0x%02X and 0x%02X differ", buf[1], buf[2]),
			}
		}
		total := int(buf[1]) + LongFrameOverhead
		if len(buf) < total {
			return AssembleResult{Status: NeedMore, Missing: total - len(buf)}
		}
		return complete(buf)
	}

	return AssembleResult{
		Status: FrameInvalid,
		Err:    newValidationError(BadStartByte, "got 0x%02X", buf[0]),
	}
}

// complete runs full validation once the buffer has reached the length the
// start byte and length field demand.
func complete(buf []byte) AssembleResult {
	kind, err := Verify(buf)
	if err != nil {
		return AssembleResult{Status: FrameInvalid, Err: err}
	}
	return AssembleResult{Status: FrameComplete, Kind: kind}
}
