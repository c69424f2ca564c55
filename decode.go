package mbus

import "fmt"

// The link layer stops at validated frames; what the payload means is the
// application layer's business. These interfaces are the seam where a
// record decoder and a renderer plug in.

// DataRecord is one decoded application-layer record as the renderer
// consumes it.
type DataRecord struct {
	Function      string
	StorageNumber int
	Unit          string
	Value         string
}

// RecordDecoder turns a validated reply frame into data records. The
// frame's payload bytes are passed through uninterpreted by the core.
type RecordDecoder interface {
	Decode(f *Frame) ([]DataRecord, error)
}

// Renderer produces a display string from decoded records.
type Renderer interface {
	Render(records []DataRecord) (string, error)
}

// RawDecoder is the fallback decoder: it emits the frame's link-layer
// fields and the raw payload as hex, one record per frame.
type RawDecoder struct{}

// Decode implements RecordDecoder.
func (RawDecoder) Decode(f *Frame) ([]DataRecord, error) {
	if f == nil {
		return nil, fmt.Errorf("mbus: nil frame")
	}
	// Storage number 0 is the current value; without interpreting the
	// payload there is nothing else to claim.
	rec := DataRecord{
		Function:      fmt.Sprintf("C=0x%02X A=%d CI=0x%02X", f.Control, f.Address, f.ControlInfo),
		StorageNumber: 0,
		Unit:          "raw",
		Value:         fmt.Sprintf("% X", f.Payload),
	}
	return []DataRecord{rec}, nil
}
