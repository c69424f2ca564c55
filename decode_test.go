package mbus

import (
	"strings"
	"testing"
)

func TestRawDecoder_EmitsLinkFieldsAndStorageNumber(t *testing.T) {
	f := NewLongFrame(ControlRspUD, 3, 0x72, []byte{0x0C, 0x14})
	records, err := RawDecoder{}.Decode(f)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(records) != 1 {
		t.Fatalf("got %d records, want 1", len(records))
	}
	r := records[0]
	if !strings.Contains(r.Function, "A=3") || !strings.Contains(r.Function, "CI=0x72") {
		t.Errorf("link fields missing: %q", r.Function)
	}
	if r.StorageNumber != 0 {
		t.Errorf("raw decode must report the current-value storage number, got %d", r.StorageNumber)
	}
	if r.Value != "0C 14" {
		t.Errorf("payload hex mismatch: %q", r.Value)
	}
}

func TestRawDecoder_NilFrame(t *testing.T) {
	if _, err := (RawDecoder{}).Decode(nil); err == nil {
		t.Fatal("Decode accepted nil frame")
	}
}
