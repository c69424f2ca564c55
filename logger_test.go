package mbus

import (
	"bytes"
	"strings"
	"testing"
)

func TestSimpleLogger_LevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	l := NewSimpleLogger(&buf, LevelWarning, "mbus")

	l.Write([]byte("untagged transport dump"))
	l.Write([]byte("[INFO] connected"))
	l.Write([]byte("[ERROR] checksum mismatch"))

	out := buf.String()
	if strings.Contains(out, "transport dump") || strings.Contains(out, "connected") {
		t.Errorf("messages below level leaked: %q", out)
	}
	if !strings.Contains(out, "checksum mismatch") {
		t.Errorf("error message dropped: %q", out)
	}
	if !strings.Contains(out, "<mbus>") {
		t.Errorf("prefix missing: %q", out)
	}
}

func TestSimpleLogger_SetLevelFromString(t *testing.T) {
	l := NewSimpleLogger(&bytes.Buffer{}, LevelNone, "mbus")
	if err := l.SetLevelFromString("debug"); err != nil {
		t.Fatalf("SetLevelFromString failed: %v", err)
	}
	if l.GetLevel() != LevelDebug {
		t.Errorf("level not applied: %v", l.GetLevel())
	}
	if err := l.SetLevelFromString("loud"); err == nil {
		t.Error("invalid level accepted")
	}
}

func TestSimpleLogger_AsTransportLogger(t *testing.T) {
	var buf bytes.Buffer
	l := NewSimpleLogger(&buf, LevelDebug, "mbus")

	port := &mockPort{reads: [][]byte{{0xE5}}}
	tr := NewTransport(port)
	tr.SetLogger(l)

	if err := tr.SendFrame(NewShortFrame(ControlSndNke, 1)); err != nil {
		t.Fatalf("SendFrame failed: %v", err)
	}
	if _, err := tr.ReceiveFrame(); err != nil {
		t.Fatalf("ReceiveFrame failed: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "sent 5 bytes") || !strings.Contains(out, "received ACK frame") {
		t.Errorf("transport activity not logged: %q", out)
	}
}
