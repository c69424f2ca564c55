package main

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	mbus "github.com/sraeck/libmbus"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "meter.toml")
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestLoadRunConfig_FileValuesOverrideDefaults(t *testing.T) {
	path := writeConfig(t, `
device = "/dev/ttyUSB1"
address = 42
baud = 2400
debug = true
`)
	cfg, err := loadRunConfig(path, runConfig{Address: -1})
	if err != nil {
		t.Fatalf("loadRunConfig failed: %v", err)
	}
	if cfg.Device != "/dev/ttyUSB1" || cfg.Address != 42 || cfg.Baud != 2400 || !cfg.Debug {
		t.Errorf("config not applied: %+v", cfg)
	}
}

func TestLoadRunConfig_UndefinedKeysKeepDefaults(t *testing.T) {
	path := writeConfig(t, `device = "/dev/ttyAMA0"`)
	cfg, err := loadRunConfig(path, runConfig{Address: 7, Baud: 9600})
	if err != nil {
		t.Fatalf("loadRunConfig failed: %v", err)
	}
	if cfg.Address != 7 || cfg.Baud != 9600 {
		t.Errorf("defaults clobbered: %+v", cfg)
	}
}

func TestLoadRunConfig_MissingFile(t *testing.T) {
	if _, err := loadRunConfig(filepath.Join(t.TempDir(), "absent.toml"), runConfig{}); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestXMLRenderer(t *testing.T) {
	out, err := XMLRenderer{}.Render([]mbus.DataRecord{
		{Function: "C=0x08 A=1 CI=0x72", StorageNumber: 1, Unit: "raw", Value: "0C 14"},
	})
	if err != nil {
		t.Fatalf("Render failed: %v", err)
	}
	for _, want := range []string{"<MBusData>", `<DataRecord id="0">`, "<StorageNumber>1</StorageNumber>", "<Value>0C 14</Value>"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}
