package main

import (
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tempsense/tempsense/internal/config"
	"github.com/tempsense/tempsense/internal/device"
	"github.com/tempsense/tempsense/internal/discovery"
	"github.com/tempsense/tempsense/internal/settings"
)

func TestParseAddress(t *testing.T) {
	tests := []struct {
		in       string
		wantHost string
		wantPort int
		wantErr  bool
	}{
		{"192.168.1.40", "192.168.1.40", 80, false},
		{"192.168.1.40:8080", "192.168.1.40", 8080, false},
		{" sensor.local ", "sensor.local", 80, false},
		{"[fe80::1]:81", "fe80::1", 81, false},
		{"192.168.1.40:http", "", 0, true},
		{"192.168.1.40:70000", "", 0, true},
		{"", "", 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			host, port, err := parseAddress(tt.in, 80)
			if (err != nil) != tt.wantErr {
				t.Fatalf("parseAddress(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if host != tt.wantHost || port != tt.wantPort {
				t.Errorf("parseAddress(%q) = %q, %d; want %q, %d", tt.in, host, port, tt.wantHost, tt.wantPort)
			}
		})
	}
}

func TestRegistryKey(t *testing.T) {
	if got := registryKey(&discovery.Device{ID: "abc123", IP: "10.0.0.2", Port: 80}); got != "abc123" {
		t.Errorf("registryKey with ID = %q", got)
	}
	if got := registryKey(&discovery.Device{IP: "10.0.0.2", Port: 8080}); got != "10.0.0.2:8080" {
		t.Errorf("registryKey without ID = %q", got)
	}
}

func TestOnlyKnownDevice(t *testing.T) {
	reg := config.NewRegistry()
	if dev := onlyKnownDevice(reg); dev != nil {
		t.Fatalf("empty registry returned %v", dev)
	}

	reg.UpdateDeviceLastSeen("a1", "10.0.0.2", 0)
	dev := onlyKnownDevice(reg)
	if dev == nil || dev.ID != "a1" || dev.Port != reg.Preferences.DefaultPort {
		t.Fatalf("onlyKnownDevice = %+v", dev)
	}

	reg.UpdateDeviceLastSeen("b2", "10.0.0.3", 80)
	if dev := onlyKnownDevice(reg); dev != nil {
		t.Errorf("two known devices should be ambiguous, got %v", dev)
	}
}

func TestTroubleshoot(t *testing.T) {
	err := &device.DeviceError{Type: device.ErrTypeTimeout, Message: "timed out", Err: errors.New("deadline")}
	tips := troubleshoot(err)
	if len(tips) == 0 {
		t.Fatal("expected tips for a timeout")
	}
	for _, tip := range tips {
		if tip == "Troubleshooting:" || tip[0] == ' ' {
			t.Errorf("tip not cleaned: %q", tip)
		}
	}
}

func TestRecorderRemember(t *testing.T) {
	dir := t.TempDir()
	t.Setenv("HOME", dir)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, ".config"))
	reg := config.NewRegistry()

	r := &recorder{reg: reg}
	rec := settings.Defaults()
	rec.LEDIntensity = 40
	dev := &discovery.Device{ID: "a1", IP: "10.0.0.2", Port: 80}
	_ = r.remember(dev, rec)

	d := reg.GetDevice("a1")
	if d == nil || d.LastRecord == nil {
		t.Fatal("record not remembered")
	}
	if d.LastRecord.LEDIntensity != 40 || d.LastIP != "10.0.0.2" {
		t.Errorf("remembered %+v", d)
	}
}

func TestKnownDeviceID(t *testing.T) {
	reg := config.NewRegistry()
	reg.UpdateDeviceLastSeen("a1b2c3", "10.0.0.2", 80)
	reg.SetDeviceNickname("a1b2c3", "Bathroom")
	reg.UpdateDeviceLastSeen("10.0.0.9:80", "10.0.0.9", 80)

	tests := []struct {
		name   string
		wantID string
		wantOK bool
	}{
		{"a1b2c3", "a1b2c3", true},
		{"A1B2C3", "a1b2c3", true},
		{"bathroom", "a1b2c3", true},
		{"10.0.0.2", "", false},
		{"10.0.0.9:80", "", false},
		{"kitchen", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := knownDeviceID(reg, tt.name)
			if id != tt.wantID || ok != tt.wantOK {
				t.Errorf("knownDeviceID(%q) = %q, %v; want %q, %v", tt.name, id, ok, tt.wantID, tt.wantOK)
			}
		})
	}
}

func TestLocateKnownDeviceFallsBackToLastAddress(t *testing.T) {
	reg := config.NewRegistry()
	reg.Preferences.DiscoverTimeout = 1
	reg.UpdateDeviceLastSeen("fffff0", "10.0.0.2", 8080)

	var out strings.Builder
	dev, err := locateKnownDevice(context.Background(), reg, "fffff0", &out)
	if err != nil {
		t.Fatalf("locateKnownDevice() error = %v", err)
	}
	if dev.ID != "fffff0" || dev.IP != "10.0.0.2" || dev.Port != 8080 {
		t.Errorf("device = %+v", dev)
	}
	if !strings.Contains(out.String(), "last known address") {
		t.Errorf("fallback not reported:\n%s", out.String())
	}

	if _, err := locateKnownDevice(context.Background(), reg, "nowhere", &out); err == nil {
		t.Error("device without an address should fail")
	}
}

func TestDiffLines(t *testing.T) {
	old := settings.Defaults()
	new := old
	new.LEDIntensity = 40
	new.ScrollingEnabled = false

	lines := diffLines(old, new)
	if len(lines) != 2 {
		t.Fatalf("diffLines() = %q, want 2 lines", lines)
	}
	for _, l := range lines {
		if strings.Contains(l, "===") {
			t.Errorf("title leaked into lines: %q", l)
		}
	}
	if !strings.HasPrefix(lines[0], "scrollingEnabled:") && !strings.HasPrefix(lines[1], "scrollingEnabled:") {
		t.Errorf("scrollingEnabled change missing: %q", lines)
	}
	if got := diffLines(old, old); len(got) != 1 || !strings.Contains(got[0], "no differences") {
		t.Errorf("diffLines(identical) = %q", got)
	}
}
