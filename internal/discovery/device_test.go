package discovery

import "testing"

func TestDevice_String(t *testing.T) {
	device := &Device{
		ID:       "a1b2c3",
		Hostname: "tempsense-a1b2c3.local.",
		IP:       "192.168.4.16",
		Port:     80,
	}

	expected := "Tempsense a1b2c3 (tempsense-a1b2c3.local.) at 192.168.4.16:80"
	if device.String() != expected {
		t.Errorf("Device.String() = %v, want %v", device.String(), expected)
	}
}

func TestDevice_BaseURL(t *testing.T) {
	tests := []struct {
		name     string
		device   *Device
		expected string
	}{
		{"standard HTTP port", &Device{IP: "192.168.4.16", Port: 80}, "http://192.168.4.16:80"},
		{"custom port", &Device{IP: "10.0.0.5", Port: 8080}, "http://10.0.0.5:8080"},
		{"IPv6", &Device{IP: "fe80::1", Port: 80}, "http://[fe80::1]:80"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.device.BaseURL(); got != tt.expected {
				t.Errorf("Device.BaseURL() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestDevice_GetMetadata(t *testing.T) {
	device := &Device{Metadata: map[string]string{"model": "tempsense", "fw": "1.4.0"}}

	if got := device.GetMetadata("model"); got != "tempsense" {
		t.Errorf("GetMetadata(model) = %q", got)
	}
	if got := device.Firmware(); got != "1.4.0" {
		t.Errorf("Firmware() = %q", got)
	}
	if got := device.GetMetadata("missing"); got != "" {
		t.Errorf("GetMetadata(missing) = %q", got)
	}
	if got := (&Device{}).GetMetadata("anything"); got != "" {
		t.Errorf("GetMetadata() with nil map = %q", got)
	}
}
