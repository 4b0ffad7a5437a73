package discovery

import (
	"fmt"
	"time"
)

// Device represents a sensor found on the local network
type Device struct {
	// ID is the sensor's identifier, usually the last bytes of its MAC
	// (e.g., "a1b2c3")
	ID string

	// Instance is the mDNS service instance name (e.g., "tempsense-a1b2c3")
	Instance string

	// Hostname is the mDNS hostname (e.g., "tempsense-a1b2c3.local.")
	Hostname string

	// IP is the IPv4 address, or IPv6 when no IPv4 address was announced
	IP string

	// Port is the HTTP port (typically 80)
	Port int

	// Metadata contains the mDNS TXT record data
	// Common fields: "model=tempsense", "id=a1b2c3", "fw=1.4.0"
	Metadata map[string]string

	// DiscoveredAt is when the device was discovered
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	return fmt.Sprintf("Tempsense %s (%s) at %s:%d", d.ID, d.Hostname, d.IP, d.Port)
}

// BaseURL returns the HTTP base URL for the device
func (d *Device) BaseURL() string {
	return fmt.Sprintf("http://%s:%d", hostForURL(d.IP), d.Port)
}

// Firmware returns the firmware version from the TXT records, if announced.
func (d *Device) Firmware() string {
	return d.GetMetadata("fw")
}

// GetMetadata retrieves a metadata value by key, or returns empty string if not found
func (d *Device) GetMetadata(key string) string {
	if d.Metadata == nil {
		return ""
	}
	return d.Metadata[key]
}

func hostForURL(ip string) string {
	for i := 0; i < len(ip); i++ {
		if ip[i] == ':' {
			return "[" + ip + "]"
		}
	}
	return ip
}
