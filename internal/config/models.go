package config

import (
	"time"

	"github.com/tempsense/tempsense/internal/settings"
)

// Registry represents the entire user configuration file.
// It stores what the CLI remembers about sensors plus application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by sensor ID
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device represents what is remembered about a single sensor.
type Device struct {
	Nickname   string           `yaml:"nickname,omitempty"`
	LastIP     string           `yaml:"last_ip,omitempty"`
	LastPort   int              `yaml:"last_port,omitempty"`
	LastSeen   time.Time        `yaml:"last_seen,omitempty"`
	LastRecord *settings.Record `yaml:"last_record,omitempty"` // Last configuration read from the sensor
	RecordedAt time.Time        `yaml:"recorded_at,omitempty"`
}

// Preferences represents application-wide user preferences.
type Preferences struct {
	AutoDiscover     bool `yaml:"auto_discover"`      // Scan with mDNS when no --device is given
	DiscoverTimeout  int  `yaml:"discover_timeout"`   // mDNS discovery timeout in seconds
	RequestTimeoutMs int  `yaml:"request_timeout_ms"` // Per-request HTTP timeout
	DefaultPort      int  `yaml:"default_port"`
}

// DefaultPreferences returns the preferences used when the file has none.
func DefaultPreferences() *Preferences {
	return &Preferences{
		AutoDiscover:     true,
		DiscoverTimeout:  5,
		RequestTimeoutMs: 1500,
		DefaultPort:      80,
	}
}

// DiscoverDuration returns the discovery timeout as a duration.
func (p *Preferences) DiscoverDuration() time.Duration {
	if p == nil || p.DiscoverTimeout <= 0 {
		return DefaultPreferences().DiscoverDuration()
	}
	return time.Duration(p.DiscoverTimeout) * time.Second
}

// RequestTimeout returns the per-request timeout as a duration.
func (p *Preferences) RequestTimeout() time.Duration {
	if p == nil || p.RequestTimeoutMs <= 0 {
		return DefaultPreferences().RequestTimeout()
	}
	return time.Duration(p.RequestTimeoutMs) * time.Millisecond
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     1,
		Devices:     make(map[string]*Device),
		Preferences: DefaultPreferences(),
	}
}

// GetDevice retrieves a sensor by ID.
// Returns nil if the sensor isn't in the registry.
func (r *Registry) GetDevice(id string) *Device {
	return r.Devices[id]
}

// EnsureDevice returns the entry for id, creating an empty one if needed.
func (r *Registry) EnsureDevice(id string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[id]; exists {
		return device
	}

	device := &Device{}
	r.Devices[id] = device
	return device
}

// UpdateDeviceLastSeen updates the last seen timestamp and address for a sensor.
func (r *Registry) UpdateDeviceLastSeen(id, ip string, port int) {
	device := r.EnsureDevice(id)
	device.LastSeen = time.Now()
	device.LastIP = ip
	device.LastPort = port
}

// RememberRecord stores rec as the last configuration read from the sensor.
func (r *Registry) RememberRecord(id string, rec settings.Record) {
	device := r.EnsureDevice(id)
	device.LastRecord = &rec
	device.RecordedAt = time.Now()
}

// SetDeviceNickname sets a user-friendly nickname for a sensor.
func (r *Registry) SetDeviceNickname(id, nickname string) {
	device := r.EnsureDevice(id)
	device.Nickname = nickname
}

// FindByAddress returns the ID of the sensor last seen at ip, if any.
func (r *Registry) FindByAddress(ip string) (string, bool) {
	for id, d := range r.Devices {
		if d.LastIP == ip {
			return id, true
		}
	}
	return "", false
}
