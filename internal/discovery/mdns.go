package discovery

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/tempsense/tempsense/internal/logging"
)

const (
	// ServiceType is the mDNS service type the sensors advertise.
	ServiceType = "_http._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// ModelName is the value of the "model" TXT record.
	ModelName = "tempsense"

	// DefaultScanTimeout is the default timeout for device discovery
	DefaultScanTimeout = 5 * time.Second

	// DefaultPort is the default HTTP port for the sensors
	DefaultPort = 80
)

// namePattern matches "tempsense-<id>" instance names and hostnames.
var namePattern = regexp.MustCompile(`(?i)^tempsense-([0-9a-z]+)(\.local\.?)?$`)

// Scanner handles mDNS device discovery
type Scanner struct {
	// Timeout is the maximum time to wait for device discovery
	Timeout time.Duration
}

// NewScanner creates a new mDNS scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout: DefaultScanTimeout,
	}
}

// ScanForDevices browses until the timeout or ctx ends and returns every
// sensor seen, one entry per ID, sorted by ID.
func (s *Scanner) ScanForDevices(ctx context.Context) ([]*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	var mu sync.Mutex
	found := make(map[string]*Device)
	done := make(chan struct{})

	go func() {
		defer close(done)
		for entry := range entries {
			device := ParseServiceEntry(entry)
			if device == nil {
				continue
			}
			mu.Lock()
			found[device.ID] = device
			mu.Unlock()
			logging.Debug("Sensor discovered",
				zap.String("id", device.ID),
				zap.String("ip", device.IP),
				zap.Int("port", device.Port),
			)
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	// zeroconf closes entries once the browse context ends
	select {
	case <-done:
	case <-time.After(time.Second):
	}

	mu.Lock()
	defer mu.Unlock()
	devices := make([]*Device, 0, len(found))
	for _, d := range found {
		devices = append(devices, d)
	}
	sort.Slice(devices, func(i, j int) bool { return devices[i].ID < devices[j].ID })
	return devices, nil
}

// WaitForDevice browses until the sensor with the given ID answers.
func (s *Scanner) WaitForDevice(ctx context.Context, id string) (*Device, error) {
	ctx, cancel := context.WithTimeout(ctx, s.Timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)
	deviceChan := make(chan *Device, 1)

	go func() {
		for entry := range entries {
			device := ParseServiceEntry(entry)
			if device != nil && strings.EqualFold(device.ID, id) {
				select {
				case deviceChan <- device:
				default:
				}
				cancel()
			}
		}
	}()

	if err := resolver.Browse(ctx, ServiceType, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	select {
	case device := <-deviceChan:
		return device, nil
	case <-ctx.Done():
		select {
		case device := <-deviceChan:
			return device, nil
		default:
		}
		return nil, fmt.Errorf("sensor %s not found within %s", id, s.Timeout)
	}
}

// ParseServiceEntry converts a zeroconf service entry to a Device.
// It returns nil for services that are not tempsense sensors or that
// announced no address.
func ParseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry == nil {
		return nil
	}

	metadata := parseTXT(entry.Text)

	id := ""
	if m := namePattern.FindStringSubmatch(entry.Instance); len(m) > 1 {
		id = m[1]
	} else if m := namePattern.FindStringSubmatch(entry.HostName); len(m) > 1 {
		id = m[1]
	} else if strings.EqualFold(metadata["model"], ModelName) {
		id = metadata["id"]
		if id == "" {
			id = entry.Instance
		}
	}
	if id == "" {
		return nil
	}

	var ip string
	if len(entry.AddrIPv4) > 0 {
		ip = entry.AddrIPv4[0].String()
	} else if len(entry.AddrIPv6) > 0 {
		ip = entry.AddrIPv6[0].String()
	}
	if ip == "" {
		return nil
	}

	port := entry.Port
	if port == 0 {
		port = DefaultPort
	}

	return &Device{
		ID:           strings.ToLower(id),
		Instance:     entry.Instance,
		Hostname:     entry.HostName,
		IP:           ip,
		Port:         port,
		Metadata:     metadata,
		DiscoveredAt: time.Now(),
	}
}

func parseTXT(records []string) map[string]string {
	metadata := make(map[string]string, len(records))
	for _, txt := range records {
		key, value, _ := strings.Cut(txt, "=")
		metadata[key] = value
	}
	return metadata
}

// DiscoverDevices is a convenience function that scans with a custom timeout
func DiscoverDevices(ctx context.Context, timeout time.Duration) ([]*Device, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	return scanner.ScanForDevices(ctx)
}
