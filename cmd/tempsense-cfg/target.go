package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/tempsense/tempsense/internal/config"
	"github.com/tempsense/tempsense/internal/device"
	"github.com/tempsense/tempsense/internal/discovery"
	"github.com/tempsense/tempsense/internal/logging"
	"github.com/tempsense/tempsense/internal/settings"
)

// errNoDevice is returned when no device was given and none could be found.
var errNoDevice = errors.New("no device found. Use --device to specify an address")

// parseAddress splits "host" or "host:port" and fills in defaultPort.
func parseAddress(addr string, defaultPort int) (string, int, error) {
	addr = strings.TrimSpace(addr)
	if addr == "" {
		return "", 0, fmt.Errorf("empty device address")
	}
	if host, p, err := net.SplitHostPort(addr); err == nil {
		port, err := strconv.Atoi(p)
		if err != nil || port < 1 || port > 65535 {
			return "", 0, fmt.Errorf("invalid port in %q", addr)
		}
		return host, port, nil
	}
	return strings.Trim(addr, "[]"), defaultPort, nil
}

// resolveDevice picks the device a command talks to: the --device flag,
// otherwise the only device found by mDNS, otherwise the only device in
// the registry. --device accepts an address, or the ID or nickname of a
// remembered device.
func resolveDevice(ctx context.Context, reg *config.Registry, out io.Writer) (*discovery.Device, error) {
	if deviceAddr != "" {
		if id, ok := knownDeviceID(reg, deviceAddr); ok {
			return locateKnownDevice(ctx, reg, id, out)
		}
		host, port, err := parseAddress(deviceAddr, devicePort)
		if err != nil {
			return nil, err
		}
		dev := &discovery.Device{IP: host, Port: port, Hostname: host, DiscoveredAt: time.Now()}
		if id, ok := reg.FindByAddress(host); ok {
			dev.ID = id
		}
		return dev, nil
	}

	if reg.Preferences.AutoDiscover {
		fmt.Fprintln(out, "No device specified, scanning the network...")
		devices, err := discovery.DiscoverDevices(ctx, reg.Preferences.DiscoverDuration())
		if err != nil {
			logging.Warn("Discovery failed", zap.Error(err))
		}
		switch len(devices) {
		case 0:
		case 1:
			fmt.Fprintf(out, "Found %s\n\n", devices[0])
			return devices[0], nil
		default:
			var b strings.Builder
			fmt.Fprintf(&b, "multiple devices found, use --device to pick one:")
			for _, d := range devices {
				fmt.Fprintf(&b, "\n  %s", d)
			}
			return nil, errors.New(b.String())
		}
	}

	if dev := onlyKnownDevice(reg); dev != nil {
		fmt.Fprintf(out, "Using last known address of %s\n\n", dev)
		return dev, nil
	}
	return nil, errNoDevice
}

// knownDeviceID matches name against the registry's device IDs and
// nicknames. Entries keyed by address are left to the address path.
func knownDeviceID(reg *config.Registry, name string) (string, bool) {
	name = strings.TrimSpace(name)
	if isAddressKey(name) {
		return "", false
	}
	for id, d := range reg.Devices {
		if isAddressKey(id) {
			continue
		}
		if strings.EqualFold(id, name) || (d.Nickname != "" && strings.EqualFold(d.Nickname, name)) {
			return id, true
		}
	}
	return "", false
}

func isAddressKey(s string) bool {
	if _, _, err := net.SplitHostPort(s); err == nil {
		return true
	}
	return net.ParseIP(strings.Trim(s, "[]")) != nil
}

// locateKnownDevice finds a remembered device's current address over mDNS,
// falling back to its last known address when it does not answer.
func locateKnownDevice(ctx context.Context, reg *config.Registry, id string, out io.Writer) (*discovery.Device, error) {
	scanner := discovery.NewScanner()
	scanner.Timeout = reg.Preferences.DiscoverDuration()

	fmt.Fprintf(out, "Looking for %s on the network...\n", id)
	dev, err := scanner.WaitForDevice(ctx, id)
	if err == nil {
		fmt.Fprintf(out, "Found %s\n\n", dev)
		return dev, nil
	}
	logging.Debug("Known device not found over mDNS", zap.String("id", id), zap.Error(err))

	known := reg.GetDevice(id)
	if known == nil || known.LastIP == "" {
		return nil, fmt.Errorf("%s did not answer and has no known address: %w", id, err)
	}
	port := known.LastPort
	if port == 0 {
		port = reg.Preferences.DefaultPort
	}
	fmt.Fprintf(out, "%s did not answer mDNS, using last known address %s:%d\n\n", id, known.LastIP, port)
	return &discovery.Device{ID: id, IP: known.LastIP, Port: port, Hostname: known.LastIP}, nil
}

// onlyKnownDevice returns the registry's single device with an address.
func onlyKnownDevice(reg *config.Registry) *discovery.Device {
	var found *discovery.Device
	for id, d := range reg.Devices {
		if d.LastIP == "" {
			continue
		}
		if found != nil {
			return nil
		}
		port := d.LastPort
		if port == 0 {
			port = reg.Preferences.DefaultPort
		}
		found = &discovery.Device{ID: id, IP: d.LastIP, Port: port, Hostname: d.LastIP}
	}
	return found
}

// registryKey is the registry key for a device. Devices entered by address
// are keyed by the address until their ID is known.
func registryKey(dev *discovery.Device) string {
	if dev.ID != "" {
		return dev.ID
	}
	return net.JoinHostPort(dev.IP, strconv.Itoa(dev.Port))
}

func newClient(dev *discovery.Device) *device.Client {
	c := device.NewClient(dev.IP, dev.Port)
	c.SetTimeout(requestTimeout)
	return c
}

// troubleshoot turns a device error into tips for the failure box.
func troubleshoot(err error) []string {
	var tips []string
	for _, line := range strings.Split(device.GetTroubleshootingHint(err), "\n") {
		line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "•"))
		if line == "" || line == "Troubleshooting:" {
			continue
		}
		tips = append(tips, line)
	}
	return tips
}

// recorder saves what was learned about devices to the registry. The
// dashboard calls it from command goroutines, so it is serialized.
type recorder struct {
	mu  sync.Mutex
	reg *config.Registry
}

func (r *recorder) remember(dev *discovery.Device, rec settings.Record) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	key := registryKey(dev)
	r.reg.UpdateDeviceLastSeen(key, dev.IP, dev.Port)
	r.reg.RememberRecord(key, rec)
	if err := r.reg.Save(); err != nil {
		logging.Warn("Could not save device registry", zap.String("device", key), zap.Error(err))
		return err
	}
	return nil
}
