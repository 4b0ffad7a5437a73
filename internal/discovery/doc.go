// Package discovery finds tempsense sensors on the local network with mDNS.
//
// Sensors advertise an "_http._tcp" service. A service is treated as a
// sensor when its instance name or hostname is "tempsense-<id>", or when
// its TXT records include "model=tempsense".
//
// # Usage Example
//
//	devices, err := discovery.DiscoverDevices(ctx, 5*time.Second)
//	if err != nil {
//	    return err
//	}
//	for _, d := range devices {
//	    fmt.Printf("Found: %s at %s\n", d.ID, d.BaseURL())
//	}
//
// Advertise does the reverse and is used by the simulator.
//
// # Network Requirements
//
// - Requires multicast support on the network interface
// - Devices must be on the same local network segment
// - Firewall must allow mDNS (UDP port 5353)
package discovery
