package discovery

import (
	"context"
	"fmt"

	"github.com/grandcat/zeroconf"
	"go.uber.org/zap"

	"github.com/tempsense/tempsense/internal/logging"
)

// InstanceName returns the mDNS instance name a sensor with this ID uses.
func InstanceName(id string) string {
	return "tempsense-" + id
}

// AdvertiseTXT returns the TXT records a sensor announces.
func AdvertiseTXT(id, firmware string) []string {
	txt := []string{"model=" + ModelName, "id=" + id, "path=/"}
	if firmware != "" {
		txt = append(txt, "fw="+firmware)
	}
	return txt
}

// Advertise announces a sensor on the local network until ctx ends. The
// simulator uses it so the CLI can find it the same way it finds hardware.
func Advertise(ctx context.Context, id string, port int, firmware string) error {
	server, err := zeroconf.Register(InstanceName(id), ServiceType, ServiceDomain, port,
		AdvertiseTXT(id, firmware), nil)
	if err != nil {
		return fmt.Errorf("failed to register mDNS service: %w", err)
	}
	defer server.Shutdown()

	logging.Info("Advertising via mDNS",
		zap.String("instance", InstanceName(id)),
		zap.String("service", ServiceType),
		zap.Int("port", port),
	)

	<-ctx.Done()
	return nil
}
