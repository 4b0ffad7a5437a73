package simulator

import (
	"math"
	"math/rand"
	"sync"
	"time"

	"github.com/tempsense/tempsense/internal/display"
	"github.com/tempsense/tempsense/internal/settings"
)

// Readings drift around these values.
const (
	BaseTemperature = 24.5
	BaseHumidity    = 45.2

	maxTemperatureDrift = 1.5
	maxHumidityDrift    = 5.0
)

// Device is the simulated sensor state: a stored record and a pair of
// slowly drifting readings.
type Device struct {
	mu       sync.Mutex
	model    *settings.Model
	rng      *rand.Rand
	temp     float64
	humidity float64
	updates  int
	started  time.Time
}

// NewDevice creates a device holding the default record.
func NewDevice(seed int64) *Device {
	return &Device{
		model:    settings.NewModel(),
		rng:      rand.New(rand.NewSource(seed)),
		temp:     BaseTemperature,
		humidity: BaseHumidity,
		started:  time.Now(),
	}
}

// Record returns the stored configuration.
func (d *Device) Record() settings.Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.model.Snapshot()
}

// Update merges the fields present in p over the stored record and
// returns the result. Numbers are clamped as the firmware does.
func (d *Device) Update(p settings.Partial) settings.Record {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.model.LoadFrom(p.Over(d.model.Snapshot()))
	d.updates++
	return d.model.Snapshot()
}

// Updates returns how many /updateConfig requests were applied.
func (d *Device) Updates() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.updates
}

// Sample advances the random walk by one step and returns the reading.
func (d *Device) Sample() display.Sample {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.temp = walk(d.rng, d.temp, BaseTemperature, maxTemperatureDrift, 0.1)
	d.humidity = walk(d.rng, d.humidity, BaseHumidity, maxHumidityDrift, 0.4)

	return display.Sample{
		Temperature: round(d.temp, 2),
		Humidity:    round(d.humidity, 1),
	}
}

// Uptime returns how long the device has been running.
func (d *Device) Uptime() time.Duration {
	return time.Since(d.started)
}

// walk moves v by up to ±step, staying within drift of base.
func walk(rng *rand.Rand, v, base, drift, step float64) float64 {
	v += (rng.Float64()*2 - 1) * step
	return math.Max(base-drift, math.Min(base+drift, v))
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

// EncodeConfig renders a record the way the firmware's /getConfig does:
// the JSON field names of the record, with booleans as 1 or 0.
func EncodeConfig(r settings.Record) map[string]any {
	out := make(map[string]any, len(settings.Catalogue))
	for _, spec := range settings.Catalogue {
		v, ok := r.Value(spec.Field)
		if !ok {
			continue
		}
		if b, isBool := v.(bool); isBool {
			if b {
				v = 1
			} else {
				v = 0
			}
		}
		out[string(spec.Field)] = v
	}
	return out
}
