package session

import (
	"time"

	"github.com/tempsense/tempsense/internal/display"
	"github.com/tempsense/tempsense/internal/settings"
)

// ConfigLoadedMsg carries the result of a GET /getConfig.
type ConfigLoadedMsg struct {
	Seq     uint64
	Partial settings.Partial
	Err     error
}

// PollTickMsg fires every poll interval once the session is Ready.
type PollTickMsg struct {
	At time.Time
}

// TelemetryMsg carries the result of one GET /getSensorData.
type TelemetryMsg struct {
	Seq    uint64
	Sample display.Sample
	Err    error
	At     time.Time
}

// PushResultMsg carries the result of one POST /updateConfig.
type PushResultMsg struct {
	Seq     uint64
	Trigger settings.Field
	Record  settings.Record
	Reply   string
	Err     error
}

// Stats counts what the session has sent and received.
type Stats struct {
	PushesSent   int
	PushesOK     int
	PushesFailed int
	InFlight     int
	LastPushErr  error

	TelemetryOK      int
	TelemetryFailed  int
	OutOfOrder       int
	LastTelemetryErr error
}
