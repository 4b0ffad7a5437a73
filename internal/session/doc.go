// Package session synchronises a sensor's configuration and live preview.
//
// A Controller owns the settings.Model and display.Renderer for one device
// and runs inside a Bubble Tea program. It starts in StateLoading, issues
// GET /getConfig, and on success moves to StateReady and starts polling
// GET /getSensorData every two seconds.
//
// Edits come in two kinds. Commit finalizes a value and pushes the whole
// record once. Drag is for controls that are still moving: the two slider
// fields (LED intensity and animation speed) push on every call, other
// fields are only stored until committed. Every push carries a full
// snapshot taken when the edit happened, so the device never sees a
// half-applied record.
//
// Requests are never retried or cancelled. Results are applied in the order
// they complete, so a slow older response can overwrite a newer one.
package session
