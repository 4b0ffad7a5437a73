// Package settings holds the sensor device's configuration record and the
// in-memory model that owns it.
//
// The record mirrors the JSON object exchanged with the device over
// GET /getConfig and POST /updateConfig. Every field has a deterministic
// default, so a partial record received from the device can always be
// completed without failure.
//
// # Fields
//
// The record covers two areas:
//   - Display: top bar and middle value modes, scrolling text, marquee dots,
//     and the OLED refresh interval
//   - LED: on/off, humidity thresholds, intensity, animation speed, mode and
//     colour scheme
//
// The field catalogue (see Catalogue) describes each field's JSON name,
// bounds, step and push class. Only the two slider fields (ledIntensity and
// ledAnimSpeed) are continuous; everything else is pushed once per committed
// edit.
//
// # Usage Example
//
//	model := settings.NewModel()
//
//	// Merge what the device returned over the defaults
//	model.LoadFrom(partial)
//
//	// Out-of-range values are clamped, never rejected
//	_ = model.Set(settings.FieldLEDIntensity, 999) // stored as 255
//
//	// Full record for transmission
//	record := model.Snapshot()
//
// # Thread Safety
//
// Model is not safe for concurrent use. It is owned by a single event loop
// (see package session) and only mutated from inside that loop.
package settings
