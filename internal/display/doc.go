// Package display turns telemetry samples into the text the device's OLED
// shows, so the client can preview it live.
//
// FormatTop and FormatMiddle are pure functions of a sample and a mode.
// Renderer keeps the latest sample and the display selection (a projection
// of settings.Record) and recomputes the Preview whenever either changes.
// Like settings.Model it is owned by a single event loop.
package display
