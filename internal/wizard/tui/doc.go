// Package tui implements the interactive dashboard for tempsense displays.
//
// It is a Bubble Tea program with two screens:
//
//  1. Discovery: browses mDNS for displays, shows them as cards, and accepts
//     a manually entered address.
//  2. Dashboard: the settings list, the simulated screen and a status line
//     for one device.
//
// All screens use RenderApplicationContainer for the header, content and
// footer layout.
//
// # Editing
//
// The dashboard delegates every device interaction to a session.Controller.
// LED intensity and animation speed are sliders: each ←/→ step is pushed
// to the device immediately. Every other field is changed locally first
// (←/→ cycles an enum, toggles a flag or nudges a number, enter opens a
// text input) and pushed once when the edit is applied with enter or the
// cursor leaves the row. Esc discards an unapplied change.
//
// # Message routing
//
// Results of commands issued by a dashboard are tagged with the dashboard
// generation. After returning to discovery, late telemetry or push results
// from the closed dashboard are dropped instead of starting a second
// polling loop in the next one.
//
// # Usage
//
//	app := tui.NewAppModel(nil, tui.Options{Persist: save})
//	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
//	    return err
//	}
package tui
