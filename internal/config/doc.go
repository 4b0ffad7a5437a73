// Package config manages the user's YAML registry of known sensors.
//
// For every sensor the CLI has talked to, the registry remembers a nickname,
// the last address it answered on, and the last configuration record read
// from it (used by "tempsense-cfg restore"). It also holds preferences such
// as the discovery and request timeouts.
//
// # Configuration File Location
//
//   - Linux: $XDG_CONFIG_HOME/tempsense/config.yaml or $HOME/.config/tempsense/config.yaml
//   - macOS: $HOME/.config/tempsense/config.yaml
//   - Windows: %LOCALAPPDATA%\tempsense\config.yaml
//
// # Usage Example
//
//	registry, err := config.LoadRegistry()
//	if err != nil {
//	    log.Fatal(err)
//	}
//	registry.SetDeviceNickname("a1b2c3", "Living room")
//	if err := registry.Save(); err != nil {
//	    log.Fatal(err)
//	}
//
// Writes go to a temporary file that is renamed over the original, so a
// crash never leaves a half-written file.
package config
