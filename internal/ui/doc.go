// Package ui renders the plain (non-interactive) output of tempsense-cfg.
//
// Commands print a Header, run their steps through a Runner which shows a
// step list as it goes, and finish with a Result box. RenderPreview draws
// the simulated device screen used by the watch command. Confirm asks
// before overwriting a sensor's configuration.
//
// Widths follow the terminal (golang.org/x/term) and are clamped between
// MinTerminalWidth and MaxContentWidth. Logging stays silent unless
// TEMPSENSE_LOG_LEVEL or --log-level is set, so zap output never mixes
// with these boxes by default.
package ui
