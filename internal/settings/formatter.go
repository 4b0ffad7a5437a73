package settings

import (
	"fmt"
	"strings"
)

// Summary returns a one-line summary of the record.
func (r Record) Summary() string {
	led := "LED off"
	if r.LEDEnabled {
		led = fmt.Sprintf("LED %s/%s @%d", r.LEDAnimationMode, r.LEDColorScheme, r.LEDIntensity)
	}
	return fmt.Sprintf("top=%s middle=%s %s", r.TopPosition, r.MiddlePosition, led)
}

// FormatDisplayConfig returns the display half of the record.
func (r Record) FormatDisplayConfig() string {
	var b strings.Builder

	b.WriteString("=== Display Settings ===\n")
	b.WriteString(fmt.Sprintf("Top Bar:        %s\n", r.TopPosition.Label()))
	b.WriteString(fmt.Sprintf("Middle Value:   %s\n", r.MiddlePosition.Label()))
	b.WriteString(fmt.Sprintf("Scrolling Text: %s\n", onOff(r.ScrollingEnabled)))
	b.WriteString(fmt.Sprintf("Text:           %q\n", r.ScrollingText))
	b.WriteString(fmt.Sprintf("Marquee Dots:   %s\n", onOff(r.MarqueeEnabled)))
	b.WriteString(fmt.Sprintf("Refresh Rate:   %d ms\n", r.UpdateInterval))

	return b.String()
}

// FormatLEDConfig returns the LED half of the record.
func (r Record) FormatLEDConfig() string {
	var b strings.Builder

	b.WriteString("=== LED Settings ===\n")
	b.WriteString(fmt.Sprintf("Enabled:        %s\n", onOff(r.LEDEnabled)))
	b.WriteString(fmt.Sprintf("Humidity Low:   %.1f%%\n", r.HumidityThresholdLow))
	b.WriteString(fmt.Sprintf("Humidity High:  %.1f%%\n", r.HumidityThresholdHigh))
	b.WriteString(fmt.Sprintf("Intensity:      %d / 255\n", r.LEDIntensity))
	b.WriteString(fmt.Sprintf("Anim Speed:     %d ms\n", r.LEDAnimSpeed))
	b.WriteString(fmt.Sprintf("Animation:      %s\n", r.LEDAnimationMode.Label()))
	b.WriteString(fmt.Sprintf("Colour Scheme:  %s\n", r.LEDColorScheme))

	return b.String()
}

// FormatCompact returns one "field=value" line per field, in catalogue order.
func (r Record) FormatCompact() string {
	var b strings.Builder
	for _, spec := range Catalogue {
		b.WriteString(fmt.Sprintf("%s=%s\n", spec.Field, r.FormatValue(spec.Field)))
	}
	return b.String()
}

// FormatDetailed returns the full record with a banner, for `show`.
func (r Record) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("\n")
	b.WriteString("╔════════════════════════════════════════════════════════════════╗\n")
	b.WriteString("║              TEMPSENSE DEVICE CONFIGURATION                    ║\n")
	b.WriteString("╚════════════════════════════════════════════════════════════════╝\n")
	b.WriteString("\n")

	b.WriteString(r.FormatDisplayConfig())
	b.WriteString("\n")
	b.WriteString(r.FormatLEDConfig())

	if warnings := ValidateRecord(r); len(warnings) > 0 {
		b.WriteString("\n=== Warnings ===\n")
		for _, w := range warnings {
			b.WriteString(fmt.Sprintf("  ! %s\n", w))
		}
	}

	return b.String()
}

// Diff returns the fields whose values differ between two records.
func Diff(old, new Record) []Field {
	var changed []Field
	for _, spec := range Catalogue {
		if old.FormatValue(spec.Field) != new.FormatValue(spec.Field) {
			changed = append(changed, spec.Field)
			continue
		}
		// FormatValue rounds floats to one decimal place.
		ov, _ := old.Value(spec.Field)
		nv, _ := new.Value(spec.Field)
		if ov != nv {
			changed = append(changed, spec.Field)
		}
	}
	return changed
}

// FormatDiff returns a formatted diff between two records.
func FormatDiff(old, new Record) string {
	var b strings.Builder

	b.WriteString("=== Configuration Differences ===\n")

	changed := Diff(old, new)
	if len(changed) == 0 {
		b.WriteString("\n(no differences detected)\n")
		return b.String()
	}

	b.WriteString("\n")
	for _, f := range changed {
		b.WriteString(fmt.Sprintf("  %-22s %s → %s\n", f+":", old.FormatValue(f), new.FormatValue(f)))
	}

	return b.String()
}

func onOff(b bool) string {
	if b {
		return "on"
	}
	return "off"
}
