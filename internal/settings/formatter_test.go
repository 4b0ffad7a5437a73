package settings

import (
	"reflect"
	"strings"
	"testing"
)

func TestFormatCompact(t *testing.T) {
	out := Defaults().FormatCompact()
	lines := strings.Split(strings.TrimSpace(out), "\n")

	if len(lines) != len(Catalogue) {
		t.Fatalf("FormatCompact() has %d lines, want %d", len(lines), len(Catalogue))
	}
	if lines[0] != "topPosition=tempBoth" {
		t.Errorf("first line = %q", lines[0])
	}
	if !strings.Contains(out, "ledIntensity=100\n") {
		t.Errorf("FormatCompact() missing ledIntensity:\n%s", out)
	}
}

func TestFormatDetailed(t *testing.T) {
	r := Defaults()
	out := r.FormatDetailed()

	for _, want := range []string{"Display Settings", "LED Settings", "Temp C / Temp F", "33.3%"} {
		if !strings.Contains(out, want) {
			t.Errorf("FormatDetailed() missing %q", want)
		}
	}
	if strings.Contains(out, "Warnings") {
		t.Error("FormatDetailed() shows warnings for a clean record")
	}

	r.HumidityThresholdLow = 90
	if !strings.Contains(r.FormatDetailed(), "Warnings") {
		t.Error("FormatDetailed() hides threshold warning")
	}
}

func TestDiff(t *testing.T) {
	old := Defaults()
	new := old
	new.LEDIntensity = 10
	new.HumidityThresholdHigh = 66.62

	want := []Field{FieldHumidityThresholdHigh, FieldLEDIntensity}
	if got := Diff(old, new); !reflect.DeepEqual(got, want) {
		t.Errorf("Diff() = %v, want %v", got, want)
	}

	out := FormatDiff(old, new)
	if !strings.Contains(out, "100 → 10") {
		t.Errorf("FormatDiff() missing intensity change:\n%s", out)
	}
	if !strings.Contains(FormatDiff(old, old), "no differences") {
		t.Error("FormatDiff() of identical records reports changes")
	}
}

func TestSummary(t *testing.T) {
	r := Defaults()
	if got := r.Summary(); !strings.Contains(got, "LED static/Default @100") {
		t.Errorf("Summary() = %q", got)
	}
	r.LEDEnabled = false
	if got := r.Summary(); !strings.Contains(got, "LED off") {
		t.Errorf("Summary() = %q", got)
	}
}

func TestCatalogue(t *testing.T) {
	if len(Catalogue) != 13 {
		t.Fatalf("Catalogue has %d fields, want 13", len(Catalogue))
	}
	for _, spec := range Catalogue {
		if spec.Numeric() && spec.Min >= spec.Max {
			t.Errorf("%s: bad range %v..%v", spec.Field, spec.Min, spec.Max)
		}
		wantClass := Discrete
		if spec.Field == FieldLEDIntensity || spec.Field == FieldLEDAnimSpeed {
			wantClass = Continuous
		}
		if spec.Class != wantClass {
			t.Errorf("%s: class = %s, want %s", spec.Field, spec.Class, wantClass)
		}
	}
	if len(ColorSchemes) != 27 {
		t.Errorf("ColorSchemes has %d entries, want 27", len(ColorSchemes))
	}
	if ClassOf("unknown") != Discrete {
		t.Error("ClassOf(unknown) should be Discrete")
	}
}

func TestEnumValuesAreValid(t *testing.T) {
	for _, m := range TopModes {
		if !m.Valid() || m.Label() == "" {
			t.Errorf("top mode %q: Valid=%v Label=%q", m, m.Valid(), m.Label())
		}
	}
	for _, m := range MiddleModes {
		if !m.Valid() || m.Label() == "" {
			t.Errorf("middle mode %q: Valid=%v Label=%q", m, m.Valid(), m.Label())
		}
	}
	for _, m := range AnimationModes {
		if !m.Valid() || m.Label() == "" {
			t.Errorf("animation mode %q: Valid=%v Label=%q", m, m.Valid(), m.Label())
		}
	}
	for _, c := range ColorSchemes {
		if !c.Valid() {
			t.Errorf("color scheme %q not valid", c)
		}
	}

	if TopMode("sideways").Valid() || MiddleMode("big").Valid() ||
		AnimationMode("spin").Valid() || ColorScheme("Plaid").Valid() {
		t.Error("unknown enum value reported valid")
	}
}
