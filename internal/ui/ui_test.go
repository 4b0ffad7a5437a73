package ui

import (
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/tempsense/tempsense/internal/display"
)

func TestConfirm(t *testing.T) {
	tests := []struct {
		input string
		want  bool
	}{
		{"y\n", true},
		{"YES\n", true},
		{" yes \n", true},
		{"n\n", false},
		{"\n", false},
		{"", false},
		{"sure\n", false},
	}

	for _, tt := range tests {
		t.Run(strings.TrimSpace(tt.input), func(t *testing.T) {
			var out bytes.Buffer
			got := Confirm(strings.NewReader(tt.input), &out, "Restore", []string{"overwrite"}, 60)
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), "Restore") {
				t.Errorf("prompt box missing title:\n%s", out.String())
			}
		})
	}
}

func TestRenderPreview(t *testing.T) {
	p := display.Preview{
		TopText:        "24.50 °C / 76.10 °F",
		MiddleText:     "24 °C",
		MarqueeVisible: true,
		MarqueeText:    "HELLO",
	}
	out := RenderPreview(p)
	for _, want := range []string{"24.50 °C / 76.10 °F", "24 °C", "HELLO"} {
		if !strings.Contains(out, want) {
			t.Errorf("RenderPreview() missing %q:\n%s", want, out)
		}
	}

	p.MarqueeVisible = false
	p.MarqueeText = ""
	if lines := PreviewLines(p); len(lines) != 2 {
		t.Errorf("PreviewLines() = %v, want two lines without marquee", lines)
	}
}

func TestTruncate(t *testing.T) {
	if got := truncate("abcdef", 4); got != "abc…" {
		t.Errorf("truncate() = %q", got)
	}
	if got := truncate("abc", 4); got != "abc" {
		t.Errorf("truncate() = %q", got)
	}
}

func TestProgressUpdateStep(t *testing.T) {
	p := NewProgress("Load", "Push", "Verify")
	p.UpdateStep(1, StepRunning, "")
	if p.Current != 1 {
		t.Errorf("Current = %d, want 1", p.Current)
	}
	p.UpdateStep(1, StepComplete, "")
	p.UpdateStep(2, StepComplete, "")
	p.UpdateStep(3, StepSkipped, "--no-verify")
	if p.Percent != 1 {
		t.Errorf("Percent = %v, want 1", p.Percent)
	}
	p.UpdateStep(9, StepFailed, "")
	if !strings.Contains(p.Render(), "--no-verify") {
		t.Error("step note not rendered")
	}
}

func TestRunner(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(RunnerConfig{
		Title:     "Set Field",
		Command:   "tempsense-cfg set ledIntensity 40",
		Params:    map[string]string{"Device": "10.0.0.5:80"},
		StepNames: []string{"Load", "Push"},
		Output:    &out,
		Width:     80,
	})

	details, err := r.Run(func(onStep StepCallback) (map[string]string, error) {
		onStep(1, StepComplete, "")
		onStep(2, StepComplete, "")
		return map[string]string{"Field": "ledIntensity"}, nil
	})
	if err != nil {
		t.Fatalf("Run() error = %v", err)
	}
	if details["Field"] != "ledIntensity" {
		t.Errorf("details = %v", details)
	}
	for _, want := range []string{"SET FIELD", "10.0.0.5:80", "SUCCESS", "Duration"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestRunnerFailure(t *testing.T) {
	var out bytes.Buffer
	boom := errors.New("connection refused")
	r := NewRunner(RunnerConfig{
		Title:        "Restore",
		StepNames:    []string{"Push"},
		Output:       &out,
		Width:        80,
		Troubleshoot: func(error) []string { return []string{"Is the sensor powered?"} },
	})

	_, err := r.Run(func(onStep StepCallback) (map[string]string, error) {
		onStep(1, StepFailed, "")
		return nil, boom
	})
	if !errors.Is(err, boom) {
		t.Fatalf("Run() error = %v, want %v", err, boom)
	}
	for _, want := range []string{"FAILED", "connection refused", "Is the sensor powered?"} {
		if !strings.Contains(out.String(), want) {
			t.Errorf("output missing %q:\n%s", want, out.String())
		}
	}
}

func TestPrinter(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf).SetWidth(60)

	p.PrintSuccess("Nickname saved", map[string]string{"Device": "a1b2c3"})
	p.PrintWarning("Configuration warnings", map[string]string{"humidityThresholdLow": "above high threshold"})
	p.PrintError("Push failed", errors.New("connection refused"), []string{"Check the port"})

	out := buf.String()
	for _, want := range []string{"Nickname saved", "a1b2c3", "Configuration warnings", "above high threshold", "Push failed", "Check the port"} {
		if !strings.Contains(out, want) {
			t.Errorf("printer output missing %q:\n%s", want, out)
		}
	}
	if p.Width() != 60 {
		t.Errorf("Width() = %d", p.Width())
	}
}
