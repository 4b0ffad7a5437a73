package ui

import (
	"fmt"
	"io"
	"os"
	"time"
)

// RunnerConfig describes a multi-step CLI operation.
type RunnerConfig struct {
	Title     string            // e.g., "Set Field"
	Command   string            // e.g., "tempsense-cfg set ledIntensity 40"
	Params    map[string]string // Shown in the header
	StepNames []string          // One per step, in order
	Output    io.Writer         // Default: os.Stdout
	Width     int               // Default: terminal width

	// Troubleshoot maps a failure to tips shown in the failure box.
	Troubleshoot func(err error) []string
}

// Runner prints header, step progress, and a result box around an
// operation.
type Runner struct {
	config   RunnerConfig
	progress *Progress
	output   io.Writer
	width    int
}

// Operation does the work, reporting steps through onStep. The returned
// details go into the success box.
type Operation func(onStep StepCallback) (map[string]string, error)

// NewRunner creates a new runner for a CLI operation
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	width := config.Width
	if width == 0 {
		width = GetTerminalWidth()
	}
	return &Runner{
		config:   config,
		progress: NewProgress(config.StepNames...),
		output:   config.Output,
		width:    width,
	}
}

// Run executes the operation and prints the outcome.
func (r *Runner) Run(op Operation) (map[string]string, error) {
	start := time.Now()

	header := NewHeader(r.config.Title, r.config.Command, r.config.Params).SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, header.Render())
	_, _ = fmt.Fprintln(r.output)

	details, err := op(r.onStep)
	duration := time.Since(start).Round(time.Millisecond)

	_, _ = fmt.Fprintln(r.output)
	if err != nil {
		var tips []string
		if r.config.Troubleshoot != nil {
			tips = r.config.Troubleshoot(err)
		}
		result := NewFailureResult(r.config.Title+" failed", err, tips).SetWidth(r.width)
		_, _ = fmt.Fprintln(r.output, result.Render())
		return details, err
	}

	result := NewSuccessResult(r.config.Title+" complete", details).SetWidth(r.width)
	result.AddDetail("Duration", duration.String())
	_, _ = fmt.Fprintln(r.output, result.Render())
	return details, nil
}

// Progress exposes the step tracker, mainly for tests.
func (r *Runner) Progress() *Progress {
	return r.progress
}

func (r *Runner) onStep(stepNumber int, status StepStatus, message string) {
	r.progress.UpdateStep(stepNumber, status, message)
	if stepNumber < 1 || stepNumber > len(r.progress.Steps) {
		return
	}
	step := r.progress.Steps[stepNumber-1]
	switch status {
	case StepRunning:
		// overwritten by the completion line
		_, _ = fmt.Fprint(r.output, r.progress.RenderStep(step)+"\r")
	case StepComplete, StepFailed, StepSkipped:
		_, _ = fmt.Fprintln(r.output, r.progress.RenderStep(step))
	}
}
