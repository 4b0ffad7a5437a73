package device

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/tempsense/tempsense/internal/settings"
)

// VerificationOptions configures how configuration verification behaves
type VerificationOptions struct {
	// MaxRetries is the number of extra read attempts after the first.
	MaxRetries int

	// InitialDelay gives the device time to persist the record before the
	// first read.
	InitialDelay time.Duration

	// RetryDelay is the delay between attempts.
	RetryDelay time.Duration

	// UseExponentialBackoff doubles RetryDelay after each attempt, up to
	// MaxRetryDelay.
	UseExponentialBackoff bool
	MaxRetryDelay         time.Duration
}

// DefaultVerificationOptions returns sensible defaults for verification
func DefaultVerificationOptions() *VerificationOptions {
	return &VerificationOptions{
		MaxRetries:            3,
		InitialDelay:          300 * time.Millisecond,
		RetryDelay:            500 * time.Millisecond,
		UseExponentialBackoff: true,
		MaxRetryDelay:         3 * time.Second,
	}
}

// VerificationResult contains the results of a configuration verification
type VerificationResult struct {
	Success  bool
	Attempts int

	// Actual is the record read back from the device, completed with
	// defaults for any field the device omitted.
	Actual settings.Record

	// Mismatches lists every field that differs, as "field: expected X, got Y".
	Mismatches []string

	Error error
}

// VerifyRecord re-reads the device configuration until it matches expected
// or the attempts run out. It is used after one-shot CLI writes; the live
// session never verifies its pushes.
func (c *Client) VerifyRecord(ctx context.Context, expected settings.Record, opts *VerificationOptions) *VerificationResult {
	if opts == nil {
		opts = DefaultVerificationOptions()
	}

	result := &VerificationResult{}

	if err := sleepCtx(ctx, opts.InitialDelay); err != nil {
		result.Error = err
		return result
	}

	currentDelay := opts.RetryDelay

	for attempt := 0; attempt <= opts.MaxRetries; attempt++ {
		if attempt > 0 {
			if err := sleepCtx(ctx, currentDelay); err != nil {
				result.Error = err
				return result
			}
			if opts.UseExponentialBackoff {
				currentDelay *= 2
				if currentDelay > opts.MaxRetryDelay {
					currentDelay = opts.MaxRetryDelay
				}
			}
		}
		result.Attempts++

		p, err := c.GetConfig(ctx)
		if err != nil {
			result.Error = fmt.Errorf("attempt %d: failed to retrieve configuration: %w", attempt+1, err)
			if !IsRetryable(err) {
				return result
			}
			continue
		}

		m := settings.NewModel()
		m.LoadFrom(p)
		result.Actual = m.Snapshot()

		result.Mismatches = recordMismatches(expected, result.Actual)
		if len(result.Mismatches) == 0 {
			result.Success = true
			result.Error = nil
			return result
		}

		result.Error = NewValidationError(fmt.Sprintf("verification failed after %d attempts: %s",
			result.Attempts, formatMismatches(result.Mismatches)))
	}

	return result
}

// SetAndVerify pushes a record and then verifies it was stored.
func (c *Client) SetAndVerify(ctx context.Context, r settings.Record, opts *VerificationOptions) *VerificationResult {
	if _, err := c.SetConfig(ctx, r); err != nil {
		return &VerificationResult{Error: fmt.Errorf("update failed: %w", err)}
	}
	return c.VerifyRecord(ctx, r, opts)
}

func recordMismatches(expected, actual settings.Record) []string {
	var mismatches []string
	for _, f := range settings.Diff(expected, actual) {
		mismatches = append(mismatches, fmt.Sprintf("%s: expected %s, got %s",
			f, expected.FormatValue(f), actual.FormatValue(f)))
	}
	return mismatches
}

func formatMismatches(mismatches []string) string {
	switch len(mismatches) {
	case 0:
		return "none"
	case 1:
		return mismatches[0]
	}
	return fmt.Sprintf("%d mismatches: %s", len(mismatches), strings.Join(mismatches, "; "))
}

func sleepCtx(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
