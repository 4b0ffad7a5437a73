// Package logging provides structured logging for the tempsense tools.
//
// This package wraps a global zap logger with convenience functions for the
// logging patterns used by the device client, the sync session and the
// simulator.
//
// # Log Levels
//
//   - Debug: request timings, telemetry samples, raw response bytes
//   - Info: config pushes, simulator requests, discovery results
//   - Warn: dropped pushes and failed device requests
//   - Error: startup failures
//
// # Silent By Default
//
// The CLI is quiet unless asked otherwise. Logging is enabled by passing a
// level to Initialize or by setting TEMPSENSE_LOG_LEVEL:
//
//	if err := logging.Initialize(flagLevel); err != nil {
//	    return err
//	}
//	defer logging.Sync()
//
// The dashboard draws over the whole terminal, so it sends logs to a file:
//
//	_ = logging.InitializeWithOutput("debug", "/tmp/tempsense.log")
//
// # Thread Safety
//
// All logging functions are safe for concurrent use once initialised.
// Initialize itself is meant to be called once at startup.
package logging
