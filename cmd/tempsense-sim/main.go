// Tempsense-sim runs a simulated tempsense display.
//
// It serves the same HTTP API as the firmware (/getConfig, /updateConfig,
// /sensorData) with drifting readings, and can announce itself over mDNS
// so the configuration tool finds it like a real device. Failures and
// latency can be injected to exercise error handling.
//
// Usage:
//
//	tempsense-sim [flags]
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/tempsense/tempsense/internal/logging"
	"github.com/tempsense/tempsense/internal/simulator"
	"github.com/tempsense/tempsense/internal/version"
)

func main() {
	err := rootCmd.Execute()
	logging.Sync()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var (
	host      string
	port      int
	id        string
	firmware  string
	failRate  float64
	latency   time.Duration
	advertise bool
	seed      int64
	logLevel  string
)

var rootCmd = &cobra.Command{
	Use:   "tempsense-sim",
	Short: "Simulated tempsense display",
	Long: `A simulated tempsense display serving the device HTTP API.

Configuration pushed to the simulator is kept in memory and returned by
/getConfig. Sensor readings drift slowly around room conditions.`,
	Example: `  # Serve on port 8080 and announce over mDNS
  tempsense-sim --port 8080 --advertise

  # Fail a fifth of all requests with 200ms extra latency
  tempsense-sim --port 8080 --fail-rate 0.2 --latency 200ms

  # Reproducible readings
  tempsense-sim --seed 42 --log-level debug`,
	Version:      version.Version,
	SilenceUsage: true,
	Args:         cobra.NoArgs,
	RunE:         runSimulator,
}

func init() {
	rootCmd.Flags().StringVar(&host, "host", "", "Listen address (empty = all interfaces)")
	rootCmd.Flags().IntVar(&port, "port", 8080, "HTTP port")
	rootCmd.Flags().StringVar(&id, "id", "sim001", "Sensor ID announced over mDNS")
	rootCmd.Flags().StringVar(&firmware, "firmware", "sim-1.0", "Firmware version reported by the device")
	rootCmd.Flags().Float64Var(&failRate, "fail-rate", 0, "Fraction of API requests that fail with 503 (0..1)")
	rootCmd.Flags().DurationVar(&latency, "latency", 0, "Delay added to every API response")
	rootCmd.Flags().BoolVar(&advertise, "advertise", false, "Announce the simulator over mDNS")
	rootCmd.Flags().Int64Var(&seed, "seed", 0, "Random seed for readings and failures (0 = time based)")
	rootCmd.Flags().StringVar(&logLevel, "log-level", "info", "Log level (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
}

func runSimulator(cmd *cobra.Command, args []string) error {
	if err := logging.Initialize(logLevel); err != nil {
		return err
	}

	srv, err := simulator.New(simulator.Config{
		Host:      host,
		Port:      port,
		ID:        id,
		Firmware:  firmware,
		FailRate:  failRate,
		Latency:   latency,
		Advertise: advertise,
		Seed:      seed,
	})
	if err != nil {
		return fmt.Errorf("failed to create simulator: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return srv.Start(ctx)
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tempsense-sim %s\n", version.Full())
	},
}
