// Tempsense-cfg configures tempsense displays over their HTTP API.
//
// It provides device discovery, a live terminal dashboard, and direct
// commands to read, change and restore a display's configuration.
//
// Usage:
//
//	tempsense-cfg [command] [flags]
//
// Running without arguments launches the dashboard.
// See 'tempsense-cfg --help' for available commands.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tempsense/tempsense/internal/config"
	"github.com/tempsense/tempsense/internal/logging"
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

// Global flags
var (
	deviceAddr     string
	devicePort     int
	requestTimeout time.Duration
	logLevel       string
	logFile        string
)

// registry is loaded before every command runs
var registry *config.Registry

var rootCmd = &cobra.Command{
	Use:   "tempsense-cfg",
	Short: "Tempsense Display Configuration Utility",
	Long: `A utility for configuring tempsense temperature and humidity displays.

Provides device discovery, a live dashboard with a preview of the display,
and direct commands for reading and changing configuration fields.

If no command is specified, the dashboard launches automatically.`,
	Version:      version.Version,
	SilenceUsage: true,
	RunE:         runDashboard,
}

func init() {
	// assigned here rather than in the literal to avoid an initialization cycle
	// (setup -> isDashboardCommand -> rootCmd)
	rootCmd.PersistentPreRunE = setup
	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.PersistentFlags().StringVar(&deviceAddr, "device", "", "Device address, host or host:port (skips discovery)")
	rootCmd.PersistentFlags().IntVar(&devicePort, "port", 0, "Device HTTP port (default from registry preferences, 80)")
	rootCmd.PersistentFlags().DurationVar(&requestTimeout, "timeout", 0, "Per-request timeout (default from registry preferences, 1.5s)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); also "+logging.LogLevelEnvVar)
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Write logs to this file instead of stdout")

	rootCmd.AddCommand(versionCmd)
}

// setup initializes logging and loads the device registry
func setup(cmd *cobra.Command, args []string) error {
	level := logLevel
	if level == "" {
		level = os.Getenv(logging.LogLevelEnvVar)
	}

	// the dashboard owns the terminal
	if level != "" && logFile == "" && isDashboardCommand(cmd) {
		if dir, err := config.GetConfigDir(); err == nil {
			if err := os.MkdirAll(dir, 0700); err == nil {
				logFile = filepath.Join(dir, "dashboard.log")
			}
		}
	}

	if err := logging.InitializeWithOutput(level, logFile); err != nil {
		return err
	}

	reg, err := config.LoadRegistry()
	if err != nil {
		logging.Warn("Could not load device registry, using defaults", zap.Error(err))
		reg = config.NewRegistry()
	}
	registry = reg

	if devicePort == 0 {
		devicePort = registry.Preferences.DefaultPort
	}
	if requestTimeout == 0 {
		requestTimeout = registry.Preferences.RequestTimeout()
	}

	logging.Debug("Command starting",
		zap.String("command", cmd.CommandPath()),
		zap.String("version", version.Full()),
		zap.Duration("timeout", requestTimeout),
	)
	return nil
}

func isDashboardCommand(cmd *cobra.Command) bool {
	return cmd == rootCmd || cmd == dashboardCmd
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("tempsense-cfg %s\n", version.Full())
	},
}
