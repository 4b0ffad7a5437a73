package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"sort"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/tempsense/tempsense/internal/device"
	"github.com/tempsense/tempsense/internal/discovery"
	"github.com/tempsense/tempsense/internal/display"
	"github.com/tempsense/tempsense/internal/logging"
	"github.com/tempsense/tempsense/internal/session"
	"github.com/tempsense/tempsense/internal/settings"
	"github.com/tempsense/tempsense/internal/ui"
	"github.com/tempsense/tempsense/internal/urls"
	"github.com/tempsense/tempsense/internal/wizard/tui"
)

// Command flags
var (
	scanTimeout  time.Duration
	outputFormat string
	noVerify     bool
	retries      int
	watchCount   int
	assumeYes    bool
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(showCmd)
	rootCmd.AddCommand(setCmd)
	rootCmd.AddCommand(watchCmd)
	rootCmd.AddCommand(fieldsCmd)
	rootCmd.AddCommand(restoreCmd)
	rootCmd.AddCommand(devicesCmd)
	rootCmd.AddCommand(dashboardCmd)

	devicesCmd.AddCommand(devicesNameCmd)
}

// signalContext is cancelled on Ctrl-C so long scans and watches stop cleanly
func signalContext(cmd *cobra.Command) (context.Context, context.CancelFunc) {
	return signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
}

func tableStyle(t *table.Table) *table.Table {
	return t.
		Border(lipgloss.RoundedBorder()).
		BorderStyle(lipgloss.NewStyle().Foreground(ui.PrimaryColor)).
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return lipgloss.NewStyle().Bold(true).Foreground(ui.TextColor).Padding(0, 1)
			}
			return lipgloss.NewStyle().Padding(0, 1)
		})
}

// scanCmd discovers devices on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for tempsense displays on the network",
	Long: `Scan for tempsense displays using mDNS/DNS-SD discovery.

Displays announce themselves as _http._tcp services named tempsense-<id>.
Every device found is remembered in the registry with its address.`,
	Example: `  # Scan with the default timeout from the registry (5s)
  tempsense-cfg scan

  # Longer scan for busy networks
  tempsense-cfg scan --scan-timeout 15s`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().DurationVar(&scanTimeout, "scan-timeout", 0, "How long to listen for announcements (default from registry preferences)")
}

func runScan(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	timeout := scanTimeout
	if timeout <= 0 {
		timeout = registry.Preferences.DiscoverDuration()
	}
	fmt.Printf("Scanning for tempsense displays (timeout: %s)...\n\n", timeout)

	devices, err := discovery.DiscoverDevices(ctx, timeout)
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	if len(devices) == 0 {
		fmt.Println("No devices found.")
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the display is powered on and joined to this network")
		fmt.Println("  - mDNS does not cross subnets or guest WiFi isolation")
		fmt.Println("  - Try a longer --scan-timeout")
		fmt.Println("  - Use --device to specify the address directly")
		fmt.Printf("\nFor more information, see: %s\n", urls.Troubleshooting)
		return nil
	}

	t := tableStyle(table.New()).Headers("#", "ID", "ADDRESS", "HOSTNAME", "FIRMWARE")
	for i, d := range devices {
		t.Row(strconv.Itoa(i+1), d.ID, fmt.Sprintf("%s:%d", d.IP, d.Port), d.Hostname, d.Firmware())
		registry.UpdateDeviceLastSeen(d.ID, d.IP, d.Port)
	}
	fmt.Printf("Found %d device(s):\n\n%s\n\n", len(devices), t.Render())

	if err := registry.Save(); err != nil {
		logging.Warn("Could not save device registry", zap.Error(err))
	}

	fmt.Println("Use 'tempsense-cfg show --device <ip>' to view a device's configuration")
	fmt.Println("Use 'tempsense-cfg' to open the dashboard")
	return nil
}

// showCmd displays the current device configuration
var showCmd = &cobra.Command{
	Use:   "show",
	Short: "Show device configuration",
	Long: `Display the current configuration of a tempsense display.

Fields the device does not report are shown with their defaults.`,
	Example: `  # Show config with auto-discovery
  tempsense-cfg show

  # Show config for a specific device
  tempsense-cfg show --device 192.168.1.40

  # One field=value per line, for scripts
  tempsense-cfg show --format compact

  # JSON as sent to /updateConfig
  tempsense-cfg show --format json`,
	RunE: runShow,
}

func init() {
	showCmd.Flags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json, yaml)")
}

func runShow(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	switch outputFormat {
	case "detailed", "compact", "json", "yaml":
	default:
		return fmt.Errorf("unknown format %q (use detailed, compact, json or yaml)", outputFormat)
	}

	dev, err := resolveDevice(ctx, registry, os.Stderr)
	if err != nil {
		return err
	}
	client := newClient(dev)

	if outputFormat == "detailed" {
		fmt.Printf("Fetching configuration from %s:%d...\n\n", dev.IP, dev.Port)
	}

	p, err := client.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to get configuration: %w\n\n%s", err, device.GetTroubleshootingHint(err))
	}
	model := settings.NewModel()
	model.LoadFrom(p)
	rec := model.Snapshot()

	switch outputFormat {
	case "compact":
		fmt.Print(rec.FormatCompact())
	case "json":
		data, err := json.MarshalIndent(rec, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal JSON: %w", err)
		}
		fmt.Println(string(data))
	case "yaml":
		data, err := yaml.Marshal(rec)
		if err != nil {
			return fmt.Errorf("failed to marshal YAML: %w", err)
		}
		fmt.Print(string(data))
	default:
		fmt.Println(rec.FormatDetailed())
		if missing := len(settings.Catalogue) - len(p.Present()); missing > 0 {
			fmt.Printf("(%d field(s) not reported by the device, defaults shown)\n", missing)
		}
	}

	if warnings := settings.ValidateRecord(rec); len(warnings) > 0 {
		if outputFormat == "detailed" {
			details := make(map[string]string, len(warnings))
			for _, w := range warnings {
				details[string(w.Field)] = w.Message
			}
			ui.NewPrinter(os.Stderr).PrintWarning("Configuration warnings", details)
		} else {
			for _, w := range warnings {
				fmt.Fprintf(os.Stderr, "warning: %s\n", w)
			}
		}
	}

	rememberQuietly(dev, rec)
	return nil
}

func rememberQuietly(dev *discovery.Device, rec settings.Record) {
	r := &recorder{reg: registry}
	_ = r.remember(dev, rec)
}

// setCmd changes one field
var setCmd = &cobra.Command{
	Use:   "set <field> <value>",
	Short: "Set one configuration field",
	Long: `Read the device configuration, change one field, and push the full
record back to the device.

Numbers outside a field's range are clamped to the nearest bound. Enum
values are matched case-insensitively. Booleans accept on/off, true/false
and 1/0. Run 'tempsense-cfg fields' for the list of fields.

After the push the configuration is read back to verify it was stored,
unless --no-verify is given.`,
	Example: `  # Dim the LED
  tempsense-cfg set ledIntensity 40 --device 192.168.1.40

  # Show humidity on the top bar
  tempsense-cfg set topPosition humidity

  # Change the scrolling text
  tempsense-cfg set scrollingText "HELLO WORLD"

  # Push without reading back
  tempsense-cfg set ledColorScheme Ocean --no-verify`,
	Args: cobra.ExactArgs(2),
	RunE: runSet,
}

func init() {
	setCmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip reading the configuration back after the update")
	setCmd.Flags().IntVar(&retries, "retries", 3, "Number of verification retries")
}

func runSet(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	field, value, err := settings.ParseValue(args[0], args[1])
	if err != nil {
		return err
	}

	dev, err := resolveDevice(ctx, registry, os.Stderr)
	if err != nil {
		return err
	}
	client := newClient(dev)

	steps := []string{"Read configuration", "Push record", "Verify"}
	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Set " + string(field),
		Command: "tempsense-cfg " + strings.Join(os.Args[1:], " "),
		Params: map[string]string{
			"Device": fmt.Sprintf("%s:%d", dev.IP, dev.Port),
			"Field":  string(field),
			"Value":  args[1],
		},
		StepNames:    steps,
		Troubleshoot: troubleshoot,
	})

	_, err = runner.Run(func(onStep ui.StepCallback) (map[string]string, error) {
		onStep(1, ui.StepRunning, "")
		p, err := client.GetConfig(ctx)
		if err != nil {
			onStep(1, ui.StepFailed, device.GetShortErrorMessage(err))
			return nil, err
		}
		model := settings.NewModel()
		model.LoadFrom(p)
		before := model.Snapshot()
		onStep(1, ui.StepComplete, "")

		details := map[string]string{}
		if n, ok := numeric(value); ok {
			if w := settings.RangeWarning(field, n); w != nil {
				details["Warning"] = w.Message
			}
		}
		if err := model.Set(field, value); err != nil {
			return nil, err
		}
		after := model.Snapshot()
		details["Before"] = before.FormatValue(field)
		details["After"] = after.FormatValue(field)

		onStep(2, ui.StepRunning, "")
		reply, err := client.SetConfig(ctx, after)
		if err != nil {
			onStep(2, ui.StepFailed, device.GetShortErrorMessage(err))
			return nil, err
		}
		onStep(2, ui.StepComplete, strings.TrimSpace(reply))

		if noVerify {
			onStep(3, ui.StepSkipped, "--no-verify")
			rememberQuietly(dev, after)
			return details, nil
		}

		onStep(3, ui.StepRunning, "")
		opts := device.DefaultVerificationOptions()
		opts.MaxRetries = retries
		result := client.VerifyRecord(ctx, after, opts)
		if !result.Success {
			onStep(3, ui.StepFailed, fmt.Sprintf("%d attempt(s)", result.Attempts))
			return nil, result.Error
		}
		onStep(3, ui.StepComplete, fmt.Sprintf("%d attempt(s)", result.Attempts))
		rememberQuietly(dev, result.Actual)
		return details, nil
	})
	return err
}

func numeric(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}

// watchCmd prints the live preview without the dashboard
var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Print the live display preview",
	Long: `Poll the sensor every two seconds and print what the display shows:
the top bar, the middle value and the scrolling text when it is enabled.

Works without an interactive terminal, so it can be piped or logged.`,
	Example: `  # Watch until Ctrl-C
  tempsense-cfg watch --device 192.168.1.40

  # Take five readings
  tempsense-cfg watch --count 5`,
	RunE: runWatch,
}

func init() {
	watchCmd.Flags().IntVar(&watchCount, "count", 0, "Stop after this many readings (0 = until interrupted)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	dev, err := resolveDevice(ctx, registry, os.Stderr)
	if err != nil {
		return err
	}
	client := newClient(dev)

	model := settings.NewModel()
	if p, err := client.GetConfig(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "warning: could not read configuration (%s), showing defaults\n",
			device.GetShortErrorMessage(err))
	} else {
		model.LoadFrom(p)
	}
	renderer := display.NewRenderer(display.SelectionOf(model.Snapshot()))
	pretty := ui.IsInteractive()

	ticker := time.NewTicker(session.TelemetryInterval)
	defer ticker.Stop()

	for n := 0; watchCount == 0 || n < watchCount; n++ {
		if n > 0 {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
			}
		}

		reqCtx, cancel := context.WithTimeout(ctx, requestTimeout)
		sample, err := client.GetTelemetry(reqCtx)
		cancel()
		stamp := time.Now().Format("15:04:05")
		if err != nil {
			if ctx.Err() != nil {
				return nil
			}
			// the previous preview stays valid
			fmt.Printf("%s  sensor: %s\n", stamp, device.GetShortErrorMessage(err))
			continue
		}

		preview := renderer.SetSample(sample)
		if pretty {
			fmt.Printf("%s  %.1f°C %.1f%%\n%s\n", stamp, sample.Temperature, sample.Humidity, ui.RenderPreview(preview))
			continue
		}
		fmt.Printf("%s  %s\n", stamp, strings.Join(ui.PreviewLines(preview), "  |  "))
	}
	return nil
}

// fieldsCmd lists the configuration fields
var fieldsCmd = &cobra.Command{
	Use:   "fields",
	Short: "List configuration fields, ranges and defaults",
	RunE: func(cmd *cobra.Command, args []string) error {
		defaults := settings.Defaults()
		t := tableStyle(table.New()).Headers("FIELD", "TYPE", "VALUES", "DEFAULT", "PUSH")
		for _, spec := range settings.Catalogue {
			t.Row(string(spec.Field), spec.Kind.String(), describeValues(spec),
				defaults.FormatValue(spec.Field), spec.Class.String())
		}
		fmt.Println(t.Render())
		fmt.Println("Continuous fields are pushed on every movement in the dashboard;")
		fmt.Println("discrete fields once per applied edit.")
		fmt.Printf("Field reference: %s\n", urls.FieldReference)
		return nil
	},
}

func describeValues(spec settings.FieldSpec) string {
	switch spec.Kind {
	case settings.KindEnum:
		if len(spec.Options) > 5 {
			return fmt.Sprintf("%d choices (%s, ...)", len(spec.Options), strings.Join(spec.Options[:3], ", "))
		}
		return strings.Join(spec.Options, " | ")
	case settings.KindBool:
		return "on | off"
	case settings.KindText:
		return fmt.Sprintf("up to %d characters", spec.MaxLen)
	}
	r := strconv.FormatFloat(spec.Min, 'f', -1, 64) + ".." + strconv.FormatFloat(spec.Max, 'f', -1, 64)
	if spec.Unit != "" {
		r += " " + spec.Unit
	}
	return r + ", step " + strconv.FormatFloat(spec.Step, 'f', -1, 64)
}

// restoreCmd pushes the last known configuration back
var restoreCmd = &cobra.Command{
	Use:   "restore",
	Short: "Push the last saved configuration back to a device",
	Long: `Push the configuration that was last read from a device (by show, set or
the dashboard) back to it. Useful after a factory reset or an unwanted change.

The differences are listed and confirmed before anything is sent.`,
	Example: `  tempsense-cfg restore --device 192.168.1.40
  tempsense-cfg restore --device 192.168.1.40 --yes`,
	RunE: runRestore,
}

func init() {
	restoreCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	restoreCmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip reading the configuration back after the update")
}

func runRestore(cmd *cobra.Command, args []string) error {
	ctx, stop := signalContext(cmd)
	defer stop()

	dev, err := resolveDevice(ctx, registry, os.Stderr)
	if err != nil {
		return err
	}
	saved := registry.GetDevice(registryKey(dev))
	if saved == nil || saved.LastRecord == nil {
		return fmt.Errorf("no saved configuration for %s; run 'show' or open the dashboard first", registryKey(dev))
	}
	target := *saved.LastRecord
	client := newClient(dev)

	p, err := client.GetConfig(ctx)
	if err != nil {
		return fmt.Errorf("failed to get configuration: %w\n\n%s", err, device.GetTroubleshootingHint(err))
	}
	model := settings.NewModel()
	model.LoadFrom(p)
	current := model.Snapshot()

	changed := settings.Diff(current, target)
	savedAt := saved.RecordedAt.Local().Format("2006-01-02 15:04")
	if len(changed) == 0 {
		ui.NewPrinter(os.Stdout).PrintSuccess("Device already matches the saved configuration", map[string]string{
			"Device": registryKey(dev),
			"Saved":  savedAt,
		})
		return nil
	}

	if assumeYes {
		fmt.Println(settings.FormatDiff(current, target))
	} else {
		title := "Restore configuration saved " + savedAt
		if !ui.Confirm(os.Stdin, os.Stdout, title, diffLines(current, target), ui.GetTerminalWidth()) {
			return nil
		}
		fmt.Println()
	}

	steps := []string{"Push and verify saved record"}
	if noVerify {
		steps = []string{"Push saved record"}
	}
	runner := ui.NewRunner(ui.RunnerConfig{
		Title:   "Restore configuration",
		Command: "tempsense-cfg " + strings.Join(os.Args[1:], " "),
		Params: map[string]string{
			"Device":  fmt.Sprintf("%s:%d", dev.IP, dev.Port),
			"Changes": strconv.Itoa(len(changed)),
		},
		StepNames:    steps,
		Troubleshoot: troubleshoot,
	})
	_, err = runner.Run(func(onStep ui.StepCallback) (map[string]string, error) {
		onStep(1, ui.StepRunning, "")
		if noVerify {
			if _, err := client.SetConfig(ctx, target); err != nil {
				onStep(1, ui.StepFailed, device.GetShortErrorMessage(err))
				return nil, err
			}
			onStep(1, ui.StepComplete, "not verified")
			return map[string]string{"Summary": target.Summary()}, nil
		}

		result := client.SetAndVerify(ctx, target, nil)
		if !result.Success {
			onStep(1, ui.StepFailed, device.GetShortErrorMessage(result.Error))
			return nil, result.Error
		}
		onStep(1, ui.StepComplete, fmt.Sprintf("verified after %d attempt(s)", result.Attempts))
		return map[string]string{"Summary": result.Actual.Summary()}, nil
	})
	return err
}

// diffLines lists the changed fields for the confirmation box.
func diffLines(old, new settings.Record) []string {
	var lines []string
	// the first line of FormatDiff is its title
	for _, l := range strings.Split(settings.FormatDiff(old, new), "\n")[1:] {
		if l = strings.TrimSpace(l); l != "" {
			lines = append(lines, l)
		}
	}
	return lines
}

// devicesCmd lists remembered devices
var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "List devices remembered in the registry",
	RunE: func(cmd *cobra.Command, args []string) error {
		if len(registry.Devices) == 0 {
			fmt.Println("No devices remembered yet. Run 'tempsense-cfg scan' or 'show'.")
			return nil
		}

		ids := make([]string, 0, len(registry.Devices))
		for id := range registry.Devices {
			ids = append(ids, id)
		}
		sort.Strings(ids)

		t := tableStyle(table.New()).Headers("ID", "NICKNAME", "ADDRESS", "LAST SEEN", "SAVED CONFIG")
		for _, id := range ids {
			d := registry.Devices[id]
			addr := ""
			if d.LastIP != "" {
				addr = fmt.Sprintf("%s:%d", d.LastIP, d.LastPort)
			}
			seen := ""
			if !d.LastSeen.IsZero() {
				seen = d.LastSeen.Local().Format("2006-01-02 15:04")
			}
			saved := "-"
			if d.LastRecord != nil {
				saved = d.LastRecord.Summary()
			}
			t.Row(id, d.Nickname, addr, seen, saved)
		}
		fmt.Println(t.Render())
		return nil
	},
}

var devicesNameCmd = &cobra.Command{
	Use:   "name <id> <nickname>",
	Short: "Give a remembered device a nickname",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		if registry.GetDevice(args[0]) == nil {
			return fmt.Errorf("unknown device %q (see 'tempsense-cfg devices')", args[0])
		}
		registry.SetDeviceNickname(args[0], args[1])
		if err := registry.Save(); err != nil {
			return fmt.Errorf("failed to save registry: %w", err)
		}
		ui.NewPrinter(os.Stdout).PrintSuccess("Nickname saved", map[string]string{
			"Device":   args[0],
			"Nickname": args[1],
		})
		return nil
	},
}

// dashboardCmd launches the interactive dashboard
var dashboardCmd = &cobra.Command{
	Use:     "dashboard",
	Aliases: []string{"wizard"},
	Short:   "Launch the interactive dashboard",
	Long: `Launch the terminal dashboard for live configuration.

The dashboard scans for displays (or opens --device directly), loads the
configuration, previews what the display shows with live sensor readings,
and pushes changes as you make them.`,
	Example: `  # Launch with auto-discovery
  tempsense-cfg dashboard
  # Or simply:
  tempsense-cfg

  # Open a specific device
  tempsense-cfg --device 192.168.1.40`,
	RunE: runDashboard,
}

func runDashboard(cmd *cobra.Command, args []string) error {
	if !ui.IsInteractive() {
		return fmt.Errorf("the dashboard needs an interactive terminal; use 'show' or 'watch' instead")
	}

	var dev *discovery.Device
	if deviceAddr != "" {
		var err error
		dev, err = resolveDevice(cmd.Context(), registry, os.Stderr)
		if err != nil {
			return err
		}
		ctx, cancel := context.WithTimeout(cmd.Context(), requestTimeout)
		err = newClient(dev).Ping(ctx)
		cancel()
		if err != nil {
			// the dashboard shows the load failure and offers a reload
			fmt.Fprintf(os.Stderr, "warning: %s is not responding: %s\n", deviceAddr, device.GetShortErrorMessage(err))
		}
	}

	rec := &recorder{reg: registry}
	app := tui.NewAppModel(dev, tui.Options{
		ScanTimeout:    registry.Preferences.DiscoverDuration(),
		DefaultPort:    devicePort,
		RequestTimeout: requestTimeout,
		Persist:        rec.remember,
	})

	if _, err := tea.NewProgram(app, tea.WithAltScreen()).Run(); err != nil {
		return fmt.Errorf("dashboard error: %w", err)
	}
	return nil
}
