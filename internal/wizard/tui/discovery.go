package tui

import (
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/tempsense/tempsense/internal/discovery"
)

// Messages for async operations
type scanStartMsg struct{}
type scanCompleteMsg struct {
	devices []*discovery.Device
	err     error
}

// DeviceSelectedMsg is emitted when the user picks a device to configure.
type DeviceSelectedMsg struct {
	Device *discovery.Device
}

// ScanFunc finds devices on the network. Tests replace it.
type ScanFunc func(ctx context.Context, timeout time.Duration) ([]*discovery.Device, error)

// discoveryKeyMap defines key bindings for the device list
type discoveryKeyMap struct {
	Up     key.Binding
	Down   key.Binding
	Enter  key.Binding
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (k discoveryKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Enter, k.Rescan, k.Manual, k.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (k discoveryKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Enter},
		{k.Rescan, k.Manual, k.Quit},
	}
}

// manualModeKeyMap defines key bindings for manual address entry
type manualModeKeyMap struct {
	Confirm key.Binding
	Cancel  key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (m manualModeKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{m.Confirm, m.Cancel}
}

// FullHelp returns keybindings for the expanded help view
func (m manualModeKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{m.Confirm, m.Cancel}}
}

// scanningKeyMap is shown while a scan runs and when it found nothing
type scanningKeyMap struct {
	Rescan key.Binding
	Manual key.Binding
	Quit   key.Binding
}

// ShortHelp returns keybindings to be shown in the mini help view
func (s scanningKeyMap) ShortHelp() []key.Binding {
	return []key.Binding{s.Rescan, s.Manual, s.Quit}
}

// FullHelp returns keybindings for the expanded help view
func (s scanningKeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{{s.Rescan, s.Manual, s.Quit}}
}

// deviceItem wraps a Device for use with bubbles/list
type deviceItem struct {
	device *discovery.Device
}

func (d deviceItem) FilterValue() string {
	return d.device.ID + " " + d.device.IP + " " + d.device.Hostname
}

func (d deviceItem) Title() string {
	if d.device.ID == "" {
		return fmt.Sprintf("Manual: %s", d.device.IP)
	}
	return "tempsense-" + d.device.ID
}

func (d deviceItem) Description() string {
	return fmt.Sprintf("%s:%d • Firmware: %s", d.device.IP, d.device.Port, firmwareOf(d.device))
}

func firmwareOf(d *discovery.Device) string {
	if fw := d.Firmware(); fw != "" {
		return fw
	}
	return "Unknown"
}

// deviceDelegate renders each device as a card
type deviceDelegate struct {
	width int
}

func (d deviceDelegate) Height() int { return 6 }

func (d deviceDelegate) Spacing() int { return 1 }

func (d deviceDelegate) Update(msg tea.Msg, m *list.Model) tea.Cmd { return nil }

func (d deviceDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	di, ok := item.(deviceItem)
	if !ok {
		return
	}
	selected := index == m.Index()

	var content strings.Builder
	if selected {
		content.WriteString(SelectedLabelStyle.UnsetWidth().Render("→ " + di.Title()))
	} else {
		content.WriteString("  " + di.Title())
	}
	content.WriteString("\n")
	fmt.Fprintf(&content, "  Address:  %s:%d\n", di.device.IP, di.device.Port)
	fmt.Fprintf(&content, "  Firmware: %s", firmwareOf(di.device))

	cardWidth := d.width - 6
	if cardWidth < MinTerminalWidth-6 {
		cardWidth = MinTerminalWidth - 6
	}
	cardStyle := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(BorderColor).
		Padding(0, 2).
		MarginLeft(2).
		Width(cardWidth)
	if selected {
		cardStyle = cardStyle.BorderForeground(HighlightColor)
	}

	fmt.Fprint(w, cardStyle.Render(content.String()))
}

// DiscoveryModel is the device discovery screen
type DiscoveryModel struct {
	Scanning   bool
	DeviceList list.Model
	Err        error

	ManualMode  bool
	AddrInput   textinput.Model
	DefaultPort int
	inputErr    string

	ScanTimeout time.Duration
	Scan        ScanFunc

	Width         int
	Height        int
	Spinner       spinner.Model
	ProgressBar   progress.Model
	ScanStartTime time.Time
	Help          help.Model
	Keys          discoveryKeyMap
	ManualKeys    manualModeKeyMap
	ScanningKeys  scanningKeyMap
}

// NewDiscoveryModel creates a discovery screen that scans for the given
// duration. Manual addresses without a port use defaultPort.
func NewDiscoveryModel(scanTimeout time.Duration, defaultPort int) DiscoveryModel {
	if scanTimeout <= 0 {
		scanTimeout = discovery.DefaultScanTimeout
	}
	if defaultPort <= 0 {
		defaultPort = discovery.DefaultPort
	}

	s := spinner.New()
	s.Spinner = spinner.Dot
	s.Style = SpinnerStyle

	addrInput := textinput.New()
	addrInput.Placeholder = "192.168.4.1 or 192.168.4.1:8080"
	addrInput.CharLimit = 64
	addrInput.Width = 34

	progressBar := progress.New(progress.WithDefaultGradient())
	progressBar.Width = 40

	deviceList := list.New([]list.Item{}, deviceDelegate{width: MinTerminalWidth}, 0, 0)
	deviceList.Title = "Discovered Devices"
	deviceList.SetShowStatusBar(false)
	deviceList.SetShowHelp(false)
	deviceList.SetFilteringEnabled(true)
	deviceList.Styles.Title = TitleStyle

	return DiscoveryModel{
		DeviceList:  deviceList,
		AddrInput:   addrInput,
		DefaultPort: defaultPort,
		ScanTimeout: scanTimeout,
		Scan:        discovery.DiscoverDevices,
		Spinner:     s,
		ProgressBar: progressBar,
		Help:        help.New(),
		Keys: discoveryKeyMap{
			Up:     key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "move up")),
			Down:   key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "move down")),
			Enter:  key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open")),
			Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
			Manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "manual address")),
			Quit:   key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		},
		ManualKeys: manualModeKeyMap{
			Confirm: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "connect")),
			Cancel:  key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		},
		ScanningKeys: scanningKeyMap{
			Rescan: key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rescan")),
			Manual: key.NewBinding(key.WithKeys("m"), key.WithHelp("m", "manual address")),
			Quit:   key.NewBinding(key.WithKeys("q"), key.WithHelp("q", "quit")),
		},
	}
}

// Init starts the first scan
func (m DiscoveryModel) Init() tea.Cmd {
	return m.startScan()
}

func (m DiscoveryModel) startScan() tea.Cmd {
	scan, timeout := m.Scan, m.ScanTimeout
	return tea.Batch(
		func() tea.Msg { return scanStartMsg{} },
		func() tea.Msg {
			devices, err := scan(context.Background(), timeout)
			return scanCompleteMsg{devices: devices, err: err}
		},
		m.Spinner.Tick,
	)
}

// Update handles messages and updates the model
func (m DiscoveryModel) Update(msg tea.Msg) (DiscoveryModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.KeyMsg:
		if m.ManualMode {
			return m.updateManualMode(msg)
		}
		return m.updateNormalMode(msg)

	case tea.WindowSizeMsg:
		m.Width = msg.Width
		m.Height = msg.Height
		m.DeviceList.SetDelegate(deviceDelegate{width: msg.Width - 4})
		m.DeviceList.SetWidth(msg.Width - 4)
		m.DeviceList.SetHeight(msg.Height - 8)
		return m, nil

	case scanStartMsg:
		m.Scanning = true
		m.ScanStartTime = time.Now()
		return m, nil

	case scanCompleteMsg:
		m.Scanning = false
		m.Err = msg.err
		items := manualItems(m.DeviceList.Items())
		for _, dev := range msg.devices {
			items = append(items, deviceItem{device: dev})
		}
		cmd = m.DeviceList.SetItems(items)
		return m, cmd

	case spinner.TickMsg:
		if !m.Scanning {
			return m, nil
		}
		m.Spinner, cmd = m.Spinner.Update(msg)
		return m, cmd
	}

	if !m.ManualMode && !m.Scanning {
		m.DeviceList, cmd = m.DeviceList.Update(msg)
	}
	return m, cmd
}

// manualItems keeps manually entered addresses across rescans
func manualItems(items []list.Item) []list.Item {
	var kept []list.Item
	for _, it := range items {
		if di, ok := it.(deviceItem); ok && di.device.ID == "" {
			kept = append(kept, it)
		}
	}
	return kept
}

func (m DiscoveryModel) updateNormalMode(msg tea.KeyMsg) (DiscoveryModel, tea.Cmd) {
	if m.DeviceList.FilterState() == list.Filtering {
		var cmd tea.Cmd
		m.DeviceList, cmd = m.DeviceList.Update(msg)
		return m, cmd
	}

	switch {
	case msg.String() == "ctrl+c", key.Matches(msg, m.Keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.Keys.Enter):
		if m.Scanning {
			return m, nil
		}
		if item, ok := m.DeviceList.SelectedItem().(deviceItem); ok {
			dev := item.device
			return m, func() tea.Msg { return DeviceSelectedMsg{Device: dev} }
		}
		return m, nil

	case key.Matches(msg, m.Keys.Rescan):
		if m.Scanning {
			return m, nil
		}
		m.Err = nil
		return m, m.startScan()

	case key.Matches(msg, m.Keys.Manual):
		m.ManualMode = true
		m.inputErr = ""
		m.AddrInput.SetValue("")
		return m, m.AddrInput.Focus()
	}

	if m.Scanning {
		return m, nil
	}
	var cmd tea.Cmd
	m.DeviceList, cmd = m.DeviceList.Update(msg)
	return m, cmd
}

func (m DiscoveryModel) updateManualMode(msg tea.KeyMsg) (DiscoveryModel, tea.Cmd) {
	var cmd tea.Cmd

	switch msg.String() {
	case "ctrl+c", "esc":
		m.ManualMode = false
		m.AddrInput.SetValue("")
		m.AddrInput.Blur()
		return m, nil

	case "enter":
		dev, err := parseManualAddress(m.AddrInput.Value(), m.DefaultPort)
		if err != nil {
			m.inputErr = err.Error()
			return m, nil
		}
		cmd = m.DeviceList.InsertItem(0, deviceItem{device: dev})
		m.DeviceList.Select(0)
		m.ManualMode = false
		m.AddrInput.SetValue("")
		m.AddrInput.Blur()
		return m, tea.Batch(cmd, func() tea.Msg { return DeviceSelectedMsg{Device: dev} })
	}

	m.inputErr = ""
	m.AddrInput, cmd = m.AddrInput.Update(msg)
	return m, cmd
}

// parseManualAddress accepts "host" or "host:port".
func parseManualAddress(value string, defaultPort int) (*discovery.Device, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return nil, fmt.Errorf("enter an address")
	}

	host, port := value, defaultPort
	if h, p, err := net.SplitHostPort(value); err == nil {
		n, err := strconv.Atoi(p)
		if err != nil || n < 1 || n > 65535 {
			return nil, fmt.Errorf("invalid port %q", p)
		}
		host, port = h, n
	}
	if host == "" || strings.ContainsAny(host, " /") {
		return nil, fmt.Errorf("invalid host %q", host)
	}

	return &discovery.Device{
		IP:           host,
		Port:         port,
		Hostname:     host,
		DiscoveredAt: time.Now(),
	}, nil
}

// View renders the discovery screen
func (m DiscoveryModel) View() string {
	width := m.Width
	if width == 0 {
		width = MinTerminalWidth
	}

	var content, helpText string
	switch {
	case m.ManualMode:
		content = m.renderManualEntry()
		helpText = m.Help.View(m.ManualKeys)
	case m.Scanning:
		content = m.renderScanning(width)
		helpText = m.Help.View(m.ScanningKeys)
	case len(m.DeviceList.Items()) > 0:
		content = "\n" + m.DeviceList.View()
		helpText = m.Help.View(m.Keys)
	default:
		content = m.renderEmpty()
		helpText = m.Help.View(m.ScanningKeys)
	}

	return RenderApplicationContainer(content, helpText, m.Width, m.Height)
}

func (m DiscoveryModel) renderScanning(width int) string {
	elapsed := time.Since(m.ScanStartTime)
	fraction := float64(elapsed) / float64(m.ScanTimeout)
	if fraction > 1 {
		fraction = 1
	}

	content := lipgloss.JoinVertical(lipgloss.Center,
		"",
		TitleStyle.Render(fmt.Sprintf("%s SEARCHING FOR DEVICES", m.Spinner.View())),
		SubtitleStyle.Render("Browsing mDNS for tempsense displays..."),
		"",
		m.ProgressBar.ViewAs(fraction),
		"",
		SubtitleStyle.Render(fmt.Sprintf("Elapsed: %ds", int(elapsed.Seconds()))),
		"",
	)
	return lipgloss.Place(width-4, 0, lipgloss.Center, lipgloss.Top, content)
}

func (m DiscoveryModel) renderEmpty() string {
	var b strings.Builder
	b.WriteString("\n")
	if m.Err != nil {
		b.WriteString(RenderError(fmt.Sprintf("Scan failed: %v", m.Err)))
	} else {
		b.WriteString("  ")
		b.WriteString(lipgloss.NewStyle().Foreground(WarningColor).Bold(true).
			Render("⚠ No devices found on your network"))
	}
	b.WriteString("\n\n")
	b.WriteString("  Troubleshooting:\n")
	b.WriteString("    • Ensure the display is powered and joined to this network\n")
	b.WriteString("    • mDNS may be blocked between subnets or on guest WiFi\n")
	b.WriteString("    • Press 'm' to enter the device address directly\n")
	return b.String()
}

func (m DiscoveryModel) renderManualEntry() string {
	var b strings.Builder
	b.WriteString("\n")
	b.WriteString(RenderSubtitle("  Enter the device address"))
	b.WriteString("\n\n  Address: ")
	b.WriteString(m.AddrInput.View())
	b.WriteString("\n")
	if m.inputErr != "" {
		b.WriteString("\n  ")
		b.WriteString(ErrorTextStyle.Render(m.inputErr))
		b.WriteString("\n")
	}
	return b.String()
}
